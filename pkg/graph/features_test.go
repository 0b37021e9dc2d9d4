package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linabutler/ploidy/pkg/graph"
)

func TestNoResourcesMeansNoGates(t *testing.T) {
	_, g := mustGraph(t, header+`
components:
  schemas:
    Customer:
      type: object
      properties:
        id:
          type: string
`)

	assert.Nil(t, schemaView(t, g, "Customer").FeatureGate())
}

func TestOwnResourceGate(t *testing.T) {
	_, g := mustGraph(t, header+`
components:
  schemas:
    Customer:
      type: object
      x-resourceId: customer
      properties:
        id:
          type: string
`)

	gate := schemaView(t, g, "Customer").FeatureGate()
	require.NotNil(t, gate)
	assert.Equal(t, graph.GateSingle, gate.Kind)
	assert.Equal(t, []string{"customer"}, gate.Features)
}

func TestResourcePropagatesToUnannotatedDependency(t *testing.T) {
	// BillingInfo has no resource, but is referenced only by Customer, so
	// it inherits Customer's feature.
	_, g := mustGraph(t, header+`
components:
  schemas:
    Customer:
      type: object
      x-resourceId: customer
      properties:
        billing:
          $ref: '#/components/schemas/BillingInfo'
    BillingInfo:
      type: object
      properties:
        iban:
          type: string
`)

	customer := schemaView(t, g, "Customer").FeatureGate()
	require.NotNil(t, customer)
	assert.Equal(t, []string{"customer"}, customer.Features)

	billing := schemaView(t, g, "BillingInfo").FeatureGate()
	require.NotNil(t, billing)
	assert.Equal(t, graph.GateSingle, billing.Kind)
	assert.Equal(t, []string{"customer"}, billing.Features)
}

func TestUngatedDependentForcesAlwaysPresent(t *testing.T) {
	// Common is referenced by both a gated type and an ungated one; the
	// ungated dependent keeps Common always present.
	_, g := mustGraph(t, header+`
components:
  schemas:
    Customer:
      type: object
      x-resourceId: customer
      properties:
        common:
          $ref: '#/components/schemas/Common'
    Plain:
      type: object
      properties:
        common:
          $ref: '#/components/schemas/Common'
    Common:
      type: object
      properties:
        id:
          type: string
`)

	assert.Nil(t, schemaView(t, g, "Common").FeatureGate())
	assert.Nil(t, schemaView(t, g, "Plain").FeatureGate())
}

const operationStyleDoc = `
openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
paths:
  /customers:
    get:
      operationId: listCustomers
      x-resource-name: customer
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Address'
  /orders:
    get:
      operationId: listOrders
      x-resource-name: orders
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Address'
components:
  schemas:
    Address:
      type: object
      properties:
        street:
          type: string
`

func TestUsedByMultipleOperations(t *testing.T) {
	_, g := mustGraph(t, operationStyleDoc)

	gate := schemaView(t, g, "Address").FeatureGate()
	require.NotNil(t, gate)
	assert.Equal(t, graph.GateAnyOf, gate.Kind)
	assert.Equal(t, []string{"customer", "orders"}, gate.Features)
}

func TestOwnResourceAndUsedByOperations(t *testing.T) {
	_, g := mustGraph(t, `
openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
paths:
  /billing:
    get:
      operationId: getBilling
      x-resource-name: billing
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Customer'
  /orders:
    get:
      operationId: getOrders
      x-resource-name: orders
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Customer'
components:
  schemas:
    Customer:
      type: object
      x-resourceId: customer
      properties:
        id:
          type: string
`)

	gate := schemaView(t, g, "Customer").FeatureGate()
	require.NotNil(t, gate)
	assert.Equal(t, graph.GateOwnAndUsedBy, gate.Kind)
	assert.Equal(t, "customer", gate.Own)
	assert.Equal(t, []string{"billing", "orders"}, gate.Features)
	assert.Equal(t, `all("customer", any("billing", "orders"))`, gate.String())
}

func TestOperationGateReducesTransitiveChain(t *testing.T) {
	// A -> B -> C, each with a resource; the operation only needs the
	// outermost feature, because enabling it implies the others.
	_, g := mustGraph(t, `
openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
paths:
  /things:
    get:
      operationId: getThings
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/A'
components:
  schemas:
    A:
      type: object
      x-resourceId: a
      properties:
        b:
          $ref: '#/components/schemas/B'
    B:
      type: object
      x-resourceId: b
      properties:
        c:
          $ref: '#/components/schemas/C'
    C:
      type: object
      x-resourceId: c
      properties:
        value:
          type: string
`)

	ops := g.Operations()
	require.Len(t, ops, 1)
	gate := ops[0].FeatureGate()
	require.NotNil(t, gate)
	assert.Equal(t, graph.GateSingle, gate.Kind)
	assert.Equal(t, []string{"a"}, gate.Features)
}

func TestOperationGateKeepsIndependentFeatures(t *testing.T) {
	_, g := mustGraph(t, `
openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
paths:
  /things:
    get:
      operationId: getThings
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: object
                properties:
                  a:
                    $ref: '#/components/schemas/A'
                  b:
                    $ref: '#/components/schemas/B'
components:
  schemas:
    A:
      type: object
      x-resourceId: a
      properties:
        value:
          type: string
    B:
      type: object
      x-resourceId: b
      properties:
        value:
          type: string
`)

	ops := g.Operations()
	require.Len(t, ops, 1)
	gate := ops[0].FeatureGate()
	require.NotNil(t, gate)
	assert.Equal(t, graph.GateAllOf, gate.Kind)
	assert.Equal(t, []string{"a", "b"}, gate.Features)
}

func TestOperationGateReducesCycleToLowestFeature(t *testing.T) {
	_, g := mustGraph(t, `
openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
paths:
  /things:
    get:
      operationId: getThings
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/A'
components:
  schemas:
    A:
      type: object
      x-resourceId: a
      properties:
        b:
          $ref: '#/components/schemas/B'
    B:
      type: object
      x-resourceId: b
      properties:
        c:
          $ref: '#/components/schemas/C'
    C:
      type: object
      x-resourceId: c
      properties:
        a:
          $ref: '#/components/schemas/A'
`)

	ops := g.Operations()
	require.Len(t, ops, 1)
	gate := ops[0].FeatureGate()
	require.NotNil(t, gate)
	assert.Equal(t, graph.GateSingle, gate.Kind)
	assert.Equal(t, []string{"a"}, gate.Features)
}

func TestDefaultResourceIsNeverGated(t *testing.T) {
	_, g := mustGraph(t, header+`
components:
  schemas:
    Core:
      type: object
      x-resourceId: default
      properties:
        id:
          type: string
`)

	assert.Nil(t, schemaView(t, g, "Core").FeatureGate())
}

func TestInlineTypeInheritsOperationGate(t *testing.T) {
	_, g := mustGraph(t, `
openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
paths:
  /items:
    get:
      operationId: getItems
      x-resource-name: items
      parameters:
        - name: filter
          in: query
          schema:
            type: object
            properties:
              status:
                type: string
      responses:
        '204':
          description: No content
`)

	ops := g.Operations()
	require.Len(t, ops, 1)
	inlines := ops[0].Inlines()
	require.Len(t, inlines, 1)

	gate := inlines[0].FeatureGate()
	require.NotNil(t, gate)
	assert.Equal(t, graph.GateSingle, gate.Kind)
	assert.Equal(t, []string{"items"}, gate.Features)
}
