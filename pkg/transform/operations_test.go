package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linabutler/ploidy/pkg/ir"
)

const opsHeader = `
openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
`

func TestInlineResponseBody(t *testing.T) {
	spec := mustSpec(t, opsHeader+`
paths:
  /users/{userId}:
    get:
      operationId: getUser
      parameters:
        - name: userId
          in: path
          required: true
          schema:
            type: string
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: object
                properties:
                  id:
                    type: string
                  email:
                    type: string
                  name:
                    type: string
                required:
                  - id
                  - email
                  - name
`)

	require.Len(t, spec.Operations, 1)
	op := spec.Operations[0]
	assert.Equal(t, "getUser", op.ID)
	assert.Equal(t, "GET", op.Method)

	require.Len(t, op.Responses, 1)
	response := op.Responses[0]
	assert.Equal(t, "200", response.Status)
	require.NotNil(t, response.Type)
	require.Equal(t, ir.KindRef, response.Type.Kind)

	bodyID := response.Type.Ref
	assert.Equal(t, `Operation("getUser") / Response(200) / Body`, bodyID.String())

	body, ok := spec.Lookup(bodyID)
	require.True(t, ok)
	require.Equal(t, ir.KindStruct, body.Kind)
	assert.Equal(t, []string{"email", "id", "name"}, fieldNames(body.Struct))
	for i := range body.Struct.Fields {
		assert.True(t, body.Struct.Fields[i].Required)
	}
}

func TestOperationParameters(t *testing.T) {
	spec := mustSpec(t, opsHeader+`
paths:
  /search:
    get:
      operationId: search
      parameters:
        - name: q
          in: query
          required: true
          schema:
            type: string
        - name: X-Trace
          in: header
          schema:
            type: string
        - name: session
          in: cookie
          schema:
            type: string
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

	require.Len(t, spec.Operations, 1)
	op := spec.Operations[0]
	require.Len(t, op.Params, 4)

	q := op.Params[0]
	assert.Equal(t, ir.InQuery, q.In)
	assert.True(t, q.Required)
	assert.Equal(t, ir.PrimString, q.Type.Prim)

	assert.Equal(t, ir.InHeader, op.Params[1].In)
	assert.Equal(t, ir.InCookie, op.Params[2].In)

	filter := op.Params[3]
	require.Equal(t, ir.KindRef, filter.Type.Kind)
	assert.Equal(t, `Operation("search") / Parameter("filter")`, filter.Type.Ref.String())
	_, ok := spec.Lookup(filter.Type.Ref)
	assert.True(t, ok)
}

func TestRequestBodies(t *testing.T) {
	spec := mustSpec(t, opsHeader+`
components:
  schemas:
    User:
      type: object
      properties:
        id:
          type: string
paths:
  /users:
    post:
      operationId: createUser
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/User'
      responses:
        '201':
          description: Created
  /files:
    post:
      operationId: uploadFile
      requestBody:
        content:
          multipart/form-data:
            schema:
              type: object
      responses:
        '201':
          description: Created
`)

	require.Len(t, spec.Operations, 2)

	upload := spec.Operations[0]
	assert.Equal(t, "uploadFile", upload.ID)
	require.NotNil(t, upload.Request)
	assert.True(t, upload.Request.Multipart)
	assert.Nil(t, upload.Request.Type)

	create := spec.Operations[1]
	assert.Equal(t, "createUser", create.ID)
	require.NotNil(t, create.Request)
	assert.True(t, create.Request.Required)
	require.Equal(t, ir.KindRef, create.Request.Type.Kind)
	assert.Equal(t, "User", create.Request.Type.Ref.Name)
}

func TestResponseTableOrder(t *testing.T) {
	spec := mustSpec(t, opsHeader+`
paths:
  /things:
    get:
      operationId: listThings
      responses:
        default:
          description: Error
        '404':
          description: Not found
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: array
                items:
                  type: string
`)

	require.Len(t, spec.Operations, 1)
	op := spec.Operations[0]
	require.Len(t, op.Responses, 3)
	assert.Equal(t, "200", op.Responses[0].Status)
	assert.Equal(t, "404", op.Responses[1].Status)
	assert.Equal(t, "default", op.Responses[2].Status)

	require.NotNil(t, op.Responses[0].Type)
	assert.Equal(t, ir.KindArray, op.Responses[0].Type.Kind)
	assert.Nil(t, op.Responses[1].Type)
}

func TestMissingOperationID(t *testing.T) {
	spec := mustSpec(t, opsHeader+`
paths:
  /things:
    get:
      responses:
        '200':
          description: OK
`)

	assert.Empty(t, spec.Operations)
	var kinds []ir.DiagKind
	for _, d := range spec.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, ir.DiagNoOperationID)
}

func TestOperationPathTemplate(t *testing.T) {
	spec := mustSpec(t, opsHeader+`
paths:
  /users/{userId}/posts/{postId}:
    get:
      operationId: getPost
      parameters:
        - name: userId
          in: path
          required: true
          schema:
            type: string
        - name: postId
          in: path
          required: true
          schema:
            type: string
      responses:
        '204':
          description: No content
`)

	require.Len(t, spec.Operations, 1)
	op := spec.Operations[0]
	require.Len(t, op.Path, 4)
	assert.Equal(t, "users", op.Path[0].Fragments[0].Literal)
	assert.Equal(t, "userId", op.Path[1].Fragments[0].Param)
	assert.Equal(t, "posts", op.Path[2].Fragments[0].Literal)
	assert.Equal(t, "postId", op.Path[3].Fragments[0].Param)
}

func TestOperationResourceAnnotation(t *testing.T) {
	spec := mustSpec(t, opsHeader+`
paths:
  /customers:
    get:
      operationId: listCustomers
      x-resource-name: customer
      tags:
        - customers
      responses:
        '204':
          description: No content
`)

	require.Len(t, spec.Operations, 1)
	assert.Equal(t, "customer", spec.Operations[0].Resource)
	assert.Equal(t, "customers", spec.Operations[0].Tag)
}

func TestOperationsAreOrderedByPathThenMethod(t *testing.T) {
	spec := mustSpec(t, opsHeader+`
paths:
  /b:
    get:
      operationId: getB
      responses:
        '204':
          description: No content
  /a:
    post:
      operationId: postA
      responses:
        '204':
          description: No content
    get:
      operationId: getA
      responses:
        '204':
          description: No content
`)

	var ids []string
	for _, op := range spec.Operations {
		ids = append(ids, op.ID)
	}
	assert.Equal(t, []string{"getA", "postA", "getB"}, ids)
}
