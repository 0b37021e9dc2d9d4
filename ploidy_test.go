package ploidy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linabutler/ploidy"
	"github.com/linabutler/ploidy/pkg/ir"
)

const petstore = `
openapi: 3.0.3
info:
  title: Petstore
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      properties:
        id:
          type: string
        name:
          type: string
      required:
        - id
`

func writeSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstore), 0o644))
	return path
}

func TestBuildIR(t *testing.T) {
	spec, err := ploidy.BuildIR(writeSpec(t), ploidy.Options{})
	require.NoError(t, err)

	ty, ok := spec.Lookup(ir.NamedID("Pet"))
	require.True(t, ok)
	assert.Equal(t, ir.KindStruct, ty.Kind)
	require.Len(t, spec.Operations, 1)
	assert.Equal(t, "listPets", spec.Operations[0].ID)
}

func TestBuildGraph(t *testing.T) {
	spec, g, err := ploidy.BuildGraph(writeSpec(t), ploidy.Options{})
	require.NoError(t, err)
	require.NotNil(t, spec)

	pet, ok := g.Lookup(ir.NamedID("Pet"))
	require.True(t, ok)
	assert.True(t, pet.CanDeriveEquality())

	ops := g.Operations()
	require.Len(t, ops, 1)
	users := pet.UsedByOperations()
	require.Len(t, users, 1)
	assert.Equal(t, "listPets", users[0].ID())
}

func TestBuildIRMissingFile(t *testing.T) {
	_, err := ploidy.BuildIR(filepath.Join(t.TempDir(), "missing.yaml"), ploidy.Options{})
	assert.Error(t, err)
}
