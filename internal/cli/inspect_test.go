package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
openapi: 3.0.3
info:
  title: Sample
  version: 1.0.0
paths:
  /comments:
    get:
      operationId: listComments
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Comment'
components:
  schemas:
    Comment:
      type: object
      properties:
        text:
          type: string
        parent:
          $ref: '#/components/schemas/Comment'
      required:
        - text
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestRunInspectText(t *testing.T) {
	var out strings.Builder
	err := RunInspect(&out, InspectParams{Input: writeSample(t), Format: "text"})
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "Comment (struct)")
	assert.Contains(t, report, "parent: ref(Comment) (indirect)")
	assert.Contains(t, report, "GET listComments")
}

func TestRunInspectYAML(t *testing.T) {
	var out strings.Builder
	err := RunInspect(&out, InspectParams{Input: writeSample(t), Format: "yaml"})
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "id: Comment")
	assert.Contains(t, report, "kind: struct")
	assert.Contains(t, report, "method: GET")
}

func TestRunInspectUnknownFormat(t *testing.T) {
	var out strings.Builder
	err := RunInspect(&out, InspectParams{Input: writeSample(t), Format: "toml"})
	assert.Error(t, err)
}
