package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/jsonpointer"
)

// Resolution errors. Callers turn these into diagnostics on the spec; a field
// whose reference fails to resolve degrades to Any.
var (
	ErrUnknownPointer   = errors.New("unknown pointer")
	ErrMalformedPointer = errors.New("malformed pointer")
	ErrCyclicResolution = errors.New("cyclic $ref resolution")
)

// maxRefHops bounds $ref chain collapsing: a chain of pure $ref schemas
// longer than this is reported as cyclic.
const maxRefHops = 32

// Resolver follows local $ref pointers within a parsed document. Pointers are
// RFC 6901 JSON Pointers, optionally prefixed with `#`. Only references into
// the components section are resolvable; external URLs are out of scope.
type Resolver struct {
	doc *openapi3.T
}

// NewResolver returns a resolver over the given document.
func NewResolver(doc *openapi3.T) *Resolver {
	return &Resolver{doc: doc}
}

// SchemaName extracts the component name from a pointer that targets
// /components/schemas/<name>.
func SchemaName(ref string) (string, bool) {
	tokens, err := pointerTokens(ref)
	if err != nil || len(tokens) != 3 {
		return "", false
	}
	if tokens[0] != "components" || tokens[1] != "schemas" {
		return "", false
	}
	return tokens[2], true
}

// Schema resolves a schema pointer, collapsing chains of pure $ref schemas.
// The returned name is the final component name in the chain.
func (r *Resolver) Schema(ref string) (string, *openapi3.Schema, error) {
	visited := map[string]bool{}
	for hops := 0; hops < maxRefHops; hops++ {
		if visited[ref] {
			return "", nil, fmt.Errorf("%w: %s", ErrCyclicResolution, ref)
		}
		visited[ref] = true

		name, ok := SchemaName(ref)
		if !ok {
			if _, err := pointerTokens(ref); err != nil {
				return "", nil, fmt.Errorf("%w: %s", ErrMalformedPointer, ref)
			}
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownPointer, ref)
		}
		sr := r.componentSchema(name)
		if sr == nil {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownPointer, ref)
		}
		if sr.Ref != "" && sr.Value == nil {
			// A pure $ref schema; follow the chain.
			ref = sr.Ref
			continue
		}
		if sr.Value == nil {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownPointer, ref)
		}
		return name, sr.Value, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrCyclicResolution, ref)
}

// Parameter resolves a pointer to a component parameter.
func (r *Resolver) Parameter(ref string) (*openapi3.Parameter, error) {
	tokens, err := pointerTokens(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPointer, ref)
	}
	if len(tokens) == 3 && tokens[0] == "components" && tokens[1] == "parameters" && r.doc.Components != nil {
		if pr := r.doc.Components.Parameters[tokens[2]]; pr != nil && pr.Value != nil {
			return pr.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPointer, ref)
}

// RequestBody resolves a pointer to a component request body.
func (r *Resolver) RequestBody(ref string) (*openapi3.RequestBody, error) {
	tokens, err := pointerTokens(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPointer, ref)
	}
	if len(tokens) == 3 && tokens[0] == "components" && tokens[1] == "requestBodies" && r.doc.Components != nil {
		if rr := r.doc.Components.RequestBodies[tokens[2]]; rr != nil && rr.Value != nil {
			return rr.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPointer, ref)
}

// Response resolves a pointer to a component response.
func (r *Resolver) Response(ref string) (*openapi3.Response, error) {
	tokens, err := pointerTokens(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPointer, ref)
	}
	if len(tokens) == 3 && tokens[0] == "components" && tokens[1] == "responses" && r.doc.Components != nil {
		if rr := r.doc.Components.Responses[tokens[2]]; rr != nil && rr.Value != nil {
			return rr.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPointer, ref)
}

func (r *Resolver) componentSchema(name string) *openapi3.SchemaRef {
	if r.doc.Components == nil {
		return nil
	}
	return r.doc.Components.Schemas[name]
}

// pointerTokens parses an optionally `#`-prefixed JSON Pointer into its
// decoded tokens, handling the ~0 and ~1 escapes.
func pointerTokens(ref string) ([]string, error) {
	ptr := strings.TrimPrefix(ref, "#")
	p, err := jsonpointer.New(ptr)
	if err != nil {
		return nil, err
	}
	return p.DecodedTokens(), nil
}

// escapeToken escapes one token for inclusion in a diagnostic pointer.
func escapeToken(token string) string {
	return jsonpointer.Escape(token)
}
