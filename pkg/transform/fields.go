package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/linabutler/ploidy/pkg/ir"
)

// schemaField is one linearized field of a schema, before lowering to IR.
type schemaField struct {
	name          string
	schema        *openapi3.SchemaRef
	required      bool
	inherited     bool
	discriminator bool
}

// allFields returns the linearized fields of a schema, including fields
// inherited through allOf: ancestor fields in linearization order first,
// then the schema's own fields. Own fields shadow inherited fields of the
// same name; shadowing with a different type is reported as a
// conflicting-inherited-field diagnostic, and the more derived field wins.
//
// The second return value is the set of references followed during
// linearization. The caller adds them to the transformer's skip set while
// lowering field types, so that an inline field schema referencing back to
// an ancestor doesn't recurse forever.
func (t *Transformer) allFields(ptr string, s *openapi3.Schema) ([]schemaField, map[string]bool) {
	ancestors, followed := t.collectAncestors(ptr, s)

	// Discriminators can be inherited, and can be duplicated in both
	// `properties` and `discriminator`.
	discriminators := map[string]bool{}
	for _, schema := range append([]*openapi3.Schema{s}, ancestors...) {
		if schema.Discriminator != nil && schema.Discriminator.PropertyName != "" {
			discriminators[schema.Discriminator.PropertyName] = true
		}
	}

	own := map[string]bool{}
	for name := range s.Properties {
		own[name] = true
	}

	var fields []schemaField
	index := map[string]int{}
	for _, ancestor := range ancestors {
		required := map[string]bool{}
		for _, name := range ancestor.Required {
			required[name] = true
		}
		for _, name := range sortedKeys(ancestor.Properties) {
			property := ancestor.Properties[name]
			if own[name] {
				// Shadowed by an own field; checked below.
				continue
			}
			if at, ok := index[name]; ok {
				// Already inherited from a more derived ancestor; the
				// earlier (more derived) field wins.
				t.checkFieldConflict(ptr, name, fields[at].schema, property)
				continue
			}
			index[name] = len(fields)
			fields = append(fields, schemaField{
				name:          name,
				schema:        property,
				required:      required[name],
				inherited:     true,
				discriminator: discriminators[name],
			})
		}
	}

	required := map[string]bool{}
	for _, name := range s.Required {
		required[name] = true
	}
	for _, name := range sortedKeys(s.Properties) {
		property := s.Properties[name]
		if at, ok := index[name]; ok {
			// Shouldn't happen: inherited entries skip own names.
			fields[at].schema = property
			continue
		}
		fields = append(fields, schemaField{
			name:          name,
			schema:        property,
			required:      required[name],
			discriminator: discriminators[name],
		})
	}

	// Report own fields that shadow an inherited field of a different type.
	for _, ancestor := range ancestors {
		for _, name := range sortedKeys(ancestor.Properties) {
			if own[name] {
				t.checkFieldConflict(ptr, name, s.Properties[name], ancestor.Properties[name])
			}
		}
	}

	return fields, followed
}

// collectAncestors walks a schema's allOf chains depth-first, resolving
// references, and returns the reached schemas in linearized order. Cycles
// are broken by tracking visited references (and references already being
// linearized up the stack); the first visit wins.
func (t *Transformer) collectAncestors(ptr string, s *openapi3.Schema) ([]*openapi3.Schema, map[string]bool) {
	var ancestors []*openapi3.Schema
	visited := map[string]bool{}

	var stack []*openapi3.SchemaRef
	for i := len(s.AllOf) - 1; i >= 0; i-- {
		stack = append(stack, s.AllOf[i])
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if item == nil {
			continue
		}

		var schema *openapi3.Schema
		if item.Ref != "" {
			if t.skipRefs[item.Ref] > 0 {
				// Reference is being linearized by a transform up the
				// stack; skip to break the cycle.
				continue
			}
			if visited[item.Ref] {
				continue
			}
			visited[item.Ref] = true
			_, resolved, err := t.res.Schema(item.Ref)
			if err != nil {
				t.diagRef(ptr, err)
				continue
			}
			schema = resolved
		} else {
			schema = item.Value
		}
		if schema == nil {
			continue
		}

		for i := len(schema.AllOf) - 1; i >= 0; i-- {
			stack = append(stack, schema.AllOf[i])
		}
		ancestors = append(ancestors, schema)
	}

	return ancestors, visited
}

// checkFieldConflict reports a conflicting-inherited-field diagnostic when a
// shadowing field redeclares a name with a different type.
func (t *Transformer) checkFieldConflict(ptr, name string, winner, loser *openapi3.SchemaRef) {
	if winner == nil || loser == nil {
		return
	}
	if typeSignature(winner) == typeSignature(loser) {
		return
	}
	t.spec.Diag(ir.DiagConflictingInheritedField, ptr+"/properties/"+escapeToken(name),
		fmt.Sprintf("field %q redeclares an inherited field with a different type", name))
}

// typeSignature returns a shallow signature for conflict checking.
func typeSignature(sr *openapi3.SchemaRef) string {
	if sr.Ref != "" {
		return "ref:" + sr.Ref
	}
	s := sr.Value
	if s == nil {
		return ""
	}
	var parts []string
	if s.Type != nil {
		parts = append(parts, s.Type.Slice()...)
	}
	if s.Format != "" {
		parts = append(parts, "format:"+s.Format)
	}
	return strings.Join(parts, ",")
}

// sortedKeys returns a schema property map's keys in sorted order, for
// deterministic iteration.
func sortedKeys(properties openapi3.Schemas) []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
