package transform

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/linabutler/ploidy/pkg/ir"
	"github.com/linabutler/ploidy/pkg/utils"
)

// Registry assigns stable identifiers to every named schema in a document.
// Component names that collide across case conventions ("HTTPResponse" vs
// "httpResponse") are disambiguated with deterministic numeric suffixes, so
// that emitters can case-convert identifiers without introducing collisions.
//
// Registry output is deterministic: the same document always yields the same
// identifiers in the same order.
type Registry struct {
	order []string             // component names in assignment order
	named map[string]ir.TypeID // component name -> assigned identifier
}

// NewRegistry assigns identifiers to all named schemas in the document.
func NewRegistry(doc *openapi3.T) *Registry {
	r := &Registry{named: map[string]ir.TypeID{}}
	if doc.Components == nil {
		return r
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	scope := utils.NewUniqueScope()
	for _, name := range names {
		r.order = append(r.order, name)
		r.named[name] = ir.NamedID(scope.Uniquify(name))
	}
	return r
}

// Named returns the identifier assigned to a component name.
func (r *Registry) Named(name string) (ir.TypeID, bool) {
	id, ok := r.named[name]
	return id, ok
}

// Order returns the component names in assignment order. The returned slice
// is shared; callers must not modify it.
func (r *Registry) Order() []string {
	return r.order
}
