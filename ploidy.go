// Package ploidy turns parsed OpenAPI 3.x documents into a typed,
// graph-structured intermediate representation for code generators.
//
// The pipeline has three stages: a parser (kin-openapi), the IR engine (this
// module), and language-specific emitters (external). The engine resolves
// references and inheritance, invents stable names for anonymous schemas,
// detects reference cycles and decides where indirection must be inserted,
// and exposes a read-only view layer that emitters traverse without touching
// the raw IR.
//
// Quick start:
//
//	import "github.com/linabutler/ploidy"
//
//	spec, g, err := ploidy.BuildGraph("./openapi.yaml", ploidy.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, view := range g.Schemas() {
//		fmt.Println(view.ID(), view.CanDeriveEquality())
//	}
//
// For finer control, use the transform and graph packages directly.
package ploidy

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/linabutler/ploidy/pkg/graph"
	"github.com/linabutler/ploidy/pkg/ir"
	"github.com/linabutler/ploidy/pkg/openapi"
	"github.com/linabutler/ploidy/pkg/transform"
)

// Options configures the transformation.
type Options struct {
	// DateTimeFormat selects the primitive emitted for date-time schemas.
	// Defaults to RFC 3339.
	DateTimeFormat transform.DateTimeFormat
}

func (o Options) config() transform.Config {
	return transform.Config{DateTimeFormat: o.DateTimeFormat}
}

// BuildIR loads a document from a file path or URL and transforms it into an
// IR spec. Non-fatal problems surface as diagnostics on the spec.
func BuildIR(input string, opts Options) (*ir.Spec, error) {
	doc, err := openapi.LoadDocument(input)
	if err != nil {
		return nil, err
	}
	return transform.Transform(doc, opts.config()), nil
}

// BuildIRFromDoc transforms an already-parsed document into an IR spec.
func BuildIRFromDoc(doc *openapi3.T, opts Options) *ir.Spec {
	return transform.Transform(doc, opts.config())
}

// BuildGraph loads a document, transforms it, and builds the type graph.
// The graph borrows the returned spec for its lifetime.
func BuildGraph(input string, opts Options) (*ir.Spec, *graph.Graph, error) {
	spec, err := BuildIR(input, opts)
	if err != nil {
		return nil, nil, err
	}
	return spec, graph.New(spec), nil
}

// ValidateSpec validates an OpenAPI document without transforming it.
func ValidateSpec(input string) error {
	return openapi.ValidateDocument(input)
}
