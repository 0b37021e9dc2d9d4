package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/linabutler/ploidy/pkg/graph"
	"github.com/linabutler/ploidy/pkg/ir"
	"github.com/linabutler/ploidy/pkg/openapi"
	"github.com/linabutler/ploidy/pkg/transform"
)

// InspectParams holds the inspect command's flags.
type InspectParams struct {
	Input          string
	Format         string
	DateTimeFormat string
}

// RunValidate validates a spec without transforming it.
func RunValidate(input string) error {
	return openapi.ValidateDocument(input)
}

// RunInspect transforms a spec and writes a report of its IR, type graph,
// and diagnostics.
func RunInspect(w io.Writer, p InspectParams) error {
	doc, err := openapi.LoadDocument(p.Input)
	if err != nil {
		return err
	}
	cfg := transform.Config{DateTimeFormat: transform.DateTimeFormat(p.DateTimeFormat)}
	spec := transform.Transform(doc, cfg)
	g := graph.New(spec)

	r := buildReport(spec, g)
	switch p.Format {
	case "", "text":
		return reportTemplate.Execute(w, r)
	case "yaml":
		return yaml.NewEncoder(w).Encode(r)
	default:
		return fmt.Errorf("unknown format %q", p.Format)
	}
}

type report struct {
	Schemas     []schemaReport    `yaml:"schemas"`
	Operations  []operationReport `yaml:"operations"`
	Diagnostics []string          `yaml:"diagnostics,omitempty"`
}

type schemaReport struct {
	ID       string        `yaml:"id"`
	Kind     string        `yaml:"kind"`
	Inline   bool          `yaml:"inline,omitempty"`
	Equality bool          `yaml:"equality"`
	Default  bool          `yaml:"default"`
	Gate     string        `yaml:"gate,omitempty"`
	Fields   []fieldReport `yaml:"fields,omitempty"`
	Inlines  []string      `yaml:"inlines,omitempty"`
}

type fieldReport struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required,omitempty"`
	Indirect bool   `yaml:"indirect,omitempty"`
}

type operationReport struct {
	ID      string   `yaml:"id"`
	Method  string   `yaml:"method"`
	Gate    string   `yaml:"gate,omitempty"`
	Inlines []string `yaml:"inlines,omitempty"`
}

func buildReport(spec *ir.Spec, g *graph.Graph) report {
	var r report
	for _, id := range spec.IDs() {
		view, ok := g.Lookup(id)
		if !ok {
			continue
		}
		ty := view.Type()
		sr := schemaReport{
			ID:       id.String(),
			Kind:     kindName(ty),
			Inline:   id.IsInline(),
			Equality: view.CanDeriveEquality(),
			Default:  view.CanDeriveDefault(),
		}
		if gate := view.FeatureGate(); gate != nil {
			sr.Gate = gate.String()
		}
		if sv, ok := view.AsStruct(); ok {
			for _, f := range sv.Fields() {
				sr.Fields = append(sr.Fields, fieldReport{
					Name:     f.Name(),
					Type:     TypeLabel(f.Type()),
					Required: f.Required(),
					Indirect: f.NeedsIndirection(),
				})
			}
		}
		if !id.IsInline() {
			for _, inline := range view.Inlines() {
				sr.Inlines = append(sr.Inlines, inline.ID().String())
			}
		}
		r.Schemas = append(r.Schemas, sr)
	}
	for _, op := range g.Operations() {
		or := operationReport{ID: op.ID(), Method: op.Operation().Method}
		if gate := op.FeatureGate(); gate != nil {
			or.Gate = gate.String()
		}
		for _, inline := range op.Inlines() {
			or.Inlines = append(or.Inlines, inline.ID().String())
		}
		r.Operations = append(r.Operations, or)
	}
	for _, d := range spec.Diagnostics {
		r.Diagnostics = append(r.Diagnostics, d.String())
	}
	return r
}

func kindName(ty *ir.Type) string {
	if ty == nil {
		return "unknown"
	}
	switch ty.Kind {
	case ir.KindStruct:
		return "struct"
	case ir.KindTagged:
		return "tagged"
	case ir.KindUntagged:
		return "untagged"
	case ir.KindEnum:
		return "enum"
	default:
		return TypeLabel(ty)
	}
}

// TypeLabel renders a compact label for an embedded type.
func TypeLabel(ty *ir.Type) string {
	if ty == nil {
		return "none"
	}
	switch ty.Kind {
	case ir.KindAny:
		return "any"
	case ir.KindPrimitive:
		return ty.Prim.String()
	case ir.KindArray:
		return "array<" + TypeLabel(ty.Elem) + ">"
	case ir.KindMap:
		return "map<" + TypeLabel(ty.Elem) + ">"
	case ir.KindNullable:
		return "nullable<" + TypeLabel(ty.Elem) + ">"
	case ir.KindRef:
		return "ref(" + ty.Ref.String() + ")"
	case ir.KindStruct:
		return "struct"
	case ir.KindTagged:
		return "tagged"
	case ir.KindUntagged:
		return "untagged"
	case ir.KindEnum:
		return "enum"
	}
	return "unknown"
}

var reportTemplate = template.Must(
	template.New("report").Funcs(sprig.TxtFuncMap()).Parse(strings.TrimLeft(`
Schemas ({{ len .Schemas }})
{{- range .Schemas }}
  {{ .ID }} ({{ .Kind }}{{ if .Inline }}, inline{{ end }})
    equality={{ .Equality }} default={{ .Default }}{{ with .Gate }} gate={{ . }}{{ end }}
{{- range .Fields }}
    {{ .Name | trunc 40 }}: {{ .Type }}{{ if .Required }} required{{ end }}{{ if .Indirect }} (indirect){{ end }}
{{- end }}
{{- with .Inlines }}
    inlines: {{ join ", " . }}
{{- end }}
{{- end }}

Operations ({{ len .Operations }})
{{- range .Operations }}
  {{ .Method | upper }} {{ .ID }}{{ with .Gate }} gate={{ . }}{{ end }}
{{- with .Inlines }}
    inlines: {{ join ", " . }}
{{- end }}
{{- end }}
{{- with .Diagnostics }}

Diagnostics ({{ len . }})
{{- range . }}
  {{ . }}
{{- end }}
{{- end }}
`, "\n")))
