package graph

import "github.com/linabutler/ploidy/pkg/ir"

// SchemaView is a read-only, graph-aware view of one schema. Views borrow
// the graph and spec; they never allocate IR entities, and any number may
// coexist.
type SchemaView struct {
	g    *Graph
	node int
}

// Schemas returns views of every named schema, in spec insertion order.
func (g *Graph) Schemas() []SchemaView {
	var views []SchemaView
	for _, id := range g.spec.IDs() {
		if id.IsInline() {
			continue
		}
		views = append(views, SchemaView{g: g, node: g.index[id.Key()]})
	}
	return views
}

// Lookup returns the view for a schema identifier.
func (g *Graph) Lookup(id ir.TypeID) (SchemaView, bool) {
	node, ok := g.index[id.Key()]
	if !ok || g.nodes[node].kind != nodeSchema {
		return SchemaView{}, false
	}
	return SchemaView{g: g, node: node}, true
}

// Operations returns views of every operation, in spec order.
func (g *Graph) Operations() []OperationView {
	var views []OperationView
	for _, op := range g.spec.Operations {
		views = append(views, OperationView{g: g, node: g.index[operationKey(op.ID)], op: op})
	}
	return views
}

// ID returns the schema's identifier.
func (v SchemaView) ID() ir.TypeID { return v.g.nodes[v.node].id }

// Type returns the schema's raw IR type.
func (v SchemaView) Type() *ir.Type { return v.g.nodeType(v.node) }

// IsInline reports whether the identifier is an inline path.
func (v SchemaView) IsInline() bool { return v.ID().IsInline() }

// Resource returns the schema's resource annotation, when present.
func (v SchemaView) Resource() string { return v.g.nodeResource(v.node) }

// Inlines returns the inline schemas rooted at this type, in discovery
// order.
func (v SchemaView) Inlines() []SchemaView {
	return v.g.schemaViews(v.g.inlinesOf(v.node))
}

// Reachable returns every schema transitively reachable from this one. The
// schema itself is included only when a cycle leads back to it.
func (v SchemaView) Reachable() []SchemaView {
	return v.g.schemaViews(v.g.reachableFrom(v.node))
}

// UsedBy returns every schema whose reachable set contains this one.
func (v SchemaView) UsedBy() []SchemaView {
	return v.g.schemaViews(v.g.usedByOf(v.node))
}

// UsedByOperations returns every operation that directly or transitively
// uses this schema.
func (v SchemaView) UsedByOperations() []OperationView {
	var views []OperationView
	for _, node := range v.g.usedByOf(v.node) {
		if v.g.nodes[node].kind != nodeOperation {
			continue
		}
		views = append(views, OperationView{g: v.g, node: node, op: v.g.nodes[node].op})
	}
	return views
}

// CanDeriveEquality reports whether the schema admits equality and hashing.
func (v SchemaView) CanDeriveEquality() bool { return v.g.canDeriveEquality(v.node) }

// CanDeriveDefault reports whether the schema admits a natural default.
func (v SchemaView) CanDeriveDefault() bool { return v.g.canDeriveDefault(v.node) }

// FeatureGate returns the schema's minimal feature expression; nil means
// always present.
func (v SchemaView) FeatureGate() *FeatureGate { return v.g.featureGateFor(v.node) }

// AsStruct returns a struct view when the schema is a struct.
func (v SchemaView) AsStruct() (StructView, bool) {
	ty := v.Type()
	if ty == nil || ty.Kind != ir.KindStruct {
		return StructView{}, false
	}
	return StructView{SchemaView: v, st: ty.Struct}, true
}

// AsTagged returns a tagged-union view when the schema is a tagged union.
func (v SchemaView) AsTagged() (TaggedView, bool) {
	ty := v.Type()
	if ty == nil || ty.Kind != ir.KindTagged {
		return TaggedView{}, false
	}
	return TaggedView{SchemaView: v, tagged: ty.Tagged}, true
}

// AsUntagged returns an untagged-union view when the schema is an untagged
// union.
func (v SchemaView) AsUntagged() (UntaggedView, bool) {
	ty := v.Type()
	if ty == nil || ty.Kind != ir.KindUntagged {
		return UntaggedView{}, false
	}
	return UntaggedView{SchemaView: v, untagged: ty.Untagged}, true
}

// AsEnum returns an enum view when the schema is a string enum.
func (v SchemaView) AsEnum() (EnumView, bool) {
	ty := v.Type()
	if ty == nil || ty.Kind != ir.KindEnum {
		return EnumView{}, false
	}
	return EnumView{SchemaView: v, enum: ty.Enum}, true
}

func (g *Graph) schemaViews(nodes []int) []SchemaView {
	var views []SchemaView
	for _, node := range nodes {
		if g.nodes[node].kind != nodeSchema {
			continue
		}
		views = append(views, SchemaView{g: g, node: node})
	}
	return views
}

// StructView is a graph-aware view of a struct schema.
type StructView struct {
	SchemaView
	st *ir.Struct
}

// Fields returns views of the struct's fields, in field order.
func (v StructView) Fields() []FieldView {
	views := make([]FieldView, 0, len(v.st.Fields))
	for i := range v.st.Fields {
		views = append(views, FieldView{parent: v, field: &v.st.Fields[i], pos: i})
	}
	return views
}

// Field returns the view of a field by name.
func (v StructView) Field(name string) (FieldView, bool) {
	for i := range v.st.Fields {
		if v.st.Fields[i].Name == name {
			return FieldView{parent: v, field: &v.st.Fields[i], pos: i}, true
		}
	}
	return FieldView{}, false
}

// FieldView is a graph-aware view of one struct field.
type FieldView struct {
	parent StructView
	field  *ir.Field
	pos    int
}

func (v FieldView) Name() string        { return v.field.Name }
func (v FieldView) Type() *ir.Type      { return v.field.Type }
func (v FieldView) Required() bool      { return v.field.Required }
func (v FieldView) Inherited() bool     { return v.field.Inherited }
func (v FieldView) Discriminator() bool { return v.field.Discriminator }
func (v FieldView) Flattened() bool     { return v.field.Flattened }
func (v FieldView) Description() string { return v.field.Description }
func (v FieldView) Default() any        { return v.field.Default }

// Schema returns the view of the schema this field references, unwrapping
// Nullable, when the field is a direct or nullable reference.
func (v FieldView) Schema() (SchemaView, bool) {
	return v.parent.g.refView(v.field.Type)
}

// NeedsIndirection reports whether this field needs indirection to break a
// reference cycle. Fields shielded by arrays or maps never do.
func (v FieldView) NeedsIndirection() bool {
	g := v.parent.g
	for _, idx := range g.out[v.parent.node] {
		e := g.edges[idx]
		if e.Kind == EdgeField && e.Pos == v.pos && g.feedback[idx] {
			return true
		}
	}
	return false
}

// TaggedView is a graph-aware view of a tagged union.
type TaggedView struct {
	SchemaView
	tagged *ir.Tagged
}

// Tag returns the discriminator property name.
func (v TaggedView) Tag() string { return v.tagged.Tag }

// DefaultTag returns the tag assumed when the discriminator is absent, or
// empty when there's no default.
func (v TaggedView) DefaultTag() string { return v.tagged.DefaultTag }

// Variants returns views of the union's variants, in declaration order.
func (v TaggedView) Variants() []VariantView {
	views := make([]VariantView, 0, len(v.tagged.Variants))
	for i := range v.tagged.Variants {
		views = append(views, VariantView{
			g:    v.g,
			name: v.tagged.Variants[i].Name,
			tags: v.tagged.Variants[i].Tags,
			ty:   v.tagged.Variants[i].Type,
			pos:  i,
		})
	}
	return views
}

// UntaggedView is a graph-aware view of an untagged union.
type UntaggedView struct {
	SchemaView
	untagged *ir.Untagged
}

// Variants returns views of the union's variants, in declaration order.
// Variant order is significant for deserialization.
func (v UntaggedView) Variants() []VariantView {
	views := make([]VariantView, 0, len(v.untagged.Variants))
	for i := range v.untagged.Variants {
		views = append(views, VariantView{
			g:    v.g,
			ty:   v.untagged.Variants[i].Type,
			null: v.untagged.Variants[i].Null,
			pos:  i,
		})
	}
	return views
}

// VariantView is a graph-aware view of one union variant.
type VariantView struct {
	g    *Graph
	name string
	tags []string
	ty   *ir.Type
	null bool
	pos  int
}

// Name returns the referenced schema's name, for tagged variants.
func (v VariantView) Name() string { return v.name }

// Tags returns the discriminator values that select this variant.
func (v VariantView) Tags() []string { return v.tags }

// Type returns the variant's raw type; nil for the explicit null variant.
func (v VariantView) Type() *ir.Type { return v.ty }

// IsNull reports whether this is the explicit null variant.
func (v VariantView) IsNull() bool { return v.null }

// Position returns the variant's 0-based declaration position.
func (v VariantView) Position() int { return v.pos }

// Schema returns the view of the schema this variant references.
func (v VariantView) Schema() (SchemaView, bool) {
	return v.g.refView(v.ty)
}

// EnumView is a graph-aware view of a string enum.
type EnumView struct {
	SchemaView
	enum *ir.Enum
}

// Values returns the enum's permitted values, in declaration order.
func (v EnumView) Values() []ir.EnumValue { return v.enum.Values }

// OperationView is a graph-aware view of one operation.
type OperationView struct {
	g    *Graph
	node int
	op   *ir.Operation
}

// Operation returns the raw IR operation.
func (v OperationView) Operation() *ir.Operation { return v.op }

// ID returns the operation's identifier.
func (v OperationView) ID() string { return v.op.ID }

// Resource returns the operation's resource annotation, when present.
func (v OperationView) Resource() string { return v.op.Resource }

// Inlines returns the inline schemas contained within this operation's
// referenced types.
func (v OperationView) Inlines() []SchemaView {
	return v.g.schemaViews(v.g.inlinesOf(v.node))
}

// Reachable returns every schema this operation transitively depends on.
func (v OperationView) Reachable() []SchemaView {
	return v.g.schemaViews(v.g.reachableFrom(v.node))
}

// FeatureGate returns the operation's minimal feature expression; nil means
// always present.
func (v OperationView) FeatureGate() *FeatureGate {
	return v.g.featureGateForOperation(v.node)
}

// Parameters returns views of the operation's parameters.
func (v OperationView) Parameters() []ParameterView {
	views := make([]ParameterView, 0, len(v.op.Params))
	for i := range v.op.Params {
		views = append(views, ParameterView{g: v.g, param: &v.op.Params[i]})
	}
	return views
}

// Responses returns views of the operation's response table.
func (v OperationView) Responses() []ResponseView {
	views := make([]ResponseView, 0, len(v.op.Responses))
	for i := range v.op.Responses {
		views = append(views, ResponseView{g: v.g, response: &v.op.Responses[i]})
	}
	return views
}

// ParameterView is a graph-aware view of one operation parameter.
type ParameterView struct {
	g     *Graph
	param *ir.Parameter
}

func (v ParameterView) Name() string         { return v.param.Name }
func (v ParameterView) In() ir.ParamLocation { return v.param.In }
func (v ParameterView) Required() bool       { return v.param.Required }
func (v ParameterView) Type() *ir.Type       { return v.param.Type }
func (v ParameterView) Description() string  { return v.param.Description }

// Schema returns the view of the schema this parameter references.
func (v ParameterView) Schema() (SchemaView, bool) {
	return v.g.refView(v.param.Type)
}

// ResponseView is a graph-aware view of one operation response.
type ResponseView struct {
	g        *Graph
	response *ir.Response
}

func (v ResponseView) Status() string      { return v.response.Status }
func (v ResponseView) Type() *ir.Type      { return v.response.Type }
func (v ResponseView) Description() string { return v.response.Description }

// Schema returns the view of the schema this response references.
func (v ResponseView) Schema() (SchemaView, bool) {
	return v.g.refView(v.response.Type)
}

// refView unwraps Nullable and follows a Ref to its schema view.
func (g *Graph) refView(ty *ir.Type) (SchemaView, bool) {
	for ty != nil && ty.Kind == ir.KindNullable {
		ty = ty.Elem
	}
	if ty == nil || ty.Kind != ir.KindRef {
		return SchemaView{}, false
	}
	node, ok := g.index[ty.Ref.Key()]
	if !ok {
		return SchemaView{}, false
	}
	return SchemaView{g: g, node: node}, true
}
