package transform

import (
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/linabutler/ploidy/pkg/ir"
)

// Transform converts a parsed OpenAPI document into an IR spec. Named
// schemas are transformed in deterministic component order; inline schemas
// are registered as they're discovered, in depth-first order; operations
// follow. Problems that don't prevent building a node surface as
// diagnostics on the returned spec, never as errors: the transformation
// always runs to completion.
func Transform(doc *openapi3.T, cfg Config) *ir.Spec {
	t := &Transformer{
		doc:      doc,
		cfg:      cfg,
		spec:     ir.NewSpec(),
		reg:      NewRegistry(doc),
		res:      NewResolver(doc),
		skipRefs: map[string]int{},
	}

	// Reserve named identifiers up front so that they precede every inline
	// schema in the spec's insertion order, no matter when the inline
	// schemas are discovered.
	for _, name := range t.reg.Order() {
		id, _ := t.reg.Named(name)
		t.spec.Add(id, ir.AnyType())
	}
	for _, name := range t.reg.Order() {
		id, _ := t.reg.Named(name)
		ptr := "/components/schemas/" + escapeToken(name)
		t.spec.Add(id, t.transformRoot(id, ptr, doc.Components.Schemas[name]))
	}
	t.checkTaggedVariants()
	t.buildOperations()
	return t.spec
}

// Transformer lowers parsed schemas into IR types, one root schema at a
// time. It's single-threaded and runs to completion; all shared state is
// the spec being built.
type Transformer struct {
	doc  *openapi3.T
	cfg  Config
	spec *ir.Spec
	reg  *Registry
	res  *Resolver
	// skipRefs counts references whose allOf chains are being linearized up
	// the call stack, to break inheritance cycles.
	skipRefs map[string]int
}

func (t *Transformer) transformRoot(id ir.TypeID, ptr string, sr *openapi3.SchemaRef) *ir.Type {
	if sr == nil {
		t.spec.Diag(ir.DiagStructural, ptr, "missing schema")
		return ir.AnyType()
	}
	if sr.Ref != "" {
		// A named alias for another schema.
		return t.refType(ptr, sr.Ref)
	}
	if sr.Value == nil {
		t.spec.Diag(ir.DiagStructural, ptr, "missing schema")
		return ir.AnyType()
	}
	ty := t.transformSchema(id, ptr, sr.Value)
	ty.Resource = extensionString(sr.Value.Extensions, "x-resourceId")
	return ty
}

// transformSchema lowers one schema. The id names the schema if it turns out
// to be composite; simpler shapes (primitives, containers, references) are
// returned directly without registering an entry.
func (t *Transformer) transformSchema(id ir.TypeID, ptr string, s *openapi3.Schema) *ir.Type {
	if ty, ok := t.tryTagged(id, ptr, s); ok {
		return ty
	}
	if ty, ok := t.tryUntagged(id, ptr, s); ok {
		return ty
	}
	if ty, ok := t.tryAnyOf(id, ptr, s); ok {
		return ty
	}
	if ty, ok := t.tryEnum(s); ok {
		return ty
	}
	if ty, ok := t.tryStruct(id, ptr, s, nil); ok {
		return ty
	}
	return t.other(id, ptr, s)
}

// tryTagged lowers a oneOf with a discriminator into a tagged union. Every
// variant must be a reference with at least one discriminator mapping entry
// (or a bare schema name when no mapping is given); otherwise the schema
// falls through to an untagged union.
func (t *Transformer) tryTagged(id ir.TypeID, ptr string, s *openapi3.Schema) (*ir.Type, bool) {
	if len(s.OneOf) == 0 || s.Discriminator == nil || s.Discriminator.PropertyName == "" {
		return nil, false
	}

	// Invert the mapping: ref -> tags, in sorted tag order.
	tagsByRef := map[string][]string{}
	tags := make([]string, 0, len(s.Discriminator.Mapping))
	for tag := range s.Discriminator.Mapping {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		ref := s.Discriminator.Mapping[tag]
		tagsByRef[ref] = append(tagsByRef[ref], tag)
	}

	variants := make([]ir.TaggedVariant, 0, len(s.OneOf))
	for _, sub := range s.OneOf {
		if sub == nil || sub.Ref == "" {
			// An inline variant can't appear in a discriminator mapping;
			// fall through to an untagged union.
			return nil, false
		}
		name, ok := SchemaName(sub.Ref)
		if !ok {
			return nil, false
		}
		variantTags := tagsByRef[sub.Ref]
		if len(variantTags) == 0 {
			if len(s.Discriminator.Mapping) > 0 {
				// Variant missing from an explicit mapping.
				return nil, false
			}
			// No mapping: the bare schema name is the tag.
			variantTags = []string{name}
		}
		variantID, ok := t.reg.Named(name)
		if !ok {
			t.spec.Diag(ir.DiagUnknownPointer, ptr, fmt.Sprintf("unknown variant schema %q", name))
			return nil, false
		}
		variants = append(variants, ir.TaggedVariant{
			Name: name,
			Tags: variantTags,
			Type: ir.RefTo(variantID),
		})
	}

	tagged := &ir.Tagged{
		Tag:        s.Discriminator.PropertyName,
		DefaultTag: defaultTag(s, variants),
		Variants:   variants,
	}
	return &ir.Type{Kind: ir.KindTagged, Tagged: tagged, Description: s.Description}, true
}

// defaultTag picks the variant to assume when the discriminator value is
// absent on the wire: the schema's `default` keyword when it names a tag,
// otherwise none.
func defaultTag(s *openapi3.Schema, variants []ir.TaggedVariant) string {
	value, ok := s.Default.(string)
	if !ok {
		return ""
	}
	for _, v := range variants {
		for _, tag := range v.Tags {
			if tag == value {
				return value
			}
		}
	}
	return ""
}

// tryUntagged lowers a oneOf without a usable discriminator into an untagged
// union. Single-variant unions unwrap; a pair of one type and `null`
// simplifies to Nullable.
func (t *Transformer) tryUntagged(id ir.TypeID, ptr string, s *openapi3.Schema) (*ir.Type, bool) {
	if len(s.OneOf) == 0 {
		return nil, false
	}

	var variants []ir.UntaggedVariant
	for i, sub := range s.OneOf {
		index := i + 1
		subPtr := fmt.Sprintf("%s/oneOf/%d", ptr, i)
		if sub != nil && sub.Ref == "" && sub.Value != nil && isNullOnly(sub.Value) {
			variants = append(variants, ir.UntaggedVariant{Null: true, Index: index})
			continue
		}
		ty := t.transformChild(id, ir.VariantSegment("", index), subPtr, sub)
		variants = append(variants, untaggedVariant(ty, index))
	}

	switch {
	case len(variants) == 0:
		return ir.AnyType(), true
	case len(variants) == 1 && variants[0].Null:
		return ir.AnyType(), true
	case len(variants) == 1:
		return variants[0].Type, true
	case len(variants) == 2 && variants[0].Null != variants[1].Null:
		inner := variants[0].Type
		if variants[0].Null {
			inner = variants[1].Type
		}
		return ir.NullableOf(inner), true
	}

	untagged := &ir.Untagged{Variants: variants}
	return &ir.Type{Kind: ir.KindUntagged, Untagged: untagged, Description: s.Description}, true
}

// untaggedVariant wraps a lowered variant type with its naming hint.
func untaggedVariant(ty *ir.Type, index int) ir.UntaggedVariant {
	v := ir.UntaggedVariant{Index: index, Type: ty}
	switch ty.Kind {
	case ir.KindPrimitive:
		v.Hint = ir.HintPrimitive
		v.Prim = ty.Prim
	case ir.KindArray:
		v.Hint = ir.HintArray
	case ir.KindMap:
		v.Hint = ir.HintMap
	default:
		v.Hint = ir.HintIndex
	}
	return v
}

// tryAnyOf lowers an anyOf into a struct with flattened optional fields.
// Each branch must itself be a struct (or a reference to one); its fields
// are merged into the outer struct, all optional and marked as flattened.
// A single-branch anyOf unwraps to the branch type.
func (t *Transformer) tryAnyOf(id ir.TypeID, ptr string, s *openapi3.Schema) (*ir.Type, bool) {
	if len(s.AnyOf) == 0 {
		return nil, false
	}

	if len(s.AnyOf) == 1 {
		// A single-variant anyOf unwraps to the variant type. This
		// preserves type references that would otherwise become Any.
		sub := s.AnyOf[0]
		if sub != nil && sub.Ref != "" {
			return t.refType(ptr+"/anyOf/0", sub.Ref), true
		}
		if sub != nil && sub.Value != nil {
			return t.transformSchema(id, ptr+"/anyOf/0", sub.Value), true
		}
		return ir.AnyType(), true
	}

	var flattened []ir.Field
	for i, sub := range s.AnyOf {
		subPtr := fmt.Sprintf("%s/anyOf/%d", ptr, i)
		branch, ok := t.anyOfBranch(subPtr, sub)
		if !ok {
			continue
		}
		branchFields, followed := t.allFields(subPtr, branch)
		for ref := range followed {
			t.skipRefs[ref]++
		}
		for _, bf := range branchFields {
			fieldPtr := subPtr + "/properties/" + escapeToken(bf.name)
			flattened = append(flattened, ir.Field{
				Name:        bf.name,
				Type:        t.fieldType(id, bf.name, fieldPtr, bf.schema),
				Required:    false,
				Flattened:   true,
				Description: fieldDescription(bf.schema),
				Default:     fieldDefault(bf.schema),
			})
		}
		for ref := range followed {
			t.skipRefs[ref]--
		}
	}

	if flattened == nil {
		// Every branch was rejected; keep an empty struct so the schema
		// still has a well-formed entry.
		flattened = []ir.Field{}
	}
	ty, _ := t.tryStruct(id, ptr, s, flattened)
	return ty, true
}

// anyOfBranch resolves one anyOf branch and checks that it's a struct.
// Non-struct branches (primitives, unions, bare references to them) are
// rejected with a non-struct-any-of-branch diagnostic.
func (t *Transformer) anyOfBranch(ptr string, sub *openapi3.SchemaRef) (*openapi3.Schema, bool) {
	if sub == nil {
		return nil, false
	}
	schema := sub.Value
	if sub.Ref != "" {
		_, resolved, err := t.res.Schema(sub.Ref)
		if err != nil {
			t.diagRef(ptr, err)
			return nil, false
		}
		schema = resolved
	}
	if schema == nil {
		t.spec.Diag(ir.DiagStructural, ptr, "missing anyOf branch schema")
		return nil, false
	}
	if len(schema.Properties) == 0 && len(schema.AllOf) == 0 {
		t.spec.Diag(ir.DiagNonStructAnyOfBranch, ptr, "anyOf branch is not a struct")
		return nil, false
	}
	if len(schema.OneOf) > 0 || len(schema.AnyOf) > 0 {
		// Polymorphic branches aren't supported for flattening.
		t.spec.Diag(ir.DiagNonStructAnyOfBranch, ptr, "anyOf branch is itself polymorphic")
		return nil, false
	}
	return schema, true
}

// tryEnum lowers an enum schema. Non-string values are coerced to their
// string representations for portability.
func (t *Transformer) tryEnum(s *openapi3.Schema) (*ir.Type, bool) {
	if len(s.Enum) == 0 {
		return nil, false
	}
	values := make([]ir.EnumValue, 0, len(s.Enum))
	for _, value := range s.Enum {
		values = append(values, ir.EnumValue{Value: fmt.Sprint(value)})
	}
	ty := &ir.Type{Kind: ir.KindEnum, Enum: &ir.Enum{Values: values}, Description: s.Description}
	if s.Nullable {
		return ir.NullableOf(ty), true
	}
	return ty, true
}

// tryStruct lowers a plain object schema (or an allOf composition) into a
// struct. Field order is: the discriminator first, then fields inherited
// through allOf in linearization order, then own fields, then any
// anyOf-flattened fields passed by the caller.
func (t *Transformer) tryStruct(id ir.TypeID, ptr string, s *openapi3.Schema, flattened []ir.Field) (*ir.Type, bool) {
	if s.Properties == nil && len(s.AllOf) == 0 && flattened == nil {
		return nil, false
	}

	linearized, followed := t.allFields(ptr, s)
	for ref := range followed {
		t.skipRefs[ref]++
	}
	defer func() {
		for ref := range followed {
			t.skipRefs[ref]--
		}
	}()

	fields := make([]ir.Field, 0, len(linearized)+len(flattened)+1)
	for _, sf := range linearized {
		fieldPtr := ptr + "/properties/" + escapeToken(sf.name)
		fields = append(fields, ir.Field{
			Name:          sf.name,
			Type:          t.fieldType(id, sf.name, fieldPtr, sf.schema),
			Required:      sf.required,
			Inherited:     sf.inherited,
			Discriminator: sf.discriminator,
			Description:   fieldDescription(sf.schema),
			Default:       fieldDefault(sf.schema),
		})
	}

	// The discriminator leads, keeping the relative order of the rest.
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Discriminator && !fields[j].Discriminator
	})

	// Flattened anyOf fields trail, skipping names the struct already has.
	names := map[string]bool{}
	for i := range fields {
		names[fields[i].Name] = true
	}
	for _, f := range flattened {
		if names[f.Name] {
			continue
		}
		names[f.Name] = true
		fields = append(fields, f)
	}

	if extra, ok := t.additionalField(id, ptr, s); ok {
		fields = append(fields, extra)
	}

	st := &ir.Struct{Fields: fields}
	return &ir.Type{Kind: ir.KindStruct, Struct: st, Description: s.Description}, true
}

// additionalField lowers additionalProperties declared alongside properties
// into a synthetic flattened map field.
func (t *Transformer) additionalField(id ir.TypeID, ptr string, s *openapi3.Schema) (ir.Field, bool) {
	base := childPath(id, ir.FieldSegment("additionalProperties"))
	value, ok := t.additionalValueType(ir.InlineID(base.Child(ir.MapValueSegment())), ptr, s)
	if !ok {
		return ir.Field{}, false
	}
	return ir.Field{
		Name:      "additionalProperties",
		Type:      ir.MapOf(value),
		Required:  true,
		Flattened: true,
	}, true
}

// additionalValueType returns the map value type for a schema's
// additionalProperties, or false when the schema declares none. The valueID
// names the value schema if it turns out to be composite.
func (t *Transformer) additionalValueType(valueID ir.TypeID, ptr string, s *openapi3.Schema) (*ir.Type, bool) {
	ap := s.AdditionalProperties
	switch {
	case ap.Schema != nil:
		return t.transformChildAt(valueID, ptr+"/additionalProperties", ap.Schema), true
	case ap.Has != nil && *ap.Has:
		return ir.AnyType(), true
	}
	return nil, false
}

// other lowers everything that isn't a composition: primitives, arrays,
// maps, and OpenAPI 3.1 type arrays.
func (t *Transformer) other(id ir.TypeID, ptr string, s *openapi3.Schema) *ir.Type {
	var types []string
	if s.Type != nil {
		types = s.Type.Slice()
	}

	nullable := s.Nullable
	var variants []*ir.Type
	for _, name := range types {
		switch name {
		case "null":
			nullable = true
		case "string":
			variants = append(variants, ir.Prim(t.stringPrimitive(ptr, s.Format)))
		case "integer":
			variants = append(variants, ir.Prim(t.integerPrimitive(ptr, s.Format)))
		case "number":
			variants = append(variants, ir.Prim(t.numberPrimitive(ptr, s.Format)))
		case "boolean":
			variants = append(variants, ir.Prim(ir.PrimBool))
		case "array":
			variants = append(variants, t.arrayType(id, ptr, s))
		case "object":
			if value, ok := t.additionalValueType(ir.InlineID(childPath(id, ir.MapValueSegment())), ptr, s); ok {
				variants = append(variants, ir.MapOf(value))
			} else {
				variants = append(variants, ir.AnyType())
			}
		default:
			t.spec.Diag(ir.DiagSemanticUnknown, ptr, fmt.Sprintf("unrecognized type %q", name))
			variants = append(variants, ir.AnyType())
		}
	}

	switch {
	case len(variants) == 0:
		// An empty `type` is invalid in JSON Schema, but we treat it
		// as "any value".
		return ir.AnyType()
	case len(variants) == 1 && nullable:
		return ir.NullableOf(variants[0])
	case len(variants) == 1:
		return variants[0]
	}

	untagged := &ir.Untagged{}
	for i, ty := range variants {
		untagged.Variants = append(untagged.Variants, untaggedVariant(ty, i+1))
	}
	if nullable {
		untagged.Variants = append(untagged.Variants, ir.UntaggedVariant{Null: true, Index: len(variants) + 1})
	}
	return &ir.Type{Kind: ir.KindUntagged, Untagged: untagged, Description: s.Description}
}

func (t *Transformer) arrayType(id ir.TypeID, ptr string, s *openapi3.Schema) *ir.Type {
	if s.Items == nil {
		return ir.ArrayOf(ir.AnyType())
	}
	return ir.ArrayOf(t.transformChild(id, ir.ArrayItemSegment(), ptr+"/items", s.Items))
}

func (t *Transformer) stringPrimitive(ptr, format string) ir.Primitive {
	switch format {
	case "":
		return ir.PrimString
	case "date-time":
		return t.cfg.dateTimePrimitive()
	case "date":
		return ir.PrimDate
	case "uri", "url":
		return ir.PrimURL
	case "uuid":
		return ir.PrimUUID
	case "byte", "binary":
		return ir.PrimBytes
	default:
		t.spec.Diag(ir.DiagSemanticUnknown, ptr, fmt.Sprintf("unrecognized string format %q", format))
		return ir.PrimString
	}
}

func (t *Transformer) integerPrimitive(ptr, format string) ir.Primitive {
	switch format {
	case "", "int32":
		return ir.PrimI32
	case "int64":
		return ir.PrimI64
	case "unix-time":
		return ir.PrimUnixSeconds
	default:
		t.spec.Diag(ir.DiagSemanticUnknown, ptr, fmt.Sprintf("unrecognized integer format %q", format))
		return ir.PrimI32
	}
}

func (t *Transformer) numberPrimitive(ptr, format string) ir.Primitive {
	switch format {
	case "", "double":
		return ir.PrimF64
	case "float":
		return ir.PrimF32
	default:
		t.spec.Diag(ir.DiagSemanticUnknown, ptr, fmt.Sprintf("unrecognized number format %q", format))
		return ir.PrimF64
	}
}

// fieldType lowers a property schema, extending the inline path with the
// field's name.
func (t *Transformer) fieldType(id ir.TypeID, name, ptr string, sr *openapi3.SchemaRef) *ir.Type {
	return t.transformChild(id, ir.FieldSegment(name), ptr, sr)
}

// transformChild lowers a subschema at the given segment of the parent's
// inline path. References become Ref types; composite subschemas are
// registered in the spec under a fresh inline identifier, and the returned
// type is a reference to it; simpler shapes are returned directly.
func (t *Transformer) transformChild(id ir.TypeID, seg ir.Segment, ptr string, sr *openapi3.SchemaRef) *ir.Type {
	return t.transformChildAt(ir.InlineID(childPath(id, seg)), ptr, sr)
}

func (t *Transformer) transformChildAt(childID ir.TypeID, ptr string, sr *openapi3.SchemaRef) *ir.Type {
	if sr == nil {
		return ir.AnyType()
	}
	if sr.Ref != "" {
		return t.refType(ptr, sr.Ref)
	}
	if sr.Value == nil {
		return ir.AnyType()
	}

	ty := t.transformSchema(childID, ptr, sr.Value)
	switch ty.Kind {
	case ir.KindStruct, ir.KindTagged, ir.KindUntagged, ir.KindEnum:
		t.spec.Add(childID, ty)
		return ir.RefTo(childID)
	case ir.KindNullable:
		// An inline nullable composite still gets its own entry.
		switch ty.Elem.Kind {
		case ir.KindStruct, ir.KindTagged, ir.KindUntagged, ir.KindEnum:
			t.spec.Add(childID, ty.Elem)
			return ir.NullableOf(ir.RefTo(childID))
		}
	}
	return ty
}

// refType lowers a $ref to a Ref type, wrapping in Nullable when the
// referenced schema is explicitly nullable. Unresolvable references degrade
// to Any with a diagnostic.
func (t *Transformer) refType(ptr, ref string) *ir.Type {
	name, schema, err := t.res.Schema(ref)
	if err != nil {
		t.diagRef(ptr, err)
		return ir.AnyType()
	}
	id, ok := t.reg.Named(name)
	if !ok {
		t.spec.Diag(ir.DiagUnknownPointer, ptr, fmt.Sprintf("unknown schema %q", name))
		return ir.AnyType()
	}
	if schema.Nullable {
		return ir.NullableOf(ir.RefTo(id))
	}
	return ir.RefTo(id)
}

// diagRef turns a resolver error into the matching diagnostic.
func (t *Transformer) diagRef(ptr string, err error) {
	kind := ir.DiagUnknownPointer
	switch {
	case errors.Is(err, ErrMalformedPointer):
		kind = ir.DiagMalformedPointer
	case errors.Is(err, ErrCyclicResolution):
		kind = ir.DiagCyclicResolution
	}
	t.spec.Diag(kind, ptr, err.Error())
}

// checkTaggedVariants enforces that every tagged union variant references a
// struct carrying the discriminator property. Non-struct variants are
// removed with a diagnostic; structs missing the discriminator keep the
// variant but report it.
func (t *Transformer) checkTaggedVariants() {
	for _, id := range t.spec.IDs() {
		ty, _ := t.spec.Lookup(id)
		if ty == nil || ty.Kind != ir.KindTagged {
			continue
		}
		tagged := ty.Tagged
		kept := tagged.Variants[:0]
		for _, variant := range tagged.Variants {
			target := t.resolveEntry(variant.Type)
			if target == nil || target.Kind != ir.KindStruct {
				t.spec.Diag(ir.DiagNonStructDiscriminatedVariant, "/components/schemas/"+escapeToken(variant.Name),
					fmt.Sprintf("discriminated variant %q is not a struct", variant.Name))
				continue
			}
			if !t.hasDiscriminatorField(target.Struct, tagged.Tag) {
				t.spec.Diag(ir.DiagMissingDiscriminator, "/components/schemas/"+escapeToken(variant.Name),
					fmt.Sprintf("variant %q lacks discriminator property %q", variant.Name, tagged.Tag))
			}
			kept = append(kept, variant)
		}
		tagged.Variants = kept
	}
}

// resolveEntry follows Ref and Nullable wrappers to the spec entry they
// denote, bounded against alias cycles.
func (t *Transformer) resolveEntry(ty *ir.Type) *ir.Type {
	for hops := 0; ty != nil && hops < maxRefHops; hops++ {
		switch ty.Kind {
		case ir.KindRef:
			next, ok := t.spec.Lookup(ty.Ref)
			if !ok {
				return nil
			}
			ty = next
		case ir.KindNullable:
			ty = ty.Elem
		default:
			return ty
		}
	}
	return nil
}

// hasDiscriminatorField reports whether a struct carries the discriminator
// as a string field (or a reference to a string enum).
func (t *Transformer) hasDiscriminatorField(st *ir.Struct, tag string) bool {
	for i := range st.Fields {
		if st.Fields[i].Name != tag {
			continue
		}
		target := t.resolveEntry(st.Fields[i].Type)
		return target != nil && (target.Kind == ir.KindEnum ||
			(target.Kind == ir.KindPrimitive && target.Prim == ir.PrimString))
	}
	return false
}

// childPath extends an identifier's inline path with one segment, rooting a
// fresh path when the parent is a named schema.
func childPath(id ir.TypeID, seg ir.Segment) *ir.InlinePath {
	if id.Path != nil {
		return id.Path.Child(seg)
	}
	return ir.TypePath(id.Name, seg)
}

// isNullOnly reports whether a schema's type is exactly `null`.
func isNullOnly(s *openapi3.Schema) bool {
	if s.Type == nil {
		return false
	}
	types := s.Type.Slice()
	return len(types) == 1 && types[0] == "null"
}

func fieldDescription(sr *openapi3.SchemaRef) string {
	if sr != nil && sr.Value != nil {
		return sr.Value.Description
	}
	return ""
}

func fieldDefault(sr *openapi3.SchemaRef) any {
	if sr != nil && sr.Value != nil {
		return sr.Value.Default
	}
	return nil
}

// extensionString reads a string-valued vendor extension.
func extensionString(extensions map[string]any, key string) string {
	if value, ok := extensions[key].(string); ok {
		return value
	}
	return ""
}
