package ir

// Kind enumerates the variants of a Type.
type Kind int

const (
	KindAny Kind = iota
	KindPrimitive
	KindArray
	KindMap
	KindNullable
	KindRef
	KindStruct
	KindTagged
	KindUntagged
	KindEnum
)

// Type is a resolved schema type, modeled as a tagged variant: Kind selects
// which payload field is meaningful. Composite kinds (Struct, Tagged,
// Untagged, Enum) only appear as Spec entries; everywhere else they are
// referred to through KindRef.
type Type struct {
	Kind Kind

	// Prim is set for KindPrimitive.
	Prim Primitive
	// Elem is the element type for KindArray, KindMap, and KindNullable.
	Elem *Type
	// Ref is the target identifier for KindRef.
	Ref TypeID

	Struct   *Struct
	Tagged   *Tagged
	Untagged *Untagged
	Enum     *Enum

	// Description is the schema's own documentation, when present.
	Description string
	// Resource is the schema's x-resourceId annotation, when present.
	// Only meaningful on Spec entries.
	Resource string
}

// AnyType returns a type for unresolvable or intentionally open schemas.
func AnyType() *Type { return &Type{Kind: KindAny} }

// Prim returns a primitive type.
func Prim(p Primitive) *Type { return &Type{Kind: KindPrimitive, Prim: p} }

// ArrayOf returns an array type with the given element type.
func ArrayOf(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }

// MapOf returns a string-keyed map type with the given value type.
func MapOf(elem *Type) *Type { return &Type{Kind: KindMap, Elem: elem} }

// NullableOf wraps a type that may be explicitly null on the wire.
func NullableOf(elem *Type) *Type { return &Type{Kind: KindNullable, Elem: elem} }

// RefTo returns a reference to another schema.
func RefTo(id TypeID) *Type { return &Type{Kind: KindRef, Ref: id} }

// Equal reports whether two types are structurally equal. Composite types
// compare by identity of their references, not by recursing into the
// referenced schemas.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Prim == o.Prim
	case KindArray, KindMap, KindNullable:
		return t.Elem.Equal(o.Elem)
	case KindRef:
		return t.Ref.Key() == o.Ref.Key()
	default:
		// Composites and Any only compare equal to themselves.
		return t == o
	}
}

// Primitive enumerates the primitive wire types.
type Primitive int

const (
	PrimString Primitive = iota
	PrimI32
	PrimI64
	PrimF32
	PrimF64
	PrimBool
	PrimBytes
	PrimDate
	PrimDateTime
	PrimUnixSeconds
	PrimUnixMillis
	PrimUnixMicros
	PrimUnixNanos
	PrimURL
	PrimUUID
)

var primitiveNames = map[Primitive]string{
	PrimString:      "string",
	PrimI32:         "i32",
	PrimI64:         "i64",
	PrimF32:         "f32",
	PrimF64:         "f64",
	PrimBool:        "bool",
	PrimBytes:       "bytes",
	PrimDate:        "date",
	PrimDateTime:    "date-time",
	PrimUnixSeconds: "unix-seconds",
	PrimUnixMillis:  "unix-ms",
	PrimUnixMicros:  "unix-us",
	PrimUnixNanos:   "unix-ns",
	PrimURL:         "url",
	PrimUUID:        "uuid",
}

func (p Primitive) String() string { return primitiveNames[p] }

// IsFloat reports whether this primitive is a floating-point type.
func (p Primitive) IsFloat() bool { return p == PrimF32 || p == PrimF64 }

// Struct is a composite with an ordered list of fields. Field order is
// significant: the discriminator (if any) comes first, then fields inherited
// through allOf in linearization order, then the schema's own fields, then
// fields flattened from anyOf branches.
type Struct struct {
	Fields []Field
}

// Field is one property of a struct.
type Field struct {
	Name     string
	Type     *Type
	Required bool
	// Default is the schema's default value, when present.
	Default     any
	Description string
	// Inherited marks fields contributed by an allOf ancestor.
	Inherited bool
	// Discriminator marks the field named by a discriminator, own or inherited.
	Discriminator bool
	// Flattened marks fields merged into the struct rather than nested:
	// fields from an anyOf branch, which are always optional, and the
	// synthetic required `additionalProperties` map field.
	Flattened bool
}

// Tagged is a union with a discriminator property. Each variant references a
// struct; a variant whose struct lacks the discriminator as a string field
// is kept, and reported with a missing-discriminator diagnostic.
type Tagged struct {
	// Tag is the discriminator property name.
	Tag string
	// DefaultTag selects the variant to assume when the discriminator value
	// is absent or unmapped. Empty when no default applies.
	DefaultTag string
	Variants   []TaggedVariant
}

// TaggedVariant is one arm of a tagged union.
type TaggedVariant struct {
	// Name is the referenced schema's name.
	Name string
	// Tags are the discriminator values that select this variant, in
	// mapping order.
	Tags []string
	Type *Type
}

// Untagged is a union without a discriminator. Variant order is significant:
// deserializers try variants in order.
type Untagged struct {
	Variants []UntaggedVariant
}

// HintKind enumerates the naming hints for untagged union variants.
type HintKind int

const (
	HintIndex HintKind = iota
	HintPrimitive
	HintArray
	HintMap
)

// UntaggedVariant is one arm of an untagged union. The hint helps emitters
// pick a descriptive variant name; Index is the 1-based source position.
type UntaggedVariant struct {
	Hint  HintKind
	Prim  Primitive
	Index int
	Type  *Type
	// Null marks the explicit `null` variant.
	Null bool
}

// Enum is an ordered list of permitted string values.
type Enum struct {
	Values []EnumValue
}

// EnumValue is one permitted value of a string enum.
type EnumValue struct {
	Value       string
	Description string
}
