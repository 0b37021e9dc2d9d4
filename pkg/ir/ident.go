package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeID uniquely identifies one schema in a Spec: either a named schema from
// the document's components section, or an inline schema located by its path.
type TypeID struct {
	// Name is the schema's component name. Empty for inline schemas.
	Name string
	// Path locates an inline schema. Nil for named schemas.
	Path *InlinePath
}

// NamedID returns the identifier for a named component schema.
func NamedID(name string) TypeID {
	return TypeID{Name: name}
}

// InlineID returns the identifier for an inline schema at the given path.
func InlineID(path *InlinePath) TypeID {
	return TypeID{Path: path}
}

// IsInline reports whether this identifier denotes an inline schema.
func (id TypeID) IsInline() bool {
	return id.Path != nil
}

// Key returns the canonical string form of this identifier, used as the map
// key in a Spec. Equal keys denote the same schema.
func (id TypeID) Key() string {
	if id.Path != nil {
		return id.Path.Key()
	}
	return id.Name
}

// String returns a human-readable label for this identifier.
func (id TypeID) String() string {
	if id.Path != nil {
		return id.Path.String()
	}
	return id.Name
}

// RootKind distinguishes the two kinds of inline path roots.
type RootKind int

const (
	// RootType roots the path at a named schema.
	RootType RootKind = iota
	// RootOperation roots the path at an operation.
	RootOperation
)

// InlinePath locates an inline schema relative to a named root: either a
// named schema type, or an operation. Segments describe the traversal from
// the root to the schema's point of use.
type InlinePath struct {
	RootKind RootKind
	// Root is the named schema name, or the operation id.
	Root     string
	Segments []Segment
}

// TypePath returns a path rooted at the named schema type.
func TypePath(name string, segments ...Segment) *InlinePath {
	return &InlinePath{RootKind: RootType, Root: name, Segments: segments}
}

// OperationPath returns a path rooted at the operation with the given id.
func OperationPath(id string, segments ...Segment) *InlinePath {
	return &InlinePath{RootKind: RootOperation, Root: id, Segments: segments}
}

// Child returns a copy of this path extended with one more segment. The
// receiver is not modified; paths are shared between identifiers.
func (p *InlinePath) Child(seg Segment) *InlinePath {
	segments := make([]Segment, 0, len(p.Segments)+1)
	segments = append(segments, p.Segments...)
	segments = append(segments, seg)
	return &InlinePath{RootKind: p.RootKind, Root: p.Root, Segments: segments}
}

// Key returns the canonical string form of this path. Two inline schemas have
// equal keys if and only if they occupy the same location in the document.
func (p *InlinePath) Key() string {
	var b strings.Builder
	if p.RootKind == RootOperation {
		b.WriteString("op:")
	}
	b.WriteString(p.Root)
	for _, seg := range p.Segments {
		b.WriteByte('/')
		b.WriteString(seg.key())
	}
	return b.String()
}

// String returns a pretty label like `User / Field("address") / ArrayItem`.
func (p *InlinePath) String() string {
	var b strings.Builder
	if p.RootKind == RootOperation {
		fmt.Fprintf(&b, "Operation(%q)", p.Root)
	} else {
		b.WriteString(p.Root)
	}
	for _, seg := range p.Segments {
		b.WriteString(" / ")
		b.WriteString(seg.String())
	}
	return b.String()
}

// SegmentKind enumerates the kinds of inline path segments.
type SegmentKind int

const (
	SegField SegmentKind = iota
	SegArrayItem
	SegMapValue
	SegVariant
	SegParameter
	SegRequestBody
	SegResponse
	SegBody
)

// Segment is one step of an inline path. Name carries the field name,
// parameter name, variant tag, or response status; Index carries the
// variant position.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

// FieldSegment locates the schema of a named property.
func FieldSegment(name string) Segment { return Segment{Kind: SegField, Name: name} }

// ArrayItemSegment locates an array's item schema.
func ArrayItemSegment() Segment { return Segment{Kind: SegArrayItem} }

// MapValueSegment locates the value schema of an additionalProperties map.
func MapValueSegment() Segment { return Segment{Kind: SegMapValue} }

// VariantSegment locates a union variant by tag or 1-based position.
func VariantSegment(tag string, index int) Segment {
	return Segment{Kind: SegVariant, Name: tag, Index: index}
}

// ParameterSegment locates an operation parameter's schema.
func ParameterSegment(name string) Segment { return Segment{Kind: SegParameter, Name: name} }

// RequestBodySegment locates an operation's request body schema.
func RequestBodySegment() Segment { return Segment{Kind: SegRequestBody} }

// ResponseSegment locates a response by status code (or "default").
func ResponseSegment(status string) Segment { return Segment{Kind: SegResponse, Name: status} }

// BodySegment locates a response's body schema.
func BodySegment() Segment { return Segment{Kind: SegBody} }

func (s Segment) key() string {
	switch s.Kind {
	case SegField:
		return "field:" + s.Name
	case SegArrayItem:
		return "item"
	case SegMapValue:
		return "value"
	case SegVariant:
		if s.Name != "" {
			return "variant:" + s.Name
		}
		return "variant:" + strconv.Itoa(s.Index)
	case SegParameter:
		return "param:" + s.Name
	case SegRequestBody:
		return "request"
	case SegResponse:
		return "response:" + s.Name
	case SegBody:
		return "body"
	}
	return ""
}

func (s Segment) String() string {
	switch s.Kind {
	case SegField:
		return fmt.Sprintf("Field(%q)", s.Name)
	case SegArrayItem:
		return "ArrayItem"
	case SegMapValue:
		return "MapValue"
	case SegVariant:
		if s.Name != "" {
			return fmt.Sprintf("Variant(%q)", s.Name)
		}
		return fmt.Sprintf("Variant(%d)", s.Index)
	case SegParameter:
		return fmt.Sprintf("Parameter(%q)", s.Name)
	case SegRequestBody:
		return "RequestBody"
	case SegResponse:
		return fmt.Sprintf("Response(%s)", s.Name)
	case SegBody:
		return "Body"
	}
	return "Unknown"
}
