package graph

import "github.com/linabutler/ploidy/pkg/ir"

// derivState tracks the fixed-point computation for defaultability.
type derivState int

const (
	derivUnknown derivState = iota
	derivInProgress
	derivTrue
	derivFalse
)

// canDeriveEquality reports whether a schema admits equality and hashing: no
// floating-point descendants and no Any descendants, across everything
// reachable from it.
func (g *Graph) canDeriveEquality(node int) bool {
	if cached, ok := g.deriveEq[node]; ok {
		return cached
	}
	result := g.typeHashable(g.nodeType(node))
	if result {
		for _, other := range g.reachableFrom(node) {
			if g.nodes[other].kind != nodeSchema {
				continue
			}
			if !g.typeHashable(g.nodeType(other)) {
				result = false
				break
			}
		}
	}
	g.deriveEq[node] = result
	return result
}

// typeHashable scans one schema entry's embedded types, without following
// references; reachable entries are checked separately.
func (g *Graph) typeHashable(ty *ir.Type) bool {
	if ty == nil {
		return true
	}
	switch ty.Kind {
	case ir.KindAny:
		return false
	case ir.KindPrimitive:
		return !ty.Prim.IsFloat()
	case ir.KindArray, ir.KindMap, ir.KindNullable:
		return g.typeHashable(ty.Elem)
	case ir.KindStruct:
		for i := range ty.Struct.Fields {
			if !g.typeHashable(ty.Struct.Fields[i].Type) {
				return false
			}
		}
	case ir.KindUntagged:
		for i := range ty.Untagged.Variants {
			if !g.typeHashable(ty.Untagged.Variants[i].Type) {
				return false
			}
		}
	}
	return true
}

// canDeriveDefault reports whether a schema admits a natural default: every
// required non-discriminator field is itself defaultable. Optional fields,
// arrays, and maps always default to absent or empty. Cycles resolve
// optimistically: a type in a cycle is defaultable unless some non-cycle
// path says otherwise.
func (g *Graph) canDeriveDefault(node int) bool {
	switch g.deriveDef[node] {
	case derivTrue:
		return true
	case derivFalse:
		return false
	case derivInProgress:
		return true
	}
	g.deriveDef[node] = derivInProgress
	result := g.typeDefaultable(g.nodeType(node))
	if result {
		g.deriveDef[node] = derivTrue
	} else {
		g.deriveDef[node] = derivFalse
	}
	return result
}

func (g *Graph) typeDefaultable(ty *ir.Type) bool {
	if ty == nil {
		return true
	}
	switch ty.Kind {
	case ir.KindNullable, ir.KindArray, ir.KindMap:
		// Wrappers default to absent or empty regardless of the element.
		return true
	case ir.KindAny:
		return true
	case ir.KindPrimitive:
		// A URL has no sensible zero value; other primitives do.
		return ty.Prim != ir.PrimURL
	case ir.KindRef:
		target, ok := g.index[ty.Ref.Key()]
		if !ok {
			return false
		}
		return g.canDeriveDefault(target)
	case ir.KindStruct:
		for i := range ty.Struct.Fields {
			f := &ty.Struct.Fields[i]
			if !f.Required || f.Discriminator {
				continue
			}
			if !g.typeDefaultable(f.Type) {
				return false
			}
		}
		return true
	default:
		// Enums and unions have no natural default variant.
		return false
	}
}

func (g *Graph) nodeType(node int) *ir.Type {
	if g.nodes[node].kind != nodeSchema {
		return nil
	}
	ty, _ := g.spec.Lookup(g.nodes[node].id)
	return ty
}
