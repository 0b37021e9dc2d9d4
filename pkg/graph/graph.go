// Package graph builds a directed multigraph over an IR spec's schemas and
// operations, and exposes read-only, graph-aware views for emitters.
//
// Nodes are schema identifiers plus one node per operation; edges record how
// one type refers to another. Cycles are first-class: the graph decomposes
// into strongly connected components and picks a deterministic set of field
// edges that need indirection to break each cycle.
package graph

import (
	"sort"

	"github.com/linabutler/ploidy/pkg/ir"
)

type nodeKind int

const (
	nodeSchema nodeKind = iota
	nodeOperation
)

type node struct {
	kind nodeKind
	id   ir.TypeID
	op   *ir.Operation
}

// EdgeKind classifies how a type refers to another.
type EdgeKind int

const (
	// EdgeField is a struct field referencing a schema.
	EdgeField EdgeKind = iota
	// EdgeElement is a container schema referencing its element type.
	EdgeElement
	// EdgeVariant is a union referencing a variant schema.
	EdgeVariant
	// EdgeUses is an operation referencing a schema through a parameter,
	// request body, or response.
	EdgeUses
)

// Edge is one reference between two nodes. Multiple edges between the same
// pair are permitted and meaningful: different fields referencing the same
// type are separate emission decisions.
type Edge struct {
	From, To int
	Kind     EdgeKind
	// Name is the field name or variant tag; Pos is the field or variant
	// position within its parent.
	Name string
	Pos  int
	// Shielded marks references that pass through an array or map, which
	// already provide indirection on their own. A reference wrapped only
	// in Nullable is not shielded.
	Shielded bool
}

// Graph is the type graph of one IR spec. It borrows the spec for its
// lifetime and never mutates it; any number of views may read the graph
// concurrently once it's built.
type Graph struct {
	spec  *ir.Spec
	nodes []node
	index map[string]int
	edges []Edge
	out   [][]int // node -> outgoing edge indices, in insertion order
	in    [][]int

	sccID    []int
	sccSize  []int
	feedback map[int]bool // edge indices that need indirection

	reachable map[int][]int // memoized transitive closures
	usedBy    map[int][]int
	deriveEq  map[int]bool
	deriveDef map[int]derivState
}

// New builds the graph for a spec in one pass over its schemas and
// operations.
func New(spec *ir.Spec) *Graph {
	g := &Graph{
		spec:      spec,
		index:     map[string]int{},
		feedback:  map[int]bool{},
		reachable: map[int][]int{},
		usedBy:    map[int][]int{},
		deriveEq:  map[int]bool{},
		deriveDef: map[int]derivState{},
	}

	for _, id := range spec.IDs() {
		g.index[id.Key()] = len(g.nodes)
		g.nodes = append(g.nodes, node{kind: nodeSchema, id: id})
	}
	for _, op := range spec.Operations {
		g.index[operationKey(op.ID)] = len(g.nodes)
		g.nodes = append(g.nodes, node{kind: nodeOperation, op: op})
	}

	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))
	g.addSchemaEdges()
	g.addOperationEdges()
	g.findSCCs()
	g.pickFeedbackEdges()

	// Fill every memo up front, so that queries only read the graph.
	for n := range g.nodes {
		g.reachableFrom(n)
		g.usedByOf(n)
		g.canDeriveEquality(n)
		g.canDeriveDefault(n)
	}
	return g
}

// Spec returns the spec this graph was built from.
func (g *Graph) Spec() *ir.Spec { return g.spec }

func operationKey(id string) string { return "op\x00" + id }

func (g *Graph) addEdge(e Edge) {
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.out[e.From] = append(g.out[e.From], idx)
	g.in[e.To] = append(g.in[e.To], idx)
}

// addSchemaEdges records every reference from each schema entry.
func (g *Graph) addSchemaEdges() {
	for _, id := range g.spec.IDs() {
		from := g.index[id.Key()]
		ty, _ := g.spec.Lookup(id)
		if ty == nil {
			continue
		}
		switch ty.Kind {
		case ir.KindStruct:
			for pos := range ty.Struct.Fields {
				f := &ty.Struct.Fields[pos]
				g.walkRefs(f.Type, false, func(target ir.TypeID, shielded bool) {
					g.refEdge(from, target, EdgeField, f.Name, pos, shielded)
				})
			}
		case ir.KindTagged:
			for pos := range ty.Tagged.Variants {
				v := &ty.Tagged.Variants[pos]
				tag := ""
				if len(v.Tags) > 0 {
					tag = v.Tags[0]
				}
				g.walkRefs(v.Type, false, func(target ir.TypeID, shielded bool) {
					g.refEdge(from, target, EdgeVariant, tag, pos, shielded)
				})
			}
		case ir.KindUntagged:
			for pos := range ty.Untagged.Variants {
				v := &ty.Untagged.Variants[pos]
				if v.Type == nil {
					continue
				}
				g.walkRefs(v.Type, false, func(target ir.TypeID, shielded bool) {
					g.refEdge(from, target, EdgeVariant, "", pos, shielded)
				})
			}
		case ir.KindArray, ir.KindMap, ir.KindNullable, ir.KindRef:
			g.walkRefs(ty, false, func(target ir.TypeID, shielded bool) {
				g.refEdge(from, target, EdgeElement, "", 0, shielded)
			})
		}
	}
}

func (g *Graph) addOperationEdges() {
	for _, op := range g.spec.Operations {
		from := g.index[operationKey(op.ID)]
		for _, ty := range op.Types() {
			g.walkRefs(ty, false, func(target ir.TypeID, shielded bool) {
				g.refEdge(from, target, EdgeUses, "", 0, shielded)
			})
		}
	}
}

func (g *Graph) refEdge(from int, target ir.TypeID, kind EdgeKind, name string, pos int, shielded bool) {
	to, ok := g.index[target.Key()]
	if !ok {
		// A broken reference; the transformer already reported it.
		return
	}
	g.addEdge(Edge{From: from, To: to, Kind: kind, Name: name, Pos: pos, Shielded: shielded})
}

// walkRefs visits every reference within an embedded type. References under
// arrays and maps are shielded; Nullable doesn't shield.
func (g *Graph) walkRefs(ty *ir.Type, shielded bool, visit func(ir.TypeID, bool)) {
	switch ty.Kind {
	case ir.KindRef:
		visit(ty.Ref, shielded)
	case ir.KindArray, ir.KindMap:
		g.walkRefs(ty.Elem, true, visit)
	case ir.KindNullable:
		g.walkRefs(ty.Elem, shielded, visit)
	}
}

// findSCCs runs an iterative Tarjan decomposition in node order, so
// component identifiers are deterministic for a given spec.
func (g *Graph) findSCCs() {
	n := len(g.nodes)
	g.sccID = make([]int, n)
	for i := range g.sccID {
		g.sccID[i] = -1
	}

	const unvisited = -1
	indexOf := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range indexOf {
		indexOf[i] = unvisited
	}

	var stack []int
	next := 0
	sccCount := 0

	type frame struct {
		v    int
		edge int
	}
	var frames []frame

	for root := 0; root < n; root++ {
		if indexOf[root] != unvisited {
			continue
		}
		frames = append(frames[:0], frame{v: root})
		indexOf[root] = next
		lowlink[root] = next
		next++
		stack = append(stack, root)
		onStack[root] = true

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.edge < len(g.out[f.v]) {
				w := g.edges[g.out[f.v][f.edge]].To
				f.edge++
				if indexOf[w] == unvisited {
					indexOf[w] = next
					lowlink[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					frames = append(frames, frame{v: w})
				} else if onStack[w] && indexOf[w] < lowlink[f.v] {
					lowlink[f.v] = indexOf[w]
				}
				continue
			}

			v := f.v
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].v
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}
			if lowlink[v] == indexOf[v] {
				size := 0
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					g.sccID[w] = sccCount
					size++
					if w == v {
						break
					}
				}
				g.sccSize = append(g.sccSize, size)
				sccCount++
			}
		}
	}
}

// pickFeedbackEdges selects which edges need indirection. Only direct
// (unshielded) field, variant, and element edges within a component can
// force a value-embedding cycle; they're considered in insertion order, and
// an edge joins the feedback set exactly when the kept subgraph already
// connects its target back to its source. Container-shielded references
// never need indirection.
func (g *Graph) pickFeedbackEdges() {
	kept := make([][]int, len(g.nodes)) // node -> kept neighbor nodes

	for idx, e := range g.edges {
		if e.Kind == EdgeUses || e.Shielded {
			continue
		}
		if g.sccID[e.From] != g.sccID[e.To] {
			continue
		}
		if g.sccSize[g.sccID[e.From]] == 1 && e.From != e.To {
			continue
		}
		if g.connects(kept, e.To, e.From) {
			g.feedback[idx] = true
			continue
		}
		kept[e.From] = append(kept[e.From], e.To)
	}
}

// connects reports whether `from` reaches `to` in the kept subgraph.
// `from == to` counts as connected, which marks self-loops as feedback.
func (g *Graph) connects(kept [][]int, from, to int) bool {
	if from == to {
		return true
	}
	seen := map[int]bool{from: true}
	stack := []int{from}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range kept[v] {
			if w == to {
				return true
			}
			if !seen[w] {
				seen[w] = true
				stack = append(stack, w)
			}
		}
	}
	return false
}

// reachableFrom returns the memoized set of nodes reachable from a node via
// any edge. The node itself is included only when a cycle leads back to it.
func (g *Graph) reachableFrom(from int) []int {
	if cached, ok := g.reachable[from]; ok {
		return cached
	}
	result := g.traverse(from, g.out, func(e Edge) int { return e.To })
	g.reachable[from] = result
	return result
}

// usedByOf returns the memoized set of nodes whose reachable set contains
// this node: reachability on the reverse graph.
func (g *Graph) usedByOf(to int) []int {
	if cached, ok := g.usedBy[to]; ok {
		return cached
	}
	result := g.traverse(to, g.in, func(e Edge) int { return e.From })
	g.usedBy[to] = result
	return result
}

// traverse BFS-walks from a node along the given adjacency, excluding the
// start node unless it's re-reached through a cycle.
func (g *Graph) traverse(start int, adjacency [][]int, endpoint func(Edge) int) []int {
	var result []int
	seen := map[int]bool{}
	queue := []int{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, idx := range adjacency[v] {
			w := endpoint(g.edges[idx])
			if seen[w] {
				continue
			}
			seen[w] = true
			result = append(result, w)
			queue = append(queue, w)
		}
	}
	sort.Ints(result)
	return result
}

// inlinesOf returns the inline schema nodes reachable from a node without
// traversing into named schemas, in breadth-first discovery order. These
// are the inline types that "belong to" the node.
func (g *Graph) inlinesOf(start int) []int {
	var result []int
	seen := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, idx := range g.out[v] {
			w := g.edges[idx].To
			if seen[w] {
				continue
			}
			target := g.nodes[w]
			if target.kind != nodeSchema || !target.id.IsInline() {
				// Don't cross into named schemas; their inlines belong
				// to them.
				continue
			}
			seen[w] = true
			result = append(result, w)
			queue = append(queue, w)
		}
	}
	return result
}
