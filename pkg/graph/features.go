package graph

import (
	"sort"
	"strings"
)

// DefaultResource is the resource name reserved for always-present items.
// Anything associated with it is never gated, because gating it would make
// it unreachable when individual features are enabled selectively.
const DefaultResource = "default"

// GateKind enumerates the shapes of a feature expression.
type GateKind int

const (
	// GateSingle requires one feature.
	GateSingle GateKind = iota
	// GateAnyOf requires at least one of several features.
	GateAnyOf
	// GateAllOf requires all of several features.
	GateAllOf
	// GateOwnAndUsedBy requires the item's own feature plus at least one
	// of the features of the operations that use it.
	GateOwnAndUsedBy
)

// FeatureGate is a minimal feature expression for one schema or operation:
// the item is required exactly when the expression holds over the enabled
// resources. A nil gate means the item is always present.
type FeatureGate struct {
	Kind GateKind
	// Own is the item's own resource, for GateOwnAndUsedBy.
	Own string
	// Features are the clause's resources, sorted.
	Features []string
}

func (fg *FeatureGate) String() string {
	if fg == nil {
		return "always"
	}
	quote := func(names []string) string {
		quoted := make([]string, len(names))
		for i, name := range names {
			quoted[i] = `"` + name + `"`
		}
		return strings.Join(quoted, ", ")
	}
	switch fg.Kind {
	case GateSingle:
		return `feature("` + fg.Features[0] + `")`
	case GateAnyOf:
		return "any(" + quote(fg.Features) + ")"
	case GateAllOf:
		return "all(" + quote(fg.Features) + ")"
	case GateOwnAndUsedBy:
		return `all("` + fg.Own + `", any(` + quote(fg.Features) + "))"
	}
	return "always"
}

// featureGateFor computes the gate for a schema node.
//
// Resources propagate two ways. Forward: a schema's own x-resourceId gates
// the schema, and feature dependencies handle transitivity (the Stripe
// style). Backward: an operation's x-resource-name gates the types it
// transitively uses; a type used by several such operations needs any one
// of their features. Mixing both produces a compound own-and-used-by gate.
func (g *Graph) featureGateFor(node int) *FeatureGate {
	// A type with a transitive ungated root dependent can't be gated: an
	// "ungated root" has no resource of its own and isn't used by any
	// operation with a resource, so it's always present, and everything it
	// depends on must be, too.
	if g.hasUngatedRootDependent(node) {
		return nil
	}

	usedBy := g.operationFeatures(node)

	own := g.nodeResource(node)
	if own != "" {
		if len(usedBy) > 0 {
			return ownAndUsedByGate(own, usedBy)
		}
		return singleGate(own)
	}

	// Unannotated: propagate backward along used_by. The node is required
	// when any resource-annotated dependent (schema or operation) is
	// enabled, so its expression is the disjunction of theirs, simplified
	// by the feature-dependency relation.
	var pairs []resourcePair
	for _, dep := range g.usedByOf(node) {
		if g.nodes[dep].kind != nodeSchema {
			continue
		}
		if resource := g.nodeResource(dep); resource != "" {
			pairs = append(pairs, resourcePair{feature: resource, node: dep})
		}
	}
	features := map[string]bool{}
	for _, feature := range usedBy {
		features[feature] = true
	}
	for _, feature := range g.reduceDisjunctionFeatures(pairs) {
		features[feature] = true
	}
	if len(features) > 0 {
		return anyOfGate(sortedFeatures(features))
	}

	if g.nodes[node].id.IsInline() {
		// An inline type nothing gated refers to; gate it by the named
		// resources it transitively depends on, like an operation.
		return allOfGate(g.reduceTransitiveFeatures(g.resourceDependencies(node)))
	}
	return nil
}

// featureGateForOperation computes the gate for an operation node: the
// conjunction of the features of every resource-annotated type it depends
// on, reduced by the feature-dependency relation.
func (g *Graph) featureGateForOperation(node int) *FeatureGate {
	return allOfGate(g.reduceTransitiveFeatures(g.resourceDependencies(node)))
}

// hasUngatedRootDependent reports whether some schema that transitively
// depends on this node is itself always present: no resource of its own, no
// resource-annotated operation using it, and no resource-annotated schema
// depending on it. An always-present dependent forces everything it
// references to be always present, too.
func (g *Graph) hasUngatedRootDependent(node int) bool {
	for _, dep := range g.usedByOf(node) {
		if g.nodes[dep].kind != nodeSchema {
			continue
		}
		if g.nodeResource(dep) != "" {
			continue
		}
		if len(g.operationFeatures(dep)) > 0 {
			continue
		}
		ungated := true
		for _, user := range g.usedByOf(dep) {
			if g.nodes[user].kind == nodeSchema && g.nodeResource(user) != "" {
				ungated = false
				break
			}
		}
		if ungated {
			return true
		}
	}
	return false
}

// operationFeatures collects the resources of every operation that
// transitively uses a node, sorted and deduplicated.
func (g *Graph) operationFeatures(node int) []string {
	set := map[string]bool{}
	for _, user := range g.usedByOf(node) {
		if g.nodes[user].kind != nodeOperation {
			continue
		}
		if resource := g.nodes[user].op.Resource; resource != "" {
			set[resource] = true
		}
	}
	return sortedFeatures(set)
}

// resourcePair is one resource-annotated schema a node depends on.
type resourcePair struct {
	feature string
	node    int
}

// resourceDependencies collects the node's transitive schema dependencies
// that carry a resource annotation.
func (g *Graph) resourceDependencies(node int) []resourcePair {
	var pairs []resourcePair
	for _, dep := range g.reachableFrom(node) {
		if g.nodes[dep].kind != nodeSchema {
			continue
		}
		if resource := g.nodeResource(dep); resource != "" {
			pairs = append(pairs, resourcePair{feature: resource, node: dep})
		}
	}
	return pairs
}

// reduceTransitiveFeatures removes features implied by other features under
// the feature-dependency relation: if feature A's type depends on feature
// B's type, enabling A already enables B, so B is redundant. Types that
// depend on each other in a cycle tie-break by the lexicographically lower
// feature name.
func (g *Graph) reduceTransitiveFeatures(pairs []resourcePair) []string {
	set := map[string]bool{}
	for i, pair := range pairs {
		redundant := false
		for j, other := range pairs {
			if i == j {
				continue
			}
			if !g.dependsOn(other.node, pair.node) {
				continue
			}
			if g.dependsOn(pair.node, other.node) {
				// A cycle; the lower feature name wins.
				if other.feature < pair.feature {
					redundant = true
					break
				}
				continue
			}
			redundant = true
			break
		}
		if !redundant {
			set[pair.feature] = true
		}
	}
	return sortedFeatures(set)
}

// reduceDisjunctionFeatures simplifies a disjunction's clauses: a clause
// whose type depends on another clause's type is redundant, because
// enabling its feature already enables the other one, which triggers the
// disjunction on its own. Mutual dependency ties break toward the
// lexicographically lower feature name.
func (g *Graph) reduceDisjunctionFeatures(pairs []resourcePair) []string {
	set := map[string]bool{}
	for i, pair := range pairs {
		redundant := false
		for j, other := range pairs {
			if i == j {
				continue
			}
			if !g.dependsOn(pair.node, other.node) {
				continue
			}
			if g.dependsOn(other.node, pair.node) {
				// A cycle; the lower feature name wins.
				if other.feature < pair.feature {
					redundant = true
					break
				}
				continue
			}
			redundant = true
			break
		}
		if !redundant {
			set[pair.feature] = true
		}
	}
	return sortedFeatures(set)
}

// dependsOn reports whether node a transitively depends on node b.
func (g *Graph) dependsOn(a, b int) bool {
	for _, dep := range g.reachableFrom(a) {
		if dep == b {
			return true
		}
	}
	return false
}

func (g *Graph) nodeResource(node int) string {
	ty := g.nodeType(node)
	if ty == nil {
		return ""
	}
	return ty.Resource
}

func sortedFeatures(set map[string]bool) []string {
	features := make([]string, 0, len(set))
	for feature := range set {
		features = append(features, feature)
	}
	sort.Strings(features)
	return features
}

func singleGate(feature string) *FeatureGate {
	if feature == DefaultResource {
		return nil
	}
	return &FeatureGate{Kind: GateSingle, Features: []string{feature}}
}

func anyOfGate(features []string) *FeatureGate {
	if len(features) == 0 || contains(features, DefaultResource) {
		return nil
	}
	if len(features) == 1 {
		return singleGate(features[0])
	}
	return &FeatureGate{Kind: GateAnyOf, Features: features}
}

func allOfGate(features []string) *FeatureGate {
	if len(features) == 0 || contains(features, DefaultResource) {
		return nil
	}
	if len(features) == 1 {
		return singleGate(features[0])
	}
	return &FeatureGate{Kind: GateAllOf, Features: features}
}

func ownAndUsedByGate(own string, usedBy []string) *FeatureGate {
	if own == DefaultResource || contains(usedBy, DefaultResource) {
		return nil
	}
	if len(usedBy) == 0 {
		return singleGate(own)
	}
	if len(usedBy) == 1 {
		return allOfGate(sortedFeatures(map[string]bool{own: true, usedBy[0]: true}))
	}
	return &FeatureGate{Kind: GateOwnAndUsedBy, Own: own, Features: usedBy}
}

func contains(features []string, name string) bool {
	for _, feature := range features {
		if feature == name {
			return true
		}
	}
	return false
}
