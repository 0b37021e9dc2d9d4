package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeIDKeys(t *testing.T) {
	named := NamedID("User")
	assert.False(t, named.IsInline())
	assert.Equal(t, "User", named.Key())
	assert.Equal(t, "User", named.String())

	inline := InlineID(TypePath("User", FieldSegment("address"), ArrayItemSegment()))
	assert.True(t, inline.IsInline())
	assert.Equal(t, "User/field:address/item", inline.Key())
	assert.Equal(t, `User / Field("address") / ArrayItem`, inline.String())
}

func TestOperationPathRendering(t *testing.T) {
	path := OperationPath("getUser", ResponseSegment("200"), BodySegment())
	assert.Equal(t, `Operation("getUser") / Response(200) / Body`, path.String())
	assert.Equal(t, "op:getUser/response:200/body", path.Key())
}

func TestChildDoesNotAliasParent(t *testing.T) {
	parent := TypePath("User", FieldSegment("a"))
	first := parent.Child(FieldSegment("b"))
	second := parent.Child(ArrayItemSegment())

	assert.Equal(t, `User / Field("a") / Field("b")`, first.String())
	assert.Equal(t, `User / Field("a") / ArrayItem`, second.String())
	assert.Equal(t, `User / Field("a")`, parent.String())
}

func TestDistinctLocationsAreDistinctIDs(t *testing.T) {
	a := InlineID(TypePath("A", FieldSegment("x")))
	b := InlineID(TypePath("B", FieldSegment("x")))
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestSpecPreservesInsertionOrder(t *testing.T) {
	spec := NewSpec()
	spec.Add(NamedID("B"), AnyType())
	spec.Add(NamedID("A"), AnyType())
	spec.Add(InlineID(TypePath("B", FieldSegment("x"))), AnyType())

	var keys []string
	for _, id := range spec.IDs() {
		keys = append(keys, id.Key())
	}
	assert.Equal(t, []string{"B", "A", "B/field:x"}, keys)

	// Re-adding an existing identifier replaces in place.
	spec.Add(NamedID("A"), Prim(PrimString))
	assert.Equal(t, 3, spec.Len())
	ty, ok := spec.Lookup(NamedID("A"))
	assert.True(t, ok)
	assert.Equal(t, PrimString, ty.Prim)
}

func TestTypeEqual(t *testing.T) {
	assert.True(t, Prim(PrimString).Equal(Prim(PrimString)))
	assert.False(t, Prim(PrimString).Equal(Prim(PrimI64)))
	assert.True(t, ArrayOf(Prim(PrimBool)).Equal(ArrayOf(Prim(PrimBool))))
	assert.False(t, ArrayOf(Prim(PrimBool)).Equal(MapOf(Prim(PrimBool))))
	assert.True(t, RefTo(NamedID("A")).Equal(RefTo(NamedID("A"))))
	assert.False(t, RefTo(NamedID("A")).Equal(RefTo(NamedID("B"))))
}
