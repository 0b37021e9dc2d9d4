package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linabutler/ploidy/pkg/ir"
	"github.com/linabutler/ploidy/pkg/transform"
)

func TestParseRootPath(t *testing.T) {
	segments, err := transform.ParsePathTemplate("/")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Empty(t, segments[0].Fragments)
}

func TestParseSimpleLiteral(t *testing.T) {
	segments, err := transform.ParsePathTemplate("/users")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, []ir.PathFragment{{Literal: "users"}}, segments[0].Fragments)
}

func TestParseTrailingSlash(t *testing.T) {
	segments, err := transform.ParsePathTemplate("/users/")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, []ir.PathFragment{{Literal: "users"}}, segments[0].Fragments)
	assert.Empty(t, segments[1].Fragments)
}

func TestParseTemplates(t *testing.T) {
	segments, err := transform.ParsePathTemplate("/users/{userId}/posts/{postId}")
	require.NoError(t, err)
	require.Len(t, segments, 4)
	assert.Equal(t, []ir.PathFragment{{Literal: "users"}}, segments[0].Fragments)
	assert.Equal(t, []ir.PathFragment{{Param: "userId"}}, segments[1].Fragments)
	assert.Equal(t, []ir.PathFragment{{Literal: "posts"}}, segments[2].Fragments)
	assert.Equal(t, []ir.PathFragment{{Param: "postId"}}, segments[3].Fragments)
}

func TestParseMixedLiteralAndParam(t *testing.T) {
	segments, err := transform.ParsePathTemplate("/download/report-{documentId}.pdf")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, []ir.PathFragment{
		{Literal: "report-"},
		{Param: "documentId"},
		{Literal: ".pdf"},
	}, segments[1].Fragments)
}

func TestParsePercentEscapes(t *testing.T) {
	segments, err := transform.ParsePathTemplate("/a%20b")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, []ir.PathFragment{{Literal: "a b"}}, segments[0].Fragments)
}

func TestParseRejectsEmptySegments(t *testing.T) {
	_, err := transform.ParsePathTemplate("/users//a")
	assert.Error(t, err)
}

func TestParseRejectsMissingLeadingSlash(t *testing.T) {
	_, err := transform.ParsePathTemplate("users")
	assert.Error(t, err)
}

func TestParseRejectsNestedBraces(t *testing.T) {
	_, err := transform.ParsePathTemplate("/users/{user{id}}")
	assert.Error(t, err)
}

func TestParseRejectsUnterminatedParam(t *testing.T) {
	_, err := transform.ParsePathTemplate("/users/{userId")
	assert.Error(t, err)
}
