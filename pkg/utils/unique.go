package utils

import (
	"strconv"
	"strings"
)

// UniqueScope deduplicates names across case conventions. Names that are
// distinct in the source document can collide once converted to a target
// language's casing: "HTTP_Response" and "HTTPResponse" both become
// "http_response" in snake case. A scope detects these collisions by
// comparing case-folded word segments, and disambiguates with a
// deterministic numeric suffix.
type UniqueScope struct {
	counts map[string]int
}

// NewUniqueScope returns an empty scope.
func NewUniqueScope() *UniqueScope {
	return &UniqueScope{counts: map[string]int{}}
}

// NewUniqueScopeReserved returns a scope with the given names pre-reserved.
// The first use of a reserved name already gets a suffix, which is useful
// for reserving keywords or placeholder names in generated code.
func NewUniqueScopeReserved(reserved ...string) *UniqueScope {
	s := NewUniqueScope()
	for _, name := range reserved {
		s.counts[segmentKey(name)] = 1
	}
	return s
}

// Uniquify adds a name to the scope. If no name with the same case-folded
// segments exists yet, the name is returned as-is; otherwise it gets a
// numeric suffix starting at 2.
//
//	scope.Uniquify("HTTPResponse")  // "HTTPResponse"
//	scope.Uniquify("HTTP_Response") // "HTTP_Response2"
//	scope.Uniquify("httpResponse")  // "httpResponse3"
func (s *UniqueScope) Uniquify(name string) string {
	key := segmentKey(name)
	s.counts[key]++
	if n := s.counts[key]; n > 1 {
		return name + strconv.Itoa(n)
	}
	return name
}

// segmentKey folds a name to its case-insensitive word segments.
func segmentKey(name string) string {
	words := Words(name)
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "\x00")
}
