package transform

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/linabutler/ploidy/pkg/ir"
)

// ParsePathTemplate parses a path template like `/v1/pets/{petId}/toy` into
// segments of literal and parameter fragments. The grammar follows the
// OpenAPI path-templating rules: segments are slash-delimited, parameters
// are brace-delimited, and literals are restricted to unreserved and
// sub-delimiter characters plus percent escapes.
func ParsePathTemplate(path string) ([]ir.PathSegment, error) {
	rest, ok := strings.CutPrefix(path, "/")
	if !ok {
		return nil, fmt.Errorf("path %q must start with a slash", path)
	}
	if rest == "" {
		// The root path is a single empty segment.
		return []ir.PathSegment{{}}, nil
	}

	parts := strings.Split(rest, "/")
	segments := make([]ir.PathSegment, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			if i == len(parts)-1 {
				// Trailing slash: an empty final segment.
				segments = append(segments, ir.PathSegment{})
				continue
			}
			return nil, fmt.Errorf("path %q contains an empty segment", path)
		}
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(part string) (ir.PathSegment, error) {
	var seg ir.PathSegment
	for len(part) > 0 {
		if part[0] == '{' {
			end := strings.IndexByte(part, '}')
			if end < 0 {
				return seg, fmt.Errorf("unterminated template parameter in %q", part)
			}
			name := part[1:end]
			if name == "" || strings.ContainsAny(name, "{}") {
				return seg, fmt.Errorf("invalid template parameter in %q", part)
			}
			seg.Fragments = append(seg.Fragments, ir.PathFragment{Param: name})
			part = part[end+1:]
			continue
		}

		end := strings.IndexByte(part, '{')
		if end < 0 {
			end = len(part)
		}
		literal := part[:end]
		if strings.ContainsRune(literal, '}') {
			return seg, fmt.Errorf("unmatched brace in %q", part)
		}
		for _, c := range literal {
			if !isPathChar(c) {
				return seg, fmt.Errorf("invalid character %q in path segment %q", c, part)
			}
		}
		decoded, err := url.PathUnescape(literal)
		if err != nil {
			return seg, fmt.Errorf("invalid percent escape in %q", part)
		}
		seg.Fragments = append(seg.Fragments, ir.PathFragment{Literal: decoded})
		part = part[end:]
	}
	return seg, nil
}

// isPathChar reports whether c may appear in a literal path fragment:
// unreserved characters, sub-delimiters, `:` and `@`, and `%` for escapes.
func isPathChar(c rune) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', ':', '@',
		'!', '$', '&', '\'', '(', ')',
		'*', '+', ',', ';', '=', '%':
		return true
	}
	return false
}
