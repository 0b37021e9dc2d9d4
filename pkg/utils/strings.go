package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Words splits a string into words, handling camelCase, PascalCase,
// snake_case, and kebab-case. Word boundaries occur on non-alphanumeric
// characters, lowercase-to-uppercase transitions ("httpResponse"),
// uppercase-to-lowercase after an uppercase run ("XMLHttp"), and
// digit-to-letter transitions ("1099KStatus", "250g").
//
// The digit-to-letter rule ensures that names like "1099KStatus" and
// "1099_K_Status" segment identically, so they collide in a unique-name
// scope instead of producing similar-but-distinct names.
func Words(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = RemoveAccents(s)

	var words []string
	for _, part := range nonAlnum.Split(s, -1) {
		if part == "" {
			continue
		}
		words = append(words, splitCamel(part)...)
	}
	return words
}

// splitCamel splits one separator-free chunk on case and digit transitions.
func splitCamel(s string) []string {
	var parts []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		boundary := false
		if i > 0 {
			prev := runes[i-1]
			switch {
			case isUpper(r) && !isUpper(prev):
				// Lowercase or digit to uppercase: "httpResponse", "1099K".
				boundary = true
			case isUpper(r) && isUpper(prev) && i < len(runes)-1 && isLower(runes[i+1]):
				// Uppercase run followed by lowercase: "XMLHttp" -> "XML", "Http".
				boundary = true
			case isLower(r) && unicode.IsDigit(prev):
				// Digit to lowercase: "250g" -> "250", "g".
				boundary = true
			}
		}
		if boundary && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

// ToPascalCase converts a string to PascalCase
func ToPascalCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	b := strings.Builder{}
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		if len(w) > 1 {
			b.WriteString(strings.ToLower(w[1:]))
		}
	}
	return b.String()
}

// ToCamelCase converts a string to camelCase
func ToCamelCase(s string) string {
	p := ToPascalCase(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// ToSnakeCase converts a string to snake_case
func ToSnakeCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "_")
}

// ToKebabCase converts a string to kebab-case
func ToKebabCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "-")
}
