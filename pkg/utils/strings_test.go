package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"___", nil},
		{"hello", []string{"hello"}},
		{"camelCase", []string{"camel", "Case"}},
		{"PascalCase", []string{"Pascal", "Case"}},
		{"snake_case", []string{"snake", "case"}},
		{"SCREAMING_SNAKE", []string{"SCREAMING", "SNAKE"}},
		{"XMLHttpRequest", []string{"XML", "Http", "Request"}},
		{"HTTPResponse", []string{"HTTP", "Response"}},
		{"HTTP_Response", []string{"HTTP", "Response"}},
		{"ALLCAPS", []string{"ALLCAPS"}},
		{"Response2", []string{"Response2"}},
		{"response_2", []string{"response", "2"}},
		{"HTTP2Protocol", []string{"HTTP2", "Protocol"}},
		{"1099KStatus", []string{"1099", "K", "Status"}},
		{"250g", []string{"250", "g"}},
		{"123abc", []string{"123", "abc"}},
		{"foo-bar_baz", []string{"foo", "bar", "baz"}},
		{"foo--bar", []string{"foo", "bar"}},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, Words(test.input), "Words(%q)", test.input)
	}
}

func TestCaseConversions(t *testing.T) {
	tests := []struct {
		input  string
		pascal string
		camel  string
		snake  string
		kebab  string
	}{
		{"", "", "", "", ""},
		{"hello", "Hello", "hello", "hello", "hello"},
		{"helloWorld", "HelloWorld", "helloWorld", "hello_world", "hello-world"},
		{"hello_world", "HelloWorld", "helloWorld", "hello_world", "hello-world"},
		{"XMLHttpRequest", "XmlHttpRequest", "xmlHttpRequest", "xml_http_request", "xml-http-request"},
		{"HELLO_WORLD", "HelloWorld", "helloWorld", "hello_world", "hello-world"},
		{"getUserById", "GetUserById", "getUserById", "get_user_by_id", "get-user-by-id"},
	}

	for _, test := range tests {
		assert.Equal(t, test.pascal, ToPascalCase(test.input), "ToPascalCase(%q)", test.input)
		assert.Equal(t, test.camel, ToCamelCase(test.input), "ToCamelCase(%q)", test.input)
		assert.Equal(t, test.snake, ToSnakeCase(test.input), "ToSnakeCase(%q)", test.input)
		assert.Equal(t, test.kebab, ToKebabCase(test.input), "ToKebabCase(%q)", test.input)
	}
}

func TestRemoveAccents(t *testing.T) {
	assert.Equal(t, "resume", RemoveAccents("résumé"))
	assert.Equal(t, "uber", RemoveAccents("über"))
}

func TestUniquifyCrossCaseCollisions(t *testing.T) {
	scope := NewUniqueScope()

	assert.Equal(t, "HTTPResponse", scope.Uniquify("HTTPResponse"))
	assert.Equal(t, "HTTP_Response2", scope.Uniquify("HTTP_Response"))
	assert.Equal(t, "httpResponse3", scope.Uniquify("httpResponse"))
	assert.Equal(t, "http_response4", scope.Uniquify("http_response"))
	// HTTPRESPONSE isn't a collision; it segments as a single word.
	assert.Equal(t, "HTTPRESPONSE", scope.Uniquify("HTTPRESPONSE"))
}

func TestUniquifyPreservesDistinctNames(t *testing.T) {
	scope := NewUniqueScope()

	assert.Equal(t, "HttpRequest", scope.Uniquify("HttpRequest"))
	assert.Equal(t, "HttpResponse", scope.Uniquify("HttpResponse"))
	assert.Equal(t, "HttpError", scope.Uniquify("HttpError"))
}

func TestUniquifyWithNumbers(t *testing.T) {
	scope := NewUniqueScope()

	assert.Equal(t, "Response2", scope.Uniquify("Response2"))
	assert.Equal(t, "response_2", scope.Uniquify("response_2"))

	assert.Equal(t, "1099KStatus", scope.Uniquify("1099KStatus"))
	assert.Equal(t, "1099K_Status2", scope.Uniquify("1099K_Status"))
	assert.Equal(t, "1099KStatus3", scope.Uniquify("1099KStatus"))
}

func TestUniquifyReserved(t *testing.T) {
	scope := NewUniqueScopeReserved("_", "reserved")

	assert.Equal(t, "_2", scope.Uniquify("_"))
	assert.Equal(t, "_3", scope.Uniquify("_"))
	assert.Equal(t, "reserved2", scope.Uniquify("reserved"))
	assert.Equal(t, "other", scope.Uniquify("other"))
}
