package llm

import (
	"errors"
	"strings"
)

// ErrNoJSONObject means no balanced object could be cut out of the
// response body.
var ErrNoJSONObject = errors.New("no json object in response")

// ExtractJSONSpan cuts the first balanced {...} span out of a response
// that wrapped its JSON in prose or markdown fences. String literals
// are honored so braces inside values do not break the balance count.
func ExtractJSONSpan(content string) (string, error) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONObject
}
