package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNoJSON is reported when the text holds no opening brace.
	ErrNoJSON = errors.New("no json object in response")
	// ErrUnbalanced is reported when an object is opened but never closed.
	ErrUnbalanced = errors.New("unbalanced json object in response")
)

var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// Result is the outcome of decoding a model response. OK is false when the
// response carried nothing decodable; Err then says why.
type Result[T any] struct {
	Value T
	OK    bool
	Err   error
}

// Parse extracts and decodes the first JSON object found in raw.
func Parse[T any](raw string) Result[T] {
	var r Result[T]
	obj, err := FirstObject(StripFences(raw))
	if err != nil {
		r.Err = err
		return r
	}
	if err := json.Unmarshal([]byte(obj), &r.Value); err != nil {
		r.Err = fmt.Errorf("decode json: %w", err)
		return r
	}
	r.OK = true
	return r
}

// StripFences removes a surrounding markdown code fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fencePattern.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FirstObject returns the first balanced {...} in s. Braces inside JSON
// strings are ignored.
func FirstObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSON
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrUnbalanced
}
