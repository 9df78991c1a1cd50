package data

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// IsJSON reports whether v is a non-blank string holding a JSON document.
func IsJSON(v any) bool {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	_, err := oj.ParseString(s)
	return err == nil
}

// DecodeJSON parses a JSON document into generic values:
// map[string]any, []any, string, int64, float64, bool and nil.
func DecodeJSON(b []byte) (any, error) {
	v, err := oj.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// Query evaluates a JSONPath selector (e.g. "$.users[*].name") against root
// and returns every match in document order. Unlike Lookup it reports
// malformed selectors and never substitutes defaults.
func Query(selector string, root any) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return x.Get(root), nil
}
