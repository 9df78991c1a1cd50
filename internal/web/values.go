package web

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ParseValues nests bracket-notation keys: "a[b]=1" becomes {a: {b: "1"}} and
// "a[]=1&a[]=2" becomes {a: ["1", "2"]}. Plain keys repeated in the input
// keep their last value. Keys are processed in sorted order.
func ParseValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		name, subs, nested := splitKey(key)
		for _, v := range values[key] {
			if !nested {
				out[key] = v
				continue
			}
			out[name] = place(out[name], subs, v)
		}
	}
	return out
}

// splitKey splits "a[b][]" into "a" and ["b", ""]. Keys that are not
// well-formed bracket notation are returned unsplit.
func splitKey(key string) (string, []string, bool) {
	i := strings.IndexByte(key, '[')
	if i <= 0 || !strings.HasSuffix(key, "]") {
		return key, nil, false
	}
	name, rest := key[:i], key[i:]
	var subs []string
	for rest != "" {
		if rest[0] != '[' {
			return key, nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, nil, false
		}
		subs = append(subs, rest[1:end])
		rest = rest[end+1:]
	}
	return name, subs, true
}

func place(cur any, subs []string, v string) any {
	if len(subs) == 0 {
		return v
	}
	sub, rest := subs[0], subs[1:]

	if sub == "" {
		switch c := cur.(type) {
		case []any:
			return append(c, place(nil, rest, v))
		case map[string]any:
			c[strconv.Itoa(nextIndex(c))] = place(nil, rest, v)
			return c
		}
		return []any{place(nil, rest, v)}
	}

	m, ok := cur.(map[string]any)
	if !ok {
		m = make(map[string]any)
		if list, isList := cur.([]any); isList {
			for i, el := range list {
				m[strconv.Itoa(i)] = el
			}
		}
	}
	m[sub] = place(m[sub], rest, v)
	return m
}

// nextIndex is one past the largest non-negative integer key in m.
func nextIndex(m map[string]any) int {
	next := 0
	for k := range m {
		if n, err := strconv.Atoi(k); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}
