// Package arr holds helpers for key-indexable containers: strict lookups,
// partitioning and flattening.
package arr

import (
	"github.com/agentic-research/essence/internal/data"
)

// IsAccessible reports whether v can be indexed by key or position: maps,
// slices, arrays and data.Accessor implementations. Structs are not.
func IsAccessible(v any) bool {
	_, ok := data.Index(v)
	return ok
}

// LookupStrict resolves a dot-notation path through key-indexable containers
// only. Struct fields are not reachable and "*" is an ordinary key.
// A missing or nil entry anywhere along the path returns def.
func LookupStrict(path string, container, def any) any {
	return LookupStrictPath(data.ParsePath(path), container, def)
}

// LookupStrictPath is LookupStrict over a pre-split path.
func LookupStrictPath(path data.Path, container, def any) any {
	current := container
	for _, segment := range path {
		a, ok := data.Index(current)
		if !ok {
			return def
		}
		next, ok := a.Get(segment)
		if !ok || data.IsNil(next) {
			return def
		}
		current = next
	}
	if data.IsNil(current) {
		return def
	}
	return current
}

// Partition spreads items over groups slices of near-equal length, keeping
// order. The first len(items)%groups groups receive one extra item.
// groups <= 0 returns nil.
func Partition[T any](items []T, groups int) [][]T {
	if groups <= 0 {
		return nil
	}
	out := make([][]T, groups)
	size, extra := len(items)/groups, len(items)%groups
	start := 0
	for i := range groups {
		n := size
		if i < extra {
			n++
		}
		out[i] = items[start : start+n : start+n]
		start += n
	}
	return out
}

// DotFlatten collapses nested maps and lists into a single map keyed by
// dot-joined paths. List positions become decimal keys. Empty containers
// produce no entries and a scalar input yields an empty map.
func DotFlatten(v any) map[string]any {
	out := make(map[string]any)
	flatten(out, "", v)
	return out
}

func flatten(out map[string]any, prefix string, v any) {
	entries, ok := data.Entries(v)
	if !ok {
		if prefix != "" {
			out[prefix] = v
		}
		return
	}
	for _, e := range entries {
		key := e.Key
		if prefix != "" {
			key = prefix + "." + e.Key
		}
		flatten(out, key, e.Value)
	}
}
