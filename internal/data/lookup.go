// Package data resolves dot-notation paths against nested maps, lists and structs.
package data

import "strings"

// Wildcard is the path segment that fans out over every element of a container.
const Wildcard = "*"

// Path is a dot-notation lookup path split into segments.
type Path []string

// ParsePath splits a dot-notation path. The empty string is the empty path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Lookup resolves a dot-notation path against container, returning def when
// any segment is missing or nil. See LookupPath.
func Lookup(path string, container, def any) any {
	return LookupPath(ParsePath(path), container, def)
}

// LookupPath walks container one segment at a time.
//
// A literal segment advances into the matching key, index or field; a missing
// or nil entry ends the walk with def. A Wildcard segment resolves the rest of
// the path against every element of the current container and returns the
// results as a []any, using def for elements that miss. A Wildcard over a
// value that is not iterable returns def.
//
// The container is never modified and no combination of inputs panics.
func LookupPath(path Path, container, def any) any {
	current := container
	for i, segment := range path {
		if segment == Wildcard {
			elems, ok := Elements(current)
			if !ok {
				return def
			}
			rest := path[i+1:]
			out := make([]any, 0, len(elems))
			for _, el := range elems {
				out = append(out, LookupPath(rest, el, def))
			}
			return out
		}

		next, ok := lookupSegment(current, segment)
		if !ok {
			return def
		}
		current = next
	}

	if IsNil(current) {
		return def
	}
	return current
}

// lookupSegment reports a present, non-nil child of v.
func lookupSegment(v any, segment string) (any, bool) {
	a, ok := Access(v)
	if !ok {
		return nil, false
	}
	next, ok := a.Get(segment)
	if !ok || IsNil(next) {
		return nil, false
	}
	return next, true
}
