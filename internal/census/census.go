// Package census measures how consistently field paths are populated across
// a set of records. Each path keeps one bitmap of the records where it is
// present and one of the records where it holds a filled value.
package census

import (
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/essence/internal/data"
)

// Field summarizes one path across all records.
type Field struct {
	Path     string  `json:"path"`
	Present  int     `json:"present"`  // records where the path exists
	Filled   int     `json:"filled"`   // records where the value is not blank
	Distinct int     `json:"distinct"` // distinct string values
	Coverage float64 `json:"coverage"` // Filled / Records
}

// Census is a column-major incidence table: path -> record bitmaps.
type Census struct {
	records  int
	paths    []string
	present  map[string]*roaring.Bitmap
	filled   map[string]*roaring.Bitmap
	distinct map[string]map[string]struct{}
}

// WalkFieldPaths extracts all leaf field paths from a JSON-like value.
// Only maps are descended; lists and scalars are leaves.
func WalkFieldPaths(v any) []string {
	var paths []string
	walkLeaves(v, "", func(path string, _ any) {
		paths = append(paths, path)
	})
	slices.Sort(paths)
	return paths
}

func walkLeaves(v any, prefix string, fn func(path string, leaf any)) {
	m, ok := v.(map[string]any)
	if !ok {
		if prefix != "" {
			fn(prefix, v)
		}
		return
	}
	for k, child := range m {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		walkLeaves(child, p, fn)
	}
}

// Build indexes records. Record i is bit i in every bitmap.
func Build(records []any) *Census {
	c := &Census{
		records:  len(records),
		present:  make(map[string]*roaring.Bitmap),
		filled:   make(map[string]*roaring.Bitmap),
		distinct: make(map[string]map[string]struct{}),
	}
	for i, rec := range records {
		walkLeaves(rec, "", func(path string, leaf any) {
			c.add(uint32(i), path, leaf)
		})
	}
	c.paths = slices.Sorted(maps.Keys(c.present))
	return c
}

func (c *Census) add(i uint32, path string, v any) {
	pb, ok := c.present[path]
	if !ok {
		pb = roaring.New()
		c.present[path] = pb
		c.filled[path] = roaring.New()
		c.distinct[path] = make(map[string]struct{})
	}
	pb.Add(i)

	if data.IsFilled(v) {
		c.filled[path].Add(i)
	}
	if s, ok := v.(string); ok {
		c.distinct[path][s] = struct{}{}
	}
}

// Records is the number of indexed records.
func (c *Census) Records() int { return c.records }

// Paths lists every observed path in sorted order.
func (c *Census) Paths() []string { return slices.Clone(c.paths) }

// Fields summarizes every path in sorted order.
func (c *Census) Fields() []Field {
	out := make([]Field, 0, len(c.paths))
	for _, p := range c.paths {
		f := Field{
			Path:     p,
			Present:  int(c.present[p].GetCardinality()),
			Filled:   int(c.filled[p].GetCardinality()),
			Distinct: len(c.distinct[p]),
		}
		if c.records > 0 {
			f.Coverage = float64(f.Filled) / float64(c.records)
		}
		out = append(out, f)
	}
	return out
}

// Present returns the records where path exists, possibly holding a blank value.
func (c *Census) Present(path string) *roaring.Bitmap {
	if b, ok := c.present[path]; ok {
		return b.Clone()
	}
	return roaring.New()
}

// Filled returns the records where path holds a filled value.
func (c *Census) Filled(path string) *roaring.Bitmap {
	if b, ok := c.filled[path]; ok {
		return b.Clone()
	}
	return roaring.New()
}

// Together returns the records where every path is filled. With no paths it
// returns every record.
func (c *Census) Together(paths ...string) *roaring.Bitmap {
	if len(paths) == 0 {
		all := roaring.New()
		all.AddRange(0, uint64(c.records))
		return all
	}
	result := c.Filled(paths[0])
	for _, p := range paths[1:] {
		result.And(c.Filled(p))
	}
	return result
}
