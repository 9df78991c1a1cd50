package data

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// Maps and lists
// ---------------------------------------------------------------------------

func TestLookup_EmptyPath(t *testing.T) {
	doc := map[string]any{"a": 1}
	assert.Equal(t, doc, Lookup("", doc, "d"))
	assert.Equal(t, doc, LookupPath(Path{}, doc, "d"))
	assert.Equal(t, "d", Lookup("", nil, "d"))
	assert.Equal(t, "d", LookupPath(nil, (*int)(nil), "d"))
}

func TestLookup_Nested(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		doc := map[string]any{"a": map[string]any{"b": 5}}
		assert.Equal(t, 5, Lookup("a.b", doc, "d"))
	})

	t.Run("missing key", func(t *testing.T) {
		doc := map[string]any{"a": map[string]any{}}
		assert.Equal(t, "d", Lookup("a.b", doc, "d"))
	})

	t.Run("present but nil", func(t *testing.T) {
		doc := map[string]any{"a": map[string]any{"b": nil}}
		assert.Equal(t, "d", Lookup("a.b", doc, "d"))
		assert.Equal(t, "d", Lookup("a.b.c", doc, "d"))
	})

	t.Run("typed nil mid path", func(t *testing.T) {
		doc := map[string]any{"a": map[string]any(nil)}
		assert.Equal(t, "d", Lookup("a", doc, "d"))
		assert.Equal(t, "d", Lookup("a.b", doc, "d"))
	})

	t.Run("scalar mid path", func(t *testing.T) {
		doc := map[string]any{"a": "text"}
		assert.Equal(t, "d", Lookup("a.b", doc, "d"))
		assert.Equal(t, "d", Lookup("a.0", doc, "d"))
	})

	t.Run("zero values are found", func(t *testing.T) {
		doc := map[string]any{"n": 0, "f": false, "s": ""}
		assert.Equal(t, 0, Lookup("n", doc, "d"))
		assert.Equal(t, false, Lookup("f", doc, "d"))
		assert.Equal(t, "", Lookup("s", doc, "d"))
	})

	t.Run("pre-split path keeps dots", func(t *testing.T) {
		doc := map[string]any{"a.b": 1}
		assert.Equal(t, 1, LookupPath(Path{"a.b"}, doc, "d"))
		assert.Equal(t, "d", Lookup("a.b", doc, "d"))
	})
}

func TestLookup_ListIndex(t *testing.T) {
	doc := map[string]any{"a": []any{"x", "y"}}
	assert.Equal(t, "y", Lookup("a.1", doc, "d"))
	assert.Equal(t, "d", Lookup("a.2", doc, "d"))
	assert.Equal(t, "d", Lookup("a.-1", doc, "d"))
	assert.Equal(t, "d", Lookup("a.01", doc, "d"))
	assert.Equal(t, "d", Lookup("a.x", doc, "d"))
}

func TestLookup_TypedContainers(t *testing.T) {
	assert.Equal(t, 1, Lookup("a", map[string]int{"a": 1}, "d"))
	assert.Equal(t, "x", Lookup("3", map[int]string{3: "x"}, "d"))
	assert.Equal(t, "d", Lookup("x", map[int]string{3: "x"}, "d"))
	assert.Equal(t, "two", Lookup("1", []string{"one", "two"}, "d"))
	assert.Equal(t, 30, Lookup("2", [3]int{10, 20, 30}, "d"))

	nested := map[any]any{"k": map[any]any{1: "one"}}
	assert.Equal(t, "one", Lookup("k.1", nested, "d"))

	// byte slices are values, not lists
	assert.Equal(t, "d", Lookup("0", []byte("ab"), "d"))
}

// ---------------------------------------------------------------------------
// Wildcards
// ---------------------------------------------------------------------------

func TestLookup_Wildcard(t *testing.T) {
	t.Run("fan out with defaults", func(t *testing.T) {
		doc := map[string]any{"a": []any{
			map[string]any{"b": 1},
			map[string]any{"b": 2},
			map[string]any{},
		}}
		assert.Equal(t, []any{1, 2, "d"}, Lookup("a.*.b", doc, "d"))
	})

	t.Run("not iterable", func(t *testing.T) {
		doc := map[string]any{"a": "not-iterable"}
		assert.Equal(t, "d", Lookup("a.*", doc, "d"))
		assert.Equal(t, "d", Lookup("a.*.b", doc, "d"))
	})

	t.Run("missing before wildcard", func(t *testing.T) {
		assert.Equal(t, "d", Lookup("x.*", map[string]any{}, "d"))
	})

	t.Run("always a list", func(t *testing.T) {
		assert.Equal(t, []any{}, Lookup("a.*", map[string]any{"a": []any{}}, "d"))
		assert.Equal(t, []any{"x"}, Lookup("a.*", map[string]any{"a": []any{"x"}}, "d"))
	})

	t.Run("trailing wildcard substitutes nil elements", func(t *testing.T) {
		assert.Equal(t, []any{"d", 1}, Lookup("*", []any{nil, 1}, "d"))
	})

	t.Run("nested wildcards", func(t *testing.T) {
		doc := map[string]any{"groups": []any{
			map[string]any{"users": []any{
				map[string]any{"n": "a"},
				map[string]any{"n": "b"},
			}},
			map[string]any{"users": []any{
				map[string]any{"n": "c"},
			}},
		}}
		assert.Equal(t,
			[]any{[]any{"a", "b"}, []any{"c"}},
			Lookup("groups.*.users.*.n", doc, "d"))
	})

	t.Run("inner miss only affects its element", func(t *testing.T) {
		doc := map[string]any{"a": []any{
			map[string]any{"b": "x"},
			map[string]any{"b": []any{1}},
		}}
		assert.Equal(t, []any{"d", []any{1}}, Lookup("a.*.b.*", doc, "d"))
	})

	t.Run("maps fan out in key order", func(t *testing.T) {
		doc := map[string]any{"m": map[string]any{
			"z": map[string]any{"v": 1},
			"a": map[string]any{"v": 2},
		}}
		assert.Equal(t, []any{2, 1}, Lookup("m.*.v", doc, "d"))
		assert.Equal(t, []any{"b", "c"}, Lookup("*", map[int]string{2: "c", 1: "b"}, "d"))
	})

	t.Run("typed slices", func(t *testing.T) {
		assert.Equal(t, []any{"x", "y"}, Lookup("*", []string{"x", "y"}, "d"))
	})
}

type trio struct{}

func (trio) Elements() []any { return []any{1, 2, 3} }

type fixedEnv struct{}

func (fixedEnv) Get(segment string) (any, bool) {
	if segment == "HOME" {
		return "/root", true
	}
	return nil, false
}

func TestLookup_CustomContainers(t *testing.T) {
	t.Run("accessor", func(t *testing.T) {
		assert.Equal(t, "/root", Lookup("HOME", fixedEnv{}, "d"))
		assert.Equal(t, "d", Lookup("USER", fixedEnv{}, "d"))
	})

	t.Run("iterable", func(t *testing.T) {
		assert.Equal(t, []any{1, 2, 3}, Lookup("*", trio{}, "d"))
	})

	t.Run("sequence", func(t *testing.T) {
		seq := func(yield func(any) bool) {
			for _, v := range []any{"a", "b"} {
				if !yield(v) {
					return
				}
			}
		}
		assert.Equal(t, []any{"a", "b"}, Lookup("*", iter.Seq[any](seq), "d"))
	})
}

// ---------------------------------------------------------------------------
// Structs
// ---------------------------------------------------------------------------

type address struct {
	City string `json:"city"`
}

type base struct {
	ID int
}

type user struct {
	base
	Name    string
	Address *address `json:"address,omitempty"`
	Tags    []string
	Nick    *string
	Ignored string `json:"-"`
	secret  string
}

func TestLookup_Structs(t *testing.T) {
	u := &user{
		base:    base{ID: 7},
		Name:    "ann",
		Address: &address{City: "Oslo"},
		Tags:    []string{"x", "y"},
		Ignored: "by name only",
		secret:  "hidden",
	}

	assert.Equal(t, "ann", Lookup("Name", u, "d"))
	assert.Equal(t, "ann", Lookup("Name", *u, "d"))
	assert.Equal(t, "Oslo", Lookup("address.city", u, "d"))
	assert.Equal(t, "Oslo", Lookup("Address.City", u, "d"))
	assert.Equal(t, 7, Lookup("ID", u, "d"))
	assert.Equal(t, "x", Lookup("Tags.0", u, "d"))
	assert.Equal(t, []any{"x", "y"}, Lookup("Tags.*", u, "d"))
	assert.Equal(t, "by name only", Lookup("Ignored", u, "d"))

	assert.Equal(t, "d", Lookup("secret", u, "d"))
	assert.Equal(t, "d", Lookup("Nick", u, "d"))
	assert.Equal(t, "d", Lookup("Missing", u, "d"))
	assert.Equal(t, "d", Lookup("Name", (*user)(nil), "d"))

	// structs are not iterable
	assert.Equal(t, "d", Lookup("*", u, "d"))
}

func TestIndex_ExcludesStructs(t *testing.T) {
	_, ok := Index(user{})
	assert.False(t, ok)
	_, ok = Access(user{})
	assert.True(t, ok)
	_, ok = Index(map[string]any{})
	assert.True(t, ok)
	_, ok = Index("text")
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Purity
// ---------------------------------------------------------------------------

func TestLookup_PureAndIdempotent(t *testing.T) {
	fresh := func() map[string]any {
		return map[string]any{
			"a": []any{
				map[string]any{"b": 1, "c": nil},
				map[string]any{"b": 2},
			},
			"m": map[string]any{"k": "v"},
		}
	}
	doc := fresh()

	for _, path := range []string{"a.*.b", "a.*.c", "m.k", "a.0.b", "m.*", ""} {
		first := Lookup(path, doc, "d")
		second := Lookup(path, doc, "d")
		assert.Equal(t, first, second, path)
	}
	assert.Equal(t, fresh(), doc)
}

func TestEntries(t *testing.T) {
	entries, ok := Entries(map[string]any{"b": 2, "a": 1})
	assert.True(t, ok)
	assert.Equal(t, []Entry{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, entries)

	entries, ok = Entries([]int{5, 6})
	assert.True(t, ok)
	assert.Equal(t, []Entry{{Key: "0", Value: 5}, {Key: "1", Value: 6}}, entries)

	_, ok = Entries("text")
	assert.False(t, ok)
	_, ok = Entries(map[string]any(nil))
	assert.False(t, ok)
}

func TestPath(t *testing.T) {
	assert.Nil(t, ParsePath(""))
	assert.Equal(t, Path{"a", "*", "b"}, ParsePath("a.*.b"))
	assert.Equal(t, Path{"a", "", "b"}, ParsePath("a..b"))
	assert.Equal(t, "a.*.b", ParsePath("a.*.b").String())
}
