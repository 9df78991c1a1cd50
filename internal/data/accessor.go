package data

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Accessor resolves a single path segment against a container.
// The second return value reports whether the segment is present.
type Accessor interface {
	Get(segment string) (any, bool)
}

// Iterable is implemented by containers that a wildcard segment can fan out over.
type Iterable interface {
	Elements() []any
}

// Entry is one keyed child of a map or list container.
type Entry struct {
	Key   string
	Value any
}

// Access returns the Accessor for v. Maps, slices and arrays are indexed by key
// or decimal position, structs by exported field name or json tag name.
// Scalars and nil values have no Accessor.
func Access(v any) (Accessor, bool) {
	if a, ok := Index(v); ok {
		return a, true
	}
	rv := indirect(reflect.ValueOf(v))
	if rv.IsValid() && rv.Kind() == reflect.Struct {
		return structAccessor{v: rv}, true
	}
	return nil, false
}

// Index is Access restricted to key-indexable containers: maps, slices,
// arrays and Accessor implementations. Struct fields are not reachable.
func Index(v any) (Accessor, bool) {
	if IsNil(v) {
		return nil, false
	}
	switch x := v.(type) {
	case Accessor:
		return x, true
	case map[string]any:
		return mapAccessor(x), true
	case []any:
		return listAccessor(x), true
	}

	rv := indirect(reflect.ValueOf(v))
	switch {
	case !rv.IsValid():
		return nil, false
	case rv.Kind() == reflect.Map:
		return reflectMap{v: rv}, true
	case isList(rv):
		return reflectList{v: rv}, true
	}
	return nil, false
}

// Elements returns the children of an iterable container in iteration order.
// Maps iterate in sorted key order. Strings and structs are not iterable.
func Elements(v any) ([]any, bool) {
	if IsNil(v) {
		return nil, false
	}
	switch x := v.(type) {
	case Iterable:
		return x.Elements(), true
	case []any:
		return x, true
	case iter.Seq[any]:
		return slices.Collect(x), true
	}

	entries, ok := Entries(v)
	if !ok {
		return nil, false
	}
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out, true
}

// Entries returns the keyed children of a map or list container. List keys are
// decimal indices; map entries are sorted by key.
func Entries(v any) ([]Entry, bool) {
	if IsNil(v) {
		return nil, false
	}
	switch x := v.(type) {
	case map[string]any:
		out := make([]Entry, 0, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			out = append(out, Entry{Key: k, Value: x[k]})
		}
		return out, true
	case []any:
		out := make([]Entry, len(x))
		for i, el := range x {
			out[i] = Entry{Key: strconv.Itoa(i), Value: el}
		}
		return out, true
	}

	rv := indirect(reflect.ValueOf(v))
	switch {
	case !rv.IsValid():
		return nil, false
	case rv.Kind() == reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, compareKeys)
		out := make([]Entry, 0, len(keys))
		for _, k := range keys {
			out = append(out, Entry{Key: keyString(k), Value: rv.MapIndex(k).Interface()})
		}
		return out, true
	case isList(rv):
		out := make([]Entry, rv.Len())
		for i := range rv.Len() {
			out[i] = Entry{Key: strconv.Itoa(i), Value: rv.Index(i).Interface()}
		}
		return out, true
	}
	return nil, false
}

// IsNil reports whether v is nil or a typed nil pointer, map, slice,
// interface, channel or func.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

type mapAccessor map[string]any

func (m mapAccessor) Get(segment string) (any, bool) {
	v, ok := m[segment]
	return v, ok
}

type listAccessor []any

func (l listAccessor) Get(segment string) (any, bool) {
	i, ok := listIndex(segment, len(l))
	if !ok {
		return nil, false
	}
	return l[i], true
}

type reflectList struct {
	v reflect.Value
}

func (l reflectList) Get(segment string) (any, bool) {
	i, ok := listIndex(segment, l.v.Len())
	if !ok {
		return nil, false
	}
	return l.v.Index(i).Interface(), true
}

type reflectMap struct {
	v reflect.Value
}

func (m reflectMap) Get(segment string) (any, bool) {
	kt := m.v.Type().Key()
	if kt.Kind() == reflect.Interface {
		// map[any]any: try the segment as a string, then as an integer
		if v, ok := m.index(reflect.ValueOf(segment)); ok {
			return v, true
		}
		if n, err := strconv.Atoi(segment); err == nil && strconv.Itoa(n) == segment {
			return m.index(reflect.ValueOf(n))
		}
		return nil, false
	}
	key, ok := mapKey(kt, segment)
	if !ok {
		return nil, false
	}
	return m.index(key)
}

func (m reflectMap) index(key reflect.Value) (any, bool) {
	if !key.Type().AssignableTo(m.v.Type().Key()) {
		return nil, false
	}
	val := m.v.MapIndex(key)
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}

type structAccessor struct {
	v reflect.Value
}

func (s structAccessor) Get(segment string) (any, bool) {
	if segment == "" {
		return nil, false
	}
	t := s.v.Type()
	if f, ok := t.FieldByName(segment); ok && f.IsExported() {
		return s.field(f)
	}
	for _, f := range reflect.VisibleFields(t) {
		if f.IsExported() && jsonName(f) == segment {
			return s.field(f)
		}
	}
	return nil, false
}

func (s structAccessor) field(f reflect.StructField) (any, bool) {
	fv, err := s.v.FieldByIndexErr(f.Index)
	if err != nil || !fv.CanInterface() {
		return nil, false
	}
	return fv.Interface(), true
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// listIndex parses a canonical decimal index within [0, n).
func listIndex(segment string, n int) (int, bool) {
	i, err := strconv.Atoi(segment)
	if err != nil || i < 0 || i >= n || strconv.Itoa(i) != segment {
		return 0, false
	}
	return i, true
}

func mapKey(t reflect.Type, segment string) (reflect.Value, bool) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(segment).Convert(t), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(segment, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(segment, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true
	}
	return reflect.Value{}, false
}

// indirect follows pointers and interfaces. A nil along the way yields the zero Value.
func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// isList reports slices and arrays, except byte slices which are treated as scalars.
func isList(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

func compareKeys(a, b reflect.Value) int {
	a, b = indirect(a), indirect(b)
	switch {
	case !a.IsValid() || !b.IsValid():
		return strings.Compare(keyString(a), keyString(b))
	case a.CanInt() && b.CanInt():
		return cmp.Compare(a.Int(), b.Int())
	case a.CanUint() && b.CanUint():
		return cmp.Compare(a.Uint(), b.Uint())
	case a.CanFloat() && b.CanFloat():
		return cmp.Compare(a.Float(), b.Float())
	}
	return strings.Compare(keyString(a), keyString(b))
}

func keyString(k reflect.Value) string {
	k = indirect(k)
	if !k.IsValid() {
		return ""
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}
