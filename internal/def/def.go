// Package def is a registry of named constants. A name can be defined once;
// its value is frozen at definition time.
package def

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
)

var (
	ErrAlreadyDefined   = errors.New("constant already defined")
	ErrUnsupportedValue = errors.New("unsupported constant value")
	ErrInvalidName      = errors.New("invalid constant name")
)

type Registry struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewRegistry() *Registry {
	return &Registry{values: make(map[string]any)}
}

// Get returns the value of name, or def when name is undefined or nil.
func (r *Registry) Get(name string, def any) any {
	r.mu.RLock()
	v, ok := r.values[name]
	r.mu.RUnlock()
	if !ok || v == nil {
		return def
	}
	return v
}

func (r *Registry) Defined(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.values[name]
	return ok
}

// Set defines name. Values may be nil, bool, integers, floats, strings, or
// slices and arrays of those (nested); anything else is ErrUnsupportedValue.
func (r *Registry) Set(name string, value any) error {
	if name == "" {
		return ErrInvalidName
	}
	frozen, err := freeze(value)
	if err != nil {
		return fmt.Errorf("define %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[name]; ok {
		return fmt.Errorf("define %s: %w", name, ErrAlreadyDefined)
	}
	r.values[name] = frozen
	return nil
}

// SetIfNotDefined defines name unless it already holds a non-nil value.
// It reports whether the value was stored.
func (r *Registry) SetIfNotDefined(name string, value any) bool {
	if name == "" {
		return false
	}
	frozen, err := freeze(value)
	if err != nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.values[name]; ok && cur != nil {
		return false
	}
	r.values[name] = frozen
	return true
}

// Names lists defined constants in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.values))
}

// freeze validates value and deep-copies lists into []any so later writes
// to the caller's slice are not observed.
func freeze(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return value, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			el, err := freeze(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = el
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}

// Default is the process-wide registry behind the package-level functions.
var Default = NewRegistry()

func Get(name string, def any) any { return Default.Get(name, def) }

func Set(name string, value any) error { return Default.Set(name, value) }

func SetIfNotDefined(name string, value any) bool { return Default.SetIfNotDefined(name, value) }
