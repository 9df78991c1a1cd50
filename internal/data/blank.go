package data

import (
	"reflect"
	"strings"
)

// IsBlank reports whether v should be treated as "not provided".
//
// Not blank: 0, false
// Blank: nil, "  ", empty slices and maps
func IsBlank(v any) bool {
	if IsNil(v) {
		return true
	}
	if s, ok := v.(interface{ Len() int }); ok {
		return s.Len() == 0
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len() == 0
	}
	return false
}

// IsFilled is the negation of IsBlank.
func IsFilled(v any) bool {
	return !IsBlank(v)
}
