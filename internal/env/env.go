// Package env reads environment variables with defaults and an optional
// fallback layer loaded from HCL files.
package env

import (
	"os"
)

// Env resolves variables from the process environment first and a fallback
// map second.
type Env struct {
	lookup   func(string) (string, bool)
	fallback map[string]string
}

// Option configures an Env.
type Option func(*Env)

// WithLookup replaces os.LookupEnv as the process environment source.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(e *Env) {
		e.lookup = fn
	}
}

// WithFallback sets the variables consulted when the process environment has
// no value.
func WithFallback(vars map[string]string) Option {
	return func(e *Env) {
		e.fallback = vars
	}
}

func New(opts ...Option) *Env {
	e := &Env{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lookup reports the raw value of name: the process value when set, else the
// fallback value when present.
func (e *Env) Lookup(name string) (string, bool) {
	if v, ok := e.lookup(name); ok {
		return v, true
	}
	v, ok := e.fallback[name]
	return v, ok
}

// Get returns the process value of name when non-empty, else the fallback
// value when present, else def.
func (e *Env) Get(name, def string) string {
	if v, ok := e.lookup(name); ok && v != "" {
		return v
	}
	if v, ok := e.fallback[name]; ok {
		return v
	}
	return def
}

// GetLocal is Get restricted to the process environment.
func (e *Env) GetLocal(name, def string) string {
	if v, ok := e.lookup(name); ok && v != "" {
		return v
	}
	return def
}

var process = New()

// Get reads name from the process environment, returning def when unset or empty.
func Get(name, def string) string {
	return process.Get(name, def)
}

// GetLocal reads name from the process environment only.
func GetLocal(name, def string) string {
	return process.GetLocal(name, def)
}
