package source

import (
	"fmt"
	"maps"

	"github.com/expr-lang/expr"

	"github.com/agentic-research/essence/internal/data"
)

// Filter is a boolean expr-lang predicate over one record. Besides the
// record's top-level keys and the record itself (as "record"), expressions
// can call lookup(path), lookup(path, def), filled(path) and blank(path).
//
//	filled("item.cve.id") && severity == "high"
type Filter struct {
	src string
}

// NewFilter checks that src compiles.
func NewFilter(src string) (*Filter, error) {
	if _, err := expr.Compile(src, exprOpts(nil)...); err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return &Filter{src: src}, nil
}

func (f *Filter) String() string { return f.src }

// Match evaluates the predicate against record.
func (f *Filter) Match(record any) (bool, error) {
	prg, err := expr.Compile(f.src, exprOpts(record)...)
	if err != nil {
		return false, fmt.Errorf("compile filter %q: %w", f.src, err)
	}
	out, err := expr.Run(prg, exprEnv(record))
	if err != nil {
		return false, fmt.Errorf("run filter %q: %w", f.src, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.src, out)
	}
	return b, nil
}

func exprEnv(record any) map[string]any {
	env := map[string]any{}
	if m, ok := record.(map[string]any); ok {
		maps.Copy(env, m)
	}
	env["record"] = record
	return env
}

func exprOpts(record any) []expr.Option {
	return []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("lookup", func(params ...any) (any, error) {
			path, _ := params[0].(string)
			var def any
			if len(params) > 1 {
				def = params[1]
			}
			return data.Lookup(path, record, def), nil
		},
			new(func(string) any),
			new(func(string, any) any)),
		expr.Function("filled", func(params ...any) (any, error) {
			path, _ := params[0].(string)
			return data.IsFilled(data.Lookup(path, record, nil)), nil
		},
			new(func(string) bool)),
		expr.Function("blank", func(params ...any) (any, error) {
			path, _ := params[0].(string)
			return data.IsBlank(data.Lookup(path, record, nil)), nil
		},
			new(func(string) bool)),
	}
}
