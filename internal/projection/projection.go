// Package projection applies api.Projection manifests to documents.
package projection

import (
	"errors"
	"fmt"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/goccy/go-yaml"

	"github.com/agentic-research/essence/api"
	"github.com/agentic-research/essence/internal/arr"
	"github.com/agentic-research/essence/internal/data"
)

var ErrRequired = errors.New("required field is blank")

// Load reads and validates a manifest from fs. JSON manifests parse as YAML.
func Load(fs billy.Filesystem, name string) (*api.Projection, error) {
	b, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", name, err)
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", name, err)
	}
	return p, nil
}

func Parse(b []byte) (*api.Projection, error) {
	var p api.Projection
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate reports every malformed field at once.
func Validate(p *api.Projection) error {
	var errs []error
	if len(p.Fields) == 0 {
		errs = append(errs, errors.New("no fields"))
	}
	seen := make(map[string]bool, len(p.Fields))
	for i, f := range p.Fields {
		switch {
		case f.Name == "":
			errs = append(errs, fmt.Errorf("field %d: missing name", i))
		case seen[f.Name]:
			errs = append(errs, fmt.Errorf("field %s: duplicate name", f.Name))
		}
		seen[f.Name] = true
		if f.Path == "" {
			errs = append(errs, fmt.Errorf("field %s: missing path", f.Name))
		}
	}
	if p.Selector != "" {
		if _, err := data.Query(p.Selector, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply projects doc. Without a selector the result is a map[string]any;
// with one it is a []any of maps, one per match.
func Apply(p *api.Projection, doc any) (any, error) {
	if p.Selector == "" {
		return Record(p, doc)
	}
	matches, err := data.Query(p.Selector, doc)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(matches))
	var errs []error
	for i, m := range matches {
		rec, err := Record(p, m)
		if err != nil {
			errs = append(errs, fmt.Errorf("match %d: %w", i, err))
			continue
		}
		out = append(out, rec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Record resolves every field of p against doc. Blank required fields are
// joined into one error wrapping ErrRequired.
func Record(p *api.Projection, doc any) (map[string]any, error) {
	out := make(map[string]any, len(p.Fields))
	var errs []error
	for _, f := range p.Fields {
		var v any
		if f.Strict {
			v = arr.LookupStrict(f.Path, doc, f.Default)
		} else {
			v = data.Lookup(f.Path, doc, f.Default)
		}
		if f.Required && data.IsBlank(v) {
			errs = append(errs, fmt.Errorf("%s (%s): %w", f.Name, f.Path, ErrRequired))
		}
		out[f.Name] = v
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
