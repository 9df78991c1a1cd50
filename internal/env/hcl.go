package env

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// LoadHCL reads a flat HCL file of NAME = value attributes from fs.
func LoadHCL(fs billy.Filesystem, name string) (map[string]string, error) {
	src, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", name, err)
	}
	return ParseHCL(src, name)
}

// ParseHCL converts top-level attributes to strings. Numbers use their
// shortest decimal form, bools become "true"/"false" and nulls are skipped.
// Lists, objects and unknown values are rejected.
func ParseHCL(src []byte, filename string) (map[string]string, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse env file %s: %w", filename, diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse env file %s: %w", filename, diags)
	}

	vars := make(map[string]string, len(attrs))
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		val, diags := attrs[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluate %s: %w", name, diags)
		}
		s, ok, err := ctyString(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		if ok {
			vars[name] = s
		}
	}
	return vars, nil
}

func ctyString(v cty.Value) (string, bool, error) {
	switch {
	case v.IsNull():
		return "", false, nil
	case !v.IsWhollyKnown():
		return "", false, fmt.Errorf("value is not known")
	case v.Type() == cty.String:
		return v.AsString(), true, nil
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('f', -1), true, nil
	case v.Type() == cty.Bool:
		return strconv.FormatBool(v.True()), true, nil
	}
	return "", false, fmt.Errorf("unsupported type %s", v.Type().FriendlyName())
}
