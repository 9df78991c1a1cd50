package api

// Projection maps a nested document onto a flat record.
// Manifests are written in YAML or JSON.
type Projection struct {
	// Version of the projection manifest.
	Version string `json:"version" yaml:"version"`
	// Selector is an optional JSONPath query. When set, the projection is
	// applied to every match and the result is a list of records.
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
	// Fields of the output record, in order.
	Fields []Field `json:"fields" yaml:"fields"`
}

// Field is one output key and the dot-notation path that feeds it.
type Field struct {
	// Name of the output key.
	Name string `json:"name" yaml:"name"`
	// Path resolved against the document; "*" fans out into a list.
	Path string `json:"path" yaml:"path"`
	// Default is used when the path resolves to nothing.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`
	// Required fields must resolve to a filled value.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
	// Strict limits resolution to maps and lists, without wildcards or
	// struct fields.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
}
