// Package source loads documents and record sets for lookups: JSON and YAML
// files through a billy filesystem, and JSON records stored in SQLite.
package source

import (
	"fmt"
	"io"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/agentic-research/essence/internal/data"
)

// Format selects a document decoder.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "auto", "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatFor picks a format from a file extension.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

type Loader struct {
	FS  billy.Filesystem
	Log *zap.Logger
}

func NewLoader(fs billy.Filesystem, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{FS: fs, Log: log}
}

// Load reads name from the loader's filesystem and decodes it by extension.
func (l *Loader) Load(name string) (any, error) {
	b, err := util.ReadFile(l.FS, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	v, err := l.Decode(b, FormatFor(name))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return v, nil
}

// Read decodes a whole stream, e.g. stdin.
func (l *Loader) Read(r io.Reader, format Format) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return l.Decode(b, format)
}

// Decode parses b as format. FormatAuto tries JSON first, then YAML.
func (l *Loader) Decode(b []byte, format Format) (any, error) {
	switch format {
	case FormatJSON:
		return data.DecodeJSON(b)
	case FormatYAML:
		return decodeYAML(b)
	}

	v, err := data.DecodeJSON(b)
	if err == nil {
		return v, nil
	}
	l.Log.Debug("input is not json, trying yaml", zap.Error(err))
	return decodeYAML(b)
}

func decodeYAML(b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return v, nil
}
