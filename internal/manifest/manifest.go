// Package manifest decodes program description files. A description lists
// modules with their type and procedure declarations; type expressions stay
// as text until the loader parses them.
package manifest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/stoutes/chapel/internal/errors"
)

type Manifest struct {
	Path    string   `toml:"-" yaml:"-"`
	Modules []Module `toml:"module" yaml:"module"`
}

type Module struct {
	Name  string   `toml:"name" yaml:"name"`
	Uses  []string `toml:"uses" yaml:"uses"`
	Types []Type   `toml:"type" yaml:"type"`
	Procs []Proc   `toml:"proc" yaml:"proc"`
}

// Type is a record, class, union or enum declaration.
type Type struct {
	Kind      string   `toml:"kind" yaml:"kind"`
	Name      string   `toml:"name" yaml:"name"`
	Parent    string   `toml:"parent" yaml:"parent"`
	Abstract  bool     `toml:"abstract" yaml:"abstract"`
	Constants []string `toml:"constants" yaml:"constants"`
	Fields    []Field  `toml:"field" yaml:"field"`
	Methods   []Proc   `toml:"method" yaml:"method"`
}

type Field struct {
	Name    string `toml:"name" yaml:"name"`
	Kind    string `toml:"kind" yaml:"kind"`
	Type    string `toml:"type" yaml:"type"`
	Default bool   `toml:"default" yaml:"default"`
}

// Proc is a procedure or operator. Receiver makes a module-level proc a
// secondary method; This is the receiver intent.
type Proc struct {
	Name     string   `toml:"name" yaml:"name"`
	Operator bool     `toml:"operator" yaml:"operator"`
	Receiver string   `toml:"receiver" yaml:"receiver"`
	This     string   `toml:"this" yaml:"this"`
	Formals  []Formal `toml:"formal" yaml:"formal"`
}

type Formal struct {
	Name    string `toml:"name" yaml:"name"`
	Intent  string `toml:"intent" yaml:"intent"`
	Type    string `toml:"type" yaml:"type"`
	Default bool   `toml:"default" yaml:"default"`
}

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf picks the decoder from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, errors.WithHint(
		errors.Newf("unsupported program description %q", path),
		"use a .toml, .yaml or .yml file")
}

func Load(path string) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read program description %s", path)
	}
	m, err := Decode(b, format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	m.Path = path
	return m, nil
}

// Decode parses a description. Unknown keys are rejected so that typos do
// not silently drop declarations.
func Decode(data []byte, format Format) (*Manifest, error) {
	m := &Manifest{}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "invalid YAML")
		}
	default:
		md, err := toml.Decode(string(data), m)
		if err != nil {
			return nil, errors.Wrap(err, "invalid TOML")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, errors.WithHint(
				errors.Newf("unknown keys: %s", strings.Join(keys, ", ")),
				"check the spelling against the module/type/field/proc/formal schema")
		}
	}
	return m, nil
}
