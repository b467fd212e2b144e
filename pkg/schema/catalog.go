package schema

import (
	"io/fs"
	"os"
	"path"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SourceSpec declares how one source file is read and mapped. Exactly
// one of Columns (positional canonical names replacing the header) or
// Fields (source header -> canonical field renames) should be set; a
// spec with neither falls back to header inference but still applies
// its encoding and delimiter overrides.
type SourceSpec struct {
	// Match is a path.Match pattern against the source file name.
	Match string `yaml:"match"`
	// Columns assigns canonical field names by position, for sources
	// whose header is unusable.
	Columns []string `yaml:"columns,omitempty"`
	// Fields renames source columns to canonical fields.
	Fields map[string]string `yaml:"fields,omitempty"`
	// Concat builds canonical fields from several source columns.
	Concat []ConcatTransform `yaml:"concat,omitempty"`
	// Encoding overrides autodetection: utf-8, shift_jis, euc-jp,
	// utf-16, utf-16le, utf-16be, latin-1.
	Encoding string `yaml:"encoding,omitempty"`
	// Delimiter overrides the comma field separator.
	Delimiter string `yaml:"delimiter,omitempty"`
}

// Comma returns the field separator rune declared by the spec, or 0
// when the default applies.
func (s *SourceSpec) Comma() rune {
	if s == nil || s.Delimiter == "" {
		return 0
	}
	return []rune(s.Delimiter)[0]
}

// Catalog is the optional per-deployment list of declared sources.
// Sources not matched by any spec fall back to header inference.
type Catalog struct {
	Sources []SourceSpec `yaml:"sources"`
}

// LoadCatalog reads a YAML source catalog. A missing file is not an
// error: it means every source is inferred.
func LoadCatalog(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return &Catalog{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading catalog %s", filename)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "decoding catalog %s", filename)
	}
	for i := range c.Sources {
		spec := &c.Sources[i]
		if spec.Match == "" {
			return nil, errors.Errorf("catalog %s: source %d has no match pattern", filename, i)
		}
		if _, err := path.Match(spec.Match, "probe"); err != nil {
			return nil, errors.Wrapf(err, "catalog %s: bad pattern %q", filename, spec.Match)
		}
	}
	return &c, nil
}

// SpecFor returns the first spec whose pattern matches the source file
// name, or nil when the source is undeclared.
func (c *Catalog) SpecFor(name string) *SourceSpec {
	for i := range c.Sources {
		if ok, _ := path.Match(c.Sources[i].Match, name); ok {
			return &c.Sources[i]
		}
	}
	return nil
}

// MappingFor resolves a source's column mapping: positional columns
// beat declared fields beat header inference.
func MappingFor(spec *SourceSpec, header []string) ColumnMapping {
	if spec != nil {
		if len(spec.Columns) > 0 {
			direct := make(map[string]string, len(spec.Columns))
			for i, canonical := range spec.Columns {
				if i >= len(header) {
					break
				}
				direct[header[i]] = canonical
			}
			return ColumnMapping{Direct: direct, Concat: spec.Concat}
		}
		if len(spec.Fields) > 0 || len(spec.Concat) > 0 {
			return ColumnMapping{Direct: spec.Fields, Concat: spec.Concat}
		}
	}
	return ColumnMapping{Direct: InferMappings(header)}
}
