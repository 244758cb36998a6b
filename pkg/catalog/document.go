package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-addressfields/pkg/address"
)

// Document is the serialized form of a static catalog.
type Document struct {
	DefaultLocale  string                  `json:"defaultLocale" yaml:"defaultLocale"`
	DefaultCountry string                  `json:"defaultCountry" yaml:"defaultCountry"`
	Locales        map[string]LocaleLabels `json:"locales" yaml:"locales"`
	Countries      map[string]CountryEntry `json:"countries" yaml:"countries"`
}

// LocaleLabels holds the base labels shared by every country for one locale.
type LocaleLabels struct {
	Labels         map[string]string `json:"labels" yaml:"labels"`
	OptionalLabels map[string]string `json:"optionalLabels" yaml:"optionalLabels"`
}

// CountryEntry describes one country layout. Labels holds per-locale
// overrides of the base locale labels; Optional lists the canonical keys that
// are optional in this country.
type CountryEntry struct {
	Name     string                       `json:"name" yaml:"name"`
	Format   string                       `json:"format" yaml:"format"`
	Optional []string                     `json:"optional" yaml:"optional"`
	Labels   map[string]map[string]string `json:"labels" yaml:"labels"`
	Zones    []address.Zone               `json:"zones" yaml:"zones"`
}

// ParseDocument decodes a JSON or YAML catalog document. source is only used
// in error messages.
func ParseDocument(data []byte, source string) (Document, error) {
	var doc Document
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("catalog: document %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = Document{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("catalog: parse %s: %w", source, err)
	}
	return doc, nil
}

// Load reads a catalog document from r and builds a Static catalog.
func Load(r io.Reader, source string) (*Static, error) {
	if r == nil {
		return nil, fmt.Errorf("catalog: missing reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", source, err)
	}
	doc, err := ParseDocument(data, source)
	if err != nil {
		return nil, err
	}
	return NewStatic(doc)
}

// LoadFS reads the catalog document at path inside fsys.
func LoadFS(fsys fs.FS, path string) (*Static, error) {
	if fsys == nil {
		return nil, fmt.Errorf("catalog: missing filesystem")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	doc, err := ParseDocument(data, path)
	if err != nil {
		return nil, err
	}
	return NewStatic(doc)
}

func (d Document) validate() error {
	if strings.TrimSpace(d.DefaultCountry) == "" {
		return fmt.Errorf("catalog: document is missing defaultCountry")
	}
	if _, ok := d.Countries[d.DefaultCountry]; !ok {
		return fmt.Errorf("catalog: default country %q has no entry", d.DefaultCountry)
	}
	if strings.TrimSpace(d.DefaultLocale) == "" {
		return fmt.Errorf("catalog: document is missing defaultLocale")
	}
	if _, ok := d.Locales[d.DefaultLocale]; !ok {
		return fmt.Errorf("catalog: default locale %q has no labels", d.DefaultLocale)
	}
	for code, entry := range d.Countries {
		if strings.TrimSpace(entry.Format) == "" {
			return fmt.Errorf("catalog: country %q has an empty format", code)
		}
	}
	return nil
}
