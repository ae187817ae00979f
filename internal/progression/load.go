package progression

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tiers.yaml
var defaultTiersYAML []byte

var defaultTable = mustLoadDefault()

// tableFile is the on-disk YAML layout of a tier table.
type tableFile struct {
	Tiers []Tier `yaml:"tiers"`
}

// Default returns the built-in SoftSwan badge table.
func Default() *Table {
	return defaultTable
}

// LoadTable decodes a YAML tier table from r and validates it.
func LoadTable(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f tableFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyTable
		}
		return nil, fmt.Errorf("decode tier table: %w", err)
	}
	return NewTable(f.Tiers)
}

// LoadTableFile reads a YAML tier table from path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tier table: %w", err)
	}
	defer f.Close()

	t, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func mustLoadDefault() *Table {
	t, err := LoadTable(bytes.NewReader(defaultTiersYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in tier table: %v", err))
	}
	return t
}
