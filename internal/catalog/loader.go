package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a catalogue YAML file.
type file struct {
	Components []ComponentDefinition `yaml:"components"`
}

func decode(data []byte) (file, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return file{}, fmt.Errorf("parsing catalogue: %w", err)
	}
	return f, nil
}

// LoadFile reads a YAML catalogue and merges it over the built-in definitions.
//
// Definitions in the file replace built-ins with the same id; new ids are
// appended after the built-ins. Every definition is validated.
//
// Parameters:
//   - path: Path to a YAML file with a top-level "components" list
//
// Returns:
//   - *Catalog: Merged catalogue
//   - error: If the file cannot be read, parsed or validated
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading catalogue file: %w", err)
	}
	return Merge(Builtin(), data)
}

// Merge decodes YAML catalogue data and layers it over base.
func Merge(base *Catalog, data []byte) (*Catalog, error) {
	f, err := decode(data)
	if err != nil {
		return nil, err
	}
	defs := base.List()
	defs = append(defs, f.Components...)
	c, err := New(defs...)
	if err != nil {
		return nil, fmt.Errorf("validating catalogue: %w", err)
	}
	return c, nil
}
