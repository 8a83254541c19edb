package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/types"
)

// definitionFile is the YAML shape of a definition document.
type definitionFile struct {
	Components []*types.ComponentDefinition `yaml:"components"`
}

// LoadFile reads one YAML definition document, validates it against the
// embedded schema, and returns the decoded definitions in file order.
func LoadFile(path string) ([]*types.ComponentDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapTransient(err, "Loader", "LoadFile", "read "+path)
	}
	return Parse(data)
}

// Parse decodes a YAML definition document from memory.
func Parse(data []byte) ([]*types.ComponentDefinition, error) {
	// Decode generically first so the document can be schema-checked
	// before any typed decoding happens.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "Parse", "yaml decode")
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "Parse", "definition decode")
	}

	for _, def := range file.Components {
		if err := def.Validate(); err != nil {
			return nil, errors.Wrap(err, "Loader", "Parse", "definition validation")
		}
	}
	return file.Components, nil
}

// LoadDir loads every *.yaml / *.yml file in dir in lexical order and
// returns the concatenated definitions.
func LoadDir(dir string) ([]*types.ComponentDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapTransient(err, "Loader", "LoadDir", "read "+dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	var defs []*types.ComponentDefinition
	for _, path := range paths {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, loaded...)
	}
	return defs, nil
}

// RegisterAll registers every definition, reporting the failing type when
// one is rejected. Registration stops at the first failure so a partially
// bad document never half-populates a registry silently.
func RegisterAll(reg *Registry, defs []*types.ComponentDefinition, opts ...RegisterOption) error {
	for _, def := range defs {
		if err := reg.Register(def, opts...); err != nil {
			return errors.Wrap(
				fmt.Errorf("type %q: %w", def.Type, err),
				"Loader", "RegisterAll", "registration")
		}
	}
	return nil
}
