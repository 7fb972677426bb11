// Package schema loads model definitions from YAML files and turns them into
// mapper classes at runtime.
package schema

import (
	"fmt"
	"go/token"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonprop/internal/errors"
	"github.com/mcncl/jsonprop/internal/models"
)

// Schema is an ordered list of model definitions.
type Schema struct {
	Models []models.ModelDef `yaml:"models"`
}

// Load reads and parses a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("schema file '%s' not found", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to read schema file '%s'", path), err)
	}
	return Parse(data)
}

// Parse parses a schema document and checks that names are usable.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.NewSchemaError("failed to parse schema YAML", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// FromAnalysis wraps inferred model definitions in a Schema.
func FromAnalysis(defs []models.ModelDef) *Schema {
	return &Schema{Models: defs}
}

// Marshal encodes the schema as YAML.
func (s *Schema) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.NewOutputError("failed to encode schema YAML", err)
	}
	return data, nil
}

// Validate checks model and field names. Type references are resolved later
// by Build.
func (s *Schema) Validate() error {
	if len(s.Models) == 0 {
		return errors.NewSchemaError("schema defines no models", nil)
	}

	dupModels := lo.FindDuplicates(lo.Map(s.Models, func(m models.ModelDef, _ int) string { return m.Name }))
	if len(dupModels) > 0 {
		return errors.NewSchemaError(fmt.Sprintf("duplicate model '%s'", dupModels[0]), nil)
	}

	for _, m := range s.Models {
		if !token.IsIdentifier(m.Name) || !token.IsExported(m.Name) {
			return errors.NewSchemaError(fmt.Sprintf("model name '%s' is not an exported Go identifier", m.Name), nil)
		}

		seen := make(map[string]string, len(m.Fields))
		for _, f := range m.Fields {
			goName := FieldName(f.Name)
			if !token.IsIdentifier(goName) || !token.IsExported(goName) {
				return errors.NewSchemaError(fmt.Sprintf("field '%s.%s' does not make an exported Go identifier", m.Name, f.Name), nil)
			}
			if prev, ok := seen[goName]; ok {
				return errors.NewSchemaError(fmt.Sprintf("fields '%s' and '%s' of model '%s' both map to %s", prev, f.Name, m.Name, goName), nil)
			}
			seen[goName] = f.Name
			if f.Type == "" {
				return errors.NewSchemaError(fmt.Sprintf("field '%s.%s' has no type", m.Name, f.Name), nil)
			}
		}
	}
	return nil
}

// Model returns the definition named name.
func (s *Schema) Model(name string) (models.ModelDef, bool) {
	return lo.Find(s.Models, func(m models.ModelDef) bool { return m.Name == name })
}

// Root returns the name of the model marked as root, or the only model when
// the schema has just one.
func (s *Schema) Root() string {
	if root, ok := lo.Find(s.Models, func(m models.ModelDef) bool { return m.IsRoot }); ok {
		return root.Name
	}
	if len(s.Models) == 1 {
		return s.Models[0].Name
	}
	return ""
}
