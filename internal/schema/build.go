package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mcncl/jsonprop/internal/errors"
	"github.com/mcncl/jsonprop/internal/models"
	"github.com/mcncl/jsonprop/mapper"
)

// ModelTag is the struct tag holding the model name of a built field. It also
// keeps two models with identical fields from collapsing into one type.
const ModelTag = "model"

// Set holds the classes built from a schema.
type Set struct {
	classes map[string]mapper.Class
	order   []string
}

// Class returns the class built for the model called name.
func (s *Set) Class(name string) (mapper.Class, error) {
	c, ok := s.classes[name]
	if !ok {
		return nil, errors.NewSchemaError(fmt.Sprintf("model '%s'", name), errors.ErrUnknownModel)
	}
	return c, nil
}

// Names returns the model names in dependency order: every model comes after
// the models its fields reference.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Build creates a struct type for every model and registers the field
// descriptors on reg. Referenced models are built first, so reference cycles
// are rejected with ErrModelCycle.
func (s *Schema) Build(reg *mapper.Registry) (*Set, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(s.Models))
	for i, m := range s.Models {
		index[m.Name] = i
	}

	refs := make([][]typeRef, len(s.Models))
	deps := make([][]int, len(s.Models))
	for i, m := range s.Models {
		for _, f := range m.Fields {
			ref := parseTypeRef(f.Type)
			if ref.isModel() {
				j, ok := index[ref.base]
				if !ok {
					return nil, errors.NewSchemaError(
						fmt.Sprintf("field '%s.%s' has type '%s'", m.Name, f.Name, f.Type),
						errors.ErrUnknownModel,
					)
				}
				if ref.slices > 1 {
					return nil, errors.NewSchemaError(fmt.Sprintf("field '%s.%s': nested slices of models are not supported", m.Name, f.Name), nil)
				}
				deps[i] = append(deps[i], j)
			}
			refs[i] = append(refs[i], ref)
		}
	}

	order, stuck := topoSort(len(s.Models), func(i int) []int { return deps[i] })
	if len(stuck) > 0 {
		names := lo.Map(stuck, func(i int, _ int) string { return s.Models[i].Name })
		return nil, errors.NewSchemaError(
			fmt.Sprintf("models %s", strings.Join(names, ", ")),
			errors.ErrModelCycle,
		)
	}

	set := &Set{classes: make(map[string]mapper.Class, len(s.Models))}
	for _, i := range order {
		m := s.Models[i]
		fields := make([]reflect.StructField, 0, len(m.Fields))
		for k, f := range m.Fields {
			tag, err := fieldTag(m, f, refs[i][k])
			if err != nil {
				return nil, err
			}
			fields = append(fields, reflect.StructField{
				Name: FieldName(f.Name),
				Type: refs[i][k].goType(set.classes),
				Tag:  tag,
			})
		}

		class := reflect.StructOf(fields)
		if err := reg.RegisterTags(class); err != nil {
			return nil, errors.NewSchemaError(fmt.Sprintf("model '%s'", m.Name), err)
		}
		set.classes[m.Name] = class
		set.order = append(set.order, m.Name)
	}
	return set, nil
}

// fieldTag renders the jsonprop and model tags of one field.
func fieldTag(m models.ModelDef, f models.FieldDef, ref typeRef) (reflect.StructTag, error) {
	modelTag := ModelTag + ":" + strconv.Quote(m.Name)
	if !f.IsAnnotated() {
		if f.JSON != "" || f.Nested || f.Exclude || f.Converter != "" {
			return "", errors.NewSchemaError(fmt.Sprintf("field '%s.%s' is unannotated but sets mapping options", m.Name, f.Name), nil)
		}
		return reflect.StructTag(modelTag), nil
	}

	key := f.JSON
	if key == "" {
		key = f.Name
	}
	if key == "-" || strings.Contains(key, ",") {
		return "", errors.NewSchemaError(fmt.Sprintf("field '%s.%s' has unusable JSON key %q", m.Name, f.Name, key), nil)
	}

	opts := []string{key}
	switch {
	case ref.isModel():
		opts = append(opts, "nested")
	case f.Nested:
		return "", errors.NewSchemaError(fmt.Sprintf("field '%s.%s' is nested but has type '%s'", m.Name, f.Name, f.Type), nil)
	}
	if f.Exclude {
		opts = append(opts, "exclude")
	}
	if f.Converter != "" {
		opts = append(opts, "converter="+f.Converter)
	}

	return reflect.StructTag(mapper.TagName + ":" + strconv.Quote(strings.Join(opts, ",")) + " " + modelTag), nil
}
