package analyzer

import (
	"encoding/json"
	"fmt"
	"go/token"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/mcncl/jsonprop/internal/config"
	"github.com/mcncl/jsonprop/internal/errors"
	"github.com/mcncl/jsonprop/internal/models"
	"github.com/mcncl/jsonprop/internal/schema"
	"github.com/mcncl/jsonprop/mapper"
)

// DefaultRootName is the default name for the root model if not specified.
const DefaultRootName = "Root"

// valueField names the single field of a model wrapping a non-object root.
const valueField = "value"

var (
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Analyzer infers model definitions from a sample JSON document
type Analyzer struct {
	// modelNames tracks generated model names to avoid collisions
	modelNames map[string]int
	defs       []models.ModelDef
	config     *config.Config
}

// fieldType is the inferred schema type of a value plus the converter that
// reads it, if any.
type fieldType struct {
	typ       string
	converter string
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.NewConfig())
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{
		modelNames: make(map[string]int),
		config:     cfg,
	}
}

// Analyze walks the parsed sample and returns one model per distinct object
// shape, root model first. Non-object roots are wrapped in a root model with a
// single "value" field; for an array of objects the element model is the root.
func (a *Analyzer) Analyze(ir models.IntermediateRepresentation, rootName string) ([]models.ModelDef, error) {
	if rootName == "" {
		rootName = DefaultRootName
	}
	rootName = a.modelName(rootName)
	a.modelNames[rootName]++

	if err := a.analyzeRoot(ir.Root, rootName); err != nil {
		return nil, errors.NewAnalysisError("failed to infer models", err)
	}

	defs := a.defs
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].IsRoot && !defs[j].IsRoot })
	return defs, nil
}

func (a *Analyzer) analyzeRoot(root models.JSONValue, rootName string) error {
	switch v := root.(type) {
	case models.JSONObject:
		_, err := a.addModel(rootName, []models.JSONObject{v}, true)
		return err
	case models.JSONArray:
		if objects, ok := objectsOf(v); ok {
			_, err := a.addModel(rootName, objects, true)
			return err
		}
	}

	ft, err := a.analyzeValue(root, rootName)
	if err != nil {
		return err
	}
	a.defs = append(a.defs, models.ModelDef{
		Name:   rootName,
		IsRoot: true,
		Fields: []models.FieldDef{{Name: "Value", JSON: valueField, Type: ft.typ, Converter: ft.converter}},
	})
	return nil
}

// addModel builds one model from every sample object and returns its name.
// An existing model with the same fields is reused.
func (a *Analyzer) addModel(name string, objects []models.JSONObject, isRoot bool) (string, error) {
	if !a.config.Arrays.MergeDifferentObjects && len(objects) > 1 {
		objects = objects[:1]
	}

	keys := lo.Uniq(lo.FlatMap(objects, func(obj models.JSONObject, _ int) []string { return lo.Keys(obj) }))
	sort.Strings(keys)

	def := models.ModelDef{Name: name, IsRoot: isRoot}
	usedNames := make(map[string]int, len(keys))
	for _, key := range keys {
		goName := a.fieldName(key, usedNames)
		values := lo.FilterMap(objects, func(obj models.JSONObject, _ int) (models.JSONValue, bool) {
			v, ok := obj[key]
			return v, ok
		})

		ft, err := a.mergedType(values, name+goName)
		if err != nil {
			return "", fmt.Errorf("failed to analyze field '%s' in model '%s': %w", key, name, err)
		}
		if mapping, ok := a.config.FindTypeMapping(key); ok {
			ft = fieldType{typ: mapping.Type, converter: mapping.Converter}
		}

		field := models.FieldDef{Name: goName, Type: ft.typ, Converter: ft.converter}
		switch {
		case key == "" || key == "-" || strings.Contains(key, ","):
			// Such keys cannot be written in a struct tag.
			field.Annotated = lo.ToPtr(false)
			field.Converter = ""
			field.Comment = fmt.Sprintf("key %q cannot be mapped", key)
		case goName != key:
			field.JSON = key
		}
		def.Fields = append(def.Fields, field)
	}

	if !isRoot {
		for _, existing := range a.defs {
			if reflect.DeepEqual(existing.Fields, def.Fields) {
				return existing.Name, nil
			}
		}
		def.Name = a.uniqueModelName(name)
	}
	a.defs = append(a.defs, def)
	return def.Name, nil
}

// mergedType infers one type for all sample values seen under a key. Nulls
// give way to any other type; conflicting types become any.
func (a *Analyzer) mergedType(values []models.JSONValue, suggestedName string) (fieldType, error) {
	present := lo.Filter(values, func(v models.JSONValue, _ int) bool { return v != nil })
	if len(present) == 0 {
		return fieldType{typ: models.TypeAny}, nil
	}

	if objects, ok := objectsOf(present); ok {
		return a.objectType(objects, suggestedName)
	}
	if lo.SomeBy(present, func(v models.JSONValue) bool { _, ok := v.(models.JSONObject); return ok }) {
		return fieldType{typ: models.TypeAny}, nil
	}

	first, err := a.analyzeValue(present[0], suggestedName)
	if err != nil {
		return fieldType{}, err
	}
	for _, v := range present[1:] {
		next, err := a.analyzeValue(v, suggestedName)
		if err != nil {
			return fieldType{}, err
		}
		if next != first {
			if isNumeric(first.typ) && isNumeric(next.typ) {
				first = fieldType{typ: models.TypeFloat}
				continue
			}
			return fieldType{typ: models.TypeAny}, nil
		}
	}
	return first, nil
}

// analyzeValue infers the type of a single JSON value.
func (a *Analyzer) analyzeValue(node models.JSONValue, suggestedName string) (fieldType, error) {
	switch v := node.(type) {
	case nil:
		return fieldType{typ: models.TypeAny}, nil
	case bool:
		return fieldType{typ: models.TypeBool}, nil
	case string:
		return analyzeString(v), nil
	case json.Number:
		return analyzeNumber(v), nil
	case models.JSONObject:
		return a.objectType([]models.JSONObject{v}, suggestedName)
	case models.JSONArray:
		return a.arrayType(v, suggestedName)
	default:
		return fieldType{}, fmt.Errorf("unexpected JSON value type %T", v)
	}
}

func (a *Analyzer) objectType(objects []models.JSONObject, suggestedName string) (fieldType, error) {
	if lo.EveryBy(objects, func(obj models.JSONObject) bool { return len(obj) == 0 }) {
		return fieldType{typ: models.TypeObject}, nil
	}
	name, err := a.addModel(a.modelName(suggestedName), objects, false)
	if err != nil {
		return fieldType{}, err
	}
	return fieldType{typ: name}, nil
}

func (a *Analyzer) arrayType(arr models.JSONArray, suggestedName string) (fieldType, error) {
	if len(arr) == 0 {
		return fieldType{typ: models.ArrayPrefix + models.TypeAny}, nil
	}

	elementName := suggestedName
	if a.config.Arrays.SingularizeNames {
		elementName = singularize(suggestedName)
	}

	elem, err := a.mergedType([]models.JSONValue(arr), elementName)
	if err != nil {
		return fieldType{}, err
	}
	// Converters apply to whole fields, so time elements stay strings.
	if elem.typ == models.TypeTime {
		elem = fieldType{typ: models.TypeString}
	}
	// Slices of slices of models cannot be mapped.
	if strings.HasPrefix(elem.typ, models.ArrayPrefix) && isModelType(strings.TrimLeft(elem.typ, "[]")) {
		elem = fieldType{typ: models.TypeAny}
	}
	return fieldType{typ: models.ArrayPrefix + elem.typ}, nil
}

func analyzeString(s string) fieldType {
	if rfc3339Regex.MatchString(s) {
		return fieldType{typ: models.TypeTime, converter: mapper.ConverterTime}
	}
	if dateOnlyRegex.MatchString(s) {
		return fieldType{typ: models.TypeTime, converter: mapper.ConverterDate}
	}
	return fieldType{typ: models.TypeString}
}

func analyzeNumber(num json.Number) fieldType {
	if _, err := num.Int64(); err == nil {
		return fieldType{typ: models.TypeInt}
	}
	return fieldType{typ: models.TypeFloat}
}

func isNumeric(typ string) bool {
	return typ == models.TypeInt || typ == models.TypeFloat
}

func isModelType(typ string) bool {
	switch typ {
	case models.TypeString, models.TypeInt, models.TypeFloat, models.TypeNumber,
		models.TypeBool, models.TypeAny, models.TypeTime, models.TypeObject:
		return false
	}
	return typ != ""
}

// objectsOf reports whether every value is a JSON object.
func objectsOf[S ~[]models.JSONValue](values S) ([]models.JSONObject, bool) {
	if len(values) == 0 {
		return nil, false
	}
	objects := make([]models.JSONObject, 0, len(values))
	for _, v := range values {
		obj, ok := v.(models.JSONObject)
		if !ok {
			return nil, false
		}
		objects = append(objects, obj)
	}
	return objects, true
}

// modelName turns a suggestion into an exported Go identifier.
func (a *Analyzer) modelName(suggested string) string {
	name := schema.FieldName(suggested)
	if !token.IsIdentifier(name) || !token.IsExported(name) {
		name = "Model" + name
	}
	return name
}

// uniqueModelName ensures that the model name is unique by appending a number if needed.
func (a *Analyzer) uniqueModelName(baseName string) string {
	name := baseName
	count := a.modelNames[baseName]
	if count > 0 {
		name = fmt.Sprintf("%s%d", baseName, count)
	}
	a.modelNames[baseName] = count + 1
	return name
}

// fieldName returns the Go field name for a JSON key, unique within one model.
func (a *Analyzer) fieldName(key string, used map[string]int) string {
	name := a.config.GetFieldName(key)
	if name == "" {
		name = "Field"
	}
	if !token.IsIdentifier(name) || !token.IsExported(name) {
		name = "Field" + name
		if !token.IsIdentifier(name) {
			name = "Field"
		}
	}

	count := used[name]
	used[name] = count + 1
	if count > 0 {
		name = fmt.Sprintf("%s%d", name, count)
	}
	return name
}

var knownSingulars = map[string]string{
	"series":    "series",
	"status":    "status",
	"analysis":  "analysis",
	"species":   "species",
	"news":      "news",
	"children":  "child",
	"people":    "person",
	"men":       "man",
	"women":     "woman",
	"data":      "data",
	"media":     "media",
	"addresses": "address",
}

// singularize attempts to convert a plural name to a singular one. Only the
// last word of a PascalCase name is changed.
func singularize(plural string) string {
	lower := strings.ToLower(plural)
	for word, singular := range knownSingulars {
		if !strings.HasSuffix(lower, word) {
			continue
		}
		cut := len(plural) - len(word)
		if cut > 0 && !isUpper(plural[cut]) {
			continue
		}
		if isUpper(plural[cut]) {
			singular = strings.ToUpper(singular[:1]) + singular[1:]
		}
		return plural[:cut] + singular
	}

	switch {
	case strings.HasSuffix(lower, "ies") && len(lower) > 3:
		return plural[:len(plural)-3] + "y"
	case strings.HasSuffix(lower, "sses"), strings.HasSuffix(lower, "xes"), strings.HasSuffix(lower, "ches"), strings.HasSuffix(lower, "shes"):
		return plural[:len(plural)-2]
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"), strings.HasSuffix(lower, "is"):
		return plural
	case strings.HasSuffix(lower, "s") && len(lower) > 1:
		return plural[:len(plural)-1]
	}
	return plural
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
