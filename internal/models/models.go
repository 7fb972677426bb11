package models

// JSONValue is any decoded JSON value: a string, json.Number, bool, nil,
// JSONObject or JSONArray.
type JSONValue = any

// JSONObject is a decoded JSON object. It is the plain map type so values
// built here can be used by code outside this module.
type JSONObject = map[string]any

// JSONArray is a decoded JSON array.
type JSONArray = []any

// IntermediateRepresentation holds a parsed JSON document.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}

// Field type names understood by schema files.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeNumber = "number"
	TypeBool   = "bool"
	TypeAny    = "any"
	TypeTime   = "time"
	TypeObject = "object"

	// ArrayPrefix marks a slice of the type that follows it, e.g. "[]Address".
	ArrayPrefix = "[]"
)

// FieldDef describes one field of a model in a schema file.
type FieldDef struct {
	Name      string `yaml:"name"`
	JSON      string `yaml:"json,omitempty"`
	Type      string `yaml:"type"`
	Nested    bool   `yaml:"nested,omitempty"`
	Exclude   bool   `yaml:"exclude,omitempty"`
	Converter string `yaml:"converter,omitempty"`
	// Annotated defaults to true when omitted from the file.
	Annotated *bool  `yaml:"annotated,omitempty"`
	Comment   string `yaml:"comment,omitempty"`
}

// IsAnnotated reports whether the field carries a descriptor.
func (f FieldDef) IsAnnotated() bool {
	return f.Annotated == nil || *f.Annotated
}

// ModelDef describes a model class: a name and its fields in declaration order.
type ModelDef struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
	// IsRoot marks the model a document maps to by default.
	IsRoot bool `yaml:"root,omitempty"`
}
