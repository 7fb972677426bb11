package schema

import (
	"encoding/json"
	"go/token"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/jsonprop/internal/models"
)

// typeRef is a parsed field type: a base name under zero or more slices.
type typeRef struct {
	base   string
	slices int
}

func parseTypeRef(expr string) typeRef {
	expr = strings.TrimSpace(expr)
	var ref typeRef
	for strings.HasPrefix(expr, models.ArrayPrefix) {
		ref.slices++
		expr = strings.TrimSpace(strings.TrimPrefix(expr, models.ArrayPrefix))
	}
	ref.base = expr
	return ref
}

// isModel reports whether the base names a model rather than a built-in.
func (r typeRef) isModel() bool {
	return !isBuiltinType(r.base)
}

// Scalar fields are pointers so a key missing from the input stays null
// instead of becoming a zero value.
var builtinTypes = map[string]reflect.Type{
	models.TypeString: reflect.TypeOf((*string)(nil)),
	models.TypeInt:    reflect.TypeOf((*int64)(nil)),
	models.TypeFloat:  reflect.TypeOf((*float64)(nil)),
	models.TypeNumber: reflect.TypeOf((*json.Number)(nil)),
	models.TypeBool:   reflect.TypeOf((*bool)(nil)),
	models.TypeAny:    reflect.TypeOf((*any)(nil)).Elem(),
	models.TypeTime:   reflect.TypeOf((*time.Time)(nil)),
	models.TypeObject: reflect.TypeOf(map[string]any(nil)),
}

func isBuiltinType(name string) bool {
	_, ok := builtinTypes[name]
	return ok
}

// goType returns the field type for ref. Slice elements drop the pointer of
// scalar types; models are always referenced by pointer.
func (r typeRef) goType(classes map[string]reflect.Type) reflect.Type {
	var t reflect.Type
	if r.isModel() {
		t = reflect.PointerTo(classes[r.base])
	} else {
		t = builtinTypes[r.base]
		if r.slices > 0 && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
	}
	for i := 0; i < r.slices; i++ {
		t = reflect.SliceOf(t)
	}
	return t
}

// FieldName returns the exported Go field name for a schema field name.
// Names that already are exported identifiers are kept as written.
func FieldName(name string) string {
	if token.IsIdentifier(name) && token.IsExported(name) {
		return name
	}
	return strcase.ToCamel(name)
}

// GoTypeName returns the Go source form of a field type, e.g. "*int64" or
// "[]*Address". Model names are used as written.
func GoTypeName(expr string) string {
	ref := parseTypeRef(expr)
	var name string
	if ref.isModel() {
		name = "*" + ref.base
	} else {
		t := builtinTypes[ref.base]
		if ref.slices > 0 && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		name = strings.ReplaceAll(t.String(), "interface {}", "any")
	}
	return strings.Repeat(models.ArrayPrefix, ref.slices) + name
}
