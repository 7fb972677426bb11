package mapper

import (
	"reflect"

	"go.uber.org/zap"
)

// Serialize converts a model instance into a plain JSON-ready value: a
// map[string]any whose nested models are map[string]any and whose nested
// model arrays are []any.
//
// Only structs (or non-nil pointers to structs) are walked; anything else,
// including slices, maps and primitives, is returned unchanged. Fields
// without a descriptor are left out of the result.
//
// Fields are visited in declaration order, but a Go map has no order: the
// output keys come out in whatever order the encoder chooses. Marshal and
// the CLI sort them.
func (m *Mapper) Serialize(instance any) any {
	v := reflect.ValueOf(instance)
	if !isModelValue(v) {
		return instance
	}
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	class := v.Type()
	out := make(map[string]any)
	for _, f := range m.registry.Fields(class) {
		desc, ok := m.registry.Lookup(class, f.Name)
		if !ok {
			continue
		}
		value, present := m.serializeField(desc, v.FieldByIndex(f.Index))
		if !present {
			continue
		}
		out[m.sourceKey(desc, f.Name)] = value
	}
	return out
}

// serializeField computes the output value of one annotated field. It
// reports false when the field is excluded from the output.
func (m *Mapper) serializeField(desc Descriptor, field reflect.Value) (any, bool) {
	if desc.ExcludeToJSON {
		return nil, false
	}
	value := field.Interface()
	if desc.CustomConverter != nil {
		return desc.CustomConverter.ToJSON(value), true
	}
	if desc.Clazz == nil {
		return value, true
	}
	if isNilValue(field) {
		return nil, true
	}

	if IsArrayValue(value) {
		items := reflect.ValueOf(value)
		out := make([]any, items.Len())
		for i := range out {
			out[i] = m.serializeNested(desc.Clazz, items.Index(i).Interface())
		}
		return out, true
	}
	return m.serializeNested(desc.Clazz, value), true
}

func (m *Mapper) serializeNested(clazz Class, value any) any {
	v := reflect.ValueOf(value)
	if isNilValue(v) {
		return nil
	}
	if !isModelValue(v) {
		m.logger.Debug("passing through non-model value", zap.Stringer("class", clazz), zap.Stringer("type", v.Type()))
	}
	return m.Serialize(value)
}

// isModelValue reports whether v is a struct or a non-nil pointer chain
// ending in one.
func isModelValue(v reflect.Value) bool {
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.IsValid() && v.Kind() == reflect.Struct
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	}
	return false
}

// Serialize converts instance using the default mapper.
func Serialize(instance any) any {
	return defaultMapper.Serialize(instance)
}
