package mapper

import (
	"reflect"

	"go.uber.org/zap"
)

// Deserialize builds a new instance of class from an in-memory JSON object
// and returns it as a pointer (*T boxed in any).
//
// The result is nil when class or json is nil, or when json is not an object
// (numbers, strings, NaN, arrays). Nested values that are missing or invalid
// leave the corresponding field at its zero value instead of failing the
// whole call.
func (m *Mapper) Deserialize(class Class, json any) any {
	instance, ok := m.deserialize(class, json)
	if !ok {
		return nil
	}
	return instance.Interface()
}

func (m *Mapper) deserialize(class Class, json any) (reflect.Value, bool) {
	if class == nil || json == nil {
		return reflect.Value{}, false
	}
	if !IsObjectValue(json) {
		return reflect.Value{}, false
	}
	c := classFromType(class)
	if c == nil {
		m.logger.Debug("cannot construct a non-struct class", zap.Stringer("class", class))
		return reflect.Value{}, false
	}

	instance := reflect.New(c)
	elem := instance.Elem()
	for _, f := range m.registry.Fields(c) {
		field := elem.FieldByIndex(f.Index)
		desc, annotated := m.registry.Lookup(c, f.Name)

		switch {
		case annotated && desc.CustomConverter != nil:
			raw, _ := jsonGet(json, m.sourceKey(desc, f.Name))
			m.assign(field, desc.CustomConverter.FromJSON(raw), c, f.Name)
		case !annotated:
			raw, _ := jsonGet(json, m.keyCase.Apply(f.Name))
			m.assign(field, raw, c, f.Name)
		default:
			m.mapFromJSON(desc, field, f, c, json)
		}
	}
	return instance, true
}

// mapFromJSON fills one annotated field that has no custom converter.
func (m *Mapper) mapFromJSON(desc Descriptor, field reflect.Value, f reflect.StructField, class Class, json any) {
	innerJSON, _ := jsonGet(json, m.sourceKey(desc, f.Name))
	declared := f.Type

	if IsArrayType(declared) {
		if desc.Clazz != nil || IsPrimitiveType(declared) {
			if innerJSON != nil && IsArrayValue(innerJSON) {
				m.assignElements(field, desc.Clazz, innerJSON)
				return
			}
			field.Set(reflect.Zero(field.Type()))
			return
		}
		// Arrays of unannotated classes keep the raw JSON.
		m.assign(field, innerJSON, class, f.Name)
		return
	}

	if !IsPrimitiveType(declared) {
		if nested := m.nestedClass(desc, declared); nested != nil {
			instance, ok := m.deserialize(nested, innerJSON)
			if !ok {
				if innerJSON != nil {
					m.logger.Debug("nested value is not an object",
						zap.String("field", qualified(class, f.Name)),
						zap.Stringer("class", nested))
				}
				field.Set(reflect.Zero(field.Type()))
				return
			}
			m.assign(field, instance.Interface(), class, f.Name)
			return
		}
	}

	m.assign(field, innerJSON, class, f.Name)
}

// nestedClass resolves the class a non-array field recurses into: the
// descriptor's class when given, otherwise a declared struct type that has
// fields of its own. Opaque structs such as time.Time are assigned directly.
func (m *Mapper) nestedClass(desc Descriptor, declared reflect.Type) Class {
	if desc.Clazz != nil {
		return desc.Clazz
	}
	c := classFromType(declared)
	if c == nil || len(m.registry.Fields(c)) == 0 {
		return nil
	}
	return c
}

// assignElements deserializes every element of a JSON array as clazz and
// stores the results, in order, in a new slice (or array) for field.
func (m *Mapper) assignElements(field reflect.Value, clazz Class, innerJSON any) {
	src := reflect.ValueOf(innerJSON)
	ft := field.Type()

	var out reflect.Value
	n := src.Len()
	if ft.Kind() == reflect.Array {
		out = reflect.New(ft).Elem()
		if n > ft.Len() {
			m.logger.Debug("dropping elements beyond array length",
				zap.Int("length", ft.Len()),
				zap.Int("elements", n),
				zap.Stringer("class", clazz))
			n = ft.Len()
		}
	} else {
		out = reflect.MakeSlice(ft, n, n)
	}

	for i := 0; i < n; i++ {
		instance, ok := m.deserialize(clazz, src.Index(i).Interface())
		if !ok {
			continue
		}
		if !coerce(out.Index(i), instance.Interface()) {
			m.logger.Debug("element not assignable",
				zap.Int("index", i),
				zap.Stringer("element_type", ft.Elem()),
				zap.Stringer("class", clazz))
		}
	}
	field.Set(out)
}

// jsonGet reads key from a JSON object. It reports false when the key is
// missing or json is not an object.
func jsonGet(json any, key string) (any, bool) {
	switch obj := json.(type) {
	case map[string]any:
		v, ok := obj[key]
		return v, ok
	case nil:
		return nil, false
	}

	v := reflect.ValueOf(json)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Struct:
		sf, ok := v.Type().FieldByName(key)
		if !ok || !sf.IsExported() {
			return nil, false
		}
		fv, err := v.FieldByIndexErr(sf.Index)
		if err != nil {
			return nil, false
		}
		return fv.Interface(), true
	}
	return nil, false
}

// Deserialize builds a T from json using the default mapper. T is a struct
// type or a pointer to one; Deserialize[*Person] returns a **Person whose
// target is the new instance.
func Deserialize[T any](json any) *T {
	return DeserializeWith[T](defaultMapper, json)
}

// DeserializeWith builds a T from json using m.
func DeserializeWith[T any](m *Mapper, json any) *T {
	instance := m.Deserialize(ClassOf[T](), json)
	if instance == nil {
		return nil
	}
	if t, ok := instance.(*T); ok {
		return t
	}

	v := reflect.ValueOf(instance)
	out := reflect.New(reflect.TypeOf((*T)(nil)).Elem())
	if !v.Type().AssignableTo(out.Elem().Type()) {
		m.logger.Debug("instance does not fit the requested type",
			zap.Stringer("instance", v.Type()),
			zap.Stringer("type", out.Elem().Type()))
		return nil
	}
	out.Elem().Set(v)
	return out.Interface().(*T)
}
