package mapper

import (
	"reflect"
)

// typeOrValue returns the reflect.Type described by x. A reflect.Type is taken
// as-is, anything else is treated as a runtime value.
func typeOrValue(x any) (reflect.Type, bool) {
	if x == nil {
		return nil, false
	}
	if t, ok := x.(reflect.Type); ok {
		return t, t != nil
	}
	return reflect.TypeOf(x), true
}

func isPrimitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// IsPrimitiveType reports whether x is a string, boolean or number, either as
// a runtime value or as a reflect.Type. Pointers to those kinds count too,
// they are the boxed form of a primitive.
func IsPrimitiveType(x any) bool {
	t, ok := typeOrValue(x)
	if !ok {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return isPrimitiveKind(t.Kind())
}

// IsArrayType reports whether x is a slice or array, either as a runtime value
// or as a reflect.Type.
func IsArrayType(x any) bool {
	t, ok := typeOrValue(x)
	if !ok {
		return false
	}
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

// IsArrayValue reports whether x is a runtime slice or array value. Unlike
// IsArrayType a reflect.Type is not accepted.
func IsArrayValue(x any) bool {
	if x == nil {
		return false
	}
	if _, ok := x.(reflect.Type); ok {
		return false
	}
	k := reflect.TypeOf(x).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// IsObjectValue reports whether x is a non-null structured value: a non-nil
// map keyed by strings, a struct, or a non-nil pointer to a struct.
func IsObjectValue(x any) bool {
	if x == nil {
		return false
	}
	if _, ok := x.(reflect.Type); ok {
		return false
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Map:
		return !v.IsNil() && v.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return true
	case reflect.Pointer:
		return !v.IsNil() && v.Elem().Kind() == reflect.Struct
	}
	return false
}
