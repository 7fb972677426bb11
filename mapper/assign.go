package mapper

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"go.uber.org/zap"
)

var jsonNumberType = reflect.TypeOf(json.Number(""))

// assign stores v in dst, converting in-memory JSON values to the field's Go
// type. A value that cannot be converted leaves the field at its zero value.
func (m *Mapper) assign(dst reflect.Value, v any, class Class, fieldName string) {
	if coerce(dst, v) {
		return
	}
	dst.Set(reflect.Zero(dst.Type()))
	m.logger.Debug("value not assignable to field",
		zap.String("field", qualified(class, fieldName)),
		zap.Stringer("field_type", dst.Type()),
		zap.String("value_type", fmt.Sprintf("%T", v)))
}

// coerce stores v in dst and reports whether the conversion succeeded.
// nil stores the zero value.
func coerce(dst reflect.Value, v any) bool {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return true
	}
	return coerceValue(dst, reflect.ValueOf(v))
}

func coerceValue(dst, src reflect.Value) bool {
	t := dst.Type()

	for src.Kind() == reflect.Interface {
		if src.IsNil() {
			dst.Set(reflect.Zero(t))
			return true
		}
		src = src.Elem()
	}

	if src.Type().AssignableTo(t) {
		dst.Set(src)
		return true
	}

	if src.Kind() == reflect.Pointer {
		if src.IsNil() {
			dst.Set(reflect.Zero(t))
			return true
		}
		if t.Kind() != reflect.Pointer {
			return coerceValue(dst, src.Elem())
		}
	}

	switch t.Kind() {
	case reflect.Pointer:
		p := reflect.New(t.Elem())
		if src.Kind() == reflect.Pointer {
			src = src.Elem()
		}
		if !coerceValue(p.Elem(), src) {
			return false
		}
		dst.Set(p)
		return true

	case reflect.String:
		if src.Kind() != reflect.String {
			return false
		}
		dst.SetString(src.String())
		return true

	case reflect.Bool:
		if src.Kind() != reflect.Bool {
			return false
		}
		dst.SetBool(src.Bool())
		return true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := intOf(src)
		if !ok || dst.OverflowInt(n) {
			return false
		}
		dst.SetInt(n)
		return true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := intOf(src)
		if !ok || n < 0 || dst.OverflowUint(uint64(n)) {
			return false
		}
		dst.SetUint(uint64(n))
		return true

	case reflect.Float32, reflect.Float64:
		f, ok := floatOf(src)
		if !ok || dst.OverflowFloat(f) {
			return false
		}
		dst.SetFloat(f)
		return true

	case reflect.Slice:
		if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
			return false
		}
		if src.Kind() == reflect.Slice && src.IsNil() {
			dst.Set(reflect.Zero(t))
			return true
		}
		out := reflect.MakeSlice(t, src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			if !coerceValue(out.Index(i), src.Index(i)) {
				return false
			}
		}
		dst.Set(out)
		return true

	case reflect.Array:
		if (src.Kind() != reflect.Slice && src.Kind() != reflect.Array) || src.Len() != t.Len() {
			return false
		}
		out := reflect.New(t).Elem()
		for i := 0; i < src.Len(); i++ {
			if !coerceValue(out.Index(i), src.Index(i)) {
				return false
			}
		}
		dst.Set(out)
		return true

	case reflect.Map:
		if src.Kind() != reflect.Map || t.Key().Kind() != reflect.String || src.Type().Key().Kind() != reflect.String {
			return false
		}
		if src.IsNil() {
			dst.Set(reflect.Zero(t))
			return true
		}
		out := reflect.MakeMapWithSize(t, src.Len())
		iter := src.MapRange()
		for iter.Next() {
			key := reflect.New(t.Key()).Elem()
			key.SetString(iter.Key().String())
			val := reflect.New(t.Elem()).Elem()
			if !coerceValue(val, iter.Value()) {
				return false
			}
			out.SetMapIndex(key, val)
		}
		dst.Set(out)
		return true
	}

	return false
}

// intOf returns src as an int64 when it holds a whole number.
func intOf(src reflect.Value) (int64, bool) {
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return src.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := src.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return wholeFloat(src.Float())
	case reflect.String:
		if src.Type() != jsonNumberType {
			return 0, false
		}
		s := src.String()
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return wholeFloat(f)
	}
	return 0, false
}

func wholeFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// floatOf returns src as a float64 when it holds a number.
func floatOf(src reflect.Value) (float64, bool) {
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(src.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(src.Uint()), true
	case reflect.Float32, reflect.Float64:
		return src.Float(), true
	case reflect.String:
		if src.Type() != jsonNumberType {
			return 0, false
		}
		f, err := strconv.ParseFloat(src.String(), 64)
		return f, err == nil
	}
	return 0, false
}
