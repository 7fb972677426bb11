package mapper

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// CustomConverter overrides the default mapping of a single field.
// FromJSON receives the raw value found under the field's key (nil when the
// key is missing) and ToJSON receives the current field value.
type CustomConverter interface {
	FromJSON(raw any) any
	ToJSON(value any) any
}

// ConverterFuncs adapts a pair of functions to CustomConverter. A nil
// function passes its argument through unchanged.
type ConverterFuncs struct {
	From func(raw any) any
	To   func(value any) any
}

var _ CustomConverter = ConverterFuncs{}

// FromJSON implements CustomConverter.
func (c ConverterFuncs) FromJSON(raw any) any {
	if c.From == nil {
		return raw
	}
	return c.From(raw)
}

// ToJSON implements CustomConverter.
func (c ConverterFuncs) ToJSON(value any) any {
	if c.To == nil {
		return value
	}
	return c.To(value)
}

// Names of the converters every registry starts with.
const (
	ConverterDate   = "date"
	ConverterTime   = "time"
	ConverterUnix   = "unix"
	ConverterString = "string"
)

// DateLayout is the layout used by the date converter.
const DateLayout = "2006-01-02"

// DateConverter maps "YYYY-MM-DD" strings to time.Time values.
var DateConverter CustomConverter = layoutConverter(DateLayout)

// TimeConverter maps RFC 3339 strings to time.Time values.
var TimeConverter CustomConverter = layoutConverter(time.RFC3339Nano)

// UnixConverter maps epoch seconds to UTC time.Time values.
var UnixConverter CustomConverter = ConverterFuncs{
	From: func(raw any) any {
		f, ok := toFloat(raw)
		if !ok {
			return nil
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC()
	},
	To: func(value any) any {
		t, ok := asTime(value)
		if !ok {
			return nil
		}
		return t.Unix()
	},
}

// StringConverter maps any scalar to its string form on the way in and
// passes strings through on the way out.
var StringConverter CustomConverter = ConverterFuncs{
	From: func(raw any) any {
		switch v := raw.(type) {
		case nil:
			return nil
		case string:
			return v
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		default:
			return fmt.Sprint(v)
		}
	},
}

func layoutConverter(layout string) CustomConverter {
	return ConverterFuncs{
		From: func(raw any) any {
			s, ok := raw.(string)
			if !ok {
				return nil
			}
			t, err := time.Parse(layout, s)
			if err != nil {
				return nil
			}
			return t
		},
		To: func(value any) any {
			t, ok := asTime(value)
			if !ok {
				return nil
			}
			return t.Format(layout)
		},
	}
}

func asTime(value any) (time.Time, bool) {
	switch t := value.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func builtinConverters() map[string]CustomConverter {
	return map[string]CustomConverter{
		ConverterDate:   DateConverter,
		ConverterTime:   TimeConverter,
		ConverterUnix:   UnixConverter,
		ConverterString: StringConverter,
	}
}
