package mapper

import (
	"reflect"
)

// Class identifies a model type. Classes are always struct types.
type Class = reflect.Type

// ClassOf returns the class of T. A pointer type is unwrapped, so
// ClassOf[*Person]() and ClassOf[Person]() are the same class.
func ClassOf[T any]() Class {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return classFromType(t)
}

// classFromType unwraps pointers and returns t when it names a struct.
func classFromType(t reflect.Type) Class {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// elementClass looks through pointers, slices and arrays and returns the
// struct type at the bottom, if any.
func elementClass(t reflect.Type) Class {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Struct:
			return t
		default:
			return nil
		}
	}
	return nil
}

// Descriptor is the metadata attached to one field of a class.
type Descriptor struct {
	// Name is the JSON key the field is read from and written to. Empty means
	// the field name, after the mapper's key case is applied.
	Name string
	// Clazz is the class of the nested value, or of each element when the
	// field is a slice.
	Clazz Class
	// CustomConverter replaces the default mapping of the field in both
	// directions.
	CustomConverter CustomConverter
	// ExcludeToJSON leaves the field out of serialized output.
	ExcludeToJSON bool
}

// descriptorFrom normalizes the shapes accepted at registration time.
func descriptorFrom(nameOrDescriptor any) (Descriptor, bool) {
	switch d := nameOrDescriptor.(type) {
	case string:
		return Descriptor{Name: d}, true
	case Descriptor:
		return d, true
	case *Descriptor:
		if d == nil {
			return Descriptor{}, false
		}
		return *d, true
	}
	return Descriptor{}, false
}
