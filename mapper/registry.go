package mapper

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/mcncl/jsonprop/internal/errors"
)

type fieldKey struct {
	class Class
	field string
}

// Registry associates descriptors with the fields of model classes.
//
// Registration normally happens once per field while models are declared,
// before any mapping call reads the class. A registry is safe for concurrent
// use.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[fieldKey]Descriptor
	fields      map[Class][]reflect.StructField
	converters  map[string]CustomConverter
}

// NewRegistry creates an empty registry holding only the built-in converters.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[fieldKey]Descriptor),
		fields:      make(map[Class][]reflect.StructField),
		converters:  builtinConverters(),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by the package-level
// functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register attaches metadata to a field of class. nameOrDescriptor is either
// a string, which only renames the JSON key, or a Descriptor (or non-nil
// *Descriptor). A later registration for the same field replaces the earlier
// one.
func (r *Registry) Register(class Class, fieldName string, nameOrDescriptor any) error {
	desc, ok := descriptorFrom(nameOrDescriptor)
	if !ok {
		return errors.NewConfigurationError(
			fmt.Sprintf("field %s: metadata of type %T is neither a name nor a descriptor", qualified(class, fieldName), nameOrDescriptor),
			errors.ErrInvalidDescriptor,
		)
	}
	return r.register(class, fieldName, desc)
}

// MustRegister is like Register but panics on error. It is meant for init
// functions, where a bad descriptor is a programming mistake.
func (r *Registry) MustRegister(class Class, fieldName string, nameOrDescriptor any) {
	if err := r.Register(class, fieldName, nameOrDescriptor); err != nil {
		panic(err)
	}
}

func (r *Registry) register(class Class, fieldName string, desc Descriptor) error {
	c := classFromType(class)
	if c == nil {
		return errors.NewConfigurationError(
			fmt.Sprintf("field %s: %v is not a struct", qualified(class, fieldName), class),
			errors.ErrInvalidClass,
		)
	}
	if !hasField(ownFields(c), fieldName) {
		return errors.NewConfigurationError(
			fmt.Sprintf("field %s", qualified(c, fieldName)),
			errors.ErrUnknownField,
		)
	}
	if desc.Clazz != nil {
		nested := classFromType(desc.Clazz)
		if nested == nil {
			return errors.NewConfigurationError(
				fmt.Sprintf("field %s: nested class %v is not a struct", qualified(c, fieldName), desc.Clazz),
				errors.ErrInvalidClass,
			)
		}
		desc.Clazz = nested
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[fieldKey{class: c, field: fieldName}] = desc
	return nil
}

// Lookup returns the descriptor registered for a field of class.
func (r *Registry) Lookup(class Class, fieldName string) (Descriptor, bool) {
	c := classFromType(class)
	if c == nil {
		return Descriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.descriptors[fieldKey{class: c, field: fieldName}]
	return desc, ok
}

// DeclaredFieldType returns the Go type a field of class is declared with.
func (r *Registry) DeclaredFieldType(class Class, fieldName string) (reflect.Type, bool) {
	for _, f := range r.Fields(class) {
		if f.Name == fieldName {
			return f.Type, true
		}
	}
	return nil, false
}

// Fields returns the fields of class visited during mapping: its own
// exported, non-embedded fields in declaration order.
func (r *Registry) Fields(class Class) []reflect.StructField {
	c := classFromType(class)
	if c == nil {
		return nil
	}

	r.mu.RLock()
	fields, ok := r.fields[c]
	r.mu.RUnlock()
	if ok {
		return fields
	}

	fields = ownFields(c)
	r.mu.Lock()
	r.fields[c] = fields
	r.mu.Unlock()
	return fields
}

// Classes returns every class with at least one registered field, ordered by
// type name.
func (r *Registry) Classes() []Class {
	r.mu.RLock()
	seen := make(map[Class]struct{})
	for key := range r.descriptors {
		seen[key.class] = struct{}{}
	}
	r.mu.RUnlock()

	classes := make([]Class, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].String() < classes[j].String()
	})
	return classes
}

// Len returns the number of registered field descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// RegisterConverter makes conv available to struct tags and schema files
// under id. Registering an existing id replaces it.
func (r *Registry) RegisterConverter(id string, conv CustomConverter) error {
	if id == "" || conv == nil {
		return errors.NewConfigurationError(
			fmt.Sprintf("converter %q: id and converter are required", id),
			errors.ErrInvalidDescriptor,
		)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[id] = conv
	return nil
}

// Converter returns the converter registered under id.
func (r *Registry) Converter(id string) (CustomConverter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.converters[id]
	return conv, ok
}

// ConverterIDs returns the ids of every registered converter, sorted.
func (r *Registry) ConverterIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.converters))
	for id := range r.converters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func ownFields(c Class) []reflect.StructField {
	fields := make([]reflect.StructField, 0, c.NumField())
	for i := 0; i < c.NumField(); i++ {
		f := c.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func hasField(fields []reflect.StructField, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func qualified(class Class, fieldName string) string {
	if class == nil {
		return "<nil>." + fieldName
	}
	name := class.Name()
	if name == "" {
		name = class.String()
	}
	return name + "." + fieldName
}

// Register attaches metadata to a field of class in the default registry.
func Register(class Class, fieldName string, nameOrDescriptor any) error {
	return defaultRegistry.Register(class, fieldName, nameOrDescriptor)
}

// MustRegister is like Register but panics on error.
func MustRegister(class Class, fieldName string, nameOrDescriptor any) {
	defaultRegistry.MustRegister(class, fieldName, nameOrDescriptor)
}

// Lookup returns the descriptor for a field of class in the default registry.
func Lookup(class Class, fieldName string) (Descriptor, bool) {
	return defaultRegistry.Lookup(class, fieldName)
}

// DeclaredFieldType returns the declared Go type of a field of class.
func DeclaredFieldType(class Class, fieldName string) (reflect.Type, bool) {
	return defaultRegistry.DeclaredFieldType(class, fieldName)
}
