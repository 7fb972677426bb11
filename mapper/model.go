package mapper

// ModelBuilder registers the fields of one class in a fluent style:
//
//	err := mapper.Model[Person](reg).
//		Field("Name", "Name").
//		Field("Surname", "xing").
//		Nested("Address", "Address", mapper.ClassOf[Address]()).
//		Err()
//
// The first failing registration is kept and later calls become no-ops.
type ModelBuilder struct {
	registry *Registry
	class    Class
	err      error
}

// Model starts a builder for T on reg, or on the default registry when reg
// is nil.
func Model[T any](reg *Registry) *ModelBuilder {
	if reg == nil {
		reg = defaultRegistry
	}
	return &ModelBuilder{registry: reg, class: ClassOf[T]()}
}

// Field registers a name or descriptor for fieldName.
func (b *ModelBuilder) Field(fieldName string, nameOrDescriptor any) *ModelBuilder {
	if b.err != nil {
		return b
	}
	b.err = b.registry.Register(b.class, fieldName, nameOrDescriptor)
	return b
}

// Nested registers fieldName as holding clazz values (or a slice of them)
// read from and written to name.
func (b *ModelBuilder) Nested(fieldName, name string, clazz Class) *ModelBuilder {
	return b.Field(fieldName, Descriptor{Name: name, Clazz: clazz})
}

// Exclude registers fieldName under name and leaves it out of serialized
// output.
func (b *ModelBuilder) Exclude(fieldName, name string) *ModelBuilder {
	return b.Field(fieldName, Descriptor{Name: name, ExcludeToJSON: true})
}

// Converter registers fieldName under name with a custom converter.
func (b *ModelBuilder) Converter(fieldName, name string, conv CustomConverter) *ModelBuilder {
	return b.Field(fieldName, Descriptor{Name: name, CustomConverter: conv})
}

// Class returns the class being built.
func (b *ModelBuilder) Class() Class {
	return b.class
}

// Err returns the first registration error, if any.
func (b *ModelBuilder) Err() error {
	return b.err
}

// Must panics if any registration failed.
func (b *ModelBuilder) Must() Class {
	if b.err != nil {
		panic(b.err)
	}
	return b.class
}
