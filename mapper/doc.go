// Package mapper converts between plain JSON values and typed Go models.
//
// Each model is a struct type (a class). Its fields may carry a Descriptor
// that renames the JSON key, names the class of nested values, installs a
// CustomConverter or excludes the field from serialized output. Descriptors
// live in a Registry and are attached with Register, the Model builder, or
// jsonprop struct tags via RegisterTags.
//
// Deserialize walks the fields of a freshly allocated instance in
// declaration order and pulls each value out of an in-memory JSON object
// (a map[string]any, any string-keyed map, or a struct). Fields without a
// descriptor are read by name. Serialize walks an instance the other way and
// emits a map[string]any holding only the fields that have a descriptor.
//
// Missing or malformed input never produces an error: a non-object document
// yields a nil instance and a bad nested value yields a zero field. There is
// no cycle detection: serializing a graph with a pointer cycle recurses
// without bound.
package mapper
