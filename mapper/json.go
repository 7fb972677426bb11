package mapper

import (
	"github.com/mcncl/jsonprop/internal/codec"
	"github.com/mcncl/jsonprop/internal/errors"
)

// Marshal serializes instance and encodes the result as compact JSON text
// with object keys sorted.
func (m *Mapper) Marshal(instance any) ([]byte, error) {
	data, err := codec.Marshal(m.Serialize(instance))
	if err != nil {
		return nil, errors.NewMappingError("failed to encode serialized model", err)
	}
	return data, nil
}

// Unmarshal decodes JSON text and deserializes it as class. Text that is
// valid JSON but not an object yields a nil instance and no error.
func (m *Mapper) Unmarshal(data []byte, class Class) (any, error) {
	root, err := codec.Unmarshal(data)
	if err != nil {
		return nil, errors.NewParsingError("failed to decode JSON text", err)
	}
	return m.Deserialize(class, root), nil
}

// Marshal serializes instance with the default mapper and encodes it.
func Marshal(instance any) ([]byte, error) {
	return defaultMapper.Marshal(instance)
}

// Unmarshal decodes data into a new T using the default mapper.
func Unmarshal[T any](data []byte) (*T, error) {
	instance, err := defaultMapper.Unmarshal(data, ClassOf[T]())
	if err != nil {
		return nil, err
	}
	t, _ := instance.(*T)
	return t, nil
}
