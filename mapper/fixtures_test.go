package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type Student struct {
	FullName *string
}

type Address struct {
	FirstLine  *string
	SecondLine *string
	Student    *Student
	City       *string
}

type Person struct {
	Name       *string
	Surname    *string
	Age        *int
	AddressArr []Address
	Address    *Address
}

// newPersonMapper registers the Person/Address/Student models on a fresh
// registry. Unannotated fields and descriptors without a name use camel case
// keys ("age", "city", "student").
func newPersonMapper(t *testing.T) *Mapper {
	t.Helper()
	reg := NewRegistry()

	require.NoError(t, Model[Student](reg).
		Field("FullName", "name").
		Err())
	require.NoError(t, Model[Address](reg).
		Field("FirstLine", "first-line").
		Field("SecondLine", "second-line").
		Field("Student", Descriptor{Clazz: ClassOf[Student]()}).
		Err())
	require.NoError(t, Model[Person](reg).
		Field("Name", "Name").
		Field("Surname", "xing").
		Nested("AddressArr", "AddressArr", ClassOf[Address]()).
		Nested("Address", "Address", ClassOf[Address]()).
		Err())

	return NewMapperWithOptions(reg, Options{KeyCase: KeyCaseCamel})
}

// fixedDateConverter mirrors a converter that parses dates on the way in and
// always writes a marker on the way out.
var fixedDateConverter = ConverterFuncs{
	From: func(raw any) any {
		s, _ := raw.(string)
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil
		}
		return t
	},
	To: func(any) any { return "some-date" },
}

func ptr[T any](v T) *T {
	return &v
}
