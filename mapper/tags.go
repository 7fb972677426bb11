package mapper

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonprop/internal/errors"
)

// TagName is the struct tag key read by RegisterTags.
const TagName = "jsonprop"

// Tag options.
const (
	tagNested    = "nested"
	tagExclude   = "exclude"
	tagConverter = "converter="
)

// RegisterTags registers a descriptor for every field of class carrying a
// jsonprop struct tag:
//
//	Name    string    `jsonprop:"Name"`
//	Address *Address  `jsonprop:"Address,nested"`
//	Born    time.Time `jsonprop:"dob,converter=date"`
//	Secret  string    `jsonprop:",exclude"`
//	Cache   string    `jsonprop:"-"`
//
// The nested option sets the descriptor's class to the struct type found
// under the field's pointers, slices and arrays. Fields without the tag, or
// tagged "-", stay unannotated.
func (r *Registry) RegisterTags(class Class) error {
	c := classFromType(class)
	if c == nil {
		return errors.NewConfigurationError(
			fmt.Sprintf("class %v is not a struct", class),
			errors.ErrInvalidClass,
		)
	}

	for _, f := range r.Fields(c) {
		tag, ok := f.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}

		desc, err := r.parseTag(tag)
		if err != nil {
			return errors.NewConfigurationError(fmt.Sprintf("field %s", qualified(c, f.Name)), err)
		}
		if desc.Clazz == nestedMarker {
			desc.Clazz = elementClass(f.Type)
			if desc.Clazz == nil {
				return errors.NewConfigurationError(
					fmt.Sprintf("field %s: nested option on non-struct type %v", qualified(c, f.Name), f.Type),
					errors.ErrInvalidClass,
				)
			}
		}
		if err := r.register(c, f.Name, desc); err != nil {
			return err
		}
	}
	return nil
}

// MustRegisterTags is like RegisterTags but panics on error.
func (r *Registry) MustRegisterTags(class Class) {
	if err := r.RegisterTags(class); err != nil {
		panic(err)
	}
}

// RegisterTags registers the tagged fields of class in the default registry.
func RegisterTags(class Class) error {
	return defaultRegistry.RegisterTags(class)
}

type nestedPlaceholder struct{}

// nestedMarker stands in for the field's element class until the field type
// is known.
var nestedMarker = ClassOf[nestedPlaceholder]()

func (r *Registry) parseTag(tag string) (Descriptor, error) {
	parts := strings.Split(tag, ",")
	desc := Descriptor{Name: strings.TrimSpace(parts[0])}

	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == tagNested:
			desc.Clazz = nestedMarker
		case opt == tagExclude:
			desc.ExcludeToJSON = true
		case strings.HasPrefix(opt, tagConverter):
			id := strings.TrimPrefix(opt, tagConverter)
			conv, ok := r.Converter(id)
			if !ok {
				return Descriptor{}, fmt.Errorf("%w: %q", errors.ErrUnknownConverter, id)
			}
			desc.CustomConverter = conv
		default:
			return Descriptor{}, fmt.Errorf("%w: unknown option %q", errors.ErrInvalidTag, opt)
		}
	}
	return desc, nil
}
