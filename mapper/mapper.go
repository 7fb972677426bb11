package mapper

import (
	"fmt"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
)

// KeyCase controls how a field name becomes a JSON key when no explicit name
// is registered.
type KeyCase string

const (
	// KeyCaseIdentity uses the Go field name unchanged.
	KeyCaseIdentity       KeyCase = "identity"
	KeyCaseCamel          KeyCase = "camel"
	KeyCasePascal         KeyCase = "pascal"
	KeyCaseSnake          KeyCase = "snake"
	KeyCaseKebab          KeyCase = "kebab"
	KeyCaseScreamingSnake KeyCase = "screaming_snake"
)

// ParseKeyCase validates a key case name. The empty string is the identity
// case.
func ParseKeyCase(s string) (KeyCase, error) {
	switch kc := KeyCase(s); kc {
	case "":
		return KeyCaseIdentity, nil
	case KeyCaseIdentity, KeyCaseCamel, KeyCasePascal, KeyCaseSnake, KeyCaseKebab, KeyCaseScreamingSnake:
		return kc, nil
	}
	return "", fmt.Errorf("unknown key case %q", s)
}

// Apply converts a field name to a JSON key.
func (kc KeyCase) Apply(fieldName string) string {
	switch kc {
	case KeyCaseCamel:
		return strcase.ToLowerCamel(fieldName)
	case KeyCasePascal:
		return strcase.ToCamel(fieldName)
	case KeyCaseSnake:
		return strcase.ToSnake(fieldName)
	case KeyCaseKebab:
		return strcase.ToKebab(fieldName)
	case KeyCaseScreamingSnake:
		return strcase.ToScreamingSnake(fieldName)
	default:
		return fieldName
	}
}

// Options tune a Mapper.
type Options struct {
	// Logger receives debug output about values that were dropped or passed
	// through. Defaults to a no-op logger.
	Logger *zap.Logger
	// KeyCase is applied to field names that have no explicit JSON name.
	KeyCase KeyCase
}

// Mapper converts between in-memory JSON values and model instances using
// the descriptors of a Registry.
type Mapper struct {
	registry *Registry
	logger   *zap.Logger
	keyCase  KeyCase
}

// NewMapper creates a Mapper reading from registry, or from the default
// registry when registry is nil.
func NewMapper(registry *Registry) *Mapper {
	return NewMapperWithOptions(registry, Options{})
}

// NewMapperWithOptions creates a Mapper with custom options.
func NewMapperWithOptions(registry *Registry, opts Options) *Mapper {
	if registry == nil {
		registry = defaultRegistry
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	keyCase := opts.KeyCase
	if keyCase == "" {
		keyCase = KeyCaseIdentity
	}
	return &Mapper{
		registry: registry,
		logger:   logger.Named("mapper"),
		keyCase:  keyCase,
	}
}

// Registry returns the registry the mapper reads from.
func (m *Mapper) Registry() *Registry {
	return m.registry
}

// sourceKey returns the JSON key for a field: the descriptor's name when set,
// otherwise the field name in the mapper's key case.
func (m *Mapper) sourceKey(desc Descriptor, fieldName string) string {
	if desc.Name != "" {
		return desc.Name
	}
	return m.keyCase.Apply(fieldName)
}

var defaultMapper = NewMapper(defaultRegistry)

// Default returns the mapper used by the package-level functions.
func Default() *Mapper {
	return defaultMapper
}
