package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mcncl/jsonprop/internal/errors"
)

func TestFormat_AlignsFields(t *testing.T) {
	input := "package models\n\n" +
		"type Person struct {\n" +
		"Name *string `jsonprop:\"name\"`\n" +
		"Age *int64 `jsonprop:\"age\"`\n" +
		"Address *Address `jsonprop:\"address,nested\"`\n" +
		"}\n"

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)

	expected := "package models\n\n" +
		"type Person struct {\n" +
		"\tName    *string  `jsonprop:\"name\"`\n" +
		"\tAge     *int64   `jsonprop:\"age\"`\n" +
		"\tAddress *Address `jsonprop:\"address,nested\"`\n" +
		"}\n"
	assert.Equal(t, expected, formatted)
}

func TestFormat_GroupsImports(t *testing.T) {
	input := `package models

import (
"github.com/mcncl/jsonprop/mapper"
"time"
"github.com/google/uuid"
"encoding/json"
)

var (
	_ = time.Now
	_ = uuid.New
	_ = json.Marshal
	_ mapper.Class
)
`

	t.Run("standard library first", func(t *testing.T) {
		formatted, err := NewFormatter().Format(input)
		require.NoError(t, err)

		assert.Contains(t, formatted, `import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mcncl/jsonprop/mapper"
)`)
	})

	t.Run("local prefix last", func(t *testing.T) {
		f := &Formatter{LocalPrefix: "github.com/mcncl/jsonprop"}
		formatted, err := f.Format(input)
		require.NoError(t, err)

		assert.Contains(t, formatted, `import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mcncl/jsonprop/mapper"
)`)
	})
}

func TestFormat_ImportsLeftAlone(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "single import",
			input: "package models\n\nimport \"time\"\n\nvar _ = time.Now\n",
		},
		{
			name:  "commented import",
			input: "package models\n\nimport (\n\t\"time\" // clock\n)\n\nvar _ = time.Now\n",
		},
		{
			name:  "no imports",
			input: "package models\n\ntype Tag struct{}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatted, err := NewFormatter().Format(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.input, formatted)
		})
	}
}

func TestFormat_NamedImport(t *testing.T) {
	input := "package models\n\nimport (\n\"github.com/samber/lo\"\nstderrors \"errors\"\n)\n\nvar _ = lo.Keys[string, int]\nvar _ = stderrors.New\n"

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Contains(t, formatted, "import (\n\tstderrors \"errors\"\n\n\t\"github.com/samber/lo\"\n)")
}

func TestFormat_InvalidCode(t *testing.T) {
	input := "package models\n\ntype Person struct {\n\tName string `jsonprop:\"name\"\n}\n"

	_, err := NewFormatter().Format(input)
	require.Error(t, err)
	assert.ErrorIs(t, err, &apperrors.AppError{Type: apperrors.ErrorTypeFormat})
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestFormat_EmptyInput(t *testing.T) {
	formatted, err := NewFormatter().Format("  \n")
	require.NoError(t, err)
	assert.Equal(t, "", formatted)
}

func TestFormat_PreservesComments(t *testing.T) {
	input := "// Code generated by jsonprop. DO NOT EDIT.\n\n" +
		"package models\n\n" +
		"// Person is the root model.\n" +
		"type Person struct {\n" +
		"\t// unit price in cents\n" +
		"\tPrice *int64 `jsonprop:\"price\"`\n" +
		"}\n"

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, input, formatted)
}
