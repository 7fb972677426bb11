package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonprop/internal/cli"
	apperrors "github.com/mcncl/jsonprop/internal/errors"
	"github.com/mcncl/jsonprop/internal/schema"
)

const (
	personSchema = "../../testdata/person/schema.yml"
	personInput  = "../../testdata/person/input.json"
	personMapped = "../../testdata/person/mapped.json"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI with an empty config file so no config from the
// working tree is picked up.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), ".jsonprop.yml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))

	var stdout, stderr bytes.Buffer
	rt := &cli.Runtime{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		Exit:   func(int) {},
	}
	err := cli.Run(append([]string{"--config", cfgPath}, args...), rt)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCLI_MapFileInputOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")

	res := run(t, "", "map", "-s", personSchema, "-i", personInput, "-o", output)
	require.NoError(t, res.err, res.stderr)

	assert.JSONEq(t, readFile(t, personMapped), readFile(t, output))
	assert.Contains(t, res.stderr, "Mapped JSON written to "+output)
	assert.Empty(t, res.stdout)
}

func TestCLI_MapStdinStdout(t *testing.T) {
	input := `{"Name":"Mark","xing":"Galea","age":30,"AddressArr":[],"Address":null}`

	res := run(t, input, "map", "-s", personSchema)
	require.NoError(t, res.err, res.stderr)

	assert.Equal(t, `{"Address":null,"AddressArr":[],"Name":"Mark","born":null,"xing":"Galea"}`+"\n", res.stdout)
}

func TestCLI_MapSelectedModel(t *testing.T) {
	res := run(t, `{"first-line": "Main St", "student": {"name": "Ada"}, "extra": 1}`, "map", "-s", personSchema, "-m", "Address")
	require.NoError(t, res.err, res.stderr)

	assert.JSONEq(t, `{"first-line": "Main St", "student": {"name": "Ada"}}`, res.stdout)
}

func TestCLI_MapIndentAndDump(t *testing.T) {
	res := run(t, `{"Name": "Mark"}`, "map", "-s", personSchema, "--indent", "  ", "--dump")
	require.NoError(t, res.err, res.stderr)

	assert.Contains(t, res.stdout, "{\n  \"Address\": null,\n")
	assert.Contains(t, res.stderr, `"Mark"`, "dump shows the deserialized instance")
}

func TestCLI_MapNonObjectInput(t *testing.T) {
	for _, input := range []string{`[1, 2]`, `123`, `123.45`, "42 \n", `"Mark"`, `null`} {
		t.Run(input, func(t *testing.T) {
			res := run(t, input, "map", "-s", personSchema)
			require.NoError(t, res.err, res.stderr)

			assert.Equal(t, "null\n", res.stdout)
			assert.Contains(t, res.stderr, "not an object")
		})
	}
}

func TestCLI_MapWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "event.yml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`
models:
  - name: Event
    fields:
      - name: title
        type: string
      - name: day
        type: time
        converter: iso_day
`), 0o644))

	cfgPath := filepath.Join(dir, "jsonprop.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
schema: `+schemaPath+`
model: Event
output:
  indent: "\t"
  sort_keys: true
converters:
  aliases:
    iso_day: date
`), 0o644))

	var stdout, stderr bytes.Buffer
	rt := &cli.Runtime{
		Stdin:  strings.NewReader(`{"title": "Launch", "day": "2024-02-29"}`),
		Stdout: &stdout,
		Stderr: &stderr,
	}
	require.NoError(t, cli.Run([]string{"--config", cfgPath, "map"}, rt), stderr.String())

	assert.Equal(t, "{\n\t\"day\": \"2024-02-29\",\n\t\"title\": \"Launch\"\n}\n", stdout.String())
}

func TestCLI_MapErrors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr error
	}{
		{
			name:    "no schema",
			stdin:   `{}`,
			args:    []string{"map"},
			wantErr: &apperrors.AppError{Type: apperrors.ErrorTypeInput},
		},
		{
			name:    "missing schema file",
			stdin:   `{}`,
			args:    []string{"map", "-s", "nope.yml"},
			wantErr: apperrors.ErrFileNotFound,
		},
		{
			name:    "unknown model",
			stdin:   `{}`,
			args:    []string{"map", "-s", personSchema, "-m", "Nope"},
			wantErr: apperrors.ErrUnknownModel,
		},
		{
			name:    "invalid JSON",
			stdin:   `{"Name": }`,
			args:    []string{"map", "-s", personSchema},
			wantErr: apperrors.ErrInvalidJSON,
		},
		{
			name:    "empty input",
			stdin:   "  \n",
			args:    []string{"map", "-s", personSchema},
			wantErr: apperrors.ErrEmptyInput,
		},
		{
			name:    "missing input file",
			args:    []string{"map", "-s", personSchema, "-i", "nope.json"},
			wantErr: apperrors.ErrFileNotFound,
		},
		{
			name:    "invalid key case",
			stdin:   `{}`,
			args:    []string{"--key-case", "shouting", "map", "-s", personSchema},
			wantErr: &apperrors.AppError{Type: apperrors.ErrorTypeConfiguration},
		},
		{
			name:    "unknown command",
			args:    []string{"frobnicate"},
			wantErr: &apperrors.AppError{Type: apperrors.ErrorTypeInput},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.stdin, tt.args...)
			require.Error(t, res.err)
			assert.ErrorIs(t, res.err, tt.wantErr)
			assert.NotEmpty(t, apperrors.UserFriendlyError(res.err))
		})
	}
}

func TestCLI_Infer(t *testing.T) {
	input := `{"id": 1, "tags": ["a"], "owner": {"name": "Ada", "joined": "2020-01-02"}}`

	res := run(t, input, "infer", "-r", "Project")
	require.NoError(t, res.err, res.stderr)

	s, err := schema.Parse([]byte(res.stdout))
	require.NoError(t, err)
	assert.Equal(t, "Project", s.Root())

	owner, ok := s.Model("ProjectOwner")
	require.True(t, ok)
	assert.Equal(t, "joined", owner.Fields[0].JSON)
	assert.Equal(t, "date", owner.Fields[0].Converter)
}

func TestCLI_InferThenMap(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.yml")
	input := `{"user_id": 7, "display name": "Ada", "tags": ["x", "y"], "meta": {}}`

	res := run(t, input, "infer", "-o", schemaPath)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "Model schema written to")

	res = run(t, input, "map", "-s", schemaPath)
	require.NoError(t, res.err, res.stderr)
	assert.JSONEq(t, input, res.stdout)
}

func TestCLI_Gen(t *testing.T) {
	res := run(t, "", "gen", "-s", personSchema, "-p", "people")
	require.NoError(t, res.err, res.stderr)

	code := res.stdout
	assert.Contains(t, code, "package people")
	assert.Contains(t, code, "\t\"time\"\n\n\t\"github.com/mcncl/jsonprop/mapper\"\n")
	assert.Contains(t, code, "type Person struct {")
	assert.Contains(t, code, "\tAddressArr []*Address `jsonprop:\"AddressArr,nested\"`")
	assert.Contains(t, code, "\t// read and written only by Go code\n")
	assert.Contains(t, code, "mapper.ClassOf[Student](),\n\t\tmapper.ClassOf[Address](),\n\t\tmapper.ClassOf[Person](),")
}

func TestCLI_GenNoFormat(t *testing.T) {
	output := filepath.Join(t.TempDir(), "models.go")

	res := run(t, "", "gen", "-s", personSchema, "--no-format", "-o", output)
	require.NoError(t, res.err, res.stderr)

	code := readFile(t, output)
	assert.Contains(t, code, "package models", "package defaults to models")
	assert.Contains(t, code, "\tName *string `jsonprop:\"Name\"`\n")
	assert.Contains(t, res.stderr, "Generated Go code written to")
}

func TestCLI_Version(t *testing.T) {
	res := run(t, "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "jsonprop version "+cli.Version+"\n", res.stdout)
}

func TestCLI_Help(t *testing.T) {
	exitCode := -1
	var stdout, stderr bytes.Buffer
	rt := &cli.Runtime{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
		Exit:   func(code int) { exitCode = code },
	}
	_ = cli.Run([]string{"--help"}, rt)

	assert.Equal(t, 0, exitCode)
	help := stdout.String()
	assert.Contains(t, help, "Usage: jsonprop")
	assert.Contains(t, help, "--key-case")
	for _, cmd := range []string{"map", "infer", "gen", "version"} {
		assert.Contains(t, help, cmd)
	}
}
