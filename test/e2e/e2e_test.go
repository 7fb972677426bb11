package e2e_test

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonprop/internal/cli"
)

// jsonprop runs the CLI in-process and returns its stdout.
func jsonprop(t testing.TB, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rt := &cli.Runtime{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		Exit:   func(int) {},
	}
	err := cli.Run(args, rt)
	if err != nil {
		t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), err
}

// inferSchema writes the schema inferred from sample to a temp file.
func inferSchema(t *testing.T, sample string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yml")
	_, err := jsonprop(t, sample, "infer", "-o", path)
	require.NoError(t, err)
	return path
}

func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	jsonContent := `{
		"id": 12345,
		"uuid": "550e8400-e29b-41d4-a716-446655440000",
		"created_at": "2023-05-20T14:56:23Z",
		"released_on": "2023-06-01",
		"updated_at": null,
		"config": {
			"enabled": true,
			"timeout_seconds": 30,
			"ratio": 0.75,
			"features": ["logging", "metrics", "alerting"],
			"rate_limits": {
				"per_second": 100,
				"per_minute": 1000,
				"burst": 150
			},
			"environments": {
				"development": {"debug": true, "log_level": "debug"},
				"production": {"debug": false, "log_level": "info"}
			}
		},
		"users": [
			{
				"id": 1,
				"name": "Alice",
				"roles": ["admin", "user"],
				"metadata": {"last_login": "2023-05-19T10:30:00+02:00", "login_count": 42}
			},
			{
				"id": 2,
				"name": "Bob",
				"roles": ["user"],
				"metadata": {"last_login": "2023-05-18T09:15:00Z", "login_count": 7}
			}
		],
		"matrix": [[1, 2], [3, 4]],
		"labels": {}
	}`

	schemaPath := inferSchema(t, jsonContent)

	// Mapping the sample through its own schema reproduces it.
	out, err := jsonprop(t, jsonContent, "map", "-s", schemaPath)
	require.NoError(t, err)
	assert.JSONEq(t, jsonContent, out)

	code, err := jsonprop(t, "", "gen", "-s", schemaPath, "-p", "service")
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "service.go", code, parser.ParseComments)
	require.NoError(t, err, "generated code should parse:\n%s", code)

	for _, want := range []string{
		"package service",
		"type Root struct",
		"type RootConfig struct",
		"type RootConfigRateLimits struct",
		"type RootConfigEnvironmentsDevelopment struct",
		"type RootUser struct",
		"type RootUserMetadata struct",
		"`jsonprop:\"created_at,converter=time\"`",
		"`jsonprop:\"released_on,converter=date\"`",
		"`jsonprop:\"users,nested\"`",
		"[][]int64",
		"map[string]any",
	} {
		assert.Contains(t, code, want)
	}
	assert.NotContains(t, code, "type RootConfigEnvironmentsProduction struct", "equal shapes share one model")
}

func TestEndToEnd_HeterogeneousArrays(t *testing.T) {
	jsonContent := `{
		"mixed_array": [1, "string", true, null, {"nested": "object"}, [1, 2, 3]],
		"mixed_objects": [
			{"type": "user", "id": 1, "name": "Alice"},
			{"type": "group", "id": 2, "members": 5},
			{"type": "user", "id": 3, "name": "Bob", "active": true}
		]
	}`

	schemaPath := inferSchema(t, jsonContent)
	schemaText, err := os.ReadFile(schemaPath)
	require.NoError(t, err)
	assert.Contains(t, string(schemaText), "name: RootMixedObject")
	assert.Contains(t, string(schemaText), "type: '[]any'")

	out, err := jsonprop(t, jsonContent, "map", "-s", schemaPath)
	require.NoError(t, err)

	// Keys missing from an element come back as null.
	assert.JSONEq(t, `{
		"mixed_array": [1, "string", true, null, {"nested": "object"}, [1, 2, 3]],
		"mixed_objects": [
			{"active": null, "id": 1, "members": null, "name": "Alice", "type": "user"},
			{"active": null, "id": 2, "members": 5, "name": null, "type": "group"},
			{"active": true, "id": 3, "members": null, "name": "Bob", "type": "user"}
		]
	}`, out)
}

func TestEndToEnd_PersonSchema(t *testing.T) {
	input, err := os.ReadFile("../../testdata/person/input.json")
	require.NoError(t, err)
	mapped, err := os.ReadFile("../../testdata/person/mapped.json")
	require.NoError(t, err)

	out, err := jsonprop(t, string(input), "map", "-s", "../../testdata/person/schema.yml", "--indent", "  ")
	require.NoError(t, err)
	assert.Equal(t, string(mapped), out)
}

func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name       string
		json       string
		schemaWant string
		mapped     string
	}{
		{
			name:       "EmptyObject",
			json:       `{}`,
			schemaWant: "name: Root",
			mapped:     "{}\n",
		},
		{
			name:       "EmptyArray",
			json:       `[]`,
			schemaWant: "type: '[]any'",
			mapped:     "null\n",
		},
		{
			name:       "SingleValue",
			json:       `"just a string"`,
			schemaWant: "type: string",
			mapped:     "null\n",
		},
		{
			name:       "SingleNumber",
			json:       `42`,
			schemaWant: "type: int",
			mapped:     "null\n",
		},
		{
			name:       "SingleNull",
			json:       `null`,
			schemaWant: "type: any",
			mapped:     "null\n",
		},
		{
			name:       "DeeplyNestedObject",
			json:       `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}`,
			schemaWant: "name: RootLevel1Level2Level3Level4Level5",
			mapped:     `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}` + "\n",
		},
		{
			name:       "DeeplyNestedArray",
			json:       `{"deep": [[[[[[42]]]]]]}`,
			schemaWant: "type: '[][][][][][]int'",
			mapped:     `{"deep":[[[[[[42]]]]]]}` + "\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			schemaPath := inferSchema(t, tc.json)
			schemaText, err := os.ReadFile(schemaPath)
			require.NoError(t, err)
			assert.Contains(t, string(schemaText), tc.schemaWant)

			out, err := jsonprop(t, tc.json, "map", "-s", schemaPath)
			require.NoError(t, err)
			assert.Equal(t, tc.mapped, out)
		})
	}
}

func TestEndToEnd_InvalidJSON(t *testing.T) {
	_, err := jsonprop(t, `{"name": }`, "infer")
	assert.Error(t, err)

	_, err = jsonprop(t, `{"name": }`, "map", "-s", "../../testdata/person/schema.yml")
	assert.Error(t, err)
}
