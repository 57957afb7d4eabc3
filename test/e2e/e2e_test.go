package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonkit runs the CLI from source with stdin and an isolated state file.
func jsonkit(t testing.TB, stateDir, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../.."}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), "JSONKIT_STATE_PATH="+filepath.Join(stateDir, "state.json"))
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err = cmd.Run()
	return out.String(), errOut.String(), err
}

const complexJSON = `{
	"id": 12345,
	"uuid": "550e8400-e29b-41d4-a716-446655440000",
	"created_at": "2023-05-20T14:56:23Z",
	"updated_at": null,
	"config": {
		"enabled": true,
		"timeout_seconds": 30,
		"features": ["logging", "metrics", "alerting"],
		"rate_limits": {"per_second": 100, "per_minute": 1000, "burst": 150},
		"environments": {
			"development": {"debug": true, "log_level": "debug"},
			"production": {"debug": false, "log_level": "info"}
		}
	},
	"users": [
		{"id": 1, "name": "Alice", "roles": ["admin", "user"], "score": 98.5},
		{"id": 2, "name": "Bob", "roles": [], "score": null}
	]
}`

// TestEndToEnd_ComplexNestedStructures formats, minifies and analyzes a
// realistic nested document through the CLI.
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(complexJSON), 0o644))

	formatted, stderr, err := jsonkit(t, tempDir, "", "format", "--indent", "4", jsonFile)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.JSONEq(t, complexJSON, formatted)
	assert.Contains(t, formatted, "\n    \"config\": {\n        \"enabled\": true,\n")
	assert.True(t, strings.HasPrefix(formatted, "{\n    \"id\": 12345,\n    \"uuid\""), "key order must be preserved")

	minified, _, err := jsonkit(t, tempDir, formatted, "minify")
	require.NoError(t, err)
	assert.JSONEq(t, complexJSON, minified)
	assert.NotContains(t, strings.TrimSpace(minified), "\n")

	// minify is stable under reformatting
	again, _, err := jsonkit(t, tempDir, minified, "minify")
	require.NoError(t, err)
	assert.Equal(t, minified, again)

	analysis, _, err := jsonkit(t, tempDir, "", "analyze", "-o", "json", jsonFile)
	require.NoError(t, err)

	var report struct {
		Type          string         `json:"type"`
		Count         int            `json:"count"`
		Depth         int            `json:"depth"`
		TypeHistogram map[string]int `json:"type_histogram"`
		Keys          []string       `json:"keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(analysis), &report))
	assert.Equal(t, "Object", report.Type)
	assert.Equal(t, 6, report.Count)
	assert.Equal(t, 4, report.Depth)
	assert.Equal(t, []string{"id", "uuid", "created_at", "updated_at", "config", "users"}, report.Keys)
	assert.Equal(t, map[string]int{"number": 8, "string": 11, "boolean": 3, "null": 2}, report.TypeHistogram)
}

// TestEndToEnd_StdinSessionReplay saves piped input and replays it with --last.
func TestEndToEnd_StdinSessionReplay(t *testing.T) {
	stateDir := t.TempDir()

	_, _, err := jsonkit(t, stateDir, `{"b": [1, 2]}`, "format", "--indent", "1")
	require.NoError(t, err)

	out, _, err := jsonkit(t, stateDir, "", "format", "--last")
	require.NoError(t, err)
	assert.Equal(t, "{\n \"b\": [\n  1,\n  2\n ]\n}\n", out)

	_, _, err = jsonkit(t, stateDir, "", "clear")
	require.NoError(t, err)

	_, stderr, err := jsonkit(t, stateDir, "", "format", "--last")
	require.Error(t, err)
	assert.Contains(t, stderr, "Saved state error")
}

// TestEndToEnd_ManyFiles runs the batch path over generated files.
func TestEndToEnd_ManyFiles(t *testing.T) {
	tempDir := t.TempDir()
	var files []string
	for i := 0; i < 12; i++ {
		path := filepath.Join(tempDir, fmt.Sprintf("doc_%02d.json", i))
		generateLargeJSON(t, path, 20+i)
		files = append(files, path)
	}

	out, stderr, err := jsonkit(t, tempDir, "", append([]string{"validate"}, files...)...)
	require.NoError(t, err, "CLI command failed: %s", stderr)

	// results keep argument order
	last := -1
	for _, f := range files {
		header := "==> " + f + " <=="
		idx := strings.Index(out, header)
		require.GreaterOrEqual(t, idx, 0, "missing %s", header)
		assert.Greater(t, idx, last)
		last = idx
	}
	assert.Equal(t, len(files), strings.Count(out, "Valid JSON"))
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		args     []string
		expected string
		isError  bool
	}{
		{
			name:     "EmptyObject",
			json:     `{}`,
			args:     []string{"analyze"},
			expected: "Type: Object\nProperties/Items: 0\nMax Depth: 1\nData Types: none\n",
		},
		{
			name:     "EmptyArray",
			json:     `[]`,
			args:     []string{"format"},
			expected: "[]\n",
		},
		{
			name:     "SingleValue",
			json:     `"just a string"`,
			args:     []string{"analyze"},
			expected: "Type: string\nMax Depth: 0\nData Types: string: 1\n",
		},
		{
			name:     "SingleNumber",
			json:     `4.20E1`,
			args:     []string{"minify"},
			expected: "42\n",
		},
		{
			name:     "SingleBoolean",
			json:     `true`,
			args:     []string{"tree", "--types"},
			expected: "true (boolean)\n",
		},
		{
			name:     "SingleNull",
			json:     `  null  `,
			args:     []string{"validate"},
			expected: "Valid JSON\n",
		},
		{
			name:    "InvalidJSON",
			json:    `{"name": "Invalid JSON",}`,
			args:    []string{"format"},
			isError: true,
		},
		{
			name:    "TwoValues",
			json:    `{} []`,
			args:    []string{"validate"},
			isError: true,
		},
		{
			name:    "WhitespaceOnly",
			json:    " \n\t ",
			args:    []string{"validate"},
			isError: true,
		},
		{
			name:     "DeeplyNestedObject",
			json:     `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}`,
			args:     []string{"analyze"},
			expected: "Max Depth: 6\n",
		},
		{
			name:     "DeeplyNestedArray",
			json:     `[[[[[[42]]]]]]`,
			args:     []string{"minify"},
			expected: "[[[[[[42]]]]]]\n",
		},
		{
			name:     "DuplicateKeys",
			json:     `{"a": 1, "b": 2, "a": 3}`,
			args:     []string{"minify"},
			expected: "{\"a\":3,\"b\":2}\n",
		},
		{
			name:     "LargeInteger",
			json:     `[12345678901234567890123]`,
			args:     []string{"minify"},
			expected: "[12345678901234567890123]\n",
		},
		{
			name:     "UnicodeAndEscapes",
			json:     `{"emoji": "🎉", "esc": "tab\there A"}`,
			args:     []string{"minify"},
			expected: "{\"emoji\":\"🎉\",\"esc\":\"tab\\there A\"}\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := jsonkit(t, t.TempDir(), tc.json, tc.args...)

			if tc.isError {
				assert.Error(t, err, "Expected an error for %s", tc.name)
				return
			}
			require.NoError(t, err, "Unexpected error for %s: %s", tc.name, stderr)
			assert.Contains(t, stdout, tc.expected, "Expected output not found for %s", tc.name)
		})
	}
}

// generateLargeJSON writes an array of itemCount records to filePath.
func generateLargeJSON(t testing.TB, filePath string, itemCount int) {
	t.Helper()
	items := make([]map[string]interface{}, itemCount)
	for i := range items {
		items[i] = map[string]interface{}{
			"id":     i,
			"name":   fmt.Sprintf("Item %d", i),
			"price":  float64(rand.Intn(10000)) / 100,
			"active": i%2 == 0,
			"tags":   []string{"tag1", "tag2"},
			"meta":   map[string]interface{}{"created_by": nil, "version": i % 3},
		}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filePath, data, 0o644))
}
