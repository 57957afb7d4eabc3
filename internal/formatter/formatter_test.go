package formatter

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonkit/internal/config"
	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
	"github.com/mcncl/jsonkit/internal/treeview"
)

func TestFormat_Scenario(t *testing.T) {
	out, err := NewFormatter().Format(`{"a":1,"b":[2,3]}`, 2)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    2,\n    3\n  ]\n}", out)
}

func TestMinify_Scenario(t *testing.T) {
	out, err := NewFormatter().Minify(`  {"a": 1}  `)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestFormat_TrailingCommaIsParseError(t *testing.T) {
	f := NewFormatter()

	_, err := f.Format(`{"a": 1,}`, 2)
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))

	_, err = f.Minify(`{"a": 1,}`)
	assert.True(t, errors.IsParseError(err))

	_, err = f.Analyze(`{"a": 1,}`)
	assert.True(t, errors.IsParseError(err))

	_, err = f.RenderTree(`{"a": 1,}`)
	assert.True(t, errors.IsParseError(err))
}

func TestAnalyze_NestedArrays(t *testing.T) {
	result, err := NewFormatter().Analyze(`[1,[2,[3]]]`)
	require.NoError(t, err)

	assert.Equal(t, models.KindArray, result.Type)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 3, result.Depth)
	assert.Equal(t, map[models.Kind]int{models.KindNumber: 3}, result.TypeHistogram)
}

func TestValidate_EmptyInput(t *testing.T) {
	f := NewFormatter()

	result := f.Validate("")
	assert.False(t, result.Valid)
	assert.Contains(t, result.Message, "empty")

	_, err := f.ParseAndValidate("")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyInput)

	// the empty JSON string literal is a valid value
	assert.True(t, f.Validate(`""`).Valid)
}

func TestAnalyze_EmptyObject(t *testing.T) {
	result, err := NewFormatter().Analyze(`{}`)
	require.NoError(t, err)

	assert.Equal(t, models.KindObject, result.Type)
	assert.Equal(t, 0, result.Count)
	assert.Equal(t, 1, result.Depth)
	assert.Empty(t, result.TypeHistogram)
	assert.NotNil(t, result.Keys)
	assert.Empty(t, result.Keys)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		valid   bool
		line    int
		column  int
		message string
	}{
		{name: "object", input: `{"a": [1, 2]}`, valid: true},
		{name: "scalar", input: `42`, valid: true},
		{name: "whitespace only", input: " \n\t ", message: "empty"},
		{name: "trailing comma", input: `{"a": 1,}`, line: 1, column: 9},
		{name: "unterminated", input: "[1,\n2", line: 2, column: 2, message: "unexpected end"},
		{name: "two values", input: "{} {}", line: 1, column: 3, message: "after the top-level value"},
		{name: "second line", input: "{\n  \"a\" 1\n}", line: 2, column: 7},
	}

	f := NewFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.Validate(tt.input)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Nil(t, result.Position)
				return
			}
			if tt.message != "" {
				assert.Contains(t, result.Message, tt.message)
			}
			if tt.line > 0 {
				require.NotNil(t, result.Position)
				assert.Equal(t, tt.line, result.Position.Line)
				assert.Equal(t, tt.column, result.Position.Column)
			}
		})
	}
}

func TestFormat_IndentFallback(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := NewFormatterWithConfig(config.NewConfig(), logger)

	for _, width := range []int{0, -4} {
		out, err := f.Format(`[1]`, width)
		require.NoError(t, err)
		assert.Equal(t, "[\n  1\n]", out)
	}
	assert.Contains(t, logs.String(), "indent fallback")
	assert.Contains(t, logs.String(), "configuration")
}

func TestFormat_ConfiguredIndent(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Format.IndentWidth = 4
	f := NewFormatterWithConfig(cfg, nil)

	assert.Equal(t, 4, f.DefaultIndent())

	out, err := f.Format(`{"a":1}`, 0)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 1\n}", out)

	out, err = f.Format(`{"a":1}`, 1)
	require.NoError(t, err)
	assert.Equal(t, "{\n \"a\": 1\n}", out)
}

func TestRender_Modes(t *testing.T) {
	f := NewFormatter()

	out, err := f.Render(`{"a": [true]}`, models.MinifiedMode())
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true]}`, out.Text)
	assert.Equal(t, "minified", out.Mode.String())

	out, err = f.Render(`{"a": [true]}`, models.PrettyMode(0))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Mode.IndentWidth)
	assert.Equal(t, "pretty(2)", out.Mode.String())
}

func TestRenderTree(t *testing.T) {
	f := NewFormatter()

	out, err := f.RenderTree(`{"a": [1, "x"], "b": null}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    \"x\"\n  ],\n  \"b\": null\n}", out)

	typed := f.WithTree(treeview.Options{IndentWidth: 2, ShowTypes: true})
	out, err = typed.RenderTree(`[true]`)
	require.NoError(t, err)
	assert.Equal(t, "[\n  true (boolean)\n]", out)
}

func TestLimits(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Limits.MaxDepth = 3
	cfg.Limits.MaxInputBytes = 64
	f := NewFormatterWithConfig(cfg, nil)

	_, err := f.Format(`[[[[1]]]]`, 2)
	require.Error(t, err)
	assert.True(t, errors.IsLimitError(err))
	assert.ErrorIs(t, err, errors.ErrDepthExceeded)

	_, err = f.Minify(`[` + strings.Repeat(`1,`, 40) + `1]`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInputTooLarge)

	result := f.Validate(`[[[[1]]]]`)
	assert.False(t, result.Valid)
}

func TestDuplicateKeys_LastWins(t *testing.T) {
	f := NewFormatter()

	out, err := f.Minify(`{"a": 1, "b": 2, "a": 3}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":2}`, out)

	result, err := f.Analyze(`{"a": 1, "b": 2, "a": 3}`)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, []string{"a", "b"}, result.Keys)
}

func TestNumbers_KeepIntegerPrecision(t *testing.T) {
	out, err := NewFormatter().Minify(`[12345678901234567890, 1.50, 1E-7, -0, 1e400]`)
	require.NoError(t, err)
	assert.Equal(t, `[12345678901234567890,1.5,1e-7,0,1e400]`, out)
}

var propertyInputs = []string{
	`{"a":1,"b":[2,3]}`,
	`[1,[2,[3]]]`,
	`{}`,
	`[]`,
	`"text with \"escapes\" \\ \u0007"`,
	`{"users": [{"id": 1, "tags": ["x", "y"], "meta": {"active": true, "score": 9.5}}, {"id": 2, "tags": [], "meta": null}]}`,
	`[null, false, 0, -1.25e-3, "", {"": ""}]`,
}

func TestProperty_RoundTrip(t *testing.T) {
	f := NewFormatter()
	for _, input := range propertyInputs {
		t.Run(input, func(t *testing.T) {
			original, err := f.ParseAndValidate(input)
			require.NoError(t, err)

			for _, width := range []int{1, 2, 4, 8} {
				pretty, err := f.Format(input, width)
				require.NoError(t, err)
				reparsed, err := f.ParseAndValidate(pretty)
				require.NoError(t, err)
				assert.True(t, original.Equal(reparsed), "format(%d) changed the value", width)
			}

			minified, err := f.Minify(input)
			require.NoError(t, err)
			reparsed, err := f.ParseAndValidate(minified)
			require.NoError(t, err)
			assert.True(t, original.Equal(reparsed), "minify changed the value")
		})
	}
}

func TestProperty_Idempotence(t *testing.T) {
	f := NewFormatter()
	for _, input := range propertyInputs {
		t.Run(input, func(t *testing.T) {
			once, err := f.Format(input, 3)
			require.NoError(t, err)
			twice, err := f.Format(once, 3)
			require.NoError(t, err)
			assert.Equal(t, once, twice)

			min1, err := f.Minify(input)
			require.NoError(t, err)
			min2, err := f.Minify(min1)
			require.NoError(t, err)
			assert.Equal(t, min1, min2)

			// minify(format(x)) == minify(x)
			viaPretty, err := f.Minify(once)
			require.NoError(t, err)
			assert.Equal(t, min1, viaPretty)
		})
	}
}

func TestProperty_WhitespaceInvariance(t *testing.T) {
	f := NewFormatter()
	for _, input := range propertyInputs {
		for _, pad := range []string{" ", "\n", "\t\r\n ", "  \n\n"} {
			assert.Equal(t, f.Validate(input).Valid, f.Validate(pad+input+pad).Valid)
		}
	}
	for _, invalid := range []string{`{"a": 1,}`, `[1 2]`, `{`} {
		assert.False(t, f.Validate("\n "+invalid+" \n").Valid)
	}
}

func TestProperty_DepthAndHistogram(t *testing.T) {
	f := NewFormatter()
	for _, input := range propertyInputs {
		t.Run(input, func(t *testing.T) {
			result, err := f.Analyze(input)
			require.NoError(t, err)

			v, err := f.ParseAndValidate(input)
			require.NoError(t, err)
			assert.Equal(t, countLeaves(v), result.Leaves())
			assert.Equal(t, maxDepth(v), result.Depth)

			if result.Type.IsScalar() {
				assert.Equal(t, 0, result.Depth)
				assert.False(t, result.HasCount())
			} else {
				assert.GreaterOrEqual(t, result.Depth, 1)
			}
		})
	}
}

func TestFormatter_EachCallIsIndependent(t *testing.T) {
	f := NewFormatter()

	_, err := f.Format(`{"broken": `, 2)
	require.Error(t, err)

	out, err := f.Format(`{"ok": true}`, 2)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"ok\": true\n}", out)
}

func countLeaves(v models.Value) int {
	if v.Kind().IsScalar() {
		return 1
	}
	n := 0
	for i := 0; i < v.Len(); i++ {
		if v.Kind() == models.KindObject {
			n += countLeaves(v.MemberAt(i).Value)
		} else {
			n += countLeaves(v.At(i))
		}
	}
	return n
}

func maxDepth(v models.Value) int {
	if v.Kind().IsScalar() {
		return 0
	}
	deepest := 0
	for i := 0; i < v.Len(); i++ {
		child := v.At(i)
		if v.Kind() == models.KindObject {
			child = v.MemberAt(i).Value
		}
		if d := maxDepth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
