package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotify_Plain(t *testing.T) {
	var buf bytes.Buffer
	n := New(&buf, false, false)

	n.Success("JSON formatted successfully!")
	n.Warning("No output to copy!")
	n.Error("Invalid JSON: %s", "unexpected end of JSON input")
	n.Info("%d characters", 12)

	assert.Equal(t,
		"✓ JSON formatted successfully!\n"+
			"! No output to copy!\n"+
			"✗ Invalid JSON: unexpected end of JSON input\n"+
			"· 12 characters\n",
		buf.String())
}

func TestNotify_Quiet(t *testing.T) {
	var buf bytes.Buffer
	n := New(&buf, false, true)

	n.Success("hidden")
	n.Warning("hidden")
	n.Info("hidden")
	n.Error("shown")

	assert.Equal(t, "✗ shown\n", buf.String())
}

func TestNotify_Color(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true, false).Success("JSON is valid!")

	assert.Contains(t, buf.String(), "\x1b[32m")
	assert.Contains(t, buf.String(), "JSON is valid!")
}

func TestNotify_NilIsSilent(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.Success("nothing") })
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "info", Info.String())
}
