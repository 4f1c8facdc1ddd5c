package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestNew_NoColorIsScopedToUI(t *testing.T) {
	before := color.NoColor

	var plain bytes.Buffer
	u := New(&plain, &plain, true, false)
	u.Error("boom")

	assert.Equal(t, "✗ boom\n", plain.String())
	assert.Equal(t, before, color.NoColor, "process-wide colour setting must not change")
}

func TestNewSpinner_DisabledOffTerminal(t *testing.T) {
	var buf bytes.Buffer

	s := New(&buf, &buf, false, false).NewSpinner("Thinking...")
	assert.False(t, s.Enabled())
	s.Start()
	s.UpdateMessage("still thinking")
	s.Stop()
	assert.Empty(t, buf.String())

	assert.False(t, New(&buf, &buf, true, false).NewSpinner("x").Enabled())
}

func TestStep_OnlyWhenVerbose(t *testing.T) {
	var quiet, loud bytes.Buffer
	New(&quiet, &quiet, true, false).Step("working")
	New(&loud, &loud, true, true).Step("working")

	assert.Empty(t, quiet.String())
	assert.Equal(t, "→ working\n", loud.String())
}
