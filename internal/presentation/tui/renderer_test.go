package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()

	out, err := render("**Hotel A**\n\n- pool\n- breakfast")
	require.NoError(t, err)
	assert.Contains(t, out, "Hotel A")
	assert.Contains(t, out, "breakfast")
	assert.NotContains(t, out, "**")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_| |_|")
}

func TestSpeaker(t *testing.T) {
	assert.Contains(t, Speaker(true), "bot")
	assert.Contains(t, Speaker(false), "you")
}
