package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestColorsDefined(t *testing.T) {
	for name, c := range map[string]lipgloss.Color{
		"ColorSuccess": ColorSuccess,
		"ColorError":   ColorError,
		"ColorWarning": ColorWarning,
		"ColorPrimary": ColorPrimary,
		"ColorMuted":   ColorMuted,
	} {
		assert.NotEmpty(t, string(c), name)
	}
}

func TestDisableColors(t *testing.T) {
	assert.NotPanics(t, func() {
		DisableColors()
	})

	rendered := SuccessStyle().Render("web")
	assert.Equal(t, "web", rendered, "monochrome profile must not emit escape codes")
}

func TestStylesAreFunctional(t *testing.T) {
	styles := map[string]lipgloss.Style{
		"Success": SuccessStyle(),
		"Error":   ErrorStyle(),
		"Warning": WarningStyle(),
		"Muted":   MutedStyle(),
	}

	for name, style := range styles {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, style.Render("text"), "text")
		})
	}
}

func TestIsTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf), "buffers are never terminals")

	f, err := os.CreateTemp(t.TempDir(), "out")
	assert.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f), "regular files are never terminals")
}

func TestConfigureColor_NonTerminalDisablesColor(t *testing.T) {
	var buf bytes.Buffer
	ConfigureColor(ColorAuto, &buf)

	assert.Equal(t, "pool", ErrorStyle().Render("pool"))
}

func TestConfigureColor_Never(t *testing.T) {
	ConfigureColor(ColorNever, os.Stdout)

	assert.Equal(t, "pool", WarningStyle().Render("pool"))
}

func TestPrintWarning(t *testing.T) {
	DisableColors()
	var buf bytes.Buffer

	PrintWarning(&buf, "socket %s missing", "/run/x.sock")

	assert.Equal(t, SymbolWarning+" socket /run/x.sock missing\n", buf.String())
}
