// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"golang.org/x/term"

	"github.com/inkjet/inkjet/internal/config"
)

// defaultWidth is the word wrap width used when the terminal size is unknown.
const defaultWidth = 80

// Renderer renders markdown for the terminal with glamour.
type Renderer struct {
	tr *glamour.TermRenderer
}

// NewRenderer returns a renderer for the given color scheme. A width of 0
// uses the width of stdout, or 80 columns when it is not a terminal.
func NewRenderer(scheme config.ColorScheme, width int) (*Renderer, error) {
	if width <= 0 {
		width = terminalWidth(os.Stdout)
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch scheme {
	case config.ColorSchemeDark:
		opts = append(opts, glamour.WithStandardStyle(styles.DarkStyle))
	case config.ColorSchemeLight:
		opts = append(opts, glamour.WithStandardStyle(styles.LightStyle))
	case config.ColorSchemeNever:
		opts = append(opts, glamour.WithStandardStyle(styles.NoTTYStyle))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &Renderer{tr: tr}, nil
}

// Render renders markdown.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.tr.Render(markdown)
}

// ColorEnabled reports whether colored output should be written to w.
// NO_COLOR disables colors regardless of the scheme; "auto" enables them only
// for terminals.
func ColorEnabled(scheme config.ColorScheme, w io.Writer) bool {
	if scheme == config.ColorSchemeNever || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if scheme == config.ColorSchemeDark || scheme == config.ColorSchemeLight {
		return true
	}
	return IsTerminal(w)
}

func terminalWidth(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}
