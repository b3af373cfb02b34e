// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// InteractiveEnvVar is exported to scripts of an interactive run. A nested
// "inkjet -i" sees it and prompts line by line.
const InteractiveEnvVar = "INKJET_INTERACTIVE"

// Theme names a huh form theme.
type Theme string

const (
	ThemeDefault    Theme = "default"
	ThemeCharm      Theme = "charm"
	ThemeDracula    Theme = "dracula"
	ThemeCatppuccin Theme = "catppuccin"
	ThemeBase16     Theme = "base16"
)

var huhThemes = map[Theme]func() *huh.Theme{
	ThemeCharm:      huh.ThemeCharm,
	ThemeDracula:    huh.ThemeDracula,
	ThemeCatppuccin: huh.ThemeCatppuccin,
	ThemeBase16:     huh.ThemeBase16,
}

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("user aborted")

// Config is shared by the prompts and the pager. Zero values fall back to
// the process streams.
type Config struct {
	Theme Theme
	// Accessible swaps the full-screen forms for numbered line prompts.
	Accessible bool
	Width      int
	Output     io.Writer
	Input      io.Reader
}

// DefaultConfig writes to stderr so prompts never mix with a script's
// stdout. Line prompts are used when stdin is not a terminal, inside a nested
// interactive run, or when ACCESSIBLE is set.
func DefaultConfig() Config {
	return Config{
		Theme:      ThemeCharm,
		Accessible: IsNestedInteractive() || !term.IsTerminal(int(os.Stdin.Fd())) || os.Getenv("ACCESSIBLE") != "",
		Output:     os.Stderr,
		Input:      os.Stdin,
	}
}

// IsNestedInteractive reports whether an interactive inkjet run started us.
func IsNestedInteractive() bool {
	return os.Getenv(InteractiveEnvVar) != ""
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c Config) accessible() bool {
	return c.Accessible || IsNestedInteractive()
}

func (c Config) output() io.Writer {
	if c.Output == nil {
		return os.Stderr
	}
	return c.Output
}

func (c Config) input() io.Reader {
	if c.Input == nil {
		return os.Stdin
	}
	return c.Input
}

func (c Config) huhTheme() *huh.Theme {
	if theme, ok := huhThemes[c.Theme]; ok {
		return theme()
	}
	return huh.ThemeBase()
}
