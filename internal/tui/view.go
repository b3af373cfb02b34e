// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"fmt"
	"io"
)

// MarkdownRenderer renders markdown to terminal text.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// View prints the markdown section of a command before it is run in
// interactive mode.
type View struct {
	out      io.Writer
	renderer MarkdownRenderer
}

// NewView returns a view writing to out. A nil renderer prints the markdown
// unchanged.
func NewView(out io.Writer, renderer MarkdownRenderer) *View {
	return &View{out: out, renderer: renderer}
}

// Render writes section followed by an empty line.
func (v *View) Render(section string) error {
	text := section
	if v.renderer != nil {
		rendered, err := v.renderer.Render(section)
		if err != nil {
			return fmt.Errorf("printing markdown: %w", err)
		}
		text = rendered
	}
	_, err := fmt.Fprintln(v.out, text)
	return err
}
