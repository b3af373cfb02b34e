// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"io"
	"strings"

	"github.com/inkjet/inkjet/pkg/inkfile"
)

// MarkdownRenderer renders markdown for the terminal, e.g. a *glamour.TermRenderer.
type MarkdownRenderer interface {
	Render(in string) (string, error)
}

// PreviewSource returns the fence language and the script exactly as it would
// be handed to the interpreter.
func PreviewSource(cmd *inkfile.Command) (lang, source string, err error) {
	if cmd == nil || !cmd.HasScript() || strings.TrimSpace(cmd.Script.Source) == "" {
		return "", "", ErrNoScript
	}

	lang = strings.ToLower(strings.TrimSpace(cmd.Script.Language))
	source = cmd.Script.Source
	if !strings.HasPrefix(strings.TrimSpace(source), "#!") && isShellFamily(lang) {
		source = withSetE(source)
	}
	if lang == "" {
		lang = defaultShell
	}
	return lang, source, nil
}

// Preview writes the command's script to w instead of running it. With a
// renderer the script is highlighted as a fenced code block.
func Preview(w io.Writer, cmd *inkfile.Command, renderer MarkdownRenderer) error {
	lang, source, err := PreviewSource(cmd)
	if err != nil {
		return err
	}

	if renderer == nil {
		_, err = io.WriteString(w, source)
		return err
	}

	out, err := renderer.Render(fence(lang, source))
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// fence wraps source in a code fence longer than any backtick run it contains.
func fence(lang, source string) string {
	marker := "```"
	for strings.Contains(source, marker) {
		marker += "`"
	}
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	return marker + lang + "\n" + source + marker + "\n"
}
