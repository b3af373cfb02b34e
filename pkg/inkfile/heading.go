// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"strings"
	"unicode"
)

const (
	aliasSeparator   = "//"
	trailingSplitter = " -- "
)

// heading is the parsed form of a heading's inline text.
type heading struct {
	name    string
	aliases []string
	args    []Argument
}

// parseHeading extracts the command name, aliases and positional arguments
// from the text of a heading at the given depth.
//
//	## serve//s (port) (mode=prod) -- (rest)
//	### db flush (table?)
//
// Depth 1 headings use their first word only. Deeper headings repeat their
// parents' names by convention, so the first depth-2 words are dropped.
func parseHeading(depth int, text string) (heading, error) {
	s := strings.TrimSpace(text)
	switch {
	case depth == 1:
		if fields := strings.Fields(s); len(fields) > 0 {
			s = fields[0]
		}
	case depth > 2:
		// only name words count; the last one is always kept
		fields := strings.Fields(s)
		drop := min(depth-2, max(nameWords(s)-1, 0))
		s = strings.Join(fields[drop:], " ")
	}

	var suffix string
	if before, after, found := strings.Cut(s, trailingSplitter); found {
		s, suffix = before, after
	}

	rawName, argText := splitParens(s)

	h := heading{}
	parts := strings.Split(strings.TrimSpace(rawName), aliasSeparator)
	h.name = strings.ToLower(strings.TrimSpace(parts[0]))
	for _, a := range parts[1:] {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			h.aliases = append(h.aliases, a)
		}
	}

	if h.name == "" {
		return heading{}, ErrEmptyHeadingName
	}
	if hasSpace(h.name) {
		return heading{}, &HeadingSpacesError{Fragment: strings.Join(strings.Fields(h.name), " ")}
	}
	for _, a := range h.aliases {
		if hasSpace(a) {
			return heading{}, &HeadingSpacesError{Fragment: strings.Join(strings.Fields(a), " ")}
		}
	}

	for _, tok := range strings.Fields(argText) {
		h.args = append(h.args, parseArgument(tok))
	}

	if _, captures := splitParens(suffix); captures != "" {
		if fields := strings.Fields(captures); len(fields) == 1 {
			arg := parseArgument(fields[0])
			arg.Required = false
			arg.DefaultValue = ""
			arg.Multiple = true
			arg.Trailing = true
			h.args = append(h.args, arg)
		}
	}

	return h, nil
}

// nameWords counts the words before the first argument group or trailing
// capture.
func nameWords(s string) int {
	if before, _, found := strings.Cut(s, trailingSplitter); found {
		s = before
	}
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return len(strings.Fields(s))
}

// splitParens separates text outside parentheses from text inside them.
// Parenthesized groups are joined with a space.
func splitParens(s string) (outside, inside string) {
	var out, in strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			if depth == 0 && in.Len() > 0 {
				in.WriteByte(' ')
			}
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth > 0:
			in.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}
	return out.String(), in.String()
}

// parseArgument parses a single argument token:
//
//	name       required
//	name?      optional
//	name...?   optional, any number of values
//	name...    required, one or more values
//	name=val   optional with default "val"
func parseArgument(tok string) Argument {
	if name, ok := strings.CutSuffix(tok, "?"); ok {
		name, multiple := cutEllipsis(name)
		return Argument{Name: strings.ToLower(name), Multiple: multiple}
	}
	if name, def, ok := strings.Cut(tok, "="); ok {
		return Argument{Name: strings.ToLower(name), DefaultValue: def}
	}
	name, multiple := cutEllipsis(tok)
	return Argument{Name: strings.ToLower(name), Required: true, Multiple: multiple}
}

func cutEllipsis(s string) (string, bool) {
	if name, ok := strings.CutSuffix(s, "..."); ok {
		return name, true
	}
	if name, ok := strings.CutSuffix(s, "…"); ok {
		return name, true
	}
	return s, false
}

func hasSpace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}
