// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"strings"
)

// optionsMarker is the line that turns the following list into flag definitions.
const optionsMarker = "OPTIONS"

// Flag types accepted by |type| and type: entries.
const (
	FlagTypeString  = "string"
	FlagTypeNumber  = "number"
	FlagTypeBool    = "bool"
	FlagTypeBoolean = "boolean"
)

// isFlagKey reports whether key introduces a flag declaration. "flags" is the
// older spelling and is still accepted.
func isFlagKey(key string) bool {
	return key == "flag" || key == "flags"
}

// applyFlagType sets the value semantics of f from a type name.
func applyFlagType(f *Flag, kind string) error {
	switch kind {
	case FlagTypeString:
		f.TakesValue = true
	case FlagTypeNumber:
		f.TakesValue = true
		f.Number = true
	case FlagTypeBool, FlagTypeBoolean:
		f.TakesValue = false
		f.Number = false
	default:
		return &InvalidFlagTypeError{Value: kind}
	}
	return nil
}

// applySwitch sets the short or long form of f from a -x or --name token.
// It reports whether tok was a switch.
func applySwitch(f *Flag, tok string) bool {
	switch {
	case strings.HasPrefix(tok, "--"):
		f.Long = strings.ReplaceAll(tok, "--", "")
		return true
	case strings.HasPrefix(tok, "-") && len(tok) > 1:
		f.Short = firstRune(tok[1:])
		return true
	}
	return false
}

// parseShorthandFlag parses the value of a single-line flag declaration:
//
//	flag: -p --port |number| required The port to listen on
func parseShorthandFlag(value string) (Flag, error) {
	var f Flag
	var desc []string
	for _, tok := range strings.Fields(value) {
		switch {
		case strings.HasPrefix(tok, "--"):
			applySwitch(&f, tok)
			f.Name = f.Long
		case applySwitch(&f, tok):
		case len(tok) >= 2 && strings.HasPrefix(tok, "|") && strings.HasSuffix(tok, "|"):
			if err := applyFlagType(&f, tok[1:len(tok)-1]); err != nil {
				return Flag{}, err
			}
		case tok == "required":
			f.Required = true
		default:
			desc = append(desc, tok)
		}
	}
	f.Description = strings.TrimSpace(strings.Join(desc, " "))
	return f, nil
}

// applyFlagConfig applies one nested configuration entry of a structured flag:
//
//	desc: Which port to serve on
//	type: number
//	flag: -p --port
//	choices: dev, prod
//	required
//	multiple
//
// Unknown keys are ignored.
func applyFlagConfig(f *Flag, entry string) error {
	key, val, _ := strings.Cut(entry, ":")
	key, val = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(val)
	switch {
	case key == "desc" || key == "description":
		f.Description = val
	case key == "type":
		return applyFlagType(f, val)
	case isFlagKey(key):
		for _, tok := range strings.Fields(val) {
			applySwitch(f, tok)
		}
	case key == "choices":
		f.Choices = f.Choices[:0]
		for c := range strings.SplitSeq(val, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Choices = append(f.Choices, c)
			}
		}
		if len(f.Choices) > 0 {
			f.TakesValue = true
		} else {
			f.Choices = nil
		}
	case key == "required":
		f.Required = val == "" || strings.EqualFold(val, "true")
	case key == "multiple":
		f.Multiple = val == "" || strings.EqualFold(val, "true")
	}
	return nil
}

// sealFlag fills in the identifiers a declaration left implicit. A
// structured flag that only declares a short form still gets its list item
// name as the long form, because every bound flag needs a long name.
func sealFlag(f Flag) Flag {
	if f.Name == "" {
		f.Name = f.Long
	}
	if f.Name == "" {
		f.Name = f.Short
	}
	if f.Long == "" && f.Name != "" && f.Name != f.Short {
		f.Long = f.Name
	}
	return f
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// isOptionsMarker reports whether the last line of text is the OPTIONS marker.
func isOptionsMarker(text string) bool {
	text = strings.TrimRight(text, " \t\r\n")
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(text) == optionsMarker
}
