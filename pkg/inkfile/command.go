// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"strings"
)

// HiddenPrefix marks commands that are callable but not listed in help output.
const HiddenPrefix = "_"

type (
	// Command is a node of the compiled command tree.
	Command struct {
		// Depth is the heading level the command was declared at (1 = document title).
		Depth int `json:"depth"`
		// Name is the lowercased command name used for dispatch.
		Name string `json:"name"`
		// Aliases are alternate names parsed from the name//alias1//alias2 syntax.
		Aliases []string `json:"aliases,omitempty"`
		// Description is the text of the block quote following the heading.
		Description string `json:"description,omitempty"`
		// Script is the command's fenced code block; nil for grouping-only commands.
		Script *Script `json:"script,omitempty"`
		// Children are the nested subcommands in source order.
		Children []*Command `json:"children,omitempty"`
		// Args are the positional arguments parsed from the heading.
		Args []Argument `json:"args,omitempty"`
		// Flags are the named flags parsed from the OPTIONS list.
		Flags []Flag `json:"flags,omitempty"`
		// Span is the byte range of the command's markdown in the compiled document.
		Span Span `json:"span"`
		// SourceFile is the physical file the command came from when documents are merged.
		SourceFile string `json:"source_file,omitempty"`
	}

	// Script is the executable body of a command.
	Script struct {
		// Language is the fence info tag; empty means the default shell.
		Language string `json:"language"`
		// Source is the literal content of the code block.
		Source string `json:"source"`
	}

	// Argument is a positional argument declared as (name) in a heading.
	Argument struct {
		Name     string `json:"name"`
		Required bool   `json:"required"`
		// DefaultValue is applied when the argument is omitted; declared as (name=value).
		DefaultValue string `json:"default_value,omitempty"`
		// Multiple accepts any number of values; declared as (name...) or (name...?).
		Multiple bool `json:"multiple,omitempty"`
		// Trailing captures everything after a literal -- separator.
		Trailing bool `json:"trailing,omitempty"`
	}

	// Flag is a named option declared in an OPTIONS list.
	Flag struct {
		// Name is the flag identifier exported to scripts.
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		// Short is the single-letter form (used as -x).
		Short string `json:"short,omitempty"`
		// Long is the long form (used as --long).
		Long     string `json:"long,omitempty"`
		Required bool   `json:"required,omitempty"`
		// TakesValue is false for boolean switches.
		TakesValue bool `json:"takes_value,omitempty"`
		// Number requires the value to parse as a number.
		Number   bool     `json:"number,omitempty"`
		Multiple bool     `json:"multiple,omitempty"`
		Choices  []string `json:"choices,omitempty"`
	}

	// Span is a half-open byte range [Start, End).
	Span struct {
		Start int `json:"start"`
		End   int `json:"end"`
	}
)

// HasScript reports whether the command has an executable body.
func (c *Command) HasScript() bool {
	return c.Script != nil
}

// IsHidden reports whether the command is internal and should be hidden from help.
func (c *Command) IsHidden() bool {
	return strings.HasPrefix(c.Name, HiddenPrefix)
}

// Matches reports whether s is the command's name or one of its aliases.
func (c *Command) Matches(s string) bool {
	if c.Name == s {
		return true
	}
	for _, a := range c.Aliases {
		if a == s {
			return true
		}
	}
	return false
}

// Find returns the direct child matching name (or alias), or nil.
func (c *Command) Find(name string) *Command {
	for _, child := range c.Children {
		if child.Matches(name) {
			return child
		}
	}
	return nil
}

// Lookup resolves a path of names from c, e.g. Lookup("db", "flush").
func (c *Command) Lookup(path ...string) *Command {
	cur := c
	for _, p := range path {
		if cur = cur.Find(p); cur == nil {
			return nil
		}
	}
	return cur
}

// Walk visits c and its descendants depth-first. The path holds the names
// from the first child level down to the visited command (empty for c itself).
// Returning false from fn skips the visited command's children.
func (c *Command) Walk(fn func(path []string, cmd *Command) bool) {
	c.walk(nil, fn)
}

func (c *Command) walk(path []string, fn func([]string, *Command) bool) {
	if !fn(path, c) {
		return
	}
	for _, child := range c.Children {
		child.walk(append(path[:len(path):len(path)], child.Name), fn)
	}
}

// Section returns the markdown the command was compiled from, excluding its script.
func (c *Command) Section(document string) string {
	start, end := c.Span.Start, c.Span.End
	if start < 0 || start > len(document) {
		return ""
	}
	if end < start || end > len(document) {
		end = len(document)
	}
	return document[start:end]
}

// FindFlag returns the flag with the given name, or nil.
func (c *Command) FindFlag(name string) *Flag {
	for i := range c.Flags {
		if c.Flags[i].Name == name {
			return &c.Flags[i]
		}
	}
	return nil
}

// clone returns a copy of c that shares no mutable slices with it and has no children.
func (c *Command) clone() *Command {
	n := *c
	n.Children = nil
	n.Aliases = append([]string(nil), c.Aliases...)
	n.Args = append([]Argument(nil), c.Args...)
	n.Flags = make([]Flag, len(c.Flags))
	for i, f := range c.Flags {
		f.Choices = append([]string(nil), f.Choices...)
		n.Flags[i] = f
	}
	if len(c.Flags) == 0 {
		n.Flags = nil
	}
	if c.Script != nil {
		s := *c.Script
		n.Script = &s
	}
	return &n
}

// EnvName returns the flag name as an environment variable name.
func (f *Flag) EnvName() string {
	return strings.ReplaceAll(f.Name, "-", "_")
}

// EnvName returns the argument name as an environment variable name.
func (a *Argument) EnvName() string {
	return strings.ReplaceAll(a.Name, "-", "_")
}

// hasSwitch reports whether a flag with the given long or short form is declared.
func (c *Command) hasSwitch(long, short string) bool {
	for _, f := range c.Flags {
		if f.Long == long || f.Name == long || (short != "" && f.Short == short) {
			return true
		}
	}
	return false
}
