// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"errors"
	"reflect"
	"testing"
)

func script() *Script {
	return &Script{Language: "sh", Source: "true\n"}
}

// shape renders a tree as nested name lists for comparison.
func shape(cmds []*Command) []any {
	out := make([]any, 0, len(cmds))
	for _, c := range cmds {
		if len(c.Children) == 0 {
			out = append(out, c.Name)
			continue
		}
		out = append(out, map[string][]any{c.Name: shape(c.Children)})
	}
	return out
}

func TestTreeify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		flat []*Command
		want []any
	}{
		{
			name: "siblings",
			flat: []*Command{
				{Depth: 1, Name: "root"},
				{Depth: 2, Name: "a", Script: script()},
				{Depth: 2, Name: "b", Script: script()},
			},
			want: []any{map[string][]any{"root": {"a", "b"}}},
		},
		{
			name: "nested",
			flat: []*Command{
				{Depth: 1, Name: "root"},
				{Depth: 2, Name: "db"},
				{Depth: 3, Name: "up", Script: script()},
				{Depth: 3, Name: "down", Script: script()},
				{Depth: 2, Name: "run", Script: script()},
			},
			want: []any{map[string][]any{"root": {map[string][]any{"db": {"up", "down"}}, "run"}}},
		},
		{
			name: "shallower node after skipped level is a sibling",
			flat: []*Command{
				{Depth: 1, Name: "root"},
				{Depth: 2, Name: "a"},
				{Depth: 4, Name: "deep", Script: script()},
				{Depth: 3, Name: "mid", Script: script()},
			},
			want: []any{map[string][]any{"root": {map[string][]any{"a": {"deep", "mid"}}}}},
		},
		{
			name: "pruned leaves",
			flat: []*Command{
				{Depth: 1, Name: "root"},
				{Depth: 2, Name: "docs"},
				{Depth: 2, Name: "group"},
				{Depth: 3, Name: "empty"},
			},
			want: []any{"root"},
		},
		{
			name: "last declaration wins",
			flat: []*Command{
				{Depth: 1, Name: "root"},
				{Depth: 2, Name: "a", Script: script()},
				{Depth: 2, Name: "b", Script: script()},
				{Depth: 2, Name: "a", Script: &Script{Source: "second"}},
			},
			want: []any{map[string][]any{"root": {"b", "a"}}},
		},
		{
			name: "roots without nesting stay separate",
			flat: []*Command{
				{Depth: 1, Name: "one"},
				{Depth: 1, Name: "two"},
			},
			want: []any{"one", "two"},
		},
		{
			name: "concatenated documents shift once",
			flat: []*Command{
				{Depth: 1, Name: "one"},
				{Depth: 2, Name: "a", Script: script()},
				{Depth: 1, Name: "two"},
				{Depth: 2, Name: "b", Script: script()},
				{Depth: 1, Name: "three"},
				{Depth: 2, Name: "c", Script: script()},
			},
			want: []any{map[string][]any{"one": {
				"a",
				map[string][]any{"two": {"b"}},
				map[string][]any{"three": {"c"}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := shape(treeify(tt.flat)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("treeify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTreeifyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	flat := []*Command{
		{Depth: 1, Name: "one"},
		{Depth: 2, Name: "a", Script: script(), Description: "  Run a\nOPTIONS  "},
		{Depth: 1, Name: "two"},
		{Depth: 2, Name: "b", Script: script()},
	}
	roots := treeify(flat)

	if flat[2].Depth != 1 || len(flat[0].Children) != 0 {
		t.Error("treeify() modified its input")
	}
	if flat[1].Description != "  Run a\nOPTIONS  " {
		t.Errorf("input description changed to %q", flat[1].Description)
	}
	if got := roots[0].Find("a").Description; got != "Run a" {
		t.Errorf("Description = %q, want %q", got, "Run a")
	}
	if roots[0].Find("two").Depth != 2 {
		t.Errorf("two.Depth = %d, want 2", roots[0].Find("two").Depth)
	}
}

func TestTreeifyOverrideKeepsLastContent(t *testing.T) {
	t.Parallel()

	flat := []*Command{
		{Depth: 1, Name: "root"},
		{Depth: 2, Name: "a", Script: &Script{Source: "first"}},
		{Depth: 2, Name: "a", Script: &Script{Source: "second"}},
	}
	root := treeify(flat)[0]
	if len(root.Children) != 1 || root.Children[0].Script.Source != "second" {
		t.Errorf("children = %+v, want single a with second script", root.Children)
	}
}

func TestNormalizeDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Serve\n the app ", "Serve the app"},
		{"Serve the app\nOPTIONS", "Serve the app"},
		{"OPTIONS", ""},
		{"List OPTIONS here", "List OPTIONS here"},
	}

	for _, tt := range tests {
		if got := normalizeDescription(tt.in); got != tt.want {
			t.Errorf("normalizeDescription(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateAliases(t *testing.T) {
	t.Parallel()

	ok := &Command{Depth: 1, Children: []*Command{
		{Depth: 2, Name: "a", Aliases: []string{"x"}},
		{Depth: 2, Name: "b", Aliases: []string{"y"}, Children: []*Command{
			{Depth: 3, Name: "c", Aliases: []string{"z"}},
		}},
	}}
	if err := validateAliases(ok); err != nil {
		t.Errorf("validateAliases() unexpected error: %v", err)
	}

	dup := &Command{Depth: 1, Children: []*Command{
		{Depth: 2, Name: "a", Aliases: []string{"x"}},
		{Depth: 2, Name: "b", Children: []*Command{
			{Depth: 3, Name: "c", Aliases: []string{"x"}},
		}},
	}}
	err := validateAliases(dup)
	var dupErr *DuplicateAliasError
	if !errors.As(err, &dupErr) {
		t.Fatalf("validateAliases() error = %v, want DuplicateAliasError", err)
	}
	if dupErr.Alias != "x" || dupErr.Commands != [2]string{"a", "b c"} {
		t.Errorf("DuplicateAliasError = %+v", dupErr)
	}
	if err.Error() != "Please update inkjet files to remove duplicate aliases" {
		t.Errorf("Error() = %q", err.Error())
	}
}
