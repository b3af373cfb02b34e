// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"strings"
)

// group is a command together with the flat run of deeper commands that follow it.
type group struct {
	cmd     *Command
	pending []*Command
}

// treeify nests a flat, depth-tagged command list. It works on copies and
// leaves flat untouched.
//
// Commands are grouped under the closest preceding shallower command. Within
// each sibling list, commands without a script or surviving children are pruned
// (depth 1 roots are always kept) and a repeated name keeps only its last
// declaration.
func treeify(flat []*Command) []*Command {
	cmds := make([]*Command, len(flat))
	for i, c := range flat {
		cmds[i] = c.clone()
		cmds[i].Description = normalizeDescription(cmds[i].Description)
	}
	shiftConcatenatedRoots(cmds)
	return nest(cmds)
}

// shiftConcatenatedRoots pushes every depth 1 heading that follows a deeper
// one (and everything after it) down one level, so concatenated documents
// become subcommands of the first document's root. The shift is applied once
// and then held; further depth 1 headings do not deepen it.
func shiftConcatenatedRoots(cmds []*Command) {
	seenNested, shift := false, 0
	for _, c := range cmds {
		if c.Depth > 1 {
			seenNested = true
		}
		if seenNested && c.Depth == 1 {
			shift = 1
		}
		c.Depth += shift
	}
}

func nest(cmds []*Command) []*Command {
	var groups []*group
	for _, c := range cmds {
		if n := len(groups); n > 0 && c.Depth > groups[n-1].cmd.Depth {
			groups[n-1].pending = append(groups[n-1].pending, c)
			continue
		}
		groups = append(groups, &group{cmd: c})
	}

	level := make([]*Command, 0, len(groups))
	for _, g := range groups {
		if len(g.pending) > 0 {
			g.cmd.Children = nest(g.pending)
		}
		if g.cmd.Depth > 1 && !g.cmd.HasScript() && len(g.cmd.Children) == 0 {
			continue
		}
		level = append(level, g.cmd)
	}
	return lastWins(level)
}

// lastWins drops every command whose name is declared again later in the list.
func lastWins(cmds []*Command) []*Command {
	last := make(map[string]int, len(cmds))
	for i, c := range cmds {
		last[c.Name] = i
	}
	if len(last) == len(cmds) {
		return cmds
	}
	out := make([]*Command, 0, len(last))
	for i, c := range cmds {
		if last[c.Name] == i {
			out = append(out, c)
		}
	}
	return out
}

func normalizeDescription(desc string) string {
	desc = strings.Join(strings.Fields(desc), " ")
	if desc == optionsMarker {
		return ""
	}
	if trimmed, ok := strings.CutSuffix(desc, " "+optionsMarker); ok {
		return trimmed
	}
	return desc
}

// validateAliases fails on the first alias declared twice anywhere in the tree.
func validateAliases(root *Command) error {
	owners := make(map[string]string)
	var dup *DuplicateAliasError
	root.Walk(func(path []string, cmd *Command) bool {
		if dup != nil {
			return false
		}
		where := strings.Join(path, " ")
		if where == "" {
			where = cmd.Name
		}
		for _, a := range cmd.Aliases {
			if prev, ok := owners[a]; ok {
				dup = &DuplicateAliasError{Alias: a, Commands: [2]string{prev, where}}
				return false
			}
			owners[a] = where
		}
		return true
	})
	if dup != nil {
		return dup
	}
	return nil
}
