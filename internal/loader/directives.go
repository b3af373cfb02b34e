// SPDX-License-Identifier: MPL-2.0

package loader

import "strings"

const (
	// ImportDirective merges every inkjet.md below the inkfile's directory.
	ImportDirective = "inkjet_import: all"
	// SortDirective lists subcommands alphabetically in help output.
	SortDirective = "inkjet_sort: true"
	// NoFixedDirDirective runs scripts in the caller's working directory
	// instead of the inkfile's directory.
	NoFixedDirDirective = "inkjet_fixed_dir: false"
)

// Directives are document-wide switches written anywhere in an inkfile,
// usually inside an HTML comment.
type Directives struct {
	Import bool
	Sort   bool
	// FixedDir runs scripts from the directory of the inkfile that declared them.
	FixedDir bool
}

// ParseDirectives scans content for directives.
func ParseDirectives(content string) Directives {
	return Directives{
		Import:   strings.Contains(content, ImportDirective),
		Sort:     strings.Contains(content, SortDirective),
		FixedDir: !strings.Contains(content, NoFixedDirDirective),
	}
}
