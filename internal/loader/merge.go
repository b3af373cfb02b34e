// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// importPattern matches every inkfile below the merge root, the root itself included.
const importPattern = "**/" + FileName

// Merge concatenates every inkjet.md under dir, shallowest first and then by
// path. Each file is preceded by an "<!-- inkfile: PATH -->" comment so
// compiled commands remember where they were declared.
func Merge(ctx context.Context, dir string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve import root: %w", err)
	}

	matches, err := doublestar.Glob(os.DirFS(root), importPattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("inkjet import failed: %w", err)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	sortByDepth(paths)

	var sb strings.Builder
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &OpenError{Path: path, Err: err}
		}
		fmt.Fprintf(&sb, "<!-- inkfile: %s -->\n", path)
		sb.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			sb.WriteByte('\n')
		}
	}

	return sb.String(), nil
}

func sortByDepth(paths []string) {
	depth := func(p string) int {
		return strings.Count(filepath.ToSlash(p), "/")
	}
	slices.SortStableFunc(paths, func(a, b string) int {
		if c := cmp.Compare(depth(a), depth(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}
