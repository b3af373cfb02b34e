// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/inkjet/inkjet/internal/logging"
)

const (
	// FileName is the inkfile name searched for in the working directory and its ancestors.
	FileName = "inkjet.md"
	// StdinSource reads the inkfile from standard input.
	StdinSource = "-"
	// stdinName is the pseudo file name used for non-file inkfiles.
	stdinName = "stdin"
)

// ErrNotFound is returned when no inkjet.md exists in the working directory or its ancestors.
var ErrNotFound = errors.New("Could not locate an inkjet.md file") //nolint:staticcheck // user-facing message

type (
	// Inkfile is a loaded inkfile document.
	Inkfile struct {
		// Path is the absolute path of the inkfile. For stdin and inline
		// content it is "<workdir>/stdin".
		Path string
		// Content is the markdown to compile, merged with imported files when
		// the import directive is present.
		Content string
		// IsFile is false for stdin and inline content.
		IsFile bool
		// Directives are the inkjet_* switches found in the document.
		Directives Directives
	}

	// LoadOptions configures Load.
	LoadOptions struct {
		// Source is a file path, "-" for stdin, or inline markdown. Empty means search.
		Source string
		// WorkDir is where the search starts and relative paths resolve from.
		// Defaults to the process working directory.
		WorkDir string
		// Stdin is read when Source is "-". Defaults to os.Stdin.
		Stdin io.Reader
		// Logger receives debug output. Defaults to a discarding logger.
		Logger *log.Logger
	}

	// OpenError is returned when an explicitly named inkfile cannot be read.
	OpenError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *OpenError) Error() string {
	return "failed to open " + e.Path
}

// Unwrap returns the underlying filesystem error.
func (e *OpenError) Unwrap() error { return e.Err }

// Load resolves and reads the inkfile described by opts.
func Load(ctx context.Context, opts LoadOptions) (*Inkfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	inkfile, err := read(opts, workDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded inkfile", "path", inkfile.Path, "file", inkfile.IsFile, "bytes", len(inkfile.Content))

	inkfile.Directives = ParseDirectives(inkfile.Content)
	if inkfile.Directives.Import {
		merged, err := Merge(ctx, filepath.Dir(inkfile.Path))
		if err != nil {
			return nil, err
		}
		logger.Debug("merged imported inkfiles", "root", filepath.Dir(inkfile.Path))
		inkfile.Content = merged
		// directives of the merged document win
		inkfile.Directives = ParseDirectives(merged)
		inkfile.Directives.Import = true
	}

	return inkfile, nil
}

func read(opts LoadOptions, workDir string) (*Inkfile, error) {
	pseudoPath := filepath.Join(workDir, stdinName)

	switch {
	case strings.Contains(opts.Source, "\n"):
		return &Inkfile{Path: pseudoPath, Content: opts.Source}, nil

	case opts.Source == StdinSource:
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return &Inkfile{Path: pseudoPath, Content: string(data)}, nil

	case opts.Source == "":
		return search(workDir)

	default:
		path := opts.Source
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &OpenError{Path: opts.Source, Err: err}
		}
		return &Inkfile{Path: path, Content: string(data), IsFile: true}, nil
	}
}

// search walks from dir up to the filesystem root looking for inkjet.md.
func search(dir string) (*Inkfile, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if data, err := os.ReadFile(candidate); err == nil {
			return &Inkfile{Path: candidate, Content: string(data), IsFile: true}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNotFound
		}
		dir = parent
	}
}
