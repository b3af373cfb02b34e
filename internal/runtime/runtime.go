// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/inkjet/inkjet/pkg/inkfile"
)

// ErrNoScript is returned for commands whose section has no runnable code
// block, such as pure group headings.
var ErrNoScript = errors.New("Command has no script.") //nolint:staticcheck // printed verbatim

type (
	// ExecutionContext is one invocation of a command: the bound values, the
	// streams and the runtime that should run it.
	ExecutionContext struct {
		Context context.Context
		Command *inkfile.Command
		// InkfilePath is the root inkfile. Imported commands record their own
		// file in Command.SourceFile.
		InkfilePath string
		// Args holds positional values after defaults were applied.
		Args map[string]string
		// Flags holds flag values; switches are "true" or "".
		Flags    map[string]string
		ExtraEnv map[string]string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// FixedDir runs the script from the directory of its inkfile instead
		// of the caller's working directory.
		FixedDir        bool
		SelectedRuntime RuntimeType
		// ExecutionID is exported to the script as INKJET_EXECUTION_ID.
		ExecutionID string
	}

	// Result is the outcome of one script run. Error is set when the script
	// could not be started or was rejected before running.
	Result struct {
		ExitCode ExitCode
		Error    error
		// Output and ErrOutput are only filled by ExecuteCapture.
		Output    string
		ErrOutput string
	}

	// Runtime runs command scripts.
	Runtime interface {
		Name() string
		Execute(ctx *ExecutionContext) *Result
		// Available reports whether the host can use this runtime at all.
		Available() bool
		// Validate rejects commands this runtime cannot run.
		Validate(ctx *ExecutionContext) error
	}

	// CapturingRuntime runs a script with its output buffered into the Result.
	CapturingRuntime interface {
		ExecuteCapture(ctx *ExecutionContext) *Result
	}
)

// NewExecutionContext returns a context bound to the process streams, running
// natively from the inkfile directory under a fresh execution id.
func NewExecutionContext(ctx context.Context, cmd *inkfile.Command, inkfilePath string) *ExecutionContext {
	return &ExecutionContext{
		Context:         ctx,
		Command:         cmd,
		InkfilePath:     inkfilePath,
		Args:            map[string]string{},
		Flags:           map[string]string{},
		ExtraEnv:        map[string]string{},
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		FixedDir:        true,
		SelectedRuntime: RuntimeTypeNative,
		ExecutionID:     uuid.NewString(),
	}
}

// LocalInkfile is the file that declared the command.
func (ctx *ExecutionContext) LocalInkfile() string {
	if src := strings.TrimSpace(ctx.Command.SourceFile); src != "" {
		return src
	}
	return ctx.InkfilePath
}

// WorkDir is the script's working directory, or "" to inherit the caller's.
func (ctx *ExecutionContext) WorkDir() string {
	if ctx.FixedDir {
		return filepath.Dir(ctx.LocalInkfile())
	}
	return ""
}

func (ctx *ExecutionContext) goContext() context.Context {
	if ctx.Context != nil {
		return ctx.Context
	}
	return context.Background()
}

// Success reports a zero exit status with no start error.
func (r *Result) Success() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}
