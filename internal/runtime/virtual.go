// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/inkjet/inkjet/internal/logging"
	"github.com/inkjet/inkjet/internal/uroot"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes sh code blocks with the embedded mvdan/sh interpreter.
// File utilities such as cp, ls and tar run in process through u-root; code
// blocks in any other language are handed to Fallback.
type VirtualRuntime struct {
	// Fallback runs scripts the interpreter cannot handle
	Fallback Runtime
	// Logger receives debug output for commands the script executes
	Logger *log.Logger
}

// NewVirtualRuntime creates a new virtual runtime that falls back to fallback
func NewVirtualRuntime(fallback Runtime, logger *log.Logger) *VirtualRuntime {
	if logger == nil {
		logger = logging.Discard()
	}
	return &VirtualRuntime{Fallback: fallback, Logger: logger}
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available returns whether this runtime is available
func (r *VirtualRuntime) Available() bool {
	// built in
	return true
}

// Validate checks if a command can be executed
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	if err := validateScript(ctx); err != nil {
		return err
	}
	if !r.handles(ctx) {
		if r.Fallback == nil {
			return fmt.Errorf("virtual runtime cannot run %q scripts", ctx.Command.Script.Language)
		}
		return r.Fallback.Validate(ctx)
	}

	if _, err := parseScript(ctx); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}
	return nil
}

// Execute runs a command using the virtual shell
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	if !r.handles(ctx) && r.Fallback != nil {
		r.Logger.Debug("delegating script", "command", ctx.Command.Name, "language", ctx.Command.Script.Language, "runtime", r.Fallback.Name())
		return r.Fallback.Execute(ctx)
	}
	return r.run(ctx, streamTo(ctx))
}

// ExecuteCapture runs a command and captures its output
func (r *VirtualRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	if !r.handles(ctx) && r.Fallback != nil {
		capturing, ok := r.Fallback.(CapturingRuntime)
		if !ok {
			return failed(fmt.Errorf("runtime '%s' cannot capture output", r.Fallback.Name()))
		}
		return capturing.ExecuteCapture(ctx)
	}
	return r.run(ctx, captureOutput())
}

func (r *VirtualRuntime) run(ctx *ExecutionContext, out output) *Result {
	if err := validateScript(ctx); err != nil {
		return failed(err)
	}

	prog, err := parseScript(ctx)
	if err != nil {
		return failed(fmt.Errorf("failed to parse script: %w", err))
	}

	stdin := ctx.Stdin
	if out.capturing() {
		stdin = nil
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(EnvToSlice(buildRuntimeEnv(ctx))...)),
		interp.StdIO(stdin, out.stdout, out.stderr),
		interp.ExecHandlers(r.execHandler, uroot.ExecHandler),
	}
	if dir := ctx.WorkDir(); dir != "" {
		opts = append(opts, interp.Dir(dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return failed(fmt.Errorf("failed to create interpreter: %w", err))
	}

	err = runner.Run(ctx.goContext(), prog)
	if err == nil {
		return out.result(0, nil)
	}
	if status, ok := interp.IsExitStatus(err); ok {
		return out.result(ExitCode(status), nil)
	}
	return out.result(1, fmt.Errorf("script execution failed: %w", err))
}

// handles reports whether the script is plain sh the interpreter can run.
func (r *VirtualRuntime) handles(ctx *ExecutionContext) bool {
	if ctx.Command == nil || !ctx.Command.HasScript() {
		return true
	}
	lang := strings.ToLower(strings.TrimSpace(ctx.Command.Script.Language))
	source := strings.TrimSpace(ctx.Command.Script.Source)
	return (lang == "" || lang == "sh") && !strings.HasPrefix(source, "#!")
}

// execHandler logs every program the script runs.
func (r *VirtualRuntime) execHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		r.Logger.Debug("exec", "args", args)
		return next(ctx, args)
	}
}

func parseScript(ctx *ExecutionContext) (*syntax.File, error) {
	source := withSetE(ctx.Command.Script.Source)
	return syntax.NewParser().Parse(strings.NewReader(source), ctx.Command.Name)
}
