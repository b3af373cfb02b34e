// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/inkjet/inkjet/internal/issue"
)

const (
	// defaultShell runs code blocks without a language tag.
	defaultShell = "sh"
	// setE is prepended to sh-family scripts so they stop at the first failing command.
	setE = "set -e"
	// tempScriptPrefix names the executable files written for shebang and go scripts.
	tempScriptPrefix = ".inkjet."
	// goShebang runs go code blocks through the yaegi interpreter.
	goShebang = "#!/usr/bin/env yaegi"
)

type (
	// NativeRuntime executes scripts with the host interpreters
	NativeRuntime struct {
		// Shell replaces sh for code blocks without a language tag
		Shell string
		// Interpreters overrides the program used for a language tag
		Interpreters map[string]string
	}

	// NativeOption configures a NativeRuntime.
	NativeOption func(*NativeRuntime)

	// invocation is a resolved interpreter command line.
	invocation struct {
		program string
		args    []string
	}
)

// WithShell sets the shell used for code blocks without a language tag.
func WithShell(shell string) NativeOption {
	return func(r *NativeRuntime) { r.Shell = shell }
}

// WithInterpreters overrides the program used per language tag, e.g. {"py": "python3"}.
func WithInterpreters(interpreters map[string]string) NativeOption {
	return func(r *NativeRuntime) { r.Interpreters = interpreters }
}

// NewNativeRuntime creates a new native runtime
func NewNativeRuntime(opts ...NativeOption) *NativeRuntime {
	r := &NativeRuntime{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether the default shell can be found
func (r *NativeRuntime) Available() bool {
	_, err := exec.LookPath(r.shell())
	return err == nil
}

// Validate checks if a command can be executed
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	return validateScript(ctx)
}

// Execute runs the command's script, streaming to the context's writers
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	return r.run(ctx, streamTo(ctx))
}

// ExecuteCapture runs the command's script and captures its output
func (r *NativeRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	return r.run(ctx, captureOutput())
}

func (r *NativeRuntime) run(ctx *ExecutionContext, out output) *Result {
	if err := validateScript(ctx); err != nil {
		return failed(err)
	}

	cmd, cleanup, err := r.prepare(ctx)
	if err != nil {
		return failed(err)
	}
	defer cleanup()

	cmd.Dir = ctx.WorkDir()
	cmd.Env = EnvToSlice(buildRuntimeEnv(ctx))
	cmd.Stdout = out.stdout
	cmd.Stderr = out.stderr
	if !out.capturing() {
		cmd.Stdin = ctx.Stdin
	}

	result := out.processResult(cmd.Run())
	if result.Error != nil {
		result.Error = startError(ctx, cmd.Path, result.Error)
	}
	return result
}

// prepare builds the process for the command's script. The returned cleanup
// removes any temporary script file and must always be called.
func (r *NativeRuntime) prepare(ctx *ExecutionContext) (*exec.Cmd, func(), error) {
	lang := strings.ToLower(strings.TrimSpace(ctx.Command.Script.Language))
	source := strings.TrimSpace(ctx.Command.Script.Source)

	if strings.HasPrefix(source, "#!") || lang == "go" {
		if !strings.HasPrefix(source, "#!") {
			source = goShebang + "\n" + source
		}
		path, err := writeScriptFile(filepath.Dir(ctx.LocalInkfile()), source)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			_ = os.Remove(path) // best-effort; the file is hidden and content-addressed
		}
		return exec.CommandContext(ctx.goContext(), path), cleanup, nil
	}

	inv := r.resolve(lang, source)
	return exec.CommandContext(ctx.goContext(), inv.program, inv.args...), func() {}, nil
}

// resolve selects the interpreter and arguments for a language tag.
func (r *NativeRuntime) resolve(lang, source string) invocation {
	var inv invocation
	switch lang {
	case "js", "javascript":
		inv = invocation{"node", []string{"-e", source}}
	case "py", "python":
		inv = invocation{"python", []string{"-c", source}}
	case "rb", "ruby":
		inv = invocation{"ruby", []string{"-e", source}}
	case "php":
		inv = invocation{"php", []string{"-r", source}}
	case "ts", "typescript":
		inv = invocation{"deno", []string{"eval", "-T", source}}
	case "":
		inv = invocation{r.shell(), []string{"-c", withSetE(source)}}
	default:
		if isShellFamily(lang) {
			inv = invocation{lang, []string{"-c", withSetE(source)}}
		} else {
			// any other program that accepts -c (fish, nu, ...)
			inv = invocation{lang, []string{"-c", source}}
		}
	}

	if override, ok := r.Interpreters[lang]; ok && strings.TrimSpace(override) != "" {
		fields := strings.Fields(override)
		inv.program = fields[0]
		inv.args = append(fields[1:len(fields):len(fields)], inv.args...)
	}
	return inv
}

func (r *NativeRuntime) shell() string {
	if r.Shell != "" {
		return r.Shell
	}
	return defaultShell
}

// isShellFamily reports whether the language gets "set -e" prepended.
func isShellFamily(lang string) bool {
	switch lang {
	case "", "sh", "bash", "zsh", "dash":
		return true
	default:
		return false
	}
}

func withSetE(source string) string {
	return setE + "\n" + source
}

// writeScriptFile writes an executable, content-addressed script next to the inkfile.
func writeScriptFile(dir, source string) (string, error) {
	path := filepath.Join(dir, tempScriptPrefix+strconv.FormatUint(xxhash.Sum64String(source), 16))
	if err := os.WriteFile(path, []byte(source), 0o775); err != nil {
		return "", issue.NewErrorContext().
			WithOperation("write script file").
			WithResource(path).
			WithSuggestion("Make sure the inkfile directory is writable").
			Wrap(err).
			BuildError()
	}
	// WriteFile is subject to the umask
	if err := os.Chmod(path, 0o775); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to make %s executable: %w", path, err)
	}
	return path, nil
}

func validateScript(ctx *ExecutionContext) error {
	if ctx.Command == nil || !ctx.Command.HasScript() || strings.TrimSpace(ctx.Command.Script.Source) == "" {
		return ErrNoScript
	}
	return nil
}

// startError adds remediation hints to errors that kept the script from starting.
func startError(ctx *ExecutionContext, program string, err error) error {
	if errors.Is(err, ErrInvalidExitCode) {
		return err
	}

	ec := issue.NewErrorContext().
		WithOperation("run " + ctx.Command.Name).
		WithResource(program)
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		ec = ec.WithSuggestion("Install the interpreter or map the language to another program in the 'interpreters' config").
			WithIssue(issue.InterpreterNotFoundId)
	case errors.Is(err, os.ErrPermission):
		ec = ec.WithSuggestion("Check that the script file can be executed (the filesystem may be mounted noexec)").
			WithIssue(issue.PermissionDeniedId)
	default:
		ec = ec.WithIssue(issue.ScriptExecutionFailedId)
	}
	return ec.Wrap(err).BuildError()
}
