// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strconv"
	"syscall"
)

const (
	// ExitCannotExecute is the status of a script whose interpreter could not be run.
	ExitCannotExecute ExitCode = 126
	// ExitNotFound is the status of a script whose interpreter does not exist.
	ExitNotFound ExitCode = 127

	exitSignalBase ExitCode = 128
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is the status a script finished with. Codes above 128 follow the
	// shell convention of 128 plus the number of the signal that killed it.
	ExitCode int

	// InvalidExitCodeError is returned for a status outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}

	// output is where a run writes. A capturing output collects both streams
	// for the Result and leaves the script without stdin.
	output struct {
		stdout   io.Writer
		stderr   io.Writer
		captured *[2]bytes.Buffer
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// IsValid reports whether the code fits a process status.
func (c ExitCode) IsValid() (bool, []error) {
	if c < 0 || c > 255 {
		return false, []error{&InvalidExitCodeError{Value: c}}
	}
	return true, nil
}

// IsSuccess returns true for 0.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// Signal returns the number of the signal that killed the script.
func (c ExitCode) Signal() (int, bool) {
	if c > exitSignalBase && c <= 255 {
		return int(c - exitSignalBase), true
	}
	return 0, false
}

func (c ExitCode) String() string {
	if sig, ok := c.Signal(); ok {
		return fmt.Sprintf("%d (signal %d)", int(c), sig)
	}
	return strconv.Itoa(int(c))
}

// exitResult is the Result of a script that ran and exited with code.
func exitResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// failed is the Result of a script that could not run at all.
func failed(err error) *Result {
	return &Result{ExitCode: startCode(err), Error: err}
}

// startCode maps a start failure to the status a shell reports for it.
func startCode(err error) ExitCode {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ExitNotFound
	case errors.Is(err, fs.ErrPermission):
		return ExitCannotExecute
	default:
		return 1
	}
}

func streamTo(ctx *ExecutionContext) output {
	return output{stdout: ctx.Stdout, stderr: ctx.Stderr}
}

func captureOutput() output {
	bufs := new([2]bytes.Buffer)
	return output{stdout: &bufs[0], stderr: &bufs[1], captured: bufs}
}

func (o output) capturing() bool { return o.captured != nil }

// result builds the Result of a finished run, with the captured streams if any.
func (o output) result(code ExitCode, err error) *Result {
	r := &Result{ExitCode: code, Error: err}
	if o.captured != nil {
		r.Output = o.captured[0].String()
		r.ErrOutput = o.captured[1].String()
	}
	return r
}

// processResult converts the error returned by exec.Cmd.Run.
func (o output) processResult(err error) *Result {
	if err == nil {
		return o.result(0, nil)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return o.result(startCode(err), err)
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return o.result(exitSignalBase+ExitCode(ws.Signal()), nil)
	}
	code := ExitCode(exitErr.ExitCode())
	if valid, errs := code.IsValid(); !valid {
		return o.result(1, errs[0])
	}
	return o.result(code, nil)
}
