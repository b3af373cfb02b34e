// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Message(t *testing.T) {
	t.Parallel()

	notFound := errors.New("no such file")
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"bare operation", &ActionableError{Operation: "compile inkfile"}, "failed to compile inkfile"},
		{"resource", &ActionableError{Operation: "read inkfile", Resource: "tasks.md"}, "failed to read inkfile: tasks.md"},
		{"cause", &ActionableError{Operation: "load config", Cause: notFound}, "failed to load config: no such file"},
		{
			name: "resource and cause",
			err:  &ActionableError{Operation: "run build", Resource: "python3", Cause: notFound},
			want: "failed to run build: python3: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if tt.err.Cause != nil && !errors.Is(tt.err, tt.err.Cause) {
				t.Error("errors.Is(err, cause) = false")
			}
		})
	}

	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() without a cause should be nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	nested := &ActionableError{
		Operation: "run deploy",
		Cause: &ActionableError{
			Operation: "start interpreter",
			Cause:     errors.New("exec: \"node\": not found"),
		},
	}
	hinted := &ActionableError{
		Operation:   "read inkfile",
		Resource:    "inkjet.md",
		Suggestions: []string{"Pass a path with -c", "Pipe the inkfile with -"},
	}

	tests := []struct {
		name    string
		err     *ActionableError
		verbose bool
		want    []string
		notWant []string
	}{
		{
			name: "suggestions as bullets",
			err:  hinted,
			want: []string{"failed to read inkfile: inkjet.md\n", "\n  • Pass a path with -c", "\n  • Pipe the inkfile with -"},
		},
		{
			name:    "terse hides the chain",
			err:     nested,
			want:    []string{"failed to run deploy: failed to start interpreter"},
			notWant: []string{"Error chain:"},
		},
		{
			name:    "verbose numbers the chain",
			err:     nested,
			verbose: true,
			want: []string{
				"\n\nError chain:",
				"1. failed to start interpreter: exec: \"node\": not found",
				"2. exec: \"node\": not found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.err.Format(tt.verbose)
			for _, s := range tt.want {
				if !strings.Contains(got, s) {
					t.Errorf("Format(%v) missing %q:\n%s", tt.verbose, s, got)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(got, s) {
					t.Errorf("Format(%v) contains %q:\n%s", tt.verbose, s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("permission denied")
	ec := NewErrorContext().
		WithOperation("read inkfile").
		WithResource("docs/inkjet.md").
		WithSuggestion("Check that the path exists and is readable").
		WithSuggestion("  ").
		WithIssue(InkfileReadFailedId).
		Wrap(cause)

	ae := ec.Build()
	if ae == nil {
		t.Fatal("Build() = nil")
	}
	if ae.Operation != "read inkfile" || ae.Resource != "docs/inkjet.md" || ae.Issue != InkfileReadFailedId {
		t.Errorf("Build() = %+v", ae)
	}
	if len(ae.Suggestions) != 1 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %q, want one (blank hints are dropped)", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("errors.Is(Build(), cause) = false")
	}

	// a second build must not share the suggestion slice
	ec.WithSuggestion("Run with --inkjet-debug")
	if len(ae.Suggestions) != 1 {
		t.Errorf("earlier error changed to %q", ae.Suggestions)
	}
}

func TestErrorContext_NoOperation(t *testing.T) {
	t.Parallel()

	ec := NewErrorContext().WithResource("x").Wrap(errors.New("boom"))
	if ae := ec.Build(); ae != nil {
		t.Errorf("Build() = %+v, want nil without an operation", ae)
	}
	if err := ec.BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want an untyped nil", err)
	}
}

func TestIssueOf(t *testing.T) {
	t.Parallel()

	inner := NewErrorContext().
		WithOperation("run build").
		WithIssue(InterpreterNotFoundId).
		Wrap(errors.New("node: not found")).
		BuildError()

	tests := []struct {
		name string
		err  error
		want Id
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("x"), 0},
		{"direct", inner, InterpreterNotFoundId},
		{"wrapped by fmt", fmt.Errorf("dispatch: %w", inner), InterpreterNotFoundId},
		{
			name: "outer without page",
			err:  NewErrorContext().WithOperation("execute").Wrap(inner).BuildError(),
			want: InterpreterNotFoundId,
		},
		{
			name: "outer page wins",
			err:  NewErrorContext().WithOperation("execute").WithIssue(ScriptExecutionFailedId).Wrap(inner).BuildError(),
			want: ScriptExecutionFailedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IssueOf(tt.err); got != tt.want {
				t.Errorf("IssueOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
