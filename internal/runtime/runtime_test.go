// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/inkjet/inkjet/internal/config"
	"github.com/inkjet/inkjet/pkg/inkfile"
)

func testCommand(name, lang, source string) *inkfile.Command {
	return &inkfile.Command{
		Depth:  2,
		Name:   name,
		Script: &inkfile.Script{Language: lang, Source: source},
	}
}

// newTestContext returns a context for cmd whose inkfile lives in a fresh
// temp dir, with output captured in the returned buffer.
func newTestContext(t *testing.T, cmd *inkfile.Command) (*ExecutionContext, *bytes.Buffer) {
	t.Helper()

	ctx := NewExecutionContext(context.Background(), cmd, filepath.Join(t.TempDir(), "inkjet.md"))
	var stdout bytes.Buffer
	ctx.Stdout = &stdout
	ctx.Stderr = &bytes.Buffer{}
	ctx.Stdin = &bytes.Buffer{}
	return ctx, &stdout
}

func TestNewExecutionContext(t *testing.T) {
	t.Parallel()

	cmd := testCommand("build", "", "echo hi")
	ctx := NewExecutionContext(context.Background(), cmd, "/work/inkjet.md")

	if !ctx.FixedDir {
		t.Error("FixedDir should default to true")
	}
	if ctx.SelectedRuntime != RuntimeTypeNative {
		t.Errorf("SelectedRuntime = %q, want %q", ctx.SelectedRuntime, RuntimeTypeNative)
	}
	if _, err := uuid.Parse(ctx.ExecutionID); err != nil {
		t.Errorf("ExecutionID = %q is not a UUID: %v", ctx.ExecutionID, err)
	}
	if ctx.WorkDir() != "/work" {
		t.Errorf("WorkDir() = %q, want %q", ctx.WorkDir(), "/work")
	}

	ctx.FixedDir = false
	if ctx.WorkDir() != "" {
		t.Errorf("WorkDir() without FixedDir = %q, want empty", ctx.WorkDir())
	}
}

func TestExecutionContext_LocalInkfile(t *testing.T) {
	t.Parallel()

	cmd := testCommand("svc", "", "echo")
	ctx := NewExecutionContext(context.Background(), cmd, "/work/inkjet.md")
	if got := ctx.LocalInkfile(); got != "/work/inkjet.md" {
		t.Errorf("LocalInkfile() = %q, want root inkfile", got)
	}

	cmd.SourceFile = " /work/svc/inkjet.md "
	if got := ctx.LocalInkfile(); got != "/work/svc/inkjet.md" {
		t.Errorf("LocalInkfile() = %q, want %q", got, "/work/svc/inkjet.md")
	}
	if got := ctx.WorkDir(); got != "/work/svc" {
		t.Errorf("WorkDir() = %q, want %q", got, "/work/svc")
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := BuildRegistry(BuildRegistryOptions{})

	for _, typ := range []RuntimeType{RuntimeTypeNative, RuntimeTypeVirtual} {
		rt, err := registry.Get(typ)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", typ, err)
		}
		if rt.Name() != string(typ) {
			t.Errorf("Get(%q).Name() = %q", typ, rt.Name())
		}
	}

	_, err := registry.Get("container")
	if !errors.Is(err, ErrRuntimeNotRegistered) {
		t.Errorf("Get(container) error = %v, want %v", err, ErrRuntimeNotRegistered)
	}
	if err.Error() != "runtime 'container' not registered" {
		t.Errorf("Get(container) error = %q", err.Error())
	}
}

func TestRegistry_ExecuteValidates(t *testing.T) {
	t.Parallel()

	registry := BuildRegistry(BuildRegistryOptions{})
	ctx, _ := newTestContext(t, &inkfile.Command{Name: "group"})

	result := registry.Execute(ctx)
	if !errors.Is(result.Error, ErrNoScript) {
		t.Errorf("Execute() error = %v, want %v", result.Error, ErrNoScript)
	}
	if result.ExitCode != 1 {
		t.Errorf("Execute() exit code = %d, want 1", result.ExitCode)
	}
	if ErrNoScript.Error() != "Command has no script." {
		t.Errorf("ErrNoScript = %q", ErrNoScript.Error())
	}
}

func TestRegistry_ExecuteUnregistered(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext(t, testCommand("a", "", "true"))
	ctx.SelectedRuntime = "container"

	if result := NewRegistry().Execute(ctx); !errors.Is(result.Error, ErrRuntimeNotRegistered) {
		t.Errorf("Execute() error = %v, want %v", result.Error, ErrRuntimeNotRegistered)
	}
}

func TestSelectRuntime(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if got := SelectRuntime(cfg); got != RuntimeTypeNative {
		t.Errorf("SelectRuntime(default) = %q, want %q", got, RuntimeTypeNative)
	}
	cfg.DefaultRuntime = config.RuntimeVirtual
	if got := SelectRuntime(cfg); got != RuntimeTypeVirtual {
		t.Errorf("SelectRuntime(virtual) = %q, want %q", got, RuntimeTypeVirtual)
	}
	if got := SelectRuntime(nil); got != RuntimeTypeNative {
		t.Errorf("SelectRuntime(nil) = %q, want %q", got, RuntimeTypeNative)
	}
}
