// SPDX-License-Identifier: MPL-2.0

// Package uroot runs u-root core utilities inside the virtual shell, so
// scripts that copy, list or archive files work without host coreutils.
package uroot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/u-root/u-root/pkg/core"
	"github.com/u-root/u-root/pkg/core/base64"
	"github.com/u-root/u-root/pkg/core/cat"
	"github.com/u-root/u-root/pkg/core/chmod"
	"github.com/u-root/u-root/pkg/core/cp"
	"github.com/u-root/u-root/pkg/core/find"
	"github.com/u-root/u-root/pkg/core/gzip"
	"github.com/u-root/u-root/pkg/core/ls"
	"github.com/u-root/u-root/pkg/core/mkdir"
	"github.com/u-root/u-root/pkg/core/mktemp"
	"github.com/u-root/u-root/pkg/core/mv"
	"github.com/u-root/u-root/pkg/core/rm"
	"github.com/u-root/u-root/pkg/core/shasum"
	"github.com/u-root/u-root/pkg/core/tar"
	"github.com/u-root/u-root/pkg/core/touch"
	"mvdan.cc/sh/v3/interp"
)

// ErrUnknownUtility is returned by Run for names that are not builtins.
var ErrUnknownUtility = errors.New("unknown utility")

type (
	// Env is the I/O and environment a utility runs with.
	Env struct {
		Stdin     io.Reader
		Stdout    io.Writer
		Stderr    io.Writer
		Dir       string
		LookupEnv func(string) (string, bool)
	}

	utility interface {
		core.Command
		RunContext(ctx context.Context, args ...string) error
	}

	builtin func(ctx context.Context, env Env, args []string) error
)

var builtins = map[string]builtin{
	"base64": wrap(base64.New, false),
	"cat":    wrap(cat.New, false),
	"chmod":  wrap(chmod.New, false),
	"cp":     wrap(cp.New, false),
	"find":   wrap(find.New, false),
	// gzip parses its own program name
	"gzip":   wrap(gzip.New, true),
	"ls":     wrap(ls.New, false),
	"mkdir":  wrap(mkdir.New, false),
	"mktemp": wrap(mktemp.New, false),
	"mv":     wrap(mv.New, false),
	"rm":     wrap(rm.New, false),
	"shasum": wrap(shasum.New, false),
	"tar":    wrap(tar.New, false),
	"touch":  wrap(touch.New, false),
}

func wrap[C utility](newCmd func() C, withProgram bool) builtin {
	return func(ctx context.Context, env Env, args []string) error {
		cmd := newCmd()
		cmd.SetIO(env.Stdin, env.Stdout, env.Stderr)
		cmd.SetWorkingDir(env.Dir)
		cmd.SetLookupEnv(env.LookupEnv)
		if !withProgram {
			args = args[1:]
		}
		return cmd.RunContext(ctx, args...)
	}
}

// Names returns the builtin utilities in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// Has reports whether name is a builtin.
func Has(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Run executes args[0] as a builtin. Failures are returned as
// "name: message" errors.
func Run(ctx context.Context, env Env, args []string) error {
	if len(args) == 0 {
		return ErrUnknownUtility
	}
	run, ok := builtins[args[0]]
	if !ok {
		return fmt.Errorf("%s: %w", args[0], ErrUnknownUtility)
	}
	if env.LookupEnv == nil {
		env.LookupEnv = func(string) (string, bool) { return "", false }
	}
	if err := run(ctx, env, args); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

// ExecHandler is mvdan/sh middleware that runs builtins in process and hands
// every other program to next. A failing builtin prints its error and exits 1.
func ExecHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 || !Has(args[0]) {
			return next(ctx, args)
		}

		hc := interp.HandlerCtx(ctx)
		env := Env{
			Stdin:  hc.Stdin,
			Stdout: hc.Stdout,
			Stderr: hc.Stderr,
			Dir:    hc.Dir,
			LookupEnv: func(name string) (string, bool) {
				v := hc.Env.Get(name)
				return v.String(), v.IsSet()
			},
		}
		if err := Run(ctx, env, args); err != nil {
			fmt.Fprintln(hc.Stderr, err)
			return interp.ExitStatus(1)
		}
		return nil
	}
}
