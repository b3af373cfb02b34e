// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/inkjet/inkjet/internal/binding"
	"github.com/inkjet/inkjet/internal/config"
	"github.com/inkjet/inkjet/internal/loader"
	"github.com/inkjet/inkjet/internal/runtime"
	"github.com/inkjet/inkjet/internal/tui"
	"github.com/inkjet/inkjet/internal/watch"
)

// app runs the commands selected on the command line.
type app struct {
	cfg      *config.Config
	opts     globalOptions
	ink      *loader.Inkfile
	logger   *log.Logger
	streams  streams
	registry *runtime.Registry
	prompter *tui.Prompter
}

func newApp(cfg *config.Config, opts globalOptions, ink *loader.Inkfile, logger *log.Logger, s streams) *app {
	promptCfg := tui.DefaultConfig()
	promptCfg.Output = s.err
	promptCfg.Input = s.in

	return &app{
		cfg:      cfg,
		opts:     opts,
		ink:      ink,
		logger:   logger,
		streams:  s,
		registry: runtime.BuildRegistry(runtime.BuildRegistryOptions{Config: cfg, Logger: logger}),
		prompter: tui.NewPrompter(promptCfg),
	}
}

// run is the binding callback for every command with a script.
func (a *app) run(ctx context.Context, inv *binding.Invocation) error {
	if a.opts.interactive {
		proceed, err := a.interact(ctx, inv)
		if errors.Is(err, tui.ErrCancelled) {
			return &ExitError{Code: exitCancelled, Err: err}
		}
		if err != nil {
			return &ExitError{Code: exitFailure, Err: err}
		}
		if !proceed {
			fmt.Fprintf(a.streams.err, "Skipping command %s\n", inv.Command.Name)
			return nil
		}
	}

	if a.opts.preview {
		if err := runtime.Preview(a.streams.out, inv.Command, a.previewRenderer()); err != nil {
			return &ExitError{Code: exitFailure, Err: err}
		}
		return nil
	}

	if a.opts.watch {
		return a.watchAndRun(ctx, inv)
	}
	return a.execute(ctx, inv)
}

// interact shows the command section and asks whether to run it, then
// prompts for every value not given on the command line.
func (a *app) interact(ctx context.Context, inv *binding.Invocation) (bool, error) {
	view := tui.NewView(a.streams.err, a.sectionRenderer())
	if err := view.Render(inv.Command.Section(a.ink.Content)); err != nil {
		return false, err
	}
	fmt.Fprintln(a.streams.err)

	for {
		decision, err := a.prompter.ConfirmStep(ctx, inv.Command.Name)
		if err != nil {
			return false, err
		}
		switch decision {
		case tui.DecisionExecute:
			return true, a.prompter.Fill(ctx, inv.Command, inv.Args, inv.Flags)
		case tui.DecisionPreview:
			if err := runtime.Preview(a.streams.out, inv.Command, a.previewRenderer()); err != nil {
				return false, err
			}
		default:
			return false, nil
		}
	}
}

func (a *app) execute(ctx context.Context, inv *binding.Invocation) error {
	ec := runtime.NewExecutionContext(ctx, inv.Command, a.ink.Path)
	ec.Args = inv.Args
	ec.Flags = inv.Flags
	ec.Stdin = a.streams.in
	ec.Stdout = a.streams.out
	ec.Stderr = a.streams.err
	ec.FixedDir = a.ink.Directives.FixedDir
	ec.SelectedRuntime = runtime.SelectRuntime(a.cfg)
	if a.opts.interactive {
		ec.ExtraEnv[tui.InteractiveEnvVar] = "1"
	}

	a.logger.Debug("executing", "command", inv.Command.Name, "runtime", ec.SelectedRuntime, "id", ec.ExecutionID)
	result := a.registry.Execute(ec)
	if result.Error != nil {
		return &ExitError{Code: exitFailure, Err: result.Error}
	}
	if !result.ExitCode.IsSuccess() {
		a.logger.Debug("script failed", "command", inv.Command.Name, "exit", result.ExitCode)
		return &ExitError{Code: int(result.ExitCode)}
	}
	return nil
}

// watchAndRun runs the command, then runs it again whenever files next to
// the inkfile change, until the context is cancelled.
func (a *app) watchAndRun(ctx context.Context, inv *binding.Invocation) error {
	w, err := watch.New(watch.Config{
		BaseDir:  filepath.Dir(a.ink.Path),
		Patterns: a.opts.watchPatterns,
		Logger:   a.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(a.streams.err, "%s %s\n", warningStyle.Render("inkjet: re-running "+inv.Command.Name), mutedStyle.Render(strings.Join(changed, ", ")))
			return a.execute(ctx, inv)
		},
	})
	if err != nil {
		return &ExitError{Code: exitFailure, Err: err}
	}

	if err := a.execute(ctx, inv); err != nil {
		a.logger.Warn("command failed", "command", inv.Command.Name, "error", err)
	}
	if err := w.Run(ctx); err != nil {
		return &ExitError{Code: exitFailure, Err: err}
	}
	return nil
}

// previewRenderer highlights previews only when stdout takes colors.
func (a *app) previewRenderer() runtime.MarkdownRenderer {
	if !tui.ColorEnabled(a.cfg.UI.ColorScheme, a.streams.out) {
		return nil
	}
	if r := a.renderer(a.cfg.UI.ColorScheme); r != nil {
		return r
	}
	return nil
}

// sectionRenderer always renders markdown, without styling when stderr
// takes no colors.
func (a *app) sectionRenderer() tui.MarkdownRenderer {
	scheme := a.cfg.UI.ColorScheme
	if !tui.ColorEnabled(scheme, a.streams.err) {
		scheme = config.ColorSchemeNever
	}
	if r := a.renderer(scheme); r != nil {
		return r
	}
	return nil
}

// renderer returns a glamour renderer, or nil when one cannot be built and
// the raw markdown has to do.
func (a *app) renderer(scheme config.ColorScheme) *tui.Renderer {
	r, err := tui.NewRenderer(scheme, 0)
	if err != nil {
		a.logger.Debug("markdown renderer unavailable", "error", err)
		return nil
	}
	return r
}
