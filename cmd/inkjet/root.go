// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inkjet/inkjet/internal/binding"
	"github.com/inkjet/inkjet/internal/config"
	"github.com/inkjet/inkjet/internal/issue"
	"github.com/inkjet/inkjet/internal/loader"
	"github.com/inkjet/inkjet/internal/logging"
	"github.com/inkjet/inkjet/internal/runtime"
	"github.com/inkjet/inkjet/internal/tui"
	"github.com/inkjet/inkjet/pkg/inkfile"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// streams are the standard streams of one inkjet invocation.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

func init() {
	// keep the declaration order of the inkfile unless it asks for sorting
	cobra.EnableCommandSorting = false
}

// Execute runs inkjet with the process arguments and exits with its status.
// This is called by main.main().
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

// run executes one inkjet invocation and returns its exit status.
func run(ctx context.Context, args []string, s streams) int {
	opts, rest, err := parseGlobalOptions(args)
	if err != nil {
		printError(s.err, err, false)
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(s.out, "inkjet "+getVersionString())
		return 0
	}

	cfg, cfgErr := loadConfig(ctx, opts)
	debug := opts.debug || cfg.UI.Debug || logging.DebugFromEnv()
	logger := logging.New(s.err, debug)

	if opts.configShow {
		return showConfig(cfg, cfgErr, s, debug)
	}
	if cfgErr != nil {
		warnf(s.err, "%s", formatErrorForDisplay(cfgErr, debug))
	}

	ink, err := loader.Load(ctx, loader.LoadOptions{Source: opts.inkfile, Stdin: s.in, Logger: logger})
	if err != nil {
		if errors.Is(err, loader.ErrNotFound) && exitsEarly(rest) {
			warnf(s.err, "no inkjet.md found")
			return execute(ctx, newRootCommand(nil), rest, s, debug)
		}
		return fail(s.err, loadError(err, opts.inkfile), debug)
	}

	if opts.printAll {
		return printAll(ctx, cfg, ink, s, logger)
	}

	tree, err := inkfile.CompileWithOptions(ink.Content, inkfile.WithVerboseFlag())
	if err != nil {
		var dupErr *inkfile.DuplicateAliasError
		if errors.As(err, &dupErr) {
			logger.Debug(dupErr.Detail())
		}
		return fail(s.err, compileError(err, ink), debug)
	}

	app := newApp(cfg, opts, ink, logger, s)
	root, err := binding.Build(tree, binding.Options{
		Use:     binding.DefaultUse,
		Sort:    ink.Directives.Sort,
		Relaxed: opts.interactive || opts.preview,
		Run:     app.run,
		Logger:  logger,
	})
	if err != nil {
		return fail(s.err, compileError(err, ink), debug)
	}
	decorateRoot(root, ink)

	if opts.wantsDefault && tree.Find(defaultCommand) != nil {
		rest = append([]string{defaultCommand}, rest...)
	}
	logger.Debug("dispatching", "args", rest)

	return execute(ctx, root, rest, s, debug)
}

// execute runs root through fang and converts the outcome to an exit status.
func execute(ctx context.Context, root *cobra.Command, args []string, s streams, debug bool) int {
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler(debug)),
	)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitUsage
}

// errorHandler prints command errors. Scripts that merely exited non-zero
// have already reported their own failure.
func errorHandler(debug bool) fang.ErrorHandler {
	return func(w io.Writer, _ fang.Styles, err error) {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}
		printError(w, err, debug)
	}
}

// newRootCommand is the bare root used when no inkfile could be loaded.
func newRootCommand(ink *loader.Inkfile) *cobra.Command {
	root := &cobra.Command{
		Use:           binding.DefaultUse,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	decorateRoot(root, ink)
	return root
}

// decorateRoot adds the inkjet description and global options to the root
// generated from the inkfile.
func decorateRoot(root *cobra.Command, ink *loader.Inkfile) {
	about := titleStyle.Render("inkjet") + mutedStyle.Render(" - Make your markdown executable")
	if ink != nil {
		about += "\n\n" + mutedStyle.Render("Generated from "+ink.Path)
	}
	if long := strings.TrimSpace(root.Long); long != "" {
		about += "\n\n" + long
	}
	root.Long = about
	if root.Short == "" {
		root.Short = "Make your markdown executable"
	}

	fs := root.Flags()
	addGlobalFlag(fs, "inkfile", "c", func(name, short string) {
		fs.StringP(name, short, "", "path to the inkfile, or - to read it from stdin")
	})
	addGlobalFlag(fs, "interactive", "i", func(name, short string) {
		fs.BoolP(name, short, false, "show each step and prompt for missing values before running it")
	})
	addGlobalFlag(fs, "preview", "p", func(name, short string) {
		fs.BoolP(name, short, false, "print the script instead of running it")
	})
	addGlobalFlag(fs, "inkjet-print-all", "", func(name, _ string) {
		fs.Bool(name, false, "print the merged inkfile and exit")
	})
	addGlobalFlag(fs, "inkjet-config-show", "", func(name, _ string) {
		fs.Bool(name, false, "print the effective configuration and exit")
	})
	addGlobalFlag(fs, "inkjet-config", "", func(name, _ string) {
		fs.String(name, "", "config file (default is $XDG_CONFIG_HOME/inkjet/config.cue)")
	})
	addGlobalFlag(fs, "inkjet-watch", "", func(name, _ string) {
		fs.StringArray(name, nil, "re-run the command when files change; optionally limited to a glob")
		fs.Lookup(name).NoOptDefVal = "**"
	})
	addGlobalFlag(fs, "inkjet-debug", "", func(name, _ string) {
		fs.Bool(name, false, "enable debug logging")
	})
}

// addGlobalFlag registers a global option for help output unless the inkfile
// already declares a flag with that name. A taken shorthand is dropped.
func addGlobalFlag(fs *pflag.FlagSet, name, short string, define func(name, short string)) {
	if fs.Lookup(name) != nil {
		return
	}
	if short != "" && fs.ShorthandLookup(short) != nil {
		short = ""
	}
	define(name, short)
}

// loadConfig returns the effective configuration. On error the defaults are
// returned together with the error.
func loadConfig(ctx context.Context, opts globalOptions) (*config.Config, error) {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: opts.configFile})
	if err != nil {
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			err = issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.configFile).
				WithSuggestion("Run 'inkjet --inkjet-config-show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		return config.DefaultConfig(), err
	}
	return cfg, nil
}

func showConfig(cfg *config.Config, cfgErr error, s streams, debug bool) int {
	if cfgErr != nil {
		return fail(s.err, cfgErr, debug)
	}
	out, err := config.ToTOML(cfg)
	if err != nil {
		return fail(s.err, err, debug)
	}
	fmt.Fprint(s.out, out)
	return 0
}

// printAll writes the merged inkfile, through the pager when configured.
func printAll(ctx context.Context, cfg *config.Config, ink *loader.Inkfile, s streams, logger *log.Logger) int {
	if cfg.UI.Pager && tui.IsTerminal(s.out) {
		err := tui.Pager(ctx, tui.PagerOptions{
			Title:   ink.Path,
			Content: ink.Content,
			Config:  tui.Config{Output: s.out, Input: s.in},
		})
		if err == nil {
			return 0
		}
		logger.Debug("pager failed, printing instead", "error", err)
	}
	fmt.Fprint(s.out, ink.Content)
	return 0
}

func loadError(err error, source string) error {
	if errors.Is(err, loader.ErrNotFound) {
		return issue.NewErrorContext().
			WithOperation("find inkfile").
			WithSuggestion("Create an inkjet.md file or pass one with --inkfile").
			WithIssue(issue.InkfileNotFoundId).
			Wrap(err).
			BuildError()
	}
	var openErr *loader.OpenError
	if errors.As(err, &openErr) {
		return issue.NewErrorContext().
			WithOperation("read inkfile").
			WithResource(source).
			WithSuggestion("Check that the path exists and is readable").
			WithIssue(issue.InkfileReadFailedId).
			Wrap(openErr.Err).
			BuildError()
	}
	return err
}

func compileError(err error, ink *loader.Inkfile) error {
	ec := issue.NewErrorContext().
		WithOperation("compile inkfile").
		WithResource(ink.Path).
		WithIssue(issue.CompileErrorId)
	if errors.Is(err, inkfile.ErrDuplicateAliases) {
		ec = ec.WithSuggestion("Run with --inkjet-debug to see which commands share the alias").
			WithIssue(issue.DuplicateAliasId)
	}
	return ec.Wrap(err).BuildError()
}

// fail prints err and returns the inkjet failure status.
func fail(w io.Writer, err error, debug bool) int {
	printError(w, err, debug)
	return exitFailure
}

// printError writes err with the inkjet prefix. In debug mode the matching
// troubleshooting page is rendered below it.
func printError(w io.Writer, err error, debug bool) {
	fmt.Fprintln(w, errorStyle.Render("ERROR (inkjet):"), formatErrorForDisplay(err, debug))
	if !debug {
		return
	}
	if entry := issue.Get(issueFor(err)); entry != nil {
		if rendered, renderErr := entry.Render("notty"); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// issueFor picks the troubleshooting page for err, or 0 when none applies.
// Pages attached where the error was built win over the fallbacks.
func issueFor(err error) issue.Id {
	if id := issue.IssueOf(err); id != 0 {
		return id
	}
	switch {
	case errors.Is(err, loader.ErrNotFound):
		return issue.InkfileNotFoundId
	case errors.Is(err, inkfile.ErrDuplicateAliases):
		return issue.DuplicateAliasId
	case errors.Is(err, config.ErrInvalidConfigRuntimeMode):
		return issue.InvalidRuntimeModeId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, runtime.ErrNoScript):
		return issue.UnsupportedLanguageId
	case strings.HasPrefix(err.Error(), "unknown command"):
		return issue.CommandNotFoundId
	}
	return 0
}
