// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/inkjet/inkjet/internal/logging"
	"github.com/inkjet/inkjet/pkg/inkfile"
)

// DefaultUse is the root command name when Options.Use is empty.
const DefaultUse = "inkjet"

// ErrNilRoot is returned when Build is called without a command tree.
var ErrNilRoot = errors.New("no command tree to bind")

type (
	// RunFunc receives the resolved invocation of a command that has a script.
	RunFunc func(ctx context.Context, inv *Invocation) error

	// Options configures Build.
	Options struct {
		// Use is the root command name shown in usage lines.
		Use string
		// Sort lists subcommands alphabetically in help output instead of in
		// source order.
		Sort bool
		// Relaxed disables required checks and defaults. Preview and
		// interactive runs use it so missing values can be shown or prompted for.
		Relaxed bool
		// Run is called when a command with a script is selected.
		Run RunFunc
		// Logger receives debug output; a discarding logger is used when nil.
		Logger *log.Logger
	}

	// Invocation is a parsed command line ready to be executed.
	Invocation struct {
		// Command is the selected inkfile command.
		Command *inkfile.Command
		// Path holds the command names from the first level down to Command.
		Path []string
		// Args maps positional argument names to their values.
		Args map[string]string
		// Flags maps flag names to their values. Switches are "true" when set,
		// counted switches hold the count.
		Flags map[string]string
	}

	builder struct {
		opts Options
	}
)

// Build translates the command tree rooted at root into cobra commands. The
// root itself becomes the returned cobra command; its children become
// subcommands.
func Build(root *inkfile.Command, opts Options) (*cobra.Command, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	rootCmd := &cobra.Command{
		Use:           cmp.Or(opts.Use, DefaultUse),
		Short:         firstLine(root.Description),
		Long:          root.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Inkfile commands may be called "help"; keep cobra's help subcommand out of the way.
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	b := &builder{opts: opts}
	for _, child := range b.children(root) {
		c, err := b.command(child, nil)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(c)
	}
	return rootCmd, nil
}

func (b *builder) command(node *inkfile.Command, parent []string) (*cobra.Command, error) {
	path := append(parent[:len(parent):len(parent)], node.Name)

	c := &cobra.Command{
		Use:     usage(node),
		Aliases: node.Aliases,
		Short:   firstLine(node.Description),
		Long:    node.Description,
		Hidden:  node.IsHidden(),
	}

	if err := b.addFlags(c, node); err != nil {
		return nil, err
	}

	if node.HasScript() {
		c.Args = func(c *cobra.Command, args []string) error {
			_, err := bindArgs(node, args, c.ArgsLenAtDash(), b.opts.Relaxed)
			return err
		}
		c.RunE = func(c *cobra.Command, args []string) error {
			inv, err := b.invocation(c, node, path, args)
			if err != nil {
				return err
			}
			b.opts.Logger.Debug("invoking command", "path", strings.Join(path, " "), "args", len(inv.Args), "flags", len(inv.Flags))
			if b.opts.Run == nil {
				return nil
			}
			return b.opts.Run(c.Context(), inv)
		}
	} else if len(node.Children) > 0 {
		c.Args = cobra.NoArgs
		c.RunE = func(c *cobra.Command, _ []string) error {
			return c.Help()
		}
	}

	for _, child := range b.children(node) {
		sub, err := b.command(child, path)
		if err != nil {
			return nil, err
		}
		c.AddCommand(sub)
	}
	return c, nil
}

// children returns node's children in the order they are added to cobra.
// cobra's own sorting is expected to be off (cobra.EnableCommandSorting) so
// this order is what help output shows.
func (b *builder) children(node *inkfile.Command) []*inkfile.Command {
	if !b.opts.Sort {
		return node.Children
	}
	sorted := slices.Clone(node.Children)
	slices.SortStableFunc(sorted, func(x, y *inkfile.Command) int {
		return strings.Compare(x.Name, y.Name)
	})
	return sorted
}

func (b *builder) addFlags(c *cobra.Command, node *inkfile.Command) error {
	longs := make(map[string]bool, len(node.Flags))
	shorts := make(map[string]bool, len(node.Flags))
	fs := c.Flags()

	for i := range node.Flags {
		f := &node.Flags[i]
		name := flagName(f)
		short := shorthand(f)
		if longs[name] || (short != "" && shorts[short]) {
			return &DuplicateFlagError{Command: node.Name, Flag: name}
		}
		longs[name] = true
		if short != "" {
			shorts[short] = true
		}

		usage := f.Description
		if len(f.Choices) > 0 {
			usage = strings.TrimSpace(usage + " [possible values: " + strings.Join(f.Choices, ", ") + "]")
		}

		switch {
		case !f.TakesValue && f.Multiple:
			fs.CountP(name, short, usage)
		case !f.TakesValue:
			fs.BoolP(name, short, false, usage)
		case f.Multiple:
			fs.StringArrayP(name, short, nil, usage)
		default:
			fs.StringP(name, short, "", usage)
		}

		if len(f.Choices) > 0 {
			if err := c.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(f.Choices, cobra.ShellCompDirectiveNoFileComp)); err != nil {
				return fmt.Errorf("register completions for --%s: %w", name, err)
			}
		}
		if f.Required && !b.opts.Relaxed {
			if err := c.MarkFlagRequired(name); err != nil {
				return fmt.Errorf("mark --%s required: %w", name, err)
			}
		}
	}
	return nil
}

func (b *builder) invocation(c *cobra.Command, node *inkfile.Command, path, args []string) (*Invocation, error) {
	argValues, err := bindArgs(node, args, c.ArgsLenAtDash(), b.opts.Relaxed)
	if err != nil {
		return nil, err
	}
	flagValues, err := readFlags(c, node)
	if err != nil {
		return nil, err
	}
	return &Invocation{
		Command: node,
		Path:    path,
		Args:    argValues,
		Flags:   flagValues,
	}, nil
}

// bindArgs assigns positional values to the command's declared arguments.
// dash is the index of the first value after a literal "--", or -1.
func bindArgs(node *inkfile.Command, args []string, dash int, relaxed bool) (map[string]string, error) {
	before, after := args, []string(nil)
	if dash >= 0 && dash <= len(args) && hasTrailing(node) {
		before, after = args[:dash], args[dash:]
	}

	values := make(map[string]string, len(node.Args))
	i := 0
	for _, a := range node.Args {
		switch {
		case a.Trailing:
			values[a.Name] = strings.Join(after, " ")
		case a.Multiple:
			if i < len(before) {
				values[a.Name] = strings.Join(before[i:], " ")
				i = len(before)
			}
		case i < len(before):
			values[a.Name] = before[i]
			i++
		}
	}
	if i < len(before) {
		return nil, &UnexpectedArgumentError{Command: node.Name, Value: before[i]}
	}
	if relaxed {
		return values, nil
	}

	for _, a := range node.Args {
		if values[a.Name] != "" {
			continue
		}
		if a.DefaultValue != "" {
			values[a.Name] = a.DefaultValue
			continue
		}
		if a.Required && !a.Trailing {
			return nil, &MissingArgumentError{Command: node.Name, Name: a.Name}
		}
	}
	return values, nil
}

func readFlags(c *cobra.Command, node *inkfile.Command) (map[string]string, error) {
	fs := c.Flags()
	values := make(map[string]string, len(node.Flags))

	for i := range node.Flags {
		f := &node.Flags[i]
		name := flagName(f)
		var val string
		switch {
		case !f.TakesValue && f.Multiple:
			n, err := fs.GetCount(name)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				val = strconv.Itoa(n)
			}
		case !f.TakesValue:
			on, err := fs.GetBool(name)
			if err != nil {
				return nil, err
			}
			if on {
				val = "true"
			}
		case f.Multiple:
			vals, err := fs.GetStringArray(name)
			if err != nil {
				return nil, err
			}
			for _, v := range vals {
				if err := CheckFlagValue(f, v); err != nil {
					return nil, err
				}
			}
			val = strings.Join(vals, " ")
		default:
			v, err := fs.GetString(name)
			if err != nil {
				return nil, err
			}
			if err := CheckFlagValue(f, v); err != nil {
				return nil, err
			}
			val = v
		}
		values[f.Name] = val
	}
	return values, nil
}

// usage renders the cobra Use line, e.g. "echo <name> [optional] -- [extras...]".
func usage(node *inkfile.Command) string {
	parts := []string{node.Name}
	for _, a := range node.Args {
		name := a.Name
		if a.Multiple || a.Trailing {
			name += "..."
		}
		if a.Trailing {
			parts = append(parts, "--")
		}
		if a.Required && !a.Trailing {
			parts = append(parts, "<"+name+">")
		} else {
			parts = append(parts, "["+name+"]")
		}
	}
	return strings.Join(parts, " ")
}

func hasTrailing(node *inkfile.Command) bool {
	for _, a := range node.Args {
		if a.Trailing {
			return true
		}
	}
	return false
}

// flagName is the long name the flag is registered under.
func flagName(f *inkfile.Flag) string {
	return cmp.Or(f.Long, f.Name)
}

// shorthand returns the single-byte short form pflag accepts, or "".
func shorthand(f *inkfile.Flag) string {
	if len(f.Short) != 1 {
		return ""
	}
	return f.Short
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
