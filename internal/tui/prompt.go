// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/inkjet/inkjet/internal/binding"
	"github.com/inkjet/inkjet/pkg/inkfile"
)

// Decision is the answer to the "Execute step NAME?" prompt.
type Decision int

const (
	// DecisionExecute runs the command.
	DecisionExecute Decision = iota
	// DecisionSkip skips the command.
	DecisionSkip
	// DecisionPreview shows the script and asks again.
	DecisionPreview
)

// errValueRequired is shown when a required prompt is left empty.
var errValueRequired = errors.New("a value is required")

// Prompter asks for confirmation and missing values in interactive mode.
type Prompter struct {
	cfg Config
}

// NewPrompter returns a prompter using cfg.
func NewPrompter(cfg Config) *Prompter {
	return &Prompter{cfg: cfg}
}

// ConfirmStep asks whether the named command should be executed.
func (p *Prompter) ConfirmStep(ctx context.Context, name string) (Decision, error) {
	decision := DecisionExecute
	field := huh.NewSelect[Decision]().
		Title(fmt.Sprintf("Execute step %s?", name)).
		Options(
			huh.NewOption("Yes", DecisionExecute),
			huh.NewOption("No", DecisionSkip),
			huh.NewOption("Preview", DecisionPreview),
		).
		Value(&decision)

	if err := p.run(ctx, field); err != nil {
		return DecisionSkip, err
	}
	return decision, nil
}

// Fill prompts for every switch that is not set, every value flag that is
// empty and every positional argument that is empty, in declaration order.
// Answers are written back into flags and args. The verbose switch is never
// asked for.
func (p *Prompter) Fill(ctx context.Context, cmd *inkfile.Command, args, flags map[string]string) error {
	var (
		fields []huh.Field
		apply  []func()
	)

	for i := range cmd.Flags {
		f := &cmd.Flags[i]
		if flags[f.Name] != "" {
			continue
		}

		if !f.TakesValue {
			if f.Name == inkfile.VerboseFlagName {
				continue
			}
			on := false
			fields = append(fields, huh.NewConfirm().
				Title(fmt.Sprintf("%s: Set %s option?", cmd.Name, f.Name)).
				Value(&on))
			apply = append(apply, func() {
				if on {
					flags[f.Name] = "true"
				}
			})
			continue
		}

		var value string
		title := fmt.Sprintf("%s: Enter option for %s%s", cmd.Name, f.Name, requiredMark(f.Required))
		if len(f.Choices) > 0 {
			value = f.Choices[0]
			fields = append(fields, huh.NewSelect[string]().
				Title(title).
				Options(huh.NewOptions(f.Choices...)...).
				Value(&value))
		} else {
			fields = append(fields, huh.NewInput().
				Title(title).
				Value(&value).
				Validate(flagValidator(f)))
		}
		apply = append(apply, func() { flags[f.Name] = strings.TrimSpace(value) })
	}

	for i := range cmd.Args {
		a := &cmd.Args[i]
		if args[a.Name] != "" {
			continue
		}

		value := a.DefaultValue
		title := fmt.Sprintf("%s: Enter value for %s%s", cmd.Name, a.Name, requiredMark(a.Required))
		if a.DefaultValue != "" {
			title += " (" + a.DefaultValue + ")"
		}
		fields = append(fields, huh.NewInput().
			Title(title).
			Value(&value).
			Validate(requiredValidator(a.Required && a.DefaultValue == "")))
		apply = append(apply, func() { args[a.Name] = strings.TrimSpace(value) })
	}

	if err := p.run(ctx, fields...); err != nil {
		return err
	}
	for _, fn := range apply {
		fn()
	}
	return nil
}

func (p *Prompter) run(ctx context.Context, fields ...huh.Field) error {
	if len(fields) == 0 {
		return nil
	}

	accessible := p.cfg.accessible()
	input := p.cfg.input()
	if accessible {
		input = byteReader{input}
	}
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(p.cfg.huhTheme()).
		WithAccessible(accessible).
		WithOutput(p.cfg.output()).
		WithInput(input)
	if p.cfg.Width > 0 {
		form = form.WithWidth(p.cfg.Width)
	}

	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

// byteReader returns at most one byte per Read. Accessible fields wrap the
// input in their own scanner, so a piped answer file must not be read ahead.
type byteReader struct{ r io.Reader }

func (b byteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return b.r.Read(p)
}

func requiredMark(required bool) string {
	if required {
		return " *"
	}
	return ""
}

func requiredValidator(required bool) func(string) error {
	return func(s string) error {
		if required && strings.TrimSpace(s) == "" {
			return errValueRequired
		}
		return nil
	}
}

func flagValidator(f *inkfile.Flag) func(string) error {
	required := requiredValidator(f.Required)
	return func(s string) error {
		if err := required(s); err != nil {
			return err
		}
		return binding.CheckFlagValue(f, strings.TrimSpace(s))
	}
}
