// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/inkjet/inkjet/pkg/inkfile"
)

var (
	// ErrInvalidChoice is returned when a flag value is not one of the declared choices.
	ErrInvalidChoice = errors.New("invalid flag choice")
	// ErrNotNumber is returned when a number flag receives a non-numeric value.
	ErrNotNumber = errors.New("flag value is not a number")
	// ErrMissingArgument is returned when a required positional argument is absent.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrUnexpectedArgument is returned when more positional values are given than declared.
	ErrUnexpectedArgument = errors.New("unexpected argument")
	// ErrDuplicateFlag is returned when a command declares the same flag name twice.
	ErrDuplicateFlag = errors.New("duplicate flag")
)

type (
	// InvalidChoiceError is returned when a flag value is not one of the declared choices.
	// It wraps ErrInvalidChoice for errors.Is() compatibility.
	InvalidChoiceError struct {
		Flag    string
		Value   string
		Choices []string
	}

	// NotNumberError is returned when a number flag receives a non-numeric value.
	// It wraps ErrNotNumber for errors.Is() compatibility.
	NotNumberError struct {
		Flag  string
		Value string
	}

	// MissingArgumentError is returned when a required positional argument is absent.
	MissingArgumentError struct {
		Command string
		Name    string
	}

	// UnexpectedArgumentError is returned when more positional values are given than declared.
	UnexpectedArgumentError struct {
		Command string
		Value   string
	}

	// DuplicateFlagError is returned when a command declares the same flag twice.
	DuplicateFlagError struct {
		Command string
		Flag    string
	}
)

// Error implements the error interface.
func (e *InvalidChoiceError) Error() string {
	quoted := make([]string, len(e.Choices))
	for i, c := range e.Choices {
		quoted[i] = strconv.Quote(c)
	}
	return fmt.Sprintf("%s flag expects one of [%s]", e.Flag, strings.Join(quoted, ", "))
}

// Unwrap returns ErrInvalidChoice for errors.Is() compatibility.
func (e *InvalidChoiceError) Unwrap() error { return ErrInvalidChoice }

// Error implements the error interface.
func (e *NotNumberError) Error() string {
	return fmt.Sprintf("flag '%s' expects a numerical value", e.Flag)
}

// Unwrap returns ErrNotNumber for errors.Is() compatibility.
func (e *NotNumberError) Unwrap() error { return ErrNotNumber }

// Error implements the error interface.
func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: missing required argument <%s>", e.Command, e.Name)
}

// Unwrap returns ErrMissingArgument for errors.Is() compatibility.
func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

// Error implements the error interface.
func (e *UnexpectedArgumentError) Error() string {
	return fmt.Sprintf("%s: unexpected argument %q", e.Command, e.Value)
}

// Unwrap returns ErrUnexpectedArgument for errors.Is() compatibility.
func (e *UnexpectedArgumentError) Unwrap() error { return ErrUnexpectedArgument }

// Error implements the error interface.
func (e *DuplicateFlagError) Error() string {
	return fmt.Sprintf("command %q declares flag %q more than once", e.Command, e.Flag)
}

// Unwrap returns ErrDuplicateFlag for errors.Is() compatibility.
func (e *DuplicateFlagError) Unwrap() error { return ErrDuplicateFlag }

// CheckFlagValue validates a single flag value against the flag's choices and
// number constraint. Empty values are always accepted; requiredness is checked
// separately.
func CheckFlagValue(f *inkfile.Flag, value string) error {
	if value == "" {
		return nil
	}
	if len(f.Choices) > 0 && !slices.Contains(f.Choices, value) {
		return &InvalidChoiceError{Flag: f.Name, Value: value, Choices: f.Choices}
	}
	if f.Number {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return &NotNumberError{Flag: f.Name, Value: value}
		}
	}
	return nil
}
