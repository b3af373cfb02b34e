// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidFlagType is returned when an OPTIONS entry declares an unknown type.
	ErrInvalidFlagType = errors.New("invalid flag type")
	// ErrEmptyHeadingName is returned when a heading yields no command name.
	ErrEmptyHeadingName = errors.New("unexpected empty heading name")
	// ErrHeadingSpaces is returned when a command name contains whitespace.
	ErrHeadingSpaces = errors.New("command name contains spaces")
	// ErrDuplicateAliases is returned when an alias is declared more than once in the tree.
	ErrDuplicateAliases = errors.New("Please update inkjet files to remove duplicate aliases") //nolint:staticcheck // user-facing message
	// ErrNoHeadings is returned when the document declares no commands at all.
	ErrNoHeadings = errors.New("no headings found in inkfile")
)

type (
	// InvalidFlagTypeError is returned when a flag type is not string, number or bool.
	// It wraps ErrInvalidFlagType for errors.Is() compatibility.
	InvalidFlagTypeError struct {
		Value string
	}

	// HeadingSpacesError names the heading fragment that contains whitespace.
	// It wraps ErrHeadingSpaces for errors.Is() compatibility.
	HeadingSpacesError struct {
		Fragment string
	}

	// DuplicateAliasError reports the first alias found twice in the command tree.
	// Its message is fixed; Alias and Commands carry the details for diagnostics.
	DuplicateAliasError struct {
		Alias string
		// Commands holds the paths of the two commands declaring Alias.
		Commands [2]string
	}
)

// Error implements the error interface for InvalidFlagTypeError.
func (e *InvalidFlagTypeError) Error() string {
	return fmt.Sprintf("Invalid flag type '%s' Expected string | number | bool.", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidFlagTypeError) Unwrap() error {
	return ErrInvalidFlagType
}

// Error implements the error interface for HeadingSpacesError.
func (e *HeadingSpacesError) Error() string {
	return fmt.Sprintf("Command names cannot contain spaces. Found '%s'. Did you forget to wrap args in ()?", e.Fragment)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *HeadingSpacesError) Unwrap() error {
	return ErrHeadingSpaces
}

// Error implements the error interface for DuplicateAliasError.
func (e *DuplicateAliasError) Error() string {
	return ErrDuplicateAliases.Error()
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *DuplicateAliasError) Unwrap() error {
	return ErrDuplicateAliases
}

// Detail describes which commands share the alias.
func (e *DuplicateAliasError) Detail() string {
	return fmt.Sprintf("alias %q is declared by both %q and %q", e.Alias,
		strings.TrimSpace(e.Commands[0]), strings.TrimSpace(e.Commands[1]))
}
