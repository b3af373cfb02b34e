// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inkjet/inkjet/internal/loader"
)

// defaultCommand runs when no subcommand is named.
const defaultCommand = "default"

var errMissingValue = errors.New("missing value")

type (
	// globalOptions are the inkjet options that precede the command path.
	// They are removed from the argument list before cobra sees it.
	globalOptions struct {
		inkfile     string
		configFile  string
		interactive bool
		preview     bool
		printAll    bool
		configShow  bool
		debug       bool
		version     bool
		// watch re-runs the command when files matching watchPatterns change.
		watch         bool
		watchPatterns []string
		// wantsDefault is set when no subcommand was named, so the default
		// command (if the inkfile has one) receives the remaining arguments.
		wantsDefault bool
	}

	// MissingValueError is returned when an option that takes a value ends the argument list.
	MissingValueError struct {
		Option string
	}
)

// Error implements the error interface.
func (e *MissingValueError) Error() string {
	return fmt.Sprintf("option '%s' requires a value", e.Option)
}

// Unwrap returns errMissingValue for errors.Is compatibility.
func (e *MissingValueError) Unwrap() error { return errMissingValue }

// parseGlobalOptions consumes the inkjet options at the front of args and
// returns the arguments left for the command tree.
//
// Scanning stops at the first subcommand name or help flag. Any other flag
// stops the scan too: it belongs to the default command.
func parseGlobalOptions(args []string) (globalOptions, []string, error) {
	var opts globalOptions

	if len(args) > 0 && isInkfileArg(args[0]) {
		opts.inkfile = args[0]
		args = args[1:]
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-i" || arg == "--interactive":
			opts.interactive = true
		case arg == "-p" || arg == "--preview":
			opts.preview = true
		case arg == "--inkjet-print-all":
			opts.printAll = true
		case arg == "--inkjet-config-show":
			opts.configShow = true
		case arg == "--inkjet-debug":
			opts.debug = true
		case arg == "--inkjet-watch":
			opts.watch = true
		case strings.HasPrefix(arg, "--inkjet-watch="):
			opts.watch = true
			opts.watchPatterns = append(opts.watchPatterns, strings.TrimPrefix(arg, "--inkjet-watch="))
		case arg == "-V" || arg == "--version":
			opts.version = true
		case arg == "-c" || arg == "--inkfile":
			if i+1 >= len(args) {
				return opts, nil, &MissingValueError{Option: arg}
			}
			i++
			opts.inkfile = args[i]
		case strings.HasPrefix(arg, "--inkfile="):
			opts.inkfile = strings.TrimPrefix(arg, "--inkfile=")
		case strings.HasPrefix(arg, "-c="):
			opts.inkfile = strings.TrimPrefix(arg, "-c=")
		case arg == "--inkjet-config":
			if i+1 >= len(args) {
				return opts, nil, &MissingValueError{Option: arg}
			}
			i++
			opts.configFile = args[i]
		case strings.HasPrefix(arg, "--inkjet-config="):
			opts.configFile = strings.TrimPrefix(arg, "--inkjet-config=")
		case arg == loader.StdinSource && opts.inkfile == "":
			opts.inkfile = arg
		case arg == "-h" || arg == "--help":
			return opts, args[i:], nil
		case strings.HasPrefix(arg, "-"):
			opts.wantsDefault = true
			return opts, args[i:], nil
		default:
			return opts, args[i:], nil
		}
	}

	opts.wantsDefault = true
	return opts, nil, nil
}

// isInkfileArg reports whether a leading argument names the inkfile itself:
// "-" for stdin or a path ending in ".md".
func isInkfileArg(arg string) bool {
	return arg == loader.StdinSource || (strings.HasSuffix(arg, ".md") && !strings.HasPrefix(arg, "-"))
}

// exitsEarly reports whether args only ask for help, which needs no inkfile.
func exitsEarly(args []string) bool {
	return len(args) == 0 || args[0] == "-h" || args[0] == "--help"
}
