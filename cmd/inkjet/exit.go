// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	// exitUsage covers invalid command lines.
	exitUsage = 1
	// exitFailure means inkjet failed before or while starting the script.
	exitFailure = 10
	// exitCancelled follows the shell convention for SIGINT.
	exitCancelled = 130
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// ExitError is returned by command handlers to set the process status. A nil
// Err means the script already reported its own failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// warnf prints a "WARNING (inkjet):" line.
func warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warningStyle.Render("WARNING (inkjet):"), fmt.Sprintf(format, args...))
}
