// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
)

const (
	// Prefix is printed before every log line.
	Prefix = "inkjet"
	// DebugEnvVar enables debug logging when set to a true value.
	DebugEnvVar = "INKJET_DEBUG"
)

// New returns a logger writing to w. Only warnings and errors are shown
// unless debug is set.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: false,
	})
}

// Discard returns a logger that drops everything, for tests and library callers.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// DebugFromEnv reports whether INKJET_DEBUG requests debug logging.
func DebugFromEnv() bool {
	v, ok := os.LookupEnv(DebugEnvVar)
	if !ok {
		return false
	}
	enabled, err := strconv.ParseBool(v)
	return err == nil && enabled
}
