// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{"default hides debug", false, false},
		{"debug shows debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, tt.debug)
			logger.Debug("compiling", "file", "inkjet.md")
			logger.Warn("no inkjet.md found")

			out := buf.String()
			if got := strings.Contains(out, "compiling"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v; output:\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "no inkjet.md found") {
				t.Errorf("warning missing from output:\n%s", out)
			}
			if !strings.Contains(out, Prefix) {
				t.Errorf("output should carry the %q prefix:\n%s", Prefix, out)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	// must not panic
	Discard().Error("dropped")
}

func TestDebugFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"0", false},
		{"yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(DebugEnvVar, tt.value)
			if got := DebugFromEnv(); got != tt.want {
				t.Errorf("DebugFromEnv() with %q = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
