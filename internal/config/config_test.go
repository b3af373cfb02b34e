// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"

	"github.com/inkjet/inkjet/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.DefaultRuntime != RuntimeNative {
		t.Errorf("DefaultRuntime = %q, want %q", cfg.DefaultRuntime, RuntimeNative)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want %q", cfg.UI.ColorScheme, ColorSchemeAuto)
	}
	if cfg.UI.Debug || cfg.UI.Pager {
		t.Error("expected debug and pager to be disabled by default")
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig().IsValid() = false, errs = %v", errs)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.DefaultRuntime != RuntimeNative {
		t.Errorf("DefaultRuntime = %q, want %q", cfg.DefaultRuntime, RuntimeNative)
	}
}

func TestLoad_CUEFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
default_runtime: "virtual"
shell: "bash"
interpreters: {
	py: "python3"
}
ui: {
	color_scheme: "never"
	pager: true
}
`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.DefaultRuntime != RuntimeVirtual {
		t.Errorf("DefaultRuntime = %q, want %q", cfg.DefaultRuntime, RuntimeVirtual)
	}
	if cfg.Shell != "bash" {
		t.Errorf("Shell = %q, want %q", cfg.Shell, "bash")
	}
	if got, ok := cfg.Interpreter("py"); !ok || got != "python3" {
		t.Errorf("Interpreter(py) = (%q, %v), want (%q, true)", got, ok, "python3")
	}
	if cfg.UI.ColorScheme != ColorSchemeNever || !cfg.UI.Pager {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.UI.Debug {
		t.Error("UI.Debug should keep its default")
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `ui: debug: true`)

	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if resolved != path || !cfg.UI.Debug {
		t.Errorf("loadWithOptions() = (%+v, %q)", cfg.UI, resolved)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue"),
	})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("loadWithOptions() error = %v, want ActionableError", err)
	}
	if ae.Operation != "load configuration" || !ae.HasSuggestions() {
		t.Errorf("ActionableError = %+v", ae)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad runtime", `default_runtime: "container"`, "default_runtime"},
		{"bad color scheme", `ui: color_scheme: "neon"`, "color_scheme"},
		{"unknown field", `container_engine: "docker"`, "container_engine"},
		{"empty interpreter", `interpreters: py: ""`, "interpreters"},
		{"syntax", `ui: {`, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("loadWithOptions() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("INKJET_DEFAULT_RUNTIME", "virtual")
	t.Setenv("INKJET_UI_DEBUG", "true")

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.DefaultRuntime != RuntimeVirtual {
		t.Errorf("DefaultRuntime = %q, want %q", cfg.DefaultRuntime, RuntimeVirtual)
	}
	if !cfg.UI.Debug {
		t.Error("UI.Debug = false, want true from INKJET_UI_DEBUG")
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("INKJET_UI_COLOR_SCHEME", "rainbow")

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidColorScheme) {
		t.Errorf("loadWithOptions() error = %v, want %v", err, ErrInvalidColorScheme)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := loadWithOptions(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("loadWithOptions() error = %v, want %v", err, context.Canceled)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DefaultRuntime = RuntimeVirtual
	cfg.Interpreters = map[string]string{"rb": "ruby", "py": "python3"}
	cfg.UI.Pager = true

	content := GenerateCUE(cfg)
	if strings.Index(content, `"py"`) > strings.Index(content, `"rb"`) {
		t.Error("interpreters should be sorted")
	}

	dir := t.TempDir()
	writeConfig(t, dir, content)
	got, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loading generated config: %v", err)
	}
	if got.DefaultRuntime != RuntimeVirtual || !got.UI.Pager || got.Interpreters["rb"] != "ruby" {
		t.Errorf("generated config loaded as %+v", got)
	}
}

func TestToTOML(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Interpreters = map[string]string{"py": "python3"}

	out, err := ToTOML(cfg)
	if err != nil {
		t.Fatalf("ToTOML() error = %v", err)
	}
	for _, want := range []string{"default_runtime = 'native'", "[ui]", "color_scheme = 'auto'", "py = 'python3'"} {
		if !strings.Contains(out, want) {
			t.Errorf("ToTOML() missing %q in:\n%s", want, out)
		}
	}
}

func TestConfigDir(t *testing.T) {
	if goruntime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if want := filepath.Join(dir, AppName); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}
