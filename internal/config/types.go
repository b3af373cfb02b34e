// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// RuntimeNative runs scripts with the host interpreters.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs shell scripts in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	ColorSchemeAuto  ColorScheme = "auto"
	ColorSchemeDark  ColorScheme = "dark"
	ColorSchemeLight ColorScheme = "light"
	// ColorSchemeNever disables styling entirely.
	ColorSchemeNever ColorScheme = "never"
)

var (
	// ErrInvalidConfigRuntimeMode marks an unknown default_runtime.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme marks an unknown ui.color_scheme.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidInterpreter marks a language mapped to an empty command.
	ErrInvalidInterpreter = errors.New("invalid interpreter override")
	// ErrInvalidConfig is wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	runtimeModes = []RuntimeMode{RuntimeNative, RuntimeVirtual}
	colorSchemes = []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight, ColorSchemeNever}
)

type (
	// RuntimeMode selects how sh-family scripts are executed.
	RuntimeMode string

	// ColorScheme selects terminal styling.
	ColorScheme string

	// InvalidValueError reports one rejected configuration key. It unwraps
	// to the sentinel of that key (ErrInvalidConfigRuntimeMode and so on).
	InvalidValueError struct {
		Key     string
		Value   string
		Allowed []string
		kind    error
	}

	// InvalidConfigError aggregates the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the inkjet configuration.
	Config struct {
		DefaultRuntime RuntimeMode `json:"default_runtime" mapstructure:"default_runtime" toml:"default_runtime"`
		// Shell replaces sh for scripts without a language tag.
		Shell string `json:"shell,omitempty" mapstructure:"shell" toml:"shell,omitempty"`
		// Interpreters maps a language tag to the command that runs it, e.g. {py: "python3"}.
		Interpreters map[string]string `json:"interpreters,omitempty" mapstructure:"interpreters" toml:"interpreters,omitempty"`
		UI           UIConfig          `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		Debug       bool        `json:"debug" mapstructure:"debug" toml:"debug"`
		// Pager pages --inkjet-print-all output on a terminal.
		Pager bool `json:"pager" mapstructure:"pager" toml:"pager"`
	}
)

func (e *InvalidValueError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s: %q is not allowed", e.Key, e.Value)
	}
	return fmt.Sprintf("%s: %q is not one of %s", e.Key, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *InvalidValueError) Unwrap() error { return e.kind }

func (m RuntimeMode) String() string { return string(m) }

// IsValid reports whether m is native or virtual.
func (m RuntimeMode) IsValid() (bool, []error) {
	return checkEnum("default_runtime", m, runtimeModes, ErrInvalidConfigRuntimeMode)
}

func (cs ColorScheme) String() string { return string(cs) }

// IsValid reports whether cs is auto, dark, light or never.
func (cs ColorScheme) IsValid() (bool, []error) {
	return checkEnum("ui.color_scheme", cs, colorSchemes, ErrInvalidColorScheme)
}

func checkEnum[T ~string](key string, v T, allowed []T, kind error) (bool, []error) {
	if slices.Contains(allowed, v) {
		return true, nil
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return false, []error{&InvalidValueError{Key: key, Value: string(v), Allowed: names, kind: kind}}
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid checks every field. Interpreter errors follow the enum errors in
// language order.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if ok, e := c.DefaultRuntime.IsValid(); !ok {
		errs = append(errs, e...)
	}
	if ok, e := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, e...)
	}
	langs := make([]string, 0, len(c.Interpreters))
	for lang := range c.Interpreters {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	for _, lang := range langs {
		if strings.TrimSpace(c.Interpreters[lang]) == "" {
			errs = append(errs, &InvalidValueError{Key: "interpreters." + lang, Value: c.Interpreters[lang], kind: ErrInvalidInterpreter})
		}
	}
	if len(errs) == 0 {
		return true, nil
	}
	return false, []error{&InvalidConfigError{FieldErrors: errs}}
}

// Interpreter returns the non-empty override for a language tag.
func (c *Config) Interpreter(lang string) (string, bool) {
	cmd := c.Interpreters[strings.ToLower(lang)]
	return cmd, strings.TrimSpace(cmd) != ""
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		DefaultRuntime: RuntimeNative,
		Interpreters:   map[string]string{},
		UI:             UIConfig{ColorScheme: ColorSchemeAuto},
	}
}
