// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/inkjet/inkjet/internal/issue"
)

const (
	// AppName names the per-user configuration directory.
	AppName = "inkjet"
	// ConfigFileName is the config file name without its extension.
	ConfigFileName = "config"
	// ConfigFileExt is the only supported config format.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. INKJET_DEFAULT_RUNTIME.
	EnvPrefix = "INKJET"
)

// ConfigDir returns the per-user inkjet directory: $XDG_CONFIG_HOME/inkjet
// on Linux, ~/Library/Application Support/inkjet on macOS and
// %AppData%\inkjet on Windows.
//
//nolint:revive // config.Dir reads as a directory of configs
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// newViper returns a viper instance seeded with the defaults and bound to
// the INKJET_ environment.
func newViper() *viper.Viper {
	d := DefaultConfig()
	v := viper.New()
	for key, val := range map[string]any{
		"default_runtime": d.DefaultRuntime,
		"shell":           d.Shell,
		"interpreters":    d.Interpreters,
		"ui.color_scheme": d.UI.ColorScheme,
		"ui.debug":        d.UI.Debug,
		"ui.pager":        d.UI.Pager,
	} {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadWithOptions loads the configuration and reports the file it came from
// (empty when only defaults and environment overrides apply).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	path, err := resolveConfigFile(opts)
	if err != nil {
		return nil, "", err
	}

	v := newViper()
	if path != "" {
		values, err := decodeCUEFile(path)
		if err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Compare the file with the keys listed by 'inkjet --inkjet-config-show'").
				WithSuggestion("Strings must be quoted in CUE, e.g. default_runtime: \"virtual\"").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, "", fmt.Errorf("merge %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("decode configuration: %w", err)
	}
	// INKJET_* values never went through the CUE schema
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check INKJET_* environment variables for typos").
			Wrap(errs[0]).
			BuildError()
	}
	return &cfg, path, nil
}

// resolveConfigFile returns the explicit file, which must exist, or the
// config.cue of the config directory when present.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if isRegularFile(opts.ConfigFilePath) {
			return opts.ConfigFilePath, nil
		}
		return "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Pass an existing file to --inkjet-config").
			WithSuggestion("Omit --inkjet-config to use " + filepath.Join("<user config dir>", AppName, ConfigFileName+"."+ConfigFileExt)).
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fs.ErrNotExist).
			BuildError()
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	if path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt); isRegularFile(path) {
		return path, nil
	}
	return "", nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Is(err, fs.ErrPermission)
	}
	return info.Mode().IsRegular()
}

// GenerateCUE renders cfg in the config.cue format.
func GenerateCUE(cfg *Config) string {
	lines := []string{
		"// inkjet configuration, see 'inkjet --inkjet-config-show'",
		"",
		fmt.Sprintf("default_runtime: %q", cfg.DefaultRuntime),
	}
	if cfg.Shell != "" {
		lines = append(lines, fmt.Sprintf("shell: %q", cfg.Shell))
	}
	if len(cfg.Interpreters) > 0 {
		lines = append(lines, "", "interpreters: {")
		for _, lang := range slices.Sorted(maps.Keys(cfg.Interpreters)) {
			lines = append(lines, fmt.Sprintf("\t%q: %q", lang, cfg.Interpreters[lang]))
		}
		lines = append(lines, "}")
	}
	lines = append(lines,
		"",
		"ui: {",
		fmt.Sprintf("\tcolor_scheme: %q", cfg.UI.ColorScheme),
		fmt.Sprintf("\tdebug: %t", cfg.UI.Debug),
		fmt.Sprintf("\tpager: %t", cfg.UI.Pager),
		"}",
	)
	return strings.Join(lines, "\n") + "\n"
}
