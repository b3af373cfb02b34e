// SPDX-License-Identifier: MPL-2.0

// Package config handles inkjet configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/inkjet/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/inkjet/config.cue on macOS, %APPDATA%\inkjet\config.cue
// on Windows) and validated against the embedded config_schema.cue. Every key can be
// overridden from the environment with the INKJET_ prefix (INKJET_UI_COLOR_SCHEME=never).
package config
