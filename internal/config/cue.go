// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// maxConfigFileSize bounds the config file read into memory.
const maxConfigFileSize = 1 << 20

//go:embed config_schema.cue
var configSchema string

// decodeCUEFile validates a config file against #Config and returns its
// values keyed the way viper expects.
func decodeCUEFile(path string) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("%s is %d bytes, the limit is %d", path, info.Size(), maxConfigFileSize)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cctx := cuecontext.New()
	schema := cctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal error: config schema: %w", err)
	}

	file := cctx.CompileBytes(src, cue.Filename(path))
	if err := file.Err(); err != nil {
		return nil, cueError(path, err)
	}
	merged := schema.Unify(file)
	if err := merged.Validate(cue.Concrete(false)); err != nil {
		return nil, cueError(path, err)
	}

	var values map[string]any
	if err := merged.Decode(&values); err != nil {
		return nil, cueError(path, err)
	}
	return values, nil
}

// cueError flattens a CUE error list into one "key.path: message" line per
// problem, prefixed by the file name.
func cueError(path string, err error) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", path, err)
	}

	var sb strings.Builder
	sb.WriteString(path)
	sb.WriteString(":")
	for _, e := range list {
		msg := e.Error()
		if key := strings.Join(cueerrors.Path(e), "."); key != "" && !strings.HasPrefix(msg, key) {
			msg = key + ": " + msg
		}
		if len(list) > 1 {
			sb.WriteString("\n  ")
		} else {
			sb.WriteString(" ")
		}
		sb.WriteString(msg)
	}
	return errors.New(sb.String())
}
