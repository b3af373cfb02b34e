// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Utility variables exported to every script.
const (
	// EnvInkjet runs the root inkfile: "$INKJET build" works from any directory.
	EnvInkjet = "INKJET"
	// EnvInk runs the inkfile that declared the command.
	EnvInk = "INK"
	// EnvInkjetDir is the directory of the root inkfile.
	EnvInkjetDir = "INKJET_DIR"
	// EnvInkDir is the directory of the inkfile that declared the command.
	EnvInkDir = "INK_DIR"
	// EnvImported is "true" when the command came from an imported inkfile.
	EnvImported = "INKJET_IMPORTED"
	// EnvExecutionID identifies a single execution.
	EnvExecutionID = "INKJET_EXECUTION_ID"

	binaryName = "inkjet"
)

// buildRuntimeEnv builds the environment for the command with this precedence:
// 1. Host environment (per-execution inkjet variables removed)
// 2. Utility variables: INKJET, INK, INKJET_DIR, INK_DIR, INKJET_IMPORTED, INKJET_EXECUTION_ID
// 3. Arguments, defaults applied, always set
// 4. Flags that have a value
// 5. ExtraEnv
func buildRuntimeEnv(ctx *ExecutionContext) map[string]string {
	env := make(map[string]string)
	for _, kv := range FilterInkjetEnvVars(os.Environ()) {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	maps.Copy(env, utilityEnv(ctx))
	maps.Copy(env, commandEnv(ctx))
	maps.Copy(env, ctx.ExtraEnv)

	return env
}

func utilityEnv(ctx *ExecutionContext) map[string]string {
	root := ctx.InkfilePath
	local := ctx.LocalInkfile()

	env := map[string]string{
		EnvInkjet:    binaryName + " --inkfile " + root,
		EnvInk:       binaryName + " --inkfile " + local,
		EnvInkjetDir: filepath.Dir(root),
		EnvInkDir:    filepath.Dir(local),
	}
	if local != root {
		env[EnvImported] = "true"
	}
	if ctx.ExecutionID != "" {
		env[EnvExecutionID] = ctx.ExecutionID
	}
	return env
}

// commandEnv exports arguments and flags under their names with '-' replaced by '_'.
func commandEnv(ctx *ExecutionContext) map[string]string {
	env := make(map[string]string)
	for _, arg := range ctx.Command.Args {
		val := ctx.Args[arg.Name]
		if val == "" {
			val = arg.DefaultValue
		}
		env[arg.EnvName()] = val
	}
	for _, flag := range ctx.Command.Flags {
		if val := ctx.Flags[flag.Name]; val != "" {
			env[flag.EnvName()] = val
		}
	}
	return env
}

// EnvToSlice converts a map of environment variables to a slice sorted by name
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		result = append(result, k+"="+env[k])
	}
	return result
}

// FilterInkjetEnvVars removes per-execution inkjet variables from environ so
// a script that invokes "$INKJET other" does not leak them into the child.
func FilterInkjetEnvVars(environ []string) []string {
	result := make([]string, 0, len(environ))
	for _, e := range environ {
		name, _, _ := strings.Cut(e, "=")
		if name == EnvImported || name == EnvExecutionID {
			continue
		}
		result = append(result, e)
	}
	return result
}
