// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"inkjet": Execute,
	})
}

// TestCLI runs the testscript files in testdata against the inkjet binary
// built into the test executable.
func TestCLI(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			// keep the host configuration and terminal out of the scripts
			env.Setenv("XDG_CONFIG_HOME", env.WorkDir+string(os.PathSeparator)+".config")
			env.Setenv("INKJET_DEFAULT_RUNTIME", "virtual")
			env.Setenv("NO_COLOR", "1")
			return nil
		},
	})
}
