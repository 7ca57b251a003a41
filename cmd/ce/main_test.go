package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// runAsCLIEnv makes the test binary behave as ce, so scripts can exec it.
const runAsCLIEnv = "CE_TEST_RUN_AS_CLI"

func TestMain(m *testing.M) {
	if os.Getenv(runAsCLIEnv) == "1" {
		os.Exit(run())
	}
	os.Exit(m.Run())
}

// TestScripts runs testdata/script/*.txt end to end against a SQLite store
// in a fresh directory per script.
func TestScripts(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	engine := &script.Engine{
		Cmds:  script.DefaultCmds(),
		Conds: script.DefaultConds(),
		Quiet: !testing.Verbose(),
	}
	engine.Cmds["ce"] = script.Program(exe, nil, 0)

	files, err := filepath.Glob(filepath.Join("testdata", "script", "*.txt"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txt")
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			home := t.TempDir()
			env := []string{
				runAsCLIEnv + "=1",
				"HOME=" + home,
				"XDG_CONFIG_HOME=" + filepath.Join(home, ".config"),
				"PATH=" + os.Getenv("PATH"),
				"TMPDIR=" + os.TempDir(),
				"USER=tester",
				"NO_COLOR=1",
				"CE_NO_PAGER=1",
				"CE_NO_EMOJI=1",
			}
			state, err := script.NewState(context.Background(), t.TempDir(), env)
			require.NoError(t, err)

			archive, err := txtar.ParseFile(file)
			require.NoError(t, err)
			require.NoError(t, state.ExtractFiles(archive))
			scripttest.Run(t, engine, state, file, bytes.NewReader(archive.Comment))
		})
	}
}
