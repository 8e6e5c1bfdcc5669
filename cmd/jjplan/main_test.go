package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command. Flag values persist between runs, so
// every test passes the flags it depends on.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("JJPLAN_CONFIG", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogCommand(t *testing.T) {
	t.Run("position filter", func(t *testing.T) {
		out, err := run(t, "catalog", "--dataset", "", "--belt", "white", "--position", "mount-top", "--edges=false")
		require.NoError(t, err)
		assert.Equal(t, "Armbar\nAmericana\nKimura\nCross Collar Choke\n", out)
	})

	t.Run("edge table", func(t *testing.T) {
		out, err := run(t, "catalog", "--dataset", "", "--belt", "blue", "--position", "mount-top", "--edges")
		require.NoError(t, err)
		assert.Contains(t, out, "POSITION")
		assert.Contains(t, out, "Ezekiel Choke")
		assert.NotContains(t, out, "Closed Guard")
	})

	t.Run("unknown belt", func(t *testing.T) {
		_, err := run(t, "catalog", "--dataset", "", "--belt", "green", "--position", "", "--edges=false")
		assert.Error(t, err)
	})
}

func TestExportThenValidate(t *testing.T) {
	dir := t.TempDir()

	for _, format := range []string{"json", "toml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "gameplan."+format)
			_, err := run(t, "export", "--dataset", "", "--format", format, "--output", path)
			require.NoError(t, err)

			out, err := run(t, "validate", path)
			require.NoError(t, err)
			assert.Contains(t, out, path+": ok")
		})
	}
}

func TestValidateReportsProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(`
version: "1"
positions:
  - id: mount-top
    label: Mount (Top)
    options:
      - {label: Back Mount (Top), kind: transition, target: back-mount-top}
start_positions: [mount-top]
`)), 0o644))

	out, err := run(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s) found")
	assert.Contains(t, out, "back-mount-top")
}
