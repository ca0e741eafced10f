package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadNamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundler.yml")
	err := os.WriteFile(path, []byte(`
joshua: /opt/joshua
log: /tmp/run-bundler.log
env:
  lc_all: C
tools:
  build_binary: "$JOSHUA/bin/build_binary -s"
`), 0644)
	require.NoError(t, err)

	config, v, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, path, v.ConfigFileUsed())
	require.Equal(t, "/opt/joshua", config.Joshua)
	require.Equal(t, "C", config.Env["lc_all"])
	require.Equal(t, "$JOSHUA/bin/build_binary -s", config.Tools.BuildBinary)
	// Defaults fill what the file leaves out.
	require.Equal(t, "$JOSHUA/scripts/support/grammar-packer.pl", config.Tools.GrammarPacker)
}

func TestReadNamedFileMissing(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestReadSearchFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv(envFile, "")
	t.Setenv("HOME", dir)
	t.Setenv("JOSHUA", "/srv/joshua")

	config, _, err := Read("")
	require.NoError(t, err)
	require.Equal(t, "/srv/joshua", config.Joshua)
	require.Equal(t, "$JOSHUA/scripts/copy-config.pl", config.Tools.CopyConfig)
}

func TestPlaceEnvironmentVariables(t *testing.T) {
	t.Setenv("JOSHUA", "")
	t.Setenv("BUNDLER_TEST_VAR", "")

	config := &Config{
		Joshua: "/opt/joshua",
		Env:    map[string]string{"bundler_test_var": "x"},
		Tools: Tools{
			CopyConfig:    "$JOSHUA/scripts/copy-config.pl",
			BuildBinary:   "$JOSHUA/build_binary",
			GrammarPacker: "$BUNDLER_TEST_VAR/packer",
		},
	}
	require.NoError(t, config.PlaceEnvironmentVariables())
	require.Equal(t, "/opt/joshua", os.Getenv("JOSHUA"))
	require.Equal(t, "x", os.Getenv("BUNDLER_TEST_VAR"))
	// Left for the tool layer to expand after splitting.
	require.Equal(t, "$JOSHUA/scripts/copy-config.pl", config.Tools.CopyConfig)
	require.NoError(t, config.Check())
}

func TestCheckEmptyTool(t *testing.T) {
	config := &Config{Tools: Tools{CopyConfig: "a", BuildBinary: " ", GrammarPacker: "c"}}
	require.ErrorContains(t, config.Check(), "build_binary")
}
