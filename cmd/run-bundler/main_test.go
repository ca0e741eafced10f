package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/joshua-decoder/run-bundler/internal/bundle"
	"github.com/joshua-decoder/run-bundler/internal/tool"
	"github.com/joshua-decoder/run-bundler/internal/utils"
)

type env struct {
	root, src, dest, joshuaConfig, bundlerConfig string
}

// newEnv lays out a source directory with a weights file, a decoder
// configuration and a bundler config whose tools are shell scripts.
func newEnv(t *testing.T, decoderConfig string, buildBinary string) *env {
	t.Helper()
	if utils.RunningOnWindows {
		t.Skip("tests use /bin/sh scripts")
	}
	// Spaces in every path: the install root, the sources and the bundle.
	root := filepath.Join(t.TempDir(), "joshua runs")
	require.NoError(t, os.Mkdir(root, 0755))
	e := &env{
		root:          root,
		src:           filepath.Join(root, "src dir"),
		dest:          filepath.Join(root, "the bundle"),
		joshuaConfig:  filepath.Join(root, "joshua.config"),
		bundlerConfig: filepath.Join(root, "run-bundler.yml"),
	}
	t.Setenv("JOSHUA", root)

	require.NoError(t, os.Mkdir(e.src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(e.src, "weights"), []byte("lm_0 1.0\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(e.src, "lm.gz"), []byte("lm"), 0644))
	require.NoError(t, os.WriteFile(e.joshuaConfig, []byte(decoderConfig), 0644))

	script := func(name, body string) {
		path := filepath.Join(root, name)
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	}
	if buildBinary == "" {
		buildBinary = "cat \"$1\" \"$1\" > \"$2\"\n"
	}
	script("copy-config", "cat\necho\necho \"${1#-} = $2\"\n")
	script("build_binary", buildBinary)
	script("grammar-packer", "mkdir \"$2\"\n")
	yml := "tools:\n" +
		"  copy_config: $JOSHUA/copy-config\n" +
		"  build_binary: $JOSHUA/build_binary\n" +
		"  grammar_packer: $JOSHUA/grammar-packer\n"
	require.NoError(t, os.WriteFile(e.bundlerConfig, []byte(yml), 0644))
	return e
}

func (e *env) run(extra ...string) (code exitCode, stdout, stderr string) {
	args := append([]string{"-c", e.bundlerConfig, e.joshuaConfig, e.src, e.dest}, extra...)
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func (e *env) bundled(t *testing.T) []string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(e.dest, bundle.ConfigName))
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

const weightsConfig = "weights-file = weights # foo bar\noutput-format = %1\n"

func TestBundle(t *testing.T) {
	e := newEnv(t, weightsConfig, "")

	code, stdout, stderr := e.run()
	require.Equal(t, exitSuccess, code, stderr)
	require.Equal(t, []string{"weights-file = weights # foo bar", "output-format = %1"}, e.bundled(t))
	require.FileExists(t, filepath.Join(e.dest, "weights"))
	require.FileExists(t, filepath.Join(e.dest, bundle.LauncherName))
	require.Contains(t, stdout, "Copy")
	require.Contains(t, stdout, "Bundle is ready")
	require.NoFileExists(t, e.dest+".lock")
}

func TestBundleCopyConfigOptions(t *testing.T) {
	e := newEnv(t, weightsConfig, "")

	code, _, stderr := e.run("-o", "-topn 1")
	require.Equal(t, exitSuccess, code, stderr)
	require.Equal(t, []string{"weights-file = weights # foo bar", "output-format = %1", "topn = 1"}, e.bundled(t))
}

func TestBundleReservedFlags(t *testing.T) {
	e := newEnv(t, "lm = kenlm 5 false false 100 lm.gz\n", "")

	code, _, stderr := e.run("--pack-grammar", "--binarize-kenlm", "lm.gz,other.gz")
	require.Equal(t, exitSuccess, code, stderr)
	require.Equal(t, []string{"lm = kenlm 5 false false 100 lm.kenlm"}, e.bundled(t))
}

func TestUsageErrors(t *testing.T) {
	e := newEnv(t, weightsConfig, "")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-c", e.bundlerConfig, e.joshuaConfig}, &out, &errOut)
	require.Equal(t, exitUsage, code)
	require.Contains(t, errOut.String(), "Usage:")

	code, _, stderr := e.run("-o")
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "flag needs an argument")
	require.NoDirExists(t, e.dest)

	errOut.Reset()
	code = run(context.Background(), []string{"-c", e.bundlerConfig, filepath.Join(e.root, "missing.config"), e.src, e.dest}, &out, &errOut)
	require.Equal(t, exitUsage, code)
	require.Contains(t, errOut.String(), "can't open config file")

	code, _, _ = e.run("--no-such-flag")
	require.Equal(t, exitUsage, code)
}

func TestDestinationExists(t *testing.T) {
	e := newEnv(t, weightsConfig, "")
	require.NoError(t, os.Mkdir(e.dest, 0755))

	code, _, stderr := e.run()
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "--force")

	code, _, stderr = e.run("-f")
	require.Equal(t, exitSuccess, code, stderr)
	require.FileExists(t, filepath.Join(e.dest, "weights"))
}

func TestToolExitCode(t *testing.T) {
	e := newEnv(t, "lmfile = lm.gz\n", "echo broken >&2\nexit 5\n")

	code, _, stderr := e.run()
	require.Equal(t, exitCode(5), code)
	require.Contains(t, stderr, "broken")
	require.Contains(t, stderr, "exited with status 5")
}

func TestMissingSource(t *testing.T) {
	e := newEnv(t, "weights-file = nothing-here\n", "")

	code, _, stderr := e.run()
	require.Equal(t, exitErrAny, code)
	require.Contains(t, stderr, "line 1")
}

func TestDoctor(t *testing.T) {
	e := newEnv(t, weightsConfig, "")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-c", e.bundlerConfig, "doctor"}, &out, &errOut)
	require.Equal(t, exitSuccess, code, errOut.String())
	require.Contains(t, out.String(), "Using config: "+e.bundlerConfig)
	require.Contains(t, out.String(), "No problems found")

	require.NoError(t, os.Remove(filepath.Join(e.root, "grammar-packer")))
	out.Reset()
	code = run(context.Background(), []string{"-c", e.bundlerConfig, "doctor"}, &out, &errOut)
	require.Equal(t, exitErrAny, code)
	require.Contains(t, out.String(), "grammar-packer not found")
}

func TestCodeFor(t *testing.T) {
	require.Equal(t, exitSuccess, codeFor(nil))
	require.Equal(t, exitUsage, codeFor(&usageError{errors.New("bad")}))
	require.Equal(t, exitUsage, codeFor(fmt.Errorf("%w: /x", bundle.ErrDestinationExists)))
	require.Equal(t, exitCode(7), codeFor(fmt.Errorf("line 1: %w", &tool.ExitError{Tool: "x", Code: 7})))
	require.Equal(t, exitErrAny, codeFor(&tool.ExitError{Tool: "x", Err: os.ErrNotExist}))
	require.Equal(t, exitErrAny, codeFor(errors.New("other")))
	require.Equal(t, exitTerm, codeFor(fmt.Errorf("line 1: build_binary: %w", context.Canceled)))
}

func TestBundleCanceled(t *testing.T) {
	e := newEnv(t, "lmfile = lm.gz\n", "sleep 2; cat \"$1\" > \"$2\"\n")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	var out, errOut bytes.Buffer
	args := []string{"-c", e.bundlerConfig, e.joshuaConfig, e.src, e.dest}
	code := run(ctx, args, &out, &errOut)
	require.Equal(t, exitTerm, code)

	time.Sleep(2500 * time.Millisecond)
	require.NoFileExists(t, filepath.Join(e.dest, "lm.kenlm"))
	require.NoFileExists(t, filepath.Join(e.dest, bundle.ConfigName))
	require.NoFileExists(t, e.dest+".lock")
}

func TestBinarizeKenLMFlag(t *testing.T) {
	f := pflag.NewFlagSet("run-bundler", pflag.ContinueOnError)
	addBundleFlags(f)

	err := f.Parse([]string{"--binarize-kenlm", "a.gz", "--binarize-kenlm", "b.gz,c.gz"})
	require.NoError(t, err)
	names, err := f.GetStringSlice("binarize-kenlm")
	require.NoError(t, err)
	require.Equal(t, []string{"a.gz", "b.gz", "c.gz"}, names)
}
