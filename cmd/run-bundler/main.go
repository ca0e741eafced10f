package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/joshua-decoder/run-bundler/internal/bundle"
	_config "github.com/joshua-decoder/run-bundler/internal/config"
	"github.com/joshua-decoder/run-bundler/internal/tool"
	"github.com/joshua-decoder/run-bundler/internal/utils"
)

type exitCode int

const (
	exitSuccess exitCode = iota
	exitErrAny
	exitUsage
	exitTerm
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	utils.AddExitHandler(utils.ExitFunc(cancel))

	// The first signal stops the running tool and lets the run unwind
	// through the destination lock. A second one exits at once.
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
		<-sigChan
		utils.Exit(int(exitTerm))
	}()

	utils.Exit(int(run(ctx, os.Args[1:], os.Stdout, os.Stderr)))
}

// app carries what the root command's pre-run sets up for its subcommands.
type app struct {
	stdout, stderr io.Writer

	ctx      context.Context
	config   *_config.Config
	v        *viper.Viper
	debugLog *zap.Logger
}

// usageError marks errors caused by how the program was invoked.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := validate(cmd, args)
		if err != nil {
			return &usageError{err}
		}
		return nil
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) exitCode {
	a := &app{stdout: stdout, stderr: stderr, ctx: ctx}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteC()
	if a.debugLog != nil {
		a.debugLog.Sync()
	}
	if err == nil {
		return exitSuccess
	}

	a.errPrintln(err)
	code := codeFor(err)
	if ctx.Err() != nil {
		code = exitTerm
	}
	switch {
	case errors.Is(err, bundle.ErrDestinationExists):
		fmt.Fprintln(stderr, "Use --force to replace it.")
	case code == exitUsage:
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return code
}

func codeFor(err error) exitCode {
	var (
		usage   *usageError
		toolErr *tool.ExitError
	)
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &usage), errors.Is(err, bundle.ErrDestinationExists):
		return exitUsage
	case errors.Is(err, context.Canceled):
		return exitTerm
	case errors.As(err, &toolErr) && toolErr.Code > 0:
		return exitCode(toolErr.Code)
	default:
		return exitErrAny
	}
}

func (a *app) errPrintln(err error) {
	if err != nil {
		fmt.Fprintf(a.stderr, "%s %v\n", utils.Red.Sprint("Error:"), err)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "run-bundler [flags] <config> <origdir> <destdir>",
		Short: "Bundle a Joshua configuration and everything it references into one directory",
		Long: `run-bundler copies a Joshua decoder configuration and the files it references
into a new directory, binarizing language models and packing grammars on the
way, and writes a run-joshua.sh launcher next to the rewritten joshua.config.

Relative paths in <config> are resolved against <origdir>.`,
		Args:          a.bundleArgs,
		RunE:          a.runBundle,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file locating the decoder's tools")
	pf.Bool("enable-log", false, "Enable debug logging to stderr")

	addBundleFlags(rootCmd.Flags())

	rootCmd.AddCommand(newDoctorCmd(a))
	return rootCmd
}

func addBundleFlags(f *pflag.FlagSet) {
	f.BoolP("force", "f", false, "Replace the destination directory if it exists")
	f.StringP("copy-config-options", "o", "", "Options for copy-config, e.g. \"-topn 1 -mark-oovs true\"")
	f.Bool("pack-grammar", false, "Pack the grammar")
	f.StringSlice("binarize-kenlm", nil, "Language models to binarize; repeat the flag or separate names with commas")
	f.SortFlags = false
}

func (a *app) init(cmd *cobra.Command) (err error) {
	configFile, _ := cmd.Flags().GetString("config")
	a.config, a.v, err = _config.Read(configFile)
	if err != nil {
		return err
	}
	err = a.config.PlaceEnvironmentVariables()
	if err != nil {
		return err
	}
	err = a.config.Check()
	if err != nil {
		return err
	}
	enableLog, _ := cmd.Flags().GetBool("enable-log")
	return a.initLogging(enableLog)
}
