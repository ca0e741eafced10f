package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshua-decoder/run-bundler/internal/bundle"
	"github.com/joshua-decoder/run-bundler/internal/tool"
	"github.com/joshua-decoder/run-bundler/internal/utils"
)

func (a *app) bundleArgs(cmd *cobra.Command, args []string) error {
	err := usageArgs(cobra.ExactArgs(3))(cmd, args)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return &usageError{fmt.Errorf("can't open config file: %w", err)}
	}
	return f.Close()
}

func (a *app) runBundle(cmd *cobra.Command, args []string) error {
	var (
		f                    = cmd.Flags()
		force, _             = f.GetBool("force")
		copyConfigOptions, _ = f.GetString("copy-config-options")
		packGrammar, _       = f.GetBool("pack-grammar")
		binarizeKenLM, _     = f.GetStringSlice("binarize-kenlm")
	)
	opts := bundle.Options{
		ConfigFile:        args[0],
		OrigDir:           args[1],
		DestDir:           args[2],
		Force:             force,
		CopyConfigOptions: copyConfigOptions,
		PackGrammar:       packGrammar,
		BinarizeKenLM:     binarizeKenLM,
	}
	a.debugLog.Info("Bundling",
		zap.String("config", opts.ConfigFile),
		zap.String("origdir", opts.OrigDir),
		zap.String("destdir", opts.DestDir),
		zap.Bool("force", opts.Force),
		zap.Bool("pack_grammar", opts.PackGrammar),
		zap.Strings("binarize_kenlm", opts.BinarizeKenLM),
	)

	tools, err := tool.FromConfig(a.config, a.debugLog)
	if err != nil {
		return err
	}
	tools.SetOutput(a.stdout, a.stderr)

	// Closed only once Run has returned, so the lock outlives any tool
	// still being stopped.
	assembler := bundle.New(opts, tools, a.debugLog)
	defer assembler.Close()

	utils.Bold.Fprintf(a.stdout, "Bundling %s into %s\n", opts.ConfigFile, opts.DestDir)
	result, err := assembler.Run(a.ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout)
	bundle.RenderReport(a.stdout, result.Entries)
	fmt.Fprintln(a.stdout)
	utils.Success.Fprintf(a.stdout, "Bundle is ready. Run it with %s\n", result.Launcher)
	return nil
}
