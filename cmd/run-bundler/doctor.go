package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshua-decoder/run-bundler/internal/tool"
	"github.com/joshua-decoder/run-bundler/internal/utils"
)

var errDoctor = errors.New("doctor found problems")

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the decoder's tools can be found",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			errorFound := false
			utils.Bold.Fprintln(a.stdout, "Doctor:")
			if used := a.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(a.stdout, "    Using config: %s\n", used)
			} else {
				fmt.Fprintln(a.stdout, "    No config file found, using defaults")
			}

			if a.config.Joshua == "" {
				utils.Warn.Fprintln(a.stdout, "    Warning: $JOSHUA is not set")
			} else {
				fmt.Fprintf(a.stdout, "    JOSHUA: %s\n", a.config.Joshua)
			}

			tools, err := tool.FromConfig(a.config, a.debugLog)
			if err != nil {
				return err
			}
			for _, c := range tools.Commands() {
				if !c.Found() {
					utils.Warn.Fprintf(a.stdout, "    Warning: %s not found at %s\n", c.Name(), c.Path())
					errorFound = true
				} else {
					fmt.Fprintf(a.stdout, "    %s %s at: %s\n", c.Name(), utils.HiGreen.Sprint("found"), c.Path())
				}
			}

			if errorFound {
				return errDoctor
			}
			utils.Success.Fprintln(a.stdout, "    No problems found")
			return nil
		},
	}
}
