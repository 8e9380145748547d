package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stentsim/pkg/simulation"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [vessel-diameter stent-length starting-stent-diameter]",
	Short: "Run the built-in self checks",
	Args:  runCmd.Args,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dims, err := resolveDimensions(cfg, args, false, nil, nil)
		if err != nil {
			return err
		}
		sim, err := newSimulator(cfg, dims)
		if err != nil {
			return err
		}

		report := sim.RunDiagnostics(cmd.Context())
		printDiagnostics(cmd.OutOrStdout(), report)
		if !report.Passed() {
			return errors.New("diagnostics failed: " + strings.Join(report.Failed(), ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}

func printDiagnostics(out io.Writer, report simulation.DiagnosticsReport) {
	for _, c := range report.Checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(out, "[%s] %s (%s)\n", status, c.Name, c.Detail)
	}
}
