package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"stentsim/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "stentsim",
	Short: "Stentsim models the radial expansion of a stent inside a vessel",
	Long: `Stentsim expands a cylindrical stent inside a tubular vessel step by step,
reports the gap to the vessel wall and the expansion at each step, and renders
or exports the vessel and stent surfaces for every step.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "stentsim.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file with STENTSIM_* overrides")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// loadConfig reads the config file, applies environment overrides and the
// persistent flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadEnv(envFile); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Output.Verbose, _ = cmd.Flags().GetBool("verbose")
	}
	return cfg, nil
}

// newLogger writes text logs to w, at debug level when verbose
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func stderrLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stderr, cfg.Output.Verbose)
}
