package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"stentsim/internal/models"
	"stentsim/pkg/config"
	"stentsim/pkg/input"
	"stentsim/pkg/report"
	"stentsim/pkg/simulation"
	"stentsim/pkg/visualization"
)

var runCmd = &cobra.Command{
	Use:   "run [vessel-diameter stent-length starting-stent-diameter]",
	Short: "Run the expansion and render every step",
	Long: `Runs the expansion schedule and hands each step to the configured outputs:
PNG frames, STL meshes and a PDF report. Dimensions come from the arguments,
an interactive prompt (--interactive) or the configuration file, in that order.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 3 {
			return fmt.Errorf("expected 0 or 3 arguments, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyRunFlags(cmd, cfg); err != nil {
			return err
		}

		interactive, _ := cmd.Flags().GetBool("interactive")
		dims, err := resolveDimensions(cfg, args, interactive, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}

		return runSimulation(cmd.Context(), cfg, dims, cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().BoolP("interactive", "i", false, "Prompt for the dimensions")
	runCmd.Flags().StringP("output", "o", "", "Directory for PNG frames and STL files")
	runCmd.Flags().Bool("png", true, "Render each step to a PNG image")
	runCmd.Flags().Bool("stl", false, "Export vessel and stent meshes per step as STL")
	runCmd.Flags().String("report", "", "Write a PDF summary to this path")
	runCmd.Flags().String("policy", "", "Expansion schedule: three-point or linear")
	runCmd.Flags().Int("steps", 0, "Number of intervals for the linear schedule")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags copies explicitly set flags over the configuration
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir, _ = flags.GetString("output")
	}
	if flags.Changed("png") {
		cfg.Output.PNG, _ = flags.GetBool("png")
	}
	if flags.Changed("stl") {
		cfg.Output.STL, _ = flags.GetBool("stl")
	}
	if flags.Changed("report") {
		cfg.Output.Report, _ = flags.GetString("report")
	}
	if flags.Changed("policy") {
		cfg.Schedule.Policy, _ = flags.GetString("policy")
	}
	if flags.Changed("steps") {
		cfg.Schedule.Steps, _ = flags.GetInt("steps")
	}
	return cfg.Validate()
}

// resolveDimensions picks the dimensions from arguments, the prompt or the
// configuration
func resolveDimensions(cfg *config.Config, args []string, interactive bool, in io.Reader, out io.Writer) (input.Dimensions, error) {
	if len(args) == 3 {
		return input.ParseDimensions(args)
	}

	defaults := input.Dimensions{
		VesselDiameter:        cfg.Simulation.VesselDiameter,
		StentLength:           cfg.Simulation.StentLength,
		StartingStentDiameter: cfg.Simulation.StartingStentDiameter,
	}
	if interactive {
		return input.NewPrompter(in, out).Prompt(defaults)
	}
	return defaults, nil
}

// newSimulator builds a simulator from dimensions and configuration
func newSimulator(cfg *config.Config, dims input.Dimensions) (*simulation.Simulator, error) {
	opts, err := cfg.SimulatorOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, simulation.WithLogger(stderrLogger(cfg)))
	return simulation.New(dims.VesselDiameter, dims.StentLength, dims.StartingStentDiameter, opts...)
}

func runSimulation(ctx context.Context, cfg *config.Config, dims input.Dimensions, out io.Writer) error {
	sim, err := newSimulator(cfg, dims)
	if err != nil {
		return err
	}

	sinks := simulation.MultiSink{captionSink{out: out}}

	var renderer *visualization.PNGRenderer
	if cfg.Output.PNG {
		opts := []visualization.RendererOption{visualization.WithImageSize(cfg.Output.ImageSize)}
		if cfg.Output.FontFile != "" {
			opts = append(opts, visualization.WithFontFile(cfg.Output.FontFile, 14))
		}
		renderer, err = visualization.NewPNGRenderer(cfg.Output.Dir, opts...)
		if err != nil {
			return err
		}
		sinks = append(sinks, renderer)
	}

	var exporter *visualization.STLExporter
	if cfg.Output.STL {
		exporter, err = visualization.NewSTLExporter(cfg.Output.Dir)
		if err != nil {
			return err
		}
		sinks = append(sinks, exporter)
	}

	var rep *report.Report
	if cfg.Output.Report != "" {
		rep = report.New(report.Input{
			VesselDiameter:        sim.VesselDiameter(),
			StentLength:           sim.StentLength(),
			StartingStentDiameter: sim.StartingStentDiameter(),
			Schedule:              sim.Schedule().String(),
		})
		sinks = append(sinks, rep)
	}

	if _, err := sim.RunVisualization(ctx, sinks); err != nil {
		return err
	}

	if rep != nil {
		if err := rep.Save(cfg.Output.Report); err != nil {
			return err
		}
	}

	metrics := sim.Summary()
	fmt.Fprintf(out, "\nSimulation %s: %d steps, final diameter %.2f mm, final expansion %.1f%%\n",
		sim.State(), metrics.Steps, metrics.FinalDiameter, metrics.FinalExpansionPercent)
	if renderer != nil {
		fmt.Fprintf(out, "Frames saved to: %s (%d images)\n", cfg.Output.Dir, len(renderer.Files()))
	}
	if exporter != nil {
		fmt.Fprintf(out, "Meshes saved to: %s (%d STL files)\n", cfg.Output.Dir, len(exporter.Files()))
	}
	if rep != nil {
		fmt.Fprintf(out, "Report saved to: %s\n", cfg.Output.Report)
	}
	return nil
}

// captionSink prints each frame's caption
type captionSink struct {
	out io.Writer
}

func (c captionSink) AcceptFrame(_ context.Context, frame models.Frame) error {
	_, err := fmt.Fprintf(c.out, "%s\n\n", frame.Step.Title())
	return err
}

var _ simulation.FrameSink = captionSink{}
