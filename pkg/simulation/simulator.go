package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"stentsim/internal/models"
	"stentsim/pkg/geometry"
)

// SafetyMargin is the fraction of the vessel diameter the stent is expanded
// to. The stent is never modelled as touching the vessel wall.
const SafetyMargin = 0.9

var (
	// ErrInvalidDimension is returned when a configured dimension is not a
	// positive, finite number.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidStentSize is returned when the starting stent diameter is
	// not strictly smaller than the vessel diameter.
	ErrInvalidStentSize = errors.New("invalid stent size")
)

// Option configures optional simulator behaviour.
type Option func(*Simulator)

// WithSchedule selects the expansion schedule. The default is ThreePoint.
func WithSchedule(s Schedule) Option {
	return func(sim *Simulator) {
		sim.schedule = s
	}
}

// WithMeshResolution sets the number of angular and axial samples used for
// both vessel and stent meshes.
func WithMeshResolution(angular, axial int) Option {
	return func(sim *Simulator) {
		sim.angularRes = angular
		sim.axialRes = axial
	}
}

// WithVesselOverhang sets how far the vessel mesh extends past each end of
// the stent.
func WithVesselOverhang(offset float64) Option {
	return func(sim *Simulator) {
		sim.overhang = offset
	}
}

// WithLogger sets the structured logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(sim *Simulator) {
		if logger != nil {
			sim.logger = logger
		}
	}
}

// Simulator models the radial expansion of a stent inside a vessel.
//
// The three dimensions are fixed at construction. The only mutable part is
// the run state, which moves from NotRun to Completed once every frame of a
// visualization pass has been delivered.
type Simulator struct {
	vesselDiameter        float64
	stentLength           float64
	startingStentDiameter float64

	schedule   Schedule
	angularRes int
	axialRes   int
	overhang   float64
	logger     *slog.Logger

	state models.State
}

// New validates the dimensions and returns a simulator that has not run yet.
func New(vesselDiameter, stentLength, startingStentDiameter float64, opts ...Option) (*Simulator, error) {
	if err := Validate(vesselDiameter, stentLength, startingStentDiameter); err != nil {
		return nil, err
	}

	sim := &Simulator{
		vesselDiameter:        vesselDiameter,
		stentLength:           stentLength,
		startingStentDiameter: startingStentDiameter,
		schedule:              ThreePoint(),
		angularRes:            geometry.DefaultResolution,
		axialRes:              geometry.DefaultResolution,
		overhang:              geometry.DefaultVesselOverhang,
		logger:                slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:                 models.NotRun,
	}
	for _, opt := range opts {
		opt(sim)
	}

	if err := sim.schedule.validate(); err != nil {
		return nil, err
	}
	if sim.angularRes < geometry.MinResolution || sim.axialRes < geometry.MinResolution {
		return nil, fmt.Errorf("%w: mesh resolution must be at least %d, got %dx%d",
			geometry.ErrInvalidMeshParameter, geometry.MinResolution, sim.angularRes, sim.axialRes)
	}
	if sim.overhang < 0 || math.IsNaN(sim.overhang) || math.IsInf(sim.overhang, 0) {
		return nil, fmt.Errorf("%w: vessel overhang must be non-negative, got %v",
			geometry.ErrInvalidMeshParameter, sim.overhang)
	}

	return sim, nil
}

// Validate checks a vessel/stent configuration without building a simulator.
func Validate(vesselDiameter, stentLength, startingStentDiameter float64) error {
	dims := []struct {
		name  string
		value float64
	}{
		{"vessel diameter", vesselDiameter},
		{"stent length", stentLength},
		{"starting stent diameter", startingStentDiameter},
	}
	for _, d := range dims {
		if !(d.value > 0) || math.IsInf(d.value, 1) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidDimension, d.name, d.value)
		}
	}

	if startingStentDiameter >= vesselDiameter {
		return fmt.Errorf("%w: starting stent diameter %v must be smaller than vessel diameter %v",
			ErrInvalidStentSize, startingStentDiameter, vesselDiameter)
	}
	return nil
}

// VesselDiameter returns the fixed vessel diameter.
func (s *Simulator) VesselDiameter() float64 { return s.vesselDiameter }

// StentLength returns the axial length shared by stent and vessel.
func (s *Simulator) StentLength() float64 { return s.stentLength }

// StartingStentDiameter returns the stent diameter before expansion.
func (s *Simulator) StartingStentDiameter() float64 { return s.startingStentDiameter }

// Schedule returns the expansion schedule in use.
func (s *Simulator) Schedule() Schedule { return s.schedule }

// State reports whether a visualization pass has completed.
func (s *Simulator) State() models.State { return s.state }

// FinalDiameter is the diameter the stent is expanded to.
func (s *Simulator) FinalDiameter() float64 {
	return s.vesselDiameter * SafetyMargin
}

// RunVisualization computes the schedule and delivers one frame per step to
// sink, in step order. Each AcceptFrame call must return before the next
// frame is built.
//
// The simulator is marked Completed only when every frame was accepted. A
// sink error or a cancelled context stops the run; the returned error wraps
// it together with the failing step index.
func (s *Simulator) RunVisualization(ctx context.Context, sink FrameSink) (bool, error) {
	steps := s.ComputeExpansionSteps()

	s.logger.Info("starting visualization",
		"vessel_diameter", s.vesselDiameter,
		"stent_length", s.stentLength,
		"start_diameter", s.startingStentDiameter,
		"schedule", s.schedule.String(),
		"steps", len(steps))

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return false, fmt.Errorf("visualization stopped before step %d: %w", step.Index, err)
		}

		vessel, err := s.vesselMesh()
		if err != nil {
			return false, fmt.Errorf("failed to generate vessel mesh for step %d: %w", step.Index, err)
		}
		stent, err := s.stentMesh(step.StentDiameter)
		if err != nil {
			return false, fmt.Errorf("failed to generate stent mesh for step %d: %w", step.Index, err)
		}

		s.logger.Debug("dispatching frame",
			"step", step.Index,
			"diameter", step.StentDiameter,
			"gap", step.GapToVessel,
			"expansion", step.ExpansionPercent)

		frame := models.Frame{Step: step, Vessel: vessel, Stent: stent}
		if err := sink.AcceptFrame(ctx, frame); err != nil {
			return false, fmt.Errorf("renderer failed at step %d: %w", step.Index, err)
		}
	}

	s.state = models.Completed
	s.logger.Info("visualization completed", "steps", len(steps))
	return true, nil
}

func (s *Simulator) vesselMesh() (*geometry.CylinderMesh, error) {
	return geometry.GenerateCylinderMesh(s.vesselDiameter, s.stentLength,
		s.angularRes, s.axialRes, geometry.WithOverhang(s.overhang))
}

func (s *Simulator) stentMesh(diameter float64) (*geometry.CylinderMesh, error) {
	return geometry.GenerateCylinderMesh(diameter, s.stentLength, s.angularRes, s.axialRes)
}

// clone returns a fresh, not-yet-run simulator with the same settings.
func (s *Simulator) clone() *Simulator {
	c := *s
	c.state = models.NotRun
	return &c
}
