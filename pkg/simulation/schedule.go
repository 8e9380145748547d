package simulation

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"stentsim/internal/models"
)

// Policy identifies how intermediate diameters are chosen.
type Policy int

const (
	// PolicyThreePoint produces the start, midpoint and final diameters.
	PolicyThreePoint Policy = iota

	// PolicyLinear produces N+1 evenly spaced diameters.
	PolicyLinear
)

// DefaultLinearSteps is the interval count used by the linear policy when
// none is given.
const DefaultLinearSteps = 5

// ErrInvalidSchedule is returned for an unknown policy or a linear schedule
// with fewer than one interval.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Schedule decides the sequence of stent diameters between the starting
// diameter and the final diameter. The zero value is the three-point
// schedule.
type Schedule struct {
	policy Policy
	steps  int
}

// ThreePoint returns the schedule start, (start+final)/2, final.
func ThreePoint() Schedule {
	return Schedule{policy: PolicyThreePoint}
}

// Linear returns a schedule of n+1 diameters linearly interpolated from the
// start to the final diameter, both inclusive.
func Linear(n int) Schedule {
	return Schedule{policy: PolicyLinear, steps: n}
}

// ParseSchedule maps a policy name to a schedule. Accepted names are
// "three-point" and "linear"; steps is only used by the linear policy.
func ParseSchedule(name string, steps int) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "three-point", "threepoint", "three_point":
		return ThreePoint(), nil
	case "linear":
		if steps == 0 {
			steps = DefaultLinearSteps
		}
		s := Linear(steps)
		if err := s.validate(); err != nil {
			return Schedule{}, err
		}
		return s, nil
	default:
		return Schedule{}, fmt.Errorf("%w: unknown policy %q", ErrInvalidSchedule, name)
	}
}

// Policy returns the schedule's policy.
func (s Schedule) Policy() Policy { return s.policy }

// Steps returns the number of intervals between the first and the last
// diameter.
func (s Schedule) Steps() int {
	if s.policy == PolicyThreePoint {
		return 2
	}
	return s.steps
}

func (s Schedule) String() string {
	switch s.policy {
	case PolicyThreePoint:
		return "three-point"
	case PolicyLinear:
		return fmt.Sprintf("linear(%d)", s.steps)
	default:
		return fmt.Sprintf("Policy(%d)", int(s.policy))
	}
}

func (s Schedule) validate() error {
	switch s.policy {
	case PolicyThreePoint:
		return nil
	case PolicyLinear:
		if s.steps < 1 {
			return fmt.Errorf("%w: linear schedule needs at least 1 step, got %d", ErrInvalidSchedule, s.steps)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown policy %d", ErrInvalidSchedule, int(s.policy))
	}
}

// Diameters returns the diameters from start to final inclusive. When
// final does not exceed start the stent is held at start for every step;
// a stent is never shrunk.
func (s Schedule) Diameters(start, final float64) []float64 {
	if final < start {
		final = start
	}

	n := s.Steps()
	if s.policy == PolicyThreePoint {
		return []float64{start, (start + final) / 2, final}
	}

	diameters := make([]float64, n+1)
	increment := (final - start) / float64(n)
	for i := range diameters {
		diameters[i] = start + float64(i)*increment
	}
	// Pin the endpoint so rounding cannot push it past the final diameter
	diameters[n] = final
	return diameters
}

// ComputeExpansionSteps returns one step per scheduled diameter together
// with its gap and expansion measurements. It has no side effects.
func (s *Simulator) ComputeExpansionSteps() []models.ExpansionStep {
	diameters := s.schedule.Diameters(s.startingStentDiameter, s.FinalDiameter())

	steps := make([]models.ExpansionStep, len(diameters))
	for i, d := range diameters {
		steps[i] = models.ExpansionStep{
			Index:            i,
			StentDiameter:    d,
			GapToVessel:      (s.vesselDiameter - d) / 2,
			ExpansionPercent: (d/s.startingStentDiameter - 1) * 100,
		}
	}
	return steps
}

// Metrics summarises an expansion schedule
type Metrics struct {
	// Steps is the number of frames in the schedule
	Steps int

	// FinalDiameter is the stent diameter at the last step in mm
	FinalDiameter float64

	// MinGap and MeanGap describe the radial clearance over all steps
	MinGap  float64
	MeanGap float64

	// FinalExpansionPercent is the expansion reached at the last step
	FinalExpansionPercent float64

	// MeanIncrement is the average diameter increase between consecutive steps
	MeanIncrement float64
}

// Summary computes aggregate metrics over the expansion schedule.
func (s *Simulator) Summary() Metrics {
	steps := s.ComputeExpansionSteps()

	diameters := make([]float64, len(steps))
	gaps := make([]float64, len(steps))
	for i, st := range steps {
		diameters[i] = st.StentDiameter
		gaps[i] = st.GapToVessel
	}

	var meanIncrement float64
	if len(diameters) > 1 {
		increments := make([]float64, len(diameters)-1)
		for i := range increments {
			increments[i] = diameters[i+1] - diameters[i]
		}
		meanIncrement = stat.Mean(increments, nil)
	}

	last := steps[len(steps)-1]
	return Metrics{
		Steps:                 len(steps),
		FinalDiameter:         last.StentDiameter,
		MinGap:                floats.Min(gaps),
		MeanGap:               stat.Mean(gaps, nil),
		FinalExpansionPercent: last.ExpansionPercent,
		MeanIncrement:         meanIncrement,
	}
}
