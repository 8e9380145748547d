package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Known-good configuration used by the validation checks
const (
	referenceVesselDiameter = 10.0
	referenceStentLength    = 20.0
	referenceStentDiameter  = 6.0
)

const diagnosticsTolerance = 1e-9

// CheckResult is the outcome of one named self-check
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// DiagnosticsReport collects self-check outcomes in the order they ran
type DiagnosticsReport struct {
	Checks []CheckResult
}

// Passed reports whether every check passed.
func (r DiagnosticsReport) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Results maps each check name to its outcome.
func (r DiagnosticsReport) Results() map[string]bool {
	m := make(map[string]bool, len(r.Checks))
	for _, c := range r.Checks {
		m[c.Name] = c.Passed
	}
	return m
}

// Failed returns the names of failed checks, sorted.
func (r DiagnosticsReport) Failed() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.Passed {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *DiagnosticsReport) add(name string, passed bool, format string, args ...any) {
	r.Checks = append(r.Checks, CheckResult{Name: name, Passed: passed, Detail: fmt.Sprintf(format, args...)})
}

// RunDiagnostics runs a smoke test of validation, the schedule invariants
// and a visualization pass. The visualization runs on a fresh copy of the
// simulator, so the receiver's state is left untouched.
func (s *Simulator) RunDiagnostics(ctx context.Context) DiagnosticsReport {
	var report DiagnosticsReport

	// Validation
	_, err := New(referenceVesselDiameter, referenceStentLength, referenceStentDiameter)
	report.add("validation_accepts_known_good", err == nil, "err=%v", err)

	_, err = New(referenceVesselDiameter, referenceStentLength, referenceVesselDiameter)
	report.add("validation_rejects_oversized_stent", errors.Is(err, ErrInvalidStentSize), "err=%v", err)

	_, err = New(-1, referenceStentLength, referenceStentDiameter)
	report.add("validation_rejects_negative_dimension", errors.Is(err, ErrInvalidDimension), "err=%v", err)

	// Visualization pass
	ok, err := s.clone().RunVisualization(ctx, Discard)
	report.add("visualization_completes", ok && err == nil, "ok=%t err=%v", ok, err)

	final := s.FinalDiameter()
	report.add("final_diameter_below_vessel", final < s.vesselDiameter,
		"final=%g vessel=%g", final, s.vesselDiameter)

	// Schedule invariants
	steps := s.ComputeExpansionSteps()
	upper := math.Max(final, s.startingStentDiameter)

	bounded, monotonic, gapOK := true, true, true
	for i, st := range steps {
		if st.StentDiameter < s.startingStentDiameter || st.StentDiameter > upper {
			bounded = false
		}
		if i > 0 && st.StentDiameter < steps[i-1].StentDiameter {
			monotonic = false
		}
		if st.GapToVessel < 0 {
			gapOK = false
		}
	}
	report.add("schedule_bounded", bounded, "range=[%g, %g]", s.startingStentDiameter, upper)
	report.add("schedule_monotonic", monotonic, "steps=%d", len(steps))
	report.add("gap_non_negative", gapOK, "steps=%d", len(steps))

	first := steps[0].ExpansionPercent
	report.add("first_step_zero_expansion", math.Abs(first) < diagnosticsTolerance, "expansion=%g", first)

	// Sampled meshes keep their clearance at the widest step
	last := steps[len(steps)-1]
	vessel, verr := s.vesselMesh()
	stent, serr := s.stentMesh(last.StentDiameter)
	if err := errors.Join(verr, serr); err != nil {
		report.add("mesh_clearance", false, "err=%v", err)
	} else {
		clearance := MinClearance(stent, vessel)
		report.add("mesh_clearance", clearance >= last.GapToVessel-diagnosticsTolerance,
			"clearance=%g gap=%g", clearance, last.GapToVessel)
	}

	s.logger.Info("diagnostics finished", "passed", report.Passed(), "failed", report.Failed())
	return report
}
