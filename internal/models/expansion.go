package models

import (
	"fmt"

	"stentsim/pkg/geometry"
)

// ExpansionStep holds the measurements for one frame of the expansion
type ExpansionStep struct {
	// Index is the position of this step in the schedule, starting at 0
	Index int

	// StentDiameter is the stent's outer diameter at this step in mm
	StentDiameter float64

	// GapToVessel is the radial clearance between stent and vessel wall in mm
	GapToVessel float64

	// ExpansionPercent is the diameter growth relative to the starting
	// stent diameter
	ExpansionPercent float64
}

// Title renders the caption shown above a rendered step
func (s ExpansionStep) Title() string {
	return fmt.Sprintf("Stent Expansion - Step %d\nStent Diameter: %.2f mm\nGap to Vessel Wall: %.2f mm\nExpansion: %.1f%%",
		s.Index, s.StentDiameter, s.GapToVessel, s.ExpansionPercent)
}

// Frame is everything a renderer needs to draw one expansion step
type Frame struct {
	// Step carries the index and scalar measurements
	Step ExpansionStep

	// Vessel is the fixed outer tube, overhanging the stent on both ends
	Vessel *geometry.CylinderMesh

	// Stent is the stent surface at this step's diameter
	Stent *geometry.CylinderMesh
}

// State is the lifecycle of a simulation run
type State int

const (
	NotRun State = iota
	Completed
)

func (s State) String() string {
	switch s {
	case NotRun:
		return "not-run"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
