// Package report summarises an expansion run as a PDF document.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/phpdave11/gofpdf"

	"stentsim/internal/models"
)

// Input describes the configuration printed in the report header
type Input struct {
	Title                 string
	VesselDiameter        float64
	StentLength           float64
	StartingStentDiameter float64
	Schedule              string
}

// Report collects expansion steps as frames arrive and renders them as a
// table. It implements simulation.FrameSink.
type Report struct {
	input Input
	steps []models.ExpansionStep
	now   func() time.Time
}

// New creates an empty report
func New(input Input) *Report {
	if input.Title == "" {
		input.Title = "Stent Expansion Report"
	}
	return &Report{input: input, now: time.Now}
}

// AcceptFrame records the frame's measurements; meshes are not kept
func (r *Report) AcceptFrame(_ context.Context, frame models.Frame) error {
	r.steps = append(r.steps, frame.Step)
	return nil
}

// Steps returns the recorded steps
func (r *Report) Steps() []models.ExpansionStep {
	return append([]models.ExpansionStep(nil), r.steps...)
}

// Write renders the PDF to w
func (r *Report) Write(w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, r.input.Title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		fmt.Sprintf("Vessel diameter: %.2f mm", r.input.VesselDiameter),
		fmt.Sprintf("Stent length: %.2f mm", r.input.StentLength),
		fmt.Sprintf("Starting stent diameter: %.2f mm", r.input.StartingStentDiameter),
		fmt.Sprintf("Schedule: %s", r.input.Schedule),
		fmt.Sprintf("Date: %s", r.now().Format("2006-01-02")),
	}
	for _, line := range header {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	widths := []float64{20, 45, 45, 45}
	pdf.SetFont("Helvetica", "B", 11)
	for i, col := range []string{"Step", "Diameter (mm)", "Gap (mm)", "Expansion (%)"} {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, s := range r.steps {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", s.Index), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%.2f", s.StentDiameter), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", s.GapToVessel), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.1f", s.ExpansionPercent), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// Save writes the PDF to path
func (r *Report) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := r.Write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
