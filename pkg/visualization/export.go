package visualization

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"stentsim/internal/models"
	"stentsim/pkg/stl"
)

// STLExporter writes the vessel and stent of every frame as binary STL
// files, step_NNN_vessel.stl and step_NNN_stent.stl
type STLExporter struct {
	outputDir string
	written   []string
}

// NewSTLExporter creates an exporter writing into outputDir
func NewSTLExporter(outputDir string) (*STLExporter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &STLExporter{outputDir: outputDir}, nil
}

// Files returns the paths of the STL files written so far
func (e *STLExporter) Files() []string {
	return append([]string(nil), e.written...)
}

// AcceptFrame exports both meshes of the frame
func (e *STLExporter) AcceptFrame(_ context.Context, frame models.Frame) error {
	parts := []struct {
		name string
		tris []stl.Triangle
	}{
		{"vessel", stl.FromMesh(frame.Vessel)},
		{"stent", stl.FromMesh(frame.Stent)},
	}

	for _, part := range parts {
		filename := filepath.Join(e.outputDir, fmt.Sprintf("step_%03d_%s.stl", frame.Step.Index, part.name))
		if err := stl.SaveToSTL(filename, part.tris); err != nil {
			return fmt.Errorf("failed to export %s for step %d: %w", part.name, frame.Step.Index, err)
		}
		e.written = append(e.written, filename)
	}
	return nil
}
