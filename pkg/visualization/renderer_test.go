package visualization

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"stentsim/internal/models"
	"stentsim/pkg/geometry"
	"stentsim/pkg/simulation"
)

// testFrame builds a frame for the reference configuration
func testFrame(t *testing.T, index int, diameter float64) models.Frame {
	t.Helper()

	vessel, err := geometry.GenerateVesselMesh(10.0, 20.0, 24, 12)
	if err != nil {
		t.Fatalf("Failed to generate vessel: %v", err)
	}
	stent, err := geometry.GenerateCylinderMesh(diameter, 20.0, 24, 12)
	if err != nil {
		t.Fatalf("Failed to generate stent: %v", err)
	}

	return models.Frame{
		Step: models.ExpansionStep{
			Index:            index,
			StentDiameter:    diameter,
			GapToVessel:      (10.0 - diameter) / 2,
			ExpansionPercent: (diameter/6.0 - 1) * 100,
		},
		Vessel: vessel,
		Stent:  stent,
	}
}

// TestNewPNGRenderer verifies options and directory creation
func TestNewPNGRenderer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")

	r, err := NewPNGRenderer(dir, WithImageSize(256))
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	if r.size != 256 {
		t.Errorf("Expected size 256, got %d", r.size)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected output directory %s to exist", dir)
	}

	if _, err := NewPNGRenderer(dir, WithImageSize(8)); err == nil {
		t.Error("Expected error for tiny image size, got nil")
	}

	if _, err := NewPNGRenderer(dir, WithFontFile(filepath.Join(dir, "missing.ttf"), 12)); err == nil {
		t.Error("Expected error for missing font file, got nil")
	}
}

// TestRenderFrame verifies that both meshes end up in the image
func TestRenderFrame(t *testing.T) {
	r, err := NewPNGRenderer(t.TempDir(), WithImageSize(200))
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	img, err := r.RenderFrame(testFrame(t, 0, 6.0))
	if err != nil {
		t.Fatalf("Failed to render frame: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 200 || bounds.Dy() != 200 {
		t.Fatalf("Expected 200x200 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	// Look for stent-red pixels
	red := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr > cg+0x4000 && cr > cb+0x4000 {
				red++
			}
		}
	}
	if red == 0 {
		t.Error("Expected red stent pixels in rendered frame, found none")
	}
}

// TestRenderFrameMissingMesh verifies incomplete frames are rejected
func TestRenderFrameMissingMesh(t *testing.T) {
	r, err := NewPNGRenderer(t.TempDir(), WithImageSize(64))
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	frame := testFrame(t, 0, 6.0)
	frame.Stent = nil
	if _, err := r.RenderFrame(frame); err == nil {
		t.Error("Expected error for missing stent mesh, got nil")
	}
}

// TestViewportIsStable verifies frames of one run share the same framing
func TestViewportIsStable(t *testing.T) {
	a := newViewport(testFrame(t, 0, 6.0).Vessel, 400)
	b := newViewport(testFrame(t, 2, 9.0).Vessel, 400)
	if a != b {
		t.Errorf("Expected identical viewports, got %+v and %+v", a, b)
	}

	// Every vessel point lands inside the image
	vessel := testFrame(t, 0, 6.0).Vessel
	for _, p := range vessel.Flatten() {
		x, y := a.project(p)
		if x < 0 || x > 400 || y < 0 || y > 400 {
			t.Fatalf("Point %v projected outside the image: (%f, %f)", p, x, y)
		}
	}
}

// TestRunVisualizationWritesFrames drives a full run into both sinks
func TestRunVisualizationWritesFrames(t *testing.T) {
	// Skip this test in short mode
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	dir := t.TempDir()
	renderer, err := NewPNGRenderer(dir, WithImageSize(128))
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	exporter, err := NewSTLExporter(dir)
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}

	sim, err := simulation.New(10.0, 20.0, 6.0, simulation.WithMeshResolution(16, 8))
	if err != nil {
		t.Fatalf("Failed to create simulator: %v", err)
	}

	ok, err := sim.RunVisualization(context.Background(), simulation.MultiSink{renderer, exporter})
	if err != nil || !ok {
		t.Fatalf("Visualization failed: ok=%t err=%v", ok, err)
	}

	if len(renderer.Files()) != 3 {
		t.Errorf("Expected 3 images, got %d", len(renderer.Files()))
	}
	if len(exporter.Files()) != 6 {
		t.Errorf("Expected 6 STL files, got %d", len(exporter.Files()))
	}

	for step := 0; step < 3; step++ {
		for _, name := range []string{
			fmt.Sprintf("step_%03d.png", step),
			fmt.Sprintf("step_%03d_vessel.stl", step),
			fmt.Sprintf("step_%03d_stent.stl", step),
		} {
			if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
				t.Errorf("Expected file does not exist: %s", name)
			}
		}
	}
}
