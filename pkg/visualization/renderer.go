// Package visualization draws expansion frames to PNG images and exports
// them as STL meshes. Both types implement simulation.FrameSink.
package visualization

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"gonum.org/v1/gonum/spatial/r3"

	"stentsim/internal/models"
	"stentsim/pkg/geometry"
)

// DefaultImageSize is the width and height of rendered frames in pixels
const DefaultImageSize = 800

// Camera angles of the fixed oblique view, in radians
const (
	azimuth   = math.Pi / 6
	elevation = math.Pi / 8
)

// RendererOption configures a PNGRenderer
type RendererOption func(*PNGRenderer) error

// WithImageSize sets the square image size in pixels
func WithImageSize(size int) RendererOption {
	return func(r *PNGRenderer) error {
		if size < 64 {
			return fmt.Errorf("image size must be at least 64 pixels, got %d", size)
		}
		r.size = size
		return nil
	}
}

// WithFontFile loads a TrueType font used to caption each frame. Without a
// font the frames carry no caption.
func WithFontFile(path string, points float64) RendererOption {
	return func(r *PNGRenderer) error {
		source, err := text.NewFontSourceFromFile(path)
		if err != nil {
			return fmt.Errorf("failed to load font %s: %w", path, err)
		}
		r.face = source.Face(points)
		return nil
	}
}

// PNGRenderer draws each frame as a wireframe: the vessel in translucent
// gray and the stent in red, seen from a fixed oblique camera. The framing
// is derived from the vessel, which does not change between steps, so all
// frames of a run share the same scale.
type PNGRenderer struct {
	// outputDir is where step_NNN.png files are written
	outputDir string

	// size is the width and height of each image
	size int

	// face captions the frames when set
	face text.Face

	// written lists the files produced so far
	written []string
}

// NewPNGRenderer creates a renderer writing into outputDir, creating the
// directory when needed
func NewPNGRenderer(outputDir string, opts ...RendererOption) (*PNGRenderer, error) {
	r := &PNGRenderer{outputDir: outputDir, size: DefaultImageSize}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return r, nil
}

// Files returns the paths of the images written so far
func (r *PNGRenderer) Files() []string {
	return append([]string(nil), r.written...)
}

// AcceptFrame renders the frame and saves it as step_NNN.png
func (r *PNGRenderer) AcceptFrame(_ context.Context, frame models.Frame) error {
	dc, err := r.draw(frame)
	if err != nil {
		return err
	}
	defer dc.Close()

	filename := filepath.Join(r.outputDir, fmt.Sprintf("step_%03d.png", frame.Step.Index))
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("failed to save frame %d: %w", frame.Step.Index, err)
	}
	r.written = append(r.written, filename)
	return nil
}

// RenderFrame draws a frame into an in-memory image
func (r *PNGRenderer) RenderFrame(frame models.Frame) (image.Image, error) {
	dc, err := r.draw(frame)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

func (r *PNGRenderer) draw(frame models.Frame) (*gg.Context, error) {
	if frame.Vessel == nil || frame.Stent == nil {
		return nil, fmt.Errorf("frame %d is missing a mesh", frame.Step.Index)
	}

	dc := gg.NewContext(r.size, r.size)
	dc.ClearWithColor(gg.White)

	view := newViewport(frame.Vessel, r.size)

	dc.SetLineWidth(1)
	dc.SetRGBA(0.5, 0.5, 0.5, 0.3)
	if err := strokeMesh(dc, view, frame.Vessel); err != nil {
		dc.Close()
		return nil, fmt.Errorf("failed to draw vessel: %w", err)
	}

	dc.SetLineWidth(1.5)
	dc.SetRGB(0.85, 0.1, 0.1)
	if err := strokeMesh(dc, view, frame.Stent); err != nil {
		dc.Close()
		return nil, fmt.Errorf("failed to draw stent: %w", err)
	}

	if r.face != nil {
		dc.SetFont(r.face)
		dc.SetRGB(0, 0, 0)
		lineHeight := float64(r.size) / 30
		for i, line := range strings.Split(frame.Step.Title(), "\n") {
			dc.DrawString(line, lineHeight, lineHeight*(float64(i)+1.5))
		}
	}

	return dc, nil
}

// strokeMesh draws the grid lines of a mesh: one ring per axial sample and
// one line per angular sample
func strokeMesh(dc *gg.Context, view viewport, mesh *geometry.CylinderMesh) error {
	for _, row := range mesh.Points {
		for j, p := range row {
			x, y := view.project(p)
			if j == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
	}
	for j := 0; j < mesh.Cols(); j++ {
		for i, row := range mesh.Points {
			x, y := view.project(row[j])
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
	}
	return dc.Stroke()
}

// viewport maps model space to image space
type viewport struct {
	scale            float64
	offsetX          float64
	offsetY          float64
	centerU, centerV float64
}

// camera rotates p into view space, returning the screen-plane coordinates
func camera(p r3.Vec) (u, v float64) {
	sinA, cosA := math.Sincos(azimuth)
	sinE, cosE := math.Sincos(elevation)
	u = p.Z*cosA - p.X*sinA
	depth := p.Z*sinA + p.X*cosA
	v = p.Y*cosE - depth*sinE
	return u, v
}

// newViewport fits the mesh into a size×size image with a 10% margin
func newViewport(mesh *geometry.CylinderMesh, size int) viewport {
	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)
	for _, row := range mesh.Points {
		for _, p := range row {
			u, v := camera(p)
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
	}

	extent := math.Max(maxU-minU, maxV-minV)
	if extent == 0 {
		extent = 1
	}
	half := float64(size) / 2
	return viewport{
		scale:   0.8 * float64(size) / extent,
		offsetX: half,
		offsetY: half,
		centerU: (minU + maxU) / 2,
		centerV: (minV + maxV) / 2,
	}
}

func (vp viewport) project(p r3.Vec) (x, y float64) {
	u, v := camera(p)
	return vp.offsetX + vp.scale*(u-vp.centerU), vp.offsetY - vp.scale*(v-vp.centerV)
}
