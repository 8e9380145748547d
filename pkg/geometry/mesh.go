// Package geometry samples parametric cylinder surfaces for the vessel and
// stent models. Every function in this package is pure and safe for
// concurrent use.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultResolution is the number of samples taken along each
	// parametric axis when the caller does not ask for anything else.
	DefaultResolution = 30

	// DefaultVesselOverhang is how far the vessel extends past each end of
	// the stent, in length units.
	DefaultVesselOverhang = 5.0

	// MinResolution is the smallest usable sample count per axis.
	MinResolution = 2
)

// ErrInvalidMeshParameter is returned when a mesh is requested with a
// non-positive dimension or an unusable resolution.
var ErrInvalidMeshParameter = errors.New("invalid mesh parameter")

// CylinderMesh is a rectangular grid of surface samples on a cylinder whose
// axis is the Z axis.
//
// Points is indexed [axial][angular]: row i holds every angle sample at the
// i-th axial position, in increasing angle order. Both parametric ranges
// are sampled inclusively, so the first and last column of each row
// coincide (0 and 2π).
type CylinderMesh struct {
	Points [][]r3.Vec

	// Diameter is the diameter the mesh was sampled at.
	Diameter float64

	// ZMin and ZMax bound the axial range actually sampled, including any
	// overhang.
	ZMin, ZMax float64
}

// Triangle is one face of a triangulated mesh. Vertices are ordered so the
// right-hand normal points away from the cylinder axis.
type Triangle struct {
	A, B, C r3.Vec
}

// Normal returns the unit normal of the triangle.
func (t Triangle) Normal() r3.Vec {
	return r3.Unit(r3.Cross(r3.Sub(t.B, t.A), r3.Sub(t.C, t.A)))
}

// MeshOption tweaks how a cylinder is sampled.
type MeshOption func(*meshSettings)

type meshSettings struct {
	overhang float64
}

// WithOverhang extends the axial range symmetrically by offset on both
// ends, sampling [-offset, length+offset] instead of [0, length].
func WithOverhang(offset float64) MeshOption {
	return func(s *meshSettings) {
		s.overhang = offset
	}
}

// GenerateCylinderMesh samples a cylinder of the given diameter and length.
// The result has axialRes rows of angularRes points each.
func GenerateCylinderMesh(diameter, length float64, angularRes, axialRes int, opts ...MeshOption) (*CylinderMesh, error) {
	var settings meshSettings
	for _, opt := range opts {
		opt(&settings)
	}

	if !isPositive(diameter) {
		return nil, fmt.Errorf("%w: diameter must be positive, got %v", ErrInvalidMeshParameter, diameter)
	}
	if !isPositive(length) {
		return nil, fmt.Errorf("%w: length must be positive, got %v", ErrInvalidMeshParameter, length)
	}
	if angularRes < MinResolution || axialRes < MinResolution {
		return nil, fmt.Errorf("%w: resolution must be at least %d, got %dx%d",
			ErrInvalidMeshParameter, MinResolution, angularRes, axialRes)
	}
	if settings.overhang < 0 || math.IsNaN(settings.overhang) || math.IsInf(settings.overhang, 0) {
		return nil, fmt.Errorf("%w: overhang must be non-negative, got %v", ErrInvalidMeshParameter, settings.overhang)
	}

	zMin := -settings.overhang
	zMax := length + settings.overhang

	thetas := floats.Span(make([]float64, angularRes), 0, 2*math.Pi)
	zs := floats.Span(make([]float64, axialRes), zMin, zMax)

	// Trig values are shared by every row
	cos := make([]float64, angularRes)
	sin := make([]float64, angularRes)
	for j, theta := range thetas {
		sin[j], cos[j] = math.Sincos(theta)
	}

	radius := diameter / 2
	points := make([][]r3.Vec, axialRes)
	for i, z := range zs {
		row := make([]r3.Vec, angularRes)
		for j := range row {
			row[j] = r3.Vec{X: radius * cos[j], Y: radius * sin[j], Z: z}
		}
		points[i] = row
	}

	return &CylinderMesh{
		Points:   points,
		Diameter: diameter,
		ZMin:     zMin,
		ZMax:     zMax,
	}, nil
}

// GenerateVesselMesh samples a vessel segment that overhangs both ends of a
// stent of the given length by DefaultVesselOverhang.
func GenerateVesselMesh(diameter, length float64, angularRes, axialRes int) (*CylinderMesh, error) {
	return GenerateCylinderMesh(diameter, length, angularRes, axialRes, WithOverhang(DefaultVesselOverhang))
}

// Rows returns the number of axial samples.
func (m *CylinderMesh) Rows() int {
	return len(m.Points)
}

// Cols returns the number of angular samples.
func (m *CylinderMesh) Cols() int {
	if len(m.Points) == 0 {
		return 0
	}
	return len(m.Points[0])
}

// Len returns the total number of points in the grid.
func (m *CylinderMesh) Len() int {
	return m.Rows() * m.Cols()
}

// Radius returns half the sampled diameter.
func (m *CylinderMesh) Radius() float64 {
	return m.Diameter / 2
}

// Flatten returns the grid points in row-major order.
func (m *CylinderMesh) Flatten() []r3.Vec {
	flat := make([]r3.Vec, 0, m.Len())
	for _, row := range m.Points {
		flat = append(flat, row...)
	}
	return flat
}

// Coordinates splits the grid into three coordinate matrices shaped like
// the grid itself, the layout surface plotters expect.
func (m *CylinderMesh) Coordinates() (x, y, z *mat.Dense) {
	rows, cols := m.Rows(), m.Cols()
	x = mat.NewDense(rows, cols, nil)
	y = mat.NewDense(rows, cols, nil)
	z = mat.NewDense(rows, cols, nil)
	for i, row := range m.Points {
		for j, p := range row {
			x.Set(i, j, p.X)
			y.Set(i, j, p.Y)
			z.Set(i, j, p.Z)
		}
	}
	return x, y, z
}

// Bounds returns the axis-aligned bounding box of the sampled points.
func (m *CylinderMesh) Bounds() (min, max r3.Vec) {
	if m.Len() == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min = m.Points[0][0]
	max = min
	for _, row := range m.Points {
		for _, p := range row {
			min.X = math.Min(min.X, p.X)
			min.Y = math.Min(min.Y, p.Y)
			min.Z = math.Min(min.Z, p.Z)
			max.X = math.Max(max.X, p.X)
			max.Y = math.Max(max.Y, p.Y)
			max.Z = math.Max(max.Z, p.Z)
		}
	}
	return min, max
}

// Triangles splits every grid quad into two outward-facing triangles.
// The mesh is open at both ends; no caps are generated.
func (m *CylinderMesh) Triangles() []Triangle {
	rows, cols := m.Rows(), m.Cols()
	if rows < 2 || cols < 2 {
		return nil
	}

	tris := make([]Triangle, 0, 2*(rows-1)*(cols-1))
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			a := m.Points[i][j]
			b := m.Points[i][j+1]
			c := m.Points[i+1][j+1]
			d := m.Points[i+1][j]
			tris = append(tris, Triangle{A: a, B: b, C: c}, Triangle{A: a, B: c, C: d})
		}
	}
	return tris
}

// RadialDistance returns the distance of p from the Z axis.
func RadialDistance(p r3.Vec) float64 {
	return math.Hypot(p.X, p.Y)
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
