package simulation

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"stentsim/pkg/geometry"
)

// meshPoint is a mesh sample usable as a k-d tree key
type meshPoint r3.Vec

// Compare implements the kdtree.Comparable interface
func (p meshPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(meshPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the k-d tree
func (p meshPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two points
func (p meshPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(r3.Vec(p), r3.Vec(c.(meshPoint))))
}

// meshPoints satisfies kdtree.Interface
type meshPoints []meshPoint

func (p meshPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p meshPoints) Len() int                              { return len(p) }
func (p meshPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p meshPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(meshPlane{meshPoints: p, Dim: d}, kdtree.MedianOfRandoms(meshPlane{meshPoints: p, Dim: d}, 100))
}

// meshPlane implements sort.Interface and kdtree.SortSlicer for meshPoints
type meshPlane struct {
	meshPoints
	kdtree.Dim
}

func (p meshPlane) Less(i, j int) bool {
	return p.meshPoints[i].Compare(p.meshPoints[j], p.Dim) < 0
}

func (p meshPlane) Slice(start, end int) kdtree.SortSlicer {
	return meshPlane{meshPoints: p.meshPoints[start:end], Dim: p.Dim}
}

func (p meshPlane) Swap(i, j int) {
	p.meshPoints[i], p.meshPoints[j] = p.meshPoints[j], p.meshPoints[i]
}

// MinClearance returns the smallest distance between any inner mesh sample
// and its nearest outer mesh sample. Because every outer sample lies on the
// outer cylinder, the result is never below the true radial gap.
func MinClearance(inner, outer *geometry.CylinderMesh) float64 {
	flat := outer.Flatten()
	pts := make(meshPoints, len(flat))
	for i, p := range flat {
		pts[i] = meshPoint(p)
	}
	tree := kdtree.New(pts, false)

	minDist := math.Inf(1)
	for _, row := range inner.Points {
		for _, p := range row {
			_, d2 := tree.Nearest(meshPoint(p))
			minDist = math.Min(minDist, math.Sqrt(d2))
		}
	}
	return minDist
}
