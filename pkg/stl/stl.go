// Package stl writes triangle meshes in the binary STL format.
package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"stentsim/pkg/geometry"
)

// Triangle is one facet of an STL file
type Triangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
}

const headerSize = 80

// FromMesh triangulates a cylinder mesh into STL facets.
func FromMesh(mesh *geometry.CylinderMesh) []Triangle {
	tris := mesh.Triangles()
	out := make([]Triangle, 0, len(tris))
	for _, t := range tris {
		n := t.Normal()
		// Skip degenerate facets, their normal is NaN
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			continue
		}
		out = append(out, Triangle{
			Normal:  [3]float32{float32(n.X), float32(n.Y), float32(n.Z)},
			Vertex1: [3]float32{float32(t.A.X), float32(t.A.Y), float32(t.A.Z)},
			Vertex2: [3]float32{float32(t.B.X), float32(t.B.Y), float32(t.B.Z)},
			Vertex3: [3]float32{float32(t.C.X), float32(t.C.Y), float32(t.C.Z)},
		})
	}
	return out
}

// Write encodes the triangles as binary STL. The header is padded or
// truncated to 80 bytes.
func Write(w io.Writer, header string, triangles []Triangle) error {
	bw := bufio.NewWriter(w)

	var hdr [headerSize]byte
	copy(hdr[:], header)
	if _, err := bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	for i, t := range triangles {
		// The trailing uint16 is the unused attribute byte count
		if err := binary.Write(bw, binary.LittleEndian, t); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// SaveToSTL writes the triangles to a binary STL file at path
func SaveToSTL(path string, triangles []Triangle) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %w", err)
	}

	if err := Write(file, "stentsim binary STL", triangles); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
