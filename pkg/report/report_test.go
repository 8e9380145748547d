package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stentsim/pkg/simulation"
)

func runReport(t *testing.T) *Report {
	t.Helper()

	sim, err := simulation.New(10.0, 20.0, 6.0, simulation.WithMeshResolution(4, 4))
	require.NoError(t, err)

	r := New(Input{
		VesselDiameter:        sim.VesselDiameter(),
		StentLength:           sim.StentLength(),
		StartingStentDiameter: sim.StartingStentDiameter(),
		Schedule:              sim.Schedule().String(),
	})
	ok, err := sim.RunVisualization(context.Background(), r)
	require.NoError(t, err)
	require.True(t, ok)
	return r
}

func TestReportCollectsSteps(t *testing.T) {
	r := runReport(t)

	steps := r.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, 0, steps[0].Index)
	assert.InDelta(t, 9.0, steps[2].StentDiameter, 1e-9)
	assert.Equal(t, "Stent Expansion Report", r.input.Title)
}

func TestReportWrite(t *testing.T) {
	r := runReport(t)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output is not a PDF")
}

func TestReportSave(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	r := runReport(t)
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, r.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, r.Save(filepath.Join(t.TempDir(), "missing", "report.pdf")))
}
