package input

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimensions(t *testing.T) {
	d, err := ParseDimensions([]string{"10", " 20.5 ", "6e0"})
	require.NoError(t, err)
	assert.Equal(t, Dimensions{VesselDiameter: 10, StentLength: 20.5, StartingStentDiameter: 6}, d)

	// Ranges are not checked here
	d, err = ParseDimensions([]string{"-1", "20", "6"})
	require.NoError(t, err)
	assert.Equal(t, -1.0, d.VesselDiameter)
}

func TestParseDimensionsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"non-numeric vessel", []string{"ten", "20", "6"}, "vessel diameter"},
		{"non-numeric length", []string{"10", "", "6"}, "stent length"},
		{"non-numeric start", []string{"10", "20", "6mm"}, "starting stent diameter"},
		{"too few", []string{"10", "20"}, "expected 3 values"},
		{"too many", []string{"10", "20", "6", "1"}, "expected 3 values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDimensions(tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidUserInput)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestPrompt(t *testing.T) {
	defaults := Dimensions{VesselDiameter: 10, StentLength: 20, StartingStentDiameter: 6}

	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("12\n\n7.5\n"), &out)
	d, err := p.Prompt(defaults)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{VesselDiameter: 12, StentLength: 20, StartingStentDiameter: 7.5}, d)
	assert.Contains(t, out.String(), "Vessel diameter (mm) [10]: ")
	assert.Contains(t, out.String(), "Starting stent diameter (mm) [6]: ")
}

func TestPromptEOFKeepsDefaults(t *testing.T) {
	defaults := Dimensions{VesselDiameter: 10, StentLength: 20, StartingStentDiameter: 6}

	p := NewPrompter(strings.NewReader("11"), &bytes.Buffer{})
	d, err := p.Prompt(defaults)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{VesselDiameter: 11, StentLength: 20, StartingStentDiameter: 6}, d)
}

func TestPromptRejectsText(t *testing.T) {
	p := NewPrompter(strings.NewReader("10\nlong\n"), &bytes.Buffer{})
	_, err := p.Prompt(Dimensions{VesselDiameter: 10, StentLength: 20, StartingStentDiameter: 6})
	assert.ErrorIs(t, err, ErrInvalidUserInput)
	assert.Contains(t, err.Error(), "stent length")
}
