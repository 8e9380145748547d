// Package input turns raw user input into simulation dimensions.
//
// Only the numeric form is checked here; ranges are validated when the
// simulator is built.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidUserInput is returned when a value cannot be read as a number.
var ErrInvalidUserInput = errors.New("invalid user input")

// Dimensions are the three values needed to build a simulator, in mm.
type Dimensions struct {
	VesselDiameter        float64
	StentLength           float64
	StartingStentDiameter float64
}

// Field names in prompt order
var fieldNames = [3]string{"vessel diameter", "stent length", "starting stent diameter"}

// ParseFloat parses one value, naming field in the error.
func ParseFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidUserInput, field, raw)
	}
	return v, nil
}

// ParseDimensions parses vessel diameter, stent length and starting stent
// diameter from exactly three raw values.
func ParseDimensions(args []string) (Dimensions, error) {
	if len(args) != len(fieldNames) {
		return Dimensions{}, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidUserInput, len(fieldNames), len(args))
	}

	var values [3]float64
	for i, raw := range args {
		v, err := ParseFloat(fieldNames[i], raw)
		if err != nil {
			return Dimensions{}, err
		}
		values[i] = v
	}

	return Dimensions{
		VesselDiameter:        values[0],
		StentLength:           values[1],
		StartingStentDiameter: values[2],
	}, nil
}

// Prompter asks for the dimensions interactively. An empty answer keeps
// the default shown in brackets.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads answers from r and writes prompts to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(r), out: w}
}

// Prompt asks for all three dimensions, falling back to defaults.
func (p *Prompter) Prompt(defaults Dimensions) (Dimensions, error) {
	answers := []*float64{&defaults.VesselDiameter, &defaults.StentLength, &defaults.StartingStentDiameter}
	labels := [3]string{"Vessel diameter (mm)", "Stent length (mm)", "Starting stent diameter (mm)"}

	for i, dst := range answers {
		fmt.Fprintf(p.out, "%s [%g]: ", labels[i], *dst)

		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return Dimensions{}, fmt.Errorf("failed to read %s: %w", fieldNames[i], err)
			}
			// EOF keeps the remaining defaults
			break
		}

		line := strings.TrimSpace(p.in.Text())
		if line == "" {
			continue
		}
		v, err := ParseFloat(fieldNames[i], line)
		if err != nil {
			return Dimensions{}, err
		}
		*dst = v
	}

	return defaults, nil
}
