// Package sweep runs a grid of design targets through the prediction
// pipeline and exports the resulting design table.
package sweep

import (
	"fmt"
	"math"

	"github.com/RMahshie/genesis/internal/pipeline"
	"github.com/RMahshie/genesis/pkg/models"
)

// Sample limits per axis and per grid.
const (
	MaxAxisSamples = 1_000_000
	MaxGridPoints  = 10_000_000
)

// Axis samples one input field from Range.Min to Range.Max in Step increments.
type Axis struct {
	Name  string
	Range pipeline.Range
	Step  float64
}

// Values returns the samples of the axis. Both bounds are always included.
func (a Axis) Values() ([]float64, error) {
	if a.Step <= 0 || math.IsNaN(a.Step) || math.IsInf(a.Step, 0) {
		return nil, fmt.Errorf("%s: step must be positive", a.Name)
	}
	if a.Range.Max < a.Range.Min {
		return nil, fmt.Errorf("%s: max < min", a.Name)
	}

	steps := math.Floor((a.Range.Max-a.Range.Min)/a.Step + 1e-9)
	if steps+1 > MaxAxisSamples {
		return nil, fmt.Errorf("%s: step %g yields more than %d samples", a.Name, a.Step, MaxAxisSamples)
	}
	n := int(steps)
	values := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		values = append(values, round9(a.Range.Min+float64(i)*a.Step))
	}
	if last := values[len(values)-1]; a.Range.Max-last > 1e-9 {
		values = append(values, a.Range.Max)
	}
	// Rounding may step past Max by a hair.
	if values[len(values)-1] > a.Range.Max {
		values[len(values)-1] = a.Range.Max
	}
	return values, nil
}

// Grid is the cartesian product of the three input axes.
type Grid struct {
	Frequency Axis
	S11       Axis
	Bandwidth Axis
}

// NewGrid builds a grid spanning a range table.
func NewGrid(t pipeline.RangeTable, freqStep, s11Step, bwStep float64) Grid {
	return Grid{
		Frequency: Axis{Name: pipeline.FieldFrequency, Range: t.FrequencyGHz, Step: freqStep},
		S11:       Axis{Name: pipeline.FieldS11, Range: t.S11dB, Step: s11Step},
		Bandwidth: Axis{Name: pipeline.FieldBandwidth, Range: t.BandwidthGHz, Step: bwStep},
	}
}

// Points enumerates the grid with frequency varying slowest.
func (g Grid) Points() ([]models.SpecInput, error) {
	fs, err := g.Frequency.Values()
	if err != nil {
		return nil, err
	}
	ss, err := g.S11.Values()
	if err != nil {
		return nil, err
	}
	bs, err := g.Bandwidth.Values()
	if err != nil {
		return nil, err
	}

	if total := float64(len(fs)) * float64(len(ss)) * float64(len(bs)); total > MaxGridPoints {
		return nil, fmt.Errorf("grid has %.0f points, limit is %d", total, MaxGridPoints)
	}

	points := make([]models.SpecInput, 0, len(fs)*len(ss)*len(bs))
	for _, f := range fs {
		for _, s := range ss {
			for _, b := range bs {
				points = append(points, models.SpecInput{FrequencyGHz: f, S11dB: s, BandwidthGHz: b})
			}
		}
	}
	return points, nil
}

func round9(x float64) float64 {
	return math.Round(x*1e9) / 1e9
}
