package estimator

import (
	"context"
	"fmt"
)

type linearSpec struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// linear computes y = coef·x + intercept.
type linear struct {
	coef      [][]float64
	intercept []float64
}

func (s *linearSpec) build(inputs, outputs int) (Estimator, error) {
	if err := checkMatrix("linear.coef", s.Coef, outputs, inputs); err != nil {
		return nil, err
	}
	if len(s.Intercept) != outputs {
		return nil, fmt.Errorf("linear.intercept: expected %d entries, got %d", outputs, len(s.Intercept))
	}
	if err := checkFinite("linear.intercept", s.Intercept); err != nil {
		return nil, err
	}
	return &linear{coef: s.Coef, intercept: s.Intercept}, nil
}

func (l *linear) Predict(_ context.Context, x []float64) ([]float64, error) {
	return affine(l.coef, l.intercept, x), nil
}

func affine(w [][]float64, b []float64, x []float64) []float64 {
	out := make([]float64, len(w))
	for i, row := range w {
		sum := b[i]
		for j, v := range row {
			sum += v * x[j]
		}
		out[i] = sum
	}
	return out
}
