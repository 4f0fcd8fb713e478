// Package estimator loads pre-fitted regression artifacts and exposes them
// behind a single Predict capability.
package estimator

import (
	"context"
	"fmt"
)

// Estimator maps a feature vector to a prediction vector. Implementations
// must be deterministic and safe for concurrent use.
type Estimator interface {
	Predict(ctx context.Context, features []float64) ([]float64, error)
}

// Func adapts a plain function to the Estimator interface.
type Func func(ctx context.Context, features []float64) ([]float64, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, features []float64) ([]float64, error) {
	return f(ctx, features)
}

// Info describes a loaded artifact.
type Info struct {
	Name    string
	Kind    string
	Inputs  int
	Outputs int
	Source  string
}

// Model is a loaded artifact. It is immutable after Load returns.
type Model struct {
	info     Info
	inScale  *scaler
	outScale *scaler
	impl     Estimator
}

// Info returns the artifact metadata.
func (m *Model) Info() Info {
	return m.info
}

// Predict scales the features, runs the backend and un-scales the result.
func (m *Model) Predict(ctx context.Context, features []float64) ([]float64, error) {
	if len(features) != m.info.Inputs {
		return nil, fmt.Errorf("%s: expected %d features, got %d", m.info.Name, m.info.Inputs, len(features))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x := features
	if m.inScale != nil {
		x = m.inScale.transform(features)
	}

	y, err := m.impl.Predict(ctx, x)
	if err != nil {
		return nil, err
	}

	if m.outScale != nil {
		if len(y) != len(m.outScale.mean) {
			return nil, fmt.Errorf("%s: backend returned %d values, output scaler expects %d", m.info.Name, len(y), len(m.outScale.mean))
		}
		y = m.outScale.inverse(y)
	}
	return y, nil
}

type scaler struct {
	mean  []float64
	scale []float64
}

func (s *scaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out
}

func (s *scaler) inverse(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v*s.scale[i] + s.mean[i]
	}
	return out
}
