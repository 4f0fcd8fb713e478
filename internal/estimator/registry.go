package estimator

import (
	"context"
	"errors"
	"sync"
)

// Stage names a pipeline stage and the arity its artifact must have.
type Stage struct {
	Name    string
	Inputs  int
	Outputs int
}

var (
	// Wing maps (frequency, S11, bandwidth) to (Z real, Z imag).
	Wing = Stage{Name: "wing", Inputs: 3, Outputs: 2}
	// Ray maps (frequency, S11, Z real, Z imag) to the patch geometry.
	Ray = Stage{Name: "ray", Inputs: 4, Outputs: 4}
)

// Registry holds the process-wide estimator pair. The first call to Load
// decides its contents for the life of the process.
type Registry struct {
	once sync.Once
	wing *Model
	ray  *Model
	err  error
}

// Load loads both artifacts once. Later calls return the first outcome
// without touching the sources again.
func (r *Registry) Load(ctx context.Context, l *Loader, wingSource, raySource string) error {
	r.once.Do(func() {
		wing, err := l.Load(ctx, wingSource, Wing.Inputs, Wing.Outputs)
		if err != nil {
			r.err = err
			return
		}
		ray, err := l.Load(ctx, raySource, Ray.Inputs, Ray.Outputs)
		if err != nil {
			r.err = err
			return
		}
		r.wing, r.ray = wing, ray
	})
	return r.err
}

// Wing returns the stage-1 model, or nil before a successful Load.
func (r *Registry) Wing() *Model {
	return r.wing
}

// Ray returns the stage-2 model, or nil before a successful Load.
func (r *Registry) Ray() *Model {
	return r.ray
}

// Pair returns both models or an error if they were never loaded.
func (r *Registry) Pair() (*Model, *Model, error) {
	if r.wing == nil || r.ray == nil {
		if r.err != nil {
			return nil, nil, r.err
		}
		return nil, nil, errors.New("estimators not loaded")
	}
	return r.wing, r.ray, nil
}
