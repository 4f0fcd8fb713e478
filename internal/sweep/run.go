package sweep

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/RMahshie/genesis/internal/pipeline"
	"github.com/RMahshie/genesis/pkg/models"
)

// Row is one successful grid point.
type Row struct {
	Input  models.SpecInput
	Result models.GeometryResult
}

// Failure is one grid point the pipeline rejected.
type Failure struct {
	Input  models.SpecInput
	Stage  string
	Reason string
}

// Report is the outcome of a sweep, in grid order.
type Report struct {
	Rows     []Row
	Failures []Failure
}

// Total is the number of grid points processed.
func (r *Report) Total() int {
	return len(r.Rows) + len(r.Failures)
}

// Run predicts every point using up to workers goroutines. Prediction
// failures are collected; a cancelled context stops the sweep with its error.
func Run(ctx context.Context, svc pipeline.PredictionService, points []models.SpecInput, workers int) (*Report, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	type slot struct {
		result *models.GeometryResult
		err    error
	}
	slots := make([]slot, len(points))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := svc.PredictGeometry(ctx, points[i])
				slots[i] = slot{result: res, err: err}
			}
		}()
	}

feed:
	for i := range points {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	for i, s := range slots {
		if s.err == nil {
			report.Rows = append(report.Rows, Row{Input: points[i], Result: *s.result})
			continue
		}

		f := Failure{Input: points[i], Reason: s.err.Error()}
		var verr *pipeline.ValidationError
		var perr *pipeline.PredictionError
		switch {
		case errors.As(s.err, &verr):
			f.Stage = "validation"
		case errors.As(s.err, &perr):
			f.Stage = perr.Stage
			f.Reason = perr.Reason
		}
		report.Failures = append(report.Failures, f)
	}
	return report, nil
}
