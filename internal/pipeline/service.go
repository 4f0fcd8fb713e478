package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RMahshie/genesis/internal/estimator"
	"github.com/RMahshie/genesis/pkg/models"
	"github.com/rs/zerolog/log"
)

// PredictionService turns design targets into a patch geometry through the
// Wing and Ray estimators.
type PredictionService interface {
	PredictGeometry(ctx context.Context, input models.SpecInput) (*models.GeometryResult, error)
	Ranges() RangeTable
}

// Observer receives per-stage latency and outcome.
type Observer interface {
	ObserveOK(stage string, d time.Duration)
	ObserveError(stage string, d time.Duration)
}

// Options configures a PredictionService.
type Options struct {
	// Ranges is the accepted input table. The zero value selects DefaultVariant.
	Ranges RangeTable
	// Timeout bounds each stage when positive.
	Timeout time.Duration
	// Observer is optional.
	Observer Observer
}

// ImpedanceEstimate is the Wing output handed to Ray.
type ImpedanceEstimate struct {
	Real float64
	Imag float64
}

type predictionService struct {
	wing estimator.Estimator
	ray  estimator.Estimator
	opts Options
}

// NewPredictionService creates a prediction service around a loaded
// estimator pair. The estimators must not change after this call.
func NewPredictionService(wing, ray estimator.Estimator, opts Options) PredictionService {
	if opts.Ranges == (RangeTable{}) {
		opts.Ranges = Variants[DefaultVariant]
	}
	return &predictionService{
		wing: wing,
		ray:  ray,
		opts: opts,
	}
}

func (s *predictionService) Ranges() RangeTable {
	return s.opts.Ranges
}

func (s *predictionService) PredictGeometry(ctx context.Context, input models.SpecInput) (*models.GeometryResult, error) {
	// Step 1: Validate against the configured ranges
	if err := s.validate(input); err != nil {
		return nil, err
	}

	// Step 2: Wing predicts the input impedance
	z, err := s.run(ctx, estimator.Wing, s.wing, []float64{input.FrequencyGHz, input.S11dB, input.BandwidthGHz})
	if err != nil {
		return nil, err
	}
	imp := ImpedanceEstimate{Real: z[0], Imag: z[1]}

	// Step 3: Ray predicts geometry and achievable bandwidth
	g, err := s.run(ctx, estimator.Ray, s.ray, []float64{input.FrequencyGHz, input.S11dB, imp.Real, imp.Imag})
	if err != nil {
		return nil, err
	}

	return &models.GeometryResult{
		PatchLengthMM:          g[0],
		PatchWidthMM:           g[1],
		FeedWidthMM:            g[2],
		AchievableBandwidthGHz: g[3],
	}, nil
}

func (s *predictionService) validate(input models.SpecInput) error {
	checks := []struct {
		field string
		value float64
		r     Range
	}{
		{FieldFrequency, input.FrequencyGHz, s.opts.Ranges.FrequencyGHz},
		{FieldS11, input.S11dB, s.opts.Ranges.S11dB},
		{FieldBandwidth, input.BandwidthGHz, s.opts.Ranges.BandwidthGHz},
	}
	for _, c := range checks {
		if !c.r.Contains(c.value) {
			return &ValidationError{Field: c.field, Value: c.value, Allowed: c.r}
		}
	}
	return nil
}

// run invokes one stage and rejects errors, wrong arity and non-finite output.
func (s *predictionService) run(ctx context.Context, stage estimator.Stage, est estimator.Estimator, x []float64) ([]float64, error) {
	start := time.Now()

	y, err := s.invoke(ctx, est, x)
	if err != nil {
		reason := ReasonEstimator
		if errors.Is(err, context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		return nil, s.fail(stage, reason, err, start)
	}
	if len(y) != stage.Outputs {
		return nil, s.fail(stage, ReasonArity, fmt.Errorf("got %d values, expected %d", len(y), stage.Outputs), start)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, s.fail(stage, ReasonNonFinite, fmt.Errorf("output %d is %v", i, v), start)
		}
	}

	if s.opts.Observer != nil {
		s.opts.Observer.ObserveOK(stage.Name, time.Since(start))
	}
	return y, nil
}

type outcome struct {
	y   []float64
	err error
}

func (s *predictionService) invoke(ctx context.Context, est estimator.Estimator, x []float64) ([]float64, error) {
	if s.opts.Timeout <= 0 {
		o := safePredict(ctx, est, x)
		return o.y, o.err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	// buffered so an overrunning estimator can still finish and exit
	done := make(chan outcome, 1)
	go func() {
		done <- safePredict(ctx, est, x)
	}()

	select {
	case o := <-done:
		return o.y, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func safePredict(ctx context.Context, est estimator.Estimator, x []float64) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = outcome{err: fmt.Errorf("estimator panic: %v", r)}
		}
	}()
	y, err := est.Predict(ctx, x)
	return outcome{y: y, err: err}
}

func (s *predictionService) fail(stage estimator.Stage, reason string, err error, start time.Time) error {
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveError(stage.Name, time.Since(start))
	}
	log.Error().
		Str("stage", stage.Name).
		Str("reason", reason).
		Err(err).
		Msg("Prediction stage failed")
	return &PredictionError{Stage: stage.Name, Reason: reason, Err: err}
}
