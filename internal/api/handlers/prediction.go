package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RMahshie/genesis/internal/pipeline"
	"github.com/RMahshie/genesis/internal/repository"
	"github.com/RMahshie/genesis/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PredictionHandler handles prediction-related HTTP requests
type PredictionHandler struct {
	svc     pipeline.PredictionService
	repo    repository.PredictionRepository
	variant string
}

// NewPredictionHandler creates a new prediction handler. repo may be nil,
// in which case predictions are served but not recorded.
func NewPredictionHandler(svc pipeline.PredictionService, repo repository.PredictionRepository, variant string) *PredictionHandler {
	return &PredictionHandler{
		svc:     svc,
		repo:    repo,
		variant: variant,
	}
}

// Predict runs the two-stage pipeline for one set of design targets
func (h *PredictionHandler) Predict(ctx context.Context, req *models.PredictRequest) (*models.PredictResponse, error) {
	input := req.Body

	start := time.Now()
	result, err := h.svc.PredictGeometry(ctx, input)
	latency := time.Since(start)
	if err != nil {
		return nil, toHTTPError(err)
	}

	body := models.PredictResponseBody{
		Variant:   h.variant,
		Input:     input,
		Result:    *result,
		LatencyMS: float64(latency) / float64(time.Millisecond),
	}

	if h.repo != nil {
		record := &models.PredictionRecord{
			ID:        uuid.New().String(),
			Variant:   h.variant,
			Input:     input,
			Result:    *result,
			LatencyMS: body.LatencyMS,
			CreatedAt: time.Now().UTC(),
		}
		// The journal is best effort; a served prediction is never failed by it.
		if err := h.repo.Create(ctx, record); err != nil {
			log.Warn().Err(err).Str("predictionID", record.ID).Msg("Failed to record prediction")
		} else {
			body.ID = record.ID
		}
	}

	log.Info().
		Float64("frequencyGHz", input.FrequencyGHz).
		Float64("s11dB", input.S11dB).
		Float64("bandwidthGHz", input.BandwidthGHz).
		Dur("latency", latency).
		Msg("Prediction served")

	return &models.PredictResponse{Body: body}, nil
}

// ListPredictions returns the most recent journal entries
func (h *PredictionHandler) ListPredictions(ctx context.Context, req *models.ListPredictionsRequest) (*models.ListPredictionsResponse, error) {
	if h.repo == nil {
		return nil, huma.Error503ServiceUnavailable("Prediction journal is disabled")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	records, err := h.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list predictions", err)
	}

	resp := &models.ListPredictionsResponse{}
	resp.Body.Predictions = records
	return resp, nil
}

// GetPrediction returns one journal entry
func (h *PredictionHandler) GetPrediction(ctx context.Context, req *models.GetPredictionRequest) (*models.GetPredictionResponse, error) {
	if h.repo == nil {
		return nil, huma.Error503ServiceUnavailable("Prediction journal is disabled")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid prediction ID", err)
	}

	record, err := h.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, huma.Error404NotFound("Prediction not found", err)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get prediction", err)
	}

	return &models.GetPredictionResponse{Body: record}, nil
}

// toHTTPError maps pipeline errors onto API errors
func toHTTPError(err error) error {
	var verr *pipeline.ValidationError
	if errors.As(err, &verr) {
		return huma.Error422UnprocessableEntity("Input outside the allowed range", &huma.ErrorDetail{
			Location: "body." + verr.Field,
			Message:  fmt.Sprintf("must be within %s", verr.Allowed),
			Value:    verr.Value,
		})
	}

	var perr *pipeline.PredictionError
	if errors.As(err, &perr) {
		return huma.Error503ServiceUnavailable("Prediction unavailable", &huma.ErrorDetail{
			Location: "stage",
			Message:  perr.Reason,
			Value:    perr.Stage,
		})
	}

	return huma.Error500InternalServerError("Prediction failed", err)
}
