package api

import (
	"net/http"

	"github.com/RMahshie/genesis/internal/api/handlers"
	"github.com/RMahshie/genesis/internal/metrics"
	"github.com/RMahshie/genesis/internal/pipeline"
	"github.com/RMahshie/genesis/internal/repository"
	"github.com/RMahshie/genesis/pkg/models"
	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes sets up all API routes. repo may be nil, in which case the
// journal routes are not registered.
func RegisterRoutes(api huma.API, svc pipeline.PredictionService, repo repository.PredictionRepository, variant string, estimators []models.EstimatorInfo, tracker *metrics.LatencyTracker) {
	// Initialize handlers
	predictionHandler := handlers.NewPredictionHandler(svc, repo, variant)
	catalogHandler := handlers.NewCatalogHandler(variant, svc.Ranges(), estimators, tracker)

	// Register prediction routes
	huma.Register(api, huma.Operation{
		OperationID: "predictGeometry",
		Method:      http.MethodPost,
		Path:        "/api/predictions",
		Summary:     "Predict antenna geometry",
		Description: "Runs the Wing and Ray estimators and returns the patch geometry",
		Tags:        []string{"Prediction"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, predictionHandler.Predict)

	if repo != nil {
		huma.Register(api, huma.Operation{
			OperationID: "listPredictions",
			Method:      http.MethodGet,
			Path:        "/api/predictions",
			Summary:     "List recent predictions",
			Description: "Returns the most recent recorded predictions, newest first",
			Tags:        []string{"Prediction"},
		}, predictionHandler.ListPredictions)

		huma.Register(api, huma.Operation{
			OperationID: "getPrediction",
			Method:      http.MethodGet,
			Path:        "/api/predictions/{id}",
			Summary:     "Get a recorded prediction",
			Description: "Returns one recorded prediction by ID",
			Tags:        []string{"Prediction"},
		}, predictionHandler.GetPrediction)
	}

	// Register catalog routes
	huma.Register(api, huma.Operation{
		OperationID: "getRanges",
		Method:      http.MethodGet,
		Path:        "/api/ranges",
		Summary:     "Get input ranges",
		Description: "Returns the active range table used to validate inputs",
		Tags:        []string{"Catalog"},
	}, catalogHandler.GetRanges)

	huma.Register(api, huma.Operation{
		OperationID: "getModels",
		Method:      http.MethodGet,
		Path:        "/api/models",
		Summary:     "Get loaded estimators",
		Description: "Returns metadata for the Wing and Ray artifacts",
		Tags:        []string{"Catalog"},
	}, catalogHandler.GetModels)

	huma.Register(api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/stats",
		Summary:     "Get stage statistics",
		Description: "Returns per-stage latency and outcome counters",
		Tags:        []string{"Catalog"},
	}, catalogHandler.GetStats)
}
