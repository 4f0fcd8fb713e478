package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// PredictRequest represents a request to predict antenna geometry
type PredictRequest struct {
	Body SpecInput
}

// PredictResponseBody is the body of the predict response
type PredictResponseBody struct {
	ID        string         `json:"id,omitempty" doc:"Journal identifier when the prediction was recorded"`
	Variant   string         `json:"variant" doc:"Range table variant used for validation"`
	Input     SpecInput      `json:"input" doc:"Design targets as received"`
	Result    GeometryResult `json:"result" doc:"Predicted antenna geometry"`
	LatencyMS float64        `json:"latency_ms" doc:"Pipeline latency in milliseconds"`
}

// PredictResponse represents the predicted antenna geometry
type PredictResponse struct {
	Body PredictResponseBody
}

// ListPredictionsRequest represents a request for recent journal entries
type ListPredictionsRequest struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum number of records"`
}

// ListPredictionsResponse represents recent journal entries, newest first
type ListPredictionsResponse struct {
	Body struct {
		Predictions []*PredictionRecord `json:"predictions" doc:"Recorded predictions"`
	}
}

// GetPredictionRequest represents a request for one journal entry
type GetPredictionRequest struct {
	ID string `path:"id" doc:"Prediction ID"`
}

// GetPredictionResponse represents one journal entry
type GetPredictionResponse struct {
	Body *PredictionRecord
}

// FieldRange is the accepted interval of one input field
type FieldRange struct {
	Field string  `json:"field" doc:"Input field name"`
	Min   float64 `json:"min" doc:"Inclusive lower bound"`
	Max   float64 `json:"max" doc:"Inclusive upper bound"`
	Unit  string  `json:"unit" doc:"Field unit"`
}

// RangesResponse represents the active range table
type RangesResponse struct {
	Body struct {
		Variant string       `json:"variant" doc:"Active range table variant"`
		Fields  []FieldRange `json:"fields" doc:"Accepted input ranges"`
	}
}

// EstimatorInfo describes a loaded estimator artifact
type EstimatorInfo struct {
	Stage   string `json:"stage" enum:"wing,ray" doc:"Pipeline stage"`
	Name    string `json:"name" doc:"Artifact name"`
	Kind    string `json:"kind" doc:"Estimator backend"`
	Inputs  int    `json:"inputs" doc:"Feature vector length"`
	Outputs int    `json:"outputs" doc:"Prediction vector length"`
	Source  string `json:"source" doc:"Where the artifact was loaded from"`
}

// ModelsResponse lists the loaded estimators
type ModelsResponse struct {
	Body struct {
		Models []EstimatorInfo `json:"models" doc:"Loaded estimators"`
	}
}

// StageStats is the latency summary for one pipeline stage
type StageStats struct {
	Stage  string    `json:"stage" doc:"Pipeline stage"`
	EWMAms float64   `json:"ewma_ms" doc:"Smoothed latency in milliseconds"`
	LastMS float64   `json:"last_ms" doc:"Last observed latency in milliseconds"`
	OK     uint64    `json:"ok" doc:"Successful invocations"`
	Error  uint64    `json:"error" doc:"Failed invocations"`
	LastAt time.Time `json:"last_at" doc:"Time of the last observation"`
}

// StatsResponse represents per-stage latency statistics
type StatsResponse struct {
	Body struct {
		Stages []StageStats `json:"stages" doc:"Per-stage statistics"`
	}
}
