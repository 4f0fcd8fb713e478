package handlers

import (
	"context"
	"time"

	"github.com/RMahshie/genesis/internal/metrics"
	"github.com/RMahshie/genesis/internal/pipeline"
	"github.com/RMahshie/genesis/pkg/models"
)

// CatalogHandler serves read-only service metadata
type CatalogHandler struct {
	variant    string
	ranges     pipeline.RangeTable
	estimators []models.EstimatorInfo
	tracker    *metrics.LatencyTracker
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(variant string, ranges pipeline.RangeTable, estimators []models.EstimatorInfo, tracker *metrics.LatencyTracker) *CatalogHandler {
	return &CatalogHandler{
		variant:    variant,
		ranges:     ranges,
		estimators: estimators,
		tracker:    tracker,
	}
}

// GetRanges returns the active input range table
func (h *CatalogHandler) GetRanges(ctx context.Context, _ *struct{}) (*models.RangesResponse, error) {
	resp := &models.RangesResponse{}
	resp.Body.Variant = h.variant
	resp.Body.Fields = FieldRanges(h.ranges)
	return resp, nil
}

// GetModels returns metadata for the loaded estimators
func (h *CatalogHandler) GetModels(ctx context.Context, _ *struct{}) (*models.ModelsResponse, error) {
	resp := &models.ModelsResponse{}
	resp.Body.Models = h.estimators
	return resp, nil
}

// GetStats returns per-stage latency statistics
func (h *CatalogHandler) GetStats(ctx context.Context, _ *struct{}) (*models.StatsResponse, error) {
	resp := &models.StatsResponse{}
	resp.Body.Stages = []models.StageStats{}
	if h.tracker == nil {
		return resp, nil
	}

	stages, names := h.tracker.Snapshot()
	for _, name := range names {
		s := stages[name]
		resp.Body.Stages = append(resp.Body.Stages, models.StageStats{
			Stage:  name,
			EWMAms: s.EWMAms,
			LastMS: float64(s.Last) / float64(time.Millisecond),
			OK:     s.OK,
			Error:  s.Error,
			LastAt: s.LastAt,
		})
	}
	return resp, nil
}

// FieldRanges lists a range table in form order
func FieldRanges(t pipeline.RangeTable) []models.FieldRange {
	return []models.FieldRange{
		{Field: pipeline.FieldFrequency, Min: t.FrequencyGHz.Min, Max: t.FrequencyGHz.Max, Unit: "GHz"},
		{Field: pipeline.FieldS11, Min: t.S11dB.Min, Max: t.S11dB.Max, Unit: "dB"},
		{Field: pipeline.FieldBandwidth, Min: t.BandwidthGHz.Min, Max: t.BandwidthGHz.Max, Unit: "GHz"},
	}
}
