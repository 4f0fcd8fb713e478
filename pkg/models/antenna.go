package models

import (
	"time"
)

// SpecInput holds the electrical design targets supplied by the user
type SpecInput struct {
	FrequencyGHz float64 `json:"frequency_ghz" doc:"Resonant frequency in GHz"`
	S11dB        float64 `json:"s11_db" doc:"Minimum return loss S11 in dB"`
	BandwidthGHz float64 `json:"bandwidth_ghz" doc:"Desired bandwidth in GHz"`
}

// GeometryResult holds the predicted physical dimensions of the patch antenna
type GeometryResult struct {
	PatchLengthMM          float64 `json:"patch_length_mm" doc:"Patch length in mm"`
	PatchWidthMM           float64 `json:"patch_width_mm" doc:"Patch width in mm"`
	FeedWidthMM            float64 `json:"feed_width_mm" doc:"Feedline width in mm"`
	AchievableBandwidthGHz float64 `json:"achievable_bandwidth_ghz" doc:"Achievable bandwidth in GHz"`
}

// PredictionRecord is a served prediction as stored in the journal
type PredictionRecord struct {
	ID        string         `json:"id" doc:"Prediction unique identifier"`
	Variant   string         `json:"variant" doc:"Range table variant active when served"`
	Input     SpecInput      `json:"input" doc:"Design targets"`
	Result    GeometryResult `json:"result" doc:"Predicted geometry"`
	LatencyMS float64        `json:"latency_ms" doc:"Pipeline latency in milliseconds"`
	CreatedAt time.Time      `json:"created_at" doc:"When the prediction was served"`
}

// ConstantValue is one fixed property of the antenna build
type ConstantValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AntennaConstants are the substrate and ground properties the models were trained against.
var AntennaConstants = []ConstantValue{
	{Label: "Substrate", Value: "Rogers RT5880 (εr)"},
	{Label: "Dielectric constant, εr", Value: "2.2"},
	{Label: "Substrate Thickness", Value: "0.254 mm"},
	{Label: "Substrate Width", Value: "4.602 mm"},
	{Label: "Substrate Length", Value: "3.996 mm"},
	{Label: "Ground Width", Value: "4.602 mm"},
	{Label: "Ground Length", Value: "3.996 mm"},
	{Label: "Inset Width", Value: "0.395 mm"},
	{Label: "Inset Length", Value: "0.6 mm"},
}
