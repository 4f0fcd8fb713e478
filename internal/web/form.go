// Package web renders the single-page prediction form.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/RMahshie/genesis/internal/pipeline"
	"github.com/RMahshie/genesis/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

//go:embed templates/form.html
var templates embed.FS

var formTemplate = template.Must(template.ParseFS(templates, "templates/form.html"))

// Initial values shown before the first submission.
var defaults = models.SpecInput{FrequencyGHz: 38.0, S11dB: -20.0, BandwidthGHz: 1.0}

type field struct {
	Name  string
	Label string
	Min   string
	Max   string
	Value string
}

type page struct {
	Constants []models.ConstantValue
	Fields    []field
	Result    *models.GeometryResult
	Error     string
}

// FormHandler serves the prediction form
type FormHandler struct {
	svc pipeline.PredictionService
}

// NewFormHandler creates a new form handler
func NewFormHandler(svc pipeline.PredictionService) *FormHandler {
	return &FormHandler{svc: svc}
}

// Register mounts the form on the router
func (h *FormHandler) Register(router chi.Router) {
	router.Get("/", h.Show)
	router.Post("/", h.Submit)
}

// Show renders the empty form with default values
func (h *FormHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, page{Fields: h.fields(defaults)})
}

// Submit runs the pipeline for the posted values and renders the outcome inline
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	input, err := parseInput(r)
	if err != nil {
		h.render(w, http.StatusBadRequest, page{Fields: h.rawFields(r), Error: err.Error()})
		return
	}

	p := page{Fields: h.fields(input)}
	status := http.StatusOK

	result, err := h.svc.PredictGeometry(r.Context(), input)
	var verr *pipeline.ValidationError
	var perr *pipeline.PredictionError
	switch {
	case err == nil:
		p.Result = result
	case errors.As(err, &verr):
		p.Error = fmt.Sprintf("Invalid input: %s", verr.Error())
		status = http.StatusUnprocessableEntity
	case errors.As(err, &perr):
		p.Error = "Prediction unavailable. Please try again later."
		status = http.StatusServiceUnavailable
	default:
		log.Error().Err(err).Msg("Form prediction failed")
		p.Error = "Prediction failed."
		status = http.StatusInternalServerError
	}

	h.render(w, status, p)
}

func (h *FormHandler) fields(v models.SpecInput) []field {
	return h.layout(num(v.FrequencyGHz), num(v.S11dB), num(v.BandwidthGHz))
}

// rawFields echoes the posted text so a mistyped value can be corrected.
func (h *FormHandler) rawFields(r *http.Request) []field {
	return h.layout(
		r.PostForm.Get(pipeline.FieldFrequency),
		r.PostForm.Get(pipeline.FieldS11),
		r.PostForm.Get(pipeline.FieldBandwidth),
	)
}

func (h *FormHandler) layout(freq, s11, bw string) []field {
	t := h.svc.Ranges()
	return []field{
		{Name: pipeline.FieldFrequency, Label: "Resonant Frequency (GHz)", Min: num(t.FrequencyGHz.Min), Max: num(t.FrequencyGHz.Max), Value: freq},
		{Name: pipeline.FieldS11, Label: "Minimum S11 (dB)", Min: num(t.S11dB.Min), Max: num(t.S11dB.Max), Value: s11},
		{Name: pipeline.FieldBandwidth, Label: "Desired Bandwidth (GHz)", Min: num(t.BandwidthGHz.Min), Max: num(t.BandwidthGHz.Max), Value: bw},
	}
}

func (h *FormHandler) render(w http.ResponseWriter, status int, p page) {
	p.Constants = models.AntennaConstants

	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, p); err != nil {
		log.Error().Err(err).Msg("Failed to render form")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func parseInput(r *http.Request) (models.SpecInput, error) {
	if err := r.ParseForm(); err != nil {
		return models.SpecInput{}, fmt.Errorf("Invalid form submission")
	}

	var input models.SpecInput
	targets := []struct {
		name string
		dst  *float64
	}{
		{pipeline.FieldFrequency, &input.FrequencyGHz},
		{pipeline.FieldS11, &input.S11dB},
		{pipeline.FieldBandwidth, &input.BandwidthGHz},
	}
	for _, t := range targets {
		v, err := strconv.ParseFloat(r.PostForm.Get(t.name), 64)
		if err != nil {
			return models.SpecInput{}, fmt.Errorf("Invalid input: %s must be a number", t.name)
		}
		*t.dst = v
	}
	return input, nil
}

// num formats a float the way the form displays it.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
