// Package server exposes the scenario engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oilmacro/scenario-forecast/internal/forecast"
	"github.com/oilmacro/scenario-forecast/internal/llm"
	"github.com/oilmacro/scenario-forecast/internal/scenario"
	"github.com/oilmacro/scenario-forecast/pkg/constants"
	"github.com/oilmacro/scenario-forecast/pkg/format"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type handler struct {
	logger       *zap.Logger
	runner       *forecast.Runner
	nlp          llm.Service
	version      string
	defaultWeeks int
}

// Options configures the HTTP handler.
type Options struct {
	Logger       *zap.Logger
	Runner       *forecast.Runner
	NLP          llm.Service
	Version      string
	DefaultWeeks int
	// AllowedOrigins restricts CORS; empty means allow all, matching
	// the dashboard's development setup.
	AllowedOrigins []string
}

// NewHandler constructs the HTTP handler that serves the scenario API.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NLP == nil {
		opts.NLP = llm.Disabled{}
	}
	if opts.DefaultWeeks < 1 {
		opts.DefaultWeeks = constants.DefaultForecastWeeks
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:       opts.Logger,
		runner:       opts.Runner,
		nlp:          opts.NLP,
		version:      version,
		defaultWeeks: opts.DefaultWeeks,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/api/scenarios", h.handleScenarios)
	mux.HandleFunc("/api/current-price", h.handleCurrentPrice)
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/api/simulate", h.handleSimulate)
	mux.HandleFunc("/api/simulate-direct", h.handleSimulateDirect)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler(mux), nil
}

type simulateRequest struct {
	Query         string `json:"query"`
	ForecastWeeks int    `json:"forecastWeeks"`
}

type directRequest struct {
	ScenarioKey       string  `json:"scenarioKey"`
	ForecastWeeks     int     `json:"forecastWeeks"`
	MagnitudeModifier float64 `json:"magnitudeModifier"`
}

type weeklyForecast struct {
	Week     int     `json:"week"`
	Baseline float64 `json:"baseline"`
	Scenario float64 `json:"scenario"`
	Change   float64 `json:"change"`
}

type simulateResponse struct {
	ScenarioKey      string                 `json:"scenarioKey"`
	ScenarioName     string                 `json:"scenarioName"`
	ScenarioDesc     string                 `json:"scenarioDesc"`
	CurrentPrice     float64                `json:"currentPrice"`
	Weeks            int                    `json:"weeks"`
	ParsedConfidence string                 `json:"parsedConfidence,omitempty"`
	ParsedReasoning  string                 `json:"parsedReasoning,omitempty"`
	WeeklyForecasts  []weeklyForecast       `json:"weeklyForecasts"`
	Intervals        []forecast.Interval    `json:"intervals,omitempty"`
	ImpactWeek1      forecast.ImpactSummary `json:"impactWeek1"`
	ImpactHorizon    forecast.ImpactSummary `json:"impactHorizon"`
	Explanation      string                 `json:"explanation,omitempty"`
	UncertaintyNote  string                 `json:"uncertaintyNote,omitempty"`
	ShocksApplied    map[string]float64     `json:"shocksApplied"`
	Duration         string                 `json:"duration"`
}

type scenarioInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "online",
		"message": "Oil Price Scenario Forecasting API",
	})
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	all := h.runner.Catalog().All()
	infos := make([]scenarioInfo, 0, len(all))
	for _, s := range all {
		infos = append(infos, scenarioInfo{Key: s.Key, Name: s.Name, Description: s.Description})
	}
	h.writeJSON(w, http.StatusOK, map[string][]scenarioInfo{"scenarios": infos})
}

func (h *handler) handleCurrentPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	snap := h.runner.Snapshot()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"price": format.Round2(snap.BrentPrice),
		"date":  snap.Date.Format(constants.DateLayout),
		"unit":  "USD/barrel",
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

// handleSimulate runs the full natural-language pipeline: parse the
// query, scale the scenario's shocks, simulate, explain.
func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), "server.handleSimulate")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.respondError(w, http.StatusBadRequest, "query is required", "server.handleSimulate")
		return
	}

	parsed := h.nlp.ParseQuery(r.Context(), req.Query)
	weeks := parsed.ForecastWeeks
	if req.ForecastWeeks > 0 {
		weeks = req.ForecastWeeks
	}
	if weeks < 1 {
		weeks = h.defaultWeeks
	}

	result, err := h.runner.RunScaled(parsed.ScenarioKey, weeks, parsed.MagnitudeModifier)
	if err != nil {
		h.respondRunError(w, err, "server.handleSimulate")
		return
	}

	resp := simulateResponse{
		ScenarioKey:      result.ScenarioKey,
		ScenarioName:     result.ScenarioName,
		ScenarioDesc:     result.ScenarioDesc,
		CurrentPrice:     format.Round2(result.CurrentPrice),
		Weeks:            result.Weeks,
		ParsedConfidence: parsed.Confidence,
		ParsedReasoning:  parsed.Reasoning,
		WeeklyForecasts:  buildWeekly(result),
		Intervals:        result.Intervals,
		ImpactWeek1:      result.ImpactWeek1,
		ImpactHorizon:    result.ImpactHorizon,
		Explanation:      h.nlp.Explain(r.Context(), result, parsed),
		UncertaintyNote:  h.nlp.UncertaintyNote(r.Context(), result),
		ShocksApplied:    result.ShocksApplied,
		Duration:         time.Since(start).String(),
	}

	h.logger.Info("simulation completed",
		zap.String("op", "server.handleSimulate"),
		zap.String("scenario", result.ScenarioKey),
		zap.Int("weeks", result.Weeks),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, resp)
}

// handleSimulateDirect runs a scenario by key, bypassing the LLM.
// Useful for testing specific scenarios without natural language.
func (h *handler) handleSimulateDirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	req := directRequest{MagnitudeModifier: constants.DefaultMagnitudeModifier}
	if r.Header.Get("Content-Type") == "application/json" && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), "server.handleSimulateDirect")
			return
		}
	}

	// Query parameters override for curl-friendly calls.
	if key := r.URL.Query().Get("scenario_key"); key != "" {
		req.ScenarioKey = key
	}
	if weeksStr := r.URL.Query().Get("forecast_weeks"); weeksStr != "" {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid forecast_weeks: %v", err), "server.handleSimulateDirect")
			return
		}
		req.ForecastWeeks = weeks
	}

	if req.ScenarioKey == "" {
		h.respondError(w, http.StatusBadRequest, "scenarioKey is required", "server.handleSimulateDirect")
		return
	}
	weeks := req.ForecastWeeks
	if weeks == 0 {
		weeks = h.defaultWeeks
	}
	modifier := req.MagnitudeModifier
	if modifier == 0 {
		modifier = constants.DefaultMagnitudeModifier
	}

	result, err := h.runner.RunScaled(req.ScenarioKey, weeks, modifier)
	if err != nil {
		h.respondRunError(w, err, "server.handleSimulateDirect")
		return
	}

	h.logger.Info("direct simulation completed",
		zap.String("op", "server.handleSimulateDirect"),
		zap.String("scenario", result.ScenarioKey),
		zap.Int("weeks", result.Weeks),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenarioName":  result.ScenarioName,
		"currentPrice":  format.Round2(result.CurrentPrice),
		"impactWeek1":   result.ImpactWeek1,
		"impactHorizon": result.ImpactHorizon,
		"baselineMean":  format.Round2(mean(result.Baseline)),
		"scenarioMean":  format.Round2(mean(result.Shocked)),
	})
}

// respondRunError classifies simulation failures: caller-input problems
// (unknown scenario, bad horizon) are 400s, oracle failures are 500s.
func (h *handler) respondRunError(w http.ResponseWriter, err error, op string) {
	var unknownErr *scenario.UnknownScenarioError
	if errors.As(err, &unknownErr) {
		h.logger.Warn("unknown scenario requested",
			zap.String("op", op),
			zap.String("scenario", unknownErr.Key),
		)
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":     err.Error(),
			"validKeys": unknownErr.Valid,
		})
		return
	}

	var horizonErr *forecast.InvalidHorizonError
	if errors.As(err, &horizonErr) {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var oracleErr *forecast.OracleError
	if errors.As(err, &oracleErr) {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.respondError(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func buildWeekly(result *forecast.RunResult) []weeklyForecast {
	weekly := make([]weeklyForecast, 0, result.Weeks)
	for i := 0; i < result.Weeks; i++ {
		b := result.Baseline[i]
		s := result.Shocked[i]
		weekly = append(weekly, weeklyForecast{
			Week:     i + 1,
			Baseline: format.Round2(b),
			Scenario: format.Round2(s),
			Change:   format.Round2(s - b),
		})
	}
	return weekly
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
