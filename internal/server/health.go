package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hireloop/hireloop/internal/campaign"
)

// Health status constants for health check responses.
const (
	healthStatusOK       = "ok"
	healthStatusNotReady = "not ready"
)

// SummaryFunc reports the current campaign progress. Optional; the progress
// endpoint includes outcome counts when one is provided.
type SummaryFunc func() campaign.Summary

// HealthChecker provides health check endpoints for the metrics listener.
type HealthChecker struct {
	// ready indicates whether a campaign run is in progress
	ready atomic.Bool
	// summary reports campaign progress, may be nil
	summary SummaryFunc
	// startTime tracks when the run started
	startTime time.Time
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker(summary SummaryFunc) *HealthChecker {
	h := &HealthChecker{
		summary:   summary,
		startTime: time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the run is still in progress.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// ProgressResponse provides run progress alongside liveness.
type ProgressResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Total   int    `json:"total,omitempty"`
	Sent    int    `json:"sent,omitempty"`
	Failed  int    `json:"failed,omitempty"`
	Skipped int    `json:"skipped,omitempty"`
	Pending int    `json:"pending,omitempty"`
}

// LivenessHandler returns an HTTP handler for the /healthz endpoint.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		_ = json.NewEncoder(w).Encode(HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler returns an HTTP handler for the /readyz endpoint.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		response := HealthResponse{Status: healthStatusOK}
		if !h.ready.Load() {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// ProgressHandler returns an HTTP handler for the /progress endpoint. It
// reports uptime and per-outcome counts for the run in flight.
func (h *HealthChecker) ProgressHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := ProgressResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if !h.ready.Load() {
			response.Status = healthStatusNotReady
		}
		if h.summary != nil {
			s := h.summary()
			response.Total = s.Total
			response.Sent = s.Sent
			response.Failed = s.Failed
			response.Skipped = s.Skipped
			response.Pending = s.Pending
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/progress", h.ProgressHandler())
}
