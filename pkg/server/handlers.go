package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// Readiness is implemented by *schedule.Scheduler.
type Readiness interface {
	IsRunning() bool
	NextRun() *time.Time
}

// HealthHandler handles liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler reports whether cleaning passes are scheduled.
type ReadyHandler struct {
	Readiness Readiness
}

// NewReadyHandler creates a new readiness check handler.
func NewReadyHandler(r Readiness) *ReadyHandler {
	return &ReadyHandler{Readiness: r}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":    "not_ready",
		"timestamp": time.Now().Unix(),
	}
	statusCode := http.StatusServiceUnavailable

	if h.Readiness != nil && h.Readiness.IsRunning() {
		response["status"] = "ready"
		statusCode = http.StatusOK
		if next := h.Readiness.NextRun(); next != nil {
			response["next_run"] = next.UTC().Format(time.RFC3339)
		}
	}

	writeJSON(w, statusCode, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
