// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buttuura/getcash/internal/metrics"
)

type Checker interface {
	Ping(ctx context.Context) error
}

type Config struct {
	DB          Checker
	Redis       Checker
	Counts      metrics.CountFunc
	Environment string
	Version     string
}

type Handler struct {
	db          Checker
	redis       Checker
	counts      metrics.CountFunc
	environment string
	version     string
	startedAt   time.Time
	ready       atomic.Bool
	shutdown    atomic.Bool
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		db:          cfg.DB,
		redis:       cfg.Redis,
		counts:      cfg.Counts,
		environment: cfg.Environment,
		version:     cfg.Version,
		startedAt:   time.Now(),
	}
}

// RegisterRoutes mounts the unauthenticated probes at the router root.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
}

// RegisterStatusRoute mounts the public status summary, normally under /api.
func (h *Handler) RegisterStatusRoute(r chi.Router) {
	r.Get("/status", h.Status)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, LivenessResponse{
			Status:    "shutting_down",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	h.writeStatus(w, http.StatusOK, LivenessResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC(),
		Environment: h.environment,
		Version:     h.version,
	})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status: "shutting_down",
		})
		return
	}

	if !h.ready.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status: "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := h.runHealthChecks(ctx)

	status := "ok"
	statusCode := http.StatusOK
	if !allHealthy(checks) {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	h.writeStatus(w, statusCode, ReadinessResponse{
		Status: status,
		Checks: checks,
	})
}

// Status reports entity counts next to dependency health. A failed count
// leaves Counts empty rather than failing the request.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := StatusResponse{
		Success:     true,
		Status:      "running",
		Environment: h.environment,
		Version:     h.version,
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
		GoVersion:   runtime.Version(),
		Checks:      h.runHealthChecks(ctx),
	}

	if h.counts != nil {
		if c, err := h.counts(ctx); err == nil {
			resp.Counts = &c
		}
	}

	h.writeStatus(w, http.StatusOK, resp)
}

func (h *Handler) runHealthChecks(ctx context.Context) []HealthCheck {
	var wg sync.WaitGroup
	checks := make([]HealthCheck, 2)

	wg.Add(2)

	go func() {
		defer wg.Done()
		checks[0] = check(ctx, "database", h.db)
	}()

	go func() {
		defer wg.Done()
		checks[1] = check(ctx, "redis", h.redis)
	}()

	wg.Wait()
	return checks
}

func check(ctx context.Context, name string, c Checker) HealthCheck {
	result := HealthCheck{
		Name:    name,
		Healthy: true,
	}

	if c == nil {
		result.Healthy = false
		result.Message = name + " checker not configured"
		return result
	}

	start := time.Now()
	err := c.Ping(ctx)
	result.Latency = time.Since(start).String()

	if err != nil {
		result.Healthy = false
		result.Message = "ping failed"
	}

	return result
}

func allHealthy(checks []HealthCheck) bool {
	for _, c := range checks {
		if !c.Healthy {
			return false
		}
	}
	return true
}

// SetReady opens /ready once routes are mounted. A new handler reports
// not_ready until then.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type LivenessResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment,omitempty"`
	Version     string    `json:"version,omitempty"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks,omitempty"`
}

type StatusResponse struct {
	Success     bool            `json:"success"`
	Status      string          `json:"status"`
	Environment string          `json:"environment"`
	Version     string          `json:"version"`
	Uptime      string          `json:"uptime"`
	GoVersion   string          `json:"goVersion"`
	Checks      []HealthCheck   `json:"checks"`
	Counts      *metrics.Counts `json:"counts,omitempty"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
