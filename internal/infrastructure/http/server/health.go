package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthTimeout bounds all component checks of one request
const HealthTimeout = 5 * time.Second

// Check probes one component. A failing critical check makes the service unhealthy,
// any other failing check makes it degraded.
type Check struct {
	Name     string
	Critical bool
	Probe    func(ctx context.Context) error
}

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	checks []Check
	logger zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(logger zerolog.Logger, checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// Handle is the fasthttp handler of GET /health
func (h *HealthHandler) Handle(rc *fasthttp.RequestCtx) {
	ctx, cancel := context.WithTimeout(context.Background(), HealthTimeout)
	defer cancel()

	response := h.Evaluate(ctx)

	statusCode := fasthttp.StatusOK
	if response.Status == HealthStatusUnhealthy {
		statusCode = fasthttp.StatusServiceUnavailable
	}

	logEvent := h.logger.Debug()
	if response.Status != HealthStatusHealthy {
		logEvent = h.logger.Warn()
	}
	logEvent.
		Str("status", string(response.Status)).
		Int("status_code", statusCode).
		Msg("Health check completed")

	body, err := json.Marshal(response)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health check response")
		rc.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	rc.SetContentType("application/json")
	rc.SetStatusCode(statusCode)
	rc.SetBody(body)
}

// Evaluate runs every check and derives the overall status
func (h *HealthHandler) Evaluate(ctx context.Context) HealthResponse {
	status := HealthStatusHealthy
	components := make([]ComponentHealth, 0, len(h.checks))

	for _, check := range h.checks {
		component := ComponentHealth{Name: check.Name, Healthy: true}
		if err := check.Probe(ctx); err != nil {
			component.Healthy = false
			component.Message = err.Error()

			if check.Critical {
				status = HealthStatusUnhealthy
			} else if status == HealthStatusHealthy {
				status = HealthStatusDegraded
			}
		}
		components = append(components, component)
	}

	return HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	}
}
