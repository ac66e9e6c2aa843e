package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("connection refused") }

func TestHealthHandler_Evaluate(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
		want   HealthStatus
	}{
		{"no checks", nil, HealthStatusHealthy},
		{"all healthy", []Check{{Name: "database", Critical: true, Probe: ok}, {Name: "redis", Probe: ok}}, HealthStatusHealthy},
		{"optional down", []Check{{Name: "database", Critical: true, Probe: ok}, {Name: "redis", Probe: fail}}, HealthStatusDegraded},
		{"critical down", []Check{{Name: "database", Critical: true, Probe: fail}, {Name: "redis", Probe: fail}}, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(zerolog.Nop(), tt.checks...)
			resp := h.Evaluate(context.Background())
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Components, len(tt.checks))
		})
	}
}

func TestHealthHandler_Handle(t *testing.T) {
	h := NewHealthHandler(zerolog.Nop(), Check{Name: "database", Critical: true, Probe: fail})

	var rc fasthttp.RequestCtx
	rc.Request.Header.SetMethod(fasthttp.MethodGet)
	rc.Request.SetRequestURI("/health")
	h.Handle(&rc)

	assert.Equal(t, fasthttp.StatusServiceUnavailable, rc.Response.StatusCode())

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rc.Response.Body(), &body))
	assert.Equal(t, HealthStatusUnhealthy, body.Status)
	require.Len(t, body.Components, 1)
	assert.Equal(t, "connection refused", body.Components[0].Message)
}
