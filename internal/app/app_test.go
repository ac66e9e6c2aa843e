package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestCreateApp(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("KAFKA_BROKERS", "localhost:9093")

	// Validate fx dependency graph
	require.NoError(t, fx.ValidateApp(CreateApp()))
}

func TestCreateScraperApp(t *testing.T) {
	t.Setenv("SCRAPER_START_URL", "https://example.com/archive")

	require.NoError(t, fx.ValidateApp(CreateScraperApp()))
}
