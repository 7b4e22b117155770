package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("WS_BASE_URL", "")
	t.Setenv("AUTH_TOKEN", "")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:8080", cfg.WSBaseURL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
}

func TestLoadConfigProductionRequiresAPIBaseURL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("API_BASE_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigDerivesWSBaseURL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("API_BASE_URL", "https://portal.example.com/")
	t.Setenv("WS_BASE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://portal.example.com", cfg.APIBaseURL)
	assert.Equal(t, "wss://portal.example.com", cfg.WSBaseURL)
}

func TestLoadConfigExplicitWSBaseURLWins(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("API_BASE_URL", "http://localhost:8080")
	t.Setenv("WS_BASE_URL", "ws://realtime.example.com/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "ws://realtime.example.com", cfg.WSBaseURL)
}

func TestLoadConfigRequestTimeout(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)

	t.Setenv("REQUEST_TIMEOUT_SECONDS", "zero")
	_, err = LoadConfig()
	require.Error(t, err)

	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-5")
	_, err = LoadConfig()
	require.Error(t, err)
}
