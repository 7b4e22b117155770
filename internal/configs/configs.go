/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures the client by reading operating system environment variables,
including the running environment, the REST API base URL, the live-connection
base URL, the session token, and the durable request timeout.
*/
package configs

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultRequestTimeout is the fixed timeout applied to every durable REST call.
const DefaultRequestTimeout = 30 * time.Second

// AppConfig contains all configuration parameters required for the client to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Settings
	Environment string

	// Backend Endpoints
	APIBaseURL string
	WSBaseURL  string

	// Security Settings
	AuthToken string

	// Durable call timeout
	RequestTimeout time.Duration
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type
// conversions and validation. It returns a pointer to the AppConfig struct and any
// error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// --- Backend Endpoints ---
	// APIBaseURL
	cfg.APIBaseURL = os.Getenv("API_BASE_URL")
	if cfg.APIBaseURL == "" {
		if cfg.Environment == "development" {
			cfg.APIBaseURL = "http://localhost:8080"
		} else {
			return nil, fmt.Errorf("API_BASE_URL environment variable is required in %s environment", cfg.Environment)
		}
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL environment variable: %w", err)
	}
	cfg.APIBaseURL = strings.TrimSuffix(cfg.APIBaseURL, "/")

	// WSBaseURL; derived from APIBaseURL when not set explicitly
	cfg.WSBaseURL = os.Getenv("WS_BASE_URL")
	if cfg.WSBaseURL == "" {
		cfg.WSBaseURL = deriveWSBaseURL(cfg.APIBaseURL)
	}
	cfg.WSBaseURL = strings.TrimSuffix(cfg.WSBaseURL, "/")

	// --- Security Settings ---
	// AuthToken; the session is established out of band, the client only carries the token
	cfg.AuthToken = os.Getenv("AUTH_TOKEN")

	// --- Durable call timeout ---
	timeoutStr := os.Getenv("REQUEST_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		cfg.RequestTimeout = DefaultRequestTimeout
	} else {
		seconds, err := strconv.Atoi(timeoutStr)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS environment variable: %q", timeoutStr)
		}
		cfg.RequestTimeout = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

// deriveWSBaseURL maps an http(s) base URL onto its ws(s) counterpart.
func deriveWSBaseURL(apiBaseURL string) string {
	switch {
	case strings.HasPrefix(apiBaseURL, "https://"):
		return "wss://" + strings.TrimPrefix(apiBaseURL, "https://")
	case strings.HasPrefix(apiBaseURL, "http://"):
		return "ws://" + strings.TrimPrefix(apiBaseURL, "http://")
	default:
		return apiBaseURL
	}
}
