package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the polling and retry budgets of a provisioning run.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval      time.Duration // Delay between readiness and operation status polls
	PollAttempts      int           // Status polls before giving up
	HTTPTimeout       time.Duration // Per-request timeout of the control plane client
	RetryMaxAttempts  int           // Attempts for calls retried across propagation delay
	RetryInitialDelay time.Duration // Delay between those attempts
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - PIPELINEKIT_POLL_INTERVAL (default: 2s)
//   - PIPELINEKIT_POLL_ATTEMPTS (default: 20)
//   - PIPELINEKIT_HTTP_TIMEOUT (default: 60s)
//   - PIPELINEKIT_RETRY_MAX_ATTEMPTS (default: 20)
//   - PIPELINEKIT_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:      parseDuration("PIPELINEKIT_POLL_INTERVAL", 2*time.Second),
		PollAttempts:      parseInt("PIPELINEKIT_POLL_ATTEMPTS", 20),
		HTTPTimeout:       parseDuration("PIPELINEKIT_HTTP_TIMEOUT", 60*time.Second),
		RetryMaxAttempts:  parseInt("PIPELINEKIT_RETRY_MAX_ATTEMPTS", 20),
		RetryInitialDelay: parseDuration("PIPELINEKIT_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return defaultVal
	}

	return i
}
