package feed

import (
	"fmt"
	"time"
)

// Config defines the feed endpoint and failure-handling parameters.
type Config struct {
	URL            string      `json:"url"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	Retry          RetryPolicy `json:"retry"`
}

// RetryPolicy is the explicit bounded-retry policy wrapping the transport
// call: total attempts, a doubling backoff schedule and the set of HTTP
// statuses worth retrying. Everything else short-circuits.
type RetryPolicy struct {
	MaxAttempts       int   `json:"max_attempts"`
	InitialBackoffMS  int   `json:"initial_backoff_ms"`
	RetryableStatuses []int `json:"retryable_statuses"`
}

// SetDefaults applies the operational defaults: 10s timeout, 3 attempts with
// 0.5s/1s backoff pauses, retry on upstream 5xx.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.InitialBackoffMS == 0 {
		c.Retry.InitialBackoffMS = 500
	}
	if len(c.Retry.RetryableStatuses) == 0 {
		c.Retry.RetryableStatuses = []int{500, 502, 503, 504}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("feed url is required")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive")
	}
	return nil
}

func (p RetryPolicy) initialBackoff() time.Duration {
	return time.Duration(p.InitialBackoffMS) * time.Millisecond
}

func (p RetryPolicy) retryableStatus(code int) bool {
	for _, s := range p.RetryableStatuses {
		if s == code {
			return true
		}
	}
	return false
}
