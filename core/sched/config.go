package sched

import "fmt"

// Config defines the cycle cadences and the retention age.
type Config struct {
	PollIntervalSeconds      int `json:"poll_interval_seconds"`
	RetentionIntervalSeconds int `json:"retention_interval_seconds"`
	RetentionMaxAgeDays      int `json:"retention_max_age_days"`
}

// SetDefaults applies the operational defaults: 60s polls, hourly retention,
// five days of history.
func (c *Config) SetDefaults() {
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = 60
	}
	if c.RetentionIntervalSeconds == 0 {
		c.RetentionIntervalSeconds = 3600
	}
	if c.RetentionMaxAgeDays == 0 {
		c.RetentionMaxAgeDays = 5
	}
}

// Validate checks that all cadences are positive.
func (c Config) Validate() error {
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	if c.RetentionIntervalSeconds <= 0 {
		return fmt.Errorf("retention_interval_seconds must be positive")
	}
	if c.RetentionMaxAgeDays <= 0 {
		return fmt.Errorf("retention_max_age_days must be positive")
	}
	return nil
}
