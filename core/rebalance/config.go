package rebalance

import "fmt"

// Config defines advisory parameters loaded from configuration.
type Config struct {
	// HorizonMinutes is how far ahead each station is forecast.
	HorizonMinutes int `json:"horizon_minutes"`
	// MaxPoints bounds the history window fed to the trend estimator.
	MaxPoints int `json:"max_points"`
	// EmptyThreshold marks a station at empty risk when the predicted
	// pickup count falls to this value or below.
	EmptyThreshold int `json:"empty_threshold"`
	// FullThreshold marks a station at full risk when the predicted number
	// of empty docks falls to this value or below.
	FullThreshold int `json:"full_threshold"`
	// TargetLowRatio is the refill target as a fraction of capacity.
	TargetLowRatio float64 `json:"target_low_ratio"`
	// TargetHighRatio is the drain target as a fraction of capacity.
	TargetHighRatio float64 `json:"target_high_ratio"`
	// TopK truncates each ranked list.
	TopK int `json:"top_k"`
	// IntervalSeconds drives the optional periodic advisory publisher.
	// Zero disables it; one-shot runs via the CLI are always available.
	IntervalSeconds int `json:"interval_seconds"`
}

// SetDefaults applies the operational defaults.
func (c *Config) SetDefaults() {
	if c.HorizonMinutes == 0 {
		c.HorizonMinutes = 30
	}
	if c.MaxPoints == 0 {
		c.MaxPoints = 30
	}
	if c.EmptyThreshold == 0 {
		c.EmptyThreshold = 1
	}
	if c.FullThreshold == 0 {
		c.FullThreshold = 1
	}
	if c.TargetLowRatio == 0 {
		c.TargetLowRatio = 0.40
	}
	if c.TargetHighRatio == 0 {
		c.TargetHighRatio = 0.60
	}
	if c.TopK == 0 {
		c.TopK = 20
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.HorizonMinutes <= 0 {
		return fmt.Errorf("horizon_minutes must be positive")
	}
	if c.MaxPoints <= 0 {
		return fmt.Errorf("max_points must be positive")
	}
	if c.TargetLowRatio <= 0 || c.TargetLowRatio >= 1 {
		return fmt.Errorf("target_low_ratio must be in (0,1)")
	}
	if c.TargetHighRatio <= 0 || c.TargetHighRatio >= 1 {
		return fmt.Errorf("target_high_ratio must be in (0,1)")
	}
	if c.TargetLowRatio > c.TargetHighRatio {
		return fmt.Errorf("target_low_ratio must not exceed target_high_ratio")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	return nil
}
