// Package config loads and validates the service configuration from a JSON
// or YAML file with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/veloops/stationd/core/metrics"
	"github.com/veloops/stationd/core/rebalance"
	"github.com/veloops/stationd/core/sched"
	"github.com/veloops/stationd/infra/feed"
	"github.com/veloops/stationd/infra/storage"
)

type Config struct {
	Feed      feed.Config      `json:"feed"`
	Storage   storage.Config   `json:"storage"`
	Scheduler sched.Config     `json:"scheduler"`
	Advisor   rebalance.Config `json:"advisor"`
	Metrics   metrics.Config   `json:"metrics"`
}

// Load reads the file at path, applies STATIOND_-prefixed environment
// overrides (STATIOND_FEED__URL → feed.url), fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("STATIOND_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "stationd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}

	cfg.Feed.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.Advisor.SetDefaults()
	cfg.Metrics.SetDefaults()

	if err := cfg.Feed.Validate(); err != nil {
		return nil, fmt.Errorf("feed config: %w", err)
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler config: %w", err)
	}
	if err := cfg.Advisor.Validate(); err != nil {
		return nil, fmt.Errorf("advisor config: %w", err)
	}
	return &cfg, nil
}
