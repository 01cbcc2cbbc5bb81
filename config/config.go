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

	"github.com/kilianp07/groundsched/core/factory"
	"github.com/kilianp07/groundsched/core/metrics"
)

// EnvPrefix marks environment variables that override file settings.
// GS_SEARCH__HORIZON=12h sets search.horizon.
const EnvPrefix = "GS_"

type Config struct {
	Authority   factory.ModuleConfig `json:"authority"`
	Search      SearchConfig         `json:"search"`
	Reservation ReservationConfig    `json:"reservation"`
	Metrics     metrics.Config       `json:"metrics"`
	Logging     LoggingConfig        `json:"logging"`
	Sentry      SentryConfig         `json:"sentry"`
	Server      ServerConfig         `json:"server"`
}

// Load reads the optional file at path, applies environment overrides and
// defaults, then validates the result. An empty path loads from the
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
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
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section's defaults.
func (c *Config) SetDefaults() {
	if c.Authority.Type == "" {
		c.Authority.Type = "groundstation"
	}
	c.Search.SetDefaults()
	c.Reservation.SetDefaults()
	c.Metrics.SetDefaults()
	c.Logging.SetDefaults()
	c.Server.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"search", c.Search.Validate},
		{"logging", c.Logging.Validate},
		{"sentry", c.Sentry.Validate},
		{"server", c.Server.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.name, err)
		}
	}
	return nil
}
