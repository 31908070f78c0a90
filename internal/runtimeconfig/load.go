package runtimeconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file on top of DefaultConfig, applies NEWSROOM_*
// environment overrides and validates the result. An empty path skips the
// file and only applies overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("newsroom config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("newsroom config: parsing %s: %w", path, err)
		}
	}

	ApplyEnv(&cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("newsroom config: validation: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides configuration values from environment variables using
// the supplied lookup function.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if cfg == nil || lookup == nil {
		return
	}
	str := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, target *bool) {
		if v, ok := lookup(key); ok {
			if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*target = parsed
			}
		}
	}

	str("NEWSROOM_STORAGE_PROVIDER", &cfg.Storage.Provider)
	str("NEWSROOM_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("NEWSROOM_STORAGE_DSN", &cfg.Storage.DSN)
	str("NEWSROOM_LOG_LEVEL", &cfg.Logging.Level)
	str("NEWSROOM_LOG_FORMAT", &cfg.Logging.Format)
	str("NEWSROOM_HTTP_ADDRESS", &cfg.HTTP.Address)
	str("NEWSROOM_AUTH_SECRET", &cfg.Auth.Secret)
	str("NEWSROOM_AUTH_ISSUER", &cfg.Auth.Issuer)
	str("NEWSROOM_AUTH_AUDIENCE", &cfg.Auth.Audience)
	str("NEWSROOM_EVENTS_URL", &cfg.Events.URL)
	str("NEWSROOM_RECONCILE_CRON", &cfg.Commands.ReconcileCron)
	boolean("NEWSROOM_AUTH_ENABLED", &cfg.Auth.Enabled)
	boolean("NEWSROOM_FEATURE_EVENTS", &cfg.Features.Events)
	boolean("NEWSROOM_FEATURE_METRICS", &cfg.Features.Metrics)
	boolean("NEWSROOM_COMMANDS_ENABLED", &cfg.Commands.Enabled)
}
