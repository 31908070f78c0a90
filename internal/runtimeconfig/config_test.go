package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-newsroom/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsUnknownStorageProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "mongo"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RequiresDSNForBun(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Driver = "oracle"
	cfg.Storage.DSN = "x"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInconsistentEventLimits(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Workflow.DefaultEventLimit = 100
	cfg.Workflow.MaxEventLimit = 10

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrEventLimitInvalid) {
		t.Fatalf("expected ErrEventLimitInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_SkipsLoggingChecksWhenFeatureDisabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = false
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestConfigValidate_RequiresAuthSecret(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Auth.Enabled = true

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAuthSecretRequired) {
		t.Fatalf("expected ErrAuthSecretRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresEventsURL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Events = true

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrEventsURLRequired) {
		t.Fatalf("expected ErrEventsURLRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidReconcileCron(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Commands.Enabled = true
	cfg.Commands.ReconcileCron = "every now and then"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrReconcileCronInvalid) {
		t.Fatalf("expected ErrReconcileCronInvalid, got %v", err)
	}
}

func TestLoadReadsYAMLAndAppliesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsroom.yaml")
	payload := []byte(`
storage:
  provider: bun
  driver: sqlite
  dsn: "file:newsroom.db"
workflow:
  default_event_limit: 20
  max_event_limit: 40
logging:
  level: debug
`)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NEWSROOM_LOG_LEVEL", "warn")

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Provider != "bun" || cfg.Storage.DSN != "file:newsroom.db" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Workflow.DefaultEventLimit != 20 || cfg.Workflow.MaxEventLimit != 40 {
		t.Fatalf("unexpected workflow limits %+v", cfg.Workflow)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env override for log level, got %q", cfg.Logging.Level)
	}
	if cfg.HTTP.BasePath != "/admin/api" {
		t.Fatalf("expected defaults to survive, got %q", cfg.HTTP.BasePath)
	}
}

func TestLoadFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsroom.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  provider: tape\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runtimeconfig.Load(path); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestApplyEnvParsesBooleans(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	env := map[string]string{
		"NEWSROOM_FEATURE_EVENTS": "true",
		"NEWSROOM_EVENTS_URL":     "nats://localhost:4222",
		"NEWSROOM_AUTH_ENABLED":   "not-a-bool",
	}
	runtimeconfig.ApplyEnv(&cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	if !cfg.Features.Events || cfg.Events.URL != "nats://localhost:4222" {
		t.Fatalf("expected events overrides, got %+v %+v", cfg.Features, cfg.Events)
	}
	if cfg.Auth.Enabled {
		t.Fatalf("expected invalid boolean to be ignored")
	}
}
