package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrStorageProviderUnknown = errors.New("newsroom config: storage provider is invalid")
var ErrStorageDriverUnknown = errors.New("newsroom config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("newsroom config: storage dsn is required for the bun provider")
var ErrEventLimitInvalid = errors.New("newsroom config: workflow event limits must be positive and default must not exceed max")
var ErrLoggingProviderUnknown = errors.New("newsroom config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("newsroom config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("newsroom config: logging format is invalid")
var ErrHTTPAddressRequired = errors.New("newsroom config: http address is required")

// ErrAuthSecretRequired indicates JWT resolution was requested without a signing secret.
var ErrAuthSecretRequired = errors.New("newsroom config: auth secret is required when auth is enabled")

// ErrEventsURLRequired indicates the events feature was enabled without a NATS url.
var ErrEventsURLRequired = errors.New("newsroom config: events url is required when events feature is enabled")

// ErrReconcileCronInvalid indicates the reconcile schedule cannot be parsed.
var ErrReconcileCronInvalid = errors.New("newsroom config: reconcile cron expression is invalid")

// Config aggregates adapter bindings and feature flags for the newsroom module.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Events   EventsConfig   `yaml:"events"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Commands CommandsConfig `yaml:"commands"`
	Features Features       `yaml:"features"`
}

// StorageConfig selects where article state, audit events and comments live.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
}

// WorkflowConfig tunes the workflow engine.
type WorkflowConfig struct {
	// Transitions replaces the built-in rule table when non-empty.
	Transitions       []WorkflowTransitionConfig `yaml:"transitions"`
	DefaultEventLimit int                        `yaml:"default_event_limit"`
	MaxEventLimit     int                        `yaml:"max_event_limit"`
}

// WorkflowTransitionConfig describes one action of the rule table.
type WorkflowTransitionConfig struct {
	Action      string   `yaml:"action"`
	From        []string `yaml:"from"`
	To          string   `yaml:"to"`
	MinRole     string   `yaml:"min_role"`
	Description string   `yaml:"description"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// HTTPConfig configures the admin API listener.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	BasePath     string        `yaml:"base_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AuthConfig configures bearer token resolution of actors.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	Leeway   time.Duration `yaml:"leeway"`
}

// EventsConfig configures the NATS event sink.
type EventsConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ReconcileCron string `yaml:"reconcile_cron"`
}

// Features toggles module functionality.
type Features struct {
	Comments bool `yaml:"comments"`
	Events   bool `yaml:"events"`
	Metrics  bool `yaml:"metrics"`
	Logger   bool `yaml:"logger"`
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite",
		},
		Workflow: WorkflowConfig{
			DefaultEventLimit: 50,
			MaxEventLimit:     500,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
		HTTP: HTTPConfig{
			Address:      ":8080",
			BasePath:     "/admin/api",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Leeway: 30 * time.Second,
		},
		Events: EventsConfig{
			SubjectPrefix: "newsroom.workflow",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Commands: CommandsConfig{
			ReconcileCron: "@every 15m",
		},
		Features: Features{
			Comments: true,
			Logger:   true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Provider) {
	case "memory":
	case "bun":
		if !isSupportedDriver(cfg.Storage.Driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if cfg.Workflow.DefaultEventLimit <= 0 || cfg.Workflow.MaxEventLimit <= 0 ||
		cfg.Workflow.DefaultEventLimit > cfg.Workflow.MaxEventLimit {
		return ErrEventLimitInvalid
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	if strings.TrimSpace(cfg.HTTP.Address) == "" {
		return ErrHTTPAddressRequired
	}
	if cfg.Auth.Enabled && strings.TrimSpace(cfg.Auth.Secret) == "" {
		return ErrAuthSecretRequired
	}
	if cfg.Features.Events && strings.TrimSpace(cfg.Events.URL) == "" {
		return ErrEventsURLRequired
	}
	if cfg.Commands.Enabled {
		if spec := strings.TrimSpace(cfg.Commands.ReconcileCron); spec != "" {
			if _, err := cron.ParseStandard(spec); err != nil {
				return fmt.Errorf("%w: %v", ErrReconcileCronInvalid, err)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	switch normalize(driver) {
	case "sqlite", "sqlite3", "postgres", "pgx":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
