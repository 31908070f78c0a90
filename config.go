package newsroom

import "github.com/goliatone/go-newsroom/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired     = runtimeconfig.ErrStorageDSNRequired
	ErrEventLimitInvalid      = runtimeconfig.ErrEventLimitInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
	ErrHTTPAddressRequired    = runtimeconfig.ErrHTTPAddressRequired
	ErrAuthSecretRequired     = runtimeconfig.ErrAuthSecretRequired
	ErrEventsURLRequired      = runtimeconfig.ErrEventsURLRequired
	ErrReconcileCronInvalid   = runtimeconfig.ErrReconcileCronInvalid
)

type (
	Config                   = runtimeconfig.Config
	StorageConfig            = runtimeconfig.StorageConfig
	WorkflowConfig           = runtimeconfig.WorkflowConfig
	WorkflowTransitionConfig = runtimeconfig.WorkflowTransitionConfig
	LoggingConfig            = runtimeconfig.LoggingConfig
	HTTPConfig               = runtimeconfig.HTTPConfig
	AuthConfig               = runtimeconfig.AuthConfig
	EventsConfig             = runtimeconfig.EventsConfig
	MetricsConfig            = runtimeconfig.MetricsConfig
	CommandsConfig           = runtimeconfig.CommandsConfig
	Features                 = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over the defaults and applies NEWSROOM_* overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
