package smoketest

import (
	"net/url"
	"strings"
	"time"

	"github.com/temirov/crates-smoke/internal/cargo"
	"github.com/temirov/crates-smoke/internal/registry"
)

const (
	// DefaultCrateName is the crate the smoke test publishes to the staging registry.
	DefaultCrateName = "crates-staging-test-tb"
	// DefaultTokenSource reads the registry token from the standard cargo variable.
	DefaultTokenSource = "env:CARGO_REGISTRY_TOKEN"

	configurationKeySeparatorConstant = "."
	crateNameKeyConstant              = "crate_name"
	skipPublishKeyConstant            = "skip_publish"
	tokenSourceKeyConstant            = "token_source"
	registryBaseURLKeyConstant        = "registry.base_url"
	registryUserAgentKeyConstant      = "registry.user_agent"
	registryTimeoutKeyConstant        = "registry.timeout"
	cargoRegistryNameKeyConstant      = "cargo.registry_name"
	cargoIndexURLKeyConstant          = "cargo.index_url"
)

// Configuration captures the smoke test settings loaded from configuration files and the environment.
type Configuration struct {
	CrateName   string                `mapstructure:"crate_name"`
	SkipPublish bool                  `mapstructure:"skip_publish"`
	TokenSource string                `mapstructure:"token_source"`
	Registry    RegistryConfiguration `mapstructure:"registry"`
	Cargo       CargoConfiguration    `mapstructure:"cargo"`
}

// RegistryConfiguration controls the registry API client.
type RegistryConfiguration struct {
	BaseURL   *url.URL      `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CargoConfiguration controls the registry cargo publishes to.
type CargoConfiguration struct {
	RegistryName string `mapstructure:"registry_name"`
	IndexURL     string `mapstructure:"index_url"`
}

// DefaultConfiguration targets the staging registry.
func DefaultConfiguration() Configuration {
	defaultBaseURL, _ := url.Parse(registry.DefaultBaseURL)
	return Configuration{
		CrateName:   DefaultCrateName,
		TokenSource: DefaultTokenSource,
		Registry: RegistryConfiguration{
			BaseURL:   defaultBaseURL,
			UserAgent: registry.DefaultUserAgent,
		},
		Cargo: CargoConfiguration{
			RegistryName: cargo.DefaultRegistryName,
			IndexURL:     cargo.DefaultIndexURL,
		},
	}
}

// DefaultConfigurationValues flattens DefaultConfiguration into configuration keys under keyPrefix.
func DefaultConfigurationValues(keyPrefix string) map[string]any {
	defaults := DefaultConfiguration()
	qualify := func(key string) string {
		trimmedPrefix := strings.TrimSpace(keyPrefix)
		if len(trimmedPrefix) == 0 {
			return key
		}
		return trimmedPrefix + configurationKeySeparatorConstant + key
	}

	return map[string]any{
		qualify(crateNameKeyConstant):         defaults.CrateName,
		qualify(skipPublishKeyConstant):       defaults.SkipPublish,
		qualify(tokenSourceKeyConstant):       defaults.TokenSource,
		qualify(registryBaseURLKeyConstant):   defaults.Registry.BaseURL.String(),
		qualify(registryUserAgentKeyConstant): defaults.Registry.UserAgent,
		qualify(registryTimeoutKeyConstant):   defaults.Registry.Timeout.String(),
		qualify(cargoRegistryNameKeyConstant): defaults.Cargo.RegistryName,
		qualify(cargoIndexURLKeyConstant):     defaults.Cargo.IndexURL,
	}
}

// Sanitize trims string settings and restores defaults for empty ones.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.CrateName = fallbackString(configuration.CrateName, defaults.CrateName)
	sanitized.TokenSource = fallbackString(configuration.TokenSource, defaults.TokenSource)
	sanitized.Registry.UserAgent = fallbackString(configuration.Registry.UserAgent, defaults.Registry.UserAgent)
	sanitized.Cargo.RegistryName = fallbackString(configuration.Cargo.RegistryName, defaults.Cargo.RegistryName)
	sanitized.Cargo.IndexURL = fallbackString(configuration.Cargo.IndexURL, defaults.Cargo.IndexURL)
	if sanitized.Registry.BaseURL == nil {
		sanitized.Registry.BaseURL = defaults.Registry.BaseURL
	}
	if sanitized.Registry.Timeout < 0 {
		sanitized.Registry.Timeout = 0
	}

	return sanitized
}

func fallbackString(candidateValue string, fallbackValue string) string {
	trimmedValue := strings.TrimSpace(candidateValue)
	if len(trimmedValue) == 0 {
		return fallbackValue
	}
	return trimmedValue
}
