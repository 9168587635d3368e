package config

import "os"

// Environment variables that override the file.
const (
	EnvAPIKey   = "GLOSS_API_KEY"
	EnvBaseURL  = "GLOSS_BASE_URL"
	EnvModel    = "GLOSS_MODEL"
	EnvProvider = "GLOSS_PROVIDER"
	EnvProxyKey = "GLOSS_PROXY_KEY"
)

// Merge combines a base config with overrides. Non-zero override fields
// take precedence; zero-value fields fall through to base.
func Merge(base, override *Config) *Config {
	result := *base

	if override.Provider != "" {
		result.Provider = override.Provider
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.CheckTimeout != "" {
		result.CheckTimeout = override.CheckTimeout
	}
	if override.PromptsFile != "" {
		result.PromptsFile = override.PromptsFile
	}
	if override.APIKey != "" {
		result.APIKey = override.APIKey
	}

	// SharedKey: Enabled can only be switched on by an override.
	if override.SharedKey.Enabled {
		result.SharedKey.Enabled = true
	}
	if override.SharedKey.Key != "" {
		result.SharedKey.Key = override.SharedKey.Key
	}
	if override.SharedKey.DailyCap > 0 {
		result.SharedKey.DailyCap = override.SharedKey.DailyCap
	}

	if override.Serve.Addr != "" {
		result.Serve.Addr = override.Serve.Addr
	}
	if override.Serve.AllowOrigin != "" {
		result.Serve.AllowOrigin = override.Serve.AllowOrigin
	}

	if override.Proxy.Addr != "" {
		result.Proxy.Addr = override.Proxy.Addr
	}
	if override.Proxy.Upstream != "" {
		result.Proxy.Upstream = override.Proxy.Upstream
	}
	if override.Proxy.Key != "" {
		result.Proxy.Key = override.Proxy.Key
	}
	if override.Proxy.DailyCap > 0 {
		result.Proxy.DailyCap = override.Proxy.DailyCap
	}

	if override.CLI.PersistSession {
		result.CLI.PersistSession = true
	}

	return &result
}

// FromEnv builds an override Config from the GLOSS_* variables read through
// getenv. A nil getenv uses os.Getenv.
func FromEnv(getenv func(string) string) *Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Config{
		APIKey:   getenv(EnvAPIKey),
		BaseURL:  getenv(EnvBaseURL),
		Model:    getenv(EnvModel),
		Provider: getenv(EnvProvider),
		Proxy:    ProxyConfig{Key: getenv(EnvProxyKey)},
	}
}

// ApplyEnv returns cfg with environment overrides applied.
func ApplyEnv(cfg *Config, getenv func(string) string) *Config {
	return Merge(cfg, FromEnv(getenv))
}
