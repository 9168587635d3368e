// Package config handles the gloss config.yaml file.
package config

import "time"

// Config represents the contents of config.yaml.
type Config struct {
	Provider     string `yaml:"provider,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Model        string `yaml:"model,omitempty"`
	Timeout      string `yaml:"timeout,omitempty"`
	CheckTimeout string `yaml:"check_timeout,omitempty"`
	PromptsFile  string `yaml:"prompts_file,omitempty"`

	SharedKey SharedKeyConfig `yaml:"shared_key,omitempty"`
	Serve     ServeConfig     `yaml:"serve,omitempty"`
	Proxy     ProxyConfig     `yaml:"proxy,omitempty"`
	CLI       CLIConfig       `yaml:"cli,omitempty"`

	// APIKey comes from GLOSS_API_KEY only and is never written to disk.
	APIKey string `yaml:"-"`
}

// SharedKeyConfig enables the rationed fallback key.
type SharedKeyConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Key      string `yaml:"key,omitempty"`
	DailyCap int    `yaml:"daily_cap,omitempty"`
}

// ServeConfig holds settings for gloss serve.
type ServeConfig struct {
	Addr        string `yaml:"addr,omitempty"`
	AllowOrigin string `yaml:"allow_origin,omitempty"`
}

// ProxyConfig holds settings for gloss proxy.
type ProxyConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Upstream string `yaml:"upstream,omitempty"`
	Key      string `yaml:"key,omitempty"`
	DailyCap int    `yaml:"daily_cap,omitempty"`
}

// CLIConfig holds settings for the one-shot CLI commands.
type CLIConfig struct {
	// PersistSession saves the last analysis and its conversation to
	// last-session.json after every analyze, as --save does.
	PersistSession bool `yaml:"persist_session,omitempty"`
}

// FileName is the config file name inside Dir().
const FileName = "config.yaml"

// Defaults applied where the file leaves a field empty.
const (
	DefaultServeAddr     = "127.0.0.1:8787"
	DefaultProxyAddr     = "127.0.0.1:8788"
	DefaultProxyUpstream = "https://api.openai.com/v1"
)

// TimeoutDuration returns the parsed completion timeout, or fallback when
// unset or invalid.
func (c *Config) TimeoutDuration(fallback time.Duration) time.Duration {
	return parseDuration(c.Timeout, fallback)
}

// CheckTimeoutDuration returns the parsed diagnostics timeout, or fallback.
func (c *Config) CheckTimeoutDuration(fallback time.Duration) time.Duration {
	return parseDuration(c.CheckTimeout, fallback)
}

// ServeAddr returns serve.addr or DefaultServeAddr.
func (c *Config) ServeAddr() string {
	if c.Serve.Addr != "" {
		return c.Serve.Addr
	}
	return DefaultServeAddr
}

// ProxyAddr returns proxy.addr or DefaultProxyAddr.
func (c *Config) ProxyAddr() string {
	if c.Proxy.Addr != "" {
		return c.Proxy.Addr
	}
	return DefaultProxyAddr
}

// ProxyUpstream returns proxy.upstream or DefaultProxyUpstream.
func (c *Config) ProxyUpstream() string {
	if c.Proxy.Upstream != "" {
		return c.Proxy.Upstream
	}
	return DefaultProxyUpstream
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
