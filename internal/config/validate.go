// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package config

import (
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/davetashner/gloss/internal/llm"
)

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.Provider {
	case "", llm.ProviderOpenAI, llm.ProviderAnthropic:
		// valid
	default:
		errs = append(errs, fmt.Sprintf("provider: invalid value %q (must be %s or %s)", cfg.Provider, llm.ProviderOpenAI, llm.ProviderAnthropic))
	}

	if cfg.BaseURL != "" {
		if err := checkURL(cfg.BaseURL); err != nil {
			errs = append(errs, fmt.Sprintf("base_url: %v", err))
		}
	}

	for _, d := range []struct{ key, val string }{
		{"timeout", cfg.Timeout},
		{"check_timeout", cfg.CheckTimeout},
	} {
		if d.val == "" {
			continue
		}
		v, err := time.ParseDuration(d.val)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", d.key, d.val))
		} else if v <= 0 {
			errs = append(errs, fmt.Sprintf("%s: must be positive, got %s", d.key, d.val))
		}
	}

	if cfg.SharedKey.Enabled && cfg.SharedKey.Key == "" {
		errs = append(errs, "shared_key.key: required when shared_key.enabled is true")
	}
	if cfg.SharedKey.Key != "" {
		if _, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cfg.SharedKey.Key)); err != nil {
			errs = append(errs, "shared_key.key: must be base64-encoded")
		}
	}
	if cfg.SharedKey.DailyCap < 0 {
		errs = append(errs, fmt.Sprintf("shared_key.daily_cap: must be non-negative, got %d", cfg.SharedKey.DailyCap))
	}

	for _, a := range []struct{ key, val string }{
		{"serve.addr", cfg.Serve.Addr},
		{"proxy.addr", cfg.Proxy.Addr},
	} {
		if a.val == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(a.val); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", a.key, err))
		}
	}

	if cfg.Proxy.Upstream != "" {
		if err := checkURL(cfg.Proxy.Upstream); err != nil {
			errs = append(errs, fmt.Sprintf("proxy.upstream: %v", err))
		}
	}
	if cfg.Proxy.DailyCap < 0 {
		errs = append(errs, fmt.Sprintf("proxy.daily_cap: must be non-negative, got %d", cfg.Proxy.DailyCap))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}
