// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/davetashner/gloss/internal/testable"
)

// Dir returns the directory for gloss configuration and credentials.
// It uses $XDG_CONFIG_HOME/gloss if set, otherwise ~/.config/gloss.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gloss")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gloss")
}

// Path returns the path to the default config file.
func Path() string {
	return filepath.Join(Dir(), FileName)
}

// Load reads the config file at path.
// If the file does not exist, it returns a zero-value Config and nil error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user config path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadRaw reads the config file at path as a generic map, for edits that
// must keep keys gloss does not model. A missing file yields an empty map.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user config path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// Write marshals the config to YAML and writes it to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close() //nolint:errcheck // best-effort close
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// WriteFile marshals data to YAML and replaces the file at path. The file may
// hold keys, so it is created with owner-only permissions.
func WriteFile(path string, data map[string]any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	if err := testable.DefaultFS.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return testable.WriteFileAtomic(testable.DefaultFS, path, out, 0o600)
}
