// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/davetashner/gloss/internal/testable"
)

const configHeader = `# gloss configuration
# Generated by "gloss init". Edit freely or use "gloss config set".
# The API key is not stored here; see "gloss key status".

`

// starterConfig mirrors the subset of config.Config that init writes.
type starterConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Timeout  string `yaml:"timeout"`
}

// GenerateConfig writes config.yaml at path from choices. An existing file is
// left alone unless force is set.
func GenerateConfig(path string, choices *WizardResult, force bool) (Action, error) {
	name := filepath.Base(path)

	if !force {
		if _, err := FS.Stat(path); err == nil {
			return Action{
				File:        name,
				Operation:   "skipped",
				Description: "already exists (use --force to overwrite)",
			}, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Action{}, fmt.Errorf("checking %s: %w", name, err)
		}
	}

	out, err := yaml.Marshal(starterConfig{
		Provider: choices.Provider,
		BaseURL:  choices.BaseURL,
		Model:    choices.Model,
		Timeout:  choices.Timeout,
	})
	if err != nil {
		return Action{}, fmt.Errorf("marshaling %s: %w", name, err)
	}
	data := append([]byte(configHeader), out...)

	if err := FS.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Action{}, fmt.Errorf("creating config directory: %w", err)
	}
	if err := testable.WriteFileAtomic(FS, path, data, 0o600); err != nil {
		return Action{}, fmt.Errorf("writing %s: %w", name, err)
	}

	return Action{
		File:        name,
		Operation:   "created",
		Description: fmt.Sprintf("provider %s, model %s", choices.Provider, modelLabel(choices.Model)),
	}, nil
}

func modelLabel(m string) string {
	if m == "" {
		return "(provider default)"
	}
	return m
}
