// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package bootstrap implements gloss init: it writes a starter config.yaml,
// stores the API key and registers the MCP server for a project.
package bootstrap

import (
	"fmt"

	"github.com/davetashner/gloss/internal/credential"
	"github.com/davetashner/gloss/internal/testable"
)

// FS is the file system implementation used by this package.
// Override in tests with a testable.MockFileSystem.
var FS testable.FileSystem = testable.DefaultFS

// InitConfig holds the inputs for the init command.
type InitConfig struct {
	ConfigPath string // config.yaml to generate
	ProjectDir string // where .mcp.json is managed; empty skips it
	Force      bool
	Choices    *WizardResult   // nil writes defaults
	Store      credential.Store // receives Choices.APIKey; nil skips it
}

// Action records a single file operation performed during init.
type Action struct {
	File        string // e.g. "config.yaml", ".mcp.json"
	Operation   string // "created", "updated", "skipped"
	Description string // human-readable detail
}

// InitResult holds the outcome of an init run.
type InitResult struct {
	Actions []Action
}

// Run generates the config, stores the key and updates .mcp.json, in that
// order. It stops at the first failure.
func Run(cfg InitConfig) (*InitResult, error) {
	choices := cfg.Choices
	if choices == nil {
		choices = DefaultChoices()
	}
	result := &InitResult{}

	configAction, err := GenerateConfig(cfg.ConfigPath, choices, cfg.Force)
	if err != nil {
		return nil, err
	}
	result.Actions = append(result.Actions, configAction)

	if cfg.Store != nil && choices.APIKey != "" {
		if err := cfg.Store.Set(credential.KeyName, choices.APIKey); err != nil {
			return nil, fmt.Errorf("storing API key: %w", err)
		}
		result.Actions = append(result.Actions, Action{
			File:        "credentials.json",
			Operation:   "updated",
			Description: fmt.Sprintf("stored API key (%d characters)", len(choices.APIKey)),
		})
	}

	if cfg.ProjectDir != "" {
		mcpAction, err := GenerateMCPConfig(cfg.ProjectDir)
		if err != nil {
			return nil, err
		}
		result.Actions = append(result.Actions, mcpAction)
	}

	return result, nil
}
