// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/davetashner/gloss/internal/completion"
	"github.com/davetashner/gloss/internal/config"
	"github.com/davetashner/gloss/internal/credential"
	"github.com/davetashner/gloss/internal/diagnose"
	"github.com/davetashner/gloss/internal/langdetect"
	"github.com/davetashner/gloss/internal/llm"
	"github.com/davetashner/gloss/internal/orchestrator"
	"github.com/davetashner/gloss/internal/prompt"
)

// Endpoints probed by diagnose when no base_url is configured.
const (
	openAIEndpoint    = "https://api.openai.com/v1"
	anthropicEndpoint = "https://api.anthropic.com/v1"
)

// providerFactory builds the completion backend for cfg. Tests replace it.
var providerFactory = func(cfg *config.Config) llm.Factory {
	var opts []llm.Option
	if cfg.BaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.BaseURL))
	}
	return llm.NewFactory(cfg.Provider, opts...)
}

// networkProbes returns the reachability probes for endpoint. Tests replace
// it to stay offline.
var networkProbes = diagnose.DefaultProbes

// app is the wired engine shared by every command.
type app struct {
	cfg      *config.Config
	resolver *credential.Resolver
	orch     *orchestrator.Orchestrator

	// persist makes saveSession write last-session.json.
	persist bool
}

// loadConfig reads the config file, applies GLOSS_* overrides and validates
// the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile())
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "loading config: %v", err)
	}
	cfg = config.ApplyEnv(cfg, nil)
	if err := config.Validate(cfg); err != nil {
		return nil, exitError(ExitInvalidArgs, "%v", err)
	}
	return cfg, nil
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.Path()
}

// newApp wires the orchestrator from configuration.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	var fallback credential.Fallback
	if cfg.SharedKey.Enabled {
		fallback = credential.NewSharedKey(cfg.SharedKey.Key, cfg.SharedKey.DailyCap)
	}
	a.resolver = credential.NewResolver(credential.NewFileStore(config.Dir()), fallback).WithEnvKey(cfg.APIKey)

	var overrides map[langdetect.Tag]string
	if cfg.PromptsFile != "" {
		overrides, err = prompt.LoadOverrides(cfg.PromptsFile)
		if err != nil {
			return nil, exitError(ExitInvalidArgs, "loading prompts: %v", err)
		}
	}

	factory := providerFactory(cfg)
	client := completion.New(factory,
		completion.WithModel(cfg.Model),
		completion.WithTimeout(cfg.TimeoutDuration(completion.DefaultTimeout)),
	)
	diagnoser := diagnose.New(a.resolver, factory, client,
		diagnose.WithProbes(networkProbes(endpointFor(cfg))),
		diagnose.WithCheckTimeout(cfg.CheckTimeoutDuration(diagnose.DefaultCheckTimeout)),
	)

	a.orch = orchestrator.New(orchestrator.Deps{
		Client:    client,
		Resolver:  a.resolver,
		Composer:  prompt.NewComposer(overrides),
		Diagnoser: diagnoser,
	})
	return a, nil
}

// endpointFor returns the URL requests for cfg are sent to.
func endpointFor(cfg *config.Config) string {
	switch {
	case cfg.BaseURL != "":
		return cfg.BaseURL
	case cfg.Provider == llm.ProviderAnthropic:
		return anthropicEndpoint
	default:
		return openAIEndpoint
	}
}
