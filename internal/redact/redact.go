// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package redact provides utilities to strip sensitive values from strings
// before they appear in output, logs, or error messages.
package redact

import (
	"os"
	"strings"
	"sync"
)

// sensitiveEnvVars lists environment variable names whose values must never
// appear in output.
var sensitiveEnvVars = []string{
	"GLOSS_API_KEY",
	"GLOSS_PROXY_KEY",
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
}

// minSecretLen guards against false-positive redaction of short values.
const minSecretLen = 4

var (
	mu         sync.RWMutex
	envSecrets []string
	registered []string
	cacheOnce  sync.Once
)

func loadSecrets() {
	mu.Lock()
	defer mu.Unlock()
	for _, envVar := range sensitiveEnvVars {
		val := os.Getenv(envVar)
		if len(val) >= minSecretLen {
			envSecrets = append(envSecrets, val)
		}
	}
}

// ResetForTest drops cached and registered secrets so tests can verify
// redaction after setting env vars with t.Setenv.
func ResetForTest() {
	mu.Lock()
	defer mu.Unlock()
	envSecrets = nil
	registered = nil
	cacheOnce = sync.Once{}
}

// Register adds a secret learned at runtime, such as a key read from the
// credential store.
func Register(secret string) {
	if len(secret) < minSecretLen {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	for _, s := range registered {
		if s == secret {
			return
		}
	}
	registered = append(registered, secret)
}

// String replaces any occurrence of a known secret with "[REDACTED]".
// Environment values are cached on first call.
func String(s string) string {
	cacheOnce.Do(loadSecrets)
	mu.RLock()
	defer mu.RUnlock()
	for _, secret := range envSecrets {
		s = strings.ReplaceAll(s, secret, "[REDACTED]")
	}
	for _, secret := range registered {
		s = strings.ReplaceAll(s, secret, "[REDACTED]")
	}
	return s
}

// maskPrefix is how much of a key Mask reveals.
const maskPrefix = 7

// Mask returns a loggable form of key: its first seven characters followed
// by "...". Keys too short to mask safely become "***"; an empty key stays
// empty.
func Mask(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= maskPrefix+4:
		return "***"
	default:
		return key[:maskPrefix] + "..."
	}
}
