// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package credential decides which API key a request uses and keeps the
// user's key on disk.
package credential

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/davetashner/gloss/internal/quota"
	"github.com/davetashner/gloss/internal/redact"
)

// Source says where a resolved key came from.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceEnv      Source = "env"
	SourceStored   Source = "stored"
	SourceShared   Source = "shared"
)

// Credential is a resolved key.
type Credential struct {
	Key    string
	Source Source
}

// Fallback supplies a last-resort key.
type Fallback interface {
	// Key returns a key, or false when none is available right now.
	Key() (string, bool)
}

// SharedKey is a base64-encoded key shared between users and rationed by a
// daily counter. The counter lives in this process only and is not a
// security boundary; the relay in package proxy enforces the quota where it
// cannot be bypassed.
type SharedKey struct {
	encoded string
	counter *quota.Counter
}

// NewSharedKey returns a fallback for the base64-encoded key, allowing
// dailyCap uses per day.
func NewSharedKey(encoded string, dailyCap int) *SharedKey {
	return &SharedKey{encoded: encoded, counter: quota.NewCounter(dailyCap)}
}

// Counter exposes the usage counter.
func (s *SharedKey) Counter() *quota.Counter { return s.counter }

// Key implements Fallback. Every successful call consumes one use.
func (s *SharedKey) Key() (string, bool) {
	if s == nil || s.encoded == "" {
		return "", false
	}
	if !s.counter.Allow() {
		slog.Warn("shared key daily quota reached", "cap", s.counter.Cap())
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s.encoded))
	if err != nil || len(raw) == 0 {
		slog.Warn("shared key is not valid base64; ignoring it")
		return "", false
	}
	key := string(raw)
	redact.Register(key)
	return key, true
}

// Resolver picks a key: explicit argument, then the environment key, then
// the store, then the optional fallback.
type Resolver struct {
	store    Store
	fallback Fallback
	envKey   string
}

// NewResolver returns a Resolver. fallback may be nil, which disables it.
func NewResolver(store Store, fallback Fallback) *Resolver {
	return &Resolver{store: store, fallback: fallback}
}

// WithEnvKey sets a key taken from the environment. It outranks the store
// so that an exported variable overrides the saved key.
func (r *Resolver) WithEnvKey(key string) *Resolver {
	r.envKey = strings.TrimSpace(key)
	if r.envKey != "" {
		redact.Register(r.envKey)
	}
	return r
}

// Store returns the underlying store.
func (r *Resolver) Store() Store { return r.store }

// Resolve returns the key to use and whether one was found. Store read
// failures are logged and treated as an absent key.
func (r *Resolver) Resolve(ctx context.Context, explicit string) (Credential, bool) {
	if k := strings.TrimSpace(explicit); k != "" {
		return Credential{Key: k, Source: SourceExplicit}, true
	}
	if r.envKey != "" {
		return Credential{Key: r.envKey, Source: SourceEnv}, true
	}

	if r.store != nil {
		key, ok, err := r.store.Get(KeyName)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "reading stored API key failed; continuing without it", "error", redact.String(err.Error()))
		case ok:
			redact.Register(key)
			slog.DebugContext(ctx, "using stored API key", "key", redact.Mask(key))
			return Credential{Key: key, Source: SourceStored}, true
		}
	}

	if r.fallback != nil {
		if key, ok := r.fallback.Key(); ok {
			slog.DebugContext(ctx, "using shared API key", "key", redact.Mask(key))
			return Credential{Key: key, Source: SourceShared}, true
		}
	}

	slog.DebugContext(ctx, "no API key found")
	return Credential{}, false
}

// HasStored reports whether a key is stored and its length.
func (r *Resolver) HasStored() (bool, int) {
	if r.store == nil {
		return false, 0
	}
	key, ok, err := r.store.Get(KeyName)
	if err != nil || !ok {
		return false, 0
	}
	return true, len(key)
}
