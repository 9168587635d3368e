// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package completion sends composed prompts to the model and records
// successful turns in the caller's session.
package completion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/conversation"
	"github.com/davetashner/gloss/internal/llm"
	"github.com/davetashner/gloss/internal/prompt"
	"github.com/davetashner/gloss/internal/redact"
)

const (
	// Temperature is sent with every request.
	Temperature = 0.3

	// MaxTokens caps the reply length.
	MaxTokens = 1024

	// DefaultTimeout bounds a single completion call.
	DefaultTimeout = 30 * time.Second
)

// Client issues completion requests through a provider built per call from
// the resolved key.
type Client struct {
	factory llm.Factory
	model   string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model sent with each request. Empty means the
// provider's default.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New returns a Client that builds providers with factory.
func New(factory llm.Factory, opts ...Option) *Client {
	c := &Client{factory: factory, timeout: DefaultTimeout}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Timeout returns the per-call deadline.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Messages returns what would be sent for pkg: the session history plus the
// new user message for a follow-up with history, otherwise the package's
// own system and user messages.
func Messages(sess *conversation.Session, pkg prompt.Package, followUp bool) []llm.Message {
	if followUp && sess != nil {
		if h := sess.History(); len(h) > 0 {
			return append(h, llm.Message{Role: llm.RoleUser, Content: pkg.User})
		}
	}
	msgs := make([]llm.Message, 0, 2)
	if pkg.System != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: pkg.System})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: pkg.User})
}

// Complete sends pkg and returns the reply. On success the user message and
// the reply are appended to sess as one turn; on failure sess is untouched.
// Every error is an *apperr.Error.
func (c *Client) Complete(ctx context.Context, sess *conversation.Session, pkg prompt.Package, apiKey string, followUp bool) (string, error) {
	if apiKey == "" {
		return "", apperr.New(apperr.KindMissingCredential, "please set an API key first")
	}

	provider, err := c.factory(apiKey)
	if err != nil {
		if apperr.KindOf(err) != "" {
			return "", err
		}
		return "", apperr.Wrap(apperr.KindUpstream, err, "cannot initialize completion provider: %v", err)
	}

	temp := float64(Temperature)
	req := llm.Request{
		Messages:    Messages(sess, pkg, followUp),
		Model:       c.model,
		MaxTokens:   MaxTokens,
		Temperature: &temp,
	}

	slog.Debug("sending completion request",
		"messages", len(req.Messages),
		"follow_up", followUp,
		"key", redact.Mask(apiKey),
		"timeout", c.timeout)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := provider.Complete(callCtx, req)
	if err != nil {
		err = classify(callCtx, err, c.timeout)
		slog.Warn("completion failed", "kind", apperr.KindOf(err), "elapsed", time.Since(start).Round(time.Millisecond))
		return "", err
	}
	if resp == nil || resp.Content == "" {
		return "", apperr.New(apperr.KindDataShape, "completion response did not contain a result")
	}

	slog.Debug("completion succeeded",
		"model", resp.Model,
		"finish_reason", resp.FinishReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if sess != nil {
		sess.AppendTurn(pkg.User, resp.Content)
	}
	return resp.Content, nil
}

// classify guarantees a typed error. A fired deadline always wins so that an
// aborted call reports a timeout whatever the transport said.
func classify(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, err,
			"request timed out after %s; please check your network connection", timeout)
	}
	if apperr.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindNetwork, err, "request was cancelled")
	}
	return apperr.Wrap(apperr.KindUpstream, err, "API call failed: %v", err)
}
