// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package proxy relays OpenAI-compatible requests to an upstream endpoint
// with a shared key that never leaves the server, enforcing a daily quota.
package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/davetashner/gloss/internal/quota"
	"github.com/davetashner/gloss/internal/redact"
)

const (
	chatPath   = "/v1/chat/completions"
	modelsPath = "/v1/models"
)

// Relay forwards chat completions and model listings. Only chat completions
// count against the quota.
type Relay struct {
	upstream *url.URL
	key      string
	counter  *quota.Counter
	rp       *httputil.ReverseProxy
}

// New returns a Relay for upstream, an OpenAI-compatible base URL such as
// https://api.openai.com/v1.
func New(upstream, key string, counter *quota.Counter) (*Relay, error) {
	u, err := url.Parse(strings.TrimRight(upstream, "/"))
	if err != nil {
		return nil, fmt.Errorf("proxy: parse upstream: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("proxy: upstream must be an absolute http(s) URL, got %q", upstream)
	}
	if key == "" {
		return nil, errors.New("proxy: upstream key is required")
	}
	if counter == nil {
		counter = quota.NewCounter(0)
	}
	redact.Register(key)

	r := &Relay{upstream: u, key: key, counter: counter}
	r.rp = &httputil.ReverseProxy{
		Rewrite:      r.rewrite,
		ErrorHandler: r.upstreamError,
	}
	return r, nil
}

// Counter returns the quota counter.
func (r *Relay) Counter() *quota.Counter { return r.counter }

func (r *Relay) rewrite(pr *httputil.ProxyRequest) {
	pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, "/v1")
	pr.Out.URL.RawPath = ""
	pr.SetURL(r.upstream)
	pr.Out.Header.Set("Authorization", "Bearer "+r.key)
	pr.Out.Header.Del("Cookie")
}

func (r *Relay) upstreamError(w http.ResponseWriter, req *http.Request, err error) {
	slog.WarnContext(req.Context(), "upstream request failed", "path", req.URL.Path, "error", redact.String(err.Error()))
	writeError(w, http.StatusBadGateway, "upstream_unavailable", "upstream request failed")
}

func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch {
	case req.Method == http.MethodPost && req.URL.Path == chatPath:
		if !r.counter.Allow() {
			slog.WarnContext(req.Context(), "daily quota exhausted", "cap", r.counter.Cap())
			writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
				fmt.Sprintf("daily quota of %d requests exhausted; set your own API key", r.counter.Cap()))
			return
		}
		slog.DebugContext(req.Context(), "relaying completion", "remaining", r.counter.Remaining())

	case req.Method == http.MethodGet && req.URL.Path == modelsPath:

	case req.Method == http.MethodGet && req.URL.Path == "/healthz":
		u := r.counter.Usage()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"date":      u.Date,
			"used":      u.Count,
			"remaining": r.counter.Remaining(),
		})
		return

	default:
		writeError(w, http.StatusNotFound, "not_found", "unsupported endpoint "+req.Method+" "+req.URL.Path)
		return
	}

	r.rp.ServeHTTP(w, req)
}

// writeError answers in the OpenAI error shape so SDK clients surface the
// message.
func writeError(w http.ResponseWriter, status int, typ, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": msg, "type": typ},
	})
}
