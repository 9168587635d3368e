// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package httpapi exposes the action envelope over local HTTP so a browser
// extension can reach it with fetch.
package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/orchestrator"
)

// MaxBodyBytes caps an action request body.
const MaxBodyBytes = 1 << 20

// Version is reported by /healthz. It is set by the CLI at startup.
var Version = "dev"

type server struct {
	dispatcher orchestrator.Dispatcher
}

type options struct {
	allowOrigin string
}

// Option configures the handler returned by NewServer.
type Option func(*options)

// WithAllowedOrigin names the one browser origin, typically
// chrome-extension://<id>, that may call the API. Without it any request
// carrying an Origin header is refused.
func WithAllowedOrigin(origin string) Option {
	return func(o *options) {
		if origin != "" {
			o.allowOrigin = origin
		}
	}
}

// NewServer returns the HTTP handler:
//
//	POST /v1/action  action envelope in, envelope out
//	GET  /healthz    liveness
func NewServer(d orchestrator.Dispatcher, opts ...Option) http.Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &server{dispatcher: d}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/action", s.handleAction)
	mux.HandleFunc("GET /healthz", handleHealthz)

	return chainMiddlewares(mux,
		withCORS(o.allowOrigin),
		withLogging,
		withRequestID,
	)
}

func (s *server) handleAction(w http.ResponseWriter, r *http.Request) {
	// A non-JSON body could come from a cross-site form or a text/plain
	// fetch, neither of which is preflighted.
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, orchestrator.Response{
			Error:     "content type must be application/json",
			ErrorKind: apperr.KindValidation,
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req orchestrator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, orchestrator.Response{
				Error:     "request body too large",
				ErrorKind: apperr.KindValidation,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, orchestrator.Response{
			Error:     "invalid JSON body",
			ErrorKind: apperr.KindValidation,
		})
		return
	}

	writeJSON(w, http.StatusOK, s.dispatcher.Handle(r.Context(), req))
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
