// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package orchestrator routes action requests from a presentation layer to
// the detector, composer, credential resolver and completion client, and
// answers with a uniform envelope.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/completion"
	"github.com/davetashner/gloss/internal/conversation"
	"github.com/davetashner/gloss/internal/credential"
	"github.com/davetashner/gloss/internal/diagnose"
	"github.com/davetashner/gloss/internal/langdetect"
	"github.com/davetashner/gloss/internal/prompt"
)

// Action names a request type.
type Action string

const (
	ActionAnalyzeText        Action = "analyzeText"
	ActionFollowUpQuestion   Action = "followUpQuestion"
	ActionSetAPIKey          Action = "setApiKey"
	ActionGetAPIKey          Action = "getApiKey"
	ActionGetCurrentAnalysis Action = "getCurrentAnalysis"
	ActionTestAPIKey         Action = "testApiKey"
	ActionTestFullCall       Action = "testFullCall"
	ActionDetectLanguage     Action = "detectLanguage"
	ActionResetConversation  Action = "resetConversation"
)

// Actions lists every action Handle accepts.
func Actions() []Action {
	return []Action{
		ActionAnalyzeText, ActionFollowUpQuestion, ActionSetAPIKey, ActionGetAPIKey,
		ActionGetCurrentAnalysis, ActionTestAPIKey, ActionTestFullCall,
		ActionDetectLanguage, ActionResetConversation,
	}
}

const (
	// MinTextRunes is the shortest selection accepted for analysis.
	MinTextRunes = 10

	// MaxTextRunes is where longer selections are cut before submission.
	MaxTextRunes = 4000

	// Ellipsis marks a truncated selection.
	Ellipsis = "..."
)

// Request is the action envelope sent by a presentation layer.
type Request struct {
	Action    Action `json:"action"`
	Text      string `json:"text,omitempty"`
	URL       string `json:"url,omitempty"`
	Language  string `json:"language,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
	APIKey    string `json:"apiKey,omitempty"`
	Question  string `json:"question,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// Response is the uniform reply. Fields not relevant to the action are
// omitted.
type Response struct {
	Success      bool               `json:"success"`
	Result       string             `json:"result,omitempty"`
	Error        string             `json:"error,omitempty"`
	ErrorKind    apperr.Kind        `json:"errorKind,omitempty"`
	HasAPIKey    *bool              `json:"hasApiKey,omitempty"`
	APIKeyLength *int               `json:"apiKeyLength,omitempty"`
	Analysis     *Analysis          `json:"analysis"` // null until an analysis exists
	Detection    *langdetect.Result `json:"detection,omitempty"`
	Data         any                `json:"data,omitempty"`
	SessionID    string             `json:"sessionId,omitempty"`
}

// Analysis is the last completed analysis. It lives in memory; only the CLI
// writes it to disk, and only when asked to.
type Analysis struct {
	OriginalText string         `json:"originalText"`
	Result       string         `json:"result"`
	URL          string         `json:"url"`
	Language     langdetect.Tag `json:"language"`
	Timestamp    time.Time      `json:"timestamp"`
}

// State is the request lifecycle observed by presentation layers.
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatcher handles action requests. Transports depend on this rather than
// on *Orchestrator.
type Dispatcher interface {
	Handle(ctx context.Context, req Request) Response
}

// Deps are the collaborators of an Orchestrator. Client and Resolver are
// required; the rest have usable defaults.
type Deps struct {
	Client    *completion.Client
	Resolver  *credential.Resolver
	Composer  *prompt.Composer
	Sessions  *conversation.Store
	Diagnoser *diagnose.Diagnoser
	Now       func() time.Time
}

// Orchestrator implements Dispatcher. It is safe for concurrent use;
// concurrent requests are neither queued nor coalesced.
type Orchestrator struct {
	client    *completion.Client
	resolver  *credential.Resolver
	composer  *prompt.Composer
	sessions  *conversation.Store
	diagnoser *diagnose.Diagnoser
	now       func() time.Time

	state atomic.Int32

	mu      sync.RWMutex
	current *Analysis
}

var _ Dispatcher = (*Orchestrator)(nil)

// New returns an Orchestrator wired to d.
func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		client:    d.Client,
		resolver:  d.Resolver,
		composer:  d.Composer,
		sessions:  d.Sessions,
		diagnoser: d.Diagnoser,
		now:       d.Now,
	}
	if o.sessions == nil {
		o.sessions = conversation.NewStore()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// State returns the lifecycle state of the most recent completion request.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

// Sessions returns the conversation store.
func (o *Orchestrator) Sessions() *conversation.Store { return o.sessions }
