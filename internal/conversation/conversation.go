// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package conversation holds the message history that follow-up questions
// are sent with.
package conversation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/davetashner/gloss/internal/llm"
)

// DefaultID names the session used when a caller does not pick one.
const DefaultID = "default"

// Session is one conversation. It is safe for concurrent use; a turn is
// always recorded as a user/assistant pair with nothing in between.
type Session struct {
	id string

	mu      sync.Mutex
	history []llm.Message
}

// NewSession returns an empty session with the given id.
func NewSession(id string) *Session {
	return &Session{id: id}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// History returns a copy of the recorded messages.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of recorded messages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Reset clears the history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// AppendTurn records a completed exchange.
func (s *Session) AppendTurn(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: user},
		llm.Message{Role: llm.RoleAssistant, Content: assistant},
	)
}

// Store keeps sessions by id for the life of the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns a store holding only the default session.
func NewStore() *Store {
	return &Store{sessions: map[string]*Session{DefaultID: NewSession(DefaultID)}}
}

// Default returns the default session.
func (s *Store) Default() *Session {
	return s.GetOrCreate(DefaultID)
}

// Get returns the session with id, if any.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session with id, creating it if needed. An empty
// id selects the default session.
func (s *Store) GetOrCreate(id string) *Session {
	if id == "" {
		id = DefaultID
	}
	if sess, ok := s.Get(id); ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := NewSession(id)
	s.sessions[id] = sess
	return sess
}

// Create starts a session with a fresh random id.
func (s *Store) Create() *Session {
	sess := NewSession(uuid.NewString())
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// Delete drops the session with id. The default session is reset instead.
func (s *Store) Delete(id string) {
	if id == "" || id == DefaultID {
		s.Default().Reset()
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
