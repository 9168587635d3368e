// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package state persists the CLI's last analysis and its conversation so
// that a later gloss invocation can continue it.
//
// Conversations normally live in memory only. A CLI process exits after each
// command, so a user who wants to continue later opts in (analyze --save or
// cli.persist_session) and the session is written to
// <config dir>/last-session.json.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/davetashner/gloss/internal/conversation"
	"github.com/davetashner/gloss/internal/llm"
	"github.com/davetashner/gloss/internal/orchestrator"
	"github.com/davetashner/gloss/internal/testable"
)

// stateFile is the filename for the saved session.
const stateFile = "last-session.json"

// schemaVersion is the current state file schema version.
const schemaVersion = "1"

// FS is the file system implementation used by this package.
// Override in tests with a testable.MockFileSystem.
var FS testable.FileSystem = testable.DefaultFS

// Snapshot is a saved session.
type Snapshot struct {
	Version  string                 `json:"version"`
	SavedAt  time.Time              `json:"saved_at"`
	Analysis *orchestrator.Analysis `json:"analysis"`
	History  []llm.Message          `json:"history"`
}

// Path returns the state file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, stateFile)
}

// Load reads the saved session from dir. If there is none, it returns
// (nil, nil). A file written by a different schema version is ignored.
func Load(dir string) (*Snapshot, error) {
	data, err := FS.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Path(dir), err)
	}
	if s.Version != schemaVersion {
		return nil, nil
	}
	return &s, nil
}

// Save writes s to dir, creating dir if needed. The conversation may hold
// private text, so the file is readable only by the owner.
func Save(dir string, s *Snapshot) error {
	if err := FS.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	s.Version = schemaVersion
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := testable.WriteFileAtomic(FS, Path(dir), data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Clear removes the saved session. A missing file is not an error.
func Clear(dir string) error {
	if err := FS.Remove(Path(dir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

// Capture snapshots the current analysis and the default session of o.
func Capture(o *orchestrator.Orchestrator, now time.Time) *Snapshot {
	return &Snapshot{
		SavedAt:  now,
		Analysis: o.CurrentAnalysis(),
		History:  o.Sessions().GetOrCreate(conversation.DefaultID).History(),
	}
}

// Restore loads s into o's current analysis and default session. Messages
// that do not form user/assistant pairs are dropped.
func Restore(o *orchestrator.Orchestrator, s *Snapshot) {
	if s == nil {
		return
	}
	o.SetCurrentAnalysis(s.Analysis)
	sess := o.Sessions().GetOrCreate(conversation.DefaultID)
	sess.Reset()
	for i := 0; i+1 < len(s.History); i += 2 {
		user, assistant := s.History[i], s.History[i+1]
		if user.Role != llm.RoleUser || assistant.Role != llm.RoleAssistant {
			continue
		}
		sess.AppendTurn(user.Content, assistant.Content)
	}
}
