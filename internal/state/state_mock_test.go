// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package state

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gloss/internal/testable"
)

// --- Load mock tests ---

func TestLoad_MockReadFileError(t *testing.T) {
	oldFS := FS
	defer func() { FS = oldFS }()

	FS = &testable.MockFileSystem{
		ReadFileFn: func(_ string) ([]byte, error) {
			return nil, fmt.Errorf("I/O error")
		},
	}

	s, err := Load("/fake/dir")
	assert.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "I/O error")
}

// --- Save mock tests ---

func TestSave_MockMkdirAllFailure(t *testing.T) {
	oldFS := FS
	defer func() { FS = oldFS }()

	FS = &testable.MockFileSystem{
		MkdirAllFn: func(_ string, _ os.FileMode) error {
			return fmt.Errorf("permission denied")
		},
	}

	err := Save("/fake/dir", &Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create state directory")
}

func TestSave_MockRenameFailureRemovesTemp(t *testing.T) {
	oldFS := FS
	defer func() { FS = oldFS }()

	var removed string
	FS = &testable.MockFileSystem{
		MkdirAllFn:  func(_ string, _ os.FileMode) error { return nil },
		WriteFileFn: func(_ string, _ []byte, _ os.FileMode) error { return nil },
		RenameFn:    func(_, _ string) error { return fmt.Errorf("disk full") },
		RemoveFn: func(name string) error {
			removed = name
			return nil
		},
	}

	err := Save("/fake/dir", &Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write state file")
	assert.Equal(t, Path("/fake/dir")+".tmp", removed)
}

// --- Clear mock tests ---

func TestClear_MockRemoveError(t *testing.T) {
	oldFS := FS
	defer func() { FS = oldFS }()

	FS = &testable.MockFileSystem{
		RemoveFn: func(_ string) error { return fmt.Errorf("busy") },
	}

	err := Clear("/fake/dir")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "busy")
}
