// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/davetashner/gloss/internal/testable"
)

// KeyName is the record name the API key is stored under.
const KeyName = "openai_api_key"

// storeFile is the credential file name inside the config directory.
const storeFile = "credentials.json"

// Store is durable key-value storage for secrets.
type Store interface {
	// Get returns the value stored under name. A missing record is
	// ("", false, nil).
	Get(name string) (string, bool, error)
	Set(name, value string) error
	Delete(name string) error
}

// FileStore keeps records in a JSON object in <dir>/credentials.json,
// readable only by the owner.
type FileStore struct {
	dir string
	// FS is the file system implementation used by this store.
	// Override in tests with a testable.MockFileSystem.
	FS testable.FileSystem

	mu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, FS: testable.DefaultFS}
}

// Path returns the credential file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, storeFile)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := s.FS.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("credential: read %s: %w", s.Path(), err)
	}
	records := map[string]string{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("credential: parse %s: %w", s.Path(), err)
	}
	return records, nil
}

func (s *FileStore) save(records map[string]string) error {
	if err := s.FS.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("credential: create directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := testable.WriteFileAtomic(s.FS, s.Path(), data, 0o600); err != nil {
		return fmt.Errorf("credential: write %s: %w", s.Path(), err)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := records[name]
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Set implements Store.
func (s *FileStore) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records[name] = value
	return s.save(records)
}

// Delete implements Store. Deleting a missing record is not an error.
func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := records[name]; !ok {
		return nil
	}
	delete(records, name)
	return s.save(records)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]string{}}
}

// Get implements Store.
func (m *MemoryStore) Get(name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[name]
	return v, ok && v != "", nil
}

// Set implements Store.
func (m *MemoryStore) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[name] = value
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, name)
	return nil
}
