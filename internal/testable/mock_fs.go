package testable

import (
	"os"
)

// MockFileSystem is a test double for FileSystem. Each method has a
// corresponding function field. When the field is non-nil, the mock calls it;
// otherwise, it falls through to OsFileSystem (real OS behavior).
//
// This design lets tests override only the methods they care about while
// keeping realistic behavior for everything else.
type MockFileSystem struct {
	ReadFileFn  func(name string) ([]byte, error)
	WriteFileFn func(name string, data []byte, perm os.FileMode) error
	MkdirAllFn  func(path string, perm os.FileMode) error
	RenameFn    func(oldpath, newpath string) error
	RemoveFn    func(name string) error
	StatFn      func(name string) (os.FileInfo, error)
}

var real OsFileSystem

// ReadFile calls ReadFileFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if m.ReadFileFn != nil {
		return m.ReadFileFn(name)
	}
	return real.ReadFile(name)
}

// WriteFile calls WriteFileFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if m.WriteFileFn != nil {
		return m.WriteFileFn(name, data, perm)
	}
	return real.WriteFile(name, data, perm)
}

// MkdirAll calls MkdirAllFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	if m.MkdirAllFn != nil {
		return m.MkdirAllFn(path, perm)
	}
	return real.MkdirAll(path, perm)
}

// Rename calls RenameFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	if m.RenameFn != nil {
		return m.RenameFn(oldpath, newpath)
	}
	return real.Rename(oldpath, newpath)
}

// Remove calls RemoveFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) Remove(name string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(name)
	}
	return real.Remove(name)
}

// Stat calls StatFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if m.StatFn != nil {
		return m.StatFn(name)
	}
	return real.Stat(name)
}

// Compile-time interface check.
var _ FileSystem = (*MockFileSystem)(nil)
