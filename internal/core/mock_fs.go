package core

import (
	"context"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests.
// Paths are treated as slash-separated and cleaned before use.
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string]mockFile

	// ReadErr, WriteErr, StatErr and RemoveErr, when set, are returned by
	// the matching operation regardless of path.
	ReadErr   error
	WriteErr  error
	StatErr   error
	RemoveErr error
}

type mockFile struct {
	data []byte
	perm os.FileMode
}

// NewMockFileSystem returns an empty MockFileSystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{files: make(map[string]mockFile)}
}

// SetFile stores data at p with owner read/write permissions.
func (m *MockFileSystem) SetFile(p string, data []byte) {
	m.SetFileMode(p, data, PermOwnerRW)
}

// SetFileMode stores data at p with the given permissions.
func (m *MockFileSystem) SetFileMode(p string, data []byte, perm os.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(p)] = mockFile{data: slices.Clone(data), perm: perm}
}

// GetFile returns the contents stored at p.
func (m *MockFileSystem) GetFile(p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path.Clean(p)]
	if !ok {
		return nil, false
	}
	return slices.Clone(f.data), true
}

// HasFile reports whether a file exists at p.
func (m *MockFileSystem) HasFile(p string) bool {
	_, ok := m.GetFile(p)
	return ok
}

func (m *MockFileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	data, ok := m.GetFile(p)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (m *MockFileSystem) WriteFile(ctx context.Context, p string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.SetFileMode(p, data, perm)
	return nil
}

func (m *MockFileSystem) Stat(ctx context.Context, p string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.StatErr != nil {
		return nil, m.StatErr
	}
	clean := path.Clean(p)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.files[clean]; ok {
		return &mockFileInfo{name: path.Base(clean), size: int64(len(f.data)), mode: f.perm}, nil
	}
	prefix := clean + "/"
	for name := range m.files {
		if strings.HasPrefix(name, prefix) {
			return &mockFileInfo{name: path.Base(clean), mode: fs.ModeDir | PermDir}, nil
		}
	}
	return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

// MkdirAll is a no-op: directories exist implicitly in the mock.
func (m *MockFileSystem) MkdirAll(ctx context.Context, _ string, _ os.FileMode) error {
	return ctx.Err()
}

func (m *MockFileSystem) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	clean := path.Clean(p)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[clean]; !ok {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	delete(m.files, clean)
	return nil
}

// ReadDir returns the direct children of p, files and implied directories alike.
func (m *MockFileSystem) ReadDir(ctx context.Context, p string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean(p)
	prefix := clean + "/"
	if clean == "/" {
		prefix = "/"
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]fs.DirEntry)
	for name, f := range m.files {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}
		child, _, nested := strings.Cut(rest, "/")
		if _, dup := seen[child]; dup {
			continue
		}
		info := &mockFileInfo{name: child, size: int64(len(f.data)), mode: f.perm}
		if nested {
			info = &mockFileInfo{name: child, mode: fs.ModeDir | PermDir}
		}
		seen[child] = fs.FileInfoToDirEntry(info)
	}
	if len(seen) == 0 {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist}
	}

	entries := make([]os.DirEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

var _ FileSystem = (*MockFileSystem)(nil)

type mockFileInfo struct {
	name string
	size int64
	mode os.FileMode
}

func (i *mockFileInfo) Name() string       { return i.name }
func (i *mockFileInfo) Size() int64        { return i.size }
func (i *mockFileInfo) Mode() os.FileMode  { return i.mode }
func (i *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i *mockFileInfo) IsDir() bool        { return i.mode.IsDir() }
func (i *mockFileInfo) Sys() any           { return nil }
