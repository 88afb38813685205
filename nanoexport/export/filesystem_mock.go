package export

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFileSystem provides an in-memory implementation of FileSystem for testing
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string]*mockFile
	dirs  map[string]bool

	// Optional errors for simulating failures
	StatError   error
	CreateError error
	RenameError error
	RemoveError error

	// WriteFileErrors fails WriteFile for specific paths
	WriteFileErrors map[string]error

	// WriteError fails every Write on writers returned by Create
	WriteError error

	// CloseError fails Close on writers returned by Create
	CloseError error
}

type mockFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi mockFileInfo) Name() string       { return fi.name }
func (fi mockFileInfo) Size() int64        { return fi.size }
func (fi mockFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi mockFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi mockFileInfo) Sys() interface{}   { return nil }

// NewMockFileSystem creates a new mock file system
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:           make(map[string]*mockFile),
		dirs:            make(map[string]bool),
		WriteFileErrors: make(map[string]error),
	}
}

// AddDir registers a directory
func (m *MockFileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
}

// AddFile stores a file with the given content
func (m *MockFileSystem) AddFile(path string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = &mockFile{
		content: []byte(content),
		mode:    0644,
		modTime: time.Now(),
	}
}

// Content returns the content of a file and whether it exists
func (m *MockFileSystem) Content(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	file, ok := m.files[filepath.Clean(path)]
	if !ok {
		return "", false
	}
	return string(file.content), true
}

// Files returns the sorted paths of all stored files
func (m *MockFileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Stat implements FileSystem.Stat
func (m *MockFileSystem) Stat(name string) (fs.FileInfo, error) {
	if m.StatError != nil {
		return nil, m.StatError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	if m.dirs[name] {
		return mockFileInfo{
			name: filepath.Base(name),
			mode: fs.ModeDir | 0755,
		}, nil
	}

	file, exists := m.files[name]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
	}

	return mockFileInfo{
		name:    filepath.Base(name),
		size:    int64(len(file.content)),
		mode:    file.mode,
		modTime: file.modTime,
	}, nil
}

// WriteFile implements FileSystem.WriteFile
func (m *MockFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	name = filepath.Clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.WriteFileErrors[name]; ok {
		return &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if !m.dirs[filepath.Dir(name)] {
		return &fs.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}

	content := make([]byte, len(data))
	copy(content, data)

	m.files[name] = &mockFile{
		content: content,
		mode:    perm,
		modTime: time.Now(),
	}
	return nil
}

// Create implements FileSystem.Create. Content becomes visible as it is written.
func (m *MockFileSystem) Create(name string) (io.WriteCloser, error) {
	if m.CreateError != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: m.CreateError}
	}

	name = filepath.Clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirs[filepath.Dir(name)] {
		return nil, &fs.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}

	m.files[name] = &mockFile{mode: 0644, modTime: time.Now()}
	return &mockWriter{fs: m, name: name}, nil
}

// Rename implements FileSystem.Rename
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	if m.RenameError != nil {
		return m.RenameError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	file, exists := m.files[oldpath]
	if !exists {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrNotExist}
	}

	// Overwrites if exists, like os.Rename
	m.files[newpath] = file
	delete(m.files, oldpath)
	return nil
}

// Remove implements FileSystem.Remove
func (m *MockFileSystem) Remove(name string) error {
	if m.RemoveError != nil {
		return m.RemoveError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if _, exists := m.files[name]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: os.ErrNotExist}
	}
	delete(m.files, name)
	return nil
}

type mockWriter struct {
	fs     *MockFileSystem
	name   string
	buf    bytes.Buffer
	closed bool
}

func (w *mockWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write on closed file")
	}
	if w.fs.WriteError != nil {
		return 0, w.fs.WriteError
	}
	n, _ := w.buf.Write(p)

	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	if file, ok := w.fs.files[w.name]; ok {
		file.content = append(file.content[:0], w.buf.Bytes()...)
	}
	return n, nil
}

func (w *mockWriter) Close() error {
	if w.closed {
		return errors.New("file already closed")
	}
	w.closed = true
	return w.fs.CloseError
}
