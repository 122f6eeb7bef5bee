package source

import (
	"fmt"
	"os"
	"path/filepath"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
// Relative paths are resolved against Root.
type FilesystemSource struct {
	Root string
}

// NewFilesystem creates a source that reads from the filesystem under root.
// An empty root reads paths as given.
func NewFilesystem(root string) *FilesystemSource {
	return &FilesystemSource{Root: root}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	if f.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}
	return os.ReadFile(path)
}

// MemorySource serves file content from an in-memory map. The map is
// fixed at construction, so concurrent reads are safe.
type MemorySource struct {
	files map[string][]byte
}

// NewMemory creates a source backed by the given files (path -> content).
func NewMemory(files map[string]string) *MemorySource {
	m := &MemorySource{files: make(map[string][]byte, len(files))}
	for path, content := range files {
		m.files[filepath.Clean(path)] = []byte(content)
	}
	return m
}

// Read implements ContentSource.
func (m *MemorySource) Read(path string) ([]byte, error) {
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &NotFoundError{Path: path}
	}
	return content, nil
}

// NotFoundError is returned by MemorySource for unknown paths.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}
