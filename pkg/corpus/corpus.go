// Package corpus holds the comment-stripped text of every file that usages
// are searched in. A Snapshot is built once per run and never mutated.
package corpus

import (
	"encoding/hex"
	"sort"
	"sync"

	"github.com/zeebo/blake3"
)

// File is one corpus entry.
type File struct {
	Path    string
	Content string // stripped
}

// Snapshot is an immutable, path-ordered view of the corpus.
// It is safe for concurrent use.
type Snapshot struct {
	files   []File
	index   map[string]int
	skipped []string

	digestOnce sync.Once
	digest     string
}

// NewSnapshot creates a snapshot from already-stripped content.
func NewSnapshot(files map[string]string) *Snapshot {
	list := make([]File, 0, len(files))
	for path, content := range files {
		list = append(list, File{Path: path, Content: content})
	}
	return newSnapshot(list, nil)
}

func newSnapshot(files []File, skipped []string) *Snapshot {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	index := make(map[string]int, len(files))
	for i, f := range files {
		index[f.Path] = i
	}
	sort.Strings(skipped)
	return &Snapshot{files: files, index: index, skipped: skipped}
}

// Len returns the number of files in the corpus.
func (s *Snapshot) Len() int {
	return len(s.files)
}

// Files returns every entry in path order. The slice must not be modified.
func (s *Snapshot) Files() []File {
	return s.files
}

// Paths returns every path in order.
func (s *Snapshot) Paths() []string {
	paths := make([]string, len(s.files))
	for i, f := range s.files {
		paths[i] = f.Path
	}
	return paths
}

// Content returns the stripped content of path.
func (s *Snapshot) Content(path string) (string, bool) {
	i, ok := s.index[path]
	if !ok {
		return "", false
	}
	return s.files[i].Content, true
}

// Contains reports whether path is part of the corpus.
func (s *Snapshot) Contains(path string) bool {
	_, ok := s.index[path]
	return ok
}

// Skipped returns the files that could not be read while building, sorted.
func (s *Snapshot) Skipped() []string {
	return s.skipped
}

// Digest returns a BLAKE3 hex digest over every path and stripped content in
// order. Two runs over an unchanged tree produce the same digest.
func (s *Snapshot) Digest() string {
	s.digestOnce.Do(func() {
		h := blake3.New()
		for _, f := range s.files {
			h.Write([]byte(f.Path))
			h.Write([]byte{0})
			h.Write([]byte(f.Content))
			h.Write([]byte{0})
		}
		s.digest = hex.EncodeToString(h.Sum(nil))
	})
	return s.digest
}
