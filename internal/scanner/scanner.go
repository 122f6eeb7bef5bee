package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/deadmethods/pkg/config"
)

// ScanError reports a directory that could not be walked.
type ScanError struct {
	Dir string
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Dir, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Scanner finds files under the project root. Returned paths are relative
// to the root and sorted lexicographically.
type Scanner struct {
	config *config.Config

	once       sync.Once
	initErr    error
	absRoot    string
	ignoreBase string
	matchers   []gitignore.Matcher
}

// NewScanner creates a new file scanner rooted at cfg.Scan.Root.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// Root returns the resolved absolute project root.
func (s *Scanner) Root() (string, error) {
	s.once.Do(s.init)
	return s.absRoot, s.initErr
}

func (s *Scanner) init() {
	root := s.config.Scan.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		s.initErr = err
		return
	}
	// A missing root behaves like a tree with no files.
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}
	s.absRoot = absRoot
	s.loadExcludePatterns()
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns reads every .gitignore below the git root, or below
// the project root when it is not inside a repository.
func (s *Scanner) loadExcludePatterns() {
	if !s.config.Exclude.Gitignore {
		return
	}
	base := findGitRoot(s.absRoot)
	if base == "" {
		base = s.absRoot
	}
	if _, err := os.Stat(base); err != nil {
		return
	}
	s.ignoreBase = base

	patterns, err := gitignore.ReadPatterns(osfs.New(base), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
}

// isIgnored checks an absolute path against the loaded .gitignore matchers.
func (s *Scanner) isIgnored(absPath string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	rel, err := filepath.Rel(s.ignoreBase, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	pathParts := strings.Split(rel, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively finds files under dir (relative to the root) whose
// extension is one of exts. A missing dir yields no files and no error.
// Symlinks that resolve outside the root are skipped.
func (s *Scanner) ScanDir(dir string, exts []string) ([]string, error) {
	absRoot, err := s.Root()
	if err != nil {
		return nil, &ScanError{Dir: dir, Err: err}
	}

	start := dir
	if !filepath.IsAbs(start) {
		start = filepath.Join(absRoot, dir)
	}
	info, err := os.Stat(start)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &ScanError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, nil
	}

	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are treated as absent.
			return nil
		}

		// Security: validate path stays within root (prevent symlink traversal)
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if path != start && (s.config.ShouldExclude(relPath+string(filepath.Separator)) || s.isIgnored(path, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if s.config.ShouldExclude(relPath) || s.isIgnored(path, false) {
			return nil
		}
		files = append(files, relPath)
		return nil
	})
	if walkErr != nil {
		return nil, &ScanError{Dir: dir, Err: walkErr}
	}

	sort.Strings(files)
	return files, nil
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
