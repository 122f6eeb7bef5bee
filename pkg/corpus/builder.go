package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/deadmethods/internal/fileproc"
	"github.com/panbanda/deadmethods/internal/logger"
	"github.com/panbanda/deadmethods/internal/scanner"
	"github.com/panbanda/deadmethods/pkg/config"
	"github.com/panbanda/deadmethods/pkg/source"
	"github.com/panbanda/deadmethods/pkg/strip"
)

// Builder collects and strips the corpus described by a config.
type Builder struct {
	cfg      *config.Config
	scanner  *scanner.Scanner
	source   source.ContentSource
	registry *strip.Registry
	logger   logger.Logger
	workers  int
	memo     *stripMemo
}

// Option configures a Builder.
type Option func(*Builder)

// WithSource reads file content from src instead of the filesystem.
func WithSource(src source.ContentSource) Option {
	return func(b *Builder) {
		b.source = src
	}
}

// WithRegistry strips content with r.
func WithRegistry(r *strip.Registry) Option {
	return func(b *Builder) {
		b.registry = r
	}
}

// WithScanner enumerates files with s.
func WithScanner(s *scanner.Scanner) Option {
	return func(b *Builder) {
		b.scanner = s
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithWorkers bounds the number of concurrent reads. 0 means 2x NumCPU.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = n
	}
}

// NewBuilder creates a corpus builder for cfg.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	b := &Builder{
		cfg:     cfg,
		logger:  logger.NewNoopLogger(),
		workers: cfg.Performance.Workers,
		memo:    newStripMemo(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.scanner == nil {
		b.scanner = scanner.NewScanner(cfg)
	}
	if b.source == nil {
		root, err := b.scanner.Root()
		if err != nil {
			root = cfg.Scan.Root
		}
		b.source = source.NewFilesystem(root)
	}
	if b.registry == nil {
		b.registry = RegistryFor(cfg)
	}
	return b
}

// RegistryFor returns the strip registry implied by cfg's matcher settings.
func RegistryFor(cfg *config.Config) *strip.Registry {
	return strip.NewRegistry(
		strip.WithStripStrings(cfg.Matcher.StripStrings),
		strip.WithPrimaryExtension(cfg.Scan.PrimaryExtension),
	)
}

// Scanner returns the file scanner.
func (b *Builder) Scanner() *scanner.Scanner {
	return b.scanner
}

// Paths enumerates the corpus: the source tree filtered to the source
// extensions, the library tree filtered to the library extensions, and
// every path in extra. The result is sorted and free of duplicates.
func (b *Builder) Paths(extra []string) ([]string, error) {
	scan := b.cfg.Scan
	sourceFiles, err := b.scanner.ScanDir(scan.SourceDir, scan.SourceExtensions)
	if err != nil {
		return nil, fmt.Errorf("scan source tree: %w", err)
	}

	var libraryFiles []string
	if scan.LibraryDir != "" {
		libExts := scan.LibraryExtensions
		if len(libExts) == 0 {
			libExts = []string{scan.PrimaryExtension}
		}
		libraryFiles, err = b.scanner.ScanDir(scan.LibraryDir, libExts)
		if err != nil {
			return nil, fmt.Errorf("scan library tree: %w", err)
		}
	}

	seen := make(map[string]bool, len(sourceFiles)+len(libraryFiles)+len(extra))
	paths := make([]string, 0, len(seen))
	for _, group := range [][]string{sourceFiles, libraryFiles, extra} {
		for _, p := range group {
			p = filepath.Clean(p)
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Build reads and strips every corpus file plus extra (the definition files,
// which always belong to the corpus). Unreadable files are left out and
// recorded in Snapshot.Skipped; they never fail the build.
func (b *Builder) Build(ctx context.Context, extra []string) (*Snapshot, error) {
	paths, err := b.Paths(extra)
	if err != nil {
		return nil, err
	}
	return b.Load(ctx, paths)
}

// Load reads and strips exactly the given paths.
func (b *Builder) Load(ctx context.Context, paths []string) (*Snapshot, error) {
	loaded, errs := fileproc.ForEachFileIndexed(ctx, paths, b.workers, func(path string) (string, error) {
		data, err := b.source.Read(path)
		if err != nil {
			return "", err
		}
		return b.memo.strip(b.registry, string(data), filepath.Ext(path)), nil
	}, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var skipped []string
	if errs != nil {
		for _, e := range errs.Errors {
			b.logger.Debugf("skipping unreadable file %s: %v", e.Path, e.Err)
			skipped = append(skipped, e.Path)
		}
	}

	files := make([]File, 0, len(paths))
	for i, path := range paths {
		if loaded.OK[i] {
			files = append(files, File{Path: path, Content: loaded.Values[i]})
		}
	}
	b.logger.Debugf("corpus: %d files loaded, %d skipped", len(files), len(skipped))
	return newSnapshot(files, skipped), nil
}

// stripMemo shares stripped output between files with identical raw
// content and extension, such as repeated partials or empty files. Entries
// keep their input so a hash collision strips afresh instead of returning
// another file's output.
type stripMemo struct {
	mu      sync.RWMutex
	entries map[uint64]memoEntry
}

type memoEntry struct {
	raw, ext, out string
}

func newStripMemo() *stripMemo {
	return &stripMemo{entries: make(map[uint64]memoEntry)}
}

func memoKey(raw, ext string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(ext)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(raw)
	return d.Sum64()
}

func (m *stripMemo) strip(r *strip.Registry, raw, ext string) string {
	key := memoKey(raw, ext)

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		if e.raw == raw && e.ext == ext {
			return e.out
		}
		return r.Strip(raw, ext)
	}

	out := r.Strip(raw, ext)
	m.mu.Lock()
	if _, taken := m.entries[key]; !taken {
		m.entries[key] = memoEntry{raw: raw, ext: ext, out: out}
	}
	m.mu.Unlock()
	return out
}

// Len returns the number of distinct stripped entries.
func (m *stripMemo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
