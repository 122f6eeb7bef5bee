// Package unused finds method definitions with no detected usage.
package unused

import (
	"context"
	"fmt"

	"github.com/panbanda/deadmethods/internal/fileproc"
	"github.com/panbanda/deadmethods/internal/logger"
	"github.com/panbanda/deadmethods/pkg/analyzer"
	"github.com/panbanda/deadmethods/pkg/config"
	"github.com/panbanda/deadmethods/pkg/corpus"
	"github.com/panbanda/deadmethods/pkg/extract"
	"github.com/panbanda/deadmethods/pkg/models"
	"github.com/panbanda/deadmethods/pkg/pattern"
	"github.com/panbanda/deadmethods/pkg/source"
	"github.com/panbanda/deadmethods/pkg/usage"
)

var _ analyzer.DirAnalyzer[*models.UnusedReport] = (*Analyzer)(nil)

// Analyzer walks definition directories and reports definitions that the
// usage matcher finds no use for.
type Analyzer struct {
	cfg      *config.Config
	workers  int
	dedupe   bool
	logger   logger.Logger
	source   source.ContentSource
	patterns *pattern.Builder
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds concurrent reads and usage checks. 0 means 2x NumCPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithDedupe collapses repeated definitions of a name within one file to
// the first occurrence.
func WithDedupe(dedupe bool) Option {
	return func(a *Analyzer) {
		a.dedupe = dedupe
	}
}

// WithLogger sets the logger. Verdicts are logged at debug level.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithSource reads files from src instead of the filesystem.
func WithSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		a.source = src
	}
}

// WithPatterns uses b instead of a pattern builder derived from the config.
func WithPatterns(b *pattern.Builder) Option {
	return func(a *Analyzer) {
		a.patterns = b
	}
}

// New creates an analyzer for cfg.
func New(cfg *config.Config, opts ...Option) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a := &Analyzer{
		cfg:     cfg,
		workers: cfg.Performance.Workers,
		dedupe:  cfg.Matcher.DedupeDefinitions,
		logger:  logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.patterns == nil {
		b, err := pattern.NewBuilderFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build patterns: %w", err)
		}
		a.patterns = b
	}
	return a, nil
}

// Analyze scans dirs (the configured definition dirs when empty) in order,
// builds the corpus once, and reports unused definitions in
// (directory, file, in-file) order. Missing directories contribute nothing.
func (a *Analyzer) Analyze(ctx context.Context, dirs []string) (*models.UnusedReport, error) {
	if len(dirs) == 0 {
		dirs = a.cfg.Scan.DefinitionDirs
	}

	opts := []corpus.Option{corpus.WithLogger(a.logger), corpus.WithWorkers(a.workers)}
	if a.source != nil {
		opts = append(opts, corpus.WithSource(a.source))
	}
	builder := corpus.NewBuilder(a.cfg, opts...)

	groups := make([][]string, len(dirs))
	var defFiles []string
	for i, dir := range dirs {
		files, err := builder.Scanner().ScanDir(dir, []string{a.cfg.Scan.PrimaryExtension})
		if err != nil {
			return nil, err
		}
		a.logger.Debugf("%s: %d definition files", dir, len(files))
		groups[i] = files
		defFiles = append(defFiles, files...)
	}

	snap, err := builder.Build(ctx, defFiles)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSnapshot(ctx, snap, dirs, groups)
}

// AnalyzeSnapshot evaluates the definition files in groups (one group per
// entry of dirs, each already in file order) against snap. Files missing
// from snap were unreadable and contribute no definitions.
func (a *Analyzer) AnalyzeSnapshot(ctx context.Context, snap *corpus.Snapshot, dirs []string, groups [][]string) (*models.UnusedReport, error) {
	defs, filesScanned := a.collect(snap, groups)

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.SetTotal(len(defs))
	}

	matcher := usage.NewMatcher(snap, a.patterns)
	used := newUsedSet()
	err := fileproc.ForEach(ctx, len(defs), a.workers, func(i int) {
		def := defs[i]
		v := matcher.Explain(def.Name, def.File)
		if v.Used {
			used.Mark(uint32(i))
		}
		a.logger.Debugf("%s:%d %s", def.File, def.Line, v)
		if tracker != nil {
			tracker.Tick(def.File)
		}
	}, nil)
	if err != nil {
		return nil, err
	}

	report := models.NewUnusedReport()
	for _, i := range used.Unused(uint32(len(defs))) {
		report.Add(models.NewFinding(defs[i]))
	}

	report.Summary.DefinitionDirs = append([]string(nil), dirs...)
	report.Summary.TotalFilesScanned = filesScanned
	report.Summary.TotalDefinitions = len(defs)
	report.Summary.CorpusFiles = snap.Len()
	report.Summary.SkippedFiles = len(snap.Skipped())
	report.Summary.CalculatePercentage()
	report.CorpusDigest = snap.Digest()

	a.logger.Debugf("%d of %d definitions used", used.Count(), len(defs))
	return report, nil
}

// collect extracts definitions in (group, file, in-file) order. The slice
// index is each definition's ordinal for the run.
func (a *Analyzer) collect(snap *corpus.Snapshot, groups [][]string) ([]models.MethodDefinition, int) {
	var defs []models.MethodDefinition
	files := 0
	for _, group := range groups {
		for _, path := range group {
			content, ok := snap.Content(path)
			if !ok {
				a.logger.Debugf("skipping unreadable definition file %s", path)
				continue
			}
			files++
			fileDefs := extract.FromStripped(path, content)
			if a.dedupe {
				fileDefs = dedupeByName(fileDefs)
			}
			defs = append(defs, fileDefs...)
		}
	}
	return defs, files
}

// dedupeByName keeps the first definition of each name.
func dedupeByName(defs []models.MethodDefinition) []models.MethodDefinition {
	seen := make(map[string]bool, len(defs))
	out := defs[:0]
	for _, d := range defs {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}
