// Package analyzer holds the contracts shared by deadmethods analyzers.
package analyzer

import "context"

// DirAnalyzer analyzes definition directories and returns a report.
// Directories are processed in the order given.
type DirAnalyzer[T any] interface {
	Analyze(ctx context.Context, dirs []string) (T, error)
}
