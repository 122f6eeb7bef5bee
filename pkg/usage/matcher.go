// Package usage decides whether a method name is used anywhere in a corpus.
package usage

import (
	"fmt"

	"github.com/panbanda/deadmethods/pkg/corpus"
	"github.com/panbanda/deadmethods/pkg/pattern"
)

// Rule names the check that decided a verdict.
type Rule string

const (
	RuleOtherFile Rule = "other_file" // a call shape matched outside the defining file
	RuleCallback  Rule = "callback"   // a lifecycle hook referenced the name
	RuleSelfUse   Rule = "self_use"   // a call shape matched twice in the defining file
	RuleNone      Rule = "none"       // nothing matched
)

// Verdict explains a usage decision.
type Verdict struct {
	Name  string
	Used  bool
	Rule  Rule
	File  string       // file that produced the deciding match, if any
	Kind  pattern.Kind // call shape for RuleOtherFile and RuleSelfUse
	Count int          // matches of Kind in the defining file for RuleSelfUse
}

func (v Verdict) String() string {
	switch v.Rule {
	case RuleOtherFile:
		return fmt.Sprintf("%s used: %s match in %s", v.Name, v.Kind, v.File)
	case RuleCallback:
		return fmt.Sprintf("%s used: callback reference in %s", v.Name, v.File)
	case RuleSelfUse:
		return fmt.Sprintf("%s used: %d %s matches in %s", v.Name, v.Count, v.Kind, v.File)
	default:
		return fmt.Sprintf("%s unused", v.Name)
	}
}

// Matcher evaluates names against one corpus snapshot. It holds no mutable
// state of its own and is safe for concurrent use.
type Matcher struct {
	corpus   *corpus.Snapshot
	patterns *pattern.Builder
}

// NewMatcher creates a matcher over snap using patterns from b.
func NewMatcher(snap *corpus.Snapshot, b *pattern.Builder) *Matcher {
	return &Matcher{corpus: snap, patterns: b}
}

// IsUsed reports whether name, defined in definingFile, is used.
func (m *Matcher) IsUsed(name, definingFile string) bool {
	return m.Explain(name, definingFile).Used
}

// Explain evaluates name and reports which rule decided. Rules run in order:
// any call shape in another file, then a lifecycle hook reference anywhere
// (the defining file included), then any single call shape matching more
// than once in the defining file.
func (m *Matcher) Explain(name, definingFile string) Verdict {
	compiled := m.patterns.Get(name)

	for _, f := range m.corpus.Files() {
		if f.Path == definingFile {
			continue
		}
		if kind, ok := compiled.Set.MatchString(f.Content); ok {
			return Verdict{Name: name, Used: true, Rule: RuleOtherFile, File: f.Path, Kind: kind}
		}
	}

	if compiled.Callback != nil {
		for _, f := range m.corpus.Files() {
			if compiled.Callback.MatchString(f.Content) {
				return Verdict{Name: name, Used: true, Rule: RuleCallback, File: f.Path}
			}
		}
	}

	if content, ok := m.corpus.Content(definingFile); ok {
		for _, p := range compiled.Set {
			// Two matches are enough; the first is normally the def line.
			if n := len(p.Re.FindAllStringIndex(content, 2)); n > 1 {
				return Verdict{Name: name, Used: true, Rule: RuleSelfUse, File: definingFile, Kind: p.Kind, Count: n}
			}
		}
	}

	return Verdict{Name: name, Used: false, Rule: RuleNone}
}
