// Package pattern builds the lexical patterns that count as a use of a method name.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/panbanda/deadmethods/pkg/config"
)

// Kind identifies one call shape.
type Kind int

// Call shapes in priority order.
const (
	KindCall     Kind = iota // name(...)
	KindBareCall             // name without parens
	KindSymbol               // :name
	KindBareWord             // name anywhere
)

// AllKinds lists every call shape in priority order.
var AllKinds = []Kind{KindCall, KindBareCall, KindSymbol, KindBareWord}

func (k Kind) String() string {
	switch k {
	case KindCall:
		return config.PatternCall
	case KindBareCall:
		return config.PatternBareCall
	case KindSymbol:
		return config.PatternSymbol
	case KindBareWord:
		return config.PatternBareWord
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a config pattern name to its Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range AllKinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown pattern kind %q", name)
}

// ParseKinds maps config pattern names to kinds, keeping priority order
// and dropping repeats.
func ParseKinds(names []string) ([]Kind, error) {
	enabled := make(map[Kind]bool, len(names))
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		enabled[k] = true
	}
	kinds := make([]Kind, 0, len(enabled))
	for _, k := range AllKinds {
		if enabled[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Pattern is one compiled call shape for a specific name.
type Pattern struct {
	Kind Kind
	Re   *regexp.Regexp
}

// Set is the ordered list of patterns for one name.
type Set []Pattern

// MatchString reports whether any pattern matches text, and which one did.
func (s Set) MatchString(text string) (Kind, bool) {
	for _, p := range s {
		if p.Re.MatchString(text) {
			return p.Kind, true
		}
	}
	return 0, false
}

// source returns the uncompiled expression for kind with name already quoted.
func source(kind Kind, quoted string) string {
	switch kind {
	case KindCall:
		return `(?m)(?:^|[.\s])` + quoted + `\s*\(`
	case KindBareCall:
		// RE2 has no lookahead; consume the following non-paren character instead.
		return `(?m)(?:^|[.\s])` + quoted + `(?:[^\w(]|$)`
	case KindSymbol:
		return `(?m)(?:^|[^\w:]):` + quoted + `\b`
	case KindBareWord:
		return `\b` + quoted + `\b`
	default:
		panic(fmt.Sprintf("pattern: unknown kind %d", int(kind)))
	}
}

// Build returns every call shape for name, in priority order.
func Build(name string) Set {
	return BuildKinds(name, AllKinds)
}

// BuildKinds returns the requested call shapes for name in the given order.
// The name is escaped before it is embedded.
func BuildKinds(name string, kinds []Kind) Set {
	quoted := regexp.QuoteMeta(name)
	set := make(Set, 0, len(kinds))
	for _, k := range kinds {
		set = append(set, Pattern{Kind: k, Re: regexp.MustCompile(source(k, quoted))})
	}
	return set
}

// Callback returns the declarative lifecycle-hook pattern for name: one of
// hooks, then anything on the same line, then a :name symbol. It returns nil
// when hooks is empty.
func Callback(name string, hooks []string) *regexp.Regexp {
	if len(hooks) == 0 {
		return nil
	}
	quotedHooks := make([]string, len(hooks))
	for i, h := range hooks {
		quotedHooks[i] = regexp.QuoteMeta(h)
	}
	expr := `(?m)\b(?:` + strings.Join(quotedHooks, "|") + `)\b[^\n]*?[ \t,(\[]:` + regexp.QuoteMeta(name) + `\b`
	return regexp.MustCompile(expr)
}

// Compiled holds everything the matcher needs for one name.
type Compiled struct {
	Name     string
	Set      Set
	Callback *regexp.Regexp
}

// Builder memoises compiled patterns for the duration of one run.
// It is safe for concurrent use.
type Builder struct {
	kinds []Kind
	hooks []string
	cache *lru.Cache[string, *Compiled]
}

// DefaultCacheSize is used when a non-positive size is requested.
const DefaultCacheSize = 1024

// NewBuilder creates a builder for the given kinds and hook vocabulary.
func NewBuilder(kinds []Kind, hooks []string, cacheSize int) (*Builder, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *Compiled](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("pattern cache: %w", err)
	}
	return &Builder{
		kinds: append([]Kind(nil), kinds...),
		hooks: append([]string(nil), hooks...),
		cache: cache,
	}, nil
}

// NewBuilderFromConfig creates a builder from matcher and performance settings.
func NewBuilderFromConfig(cfg *config.Config) (*Builder, error) {
	kinds, err := ParseKinds(cfg.Matcher.Patterns)
	if err != nil {
		return nil, err
	}
	return NewBuilder(kinds, cfg.Matcher.CallbackHooks, cfg.Performance.PatternCacheSize)
}

// Kinds returns the enabled call shapes.
func (b *Builder) Kinds() []Kind {
	return b.kinds
}

// Get returns the compiled patterns for name, building them on first use.
func (b *Builder) Get(name string) *Compiled {
	if c, ok := b.cache.Get(name); ok {
		return c
	}
	c := &Compiled{
		Name:     name,
		Set:      BuildKinds(name, b.kinds),
		Callback: Callback(name, b.hooks),
	}
	b.cache.Add(name, c)
	return c
}
