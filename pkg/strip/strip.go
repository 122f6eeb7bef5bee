// Package strip removes comment and string-literal noise from source text
// before any pattern matching, keyed by file extension.
//
// Every stripper preserves newlines so line numbers computed on stripped
// text match the original file, and every stripper is idempotent.
package strip

import (
	"strings"
)

// Stripper removes language-specific noise from file content.
type Stripper interface {
	Strip(src string) string
}

// StripperFunc adapts a plain function to the Stripper interface.
type StripperFunc func(string) string

// Strip implements Stripper.
func (f StripperFunc) Strip(src string) string { return f(src) }

// passthrough is used for extensions without a registered stripper.
var passthrough = StripperFunc(func(src string) string { return src })

// Registry maps lowercase file extensions (".rb") to strippers.
type Registry struct {
	byExt        map[string]Stripper
	stripStrings bool
	primary      string
}

// Option configures a Registry.
type Option func(*Registry)

// WithStripStrings controls whether string-literal contents are removed from
// primary-language files. Enabled by default.
func WithStripStrings(enabled bool) Option {
	return func(r *Registry) {
		r.stripStrings = enabled
	}
}

// WithPrimaryExtension registers the primary-language stripper for ext in
// addition to ".rb".
func WithPrimaryExtension(ext string) Option {
	return func(r *Registry) {
		r.primary = strings.ToLower(ext)
	}
}

// NewRegistry creates a registry with the built-in strippers.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byExt:        make(map[string]Stripper),
		stripStrings: true,
		primary:      ".rb",
	}
	for _, opt := range opts {
		opt(r)
	}

	ruby := &RubyStripper{StripStrings: r.stripStrings}
	r.byExt[".rb"] = ruby
	if r.primary != "" {
		r.byExt[r.primary] = ruby
	}

	cstyle := CStyleStripper{}
	for _, ext := range []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"} {
		r.byExt[ext] = cstyle
	}

	r.byExt[".html"] = MarkupStripper{}
	r.byExt[".erb"] = MarkupStripper{}
	r.byExt[".haml"] = MarkupStripper{Silent: hamlSilentComment}
	r.byExt[".slim"] = MarkupStripper{Silent: slimCodeComment}

	return r
}

// Register installs s for ext, replacing any existing stripper.
func (r *Registry) Register(ext string, s Stripper) {
	r.byExt[strings.ToLower(ext)] = s
}

// For returns the stripper for ext. Unknown extensions pass through unchanged.
func (r *Registry) For(ext string) Stripper {
	if s, ok := r.byExt[strings.ToLower(ext)]; ok {
		return s
	}
	return passthrough
}

// Strip strips content using the stripper registered for ext.
func (r *Registry) Strip(content, ext string) string {
	return r.For(ext).Strip(content)
}

var defaultRegistry = NewRegistry()

// Strip strips content with the default registry (string stripping enabled).
func Strip(content, ext string) string {
	return defaultRegistry.Strip(content, ext)
}

// keepNewlines returns only the newline characters of s.
func keepNewlines(s string) string {
	n := strings.Count(s, "\n")
	if n == 0 {
		return ""
	}
	return strings.Repeat("\n", n)
}
