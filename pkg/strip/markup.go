package strip

import (
	"regexp"
)

var (
	htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	erbComment  = regexp.MustCompile(`(?s)<%#.*?%>`)

	// haml "-#" silent comments, to end of line
	hamlSilentComment = regexp.MustCompile(`(?m)^[ \t]*-#.*$`)
	// slim "/" code comments (and "/!" html comments), to end of line
	slimCodeComment = regexp.MustCompile(`(?m)^[ \t]*/.*$`)
)

// MarkupStripper removes <!-- --> and <%# %> comments until none remain, so
// a comment assembled by removing another is removed too. Silent, when set,
// additionally removes template-language line comments. Embedded code in
// <% %> tags is left as is.
type MarkupStripper struct {
	Silent *regexp.Regexp
}

// Strip implements Stripper.
func (m MarkupStripper) Strip(src string) string {
	out := src
	for {
		next := htmlComment.ReplaceAllStringFunc(out, keepNewlines)
		next = erbComment.ReplaceAllStringFunc(next, keepNewlines)
		if next == out {
			break
		}
		out = next
	}
	if m.Silent != nil {
		out = m.Silent.ReplaceAllString(out, "")
	}
	return out
}
