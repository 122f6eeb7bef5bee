package strip

import (
	"strings"
)

// CStyleStripper removes // line comments and /* */ block comments.
// Quoted strings and template literals are copied through untouched so
// "http://example.com" is not mistaken for a comment.
type CStyleStripper struct{}

// Strip implements Stripper.
func (CStyleStripper) Strip(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	n := len(src)
	for i := 0; i < n; {
		c := src[i]
		switch {
		case c == '/' && i+1 < n && src[i+1] == '/':
			if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
				i += j
			} else {
				i = n
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			var body string
			if end < 0 {
				body = src[i:]
				i = n
			} else {
				body = src[i : i+2+end+2]
				i += 2 + end + 2
			}
			if nl := keepNewlines(body); nl != "" {
				b.WriteString(nl)
			} else {
				b.WriteByte(' ')
			}
		case c == '"' || c == '\'' || c == '`':
			i = copyQuoted(&b, src, i)
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// copyQuoted copies the quoted literal opening at src[start] verbatim and
// returns the index past it. Single and double quoted literals end at a
// newline; template literals may span lines.
func copyQuoted(b *strings.Builder, src string, start int) int {
	quote := src[start]
	n := len(src)
	j := start + 1
	for j < n {
		ch := src[j]
		if ch == '\\' && j+1 < n {
			j += 2
			continue
		}
		if ch == quote {
			j++
			break
		}
		if ch == '\n' && quote != '`' {
			break
		}
		j++
	}
	if j > n {
		j = n
	}
	b.WriteString(src[start:j])
	return j
}
