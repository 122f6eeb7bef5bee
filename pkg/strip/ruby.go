package strip

import (
	"strings"
)

// RubyStripper removes # line comments and =begin/=end blocks and, when
// StripStrings is set, the contents of quoted string literals and heredoc
// bodies. The quotes, heredoc openers and terminator lines are kept so token
// boundaries survive. Interpolations in double-quoted strings and in
// interpolating heredocs are code and are kept verbatim.
type RubyStripper struct {
	StripStrings bool
}

// Strip implements Stripper.
func (s *RubyStripper) Strip(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	n := len(src)
	lineStart := true
	var pending []heredoc
	for i := 0; i < n; {
		c := src[i]

		if c == '\n' && len(pending) > 0 {
			b.WriteByte('\n')
			i++
			for _, h := range pending {
				i = s.heredocBody(&b, src, i, h)
			}
			pending = pending[:0]
			lineStart = true
			continue
		}

		if lineStart && isBlockCommentStart(src[i:]) {
			end := blockCommentEnd(src, i)
			b.WriteString(keepNewlines(src[i:end]))
			i = end
			continue
		}

		switch c {
		case '#':
			if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
				i += j
			} else {
				i = n
			}
			continue
		case '"', '\'':
			i = s.literal(&b, src, i)
			lineStart = false
			continue
		case '<':
			if h, end, ok := parseHeredoc(src, i); ok {
				b.WriteString(src[i:end])
				pending = append(pending, h)
				i = end
				lineStart = false
				continue
			}
		}

		b.WriteByte(c)
		lineStart = c == '\n'
		i++
	}
	return b.String()
}

// literal copies the string literal opening at src[start] into b and returns
// the index just past its closing quote.
func (s *RubyStripper) literal(b *strings.Builder, src string, start int) int {
	quote := src[start]
	b.WriteByte(quote)

	n := len(src)
	for j := start + 1; j < n; {
		ch := src[j]
		switch {
		case ch == '\\':
			if j+1 < n {
				if !s.StripStrings {
					b.WriteString(src[j : j+2])
				} else if src[j+1] == '\n' {
					b.WriteByte('\n')
				}
				j += 2
				continue
			}
			if !s.StripStrings {
				b.WriteByte(ch)
			}
			j++
		case ch == quote:
			b.WriteByte(quote)
			return j + 1
		case quote == '"' && ch == '#' && j+1 < n && src[j+1] == '{':
			end := closingBrace(src, j+1)
			b.WriteString(src[j:end])
			j = end
		case ch == '\n':
			b.WriteByte('\n')
			j++
		default:
			if !s.StripStrings {
				b.WriteByte(ch)
			}
			j++
		}
	}
	return n
}

// heredoc is an opened heredoc waiting for its body on the following lines.
type heredoc struct {
	id     string
	indent bool // <<~ and <<- allow an indented terminator
	interp bool
}

// parseHeredoc recognises a heredoc opener at src[start] and returns it with
// the index just past the opener. A bare identifier without ~ or - must be
// upper case so shifts like a<<b are left alone.
func parseHeredoc(src string, start int) (heredoc, int, bool) {
	n := len(src)
	if start+2 >= n || src[start+1] != '<' {
		return heredoc{}, 0, false
	}
	j := start + 2
	h := heredoc{interp: true}
	if src[j] == '~' || src[j] == '-' {
		h.indent = true
		j++
	}
	if j >= n {
		return heredoc{}, 0, false
	}

	switch q := src[j]; q {
	case '\'', '"', '`':
		k := j + 1
		for k < n && src[k] != q && src[k] != '\n' {
			k++
		}
		if k >= n || src[k] != q || k == j+1 {
			return heredoc{}, 0, false
		}
		h.id = src[j+1 : k]
		h.interp = q != '\''
		return h, k + 1, true
	}

	k := j
	for k < n && isIdentByte(src[k]) {
		k++
	}
	if k == j || isDigit(src[j]) {
		return heredoc{}, 0, false
	}
	h.id = src[j:k]
	if !h.indent && strings.ToUpper(h.id) != h.id {
		return heredoc{}, 0, false
	}
	return h, k, true
}

// heredocBody copies the body of h starting at src[start] and its terminator
// line into b, returning the index just past the terminator's newline. When
// no terminator line exists, nothing is consumed.
func (s *RubyStripper) heredocBody(b *strings.Builder, src string, start int, h heredoc) int {
	n := len(src)
	for ls := start; ls < n; {
		le := n
		if j := strings.IndexByte(src[ls:], '\n'); j >= 0 {
			le = ls + j
		}
		line := strings.TrimSuffix(src[ls:le], "\r")
		if h.indent {
			line = strings.TrimLeft(line, " \t")
		}
		if line == h.id {
			body := src[start:ls]
			if s.StripStrings {
				writeHeredocCode(b, body, h.interp)
			} else {
				b.WriteString(body)
			}
			if le < n {
				le++
			}
			b.WriteString(src[ls:le])
			return le
		}
		ls = le + 1
	}
	return start
}

// writeHeredocCode writes the newlines of body and, when interp is set, its
// #{...} interpolations.
func writeHeredocCode(b *strings.Builder, body string, interp bool) {
	for k := 0; k < len(body); {
		switch ch := body[k]; {
		case ch == '\n':
			b.WriteByte('\n')
			k++
		case ch == '\\':
			if k+1 < len(body) && body[k+1] == '\n' {
				b.WriteByte('\n')
			}
			k += 2
		case interp && ch == '#' && k+1 < len(body) && body[k+1] == '{':
			end := closingBrace(body, k+1)
			b.WriteString(body[k:end])
			k = end
		default:
			k++
		}
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// closingBrace returns the index just past the brace matching src[open].
func closingBrace(src string, open int) int {
	depth := 0
	for k := open; k < len(src); k++ {
		switch src[k] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return k + 1
			}
		}
	}
	return len(src)
}

func isBlockCommentStart(s string) bool {
	if !strings.HasPrefix(s, "=begin") {
		return false
	}
	if len(s) == len("=begin") {
		return true
	}
	next := s[len("=begin")]
	return next == ' ' || next == '\t' || next == '\n' || next == '\r'
}

// blockCommentEnd returns the index of the newline that terminates the
// =end line of the block opened at start, or len(src) when unterminated.
func blockCommentEnd(src string, start int) int {
	rest := src[start:]
	k := strings.Index(rest, "\n=end")
	if k < 0 {
		return len(src)
	}
	after := start + k + len("\n=end")
	if j := strings.IndexByte(src[after:], '\n'); j >= 0 {
		return after + j
	}
	return len(src)
}
