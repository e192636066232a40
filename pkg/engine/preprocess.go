package engine

import "strings"

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites building script source into something zygomys
// accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user variables of the same name.
//  2. Kebab-case identifiers become snake case (regular-polygon ->
//     regular_polygon), since zygomys reads a hyphen as subtraction.
//  3. ; and ;; line comments become // comments.
//
// String literals are copied untouched.
func preprocessSource(source string) string {
	s := scanner{src: source}
	s.out.Grow(len(source) + len(source)/4)
	for !s.done() {
		switch c := s.peek(0); {
		case c == '"':
			s.copyQuoted('"', true)
		case c == '`':
			s.copyQuoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.peek(1) == '=':
			s.copy(2)
		case c == ':' && isLetter(s.peek(1)):
			s.keyword()
		case c == '-' && s.pos > 0 && isIdentChar(s.src[s.pos-1]) && isLetter(s.peek(1)):
			s.out.WriteByte('_')
			s.pos++
		default:
			s.copy(1)
		}
	}
	return s.out.String()
}

type scanner struct {
	src string
	pos int
	out strings.Builder
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

// peek returns the byte at pos+off, or 0 past the end.
func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func (s *scanner) copy(n int) {
	if s.pos+n > len(s.src) {
		n = len(s.src) - s.pos
	}
	s.out.WriteString(s.src[s.pos : s.pos+n])
	s.pos += n
}

// copyQuoted copies a literal delimited by q, honoring backslash escapes
// when escapes is set. An unterminated literal runs to the end.
func (s *scanner) copyQuoted(q byte, escapes bool) {
	s.copy(1)
	for !s.done() {
		c := s.peek(0)
		switch {
		case escapes && c == '\\':
			s.copy(2)
		case c == q:
			s.copy(1)
			return
		default:
			s.copy(1)
		}
	}
}

func (s *scanner) comment() {
	for s.peek(0) == ';' {
		s.pos++
	}
	s.out.WriteString("//")
	for !s.done() && s.peek(0) != '\n' {
		s.copy(1)
	}
}

func (s *scanner) keyword() {
	s.pos++ // ':'
	start := s.pos
	for !s.done() && isKWChar(s.peek(0)) {
		s.pos++
	}
	s.out.WriteByte('"')
	s.out.WriteString(kwPrefix)
	s.out.WriteString(s.src[start:s.pos])
	s.out.WriteByte('"')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
