// Package scanner implements the on-demand lexical analyzer for blox.
//
// Scanner.Next is called once per token by the compiler; there is no
// separate tokenize-everything pass. The scanner tracks its position and
// line in the struct and reads one byte at a time, skipping whitespace and
// line comments before each token.
package scanner

import (
	"github.com/kristofer/blox/pkg/token"
)

// Scanner walks a source buffer producing tokens on demand.
type Scanner struct {
	source  string
	start   int // start of the lexeme currently being scanned
	current int // index of the next unread byte
	line    int
}

// New creates a scanner over source. The scanner never fails to construct;
// malformed input surfaces as Error-kind tokens from Next.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Next returns the next token. Once the source is exhausted it returns a
// zero-length Eof token on every subsequent call.
func (s *Scanner) Next() token.Token {
	s.skipWhitespaceAndComments()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.Eof)
	}

	c := s.advance()

	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LeftParen)
	case ')':
		return s.make(token.RightParen)
	case '{':
		return s.make(token.LeftBrace)
	case '}':
		return s.make(token.RightBrace)
	case ',':
		return s.make(token.Comma)
	case '.':
		return s.make(token.Dot)
	case '-':
		return s.make(token.Minus)
	case '+':
		return s.make(token.Plus)
	case ';':
		return s.make(token.Semicolon)
	case '*':
		return s.make(token.Star)
	case ':':
		return s.make(token.Colon)
	case '/':
		return s.make(token.Slash)
	case '!':
		return s.make(s.choose('=', token.BangEqual, token.Bang))
	case '=':
		return s.make(s.choose('=', token.EqualEqual, token.Equal))
	case '<':
		return s.make(s.choose('=', token.LessEqual, token.Less))
	case '>':
		return s.make(s.choose('=', token.GreaterEqual, token.Greater))
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

// choose returns `then` if the next unread byte is expected (consuming it),
// else `otherwise`.
func (s *Scanner) choose(expected byte, then, otherwise token.Type) token.Type {
	if s.atEnd() || s.source[s.current] != expected {
		return otherwise
	}
	s.current++
	return then
}

func (s *Scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		switch c := s.peek(); c {
		case ' ', '\t', '\r':
			s.current++
		case '\n':
			s.current++
			s.line++
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for !s.atEnd() && s.peek() != '\n' {
				s.current++
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.current++
	}

	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}

	s.current++ // closing quote
	tok := token.Token{Kind: token.String, Start: s.start + 1, Length: s.current - s.start - 2, Line: s.line}
	return tok
}

func (s *Scanner) number() token.Token {
	for !s.atEnd() && isDigit(s.peek()) {
		s.current++
	}

	if !s.atEnd() && s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++ // consume '.'
		for !s.atEnd() && isDigit(s.peek()) {
			s.current++
		}
	}

	return s.make(token.Number)
}

func (s *Scanner) identifier() token.Token {
	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.current++
	}
	lexeme := s.source[s.start:s.current]
	if kind, ok := token.Keywords[lexeme]; ok {
		return s.make(kind)
	}
	return s.make(token.Identifier)
}

func (s *Scanner) make(kind token.Type) token.Token {
	return token.Token{Kind: kind, Start: s.start, Length: s.current - s.start, Line: s.line}
}

func (s *Scanner) errorToken(message string) token.Token {
	return token.Token{Kind: token.Error, Start: s.start, Length: s.current - s.start, Line: s.line, Message: message}
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) atEnd() bool {
	return s.current >= len(s.source)
}

// isAlpha reports whether c can start an identifier. Only ASCII letters and
// underscore qualify; multi-byte runes are permitted inside string literals
// and comments but not identifiers, since this predicate never looks past a
// single byte.
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
