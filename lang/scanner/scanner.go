// Package scanner tokenizes dyl source files for the parser to consume.
package scanner

import (
	"fmt"
	"go/scanner"
	"go/token"
	"unicode"
	"unicode/utf8"

	dyltoken "github.com/mna/dyl/lang/token"
)

// Error and ErrorList are the diagnostic types used by every compiler
// pass (scanner, parser, type checker, lowering): each pass owns its own
// error list and appends to it as it walks the source.
type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// PrintError prints err to w, formatting *Error and ErrorList appropriately.
var PrintError = scanner.PrintError

// TokenAndPos combines a scanned token with its source position and, for
// INT, IDENT and keywords, the raw literal text.
type TokenAndPos struct {
	Token dyltoken.Token
	Pos   token.Pos
	Lit   string
}

// ScanFile tokenizes src and returns every token up to and including EOF.
// Lexical errors are not returned: each one is passed to errHandler as it
// is found.
func ScanFile(file *token.File, src []byte, errHandler func(token.Position, string)) []TokenAndPos {
	var s Scanner
	s.Init(file, src, errHandler)

	var out []TokenAndPos
	for {
		tok, pos, lit := s.Scan()
		out = append(out, TokenAndPos{Token: tok, Pos: pos, Lit: lit})
		if tok == dyltoken.EOF {
			break
		}
	}
	return out
}

// Scanner tokenizes a single source file.
type Scanner struct {
	// immutable state after Init
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	cur  rune // current character, -1 at end of file
	off  int  // byte offset of cur
	roff int  // byte offset just past cur
}

// Init initializes the scanner to tokenize src, which must have the same
// length as the span registered for file.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.advance()
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(off)), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

func (s *Scanner) skipWhitespace() {
	for s.cur == ' ' || s.cur == '\t' || s.cur == '\n' || s.cur == '\r' {
		s.advance()
	}
}

// Scan returns the next token, its position, and its literal text (for
// IDENT, INT and keywords; empty for everything else).
func (s *Scanner) Scan() (tok dyltoken.Token, pos token.Pos, lit string) {
	s.skipWhitespace()

	start := s.off
	pos = s.file.Pos(start)

	switch cur := s.cur; {
	case isLetter(cur):
		for isLetter(s.cur) || isDigit(s.cur) {
			s.advance()
		}
		lit = string(s.src[start:s.off])
		tok = dyltoken.Lookup(lit)
		return tok, pos, lit

	case isDigit(cur):
		for isDigit(s.cur) {
			s.advance()
		}
		lit = string(s.src[start:s.off])
		return dyltoken.INT, pos, lit

	default:
		s.advance() // always make progress

		switch cur {
		case '+':
			tok = dyltoken.PLUS
		case '-':
			tok = dyltoken.MINUS
		case '*':
			tok = dyltoken.STAR
		case '=':
			tok = dyltoken.ASSIGN
		case ';':
			tok = dyltoken.SEMI
		case '(':
			tok = dyltoken.LPAREN
		case ')':
			tok = dyltoken.RPAREN
		case '{':
			tok = dyltoken.LBRACE
		case '}':
			tok = dyltoken.RBRACE
		case -1:
			tok = dyltoken.EOF
		default:
			s.errorf(start, "illegal character %#U", cur)
			tok = dyltoken.ILLEGAL
		}
		return tok, pos, ""
	}
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' ||
		r >= utf8.RuneSelf && unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
