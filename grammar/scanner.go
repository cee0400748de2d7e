package grammar

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

type TokenType int

const (
	UNDEFINED TokenType = iota
	EOF
	NEWLINE
	WORD
	INT
	FLOAT
)

func (tokenType TokenType) String() string {
	switch tokenType {
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case WORD:
		return "WORD"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	}
	return "UNDEFINED"
}

type Token struct {
	Type  TokenType
	Text  string
	Line  int
	Start int
}

func (tok Token) String() string {
	return fmt.Sprintf("<%v %q %d:%d>", tok.Type, tok.Text, tok.Line, tok.Start)
}

var eof = rune(0)

// Scanner tokenizes MF6 input text. Items are maximal runs of
// non-whitespace characters, classified as integer, float or word;
// newlines are significant and produce their own token.
type Scanner struct {
	r          *bufio.Reader
	line       int
	column     int
	prevColumn int
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r), line: 1, column: 0}
}

func (s *Scanner) read() rune {
	ch, _, err := s.r.ReadRune()
	if err != nil {
		return eof
	}
	if ch == '\n' {
		s.line = s.line + 1
		s.prevColumn = s.column + 1
		s.column = 0
	} else {
		s.column = s.column + 1
	}
	return ch
}

func (s *Scanner) unread(ch rune) {
	if ch == '\n' {
		s.column = s.prevColumn - 1
		s.line = s.line - 1
	} else {
		s.column = s.column - 1
	}
	s.r.UnreadRune()
}

func (s *Scanner) Scan() Token {
	for {
		ch := s.read()
		switch {
		case ch == eof:
			return Token{Type: EOF, Line: s.line, Start: s.column}
		case ch == '\n':
			return Token{Type: NEWLINE, Text: "\n", Line: s.line - 1, Start: s.prevColumn}
		case ch == ' ' || ch == '\t' || ch == '\r':
			continue
		default:
			return s.scanItem(ch)
		}
	}
}

func (s *Scanner) scanItem(firstChar rune) Token {
	var buf bytes.Buffer
	buf.WriteRune(firstChar)
	tok := Token{Line: s.line, Start: s.column}
	for {
		ch := s.read()
		if ch == eof {
			break
		}
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.unread(ch)
			break
		}
		buf.WriteRune(ch)
	}
	tok.Text = buf.String()
	tok.Type = classify(tok.Text)
	return tok
}

// classify applies the number literal rule: an item is an integer if
// it parses as one with no decimal point or exponent marker, a float
// if it parses as a floating point literal, and a bare word
// otherwise.
func classify(text string) TokenType {
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return INT
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return FLOAT
	}
	return WORD
}
