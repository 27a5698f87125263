package token

import (
	"regexp"

	"github.com/oarkflow/qwery/qerrors"
)

// Stream is a peekable, position-tracked, monotonically advancing
// sequence of Tokens. The cursor only ever moves forward; Stream exposes
// no way to rewind beyond the single token of lookahead Peek gives you.
type Stream struct {
	toks []Token
	pos  int
}

// New wraps toks (produced by Lex) in a Stream positioned at the start.
func New(toks []Token) *Stream {
	return &Stream{toks: toks}
}

// HasNext reports whether at least one more token remains.
func (s *Stream) HasNext() bool {
	return s.pos < len(s.toks)
}

// Peek returns the next token without consuming it. At end of input it
// returns a zero-value EOF token positioned just past the last token.
func (s *Stream) Peek() Token {
	if s.pos < len(s.toks) {
		return s.toks[s.pos]
	}
	return s.eofToken()
}

func (s *Stream) eofToken() Token {
	if len(s.toks) == 0 {
		return Token{Kind: EOF, Line: 1, Col: 1}
	}
	last := s.toks[len(s.toks)-1]
	return Token{Kind: EOF, Line: last.Line, Col: last.Col + len(last.Text)}
}

// Next consumes and returns the next token. It fails with SyntaxError if
// the stream is exhausted.
func (s *Stream) Next() (Token, error) {
	if s.pos >= len(s.toks) {
		eof := s.eofToken()
		return eof, qerrors.NewSyntaxError(s.position(eof), "", "unexpected end of input")
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

// Is reports whether the next (unconsumed) token's text matches s,
// without consuming it.
func (s *Stream) Is(text string) bool {
	return s.Peek().Is(text)
}

// Matches reports whether the next token's text matches the given
// regular expression, without consuming it.
func (s *Stream) Matches(pattern *regexp.Regexp) bool {
	return pattern.MatchString(s.Peek().Text)
}

// NextIf consumes and returns the next token iff its text matches s
// (case-insensitive for keyword-shaped text). On mismatch the cursor is
// left unchanged and ok is false.
func (s *Stream) NextIf(text string) (Token, bool) {
	if !s.Is(text) {
		return Token{}, false
	}
	t, _ := s.Next()
	return t, true
}

// Expect consumes the next token, failing with SyntaxError if its text
// does not match s.
func (s *Stream) Expect(text string) (Token, error) {
	t := s.Peek()
	if !t.Is(text) {
		return Token{}, qerrors.NewSyntaxError(s.position(t), t.Text, "expected %q", text)
	}
	return s.Next()
}

func (s *Stream) position(t Token) qerrors.Position {
	return qerrors.Position{Line: t.Line, Col: t.Col}
}
