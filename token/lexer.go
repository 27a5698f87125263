package token

import (
	"strconv"
	"strings"

	"github.com/oarkflow/qwery/qerrors"
)

// Lex scans src into a finite slice of Tokens terminated implicitly by
// EOF (no EOF token is appended; callers detect exhaustion via
// Stream.HasNext). Whitespace and `-- line` comments are skipped.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *lexer) pos2() qerrors.Position {
	return qerrors.Position{Pos: l.pos, Line: l.line, Col: l.col}
}

func (l *lexer) next() (Token, error) {
	l.skipInsignificant()
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Line: l.line, Col: l.col}, nil
	}
	line, col := l.line, l.col
	b := l.peekByte()
	switch {
	case isIdentStart(b):
		return l.scanIdent(line, col), nil
	case isDigit(b):
		return l.scanNumber(line, col)
	case b == '\'' || b == '"':
		return l.scanString(line, col)
	default:
		return l.scanOperator(line, col)
	}
}

func (l *lexer) skipInsignificant() {
	for l.pos < len(l.src) {
		b := l.src[l.pos]
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '-' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '-':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '.'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (l *lexer) scanIdent(line, col int) Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.advance()
	}
	text := l.src[start:l.pos]
	kind := Identifier
	if IsKeyword(text) {
		kind = Keyword
	}
	return Token{Text: text, Kind: kind, Line: line, Col: col}
}

func (l *lexer) scanNumber(line, col int) (Token, error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.advance()
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		l.advance()
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.advance()
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.advance()
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.advance()
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.advance()
			}
		} else {
			l.pos = save // not actually an exponent; back off
		}
	}
	text := l.src[start:l.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, qerrors.NewSyntaxError(qerrors.Position{Pos: start, Line: line, Col: col}, text, "malformed numeric literal")
	}
	return Token{Text: text, Value: f, Kind: Number, Line: line, Col: col}, nil
}

func (l *lexer) scanString(line, col int) (Token, error) {
	quote := l.advance()
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, qerrors.NewSyntaxError(l.pos2(), "", "unterminated string literal")
		}
		c := l.src[l.pos]
		if c == quote {
			l.advance()
			if l.pos < len(l.src) && l.src[l.pos] == quote {
				// doubled-quote escape: '' inside '...'
				b.WriteByte(quote)
				l.advance()
				continue
			}
			break
		}
		b.WriteByte(c)
		l.advance()
	}
	text := b.String()
	return Token{Text: text, Value: text, Kind: String, Line: line, Col: col}, nil
}

var twoCharOps = map[string]bool{
	"<>": true, "!=": true, "<=": true, ">=": true,
}

func (l *lexer) scanOperator(line, col int) (Token, error) {
	b := l.advance()
	one := string(b)
	if l.pos < len(l.src) {
		two := one + string(l.src[l.pos])
		if twoCharOps[two] {
			l.advance()
			return Token{Text: two, Kind: Operator, Line: line, Col: col}, nil
		}
	}
	switch b {
	case '=', '<', '>', '+', '-', '*', '/':
		return Token{Text: one, Kind: Operator, Line: line, Col: col}, nil
	case ',', '(', ')', ';', '.':
		return Token{Text: one, Kind: Punctuation, Line: line, Col: col}, nil
	default:
		return Token{}, qerrors.NewSyntaxError(qerrors.Position{Pos: l.pos - 1, Line: line, Col: col}, one, "unexpected character %q", b)
	}
}
