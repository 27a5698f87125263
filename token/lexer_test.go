package token_test

import (
	"testing"

	"github.com/oarkflow/qwery/token"
)

func mustLex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := token.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v\nSQL: %s", err, src)
	}
	return toks
}

func TestLexKeywordCaseInsensitive(t *testing.T) {
	for _, src := range []string{"select X from t", "SELECT X FROM t", "Select X From t"} {
		toks := mustLex(t, src)
		if len(toks) != 4 {
			t.Fatalf("expected 4 tokens, got %d: %v", len(toks), toks)
		}
		if toks[0].Kind != token.Keyword {
			t.Fatalf("expected SELECT classified as keyword, got %s", toks[0].Kind)
		}
		if toks[1].Text != "X" {
			t.Fatalf("expected identifier value preserved case, got %q", toks[1].Text)
		}
	}
}

func TestLexIdentifierCaseSensitiveValue(t *testing.T) {
	a := mustLex(t, "SELECT x FROM t")
	b := mustLex(t, "SELECT X FROM t")
	if a[1].Text == b[1].Text {
		t.Fatalf("expected distinct field names, got %q and %q", a[1].Text, b[1].Text)
	}
}

func TestLexNumbers(t *testing.T) {
	toks := mustLex(t, "1 1.5 1e3 1.2e-4")
	want := []float64{1, 1.5, 1000, 1.2e-4}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i, w := range want {
		if toks[i].Kind != token.Number {
			t.Fatalf("token %d: expected Number, got %s", i, toks[i].Kind)
		}
		if toks[i].Value.(float64) != w {
			t.Fatalf("token %d: expected %v, got %v", i, w, toks[i].Value)
		}
	}
}

func TestLexStringEscape(t *testing.T) {
	toks := mustLex(t, `'it''s fine'`)
	if len(toks) != 1 {
		t.Fatalf("expected 1 token, got %d", len(toks))
	}
	if toks[0].Value != "it's fine" {
		t.Fatalf("expected unescaped value, got %q", toks[0].Value)
	}
}

func TestLexCommentsSkipped(t *testing.T) {
	toks := mustLex(t, "SELECT 1 -- trailing comment\nFROM t")
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens (comment skipped), got %d: %v", len(toks), toks)
	}
}

func TestLexOperators(t *testing.T) {
	toks := mustLex(t, "= <> != < <= > >= + - * / , ( ) ; .")
	if len(toks) != 16 {
		t.Fatalf("expected 16 tokens, got %d", len(toks))
	}
}

func TestStreamMonotonicity(t *testing.T) {
	toks := mustLex(t, "SELECT FROM")
	s := token.New(toks)
	if _, ok := s.NextIf("FROM"); ok {
		t.Fatalf("NextIf should not match SELECT against FROM")
	}
	if _, err := s.Expect("SELECT"); err != nil {
		t.Fatalf("expect SELECT: %v", err)
	}
	if _, err := s.Expect("FROM"); err != nil {
		t.Fatalf("expect FROM: %v", err)
	}
	if s.HasNext() {
		t.Fatalf("expected stream exhausted")
	}
}
