package value_test

import (
	"testing"

	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/token"
	"github.com/oarkflow/qwery/value"
)

func mustParse(t *testing.T, src string) value.Value {
	t.Helper()
	toks, err := token.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	v, err := value.Parse(token.New(toks))
	if err != nil {
		t.Fatalf("parse error: %v\nexpr: %s", err, src)
	}
	return v
}

func eval(t *testing.T, src string, s scope.Scope) any {
	t.Helper()
	v := mustParse(t, src)
	got, err := v.Evaluate(s)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}
	return got
}

func TestArithmeticPrecedence(t *testing.T) {
	s := scope.New()
	if got := eval(t, "1 + 2 * 3", s); got != 7.0 {
		t.Fatalf("expected 7, got %v", got)
	}
	if got := eval(t, "(1 + 2) * 3", s); got != 9.0 {
		t.Fatalf("expected 9, got %v", got)
	}
	if got := eval(t, "10 - 2 - 3", s); got != 5.0 {
		t.Fatalf("expected left-associative 5, got %v", got)
	}
}

func TestUnaryMinus(t *testing.T) {
	s := scope.New()
	if got := eval(t, "-5 + 2", s); got != -3.0 {
		t.Fatalf("expected -3, got %v", got)
	}
}

func TestFieldRefResolution(t *testing.T) {
	s := scope.New()
	s.Bind("a", &value.Literal{Payload: 40.0})
	s.Bind("b", &value.Literal{Payload: 2.0})
	if got := eval(t, "a + b", s); got != 42.0 {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestFieldRefUnknownIsResolutionError(t *testing.T) {
	s := scope.New()
	v := mustParse(t, "missing")
	if _, err := v.Evaluate(s); err == nil {
		t.Fatalf("expected resolution error for unknown field")
	}
}

func TestFunctionCallCountStar(t *testing.T) {
	v := mustParse(t, "count(*)")
	fn, ok := v.(*value.FunctionRef)
	if !ok {
		t.Fatalf("expected *FunctionRef, got %T", v)
	}
	if !fn.IsAggregate() {
		t.Fatalf("expected count to be recognized as an aggregate")
	}
	if len(fn.Args) != 1 {
		t.Fatalf("expected count(*) to carry one Star argument, got %d", len(fn.Args))
	}
	if _, ok := fn.Args[0].(value.Star); !ok {
		t.Fatalf("expected Star argument, got %T", fn.Args[0])
	}
}

func TestBareStarParsesAsStar(t *testing.T) {
	v := mustParse(t, "*")
	if _, ok := v.(value.Star); !ok {
		t.Fatalf("expected bare * to parse as Star, got %T", v)
	}
}

func TestMissingFunctionReturnsNullByDefault(t *testing.T) {
	s := scope.New()
	got := eval(t, "nope(1, 2)", s)
	if got != nil {
		t.Fatalf("expected NULL for unresolved function, got %v", got)
	}
}

func TestMissingFunctionStrictModeErrors(t *testing.T) {
	s := scope.New()
	s.SetStrictFunctions(true)
	v := mustParse(t, "nope(1)")
	if _, err := v.Evaluate(s); err == nil {
		t.Fatalf("expected ResolutionError in strict mode")
	}
}

func TestScopeShadowing(t *testing.T) {
	parent := scope.New()
	parent.Bind("x", &value.Literal{Payload: 1.0})
	child := parent.Child()
	if got := eval(t, "x", child); got != 1.0 {
		t.Fatalf("expected child to see parent binding, got %v", got)
	}
	f := child.(*scope.Frame)
	f.Bind("x", &value.Literal{Payload: 2.0})
	if got := eval(t, "x", child); got != 2.0 {
		t.Fatalf("expected child binding to shadow parent, got %v", got)
	}
	if got := eval(t, "x", parent); got != 1.0 {
		t.Fatalf("expected parent unaffected by child binding, got %v", got)
	}
}

func TestStringExpansion(t *testing.T) {
	s := scope.New()
	s.Bind("name", &value.Literal{Payload: "AAPL"})
	got := eval(t, "'ticker: ${name}'", s)
	if got != "ticker: AAPL" {
		t.Fatalf("expected expansion, got %q", got)
	}
}

func TestDivisionByZero(t *testing.T) {
	s := scope.New()
	v := mustParse(t, "1 / 0")
	if _, err := v.Evaluate(s); err == nil {
		t.Fatalf("expected runtime error for division by zero")
	}
}
