package condition

import (
	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/token"
	"github.com/oarkflow/qwery/value"
)

// result is either a fully-formed Condition or a "bare" Value that has
// not yet been promoted to one — produced when a parenthesized group
// turns out, once parsed, to hold only an arithmetic expression (e.g.
// the left side of "(1 + 2) > 3"). Propagating the bare value up lets
// an enclosing comparison suffix claim it without ever needing to
// rewind the token stream.
type result struct {
	cond Condition
	bare value.Value
}

// Parse parses a full Condition from ts: Disjunction (the lowest
// precedence level). Parenthesization outranks every boolean operator.
func Parse(ts *token.Stream) (Condition, error) {
	r, err := parseOr(ts)
	if err != nil {
		return nil, err
	}
	if r.cond == nil {
		return nil, qerrors.NewSyntaxError(tokPos(ts), "", "condition expected")
	}
	return r.cond, nil
}

func tokPos(ts *token.Stream) qerrors.Position {
	t := ts.Peek()
	return qerrors.Position{Line: t.Line, Col: t.Col}
}

func parseOr(ts *token.Stream) (result, error) {
	left, err := parseAnd(ts)
	if err != nil {
		return result{}, err
	}
	for {
		if _, ok := ts.NextIf("OR"); !ok {
			return left, nil
		}
		if left.cond == nil {
			return result{}, qerrors.NewSyntaxError(tokPos(ts), "OR", "condition expected before OR")
		}
		right, err := parseAnd(ts)
		if err != nil {
			return result{}, err
		}
		if right.cond == nil {
			return result{}, qerrors.NewSyntaxError(tokPos(ts), "", "condition expected after OR")
		}
		left = result{cond: &Disjunction{Left: left.cond, Right: right.cond}}
	}
}

func parseAnd(ts *token.Stream) (result, error) {
	left, err := parseNotLevel(ts)
	if err != nil {
		return result{}, err
	}
	for {
		if _, ok := ts.NextIf("AND"); !ok {
			return left, nil
		}
		if left.cond == nil {
			return result{}, qerrors.NewSyntaxError(tokPos(ts), "AND", "condition expected before AND")
		}
		right, err := parseNotLevel(ts)
		if err != nil {
			return result{}, err
		}
		if right.cond == nil {
			return result{}, qerrors.NewSyntaxError(tokPos(ts), "", "condition expected after AND")
		}
		left = result{cond: &Conjunction{Left: left.cond, Right: right.cond}}
	}
}

// parseNotLevel handles prefix NOT (right-associative: NOT NOT a
// re-enters itself) and parenthesized condition groups, before falling
// through to a comparison.
func parseNotLevel(ts *token.Stream) (result, error) {
	if _, ok := ts.NextIf("NOT"); ok {
		inner, err := parseNotLevel(ts)
		if err != nil {
			return result{}, err
		}
		if inner.cond == nil {
			return result{}, qerrors.NewSyntaxError(tokPos(ts), "", "condition expected after NOT")
		}
		return result{cond: &Negation{Operand: inner.cond}}, nil
	}
	if ts.Is("(") {
		ts.Next()
		inner, err := parseOr(ts)
		if err != nil {
			return result{}, err
		}
		if _, err := ts.Expect(")"); err != nil {
			return result{}, err
		}
		if inner.cond != nil {
			return inner, nil
		}
		// The parens wrapped a bare value (e.g. "(1 + 2)"): try to
		// complete it with a comparison suffix exactly as
		// parseComparison does for an unparenthesized left side.
		return parseSuffix(ts, inner.bare)
	}
	return parseComparison(ts)
}

func parseComparison(ts *token.Stream) (result, error) {
	left, err := value.Parse(ts)
	if err != nil {
		return result{}, err
	}
	return parseSuffix(ts, left)
}

var cmpOps = map[string]CmpOp{
	"=": Eq, "<>": Neq, "!=": Neq, "<": Lt, "<=": Lte, ">": Gt, ">=": Gte,
}

// parseSuffix looks for a comparison/LIKE/IN/BETWEEN/IS-NULL suffix
// following an already-parsed Value left. If none is found, left is
// returned as a bare pending Value.
func parseSuffix(ts *token.Stream, left value.Value) (result, error) {
	if t := ts.Peek(); t.Kind == token.Operator {
		if op, ok := cmpOps[t.Text]; ok {
			ts.Next()
			right, err := value.Parse(ts)
			if err != nil {
				return result{}, err
			}
			return result{cond: &Comparison{Op: op, Left: left, Right: right}}, nil
		}
	}

	not := false
	if _, ok := ts.NextIf("NOT"); ok {
		not = true
	}
	switch {
	case ts.Is("LIKE"):
		ts.Next()
		pattern, err := value.Parse(ts)
		if err != nil {
			return result{}, err
		}
		return result{cond: &Like{Expr: left, Pattern: pattern, Not: not}}, nil
	case ts.Is("IN"):
		ts.Next()
		list, err := parseExprList(ts)
		if err != nil {
			return result{}, err
		}
		return result{cond: &In{Expr: left, List: list, Not: not}}, nil
	case ts.Is("BETWEEN"):
		ts.Next()
		lo, err := value.Parse(ts)
		if err != nil {
			return result{}, err
		}
		if _, err := ts.Expect("AND"); err != nil {
			return result{}, err
		}
		hi, err := value.Parse(ts)
		if err != nil {
			return result{}, err
		}
		return result{cond: &Between{Expr: left, Lo: lo, Hi: hi, Not: not}}, nil
	}
	if not {
		t := ts.Peek()
		return result{}, qerrors.NewSyntaxError(qerrors.Position{Line: t.Line, Col: t.Col}, t.Text, "expected LIKE, IN, or BETWEEN after NOT")
	}
	if _, ok := ts.NextIf("IS"); ok {
		isNot := false
		if _, ok := ts.NextIf("NOT"); ok {
			isNot = true
		}
		if _, err := ts.Expect("NULL"); err != nil {
			return result{}, err
		}
		return result{cond: &IsNull{Expr: left, Not: isNot}}, nil
	}
	return result{bare: left}, nil
}

func parseExprList(ts *token.Stream) ([]value.Value, error) {
	if _, err := ts.Expect("("); err != nil {
		return nil, err
	}
	var list []value.Value
	if !ts.Is(")") {
		for {
			v, err := value.Parse(ts)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
			if _, ok := ts.NextIf(","); !ok {
				break
			}
		}
	}
	if _, err := ts.Expect(")"); err != nil {
		return nil, err
	}
	return list, nil
}
