package value

import (
	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/token"
)

// precedence levels for the arithmetic/function layer of the expression
// grammar. The boolean layer (OR, AND, NOT, comparisons) is outranked by
// all of these and lives in the condition package, which calls Parse for
// its operands.
type precedence int

const (
	precLowest precedence = iota
	precAddSub
	precMulDiv
	precUnary
)

func tokenPrec(t token.Token) (precedence, Op, bool) {
	if t.Kind != token.Operator {
		return 0, 0, false
	}
	switch t.Text {
	case "+":
		return precAddSub, Add, true
	case "-":
		return precAddSub, Sub, true
	case "*":
		return precMulDiv, Mul, true
	case "/":
		return precMulDiv, Div, true
	}
	return 0, 0, false
}

// Parse parses a single comma-free expression from ts. Callers split
// comma-separated lists themselves (e.g. the template parser's @{name}
// slot) and call Parse once per element.
func Parse(ts *token.Stream) (Value, error) {
	return parseBinary(ts, precLowest)
}

func parseBinary(ts *token.Stream, minPrec precedence) (Value, error) {
	left, err := parseUnary(ts)
	if err != nil {
		return nil, err
	}
	for {
		prec, op, ok := tokenPrec(ts.Peek())
		if !ok || prec < minPrec {
			return left, nil
		}
		ts.Next()
		right, err := parseBinary(ts, prec+1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func parseUnary(ts *token.Stream) (Value, error) {
	if t := ts.Peek(); t.Kind == token.Operator && t.Text == "-" {
		ts.Next()
		operand, err := parseBinary(ts, precUnary)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Operand: operand}, nil
	}
	return parsePrimary(ts)
}

func parsePrimary(ts *token.Stream) (Value, error) {
	if !ts.HasNext() {
		return nil, qerrors.NewSyntaxError(qerrors.Position{}, "", "expression expected")
	}
	t := ts.Peek()
	switch t.Kind {
	case token.Number:
		ts.Next()
		return &Literal{Payload: t.Value}, nil
	case token.String:
		ts.Next()
		return &Literal{Payload: t.Value}, nil
	case token.Punctuation:
		if t.Text == "(" {
			ts.Next()
			inner, err := parseBinary(ts, precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := ts.Expect(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	case token.Operator:
		if t.Text == "*" {
			ts.Next()
			return Star{}, nil
		}
	case token.Keyword:
		switch upper(t.Text) {
		case "TRUE":
			ts.Next()
			return &Literal{Payload: true}, nil
		case "FALSE":
			ts.Next()
			return &Literal{Payload: false}, nil
		case "NULL":
			ts.Next()
			return &Literal{Payload: nil}, nil
		}
	case token.Identifier:
		return parseIdentOrCall(ts)
	}
	return nil, qerrors.NewSyntaxError(qerrors.Position{Line: t.Line, Col: t.Col}, t.Text, "expression expected")
}

func parseIdentOrCall(ts *token.Stream) (Value, error) {
	name, err := ts.Next()
	if err != nil {
		return nil, err
	}
	if ts.Is("(") {
		ts.Next() // consume '('
		if lower(name.Text) == "count" && ts.Is("*") {
			ts.Next()
			if _, err := ts.Expect(")"); err != nil {
				return nil, err
			}
			return &FunctionRef{Name: name.Text, Args: []Value{Star{}}}, nil
		}
		var args []Value
		if !ts.Is(")") {
			for {
				arg, err := parseBinary(ts, precLowest)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if _, ok := ts.NextIf(","); !ok {
					break
				}
			}
		}
		if _, err := ts.Expect(")"); err != nil {
			return nil, err
		}
		return &FunctionRef{Name: name.Text, Args: args}, nil
	}
	return &FieldRef{Name: name.Text}, nil
}

// ParseField consumes a single bare identifier token and returns it as a
// Field — the restricted, non-expression slot used by fieldReferences
// and sortFields template placeholders.
func ParseField(ts *token.Stream) (Field, error) {
	t := ts.Peek()
	if t.Kind != token.Identifier {
		return Field{}, qerrors.NewSyntaxError(qerrors.Position{Line: t.Line, Col: t.Col}, t.Text, "field name expected")
	}
	ts.Next()
	return Field{Name: t.Text}, nil
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
