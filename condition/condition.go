// Package condition implements the Condition boolean tree: comparisons,
// AND/OR/NOT, IN, LIKE, and BETWEEN, layered on top of the value
// package's expression parser.
package condition

import (
	"strconv"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/value"
)

// Condition is a boolean-producing node.
type Condition interface {
	IsSatisfied(s scope.Scope) (bool, error)
}

// ---- Comparison ----

// CmpOp identifies a comparison operator.
type CmpOp int

const (
	Eq CmpOp = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

// Comparison compares two Values.
type Comparison struct {
	Op          CmpOp
	Left, Right value.Value
}

func (c *Comparison) IsSatisfied(s scope.Scope) (bool, error) {
	cmp, err := c.Left.Compare(c.Right, s)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case Eq:
		return cmp == 0, nil
	case Neq:
		return cmp != 0, nil
	case Lt:
		return cmp < 0, nil
	case Lte:
		return cmp <= 0, nil
	case Gt:
		return cmp > 0, nil
	case Gte:
		return cmp >= 0, nil
	default:
		return false, qerrors.NewRuntimeError("unknown comparison operator")
	}
}

// ---- Conjunction / Disjunction / Negation ----

// Conjunction is A AND B, short-circuiting on a false Left.
type Conjunction struct {
	Left, Right Condition
}

func (c *Conjunction) IsSatisfied(s scope.Scope) (bool, error) {
	l, err := c.Left.IsSatisfied(s)
	if err != nil || !l {
		return false, err
	}
	return c.Right.IsSatisfied(s)
}

// Disjunction is A OR B, short-circuiting on a true Left.
type Disjunction struct {
	Left, Right Condition
}

func (d *Disjunction) IsSatisfied(s scope.Scope) (bool, error) {
	l, err := d.Left.IsSatisfied(s)
	if err != nil || l {
		return l, err
	}
	return d.Right.IsSatisfied(s)
}

// Negation is NOT A.
type Negation struct {
	Operand Condition
}

func (n *Negation) IsSatisfied(s scope.Scope) (bool, error) {
	v, err := n.Operand.IsSatisfied(s)
	if err != nil {
		return false, err
	}
	return !v, nil
}

// ---- LIKE ----

// Like is expr [NOT] LIKE pattern, using the standard SQL '%'/'_'
// wildcards.
type Like struct {
	Expr, Pattern value.Value
	Not           bool
}

func (l *Like) IsSatisfied(s scope.Scope) (bool, error) {
	ev, err := l.Expr.Evaluate(s)
	if err != nil {
		return false, err
	}
	pv, err := l.Pattern.Evaluate(s)
	if err != nil {
		return false, err
	}
	if ev == nil || pv == nil {
		return false, nil
	}
	matched := likeMatch(toStr(ev), toStr(pv))
	if l.Not {
		return !matched, nil
	}
	return matched, nil
}

func toStr(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return strconv.FormatFloat(anyFloat(v), 'g', -1, 64)
}

func anyFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	}
	return 0
}

// likeMatch implements SQL LIKE with '%' (any run) and '_' (single char)
// wildcards via straightforward recursive backtracking — patterns in
// practice are short.
func likeMatch(s, pattern string) bool {
	return likeMatchBytes([]byte(s), []byte(pattern))
}

func likeMatchBytes(s, p []byte) bool {
	for len(p) > 0 {
		switch p[0] {
		case '%':
			for len(p) > 0 && p[0] == '%' {
				p = p[1:]
			}
			if len(p) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if likeMatchBytes(s[i:], p) {
					return true
				}
			}
			return false
		case '_':
			if len(s) == 0 {
				return false
			}
			s, p = s[1:], p[1:]
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
			s, p = s[1:], p[1:]
		}
	}
	return len(s) == 0
}

// ---- IN ----

// In is expr [NOT] IN (v1, v2, ...).
type In struct {
	Expr value.Value
	List []value.Value
	Not  bool
}

func (in *In) IsSatisfied(s scope.Scope) (bool, error) {
	for _, item := range in.List {
		cmp, err := in.Expr.Compare(item, s)
		if err != nil {
			return false, err
		}
		if cmp == 0 {
			return !in.Not, nil
		}
	}
	return in.Not, nil
}

// ---- BETWEEN ----

// Between is expr [NOT] BETWEEN lo AND hi.
type Between struct {
	Expr, Lo, Hi value.Value
	Not          bool
}

func (b *Between) IsSatisfied(s scope.Scope) (bool, error) {
	loCmp, err := b.Expr.Compare(b.Lo, s)
	if err != nil {
		return false, err
	}
	hiCmp, err := b.Expr.Compare(b.Hi, s)
	if err != nil {
		return false, err
	}
	within := loCmp >= 0 && hiCmp <= 0
	if b.Not {
		return !within, nil
	}
	return within, nil
}

// ---- IS [NOT] NULL ----

// IsNull is expr IS [NOT] NULL.
type IsNull struct {
	Expr value.Value
	Not  bool
}

func (n *IsNull) IsSatisfied(s scope.Scope) (bool, error) {
	v, err := n.Expr.Evaluate(s)
	if err != nil {
		return false, err
	}
	isNull := v == nil
	if n.Not {
		return !isNull, nil
	}
	return isNull, nil
}
