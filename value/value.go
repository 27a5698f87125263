// Package value implements the Value expression tree: literals, field
// references, function calls, and arithmetic/logical combinators. A
// Value is immutable once parsed; evaluation is pure given a Scope.
package value

import (
	"fmt"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/scope"
)

// Value is a polymorphic expression node. Evaluate reduces the node to
// an optional payload (a nil payload means SQL NULL); Compare lifts
// ordering over the evaluated payloads of two Values.
type Value interface {
	Evaluate(s scope.Scope) (any, error)
	Compare(other Value, s scope.Scope) (int, error)
}

// Field is a plain projected or referenced column name — the restricted
// identifier-only slot used by fieldReferences and sortFields, distinct
// from the general Value tree (which also has a FieldRef variant for use
// inside expressions).
type Field struct {
	Name string
}

// baseCompare evaluates both values and orders the results: NULL sorts
// below every non-null value (a stable, explicitly documented tie-break
// policy per spec.md §4.6), numerics compare numerically, everything
// else compares as strings.
func baseCompare(a, b any) (int, error) {
	if a == nil && b == nil {
		return 0, nil
	}
	if a == nil {
		return -1, nil
	}
	if b == nil {
		return 1, nil
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1, nil
	case as > bs:
		return 1, nil
	default:
		return 0, nil
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func evalCompare(a, b Value, s scope.Scope) (int, error) {
	av, err := a.Evaluate(s)
	if err != nil {
		return 0, err
	}
	bv, err := b.Evaluate(s)
	if err != nil {
		return 0, err
	}
	return baseCompare(av, bv)
}

// ---- Literal ----

// Literal is a numeric, string, boolean, or null constant.
type Literal struct {
	Payload any // float64, string, bool, or nil
}

func (l *Literal) Evaluate(s scope.Scope) (any, error) {
	if str, ok := l.Payload.(string); ok {
		return s.Expand(str), nil
	}
	return l.Payload, nil
}

func (l *Literal) Compare(other Value, s scope.Scope) (int, error) {
	return evalCompare(l, other, s)
}

// ---- FieldRef ----

// FieldRef is a bare field/column reference appearing inside an
// expression (as opposed to the restricted Field slot).
type FieldRef struct {
	Name string
}

func (f *FieldRef) Evaluate(s scope.Scope) (any, error) {
	v, ok := s.Lookup(f.Name)
	if !ok {
		return nil, qerrors.NewResolutionError("field", f.Name)
	}
	return v.Evaluate(s)
}

func (f *FieldRef) Compare(other Value, s scope.Scope) (int, error) {
	return evalCompare(f, other, s)
}

// ---- Star ----

// Star represents a bare `*`: as a COUNT(*) argument (spec.md §4.2) or
// as a whole top-level SELECT column, where stmt.Select expands it to
// one projection per column of the bound input row.
type Star struct{}

func (Star) Evaluate(s scope.Scope) (any, error) { return nil, nil }
func (st Star) Compare(other Value, s scope.Scope) (int, error) {
	return evalCompare(st, other, s)
}

// ---- FunctionRef ----

// FunctionRef is an unresolved call by name, resolved against Scope at
// evaluation time.
type FunctionRef struct {
	Name string
	Args []Value
}

func (f *FunctionRef) Evaluate(s scope.Scope) (any, error) {
	fn, ok := s.LookupFunc(f.Name)
	if !ok {
		if s.StrictFunctions() {
			return nil, qerrors.NewResolutionError("function", f.Name)
		}
		return nil, nil
	}
	args := make([]scope.Evaluable, len(f.Args))
	for i, a := range f.Args {
		args[i] = a
	}
	return fn(args, s)
}

func (f *FunctionRef) Compare(other Value, s scope.Scope) (int, error) {
	return evalCompare(f, other, s)
}

// IsAggregate reports whether the call names one of the small set of
// aggregate functions the Select executor special-cases (COUNT, SUM,
// AVG, MIN, MAX): these evaluate once over the whole input ResultSet
// rather than per row.
func (f *FunctionRef) IsAggregate() bool {
	switch lower(f.Name) {
	case "count", "sum", "avg", "min", "max":
		return true
	}
	return false
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

// ---- BinaryExpr ----

// Op identifies an arithmetic or logical combinator.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
)

// BinaryExpr is an arithmetic combinator: op, left, right.
type BinaryExpr struct {
	Op          Op
	Left, Right Value
}

func (b *BinaryExpr) Evaluate(s scope.Scope) (any, error) {
	lv, err := b.Left.Evaluate(s)
	if err != nil {
		return nil, err
	}
	rv, err := b.Right.Evaluate(s)
	if err != nil {
		return nil, err
	}
	if lv == nil || rv == nil {
		return nil, nil
	}
	lf, lok := asFloat(lv)
	rf, rok := asFloat(rv)
	if !lok || !rok {
		if b.Op == Add {
			// string concatenation is the sanctioned non-numeric '+'
			return fmt.Sprint(lv) + fmt.Sprint(rv), nil
		}
		return nil, qerrors.NewRuntimeError("non-numeric operand for arithmetic operator")
	}
	switch b.Op {
	case Add:
		return lf + rf, nil
	case Sub:
		return lf - rf, nil
	case Mul:
		return lf * rf, nil
	case Div:
		if rf == 0 {
			return nil, qerrors.NewRuntimeError("division by zero")
		}
		return lf / rf, nil
	default:
		return nil, qerrors.NewRuntimeError("unknown operator")
	}
}

func (b *BinaryExpr) Compare(other Value, s scope.Scope) (int, error) {
	return evalCompare(b, other, s)
}

// ---- UnaryExpr ----

// UnaryExpr is a prefix unary minus.
type UnaryExpr struct {
	Operand Value
}

func (u *UnaryExpr) Evaluate(s scope.Scope) (any, error) {
	v, err := u.Operand.Evaluate(s)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	f, ok := asFloat(v)
	if !ok {
		return nil, qerrors.NewRuntimeError("non-numeric operand for unary minus")
	}
	return -f, nil
}

func (u *UnaryExpr) Compare(other Value, s scope.Scope) (int, error) {
	return evalCompare(u, other, s)
}

// ---- Subquery ----

// Subquery is a scalar subquery reference: evaluation executes the
// wrapped query and takes the single column of its first row.
type Subquery struct {
	Query scope.View
}

func (sq *Subquery) Evaluate(s scope.Scope) (any, error) {
	res, err := sq.Query.Execute(s)
	if err != nil {
		return nil, err
	}
	row, ok, err := res.Next()
	if err != nil {
		return nil, err
	}
	if !ok || len(row) == 0 {
		return nil, nil
	}
	return row[0].Payload, nil
}

func (sq *Subquery) Compare(other Value, s scope.Scope) (int, error) {
	return evalCompare(sq, other, s)
}
