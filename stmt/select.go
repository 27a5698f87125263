package stmt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/value"
)

// Execute resolves the FROM source, filters by WHERE, and projects. Rows
// are materialized only when the query needs a whole-set view of its
// input: ORDER BY (needs every row before it can sort) or an aggregate
// projection (COUNT/SUM/AVG/MIN/MAX collapse the matching rows into one
// row per group). Otherwise rows stream straight through WHERE and the
// projection one at a time.
func (sel *Select) Execute(s scope.Scope) (*resultset.ResultSet, error) {
	input, err := resolveInput(s, sel.SourcePath, sel.Factory, sel.Hints)
	if err != nil {
		return nil, err
	}
	cols := sel.resolveColumns(input.Cols)
	if isAggregate(cols) {
		return sel.executeAggregate(s, input, cols)
	}
	if len(sel.OrderBy) > 0 {
		return sel.executeMaterialized(s, input, cols)
	}
	return sel.executeStreaming(s, input, cols)
}

// resolveColumns expands a bare `*` projection (value.Star) into one
// projection per column of the bound input, aliased to that column's
// name so Name() resolves it without a positional fallback. Every other
// projection passes through unchanged.
func (sel *Select) resolveColumns(inputCols []string) []Projection {
	hasStar := false
	for _, c := range sel.Columns {
		if _, ok := c.Value.(value.Star); ok {
			hasStar = true
			break
		}
	}
	if !hasStar {
		return sel.Columns
	}
	out := make([]Projection, 0, len(sel.Columns)-1+len(inputCols))
	for _, c := range sel.Columns {
		if _, ok := c.Value.(value.Star); ok {
			for _, name := range inputCols {
				out = append(out, Projection{Value: &value.FieldRef{Name: name}, Alias: name})
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// isAggregate reports whether any projected column's expression tree
// contains an aggregate call — not only a bare top-level FunctionRef,
// but also one wrapped in arithmetic (e.g. SUM(amount) * 2) — so the
// aggregate execution path is chosen whenever one is present anywhere in
// the projection, rather than silently falling through to per-row
// evaluation against a registry that doesn't know SUM/AVG/MIN/MAX.
func isAggregate(cols []Projection) bool {
	for _, c := range cols {
		if containsAggregate(c.Value) {
			return true
		}
	}
	return false
}

func containsAggregate(v value.Value) bool {
	switch t := v.(type) {
	case *value.FunctionRef:
		return t.IsAggregate()
	case *value.BinaryExpr:
		return containsAggregate(t.Left) || containsAggregate(t.Right)
	case *value.UnaryExpr:
		return containsAggregate(t.Operand)
	}
	return false
}

func columnNames(cols []Projection) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		n := c.Name()
		if n == "" {
			n = fmt.Sprintf("col%d", i+1)
		}
		names[i] = n
	}
	return names
}

func project(rowScope scope.Scope, cols []Projection, names []string) (resultset.Row, error) {
	out := make(resultset.Row, len(cols))
	for i, c := range cols {
		v, err := c.Value.Evaluate(rowScope)
		if err != nil {
			return nil, err
		}
		out[i] = resultset.Column{Name: names[i], Payload: v}
	}
	return out, nil
}

func (sel *Select) where(rowScope scope.Scope) (bool, error) {
	if sel.Where == nil {
		return true, nil
	}
	return sel.Where.IsSatisfied(rowScope)
}

// executeStreaming is the no-ORDER-BY, non-aggregate path: each pulled
// row is filtered and projected on demand, with LIMIT as an early-stop
// counter, never buffering the whole input.
func (sel *Select) executeStreaming(s scope.Scope, input *resultset.ResultSet, cols []Projection) (*resultset.ResultSet, error) {
	names := columnNames(cols)
	emitted := 0
	next := func() (resultset.Row, bool, error) {
		for {
			if sel.Limit >= 0 && emitted >= sel.Limit {
				return nil, false, nil
			}
			row, ok, err := input.Next()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			rowScope := bindRow(s, row)
			match, err := sel.where(rowScope)
			if err != nil {
				return nil, false, err
			}
			if !match {
				continue
			}
			out, err := project(rowScope, cols, names)
			if err != nil {
				return nil, false, err
			}
			emitted++
			return out, true, nil
		}
	}
	return resultset.New(names, next), nil
}

// executeMaterialized is the ORDER-BY path: sorting needs every
// matching row before it can emit the first one.
func (sel *Select) executeMaterialized(s scope.Scope, input *resultset.ResultSet, cols []Projection) (*resultset.ResultSet, error) {
	names := columnNames(cols)
	var rows []resultset.Row
	for {
		row, ok, err := input.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rowScope := bindRow(s, row)
		match, err := sel.where(rowScope)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		out, err := project(rowScope, cols, names)
		if err != nil {
			return nil, err
		}
		rows = append(rows, out)
	}
	return sel.finish(s, names, rows)
}

type aggregateGroup struct {
	first resultset.Row
	rows  []resultset.Row
}

// executeAggregate groups matching rows by GroupBy (the whole input is
// one group when GroupBy is empty) and reduces each group to a single
// output row: aggregate columns fold over the group's rows, and
// non-aggregate columns project off the group's first row.
func (sel *Select) executeAggregate(s scope.Scope, input *resultset.ResultSet, cols []Projection) (*resultset.ResultSet, error) {
	var order []string
	groups := map[string]*aggregateGroup{}
	for {
		row, ok, err := input.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rowScope := bindRow(s, row)
		match, err := sel.where(rowScope)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		key, err := sel.groupKey(rowScope)
		if err != nil {
			return nil, err
		}
		g, ok := groups[key]
		if !ok {
			g = &aggregateGroup{first: row}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}
	names := columnNames(cols)
	var rows []resultset.Row
	for _, key := range order {
		g := groups[key]
		groupScope := bindRow(s, g.first)
		out := make(resultset.Row, len(cols))
		for i, c := range cols {
			v, err := evalOverGroup(s, c.Value, groupScope, g.rows)
			if err != nil {
				return nil, err
			}
			out[i] = resultset.Column{Name: names[i], Payload: v}
		}
		rows = append(rows, out)
	}
	return sel.finish(s, names, rows)
}

// evalOverGroup evaluates v against a reduced group: an aggregate call
// anywhere in the tree (not only at the top level — e.g. the Mul node in
// SUM(amount) * 2) folds over rows; every other node evaluates against
// groupScope (the group's first row) as usual.
func evalOverGroup(s scope.Scope, v value.Value, groupScope scope.Scope, rows []resultset.Row) (any, error) {
	switch t := v.(type) {
	case *value.FunctionRef:
		if t.IsAggregate() {
			return evaluateAggregate(s, t, rows)
		}
		return t.Evaluate(groupScope)
	case *value.BinaryExpr:
		lv, err := evalOverGroup(s, t.Left, groupScope, rows)
		if err != nil {
			return nil, err
		}
		rv, err := evalOverGroup(s, t.Right, groupScope, rows)
		if err != nil {
			return nil, err
		}
		return applyBinary(t.Op, lv, rv)
	case *value.UnaryExpr:
		ov, err := evalOverGroup(s, t.Operand, groupScope, rows)
		if err != nil {
			return nil, err
		}
		return applyUnary(ov)
	default:
		return v.Evaluate(groupScope)
	}
}

// applyBinary mirrors value.BinaryExpr.Evaluate's arithmetic over
// already-evaluated operands, needed because evalOverGroup folds an
// aggregate operand to a plain value before combining it rather than
// evaluating two Values directly.
func applyBinary(op value.Op, lv, rv any) (any, error) {
	if lv == nil || rv == nil {
		return nil, nil
	}
	lf, lok := numeric(lv)
	rf, rok := numeric(rv)
	if !lok || !rok {
		if op == value.Add {
			return fmt.Sprint(lv) + fmt.Sprint(rv), nil
		}
		return nil, qerrors.NewRuntimeError("non-numeric operand for arithmetic operator")
	}
	switch op {
	case value.Add:
		return lf + rf, nil
	case value.Sub:
		return lf - rf, nil
	case value.Mul:
		return lf * rf, nil
	case value.Div:
		if rf == 0 {
			return nil, qerrors.NewRuntimeError("division by zero")
		}
		return lf / rf, nil
	default:
		return nil, qerrors.NewRuntimeError("unknown operator")
	}
}

func applyUnary(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	f, ok := numeric(v)
	if !ok {
		return nil, qerrors.NewRuntimeError("non-numeric operand for unary minus")
	}
	return -f, nil
}

func (sel *Select) groupKey(rowScope scope.Scope) (string, error) {
	if len(sel.GroupBy) == 0 {
		return "", nil
	}
	parts := make([]string, len(sel.GroupBy))
	for i, f := range sel.GroupBy {
		v, err := (&value.FieldRef{Name: f.Name}).Evaluate(rowScope)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "\x1f"), nil
}

// finish applies ORDER BY (which may reference a projection alias, per
// SPEC_FULL.md's resolution) and LIMIT to an already-projected row set.
func (sel *Select) finish(s scope.Scope, cols []string, rows []resultset.Row) (*resultset.ResultSet, error) {
	if len(sel.OrderBy) > 0 {
		if err := sortRows(rows, sel.OrderBy, s); err != nil {
			return nil, err
		}
	}
	if sel.Limit >= 0 && len(rows) > sel.Limit {
		rows = rows[:sel.Limit]
	}
	return resultset.FromRows(cols, rows), nil
}

func sortRows(rows []resultset.Row, order []OrderTerm, s scope.Scope) error {
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		for _, term := range order {
			av, _ := rows[i].Get(term.Name)
			bv, _ := rows[j].Get(term.Name)
			cmp, err := (&value.Literal{Payload: av}).Compare(&value.Literal{Payload: bv}, s)
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if term.Dir < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return sortErr
}

func evaluateAggregate(s scope.Scope, fn *value.FunctionRef, rows []resultset.Row) (any, error) {
	name := strings.ToLower(fn.Name)
	if name == "count" {
		if len(fn.Args) == 1 {
			if _, ok := fn.Args[0].(value.Star); ok {
				return float64(len(rows)), nil
			}
		}
		count := 0
		for _, row := range rows {
			v, err := fn.Args[0].Evaluate(bindRow(s, row))
			if err != nil {
				return nil, err
			}
			if v != nil {
				count++
			}
		}
		return float64(count), nil
	}
	if len(fn.Args) != 1 {
		return nil, qerrors.NewRuntimeError("%s requires exactly one argument", fn.Name)
	}
	var sum float64
	var count int
	var min, max float64
	for _, row := range rows {
		v, err := fn.Args[0].Evaluate(bindRow(s, row))
		if err != nil {
			return nil, err
		}
		f, ok := numeric(v)
		if !ok {
			continue
		}
		if count == 0 || f < min {
			min = f
		}
		if count == 0 || f > max {
			max = f
		}
		sum += f
		count++
	}
	if count == 0 {
		return nil, nil
	}
	switch name {
	case "sum":
		return sum, nil
	case "avg":
		return sum / float64(count), nil
	case "min":
		return min, nil
	case "max":
		return max, nil
	}
	return nil, qerrors.NewRuntimeError("unsupported aggregate function %q", fn.Name)
}

func numeric(v any) (float64, bool) {
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
