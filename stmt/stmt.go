// Package stmt implements the statement compiler and the Executable
// variants it produces: Select, Insert, CreateView, Describe. Each
// compiles once from a token.Stream (via the template package) and
// executes any number of times against a Scope, per spec.md §3/§4.5.
package stmt

import (
	"github.com/oarkflow/qwery/condition"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/source"
	"github.com/oarkflow/qwery/value"
)

// Executable is a compiled statement, ready to run against a Scope any
// number of times.
type Executable interface {
	Execute(s scope.Scope) (*resultset.ResultSet, error)
}

// Projection is one projected column: an expression plus its output
// name (the alias, or the bare field name when Value is a FieldRef and
// no alias was given).
type Projection struct {
	Value value.Value
	Alias string
}

// Name returns the output column name: Alias if set, else the field
// name for a bare FieldRef, the function name for a bare FunctionRef,
// "*" for a Star, else empty (the caller supplies a positional
// fallback).
func (p Projection) Name() string {
	if p.Alias != "" {
		return p.Alias
	}
	if fr, ok := p.Value.(*value.FieldRef); ok {
		return fr.Name
	}
	if fn, ok := p.Value.(*value.FunctionRef); ok {
		return fn.Name
	}
	if _, ok := p.Value.(value.Star); ok {
		return "*"
	}
	return ""
}

// Select is the compiled SELECT statement.
type Select struct {
	Columns    []Projection
	SourcePath string
	Factory    source.DataSourceFactory
	Hints      source.Hints
	Where      condition.Condition // nil if no WHERE clause
	GroupBy    []value.Field
	OrderBy    []OrderTerm
	Limit      int // -1 means unlimited
}

// OrderTerm is one ORDER BY element: a column name (resolved against
// the projected/aliased row, per SPEC_FULL.md's ORDER BY resolution)
// and a direction, +1 ascending or -1 descending.
type OrderTerm struct {
	Name string
	Dir  int
}

// Insert is the compiled INSERT statement.
type Insert struct {
	TargetPath string
	Factory    source.DataSourceFactory
	Hints      source.Hints
	Append     bool
	Fields     []value.Field
	Values     []any
}

// CreateView is the compiled CREATE VIEW statement.
type CreateView struct {
	Name  string
	Query *Select
}

// Describe is the compiled DESCRIBE statement.
type Describe struct {
	SourcePath string
	Factory    source.DataSourceFactory
	Hints      source.Hints
}
