// Package template implements the template-driven parser: a
// parser-of-parsers that consumes a template string containing typed
// placeholders (@table, @(fields), @{args}, @[values], @|sort|,
// @<cond>, ?OPT, +?OPT, @/regex/) and drives a token.Stream to extract a
// keyed Template bag. See spec.md §4.4.
package template

import (
	"fmt"

	"github.com/oarkflow/qwery/condition"
	"github.com/oarkflow/qwery/value"
)

// SortField is one element of a sortFields slot: a Field plus a
// direction, +1 for ASC (the default) or -1 for DESC.
type SortField struct {
	Field value.Field
	Dir   int
}

// FieldArg is one element of a fieldArguments (@{name}) slot: a general
// expression plus its optional "AS alias".
type FieldArg struct {
	Value value.Value
	Alias string
}

// Template is the product of typed maps extracted by the template
// parser, one map per sigil kind, each keyed by the placeholder name.
type Template struct {
	Identifiers     map[string]string
	FieldReferences map[string][]value.Field
	FieldArguments  map[string][]FieldArg
	Expressions     map[string]condition.Condition
	SortFields      map[string][]SortField
	InsertValues    map[string][]any
}

func newTemplate() *Template {
	return &Template{
		Identifiers:     map[string]string{},
		FieldReferences: map[string][]value.Field{},
		FieldArguments:  map[string][]FieldArg{},
		Expressions:     map[string]condition.Condition{},
		SortFields:      map[string][]SortField{},
		InsertValues:    map[string][]any{},
	}
}

// Merge folds other into t under a disjoint-key union. Two templates
// colliding on a slot key is a programming error in the statement's
// template definitions, not a user-facing failure, so Merge panics
// rather than returning an error — it should only ever be called with
// templates known at compile time to target disjoint keys.
func (t *Template) Merge(other *Template) *Template {
	mergeStr(t.Identifiers, other.Identifiers)
	mergeSlice(t.FieldReferences, other.FieldReferences)
	mergeSlice(t.FieldArguments, other.FieldArguments)
	mergeMap(t.Expressions, other.Expressions)
	mergeSlice(t.SortFields, other.SortFields)
	mergeSlice(t.InsertValues, other.InsertValues)
	return t
}

func mergeStr(dst, src map[string]string) {
	for k, v := range src {
		if _, ok := dst[k]; ok {
			panic(fmt.Sprintf("template: duplicate identifier slot %q", k))
		}
		dst[k] = v
	}
}

func mergeSlice[T any](dst, src map[string][]T) {
	for k, v := range src {
		if _, ok := dst[k]; ok {
			panic(fmt.Sprintf("template: duplicate slot %q", k))
		}
		dst[k] = v
	}
}

func mergeMap[T any](dst, src map[string]T) {
	for k, v := range src {
		if _, ok := dst[k]; ok {
			panic(fmt.Sprintf("template: duplicate slot %q", k))
		}
		dst[k] = v
	}
}
