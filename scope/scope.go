// Package scope implements the dynamically scoped evaluation
// environment that Value, Condition, and Executable nodes evaluate
// against: a chain of frames extended by children, where bindings are
// written to the local frame only and never to a parent, with
// variable, function, and view lookups plus string interpolation.
package scope

import (
	"fmt"
	"strings"

	"github.com/oarkflow/qwery/resultset"
)

// Evaluable is anything a Scope can evaluate to a payload: the minimal
// shape shared by every Value variant. Defined here (rather than
// imported from the value package) so Scope has no dependency on value,
// breaking what would otherwise be an import cycle — value.Value
// satisfies this interface structurally.
type Evaluable interface {
	Evaluate(s Scope) (any, error)
}

// View is anything a Scope can resolve a FROM-clause name to: the
// minimal shape shared by every Executable variant and by InputSource.
// Structural, for the same reason as Evaluable.
type View interface {
	Execute(s Scope) (*resultset.ResultSet, error)
}

// Function is a resolved callable bound in scope under a name. It
// receives its already-parsed argument Values (as Evaluables, since
// Function lives below value in the dependency graph) and the calling
// Scope, and returns a payload or an error.
type Function func(args []Evaluable, s Scope) (any, error)

// Scope is the evaluation environment. Lookups walk local bindings
// first, then the parent chain; writes never escape a child upward.
type Scope interface {
	// Lookup resolves a bound variable by name.
	Lookup(name string) (Evaluable, bool)
	// LookupFunc resolves a function by name; arity dispatch, if any, is
	// the Function's own responsibility.
	LookupFunc(name string) (Function, bool)
	// LookupView resolves a registered view (from CREATE VIEW) by name
	// or path.
	LookupView(path string) (View, bool)
	// Expand performs $var / ${var} interpolation inside text (string
	// literals and resource paths).
	Expand(text string) string
	// StrictFunctions reports the missing-function policy: false (the
	// default) returns NULL for an unresolved FunctionRef; true raises
	// ResolutionError. See SPEC_FULL.md's resolution of spec.md §9.
	StrictFunctions() bool
	// Child returns a new Scope extending s; bindings made on the child
	// are invisible to s.
	Child() Scope
	// Bind binds name to v in the local frame only.
	Bind(name string, v Evaluable)
	// BindFunc binds name to fn in the local frame only.
	BindFunc(name string, fn Function)
	// BindView registers a view under name/path in the local frame only.
	BindView(name string, v View)
}

// Frame is the concrete Scope implementation: a linked environment of
// frames, child-extends-parent by reference, no cycles.
type Frame struct {
	parent  *Frame
	vars    map[string]Evaluable
	funcs   map[string]Function
	views   map[string]View
	strict  bool
}

// New creates a root Frame with no parent.
func New() *Frame {
	return &Frame{
		vars:  map[string]Evaluable{},
		funcs: map[string]Function{},
		views: map[string]View{},
	}
}

// SetStrictFunctions configures the missing-function policy on the
// frame. It affects lookups performed against this frame and any
// children created afterwards.
func (f *Frame) SetStrictFunctions(strict bool) { f.strict = strict }

func (f *Frame) StrictFunctions() bool {
	if f.strict {
		return true
	}
	if f.parent != nil {
		return f.parent.StrictFunctions()
	}
	return false
}

// Child returns a new Frame extending f. The child's own bindings are
// never visible to f.
func (f *Frame) Child() Scope {
	return &Frame{
		parent: f,
		vars:   map[string]Evaluable{},
		funcs:  map[string]Function{},
		views:  map[string]View{},
	}
}

// Bind binds name to v in the local frame only.
func (f *Frame) Bind(name string, v Evaluable) { f.vars[name] = v }

// BindFunc binds name to fn in the local frame only.
func (f *Frame) BindFunc(name string, fn Function) { f.funcs[strings.ToLower(name)] = fn }

// BindView registers a view under name/path in the local frame only.
func (f *Frame) BindView(name string, v View) { f.views[strings.ToLower(name)] = v }

func (f *Frame) Lookup(name string) (Evaluable, bool) {
	if v, ok := f.vars[name]; ok {
		return v, true
	}
	if f.parent != nil {
		return f.parent.Lookup(name)
	}
	return nil, false
}

func (f *Frame) LookupFunc(name string) (Function, bool) {
	if fn, ok := f.funcs[strings.ToLower(name)]; ok {
		return fn, true
	}
	if f.parent != nil {
		return f.parent.LookupFunc(name)
	}
	return nil, false
}

func (f *Frame) LookupView(path string) (View, bool) {
	if v, ok := f.views[strings.ToLower(path)]; ok {
		return v, true
	}
	if f.parent != nil {
		return f.parent.LookupView(path)
	}
	return nil, false
}

// Expand substitutes $name and ${name} occurrences in text with the
// string form of the bound variable's evaluated payload. Unbound names
// are left untouched.
func (f *Frame) Expand(text string) string {
	if !strings.ContainsRune(text, '$') {
		return text
	}
	var b strings.Builder
	i := 0
	for i < len(text) {
		c := text[i]
		if c != '$' || i+1 >= len(text) {
			b.WriteByte(c)
			i++
			continue
		}
		braced := text[i+1] == '{'
		start := i + 1
		if braced {
			start++
		}
		end := start
		for end < len(text) && isNameByte(text[end]) {
			end++
		}
		name := text[start:end]
		if name == "" {
			b.WriteByte(c)
			i++
			continue
		}
		next := end
		if braced {
			if next < len(text) && text[next] == '}' {
				next++
			} else {
				// unterminated ${...}: leave verbatim
				b.WriteString(text[i:next])
				i = next
				continue
			}
		}
		if v, ok := f.Lookup(name); ok {
			if payload, err := v.Evaluate(f); err == nil && payload != nil {
				b.WriteString(stringify(payload))
				i = next
				continue
			}
		}
		b.WriteString(text[i:next])
		i = next
	}
	return b.String()
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
