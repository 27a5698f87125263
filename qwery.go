// Package qwery ties the tokenizer, parsers, statement compiler, and
// scope together into the two convenience entry points a caller
// actually reaches for: Query and Exec. See sqlparser.go in the
// teacher for the equivalent top-level wrapper this is grounded on.
package qwery

import (
	"strings"
	"time"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/qlog"
	"github.com/oarkflow/qwery/registry"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/source"
	"github.com/oarkflow/qwery/stmt"
)

// Engine binds a DataSourceFactory and a root Scope (pre-populated with
// the builtin function registry) so a caller can run one or many
// statements that share state — most importantly, a CREATE VIEW in one
// statement staying visible to a later one.
type Engine struct {
	Factory source.DataSourceFactory
	Root    scope.Scope
}

// New creates an Engine with a fresh root Scope and the builtin
// function set registered into it.
func New(factory source.DataSourceFactory) *Engine {
	root := scope.New()
	registry.Register(root)
	return &Engine{Factory: factory, Root: root}
}

// Query compiles and executes a single statement against the Engine's
// root Scope.
func (e *Engine) Query(src string) (*resultset.ResultSet, error) {
	start := time.Now()
	ex, err := stmt.Compile(src, e.Factory)
	if err != nil {
		qlog.Root.Error("compile failed", "err", err)
		return nil, err
	}
	res, err := ex.Execute(e.Root)
	if err != nil {
		qlog.Root.Error("execute failed", "err", err)
		return nil, err
	}
	qlog.Root.Debug("statement executed", "elapsed", time.Since(start))
	return res, nil
}

// Exec splits src on ';' into individual statements and runs each in
// turn against the same root Scope, returning the last statement's
// ResultSet. An empty statement (trailing semicolon, blank line) is
// skipped rather than raising a syntax error.
func (e *Engine) Exec(src string) (*resultset.ResultSet, error) {
	statements := splitStatements(src)
	if len(statements) == 0 {
		return nil, qerrors.NewSyntaxError(qerrors.Position{}, "", "no statements to execute")
	}
	var last *resultset.ResultSet
	for _, one := range statements {
		res, err := e.Query(one)
		if err != nil {
			return nil, err
		}
		last = res
	}
	return last, nil
}

// splitStatements splits on ';' outside of single- or double-quoted
// string literals — a bare strings.Split would cut a string literal
// containing a semicolon in half.
func splitStatements(src string) []string {
	var out []string
	var b strings.Builder
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == ';':
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}
