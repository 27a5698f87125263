// Package qerrors defines the error taxonomy raised by the tokenizer,
// parsers, scope, and executables: SyntaxError, ResolutionError,
// RuntimeError, and IOError.
package qerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Position locates an error in source text. Line and Col are 1-based.
type Position struct {
	Pos  int
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d col %d", p.Line, p.Col)
}

// SyntaxError is raised by the tokenizer, expression parser, conditional
// parser, or template parser. It carries the offending token's text and
// position alongside a human message.
type SyntaxError struct {
	Msg     string
	Token   string
	At      Position
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("syntax error at %s: %s", e.At, e.Msg)
	}
	return fmt.Sprintf("syntax error at %s near %q: %s", e.At, e.Token, e.Msg)
}

// NewSyntaxError builds a SyntaxError for the given offending token text.
func NewSyntaxError(at Position, token, format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Token: token, At: at}
}

// ResolutionError is raised when a name, path, or view cannot be found
// in scope.
type ResolutionError struct {
	Kind string // "field", "view", "function", "source", ...
	Name string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.Name)
}

// NewResolutionError builds a ResolutionError for a missing name of the
// given kind ("field", "view", "function", "source").
func NewResolutionError(kind, name string) *ResolutionError {
	return &ResolutionError{Kind: kind, Name: name}
}

// RuntimeError is raised by evaluation failures: type mismatches,
// division by zero under strict mode, writes to an unopened sink.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return "runtime error: " + e.Msg }

// NewRuntimeError builds a RuntimeError with a formatted message.
func NewRuntimeError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// IOError wraps a failure surfaced from a source/sink driver. The
// underlying cause is preserved via github.com/pkg/errors so callers can
// unwrap with errors.Cause.
type IOError struct {
	Path string
	err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error on %q: %s", e.Path, e.err)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *IOError) Unwrap() error { return e.err }

// Cause exposes the wrap chain to errors.Cause.
func (e *IOError) Cause() error { return e.err }

// NewIOError wraps cause as an IOError for the given path, preserving
// the wrap chain.
func NewIOError(path string, cause error) *IOError {
	return &IOError{Path: path, err: errors.Wrap(cause, "driver failure")}
}
