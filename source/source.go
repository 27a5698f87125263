// Package source declares the InputSource/OutputSource/DataSourceFactory
// contracts spec.md §1 and §6 keep external to the core: concrete
// source/sink drivers are consumed through these interfaces, never
// implemented here. See the drivers package for default
// implementations.
package source

import (
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
)

// Hints is the configuration bag a DataSourceFactory receives alongside
// a path: delimiter, quoted, headers, gzip, append, columnHeaders.
type Hints struct {
	Delimiter     rune
	Quoted        bool
	Headers       bool
	Gzip          bool
	Append        bool
	ColumnHeaders []string
}

// InputSource produces a ResultSet when executed against a Scope.
type InputSource interface {
	Execute(s scope.Scope) (*resultset.ResultSet, error)
}

// OutputSource is acquired for the duration of an Insert/Select-into and
// released before the statement returns, even on failure — callers must
// use Open/Close under scoped acquisition (see WithOutput).
type OutputSource interface {
	Open(s scope.Scope) error
	Write(row resultset.Row) error
	Close() error
	Statistics() resultset.Statistics
}

// DataSourceFactory resolves a path plus hints into a driver. Either
// method may return (nil, nil) to indicate the path is not recognized,
// distinct from returning an error for a recognized-but-failed path.
type DataSourceFactory interface {
	GetInputSource(path string, hints Hints) (InputSource, error)
	GetOutputSource(path string, appendMode bool, hints Hints) (OutputSource, error)
}

// WithOutput opens out, invokes fn, and guarantees Close runs on every
// exit path including a panic or an error from fn — the scoped
// acquisition spec.md §3 and §7 require for output sources.
func WithOutput(out OutputSource, s scope.Scope, fn func() error) (err error) {
	if err = out.Open(s); err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return fn()
}
