package stmt

import (
	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/source"
	"github.com/oarkflow/qwery/value"
)

// resolveInput resolves a FROM/DESCRIBE path: a registered view takes
// priority over the factory, so a session's own CREATE VIEW shadows a
// same-named concrete source.
func resolveInput(s scope.Scope, path string, factory source.DataSourceFactory, hints source.Hints) (*resultset.ResultSet, error) {
	expanded := s.Expand(path)
	if v, ok := s.LookupView(expanded); ok {
		return v.Execute(s)
	}
	if factory == nil {
		return nil, qerrors.NewResolutionError("source", expanded)
	}
	in, err := factory.GetInputSource(expanded, hints)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, qerrors.NewResolutionError("source", expanded)
	}
	return in.Execute(s)
}

// bindRow extends parent with one binding per row column, so field
// references inside WHERE/projection resolve by plain name.
func bindRow(parent scope.Scope, row resultset.Row) scope.Scope {
	child := parent.Child()
	for _, col := range row {
		child.Bind(col.Name, &value.Literal{Payload: col.Payload})
	}
	return child
}
