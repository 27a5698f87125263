package stmt

import (
	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/source"
)

// Execute opens (or appends to) the target output source for exactly
// the duration of the write, via source.WithOutput, and reports a
// one-row insert count.
func (ins *Insert) Execute(s scope.Scope) (*resultset.ResultSet, error) {
	expanded := s.Expand(ins.TargetPath)
	if ins.Factory == nil {
		return nil, qerrors.NewResolutionError("source", expanded)
	}
	out, err := ins.Factory.GetOutputSource(expanded, ins.Append, ins.Hints)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, qerrors.NewResolutionError("source", expanded)
	}
	row := make(resultset.Row, len(ins.Fields))
	for i, f := range ins.Fields {
		payload := ins.Values[i]
		if str, ok := payload.(string); ok {
			payload = s.Expand(str)
		}
		row[i] = resultset.Column{Name: f.Name, Payload: payload}
	}
	var stats resultset.Statistics
	err = source.WithOutput(out, s, func() error {
		if werr := out.Write(row); werr != nil {
			return werr
		}
		stats = out.Statistics()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultset.Inserted(1, stats), nil
}
