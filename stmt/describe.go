package stmt

import (
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
)

// Execute resolves Source and reports one (column, inferredType) row
// per output column, inferring type from the first row's payloads (or,
// for a source with no rows at all, from its declared column names
// alone with type "unknown").
func (d *Describe) Execute(s scope.Scope) (*resultset.ResultSet, error) {
	res, err := resolveInput(s, d.SourcePath, d.Factory, d.Hints)
	if err != nil {
		return nil, err
	}
	cols := []string{"column", "type"}
	row, ok, err := res.Next()
	if err != nil {
		return nil, err
	}
	var rows []resultset.Row
	if ok {
		for _, c := range row {
			rows = append(rows, resultset.Row{
				{Name: "column", Payload: c.Name},
				{Name: "type", Payload: inferType(c.Payload)},
			})
		}
	} else {
		for _, name := range res.Cols {
			rows = append(rows, resultset.Row{
				{Name: "column", Payload: name},
				{Name: "type", Payload: "unknown"},
			})
		}
	}
	return resultset.FromRows(cols, rows), nil
}

func inferType(v any) string {
	switch v.(type) {
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}
