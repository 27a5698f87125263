package drivers

import (
	"encoding/json"
	"os"
	"time"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/source"
)

// JSONSource reads a file holding a JSON array of flat objects — one
// record per array element, one column per distinct key observed.
type JSONSource struct {
	Path  string
	Hints source.Hints
}

func (j *JSONSource) Execute(s scope.Scope) (*resultset.ResultSet, error) {
	raw, err := os.ReadFile(j.Path)
	if err != nil {
		return nil, qerrors.NewIOError(j.Path, err)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, qerrors.NewIOError(j.Path, err)
	}
	cols := j.Hints.ColumnHeaders
	if len(cols) == 0 {
		seen := map[string]bool{}
		for _, rec := range records {
			for k := range rec {
				if !seen[k] {
					seen[k] = true
					cols = append(cols, k)
				}
			}
		}
	}
	i := 0
	start := time.Now()
	next := func() (resultset.Row, bool, error) {
		if i >= len(records) {
			return nil, false, nil
		}
		rec := records[i]
		i++
		row := make(resultset.Row, len(cols))
		for idx, name := range cols {
			row[idx] = resultset.Column{Name: name, Payload: rec[name]}
		}
		return row, true, nil
	}
	rs := resultset.New(cols, next)
	rs.Stats = resultset.Statistics{Elapsed: time.Since(start), RowsIn: int64(len(records))}
	return rs, nil
}

// JSONSink writes rows out as a JSON array of flat objects. Append mode
// reads back the existing array (if any) and rewrites it with the new
// rows folded in — the line-oriented append trick CSVSink uses doesn't
// carry over to a single top-level JSON array.
type JSONSink struct {
	Path   string
	Append bool

	records []map[string]any
	stats   resultset.Statistics
}

func (j *JSONSink) Open(s scope.Scope) error {
	if !j.Append {
		return nil
	}
	raw, err := os.ReadFile(j.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return qerrors.NewIOError(j.Path, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &j.records); err != nil {
		return qerrors.NewIOError(j.Path, err)
	}
	return nil
}

func (j *JSONSink) Write(row resultset.Row) error {
	rec := make(map[string]any, len(row))
	for _, col := range row {
		rec[col.Name] = col.Payload
	}
	j.records = append(j.records, rec)
	j.stats.RowsOut++
	return nil
}

func (j *JSONSink) Close() error {
	out, err := json.Marshal(j.records)
	if err != nil {
		return qerrors.NewIOError(j.Path, err)
	}
	if err := os.WriteFile(j.Path, out, 0o644); err != nil {
		return qerrors.NewIOError(j.Path, err)
	}
	return nil
}

func (j *JSONSink) Statistics() resultset.Statistics { return j.stats }
