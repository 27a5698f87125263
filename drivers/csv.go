// Package drivers implements the default InputSource/OutputSource
// drivers spec.md §1/§6 keeps outside the core: a delimited-file
// driver, a JSON-records driver, and an HTTP-blob driver that sniffs
// content type and delegates to one of the other two.
package drivers

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/source"
)

// CSVSource reads delimited records from a local file path, honoring
// Hints.Delimiter, Hints.Headers, and Hints.Gzip.
type CSVSource struct {
	Path  string
	Hints source.Hints
}

func (c *CSVSource) Execute(s scope.Scope) (*resultset.ResultSet, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, qerrors.NewIOError(c.Path, err)
	}
	var r io.Reader = f
	if c.Hints.Gzip {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, qerrors.NewIOError(c.Path, err)
		}
		r = gz
	}
	cr := csv.NewReader(r)
	if c.Hints.Delimiter != 0 {
		cr.Comma = c.Hints.Delimiter
	}
	cr.FieldsPerRecord = -1

	cols := c.Hints.ColumnHeaders
	if c.Hints.Headers && len(cols) == 0 {
		header, err := cr.Read()
		if err != nil {
			f.Close()
			return nil, qerrors.NewIOError(c.Path, err)
		}
		cols = header
	}

	start := time.Now()
	rowsIn := int64(0)
	closed := false
	closeOnce := func() {
		if !closed {
			f.Close()
			closed = true
		}
	}
	next := func() (resultset.Row, bool, error) {
		record, err := cr.Read()
		if err == io.EOF {
			closeOnce()
			return nil, false, nil
		}
		if err != nil {
			closeOnce()
			return nil, false, qerrors.NewIOError(c.Path, err)
		}
		rowsIn++
		row := make(resultset.Row, len(record))
		for i, field := range record {
			name := ""
			if i < len(cols) {
				name = cols[i]
			}
			row[i] = resultset.Column{Name: name, Payload: coerce(field)}
		}
		return row, true, nil
	}
	rs := resultset.New(cols, next)
	rs.Stats = resultset.Statistics{Elapsed: time.Since(start)}
	return rs, nil
}

// coerce converts a raw CSV field into a float64 or bool when it looks
// like one, leaving it as a string otherwise — drivers decode the
// loosely typed wire format, the core never parses raw text itself.
func coerce(field string) any {
	if field == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(field); err == nil {
		return b
	}
	return field
}

// CSVSink appends or overwrites delimited records to a local file path.
type CSVSink struct {
	Path   string
	Hints  source.Hints
	Append bool

	f       *os.File
	w       *csv.Writer
	wrote   bool
	headers []string
	stats   resultset.Statistics
}

func (c *CSVSink) Open(s scope.Scope) error {
	flags := os.O_CREATE | os.O_WRONLY
	if c.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(c.Path, flags, 0o644)
	if err != nil {
		return qerrors.NewIOError(c.Path, err)
	}
	c.f = f
	c.w = csv.NewWriter(f)
	if c.Hints.Delimiter != 0 {
		c.w.Comma = c.Hints.Delimiter
	}
	return nil
}

func (c *CSVSink) Write(row resultset.Row) error {
	if c.Hints.Headers && !c.wrote && !c.Append {
		c.headers = row.Names()
		if err := c.w.Write(c.headers); err != nil {
			return qerrors.NewIOError(c.Path, err)
		}
	}
	c.wrote = true
	record := make([]string, len(row))
	for i, col := range row {
		record[i] = stringify(col.Payload)
	}
	if err := c.w.Write(record); err != nil {
		return qerrors.NewIOError(c.Path, err)
	}
	c.stats.RowsOut++
	return nil
}

func (c *CSVSink) Close() error {
	if c.w != nil {
		c.w.Flush()
	}
	if c.f != nil {
		if err := c.f.Close(); err != nil {
			return qerrors.NewIOError(c.Path, err)
		}
	}
	return nil
}

func (c *CSVSink) Statistics() resultset.Statistics { return c.stats }

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
