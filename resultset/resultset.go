// Package resultset defines the lazy, finite row stream returned by
// every Executable, and the Row shape shared by InputSource and
// OutputSource drivers.
package resultset

import "time"

// Column is one (name, payload) pair within a Row.
type Column struct {
	Name    string
	Payload any
}

// Row is an ordered sequence of named columns.
type Row []Column

// Get returns the payload of the first column named name and whether it
// was found.
func (r Row) Get(name string) (any, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Payload, true
		}
	}
	return nil, false
}

// Names returns the row's column names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Statistics summarizes an InputSource/OutputSource's work, surfaced via
// OutputSource.Statistics and carried on a ResultSet.
type Statistics struct {
	BytesIn   int64
	BytesOut  int64
	RowsIn    int64
	RowsOut   int64
	Elapsed   time.Duration
}

// Next pulls the next Row from a lazy source. ok is false at the end of
// a finite sequence; err is non-nil only on failure.
type Next func() (row Row, ok bool, err error)

// ResultSet is a lazy, finite sequence of Rows plus optional summary
// counters. Rows are pulled one at a time via next; nothing is buffered
// unless a caller chooses to materialize it with Collect.
type ResultSet struct {
	Cols     []string
	next     Next
	Inserted int
	Updated  int
	Stats    Statistics
}

// New wraps next as a ResultSet with the given column names.
func New(cols []string, next Next) *ResultSet {
	return &ResultSet{Cols: cols, next: next}
}

// FromRows returns a ResultSet that replays the given rows in order.
// Useful for literal sources (INSERT ... VALUES) and for materialized
// intermediate results (ORDER BY, aggregates).
func FromRows(cols []string, rows []Row) *ResultSet {
	i := 0
	return New(cols, func() (Row, bool, error) {
		if i >= len(rows) {
			return nil, false, nil
		}
		r := rows[i]
		i++
		return r, true, nil
	})
}

// Empty returns a ResultSet with no rows.
func Empty(cols []string) *ResultSet {
	return FromRows(cols, nil)
}

// Inserted returns a ResultSet reporting an insert count and statistics,
// with no rows (per §4.6: "ResultSet.inserted(count, statistics)").
func Inserted(count int, stats Statistics) *ResultSet {
	rs := Empty(nil)
	rs.Inserted = count
	rs.Stats = stats
	return rs
}

// Next pulls the next Row. Callers must stop iterating once ok is false
// or err is non-nil.
func (rs *ResultSet) Next() (Row, bool, error) {
	if rs.next == nil {
		return nil, false, nil
	}
	return rs.next()
}

// Collect drains the ResultSet into a slice. It exists for tests and for
// small, known-bounded results (e.g. DESCRIBE); callers processing
// unbounded input should iterate Next directly.
func (rs *ResultSet) Collect() ([]Row, error) {
	var out []Row
	for {
		row, ok, err := rs.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, row)
	}
}
