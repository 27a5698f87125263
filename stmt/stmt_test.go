package stmt_test

import (
	"testing"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/source"
	"github.com/oarkflow/qwery/stmt"
)

// memSource is an in-memory InputSource used across these tests in
// place of a real driver.
type memSource struct {
	cols []string
	rows []resultset.Row
}

func (m *memSource) Execute(s scope.Scope) (*resultset.ResultSet, error) {
	return resultset.FromRows(m.cols, m.rows), nil
}

type memOutput struct {
	factory *memFactory
	path    string
	rows    []resultset.Row
}

func (o *memOutput) Open(s scope.Scope) error         { return nil }
func (o *memOutput) Write(row resultset.Row) error    { o.rows = append(o.rows, row); return nil }
func (o *memOutput) Close() error {
	o.factory.written[o.path] = append(o.factory.written[o.path], o.rows...)
	return nil
}
func (o *memOutput) Statistics() resultset.Statistics {
	return resultset.Statistics{RowsOut: int64(len(o.rows))}
}

type memFactory struct {
	sources map[string]*memSource
	written map[string][]resultset.Row
}

func newMemFactory() *memFactory {
	return &memFactory{sources: map[string]*memSource{}, written: map[string][]resultset.Row{}}
}

func (f *memFactory) GetInputSource(path string, hints source.Hints) (source.InputSource, error) {
	src, ok := f.sources[path]
	if !ok {
		return nil, nil
	}
	return src, nil
}

func (f *memFactory) GetOutputSource(path string, appendMode bool, hints source.Hints) (source.OutputSource, error) {
	return &memOutput{factory: f, path: path}, nil
}

func tradeRows() []resultset.Row {
	return []resultset.Row{
		{{Name: "symbol", Payload: "AAPL"}, {Name: "price", Payload: 10.0}},
		{{Name: "symbol", Payload: "MSFT"}, {Name: "price", Payload: 30.0}},
		{{Name: "symbol", Payload: "AMZN"}, {Name: "price", Payload: 20.0}},
	}
}

func newTestFactory() *memFactory {
	f := newMemFactory()
	f.sources["trades"] = &memSource{cols: []string{"symbol", "price"}, rows: tradeRows()}
	return f
}

func collect(t *testing.T, ex stmt.Executable, s scope.Scope) ([]string, []resultset.Row) {
	t.Helper()
	res, err := ex.Execute(s)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	rows, err := res.Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	return res.Cols, rows
}

func TestSelectWhereAndAlias(t *testing.T) {
	f := newTestFactory()
	ex, err := stmt.Compile("SELECT symbol, price AS p FROM trades WHERE price > 15", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, rows := collect(t, ex, scope.New())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if name, _ := rows[0].Get("p"); name != 30.0 {
		t.Fatalf("expected first row p=30, got %v", name)
	}
}

func TestSelectOrderByLimit(t *testing.T) {
	f := newTestFactory()
	ex, err := stmt.Compile("SELECT symbol, price FROM trades ORDER BY price DESC LIMIT 2", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, rows := collect(t, ex, scope.New())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first, _ := rows[0].Get("symbol")
	second, _ := rows[1].Get("symbol")
	if first != "MSFT" || second != "AMZN" {
		t.Fatalf("expected MSFT, AMZN in that order, got %v, %v", first, second)
	}
}

func TestSelectCountStar(t *testing.T) {
	f := newTestFactory()
	ex, err := stmt.Compile("SELECT COUNT(*) AS n FROM trades WHERE price > 15", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, rows := collect(t, ex, scope.New())
	if len(rows) != 1 {
		t.Fatalf("expected 1 aggregate row, got %d", len(rows))
	}
	n, _ := rows[0].Get("n")
	if n != float64(2) {
		t.Fatalf("expected count=2, got %v", n)
	}
}

func TestSelectSumGroupBy(t *testing.T) {
	f := newMemFactory()
	f.sources["orders"] = &memSource{
		cols: []string{"customer", "amount"},
		rows: []resultset.Row{
			{{Name: "customer", Payload: "a"}, {Name: "amount", Payload: 5.0}},
			{{Name: "customer", Payload: "a"}, {Name: "amount", Payload: 7.0}},
			{{Name: "customer", Payload: "b"}, {Name: "amount", Payload: 3.0}},
		},
	}
	ex, err := stmt.Compile("SELECT customer, SUM(amount) AS total FROM orders GROUP BY customer", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, rows := collect(t, ex, scope.New())
	if len(rows) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(rows))
	}
	totalsByCustomer := map[string]float64{}
	for _, r := range rows {
		c, _ := r.Get("customer")
		v, _ := r.Get("total")
		totalsByCustomer[c.(string)] = v.(float64)
	}
	if totalsByCustomer["a"] != 12.0 || totalsByCustomer["b"] != 3.0 {
		t.Fatalf("unexpected group totals: %v", totalsByCustomer)
	}
}

func TestSelectStarExpandsToAllColumns(t *testing.T) {
	f := newTestFactory()
	ex, err := stmt.Compile("SELECT * FROM trades WHERE price > 15", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	cols, rows := collect(t, ex, scope.New())
	if len(cols) != 2 || cols[0] != "symbol" || cols[1] != "price" {
		t.Fatalf("expected star to expand to [symbol price], got %v", cols)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if v, _ := rows[0].Get("symbol"); v != "MSFT" {
		t.Fatalf("expected MSFT first, got %v", v)
	}
}

func TestSelectAggregateWrappedInArithmetic(t *testing.T) {
	f := newMemFactory()
	f.sources["orders"] = &memSource{
		cols: []string{"customer", "amount"},
		rows: []resultset.Row{
			{{Name: "customer", Payload: "a"}, {Name: "amount", Payload: 5.0}},
			{{Name: "customer", Payload: "a"}, {Name: "amount", Payload: 7.0}},
		},
	}
	ex, err := stmt.Compile("SELECT SUM(amount) * 2 AS doubled FROM orders", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, rows := collect(t, ex, scope.New())
	if len(rows) != 1 {
		t.Fatalf("expected 1 aggregate row, got %d", len(rows))
	}
	if v, _ := rows[0].Get("doubled"); v != 24.0 {
		t.Fatalf("expected SUM(amount)*2 = 24, got %v", v)
	}
}

func TestAliasNotVisibleInWhere(t *testing.T) {
	f := newTestFactory()
	ex, err := stmt.Compile("SELECT price AS p FROM trades WHERE p > 15", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	// WHERE is evaluated as rows are pulled, so the error may surface
	// from Collect rather than from Execute.
	res, err := ex.Execute(scope.New())
	if err == nil {
		_, err = res.Collect()
	}
	if err == nil {
		t.Fatalf("expected WHERE referencing a projection alias to fail to resolve")
	}
	if _, ok := err.(*qerrors.ResolutionError); !ok {
		t.Fatalf("expected ResolutionError, got %T: %v", err, err)
	}
}

func TestInsertRoundTrip(t *testing.T) {
	f := newMemFactory()
	ex, err := stmt.Compile("INSERT INTO out ( symbol, price ) VALUES ( 'GOOG', 40 )", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	res, err := ex.Execute(scope.New())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("expected Inserted=1, got %d", res.Inserted)
	}
	written := f.written["out"]
	if len(written) != 1 {
		t.Fatalf("expected 1 written row, got %d", len(written))
	}
	if v, _ := written[0].Get("symbol"); v != "GOOG" {
		t.Fatalf("expected symbol=GOOG, got %v", v)
	}
}

func TestCreateViewThenSelect(t *testing.T) {
	f := newTestFactory()
	s := scope.New()
	createEx, err := stmt.Compile("CREATE VIEW expensive AS SELECT symbol FROM trades WHERE price > 15", f)
	if err != nil {
		t.Fatalf("compile create view: %v", err)
	}
	if _, err := createEx.Execute(s); err != nil {
		t.Fatalf("execute create view: %v", err)
	}
	selectEx, err := stmt.Compile("SELECT symbol FROM expensive", f)
	if err != nil {
		t.Fatalf("compile select: %v", err)
	}
	_, rows := collect(t, selectEx, s)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows from view, got %d", len(rows))
	}
}

func TestDescribe(t *testing.T) {
	f := newTestFactory()
	ex, err := stmt.Compile("DESCRIBE trades", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	cols, rows := collect(t, ex, scope.New())
	if cols[0] != "column" || cols[1] != "type" {
		t.Fatalf("unexpected describe columns: %v", cols)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 described columns, got %d", len(rows))
	}
	name, _ := rows[0].Get("column")
	typ, _ := rows[0].Get("type")
	if name != "symbol" || typ != "string" {
		t.Fatalf("expected symbol/string, got %v/%v", name, typ)
	}
}

func TestSelectMissingSourceResolutionError(t *testing.T) {
	f := newMemFactory()
	ex, err := stmt.Compile("SELECT a FROM ghost", f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = ex.Execute(scope.New())
	if err == nil {
		t.Fatalf("expected error for missing source")
	}
	if _, ok := err.(*qerrors.ResolutionError); !ok {
		t.Fatalf("expected ResolutionError, got %T: %v", err, err)
	}
}
