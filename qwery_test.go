package qwery_test

import (
	"path/filepath"
	"testing"

	"github.com/oarkflow/qwery"
	"github.com/oarkflow/qwery/drivers"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/source"
)

func writeFixture(t *testing.T, path string) {
	t.Helper()
	sink := &drivers.CSVSink{Path: path, Hints: source.Hints{Headers: true}}
	e := qwery.New(drivers.DefaultFactory{})
	if err := sink.Open(e.Root); err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	for _, r := range []resultset.Row{
		{{Name: "symbol", Payload: "AAPL"}, {Name: "price", Payload: 10.0}},
		{{Name: "symbol", Payload: "MSFT"}, {Name: "price", Payload: 30.0}},
		{{Name: "symbol", Payload: "AMZN"}, {Name: "price", Payload: 20.0}},
	} {
		if err := sink.Write(r); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
}

func TestEndToEndSelectInsertView(t *testing.T) {
	dir := t.TempDir()
	trades := filepath.Join(dir, "trades.csv")
	writeFixture(t, trades)

	e := qwery.New(drivers.DefaultFactory{})

	res, err := e.Query("SELECT symbol, price FROM '" + trades + "' WHERE price > 15 ORDER BY price DESC LIMIT 5")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	rows, err := res.Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if v, _ := rows[0].Get("symbol"); v != "MSFT" {
		t.Fatalf("expected MSFT first, got %v", v)
	}

	out := filepath.Join(dir, "out.csv")
	res, err = e.Query("INSERT INTO '" + out + "' ( symbol, price ) VALUES ( 'GOOG', 45 )")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("expected 1 inserted row, got %d", res.Inserted)
	}

	_, err = e.Query("CREATE VIEW pricey AS SELECT symbol FROM '" + trades + "' WHERE price > 15")
	if err != nil {
		t.Fatalf("create view: %v", err)
	}
	res, err = e.Query("SELECT symbol FROM pricey")
	if err != nil {
		t.Fatalf("select from view: %v", err)
	}
	rows, err = res.Collect()
	if err != nil {
		t.Fatalf("collect view rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows from view, got %d", len(rows))
	}
}

func TestSelectStarThroughView(t *testing.T) {
	dir := t.TempDir()
	trades := filepath.Join(dir, "trades.csv")
	writeFixture(t, trades)

	e := qwery.New(drivers.DefaultFactory{})
	script := "CREATE VIEW tech AS SELECT * FROM '" + trades + "' WHERE price > 15;" +
		"SELECT symbol FROM tech;"
	res, err := e.Exec(script)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	rows, err := res.Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestExecMultiStatementSharesScope(t *testing.T) {
	dir := t.TempDir()
	trades := filepath.Join(dir, "trades.csv")
	writeFixture(t, trades)

	e := qwery.New(drivers.DefaultFactory{})
	script := "CREATE VIEW pricey AS SELECT symbol, price FROM '" + trades + "' WHERE price > 15;" +
		"SELECT symbol FROM pricey WHERE price > 25;"
	res, err := e.Exec(script)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	rows, err := res.Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if v, _ := rows[0].Get("symbol"); v != "MSFT" {
		t.Fatalf("expected MSFT, got %v", v)
	}
}

func TestQueryMissingSourceFails(t *testing.T) {
	e := qwery.New(drivers.DefaultFactory{})
	_, err := e.Query("SELECT a FROM '/nowhere/ghost.csv'")
	if err == nil {
		t.Fatalf("expected an error for a missing source")
	}
}
