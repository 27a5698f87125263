package template_test

import (
	"testing"

	"github.com/oarkflow/qwery/template"
	"github.com/oarkflow/qwery/token"
)

func mustParse(t *testing.T, tmpl, sql string) *template.Template {
	t.Helper()
	toks, err := token.Lex(sql)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	tpl, err := template.Parse(tmpl, token.New(toks))
	if err != nil {
		t.Fatalf("template parse error: %v\ntmpl: %s\nsql: %s", err, tmpl, sql)
	}
	return tpl
}

const selectTmpl = "SELECT @{fields} FROM @source ?WHERE @<condition> ?GROUP +?BY @(groupFields) ?ORDER +?BY @|sortFields| ?LIMIT @limit"

func TestSelectTemplateFullClause(t *testing.T) {
	tpl := mustParse(t, selectTmpl, "SELECT a, b FROM t WHERE a > 1 GROUP BY a ORDER BY a DESC LIMIT 5")
	if len(tpl.FieldArguments["fields"]) != 2 {
		t.Fatalf("expected 2 projected fields, got %d", len(tpl.FieldArguments["fields"]))
	}
	if tpl.Identifiers["source"] != "t" {
		t.Fatalf("expected source=t, got %q", tpl.Identifiers["source"])
	}
	if tpl.Expressions["condition"] == nil {
		t.Fatalf("expected a WHERE condition")
	}
	if len(tpl.FieldReferences["groupFields"]) != 1 || tpl.FieldReferences["groupFields"][0].Name != "a" {
		t.Fatalf("expected groupFields=[a], got %v", tpl.FieldReferences["groupFields"])
	}
	sf := tpl.SortFields["sortFields"]
	if len(sf) != 1 || sf[0].Field.Name != "a" || sf[0].Dir != -1 {
		t.Fatalf("expected sortFields=[a DESC], got %v", sf)
	}
	if tpl.Identifiers["limit"] != "5" {
		t.Fatalf("expected limit=5, got %q", tpl.Identifiers["limit"])
	}
}

func TestSelectTemplateOptionalGroupsSkipped(t *testing.T) {
	tpl := mustParse(t, selectTmpl, "SELECT a FROM t")
	if tpl.Expressions["condition"] != nil {
		t.Fatalf("expected no condition when WHERE absent")
	}
	if len(tpl.FieldReferences["groupFields"]) != 0 {
		t.Fatalf("expected no groupFields when GROUP absent")
	}
	if len(tpl.SortFields["sortFields"]) != 0 {
		t.Fatalf("expected no sortFields when ORDER absent")
	}
	if _, ok := tpl.Identifiers["limit"]; ok {
		t.Fatalf("expected no limit when LIMIT absent")
	}
}

func TestSelectTemplateDeterministic(t *testing.T) {
	sql := "SELECT a, b FROM t WHERE a > 1 ORDER BY a, b DESC"
	t1 := mustParse(t, selectTmpl, sql)
	t2 := mustParse(t, selectTmpl, sql)
	if len(t1.FieldArguments["fields"]) != len(t2.FieldArguments["fields"]) {
		t.Fatalf("expected deterministic extraction across runs")
	}
	sf := t1.SortFields["sortFields"]
	if len(sf) != 2 || sf[0].Field.Name != "a" || sf[0].Dir != 1 || sf[1].Field.Name != "b" || sf[1].Dir != -1 {
		t.Fatalf("expected order-preserving sort fields, got %v", sf)
	}
}

const insertTmpl = "INSERT INTO @target ( @(fields) ) VALUES ( @[values] )"

func TestInsertTemplate(t *testing.T) {
	tpl := mustParse(t, insertTmpl, "INSERT INTO p ( a, b ) VALUES ( 1, 'x' )")
	if tpl.Identifiers["target"] != "p" {
		t.Fatalf("expected target=p, got %q", tpl.Identifiers["target"])
	}
	fields := tpl.FieldReferences["fields"]
	if len(fields) != 2 || fields[0].Name != "a" || fields[1].Name != "b" {
		t.Fatalf("expected fields=[a,b], got %v", fields)
	}
	vals := tpl.InsertValues["values"]
	if len(vals) != 2 || vals[0] != 1.0 || vals[1] != "x" {
		t.Fatalf("expected values=[1, x], got %v", vals)
	}
}

const createViewTmpl = "CREATE VIEW @name AS @<condition>"

func TestDuplicateSlotMergePanics(t *testing.T) {
	toks, _ := token.Lex("t")
	ts := token.New(toks)
	a, err := template.Parse("@name", ts)
	if err != nil {
		t.Fatalf("parse a: %v", err)
	}
	toks2, _ := token.Lex("u")
	ts2 := token.New(toks2)
	b, err := template.Parse("@name", ts2)
	if err != nil {
		t.Fatalf("parse b: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Merge to panic on duplicate slot key")
		}
	}()
	a.Merge(b)
}
