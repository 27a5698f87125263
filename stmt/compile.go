package stmt

import (
	"strconv"
	"strings"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/qlog"
	"github.com/oarkflow/qwery/source"
	"github.com/oarkflow/qwery/template"
	"github.com/oarkflow/qwery/token"
)

// Statement templates, per spec.md §4.4/§4.5. Kept as package-level
// constants so Compile parses each statement kind exactly once per
// call, the same sigil grammar the template parser tests exercise.
const (
	selectTemplate           = "SELECT @{fields} FROM @source ?WHERE @<condition> ?GROUP +?BY @(groupFields) ?ORDER +?BY @|sortFields| ?LIMIT @limit"
	insertTemplate           = "INSERT INTO @target ( @(fields) ) VALUES ( @[values] )"
	describeTemplate         = "DESCRIBE @source"
	createViewHeaderTemplate = "CREATE VIEW @view AS"
)

// Compile parses one statement (no trailing semicolon — callers split
// multi-statement input themselves) into an Executable, dispatching on
// its leading keyword.
func Compile(src string, factory source.DataSourceFactory) (Executable, error) {
	toks, err := token.Lex(src)
	if err != nil {
		return nil, err
	}
	ts := token.New(toks)
	if !ts.HasNext() {
		return nil, qerrors.NewSyntaxError(qerrors.Position{}, "", "empty statement")
	}
	keyword := strings.ToUpper(ts.Peek().Text)
	qlog.Root.Trace("compiling statement", "keyword", keyword)
	switch keyword {
	case "SELECT":
		return compileSelect(ts, factory)
	case "INSERT":
		return compileInsert(ts, factory)
	case "CREATE":
		return compileCreateView(ts, factory)
	case "DESCRIBE":
		return compileDescribe(ts, factory)
	default:
		t := ts.Peek()
		return nil, qerrors.NewSyntaxError(qerrors.Position{Line: t.Line, Col: t.Col}, t.Text, "unrecognized statement keyword")
	}
}

func compileSelect(ts *token.Stream, factory source.DataSourceFactory) (*Select, error) {
	tpl, err := template.Parse(selectTemplate, ts)
	if err != nil {
		return nil, err
	}
	return buildSelect(tpl, factory)
}

// buildSelect turns an already-parsed Template into a Select. Split out
// of compileSelect so compileCreateView can parse its own header
// template, Merge it with the nested SELECT's template, and build both
// from the merged result.
func buildSelect(tpl *template.Template, factory source.DataSourceFactory) (*Select, error) {
	fieldArgs := tpl.FieldArguments["fields"]
	cols := make([]Projection, len(fieldArgs))
	for i, fa := range fieldArgs {
		cols[i] = Projection{Value: fa.Value, Alias: fa.Alias}
	}
	sel := &Select{
		Columns:    cols,
		SourcePath: tpl.Identifiers["source"],
		Factory:    factory,
		Where:      tpl.Expressions["condition"],
		GroupBy:    tpl.FieldReferences["groupFields"],
		Limit:      -1,
	}
	for _, sf := range tpl.SortFields["sortFields"] {
		sel.OrderBy = append(sel.OrderBy, OrderTerm{Name: sf.Field.Name, Dir: sf.Dir})
	}
	if raw, ok := tpl.Identifiers["limit"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, qerrors.NewSyntaxError(qerrors.Position{}, raw, "invalid LIMIT value")
		}
		sel.Limit = n
	}
	return sel, nil
}

func compileInsert(ts *token.Stream, factory source.DataSourceFactory) (*Insert, error) {
	tpl, err := template.Parse(insertTemplate, ts)
	if err != nil {
		return nil, err
	}
	fields := tpl.FieldReferences["fields"]
	values := tpl.InsertValues["values"]
	if len(fields) != len(values) {
		return nil, qerrors.NewSyntaxError(qerrors.Position{}, "", "INSERT field count (%d) does not match value count (%d)", len(fields), len(values))
	}
	return &Insert{
		TargetPath: tpl.Identifiers["target"],
		Factory:    factory,
		Fields:     fields,
		Values:     values,
	}, nil
}

// compileCreateView parses its own "CREATE VIEW @view AS" header as one
// template and the nested SELECT as another, then Merges them into a
// single Template before building — the two templates target disjoint
// slot keys ("view" vs. "fields"/"source"/...), exactly the shape
// Template.Merge exists for.
func compileCreateView(ts *token.Stream, factory source.DataSourceFactory) (*CreateView, error) {
	header, err := template.Parse(createViewHeaderTemplate, ts)
	if err != nil {
		return nil, err
	}
	selectTpl, err := template.Parse(selectTemplate, ts)
	if err != nil {
		return nil, err
	}
	merged := header.Merge(selectTpl)
	sel, err := buildSelect(merged, factory)
	if err != nil {
		return nil, err
	}
	return &CreateView{Name: merged.Identifiers["view"], Query: sel}, nil
}

func compileDescribe(ts *token.Stream, factory source.DataSourceFactory) (*Describe, error) {
	tpl, err := template.Parse(describeTemplate, ts)
	if err != nil {
		return nil, err
	}
	return &Describe{SourcePath: tpl.Identifiers["source"], Factory: factory}, nil
}
