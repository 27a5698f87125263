package template

import (
	"regexp"
	"strings"

	"github.com/oarkflow/qwery/condition"
	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/token"
	"github.com/oarkflow/qwery/value"
)

// Parse consumes tmpl (a space-separated template string) and drives ts
// to extract a Template. Extraction is a single pass over both the
// template tokens and the token stream simultaneously — there are no
// reorderings, and ts is never rewound beyond the lookahead its own
// Peek gives.
func Parse(tmpl string, ts *token.Stream) (*Template, error) {
	p := &parser{parts: strings.Fields(tmpl), ts: ts, t: newTemplate()}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.t, nil
}

type parser struct {
	parts []string
	i     int
	ts    *token.Stream
	t     *Template
}

func (p *parser) run() error {
	for p.i < len(p.parts) {
		part := p.parts[p.i]
		p.i++
		if err := p.dispatch(part); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) dispatch(part string) error {
	switch {
	case strings.HasPrefix(part, "@(") && strings.HasSuffix(part, ")"):
		return p.fieldReferences(sigilName(part, "@(", ")"))
	case strings.HasPrefix(part, "@{") && strings.HasSuffix(part, "}"):
		return p.fieldArguments(sigilName(part, "@{", "}"))
	case strings.HasPrefix(part, "@[") && strings.HasSuffix(part, "]"):
		return p.insertValues(sigilName(part, "@[", "]"))
	case strings.HasPrefix(part, "@|") && strings.HasSuffix(part, "|"):
		return p.sortFields(sigilName(part, "@|", "|"))
	case strings.HasPrefix(part, "@<") && strings.HasSuffix(part, ">"):
		return p.expression(sigilName(part, "@<", ">"))
	case strings.HasPrefix(part, "@/") && strings.HasSuffix(part, "/"):
		return p.regexGate(sigilName(part, "@/", "/"))
	case strings.HasPrefix(part, "+?"):
		return p.mandatoryFollow(part[2:])
	case strings.HasPrefix(part, "?"):
		return p.optionalGroup(part[1:])
	case strings.HasPrefix(part, "@"):
		return p.identifier(part[1:])
	default:
		_, err := p.ts.Expect(part)
		return err
	}
}

func sigilName(part, open, close string) string {
	return part[len(open) : len(part)-len(close)]
}

// identifier implements the @name sigil: consume one token and record
// its text under identifiers[name].
func (p *parser) identifier(name string) error {
	t, err := p.ts.Next()
	if err != nil {
		return err
	}
	p.t.Identifiers[name] = t.Text
	return nil
}

// fieldReferences implements @(name): a comma-separated list of bare
// field names.
func (p *parser) fieldReferences(name string) error {
	var fields []value.Field
	for {
		f, err := value.ParseField(p.ts)
		if err != nil {
			return err
		}
		fields = append(fields, f)
		if _, ok := p.ts.NextIf(","); !ok {
			break
		}
	}
	p.t.FieldReferences[name] = fields
	return nil
}

// fieldArguments implements @{name}: a comma-separated list of
// expressions, each parsed by the expression parser and each optionally
// followed by "AS alias".
func (p *parser) fieldArguments(name string) error {
	var args []FieldArg
	for {
		v, err := value.Parse(p.ts)
		if err != nil {
			return err
		}
		alias := ""
		if _, ok := p.ts.NextIf("AS"); ok {
			f, err := value.ParseField(p.ts)
			if err != nil {
				return err
			}
			alias = f.Name
		}
		args = append(args, FieldArg{Value: v, Alias: alias})
		if _, ok := p.ts.NextIf(","); !ok {
			break
		}
	}
	p.t.FieldArguments[name] = args
	return nil
}

// insertValues implements @[name]: a comma-separated list of literal
// token payloads. The enclosing parens are literal template tokens
// elsewhere in the statement's template string (see the INSERT example
// in spec.md §4.5); this sigil itself only consumes the comma-separated
// values, stopping at the first token that isn't followed by a comma —
// identical in shape to @(name) and @{name}.
func (p *parser) insertValues(name string) error {
	var vals []any
	for {
		t, err := p.ts.Next()
		if err != nil {
			return err
		}
		vals = append(vals, t.Value)
		if _, ok := p.ts.NextIf(","); !ok {
			break
		}
	}
	p.t.InsertValues[name] = vals
	return nil
}

// sortFields implements @|name|: a comma-separated list of Field plus
// optional ASC/DESC, defaulting to ASC (+1).
func (p *parser) sortFields(name string) error {
	var fields []SortField
	for {
		f, err := value.ParseField(p.ts)
		if err != nil {
			return err
		}
		dir := 1
		if _, ok := p.ts.NextIf("DESC"); ok {
			dir = -1
		} else {
			p.ts.NextIf("ASC")
		}
		fields = append(fields, SortField{Field: f, Dir: dir})
		if _, ok := p.ts.NextIf(","); !ok {
			break
		}
	}
	p.t.SortFields[name] = fields
	return nil
}

// expression implements @<name>: delegate to the conditional parser.
func (p *parser) expression(name string) error {
	c, err := condition.Parse(p.ts)
	if err != nil {
		return err
	}
	p.t.Expressions[name] = c
	return nil
}

// regexGate implements @/pattern/: fail unless the next (unconsumed)
// token matches pattern. Nothing is extracted or consumed.
func (p *parser) regexGate(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return qerrors.NewSyntaxError(qerrors.Position{}, pattern, "invalid template regex: %s", err)
	}
	if !p.ts.Matches(re) {
		t := p.ts.Peek()
		return qerrors.NewSyntaxError(qerrors.Position{Line: t.Line, Col: t.Col}, t.Text, "expected token matching /%s/", pattern)
	}
	return nil
}

// optionalGroup implements ?KEYWORD: if the stream consumes KEYWORD,
// continue normally; otherwise skip every following template token
// whose sigil is a placeholder (leading '@') or a mandatory follow-on
// ('+?') — the dependent tail of this optional group.
func (p *parser) optionalGroup(keyword string) error {
	if _, ok := p.ts.NextIf(keyword); ok {
		return nil
	}
	for p.i < len(p.parts) {
		part := p.parts[p.i]
		if strings.HasPrefix(part, "@") || strings.HasPrefix(part, "+?") {
			p.i++
			continue
		}
		break
	}
	return nil
}

// mandatoryFollow implements +?KEYWORD: a required keyword inside an
// optional group that has already been entered.
func (p *parser) mandatoryFollow(keyword string) error {
	_, err := p.ts.Expect(keyword)
	return err
}
