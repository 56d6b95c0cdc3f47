package parser

import (
	"strconv"
	"strings"
)

// Parse parses one statement (SHOW COLUMNS FROM or SELECT) into an AST and
// validates it. It never returns a partial AST together with an error.
func Parse(text string) (Statement, error) {
	p := &parser{lx: &lexer{input: text}}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var stmt Statement
	var err error
	switch {
	case p.tok.keyword("SHOW"):
		stmt, err = p.parseShowColumns()
	case p.tok.keyword("SELECT"):
		stmt, err = p.parseSelect()
	default:
		return nil, errAt(p.tok.pos, "expected SELECT or SHOW COLUMNS, got %q", p.tok.text)
	}
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokEOF {
		return nil, errAt(p.tok.pos, "unexpected trailing token %q", p.tok.text)
	}
	if sel, ok := stmt.(*SelectStmt); ok {
		if err := validate(sel); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

type parser struct {
	lx  *lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// expectKeyword consumes the given keyword or fails.
func (p *parser) expectKeyword(kw string) error {
	if !p.tok.keyword(kw) {
		return errAt(p.tok.pos, "expected %s, got %q", kw, p.tok.text)
	}
	return p.advance()
}

// parseLocator reads the FROM target verbatim up to the next whitespace.
// Must be called while the current token is FROM: the lexer is then
// positioned right after the keyword and the raw scan cannot clobber an
// already-buffered token.
func (p *parser) parseLocator() (string, error) {
	if !p.tok.keyword("FROM") {
		return "", errAt(p.tok.pos, "expected FROM, got %q", p.tok.text)
	}
	raw, err := p.lx.scanRaw()
	if err != nil {
		return "", err
	}
	return raw.text, p.advance()
}

func (p *parser) parseShowColumns() (Statement, error) {
	if err := p.advance(); err != nil { // SHOW
		return nil, err
	}
	if err := p.expectKeyword("COLUMNS"); err != nil {
		return nil, err
	}
	loc, err := p.parseLocator()
	if err != nil {
		return nil, err
	}
	return &ShowColumnsStmt{Locator: loc}, nil
}

func (p *parser) parseSelect() (Statement, error) {
	if err := p.advance(); err != nil { // SELECT
		return nil, err
	}

	sel := &SelectStmt{}
	if p.tok.kind == tokStar {
		sel.Star = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		for {
			item, err := p.parseSelectItem()
			if err != nil {
				return nil, err
			}
			sel.Items = append(sel.Items, item)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	loc, err := p.parseLocator()
	if err != nil {
		return nil, err
	}
	sel.Locator = loc

	if p.tok.keyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		sel.Where, err = p.parseOr()
		if err != nil {
			return nil, err
		}
	}

	if p.tok.keyword("GROUP") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		sel.GroupBy, err = p.parseColumnList()
		if err != nil {
			return nil, err
		}
	}

	if p.tok.keyword("ORDER") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		sel.OrderBy, err = p.parseOrderList()
		if err != nil {
			return nil, err
		}
	}

	if p.tok.keyword("LIMIT") {
		sel.HasLimit = true
		sel.Limit, err = p.parseCount("LIMIT")
		if err != nil {
			return nil, err
		}
	}

	if p.tok.keyword("OFFSET") {
		sel.HasOffset = true
		sel.Offset, err = p.parseCount("OFFSET")
		if err != nil {
			return nil, err
		}
	}

	return sel, nil
}

var aggFuncs = map[string]AggFunc{
	"count": AggCount,
	"sum":   AggSum,
	"avg":   AggAvg,
	"min":   AggMin,
	"max":   AggMax,
}

func (p *parser) parseSelectItem() (SelectItem, error) {
	if p.tok.kind != tokIdent || clauseKeyword(p.tok.text) {
		return SelectItem{}, errAt(p.tok.pos, "expected projection expression, got %q", p.tok.text)
	}
	name := p.tok.text
	pos := p.tok.pos
	if err := p.advance(); err != nil {
		return SelectItem{}, err
	}

	var expr Expr
	if fn, isAgg := aggFuncs[strings.ToLower(name)]; isAgg && p.tok.kind == tokLParen {
		agg, err := p.parseAggregateArgs(fn, pos)
		if err != nil {
			return SelectItem{}, err
		}
		expr = agg
	} else {
		expr = &ColumnRef{Name: name}
	}

	item := SelectItem{Expr: expr}
	if p.tok.keyword("AS") {
		if err := p.advance(); err != nil {
			return SelectItem{}, err
		}
		if p.tok.kind != tokIdent {
			return SelectItem{}, errAt(p.tok.pos, "expected alias after AS, got %q", p.tok.text)
		}
		item.Alias = p.tok.text
		if err := p.advance(); err != nil {
			return SelectItem{}, err
		}
	} else if p.tok.kind == tokIdent && !clauseKeyword(p.tok.text) {
		// bare alias
		item.Alias = p.tok.text
		if err := p.advance(); err != nil {
			return SelectItem{}, err
		}
	}
	return item, nil
}

func (p *parser) parseAggregateArgs(fn AggFunc, pos int) (*Aggregate, error) {
	if err := p.advance(); err != nil { // '('
		return nil, err
	}
	agg := &Aggregate{Fn: fn}
	switch {
	case p.tok.kind == tokStar:
		if fn != AggCount {
			return nil, errAt(p.tok.pos, "%s(*) is not supported, only COUNT(*)", strings.ToUpper(fn.String()))
		}
		agg.Star = true
	case p.tok.kind == tokIdent:
		agg.Column = p.tok.text
	default:
		return nil, errAt(p.tok.pos, "expected column or * in %s(), got %q", strings.ToUpper(fn.String()), p.tok.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokRParen {
		return nil, errAt(p.tok.pos, "expected ) closing %s at offset %d", strings.ToUpper(fn.String()), pos)
	}
	return agg, p.advance()
}

func clauseKeyword(s string) bool {
	switch strings.ToUpper(s) {
	case "FROM", "WHERE", "GROUP", "ORDER", "BY", "LIMIT", "OFFSET", "ASC", "DESC", "AND", "OR", "AS":
		return true
	}
	return false
}

// parseOr handles OR, the weakest binder.
func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.keyword("OR") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logic{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	for p.tok.keyword("AND") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		left = &Logic{Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseCondition() (Expr, error) {
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, errAt(p.tok.pos, "expected ), got %q", p.tok.text)
		}
		return inner, p.advance()
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	var op CompareOp
	switch p.tok.kind {
	case tokEq:
		op = OpEq
	case tokNe:
		op = OpNe
	case tokLt:
		op = OpLt
	case tokLe:
		op = OpLe
	case tokGt:
		op = OpGt
	case tokGe:
		op = OpGe
	default:
		return nil, errAt(p.tok.pos, "expected comparison operator, got %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Compare{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseOperand() (Expr, error) {
	tok := p.tok
	switch tok.kind {
	case tokNumber:
		lit, err := numberLiteral(tok)
		if err != nil {
			return nil, err
		}
		return lit, p.advance()
	case tokString:
		return &Literal{Kind: LitString, Str: tok.text}, p.advance()
	case tokIdent:
		if tok.keyword("TRUE") {
			return &Literal{Kind: LitBool, Bool: true}, p.advance()
		}
		if tok.keyword("FALSE") {
			return &Literal{Kind: LitBool, Bool: false}, p.advance()
		}
		if clauseKeyword(tok.text) {
			return nil, errAt(tok.pos, "expected operand, got keyword %q", tok.text)
		}
		return &ColumnRef{Name: tok.text}, p.advance()
	default:
		return nil, errAt(tok.pos, "expected operand, got %q", tok.text)
	}
}

func numberLiteral(tok token) (*Literal, error) {
	if strings.ContainsAny(tok.text, ".eE") {
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, errAt(tok.pos, "malformed number %q", tok.text)
		}
		return &Literal{Kind: LitFloat, Float: f}, nil
	}
	i, err := strconv.ParseInt(tok.text, 10, 64)
	if err != nil {
		return nil, errAt(tok.pos, "malformed number %q", tok.text)
	}
	return &Literal{Kind: LitInt, Int: i}, nil
}

func (p *parser) parseColumnList() ([]string, error) {
	var cols []string
	for {
		if p.tok.kind != tokIdent || clauseKeyword(p.tok.text) {
			return nil, errAt(p.tok.pos, "expected column name, got %q", p.tok.text)
		}
		cols = append(cols, p.tok.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokComma {
			return cols, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseOrderList() ([]OrderItem, error) {
	var items []OrderItem
	for {
		if p.tok.kind != tokIdent || clauseKeyword(p.tok.text) {
			return nil, errAt(p.tok.pos, "expected column name, got %q", p.tok.text)
		}
		item := OrderItem{Column: p.tok.text}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.keyword("ASC") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if p.tok.keyword("DESC") {
			item.Desc = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
		if p.tok.kind != tokComma {
			return items, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

// parseCount reads the non-negative integer after LIMIT/OFFSET.
func (p *parser) parseCount(clause string) (int64, error) {
	if err := p.advance(); err != nil { // the keyword
		return 0, err
	}
	tok := p.tok
	if tok.kind != tokNumber {
		return 0, errAt(tok.pos, "expected row count after %s, got %q", clause, tok.text)
	}
	n, err := strconv.ParseInt(tok.text, 10, 64)
	if err != nil {
		return 0, errAt(tok.pos, "malformed %s value %q", clause, tok.text)
	}
	if n < 0 {
		return 0, errAt(tok.pos, "%s must be non-negative, got %d", clause, n)
	}
	return n, p.advance()
}
