// Package parser turns SQL text into the language objects of package ast.
// It accepts the SQL dialect the resolver understands: queries with set
// operations, joins and subqueries, INSERT/UPDATE/DELETE, procedure
// execution, dynamic SQL, temporary tables and procedure bodies.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/sfmt"
	"github.com/brimdata/vdb/compiler/srcfiles"
)

// ParseCommand parses a single command with an optional trailing
// semicolon.
func ParseCommand(sql string) (ast.Command, error) {
	return ParseSource(srcfiles.New("", sql))
}

// ParseSource is like ParseCommand but reports errors against src.
func ParseSource(src *srcfiles.Source) (ast.Command, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	cmd, err := p.command()
	if err == nil {
		p.accept(";")
		err = p.expectEOF()
	}
	if err != nil {
		return nil, p.report(src, err)
	}
	return cmd, nil
}

func ParseExpression(sql string) (ast.Expr, error) {
	src := srcfiles.New("", sql)
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	e, err := p.expr()
	if err == nil {
		err = p.expectEOF()
	}
	if err != nil {
		return nil, p.report(src, err)
	}
	return e, nil
}

// ParseCriteria parses a boolean condition such as a WHERE clause.
func ParseCriteria(sql string) (ast.Criteria, error) {
	src := srcfiles.New("", sql)
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	c, err := p.criteria()
	if err == nil {
		err = p.expectEOF()
	}
	if err != nil {
		return nil, p.report(src, err)
	}
	return c, nil
}

type parseError struct {
	msg string
	pos int
	end int
}

func (e *parseError) Error() string {
	return e.msg
}

type parser struct {
	toks []token
	k    int
	// refs counts positional references in order of appearance.
	refs int
}

func newParser(src *srcfiles.Source) (*parser, error) {
	toks, err := lex(src.Text)
	if err != nil {
		var lerr *lexError
		if errors.As(err, &lerr) {
			src.AddError(lerr.msg, lerr.pos, -1)
			return nil, src.Error()
		}
		return nil, err
	}
	return &parser{toks: toks}, nil
}

func (p *parser) report(src *srcfiles.Source, err error) error {
	var perr *parseError
	if errors.As(err, &perr) {
		src.AddError(perr.msg, perr.pos, perr.end)
		return src.Error()
	}
	return err
}

func (p *parser) tok() token {
	return p.toks[p.k]
}

func (p *parser) peek(n int) token {
	if p.k+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.k+n]
}

func (p *parser) next() token {
	t := p.toks[p.k]
	if t.kind != tokEOF {
		p.k++
	}
	return t
}

// last returns the most recently consumed token.
func (p *parser) last() token {
	if p.k == 0 {
		return p.toks[0]
	}
	return p.toks[p.k-1]
}

func (p *parser) loc(start token) ast.Loc {
	return ast.NewLoc(start.pos, p.last().end)
}

func (p *parser) at(s string) bool {
	return p.tok().is(s)
}

func (p *parser) accept(s string) bool {
	if p.at(s) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(s string) error {
	if !p.accept(s) {
		return p.errorf("expected %s but found %s", s, p.tok())
	}
	return nil
}

func (p *parser) expectEOF() error {
	if t := p.tok(); t.kind != tokEOF {
		return p.errorf("unexpected %s", t)
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	t := p.tok()
	return &parseError{msg: fmt.Sprintf(format, args...), pos: t.pos, end: t.end}
}

func isReserved(t token) bool {
	return t.kind == tokIdent && sfmt.IsKeyword(t.text)
}

func (p *parser) atIdentifier() bool {
	t := p.tok()
	return t.kind == tokQuoted || t.kind == tokIdent && !isReserved(t)
}

func (p *parser) identifier() (string, error) {
	if !p.atIdentifier() {
		return "", p.errorf("expected identifier but found %s", p.tok())
	}
	return p.next().text, nil
}

// name parses a dotted name.
func (p *parser) name() (string, error) {
	first, err := p.identifier()
	if err != nil {
		return "", err
	}
	parts := []string{first}
	for p.at(".") && (p.peek(1).kind == tokQuoted || p.peek(1).kind == tokIdent && !isReserved(p.peek(1))) {
		p.next()
		parts = append(parts, p.next().text)
	}
	return strings.Join(parts, "."), nil
}

func (p *parser) names() ([]string, error) {
	var out []string
	for {
		n, err := p.name()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		if !p.accept(",") {
			return out, nil
		}
	}
}

// typeName parses a type such as "integer", "varchar(20)" or "string[]".
func (p *parser) typeName() (string, error) {
	t := p.tok()
	if t.kind != tokIdent {
		return "", p.errorf("expected type name but found %s", t)
	}
	p.next()
	name := t.text
	if p.accept("(") {
		for !p.at(")") {
			if p.tok().kind == tokEOF {
				return "", p.errorf("unterminated type parameters")
			}
			p.next()
		}
		p.next()
	}
	typ, ok := vdb.LookupPrimitive(name)
	if !ok {
		return "", &parseError{msg: fmt.Sprintf("unknown type %q", name), pos: t.pos, end: t.end}
	}
	for p.at("[") && p.peek(1).is("]") {
		p.next()
		p.next()
		typ = vdb.ArrayOf(typ)
	}
	return typ, nil
}

func (p *parser) command() (ast.Command, error) {
	t := p.tok()
	switch {
	case t.is("SELECT"), t.is("("):
		return p.queryExpression()
	case t.is("INSERT"):
		return p.insert()
	case t.is("UPDATE"):
		return p.update()
	case t.is("DELETE"):
		return p.delete()
	case t.is("EXEC"), t.is("EXECUTE"):
		if p.peek(1).is("IMMEDIATE") {
			return p.dynamic()
		}
		return p.exec()
	case t.is("CREATE"):
		return p.create()
	case t.is("BEGIN"):
		start := p.tok()
		block, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.CreateProcedure{Block: block, Loc: p.loc(start)}, nil
	}
	return nil, p.errorf("unexpected %s", t)
}

func (p *parser) queryExpression() (ast.Command, error) {
	start := p.tok()
	left, err := p.queryTerm()
	if err != nil {
		return nil, err
	}
	for p.at("UNION") || p.at("EXCEPT") {
		op := strings.ToUpper(p.next().text)
		all := p.accept("ALL")
		if !all {
			p.accept("DISTINCT")
		}
		right, err := p.queryTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.SetQuery{Op: op, All: all, Left: left, Right: right, Loc: p.loc(start)}
	}
	orderBy, err := p.orderBy()
	if err != nil {
		return nil, err
	}
	limit, err := p.limit()
	if err != nil {
		return nil, err
	}
	if orderBy == nil && limit == nil {
		return left, nil
	}
	switch cmd := left.(type) {
	case *ast.Query:
		if cmd.OrderBy == nil && cmd.Limit == nil {
			cmd.OrderBy, cmd.Limit = orderBy, limit
			return cmd, nil
		}
	case *ast.SetQuery:
		if cmd.OrderBy == nil && cmd.Limit == nil {
			cmd.OrderBy, cmd.Limit = orderBy, limit
			return cmd, nil
		}
	}
	// A parenthesized query that already has its own ORDER BY or LIMIT
	// is wrapped as a derived table.
	return &ast.Query{
		Select: &ast.Select{Symbols: []ast.Expr{&ast.MultipleElementSymbol{}}},
		From:   &ast.From{Clauses: []ast.FromClause{&ast.SubqueryFromClause{Name: "x", Command: left}}},
		OrderBy: orderBy,
		Limit:   limit,
		Loc:     p.loc(start),
	}, nil
}

func (p *parser) queryTerm() (ast.Command, error) {
	start := p.tok()
	left, err := p.queryPrimary()
	if err != nil {
		return nil, err
	}
	for p.accept("INTERSECT") {
		all := p.accept("ALL")
		if !all {
			p.accept("DISTINCT")
		}
		right, err := p.queryPrimary()
		if err != nil {
			return nil, err
		}
		left = &ast.SetQuery{Op: ast.Intersect, All: all, Left: left, Right: right, Loc: p.loc(start)}
	}
	return left, nil
}

func (p *parser) queryPrimary() (ast.Command, error) {
	if p.accept("(") {
		cmd, err := p.queryExpression()
		if err != nil {
			return nil, err
		}
		return cmd, p.expect(")")
	}
	return p.query()
}

func (p *parser) query() (*ast.Query, error) {
	start := p.tok()
	if err := p.expect("SELECT"); err != nil {
		return nil, err
	}
	sel := &ast.Select{}
	if p.accept("DISTINCT") {
		sel.Distinct = true
	} else {
		p.accept("ALL")
	}
	for {
		sym, err := p.selectSymbol(len(sel.Symbols) + 1)
		if err != nil {
			return nil, err
		}
		sel.Symbols = append(sel.Symbols, sym)
		if !p.accept(",") {
			break
		}
	}
	sel.Loc = p.loc(start)
	q := &ast.Query{Select: sel}
	if p.accept("INTO") {
		g, err := p.groupSymbol(false)
		if err != nil {
			return nil, err
		}
		q.Into = g
	}
	if p.accept("FROM") {
		from, err := p.from()
		if err != nil {
			return nil, err
		}
		q.From = from
	}
	var err error
	if q.Where, err = p.where(); err != nil {
		return nil, err
	}
	if p.accept("GROUP") {
		if err := p.expect("BY"); err != nil {
			return nil, err
		}
		if q.GroupBy, err = p.exprList(); err != nil {
			return nil, err
		}
	}
	if p.accept("HAVING") {
		if q.Having, err = p.criteria(); err != nil {
			return nil, err
		}
	}
	q.Loc = p.loc(start)
	return q, nil
}

func (p *parser) selectSymbol(position int) (ast.Expr, error) {
	start := p.tok()
	if p.accept("*") {
		return &ast.MultipleElementSymbol{Loc: p.loc(start)}, nil
	}
	if p.atIdentifier() {
		// Look for "g.*".
		save := p.k
		if name, err := p.name(); err == nil && p.at(".") && p.peek(1).is("*") {
			p.next()
			p.next()
			return &ast.MultipleElementSymbol{Group: name, Loc: p.loc(start)}, nil
		}
		p.k = save
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.accept("AS") {
		alias, err := p.identifier()
		if err != nil {
			return nil, err
		}
		return &ast.AliasSymbol{Name: alias, Expr: e, Loc: p.loc(start)}, nil
	}
	if p.atIdentifier() {
		alias := p.next().text
		return &ast.AliasSymbol{Name: alias, Expr: e, Loc: p.loc(start)}, nil
	}
	if _, ok := e.(*ast.ElementSymbol); ok {
		return e, nil
	}
	return &ast.ExpressionSymbol{Name: fmt.Sprintf("expr%d", position), Expr: e, Loc: p.loc(start)}, nil
}

func (p *parser) groupSymbol(allowAlias bool) (*ast.GroupSymbol, error) {
	start := p.tok()
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	g := &ast.GroupSymbol{Name: name}
	if allowAlias {
		if p.accept("AS") {
			alias, err := p.identifier()
			if err != nil {
				return nil, err
			}
			g.Definition, g.Name = name, alias
		} else if p.atIdentifier() {
			g.Definition, g.Name = name, p.next().text
		}
	}
	g.Loc = p.loc(start)
	return g, nil
}

func (p *parser) from() (*ast.From, error) {
	start := p.tok()
	from := &ast.From{}
	for {
		f, err := p.tableReference()
		if err != nil {
			return nil, err
		}
		from.Clauses = append(from.Clauses, f)
		if !p.accept(",") {
			break
		}
	}
	from.Loc = p.loc(start)
	return from, nil
}

func (p *parser) joinKind() (ast.JoinKind, bool) {
	switch {
	case p.accept("JOIN"):
		return ast.InnerJoin, true
	case p.at("INNER") && p.peek(1).is("JOIN"):
		p.next()
		p.next()
		return ast.InnerJoin, true
	case p.at("CROSS") && p.peek(1).is("JOIN"):
		p.next()
		p.next()
		return ast.CrossJoin, true
	}
	var kind ast.JoinKind
	switch {
	case p.at("LEFT"):
		kind = ast.LeftOuterJoin
	case p.at("RIGHT"):
		kind = ast.RightOuterJoin
	case p.at("FULL"):
		kind = ast.FullOuterJoin
	default:
		return 0, false
	}
	n := 1
	if p.peek(1).is("OUTER") {
		n = 2
	}
	if !p.peek(n).is("JOIN") {
		return 0, false
	}
	for range n + 1 {
		p.next()
	}
	return kind, true
}

func (p *parser) tableReference() (ast.FromClause, error) {
	start := p.tok()
	left, err := p.tablePrimary()
	if err != nil {
		return nil, err
	}
	for {
		kind, ok := p.joinKind()
		if !ok {
			return left, nil
		}
		right, err := p.tablePrimary()
		if err != nil {
			return nil, err
		}
		join := &ast.JoinPredicate{Kind: kind, Left: left, Right: right}
		if kind != ast.CrossJoin {
			if err := p.expect("ON"); err != nil {
				return nil, err
			}
			on, err := p.criteria()
			if err != nil {
				return nil, err
			}
			join.Criteria = ast.Conjuncts(on)
		}
		join.Loc = p.loc(start)
		left = join
	}
}

func (p *parser) tablePrimary() (ast.FromClause, error) {
	start := p.tok()
	lateral := p.accept("LATERAL")
	if p.at("(") {
		if lateral || p.peek(1).is("SELECT") || p.peek(1).is("EXEC") || p.peek(1).is("EXECUTE") || p.peek(1).is("(") && !p.nestedJoin() {
			p.next()
			cmd, err := p.command()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			p.accept("AS")
			name, err := p.identifier()
			if err != nil {
				return nil, err
			}
			return &ast.SubqueryFromClause{Name: name, Command: cmd, Lateral: lateral, Loc: p.loc(start)}, nil
		}
		p.next()
		f, err := p.tableReference()
		if err != nil {
			return nil, err
		}
		return f, p.expect(")")
	}
	g, err := p.groupSymbol(true)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryFromClause{Group: g, Loc: p.loc(start)}, nil
}

// nestedJoin reports whether the parenthesis at the current token opens a
// parenthesized join rather than a query.
func (p *parser) nestedJoin() bool {
	k := 1
	for p.peek(k).is("(") {
		k++
	}
	return !p.peek(k).is("SELECT")
}

func (p *parser) where() (ast.Criteria, error) {
	if !p.accept("WHERE") {
		return nil, nil
	}
	return p.criteria()
}

func (p *parser) orderBy() (*ast.OrderBy, error) {
	start := p.tok()
	if !p.at("ORDER") {
		return nil, nil
	}
	p.next()
	if err := p.expect("BY"); err != nil {
		return nil, err
	}
	o := &ast.OrderBy{}
	for {
		itemStart := p.tok()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		item := &ast.SortItem{Expr: e, Position: -1}
		if p.accept("DESC") {
			item.Desc = true
		} else {
			p.accept("ASC")
		}
		item.Loc = p.loc(itemStart)
		o.Items = append(o.Items, item)
		if !p.accept(",") {
			break
		}
	}
	o.Loc = p.loc(start)
	return o, nil
}

func (p *parser) limit() (*ast.Limit, error) {
	start := p.tok()
	if !p.accept("LIMIT") {
		return nil, nil
	}
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	l := &ast.Limit{Count: first}
	if p.accept(",") {
		count, err := p.expr()
		if err != nil {
			return nil, err
		}
		l.Offset, l.Count = first, count
	}
	l.Loc = p.loc(start)
	return l, nil
}

func (p *parser) insert() (*ast.Insert, error) {
	start := p.next()
	if err := p.expect("INTO"); err != nil {
		return nil, err
	}
	g, err := p.groupSymbol(false)
	if err != nil {
		return nil, err
	}
	ins := &ast.Insert{Group: g}
	if p.at("(") && !p.peek(1).is("SELECT") {
		p.next()
		names, err := p.names()
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			ins.Columns = append(ins.Columns, &ast.ElementSymbol{Name: n})
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	if p.accept("VALUES") {
		if err := p.expect("("); err != nil {
			return nil, err
		}
		if ins.Values, err = p.exprList(); err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	} else {
		if ins.Query, err = p.queryExpression(); err != nil {
			return nil, err
		}
	}
	ins.Loc = p.loc(start)
	return ins, nil
}

func (p *parser) setClauses() ([]*ast.SetClause, error) {
	var out []*ast.SetClause
	for {
		start := p.tok()
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.SetClause{
			Column: &ast.ElementSymbol{Name: name, Loc: ast.NewLoc(start.pos, start.end)},
			Value:  e,
			Loc:    p.loc(start),
		})
		if !p.accept(",") {
			return out, nil
		}
	}
}

func (p *parser) update() (*ast.Update, error) {
	start := p.next()
	g, err := p.groupSymbol(false)
	if err != nil {
		return nil, err
	}
	if err := p.expect("SET"); err != nil {
		return nil, err
	}
	u := &ast.Update{Group: g}
	if u.Changes, err = p.setClauses(); err != nil {
		return nil, err
	}
	if u.Where, err = p.where(); err != nil {
		return nil, err
	}
	u.Loc = p.loc(start)
	return u, nil
}

func (p *parser) delete() (*ast.Delete, error) {
	start := p.next()
	if err := p.expect("FROM"); err != nil {
		return nil, err
	}
	g, err := p.groupSymbol(false)
	if err != nil {
		return nil, err
	}
	d := &ast.Delete{Group: g}
	if d.Where, err = p.where(); err != nil {
		return nil, err
	}
	d.Loc = p.loc(start)
	return d, nil
}

func (p *parser) exec() (*ast.StoredProcedure, error) {
	start := p.next()
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	sp := &ast.StoredProcedure{Name: name}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	for !p.at(")") {
		paramStart := p.tok()
		param := &ast.SPParam{}
		if p.atIdentifier() && p.peek(1).is("=>") {
			param.Name = p.next().text
			p.next()
		}
		if param.Expr, err = p.expr(); err != nil {
			return nil, err
		}
		param.Loc = p.loc(paramStart)
		sp.Params = append(sp.Params, param)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	sp.Loc = p.loc(start)
	return sp, nil
}

func (p *parser) dynamic() (*ast.DynamicCommand, error) {
	start := p.next()
	p.next()
	sql, err := p.expr()
	if err != nil {
		return nil, err
	}
	d := &ast.DynamicCommand{SQL: sql}
	if p.accept("AS") {
		d.AsClauseSet = true
		for {
			colStart := p.tok()
			name, err := p.identifier()
			if err != nil {
				return nil, err
			}
			typ, err := p.typeName()
			if err != nil {
				return nil, err
			}
			d.AsColumns = append(d.AsColumns, &ast.ElementSymbol{Name: name, Type: typ, Loc: p.loc(colStart)})
			if !p.accept(",") {
				break
			}
		}
	}
	if p.accept("INTO") {
		if d.Into, err = p.groupSymbol(false); err != nil {
			return nil, err
		}
	}
	if p.accept("USING") {
		if d.Using, err = p.setClauses(); err != nil {
			return nil, err
		}
	}
	d.Loc = p.loc(start)
	return d, nil
}

func (p *parser) create() (ast.Command, error) {
	start := p.next()
	switch {
	case p.at("VIRTUAL"), p.at("PROCEDURE"):
		p.accept("VIRTUAL")
		if err := p.expect("PROCEDURE"); err != nil {
			return nil, err
		}
		block, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.CreateProcedure{Block: block, Loc: p.loc(start)}, nil
	case p.at("LOCAL"):
		p.next()
		if err := p.expect("TEMPORARY"); err != nil {
			return nil, err
		}
		if err := p.expect("TABLE"); err != nil {
			return nil, err
		}
		return p.createTable(start)
	}
	return nil, p.errorf("expected PROCEDURE or LOCAL TEMPORARY TABLE but found %s", p.tok())
}

func (p *parser) createTable(start token) (*ast.CreateTable, error) {
	g, err := p.groupSymbol(false)
	if err != nil {
		return nil, err
	}
	ct := &ast.CreateTable{Group: g, Temp: true}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	for {
		if p.at("PRIMARY") && p.peek(1).is("KEY") {
			p.next()
			p.next()
			if err := p.expect("("); err != nil {
				return nil, err
			}
			if ct.PrimaryKey, err = p.names(); err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
		} else {
			colStart := p.tok()
			name, err := p.identifier()
			if err != nil {
				return nil, err
			}
			typ, err := p.typeName()
			if err != nil {
				return nil, err
			}
			col := &ast.ColumnDef{Name: name, Type: typ}
			if p.at("NOT") && p.peek(1).is("NULL") {
				p.next()
				p.next()
				col.NotNull = true
			}
			col.Loc = p.loc(colStart)
			ct.Columns = append(ct.Columns, col)
		}
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	ct.Loc = p.loc(start)
	return ct, nil
}
