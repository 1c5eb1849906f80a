package parser

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/function"
)

var aggregates = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"AVG":   true,
	"MIN":   true,
	"MAX":   true,
}

var compareOps = map[string]bool{
	"=":  true,
	"<>": true,
	"!=": true,
	"<":  true,
	"<=": true,
	">":  true,
	">=": true,
}

func (p *parser) exprList() ([]ast.Expr, error) {
	var out []ast.Expr
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.accept(",") {
			return out, nil
		}
	}
}

func (p *parser) criteria() (ast.Criteria, error) {
	start := p.tok()
	first, err := p.conjunction()
	if err != nil {
		return nil, err
	}
	if !p.at("OR") {
		return first, nil
	}
	list := []ast.Criteria{first}
	for p.accept("OR") {
		c, err := p.conjunction()
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return &ast.Compound{Op: ast.Or, Criteria: list, Loc: p.loc(start)}, nil
}

func (p *parser) conjunction() (ast.Criteria, error) {
	start := p.tok()
	first, err := p.negation()
	if err != nil {
		return nil, err
	}
	if !p.at("AND") {
		return first, nil
	}
	list := []ast.Criteria{first}
	for p.accept("AND") {
		c, err := p.negation()
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return &ast.Compound{Op: ast.And, Criteria: list, Loc: p.loc(start)}, nil
}

func (p *parser) negation() (ast.Criteria, error) {
	start := p.tok()
	if p.at("NOT") && !p.peek(1).is("EXISTS") {
		p.next()
		c, err := p.negation()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Criteria: c, Loc: p.loc(start)}, nil
	}
	return p.predicate()
}

func (p *parser) predicate() (ast.Criteria, error) {
	start := p.tok()
	if p.at("EXISTS") || p.at("NOT") && p.peek(1).is("EXISTS") {
		not := p.accept("NOT")
		p.next()
		cmd, err := p.subquery()
		if err != nil {
			return nil, err
		}
		return &ast.Exists{Command: cmd, Not: not, Loc: p.loc(start)}, nil
	}
	if p.at("(") && !p.peek(1).is("SELECT") {
		// Try a parenthesized condition first and fall back to an
		// expression that begins with a parenthesis.
		save, refs := p.k, p.refs
		p.next()
		if c, err := p.criteria(); err == nil && p.accept(")") {
			return c, nil
		}
		p.k, p.refs = save, refs
	}
	lhs, err := p.expr()
	if err != nil {
		return nil, err
	}
	t := p.tok()
	switch {
	case t.kind == tokOp && compareOps[t.text]:
		p.next()
		op := t.text
		if op == "!=" {
			op = "<>"
		}
		if p.at("ANY") || p.at("SOME") || p.at("ALL") {
			quantifier := strings.ToUpper(p.next().text)
			cmd, err := p.subquery()
			if err != nil {
				return nil, err
			}
			return &ast.SubqueryCompare{Op: op, LHS: lhs, Quantifier: quantifier, Command: cmd, Loc: p.loc(start)}, nil
		}
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		if s, ok := rhs.(*ast.ScalarSubquery); ok {
			return &ast.SubqueryCompare{Op: op, LHS: lhs, Command: s.Command, Loc: p.loc(start)}, nil
		}
		return &ast.Compare{Op: op, LHS: lhs, RHS: rhs, Loc: p.loc(start)}, nil
	case t.is("IS"):
		p.next()
		not := p.accept("NOT")
		if err := p.expect("NULL"); err != nil {
			return nil, err
		}
		return &ast.IsNull{Expr: lhs, Not: not, Loc: p.loc(start)}, nil
	}
	not := false
	if t.is("NOT") {
		next := p.peek(1)
		if next.is("LIKE") || next.is("IN") || next.is("BETWEEN") {
			p.next()
			not = true
		}
	}
	switch {
	case p.accept("LIKE"):
		pattern, err := p.expr()
		if err != nil {
			return nil, err
		}
		m := &ast.Match{Expr: lhs, Pattern: pattern, Not: not}
		if p.accept("ESCAPE") {
			esc := p.tok()
			if esc.kind != tokString {
				return nil, p.errorf("expected escape character but found %s", esc)
			}
			p.next()
			m.Escape = esc.text
		}
		m.Loc = p.loc(start)
		return m, nil
	case p.accept("IN"):
		if p.at("(") && p.peek(1).is("SELECT") {
			cmd, err := p.subquery()
			if err != nil {
				return nil, err
			}
			return &ast.SubquerySet{Expr: lhs, Command: cmd, Not: not, Loc: p.loc(start)}, nil
		}
		if err := p.expect("("); err != nil {
			return nil, err
		}
		values, err := p.exprList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return &ast.Set{Expr: lhs, Values: values, Not: not, Loc: p.loc(start)}, nil
	case p.accept("BETWEEN"):
		lower, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect("AND"); err != nil {
			return nil, err
		}
		upper, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &ast.Between{Expr: lhs, Lower: lower, Upper: upper, Not: not, Loc: p.loc(start)}, nil
	}
	if c, ok := lhs.(ast.Criteria); ok {
		return c, nil
	}
	return nil, p.errorf("expected comparison but found %s", p.tok())
}

func (p *parser) subquery() (ast.Command, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cmd, err := p.queryExpression()
	if err != nil {
		return nil, err
	}
	return cmd, p.expect(")")
}

func (p *parser) expr() (ast.Expr, error) {
	start := p.tok()
	lhs, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.at("+") || p.at("-") || p.at("||") {
		op := p.next().text
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Function{Name: op, Args: []ast.Expr{lhs, rhs}, Loc: p.loc(start)}
	}
	return lhs, nil
}

func (p *parser) term() (ast.Expr, error) {
	start := p.tok()
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.at("*") || p.at("/") {
		op := p.next().text
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Function{Name: op, Args: []ast.Expr{lhs, rhs}, Loc: p.loc(start)}
	}
	return lhs, nil
}

func (p *parser) unary() (ast.Expr, error) {
	start := p.tok()
	if p.at("-") || p.at("+") {
		neg := p.next().text == "-"
		if p.tok().kind == tokNumber {
			k, err := p.number(neg)
			if err != nil {
				return nil, err
			}
			k.Loc = p.loc(start)
			return k, nil
		}
		e, err := p.unary()
		if err != nil || !neg {
			return e, err
		}
		zero := &ast.Constant{Value: int32(0), Type: vdb.Integer}
		return &ast.Function{Name: "-", Args: []ast.Expr{zero, e}, Loc: p.loc(start)}, nil
	}
	return p.primary()
}

func (p *parser) number(neg bool) (*ast.Constant, error) {
	t := p.next()
	text := t.text
	if neg {
		text = "-" + text
	}
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &parseError{msg: "invalid number " + text, pos: t.pos, end: t.end}
		}
		return &ast.Constant{Value: f, Type: vdb.Double, Loc: ast.NewLoc(t.pos, t.end)}, nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n >= -1<<31 && n < 1<<31 {
			return &ast.Constant{Value: int32(n), Type: vdb.Integer, Loc: ast.NewLoc(t.pos, t.end)}, nil
		}
		return &ast.Constant{Value: n, Type: vdb.Long, Loc: ast.NewLoc(t.pos, t.end)}, nil
	}
	b, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, &parseError{msg: "invalid number " + text, pos: t.pos, end: t.end}
	}
	return &ast.Constant{Value: b, Type: vdb.BigInteger, Loc: ast.NewLoc(t.pos, t.end)}, nil
}

func (p *parser) primary() (ast.Expr, error) {
	start := p.tok()
	switch t := p.tok(); {
	case t.kind == tokNumber:
		return p.number(false)
	case t.kind == tokString:
		p.next()
		return &ast.Constant{Value: t.text, Type: vdb.String, Loc: p.loc(start)}, nil
	case t.is("?"):
		p.next()
		p.refs++
		return &ast.Reference{Index: p.refs - 1, Positional: true, Loc: p.loc(start)}, nil
	case t.is("NULL"):
		p.next()
		return &ast.Constant{Type: vdb.Null, Loc: p.loc(start)}, nil
	case t.is("TRUE"), t.is("FALSE"):
		p.next()
		return &ast.Constant{Value: t.is("TRUE"), Type: vdb.Boolean, Loc: p.loc(start)}, nil
	case t.is("{"):
		return p.escapedLiteral()
	case t.is("("):
		if p.peek(1).is("SELECT") {
			cmd, err := p.subquery()
			if err != nil {
				return nil, err
			}
			return &ast.ScalarSubquery{Command: cmd, Loc: p.loc(start)}, nil
		}
		p.next()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		return e, p.expect(")")
	case t.is("CASE"):
		return p.caseExpr()
	case t.is("CAST"), t.is("CONVERT"):
		return p.conversion()
	case t.kind == tokIdent && strings.EqualFold(t.text, "ARRAY") && p.peek(1).is("["):
		p.next()
		p.next()
		a := &ast.Array{}
		if !p.at("]") {
			elems, err := p.exprList()
			if err != nil {
				return nil, err
			}
			a.Elems = elems
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		a.Loc = p.loc(start)
		return a, nil
	case t.kind == tokIdent && aggregates[strings.ToUpper(t.text)] && p.peek(1).is("("):
		return p.aggregate()
	case t.kind == tokQuoted, t.kind == tokIdent && !isReserved(t):
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		if p.accept("(") {
			f := &ast.Function{Name: name}
			if !p.at(")") {
				if f.Args, err = p.exprList(); err != nil {
					return nil, err
				}
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			f.Loc = p.loc(start)
			return f, nil
		}
		return &ast.ElementSymbol{Name: name, Loc: p.loc(start)}, nil
	}
	return nil, p.errorf("unexpected %s", p.tok())
}

func (p *parser) escapedLiteral() (ast.Expr, error) {
	start := p.next()
	kind := strings.ToLower(p.tok().text)
	var typ string
	switch kind {
	case "d":
		typ = vdb.Date
	case "t":
		typ = vdb.Time
	case "ts":
		typ = vdb.Timestamp
	default:
		return nil, p.errorf("unknown escape %s", p.tok())
	}
	p.next()
	lit := p.tok()
	if lit.kind != tokString {
		return nil, p.errorf("expected quoted literal but found %s", lit)
	}
	p.next()
	v, err := coerce.Convert(lit.text, vdb.String, typ)
	if err != nil {
		return nil, &parseError{msg: "invalid " + typ + " literal " + lit.String(), pos: lit.pos, end: lit.end}
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return &ast.Constant{Value: v, Type: typ, Loc: p.loc(start)}, nil
}

func (p *parser) aggregate() (ast.Expr, error) {
	start := p.tok()
	name := strings.ToUpper(p.next().text)
	p.next()
	agg := &ast.Aggregate{Name: name}
	if name == "COUNT" && p.at("*") {
		p.next()
	} else {
		agg.Distinct = p.accept("DISTINCT")
		if !agg.Distinct {
			p.accept("ALL")
		}
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		agg.Arg = arg
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	agg.Loc = p.loc(start)
	return agg, nil
}

func (p *parser) conversion() (ast.Expr, error) {
	start := p.tok()
	name := strings.ToLower(p.next().text)
	if err := p.expect("("); err != nil {
		return nil, err
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	sep := ","
	if name == function.Cast {
		sep = "AS"
	}
	if err := p.expect(sep); err != nil {
		return nil, err
	}
	typStart := p.tok()
	typ, err := p.typeName()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	target := &ast.Constant{Value: typ, Type: vdb.String, Loc: p.loc(typStart)}
	return &ast.Function{Name: name, Args: []ast.Expr{e, target}, Loc: p.loc(start)}, nil
}

func (p *parser) caseExpr() (ast.Expr, error) {
	start := p.next()
	if p.at("WHEN") {
		c := &ast.SearchedCase{}
		for p.accept("WHEN") {
			when, err := p.criteria()
			if err != nil {
				return nil, err
			}
			if err := p.expect("THEN"); err != nil {
				return nil, err
			}
			then, err := p.expr()
			if err != nil {
				return nil, err
			}
			c.Whens = append(c.Whens, ast.SearchedWhen{When: when, Then: then})
		}
		var err error
		if c.Else, err = p.caseElse(); err != nil {
			return nil, err
		}
		c.Loc = p.loc(start)
		return c, nil
	}
	operand, err := p.expr()
	if err != nil {
		return nil, err
	}
	c := &ast.Case{Expr: operand}
	for p.accept("WHEN") {
		when, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect("THEN"); err != nil {
			return nil, err
		}
		then, err := p.expr()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, ast.When{When: when, Then: then})
	}
	if len(c.Whens) == 0 {
		return nil, p.errorf("expected WHEN but found %s", p.tok())
	}
	if c.Else, err = p.caseElse(); err != nil {
		return nil, err
	}
	c.Loc = p.loc(start)
	return c, nil
}

func (p *parser) caseElse() (ast.Expr, error) {
	var e ast.Expr
	if p.accept("ELSE") {
		var err error
		if e, err = p.expr(); err != nil {
			return nil, err
		}
	}
	return e, p.expect("END")
}
