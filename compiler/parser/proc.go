package parser

import (
	"strings"

	"github.com/brimdata/vdb/compiler/ast"
)

func (p *parser) block() (*ast.Block, error) {
	start := p.tok()
	b := &ast.Block{}
	if p.atIdentifier() && p.peek(1).is(":") {
		b.Label = p.next().text
		p.next()
	}
	if err := p.expect("BEGIN"); err != nil {
		return nil, err
	}
	for !p.at("END") {
		if p.tok().kind == tokEOF {
			return nil, p.errorf("expected END but found %s", p.tok())
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		b.Statements = append(b.Statements, stmt)
	}
	p.next()
	b.Loc = p.loc(start)
	return b, nil
}

// body parses the body of IF, WHILE and LOOP, which is either a block or a
// single statement.
func (p *parser) body() (*ast.Block, error) {
	if p.at("BEGIN") || p.atIdentifier() && p.peek(1).is(":") && p.peek(2).is("BEGIN") {
		return p.block()
	}
	start := p.tok()
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.Block{Statements: []ast.Statement{stmt}, Loc: p.loc(start)}, nil
}

func (p *parser) statement() (ast.Statement, error) {
	start := p.tok()
	var stmt ast.Statement
	switch t := p.tok(); {
	case t.is("BEGIN"), p.atIdentifier() && p.peek(1).is(":"):
		return p.block()
	case t.is("IF"):
		return p.ifStatement()
	case t.is("WHILE"):
		p.next()
		cond, err := p.condition()
		if err != nil {
			return nil, err
		}
		block, err := p.body()
		if err != nil {
			return nil, err
		}
		return &ast.While{Condition: cond, Block: block, Loc: p.loc(start)}, nil
	case t.is("LOOP"):
		p.next()
		if err := p.expect("ON"); err != nil {
			return nil, err
		}
		cmd, err := p.subquery()
		if err != nil {
			return nil, err
		}
		if err := p.expect("AS"); err != nil {
			return nil, err
		}
		cursor, err := p.identifier()
		if err != nil {
			return nil, err
		}
		block, err := p.body()
		if err != nil {
			return nil, err
		}
		return &ast.Loop{Command: cmd, Cursor: cursor, Block: block, Loc: p.loc(start)}, nil
	case t.is("DECLARE"):
		p.next()
		typ, err := p.typeName()
		if err != nil {
			return nil, err
		}
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		d := &ast.Declare{Variable: &ast.ElementSymbol{Name: name}, Type: typ}
		if p.accept("=") {
			if d.Value, err = p.assignedValue(); err != nil {
				return nil, err
			}
		}
		stmt = d
	case t.is("RETURN"):
		p.next()
		r := &ast.Return{}
		if !p.at(";") {
			e, err := p.expr()
			if err != nil {
				return nil, err
			}
			r.Expr = e
		}
		stmt = r
	case t.is("ERROR"), t.is("RAISE"):
		p.next()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		stmt = &ast.Raise{Expr: e}
	case t.is("BREAK"), t.is("CONTINUE"), t.is("LEAVE"):
		b := &ast.Branching{Mode: strings.ToUpper(p.next().text)}
		if p.atIdentifier() {
			b.Label = p.next().text
		}
		stmt = b
	case p.atIdentifier() && p.isAssignment():
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		p.next()
		value, err := p.assignedValue()
		if err != nil {
			return nil, err
		}
		stmt = &ast.Assignment{Variable: &ast.ElementSymbol{Name: name}, Value: value}
	default:
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		stmt = &ast.CommandStatement{Command: cmd}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	setLoc(stmt, p.loc(start))
	return stmt, nil
}

func setLoc(stmt ast.Statement, loc ast.Loc) {
	switch s := stmt.(type) {
	case *ast.Declare:
		s.Loc = loc
	case *ast.Assignment:
		s.Loc = loc
	case *ast.CommandStatement:
		s.Loc = loc
	case *ast.Return:
		s.Loc = loc
	case *ast.Raise:
		s.Loc = loc
	case *ast.Branching:
		s.Loc = loc
	}
}

// isAssignment looks past a dotted name for "=".
func (p *parser) isAssignment() bool {
	k := 1
	for p.peek(k).is(".") {
		k += 2
	}
	return p.peek(k).is("=")
}

// assignedValue parses the right side of an assignment, which may be a
// scalar subquery written without parentheses.
func (p *parser) assignedValue() (ast.Expr, error) {
	if p.at("SELECT") {
		start := p.tok()
		cmd, err := p.queryExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ScalarSubquery{Command: cmd, Loc: p.loc(start)}, nil
	}
	return p.expr()
}

func (p *parser) condition() (ast.Criteria, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	c, err := p.criteria()
	if err != nil {
		return nil, err
	}
	return c, p.expect(")")
}

func (p *parser) ifStatement() (*ast.If, error) {
	start := p.next()
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	then, err := p.body()
	if err != nil {
		return nil, err
	}
	s := &ast.If{Condition: cond, Then: then}
	if p.accept("ELSE") {
		if p.at("IF") {
			elseStart := p.tok()
			nested, err := p.ifStatement()
			if err != nil {
				return nil, err
			}
			s.Else = &ast.Block{Statements: []ast.Statement{nested}, Loc: p.loc(elseStart)}
		} else if s.Else, err = p.body(); err != nil {
			return nil, err
		}
	}
	s.Loc = p.loc(start)
	return s, nil
}
