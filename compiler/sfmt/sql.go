// Package sfmt renders language objects as SQL text.  Resolved trees render
// with their canonical group names and any implicit conversions the
// resolver inserted.
package sfmt

import (
	"math/big"
	"strings"
	"time"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/function"
	"github.com/shopspring/decimal"
)

func Command(cmd ast.Command) string {
	c := newCanon()
	c.command(cmd)
	c.flush()
	return c.String()
}

func Expr(e ast.Expr) string {
	c := newCanon()
	c.expr(e)
	c.flush()
	return c.String()
}

func From(f ast.FromClause) string {
	c := newCanon()
	c.fromClause(f)
	c.flush()
	return c.String()
}

func Group(g *ast.GroupSymbol) string {
	c := newCanon()
	c.group(g)
	return c.String()
}

type canon struct {
	formatter
}

func newCanon() *canon {
	return &canon{formatter: formatter{tab: 4}}
}

func (c *canon) exprs(exprs []ast.Expr) {
	for k, e := range exprs {
		if k > 0 {
			c.write(", ")
		}
		c.expr(e)
	}
}

var infix = map[string]bool{
	"+":  true,
	"-":  true,
	"*":  true,
	"/":  true,
	"||": true,
}

func (c *canon) expr(e ast.Expr) {
	switch e := e.(type) {
	case nil:
		c.write("NULL")
	case *ast.Constant:
		c.constant(e)
	case *ast.ElementSymbol:
		c.write(Name(e.Name))
	case *ast.AliasSymbol:
		c.expr(e.Expr)
		c.write(" AS %s", quoteIdent(e.Name))
	case *ast.ExpressionSymbol:
		c.expr(e.Expr)
	case *ast.MultipleElementSymbol:
		if e.Group != "" {
			c.write("%s.*", Name(e.Group))
		} else {
			c.write("*")
		}
	case *ast.Function:
		c.function(e)
	case *ast.Reference:
		c.write("?")
	case *ast.Aggregate:
		c.write("%s(", strings.ToUpper(e.Name))
		if e.Distinct {
			c.write("DISTINCT ")
		}
		if e.Arg == nil {
			c.write("*")
		} else {
			c.expr(e.Arg)
		}
		c.write(")")
	case *ast.Case:
		c.write("CASE ")
		c.expr(e.Expr)
		for _, w := range e.Whens {
			c.write(" WHEN ")
			c.expr(w.When)
			c.write(" THEN ")
			c.expr(w.Then)
		}
		c.caseElse(e.Else)
	case *ast.SearchedCase:
		c.write("CASE")
		for _, w := range e.Whens {
			c.write(" WHEN ")
			c.expr(w.When)
			c.write(" THEN ")
			c.expr(w.Then)
		}
		c.caseElse(e.Else)
	case *ast.ScalarSubquery:
		c.subquery(e.Command)
	case *ast.Array:
		c.write("ARRAY[")
		c.exprs(e.Elems)
		c.write("]")
	case ast.Criteria:
		c.criteria(e)
	default:
		c.write("<unknown expression %T>", e)
	}
}

func (c *canon) caseElse(e ast.Expr) {
	if e != nil {
		c.write(" ELSE ")
		c.expr(e)
	}
	c.write(" END")
}

func (c *canon) function(f *ast.Function) {
	name := strings.ToLower(f.Name)
	switch {
	case (name == function.Convert || name == function.Cast) && len(f.Args) == 2:
		c.write("%s(", name)
		c.expr(f.Args[0])
		if name == function.Cast {
			c.write(" AS ")
		} else {
			c.write(", ")
		}
		if k, ok := f.Args[1].(*ast.Constant); ok {
			if s, ok := k.Value.(string); ok {
				c.write(s)
				c.write(")")
				return
			}
		}
		c.expr(f.Args[1])
		c.write(")")
	case infix[name] && len(f.Args) == 2:
		c.write("(")
		c.expr(f.Args[0])
		c.write(" %s ", name)
		c.expr(f.Args[1])
		c.write(")")
	default:
		c.write("%s(", f.Name)
		c.exprs(f.Args)
		c.write(")")
	}
}

func (c *canon) constant(k *ast.Constant) {
	switch v := k.Value.(type) {
	case nil:
		c.write("NULL")
	case string:
		c.write(quoteString(v))
	case bool:
		if v {
			c.write("TRUE")
		} else {
			c.write("FALSE")
		}
	case time.Time:
		s := coerce.Format(v, k.Type)
		switch k.Type {
		case vdb.Date:
			c.write("{d %s}", quoteString(s))
		case vdb.Time:
			c.write("{t %s}", quoteString(s))
		default:
			c.write("{ts %s}", quoteString(s))
		}
	case []byte:
		c.write("X'%s'", coerce.Format(v, k.Type))
	case *big.Int, decimal.Decimal, int8, int16, int32, int64, float32, float64:
		c.write(coerce.Format(v, k.Type))
	default:
		c.write(quoteString(coerce.Format(v, k.Type)))
	}
}

func (c *canon) subquery(cmd ast.Command) {
	c.write("(")
	c.command(cmd)
	c.write(")")
}

func (c *canon) criteria(e ast.Criteria) {
	switch e := e.(type) {
	case *ast.Compare:
		c.expr(e.LHS)
		c.write(" %s ", e.Op)
		c.expr(e.RHS)
	case *ast.Compound:
		for k, sub := range e.Criteria {
			if k > 0 {
				c.write(" %s ", e.Op)
			}
			if _, ok := sub.(*ast.Compound); ok {
				c.write("(")
				c.criteria(sub)
				c.write(")")
			} else {
				c.criteria(sub)
			}
		}
	case *ast.Not:
		c.write("NOT (")
		c.criteria(e.Criteria)
		c.write(")")
	case *ast.IsNull:
		c.expr(e.Expr)
		c.write(" IS %sNULL", not(e.Not))
	case *ast.Match:
		c.expr(e.Expr)
		c.write(" %sLIKE ", not(e.Not))
		c.expr(e.Pattern)
		if e.Escape != "" {
			c.write(" ESCAPE %s", quoteString(e.Escape))
		}
	case *ast.Set:
		c.expr(e.Expr)
		c.write(" %sIN (", not(e.Not))
		c.exprs(e.Values)
		c.write(")")
	case *ast.SubquerySet:
		c.expr(e.Expr)
		c.write(" %sIN ", not(e.Not))
		c.subquery(e.Command)
	case *ast.Exists:
		c.write("%sEXISTS ", not(e.Not))
		c.subquery(e.Command)
	case *ast.SubqueryCompare:
		c.expr(e.LHS)
		c.write(" %s ", e.Op)
		if e.Quantifier != "" {
			c.write("%s ", e.Quantifier)
		}
		c.subquery(e.Command)
	case *ast.Between:
		c.expr(e.Expr)
		c.write(" %sBETWEEN ", not(e.Not))
		c.expr(e.Lower)
		c.write(" AND ")
		c.expr(e.Upper)
	default:
		c.write("<unknown criteria %T>", e)
	}
}

func not(b bool) string {
	if b {
		return "NOT "
	}
	return ""
}

func (c *canon) group(g *ast.GroupSymbol) {
	name, def := g.Name, g.Definition
	if g.OutputName != "" {
		name = g.OutputName
	}
	if g.OutputDefinition != "" {
		def = g.OutputDefinition
	}
	if def != "" {
		c.write("%s AS %s", Name(def), quoteIdent(name))
		return
	}
	c.write(Name(name))
}

func (c *canon) fromClause(f ast.FromClause) {
	switch f := f.(type) {
	case *ast.UnaryFromClause:
		c.group(f.Group)
	case *ast.JoinPredicate:
		c.fromClause(f.Left)
		c.write(" %s ", f.Kind)
		if _, ok := f.Right.(*ast.JoinPredicate); ok {
			c.write("(")
			c.fromClause(f.Right)
			c.write(")")
		} else {
			c.fromClause(f.Right)
		}
		if len(f.Criteria) > 0 {
			c.write(" ON ")
			c.criteria(ast.Conjunction(f.Criteria))
		}
	case *ast.SubqueryFromClause:
		if f.Lateral {
			c.write("LATERAL ")
		}
		c.subquery(f.Command)
		c.write(" AS %s", quoteIdent(f.Name))
	}
}

func (c *canon) command(cmd ast.Command) {
	switch cmd := cmd.(type) {
	case *ast.Query:
		c.query(cmd)
	case *ast.SetQuery:
		c.setQuery(cmd)
	case *ast.Insert:
		c.write("INSERT INTO ")
		c.group(cmd.Group)
		if len(cmd.Columns) > 0 {
			c.write(" (")
			for k, col := range cmd.Columns {
				if k > 0 {
					c.write(", ")
				}
				c.write(Name(col.Name))
			}
			c.write(")")
		}
		if cmd.Query != nil {
			c.write(" ")
			c.command(cmd.Query)
		} else {
			c.write(" VALUES (")
			c.exprs(cmd.Values)
			c.write(")")
		}
	case *ast.Update:
		c.write("UPDATE ")
		c.group(cmd.Group)
		c.write(" SET ")
		c.setClauses(cmd.Changes)
		c.where(cmd.Where)
	case *ast.Delete:
		c.write("DELETE FROM ")
		c.group(cmd.Group)
		c.where(cmd.Where)
	case *ast.StoredProcedure:
		c.write("EXEC %s(", Name(cmd.Name))
		k := 0
		for _, p := range cmd.Params {
			if p.UsingDefault || p.Expr == nil {
				continue
			}
			if k > 0 {
				c.write(", ")
			}
			k++
			if p.Name != "" {
				c.write("%s => ", quoteIdent(p.Name))
			}
			c.expr(p.Expr)
		}
		c.write(")")
	case *ast.DynamicCommand:
		c.write("EXECUTE IMMEDIATE ")
		c.expr(cmd.SQL)
		if cmd.AsClauseSet {
			c.write(" AS ")
			for k, col := range cmd.AsColumns {
				if k > 0 {
					c.write(", ")
				}
				c.write("%s %s", quoteIdent(ast.OutputName(col)), col.Type)
			}
		}
		if cmd.Into != nil {
			c.write(" INTO ")
			c.group(cmd.Into)
		}
		if len(cmd.Using) > 0 {
			c.write(" USING ")
			c.setClauses(cmd.Using)
		}
	case *ast.CreateProcedure:
		c.write("CREATE VIRTUAL PROCEDURE")
		c.ret()
		c.block(cmd.Block)
	case *ast.CreateTable:
		c.write("CREATE LOCAL TEMPORARY TABLE ")
		c.group(cmd.Group)
		c.write(" (")
		for k, col := range cmd.Columns {
			if k > 0 {
				c.write(", ")
			}
			c.write("%s %s", quoteIdent(col.Name), col.Type)
			if col.NotNull {
				c.write(" NOT NULL")
			}
		}
		if len(cmd.PrimaryKey) > 0 {
			c.write(", PRIMARY KEY (%s)", strings.Join(cmd.PrimaryKey, ", "))
		}
		c.write(")")
	default:
		c.write("<unknown command %T>", cmd)
	}
}

func (c *canon) setClauses(clauses []*ast.SetClause) {
	for k, s := range clauses {
		if k > 0 {
			c.write(", ")
		}
		c.write("%s = ", Name(s.Column.Name))
		c.expr(s.Value)
	}
}

func (c *canon) where(w ast.Criteria) {
	if w != nil {
		c.write(" WHERE ")
		c.criteria(w)
	}
}

func (c *canon) query(q *ast.Query) {
	c.write("SELECT ")
	if q.Select != nil {
		if q.Select.Distinct {
			c.write("DISTINCT ")
		}
		c.exprs(q.Select.Symbols)
	}
	if q.Into != nil {
		c.write(" INTO ")
		c.group(q.Into)
	}
	if q.From != nil && len(q.From.Clauses) > 0 {
		c.write(" FROM ")
		for k, f := range q.From.Clauses {
			if k > 0 {
				c.write(", ")
			}
			c.fromClause(f)
		}
	}
	c.where(q.Where)
	if len(q.GroupBy) > 0 {
		c.write(" GROUP BY ")
		c.exprs(q.GroupBy)
	}
	if q.Having != nil {
		c.write(" HAVING ")
		c.criteria(q.Having)
	}
	c.orderBy(q.OrderBy)
	c.limit(q.Limit)
}

func (c *canon) setQuery(s *ast.SetQuery) {
	c.command(s.Left)
	c.write(" %s ", s.Op)
	if s.All {
		c.write("ALL ")
	}
	if _, ok := s.Right.(*ast.SetQuery); ok {
		c.subquery(s.Right)
	} else {
		c.command(s.Right)
	}
	c.orderBy(s.OrderBy)
	c.limit(s.Limit)
}

func (c *canon) orderBy(o *ast.OrderBy) {
	if o == nil || len(o.Items) == 0 {
		return
	}
	c.write(" ORDER BY ")
	for k, item := range o.Items {
		if k > 0 {
			c.write(", ")
		}
		c.expr(item.Expr)
		if item.Desc {
			c.write(" DESC")
		}
	}
}

func (c *canon) limit(l *ast.Limit) {
	if l == nil {
		return
	}
	c.write(" LIMIT ")
	if l.Offset != nil {
		c.expr(l.Offset)
		c.write(", ")
	}
	c.expr(l.Count)
}

func (c *canon) block(b *ast.Block) {
	if b.Label != "" {
		c.write("%s : ", quoteIdent(b.Label))
	}
	c.open("BEGIN")
	for _, stmt := range b.Statements {
		c.ret()
		c.statement(stmt)
	}
	c.close()
	c.ret()
	c.write("END")
}

func (c *canon) statement(s ast.Statement) {
	switch s := s.(type) {
	case *ast.Block:
		c.block(s)
		return
	case *ast.Declare:
		c.write("DECLARE %s %s", s.Type, Name(s.Variable.Name))
		if s.Value != nil {
			c.write(" = ")
			c.expr(s.Value)
		}
	case *ast.Assignment:
		c.write("%s = ", Name(s.Variable.Name))
		c.expr(s.Value)
	case *ast.CommandStatement:
		c.command(s.Command)
	case *ast.If:
		c.write("IF(")
		c.criteria(s.Condition)
		c.write(")")
		c.ret()
		c.block(s.Then)
		if s.Else != nil {
			c.ret()
			c.write("ELSE")
			c.ret()
			c.block(s.Else)
		}
		return
	case *ast.While:
		c.write("WHILE(")
		c.criteria(s.Condition)
		c.write(")")
		c.ret()
		c.block(s.Block)
		return
	case *ast.Loop:
		c.write("LOOP ON ")
		c.subquery(s.Command)
		c.write(" AS %s", quoteIdent(s.Cursor))
		c.ret()
		c.block(s.Block)
		return
	case *ast.Return:
		c.write("RETURN")
		if s.Expr != nil {
			c.write(" ")
			c.expr(s.Expr)
		}
	case *ast.Raise:
		c.write("ERROR ")
		c.expr(s.Expr)
	case *ast.Branching:
		c.write(s.Mode)
		if s.Label != "" {
			c.write(" %s", quoteIdent(s.Label))
		}
	default:
		c.write("<unknown statement %T>", s)
	}
	c.write(";")
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Name renders a possibly dotted name, quoting the components that are not
// plain identifiers.
func Name(name string) string {
	parts := strings.Split(name, ".")
	for k, p := range parts {
		parts[k] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func quoteIdent(s string) string {
	if IsIdentifier(s) && !IsKeyword(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for k, r := range s {
		switch {
		case r == '_' || r == '#' && k == 0:
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && k > 0:
		default:
			return false
		}
	}
	return true
}

var keywords = map[string]bool{}

func init() {
	for _, k := range strings.Fields(`ALL AND ANY AS ASC BEGIN BETWEEN BREAK BY CASE CAST CONTINUE
		CONVERT CREATE CROSS DECLARE DELETE DESC DISTINCT ELSE END ERROR ESCAPE EXCEPT EXEC EXECUTE
		EXISTS FALSE FROM FULL GROUP HAVING IF IMMEDIATE IN INNER INSERT INTERSECT INTO IS JOIN
		LATERAL LEFT LIKE LIMIT LOOP NOT NULL ON OR ORDER OUTER PROCEDURE RETURN RIGHT SELECT SET
		SOME TABLE THEN TRUE UNION UPDATE USING VALUES WHEN WHERE WHILE`) {
		keywords[k] = true
	}
}

func IsKeyword(s string) bool {
	return keywords[strings.ToUpper(s)]
}
