package validator

import (
	"regexp"
	"strings"

	"github.com/brimdata/vdb/coerce"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/sfmt"
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata"
	"github.com/shellyln/go-sql-like-expr/likeexpr"
)

const General = "General"

// Validate checks a resolved command and every command nested in it for
// problems the resolver accepts but execution would not.
func Validate(cmd ast.Command, md metadata.Metadata) *Report {
	r := NewReport()
	newChecker(r, "", md).command(cmd)
	return r
}

type checker struct {
	report  *Report
	object  string
	lattice *coerce.Lattice
}

func newChecker(r *Report, object string, md metadata.Metadata) *checker {
	return &checker{report: r, object: object, lattice: coerce.For(md.Version())}
}

func (c *checker) errorf(format string, args ...any) {
	c.report.Errorf(General, c.object, format, args...)
}

func (c *checker) command(cmd ast.Command) {
	ast.Inspect(cmd, func(cmd ast.Command) bool {
		for _, e := range ast.Exprs(cmd) {
			c.expr(e)
		}
		switch cmd := cmd.(type) {
		case *ast.Query:
			c.query(cmd)
		case *ast.SetQuery:
			c.limit(cmd.Limit)
		case *ast.Insert:
			c.insert(cmd)
		case *ast.Update:
			c.update(cmd)
		case *ast.DynamicCommand:
			c.dynamic(cmd)
		}
		return true
	})
}

func (c *checker) expr(e ast.Expr) {
	ast.Walk(e, func(e ast.Expr) bool {
		switch e := e.(type) {
		case *ast.Function:
			c.conversion(e)
		case *ast.Match:
			c.pattern(e)
		case *ast.Aggregate:
			if e.Arg != nil && len(ast.Aggregates(e.Arg)) > 0 {
				c.errorf("aggregate %s contains a nested aggregate", sfmt.Expr(e))
			}
		}
		return true
	})
}

func (c *checker) conversion(f *ast.Function) {
	if f.Implicit || len(f.Args) == 0 {
		return
	}
	if !strings.EqualFold(f.Name, function.Convert) && !strings.EqualFold(f.Name, function.Cast) {
		return
	}
	source := ast.TypeOf(f.Args[0])
	if source == "" || source == f.Type || f.Type == "" {
		return
	}
	if !c.lattice.CanExplicitlyConvert(source, f.Type) {
		c.errorf("%s cannot convert %s to %s", sfmt.Expr(f), source, f.Type)
	}
}

func (c *checker) pattern(m *ast.Match) {
	k, ok := m.Pattern.(*ast.Constant)
	if !ok {
		return
	}
	s, ok := k.Value.(string)
	if !ok {
		return
	}
	escape := '\\'
	if m.Escape != "" {
		runes := []rune(m.Escape)
		if len(runes) != 1 {
			c.errorf("LIKE escape %q must be a single character", m.Escape)
			return
		}
		escape = runes[0]
		if danglingEscape(s, escape) {
			c.errorf("LIKE pattern %q ends with the escape character", s)
			return
		}
	}
	if _, err := regexp.Compile("(?s)" + likeexpr.ToRegexp(s, escape, false)); err != nil {
		c.errorf("invalid LIKE pattern %q: %s", s, err)
	}
}

func danglingEscape(s string, escape rune) bool {
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		if r == escape {
			escaped = true
		}
	}
	return escaped
}

func (c *checker) query(q *ast.Query) {
	if q.Where != nil && len(ast.Aggregates(q.Where)) > 0 {
		c.errorf("aggregates are not allowed in WHERE: %s", sfmt.Expr(q.Where))
	}
	for _, e := range q.GroupBy {
		if len(ast.Aggregates(e)) > 0 {
			c.errorf("aggregates are not allowed in GROUP BY: %s", sfmt.Expr(e))
		}
	}
	if q.From != nil {
		for _, fc := range q.From.Clauses {
			c.joinCriteria(fc)
		}
	}
	c.grouping(q)
	c.limit(q.Limit)
}

func (c *checker) joinCriteria(fc ast.FromClause) {
	j, ok := fc.(*ast.JoinPredicate)
	if !ok {
		return
	}
	c.joinCriteria(j.Left)
	c.joinCriteria(j.Right)
	for _, crit := range j.Criteria {
		if len(ast.Aggregates(crit)) > 0 {
			c.errorf("aggregates are not allowed in ON: %s", sfmt.Expr(crit))
		}
	}
}

// grouping reports column references of a grouped query that are neither
// grouping expressions nor inside an aggregate.
func (c *checker) grouping(q *ast.Query) {
	var exprs []ast.Expr
	if q.Select != nil {
		for _, s := range q.Select.Symbols {
			if m, ok := s.(*ast.MultipleElementSymbol); ok {
				for _, e := range m.Elements {
					exprs = append(exprs, e)
				}
				continue
			}
			exprs = append(exprs, s)
		}
	}
	grouped := len(q.GroupBy) > 0
	for _, e := range exprs {
		if len(ast.Aggregates(e)) > 0 {
			grouped = true
		}
	}
	if q.Having != nil {
		grouped = true
		exprs = append(exprs, q.Having)
	}
	if !grouped {
		return
	}
	if q.OrderBy != nil {
		for _, item := range q.OrderBy.Items {
			if item.Position < 0 {
				exprs = append(exprs, item.Expr)
			}
		}
	}
	seen := make(map[string]bool)
	for _, e := range exprs {
		for _, el := range ungrouped(e, q.GroupBy) {
			name := strings.ToLower(el.Name)
			if !seen[name] {
				seen[name] = true
				c.errorf("%s must appear in GROUP BY or be used in an aggregate", el.Name)
			}
		}
	}
}

func ungrouped(e ast.Expr, groupBy []ast.Expr) []*ast.ElementSymbol {
	var out []*ast.ElementSymbol
	ast.Walk(e, func(e ast.Expr) bool {
		if _, ok := e.(*ast.Aggregate); ok {
			return false
		}
		for _, g := range groupBy {
			if ast.Equal(e, g) {
				return false
			}
		}
		if el, ok := e.(*ast.ElementSymbol); ok && !el.External {
			out = append(out, el)
		}
		return true
	})
	return out
}

func (c *checker) limit(l *ast.Limit) {
	if l == nil {
		return
	}
	for _, e := range []ast.Expr{l.Offset, l.Count} {
		if n, ok := constantInt(e); ok && n < 0 {
			c.errorf("LIMIT values must not be negative: %d", n)
		}
	}
}

func constantInt(e ast.Expr) (int64, bool) {
	if f, ok := e.(*ast.Function); ok && f.Implicit && len(f.Args) > 0 {
		e = f.Args[0]
	}
	k, ok := e.(*ast.Constant)
	if !ok {
		return 0, false
	}
	switch v := k.Value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func (c *checker) insert(ins *ast.Insert) {
	if len(ins.Columns) == 0 {
		return
	}
	if ins.Query != nil {
		if projected, ok := ast.ProjectedSymbols(ins.Query); ok && len(projected) != len(ins.Columns) {
			c.errorf("INSERT into %s names %d columns but its query projects %d", ins.Group.Name, len(ins.Columns), len(projected))
		}
		return
	}
	if len(ins.Values) != len(ins.Columns) {
		c.errorf("INSERT into %s names %d columns but supplies %d values", ins.Group.Name, len(ins.Columns), len(ins.Values))
	}
}

func (c *checker) update(u *ast.Update) {
	seen := make(map[string]bool)
	for _, change := range u.Changes {
		key := strings.ToLower(change.Column.Name)
		if change.Column.ID != nil {
			key = strings.ToLower(change.Column.ID.FullName())
		}
		if seen[key] {
			c.errorf("UPDATE of %s sets %s more than once", u.Group.Name, change.Column.Name)
		}
		seen[key] = true
	}
}

func (c *checker) dynamic(d *ast.DynamicCommand) {
	seen := make(map[string]bool)
	for _, u := range d.Using {
		key := strings.ToLower(metadata.ShortName(u.Column.Name))
		if seen[key] {
			c.errorf("USING names %s more than once", u.Column.Name)
		}
		seen[key] = true
	}
}
