package semantic

import (
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/sfmt"
	"github.com/brimdata/vdb/metadata"
)

func (r *Resolver) query(outer *scope, q *ast.Query) error {
	sc := newScope(outer)
	if q.From != nil {
		for _, f := range q.From.Clauses {
			if err := r.fromClause(sc, f); err != nil {
				return err
			}
		}
	}
	if q.Select != nil {
		if err := r.selectClause(sc, q.Select); err != nil {
			return err
		}
	}
	if err := r.criteria(sc, q.Where); err != nil {
		return err
	}
	for k, e := range q.GroupBy {
		e, err := r.expr(sc, e)
		if err != nil {
			return err
		}
		q.GroupBy[k] = e
	}
	if err := r.criteria(sc, q.Having); err != nil {
		return err
	}
	if q.OrderBy != nil {
		projected, _ := ast.ProjectedSymbols(q)
		distinct := q.Select != nil && q.Select.Distinct
		if err := r.orderBy(sc, q.OrderBy, projected, distinct); err != nil {
			return err
		}
	}
	if err := r.limit(q.Limit); err != nil {
		return err
	}
	if q.Into != nil {
		return r.into(q, q.Into)
	}
	return nil
}

// fromClause resolves f and adds the groups it defines to sc.
func (r *Resolver) fromClause(sc *scope, f ast.FromClause) error {
	switch f := f.(type) {
	case *ast.UnaryFromClause:
		if err := r.ResolveGroup(f.Group); err != nil {
			return err
		}
		return r.addGroup(sc, f.Group)
	case *ast.JoinPredicate:
		before := len(sc.groups)
		if err := r.fromClause(sc, f.Left); err != nil {
			return err
		}
		if err := r.fromClause(sc, f.Right); err != nil {
			return err
		}
		// ON criteria see only the groups of this join.
		js := newScope(sc.parent)
		js.groups = sc.groups[before:]
		for _, c := range f.Criteria {
			if err := r.criteria(js, c); err != nil {
				return err
			}
		}
		return nil
	case *ast.SubqueryFromClause:
		outer := sc.parent
		if f.Lateral {
			outer = sc
		}
		if f.Group == nil {
			if err := r.command(outer, f.Command); err != nil {
				return err
			}
			g, err := r.derivedGroup(f)
			if err != nil {
				return err
			}
			f.Group = g
		}
		return r.addGroup(sc, f.Group)
	}
	return errorf(InvalidCommand, f, "unknown from clause type %T", f)
}

func (r *Resolver) addGroup(sc *scope, g *ast.GroupSymbol) error {
	for _, other := range sc.groups {
		if strings.EqualFold(other.Name, g.Name) {
			return errorf(InvalidCommand, g, "duplicate group %q in FROM clause", g.Name)
		}
	}
	sc.add(g)
	return nil
}

// derivedGroup creates the temporary group of a subquery in FROM.  The
// group is known only to the scope of the enclosing query so its alias
// never hides a catalog group of the same name.
func (r *Resolver) derivedGroup(f *ast.SubqueryFromClause) (*ast.GroupSymbol, error) {
	symbols, ok := ast.ProjectedSymbols(f.Command)
	if !ok {
		return nil, errorf(InvalidCommand, f, "subquery %q does not project any columns", f.Name)
	}
	columns, err := columnsOf(f, symbols)
	if err != nil {
		return nil, err
	}
	id := metadata.NewGroup(f.Name, columns, false)
	id.Virtual = true
	id.Definition = sfmt.Command(f.Command)
	return &ast.GroupSymbol{Name: f.Name, ID: id, IsTempTable: true, Loc: f.Loc}, nil
}

// columnsOf returns the output columns of projected symbols.  Untyped
// columns become strings.
func columnsOf(n ast.Node, symbols []ast.Expr) ([]metadata.Column, error) {
	seen := make(map[string]bool)
	var columns []metadata.Column
	for _, s := range symbols {
		name := ast.OutputName(s)
		key := strings.ToLower(name)
		if seen[key] {
			return nil, errorf(InvalidCommand, n, "duplicate column name %q", name)
		}
		seen[key] = true
		typ := ast.TypeOf(s)
		if isUnknown(typ) {
			typ = vdb.String
		}
		columns = append(columns, metadata.Column{Name: name, Type: typ})
	}
	return columns, nil
}

func (r *Resolver) selectClause(sc *scope, sel *ast.Select) error {
	for k, sym := range sel.Symbols {
		if m, ok := sym.(*ast.MultipleElementSymbol); ok {
			if err := r.star(sc, m); err != nil {
				return err
			}
			continue
		}
		sym, err := r.expr(sc, sym)
		if err != nil {
			return err
		}
		if !r.opts.KeepNullTypes {
			sym = r.defaultNullType(sym)
		}
		sel.Symbols[k] = sym
	}
	return nil
}

// star expands "*" over every group of the FROM clause, or "g.*" over g.
func (r *Resolver) star(sc *scope, m *ast.MultipleElementSymbol) error {
	if m.Elements != nil {
		return nil
	}
	var groups []*ast.GroupSymbol
	for _, g := range sc.groups {
		if m.Group == "" || g.Matches(m.Group) {
			groups = append(groups, g)
		}
	}
	if m.Group != "" && len(groups) == 0 {
		return errorf(UnresolvedSymbol, m, "group %q not found in FROM clause", m.Group)
	}
	if m.Group != "" && len(groups) > 1 {
		groups = groups[:1]
	}
	elements := []*ast.ElementSymbol{}
	for _, g := range groups {
		symbols, err := r.expand(g)
		if err != nil {
			return err
		}
		elements = append(elements, symbols...)
	}
	m.Elements = elements
	return nil
}

func (r *Resolver) limit(l *ast.Limit) error {
	if l == nil {
		return nil
	}
	var err error
	if l.Offset != nil {
		if l.Offset, err = r.limitValue(l.Offset); err != nil {
			return err
		}
	}
	l.Count, err = r.limitValue(l.Count)
	return err
}

func (r *Resolver) limitValue(e ast.Expr) (ast.Expr, error) {
	e, err := r.expr(nil, e)
	if err != nil {
		return nil, err
	}
	return r.convert(e, vdb.Integer)
}

// into resolves the target of SELECT INTO.  An unknown temporary table is
// created with the query's columns.
func (r *Resolver) into(cmd ast.Command, g *ast.GroupSymbol) error {
	symbols, ok := ast.ProjectedSymbols(cmd)
	if !ok {
		return errorf(InvalidCommand, g, "INTO requires a query that projects columns")
	}
	if err := r.ResolveGroup(g); err != nil {
		if !IsUnresolved(err) || !isTempName(g.NonCorrelationName()) {
			return err
		}
		columns, err := columnsOf(g, symbols)
		if err != nil {
			return err
		}
		r.root.AddGroup(g.NonCorrelationName(), columns, true)
		return r.ResolveGroup(g)
	}
	info, err := r.GroupInfo(g)
	if err != nil {
		return err
	}
	if len(info.Symbols) != len(symbols) {
		return errorf(InvalidCommand, g, "INTO %s expects %d columns but the query projects %d", g.Name, len(info.Symbols), len(symbols))
	}
	for k, t := range info.Symbols {
		if err := r.convertProjection(cmd, k, t.Type); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) setQuery(outer *scope, s *ast.SetQuery) error {
	// Null columns of one branch take their type from the other.
	keep := r.opts.KeepNullTypes
	r.opts.KeepNullTypes = true
	err := r.command(outer, s.Left)
	if err == nil {
		err = r.command(outer, s.Right)
	}
	r.opts.KeepNullTypes = keep
	if err != nil {
		return err
	}
	left, lok := ast.ProjectedSymbols(s.Left)
	right, rok := ast.ProjectedSymbols(s.Right)
	if !lok || !rok {
		return errorf(InvalidCommand, s, "%s branches must project columns", s.Op)
	}
	if len(left) != len(right) {
		return errorf(InvalidCommand, s, "%s branches project %d and %d columns", s.Op, len(left), len(right))
	}
	for k := range left {
		lt, rt := ast.TypeOf(left[k]), ast.TypeOf(right[k])
		typ, ok := r.lattice.CommonType([]string{lt, rt})
		if !ok {
			return errorf(TypeConversion, s, "%s column %d has incompatible types %s and %s", s.Op, k+1, lt, rt)
		}
		if typ == vdb.Null {
			continue
		}
		if err := r.convertProjection(s.Left, k, typ); err != nil {
			return err
		}
		if err := r.convertProjection(s.Right, k, typ); err != nil {
			return err
		}
	}
	if !keep {
		r.defaultProjection(s)
	}
	if s.OrderBy != nil {
		projected, _ := ast.ProjectedSymbols(s)
		if err := r.orderBy(nil, s.OrderBy, projected, true); err != nil {
			return err
		}
	}
	return r.limit(s.Limit)
}

// convertProjection converts the k'th projected column of cmd to typ,
// keeping its output name.
func (r *Resolver) convertProjection(cmd ast.Command, k int, typ string) error {
	symbols, _ := ast.ProjectedSymbols(cmd)
	if k >= len(symbols) || ast.TypeOf(symbols[k]) == typ {
		return nil
	}
	switch cmd := cmd.(type) {
	case *ast.SetQuery:
		if err := r.convertProjection(cmd.Left, k, typ); err != nil {
			return err
		}
		return r.convertProjection(cmd.Right, k, typ)
	case *ast.Query:
		flattenSelect(cmd.Select)
		sym := cmd.Select.Symbols[k]
		converted, err := r.convert(ast.Underlying(sym), typ)
		if err != nil {
			return err
		}
		switch sym := sym.(type) {
		case *ast.AliasSymbol:
			sym.Expr = converted
		case *ast.ExpressionSymbol:
			sym.Expr = converted
		default:
			cmd.Select.Symbols[k] = &ast.AliasSymbol{
				Name: ast.OutputName(sym),
				Expr: converted,
				Loc:  ast.NewLoc(sym.Pos(), sym.End()),
			}
		}
		return nil
	}
	if r.lattice.CanImplicitlyConvert(ast.TypeOf(symbols[k]), typ) {
		return nil
	}
	return errorf(TypeConversion, cmd, "column %d of type %s cannot be converted to %s", k+1, ast.TypeOf(symbols[k]), typ)
}

// flattenSelect replaces multiple element symbols by their expansion.
func flattenSelect(sel *ast.Select) {
	var symbols []ast.Expr
	for _, s := range sel.Symbols {
		if m, ok := s.(*ast.MultipleElementSymbol); ok {
			for _, e := range m.Elements {
				symbols = append(symbols, e)
			}
			continue
		}
		symbols = append(symbols, s)
	}
	sel.Symbols = symbols
}

func (r *Resolver) defaultProjection(cmd ast.Command) {
	switch cmd := cmd.(type) {
	case *ast.SetQuery:
		r.defaultProjection(cmd.Left)
		r.defaultProjection(cmd.Right)
	case *ast.Query:
		if cmd.Select == nil {
			return
		}
		for k, sym := range cmd.Select.Symbols {
			cmd.Select.Symbols[k] = r.defaultNullType(sym)
		}
	}
}
