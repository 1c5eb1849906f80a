package semantic

import (
	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/function"
	"go.uber.org/zap"
)

// expr resolves e bottom up and returns it, or the expression that
// replaces it when a constant is folded.
func (r *Resolver) expr(sc *scope, e ast.Expr) (ast.Expr, error) {
	switch e := e.(type) {
	case nil:
		return nil, nil
	case *ast.Constant:
		if e.Type == "" {
			e.Type = coerce.TypeOf(e.Value)
		}
		return e, nil
	case *ast.ElementSymbol:
		return e, r.bindElement(sc, e)
	case *ast.AliasSymbol:
		inner, err := r.expr(sc, e.Expr)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil
	case *ast.ExpressionSymbol:
		inner, err := r.expr(sc, e.Expr)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil
	case *ast.MultipleElementSymbol:
		return nil, errorf(InvalidCommand, e, "%s is only allowed in a select list", starName(e))
	case *ast.Function:
		for k, arg := range e.Args {
			arg, err := r.expr(sc, arg)
			if err != nil {
				return nil, err
			}
			e.Args[k] = arg
		}
		return r.function(e)
	case *ast.Reference:
		return e, nil
	case *ast.Aggregate:
		return e, r.aggregate(sc, e)
	case *ast.Case:
		return e, r.caseExpr(sc, e)
	case *ast.SearchedCase:
		return e, r.searchedCase(sc, e)
	case *ast.ScalarSubquery:
		return e, r.scalarSubquery(sc, e)
	case *ast.Array:
		return e, r.array(sc, e)
	case ast.Criteria:
		return e, r.criteria(sc, e)
	}
	return nil, errorf(InvalidCommand, e, "unknown expression type %T", e)
}

func starName(m *ast.MultipleElementSymbol) string {
	if m.Group == "" {
		return "*"
	}
	return m.Group + ".*"
}

// convert returns e as an expression of type target.  Null constants and
// untyped references take the target type and other constants are folded.
// Everything else is wrapped in an implicit conversion.
func (r *Resolver) convert(e ast.Expr, target string) (ast.Expr, error) {
	source := ast.TypeOf(e)
	if source == target || target == "" {
		return e, nil
	}
	switch e := e.(type) {
	case *ast.Constant:
		if source == vdb.Null {
			e.Type = target
			return e, nil
		}
		return r.fold(e, target)
	case *ast.Reference:
		if source == "" {
			e.Type = target
			return e, nil
		}
	}
	if source == "" {
		return nil, errorf(TypeConversion, e, "cannot determine the type of %s", describe(e))
	}
	if !r.lattice.CanImplicitlyConvert(source, target) {
		return nil, errorf(TypeConversion, e, "cannot implicitly convert %s of type %s to %s", describe(e), source, target)
	}
	return r.wrap(e, source, target), nil
}

// fold converts a constant at resolution time.
func (r *Resolver) fold(c *ast.Constant, target string) (ast.Expr, error) {
	if !r.lattice.CanExplicitlyConvert(c.Type, target) {
		return nil, errorf(TypeConversion, c, "cannot convert %s value %s to %s", c.Type, describe(c), target)
	}
	v, err := coerce.Convert(c.Value, c.Type, target)
	if err != nil {
		e := errorf(TypeConversion, c, "%s", err)
		e.err = err
		return nil, e
	}
	return &ast.Constant{Value: v, Type: target, Loc: c.Loc}, nil
}

func (r *Resolver) wrap(e ast.Expr, source, target string) ast.Expr {
	r.logger.Debug("implicit conversion", zap.String("from", source), zap.String("to", target))
	return &ast.Function{
		Name:     function.Convert,
		Args:     []ast.Expr{e, &ast.Constant{Value: target, Type: vdb.String}},
		Method:   r.md.Functions().FindTypedConversion(source, target),
		Type:     target,
		Implicit: true,
	}
}

// foldable reports whether e is a constant that converts to target.
func (r *Resolver) foldable(e ast.Expr, target string) bool {
	c, ok := e.(*ast.Constant)
	if !ok || c.Type == vdb.Null || c.Type == target || !r.lattice.CanExplicitlyConvert(c.Type, target) {
		return false
	}
	_, err := coerce.Convert(c.Value, c.Type, target)
	return err == nil
}

func isUnknown(typ string) bool {
	return typ == "" || typ == vdb.Null
}

// common converts every expression in exprs to their common type, which
// it returns.
func (r *Resolver) common(n ast.Node, exprs []ast.Expr) (string, error) {
	types := make([]string, 0, len(exprs))
	for _, e := range exprs {
		types = append(types, ast.TypeOf(e))
	}
	typ, ok := r.lattice.CommonType(types)
	if !ok {
		return "", errorf(TypeConversion, n, "no common type for %s", joinTypes(types))
	}
	if typ == vdb.Null {
		return typ, nil
	}
	for k, e := range exprs {
		c, err := r.convert(e, typ)
		if err != nil {
			return "", err
		}
		exprs[k] = c
	}
	return typ, nil
}

func joinTypes(types []string) string {
	s := ""
	for k, t := range types {
		if k > 0 {
			s += ", "
		}
		if t == "" {
			t = "unknown"
		}
		s += t
	}
	return s
}

func (r *Resolver) aggregate(sc *scope, a *ast.Aggregate) error {
	if a.Type != "" {
		return nil
	}
	if a.Arg != nil {
		arg, err := r.expr(sc, a.Arg)
		if err != nil {
			return err
		}
		a.Arg = arg
	}
	typ := ast.TypeOf(a.Arg)
	switch a.Name {
	case "COUNT":
		a.Type = vdb.Integer
		return nil
	case "MIN", "MAX":
		if isUnknown(typ) {
			typ = vdb.String
			arg, err := r.convert(a.Arg, typ)
			if err != nil {
				return err
			}
			a.Arg = arg
		}
		a.Type = typ
		return nil
	case "SUM", "AVG":
		if isUnknown(typ) {
			typ = vdb.Integer
			arg, err := r.convert(a.Arg, typ)
			if err != nil {
				return err
			}
			a.Arg = arg
		}
		if !vdb.IsNumber(typ) {
			return errorf(TypeConversion, a, "%s requires a numeric argument but found %s", a.Name, typ)
		}
		a.Type = aggregateType(a.Name, typ)
		return nil
	}
	return errorf(UnresolvedSymbol, a, "unknown aggregate function %s", a.Name)
}

func aggregateType(name, arg string) string {
	switch {
	case vdb.IsFloat(arg):
		return vdb.Double
	case arg == vdb.BigDecimal:
		return vdb.BigDecimal
	case name == "AVG":
		return vdb.BigDecimal
	case arg == vdb.Long || arg == vdb.BigInteger:
		return vdb.BigInteger
	}
	return vdb.Long
}

func (r *Resolver) caseExpr(sc *scope, c *ast.Case) error {
	if c.Type != "" {
		return nil
	}
	var err error
	if c.Expr, err = r.expr(sc, c.Expr); err != nil {
		return err
	}
	operands := []ast.Expr{c.Expr}
	results := make([]ast.Expr, 0, len(c.Whens)+1)
	for _, w := range c.Whens {
		when, err := r.expr(sc, w.When)
		if err != nil {
			return err
		}
		then, err := r.expr(sc, w.Then)
		if err != nil {
			return err
		}
		operands = append(operands, when)
		results = append(results, then)
	}
	if _, err := r.common(c, operands); err != nil {
		return err
	}
	c.Expr = operands[0]
	if c.Else, err = r.expr(sc, c.Else); err != nil {
		return err
	}
	if c.Else != nil {
		results = append(results, c.Else)
	}
	typ, err := r.common(c, results)
	if err != nil {
		return err
	}
	for k := range c.Whens {
		c.Whens[k].When = operands[k+1]
		c.Whens[k].Then = results[k]
	}
	if c.Else != nil {
		c.Else = results[len(results)-1]
	}
	c.Type = typ
	return nil
}

func (r *Resolver) searchedCase(sc *scope, c *ast.SearchedCase) error {
	if c.Type != "" {
		return nil
	}
	results := make([]ast.Expr, 0, len(c.Whens)+1)
	for _, w := range c.Whens {
		if err := r.criteria(sc, w.When); err != nil {
			return err
		}
		then, err := r.expr(sc, w.Then)
		if err != nil {
			return err
		}
		results = append(results, then)
	}
	var err error
	if c.Else, err = r.expr(sc, c.Else); err != nil {
		return err
	}
	if c.Else != nil {
		results = append(results, c.Else)
	}
	typ, err := r.common(c, results)
	if err != nil {
		return err
	}
	for k := range c.Whens {
		c.Whens[k].Then = results[k]
	}
	if c.Else != nil {
		c.Else = results[len(results)-1]
	}
	c.Type = typ
	return nil
}

func (r *Resolver) scalarSubquery(sc *scope, s *ast.ScalarSubquery) error {
	if s.Type != "" {
		return nil
	}
	sym, err := r.subquery(sc, s, s.Command)
	if err != nil {
		return err
	}
	s.Type = ast.TypeOf(sym)
	return nil
}

// subquery resolves a nested command that must project exactly one column
// and returns that column.
func (r *Resolver) subquery(sc *scope, n ast.Node, cmd ast.Command) (ast.Expr, error) {
	if err := r.command(sc, cmd); err != nil {
		return nil, err
	}
	symbols, ok := ast.ProjectedSymbols(cmd)
	if !ok || len(symbols) != 1 {
		return nil, errorf(InvalidCommand, n, "subquery must project exactly one column but projects %d", len(symbols))
	}
	return symbols[0], nil
}

func (r *Resolver) array(sc *scope, a *ast.Array) error {
	if a.Type != "" {
		return nil
	}
	for k, e := range a.Elems {
		e, err := r.expr(sc, e)
		if err != nil {
			return err
		}
		a.Elems[k] = e
	}
	typ, err := r.common(a, a.Elems)
	if err != nil {
		return err
	}
	if typ == vdb.Null {
		typ = vdb.Object
	}
	a.Type = vdb.ArrayOf(typ)
	return nil
}

// defaultNullType gives projected null literals the string type, also
// inside CASE expressions and scalar subqueries that are still untyped.
func (r *Resolver) defaultNullType(e ast.Expr) ast.Expr {
	switch s := e.(type) {
	case *ast.AliasSymbol:
		s.Expr = r.defaultNullType(s.Expr)
		return s
	case *ast.ExpressionSymbol:
		s.Expr = r.defaultNullType(s.Expr)
		return s
	}
	if !isUnknown(ast.TypeOf(e)) {
		return e
	}
	switch e := e.(type) {
	case *ast.Constant:
		e.Type = vdb.String
	case *ast.Reference:
		e.Type = vdb.String
	case *ast.Case:
		for k := range e.Whens {
			e.Whens[k].Then = r.defaultNullType(e.Whens[k].Then)
		}
		if e.Else != nil {
			e.Else = r.defaultNullType(e.Else)
		}
		e.Type = vdb.String
	case *ast.SearchedCase:
		for k := range e.Whens {
			e.Whens[k].Then = r.defaultNullType(e.Whens[k].Then)
		}
		if e.Else != nil {
			e.Else = r.defaultNullType(e.Else)
		}
		e.Type = vdb.String
	case *ast.ScalarSubquery:
		if q, ok := e.Command.(*ast.Query); ok && q.Select != nil && len(q.Select.Symbols) == 1 {
			q.Select.Symbols[0] = r.defaultNullType(q.Select.Symbols[0])
		}
		e.Type = vdb.String
	}
	return e
}
