package semantic

import (
	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
)

// operands resolves the two sides of a comparison.  A call is resolved
// after the other side so that side's type can guide its overload.
func (r *Resolver) operands(sc *scope, lhs, rhs *ast.Expr) error {
	first, second := lhs, rhs
	if f, ok := (*lhs).(*ast.Function); ok && f.Method == nil {
		if _, ok := (*rhs).(*ast.Function); !ok {
			first, second = rhs, lhs
		}
	}
	var err error
	if *first, err = r.expr(sc, *first); err != nil {
		return err
	}
	*second, err = r.exprFor(sc, *second, ast.TypeOf(*first))
	return err
}

func (r *Resolver) criteria(sc *scope, c ast.Criteria) error {
	var err error
	switch c := c.(type) {
	case nil:
		return nil
	case *ast.Compound:
		for _, sub := range c.Criteria {
			if err := r.criteria(sc, sub); err != nil {
				return err
			}
		}
		return nil
	case *ast.Not:
		return r.criteria(sc, c.Criteria)
	case *ast.Compare:
		if err := r.operands(sc, &c.LHS, &c.RHS); err != nil {
			return err
		}
		return r.reconcile(c, &c.LHS, &c.RHS)
	case *ast.IsNull:
		c.Expr, err = r.expr(sc, c.Expr)
		return err
	case *ast.Match:
		if c.Expr, err = r.expr(sc, c.Expr); err != nil {
			return err
		}
		if c.Pattern, err = r.expr(sc, c.Pattern); err != nil {
			return err
		}
		if c.Expr, err = r.stringOperand(c.Expr); err != nil {
			return err
		}
		c.Pattern, err = r.stringOperand(c.Pattern)
		return err
	case *ast.Set:
		if c.Expr, err = r.expr(sc, c.Expr); err != nil {
			return err
		}
		for k := range c.Values {
			if c.Values[k], err = r.expr(sc, c.Values[k]); err != nil {
				return err
			}
			if err := r.reconcile(c, &c.Expr, &c.Values[k]); err != nil {
				return err
			}
		}
		return nil
	case *ast.Between:
		if c.Expr, err = r.expr(sc, c.Expr); err != nil {
			return err
		}
		if c.Lower, err = r.expr(sc, c.Lower); err != nil {
			return err
		}
		if c.Upper, err = r.expr(sc, c.Upper); err != nil {
			return err
		}
		if err := r.reconcile(c, &c.Expr, &c.Lower); err != nil {
			return err
		}
		return r.reconcile(c, &c.Expr, &c.Upper)
	case *ast.Exists:
		return r.command(sc, c.Command)
	case *ast.SubquerySet:
		if c.Expr, err = r.expr(sc, c.Expr); err != nil {
			return err
		}
		c.Expr, err = r.subqueryOperand(sc, c, c.Expr, c.Command)
		return err
	case *ast.SubqueryCompare:
		if c.LHS, err = r.expr(sc, c.LHS); err != nil {
			return err
		}
		c.LHS, err = r.subqueryOperand(sc, c, c.LHS, c.Command)
		return err
	}
	return errorf(InvalidCommand, c, "unknown criteria type %T", c)
}

// reconcile brings the two sides of a comparison to one type.  A constant
// side is folded to the other side's type when possible.  Otherwise one
// side is converted implicitly to the other, or both to their common type.
func (r *Resolver) reconcile(n ast.Node, lhs, rhs *ast.Expr) error {
	lt, rt := ast.TypeOf(*lhs), ast.TypeOf(*rhs)
	if lt == rt {
		return nil
	}
	var err error
	switch {
	case isUnknown(lt) && isUnknown(rt):
		return nil
	case isUnknown(lt):
		*lhs, err = r.convert(*lhs, rt)
	case isUnknown(rt):
		*rhs, err = r.convert(*rhs, lt)
	case r.foldable(*rhs, lt):
		*rhs, err = r.convert(*rhs, lt)
	case r.foldable(*lhs, rt):
		*lhs, err = r.convert(*lhs, rt)
	case r.lattice.CanImplicitlyConvert(lt, rt):
		*lhs, err = r.convert(*lhs, rt)
	case r.lattice.CanImplicitlyConvert(rt, lt):
		*rhs, err = r.convert(*rhs, lt)
	default:
		typ, ok := r.lattice.CommonType([]string{lt, rt})
		if !ok {
			return errorf(TypeConversion, n, "cannot compare %s of type %s with %s of type %s", describe(*lhs), lt, describe(*rhs), rt)
		}
		if *lhs, err = r.convert(*lhs, typ); err != nil {
			return err
		}
		*rhs, err = r.convert(*rhs, typ)
	}
	return err
}

func (r *Resolver) stringOperand(e ast.Expr) (ast.Expr, error) {
	switch ast.TypeOf(e) {
	case vdb.String, vdb.Clob:
		return e, nil
	}
	return r.convert(e, vdb.String)
}

// subqueryOperand resolves the subquery of an IN or quantified comparison
// and checks that its column can be compared with e.
func (r *Resolver) subqueryOperand(sc *scope, n ast.Node, e ast.Expr, cmd ast.Command) (ast.Expr, error) {
	sym, err := r.subquery(sc, n, cmd)
	if err != nil {
		return nil, err
	}
	st, et := ast.TypeOf(sym), ast.TypeOf(e)
	switch {
	case st == et || isUnknown(st):
		return e, nil
	case isUnknown(et):
		return r.convert(e, st)
	case r.lattice.CanImplicitlyConvert(st, et):
		return e, nil
	case r.lattice.CanImplicitlyConvert(et, st):
		return r.convert(e, st)
	}
	return nil, errorf(TypeConversion, n, "subquery column of type %s cannot be compared with %s of type %s", st, describe(e), et)
}
