package semantic

import (
	"math/big"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
)

// orderBy binds each sort key to a projected column.  A bare name matches
// an output name, an integer literal selects a column by position, and
// anything else is resolved against the FROM clause.  When mustProject is
// set, as for set queries and SELECT DISTINCT, every key must be a
// projected column.  A nil scope means there are no FROM groups.
func (r *Resolver) orderBy(sc *scope, ob *ast.OrderBy, projected []ast.Expr, mustProject bool) error {
	for _, item := range ob.Items {
		if err := r.sortItem(sc, item, projected, mustProject); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) sortItem(sc *scope, item *ast.SortItem, projected []ast.Expr, mustProject bool) error {
	if pos, ok := r.ordinal(item.Expr); ok {
		if pos < 1 || pos > int64(len(projected)) {
			return errorf(InvalidCommand, item, "ORDER BY position %d is not between 1 and %d", pos, len(projected))
		}
		item.Position = int(pos - 1)
		return nil
	}
	if e, ok := item.Expr.(*ast.ElementSymbol); ok && e.ID == nil {
		name := e.Name
		if sc == nil {
			// Set queries have no FROM clause to bind a qualifier to.
			name = metadata.ShortName(name)
		}
		if k, err := matchOutputName(item, name, projected); err != nil || k >= 0 {
			if err == nil {
				e.Type = ast.TypeOf(projected[k])
				item.Position = k
			}
			return err
		}
	}
	if sc == nil {
		return errorf(InvalidCommand, item, "ORDER BY %s must name a column of the select list", describe(item.Expr))
	}
	e, err := r.expr(sc, item.Expr)
	if err != nil {
		return err
	}
	item.Expr = e
	item.Position = -1
	for k, p := range projected {
		if ast.Equal(ast.Underlying(p), e) {
			item.Position = k
			return nil
		}
	}
	if mustProject {
		return errorf(InvalidCommand, item, "ORDER BY %s must appear in the select list when the query uses DISTINCT or a set operation", describe(e))
	}
	return nil
}

// matchOutputName returns the position of the projected column named by
// an unqualified element or -1 when there is none.  A name shared by
// several columns is ambiguous unless they all project the same
// expression.
func matchOutputName(item *ast.SortItem, name string, projected []ast.Expr) (int, error) {
	if strings.Contains(name, ".") {
		// A qualified name matches a column only by the element it projects.
		return -1, nil
	}
	var matches []int
	for k, p := range projected {
		if strings.EqualFold(ast.OutputName(p), name) {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return -1, nil
	}
	first := ast.Underlying(projected[matches[0]])
	for _, k := range matches[1:] {
		if !ast.Equal(first, ast.Underlying(projected[k])) {
			err := errorf(UnresolvedSymbol, item, "ambiguous ORDER BY column %q", name)
			for _, m := range matches {
				err.Candidates = append(err.Candidates, describe(projected[m]))
			}
			return -1, err
		}
	}
	return matches[0], nil
}

// ordinal reports whether a sort key is a column position.  Older catalogs
// also accept a position wrapped in an expression, such as an implicit
// conversion or a named select expression.
func (r *Resolver) ordinal(e ast.Expr) (int64, bool) {
	if pos, ok := integerValue(e); ok {
		return pos, true
	}
	if !r.lattice.Version().IsLegacy() {
		return 0, false
	}
	switch e := e.(type) {
	case *ast.AliasSymbol, *ast.ExpressionSymbol:
		return integerValue(ast.Underlying(e))
	case *ast.Function:
		if e.Implicit && len(e.Args) > 0 {
			return integerValue(e.Args[0])
		}
	}
	return 0, false
}

func integerValue(e ast.Expr) (int64, bool) {
	c, ok := e.(*ast.Constant)
	if !ok || !vdb.IsInteger(c.Type) {
		return 0, false
	}
	switch v := c.Value.(type) {
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case *big.Int:
		if v.IsInt64() {
			return v.Int64(), true
		}
		// Far out of range either way.
		return -1, true
	}
	return 0, false
}
