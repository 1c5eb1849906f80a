package optimizer

import (
	"strings"

	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
)

// groupSet is an insertion ordered set of groups keyed by name.
type groupSet struct {
	groups []*ast.GroupSymbol
	index  map[string]bool
}

func newGroupSet(groups ...*ast.GroupSymbol) *groupSet {
	s := &groupSet{index: make(map[string]bool)}
	for _, g := range groups {
		s.add(g)
	}
	return s
}

func groupKey(g *ast.GroupSymbol) string {
	return strings.ToLower(g.Name)
}

func (s *groupSet) add(g *ast.GroupSymbol) {
	if !s.index[groupKey(g)] {
		s.index[groupKey(g)] = true
		s.groups = append(s.groups, g)
	}
}

func (s *groupSet) has(g *ast.GroupSymbol) bool {
	return g != nil && s.index[groupKey(g)]
}

func (s *groupSet) empty() bool {
	return len(s.groups) == 0
}

func (s *groupSet) names() []string {
	out := make([]string, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g.Name)
	}
	return out
}

func (o *Optimizer) findKeyPreserved(fc ast.FromClause) (*groupSet, error) {
	out := newGroupSet()
	switch fc := fc.(type) {
	case *ast.UnaryFromClause:
		ok, err := o.hasUniqueKey(fc.Group)
		if err != nil {
			return nil, err
		}
		if ok {
			out.add(fc.Group)
		}
	case *ast.JoinPredicate:
		if fc.Kind == ast.CrossJoin || fc.Kind == ast.FullOuterJoin {
			return out, nil
		}
		left, err := o.findKeyPreserved(fc.Left)
		if err != nil {
			return nil, err
		}
		right, err := o.findKeyPreserved(fc.Right)
		if err != nil {
			return nil, err
		}
		if left.empty() && right.empty() {
			return out, nil
		}
		var criteria []ast.Criteria
		for _, c := range fc.Criteria {
			criteria = append(criteria, ast.Conjuncts(c)...)
		}
		eq := equalities(criteria, newGroupSet(ast.Groups(fc.Left)...), newGroupSet(ast.Groups(fc.Right)...))
		if fc.Kind == ast.InnerJoin || fc.Kind == ast.LeftOuterJoin {
			if err := o.preserve(out, left, right, eq); err != nil {
				return nil, err
			}
		}
		if fc.Kind == ast.InnerJoin || fc.Kind == ast.RightOuterJoin {
			if err := o.preserve(out, right, left, eq); err != nil {
				return nil, err
			}
		}
	}
	// A derived table has no catalog keys.
	return out, nil
}

// commaJoin handles a FROM clause of several comma separated clauses.
// Every group must have a unique key for any of them to be preserved.
func (o *Optimizer) commaJoin(clauses []ast.FromClause, where ast.Criteria) (*groupSet, error) {
	all := newGroupSet()
	for _, fc := range clauses {
		for _, g := range ast.Groups(fc) {
			all.add(g)
		}
	}
	out := newGroupSet()
	for _, g := range all.groups {
		ok, err := o.hasUniqueKey(g)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
	}
	eq := equalities(ast.Conjuncts(where), all, all)
	if err := o.preserve(out, all, all, eq); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Optimizer) hasUniqueKey(g *ast.GroupSymbol) (bool, error) {
	if g.ID == nil {
		return false, unresolved(g)
	}
	if temp, ok := g.ID.(*metadata.TempID); ok {
		return len(temp.PrimaryKey) > 0, nil
	}
	keys, err := o.md.UniqueKeys(g.ID)
	if err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}

// preserve adds to out each group of side that has a foreign key whose
// columns are exactly the columns equated with a unique key of a group in
// other.
func (o *Optimizer) preserve(out, side, other *groupSet, eq equalityIndex) error {
	for _, g := range side.groups {
		if _, ok := g.ID.(*metadata.TempID); ok {
			continue
		}
		fks, err := o.md.ForeignKeys(g.ID)
		if err != nil {
			return err
		}
		for _, ref := range other.groups {
			cols := eq[[2]string{groupKey(g), groupKey(ref)}]
			if cols != nil && covered(fks, cols) {
				out.add(g)
				break
			}
		}
	}
	return nil
}

func covered(fks []*metadata.ForeignKey, cols *columnPairs) bool {
	for _, fk := range fks {
		if fk.Reference == nil {
			continue
		}
		if sameColumns(fk.Columns, cols.own) && sameColumns(fk.Reference.Columns, cols.other) {
			return true
		}
	}
	return false
}

func sameColumns(ids []metadata.ID, set map[string]bool) bool {
	if len(ids) != len(set) {
		return false
	}
	for _, id := range ids {
		if !set[strings.ToLower(id.FullName())] {
			return false
		}
	}
	return true
}

// columnPairs holds the columns of two groups equated by a join.
type columnPairs struct {
	own   map[string]bool
	other map[string]bool
}

// equalityIndex maps an ordered pair of group keys to the columns the
// join equates between them.  Both orders are recorded.
type equalityIndex map[[2]string]*columnPairs

func (x equalityIndex) add(l, r *ast.ElementSymbol) {
	k := [2]string{groupKey(l.Group), groupKey(r.Group)}
	p := x[k]
	if p == nil {
		p = &columnPairs{own: make(map[string]bool), other: make(map[string]bool)}
		x[k] = p
	}
	p.own[strings.ToLower(l.ID.FullName())] = true
	p.other[strings.ToLower(r.ID.FullName())] = true
}

// equalities indexes the equality predicates between simple column
// references of a group in left and a group in right.
func equalities(criteria []ast.Criteria, left, right *groupSet) equalityIndex {
	x := make(equalityIndex)
	for _, c := range criteria {
		cmp, ok := c.(*ast.Compare)
		if !ok || cmp.Op != "=" {
			continue
		}
		l, lok := cmp.LHS.(*ast.ElementSymbol)
		r, rok := cmp.RHS.(*ast.ElementSymbol)
		if !lok || !rok || l.ID == nil || r.ID == nil || l.Group == nil || r.Group == nil {
			continue
		}
		if groupKey(l.Group) == groupKey(r.Group) {
			continue
		}
		if !(left.has(l.Group) && right.has(r.Group)) && !(left.has(r.Group) && right.has(l.Group)) {
			continue
		}
		x.add(l, r)
		x.add(r, l)
	}
	return x
}
