package ast

import (
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
)

// Walk calls visit for e and then, if visit returns true, for each child
// expression of e.  Walk does not descend into subquery commands.
func Walk(e Expr, visit func(Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	switch e := e.(type) {
	case *AliasSymbol:
		Walk(e.Expr, visit)
	case *ExpressionSymbol:
		Walk(e.Expr, visit)
	case *Function:
		for _, a := range e.Args {
			Walk(a, visit)
		}
	case *Aggregate:
		Walk(e.Arg, visit)
	case *Case:
		Walk(e.Expr, visit)
		for _, w := range e.Whens {
			Walk(w.When, visit)
			Walk(w.Then, visit)
		}
		Walk(e.Else, visit)
	case *SearchedCase:
		for _, w := range e.Whens {
			Walk(w.When, visit)
			Walk(w.Then, visit)
		}
		Walk(e.Else, visit)
	case *Array:
		for _, elem := range e.Elems {
			Walk(elem, visit)
		}
	case *Compare:
		Walk(e.LHS, visit)
		Walk(e.RHS, visit)
	case *Compound:
		for _, c := range e.Criteria {
			Walk(c, visit)
		}
	case *Not:
		Walk(e.Criteria, visit)
	case *IsNull:
		Walk(e.Expr, visit)
	case *Match:
		Walk(e.Expr, visit)
		Walk(e.Pattern, visit)
	case *Set:
		Walk(e.Expr, visit)
		for _, v := range e.Values {
			Walk(v, visit)
		}
	case *SubquerySet:
		Walk(e.Expr, visit)
	case *SubqueryCompare:
		Walk(e.LHS, visit)
	case *Between:
		Walk(e.Expr, visit)
		Walk(e.Lower, visit)
		Walk(e.Upper, visit)
	}
}

// Subqueries returns the commands nested directly in e.
func Subqueries(e Expr) []Command {
	var out []Command
	Walk(e, func(e Expr) bool {
		switch e := e.(type) {
		case *ScalarSubquery:
			out = append(out, e.Command)
		case *SubquerySet:
			out = append(out, e.Command)
		case *Exists:
			out = append(out, e.Command)
		case *SubqueryCompare:
			out = append(out, e.Command)
		}
		return true
	})
	return out
}

// Aggregates returns the aggregates in e outside of subqueries.
func Aggregates(e Expr) []*Aggregate {
	var out []*Aggregate
	Walk(e, func(e Expr) bool {
		if a, ok := e.(*Aggregate); ok {
			out = append(out, a)
			return false
		}
		return true
	})
	return out
}

// Elements returns the element symbols in e outside of subqueries and
// aggregate arguments when skipAggs is set.
func Elements(e Expr, skipAggs bool) []*ElementSymbol {
	var out []*ElementSymbol
	Walk(e, func(e Expr) bool {
		switch e := e.(type) {
		case *ElementSymbol:
			out = append(out, e)
		case *Aggregate:
			return !skipAggs
		}
		return true
	})
	return out
}

// TypeOf returns the resolved type of e or the empty string when e is
// unresolved.
func TypeOf(e Expr) string {
	switch e := e.(type) {
	case *Constant:
		return e.Type
	case *ElementSymbol:
		return e.Type
	case *AliasSymbol:
		return TypeOf(e.Expr)
	case *ExpressionSymbol:
		return TypeOf(e.Expr)
	case *Function:
		return e.Type
	case *Reference:
		return e.Type
	case *Aggregate:
		return e.Type
	case *Case:
		return e.Type
	case *SearchedCase:
		return e.Type
	case *ScalarSubquery:
		return e.Type
	case *Array:
		return e.Type
	case Criteria:
		return vdb.Boolean
	}
	return ""
}

// Underlying strips alias and expression symbols from a projected symbol.
func Underlying(e Expr) Expr {
	for {
		switch s := e.(type) {
		case *AliasSymbol:
			e = s.Expr
		case *ExpressionSymbol:
			e = s.Expr
		default:
			return e
		}
	}
}

// OutputName is the name a projected symbol gives its column.
func OutputName(e Expr) string {
	switch e := e.(type) {
	case *AliasSymbol:
		return e.Name
	case *ExpressionSymbol:
		return e.Name
	case *ElementSymbol:
		return shortName(e.Name)
	}
	return ""
}

func shortName(name string) string {
	if k := strings.LastIndexByte(name, '.'); k >= 0 {
		return name[k+1:]
	}
	return name
}

// ProjectedSymbols returns the output columns of a query command with
// multiple element symbols expanded.  The second result is false for
// commands that do not project columns.
func ProjectedSymbols(cmd Command) ([]Expr, bool) {
	switch cmd := cmd.(type) {
	case *Query:
		if cmd.Select == nil {
			return nil, false
		}
		var out []Expr
		for _, s := range cmd.Select.Symbols {
			if m, ok := s.(*MultipleElementSymbol); ok {
				for _, e := range m.Elements {
					out = append(out, e)
				}
				continue
			}
			out = append(out, s)
		}
		return out, true
	case *SetQuery:
		return ProjectedSymbols(cmd.Left)
	case *StoredProcedure:
		if cmd.Procedure == nil {
			return nil, false
		}
		out := make([]Expr, 0, len(cmd.Procedure.ResultSet))
		for _, rc := range cmd.Procedure.ResultSet {
			out = append(out, &ElementSymbol{Name: rc.Name, ID: rc.ID, Type: rc.Type, Group: cmd.Group})
		}
		return out, len(cmd.Procedure.ResultSet) > 0
	case *DynamicCommand:
		if !cmd.AsClauseSet {
			return nil, false
		}
		out := make([]Expr, 0, len(cmd.AsColumns))
		for _, e := range cmd.AsColumns {
			out = append(out, e)
		}
		return out, true
	}
	return nil, false
}

// Equal reports whether two expressions are structurally the same.
// Resolved element symbols are equal when they bind to the same element
// of the same group.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case *Constant:
		b, ok := b.(*Constant)
		return ok && a.Type == b.Type && coerce.Format(a.Value, a.Type) == coerce.Format(b.Value, b.Type)
	case *ElementSymbol:
		b, ok := b.(*ElementSymbol)
		if !ok {
			return false
		}
		if a.ID != nil || b.ID != nil {
			return a.ID == b.ID && sameGroup(a.Group, b.Group)
		}
		return strings.EqualFold(a.Name, b.Name)
	case *AliasSymbol:
		b, ok := b.(*AliasSymbol)
		return ok && strings.EqualFold(a.Name, b.Name) && Equal(a.Expr, b.Expr)
	case *ExpressionSymbol:
		b, ok := b.(*ExpressionSymbol)
		return ok && Equal(a.Expr, b.Expr)
	case *MultipleElementSymbol:
		b, ok := b.(*MultipleElementSymbol)
		return ok && strings.EqualFold(a.Group, b.Group)
	case *Function:
		b, ok := b.(*Function)
		return ok && strings.EqualFold(a.Name, b.Name) && equalList(a.Args, b.Args)
	case *Reference:
		b, ok := b.(*Reference)
		return ok && a.Index == b.Index && a.Positional == b.Positional
	case *Aggregate:
		b, ok := b.(*Aggregate)
		return ok && strings.EqualFold(a.Name, b.Name) && a.Distinct == b.Distinct && Equal(a.Arg, b.Arg)
	case *Case:
		b, ok := b.(*Case)
		if !ok || len(a.Whens) != len(b.Whens) || !Equal(a.Expr, b.Expr) || !Equal(a.Else, b.Else) {
			return false
		}
		for k := range a.Whens {
			if !Equal(a.Whens[k].When, b.Whens[k].When) || !Equal(a.Whens[k].Then, b.Whens[k].Then) {
				return false
			}
		}
		return true
	case *SearchedCase:
		b, ok := b.(*SearchedCase)
		if !ok || len(a.Whens) != len(b.Whens) || !Equal(a.Else, b.Else) {
			return false
		}
		for k := range a.Whens {
			if !Equal(a.Whens[k].When, b.Whens[k].When) || !Equal(a.Whens[k].Then, b.Whens[k].Then) {
				return false
			}
		}
		return true
	case *ScalarSubquery:
		b, ok := b.(*ScalarSubquery)
		return ok && a.Command == b.Command
	case *Array:
		b, ok := b.(*Array)
		return ok && equalList(a.Elems, b.Elems)
	case *Compare:
		b, ok := b.(*Compare)
		return ok && a.Op == b.Op && Equal(a.LHS, b.LHS) && Equal(a.RHS, b.RHS)
	case *Compound:
		b, ok := b.(*Compound)
		if !ok || a.Op != b.Op || len(a.Criteria) != len(b.Criteria) {
			return false
		}
		for k := range a.Criteria {
			if !Equal(a.Criteria[k], b.Criteria[k]) {
				return false
			}
		}
		return true
	case *Not:
		b, ok := b.(*Not)
		return ok && Equal(a.Criteria, b.Criteria)
	case *IsNull:
		b, ok := b.(*IsNull)
		return ok && a.Not == b.Not && Equal(a.Expr, b.Expr)
	case *Match:
		b, ok := b.(*Match)
		return ok && a.Not == b.Not && a.Escape == b.Escape && Equal(a.Expr, b.Expr) && Equal(a.Pattern, b.Pattern)
	case *Set:
		b, ok := b.(*Set)
		return ok && a.Not == b.Not && Equal(a.Expr, b.Expr) && equalList(a.Values, b.Values)
	case *SubquerySet:
		b, ok := b.(*SubquerySet)
		return ok && a.Not == b.Not && Equal(a.Expr, b.Expr) && a.Command == b.Command
	case *Exists:
		b, ok := b.(*Exists)
		return ok && a.Not == b.Not && a.Command == b.Command
	case *SubqueryCompare:
		b, ok := b.(*SubqueryCompare)
		return ok && a.Op == b.Op && a.Quantifier == b.Quantifier && Equal(a.LHS, b.LHS) && a.Command == b.Command
	case *Between:
		b, ok := b.(*Between)
		return ok && a.Not == b.Not && Equal(a.Expr, b.Expr) && Equal(a.Lower, b.Lower) && Equal(a.Upper, b.Upper)
	}
	return false
}

func equalList(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !Equal(a[k], b[k]) {
			return false
		}
	}
	return true
}

func sameGroup(a, b *GroupSymbol) bool {
	if a == nil || b == nil {
		return a == b
	}
	return strings.EqualFold(a.Name, b.Name)
}
