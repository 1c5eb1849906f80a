package ast

import (
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata"
)

type (
	Constant struct {
		Value any
		Type  string
		Loc
	}
	// An ElementSymbol is a column reference.  Name is the name as written,
	// possibly qualified by a group.  After resolution Group is the
	// owning group, ID the catalog element and Type its type.
	ElementSymbol struct {
		Name  string
		Group *GroupSymbol
		ID    metadata.ID
		Type  string
		// External is set when the symbol binds to a group of an enclosing
		// command.
		External bool
		Loc
	}
	// AliasSymbol is a projected expression with an AS name.
	AliasSymbol struct {
		Name string
		Expr Expr
		Loc
	}
	// ExpressionSymbol is a projected expression with a generated name.
	ExpressionSymbol struct {
		Name string
		Expr Expr
		Loc
	}
	// MultipleElementSymbol is "*" or "g.*".  Elements holds the expansion.
	MultipleElementSymbol struct {
		Group    string
		Elements []*ElementSymbol
		Loc
	}
	// A Function is a call to a scalar function.  Method is the chosen
	// overload.  Implicit marks conversions inserted by the resolver.
	Function struct {
		Name     string
		Args     []Expr
		Method   *function.Method
		Type     string
		Implicit bool
		Loc
	}
	// A Reference is a bind parameter.
	Reference struct {
		Index      int
		Positional bool
		Type       string
		Loc
	}
	Aggregate struct {
		Name     string
		Distinct bool
		// Arg is nil for COUNT(*).
		Arg  Expr
		Type string
		Loc
	}
	Case struct {
		Expr  Expr
		Whens []When
		Else  Expr
		Type  string
		Loc
	}
	When struct {
		When Expr
		Then Expr
	}
	SearchedCase struct {
		Whens []SearchedWhen
		Else  Expr
		Type  string
		Loc
	}
	SearchedWhen struct {
		When Criteria
		Then Expr
	}
	ScalarSubquery struct {
		Command Command
		Type    string
		Loc
	}
	Array struct {
		Elems []Expr
		Type  string
		Loc
	}
)

func (*Constant) exprNode()              {}
func (*ElementSymbol) exprNode()         {}
func (*AliasSymbol) exprNode()           {}
func (*ExpressionSymbol) exprNode()      {}
func (*MultipleElementSymbol) exprNode() {}
func (*Function) exprNode()              {}
func (*Reference) exprNode()             {}
func (*Aggregate) exprNode()             {}
func (*Case) exprNode()                  {}
func (*SearchedCase) exprNode()          {}
func (*ScalarSubquery) exprNode()        {}
func (*Array) exprNode()                 {}

// Criteria
type (
	Compare struct {
		Op  string
		LHS Expr
		RHS Expr
		Loc
	}
	// Compound joins criteria with AND or OR.
	Compound struct {
		Op       string
		Criteria []Criteria
		Loc
	}
	Not struct {
		Criteria Criteria
		Loc
	}
	IsNull struct {
		Expr Expr
		Not  bool
		Loc
	}
	Match struct {
		Expr    Expr
		Pattern Expr
		Escape  string
		Not     bool
		Loc
	}
	// Set is "expr IN (values...)".
	Set struct {
		Expr   Expr
		Values []Expr
		Not    bool
		Loc
	}
	SubquerySet struct {
		Expr    Expr
		Command Command
		Not     bool
		Loc
	}
	Exists struct {
		Command Command
		Not     bool
		Loc
	}
	// SubqueryCompare is "expr op ANY|SOME|ALL (subquery)".  An empty
	// quantifier compares against a scalar subquery.
	SubqueryCompare struct {
		Op         string
		LHS        Expr
		Quantifier string
		Command    Command
		Loc
	}
	Between struct {
		Expr  Expr
		Lower Expr
		Upper Expr
		Not   bool
		Loc
	}
)

func (*Compare) exprNode()         {}
func (*Compound) exprNode()        {}
func (*Not) exprNode()             {}
func (*IsNull) exprNode()          {}
func (*Match) exprNode()           {}
func (*Set) exprNode()             {}
func (*SubquerySet) exprNode()     {}
func (*Exists) exprNode()          {}
func (*SubqueryCompare) exprNode() {}
func (*Between) exprNode()         {}

func (*Compare) criteriaNode()         {}
func (*Compound) criteriaNode()        {}
func (*Not) criteriaNode()             {}
func (*IsNull) criteriaNode()          {}
func (*Match) criteriaNode()           {}
func (*Set) criteriaNode()             {}
func (*SubquerySet) criteriaNode()     {}
func (*Exists) criteriaNode()          {}
func (*SubqueryCompare) criteriaNode() {}
func (*Between) criteriaNode()         {}

const (
	And = "AND"
	Or  = "OR"
)

// Conjuncts flattens nested ANDs.
func Conjuncts(c Criteria) []Criteria {
	if c == nil {
		return nil
	}
	if comp, ok := c.(*Compound); ok && comp.Op == And {
		var out []Criteria
		for _, sub := range comp.Criteria {
			out = append(out, Conjuncts(sub)...)
		}
		return out
	}
	return []Criteria{c}
}

// Conjunction ANDs criteria together, returning nil for none.
func Conjunction(criteria []Criteria) Criteria {
	switch len(criteria) {
	case 0:
		return nil
	case 1:
		return criteria[0]
	}
	return &Compound{Op: And, Criteria: criteria}
}
