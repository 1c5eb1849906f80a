package ast

import (
	"strings"

	"github.com/brimdata/vdb/metadata"
)

// A GroupSymbol names a table, view, procedure or temporary group.  Name
// is the name used to refer to the group within its command (the alias
// when there is one) and Definition is the underlying group name when the
// group is aliased.
type GroupSymbol struct {
	Name       string
	Definition string
	ID         metadata.ID
	// IsTempTable is set for temporary tables and groups synthesized
	// during resolution.
	IsTempTable bool
	IsProcedure bool
	// OutputName and OutputDefinition preserve the names as written when
	// the catalog asks for output names.
	OutputName       string
	OutputDefinition string
	Loc
}

func (*GroupSymbol) fromNode() {}

// NonCorrelationName is the name of the group itself, ignoring any alias.
func (g *GroupSymbol) NonCorrelationName() string {
	if g.Definition != "" {
		return g.Definition
	}
	return g.Name
}

func (g *GroupSymbol) IsAliased() bool {
	return g.Definition != ""
}

// Clone returns an independent copy of g.
func (g *GroupSymbol) Clone() *GroupSymbol {
	c := *g
	return &c
}

// Matches reports whether name refers to g, either by its alias or, when
// unaliased, by its full or short name.
func (g *GroupSymbol) Matches(name string) bool {
	if strings.EqualFold(g.Name, name) {
		return true
	}
	if g.IsAliased() {
		return false
	}
	return strings.EqualFold(metadata.ShortName(g.Name), name) ||
		strings.HasSuffix(strings.ToLower(g.Name), "."+strings.ToLower(name))
}

type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

func (k JoinKind) String() string {
	switch k {
	case LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case RightOuterJoin:
		return "RIGHT OUTER JOIN"
	case FullOuterJoin:
		return "FULL OUTER JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	}
	return "INNER JOIN"
}

type (
	UnaryFromClause struct {
		Group *GroupSymbol
		Loc
	}
	JoinPredicate struct {
		Kind     JoinKind
		Left     FromClause
		Right    FromClause
		Criteria []Criteria
		Loc
	}
	// SubqueryFromClause is a derived table.  Group is the temporary group
	// created for it during resolution.
	SubqueryFromClause struct {
		Name    string
		Command Command
		Group   *GroupSymbol
		Lateral bool
		Loc
	}
)

func (*UnaryFromClause) fromNode()    {}
func (*JoinPredicate) fromNode()      {}
func (*SubqueryFromClause) fromNode() {}

type (
	Select struct {
		Distinct bool
		Symbols  []Expr
		Loc
	}
	From struct {
		Clauses []FromClause
		Loc
	}
	SortItem struct {
		Expr Expr
		Desc bool
		// Position is the 0-based index of the projected symbol this item
		// sorts on or -1 when it sorts on an unprojected expression.
		Position int
		Loc
	}
	OrderBy struct {
		Items []*SortItem
		Loc
	}
	Limit struct {
		Offset Expr
		Count  Expr
		Loc
	}
)

type (
	Query struct {
		Select  *Select
		Into    *GroupSymbol
		From    *From
		Where   Criteria
		GroupBy []Expr
		Having  Criteria
		OrderBy *OrderBy
		Limit   *Limit
		Loc
	}
	SetQuery struct {
		Op      string
		All     bool
		Left    Command
		Right   Command
		OrderBy *OrderBy
		Limit   *Limit
		Loc
	}
	Insert struct {
		Group   *GroupSymbol
		Columns []*ElementSymbol
		Values  []Expr
		Query   Command
		Loc
	}
	SetClause struct {
		Column *ElementSymbol
		Value  Expr
		Loc
	}
	Update struct {
		Group   *GroupSymbol
		Changes []*SetClause
		Where   Criteria
		Loc
	}
	Delete struct {
		Group *GroupSymbol
		Where Criteria
		Loc
	}
	SPParam struct {
		// Name is set for a named argument.
		Name string
		Expr Expr
		// Index is the 1-based position of the argument among the
		// procedure's parameters once resolved.
		Index        int
		Param        *metadata.ProcedureParam
		UsingDefault bool
		Loc
	}
	// StoredProcedure is an EXEC of a procedure.  Group is the group of
	// the result set.
	StoredProcedure struct {
		Name      string
		Params    []*SPParam
		Group     *GroupSymbol
		Procedure *metadata.Procedure
		Loc
	}
	DynamicCommand struct {
		SQL         Expr
		AsColumns   []*ElementSymbol
		AsClauseSet bool
		Using       []*SetClause
		Into        *GroupSymbol
		Loc
	}
	CreateProcedure struct {
		Group *GroupSymbol
		Block *Block
		Loc
	}
	ColumnDef struct {
		Name    string
		Type    string
		NotNull bool
		Loc
	}
	CreateTable struct {
		Group      *GroupSymbol
		Columns    []*ColumnDef
		PrimaryKey []string
		Temp       bool
		Loc
	}
)

func (*Query) commandNode()           {}
func (*SetQuery) commandNode()        {}
func (*Insert) commandNode()          {}
func (*Update) commandNode()          {}
func (*Delete) commandNode()          {}
func (*StoredProcedure) commandNode() {}
func (*DynamicCommand) commandNode()  {}
func (*CreateProcedure) commandNode() {}
func (*CreateTable) commandNode()     {}

const (
	Union     = "UNION"
	Intersect = "INTERSECT"
	Except    = "EXCEPT"
)

// Procedural statements
type (
	Block struct {
		Label      string
		Statements []Statement
		Loc
	}
	Declare struct {
		Variable *ElementSymbol
		Type     string
		Value    Expr
		Loc
	}
	Assignment struct {
		Variable *ElementSymbol
		Value    Expr
		Loc
	}
	CommandStatement struct {
		Command Command
		Loc
	}
	If struct {
		Condition Criteria
		Then      *Block
		Else      *Block
		Loc
	}
	While struct {
		Condition Criteria
		Block     *Block
		Loc
	}
	Loop struct {
		Command Command
		Cursor  string
		Block   *Block
		Loc
	}
	Return struct {
		Expr Expr
		Loc
	}
	Raise struct {
		Expr Expr
		Loc
	}
	Branching struct {
		// Mode is BREAK, CONTINUE or LEAVE.
		Mode  string
		Label string
		Loc
	}
)

func (*Block) statementNode()            {}
func (*Declare) statementNode()          {}
func (*Assignment) statementNode()       {}
func (*CommandStatement) statementNode() {}
func (*If) statementNode()               {}
func (*While) statementNode()            {}
func (*Loop) statementNode()             {}
func (*Return) statementNode()           {}
func (*Raise) statementNode()            {}
func (*Branching) statementNode()        {}
