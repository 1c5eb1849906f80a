package ast

// Exprs returns the expressions and criteria that belong directly to cmd,
// not to the commands nested in it.  Multiple element symbols contribute
// their expansion.
func Exprs(cmd Command) []Expr {
	var out []Expr
	add := func(es ...Expr) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	switch cmd := cmd.(type) {
	case *Query:
		if cmd.Select != nil {
			for _, s := range cmd.Select.Symbols {
				if m, ok := s.(*MultipleElementSymbol); ok {
					for _, e := range m.Elements {
						add(e)
					}
					continue
				}
				add(s)
			}
		}
		if cmd.From != nil {
			for _, fc := range cmd.From.Clauses {
				add(joinCriteria(fc)...)
			}
		}
		add(cmd.Where)
		add(cmd.GroupBy...)
		add(cmd.Having)
		add(sortExprs(cmd.OrderBy)...)
		add(limitExprs(cmd.Limit)...)
	case *SetQuery:
		add(sortExprs(cmd.OrderBy)...)
		add(limitExprs(cmd.Limit)...)
	case *Insert:
		for _, c := range cmd.Columns {
			add(c)
		}
		add(cmd.Values...)
	case *Update:
		for _, c := range cmd.Changes {
			add(c.Column, c.Value)
		}
		add(cmd.Where)
	case *Delete:
		add(cmd.Where)
	case *StoredProcedure:
		for _, p := range cmd.Params {
			add(p.Expr)
		}
	case *DynamicCommand:
		add(cmd.SQL)
		for _, u := range cmd.Using {
			add(u.Value)
		}
	case *CreateProcedure:
		if cmd.Block != nil {
			add(blockExprs(cmd.Block)...)
		}
	}
	return out
}

func joinCriteria(fc FromClause) []Expr {
	j, ok := fc.(*JoinPredicate)
	if !ok {
		return nil
	}
	out := joinCriteria(j.Left)
	out = append(out, joinCriteria(j.Right)...)
	for _, c := range j.Criteria {
		out = append(out, c)
	}
	return out
}

func sortExprs(ob *OrderBy) []Expr {
	if ob == nil {
		return nil
	}
	out := make([]Expr, 0, len(ob.Items))
	for _, item := range ob.Items {
		out = append(out, item.Expr)
	}
	return out
}

func limitExprs(l *Limit) []Expr {
	if l == nil {
		return nil
	}
	return []Expr{l.Offset, l.Count}
}

func blockExprs(b *Block) []Expr {
	var out []Expr
	add := func(es ...Expr) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	for _, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *Block:
			add(blockExprs(s)...)
		case *Declare:
			add(s.Value)
		case *Assignment:
			add(s.Variable, s.Value)
		case *If:
			add(s.Condition)
			add(blockExprs(s.Then)...)
			if s.Else != nil {
				add(blockExprs(s.Else)...)
			}
		case *While:
			add(s.Condition)
			add(blockExprs(s.Block)...)
		case *Loop:
			add(blockExprs(s.Block)...)
		case *Return:
			add(s.Expr)
		case *Raise:
			add(s.Expr)
		}
	}
	return out
}

// Nested returns the commands nested directly in cmd: subqueries of its
// expressions, derived tables, set query branches, the query of an
// INSERT and the commands of a procedure body.
func Nested(cmd Command) []Command {
	var out []Command
	for _, e := range Exprs(cmd) {
		out = append(out, Subqueries(e)...)
	}
	switch cmd := cmd.(type) {
	case *Query:
		if cmd.From != nil {
			for _, fc := range cmd.From.Clauses {
				out = append(out, derivedTables(fc)...)
			}
		}
	case *SetQuery:
		out = append(out, cmd.Left, cmd.Right)
	case *Insert:
		if cmd.Query != nil {
			out = append(out, cmd.Query)
		}
	case *CreateProcedure:
		if cmd.Block != nil {
			out = append(out, blockCommands(cmd.Block)...)
		}
	}
	return out
}

func derivedTables(fc FromClause) []Command {
	switch fc := fc.(type) {
	case *SubqueryFromClause:
		return []Command{fc.Command}
	case *JoinPredicate:
		return append(derivedTables(fc.Left), derivedTables(fc.Right)...)
	}
	return nil
}

func blockCommands(b *Block) []Command {
	var out []Command
	for _, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *Block:
			out = append(out, blockCommands(s)...)
		case *CommandStatement:
			out = append(out, s.Command)
		case *If:
			out = append(out, blockCommands(s.Then)...)
			if s.Else != nil {
				out = append(out, blockCommands(s.Else)...)
			}
		case *While:
			out = append(out, blockCommands(s.Block)...)
		case *Loop:
			out = append(out, s.Command)
			out = append(out, blockCommands(s.Block)...)
		}
	}
	return out
}

// Inspect calls visit for cmd and then, if visit returns true, for every
// command nested in it, depth first.
func Inspect(cmd Command, visit func(Command) bool) {
	if cmd == nil || !visit(cmd) {
		return
	}
	for _, c := range Nested(cmd) {
		Inspect(c, visit)
	}
}

// Groups returns the groups of a FROM clause in the order they appear.
func Groups(fc FromClause) []*GroupSymbol {
	switch fc := fc.(type) {
	case *UnaryFromClause:
		return []*GroupSymbol{fc.Group}
	case *SubqueryFromClause:
		if fc.Group != nil {
			return []*GroupSymbol{fc.Group}
		}
	case *JoinPredicate:
		return append(Groups(fc.Left), Groups(fc.Right)...)
	}
	return nil
}
