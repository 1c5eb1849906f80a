package semantic

import (
	"strings"

	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
)

// Variables is the group holding the variables declared in a block.
const Variables = "VARIABLES"

func (r *Resolver) storedProcedure(outer *scope, sp *ast.StoredProcedure) error {
	if sp.Procedure != nil {
		return nil
	}
	proc, err := r.md.StoredProcedure(sp.Name)
	if err != nil {
		return metadataError(sp, "procedure", sp.Name, err)
	}
	inputs := inputParams(proc)
	if err := r.bindArguments(outer, sp, proc, inputs); err != nil {
		return err
	}
	sp.Procedure = proc
	sp.Name = proc.Name
	if len(proc.ResultSet) > 0 {
		var columns []metadata.Column
		for _, c := range proc.ResultSet {
			columns = append(columns, metadata.Column{Name: c.Name, Type: c.Type})
		}
		id := r.md.Store().AddGroup(proc.Name, columns, false)
		sp.Group = &ast.GroupSymbol{Name: proc.Name, ID: id, IsTempTable: true, IsProcedure: true}
	}
	return nil
}

func inputParams(proc *metadata.Procedure) []*metadata.ProcedureParam {
	var out []*metadata.ProcedureParam
	for _, p := range proc.Params {
		if p.Mode == metadata.In || p.Mode == metadata.InOut {
			out = append(out, p)
		}
	}
	return out
}

func paramIndex(proc *metadata.Procedure, p *metadata.ProcedureParam) int {
	for k, q := range proc.Params {
		if q == p {
			return k + 1
		}
	}
	return 0
}

// bindArguments matches the arguments of a call to the procedure's input
// parameters.  Arguments are either all named or all positional.  Omitted
// parameters take their defaults.
func (r *Resolver) bindArguments(outer *scope, sp *ast.StoredProcedure, proc *metadata.Procedure, inputs []*metadata.ProcedureParam) error {
	named := 0
	for _, arg := range sp.Params {
		if arg.Name != "" {
			named++
		}
	}
	if named > 0 && named < len(sp.Params) {
		return errorf(InvalidCommand, sp, "call to %s mixes named and positional arguments", proc.Name)
	}
	supplied := make(map[*metadata.ProcedureParam]bool)
	for k, arg := range sp.Params {
		var p *metadata.ProcedureParam
		if named > 0 {
			for _, in := range inputs {
				if strings.EqualFold(in.Name, arg.Name) {
					p = in
				}
			}
			if p == nil {
				err := errorf(UnresolvedSymbol, arg, "procedure %s has no parameter %q", proc.Name, arg.Name)
				var names []string
				for _, in := range inputs {
					names = append(names, in.Name)
				}
				err.Suggestion = suggest(arg.Name, names)
				return err
			}
			if supplied[p] {
				return errorf(InvalidCommand, arg, "parameter %q of %s is given twice", arg.Name, proc.Name)
			}
		} else {
			switch {
			case k < len(inputs):
				p = inputs[k]
			case len(inputs) > 0 && inputs[len(inputs)-1].Vararg:
				p = inputs[len(inputs)-1]
			default:
				return errorf(InvalidCommand, sp, "%s takes %d arguments but %d were given", proc.Name, len(inputs), len(sp.Params))
			}
		}
		supplied[p] = true
		e, err := r.exprFor(outer, arg.Expr, p.Type)
		if err != nil {
			return err
		}
		if arg.Expr, err = r.convert(e, p.Type); err != nil {
			return err
		}
		arg.Param = p
		arg.Index = paramIndex(proc, p)
	}
	for _, p := range inputs {
		if supplied[p] || p.Vararg {
			continue
		}
		if !p.HasDefault {
			return errorf(InvalidCommand, sp, "missing required parameter %q of %s", p.Name, proc.Name)
		}
		sp.Params = append(sp.Params, &ast.SPParam{
			Name:         p.Name,
			Expr:         &ast.Constant{Value: p.Default, Type: p.Type},
			Index:        paramIndex(proc, p),
			Param:        p,
			UsingDefault: true,
		})
	}
	return nil
}

// procContext is the state of the procedure whose body is being resolved.
type procContext struct {
	params     *ast.GroupSymbol
	returnType string
	labels     []string
	loops      int
}

func (r *Resolver) createProcedure(outer *scope, cp *ast.CreateProcedure, proc *metadata.Procedure) error {
	pc := &procContext{}
	sc := newScope(outer)
	if proc != nil {
		var columns []metadata.Column
		for _, p := range proc.Params {
			if p.Mode == metadata.Return {
				pc.returnType = p.Type
				continue
			}
			columns = append(columns, metadata.Column{Name: p.Name, Type: p.Type})
		}
		restore := r.enterStore()
		defer restore()
		id := r.md.Store().AddGroup(proc.Name, columns, false)
		pc.params = &ast.GroupSymbol{Name: proc.Name, ID: id, IsTempTable: true, IsProcedure: true}
		sc.add(pc.params)
		cp.Group = pc.params
	}
	return r.block(sc, cp.Block, pc)
}

// ResolveProcedureBody resolves the body of a virtual procedure with its
// parameters in scope.
func (r *Resolver) ResolveProcedureBody(cp *ast.CreateProcedure, proc *metadata.Procedure) error {
	return r.createProcedure(nil, cp, proc)
}

func (r *Resolver) block(outer *scope, b *ast.Block, pc *procContext) error {
	restore := r.enterStore()
	defer restore()
	vars := r.md.Store().AddGroup(Variables, nil, false)
	sc := &scope{parent: outer}
	sc.add(&ast.GroupSymbol{Name: Variables, ID: vars, IsTempTable: true})
	if b.Label != "" {
		for _, l := range pc.labels {
			if strings.EqualFold(l, b.Label) {
				return errorf(InvalidCommand, b, "label %q is already in use", b.Label)
			}
		}
		pc.labels = append(pc.labels, b.Label)
		defer func() {
			pc.labels = pc.labels[:len(pc.labels)-1]
		}()
	}
	for _, stmt := range b.Statements {
		if err := r.statement(sc, vars, stmt, pc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) statement(sc *scope, vars *metadata.TempID, stmt ast.Statement, pc *procContext) error {
	var err error
	switch s := stmt.(type) {
	case *ast.Block:
		return r.block(sc, s, pc)
	case *ast.Declare:
		return r.declare(sc, vars, s)
	case *ast.Assignment:
		if err := r.bindElement(sc, s.Variable); err != nil {
			return err
		}
		if g := s.Variable.Group; g == nil || !strings.EqualFold(g.Name, Variables) && g != pc.params {
			return errorf(InvalidCommand, s, "%s is not a variable", s.Variable.Name)
		}
		if s.Value, err = r.exprFor(sc, s.Value, s.Variable.Type); err != nil {
			return err
		}
		s.Value, err = r.convert(s.Value, s.Variable.Type)
		return err
	case *ast.CommandStatement:
		return r.command(sc, s.Command)
	case *ast.If:
		if err := r.criteria(sc, s.Condition); err != nil {
			return err
		}
		if err := r.block(sc, s.Then, pc); err != nil {
			return err
		}
		if s.Else != nil {
			return r.block(sc, s.Else, pc)
		}
		return nil
	case *ast.While:
		if err := r.criteria(sc, s.Condition); err != nil {
			return err
		}
		pc.loops++
		defer func() { pc.loops-- }()
		return r.block(sc, s.Block, pc)
	case *ast.Loop:
		return r.loop(sc, s, pc)
	case *ast.Return:
		if s.Expr == nil {
			return nil
		}
		if s.Expr, err = r.expr(sc, s.Expr); err != nil {
			return err
		}
		if pc.returnType != "" {
			s.Expr, err = r.convert(s.Expr, pc.returnType)
		}
		return err
	case *ast.Raise:
		if s.Expr, err = r.expr(sc, s.Expr); err != nil {
			return err
		}
		s.Expr, err = r.stringOperand(s.Expr)
		return err
	case *ast.Branching:
		return r.branching(s, pc)
	}
	return errorf(InvalidCommand, stmt, "unknown statement type %T", stmt)
}

func (r *Resolver) declare(sc *scope, vars *metadata.TempID, d *ast.Declare) error {
	name := d.Variable.Name
	if qualifier := metadata.GroupName(name); qualifier != "" && !strings.EqualFold(qualifier, Variables) {
		return errorf(InvalidCommand, d, "variable %q must be declared in the %s group", name, Variables)
	}
	short := metadata.ShortName(name)
	if vars.Element(short) != nil {
		return errorf(InvalidCommand, d, "variable %q is already declared in this block", short)
	}
	if d.Value != nil {
		v, err := r.exprFor(sc, d.Value, d.Type)
		if err != nil {
			return err
		}
		if d.Value, err = r.convert(v, d.Type); err != nil {
			return err
		}
	}
	r.md.Store().AddElement(vars, metadata.Column{Name: short, Type: d.Type})
	d.Variable.Name = Variables + "." + short
	return r.bindElement(sc, d.Variable)
}

func (r *Resolver) loop(sc *scope, l *ast.Loop, pc *procContext) error {
	if err := r.command(sc, l.Command); err != nil {
		return err
	}
	symbols, ok := ast.ProjectedSymbols(l.Command)
	if !ok {
		return errorf(InvalidCommand, l, "LOOP ON requires a query that projects columns")
	}
	if sc.lookupGroup(l.Cursor) != nil || r.md.Store().Group(l.Cursor) != nil {
		return errorf(InvalidCommand, l, "cursor name %q is already in use", l.Cursor)
	}
	columns, err := columnsOf(l, symbols)
	if err != nil {
		return err
	}
	store := r.md.Store()
	id := store.AddGroup(l.Cursor, columns, false)
	defer store.Remove(l.Cursor)
	inner := &scope{parent: sc}
	inner.add(&ast.GroupSymbol{Name: l.Cursor, ID: id, IsTempTable: true})
	pc.loops++
	defer func() { pc.loops-- }()
	return r.block(inner, l.Block, pc)
}

func (r *Resolver) branching(b *ast.Branching, pc *procContext) error {
	if b.Label != "" {
		for _, l := range pc.labels {
			if strings.EqualFold(l, b.Label) {
				return nil
			}
		}
		return errorf(InvalidCommand, b, "unknown label %q", b.Label)
	}
	if b.Mode == "LEAVE" {
		return errorf(InvalidCommand, b, "LEAVE requires a label")
	}
	if pc.loops == 0 {
		return errorf(InvalidCommand, b, "%s is only allowed in a loop", b.Mode)
	}
	return nil
}
