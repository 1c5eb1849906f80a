package semantic

import (
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
)

func (r *Resolver) insert(outer *scope, ins *ast.Insert) error {
	if ins.Query != nil {
		if err := r.command(outer, ins.Query); err != nil {
			return err
		}
	} else {
		for k, v := range ins.Values {
			v, err := r.expr(outer, v)
			if err != nil {
				return err
			}
			ins.Values[k] = v
		}
	}
	if err := r.ResolveGroup(ins.Group); err != nil {
		if !IsUnresolved(err) || !isTempName(ins.Group.NonCorrelationName()) {
			return err
		}
		if err := r.implicitTempTable(ins); err != nil {
			return err
		}
	}
	sc := newScope(outer)
	sc.add(ins.Group)
	if len(ins.Columns) == 0 {
		columns, err := r.expand(ins.Group)
		if err != nil {
			return err
		}
		ins.Columns = columns
	}
	local := &scope{groups: sc.groups, command: true}
	for _, c := range ins.Columns {
		if err := r.bindElement(local, c); err != nil {
			return err
		}
	}
	if ins.Query != nil {
		symbols, _ := ast.ProjectedSymbols(ins.Query)
		if len(symbols) != len(ins.Columns) {
			return errorf(InvalidCommand, ins, "INSERT lists %d columns but the query projects %d", len(ins.Columns), len(symbols))
		}
		for k, c := range ins.Columns {
			if err := r.convertProjection(ins.Query, k, c.Type); err != nil {
				return err
			}
		}
		return nil
	}
	// A count mismatch is reported by the validator.
	if len(ins.Values) == len(ins.Columns) {
		for k, c := range ins.Columns {
			v, err := r.convert(ins.Values[k], c.Type)
			if err != nil {
				return err
			}
			ins.Values[k] = v
		}
	}
	return nil
}

// implicitTempTable creates the temporary table an INSERT names when it
// does not exist yet.  Its columns take their types from the inserted
// values.
func (r *Resolver) implicitTempTable(ins *ast.Insert) error {
	var symbols []ast.Expr
	if ins.Query != nil {
		symbols, _ = ast.ProjectedSymbols(ins.Query)
	} else {
		symbols = ins.Values
	}
	var columns []metadata.Column
	if len(ins.Columns) == 0 {
		if ins.Query == nil {
			return errorf(InvalidCommand, ins, "INSERT into new temporary table %q must name its columns", ins.Group.Name)
		}
		var err error
		if columns, err = columnsOf(ins, symbols); err != nil {
			return err
		}
	} else {
		if len(ins.Columns) != len(symbols) {
			return errorf(InvalidCommand, ins, "INSERT lists %d columns but supplies %d values", len(ins.Columns), len(symbols))
		}
		seen := make(map[string]bool)
		for k, c := range ins.Columns {
			name := metadata.ShortName(c.Name)
			if seen[strings.ToLower(name)] {
				return errorf(InvalidCommand, c, "duplicate column name %q", name)
			}
			seen[strings.ToLower(name)] = true
			typ := ast.TypeOf(symbols[k])
			if isUnknown(typ) {
				typ = vdb.String
			}
			columns = append(columns, metadata.Column{Name: name, Type: typ})
		}
	}
	r.root.AddGroup(ins.Group.NonCorrelationName(), columns, true)
	return r.ResolveGroup(ins.Group)
}

func (r *Resolver) update(outer *scope, u *ast.Update) error {
	if err := r.ResolveGroup(u.Group); err != nil {
		return err
	}
	sc := newScope(outer)
	sc.add(u.Group)
	local := &scope{groups: sc.groups, command: true}
	for _, change := range u.Changes {
		if err := r.bindElement(local, change.Column); err != nil {
			return err
		}
		v, err := r.exprFor(sc, change.Value, change.Column.Type)
		if err != nil {
			return err
		}
		if change.Value, err = r.convert(v, change.Column.Type); err != nil {
			return err
		}
	}
	return r.criteria(sc, u.Where)
}

func (r *Resolver) delete(outer *scope, d *ast.Delete) error {
	if err := r.ResolveGroup(d.Group); err != nil {
		return err
	}
	sc := newScope(outer)
	sc.add(d.Group)
	return r.criteria(sc, d.Where)
}
