package semantic

import (
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
)

const (
	// DynamicVariables is the group of the USING values of a dynamic
	// command as seen by the SQL it executes.
	DynamicVariables = "DVARS"
	// DynamicResults is the group of the AS columns of a dynamic command
	// that has no INTO target.
	DynamicResults = "DYNAMIC"
)

func (r *Resolver) dynamic(outer *scope, d *ast.DynamicCommand) error {
	sc := newScope(outer)
	sql, err := r.expr(sc, d.SQL)
	if err != nil {
		return err
	}
	if d.SQL, err = r.stringOperand(sql); err != nil {
		return err
	}
	if err := r.using(sc, d); err != nil {
		return err
	}
	if !d.AsClauseSet {
		if d.Into != nil {
			return errorf(InvalidCommand, d, "INTO requires an AS clause")
		}
		return nil
	}
	var columns []metadata.Column
	seen := make(map[string]bool)
	for _, c := range d.AsColumns {
		short := metadata.ShortName(c.Name)
		if seen[strings.ToLower(short)] {
			return errorf(InvalidCommand, c, "duplicate column name %q in AS clause", short)
		}
		seen[strings.ToLower(short)] = true
		if c.Type == "" {
			return errorf(InvalidCommand, c, "column %q in AS clause has no type", short)
		}
		columns = append(columns, metadata.Column{Name: short, Type: c.Type})
	}
	if d.Into == nil {
		id := r.md.Store().AddGroup(DynamicResults, columns, false)
		g := &ast.GroupSymbol{Name: DynamicResults, ID: id, IsTempTable: true}
		return r.bindColumns(g, d.AsColumns)
	}
	if err := r.ResolveGroup(d.Into); err != nil {
		if !IsUnresolved(err) || !isTempName(d.Into.NonCorrelationName()) {
			return err
		}
		r.root.AddGroup(d.Into.NonCorrelationName(), columns, true)
		if err := r.ResolveGroup(d.Into); err != nil {
			return err
		}
	}
	info, err := r.GroupInfo(d.Into)
	if err != nil {
		return err
	}
	if len(info.Symbols) != len(d.AsColumns) {
		return errorf(InvalidCommand, d, "INTO %s expects %d columns but the AS clause declares %d", d.Into.Name, len(info.Symbols), len(d.AsColumns))
	}
	for k, t := range info.Symbols {
		c := d.AsColumns[k]
		if !r.lattice.CanImplicitlyConvert(c.Type, t.Type) {
			return errorf(TypeConversion, c, "AS column %q of type %s cannot be inserted into %s of type %s", metadata.ShortName(c.Name), c.Type, t.Name, t.Type)
		}
	}
	return r.bindColumns(d.Into, d.AsColumns)
}

// bindColumns binds declared columns to the elements of g by position.
func (r *Resolver) bindColumns(g *ast.GroupSymbol, columns []*ast.ElementSymbol) error {
	if c := columns; len(c) > 0 && c[0].ID != nil {
		return nil
	}
	elements, err := r.expand(g)
	if err != nil {
		return err
	}
	for k, c := range columns {
		if k < len(elements) {
			c.ID = elements[k].ID
			c.Group = g
		}
	}
	return nil
}

// using types the USING values and exposes them to the dynamic SQL as the
// elements of a temporary group.
func (r *Resolver) using(sc *scope, d *ast.DynamicCommand) error {
	if len(d.Using) == 0 {
		return nil
	}
	var columns []metadata.Column
	for _, u := range d.Using {
		v, err := r.expr(sc, u.Value)
		if err != nil {
			return err
		}
		typ := ast.TypeOf(v)
		if isUnknown(typ) {
			typ = vdb.String
			if v, err = r.convert(v, typ); err != nil {
				return err
			}
		}
		u.Value = v
		columns = append(columns, metadata.Column{Name: metadata.ShortName(u.Column.Name), Type: typ})
	}
	id := r.md.Store().AddGroup(DynamicVariables, columns, false)
	for k, u := range d.Using {
		if u.Column.ID != nil {
			continue
		}
		e := id.Elements()[k]
		u.Column.ID = e
		u.Column.Type = e.Type()
	}
	return nil
}
