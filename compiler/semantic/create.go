package semantic

import (
	"strings"

	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
)

// createTable defines a temporary table.  The name must not refer to an
// existing group.
func (r *Resolver) createTable(c *ast.CreateTable) error {
	if c.Group.ID != nil {
		return nil
	}
	name := c.Group.NonCorrelationName()
	existing := &ast.GroupSymbol{Name: name}
	if err := r.ResolveGroup(existing); err == nil {
		return errorf(InvalidCommand, c, "table %q already exists", name)
	} else if !IsUnresolved(err) {
		return err
	}
	var columns []metadata.Column
	seen := make(map[string]bool)
	for _, col := range c.Columns {
		key := strings.ToLower(col.Name)
		if seen[key] {
			return errorf(InvalidCommand, col, "duplicate column name %q", col.Name)
		}
		seen[key] = true
		columns = append(columns, metadata.Column{Name: col.Name, Type: col.Type})
	}
	id := r.root.AddGroup(name, columns, true)
	for _, pk := range c.PrimaryKey {
		e := id.Element(pk)
		if e == nil {
			r.root.Remove(name)
			return errorf(UnresolvedSymbol, c, "primary key column %q is not a column of %s", pk, name)
		}
		id.PrimaryKey = append(id.PrimaryKey, e)
	}
	return r.ResolveGroup(c.Group)
}
