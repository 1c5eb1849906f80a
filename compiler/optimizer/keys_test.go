package optimizer_test

import (
	"testing"

	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/optimizer"
	"github.com/brimdata/vdb/compiler/optimizer/demand"
	"github.com/brimdata/vdb/compiler/parser"
	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/metadata"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shop = `
name: shop
version: "8.0"
schemas:
- name: src
  physical: true
  tables:
  - name: orders
    columns:
    - {name: id, type: integer}
    - {name: placed, type: date}
    primaryKey: [id]
  - name: lineitems
    columns:
    - {name: order_id, type: integer}
    - {name: line, type: integer}
    - {name: amount, type: bigdecimal}
    primaryKey: [order_id, line]
    foreignKeys:
    - {name: fk_order, columns: [order_id], references: orders}
  - name: notes
    columns:
    - {name: order_id, type: integer}
    - {name: body, type: string}
`

func resolved(t *testing.T, sql string) (*ast.Query, metadata.Metadata) {
	t.Helper()
	v, err := catalog.Parse([]byte(shop))
	require.NoError(t, err)
	md, err := catalog.NewMetadata(v, nil)
	require.NoError(t, err)
	cmd, err := parser.ParseCommand(sql)
	require.NoError(t, err)
	r := semantic.New(md, semantic.Options{})
	require.NoError(t, r.ResolveCommand(cmd))
	return cmd.(*ast.Query), r.Metadata()
}

func keyPreserved(t *testing.T, sql string) []string {
	t.Helper()
	q, md := resolved(t, sql)
	groups, err := optimizer.New(md, nil).KeyPreserved(q)
	require.NoError(t, err)
	names := []string{}
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}

func TestKeyPreservedSingleGroup(t *testing.T) {
	assert.Equal(t, []string{"src.orders"}, keyPreserved(t, "SELECT id FROM src.orders"))
	assert.Empty(t, keyPreserved(t, "SELECT body FROM src.notes"))
}

func TestKeyPreservedForeignKeyJoin(t *testing.T) {
	for _, sql := range []string{
		"SELECT amount FROM src.lineitems INNER JOIN src.orders ON lineitems.order_id = orders.id",
		"SELECT amount FROM src.lineitems INNER JOIN src.orders ON orders.id = lineitems.order_id",
		"SELECT amount FROM src.orders RIGHT OUTER JOIN src.lineitems ON orders.id = lineitems.order_id",
	} {
		assert.Equal(t, []string{"src.lineitems"}, keyPreserved(t, sql), sql)
	}
}

// Joining line items to their orders along fk_order keeps the line item
// key: each line item meets exactly one order.  An order appears once per
// line item so its key no longer identifies a row.
func TestKeyPreservedLineItemsJoinOrders(t *testing.T) {
	got := keyPreserved(t, "SELECT amount FROM src.lineitems INNER JOIN src.orders ON lineitems.order_id = orders.id")
	assert.Contains(t, got, "src.lineitems")
	assert.NotContains(t, got, "src.orders")
}

func TestKeyPreservedNegative(t *testing.T) {
	for _, sql := range []string{
		// Not a foreign key.
		"SELECT amount FROM src.orders INNER JOIN src.lineitems ON orders.id = lineitems.line",
		// The outer join keeps only orders, which has no foreign key.
		"SELECT amount FROM src.orders LEFT OUTER JOIN src.lineitems ON orders.id = lineitems.order_id",
		// More columns than the foreign key.
		"SELECT amount FROM src.lineitems INNER JOIN src.orders ON lineitems.order_id = orders.id AND lineitems.line = orders.id",
		"SELECT amount FROM src.lineitems CROSS JOIN src.orders",
		"SELECT amount FROM src.lineitems FULL OUTER JOIN src.orders ON lineitems.order_id = orders.id",
	} {
		assert.Empty(t, keyPreserved(t, sql), sql)
	}
}

func TestKeyPreservedCommaJoin(t *testing.T) {
	assert.Equal(t, []string{"src.lineitems"}, keyPreserved(t, "SELECT amount FROM src.lineitems, src.orders WHERE orders.id = lineitems.order_id"))
	// Every group of a comma join needs a unique key.
	assert.Empty(t, keyPreserved(t, "SELECT amount FROM src.lineitems, src.orders, src.notes WHERE orders.id = lineitems.order_id"))
	assert.Empty(t, keyPreserved(t, "SELECT amount FROM src.lineitems, src.orders WHERE orders.id = lineitems.order_id OR amount = 0"))
}

func TestFindKeyPreservedUnresolved(t *testing.T) {
	fc := &ast.UnaryFromClause{Group: &ast.GroupSymbol{Name: "src.orders"}}
	_, err := optimizer.FindKeyPreserved(fc, nil)
	assert.ErrorContains(t, err, "not resolved")
}

func TestDemandForCommand(t *testing.T) {
	q, _ := resolved(t, "SELECT l.amount FROM src.lineitems AS l WHERE l.line = 1 AND EXISTS (SELECT placed FROM src.orders WHERE id = l.order_id)")
	d := optimizer.DemandForCommand(q)
	assert.Equal(t, [][]string{
		{"src.lineitems", "amount"},
		{"src.lineitems", "line"},
		{"src.lineitems", "order_id"},
		{"src.orders", "id"},
		{"src.orders", "placed"},
	}, demand.Paths(d))
}
