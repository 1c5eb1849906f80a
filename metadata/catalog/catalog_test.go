package catalog_test

import (
	"errors"
	"testing"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/metadata"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/kr/pretty"
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
    - {name: id, type: int}
    - {name: placed, type: date}
    primaryKey: [id]
  - name: lineitems
    columns:
    - {name: order_id, type: integer}
    - {name: line, type: integer}
    - {name: amount, type: decimal, default: "0"}
    primaryKey: [order_id, line]
    foreignKeys:
    - {name: fk_order, columns: [order_id], references: orders}
  procedures:
  - name: getorders
    params:
    - {name: since, type: date}
    - {name: lim, type: integer, default: "10"}
    resultSet:
    - {name: id, type: integer}
- name: views
  tables:
  - name: orders
    virtual: true
    query: SELECT id FROM src.orders
    columns:
    - {name: id, type: integer}
    foreignKeys:
    - {name: fk_src, columns: [id], references: src.orders}
  functions:
  - name: twice
    params: [{name: x, type: integer}]
    returns: integer
    pushdown: required
`

func load(t *testing.T) *catalog.Metadata {
	v, err := catalog.Parse([]byte(shop))
	require.NoError(t, err)
	md, err := catalog.NewMetadata(v, nil)
	require.NoError(t, err)
	return md
}

func TestGroupLookup(t *testing.T) {
	md := load(t)
	id, err := md.GroupID("SRC.Orders")
	require.NoError(t, err)
	assert.Equal(t, "src.orders", id.FullName())

	_, err = md.GroupID("orders")
	assert.True(t, errors.Is(err, metadata.ErrNotFound))

	names, err := md.GroupsForPartialName("orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"src.orders", "views.orders"}, names)

	names, err = md.GroupsForPartialName("ders")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestElementsAndKeys(t *testing.T) {
	md := load(t)
	g, err := md.GroupID("src.lineitems")
	require.NoError(t, err)
	elems, err := md.ElementIDs(g)
	require.NoError(t, err)
	require.Len(t, elems, 3)
	typ, err := md.ElementType(elems[2])
	require.NoError(t, err)
	assert.Equal(t, vdb.BigDecimal, typ)

	keys, err := md.UniqueKeys(g)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.True(t, keys[0].Primary)

	fks, err := md.ForeignKeys(g)
	require.NoError(t, err)
	require.Len(t, fks, 1)
	require.NotNil(t, fks[0].Reference, "same schema reference is linked on load")
	assert.Equal(t, "src.orders.id", fks[0].Reference.Columns[0].FullName())

	v, err := md.GroupID("views.orders")
	require.NoError(t, err)
	fks, err = md.ForeignKeys(v)
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Nil(t, fks[0].Reference, "cross schema reference waits for the validator")
	plan, err := md.VirtualPlan(v)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM src.orders", plan)
}

func TestProcedures(t *testing.T) {
	md := load(t)
	assert.True(t, md.IsProcedure("getorders"))
	assert.True(t, md.IsProcedure("shop.src.getorders"))
	p, err := md.StoredProcedure("src.GetOrders")
	require.NoError(t, err)
	require.Len(t, p.Params, 2)
	assert.Equal(t, int32(10), p.Params[1].Default)
	assert.True(t, p.Params[1].HasDefault)
	require.Len(t, p.ResultSet, 1)
	assert.Equal(t, "src.getorders.id", p.ResultSet[0].ID.FullName())
}

func TestSchemaFunctionsMergeWithSystem(t *testing.T) {
	md := load(t)
	lib := md.Functions()
	assert.True(t, lib.Exists("abs"))
	require.Len(t, lib.Lookup("views.twice"), 1)
	assert.Same(t, lib.Lookup("twice")[0], lib.Lookup("views.twice")[0])
	assert.Same(t, lib, md.Functions())
}

func TestUnknownTypeFailsLoad(t *testing.T) {
	_, err := catalog.Parse([]byte(`
name: bad
schemas:
- name: s
  tables:
  - name: t
    columns: [{name: c, type: nosuch}]
`))
	assert.ErrorContains(t, err, `unknown type "nosuch"`)
}

func TestColumnTypesCanonicalized(t *testing.T) {
	type column struct {
		Name, Type string
	}
	var got []column
	for _, c := range load(t).VDB().Table("src.lineitems").Columns {
		got = append(got, column{c.Name, c.Type})
	}
	expected := []column{
		{"order_id", vdb.Integer},
		{"line", vdb.Integer},
		{"amount", vdb.BigDecimal},
	}
	if diff := pretty.Diff(expected, got); len(diff) > 0 {
		t.Fatalf("columns differ:\n%s", diff)
	}
}
