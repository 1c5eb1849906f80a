package sqlimport

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, code VARCHAR(10) NOT NULL UNIQUE, placed DATE)`,
		`CREATE TABLE lineitems (
			order_id INTEGER NOT NULL REFERENCES orders(id),
			line INT NOT NULL,
			amount DECIMAL(10,2) DEFAULT 0,
			PRIMARY KEY (order_id, line))`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	s, err := Import(context.Background(), nil, path, "src")
	require.NoError(t, err)
	require.Len(t, s.Tables, 2)
	assert.True(t, s.Physical)

	v := &catalog.VDB{Name: "shop", Schemas: []*catalog.Schema{s}}
	require.NoError(t, v.Link())

	orders := v.Table("src.orders")
	require.NotNil(t, orders)
	assert.Equal(t, []string{"id"}, orders.PrimaryKey)
	require.Len(t, orders.UniqueKeys, 1)
	assert.Equal(t, []string{"code"}, orders.UniqueKeys[0].Columns)
	assert.Equal(t, vdb.String, orders.Column("code").Type)
	assert.False(t, orders.Column("code").IsNullable())
	assert.Equal(t, vdb.Date, orders.Column("placed").Type)

	items := v.Table("src.lineitems")
	require.NotNil(t, items)
	assert.Equal(t, []string{"order_id", "line"}, items.PrimaryKey)
	assert.Equal(t, vdb.BigDecimal, items.Column("amount").Type)
	require.Len(t, items.ForeignKeys, 1)
	assert.True(t, items.ForeignKeys[0].Resolved())
}

func TestMapType(t *testing.T) {
	assert.Equal(t, vdb.Long, MapType("BIGINT"))
	assert.Equal(t, vdb.Integer, MapType("integer"))
	assert.Equal(t, vdb.String, MapType("NVARCHAR(20)"))
	assert.Equal(t, vdb.Timestamp, MapType("DATETIME"))
	assert.Equal(t, vdb.Double, MapType("REAL"))
	assert.Equal(t, vdb.Blob, MapType(""))
	assert.Equal(t, vdb.BigDecimal, MapType("NUMERIC(5)"))
}
