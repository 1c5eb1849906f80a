// Package sqlimport builds a physical catalog schema by introspecting a
// SQLite database.
package sqlimport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/metadata/catalog"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Import reads the tables of the SQLite database at path into a physical
// schema named schema.
func Import(ctx context.Context, logger *zap.Logger, path, schema string) (*catalog.Schema, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()
	names, err := tableNames(ctx, db)
	if err != nil {
		return nil, err
	}
	s := &catalog.Schema{Name: schema, Physical: true}
	for _, name := range names {
		t, err := importTable(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		logger.Debug("Imported table",
			zap.String("table", name),
			zap.Int("columns", len(t.Columns)),
			zap.Int("foreign_keys", len(t.ForeignKeys)))
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func importTable(ctx context.Context, db *sql.DB, name string) (*catalog.Table, error) {
	t := &catalog.Table{Name: name}
	if err := importColumns(ctx, db, t); err != nil {
		return nil, err
	}
	if err := importUniqueKeys(ctx, db, t); err != nil {
		return nil, err
	}
	if err := importForeignKeys(ctx, db, t); err != nil {
		return nil, err
	}
	return t, nil
}

func importColumns(ctx context.Context, db *sql.DB, t *catalog.Table) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quote(t.Name)+")")
	if err != nil {
		return err
	}
	defer rows.Close()
	pk := map[int]string{}
	for rows.Next() {
		var cid, notnull, pkpos int
		var name, typ string
		var def sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notnull, &def, &pkpos); err != nil {
			return err
		}
		c := &catalog.Column{Name: name, Type: MapType(typ)}
		if notnull != 0 {
			nullable := false
			c.Nullable = &nullable
		}
		if def.Valid {
			v := strings.Trim(def.String, "'")
			c.Default = &v
		}
		if pkpos > 0 {
			pk[pkpos] = name
		}
		t.Columns = append(t.Columns, c)
	}
	for k := 1; k <= len(pk); k++ {
		t.PrimaryKey = append(t.PrimaryKey, pk[k])
	}
	return rows.Err()
}

func importUniqueKeys(ctx context.Context, db *sql.DB, t *catalog.Table) error {
	rows, err := db.QueryContext(ctx, "PRAGMA index_list("+quote(t.Name)+")")
	if err != nil {
		return err
	}
	var indexes []string
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return err
		}
		// Primary keys show up as indexes too.
		if unique != 0 && origin != "pk" && partial == 0 {
			indexes = append(indexes, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, index := range indexes {
		cols, err := indexColumns(ctx, db, index)
		if err != nil {
			return err
		}
		t.UniqueKeys = append(t.UniqueKeys, &catalog.KeyDef{Name: index, Columns: cols})
	}
	return nil
}

func indexColumns(ctx context.Context, db *sql.DB, index string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA index_info("+quote(index)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name string
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func importForeignKeys(ctx context.Context, db *sql.DB, t *catalog.Table) error {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+quote(t.Name)+")")
	if err != nil {
		return err
	}
	defer rows.Close()
	byID := map[int]*catalog.ForeignKey{}
	for rows.Next() {
		var id, seq int
		var table, from string
		var to sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return err
		}
		fk, ok := byID[id]
		if !ok {
			fk = &catalog.ForeignKey{
				Name:       fmt.Sprintf("fk_%s_%d", t.Name, id),
				References: table,
			}
			byID[id] = fk
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, from)
		// A null target means the parent's primary key.
		if to.Valid {
			fk.ReferenceColumns = append(fk.ReferenceColumns, to.String)
		}
	}
	return rows.Err()
}

// MapType maps a declared SQLite column type to a built-in type following
// SQLite's affinity rules when the name is not one we know.
func MapType(decl string) string {
	decl = strings.ToLower(strings.TrimSpace(decl))
	if k := strings.IndexByte(decl, '('); k >= 0 {
		decl = strings.TrimSpace(decl[:k])
	}
	switch decl {
	case "datetime":
		return vdb.Timestamp
	case "text":
		return vdb.String
	case "double", "double precision", "real":
		return vdb.Double
	}
	if t, ok := vdb.LookupPrimitive(decl); ok {
		return t
	}
	switch {
	case strings.Contains(decl, "int"):
		return vdb.Long
	case strings.Contains(decl, "char"), strings.Contains(decl, "clob"), strings.Contains(decl, "text"):
		return vdb.String
	case strings.Contains(decl, "blob"), decl == "":
		return vdb.Blob
	case strings.Contains(decl, "real"), strings.Contains(decl, "floa"), strings.Contains(decl, "doub"):
		return vdb.Double
	}
	return vdb.BigDecimal
}
