// Package catalog is an in-memory design-time catalog: a VDB of schemas
// holding tables, procedures and functions, loaded from YAML.  It
// implements metadata.Metadata for the resolver and exposes the full model
// to the validator.
package catalog

import (
	"slices"
	"strings"

	"github.com/brimdata/vdb/metadata"
)

type VDB struct {
	Name          string    `yaml:"name"`
	Version       string    `yaml:"version,omitempty"`
	UseOutputName bool      `yaml:"useOutputName,omitempty"`
	Schemas       []*Schema `yaml:"schemas"`
}

func (v *VDB) Schema(name string) *Schema {
	for _, s := range v.Schemas {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return nil
}

// Table looks up a table by its schema qualified name.
func (v *VDB) Table(full string) *Table {
	schema, name, ok := strings.Cut(full, ".")
	if !ok {
		return nil
	}
	if s := v.Schema(schema); s != nil {
		return s.Table(name)
	}
	return nil
}

type Schema struct {
	Name string `yaml:"name"`
	// Physical schemas describe a data source; the rest are virtual.
	Physical   bool         `yaml:"physical,omitempty"`
	Tables     []*Table     `yaml:"tables,omitempty"`
	Procedures []*Procedure `yaml:"procedures,omitempty"`
	Functions  []*Function  `yaml:"functions,omitempty"`

	vdb *VDB
}

func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

func (s *Schema) Procedure(name string) *Procedure {
	for _, p := range s.Procedures {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

func (s *Schema) IsEmpty() bool {
	return len(s.Tables) == 0 && len(s.Procedures) == 0 && len(s.Functions) == 0
}

type Table struct {
	Name    string    `yaml:"name"`
	Virtual bool      `yaml:"virtual,omitempty"`
	Query   string    `yaml:"query,omitempty"`
	Columns []*Column `yaml:"columns,omitempty"`

	PrimaryKey  []string      `yaml:"primaryKey,omitempty"`
	UniqueKeys  []*KeyDef     `yaml:"uniqueKeys,omitempty"`
	ForeignKeys []*ForeignKey `yaml:"foreignKeys,omitempty"`

	Materialized bool `yaml:"materialized,omitempty"`
	// MaterializedTable names the physical table backing a materialized
	// view.  It may live in another schema.
	MaterializedTable string `yaml:"materializedTable,omitempty"`

	schema       *Schema
	keys         []*metadata.Key
	materialized *Table
}

func (t *Table) FullName() string {
	return t.schema.Name + "." + t.Name
}

func (t *Table) String() string {
	return t.FullName()
}

func (t *Table) Schema() *Schema {
	return t.schema
}

func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Keys returns the primary key, if any, followed by the unique keys.
func (t *Table) Keys() []*metadata.Key {
	return t.keys
}

func (t *Table) PrimaryKeyInfo() *metadata.Key {
	if len(t.keys) > 0 && t.keys[0].Primary {
		return t.keys[0]
	}
	return nil
}

// MaterializedTarget returns the linked backing table of a materialized
// view.
func (t *Table) MaterializedTarget() *Table {
	return t.materialized
}

func (t *Table) SetMaterializedTarget(target *Table) {
	t.materialized = target
}

// FindKey returns a unique key of t matching the named columns exactly or,
// failing that, one whose columns are a subset of them.  With no column
// names the primary key is returned if it has arity n.
func (t *Table) FindKey(columns []string, n int) *metadata.Key {
	if len(columns) == 0 {
		if pk := t.PrimaryKeyInfo(); pk != nil && len(pk.Columns) == n {
			return pk
		}
		return nil
	}
	names := func(k *metadata.Key) []string {
		var out []string
		for _, id := range k.Columns {
			out = append(out, strings.ToLower(metadata.ShortName(id.FullName())))
		}
		return out
	}
	want := make([]string, 0, len(columns))
	for _, c := range columns {
		want = append(want, strings.ToLower(c))
	}
	for _, k := range t.keys {
		have := names(k)
		if len(have) == len(want) && subset(have, want) {
			return k
		}
	}
	for _, k := range t.keys {
		if subset(names(k), want) {
			return k
		}
	}
	return nil
}

func subset(a, b []string) bool {
	for _, s := range a {
		if !slices.Contains(b, s) {
			return false
		}
	}
	return true
}

type Column struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Nullable *bool   `yaml:"nullable,omitempty"`
	Default  *string `yaml:"default,omitempty"`

	parent metadata.ID
}

func (c *Column) FullName() string {
	return c.parent.FullName() + "." + c.Name
}

func (c *Column) String() string {
	return c.FullName()
}

func (c *Column) IsNullable() bool {
	return c.Nullable == nil || *c.Nullable
}

type KeyDef struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

type ForeignKey struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
	// References is the referenced table, qualified when it lives in
	// another schema.
	References       string   `yaml:"references"`
	ReferenceColumns []string `yaml:"referenceColumns,omitempty"`

	key *metadata.ForeignKey
}

func (f *ForeignKey) Info() *metadata.ForeignKey {
	return f.key
}

func (f *ForeignKey) Resolved() bool {
	return f.key != nil && f.key.Reference != nil
}

// Link records the unique key this foreign key refers to.
func (f *ForeignKey) Link(k *metadata.Key) {
	f.key.Reference = k
}

type Procedure struct {
	Name      string    `yaml:"name"`
	Virtual   bool      `yaml:"virtual,omitempty"`
	Body      string    `yaml:"body,omitempty"`
	Params    []*Param  `yaml:"params,omitempty"`
	ResultSet []*Column `yaml:"resultSet,omitempty"`

	schema *Schema
	info   *metadata.Procedure
}

func (p *Procedure) FullName() string {
	return p.schema.Name + "." + p.Name
}

func (p *Procedure) String() string {
	return p.FullName()
}

func (p *Procedure) Schema() *Schema {
	return p.schema
}

func (p *Procedure) Info() *metadata.Procedure {
	return p.info
}

type Param struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Mode     string  `yaml:"mode,omitempty"`
	Default  *string `yaml:"default,omitempty"`
	Vararg   bool    `yaml:"vararg,omitempty"`
	Nullable *bool   `yaml:"nullable,omitempty"`

	parent metadata.ID
}

func (p *Param) FullName() string {
	return p.parent.FullName() + "." + p.Name
}

func (p *Param) String() string {
	return p.FullName()
}

type Function struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category,omitempty"`
	Params   []*Param `yaml:"params,omitempty"`
	Returns  string   `yaml:"returns"`
	// PushDown is one of "allowed" (the default), "required" or "cannot".
	PushDown      string `yaml:"pushdown,omitempty"`
	Deterministic *bool  `yaml:"deterministic,omitempty"`

	schema *Schema
}

func (f *Function) FullName() string {
	return f.schema.Name + "." + f.Name
}

func (f *Function) Schema() *Schema {
	return f.schema
}
