package validator_test

import (
	"errors"
	"testing"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/brimdata/vdb/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validateCatalog(t *testing.T, src string) (*catalog.VDB, *validator.Report) {
	t.Helper()
	v, err := catalog.Parse([]byte(src))
	require.NoError(t, err)
	return v, validator.ValidateCatalog(v, validator.Options{Logger: zaptest.NewLogger(t)})
}

func TestMissingQueryPlan(t *testing.T) {
	_, r := validateCatalog(t, `
name: shop
version: "8.0"
schemas:
- name: src
  physical: true
  tables:
  - name: orders
    columns:
    - {name: id, type: integer}
    primaryKey: [id]
- name: views
  tables:
  - name: recent
    virtual: true
    columns:
    - {name: id, type: integer}
`)
	require.Len(t, r.Items, 1)
	item := r.Items[0]
	assert.Equal(t, validator.Error, item.Severity)
	assert.Equal(t, validator.ResolveQueryPlans, item.Rule)
	assert.Equal(t, "views.recent", item.Object)
	assert.Empty(t, r.For("src.orders"))
}

func TestValidCatalog(t *testing.T) {
	_, r := validateCatalog(t, `
name: shop
version: "8.0"
schemas:
- name: src
  physical: true
  tables:
  - name: orders
    columns:
    - {name: id, type: integer}
    - {name: total, type: bigdecimal}
    primaryKey: [id]
- name: views
  tables:
  - name: big
    virtual: true
    query: SELECT id, total FROM src.orders WHERE total > 100
    columns:
    - {name: id, type: integer}
    - {name: total, type: bigdecimal}
  procedures:
  - name: bigger
    virtual: true
    params:
    - {name: minimum, type: integer}
    body: BEGIN SELECT id FROM src.orders WHERE total > minimum; END
  functions:
  - name: twice
    params:
    - {name: x, type: integer}
    returns: integer
`)
	assert.Empty(t, r.Items)
}

func TestSourceModelArtifacts(t *testing.T) {
	_, r := validateCatalog(t, `
name: mixed
version: "8.0"
schemas:
- name: src
  physical: true
  tables:
  - name: v
    virtual: true
    query: SELECT 1 AS a
    columns:
    - {name: a, type: integer}
  functions:
  - name: local
    returns: integer
    pushdown: cannot
- name: views
  tables:
  - name: t
    columns:
    - {name: a, type: integer}
  procedures:
  - name: p
    params:
    - {name: r1, type: integer, mode: return}
    - {name: r2, type: integer, mode: return}
    - {name: xs, type: integer, vararg: true}
    - {name: y, type: integer}
  functions:
  - name: remote
    returns: integer
    pushdown: required
`)
	var got []string
	for _, item := range r.Items {
		if item.Rule == validator.SourceModelArtifacts {
			got = append(got, item.Object+": "+item.Message)
		}
	}
	assert.Equal(t, []string{
		"src.v: virtual table is not allowed in source schema src",
		"src.local: function in source schema src must be pushed down",
		"views.t: physical table is not allowed in virtual schema views",
		"views.p: physical procedure is not allowed in virtual schema views",
		"views.p: declares 2 return parameters",
		"views.p: vararg parameter xs must be the last parameter",
		"views.remote: function requiring push down is not allowed in virtual schema views",
	}, got)
}

func TestCrossSchemaResolver(t *testing.T) {
	v, r := validateCatalog(t, `
name: xs
version: "8.0"
schemas:
- name: a
  physical: true
  tables:
  - name: parent
    columns:
    - {name: id, type: integer}
    primaryKey: [id]
  - name: store
    columns:
    - {name: id, type: integer}
- name: b
  physical: true
  tables:
  - name: child
    columns:
    - {name: pid, type: integer}
    - {name: other, type: integer}
    foreignKeys:
    - {name: fk_parent, columns: [pid], references: a.parent}
    - {name: fk_missing, columns: [other], references: a.nothing}
    - {name: fk_nokey, columns: [other], references: a.store}
- name: views
  tables:
  - name: cached
    virtual: true
    query: SELECT id FROM a.parent
    materialized: true
    materializedTable: a.store
    columns:
    - {name: id, type: integer}
`)
	child := v.Table("b.child")
	require.NotNil(t, child)
	assert.True(t, child.ForeignKeys[0].Resolved())
	assert.False(t, child.ForeignKeys[1].Resolved())
	assert.Same(t, v.Table("a.parent").PrimaryKeyInfo(), child.ForeignKeys[0].Info().Reference)
	assert.Same(t, v.Table("a.store"), v.Table("views.cached").MaterializedTarget())

	var got []string
	for _, item := range r.Errors() {
		got = append(got, item.Message)
	}
	assert.Equal(t, []string{
		"foreign key fk_missing references unknown table a.nothing",
		"foreign key fk_nokey matches no unique key of a.store",
	}, got)
}

func TestResolveQueryPlans(t *testing.T) {
	_, r := validateCatalog(t, `
name: plans
version: "8.0"
schemas:
- name: src
  physical: true
  tables:
  - name: g
    columns:
    - {name: a, type: integer}
    - {name: b, type: string}
- name: views
  tables:
  - name: nulls
    virtual: true
    query: SELECT a, NULL AS n FROM src.g
    columns:
    - {name: a, type: integer}
    - {name: n, type: string}
  - name: unknown
    virtual: true
    query: SELECT c FROM src.g
    columns:
    - {name: c, type: integer}
  - name: width
    virtual: true
    query: SELECT a, b FROM src.g
    columns:
    - {name: a, type: integer}
  - name: grouped
    virtual: true
    query: SELECT b, COUNT(*) AS n FROM src.g
    columns:
    - {name: b, type: string}
    - {name: n, type: integer}
  procedures:
  - name: notblock
    virtual: true
    body: SELECT a FROM src.g
`)
	assert.Equal(t, []validator.Item{{Severity: validator.Error, Rule: validator.ResolveQueryPlans, Object: "views.nulls", Message: "column n projects a null without a type"}}, r.For("views.nulls"))
	require.Len(t, r.For("views.unknown"), 1)
	assert.Contains(t, r.For("views.unknown")[0].Message, "does not resolve")
	assert.Equal(t, "query plan projects 2 columns but 1 are declared", r.For("views.width")[0].Message)
	require.Len(t, r.For("views.grouped"), 1)
	assert.Equal(t, validator.General, r.For("views.grouped")[0].Rule)
	assert.Equal(t, "procedure body is not a block", r.For("views.notblock")[0].Message)
}

func TestParseFailure(t *testing.T) {
	v, err := catalog.Parse([]byte(`
name: p
version: "8.0"
schemas:
- name: views
  tables:
  - name: v
    virtual: true
    query: whatever
    columns:
    - {name: a, type: integer}
`))
	require.NoError(t, err)
	fail := errors.New("no parser")
	r := validator.ValidateCatalog(v, validator.Options{
		Parse: func(string) (ast.Command, error) { return nil, fail },
	})
	require.Len(t, r.Items, 1)
	assert.Equal(t, "query plan does not parse: no parser", r.Items[0].Message)
}

func TestMinimalMetadata(t *testing.T) {
	_, r := validateCatalog(t, `
name: min
version: "8.0"
schemas:
- name: empty
- name: views
  tables:
  - name: bare
    virtual: true
    query: SELECT 1 AS a
`)
	var got []string
	for _, item := range r.Items {
		if item.Rule == validator.MinimalMetadata {
			got = append(got, item.Object+": "+item.Message)
		}
	}
	assert.Equal(t, []string{
		"empty: schema defines no tables, procedures or functions",
		"views.bare: virtual table declares no columns",
	}, got)
}

func TestValidateMethods(t *testing.T) {
	methods := []*function.Method{
		{Name: "twice", Schema: "s", Params: []function.Parameter{{Name: "x", Type: "integer"}}, Result: function.Parameter{Type: "integer"}},
		{Name: "twice", Schema: "s", Params: []function.Parameter{{Name: "y", Type: "integer"}}, Result: function.Parameter{Type: "integer"}},
		{Name: "bad name", Schema: "s", Result: function.Parameter{Type: "integer"}},
		{Name: "pair", Schema: "s", Params: []function.Parameter{{Name: "a", Type: "integer"}, {Name: "A", Type: "string"}}, Result: function.Parameter{Type: "string"}},
		{Name: "abs", Schema: "s", Params: []function.Parameter{{Name: "x", Type: "integer"}}, Result: function.Parameter{Type: "integer"}},
	}
	r := validator.ValidateMethods(methods, vdb.Current)
	var got []string
	for _, item := range r.Items {
		got = append(got, item.Severity.String()+" "+item.Object+": "+item.Message)
	}
	assert.Equal(t, []string{
		"ERROR s.twice: twice(integer) is defined more than once",
		`ERROR s.bad name: "bad name" is not a valid function name`,
		"ERROR s.pair: parameter A is declared more than once",
		"WARNING s.abs: abs(integer) has the same signature as a system function",
	}, got)
}
