package semantic_test

import (
	"strings"
	"testing"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/parser"
	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/metadata"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
name: test
version: "8.0"
schemas:
- name: pm1
  physical: true
  tables:
  - name: g1
    columns:
    - {name: e1, type: string}
    - {name: e2, type: integer}
    - {name: e3, type: boolean}
    - {name: e4, type: double}
    primaryKey: [e1]
  - name: g2
    columns:
    - {name: e1, type: string}
    - {name: e2, type: integer}
    - {name: b, type: byte}
  - name: g3
    columns:
    - {name: e1, type: string}
    - {name: d, type: date}
  procedures:
  - name: sq1
    params:
    - {name: p1, type: integer}
    - {name: p2, type: string, default: "x"}
    resultSet:
    - {name: c1, type: string}
- name: pm2
  physical: true
  tables:
  - name: g1
    columns:
    - {name: e1, type: string}
`

func loadCatalog(t *testing.T, version string) metadata.Metadata {
	t.Helper()
	src := strings.Replace(testCatalog, `version: "8.0"`, `version: "`+version+`"`, 1)
	v, err := catalog.Parse([]byte(src))
	require.NoError(t, err)
	md, err := catalog.NewMetadata(v, nil)
	require.NoError(t, err)
	return md
}

func newResolver(t *testing.T) *semantic.Resolver {
	return semantic.New(loadCatalog(t, "8.0"), semantic.Options{})
}

func resolve(t *testing.T, r *semantic.Resolver, sql string) (ast.Command, error) {
	t.Helper()
	cmd, err := parser.ParseCommand(sql)
	require.NoError(t, err)
	return cmd, r.ResolveCommand(cmd)
}

func mustResolve(t *testing.T, r *semantic.Resolver, sql string) ast.Command {
	t.Helper()
	cmd, err := resolve(t, r, sql)
	require.NoError(t, err)
	return cmd
}

func TestGroupNameForms(t *testing.T) {
	r := newResolver(t)
	for _, name := range []string{"pm1.g2", "test.pm1.g2", "g2", "PM1.G2"} {
		g := &ast.GroupSymbol{Name: name}
		require.NoError(t, r.ResolveGroup(g), name)
		assert.Equal(t, "pm1.g2", g.Name, name)
		assert.NotNil(t, g.ID)
	}
	g := &ast.GroupSymbol{Name: "g1"}
	err := r.ResolveGroup(g)
	require.Error(t, err)
	assert.True(t, semantic.IsUnresolved(err))
	var serr *semantic.Error
	require.ErrorAs(t, err, &serr)
	assert.ElementsMatch(t, []string{"pm1.g1", "pm2.g1"}, serr.Candidates)
	assert.Nil(t, g.ID)

	err = r.ResolveGroup(&ast.GroupSymbol{Name: "nosuch"})
	assert.True(t, semantic.IsUnresolved(err))
}

func TestAliasedGroup(t *testing.T) {
	r := newResolver(t)
	q := mustResolve(t, r, "SELECT x.e1 FROM g2 AS x").(*ast.Query)
	g := q.From.Clauses[0].(*ast.UnaryFromClause).Group
	assert.Equal(t, "x", g.Name)
	assert.Equal(t, "pm1.g2", g.Definition)
	e := q.Select.Symbols[0].(*ast.ElementSymbol)
	assert.Equal(t, vdb.String, e.Type)
	assert.Same(t, g, e.Group)
}

func TestUnknownColumnSuggestion(t *testing.T) {
	r := newResolver(t)
	_, err := resolve(t, r, "SELECT e22 FROM pm1.g1")
	require.Error(t, err)
	assert.True(t, semantic.IsUnresolved(err))
	var serr *semantic.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "e2", serr.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "e2"?`)
}

func TestAmbiguousColumn(t *testing.T) {
	r := newResolver(t)
	_, err := resolve(t, r, "SELECT e1 FROM pm1.g1, pm1.g2")
	require.Error(t, err)
	assert.True(t, semantic.IsUnresolved(err))
	assert.ErrorContains(t, err, "ambiguous")

	mustResolve(t, r, "SELECT pm1.g1.e1 FROM pm1.g1, pm1.g2")
}

func TestDuplicateFromGroup(t *testing.T) {
	_, err := resolve(t, newResolver(t), "SELECT e3 FROM pm1.g1, pm1.g1")
	assert.True(t, semantic.IsInvalid(err))
}

func TestUnknownFunctionSuggestion(t *testing.T) {
	_, err := resolve(t, newResolver(t), "SELECT abss(e2) FROM pm1.g1")
	require.Error(t, err)
	assert.True(t, semantic.IsUnresolved(err))
	var serr *semantic.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "abs", serr.Suggestion)
}

func TestByteWidening(t *testing.T) {
	r := newResolver(t)
	q := mustResolve(t, r, "SELECT abs(b), abs(e2) FROM pm1.g2").(*ast.Query)

	f := ast.Underlying(q.Select.Symbols[0]).(*ast.Function)
	require.NotNil(t, f.Method)
	assert.Equal(t, vdb.Integer, f.Type)
	conv, ok := f.Args[0].(*ast.Function)
	require.True(t, ok, "expected an implicit conversion of the byte argument")
	assert.True(t, conv.Implicit)
	assert.Equal(t, vdb.Integer, conv.Type)

	f = ast.Underlying(q.Select.Symbols[1]).(*ast.Function)
	assert.Equal(t, vdb.Integer, f.Type)
	assert.IsType(t, &ast.ElementSymbol{}, f.Args[0])
}

func TestExplicitConversion(t *testing.T) {
	r := newResolver(t)
	q := mustResolve(t, r, "SELECT convert(e2, string), cast(e1 AS integer) FROM pm1.g1").(*ast.Query)
	assert.Equal(t, vdb.String, ast.TypeOf(q.Select.Symbols[0]))
	assert.Equal(t, vdb.Integer, ast.TypeOf(q.Select.Symbols[1]))

	_, err := resolve(t, r, "SELECT convert(d, boolean) FROM pm1.g3")
	assert.True(t, semantic.IsTypeConversion(err))
}

func TestConstantFolding(t *testing.T) {
	r := newResolver(t)
	q := mustResolve(t, r, "SELECT e1 FROM pm1.g1 WHERE e2 = '5'").(*ast.Query)
	cmp := q.Where.(*ast.Compare)
	c, ok := cmp.RHS.(*ast.Constant)
	require.True(t, ok)
	assert.Equal(t, vdb.Integer, c.Type)
	assert.Equal(t, int32(5), c.Value)

	// A literal that does not fold converts the column instead.
	q = mustResolve(t, r, "SELECT e1 FROM pm1.g1 WHERE e2 = 'five'").(*ast.Query)
	cmp = q.Where.(*ast.Compare)
	assert.Equal(t, vdb.String, ast.TypeOf(cmp.LHS))
}

func TestImplicitWidening(t *testing.T) {
	r := newResolver(t)
	q := mustResolve(t, r, "SELECT e1 FROM pm1.g1 WHERE e2 = e4").(*ast.Query)
	cmp := q.Where.(*ast.Compare)
	f, ok := cmp.LHS.(*ast.Function)
	require.True(t, ok)
	assert.True(t, f.Implicit)
	assert.Equal(t, vdb.Double, f.Type)
	assert.IsType(t, &ast.ElementSymbol{}, cmp.RHS)
}

func TestNullLiterals(t *testing.T) {
	q := mustResolve(t, newResolver(t), "SELECT NULL AS n, e1 FROM pm1.g1").(*ast.Query)
	assert.Equal(t, vdb.String, ast.TypeOf(q.Select.Symbols[0]))

	r := semantic.New(loadCatalog(t, "8.0"), semantic.Options{KeepNullTypes: true})
	q = mustResolve(t, r, "SELECT NULL AS n, e1 FROM pm1.g1").(*ast.Query)
	assert.Equal(t, vdb.Null, ast.TypeOf(q.Select.Symbols[0]))
}

func TestAggregates(t *testing.T) {
	q := mustResolve(t, newResolver(t), "SELECT COUNT(*), SUM(e2), AVG(e2), MAX(e1), SUM(e4) FROM pm1.g1 GROUP BY e3").(*ast.Query)
	types := make([]string, 0, len(q.Select.Symbols))
	for _, s := range q.Select.Symbols {
		types = append(types, ast.TypeOf(s))
	}
	assert.Equal(t, []string{vdb.Integer, vdb.Long, vdb.BigDecimal, vdb.String, vdb.Double}, types)

	_, err := resolve(t, newResolver(t), "SELECT SUM(e1) FROM pm1.g1")
	assert.True(t, semantic.IsTypeConversion(err))
}

func TestSubqueries(t *testing.T) {
	r := newResolver(t)
	_, err := resolve(t, r, "SELECT e1 FROM pm1.g1 WHERE e2 IN (SELECT d FROM pm1.g3)")
	assert.True(t, semantic.IsTypeConversion(err))

	_, err = resolve(t, r, "SELECT e1 FROM pm1.g1 WHERE e2 IN (SELECT e1, e2 FROM pm1.g2)")
	assert.True(t, semantic.IsInvalid(err))

	mustResolve(t, r, "SELECT e1 FROM pm1.g1 WHERE e2 IN (SELECT e2 FROM pm1.g2)")
	q := mustResolve(t, r, "SELECT (SELECT MAX(b) FROM pm1.g2) AS m FROM pm1.g1").(*ast.Query)
	assert.Equal(t, vdb.Byte, ast.TypeOf(q.Select.Symbols[0]))
}

func TestCorrelatedReference(t *testing.T) {
	q := mustResolve(t, newResolver(t), "SELECT e1 FROM pm1.g1 WHERE EXISTS (SELECT b FROM pm1.g2 WHERE pm1.g2.e2 = pm1.g1.e2)").(*ast.Query)
	inner := q.Where.(*ast.Exists).Command.(*ast.Query)
	cmp := inner.Where.(*ast.Compare)
	lhs := cmp.LHS.(*ast.ElementSymbol)
	rhs := cmp.RHS.(*ast.ElementSymbol)
	assert.False(t, lhs.External)
	assert.True(t, rhs.External)
	assert.Equal(t, "pm1.g1.e2", rhs.Name)
}

func TestStarExpansion(t *testing.T) {
	r := newResolver(t)
	cmd := mustResolve(t, r, "SELECT * FROM pm1.g1")
	symbols, ok := ast.ProjectedSymbols(cmd)
	require.True(t, ok)
	var names []string
	for _, s := range symbols {
		names = append(names, ast.OutputName(s))
	}
	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, names)

	cmd = mustResolve(t, r, "SELECT pm1.g2.*, g3.d FROM pm1.g2, pm1.g3")
	symbols, _ = ast.ProjectedSymbols(cmd)
	assert.Len(t, symbols, 4)

	_, err := resolve(t, r, "SELECT nosuch.* FROM pm1.g1")
	assert.True(t, semantic.IsUnresolved(err))
}

func TestUnionTyping(t *testing.T) {
	r := newResolver(t)
	sq := mustResolve(t, r, "SELECT e2 FROM pm1.g1 UNION SELECT e4 FROM pm1.g1").(*ast.SetQuery)
	left := sq.Left.(*ast.Query).Select.Symbols[0]
	alias, ok := left.(*ast.AliasSymbol)
	require.True(t, ok)
	assert.Equal(t, "e2", alias.Name)
	f := alias.Expr.(*ast.Function)
	assert.True(t, f.Implicit)
	assert.Equal(t, vdb.Double, f.Type)
	assert.Equal(t, vdb.Double, ast.TypeOf(sq.Right.(*ast.Query).Select.Symbols[0]))

	_, err := resolve(t, r, "SELECT e1, e2 FROM pm1.g1 UNION SELECT e1 FROM pm1.g2")
	assert.True(t, semantic.IsInvalid(err))
}

func TestUnionNulls(t *testing.T) {
	sq := mustResolve(t, newResolver(t), "SELECT NULL AS x FROM pm1.g1 UNION SELECT e2 FROM pm1.g1").(*ast.SetQuery)
	assert.Equal(t, vdb.Integer, ast.TypeOf(sq.Left.(*ast.Query).Select.Symbols[0]))

	sq = mustResolve(t, newResolver(t), "SELECT NULL AS x FROM pm1.g1 UNION SELECT NULL FROM pm1.g2").(*ast.SetQuery)
	assert.Equal(t, vdb.String, ast.TypeOf(sq.Left.(*ast.Query).Select.Symbols[0]))
}

func TestDerivedTable(t *testing.T) {
	q := mustResolve(t, newResolver(t), "SELECT v.total FROM (SELECT e1, e2 + 1 AS total FROM pm1.g1) AS v").(*ast.Query)
	e := q.Select.Symbols[0].(*ast.ElementSymbol)
	assert.Equal(t, vdb.Integer, e.Type)
	g := q.From.Clauses[0].(*ast.SubqueryFromClause).Group
	require.NotNil(t, g)
	assert.True(t, g.IsTempTable)
}

func TestDerivedTableAliasDoesNotHideCatalog(t *testing.T) {
	q := mustResolve(t, newResolver(t), "SELECT z FROM (SELECT 1 AS z) AS g2 WHERE EXISTS (SELECT b FROM g2)").(*ast.Query)
	inner := q.Where.(*ast.Exists).Command.(*ast.Query)
	b := inner.Select.Symbols[0].(*ast.ElementSymbol)
	assert.Equal(t, "pm1.g2.b", b.Name)
	assert.Equal(t, vdb.Byte, b.Type)
}

func TestDerivedTableEndsWithCommand(t *testing.T) {
	r := newResolver(t)
	mustResolve(t, r, "SELECT z FROM (SELECT 1 AS z) AS g3")
	q := mustResolve(t, r, "SELECT d FROM g3").(*ast.Query)
	assert.Equal(t, "pm1.g3.d", q.Select.Symbols[0].(*ast.ElementSymbol).Name)
	_, err := r.Metadata().GroupID("g3")
	assert.Error(t, err, "only the partial name lookup reaches pm1.g3")
}

func TestIdempotent(t *testing.T) {
	r := newResolver(t)
	cmd := mustResolve(t, r, "SELECT e1, abs(b) FROM pm1.g2 WHERE e2 = '1' ORDER BY e1")
	q := cmd.(*ast.Query)
	before := ast.TypeOf(q.Select.Symbols[1])
	require.NoError(t, r.ResolveCommand(cmd))
	assert.Equal(t, before, ast.TypeOf(q.Select.Symbols[1]))
	f := ast.Underlying(q.Select.Symbols[1]).(*ast.Function)
	_, nested := f.Args[0].(*ast.Function).Args[0].(*ast.Function)
	assert.False(t, nested, "second resolution must not wrap conversions again")
}

func TestResolveExpression(t *testing.T) {
	md := loadCatalog(t, "8.0")
	e, err := parser.ParseExpression("e2 + 1")
	require.NoError(t, err)
	e, err = semantic.ResolveExpression(e, md, &ast.GroupSymbol{Name: "pm1.g1"})
	require.NoError(t, err)
	assert.Equal(t, vdb.Integer, ast.TypeOf(e))
}

const pickCatalog = `
name: pick
version: "8.0"
schemas:
- name: pm1
  physical: true
  tables:
  - name: g1
    columns:
    - {name: e1, type: string}
    - {name: e2, type: integer}
- name: lib
  functions:
  - name: pick
    params: [{name: x, type: string}]
    returns: string
  - name: pick
    params: [{name: x, type: integer}]
    returns: integer
`

func pickResolver(t *testing.T) *semantic.Resolver {
	t.Helper()
	v, err := catalog.Parse([]byte(pickCatalog))
	require.NoError(t, err)
	md, err := catalog.NewMetadata(v, nil)
	require.NoError(t, err)
	return semantic.New(md, semantic.Options{})
}

func TestTargetTypeSelectsOverload(t *testing.T) {
	r := pickResolver(t)
	u := mustResolve(t, r, "UPDATE pm1.g1 SET e2 = pick(NULL), e1 = pick(NULL)").(*ast.Update)
	assert.Equal(t, "pick(integer)", u.Changes[0].Value.(*ast.Function).Method.Signature())
	assert.Equal(t, "pick(string)", u.Changes[1].Value.(*ast.Function).Method.Signature())

	q := mustResolve(t, r, "SELECT e1 FROM pm1.g1 WHERE pick(NULL) = e2").(*ast.Query)
	cmp := q.Where.(*ast.Compare)
	assert.Equal(t, "pick(integer)", cmp.LHS.(*ast.Function).Method.Signature())

	// Without a target the first of the tied overloads wins.
	q = mustResolve(t, r, "SELECT pick(NULL) FROM pm1.g1").(*ast.Query)
	assert.Equal(t, vdb.String, ast.TypeOf(q.Select.Symbols[0]))
}
