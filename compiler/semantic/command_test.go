package semantic_test

import (
	"testing"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/parser"
	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata"
	"github.com/brimdata/vdb/metadata/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testID string

func (i testID) FullName() string { return string(i) }

func TestResolveGroupOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	md := mock.NewMockMetadata(ctrl)
	md.EXPECT().Version().Return(vdb.Current).AnyTimes()
	md.EXPECT().Functions().Return(function.SystemLibrary(vdb.Current)).AnyTimes()
	md.EXPECT().GroupID("pm1.g1").Return(testID("pm1.g1"), nil).Times(1)
	md.EXPECT().IsProcedure("pm1.g1").Return(false).Times(1)
	md.EXPECT().UseOutputName().Return(false).Times(1)
	md.EXPECT().IsTempTable(testID("pm1.g1")).Return(false).Times(1)

	r := semantic.New(md, semantic.Options{})
	g := &ast.GroupSymbol{Name: "pm1.g1"}
	require.NoError(t, r.ResolveGroup(g))
	require.NoError(t, r.ResolveGroup(g))
	assert.Equal(t, testID("pm1.g1"), g.ID)
}

func TestGroupIDOfProcedure(t *testing.T) {
	ctrl := gomock.NewController(t)
	md := mock.NewMockMetadata(ctrl)
	md.EXPECT().Version().Return(vdb.Current).AnyTimes()
	md.EXPECT().Functions().Return(function.SystemLibrary(vdb.Current)).AnyTimes()
	md.EXPECT().GroupID("pm1.sq1").Return(testID("pm1.sq1"), nil).Times(1)
	md.EXPECT().IsProcedure("pm1.sq1").Return(true).Times(1)
	md.EXPECT().StoredProcedure("pm1.sq1").Return(&metadata.Procedure{
		ID:        testID("pm1.sq1"),
		Name:      "pm1.sq1",
		ResultSet: []*metadata.ResultColumn{{ID: testID("pm1.sq1.e1"), Type: vdb.String}},
	}, nil).AnyTimes()
	md.EXPECT().UseOutputName().Return(false).Times(1)
	md.EXPECT().IsTempTable(testID("pm1.sq1")).Return(false).Times(1)
	md.EXPECT().FromCache(testID("pm1.sq1"), gomock.Any()).Return(nil, false).Times(1)
	md.EXPECT().AddToCache(testID("pm1.sq1"), gomock.Any(), gomock.Any()).Times(1)

	r := semantic.New(md, semantic.Options{})
	g := &ast.GroupSymbol{Name: "pm1.sq1"}
	require.NoError(t, r.ResolveGroup(g))
	assert.True(t, g.IsProcedure)
	info, err := r.GroupInfo(g)
	require.NoError(t, err)
	require.Len(t, info.Symbols, 1)
	assert.Equal(t, vdb.String, info.Symbols[0].Type)
}

func TestCatalogFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	md := mock.NewMockMetadata(ctrl)
	md.EXPECT().Version().Return(vdb.Current).AnyTimes()
	md.EXPECT().Functions().Return(function.SystemLibrary(vdb.Current)).AnyTimes()
	md.EXPECT().GroupID("g").Return(nil, assert.AnError).Times(1)

	r := semantic.New(md, semantic.Options{})
	err := r.ResolveGroup(&ast.GroupSymbol{Name: "g"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestOrderByOutputNames(t *testing.T) {
	r := newResolver(t)
	_, err := resolve(t, r, "SELECT e1 AS c, e2 AS c FROM pm1.g1 ORDER BY c")
	require.Error(t, err)
	assert.True(t, semantic.IsUnresolved(err))
	var serr *semantic.Error
	require.ErrorAs(t, err, &serr)
	assert.Len(t, serr.Candidates, 2)

	q := mustResolve(t, r, "SELECT e1 AS c, e1 AS c FROM pm1.g1 ORDER BY c").(*ast.Query)
	assert.Equal(t, 0, q.OrderBy.Items[0].Position)

	q = mustResolve(t, r, "SELECT e1, e2 AS x FROM pm1.g1 ORDER BY x DESC, e3").(*ast.Query)
	assert.Equal(t, 1, q.OrderBy.Items[0].Position)
	assert.Equal(t, -1, q.OrderBy.Items[1].Position)
}

func TestOrderByPosition(t *testing.T) {
	r := newResolver(t)
	for _, sql := range []string{
		"SELECT e1, e2 FROM pm1.g1 ORDER BY 0",
		"SELECT e1, e2 FROM pm1.g1 ORDER BY 3",
	} {
		_, err := resolve(t, r, sql)
		assert.True(t, semantic.IsInvalid(err), sql)
	}
	q := mustResolve(t, r, "SELECT e1, e2 FROM pm1.g1 ORDER BY 2").(*ast.Query)
	assert.Equal(t, 1, q.OrderBy.Items[0].Position)
}

func TestOrderByDistinct(t *testing.T) {
	r := newResolver(t)
	_, err := resolve(t, r, "SELECT DISTINCT e1 FROM pm1.g1 ORDER BY e2")
	assert.True(t, semantic.IsInvalid(err))

	_, err = resolve(t, r, "SELECT e1 FROM pm1.g1 UNION SELECT e1 FROM pm1.g2 ORDER BY e2")
	assert.True(t, semantic.IsInvalid(err))

	sq := mustResolve(t, r, "SELECT e1 FROM pm1.g1 UNION SELECT e1 FROM pm1.g2 ORDER BY pm1.g1.e1").(*ast.SetQuery)
	assert.Equal(t, 0, sq.OrderBy.Items[0].Position)
}

func TestLegacyOrdinal(t *testing.T) {
	wrapped := func() *ast.Query {
		cmd, err := parser.ParseCommand("SELECT e1, e2 FROM pm1.g1 ORDER BY e1")
		require.NoError(t, err)
		q := cmd.(*ast.Query)
		q.OrderBy.Items[0].Expr = &ast.ExpressionSymbol{
			Name: "expr1",
			Expr: &ast.Constant{Value: int32(2), Type: vdb.Integer},
		}
		return q
	}
	legacy := semantic.New(loadCatalog(t, "7.7"), semantic.Options{})
	q := wrapped()
	require.NoError(t, legacy.ResolveCommand(q))
	assert.Equal(t, 1, q.OrderBy.Items[0].Position)

	q = wrapped()
	require.NoError(t, newResolver(t).ResolveCommand(q))
	assert.Equal(t, -1, q.OrderBy.Items[0].Position)
}

func TestExec(t *testing.T) {
	r := newResolver(t)
	sp := mustResolve(t, r, "EXEC sq1(1)").(*ast.StoredProcedure)
	require.NotNil(t, sp.Procedure)
	require.Len(t, sp.Params, 2)
	assert.Equal(t, 1, sp.Params[0].Index)
	assert.False(t, sp.Params[0].UsingDefault)
	assert.True(t, sp.Params[1].UsingDefault)
	assert.Equal(t, "x", sp.Params[1].Expr.(*ast.Constant).Value)
	require.NotNil(t, sp.Group)
	assert.True(t, sp.Group.IsProcedure)

	sp = mustResolve(t, r, "EXEC sq1(p2 => 'y', p1 => '7')").(*ast.StoredProcedure)
	for _, p := range sp.Params {
		if p.Name == "p1" {
			assert.Equal(t, int32(7), p.Expr.(*ast.Constant).Value)
			assert.Equal(t, 1, p.Index)
		}
	}

	for _, sql := range []string{
		"EXEC sq1()",
		"EXEC sq1(p1 => 1, 'a')",
		"EXEC sq1(1, 'a', 'b')",
		"EXEC sq1(p1 => 1, p1 => 2)",
	} {
		_, err := resolve(t, r, sql)
		assert.True(t, semantic.IsInvalid(err), sql)
	}

	_, err := resolve(t, r, "EXEC sq1(p11 => 1)")
	require.Error(t, err)
	var serr *semantic.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, semantic.UnresolvedSymbol, serr.Kind)
	assert.Equal(t, "p1", serr.Suggestion)

	_, err = resolve(t, r, "EXEC nosuch(1)")
	assert.True(t, semantic.IsUnresolved(err))
}

const loopProc = `CREATE VIRTUAL PROCEDURE
BEGIN
    DECLARE integer VARIABLES.x = 1;
    LOOP ON (SELECT e2 FROM pm1.g1) AS c
    BEGIN
        IF(c.e2 > x)
        BEGIN
            x = c.e2;
        END
        ELSE
        BEGIN
            CONTINUE;
        END
    END
    SELECT x;
END`

func TestProcedureBlock(t *testing.T) {
	r := newResolver(t)
	cp := mustResolve(t, r, loopProc).(*ast.CreateProcedure)
	q := cp.Block.Statements[2].(*ast.CommandStatement).Command.(*ast.Query)
	x := q.Select.Symbols[0].(*ast.ElementSymbol)
	assert.Equal(t, vdb.Integer, x.Type)
	assert.Equal(t, "VARIABLES.x", x.Name)

	// The cursor group does not outlive its loop.
	_, err := r.Metadata().GroupID("c")
	assert.Error(t, err)
}

func TestProcedureErrors(t *testing.T) {
	r := newResolver(t)
	for _, sql := range []string{
		"BEGIN BREAK; END",
		"BEGIN LEAVE; END",
		"BEGIN LEAVE nosuch; END",
		"BEGIN DECLARE integer VARIABLES.x; DECLARE string VARIABLES.x; END",
		"BEGIN DECLARE integer other.x; END",
		"BEGIN l: BEGIN l: BEGIN END END END",
	} {
		_, err := resolve(t, r, sql)
		assert.True(t, semantic.IsInvalid(err), sql)
	}
	mustResolve(t, r, "BEGIN l: BEGIN WHILE (1 = 1) BEGIN LEAVE l; END END END")
	mustResolve(t, r, "BEGIN DECLARE integer VARIABLES.x; BEGIN DECLARE string VARIABLES.x; END END")

	_, err := resolve(t, r, "BEGIN DECLARE integer VARIABLES.x = 'abc'; END")
	assert.Error(t, err)
}

func TestDynamicInto(t *testing.T) {
	r := newResolver(t)
	d := mustResolve(t, r, "EXECUTE IMMEDIATE 'SELECT 1' AS a integer, b string INTO #d").(*ast.DynamicCommand)
	assert.NotNil(t, d.AsColumns[0].ID)
	_, err := r.Metadata().GroupID("#d")
	require.NoError(t, err)

	q := mustResolve(t, r, "SELECT a, b FROM #d").(*ast.Query)
	assert.Equal(t, vdb.Integer, ast.TypeOf(q.Select.Symbols[0]))

	_, err = resolve(t, r, "EXECUTE IMMEDIATE 'SELECT 1' INTO #e")
	assert.True(t, semantic.IsInvalid(err))

	_, err = resolve(t, r, "EXECUTE IMMEDIATE 'SELECT 1' AS a integer, a string")
	assert.True(t, semantic.IsInvalid(err))

	_, err = resolve(t, r, "EXECUTE IMMEDIATE 'SELECT 1' AS a date INTO pm1.g2")
	assert.True(t, semantic.IsInvalid(err))
}

func TestDynamicIntoElementFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	md := mock.NewMockMetadata(ctrl)
	md.EXPECT().Version().Return(vdb.Current).AnyTimes()
	md.EXPECT().Functions().Return(function.SystemLibrary(vdb.Current)).AnyTimes()
	md.EXPECT().VDBName().Return("vdb").AnyTimes()
	md.EXPECT().GroupID("pm1.g2").Return(testID("pm1.g2"), nil).AnyTimes()
	md.EXPECT().IsProcedure(gomock.Any()).Return(false).AnyTimes()
	md.EXPECT().UseOutputName().Return(false).AnyTimes()
	md.EXPECT().IsTempTable(gomock.Any()).Return(false).AnyTimes()
	md.EXPECT().FromCache(gomock.Any(), gomock.Any()).Return(nil, false).AnyTimes()
	md.EXPECT().AddToCache(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	md.EXPECT().ElementType(testID("pm1.g2.e1")).Return(vdb.Integer, nil).AnyTimes()
	// The element list is read once to check the AS clause and again to
	// bind its columns.
	gomock.InOrder(
		md.EXPECT().ElementIDs(testID("pm1.g2")).Return([]metadata.ID{testID("pm1.g2.e1")}, nil),
		md.EXPECT().ElementIDs(testID("pm1.g2")).Return(nil, assert.AnError),
	)

	cmd, err := parser.ParseCommand("EXECUTE IMMEDIATE 'SELECT 1' AS a integer INTO pm1.g2")
	require.NoError(t, err)
	err = semantic.New(md, semantic.Options{}).ResolveCommand(cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, cmd.(*ast.DynamicCommand).AsColumns[0].ID)
}

func TestDynamicUsing(t *testing.T) {
	d := mustResolve(t, newResolver(t), "EXECUTE IMMEDIATE 'SELECT DVARS.v' AS a integer USING v = 1, w = NULL").(*ast.DynamicCommand)
	require.Len(t, d.Using, 2)
	assert.Equal(t, vdb.Integer, d.Using[0].Column.Type)
	assert.Equal(t, vdb.String, d.Using[1].Column.Type)
}

func TestInsertTempTable(t *testing.T) {
	r := newResolver(t)
	ins := mustResolve(t, r, "INSERT INTO #tmp (a, b) VALUES (1, 'x')").(*ast.Insert)
	assert.True(t, ins.Group.IsTempTable)

	q := mustResolve(t, r, "SELECT a, b FROM #tmp").(*ast.Query)
	assert.Equal(t, vdb.Integer, ast.TypeOf(q.Select.Symbols[0]))
	assert.Equal(t, vdb.String, ast.TypeOf(q.Select.Symbols[1]))

	ins = mustResolve(t, r, "INSERT INTO #copy SELECT e1, e2 FROM pm1.g1").(*ast.Insert)
	require.Len(t, ins.Columns, 2)
	assert.Equal(t, vdb.Integer, ins.Columns[1].Type)

	_, err := resolve(t, r, "INSERT INTO #bad (a, a) VALUES (1, 2)")
	assert.True(t, semantic.IsInvalid(err))
}

func TestInsertConversions(t *testing.T) {
	r := newResolver(t)
	ins := mustResolve(t, r, "INSERT INTO pm1.g1 (e1, e2) VALUES ('a', '3')").(*ast.Insert)
	assert.Equal(t, int32(3), ins.Values[1].(*ast.Constant).Value)

	_, err := resolve(t, r, "INSERT INTO pm1.g1 (e1, e2) SELECT e1 FROM pm1.g2")
	assert.True(t, semantic.IsInvalid(err))

	ins = mustResolve(t, r, "INSERT INTO pm1.g1 (e4) SELECT e2 FROM pm1.g2").(*ast.Insert)
	assert.Equal(t, vdb.Double, ast.TypeOf(ins.Query.(*ast.Query).Select.Symbols[0]))
}

func TestUpdateDelete(t *testing.T) {
	r := newResolver(t)
	u := mustResolve(t, r, "UPDATE pm1.g1 SET e2 = '4' WHERE e1 = 'a'").(*ast.Update)
	assert.Equal(t, int32(4), u.Changes[0].Value.(*ast.Constant).Value)

	_, err := resolve(t, r, "UPDATE pm1.g1 SET nosuch = 1")
	assert.True(t, semantic.IsUnresolved(err))

	mustResolve(t, r, "DELETE FROM pm1.g2 WHERE b IS NULL")
}

func TestCreateTempTable(t *testing.T) {
	r := newResolver(t)
	mustResolve(t, r, "CREATE LOCAL TEMPORARY TABLE #t (a integer, b string, PRIMARY KEY (a))")
	q := mustResolve(t, r, "SELECT a FROM #t").(*ast.Query)
	assert.Equal(t, vdb.Integer, ast.TypeOf(q.Select.Symbols[0]))
	keys, err := r.Metadata().UniqueKeys(q.From.Clauses[0].(*ast.UnaryFromClause).Group.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.True(t, keys[0].Primary)

	_, err = resolve(t, r, "CREATE LOCAL TEMPORARY TABLE #t (a integer)")
	assert.True(t, semantic.IsInvalid(err))

	_, err = resolve(t, r, "CREATE LOCAL TEMPORARY TABLE #u (a integer, PRIMARY KEY (z))")
	assert.True(t, semantic.IsUnresolved(err))
	_, err = r.Metadata().GroupID("#u")
	assert.Error(t, err)
}
