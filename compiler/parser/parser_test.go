package parser_test

import (
	"testing"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/parser"
	"github.com/brimdata/vdb/compiler/sfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each command should render back to itself.
func TestRoundTrip(t *testing.T) {
	for _, sql := range []string{
		"SELECT a, b AS c FROM t WHERE a = 1 OR (b > 2 AND c = 3)",
		"SELECT DISTINCT t.a FROM s.t AS x INNER JOIN u ON x.a = u.a AND x.b = u.b",
		"SELECT * FROM a LEFT OUTER JOIN b ON a.x = b.x, c",
		"SELECT g.* FROM g ORDER BY 1 DESC, b LIMIT 5, 10",
		"SELECT a FROM t UNION ALL SELECT b FROM u ORDER BY a",
		"SELECT a FROM t WHERE a IN (SELECT b FROM u) AND NOT EXISTS (SELECT c FROM v)",
		"SELECT convert(a, long), cast(b AS string) FROM t",
		"SELECT CASE a WHEN 1 THEN 'one' ELSE 'many' END AS n FROM t",
		"SELECT COUNT(*), SUM(DISTINCT a) FROM t GROUP BY b HAVING COUNT(*) > 1",
		"SELECT (a + (b * 2)) FROM t WHERE c LIKE 'x%' ESCAPE '\\' AND d BETWEEN 1 AND 2",
		"SELECT a FROM (SELECT a FROM t) AS x WHERE a = ANY (SELECT b FROM u)",
		"INSERT INTO t (a, b) VALUES (1, ?)",
		"INSERT INTO #tmp SELECT a FROM t",
		"UPDATE t SET a = 1, b = 'x' WHERE c IS NOT NULL",
		"DELETE FROM t WHERE a <> 2",
		"EXEC p(1, y => 'z')",
		"EXECUTE IMMEDIATE 'select 1' AS x integer INTO #t USING a = 1",
		"CREATE LOCAL TEMPORARY TABLE #t (a integer NOT NULL, b string, PRIMARY KEY (a))",
		"SELECT {d '2024-02-29'}, X, -5, 1.5 FROM t",
	} {
		cmd, err := parser.ParseCommand(sql)
		require.NoError(t, err, sql)
		assert.Equal(t, sql, sfmt.Command(cmd))
	}
}

func TestExpressionSymbolNames(t *testing.T) {
	cmd, err := parser.ParseCommand("SELECT a, a + 1, b x FROM t")
	require.NoError(t, err)
	syms := cmd.(*ast.Query).Select.Symbols
	require.Len(t, syms, 3)
	assert.IsType(t, &ast.ElementSymbol{}, syms[0])
	assert.Equal(t, "expr2", syms[1].(*ast.ExpressionSymbol).Name)
	assert.Equal(t, "x", syms[2].(*ast.AliasSymbol).Name)
}

func TestLiterals(t *testing.T) {
	e, err := parser.ParseExpression("3000000000")
	require.NoError(t, err)
	assert.Equal(t, vdb.Long, e.(*ast.Constant).Type)
	e, err = parser.ParseExpression("99999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, vdb.BigInteger, e.(*ast.Constant).Type)
	e, err = parser.ParseExpression("NULL")
	require.NoError(t, err)
	assert.Equal(t, vdb.Null, e.(*ast.Constant).Type)
	e, err = parser.ParseExpression("'it''s'")
	require.NoError(t, err)
	assert.Equal(t, "it's", e.(*ast.Constant).Value)
}

func TestParenthesizedCriteria(t *testing.T) {
	c, err := parser.ParseCriteria("(a + 1) > 2 AND (b = 1 OR c = 2)")
	require.NoError(t, err)
	compound := c.(*ast.Compound)
	require.Len(t, compound.Criteria, 2)
	assert.IsType(t, &ast.Compare{}, compound.Criteria[0])
	assert.Equal(t, ast.Or, compound.Criteria[1].(*ast.Compound).Op)
}

func TestProcedure(t *testing.T) {
	cmd, err := parser.ParseCommand(`CREATE VIRTUAL PROCEDURE
BEGIN
    DECLARE integer VARIABLES.x = 1;
    LOOP ON (SELECT a FROM t) AS c
    BEGIN
        IF(c.a > x)
        BEGIN
            x = c.a;
        END
        ELSE
        BEGIN
            CONTINUE;
        END
    END
    SELECT x;
END`)
	require.NoError(t, err)
	cp := cmd.(*ast.CreateProcedure)
	require.Len(t, cp.Block.Statements, 3)
	loop := cp.Block.Statements[1].(*ast.Loop)
	assert.Equal(t, "c", loop.Cursor)
	ifs := loop.Block.Statements[0].(*ast.If)
	assert.IsType(t, &ast.Assignment{}, ifs.Then.Statements[0])
	assert.Equal(t, "CONTINUE", ifs.Else.Statements[0].(*ast.Branching).Mode)
}

func TestErrorPosition(t *testing.T) {
	_, err := parser.ParseCommand("SELECT a\nFROM t WHERE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2, column 13")

	_, err = parser.ParseCommand("SELECT cast(a AS nosuch) FROM t")
	assert.ErrorContains(t, err, `unknown type "nosuch"`)

	_, err = parser.ParseCommand("SELECT 'open")
	assert.ErrorContains(t, err, "unterminated")
}

func TestIdentifiersComposed(t *testing.T) {
	// "cafe" followed by a combining acute accent.
	e, err := parser.ParseExpression("cafe\u0301.x")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9.x", e.(*ast.ElementSymbol).Name)
	e, err = parser.ParseExpression("\"cafe\u0301\"")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", e.(*ast.ElementSymbol).Name)
}
