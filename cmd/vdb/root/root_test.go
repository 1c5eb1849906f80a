package root_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/brimdata/vdb/cli"
	"github.com/brimdata/vdb/cmd/vdb/root"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := root.New()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGolden(t *testing.T) {
	cases := []struct {
		name string
		args []string
		fail bool
	}{
		{"resolve-text", []string{"--catalog", "testdata/parts.yaml", "resolve", "SELECT e2 + 1 FROM pm1.g1 WHERE e1 = 5"}, false},
		{"resolve-json", []string{"--catalog", "testdata/parts.yaml", "--format", "json", "resolve", "--demand", "-c", "SELECT x.e1, e4 FROM pm1.g1 AS x WHERE e2 = e4"}, false},
		{"resolve-validate", []string{"--catalog", "testdata/parts.yaml", "resolve", "--validate", "SELECT e1, MAX(e2) FROM pm1.g1"}, true},
		{"validate-text", []string{"validate", "testdata/parts.yaml", "testdata/shop.yaml"}, true},
		{"keys-cross-schema", []string{"--catalog", "testdata/shop.yaml", "keys", "SELECT amount FROM billing.lineitems INNER JOIN src.orders ON orders.id = lineitems.order_id"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := run(t, c.args...)
			if c.fail {
				require.ErrorIs(t, err, cli.ErrInvalid)
			} else {
				require.NoError(t, err)
			}
			golden(t).Assert(t, c.name, []byte(out))
		})
	}
}

func TestResolveErrorLocation(t *testing.T) {
	_, err := run(t, "--catalog", "testdata/parts.yaml", "resolve", "SELECT e22 FROM pm1.g1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "e22" not found; did you mean "e2"?`)
}

func TestNoCatalog(t *testing.T) {
	t.Setenv("VDB_CATALOG", "")
	_, err := run(t, "resolve", "SELECT 1")
	assert.ErrorContains(t, err, "catalog not specified")
}

func TestBadFormat(t *testing.T) {
	_, err := run(t, "--catalog", "testdata/parts.yaml", "--format", "xml", "resolve", "SELECT 1")
	assert.ErrorContains(t, err, `invalid format "xml"`)
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	out, err := run(t, "--catalog", "testdata/parts.yaml", "-o", path, "resolve", "SELECT e1 FROM pm1.g2")
	require.NoError(t, err)
	assert.Empty(t, out)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT pm1.g2.e1 FROM pm1.g2\ne1 string\n", string(b))
}

func TestImportSQLiteMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	// An empty file is a valid SQLite database without tables.
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	out, err := run(t, "--catalog", "testdata/parts.yaml", "import-sqlite", "--schema", "pm2", path)
	require.NoError(t, err)
	v, err := catalog.Parse([]byte(out))
	require.NoError(t, err)
	require.Len(t, v.Schemas, 2)
	assert.Equal(t, "parts", v.Name)
	assert.True(t, v.Schema("pm2").IsEmpty())
	assert.NotNil(t, v.Table("pm1.g1"))
}
