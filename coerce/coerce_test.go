package coerce

import (
	"math/big"
	"testing"
	"time"

	"github.com/brimdata/vdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplicitConversionIsReflexive(t *testing.T) {
	for _, v := range []vdb.Version{vdb.Legacy, vdb.Current} {
		l := For(v)
		for _, typ := range vdb.Primitives() {
			assert.True(t, l.CanImplicitlyConvert(typ, typ), "%s in %s", typ, v)
			assert.True(t, l.CanImplicitlyConvert(vdb.ArrayOf(typ), vdb.ArrayOf(typ)))
		}
	}
}

func TestLossyWideningByVersion(t *testing.T) {
	assert.False(t, For(vdb.Current).CanImplicitlyConvert(vdb.Long, vdb.Double))
	assert.True(t, For(vdb.Current).CanExplicitlyConvert(vdb.Long, vdb.Double))
	assert.True(t, For(vdb.Legacy).CanImplicitlyConvert(vdb.Long, vdb.Double))
	assert.True(t, For(vdb.Current).CanImplicitlyConvert(vdb.Byte, vdb.Integer))
	assert.False(t, For(vdb.Current).CanImplicitlyConvert(vdb.Integer, vdb.Byte))
}

func TestClosureIsTransitive(t *testing.T) {
	l := For(vdb.Current)
	c := l.Closure(vdb.Byte)
	assert.Contains(t, c, vdb.BigDecimal)
	assert.Contains(t, c, vdb.String)
	assert.Contains(t, c, vdb.Clob)
	assert.NotContains(t, c, vdb.Byte)
}

func TestCommonType(t *testing.T) {
	l := For(vdb.Current)
	cases := []struct {
		in   []string
		out  string
		fail bool
	}{
		{in: []string{vdb.Integer}, out: vdb.Integer},
		{in: []string{vdb.Integer, vdb.Null}, out: vdb.Integer},
		{in: []string{vdb.Byte, vdb.Integer}, out: vdb.Integer},
		{in: []string{vdb.Integer, vdb.Byte}, out: vdb.Integer},
		{in: []string{vdb.Integer, vdb.Long, vdb.Short}, out: vdb.Long},
		{in: []string{vdb.Float, vdb.Integer}, out: vdb.Double},
		{in: []string{vdb.Date, vdb.Time}, out: vdb.Timestamp},
		{in: []string{vdb.Blob, vdb.Clob}, fail: true},
		{in: []string{vdb.Blob, vdb.Integer}, fail: true},
	}
	for _, c := range cases {
		typ, ok := l.CommonType(c.in)
		if c.fail {
			assert.False(t, ok, "%v", c.in)
			continue
		}
		require.True(t, ok, "%v", c.in)
		assert.Equal(t, c.out, typ, "%v", c.in)
	}
}

func TestCommonTypeStringIntegerOrder(t *testing.T) {
	l := For(vdb.Current)
	a, aok := l.CommonType([]string{vdb.String, vdb.Integer})
	b, bok := l.CommonType([]string{vdb.Integer, vdb.String})
	require.True(t, aok || bok)
	for _, typ := range []string{a, b} {
		if typ == "" {
			continue
		}
		assert.True(t, l.CanImplicitlyConvert(vdb.String, typ))
		assert.True(t, l.CanImplicitlyConvert(vdb.Integer, typ))
	}
}

func TestConvertConstants(t *testing.T) {
	v, err := Convert("42", vdb.String, vdb.Integer)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	_, err = Convert("300", vdb.String, vdb.Byte)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Convert("abc", vdb.String, vdb.Integer)
	assert.ErrorIs(t, err, ErrConversion)

	v, err = Convert("12.50", vdb.String, vdb.BigDecimal)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(v.(decimal.Decimal)))

	v, err = Convert("123456789012345678901234567890", vdb.String, vdb.BigInteger)
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", v.(*big.Int).String())

	v, err = Convert("2024-03-01 10:11:12", vdb.String, vdb.Date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), v)

	v, err = Convert(int32(7), vdb.Integer, vdb.String)
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}
