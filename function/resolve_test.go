package function

import (
	"testing"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestResolver(methods ...*Method) *Resolver {
	lib := NewLibrary(methods...).Merge(conversionsOnly(vdb.Current))
	return NewResolver(lib, coerce.For(vdb.Current))
}

func conversionsOnly(v vdb.Version) *Library {
	return NewLibrary(SystemLibrary(v).Lookup(Convert)...)
}

func TestExactMatchNeedsNoConversions(t *testing.T) {
	r := NewResolver(SystemLibrary(vdb.Current), coerce.For(vdb.Current))
	m, convs, err := r.ResolveConversions("abs", "", []Argument{{Type: vdb.Integer}}, false)
	require.NoError(t, err)
	assert.Nil(t, convs)
	assert.Equal(t, "abs(integer)", m.Signature())
}

func TestByteWidensToInteger(t *testing.T) {
	for _, order := range [][]string{{vdb.Integer, vdb.Long}, {vdb.Long, vdb.Integer}} {
		r := newTestResolver(
			fn(CategoryNumeric, "abs", order[0], order[0]),
			fn(CategoryNumeric, "abs", order[1], order[1]),
		)
		m, convs, err := r.ResolveConversions("abs", "", []Argument{{Type: vdb.Byte}}, false)
		require.NoError(t, err)
		assert.Equal(t, vdb.Integer, m.Result.Type)
		require.Len(t, convs, 1)
		require.NotNil(t, convs[0])
		assert.Equal(t, vdb.Byte, convs[0].Params[0].Type)
		assert.Equal(t, vdb.Integer, convs[0].Result.Type)
	}
}

func TestExplicitConversionOnlyForConstants(t *testing.T) {
	r := NewResolver(SystemLibrary(vdb.Current), coerce.For(vdb.Current))
	m, convs, err := r.ResolveConversions("abs", "", []Argument{{Type: vdb.String, Constant: true, Value: "5"}}, false)
	require.NoError(t, err)
	assert.Equal(t, "abs(integer)", m.Signature())
	require.NotNil(t, convs[0])

	_, _, err = r.ResolveConversions("abs", "", []Argument{{Type: vdb.String, Constant: true, Value: "five"}}, false)
	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.False(t, rerr.Ambiguous)

	_, _, err = r.ResolveConversions("abs", "", []Argument{{Type: vdb.String}}, false)
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Candidates, "abs(integer)")
}

func TestAmbiguousOverload(t *testing.T) {
	r := newTestResolver(
		fn(CategoryMisc, "f", vdb.Clob, vdb.Clob),
		fn(CategoryMisc, "f", vdb.XML, vdb.XML),
	)
	_, _, err := r.ResolveConversions("f", "", []Argument{{Type: vdb.String, Constant: true, Value: "<a/>"}}, false)
	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.True(t, rerr.Ambiguous)
	assert.ElementsMatch(t, []string{"f(clob)", "f(xml)"}, rerr.Candidates)
}

// The tie break decides position by position and the last position with
// an opinion wins, so these mirror-image overloads do not come out
// ambiguous.  This is long-standing behavior that callers depend on.
func TestTieBreakLastPositionWins(t *testing.T) {
	r := newTestResolver(
		fn(CategoryMisc, "f", vdb.Integer, vdb.Integer, vdb.Long),
		fn(CategoryMisc, "f", vdb.Integer, vdb.Long, vdb.Integer),
	)
	m, convs, err := r.ResolveConversions("f", "", []Argument{{Type: vdb.Byte}, {Type: vdb.Byte}}, false)
	require.NoError(t, err)
	assert.Equal(t, "f(long, integer)", m.Signature())
	assert.Len(t, convs, 2)
}

func TestReturnTypeHint(t *testing.T) {
	r := newTestResolver(
		fn(CategoryMisc, "g", vdb.Integer, vdb.Integer),
		fn(CategoryMisc, "g", vdb.String, vdb.String),
	)
	m, convs, err := r.ResolveConversions("g", vdb.String, []Argument{{Type: vdb.Null}}, true)
	require.NoError(t, err)
	assert.Equal(t, "g(string)", m.Signature())
	require.NotNil(t, convs[0])
	assert.Equal(t, vdb.String, convs[0].Result.Type)
}

func TestVarargArrayTailIsExempt(t *testing.T) {
	r := newTestResolver(fn(CategoryMisc, "h", vdb.String, vdb.String, vdb.String+"..."))
	m, convs, err := r.ResolveConversions("h", "", []Argument{{Type: vdb.String}, {Type: vdb.ArrayOf(vdb.String)}}, false)
	require.NoError(t, err)
	assert.Nil(t, convs)
	assert.True(t, m.IsVararg())

	m, convs, err = r.ResolveConversions("h", "", []Argument{{Type: vdb.String}, {Type: vdb.String}, {Type: vdb.Integer}}, false)
	require.NoError(t, err)
	assert.NotNil(t, m)
	require.Len(t, convs, 3)
	assert.Nil(t, convs[0])
	assert.NotNil(t, convs[2])
}

func TestArrayComponentWidens(t *testing.T) {
	r := newTestResolver(fn(CategoryMisc, "total", vdb.Long, vdb.ArrayOf(vdb.Long)))
	m, convs, err := r.ResolveConversions("total", "", []Argument{{Type: vdb.ArrayOf(vdb.Integer)}}, false)
	require.NoError(t, err)
	assert.Equal(t, "total(long[])", m.Signature())
	require.Len(t, convs, 1)
	require.NotNil(t, convs[0])
	assert.Equal(t, vdb.ArrayOf(vdb.Long), convs[0].Result.Type)

	_, convs, err = r.ResolveConversions("total", "", []Argument{{Type: vdb.ArrayOf(vdb.Long)}}, false)
	require.NoError(t, err)
	assert.Nil(t, convs)
}

func TestZeroArgumentCalls(t *testing.T) {
	r := NewResolver(SystemLibrary(vdb.Current), coerce.For(vdb.Current))
	m, convs, err := r.ResolveConversions("now", "", nil, false)
	require.NoError(t, err)
	assert.Nil(t, convs)
	assert.Equal(t, vdb.Timestamp, m.Result.Type)

	legacy := NewResolver(SystemLibrary(vdb.Legacy), coerce.For(vdb.Legacy))
	_, _, err = legacy.ResolveConversions("now", "", nil, false)
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestFindTypedConversion(t *testing.T) {
	lib := SystemLibrary(vdb.Current)
	m := lib.FindTypedConversion(vdb.Byte, vdb.Integer)
	require.NotNil(t, m)
	assert.Equal(t, []Parameter{{Name: "arg1", Type: vdb.Byte}, {Name: "arg2", Type: vdb.String}}, m.Params)
	assert.Equal(t, vdb.Integer, m.Result.Type)
	// The library's own entry is untouched.
	assert.Equal(t, vdb.Object, lib.Find(Convert, []string{vdb.Byte, vdb.String}).Result.Type)
}

func TestSystemLibraryBuiltOnce(t *testing.T) {
	var g errgroup.Group
	libs := make([]*Library, 16)
	for k := range libs {
		g.Go(func() error {
			libs[k] = SystemLibrary(vdb.Version{Major: 9, Minor: 1})
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, lib := range libs {
		assert.Same(t, libs[0], lib)
	}
	assert.NotSame(t, SystemLibrary(vdb.Legacy), SystemLibrary(vdb.Current))
}
