package metadata_test

import (
	"errors"
	"testing"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/metadata"
	"github.com/brimdata/vdb/metadata/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTempStoreScopes(t *testing.T) {
	outer := metadata.NewTempStore()
	g := outer.AddGroup("#t", []metadata.Column{{Name: "a", Type: vdb.Integer}}, true)
	inner := outer.Child()
	inner.AddGroup("VARIABLES", []metadata.Column{{Name: "x", Type: vdb.String}}, false)

	assert.Same(t, g, inner.Group("#T"))
	assert.Nil(t, inner.LocalGroup("#t"))
	assert.Nil(t, outer.Group("variables"))
	assert.NotEqual(t, outer.ID(), inner.ID())

	e := outer.AddElement(g, metadata.Column{Name: "b", Type: vdb.Long})
	assert.Equal(t, 1, e.Position)
	assert.Equal(t, "#t.b", e.FullName())
	assert.Same(t, g, e.Group())
}

func TestTempMetadataOverlay(t *testing.T) {
	ctrl := gomock.NewController(t)
	md := mock.NewMockMetadata(ctrl)
	md.EXPECT().GroupID("pm1.g1").Return(nil, metadata.NotFound("group", "pm1.g1"))

	store := metadata.NewTempStore()
	g := store.AddGroup("dyn", []metadata.Column{{Name: "c", Type: vdb.Date}}, false)
	tmd := metadata.NewTempMetadata(md, store)

	id, err := tmd.GroupID("DYN")
	require.NoError(t, err)
	assert.Same(t, g, id)

	_, err = tmd.GroupID("pm1.g1")
	assert.True(t, errors.Is(err, metadata.ErrNotFound))

	elems, err := tmd.ElementIDs(g)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	typ, err := tmd.ElementType(elems[0])
	require.NoError(t, err)
	assert.Equal(t, vdb.Date, typ)

	e, err := tmd.ElementID("dyn.C")
	require.NoError(t, err)
	assert.Same(t, elems[0], e)
	assert.False(t, tmd.IsTempTable(g))
}

func TestUnstoredGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	md := mock.NewMockMetadata(ctrl)
	md.EXPECT().GroupID("v").Return(nil, metadata.NotFound("group", "v"))

	g := metadata.NewGroup("v", []metadata.Column{{Name: "total", Type: vdb.Long}}, false)
	tmd := metadata.NewTempMetadata(md, metadata.NewTempStore())
	_, err := tmd.GroupID("v")
	assert.True(t, errors.Is(err, metadata.ErrNotFound))

	elems, err := tmd.ElementIDs(g)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	assert.Equal(t, "v.total", elems[0].FullName())
}

func TestCacheScopedByID(t *testing.T) {
	c := metadata.NewCache(8)
	a := metadata.NewTempStore().AddGroup("a", nil, false)
	b := metadata.NewTempStore().AddGroup("a", nil, false)
	c.Put(a, "GroupInfo:a", 1)
	v, ok := c.Get(a, "GroupInfo:a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = c.Get(b, "GroupInfo:a")
	assert.False(t, ok)
	c.Invalidate(a, "GroupInfo:a")
	_, ok = c.Get(a, "GroupInfo:a")
	assert.False(t, ok)
}
