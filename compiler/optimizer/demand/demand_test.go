package demand_test

import (
	"testing"

	"github.com/brimdata/vdb/compiler/optimizer/demand"
	"github.com/stretchr/testify/assert"
)

func TestUnion(t *testing.T) {
	d := demand.Union(
		demand.Column("pm1.g1", "E1"),
		demand.Column("PM1.G1", "e2"),
		demand.Column("pm1.g2", "e1"),
		demand.None(),
	)
	assert.Equal(t, [][]string{
		{"pm1.g1", "e1"},
		{"pm1.g1", "e2"},
		{"pm1.g2", "e1"},
	}, demand.Paths(d))
	assert.Equal(t, []string{"pm1.g1", "pm1.g2"}, demand.Keys(d))
	assert.True(t, demand.IsNone(demand.Get(d, "pm1.g3")))
	assert.True(t, demand.IsAll(demand.Get(demand.Get(d, "PM1.g1"), "e1")))
}

func TestAllAbsorbs(t *testing.T) {
	d := demand.Union(demand.Column("pm1.g1", "e1"), demand.All())
	assert.True(t, demand.IsAll(d))
	assert.Nil(t, demand.Paths(d))
	assert.True(t, demand.IsNone(demand.Key("pm1.g1", demand.None())))
}
