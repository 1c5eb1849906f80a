// Package demand models the columns a command needs from each group it
// reads.  A demand is either every column or a set of names, each name a
// group or column with the demand beneath it.  Names are case insensitive.
package demand

import (
	"maps"
	"slices"
	"strings"
)

type Demand interface {
	isDemand()
}

type (
	every struct{}
	names map[string]Demand // No value is None.
)

func (every) isDemand() {}
func (names) isDemand() {}

func None() Demand { return names{} }
func All() Demand  { return every{} }

func IsNone(d Demand) bool {
	n, ok := d.(names)
	return ok && len(n) == 0
}

func IsAll(d Demand) bool {
	_, ok := d.(every)
	return ok
}

// Key returns a demand for name alone with d beneath it.
func Key(name string, d Demand) Demand {
	if IsNone(d) {
		return d
	}
	return names{strings.ToLower(name): d}
}

// Column is the demand for one column of a group.
func Column(group, column string) Demand {
	return Key(group, Key(column, All()))
}

// Union merges demands.  A demand for every column absorbs the others.
func Union(demands ...Demand) Demand {
	out := names{}
	for _, d := range demands {
		n, ok := d.(names)
		if !ok {
			return All()
		}
		for k, v := range n {
			if prev, ok := out[k]; ok {
				v = Union(prev, v)
			}
			out[k] = v
		}
	}
	return out
}

// Get returns the demand beneath name.
func Get(d Demand, name string) Demand {
	n, ok := d.(names)
	if !ok {
		return d
	}
	if v, ok := n[strings.ToLower(name)]; ok {
		return v
	}
	return None()
}

// Keys returns the names a demand holds in sorted order.
func Keys(d Demand) []string {
	n, ok := d.(names)
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(n))
}

// Paths returns every leaf of d as the list of names leading to it, sorted.
func Paths(d Demand) [][]string {
	var paths [][]string
	for _, k := range Keys(d) {
		sub := Paths(Get(d, k))
		if len(sub) == 0 {
			paths = append(paths, []string{k})
			continue
		}
		for _, p := range sub {
			paths = append(paths, append([]string{k}, p...))
		}
	}
	return paths
}
