// Package coerce implements the conversion lattice between the built-in
// types: which conversions are implicit, which must be requested
// explicitly, and the common type of a set of types.
package coerce

import (
	"slices"

	"github.com/brimdata/vdb"
)

// A Transform describes one conversion edge in the lattice.
type Transform struct {
	Source   string
	Target   string
	Explicit bool
}

// Lattice is the conversion graph for one catalog version.  It is built
// once and is safe for concurrent use.
type Lattice struct {
	version  vdb.Version
	implicit map[string]map[string]bool
	explicit map[string]map[string]bool
	closure  map[string][]string
}

var (
	current = newLattice(vdb.Current)
	legacy  = newLattice(vdb.Legacy)
)

// For returns the lattice governing catalogs of version v.
func For(v vdb.Version) *Lattice {
	if v.IsLegacy() {
		return legacy
	}
	return current
}

// numeric widening edges shared by all versions
var widen = map[string][]string{
	vdb.Byte:       {vdb.Short, vdb.Integer, vdb.Long, vdb.BigInteger, vdb.Float, vdb.Double, vdb.BigDecimal},
	vdb.Short:      {vdb.Integer, vdb.Long, vdb.BigInteger, vdb.Float, vdb.Double, vdb.BigDecimal},
	vdb.Integer:    {vdb.Long, vdb.BigInteger, vdb.Double, vdb.BigDecimal},
	vdb.Long:       {vdb.BigInteger, vdb.BigDecimal},
	vdb.BigInteger: {vdb.BigDecimal},
	vdb.Float:      {vdb.Double, vdb.BigDecimal},
	vdb.Double:     {vdb.BigDecimal},
	vdb.Boolean:    {vdb.Byte, vdb.Short, vdb.Integer, vdb.Long, vdb.BigInteger, vdb.Float, vdb.Double, vdb.BigDecimal},
	vdb.Char:       {vdb.String},
	vdb.Date:       {vdb.Timestamp},
	vdb.Time:       {vdb.Timestamp},
	vdb.String:     {vdb.Clob},
	vdb.Varbinary:  {vdb.Blob},
}

// Widenings that lose precision.  Older catalogs applied them implicitly.
var lossy = map[string][]string{
	vdb.Integer:    {vdb.Float},
	vdb.Long:       {vdb.Float, vdb.Double},
	vdb.BigInteger: {vdb.Float, vdb.Double},
}

// Explicit-only edges.  String converts to every scalar but only succeeds
// at runtime when the text parses.
var narrow = map[string][]string{
	vdb.Short:      {vdb.Byte, vdb.Boolean},
	vdb.Integer:    {vdb.Byte, vdb.Short, vdb.Float, vdb.Boolean},
	vdb.Long:       {vdb.Byte, vdb.Short, vdb.Integer, vdb.Float, vdb.Double},
	vdb.BigInteger: {vdb.Byte, vdb.Short, vdb.Integer, vdb.Long, vdb.Float, vdb.Double},
	vdb.Float:      {vdb.Byte, vdb.Short, vdb.Integer, vdb.Long, vdb.BigInteger},
	vdb.Double:     {vdb.Byte, vdb.Short, vdb.Integer, vdb.Long, vdb.BigInteger, vdb.Float},
	vdb.BigDecimal: {vdb.Byte, vdb.Short, vdb.Integer, vdb.Long, vdb.BigInteger, vdb.Float, vdb.Double},
	vdb.Byte:       {vdb.Boolean},
	vdb.String: {vdb.Char, vdb.Boolean, vdb.Byte, vdb.Short, vdb.Integer, vdb.Long, vdb.BigInteger,
		vdb.Float, vdb.Double, vdb.BigDecimal, vdb.Date, vdb.Time, vdb.Timestamp, vdb.XML,
		vdb.Varbinary, vdb.JSON},
	vdb.Clob:      {vdb.String, vdb.XML, vdb.JSON},
	vdb.XML:       {vdb.String, vdb.Clob},
	vdb.JSON:      {vdb.String, vdb.Clob},
	vdb.Blob:      {vdb.Varbinary},
	vdb.Timestamp: {vdb.Date, vdb.Time},
	vdb.Varbinary: {vdb.String},
}

func newLattice(v vdb.Version) *Lattice {
	l := &Lattice{
		version:  v,
		implicit: make(map[string]map[string]bool),
		explicit: make(map[string]map[string]bool),
		closure:  make(map[string][]string),
	}
	for _, from := range vdb.Primitives() {
		l.implicit[from] = make(map[string]bool)
		l.explicit[from] = make(map[string]bool)
	}
	for from, targets := range widen {
		for _, to := range targets {
			l.implicit[from][to] = true
		}
	}
	for from, targets := range lossy {
		for _, to := range targets {
			if v.IsLegacy() {
				l.implicit[from][to] = true
			} else {
				l.explicit[from][to] = true
			}
		}
	}
	for from, targets := range narrow {
		for _, to := range targets {
			if !l.implicit[from][to] {
				l.explicit[from][to] = true
			}
		}
	}
	for _, from := range vdb.Primitives() {
		if from == vdb.Null {
			continue
		}
		if from != vdb.Object {
			l.implicit[from][vdb.Object] = true
			// Anything can be pulled back out of an object explicitly.
			l.explicit[vdb.Object][from] = true
		}
		if from != vdb.String && !vdb.IsLOB(from) && from != vdb.Object && from != vdb.Varbinary {
			l.implicit[from][vdb.String] = true
		}
	}
	for _, from := range vdb.Primitives() {
		l.closure[from] = l.computeClosure(from)
	}
	return l
}

// computeClosure walks the implicit edges from typ breadth first.  The
// result excludes typ itself and is sorted by type ID so that callers
// iterating it see a stable order.
func (l *Lattice) computeClosure(typ string) []string {
	seen := map[string]bool{typ: true}
	queue := []string{typ}
	var out []string
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for to := range l.implicit[t] {
			if !seen[to] {
				seen[to] = true
				out = append(out, to)
				queue = append(queue, to)
			}
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return vdb.PrimitiveID(a) - vdb.PrimitiveID(b)
	})
	return out
}

func (l *Lattice) Version() vdb.Version {
	return l.version
}

// CanImplicitlyConvert reports whether a value of type from may be used
// where type to is required without an explicit cast.  It is reflexive.
func (l *Lattice) CanImplicitlyConvert(from, to string) bool {
	if from == to || from == vdb.Null {
		return true
	}
	if vdb.IsArray(from) || vdb.IsArray(to) {
		if to == vdb.Object {
			return true
		}
		if !vdb.IsArray(from) || !vdb.IsArray(to) {
			return false
		}
		return l.CanImplicitlyConvert(vdb.ComponentType(from), vdb.ComponentType(to))
	}
	return l.implicit[from][to]
}

// CanExplicitlyConvert reports whether a conversion from one type to
// another exists at all.
func (l *Lattice) CanExplicitlyConvert(from, to string) bool {
	if l.CanImplicitlyConvert(from, to) {
		return true
	}
	if vdb.IsArray(from) && vdb.IsArray(to) {
		return l.CanExplicitlyConvert(vdb.ComponentType(from), vdb.ComponentType(to))
	}
	if from == vdb.Object {
		return true
	}
	return l.explicit[from][to]
}

// Transform returns the edge from one type to another, if any.
func (l *Lattice) Transform(from, to string) (Transform, bool) {
	switch {
	case l.CanImplicitlyConvert(from, to):
		return Transform{Source: from, Target: to}, true
	case l.CanExplicitlyConvert(from, to):
		return Transform{Source: from, Target: to, Explicit: true}, true
	}
	return Transform{}, false
}

// Closure returns every type reachable from typ over implicit edges, not
// including typ.
func (l *Lattice) Closure(typ string) []string {
	if vdb.IsArray(typ) {
		var out []string
		for _, t := range l.Closure(vdb.ComponentType(typ)) {
			out = append(out, vdb.ArrayOf(t))
		}
		return append(out, vdb.Object)
	}
	return l.closure[typ]
}

// CommonType returns a type to which every type in types implicitly
// converts.  Null types are ignored.  When one of the inputs qualifies the
// earliest such input is returned.  String and object are used only when
// nothing else remains.
func (l *Lattice) CommonType(types []string) (string, bool) {
	var first string
	var candidates []string
	var distinct []string
	for _, t := range types {
		if t == vdb.Null || t == "" || slices.Contains(distinct, t) {
			continue
		}
		distinct = append(distinct, t)
		reach := append([]string{t}, l.Closure(t)...)
		if first == "" {
			first = t
			candidates = reach
			continue
		}
		candidates = slices.DeleteFunc(candidates, func(c string) bool {
			return !slices.Contains(reach, c)
		})
		if len(candidates) == 0 {
			return "", false
		}
	}
	switch len(distinct) {
	case 0:
		return vdb.Null, true
	case 1:
		return first, true
	}
	for _, t := range distinct {
		if slices.Contains(candidates, t) {
			return t, true
		}
	}
	candidates = slices.DeleteFunc(candidates, func(c string) bool {
		return c == vdb.String || c == vdb.Object
	})
	if len(candidates) > 0 {
		return candidates[0], true
	}
	return "", false
}
