package metadata

import (
	"strings"

	"github.com/segmentio/ksuid"
)

// A TempID is a group or element that exists only for the duration of one
// resolution, e.g., the columns of a dynamic SQL result, a subquery in a
// FROM clause, a procedure's variables, or an implicitly created temp table.
type TempID struct {
	name     string
	typ      string
	group    *TempID
	elements []*TempID
	// Temp marks a temporary table as opposed to a derived group.
	Temp    bool
	Virtual bool
	// Position is the element's ordinal within its group.
	Position   int
	PrimaryKey []*TempID
	// Definition is the query text of a derived group, when known.
	Definition string
}

func (t *TempID) FullName() string {
	return t.name
}

func (t *TempID) String() string {
	return t.name
}

// Type is the element type or empty for a group.
func (t *TempID) Type() string {
	return t.typ
}

func (t *TempID) Group() *TempID {
	return t.group
}

func (t *TempID) Elements() []*TempID {
	return t.elements
}

func (t *TempID) Element(name string) *TempID {
	for _, e := range t.elements {
		if strings.EqualFold(ShortName(e.name), name) {
			return e
		}
	}
	return nil
}

type Column struct {
	Name string
	Type string
}

// TempStore holds the temporary groups of one resolution scope.  Lookups
// that miss fall back to the enclosing scope.
type TempStore struct {
	id     ksuid.KSUID
	parent *TempStore
	groups map[string]*TempID
}

func NewTempStore() *TempStore {
	return &TempStore{
		id:     ksuid.New(),
		groups: make(map[string]*TempID),
	}
}

// ID distinguishes stores in logs.
func (s *TempStore) ID() ksuid.KSUID {
	return s.id
}

// Child returns a store nested in s.  Groups added to the child are not
// visible to s.
func (s *TempStore) Child() *TempStore {
	child := NewTempStore()
	child.parent = s
	return child
}

func (s *TempStore) Parent() *TempStore {
	return s.parent
}

// NewGroup returns a group with the given columns that belongs to no
// store.  It is reachable only through the ID it is bound to, as for a
// subquery in a FROM clause, and never by name.
func NewGroup(name string, columns []Column, temp bool) *TempID {
	g := &TempID{name: name, Temp: temp}
	for k, c := range columns {
		g.elements = append(g.elements, &TempID{
			name:     name + "." + c.Name,
			typ:      c.Type,
			group:    g,
			Position: k,
		})
	}
	return g
}

// AddGroup defines a group with the given columns, replacing any group of
// the same name in this scope.
func (s *TempStore) AddGroup(name string, columns []Column, temp bool) *TempID {
	g := NewGroup(name, columns, temp)
	s.groups[strings.ToLower(name)] = g
	return g
}

// AddElement appends a column to an existing group.
func (s *TempStore) AddElement(g *TempID, c Column) *TempID {
	e := &TempID{
		name:     g.name + "." + c.Name,
		typ:      c.Type,
		group:    g,
		Position: len(g.elements),
	}
	g.elements = append(g.elements, e)
	return e
}

func (s *TempStore) Group(name string) *TempID {
	for scope := s; scope != nil; scope = scope.parent {
		if g, ok := scope.groups[strings.ToLower(name)]; ok {
			return g
		}
	}
	return nil
}

// LocalGroup looks only in this scope.
func (s *TempStore) LocalGroup(name string) *TempID {
	return s.groups[strings.ToLower(name)]
}

func (s *TempStore) Remove(name string) {
	delete(s.groups, strings.ToLower(name))
}

// TempMetadata overlays a TempStore on a catalog so that temporary groups
// resolve like any other.
type TempMetadata struct {
	Metadata
	store *TempStore
}

var _ Metadata = (*TempMetadata)(nil)

func NewTempMetadata(md Metadata, store *TempStore) *TempMetadata {
	if t, ok := md.(*TempMetadata); ok {
		md = t.Metadata
	}
	return &TempMetadata{Metadata: md, store: store}
}

func (t *TempMetadata) Store() *TempStore {
	return t.store
}

// Unwrap returns the underlying catalog.
func (t *TempMetadata) Unwrap() Metadata {
	return t.Metadata
}

func (t *TempMetadata) GroupID(name string) (ID, error) {
	if g := t.store.Group(name); g != nil {
		return g, nil
	}
	return t.Metadata.GroupID(name)
}

func (t *TempMetadata) ElementIDs(group ID) ([]ID, error) {
	if g, ok := group.(*TempID); ok {
		ids := make([]ID, 0, len(g.elements))
		for _, e := range g.elements {
			ids = append(ids, e)
		}
		return ids, nil
	}
	return t.Metadata.ElementIDs(group)
}

func (t *TempMetadata) ElementID(name string) (ID, error) {
	if g := t.store.Group(GroupName(name)); g != nil {
		if e := g.Element(ShortName(name)); e != nil {
			return e, nil
		}
		return nil, NotFound("element", name)
	}
	return t.Metadata.ElementID(name)
}

func (t *TempMetadata) ElementType(element ID) (string, error) {
	if e, ok := element.(*TempID); ok {
		return e.typ, nil
	}
	return t.Metadata.ElementType(element)
}

func (t *TempMetadata) DefaultValue(element ID) (any, error) {
	if _, ok := element.(*TempID); ok {
		return nil, nil
	}
	return t.Metadata.DefaultValue(element)
}

func (t *TempMetadata) IsNullable(element ID) (bool, error) {
	if _, ok := element.(*TempID); ok {
		return true, nil
	}
	return t.Metadata.IsNullable(element)
}

func (t *TempMetadata) UniqueKeys(group ID) ([]*Key, error) {
	if g, ok := group.(*TempID); ok {
		if len(g.PrimaryKey) == 0 {
			return nil, nil
		}
		key := &Key{Name: "pk", Primary: true}
		for _, e := range g.PrimaryKey {
			key.Columns = append(key.Columns, e)
		}
		return []*Key{key}, nil
	}
	return t.Metadata.UniqueKeys(group)
}

func (t *TempMetadata) ForeignKeys(group ID) ([]*ForeignKey, error) {
	if _, ok := group.(*TempID); ok {
		return nil, nil
	}
	return t.Metadata.ForeignKeys(group)
}

func (t *TempMetadata) IsTempTable(group ID) bool {
	if g, ok := group.(*TempID); ok {
		return g.Temp
	}
	return t.Metadata.IsTempTable(group)
}

func (t *TempMetadata) IsVirtual(group ID) bool {
	if g, ok := group.(*TempID); ok {
		return g.Virtual
	}
	return t.Metadata.IsVirtual(group)
}

func (t *TempMetadata) VirtualPlan(group ID) (string, error) {
	if g, ok := group.(*TempID); ok {
		if g.Definition == "" {
			return "", NotFound("query plan", g.name)
		}
		return g.Definition, nil
	}
	return t.Metadata.VirtualPlan(group)
}
