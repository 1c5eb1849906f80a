package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata"
)

// Metadata answers resolver questions about a VDB.  The VDB must not be
// modified structurally while a Metadata refers to it, though linking
// foreign keys and materialized tables is allowed.
type Metadata struct {
	vdb     *VDB
	version vdb.Version
	cache   *metadata.Cache

	tables     map[string]*Table
	procedures map[string]*Procedure

	functionsOnce sync.Once
	functions     *function.Library
}

var _ metadata.Metadata = (*Metadata)(nil)

// NewMetadata indexes v.  A nil cache gets a private one.
func NewMetadata(v *VDB, cache *metadata.Cache) (*Metadata, error) {
	version, err := vdb.ParseVersion(v.Version)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = metadata.NewCache(0)
	}
	m := &Metadata{
		vdb:        v,
		version:    version,
		cache:      cache,
		tables:     make(map[string]*Table),
		procedures: make(map[string]*Procedure),
	}
	for _, s := range v.Schemas {
		for _, t := range s.Tables {
			m.tables[strings.ToLower(t.FullName())] = t
		}
		for _, p := range s.Procedures {
			m.procedures[strings.ToLower(p.FullName())] = p
		}
	}
	return m, nil
}

func (m *Metadata) VDB() *VDB {
	return m.vdb
}

func (m *Metadata) Version() vdb.Version {
	return m.version
}

func (m *Metadata) VDBName() string {
	return m.vdb.Name
}

func (m *Metadata) GroupID(name string) (metadata.ID, error) {
	if t, ok := m.tables[strings.ToLower(name)]; ok {
		return t, nil
	}
	return nil, metadata.NotFound("group", name)
}

func (m *Metadata) GroupsForPartialName(partial string) ([]string, error) {
	suffix := "." + strings.ToLower(partial)
	var out []string
	for key, t := range m.tables {
		if strings.HasSuffix(key, suffix) {
			out = append(out, t.FullName())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Metadata) ElementIDs(group metadata.ID) ([]metadata.ID, error) {
	t, ok := group.(*Table)
	if !ok {
		return nil, metadata.NotFound("group", group.FullName())
	}
	ids := make([]metadata.ID, 0, len(t.Columns))
	for _, c := range t.Columns {
		ids = append(ids, c)
	}
	return ids, nil
}

func (m *Metadata) ElementID(name string) (metadata.ID, error) {
	if t, ok := m.tables[strings.ToLower(metadata.GroupName(name))]; ok {
		if c := t.Column(metadata.ShortName(name)); c != nil {
			return c, nil
		}
	}
	return nil, metadata.NotFound("element", name)
}

func (m *Metadata) ElementType(element metadata.ID) (string, error) {
	switch e := element.(type) {
	case *Column:
		return e.Type, nil
	case *Param:
		return e.Type, nil
	}
	return "", metadata.NotFound("element", element.FullName())
}

func (m *Metadata) DefaultValue(element metadata.ID) (any, error) {
	var def *string
	var typ string
	switch e := element.(type) {
	case *Column:
		def, typ = e.Default, e.Type
	case *Param:
		def, typ = e.Default, e.Type
	default:
		return nil, metadata.NotFound("element", element.FullName())
	}
	if def == nil {
		return nil, nil
	}
	v, err := coerce.Convert(*def, vdb.String, typ)
	if err != nil {
		return nil, fmt.Errorf("%s: default: %w", element.FullName(), err)
	}
	return v, nil
}

func (m *Metadata) IsNullable(element metadata.ID) (bool, error) {
	switch e := element.(type) {
	case *Column:
		return e.IsNullable(), nil
	case *Param:
		return e.Nullable == nil || *e.Nullable, nil
	}
	return false, metadata.NotFound("element", element.FullName())
}

func (m *Metadata) UniqueKeys(group metadata.ID) ([]*metadata.Key, error) {
	t, ok := group.(*Table)
	if !ok {
		return nil, nil
	}
	return t.keys, nil
}

func (m *Metadata) ForeignKeys(group metadata.ID) ([]*metadata.ForeignKey, error) {
	t, ok := group.(*Table)
	if !ok {
		return nil, nil
	}
	var out []*metadata.ForeignKey
	for _, fk := range t.ForeignKeys {
		if fk.key != nil {
			out = append(out, fk.key)
		}
	}
	return out, nil
}

func (m *Metadata) IsTempTable(metadata.ID) bool {
	return false
}

func (m *Metadata) IsVirtual(group metadata.ID) bool {
	t, ok := group.(*Table)
	return ok && t.Virtual
}

func (m *Metadata) VirtualPlan(group metadata.ID) (string, error) {
	if t, ok := group.(*Table); ok && t.Virtual && strings.TrimSpace(t.Query) != "" {
		return t.Query, nil
	}
	return "", metadata.NotFound("query plan", group.FullName())
}

func (m *Metadata) lookupProcedure(name string) *Procedure {
	key := strings.ToLower(name)
	if p, ok := m.procedures[key]; ok {
		return p
	}
	if rest, ok := strings.CutPrefix(key, strings.ToLower(m.vdb.Name)+"."); ok {
		if p, ok := m.procedures[rest]; ok {
			return p
		}
	}
	var match *Procedure
	for full, p := range m.procedures {
		if strings.HasSuffix(full, "."+key) {
			if match != nil {
				return nil
			}
			match = p
		}
	}
	return match
}

func (m *Metadata) IsProcedure(name string) bool {
	return m.lookupProcedure(name) != nil
}

func (m *Metadata) StoredProcedure(name string) (*metadata.Procedure, error) {
	if p := m.lookupProcedure(name); p != nil {
		return p.info, nil
	}
	return nil, metadata.NotFound("procedure", name)
}

func (m *Metadata) Functions() *function.Library {
	m.functionsOnce.Do(func() {
		var methods []*function.Method
		for _, s := range m.vdb.Schemas {
			for _, f := range s.Functions {
				methods = append(methods, f.Method())
			}
		}
		m.functions = function.SystemLibrary(m.version).Merge(function.NewLibrary(methods...))
	})
	return m.functions
}

func (m *Metadata) UseOutputName() bool {
	return m.vdb.UseOutputName
}

func (m *Metadata) FromCache(id metadata.ID, key string) (any, bool) {
	return m.cache.Get(id, key)
}

func (m *Metadata) AddToCache(id metadata.ID, key string, value any) {
	m.cache.Put(id, key, value)
}

func (m *Metadata) RemoveFromCache(id metadata.ID, key string) {
	m.cache.Invalidate(id, key)
}
