package semantic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
	"go.uber.org/zap"
)

// ResolveGroup binds g to a catalog group or procedure.  The name may be
// fully qualified, qualified by the VDB name, or a dotted suffix of exactly
// one group's name.  On success the group's name is rewritten to the full
// catalog name.
func (r *Resolver) ResolveGroup(g *ast.GroupSymbol) error {
	if g.ID != nil {
		return nil
	}
	name := g.NonCorrelationName()
	id, err := r.lookupGroup(g, name)
	if err != nil {
		return err
	}
	full := ""
	if id != nil {
		full = id.FullName()
		if g.IsProcedure, err = r.denotesProcedure(g, id); err != nil {
			return err
		}
	} else if r.md.IsProcedure(name) {
		proc, err := r.md.StoredProcedure(name)
		if err != nil {
			return metadataError(g, "procedure", name, err)
		}
		id, full = proc.ID, proc.Name
		g.IsProcedure = true
	} else {
		return errorf(UnresolvedSymbol, g, "group %q not found", name)
	}
	if r.md.UseOutputName() {
		if g.IsAliased() {
			g.OutputDefinition = g.Definition
		} else {
			g.OutputName = g.Name
		}
	}
	if g.IsAliased() {
		g.Definition = full
	} else {
		g.Name = full
	}
	g.ID = id
	g.IsTempTable = r.md.IsTempTable(id)
	r.logger.Debug("group resolved", zap.String("name", name), zap.String("full", full))
	return nil
}

// denotesProcedure reports whether the catalog group id is the id of the
// stored procedure of the same name.
func (r *Resolver) denotesProcedure(g *ast.GroupSymbol, id metadata.ID) (bool, error) {
	if _, ok := id.(*metadata.TempID); ok {
		return false, nil
	}
	full := id.FullName()
	if !r.md.IsProcedure(full) {
		return false, nil
	}
	proc, err := r.md.StoredProcedure(full)
	if err != nil {
		return false, metadataError(g, "procedure", full, err)
	}
	return proc.ID == id, nil
}

func (r *Resolver) lookupGroup(g *ast.GroupSymbol, name string) (metadata.ID, error) {
	id, err := r.md.GroupID(name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, metadata.ErrNotFound) {
		return nil, metadataError(g, "group", name, err)
	}
	if prefix := r.md.VDBName() + "."; prefix != "." && len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		if id, err := r.md.GroupID(name[len(prefix):]); err == nil {
			return id, nil
		}
	}
	names, err := r.md.GroupsForPartialName(name)
	if err != nil {
		return nil, metadataError(g, "group", name, err)
	}
	switch len(names) {
	case 0:
		return nil, nil
	case 1:
		id, err := r.md.GroupID(names[0])
		if err != nil {
			return nil, metadataError(g, "group", names[0], err)
		}
		return id, nil
	}
	amb := errorf(UnresolvedSymbol, g, "ambiguous group %q", name)
	amb.Candidates = names
	return nil, amb
}

// GroupInfo is the ordered list of the elements of a group as they bind
// within a command.
type GroupInfo struct {
	Symbols []*ast.ElementSymbol
	index   map[string]*ast.ElementSymbol
}

func newGroupInfo(symbols []*ast.ElementSymbol) *GroupInfo {
	info := &GroupInfo{Symbols: symbols, index: make(map[string]*ast.ElementSymbol)}
	for _, s := range symbols {
		info.index[strings.ToLower(metadata.ShortName(s.Name))] = s
	}
	return info
}

// Lookup returns the template for the element with the given short name.
func (g *GroupInfo) Lookup(short string) *ast.ElementSymbol {
	return g.index[strings.ToLower(short)]
}

func groupInfoKey(g *ast.GroupSymbol) string {
	return "GroupInfo:" + g.Name
}

// GroupInfo returns the element templates of a resolved group.  The result
// is cached in the catalog's object cache except for temporary groups,
// which live only as long as one resolution.  Templates must not be
// modified; callers copy the fields they need.
func (r *Resolver) GroupInfo(g *ast.GroupSymbol) (*GroupInfo, error) {
	if g.ID == nil {
		return nil, fmt.Errorf("semantic: group %q is not resolved", g.Name)
	}
	if temp, ok := g.ID.(*metadata.TempID); ok {
		clone := g.Clone()
		var symbols []*ast.ElementSymbol
		for _, e := range temp.Elements() {
			symbols = append(symbols, template(clone, e, e.Type()))
		}
		return newGroupInfo(symbols), nil
	}
	key := groupInfoKey(g)
	if v, ok := r.md.FromCache(g.ID, key); ok {
		info, ok := v.(*GroupInfo)
		if !ok {
			panic(fmt.Sprintf("semantic: cache entry %q holds %T", key, v))
		}
		return info, nil
	}
	info, err := r.buildGroupInfo(g)
	if err != nil {
		return nil, err
	}
	r.md.AddToCache(g.ID, key, info)
	return info, nil
}

func (r *Resolver) buildGroupInfo(g *ast.GroupSymbol) (*GroupInfo, error) {
	clone := g.Clone()
	var symbols []*ast.ElementSymbol
	if g.IsProcedure {
		proc, err := r.md.StoredProcedure(g.NonCorrelationName())
		if err != nil {
			return nil, metadataError(g, "procedure", g.NonCorrelationName(), err)
		}
		for _, c := range proc.ResultSet {
			symbols = append(symbols, template(clone, c.ID, c.Type))
		}
		return newGroupInfo(symbols), nil
	}
	ids, err := r.md.ElementIDs(g.ID)
	if err != nil {
		return nil, metadataError(g, "group", g.NonCorrelationName(), err)
	}
	for _, id := range ids {
		typ, err := r.md.ElementType(id)
		if err != nil {
			return nil, metadataError(g, "element", id.FullName(), err)
		}
		symbols = append(symbols, template(clone, id, typ))
	}
	return newGroupInfo(symbols), nil
}

func template(g *ast.GroupSymbol, id metadata.ID, typ string) *ast.ElementSymbol {
	return &ast.ElementSymbol{
		Name:  g.Name + "." + metadata.ShortName(id.FullName()),
		Group: g,
		ID:    id,
		Type:  typ,
	}
}

// ClearGroupInfo drops the cached element list of g.
func (r *Resolver) ClearGroupInfo(g *ast.GroupSymbol) {
	if g.ID != nil {
		r.md.RemoveFromCache(g.ID, groupInfoKey(g))
	}
}

// expand returns fresh element symbols for every element of g.
func (r *Resolver) expand(g *ast.GroupSymbol) ([]*ast.ElementSymbol, error) {
	info, err := r.GroupInfo(g)
	if err != nil {
		return nil, err
	}
	out := make([]*ast.ElementSymbol, 0, len(info.Symbols))
	for _, t := range info.Symbols {
		e := &ast.ElementSymbol{}
		r.bind(e, binding{g, t}, false)
		out = append(out, e)
	}
	return out, nil
}
