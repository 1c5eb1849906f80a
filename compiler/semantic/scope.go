package semantic

import (
	"strings"

	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
)

// A scope holds the groups visible at one level of a command.  Element
// lookups that miss fall back to the enclosing scope.  A scope with command
// set is the outermost scope of a command, so a binding found beyond it is
// a correlated reference.
type scope struct {
	parent  *scope
	groups  []*ast.GroupSymbol
	command bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, command: true}
}

func (s *scope) add(g *ast.GroupSymbol) {
	s.groups = append(s.groups, g)
}

// lookupGroup returns the group named name at the nearest level where
// one is defined.
func (s *scope) lookupGroup(name string) *ast.GroupSymbol {
	for sc := s; sc != nil; sc = sc.parent {
		for _, g := range sc.groups {
			if g.Matches(name) {
				return g
			}
		}
	}
	return nil
}

type binding struct {
	group    *ast.GroupSymbol
	template *ast.ElementSymbol
}

// bindElement binds e to an element of a visible group.
func (r *Resolver) bindElement(sc *scope, e *ast.ElementSymbol) error {
	if e.ID != nil {
		return nil
	}
	qualifier, short := metadata.GroupName(e.Name), metadata.ShortName(e.Name)
	external := false
	for s := sc; s != nil; s = s.parent {
		matches, err := r.matchElement(s, qualifier, short)
		if err != nil {
			return err
		}
		switch len(matches) {
		case 0:
			if s.command {
				external = true
			}
			continue
		case 1:
			r.bind(e, matches[0], external)
			return nil
		}
		what := "ambiguous unqualified column %q"
		if qualifier != "" {
			what = "ambiguous qualified column %q"
		}
		ambiguous := errorf(UnresolvedSymbol, e, what, e.Name)
		for _, m := range matches {
			ambiguous.Candidates = append(ambiguous.Candidates, m.template.Name)
		}
		return ambiguous
	}
	notFound := errorf(UnresolvedSymbol, e, "column %q not found", e.Name)
	notFound.Suggestion = suggest(short, r.visibleNames(sc))
	return notFound
}

func (r *Resolver) matchElement(s *scope, qualifier, short string) ([]binding, error) {
	var matches []binding
	for _, g := range s.groups {
		if qualifier != "" && !g.Matches(qualifier) {
			continue
		}
		info, err := r.GroupInfo(g)
		if err != nil {
			return nil, err
		}
		if t := info.Lookup(short); t != nil {
			matches = append(matches, binding{g, t})
		}
	}
	return matches, nil
}

func (r *Resolver) bind(e *ast.ElementSymbol, b binding, external bool) {
	prefix := b.group.Name
	if b.group.OutputName != "" {
		prefix = b.group.OutputName
	}
	e.Name = prefix + "." + metadata.ShortName(b.template.Name)
	e.Group = b.group
	e.ID = b.template.ID
	e.Type = b.template.Type
	e.External = external
}

func (r *Resolver) visibleNames(sc *scope) []string {
	var names []string
	for s := sc; s != nil; s = s.parent {
		for _, g := range s.groups {
			info, err := r.GroupInfo(g)
			if err != nil {
				continue
			}
			for _, t := range info.Symbols {
				names = append(names, metadata.ShortName(t.Name))
			}
		}
	}
	return names
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, "#")
}
