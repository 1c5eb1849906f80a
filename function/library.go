package function

import (
	"slices"
	"strings"

	"github.com/brimdata/vdb"
)

const (
	Convert = "convert"
	Cast    = "cast"
)

// Library indexes methods by lowercase name.  Schema functions are
// reachable by both their bare and their schema qualified names.
type Library struct {
	byName  map[string][]*Method
	methods []*Method
}

func NewLibrary(methods ...*Method) *Library {
	l := &Library{byName: make(map[string][]*Method)}
	for _, m := range methods {
		l.add(m)
	}
	return l
}

func (l *Library) add(m *Method) {
	l.methods = append(l.methods, m)
	key := strings.ToLower(m.Name)
	l.byName[key] = append(l.byName[key], m)
	if m.Schema != "" {
		full := strings.ToLower(m.FullName())
		l.byName[full] = append(l.byName[full], m)
	}
}

// Merge returns a new library holding the methods of l followed by the
// methods of each of others.
func (l *Library) Merge(others ...*Library) *Library {
	out := NewLibrary(l.methods...)
	for _, o := range others {
		if o == nil {
			continue
		}
		for _, m := range o.methods {
			out.add(m)
		}
	}
	return out
}

func (l *Library) Methods() []*Method {
	return slices.Clone(l.methods)
}

func (l *Library) Exists(name string) bool {
	return len(l.byName[strings.ToLower(name)]) > 0
}

// Lookup returns every overload of name.
func (l *Library) Lookup(name string) []*Method {
	return l.byName[strings.ToLower(name)]
}

// LookupArity returns the overloads of name callable with n arguments.
func (l *Library) LookupArity(name string, n int) []*Method {
	var out []*Method
	for _, m := range l.Lookup(name) {
		if m.Accepts(n) {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the overload of name whose parameter types exactly match
// types, or nil.
func (l *Library) Find(name string, types []string) *Method {
	for _, m := range l.LookupArity(name, len(types)) {
		match := true
		for k, typ := range types {
			if m.ParamType(k) != typ {
				match = false
				break
			}
		}
		if match {
			return m
		}
	}
	return nil
}

// FindTypedConversion returns the conversion from source to target.  The
// convert functions are indexed by source type with a string placeholder
// for the target, so the (source, string) entry is looked up and copied
// with its result type set to target.
func (l *Library) FindTypedConversion(source, target string) *Method {
	if vdb.IsArray(source) {
		source = vdb.Object
	}
	m := l.Find(Convert, []string{source, vdb.String})
	if m == nil {
		return nil
	}
	return m.WithResultType(target)
}
