// Package function holds the catalog of scalar functions: the system
// functions every catalog version provides merged with the functions a
// schema defines, and the overload resolver that picks among them.
package function

import (
	"strings"
)

type Determinism int

const (
	Deterministic Determinism = iota
	UserDeterministic
	SessionDeterministic
	CommandDeterministic
	Nondeterministic
)

func (d Determinism) String() string {
	switch d {
	case Deterministic:
		return "deterministic"
	case UserDeterministic:
		return "user"
	case SessionDeterministic:
		return "session"
	case CommandDeterministic:
		return "command"
	}
	return "nondeterministic"
}

type PushDown int

const (
	CanPushDown PushDown = iota
	CannotPushDown
	MustPushDown
)

func (p PushDown) String() string {
	switch p {
	case CannotPushDown:
		return "cannot"
	case MustPushDown:
		return "required"
	}
	return "allowed"
}

type Parameter struct {
	Name string
	Type string
	// Vararg may only be set on the last input parameter.
	Vararg bool
}

// A Method is one overload of a function.  Methods are never modified
// once they are placed in a Library.
type Method struct {
	Name        string
	Category    string
	Schema      string
	Params      []Parameter
	Result      Parameter
	Determinism Determinism
	PushDown    PushDown
}

func (m *Method) IsVararg() bool {
	return len(m.Params) > 0 && m.Params[len(m.Params)-1].Vararg
}

// Accepts reports whether the method can be called with n arguments.  A
// vararg tail matches zero or more trailing arguments.
func (m *Method) Accepts(n int) bool {
	if m.IsVararg() {
		return n >= len(m.Params)-1
	}
	return n == len(m.Params)
}

// ParamType returns the declared type of the parameter bound to argument
// position i.
func (m *Method) ParamType(i int) string {
	if i >= len(m.Params) {
		i = len(m.Params) - 1
	}
	return m.Params[i].Type
}

// FullName is the schema qualified name, or the bare name for system
// functions.
func (m *Method) FullName() string {
	if m.Schema == "" {
		return m.Name
	}
	return m.Schema + "." + m.Name
}

func (m *Method) Signature() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for k, p := range m.Params {
		if k > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type)
		if p.Vararg {
			b.WriteString("...")
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (m *Method) String() string {
	return m.Signature() + " returns " + m.Result.Type
}

// WithResultType returns a copy of m whose result type is typ.
func (m *Method) WithResultType(typ string) *Method {
	out := *m
	out.Params = append([]Parameter(nil), m.Params...)
	out.Result.Type = typ
	return &out
}
