package function

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
)

// ErrNotApplicable is returned by older catalogs for zero argument calls,
// which they resolve by exact signature instead of by overload scoring.
var ErrNotApplicable = errors.New("overload resolution not applicable")

// ResolveError reports a call that matched no overload or matched more
// than one equally well.
type ResolveError struct {
	Name       string
	Types      []string
	Ambiguous  bool
	Candidates []string
}

func (e *ResolveError) Error() string {
	call := e.Name + "(" + strings.Join(e.Types, ", ") + ")"
	if e.Ambiguous {
		return fmt.Sprintf("ambiguous function call %s: candidates are %s", call, strings.Join(e.Candidates, ", "))
	}
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("no overload of %s matches %s: candidates are %s", e.Name, call, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("no such function: %s", call)
}

// Argument describes one actual argument to a call.  Value is consulted
// only when Constant is set.
type Argument struct {
	Type     string
	Constant bool
	Value    any
}

type Resolver struct {
	lib     *Library
	lattice *coerce.Lattice
}

func NewResolver(lib *Library, lattice *coerce.Lattice) *Resolver {
	return &Resolver{lib: lib, lattice: lattice}
}

func (r *Resolver) Library() *Library {
	return r.lib
}

// ResolveConversions picks the overload of name that best fits args and
// returns it with one conversion per argument.  A nil conversions slice
// means the overload matches exactly.  Entries of a non-nil slice are nil
// for arguments that are passed through unchanged.
//
// The score of an overload is the number of arguments that need some
// conversion.  An argument needing an explicit conversion is accepted only
// if it is a constant that actually converts.  When some argument type is
// unknown and returnType is given, the cost of converting the overload's
// result to returnType is added.  Equal scores are broken position by
// position in favor of the narrower parameter type.
func (r *Resolver) ResolveConversions(name, returnType string, args []Argument, hasUnknownType bool) (*Method, []*Method, error) {
	if len(args) == 0 {
		return r.resolveNoArgs(name)
	}
	var best *Method
	bestScore := math.MaxInt
	ambiguous := false
	var tied []*Method
	for _, m := range r.lib.LookupArity(name, len(args)) {
		score, ok := r.score(m, args)
		if !ok {
			continue
		}
		if hasUnknownType && returnType != "" {
			score += r.returnCost(m, returnType, len(args))
		}
		if score > bestScore {
			continue
		}
		if score < bestScore {
			if score == 0 {
				return m, nil, nil
			}
			best, bestScore, ambiguous = m, score, false
			tied = []*Method{m}
			continue
		}
		tied = append(tied, m)
		useNext, irreconcilable := r.narrower(best, m, args)
		switch {
		case irreconcilable:
			ambiguous = true
		case useNext:
			best = m
		default:
			ambiguous = false
		}
	}
	if best == nil {
		return nil, nil, r.notFound(name, args)
	}
	if ambiguous {
		err := &ResolveError{Name: name, Types: argTypes(args), Ambiguous: true}
		for _, m := range tied {
			err.Candidates = append(err.Candidates, m.Signature())
		}
		return nil, nil, err
	}
	return best, r.conversions(best, args), nil
}

func (r *Resolver) resolveNoArgs(name string) (*Method, []*Method, error) {
	if r.lattice.Version().IsLegacy() {
		return nil, nil, ErrNotApplicable
	}
	var vararg *Method
	for _, m := range r.lib.LookupArity(name, 0) {
		if !m.IsVararg() {
			return m, nil, nil
		}
		if vararg == nil {
			vararg = m
		}
	}
	if vararg != nil {
		return vararg, nil, nil
	}
	return nil, nil, r.notFound(name, nil)
}

// exemptTail reports whether argument i is an array passed whole as the
// vararg tail of m.
func (r *Resolver) exemptTail(m *Method, args []Argument, i int) bool {
	if !m.IsVararg() || i != len(m.Params)-1 || len(args) != len(m.Params) {
		return false
	}
	typ := args[i].Type
	return vdb.IsArray(typ) && r.lattice.CanImplicitlyConvert(vdb.ComponentType(typ), m.ParamType(i))
}

func (r *Resolver) score(m *Method, args []Argument) (int, bool) {
	score := 0
	for i, arg := range args {
		if r.exemptTail(m, args, i) {
			continue
		}
		param := m.ParamType(i)
		switch {
		case arg.Type == param:
		case arg.Type == vdb.Null:
			score++
		case vdb.IsArray(arg.Type) && vdb.IsArray(param) && r.lattice.CanImplicitlyConvert(vdb.ComponentType(arg.Type), vdb.ComponentType(param)):
			score++
		case r.lattice.CanImplicitlyConvert(arg.Type, param):
			score++
		case arg.Constant && r.lattice.CanExplicitlyConvert(arg.Type, param):
			if _, err := coerce.Convert(arg.Value, arg.Type, param); err != nil {
				return 0, false
			}
			score++
		default:
			return 0, false
		}
	}
	return score, true
}

func (r *Resolver) returnCost(m *Method, returnType string, nargs int) int {
	switch rt := m.Result.Type; {
	case rt == returnType:
		return 0
	case r.lattice.CanImplicitlyConvert(rt, returnType):
		return 1
	}
	return nargs + 2
}

// narrower compares the parameter types of the incumbent and a tied
// candidate at each position whose argument type is known.  Each position
// where a common type exists records whether it favors the candidate; the
// last such position decides.  A position with no common type makes the
// tie irreconcilable.
func (r *Resolver) narrower(best, next *Method, args []Argument) (useNext, irreconcilable bool) {
	for i, arg := range args {
		if arg.Type == vdb.Null {
			continue
		}
		bt, nt := best.ParamType(i), next.ParamType(i)
		if bt == nt {
			continue
		}
		common, ok := r.lattice.CommonType([]string{bt, nt})
		if !ok {
			return false, true
		}
		switch common {
		case bt:
			useNext = true
		case nt:
			useNext = false
		}
	}
	return useNext, false
}

func (r *Resolver) conversions(m *Method, args []Argument) []*Method {
	out := make([]*Method, len(args))
	for i, arg := range args {
		param := m.ParamType(i)
		if arg.Type == param || r.exemptTail(m, args, i) {
			continue
		}
		// Arrays convert as objects, component by component.
		out[i] = r.lib.FindTypedConversion(arg.Type, param)
	}
	return out
}

func (r *Resolver) notFound(name string, args []Argument) error {
	err := &ResolveError{Name: name, Types: argTypes(args)}
	for _, m := range r.lib.Lookup(name) {
		err.Candidates = append(err.Candidates, m.Signature())
	}
	return err
}

func argTypes(args []Argument) []string {
	types := make([]string, 0, len(args))
	for _, a := range args {
		types = append(types, a.Type)
	}
	return types
}
