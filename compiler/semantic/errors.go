package semantic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata"
)

type Kind int

const (
	// UnresolvedSymbol is a group, element, procedure or function that
	// does not exist or is ambiguous.
	UnresolvedSymbol Kind = iota
	// TypeConversion is a value whose type cannot be converted to the
	// type its context requires.
	TypeConversion
	// AmbiguousOverload is a function call that matches more than one
	// overload equally well.
	AmbiguousOverload
	// InvalidCommand is a structural problem such as set query branches
	// of different widths.
	InvalidCommand
)

func (k Kind) String() string {
	switch k {
	case UnresolvedSymbol:
		return "unresolved symbol"
	case TypeConversion:
		return "type conversion"
	case AmbiguousOverload:
		return "ambiguous overload"
	case InvalidCommand:
		return "invalid command"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind Kind
	Msg  string
	// Candidates lists the names that made a reference ambiguous.
	Candidates []string
	// Suggestion is a visible name close to an unresolved one.
	Suggestion string
	Loc        ast.Loc
	err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(e.Candidates, ", "))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "; did you mean %q?", e.Suggestion)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.err
}

func errorf(kind Kind, n ast.Node, format string, args ...any) *Error {
	e := &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Loc = ast.NewLoc(n.Pos(), n.End())
	}
	return e
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsUnresolved(err error) bool {
	k, ok := kindOf(err)
	return ok && k == UnresolvedSymbol
}

func IsTypeConversion(err error) bool {
	k, ok := kindOf(err)
	return ok && k == TypeConversion
}

func IsAmbiguous(err error) bool {
	k, ok := kindOf(err)
	return ok && k == AmbiguousOverload
}

func IsInvalid(err error) bool {
	k, ok := kindOf(err)
	return ok && k == InvalidCommand
}

// metadataError maps a catalog failure onto an unresolved symbol.
func metadataError(n ast.Node, what, name string, err error) *Error {
	e := errorf(UnresolvedSymbol, n, "%s %q not found", what, name)
	if !errors.Is(err, metadata.ErrNotFound) {
		e.Msg = fmt.Sprintf("%s %q: %s", what, name, err)
	}
	e.err = err
	return e
}

// functionError maps an overload failure onto the error taxonomy.
func functionError(n ast.Node, lib *function.Library, err error) *Error {
	var rerr *function.ResolveError
	if !errors.As(err, &rerr) {
		return &Error{Kind: UnresolvedSymbol, Msg: err.Error(), err: err}
	}
	kind := UnresolvedSymbol
	switch {
	case rerr.Ambiguous:
		kind = AmbiguousOverload
	case len(rerr.Candidates) > 0:
		kind = TypeConversion
	}
	e := errorf(kind, n, "%s", rerr.Error())
	e.err = err
	if kind == UnresolvedSymbol {
		var names []string
		for _, m := range lib.Methods() {
			names = append(names, m.Name)
		}
		e.Suggestion = suggest(rerr.Name, names)
	}
	return e
}

// suggest returns the candidate closest to name when it is close enough to
// be a plausible misspelling.
func suggest(name string, candidates []string) string {
	name = strings.ToLower(name)
	limit := len(name)/3 + 1
	best, bestDist := "", limit+1
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	for _, c := range sorted {
		d := levenshtein.ComputeDistance(name, strings.ToLower(c))
		if d > 0 && d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
