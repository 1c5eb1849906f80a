package validator

import (
	"regexp"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/function"
)

const FunctionMetadata = "FunctionMetadata"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateMethods checks function definitions the way a catalog declares
// them: names, parameters, result and uniqueness of each signature.  A
// signature identical to a system function is only a warning since the
// qualified name still reaches it.
func ValidateMethods(methods []*function.Method, v vdb.Version) *Report {
	r := NewReport()
	system := function.SystemLibrary(v)
	seen := make(map[string]bool)
	for _, m := range methods {
		object := m.FullName()
		if !identifier.MatchString(m.Name) {
			r.Errorf(FunctionMetadata, object, "%q is not a valid function name", m.Name)
		}
		if m.Result.Type == "" || m.Result.Type == vdb.Null {
			r.Errorf(FunctionMetadata, object, "function must declare a result type")
		}
		params := make(map[string]bool)
		var types []string
		for k, p := range m.Params {
			if p.Name == "" {
				r.Errorf(FunctionMetadata, object, "parameter %d has no name", k+1)
			} else if key := strings.ToLower(p.Name); params[key] {
				r.Errorf(FunctionMetadata, object, "parameter %s is declared more than once", p.Name)
			} else {
				params[key] = true
			}
			if p.Type == vdb.Null {
				r.Errorf(FunctionMetadata, object, "parameter %s has no type", p.Name)
			}
			types = append(types, p.Type)
		}
		sig := strings.ToLower(m.FullName() + "(" + strings.Join(types, ",") + ")")
		if seen[sig] {
			r.Errorf(FunctionMetadata, object, "%s is defined more than once", m.Signature())
		}
		seen[sig] = true
		if system.Find(m.Name, types) != nil {
			r.Warnf(FunctionMetadata, object, "%s has the same signature as a system function", m.Signature())
		}
	}
	return r
}
