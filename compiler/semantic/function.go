package semantic

import (
	"errors"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/sfmt"
	"github.com/brimdata/vdb/function"
	"go.uber.org/zap"
)

func describe(e ast.Expr) string {
	return sfmt.Expr(e)
}

// exprFor resolves e where the context expects a value of type target: the
// column of an assignment, a procedure parameter or the typed side of a
// comparison.  When e is a call with an untyped argument the target breaks
// ties between overloads by the cost of converting their results.
func (r *Resolver) exprFor(sc *scope, e ast.Expr, target string) (ast.Expr, error) {
	f, ok := e.(*ast.Function)
	if !ok || f.Method != nil || isUnknown(target) {
		return r.expr(sc, e)
	}
	for k, arg := range f.Args {
		arg, err := r.expr(sc, arg)
		if err != nil {
			return nil, err
		}
		f.Args[k] = arg
	}
	return r.functionFor(f, target)
}

// function picks the overload of a call whose arguments are resolved and
// converts the arguments to its parameter types.
func (r *Resolver) function(f *ast.Function) (ast.Expr, error) {
	return r.functionFor(f, "")
}

func (r *Resolver) functionFor(f *ast.Function, target string) (ast.Expr, error) {
	if f.Method != nil {
		return f, nil
	}
	if isConversion(f.Name) {
		return f, r.conversion(f)
	}
	lib := r.md.Functions()
	args := make([]function.Argument, 0, len(f.Args))
	types := make([]string, 0, len(f.Args))
	unknown := false
	for _, arg := range f.Args {
		typ := ast.TypeOf(arg)
		if isUnknown(typ) {
			typ = vdb.Null
			unknown = true
		}
		a := function.Argument{Type: typ}
		if c, ok := arg.(*ast.Constant); ok {
			a.Constant = true
			a.Value = c.Value
		}
		args = append(args, a)
		types = append(types, typ)
	}
	m, convs, err := r.funcs.ResolveConversions(f.Name, target, args, unknown)
	if errors.Is(err, function.ErrNotApplicable) {
		if m = lib.Find(f.Name, types); m == nil {
			err = &function.ResolveError{Name: f.Name, Types: types}
		} else {
			err = nil
		}
	}
	if err != nil {
		return nil, functionError(f, lib, err)
	}
	for k, arg := range f.Args {
		param := m.ParamType(k)
		var conv *function.Method
		if convs != nil {
			conv = convs[k]
		}
		switch {
		case isUnknown(ast.TypeOf(arg)):
			arg, err = r.convert(arg, param)
		case conv == nil:
			continue
		case r.foldable(arg, param):
			arg, err = r.fold(arg.(*ast.Constant), param)
		default:
			arg = r.wrap(arg, ast.TypeOf(arg), param)
		}
		if err != nil {
			return nil, err
		}
		f.Args[k] = arg
	}
	f.Method = m
	f.Type = m.Result.Type
	r.logger.Debug("function resolved", zap.String("call", f.Name), zap.String("method", m.String()))
	return f, nil
}

func isConversion(name string) bool {
	return strings.EqualFold(name, function.Convert) || strings.EqualFold(name, function.Cast)
}

// conversion resolves a user-authored CONVERT or CAST.
func (r *Resolver) conversion(f *ast.Function) error {
	if len(f.Args) != 2 {
		return errorf(InvalidCommand, f, "%s requires two arguments", f.Name)
	}
	var target string
	if c, ok := f.Args[1].(*ast.Constant); ok {
		target, _ = c.Value.(string)
	}
	if target == "" {
		return errorf(InvalidCommand, f, "%s requires a type name", f.Name)
	}
	if canonical, ok := vdb.LookupPrimitive(target); ok {
		target = canonical
	} else if !vdb.IsArray(target) {
		return errorf(UnresolvedSymbol, f, "unknown type %q", target)
	}
	source := ast.TypeOf(f.Args[0])
	if isUnknown(source) {
		arg, err := r.convert(f.Args[0], target)
		if err != nil {
			return err
		}
		f.Args[0] = arg
		source = target
	}
	if !r.lattice.CanExplicitlyConvert(source, target) {
		return errorf(TypeConversion, f, "cannot convert %s of type %s to %s", describe(f.Args[0]), source, target)
	}
	f.Method = r.md.Functions().FindTypedConversion(source, target)
	f.Type = target
	return nil
}
