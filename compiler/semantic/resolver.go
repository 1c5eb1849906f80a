// Package semantic binds the names in a parsed command to catalog objects
// and assigns a type to every expression.  Resolution mutates the command
// in place and is idempotent: resolving a tree twice leaves it unchanged
// and consults the catalog only for objects that were not yet bound.
package semantic

import (
	"fmt"

	"github.com/brimdata/vdb/coerce"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata"
	"go.uber.org/zap"
)

type Options struct {
	Logger *zap.Logger
	// KeepNullTypes leaves projected null literals typed null instead of
	// defaulting them to string.  The validator sets it so that views
	// projecting untyped nulls can be reported.
	KeepNullTypes bool
}

// A Resolver resolves commands and expressions against one catalog.  It
// is not safe for concurrent use but any number of Resolvers may share a
// catalog.
type Resolver struct {
	md      *metadata.TempMetadata
	root    *metadata.TempStore
	lattice *coerce.Lattice
	funcs   *function.Resolver
	logger  *zap.Logger
	opts    Options
}

func New(md metadata.Metadata, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var root *metadata.TempStore
	if t, ok := md.(*metadata.TempMetadata); ok {
		root = t.Store()
	} else {
		root = metadata.NewTempStore()
	}
	lattice := coerce.For(md.Version())
	return &Resolver{
		md:      metadata.NewTempMetadata(md, root),
		root:    root,
		lattice: lattice,
		funcs:   function.NewResolver(md.Functions(), lattice),
		logger:  logger,
		opts:    opts,
	}
}

// Metadata returns the catalog overlaid with the temporary groups created
// so far.
func (r *Resolver) Metadata() *metadata.TempMetadata {
	return r.md
}

func (r *Resolver) Lattice() *coerce.Lattice {
	return r.lattice
}

// ResolveCommand resolves cmd and every command nested in it.  Temporary
// groups created along the way, other than temp tables, are discarded when
// it returns.
func (r *Resolver) ResolveCommand(cmd ast.Command) error {
	defer r.enterStore()()
	return r.command(nil, cmd)
}

// ResolveExpression resolves an expression that may refer to the elements
// of groups.
func (r *Resolver) ResolveExpression(e ast.Expr, groups ...*ast.GroupSymbol) (ast.Expr, error) {
	sc := &scope{command: true}
	for _, g := range groups {
		if err := r.ResolveGroup(g); err != nil {
			return nil, err
		}
		sc.groups = append(sc.groups, g)
	}
	return r.expr(sc, e)
}

// ResolveCommand resolves cmd against md with default options.
func ResolveCommand(cmd ast.Command, md metadata.Metadata) error {
	return New(md, Options{}).ResolveCommand(cmd)
}

// ResolveExpression resolves e against md with default options.
func ResolveExpression(e ast.Expr, md metadata.Metadata, groups ...*ast.GroupSymbol) (ast.Expr, error) {
	return New(md, Options{}).ResolveExpression(e, groups...)
}

func (r *Resolver) command(outer *scope, cmd ast.Command) (err error) {
	kind := commandKind(cmd)
	r.logger.Debug("resolving command", zap.String("kind", kind))
	defer func() {
		resolutions.WithLabelValues(kind).Inc()
		if err != nil {
			if k, ok := kindOf(err); ok {
				resolveErrors.WithLabelValues(k.String()).Inc()
			} else {
				resolveErrors.WithLabelValues("other").Inc()
			}
		}
	}()
	switch cmd := cmd.(type) {
	case *ast.Query:
		return r.query(outer, cmd)
	case *ast.SetQuery:
		return r.setQuery(outer, cmd)
	case *ast.Insert:
		return r.insert(outer, cmd)
	case *ast.Update:
		return r.update(outer, cmd)
	case *ast.Delete:
		return r.delete(outer, cmd)
	case *ast.StoredProcedure:
		return r.storedProcedure(outer, cmd)
	case *ast.DynamicCommand:
		return r.dynamic(outer, cmd)
	case *ast.CreateProcedure:
		return r.createProcedure(outer, cmd, nil)
	case *ast.CreateTable:
		return r.createTable(cmd)
	}
	return fmt.Errorf("semantic: unknown command type %T", cmd)
}

func commandKind(cmd ast.Command) string {
	switch cmd.(type) {
	case *ast.Query:
		return "query"
	case *ast.SetQuery:
		return "setquery"
	case *ast.Insert:
		return "insert"
	case *ast.Update:
		return "update"
	case *ast.Delete:
		return "delete"
	case *ast.StoredProcedure:
		return "exec"
	case *ast.DynamicCommand:
		return "dynamic"
	case *ast.CreateProcedure:
		return "procedure"
	case *ast.CreateTable:
		return "create"
	}
	return "unknown"
}

// enterStore gives the resolver a temporary store nested in the current
// one and returns the function that restores the current one.
func (r *Resolver) enterStore() func() {
	saved := r.md
	r.md = metadata.NewTempMetadata(saved, saved.Store().Child())
	return func() {
		r.md = saved
	}
}
