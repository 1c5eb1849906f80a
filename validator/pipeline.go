package validator

import (
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/parser"
	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata"
	"github.com/brimdata/vdb/metadata/catalog"
	"go.uber.org/zap"
)

// Rule names, in the order the rules run.
const (
	SourceModelArtifacts = "SourceModelArtifacts"
	CrossSchemaResolver  = "CrossSchemaResolver"
	ResolveQueryPlans    = "ResolveQueryPlans"
	MinimalMetadata      = "MinimalMetadata"
)

type Options struct {
	Logger *zap.Logger
	// Parse parses view queries and procedure bodies.  The default is
	// parser.ParseCommand.
	Parse func(string) (ast.Command, error)
	// Cache is shared with the resolvers of the run.  A nil Cache gets a
	// private one.
	Cache *metadata.Cache
}

type rule struct {
	name string
	run  func(*run)
}

var rules = []rule{
	{SourceModelArtifacts, (*run).sourceModelArtifacts},
	{CrossSchemaResolver, (*run).crossSchemaResolver},
	{ResolveQueryPlans, (*run).resolveQueryPlans},
	{MinimalMetadata, (*run).minimalMetadata},
}

type run struct {
	vdb    *catalog.VDB
	md     *catalog.Metadata
	report *Report
	opts   Options
	logger *zap.Logger
}

// ValidateCatalog runs every rule over v and returns the combined report.
// A failure in one record never stops the others from being checked.
// Foreign keys and materialized views linked by CrossSchemaResolver stay
// linked in v.
func ValidateCatalog(v *catalog.VDB, opts Options) *Report {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Parse == nil {
		opts.Parse = parser.ParseCommand
	}
	report := NewReport()
	md, err := catalog.NewMetadata(v, opts.Cache)
	if err != nil {
		report.Errorf(SourceModelArtifacts, v.Name, "%s", err)
		return report
	}
	r := &run{
		vdb:    v,
		md:     md,
		report: report,
		opts:   opts,
		logger: opts.Logger.With(zap.Stringer("report", report.ID), zap.String("vdb", v.Name)),
	}
	for _, rule := range rules {
		before := len(report.Items)
		r.logger.Info("validation rule started", zap.String("rule", rule.name))
		rule.run(r)
		r.logger.Info("validation rule finished",
			zap.String("rule", rule.name),
			zap.Int("items", len(report.Items)-before))
	}
	return report
}

func (r *run) sourceModelArtifacts() {
	const rule = SourceModelArtifacts
	for _, s := range r.vdb.Schemas {
		for _, t := range s.Tables {
			r.logger.Debug("checking table", zap.String("table", t.FullName()))
			switch {
			case s.Physical && t.Virtual:
				r.report.Errorf(rule, t.FullName(), "virtual table is not allowed in source schema %s", s.Name)
			case !s.Physical && !t.Virtual:
				r.report.Errorf(rule, t.FullName(), "physical table is not allowed in virtual schema %s", s.Name)
			}
			if t.Materialized && !t.Virtual {
				r.report.Errorf(rule, t.FullName(), "only virtual tables can be materialized")
			}
		}
		for _, p := range s.Procedures {
			r.logger.Debug("checking procedure", zap.String("procedure", p.FullName()))
			switch {
			case s.Physical && p.Virtual:
				r.report.Errorf(rule, p.FullName(), "virtual procedure is not allowed in source schema %s", s.Name)
			case !s.Physical && !p.Virtual:
				r.report.Errorf(rule, p.FullName(), "physical procedure is not allowed in virtual schema %s", s.Name)
			}
			r.params(p.FullName(), p.Params, true)
		}
		for _, f := range s.Functions {
			r.logger.Debug("checking function", zap.String("function", f.FullName()))
			pushdown := f.Method().PushDown
			switch {
			case !s.Physical && pushdown == function.MustPushDown:
				r.report.Errorf(rule, f.FullName(), "function requiring push down is not allowed in virtual schema %s", s.Name)
			case s.Physical && pushdown == function.CannotPushDown:
				r.report.Errorf(rule, f.FullName(), "function in source schema %s must be pushed down", s.Name)
			}
			r.params(f.FullName(), f.Params, false)
		}
	}
}

// params reports duplicate or misplaced vararg and return parameters.
func (r *run) params(object string, params []*catalog.Param, returns bool) {
	const rule = SourceModelArtifacts
	var nreturn, nvararg int
	last := -1
	for k, p := range params {
		mode := strings.ToLower(p.Mode)
		if mode == "return" {
			nreturn++
			if !returns {
				r.report.Errorf(rule, object, "function parameter %s cannot be a return parameter", p.Name)
			}
			if p.Vararg {
				r.report.Errorf(rule, object, "return parameter %s cannot be vararg", p.Name)
			}
			continue
		}
		last = k
		if p.Vararg {
			nvararg++
			if mode == "out" || mode == "inout" {
				r.report.Errorf(rule, object, "vararg parameter %s must be an input parameter", p.Name)
			}
		}
	}
	if nreturn > 1 {
		r.report.Errorf(rule, object, "declares %d return parameters", nreturn)
	}
	if nvararg > 1 {
		r.report.Errorf(rule, object, "declares %d vararg parameters", nvararg)
	}
	for k, p := range params {
		if p.Vararg && k != last && !strings.EqualFold(p.Mode, "return") {
			r.report.Errorf(rule, object, "vararg parameter %s must be the last parameter", p.Name)
		}
	}
}

func lookupTable(v *catalog.VDB, s *catalog.Schema, name string) *catalog.Table {
	if strings.Contains(name, ".") {
		return v.Table(name)
	}
	return s.Table(name)
}

func (r *run) crossSchemaResolver() {
	const rule = CrossSchemaResolver
	for _, s := range r.vdb.Schemas {
		for _, t := range s.Tables {
			for _, fk := range t.ForeignKeys {
				if fk.Info() == nil || fk.Resolved() {
					continue
				}
				ref := lookupTable(r.vdb, s, fk.References)
				if ref == nil {
					r.report.Errorf(rule, t.FullName(), "foreign key %s references unknown table %s", fk.Name, fk.References)
					continue
				}
				k := ref.FindKey(fk.ReferenceColumns, len(fk.Columns))
				if k == nil {
					r.report.Errorf(rule, t.FullName(), "foreign key %s matches no unique key of %s", fk.Name, ref.FullName())
					continue
				}
				if len(k.Columns) != len(fk.Columns) {
					r.report.Errorf(rule, t.FullName(), "foreign key %s has %d columns but key %s of %s has %d", fk.Name, len(fk.Columns), k.Name, ref.FullName(), len(k.Columns))
					continue
				}
				fk.Link(k)
				r.logger.Debug("linked foreign key",
					zap.String("table", t.FullName()),
					zap.String("fk", fk.Name),
					zap.String("references", ref.FullName()))
			}
			if !t.Materialized || t.MaterializedTable == "" || t.MaterializedTarget() != nil {
				continue
			}
			target := lookupTable(r.vdb, s, t.MaterializedTable)
			if target == nil {
				r.report.Errorf(rule, t.FullName(), "materialized table %s does not exist", t.MaterializedTable)
				continue
			}
			if !target.Schema().Physical {
				r.report.Warnf(rule, t.FullName(), "materialized table %s is not in a source schema", target.FullName())
			}
			t.SetMaterializedTarget(target)
			r.logger.Debug("linked materialized table",
				zap.String("table", t.FullName()),
				zap.String("target", target.FullName()))
		}
	}
}

func (r *run) resolver() *semantic.Resolver {
	return semantic.New(r.md, semantic.Options{Logger: r.logger, KeepNullTypes: true})
}

func (r *run) resolveQueryPlans() {
	for _, s := range r.vdb.Schemas {
		for _, t := range s.Tables {
			if t.Virtual {
				r.resolveView(t)
			}
		}
		for _, p := range s.Procedures {
			if p.Virtual {
				r.resolveProcedure(p)
			}
		}
	}
}

func (r *run) resolveView(t *catalog.Table) {
	const rule = ResolveQueryPlans
	object := t.FullName()
	r.logger.Debug("resolving view", zap.String("table", object))
	if strings.TrimSpace(t.Query) == "" {
		r.report.Errorf(rule, object, "virtual table has no query plan")
		return
	}
	cmd, err := r.opts.Parse(t.Query)
	if err != nil {
		r.report.Errorf(rule, object, "query plan does not parse: %s", err)
		return
	}
	if err := r.resolver().ResolveCommand(cmd); err != nil {
		r.report.Errorf(rule, object, "query plan does not resolve: %s", err)
		return
	}
	projected, ok := ast.ProjectedSymbols(cmd)
	if !ok {
		r.report.Errorf(rule, object, "query plan does not return rows")
		return
	}
	for _, p := range projected {
		if ast.TypeOf(p) == vdb.Null {
			r.report.Errorf(rule, object, "column %s projects a null without a type", ast.OutputName(p))
		}
	}
	if len(t.Columns) > 0 && len(t.Columns) != len(projected) {
		r.report.Errorf(rule, object, "query plan projects %d columns but %d are declared", len(projected), len(t.Columns))
	} else if len(t.Columns) > 0 {
		lattice := coerce.For(r.md.Version())
		for k, c := range t.Columns {
			typ := ast.TypeOf(projected[k])
			if typ != vdb.Null && !lattice.CanImplicitlyConvert(typ, c.Type) {
				r.report.Warnf(rule, object, "column %s is declared %s but its query projects %s", c.Name, c.Type, typ)
			}
		}
	}
	newChecker(r.report, object, r.md).command(cmd)
}

func (r *run) resolveProcedure(p *catalog.Procedure) {
	const rule = ResolveQueryPlans
	object := p.FullName()
	r.logger.Debug("resolving procedure", zap.String("procedure", object))
	if strings.TrimSpace(p.Body) == "" {
		r.report.Errorf(rule, object, "virtual procedure has no body")
		return
	}
	cmd, err := r.opts.Parse(p.Body)
	if err != nil {
		r.report.Errorf(rule, object, "procedure body does not parse: %s", err)
		return
	}
	cp, ok := cmd.(*ast.CreateProcedure)
	if !ok {
		r.report.Errorf(rule, object, "procedure body is not a block")
		return
	}
	if err := r.resolver().ResolveProcedureBody(cp, p.Info()); err != nil {
		r.report.Errorf(rule, object, "procedure body does not resolve: %s", err)
		return
	}
	newChecker(r.report, object, r.md).command(cp)
}

func (r *run) minimalMetadata() {
	const rule = MinimalMetadata
	var methods []*function.Method
	for _, s := range r.vdb.Schemas {
		if s.IsEmpty() {
			r.report.Errorf(rule, s.Name, "schema defines no tables, procedures or functions")
		}
		for _, t := range s.Tables {
			if t.Virtual && len(t.Columns) == 0 {
				r.report.Errorf(rule, t.FullName(), "virtual table declares no columns")
			}
		}
		for _, f := range s.Functions {
			methods = append(methods, f.Method())
		}
	}
	r.report.Merge(ValidateMethods(methods, r.md.Version()), "")
}
