package resolve

import (
	"fmt"
	"io"
	"strings"

	"github.com/brimdata/vdb/cli"
	"github.com/brimdata/vdb/cli/queryflags"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/optimizer"
	"github.com/brimdata/vdb/compiler/optimizer/demand"
	"github.com/brimdata/vdb/compiler/parser"
	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/compiler/sfmt"
	"github.com/brimdata/vdb/validator"
	"github.com/spf13/cobra"
)

type Command struct {
	*cli.Flags
	queryFlags    queryflags.Flags
	demand        bool
	validate      bool
	keepNullTypes bool
}

func New(flags *cli.Flags) *cobra.Command {
	c := &Command{Flags: flags}
	cmd := &cobra.Command{
		Use:   "resolve [options] [sql]",
		Short: "bind a SQL command to the catalog and print it with types",
		Long: `
The "resolve" command parses a SQL command, binds its names to the
catalog and prints it back with canonical group names, implicit
conversions and folded constants.  The name and type of each column the
command returns follow, one per line.

With --demand, the catalog columns the command reads are listed too.
With --validate, the command is also checked for problems such as
ungrouped columns and invalid LIKE patterns.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.OutOrStdout(), args)
		},
	}
	c.queryFlags.SetFlags(cmd.Flags())
	cmd.Flags().BoolVar(&c.demand, "demand", false, "list the catalog columns the command reads")
	cmd.Flags().BoolVar(&c.validate, "validate", false, "check the resolved command")
	cmd.Flags().BoolVar(&c.keepNullTypes, "keep-null-types", false, "leave projected null literals untyped")
	return cmd
}

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Result struct {
	SQL     string            `json:"sql"`
	Columns []Column          `json:"columns,omitempty"`
	Demand  []string          `json:"demand,omitempty"`
	Report  *validator.Report `json:"report,omitempty"`
}

func (r *Result) WriteText(w io.Writer) error {
	var b strings.Builder
	b.WriteString(r.SQL)
	b.WriteByte('\n')
	for _, c := range r.Columns {
		fmt.Fprintf(&b, "%s %s\n", c.Name, c.Type)
	}
	if len(r.Demand) > 0 {
		b.WriteString("demand:\n")
		for _, d := range r.Demand {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	if r.Report != nil {
		for _, item := range r.Report.Items {
			b.WriteString(item.String())
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (c *Command) Run(stdout io.Writer, args []string) error {
	_, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	src, err := c.queryFlags.Source(args)
	if err != nil {
		return err
	}
	_, md, err := c.Catalog.Open()
	if err != nil {
		return err
	}
	cmd, err := parser.ParseSource(src)
	if err != nil {
		return err
	}
	r := semantic.New(md, semantic.Options{Logger: c.Logger, KeepNullTypes: c.keepNullTypes})
	if err := r.ResolveCommand(cmd); err != nil {
		return cli.SourceError(src, err)
	}
	result := &Result{SQL: sfmt.Command(cmd)}
	if projected, ok := ast.ProjectedSymbols(cmd); ok {
		for _, p := range projected {
			result.Columns = append(result.Columns, Column{Name: ast.OutputName(p), Type: ast.TypeOf(p)})
		}
	}
	if c.demand {
		for _, path := range demand.Paths(optimizer.DemandForCommand(cmd)) {
			result.Demand = append(result.Demand, strings.Join(path, "."))
		}
	}
	if c.validate {
		result.Report = validator.Validate(cmd, r.Metadata())
	}
	w, err := c.Output.Open(stdout)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := c.Output.Write(w, result); err != nil {
		return err
	}
	if result.Report != nil && result.Report.HasErrors() {
		return cli.ErrInvalid
	}
	return nil
}
