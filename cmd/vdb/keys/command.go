package keys

import (
	"errors"
	"io"
	"strings"

	"github.com/brimdata/vdb/cli"
	"github.com/brimdata/vdb/cli/queryflags"
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/optimizer"
	"github.com/brimdata/vdb/compiler/parser"
	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Command struct {
	*cli.Flags
	queryFlags queryflags.Flags
}

func New(flags *cli.Flags) *cobra.Command {
	c := &Command{Flags: flags}
	cmd := &cobra.Command{
		Use:   "keys [options] [sql]",
		Short: "list the key preserved groups of a query",
		Long: `
The "keys" command resolves a query and lists the groups of its FROM
clause whose rows appear at most once in the result of the join, one per
line.  Foreign keys are linked across schemas before the analysis so
joins between source schemas are recognized.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.OutOrStdout(), args)
		},
	}
	c.queryFlags.SetFlags(cmd.Flags())
	return cmd
}

type Result struct {
	Groups []string `json:"groups"`
}

func (r *Result) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, g := range r.Groups {
		b.WriteString(g)
		b.WriteByte('\n')
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
	v, md, err := c.Catalog.Open()
	if err != nil {
		return err
	}
	// The catalog rules link foreign keys that cross schemas.
	report := validator.ValidateCatalog(v, validator.Options{Logger: c.Logger})
	c.Logger.Debug("Catalog linked", zap.Int("items", len(report.Items)))
	cmd, err := parser.ParseSource(src)
	if err != nil {
		return err
	}
	q, ok := cmd.(*ast.Query)
	if !ok {
		return errors.New("keys requires a SELECT query")
	}
	r := semantic.New(md, semantic.Options{Logger: c.Logger})
	if err := r.ResolveCommand(q); err != nil {
		return cli.SourceError(src, err)
	}
	groups, err := optimizer.New(r.Metadata(), c.Logger).KeyPreserved(q)
	if err != nil {
		return err
	}
	result := &Result{Groups: []string{}}
	for _, g := range groups {
		result.Groups = append(result.Groups, g.Name)
	}
	w, err := c.Output.Open(stdout)
	if err != nil {
		return err
	}
	defer w.Close()
	return c.Output.Write(w, result)
}
