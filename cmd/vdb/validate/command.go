package validate

import (
	"context"
	"io"
	"strings"

	"github.com/brimdata/vdb/cli"
	"github.com/brimdata/vdb/cli/catalogflags"
	"github.com/brimdata/vdb/metadata"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/brimdata/vdb/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Command struct {
	*cli.Flags
	warnings bool
}

func New(flags *cli.Flags) *cobra.Command {
	c := &Command{Flags: flags}
	cmd := &cobra.Command{
		Use:   "validate [options] [catalog ...]",
		Short: "check catalogs for unresolvable views, procedures and keys",
		Long: `
The "validate" command runs the catalog rules over each catalog file
named on the command line, or over the --catalog catalog when none is
named.  Each catalog is validated independently and concurrently.  Every
problem found is printed with its severity, the rule that found it and
the catalog object it concerns.

The exit status is 1 if any catalog has an ERROR item.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().BoolVar(&c.warnings, "warnings", true, "include WARNING items in the output")
	return cmd
}

type Result struct {
	File   string            `json:"file"`
	Error  string            `json:"error,omitempty"`
	Report *validator.Report `json:"report,omitempty"`
}

type Results []*Result

func (r Results) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, res := range r {
		b.WriteString("== ")
		b.WriteString(res.File)
		b.WriteByte('\n')
		switch {
		case res.Error != "":
			b.WriteString(res.Error)
			b.WriteByte('\n')
		case len(res.Report.Items) == 0:
			b.WriteString("ok\n")
		default:
			for _, item := range res.Report.Items {
				b.WriteString(item.String())
				b.WriteByte('\n')
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (c *Command) Run(stdout io.Writer, args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) == 0 {
		if c.Catalog.Path == "" {
			return catalogflags.ErrNoCatalog
		}
		args = []string{c.Catalog.Path}
	}
	results := make(Results, len(args))
	cache := metadata.NewCache(0)
	group, ctx := errgroup.WithContext(ctx)
	for k, path := range args {
		group.Go(func() error {
			results[k] = c.validate(ctx, path, cache)
			return ctx.Err()
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	failed := false
	for _, res := range results {
		if res.Error != "" || res.Report.HasErrors() {
			failed = true
		}
		if !c.warnings && res.Report != nil {
			res.Report.Items = res.Report.Errors()
		}
	}
	w, err := c.Output.Open(stdout)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := c.Output.Write(w, results); err != nil {
		return err
	}
	if failed {
		return cli.ErrInvalid
	}
	return nil
}

func (c *Command) validate(ctx context.Context, path string, cache *metadata.Cache) *Result {
	logger := c.Logger.With(zap.String("catalog", path))
	v, err := catalog.Load(path)
	if err != nil {
		logger.Warn("Catalog load failed", zap.Error(err))
		return &Result{File: path, Error: err.Error()}
	}
	if ctx.Err() != nil {
		return &Result{File: path, Error: ctx.Err().Error()}
	}
	report := validator.ValidateCatalog(v, validator.Options{Logger: logger, Cache: cache})
	logger.Info("Catalog validated",
		zap.Stringer("report", report.ID),
		zap.Int("items", len(report.Items)),
		zap.Int("errors", len(report.Errors())))
	return &Result{File: path, Report: report}
}
