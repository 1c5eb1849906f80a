package importsqlite

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/cli"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/brimdata/vdb/metadata/catalog/sqlimport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Command struct {
	*cli.Flags
	schema string
	name   string
}

func New(flags *cli.Flags) *cobra.Command {
	c := &Command{Flags: flags}
	cmd := &cobra.Command{
		Use:   "import-sqlite [options] database",
		Short: "write a catalog describing a SQLite database",
		Long: `
The "import-sqlite" command reads the tables of a SQLite database and
writes a catalog with one physical schema describing them: columns and
their types, primary and unique keys and foreign keys.

When --catalog names an existing catalog, the schema is added to it,
replacing any schema of the same name, and the whole catalog is written.
The catalog is always written as YAML.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&c.schema, "schema", "", "name of the imported schema (default is the database file name)")
	cmd.Flags().StringVar(&c.name, "name", "vdb", "name of a new catalog")
	return cmd
}

func (c *Command) Run(cmd *cobra.Command, path string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	name := c.schema
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s, err := sqlimport.Import(ctx, c.Logger, path, name)
	if err != nil {
		return err
	}
	v := &catalog.VDB{Name: c.name, Version: vdb.Current.String()}
	if c.Catalog.Path != "" {
		if v, err = c.Catalog.Load(); err != nil {
			return err
		}
	}
	merge(v, s)
	if err := v.Link(); err != nil {
		return err
	}
	c.Logger.Info("Imported schema",
		zap.String("schema", s.Name),
		zap.Int("tables", len(s.Tables)))
	w, err := c.Output.Open(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer w.Close()
	return writeYAML(w, v)
}

func merge(v *catalog.VDB, s *catalog.Schema) {
	for k, other := range v.Schemas {
		if strings.EqualFold(other.Name, s.Name) {
			v.Schemas[k] = s
			return
		}
	}
	v.Schemas = append(v.Schemas, s)
}

func writeYAML(w io.Writer, v *catalog.VDB) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
