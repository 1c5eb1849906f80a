package root

import (
	"github.com/brimdata/vdb/cli"
	"github.com/brimdata/vdb/cmd/vdb/importsqlite"
	"github.com/brimdata/vdb/cmd/vdb/keys"
	"github.com/brimdata/vdb/cmd/vdb/resolve"
	"github.com/brimdata/vdb/cmd/vdb/validate"
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	flags := &cli.Flags{}
	cmd := &cobra.Command{
		Use:   "vdb",
		Short: "resolve and validate SQL against a virtual database catalog",
		Long: `
The "vdb" command binds SQL commands to the schemas of a virtual database
catalog.  Catalogs are YAML files listing physical (source) schemas and
virtual schemas with their tables, views, procedures and functions.

"vdb resolve" prints a command with every name bound to its catalog
object, every implicit conversion made explicit and the type of each
column it returns.  "vdb validate" checks whole catalogs: view queries and
procedure bodies must resolve, foreign keys must reference unique keys
and function definitions must be unambiguous.  "vdb keys" reports which
groups of a join keep their keys.  "vdb import-sqlite" writes a catalog
schema describing an existing SQLite database.

The catalog is given with --catalog or the VDB_CATALOG environment
variable.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.SetFlags(cmd.PersistentFlags())
	cmd.AddCommand(
		resolve.New(flags),
		validate.New(flags),
		keys.New(flags),
		importsqlite.New(flags),
	)
	return cmd
}
