package catalogflags

import (
	"errors"
	"fmt"
	"os"

	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/spf13/pflag"
)

var ErrNoCatalog = errors.New("catalog not specified: indicate with --catalog or the VDB_CATALOG environment variable")

type Flags struct {
	Path string
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	def := os.Getenv("VDB_CATALOG")
	fs.StringVar(&f.Path, "catalog", def, "catalog file (env VDB_CATALOG)")
}

func (f *Flags) Load() (*catalog.VDB, error) {
	if f.Path == "" {
		return nil, ErrNoCatalog
	}
	return catalog.Load(f.Path)
}

// Open loads the catalog and indexes it for resolution.
func (f *Flags) Open() (*catalog.VDB, *catalog.Metadata, error) {
	v, err := f.Load()
	if err != nil {
		return nil, nil, err
	}
	md, err := catalog.NewMetadata(v, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return v, md, nil
}
