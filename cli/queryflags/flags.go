package queryflags

import (
	"errors"
	"strings"

	"github.com/brimdata/vdb/compiler/srcfiles"
	"github.com/spf13/pflag"
)

type Flags struct {
	Query   string
	Include string
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Query, "command", "c", "", "SQL command text")
	fs.StringVarP(&f.Include, "include", "I", "", "file containing the SQL command")
}

// Source returns the command text from -I, -c or the arguments, in that
// order of preference.
func (f *Flags) Source(args []string) (*srcfiles.Source, error) {
	switch {
	case f.Include != "":
		if f.Query != "" || len(args) > 0 {
			return nil, errors.New("cannot combine -I with command text")
		}
		return srcfiles.Read(f.Include)
	case f.Query != "":
		if len(args) > 0 {
			return nil, errors.New("cannot combine -c with command arguments")
		}
		return srcfiles.New("", f.Query), nil
	case len(args) > 0:
		return srcfiles.New("", strings.Join(args, " ")), nil
	}
	return nil, errors.New("no SQL command given: use -c, -I or an argument")
}
