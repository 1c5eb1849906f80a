package cli

import (
	"errors"

	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/compiler/srcfiles"
)

// ErrInvalid is returned by commands that already reported the problems
// they found and only need a failing exit status.
var ErrInvalid = errors.New("invalid")

// SourceError places a resolver error at its location in src so that it
// is reported with the offending line.
func SourceError(src *srcfiles.Source, err error) error {
	var serr *semantic.Error
	if !errors.As(err, &serr) || serr.Loc.Last <= serr.Loc.First {
		return err
	}
	src.AddError(serr.Error(), serr.Loc.First, serr.Loc.Last)
	return src.Error()
}
