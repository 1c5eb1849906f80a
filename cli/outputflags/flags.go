package outputflags

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"
)

var Formats = []string{"text", "json"}

// A TextWriter is a command result that knows its text rendering.  JSON
// output encodes the result itself.
type TextWriter interface {
	WriteText(io.Writer) error
}

type Flags struct {
	Format     string
	outputFile string
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Format, "format", "text", "output format [text,json]")
	fs.StringVarP(&f.outputFile, "output", "o", "", "write output to file")
}

func (f *Flags) Init() error {
	if !slices.Contains(Formats, f.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", f.Format, Formats)
	}
	if f.outputFile == "-" {
		f.outputFile = ""
	}
	return nil
}

func (f *Flags) FileName() string {
	return f.outputFile
}

// Open returns the output file or, when none was given, stdout wrapped
// so that closing it is a no-op.
func (f *Flags) Open(stdout io.Writer) (io.WriteCloser, error) {
	if f.outputFile == "" {
		return nopCloser{stdout}, nil
	}
	return os.Create(f.outputFile)
}

// Write renders v to w in the selected format.
func (f *Flags) Write(w io.Writer, v TextWriter) error {
	if f.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return v.WriteText(w)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
