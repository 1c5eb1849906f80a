package sfmt

import (
	"fmt"
	"strings"
)

type formatter struct {
	strings.Builder
	indent int
	tab    int
	// pending holds a newline that is written lazily so that closing
	// brackets land on their own line only when something follows.
	pending bool
}

func (f *formatter) write(args ...any) {
	f.flushNewline()
	if len(args) == 1 {
		f.WriteString(args[0].(string))
		return
	}
	fmt.Fprintf(&f.Builder, args[0].(string), args[1:]...)
}

func (f *formatter) flushNewline() {
	if f.pending {
		f.WriteByte('\n')
		f.WriteString(strings.Repeat(" ", f.indent))
		f.pending = false
	}
}

func (f *formatter) ret() {
	f.pending = true
}

func (f *formatter) open(args ...any) {
	f.write(args...)
	f.indent += f.tab
}

func (f *formatter) close() {
	f.indent -= f.tab
	if f.indent < 0 {
		f.indent = 0
	}
}

func (f *formatter) flush() {
	f.pending = false
}
