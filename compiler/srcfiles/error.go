package srcfiles

import (
	"fmt"
	"strings"
)

type ErrorList []*Error

func (e *ErrorList) Append(src *Source, msg string, pos, end int) {
	*e = append(*e, &Error{msg, pos, end, src})
}

// Error concatenates the errors in e with a newline between each.
func (e ErrorList) Error() string {
	var b strings.Builder
	for i, err := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

type Error struct {
	Msg string
	Pos int
	End int
	src *Source
}

func (e *Error) Error() string {
	if e.src == nil || e.Pos < 0 || e.Pos > len(e.src.Text) {
		return e.Msg
	}
	start := e.src.Position(e.Pos)
	end := e.src.Position(e.End)
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.src.Name != "" {
		fmt.Fprintf(&b, " in %s", e.src.Name)
	}
	line := e.src.LineOfPos(e.Pos)
	fmt.Fprintf(&b, " at line %d, column %d:\n%s\n", start.Line, start.Column, line)
	if end.IsValid() && end.Line == start.Line && end.Column > start.Column {
		b.WriteString(strings.Repeat(" ", start.Column-1))
		b.WriteString(strings.Repeat("~", end.Column-start.Column))
	} else {
		formatPointError(&b, start)
	}
	return b.String()
}

func formatPointError(b *strings.Builder, start Position) {
	col := start.Column - 1
	for k := range col {
		if k >= col-4 && k != col-1 {
			b.WriteByte('=')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString("^ ===")
}
