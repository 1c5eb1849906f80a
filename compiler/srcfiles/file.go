package srcfiles

import (
	"os"
	"sort"
)

// A Source is the text of one or more SQL commands and the name of the
// file it was read from, if any.  Parse errors are accumulated on the
// Source so they can be reported with line and column.
type Source struct {
	Name   string
	Text   string
	lines  []int
	errors ErrorList
}

func New(name, text string) *Source {
	var lines []int
	line := 0
	for offset := 0; offset < len(text); offset++ {
		if line >= 0 {
			lines = append(lines, line)
		}
		line = -1
		if text[offset] == '\n' {
			line = offset + 1
		}
	}
	if len(lines) == 0 {
		lines = []int{0}
	}
	return &Source{Name: name, Text: text, lines: lines}
}

func Read(path string) (*Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(path, string(b)), nil
}

func (s *Source) AddError(msg string, pos, end int) {
	s.errors.Append(s, msg, pos, end)
}

// Error returns the accumulated errors or nil if there are none.
func (s *Source) Error() error {
	if len(s.errors) == 0 {
		return nil
	}
	return s.errors
}

func (s *Source) Position(pos int) Position {
	if pos < 0 {
		return Position{-1, -1, -1}
	}
	i := searchLine(s.lines, pos)
	return Position{
		Offset: pos,
		Line:   i + 1,
		Column: pos - s.lines[i] + 1,
	}
}

// LineOfPos returns the line of text containing pos without its newline.
func (s *Source) LineOfPos(pos int) string {
	i := searchLine(s.lines, pos)
	start := s.lines[i]
	end := len(s.Text)
	if i+1 < len(s.lines) {
		end = s.lines[i+1]
	}
	b := s.Text[start:end]
	if len(b) > 0 && b[len(b)-1] == '\n' {
		b = b[:len(b)-1]
	}
	return b
}

func searchLine(lines []int, offset int) int {
	i := sort.Search(len(lines), func(i int) bool { return lines[i] > offset }) - 1
	if i < 0 {
		return 0
	}
	return i
}

type Position struct {
	Offset int `json:"offset"` // Offset relative to Source.Text.
	Line   int `json:"line"`   // 1-based line number.
	Column int `json:"column"` // 1-based column number.
}

func (p Position) IsValid() bool { return p.Offset >= 0 }
