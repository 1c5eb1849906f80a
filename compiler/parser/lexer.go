package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	// tokQuoted is a double-quoted identifier.  It is never a keyword.
	tokQuoted
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
	end  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return fmt.Sprintf("'%s'", t.text)
	case tokQuoted:
		return fmt.Sprintf("%q", t.text)
	}
	return t.text
}

// is reports whether t is the keyword or operator s.
func (t token) is(s string) bool {
	switch t.kind {
	case tokIdent:
		return strings.EqualFold(t.text, s)
	case tokOp:
		return t.text == s
	}
	return false
}

type lexError struct {
	msg string
	pos int
}

func (e *lexError) Error() string {
	return e.msg
}

var operators = []string{"<>", "!=", "<=", ">=", "||", "=>", "=", "<", ">", "+", "-", "*", "/", ",", "(", ")", ";", ".", "?", "[", "]", "{", "}", ":"}

func lex(text string) ([]token, error) {
	var toks []token
	pos := 0
	for {
		pos = skipSpace(text, pos)
		if pos >= len(text) {
			toks = append(toks, token{kind: tokEOF, pos: pos, end: pos})
			return toks, nil
		}
		tok, err := scan(text, pos)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		pos = tok.end
	}
}

func skipSpace(text string, pos int) int {
	for pos < len(text) {
		switch {
		case strings.HasPrefix(text[pos:], "--"):
			k := strings.IndexByte(text[pos:], '\n')
			if k < 0 {
				return len(text)
			}
			pos += k + 1
		case strings.HasPrefix(text[pos:], "/*"):
			k := strings.Index(text[pos+2:], "*/")
			if k < 0 {
				return len(text)
			}
			pos += k + 4
		default:
			r, n := utf8.DecodeRuneInString(text[pos:])
			if !unicode.IsSpace(r) {
				return pos
			}
			pos += n
		}
	}
	return pos
}

func scan(text string, pos int) (token, error) {
	r, _ := utf8.DecodeRuneInString(text[pos:])
	switch {
	case r == '\'':
		return scanQuoted(text, pos, '\'', tokString)
	case r == '"':
		tok, err := scanQuoted(text, pos, '"', tokQuoted)
		tok.text = norm.NFC.String(tok.text)
		return tok, err
	case unicode.IsDigit(r) || r == '.' && pos+1 < len(text) && isDigit(text[pos+1]):
		return scanNumber(text, pos), nil
	case unicode.IsLetter(r) || r == '_' || r == '#':
		end := pos
		for end < len(text) {
			r, n := utf8.DecodeRuneInString(text[end:])
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == '_' || r == '#' && end == pos) {
				break
			}
			end += n
		}
		// Identifiers compare in composed form so that a name typed with
		// combining marks matches the catalog's.
		return token{kind: tokIdent, text: norm.NFC.String(text[pos:end]), pos: pos, end: end}, nil
	}
	for _, op := range operators {
		if strings.HasPrefix(text[pos:], op) {
			return token{kind: tokOp, text: op, pos: pos, end: pos + len(op)}, nil
		}
	}
	return token{}, &lexError{fmt.Sprintf("unexpected character %q", r), pos}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func scanNumber(text string, pos int) token {
	end := pos
	for end < len(text) && isDigit(text[end]) {
		end++
	}
	if end < len(text) && text[end] == '.' {
		end++
		for end < len(text) && isDigit(text[end]) {
			end++
		}
	}
	if end < len(text) && (text[end] == 'e' || text[end] == 'E') {
		k := end + 1
		if k < len(text) && (text[k] == '+' || text[k] == '-') {
			k++
		}
		if k < len(text) && isDigit(text[k]) {
			for k < len(text) && isDigit(text[k]) {
				k++
			}
			end = k
		}
	}
	return token{kind: tokNumber, text: text[pos:end], pos: pos, end: end}
}

// scanQuoted scans a string or quoted identifier in which a doubled quote
// stands for the quote itself.
func scanQuoted(text string, pos int, quote byte, kind tokenKind) (token, error) {
	var b strings.Builder
	k := pos + 1
	for k < len(text) {
		if text[k] == quote {
			if k+1 < len(text) && text[k+1] == quote {
				b.WriteByte(quote)
				k += 2
				continue
			}
			return token{kind: kind, text: b.String(), pos: pos, end: k + 1}, nil
		}
		b.WriteByte(text[k])
		k++
	}
	return token{}, &lexError{"unterminated quoted text", pos}
}
