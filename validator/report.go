// Package validator checks resolved commands and whole catalogs.  Problems
// are collected into a Report rather than returned as errors so that one
// bad record never hides the problems of another.
package validator

import (
	"fmt"
	"strings"

	"github.com/segmentio/ksuid"
)

type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "ERROR"
	}
	return "WARNING"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Item struct {
	Severity Severity `json:"severity"`
	// Rule names the check that produced the item.
	Rule string `json:"rule"`
	// Object is the full name of the catalog object the item is about,
	// if any.
	Object  string `json:"object,omitempty"`
	Message string `json:"message"`
}

func (i Item) String() string {
	var b strings.Builder
	b.WriteString(i.Severity.String())
	b.WriteString(" [")
	b.WriteString(i.Rule)
	b.WriteString("]")
	if i.Object != "" {
		b.WriteString(" ")
		b.WriteString(i.Object)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	return b.String()
}

// A Report accumulates the items of one validation run.  It is not safe
// for concurrent use.
type Report struct {
	ID    ksuid.KSUID `json:"id"`
	Items []Item      `json:"items"`
}

func NewReport() *Report {
	return &Report{ID: ksuid.New()}
}

func (r *Report) add(sev Severity, rule, object, format string, args ...any) {
	r.Items = append(r.Items, Item{
		Severity: sev,
		Rule:     rule,
		Object:   object,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Report) Errorf(rule, object, format string, args ...any) {
	r.add(Error, rule, object, format, args...)
}

func (r *Report) Warnf(rule, object, format string, args ...any) {
	r.add(Warning, rule, object, format, args...)
}

// Merge appends the items of other, attributing any without an object to
// object.
func (r *Report) Merge(other *Report, object string) {
	for _, item := range other.Items {
		if item.Object == "" {
			item.Object = object
		}
		r.Items = append(r.Items, item)
	}
}

func (r *Report) Errors() []Item {
	var out []Item
	for _, item := range r.Items {
		if item.Severity == Error {
			out = append(out, item)
		}
	}
	return out
}

func (r *Report) HasErrors() bool {
	return len(r.Errors()) > 0
}

// For returns the items about the named object.
func (r *Report) For(object string) []Item {
	var out []Item
	for _, item := range r.Items {
		if strings.EqualFold(item.Object, object) {
			out = append(out, item)
		}
	}
	return out
}
