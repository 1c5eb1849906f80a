// Package metadata defines the catalog facade the resolver consults, the
// object cache shared by concurrent resolutions, and the temporary
// metadata that a single resolution synthesizes on top of the catalog.
package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/function"
)

//go:generate go tool mockgen -destination=mock/metadata.go -package=mock . Metadata

var ErrNotFound = errors.New("not found")

func NotFound(kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
}

// An ID identifies a catalog object: a group, an element, a procedure or
// one of its parameters.  IDs are compared by identity.
type ID interface {
	FullName() string
}

type Key struct {
	Name    string
	Primary bool
	Columns []ID
}

type ForeignKey struct {
	Name    string
	Columns []ID
	// Reference is the unique key this foreign key refers to or nil when
	// it has not been linked.
	Reference *Key
}

type ParamMode int

const (
	In ParamMode = iota
	Out
	InOut
	Return
)

func (m ParamMode) String() string {
	switch m {
	case Out:
		return "out"
	case InOut:
		return "inout"
	case Return:
		return "return"
	}
	return "in"
}

type ProcedureParam struct {
	ID         ID
	Name       string
	Type       string
	Mode       ParamMode
	Default    any
	HasDefault bool
	Nullable   bool
	Vararg     bool
}

type ResultColumn struct {
	ID   ID
	Name string
	Type string
}

type Procedure struct {
	ID        ID
	Name      string
	Params    []*ProcedureParam
	ResultSet []*ResultColumn
	Virtual   bool
	// Body is the procedure definition of a virtual procedure.
	Body string
}

// Metadata is the catalog as seen by the resolver.  Name lookups are
// case-insensitive.  Errors for missing objects wrap ErrNotFound.
type Metadata interface {
	Version() vdb.Version
	VDBName() string

	GroupID(name string) (ID, error)
	// GroupsForPartialName returns the full names of groups whose name
	// ends in "."+partial.
	GroupsForPartialName(partial string) ([]string, error)
	ElementIDs(group ID) ([]ID, error)
	ElementID(name string) (ID, error)
	ElementType(element ID) (string, error)
	DefaultValue(element ID) (any, error)
	IsNullable(element ID) (bool, error)
	UniqueKeys(group ID) ([]*Key, error)
	ForeignKeys(group ID) ([]*ForeignKey, error)
	IsTempTable(group ID) bool
	IsVirtual(group ID) bool
	// VirtualPlan returns the defining query of a view.
	VirtualPlan(group ID) (string, error)

	IsProcedure(name string) bool
	StoredProcedure(name string) (*Procedure, error)

	Functions() *function.Library
	// UseOutputName asks the resolver to keep the name a query used for a
	// group rather than the canonical catalog name when rendering.
	UseOutputName() bool

	FromCache(id ID, key string) (any, bool)
	AddToCache(id ID, key string, value any)
	RemoveFromCache(id ID, key string)
}

// ShortName returns the last dotted component of a full name.
func ShortName(full string) string {
	if k := strings.LastIndexByte(full, '.'); k >= 0 {
		return full[k+1:]
	}
	return full
}

// GroupName returns everything before the last dotted component.
func GroupName(full string) string {
	if k := strings.LastIndexByte(full, '.'); k >= 0 {
		return full[:k]
	}
	return ""
}
