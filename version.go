package vdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a catalog version.  Resolution rules that changed over time
// (lossy numeric widening, zero-argument overloads, expression-wrapped
// ORDER BY ordinals) key off of it.
type Version struct {
	Major int
	Minor int
}

var (
	Legacy  = Version{7, 7}
	Current = Version{8, 0}
)

func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Current, nil
	}
	major, minor, _ := strings.Cut(s, ".")
	var v Version
	var err error
	if v.Major, err = strconv.Atoi(major); err != nil {
		return Version{}, fmt.Errorf("bad catalog version %q", s)
	}
	if minor != "" {
		if v.Minor, err = strconv.Atoi(minor); err != nil {
			return Version{}, fmt.Errorf("bad catalog version %q", s)
		}
	}
	return v, nil
}

func (v Version) Less(w Version) bool {
	if v.Major != w.Major {
		return v.Major < w.Major
	}
	return v.Minor < w.Minor
}

// IsLegacy is true for catalogs that predate 8.0.
func (v Version) IsLegacy() bool {
	return v.Less(Current)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
