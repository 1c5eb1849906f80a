package function

import (
	"sync"

	"github.com/brimdata/vdb"
	"golang.org/x/sync/singleflight"
)

var (
	systemGroup singleflight.Group
	systemMu    sync.RWMutex
	systemLibs  = make(map[vdb.Version]*Library)
)

// SystemLibrary returns the system functions for catalog version v.  Each
// version's library is built on first use and shared read-only after that;
// concurrent first callers wait on a single build.
func SystemLibrary(v vdb.Version) *Library {
	if lib := lookupSystem(v); lib != nil {
		return lib
	}
	lib, _, _ := systemGroup.Do(v.String(), func() (any, error) {
		// A caller that finished building after our lookup above has
		// already stored its library.
		if lib := lookupSystem(v); lib != nil {
			return lib, nil
		}
		lib := newSystemLibrary(v)
		systemMu.Lock()
		systemLibs[v] = lib
		systemMu.Unlock()
		return lib, nil
	})
	return lib.(*Library)
}

func lookupSystem(v vdb.Version) *Library {
	systemMu.RLock()
	defer systemMu.RUnlock()
	return systemLibs[v]
}
