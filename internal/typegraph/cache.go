package typegraph

import (
	"reflect"
	"sync"
)

// cacheEntry holds the publication state for one type: the first goroutine
// to need a type graph builds it under the entry's sync.Once; later callers
// get the published *Node from the same entry. Finding the entry takes the
// package-level cacheMu on every call, so reads are not lock-free.
type cacheEntry struct {
	once sync.Once
	node *Node
	err  error
}

var (
	cacheMu sync.Mutex
	cache   = map[reflect.Type]*cacheEntry{}
)

// getOrBuild returns the cached Node for t, building it via build on first use.
func getOrBuild(t reflect.Type, build func() (*Node, error)) (*Node, error) {
	cacheMu.Lock()
	entry, ok := cache[t]
	if !ok {
		entry = &cacheEntry{}
		cache[t] = entry
	}
	cacheMu.Unlock()

	entry.once.Do(func() {
		entry.node, entry.err = build()
	})
	return entry.node, entry.err
}

// Reset clears the process-wide type graph cache. Exposed for tests only;
// production code builds each type's graph exactly once per process.
func Reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = map[reflect.Type]*cacheEntry{}
}
