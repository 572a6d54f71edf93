package octtag

import (
	"reflect"
	"sync"

	"github.com/Davipb/BinarySerializer/internal/binding"
)

var (
	convMu    sync.RWMutex
	converters = map[string]binding.Converter{}
)

// RegisterConverter makes a named binding.Converter (§6.2) available to the
// "|name" suffix in a binding path expression.
func RegisterConverter(name string, c binding.Converter) {
	convMu.Lock()
	defer convMu.Unlock()
	converters[name] = c
}

func lookupConverter(name string) (binding.Converter, bool) {
	convMu.RLock()
	defer convMu.RUnlock()
	c, ok := converters[name]
	return c, ok
}

// SubtypeFactory is the fallback lookup used by C6 when the static table
// misses (§4.5, §6.1's SubtypeFactory attribute).
type SubtypeFactory interface {
	TryGetType(key any) (reflect.Type, bool)
	TryGetKey(t reflect.Type) (any, bool)
}

// SubtypeEntry is one static key<->type mapping.
type SubtypeEntry struct {
	Key       any
	Type      reflect.Type
	Direction binding.Direction
}

// SubtypeTable is the full polymorphic-field description for one member:
// a static table, an optional factory fallback, and an optional default.
type SubtypeTable struct {
	Entries []SubtypeEntry
	Factory SubtypeFactory
	Default reflect.Type
}

type subtypeKey struct {
	parent reflect.Type
	field  string
}

var (
	subtypeMu    sync.RWMutex
	subtypeTable = map[subtypeKey]SubtypeTable{}
)

// RegisterSubtypeTable associates a polymorphic field on parent with its
// dispatch table. Struct tags alone cannot express a key->type map portably,
// so — matching how the wider Go ecosystem handles open polymorphism
// (gob.Register, json.RawMessage + custom (Un)MarshalJSON) — the table is
// registered in code, typically from an init() alongside the struct
// definition.
func RegisterSubtypeTable(parent reflect.Type, field string, table SubtypeTable) {
	subtypeMu.Lock()
	defer subtypeMu.Unlock()
	subtypeTable[subtypeKey{parent, field}] = table
}

func lookupSubtypeTable(parent reflect.Type, field string) (SubtypeTable, bool) {
	subtypeMu.RLock()
	defer subtypeMu.RUnlock()
	t, ok := subtypeTable[subtypeKey{parent, field}]
	return t, ok
}

// LookupSubtypeTable exposes the registry to internal/typegraph, which
// cannot import octtag's unexported map directly.
func LookupSubtypeTable(parent reflect.Type, field string) (SubtypeTable, bool) {
	return lookupSubtypeTable(parent, field)
}
