// Package subtype implements polymorphic field resolution (C6): looking up
// a concrete TypeNode for a deserialized key, or a key for a serialized
// runtime type, honoring per-entry read/write direction and the static
// table → factory → default fallback chain (§4.5).
package subtype

import (
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/octerr"
	"github.com/Davipb/BinarySerializer/internal/typegraph"
)

// ForDeserialize resolves the child Node to parse for key k, consulting
// entries whose direction permits reads, then the factory, then the default.
func ForDeserialize(table *typegraph.SubtypeTable, k any) (*typegraph.Node, bool, error) {
	for _, e := range table.Entries {
		if e.Direction == binding.WriteOnly {
			continue
		}
		if e.Key == k {
			return e.Child, false, nil
		}
	}
	if table.Factory != nil {
		if t, ok := table.Factory.TryGetType(k); ok {
			n, err := typegraph.Build(t)
			return n, false, err
		}
	}
	if table.Default != nil {
		return table.Default, true, nil
	}
	return nil, false, octerr.ErrUnknownSubtype
}

// ForSerialize resolves the key to write for a field whose live value has
// runtime type rt, consulting entries whose direction permits writes, then
// the factory, then the implicit "it's the default, write nothing" case.
func ForSerialize(table *typegraph.SubtypeTable, rt reflect.Type) (key any, writeKey bool, child *typegraph.Node, err error) {
	for _, e := range table.Entries {
		if e.Direction == binding.ReadOnly {
			continue
		}
		if e.Child.GoType == rt {
			return e.Key, true, e.Child, nil
		}
	}
	if table.Factory != nil {
		if k, ok := table.Factory.TryGetKey(rt); ok {
			n, berr := typegraph.Build(rt)
			if berr != nil {
				return nil, false, nil, berr
			}
			return k, true, n, nil
		}
	}
	if table.Default != nil && table.Default.GoType == rt {
		n, _ := typegraph.Build(rt)
		return nil, false, n, nil
	}
	return nil, false, nil, octerr.ErrUnmappedSubtype
}
