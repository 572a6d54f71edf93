package typegraph

import (
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/octerr"
	"github.com/Davipb/BinarySerializer/octtag"
)

// wireSubtypes attaches a registered octtag.SubtypeTable (if any) to each of
// root's direct children, resolving each entry's concrete Go type into its
// own compiled Node. Ambiguity between two direction-both/read-only entries
// sharing a key is rejected at build time (§4.5 "Ambiguity rule").
func wireSubtypes(t reflect.Type, root *Node) error {
	for _, child := range root.Children {
		table, ok := octtag.LookupSubtypeTable(t, child.Name)
		if !ok {
			continue
		}
		compiled := &SubtypeTable{Factory: table.Factory}
		nonWriteOnlyKeys := map[any]bool{}
		for _, e := range table.Entries {
			childNode, err := build(e.Type, map[reflect.Type]bool{})
			if err != nil {
				return err
			}
			if e.Direction != binding.WriteOnly {
				if nonWriteOnlyKeys[e.Key] {
					return octerr.ErrSubtypeKeyAmbiguous
				}
				nonWriteOnlyKeys[e.Key] = true
			}
			compiled.Entries = append(compiled.Entries, SubtypeEntry{Key: e.Key, Child: childNode, Direction: e.Direction})
		}
		if table.Default != nil {
			defNode, err := build(table.Default, map[reflect.Type]bool{})
			if err != nil {
				return err
			}
			compiled.Default = defNode
		}
		if child.Subtypes != nil {
			compiled.KeySource = child.Subtypes.KeySource
		}
		child.Subtypes = compiled
	}
	return nil
}
