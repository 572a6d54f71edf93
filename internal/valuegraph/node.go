// Package valuegraph implements the value graph walker (C5): a per-operation
// mirror of a type graph bound to concrete instance data, which performs the
// serialize/deserialize walk, consults internal/binding on every
// cross-field reference, and owns the failure model (breadcrumb wrapping).
package valuegraph

import (
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/codec"
	"github.com/Davipb/BinarySerializer/internal/stream"
	"github.com/Davipb/BinarySerializer/internal/typegraph"
)

// ValueNode is a per-operation mirror of a typegraph.Node, exclusively owned
// by its parent (§3). It implements binding.ValueAccessor so internal/
// binding can resolve paths without knowing about the walker.
type ValueNode struct {
	Type   *typegraph.Node
	parent *ValueNode

	childrenByName map[string]*ValueNode
	items          []*ValueNode

	value       reflect.Value
	known       bool
	overrideAny any // used when value is not addressable/settable (e.g. a map element)

	length int64
	offset int64

	// wf is the WriteFramer this node's own wire bytes were last emitted
	// through during a serialize walk. Nil during deserialize and for
	// nodes that have not been written yet. Set lets write-back patch
	// already-emitted bytes instead of only updating the in-memory value,
	// which matters when this node is a binding source declared before
	// the dependent field whose measured size it holds (§8 S1).
	wf *stream.WriteFramer

	deferredEndian bool
	rawBytes       []byte // buffered raw octets for a deferred-endianness Value node
}

func newChild(parent *ValueNode, t *typegraph.Node) *ValueNode {
	return &ValueNode{Type: t, parent: parent}
}

func (v *ValueNode) Parent() binding.ValueAccessor {
	if v.parent == nil {
		return nil
	}
	return v.parent
}

func (v *ValueNode) ChildByName(name string) (binding.ValueAccessor, bool) {
	c, ok := v.childrenByName[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func (v *ValueNode) TypeName() string {
	if v.Type == nil || v.Type.GoType == nil {
		return ""
	}
	return v.Type.GoType.Name()
}

func (v *ValueNode) Resolved() (any, bool) {
	if !v.known {
		return nil, false
	}
	return v.asAny(), true
}

// Set implements write-back (invariant 4): the measured length/count/offset
// observed during serialize is written into the bound source's live slot.
// When this node's own bytes were already flushed earlier in the same walk
// (the source field is declared before the field it bounds), the wire is
// patched in place via patchWire so the emitted bytes reflect the final
// value rather than whatever this field held when its turn came to write.
func (v *ValueNode) Set(val any) error {
	if v.wf != nil && v.Type != nil && v.Type.Kind == typegraph.KindValue {
		if err := v.patchWire(val); err != nil {
			return err
		}
	}
	if !v.value.IsValid() || !v.value.CanSet() {
		v.known = true
		v.overrideAny = val
		return nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(v.value.Type()) {
		v.value.Set(rv)
	} else if rv.Type().ConvertibleTo(v.value.Type()) {
		v.value.Set(rv.Convert(v.value.Type()))
	}
	v.known = true
	return nil
}

// patchWire re-encodes val using this node's own representation and
// endianness and overwrites the bytes already written at its recorded
// offset. Only scalar representations are patchable; any other kind is a
// no-op here and relies on the in-memory update in Set instead (it was
// never reachable as a write-back target to begin with).
func (v *ValueNode) patchWire(val any) error {
	iv, ok := asInt64(val)
	if !ok {
		return nil
	}
	end, err := effectiveEndianness(v, true)
	if err != nil {
		return err
	}
	var raw []byte
	switch v.Type.Repr {
	case typegraph.ReprInt, typegraph.ReprUint:
		raw = codec.PutUint(uint64(iv), v.Type.IntWidth, end)
	case typegraph.ReprFloat:
		if v.Type.IntWidth == codec.Width4 {
			raw = codec.PutFloat32(float32(iv), end)
		} else {
			raw = codec.PutFloat64(float64(iv), end)
		}
	default:
		return nil
	}
	return v.wf.WriteAt(v.offset, raw)
}

func (v *ValueNode) asAny() any {
	if v.overrideAny != nil {
		return v.overrideAny
	}
	if !v.value.IsValid() {
		return nil
	}
	return v.value.Interface()
}

// setChild registers a child ValueNode under name, for both ChildByName
// lookup and ordered traversal via Type.Children.
func (v *ValueNode) setChild(name string, child *ValueNode) {
	if v.childrenByName == nil {
		v.childrenByName = map[string]*ValueNode{}
	}
	v.childrenByName[name] = child
}

// setSliceFromItems builds t's declared slice type from v.items (populated
// by a Collection read loop) and installs it as v's resolved value.
func (v *ValueNode) setSliceFromItems(t *typegraph.Node) error {
	n := len(v.items)
	elemType := t.GoType.Elem()
	out := reflect.MakeSlice(t.GoType, n, n)
	for i, item := range v.items {
		val, ok := item.Resolved()
		if !ok {
			continue
		}
		rv := reflect.ValueOf(val)
		if rv.Type().AssignableTo(elemType) {
			out.Index(i).Set(rv)
		} else if rv.Type().ConvertibleTo(elemType) {
			out.Index(i).Set(rv.Convert(elemType))
		}
	}
	return v.Set(out.Interface())
}
