// Package typegraph implements the type graph builder (C3): it walks a
// record type's fields via reflection (through octtag's normalized
// descriptor contract), recognizes attribute semantics, and produces an
// immutable, cached Node tree that internal/valuegraph mirrors at walk time.
package typegraph

import (
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/codec"
	"github.com/Davipb/BinarySerializer/internal/collection"
	"github.com/Davipb/BinarySerializer/internal/computed"
)

// Kind is the TypeNode variant (§3).
type Kind int

const (
	KindObject Kind = iota
	KindCollection
	KindPrimitiveArray
	KindValue
	KindCustomSerialized
	KindStreamPassthrough
)

// ValueRepr narrows KindValue to a concrete primitive representation.
type ValueRepr int

const (
	ReprInt ValueRepr = iota
	ReprUint
	ReprFloat
	ReprString
	ReprBool
	ReprBytes
)

// AlignMode selects which side of a field FieldAlignment pads.
type AlignMode int

const (
	AlignLeft AlignMode = iota
	AlignRight
	AlignBoth
)

// AlignSpec is a compiled FieldAlignment attribute.
type AlignSpec struct {
	Multiple int64
	Mode     AlignMode
}

// ScaleSpec is a compiled FieldScale attribute: stored*Num/Den == logical.
type ScaleSpec struct {
	Num, Den int64
}

// ComputedSpec is a compiled FieldValue-family attribute.
type ComputedSpec struct {
	Method computed.Method
	Target binding.Binding // where the finalized value is written back
}

// ConditionSpec is a compiled SerializeWhen/SerializeWhenNot attribute.
type ConditionSpec struct {
	Source   binding.Binding
	Literal  any
	Negate   bool
}

// SubtypeEntry is one static key<->type mapping in a Node's dispatch table.
type SubtypeEntry struct {
	Key       any
	Child     *Node
	Direction binding.Direction
}

// SubtypeFactory mirrors octtag.SubtypeFactory without creating an import
// cycle back to octtag (typegraph is the consumer, octtag the producer).
type SubtypeFactory interface {
	TryGetType(key any) (reflect.Type, bool)
	TryGetKey(t reflect.Type) (any, bool)
}

// SubtypeTable is the compiled per-polymorphic-field dispatch description.
type SubtypeTable struct {
	Entries []SubtypeEntry
	Factory SubtypeFactory
	Default *Node
	KeySource binding.Binding // where the dispatch key itself lives
}

// Node is an immutable description of one position in a record shape. Only
// the root Node returned by Build is cached by type identity; a member whose
// Go type is a struct gets its own freshly compiled Node, so two fields
// sharing a Go type do not share a Node.
type Node struct {
	Name         string
	GoType       reflect.Type
	FieldIndex   []int // reflect field index path from the holder, nil at root
	Kind         Kind
	Repr         ValueRepr
	IntWidth     codec.IntWidth
	Children     []*Node // ordered per invariant 1
	Item         *Node   // element type for Collection/PrimitiveArray

	Endianness   binding.Binding // literal codec.Endianness, or inherited marker
	EndianInherit bool
	Encoding     binding.Binding // literal codec.StringEncoding
	EncodingInherit bool

	Length   *binding.Binding
	Count    *binding.Binding
	Offset   *binding.Binding
	Align    *AlignSpec
	Scale    *ScaleSpec
	Computed []ComputedSpec
	Condition *ConditionSpec

	Collection *collection.Spec
	Subtypes   *SubtypeTable

	Custom bool // Kind == KindCustomSerialized shortcut

	Constructor *Constructor
}

// HasOwnEndianness and HasOwnEncoding report whether the node declares its
// own binding (a literal or a path). Inheritance from the ancestor chain
// (invariant 6) is resolved by the value graph walker, not here.
func (n *Node) HasOwnEndianness() bool { return n.Endianness.Literal != nil || n.Endianness.Path.Segments != nil }
func (n *Node) HasOwnEncoding() bool   { return n.Encoding.Literal != nil || n.Encoding.Path.Segments != nil }
