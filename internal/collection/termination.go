// Package collection describes how a Collection/PrimitiveArray TypeNode
// decides when it has enough items (C8). The actual driving loop lives in
// internal/valuegraph, which has access to the live value nodes; this
// package only holds the declarative termination spec and the small
// comparison helper shared by both modes.
package collection

import "github.com/Davipb/BinarySerializer/internal/binding"

// LastItemMode controls what ItemSerializeUntil does with its sentinel item.
type LastItemMode int

const (
	Include LastItemMode = iota
	Exclude
	Defer
)

// Mode selects which termination rule governs a collection. Priority when a
// descriptor supplies more than one follows this declaration order (§4.7).
type Mode int

const (
	ModeFieldCount Mode = iota
	ModeFieldLength
	ModeItemSerializeUntil
	ModeSerializeUntil
	ModeNone // unbounded; read until the enclosing stream/overlay is exhausted
)

// ItemLengthKind distinguishes a uniform per-item length from a jagged,
// per-index sequence of lengths (§4.7).
type ItemLengthKind int

const (
	ItemLengthNone ItemLengthKind = iota
	ItemLengthUniform
	ItemLengthSequence
)

// Spec is the compiled termination/size description for one Collection or
// PrimitiveArray node.
type Spec struct {
	Mode Mode

	FieldCount  binding.Binding // ModeFieldCount
	FieldLength binding.Binding // ModeFieldLength

	ItemUntilPath  binding.PathSpec // ModeItemSerializeUntil: path evaluated on each item
	ItemUntilValue any
	ItemUntilMode  LastItemMode

	SerializeUntilValue any // ModeSerializeUntil

	ItemLengthKind ItemLengthKind
	ItemLength     binding.Binding // ItemLengthUniform
	ItemLengthSeq  binding.Binding // ItemLengthSequence: binds to a []int-like sequence
}
