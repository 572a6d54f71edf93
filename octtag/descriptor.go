// Package octtag is the attribute-annotation discovery mechanism: the
// external collaborator named in spec §1 and §6.1. It reads Go struct
// tags (`oct:"..."`) via reflection and normalizes them into a Descriptor
// tree that internal/typegraph consumes to build a TypeNode graph. Nothing
// outside this package needs to know struct tags exist; a user could in
// principle supply a Descriptor built some other way.
package octtag

import "reflect"

// Descriptor is the normalized shape described in spec §6.1.
type Descriptor struct {
	TypeID     reflect.Type
	BaseTypeID reflect.Type // Discover leaves this nil; embedded members carry BaseDepth instead
	Members    []Member
}

// Member is one field of a Descriptor.
type Member struct {
	Name         string
	DeclaredType reflect.Type
	Index        []int // reflect.Value.FieldByIndex path, supports embedding
	Order        *int
	BaseDepth    int // 0 = declared directly on TypeID, increases per embedding level
	Attributes   []Attribute
}

// AttributeKind enumerates the recognized attribute kinds from the §6.1
// table.
type AttributeKind int

const (
	KindIgnore AttributeKind = iota
	KindFieldOrder
	KindFieldLength
	KindFieldCount
	KindFieldAlignment
	KindFieldScale
	KindFieldEndianness
	KindFieldEncoding
	KindFieldOffset
	KindFieldValue // checksum/CRC/hash family
	KindSubtypeKey
	KindSerializeAs
	KindSerializeAsEnum
	KindSerializeWhen
	KindSerializeWhenNot
	KindSerializeUntil
	KindItemLength
	KindItemSerializeUntil
)

// Attribute is one recognized annotation on a Member.
type Attribute struct {
	Kind    AttributeKind
	Payload any
}
