// Package octstruct is the façade of a declarative byte-level binary
// serialization engine (§6.4): tag a struct's fields with `oct:"..."`
// attributes and hand the struct to Serialize/Deserialize.
//
// The engine is a two-stage pipeline. A type is first compiled once into a
// TypeGraph (internal/typegraph), a cached tree describing each field's wire
// representation, length/count/offset bindings (internal/binding), and
// collection/subtype/computed-value behavior. Every call then walks a
// ValueGraph (internal/valuegraph), a lightweight per-operation mirror of
// that TypeGraph bound to the live struct instance.
//
//	type Header struct {
//		Magic  [4]byte `oct:"order=0,count=4"`
//		Length uint32  `oct:"order=1"`
//		Body   []byte  `oct:"order=2,length=@Length"`
//	}
//
//	var h Header
//	if err := octstruct.Deserialize(r, &h); err != nil { ... }
//	if err := octstruct.Serialize(&h, w); err != nil { ... }
package octstruct
