// Package octcustom is the user-defined custom serializer contract (§6.3):
// a type that wants full control over its own wire representation implements
// Codec instead of being decomposed into further TypeNodes.
package octcustom

import (
	"github.com/Davipb/BinarySerializer/internal/codec"
	"github.com/Davipb/BinarySerializer/internal/stream"
)

// Codec is implemented by a field's Go type when it wants to own its wire
// format directly. When the enclosing declaration supplies a FieldLength,
// the stream passed in is already the bounded overlay (§6.3): the custom
// code cannot read or write past it.
type Codec interface {
	SerializeCustom(w *stream.WriteFramer, end codec.Endianness) error
	DeserializeCustom(r *stream.ReadFramer, end codec.Endianness) error
}
