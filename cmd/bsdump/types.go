package main

import (
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/octtag"
)

// LengthPrefixed exercises S1: a length field bound to a sibling string.
type LengthPrefixed struct {
	NameLength uint8  `oct:"order=0"`
	Name       string `oct:"order=1,length=@NameLength"`
}

// PaddedName exercises S2: a constant-length field zero-padded on write and
// truncated-on-read to an exact byte count.
type PaddedName struct {
	Name string `oct:"length=32"`
}

// ChunkBody is the polymorphic payload of a Chunk, dispatched by its Type
// field (S3).
type ChunkBody interface{}

// IHDRChunk is a recognized chunk body.
type IHDRChunk struct {
	Width  uint32 `oct:"order=0,endian=big"`
	Height uint32 `oct:"order=1,endian=big"`
}

// UnknownChunk is the default body for an unrecognized chunk Type: its
// declared-length octets are skipped without interpretation.
type UnknownChunk struct {
	Raw []byte
}

// Chunk is a PNG-style length-prefixed, type-tagged, polymorphic record.
type Chunk struct {
	Length uint32    `oct:"order=0,endian=big"`
	Type   string    `oct:"order=1,length=4"`
	Body   ChunkBody `oct:"order=2,subtypekey=@Type,length=@Length"`
}

func init() {
	octtag.RegisterSubtypeTable(reflect.TypeOf(Chunk{}), "Body", octtag.SubtypeTable{
		Entries: []octtag.SubtypeEntry{
			{Key: "IHDR", Type: reflect.TypeOf(IHDRChunk{}), Direction: binding.Both},
		},
		Default: reflect.TypeOf(UnknownChunk{}),
	})
}

// ChecksummedBlock exercises S5: a CRC16 computed over Data, written back
// into Crc on serialize and left unverified on deserialize.
type ChecksummedBlock struct {
	Length uint32 `oct:"order=0"`
	Data   []byte `oct:"order=1,length=@Length,crc16=@Crc"`
	Crc    uint16 `oct:"order=2"`
}

// exampleTypes is bsdump's registry of types it knows how to compile.
var exampleTypes = map[string]reflect.Type{
	"LengthPrefixed":   reflect.TypeOf(LengthPrefixed{}),
	"PaddedName":       reflect.TypeOf(PaddedName{}),
	"Chunk":            reflect.TypeOf(Chunk{}),
	"ChecksummedBlock": reflect.TypeOf(ChecksummedBlock{}),
}
