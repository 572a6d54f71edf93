// Package computed implements the computed-value engine (C7): checksum,
// CRC, and hash accumulators that tap the byte stream during a serialize
// walk and write their finalized result back into the bound target field.
// Deserialize reads these fields as ordinary values — verification is an
// explicit non-goal of this layer (§4.6, §9 open question).
package computed

import (
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

// Method names a FieldValue family member (§6.1).
type Method int

const (
	CRC16 Method = iota
	CRC32
	XXHash64
)

// Accumulator is the stateful interface every FieldValue* attribute needs:
// reset, feed bytes, and finalize to a value ready for PutUint/PutFloat-style
// encoding by the caller.
type Accumulator interface {
	Reset()
	Update(b []byte)
	Finalize() uint64
}

// New constructs the accumulator for a Method.
func New(m Method) Accumulator {
	switch m {
	case CRC16:
		return &crc16Acc{}
	case CRC32:
		return &crc32Acc{}
	case XXHash64:
		return &xxhashAcc{}
	default:
		return &crc32Acc{}
	}
}

// crc32Acc wraps the standard library's IEEE CRC-32. No third-party CRC-32
// implementation appears anywhere in the example pack, and hash/crc32 is the
// canonical implementation of the algorithm itself (not a replaced library
// concern) so using it directly is the idiomatic choice.
type crc32Acc struct{ h uint32 }

func (a *crc32Acc) Reset()          { a.h = 0 }
func (a *crc32Acc) Update(b []byte) { a.h = crc32.Update(a.h, crc32.IEEETable, b) }
func (a *crc32Acc) Finalize() uint64 { return uint64(a.h) }

// xxhashAcc wraps github.com/cespare/xxhash/v2, the hash dependency wired in
// from the example pack's indirect dependency set (see SPEC_FULL.md domain
// stack table) for the "hash" member of the FieldValue family.
type xxhashAcc struct{ d xxhash.Digest }

func (a *xxhashAcc) Reset()          { a.d.Reset() }
func (a *xxhashAcc) Update(b []byte) { _, _ = a.d.Write(b) }
func (a *xxhashAcc) Finalize() uint64 { return a.d.Sum64() }
