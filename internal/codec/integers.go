package codec

import (
	"encoding/binary"
	"fmt"
)

// IntWidth is the octet width of a fixed-width integer representation.
type IntWidth int

const (
	Width1 IntWidth = 1
	Width2 IntWidth = 2
	Width4 IntWidth = 4
	Width8 IntWidth = 8
)

// PutUint encodes v into a freshly allocated buffer of the given width and
// endianness. v is truncated to width octets; callers that need overflow
// detection must check the value against the width themselves. The value
// graph walker does not check, so a value wider than the width loses its
// high octets.
func PutUint(v uint64, width IntWidth, end Endianness) []byte {
	buf := make([]byte, width)
	switch end {
	case BigEndian:
		switch width {
		case Width1:
			buf[0] = byte(v)
		case Width2:
			binary.BigEndian.PutUint16(buf, uint16(v))
		case Width4:
			binary.BigEndian.PutUint32(buf, uint32(v))
		case Width8:
			binary.BigEndian.PutUint64(buf, v)
		}
	default:
		switch width {
		case Width1:
			buf[0] = byte(v)
		case Width2:
			binary.LittleEndian.PutUint16(buf, uint16(v))
		case Width4:
			binary.LittleEndian.PutUint32(buf, uint32(v))
		case Width8:
			binary.LittleEndian.PutUint64(buf, v)
		}
	}
	return buf
}

// Uint decodes a fixed-width unsigned integer from the first width octets
// of b. A shorter b is an error; octets past width are ignored.
func Uint(b []byte, width IntWidth, end Endianness) (uint64, error) {
	if len(b) < int(width) {
		return 0, fmt.Errorf("codec: need %d octets, have %d", width, len(b))
	}
	b = b[:width]
	if end == BigEndian {
		switch width {
		case Width1:
			return uint64(b[0]), nil
		case Width2:
			return uint64(binary.BigEndian.Uint16(b)), nil
		case Width4:
			return uint64(binary.BigEndian.Uint32(b)), nil
		case Width8:
			return binary.BigEndian.Uint64(b), nil
		}
	}
	switch width {
	case Width1:
		return uint64(b[0]), nil
	case Width2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case Width4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case Width8:
		return binary.LittleEndian.Uint64(b), nil
	}
	return 0, fmt.Errorf("codec: unsupported width %d", width)
}

// Int decodes a fixed-width two's-complement signed integer from b.
func Int(b []byte, width IntWidth, end Endianness) (int64, error) {
	u, err := Uint(b, width, end)
	if err != nil {
		return 0, err
	}
	switch width {
	case Width1:
		return int64(int8(u)), nil
	case Width2:
		return int64(int16(u)), nil
	case Width4:
		return int64(int32(u)), nil
	default:
		return int64(u), nil
	}
}
