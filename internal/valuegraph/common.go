package valuegraph

import (
	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/codec"
)

// effectiveEndianness resolves invariant 6's top-down inheritance: a node's
// own FieldEndianness binding wins; otherwise the nearest ancestor's wins;
// the ultimate default is little-endian.
func effectiveEndianness(vn *ValueNode, forSerialize bool) (codec.Endianness, error) {
	for cur := vn; cur != nil; cur = cur.parent {
		if !cur.Type.HasOwnEndianness() {
			continue
		}
		val, err := binding.Resolve(cur.Type.Endianness, cur, forSerialize)
		if err != nil {
			return 0, err
		}
		if e, ok := val.(codec.Endianness); ok {
			return e, nil
		}
	}
	return codec.LittleEndian, nil
}

// effectiveEncoding mirrors effectiveEndianness for FieldEncoding.
func effectiveEncoding(vn *ValueNode, forSerialize bool) (codec.StringEncoding, error) {
	for cur := vn; cur != nil; cur = cur.parent {
		if !cur.Type.HasOwnEncoding() {
			continue
		}
		val, err := binding.Resolve(cur.Type.Encoding, cur, forSerialize)
		if err != nil {
			return 0, err
		}
		if e, ok := val.(codec.StringEncoding); ok {
			return e, nil
		}
	}
	return codec.UTF8, nil
}

// asInt64 normalizes the handful of numeric Go types a resolved binding
// value might carry.
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint8:
		return int64(x), true
	default:
		return 0, false
	}
}
