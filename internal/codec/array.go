package codec

// PutUintArray bulk-encodes a slice of unsigned values of uniform width,
// the "bulk-transfer optimization" for PrimitiveArray TypeNodes (§4.4).
func PutUintArray(vals []uint64, width IntWidth, end Endianness) []byte {
	out := make([]byte, 0, len(vals)*int(width))
	for _, v := range vals {
		out = append(out, PutUint(v, width, end)...)
	}
	return out
}

// UintArray bulk-decodes n uniform-width unsigned values from b.
func UintArray(b []byte, n int, width IntWidth, end Endianness) ([]uint64, error) {
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		v, err := Uint(b[i*int(width):], width, end)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
