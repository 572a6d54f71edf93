package codec

import "math"

// PutFloat32 encodes f as an IEEE-754 single-precision value.
func PutFloat32(f float32, end Endianness) []byte {
	return PutUint(uint64(math.Float32bits(f)), Width4, end)
}

// Float32 decodes an IEEE-754 single-precision value.
func Float32(b []byte, end Endianness) (float32, error) {
	u, err := Uint(b, Width4, end)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(u)), nil
}

// PutFloat64 encodes f as an IEEE-754 double-precision value.
func PutFloat64(f float64, end Endianness) []byte {
	return PutUint(math.Float64bits(f), Width8, end)
}

// Float64 decodes an IEEE-754 double-precision value.
func Float64(b []byte, end Endianness) (float64, error) {
	u, err := Uint(b, Width8, end)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}
