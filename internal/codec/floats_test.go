package codec

import "testing"

func TestFloat32RoundTrip(t *testing.T) {
	for _, end := range []Endianness{LittleEndian, BigEndian} {
		buf := PutFloat32(3.14159, end)
		got, err := Float32(buf, end)
		if err != nil {
			t.Fatalf("Float32: %v", err)
		}
		if got != float32(3.14159) {
			t.Fatalf("round trip = %v, want 3.14159", got)
		}
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	for _, end := range []Endianness{LittleEndian, BigEndian} {
		buf := PutFloat64(2.718281828, end)
		got, err := Float64(buf, end)
		if err != nil {
			t.Fatalf("Float64: %v", err)
		}
		if got != 2.718281828 {
			t.Fatalf("round trip = %v, want 2.718281828", got)
		}
	}
}
