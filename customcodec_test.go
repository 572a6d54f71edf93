package octstruct_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	octstruct "github.com/Davipb/BinarySerializer"
	"github.com/Davipb/BinarySerializer/internal/codec"
	"github.com/Davipb/BinarySerializer/internal/stream"
)

// fixedPoint is a user-owned wire format: a Q16.16 fixed-point number packed
// into a single uint32, which the engine has no native representation for.
type fixedPoint struct {
	Whole int16
	Frac  uint16
}

func (f *fixedPoint) SerializeCustom(w *stream.WriteFramer, end codec.Endianness) error {
	packed := uint32(uint16(f.Whole))<<16 | uint32(f.Frac)
	return w.WriteAll(codec.PutUint(uint64(packed), codec.Width4, end))
}

func (f *fixedPoint) DeserializeCustom(r *stream.ReadFramer, end codec.Endianness) error {
	b, err := r.ReadExact(4)
	if err != nil {
		return err
	}
	packed, err := codec.Uint(b, codec.Width4, end)
	if err != nil {
		return err
	}
	f.Whole = int16(uint32(packed) >> 16)
	f.Frac = uint16(packed)
	return nil
}

type withCustomField struct {
	Tag   uint8      `oct:"order=0"`
	Point fixedPoint `oct:"order=1"`
}

func TestCustomCodecFieldRoundTrip(t *testing.T) {
	in := withCustomField{Tag: 1, Point: fixedPoint{Whole: -3, Frac: 0x8000}}
	var buf bytes.Buffer
	require.NoError(t, octstruct.Serialize(&in, &buf))
	assert.Equal(t, 5, buf.Len())

	var out withCustomField
	require.NoError(t, octstruct.Deserialize(bytes.NewReader(buf.Bytes()), &out))
	assert.Equal(t, in.Point, out.Point)
}
