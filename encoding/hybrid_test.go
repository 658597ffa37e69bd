package encoding

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydata/quarry"
)

func hybridRoundTrip(t *testing.T, bitWidth int, values []uint64) {
	t.Helper()
	enc := NewHybridEncoder(bitWidth)
	for _, v := range values {
		enc.Put(v)
	}
	raw := enc.Flush()

	dec := NewHybridDecoder(bitWidth)
	dec.SetData(raw)
	got := make([]uint64, len(values))
	n := dec.Decode(got)
	require.Equal(t, len(values), n)
	assert.Equal(t, values, got)
}

func TestHybridRoundTripLiteral(t *testing.T) {
	hybridRoundTrip(t, 3, []uint64{0, 1, 2, 3, 4, 5, 6, 7})
	hybridRoundTrip(t, 1, []uint64{0, 1, 1, 0, 1, 0, 0, 1})
}

func TestHybridRoundTripRepeated(t *testing.T) {
	values := make([]uint64, 100)
	for i := range values {
		values[i] = 5
	}
	hybridRoundTrip(t, 3, values)
}

func TestHybridRoundTripMixed(t *testing.T) {
	var values []uint64
	// Alternating short literal stretches and long repeat runs.
	for i := 0; i < 16; i++ {
		values = append(values, uint64(i%8))
	}
	for i := 0; i < 40; i++ {
		values = append(values, 6)
	}
	for i := 0; i < 9; i++ {
		values = append(values, uint64(i%4))
	}
	hybridRoundTrip(t, 3, values)
}

func TestHybridRoundTripUnevenTail(t *testing.T) {
	// Not a multiple of 8, forcing a padded final literal group.
	hybridRoundTrip(t, 4, []uint64{9, 3, 7, 1, 12})
	hybridRoundTrip(t, 4, []uint64{9})
}

func TestHybridRoundTripWideValues(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	values := make([]uint64, 333)
	for i := range values {
		values[i] = uint64(rng.Uint32())
	}
	hybridRoundTrip(t, 32, values)
}

func TestHybridRoundTripLongLiteralRun(t *testing.T) {
	// Over 63 groups of 8, forcing the literal run to be split.
	values := make([]uint64, 64*8+24)
	for i := range values {
		values[i] = uint64(i % 7)
	}
	hybridRoundTrip(t, 3, values)
}

func TestHybridRoundTripWidthZero(t *testing.T) {
	hybridRoundTrip(t, 0, []uint64{0, 0, 0})
	hybridRoundTrip(t, 0, make([]uint64, 50))
}

func TestHybridRepeatRunBytes(t *testing.T) {
	enc := NewHybridEncoder(3)
	for i := 0; i < 10; i++ {
		enc.Put(5)
	}
	// header = count << 1, then the value in one byte.
	assert.Equal(t, []byte{10 << 1, 5}, enc.Flush())
}

func TestHybridLiteralRunBytes(t *testing.T) {
	enc := NewHybridEncoder(1)
	for _, v := range []uint64{1, 0, 1, 0, 1, 0, 1, 0} {
		enc.Put(v)
	}
	// One literal group: header (1 << 1) | 1, then 8 values LSB-first.
	assert.Equal(t, []byte{3, 0x55}, enc.Flush())
}

func TestHybridDecodeShortCount(t *testing.T) {
	enc := NewHybridEncoder(2)
	for i := 0; i < 20; i++ {
		enc.Put(3)
	}
	dec := NewHybridDecoder(2)
	dec.SetData(enc.Flush())

	out := make([]uint64, 50)
	assert.Equal(t, 20, dec.Decode(out))
	assert.Equal(t, 0, dec.Decode(out))
}

func TestHybridDecodeInt16(t *testing.T) {
	enc := NewHybridEncoder(2)
	levels := []int16{0, 1, 2, 2, 2, 2, 2, 2, 2, 2, 1, 0}
	for _, l := range levels {
		enc.Put(uint64(l))
	}
	dec := NewHybridDecoder(2)
	dec.SetData(enc.Flush())
	got := make([]int16, len(levels))
	require.Equal(t, len(levels), dec.DecodeInt16(got))
	assert.Equal(t, levels, got)
}

func TestHybridDecodeWithDictOutOfRange(t *testing.T) {
	enc := NewHybridEncoder(3)
	enc.Put(6)
	dec := NewHybridDecoder(3)
	dec.SetData(enc.Flush())

	dict := []int32{10, 20, 30}
	out := make([]int32, 1)
	_, err := DecodeWithDict(dec, dict, out, 1)
	require.ErrorIs(t, err, quarry.ErrInvalid)
}

func TestHybridEncoderReuse(t *testing.T) {
	enc := NewHybridEncoder(3)
	enc.Put(1)
	enc.Put(2)
	first := enc.Flush()
	require.NotEmpty(t, first)

	for i := 0; i < 12; i++ {
		enc.Put(4)
	}
	dec := NewHybridDecoder(3)
	dec.SetData(enc.Flush())
	out := make([]uint64, 12)
	require.Equal(t, 12, dec.Decode(out))
	for _, v := range out {
		assert.Equal(t, uint64(4), v)
	}
}

func BenchmarkHybridDecode(b *testing.B) {
	enc := NewHybridEncoder(3)
	rng := rand.New(rand.NewSource(12))
	for i := 0; i < 4096; i++ {
		enc.Put(uint64(rng.Intn(8)))
	}
	raw := enc.Flush()
	out := make([]uint64, 4096)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := NewHybridDecoder(3)
		dec.SetData(raw)
		if dec.Decode(out) != len(out) {
			b.Fatal("short decode")
		}
	}
}
