package bitpack

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetValueRoundTrip(t *testing.T) {
	for width := 1; width <= 32; width++ {
		w := NewWriter()
		values := make([]uint64, 100)
		rng := rand.New(rand.NewSource(int64(width)))
		for i := range values {
			values[i] = rng.Uint64() & ((1 << width) - 1)
			w.PutValue(values[i], width)
		}
		r := NewReader(w.Bytes())
		for i, want := range values {
			got, ok := r.GetValue(width)
			require.True(t, ok, "width %d value %d", width, i)
			assert.Equal(t, want, got, "width %d value %d", width, i)
		}
	}
}

func TestGetValueExhausted(t *testing.T) {
	r := NewReader([]byte{0xff})
	_, ok := r.GetValue(8)
	require.True(t, ok)
	_, ok = r.GetValue(1)
	assert.False(t, ok)
}

func TestKnownBitLayout(t *testing.T) {
	// 6-bit values packed LSB-first: first value in the low bits of
	// byte 0, second value spanning bytes 0 and 1.
	r := NewReader([]byte{0x00, 0x08})
	v0, ok := r.GetValue(6)
	require.True(t, ok)
	assert.Equal(t, uint64(0), v0)
	v1, ok := r.GetValue(6)
	require.True(t, ok)
	assert.Equal(t, uint64(32), v1)
}

func TestVlqRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 16384, math.MaxUint32, math.MaxUint64 >> 1}
	w := NewWriter()
	for _, v := range cases {
		w.PutVlqInt(v)
	}
	r := NewReader(w.Bytes())
	for _, want := range cases {
		got, ok := r.GetVlqInt()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestZigZagRoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, -2, 63, -64, math.MaxInt64, math.MinInt64}
	w := NewWriter()
	for _, v := range cases {
		w.PutZigZagVlqInt(v)
	}
	r := NewReader(w.Bytes())
	for _, want := range cases {
		got, ok := r.GetZigZagVlqInt()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestZigZagKnownValues(t *testing.T) {
	w := NewWriter()
	w.PutZigZagVlqInt(29)
	assert.Equal(t, []byte{58}, w.Bytes())

	w = NewWriter()
	w.PutZigZagVlqInt(14)
	assert.Equal(t, []byte{28}, w.Bytes())
}

func TestAlignedAfterPartialBits(t *testing.T) {
	w := NewWriter()
	w.PutValue(1, 3)
	w.PutAligned([]byte{0xab, 0xcd})
	b := w.Bytes()
	require.Len(t, b, 3)

	r := NewReader(b)
	_, ok := r.GetValue(3)
	require.True(t, ok)
	aligned, ok := r.GetAligned(2)
	require.True(t, ok)
	assert.Equal(t, []byte{0xab, 0xcd}, aligned)
	assert.Equal(t, 3, r.ByteOffset())
}

func TestByteOffsetCountsPartialByte(t *testing.T) {
	r := NewReader([]byte{0xff, 0xff})
	assert.Equal(t, 0, r.ByteOffset())
	r.GetValue(3)
	assert.Equal(t, 1, r.ByteOffset())
	r.GetValue(5)
	assert.Equal(t, 1, r.ByteOffset())
	r.GetValue(1)
	assert.Equal(t, 2, r.ByteOffset())
}

func TestNumBits(t *testing.T) {
	assert.Equal(t, 0, NumBits(0))
	assert.Equal(t, 1, NumBits(1))
	assert.Equal(t, 2, NumBits(2))
	assert.Equal(t, 2, NumBits(3))
	assert.Equal(t, 6, NumBits(63))
	assert.Equal(t, 7, NumBits(64))
}

func BenchmarkGetValue(b *testing.B) {
	w := NewWriter()
	for i := 0; i < 1024; i++ {
		w.PutValue(uint64(i), 17)
	}
	data := w.Bytes()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(data)
		for {
			if _, ok := r.GetValue(17); !ok {
				break
			}
		}
	}
}
