package encoding

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/internal/testutil"
)

func levelRoundTrip(t *testing.T, maxLevel int16, levels []int16) {
	t.Helper()
	enc, err := NewLevelEncoder(quarry.RLE, maxLevel)
	require.NoError(t, err)
	enc.Put(levels)
	section := enc.Bytes()

	dec, err := NewLevelDecoder(quarry.RLE, maxLevel)
	require.NoError(t, err)
	consumed, err := dec.SetData(section)
	require.NoError(t, err)
	assert.Equal(t, len(section), consumed)

	got := make([]int16, len(levels))
	n, err := dec.Decode(got)
	require.NoError(t, err)
	require.Equal(t, len(levels), n)
	assert.Equal(t, levels, got)
}

func TestLevelRoundTrip(t *testing.T) {
	levelRoundTrip(t, 1, []int16{0, 1, 1, 1, 0, 1, 0, 0, 1, 1})
	levelRoundTrip(t, 3, []int16{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3})

	rng := rand.New(rand.NewSource(31))
	levelRoundTrip(t, 5, testutil.Levels(rng, 512, 5))
}

func TestLevelSectionTrailingData(t *testing.T) {
	enc, err := NewLevelEncoder(quarry.RLE, 2)
	require.NoError(t, err)
	enc.Put([]int16{0, 1, 2, 1})
	section := enc.Bytes()

	// Value bytes after the level section must not be consumed.
	dec, err := NewLevelDecoder(quarry.RLE, 2)
	require.NoError(t, err)
	consumed, err := dec.SetData(append(section, 0xAA, 0xBB, 0xCC))
	require.NoError(t, err)
	assert.Equal(t, len(section), consumed)

	got := make([]int16, 4)
	n, err := dec.Decode(got)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []int16{0, 1, 2, 1}, got)
}

func TestLevelDecoderRejectsBitPacked(t *testing.T) {
	_, err := NewLevelDecoder(quarry.BitPacked, 1)
	require.ErrorIs(t, err, quarry.ErrUnsupported)
	_, err = NewLevelEncoder(quarry.BitPacked, 1)
	require.ErrorIs(t, err, quarry.ErrUnsupported)
}

func TestLevelDecoderTruncated(t *testing.T) {
	dec, err := NewLevelDecoder(quarry.RLE, 1)
	require.NoError(t, err)

	_, err = dec.SetData([]byte{4, 0})
	require.ErrorIs(t, err, quarry.ErrEOF)

	// Prefix claims more bytes than the buffer holds.
	_, err = dec.SetData([]byte{10, 0, 0, 0, 1, 2})
	require.ErrorIs(t, err, quarry.ErrEOF)
}
