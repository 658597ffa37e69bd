package encoding

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/internal/testutil"
)

// dictRoundTrip writes values through a dictionary encoder, rebuilds the
// dictionary from the dictionary page and decodes the index page back.
func dictRoundTrip[T quarry.Value](t *testing.T, typeLength int, chunks [][]T) {
	t.Helper()
	enc := NewDictEncoder[T](typeLength)
	for _, chunk := range chunks {
		require.NoError(t, enc.Put(chunk))
	}
	dictPage, err := enc.WriteDict()
	require.NoError(t, err)
	indexPage, err := enc.WriteIndices()
	require.NoError(t, err)

	var want []T
	for _, chunk := range chunks {
		want = append(want, chunk...)
	}

	plain := NewPlainDecoder[T](typeLength)
	require.NoError(t, plain.SetData(dictPage, enc.NumEntries()))

	dec := NewDictDecoder[T]()
	require.NoError(t, dec.SetDict(plain))
	require.NoError(t, dec.SetData(indexPage, len(want)))

	got := make([]T, len(want))
	read := 0
	for dec.ValuesLeft() > 0 {
		n, err := dec.Decode(got[read:])
		require.NoError(t, err)
		read += n
	}
	require.Equal(t, len(want), read)
	if len(want) == 0 {
		return
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded values mismatch (-want +got):\n%s", diff)
	}
}

func TestDictInt32RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	dictRoundTrip(t, -1, [][]int32{
		testutil.Int32s(rng, 100, 0, 10),
		testutil.Int32s(rng, 256, -50, 50),
	})
}

func TestDictInt64RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	dictRoundTrip(t, -1, [][]int64{testutil.Int64s(rng, 300, -20, 20)})
}

func TestDictFloatRoundTrip(t *testing.T) {
	dictRoundTrip(t, -1, [][]float32{{1.5, 2.5, 1.5, 1.5, 3.25, 2.5}})
	dictRoundTrip(t, -1, [][]float64{{0.25, -0.25, 0.25, 1e300, 0.25}})
}

func TestDictByteArrayRoundTrip(t *testing.T) {
	dictRoundTrip(t, -1, [][]quarry.ByteArray{
		{
			quarry.ByteArray("north"),
			quarry.ByteArray("south"),
			quarry.ByteArray("north"),
			quarry.ByteArray("east"),
			quarry.ByteArray("north"),
			quarry.ByteArray("south"),
		},
	})
}

func TestDictFixedLenByteArrayRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	dictRoundTrip(t, 4, [][]quarry.ByteArray{testutil.FixedByteArrays(rng, 64, 4)})
}

func TestDictInt96RoundTrip(t *testing.T) {
	dictRoundTrip(t, -1, [][]quarry.Int96{
		{
			{1, 2, 3},
			{4, 5, 6},
			{1, 2, 3},
			{1, 2, 3},
		},
	})
}

func TestDictSingleEntry(t *testing.T) {
	// One distinct value packs indices at bit width zero.
	values := make([]int32, 40)
	for i := range values {
		values[i] = 7
	}
	enc := NewDictEncoder[int32](-1)
	require.NoError(t, enc.Put(values))
	assert.Equal(t, 1, enc.NumEntries())

	indexPage, err := enc.WriteIndices()
	require.NoError(t, err)
	assert.Equal(t, byte(0), indexPage[0])

	dictRoundTrip(t, -1, [][]int32{values})
}

func TestDictNumEntries(t *testing.T) {
	enc := NewDictEncoder[int32](-1)
	require.NoError(t, enc.Put([]int32{1, 2, 3, 2, 1, 4}))
	assert.Equal(t, 4, enc.NumEntries())
}

func TestDictDecoderGuards(t *testing.T) {
	dec := NewDictDecoder[int32]()
	buf := make([]int32, 1)
	_, err := dec.Decode(buf)
	require.ErrorIs(t, err, quarry.ErrInvalid)

	require.ErrorIs(t, dec.SetData(nil, 0), quarry.ErrEOF)

	require.NoError(t, dec.SetData([]byte{1}, 0))
	_, err = dec.Decode(buf)
	require.ErrorIs(t, err, quarry.ErrInvalid)
}
