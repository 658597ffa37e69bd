package encoding

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/internal/testutil"
	"github.com/quarrydata/quarry/schema"
)

func testDescr(t *testing.T, physical quarry.PhysicalType, typeLength int) *schema.ColumnDescriptor {
	t.Helper()
	b := schema.NewPrimitive("col", physical).WithRepetition(quarry.Required)
	if typeLength > 0 {
		b = b.WithTypeLength(typeLength)
	}
	node, err := b.Build()
	require.NoError(t, err)
	return schema.NewColumnDescriptor(node, schema.PathFromString("col"), 0, 0)
}

func TestNewDecoderDispatch(t *testing.T) {
	descr := testDescr(t, quarry.Int32, -1)

	for _, enc := range []quarry.Encoding{
		quarry.Plain, quarry.DeltaBinaryPacked,
		quarry.DeltaLengthByteArray, quarry.DeltaByteArray,
	} {
		d, err := NewDecoder[int32](descr, enc)
		require.NoError(t, err, enc)
		assert.Equal(t, enc, d.Encoding())
	}

	d, err := NewDecoder[bool](descr, quarry.RLE)
	require.NoError(t, err)
	assert.Equal(t, quarry.RLE, d.Encoding())

	// Dictionary encodings need a dictionary page first.
	_, err = NewDecoder[int32](descr, quarry.RLEDictionary)
	require.ErrorIs(t, err, quarry.ErrInvalid)
	_, err = NewDecoder[int32](descr, quarry.PlainDictionary)
	require.ErrorIs(t, err, quarry.ErrInvalid)

	_, err = NewDecoder[int32](descr, quarry.BitPacked)
	require.ErrorIs(t, err, quarry.ErrUnsupported)
}

// plainRoundTrip encodes data with PLAIN and verifies it decodes back.
func plainRoundTrip[T quarry.Value](t *testing.T, typeLength int, data []T) {
	t.Helper()
	enc := NewPlainEncoder[T](typeLength)
	require.NoError(t, enc.Put(data))
	raw, err := enc.FlushBuffer()
	require.NoError(t, err)

	dec := NewPlainDecoder[T](typeLength)
	require.NoError(t, dec.SetData(raw, len(data)))
	out := make([]T, len(data))
	n, err := dec.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, 0, dec.ValuesLeft())
	if diff := cmp.Diff(data, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPlainInt32(t *testing.T) {
	plainRoundTrip(t, -1, []int32{42, 18, 52, math.MinInt32, math.MaxInt32})
}

func TestPlainInt64(t *testing.T) {
	plainRoundTrip(t, -1, []int64{42, 18, 52, math.MinInt64, math.MaxInt64})
}

func TestPlainFloat(t *testing.T) {
	plainRoundTrip(t, -1, []float32{3.14, 2.414, 12.51})
}

func TestPlainDouble(t *testing.T) {
	plainRoundTrip(t, -1, []float64{3.14, 2.414, 12.51})
}

func TestPlainInt96(t *testing.T) {
	plainRoundTrip(t, -1, []quarry.Int96{
		{11, 22, 33},
		{44, 55, 66},
		{10, 20, 30},
		{40, 50, 60},
	})
}

func TestPlainBool(t *testing.T) {
	plainRoundTrip(t, -1, []bool{
		false, true, false, false, true, false, true, true, false, true,
	})
}

func TestPlainByteArray(t *testing.T) {
	plainRoundTrip(t, -1, []quarry.ByteArray{
		quarry.ByteArray("hello"),
		quarry.ByteArray("quarry"),
		{},
	})
}

func TestPlainFixedLenByteArray(t *testing.T) {
	plainRoundTrip(t, 4, []quarry.ByteArray{
		quarry.ByteArray("bird"),
		quarry.ByteArray("come"),
		quarry.ByteArray("flow"),
	})
}

func TestPlainFixedLenByteArrayWrongLength(t *testing.T) {
	enc := NewPlainEncoder[quarry.ByteArray](4)
	err := enc.Put([]quarry.ByteArray{quarry.ByteArray("toolong")})
	require.ErrorIs(t, err, quarry.ErrInvalid)
}

func TestPlainDecodeTruncated(t *testing.T) {
	dec := NewPlainDecoder[int32](-1)
	require.NoError(t, dec.SetData([]byte{1, 2, 3}, 1))
	_, err := dec.Decode(make([]int32, 1))
	require.ErrorIs(t, err, quarry.ErrEOF)

	dec2 := NewPlainDecoder[quarry.ByteArray](-1)
	require.NoError(t, dec2.SetData([]byte{10, 0, 0, 0, 'h', 'i'}, 1))
	_, err = dec2.Decode(make([]quarry.ByteArray, 1))
	require.ErrorIs(t, err, quarry.ErrEOF)

	// One byte packs 8 booleans; claiming 9 overruns the stream.
	dec3 := NewPlainDecoder[bool](-1)
	require.NoError(t, dec3.SetData([]byte{0xAA}, 9))
	_, err = dec3.Decode(make([]bool, 9))
	require.ErrorIs(t, err, quarry.ErrEOF)
}

func TestPlainPartialReads(t *testing.T) {
	data := testutil.Int32s(rand.New(rand.NewSource(1)), 100, -1000, 1000)
	enc := NewPlainEncoder[int32](-1)
	require.NoError(t, enc.Put(data))
	raw, err := enc.FlushBuffer()
	require.NoError(t, err)

	dec := NewPlainDecoder[int32](-1)
	require.NoError(t, dec.SetData(raw, len(data)))

	var got []int32
	buf := make([]int32, 7)
	for dec.ValuesLeft() > 0 {
		n, err := dec.Decode(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, data, got)
}

func TestRLEValueBoolRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	// Multiple Put calls on the same encoder.
	chunks := [][]bool{
		testutil.Bools(rng, 256),
		testutil.Bools(rng, 257),
		testutil.Bools(rng, 126),
	}
	testEncodeDecode(t, testDescr(t, quarry.Boolean, -1), chunks, quarry.RLE)
}

func TestRLEValueNonBoolRejected(t *testing.T) {
	enc := NewRLEValueEncoder[int32]()
	require.ErrorIs(t, enc.Put([]int32{1, 2, 3, 4}), quarry.ErrUnsupported)

	dec := NewRLEValueDecoder[int32]()
	require.ErrorIs(t, dec.SetData([]byte{5, 0, 0, 0}, 1), quarry.ErrUnsupported)
}

// testEncodeDecode mirrors the shape of the codec round-trip tests:
// each chunk is one Put call, everything is flushed once and decoded
// back as a single stream.
func testEncodeDecode[T quarry.Value](t *testing.T, descr *schema.ColumnDescriptor, chunks [][]T, enc quarry.Encoding) {
	t.Helper()
	encoder, err := NewEncoder[T](descr, enc)
	require.NoError(t, err)
	for _, chunk := range chunks {
		require.NoError(t, encoder.Put(chunk))
	}
	raw, err := encoder.FlushBuffer()
	require.NoError(t, err)

	var want []T
	for _, chunk := range chunks {
		want = append(want, chunk...)
	}

	decoder, err := NewDecoder[T](descr, enc)
	require.NoError(t, err)
	require.NoError(t, decoder.SetData(raw, len(want)))

	got := make([]T, len(want))
	read := 0
	for decoder.ValuesLeft() > 0 {
		n, err := decoder.Decode(got[read:])
		require.NoError(t, err)
		read += n
	}
	assert.Equal(t, len(want), read)
	if len(want) == 0 {
		return
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
