package encoding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/internal/bitpack"
)

// PlainDecoder reads back-to-back little-endian values. Booleans are
// bit-packed LSB-first, BYTE_ARRAY values carry a uint32 length prefix,
// FIXED_LEN_BYTE_ARRAY values use the descriptor's type length, INT96
// is three little-endian words.
type PlainDecoder[T quarry.Value] struct {
	data       []byte
	start      int
	numValues  int
	typeLength int
	bits       *bitpack.Reader // booleans only
}

// NewPlainDecoder returns a plain decoder. typeLength is only consulted
// for FIXED_LEN_BYTE_ARRAY columns.
func NewPlainDecoder[T quarry.Value](typeLength int) *PlainDecoder[T] {
	return &PlainDecoder[T]{typeLength: typeLength}
}

// SetData implements Decoder.
func (d *PlainDecoder[T]) SetData(data []byte, numValues int) error {
	d.data = data
	d.start = 0
	d.numValues = numValues
	var zero T
	if _, ok := any(zero).(bool); ok {
		d.bits = bitpack.NewReader(data)
	}
	return nil
}

// ValuesLeft implements Decoder.
func (d *PlainDecoder[T]) ValuesLeft() int { return d.numValues }

// Encoding implements Decoder.
func (d *PlainDecoder[T]) Encoding() quarry.Encoding { return quarry.Plain }

// Decode implements Decoder.
func (d *PlainDecoder[T]) Decode(buf []T) (int, error) {
	n := len(buf)
	if n > d.numValues {
		n = d.numValues
	}
	var err error
	switch out := any(buf).(type) {
	case []bool:
		n, err = d.decodeBool(out[:n])
	case []int32:
		err = decodeFixed(d, out[:n], 4, func(b []byte) int32 {
			return int32(binary.LittleEndian.Uint32(b))
		})
	case []int64:
		err = decodeFixed(d, out[:n], 8, func(b []byte) int64 {
			return int64(binary.LittleEndian.Uint64(b))
		})
	case []quarry.Int96:
		err = decodeFixed(d, out[:n], 12, quarry.Int96FromBytes)
	case []float32:
		err = decodeFixed(d, out[:n], 4, func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		})
	case []float64:
		err = decodeFixed(d, out[:n], 8, func(b []byte) float64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		})
	case []quarry.ByteArray:
		err = d.decodeByteArrays(out[:n])
	}
	if err != nil {
		return 0, err
	}
	d.numValues -= n
	return n, nil
}

func (d *PlainDecoder[T]) decodeBool(out []bool) (int, error) {
	tmp := make([]uint64, len(out))
	n := d.bits.GetBatch(tmp, 1)
	if n < len(out) {
		return 0, fmt.Errorf("%w: need %d booleans, have %d", quarry.ErrEOF, len(out), n)
	}
	for i := 0; i < n; i++ {
		out[i] = tmp[i] != 0
	}
	return n, nil
}

// decodeFixed copies size-byte values out of the decoder's buffer.
func decodeFixed[T quarry.Value, V any](d *PlainDecoder[T], out []V, size int, from func([]byte) V) error {
	need := size * len(out)
	if len(d.data)-d.start < need {
		return fmt.Errorf("%w: need %d bytes, have %d", quarry.ErrEOF, need, len(d.data)-d.start)
	}
	for i := range out {
		out[i] = from(d.data[d.start : d.start+size])
		d.start += size
	}
	return nil
}

func (d *PlainDecoder[T]) decodeByteArrays(out []quarry.ByteArray) error {
	if d.typeLength > 0 {
		for i := range out {
			if len(d.data) < d.start+d.typeLength {
				return fmt.Errorf("%w: fixed-len byte array truncated", quarry.ErrEOF)
			}
			out[i] = quarry.ByteArray(d.data[d.start : d.start+d.typeLength])
			d.start += d.typeLength
		}
		return nil
	}
	for i := range out {
		if len(d.data) < d.start+4 {
			return fmt.Errorf("%w: byte array length truncated", quarry.ErrEOF)
		}
		length := int(binary.LittleEndian.Uint32(d.data[d.start : d.start+4]))
		d.start += 4
		if len(d.data) < d.start+length {
			return fmt.Errorf("%w: byte array truncated", quarry.ErrEOF)
		}
		out[i] = quarry.ByteArray(d.data[d.start : d.start+length])
		d.start += length
	}
	return nil
}

// PlainEncoder is the counterpart of PlainDecoder.
type PlainEncoder[T quarry.Value] struct {
	buf        []byte
	bits       *bitpack.Writer // booleans only
	typeLength int
}

// NewPlainEncoder returns a plain encoder.
func NewPlainEncoder[T quarry.Value](typeLength int) *PlainEncoder[T] {
	return &PlainEncoder[T]{typeLength: typeLength, bits: bitpack.NewWriter()}
}

// Put implements Encoder.
func (e *PlainEncoder[T]) Put(values []T) error {
	switch in := any(values).(type) {
	case []bool:
		for _, v := range in {
			var bit uint64
			if v {
				bit = 1
			}
			e.bits.PutValue(bit, 1)
		}
	case []int32:
		for _, v := range in {
			e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
		}
	case []int64:
		for _, v := range in {
			e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v))
		}
	case []quarry.Int96:
		for _, v := range in {
			e.buf = append(e.buf, v.Bytes()...)
		}
	case []float32:
		for _, v := range in {
			e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(v))
		}
	case []float64:
		for _, v := range in {
			e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v))
		}
	case []quarry.ByteArray:
		for _, v := range in {
			if e.typeLength > 0 {
				if len(v) != e.typeLength {
					return fmt.Errorf("%w: fixed-len value has %d bytes, want %d",
						quarry.ErrInvalid, len(v), e.typeLength)
				}
				e.buf = append(e.buf, v...)
				continue
			}
			e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(len(v)))
			e.buf = append(e.buf, v...)
		}
	}
	return nil
}

// FlushBuffer implements Encoder.
func (e *PlainEncoder[T]) FlushBuffer() ([]byte, error) {
	var zero T
	if _, ok := any(zero).(bool); ok {
		out := e.bits.Bytes()
		e.bits = bitpack.NewWriter()
		return out, nil
	}
	out := e.buf
	e.buf = nil
	return out, nil
}

// Encoding implements Encoder.
func (e *PlainEncoder[T]) Encoding() quarry.Encoding { return quarry.Plain }
