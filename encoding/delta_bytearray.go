package encoding

import (
	"fmt"

	"github.com/quarrydata/quarry"
)

// DeltaLengthByteArrayDecoder decodes byte arrays whose lengths are
// DELTA_BINARY_PACKED and whose bytes are concatenated after the
// length stream.
type DeltaLengthByteArrayDecoder[T quarry.Value] struct {
	lengths    []int32
	currentIdx int
	data       []byte
	offset     int
	numValues  int
}

// NewDeltaLengthByteArrayDecoder returns a delta length byte array decoder.
func NewDeltaLengthByteArrayDecoder[T quarry.Value]() *DeltaLengthByteArrayDecoder[T] {
	return &DeltaLengthByteArrayDecoder[T]{}
}

// SetData implements Decoder.
func (d *DeltaLengthByteArrayDecoder[T]) SetData(data []byte, numValues int) error {
	var zero T
	if _, ok := any(zero).(quarry.ByteArray); !ok {
		return fmt.Errorf("%w: DELTA_LENGTH_BYTE_ARRAY is only defined for BYTE_ARRAY", quarry.ErrUnsupported)
	}
	lenDecoder := NewDeltaBitPackDecoder[int32]()
	if err := lenDecoder.SetData(data, numValues); err != nil {
		return fmt.Errorf("length stream: %w", err)
	}
	n := lenDecoder.ValuesLeft()
	d.lengths = make([]int32, n)
	if _, err := lenDecoder.Decode(d.lengths); err != nil {
		return fmt.Errorf("decode lengths: %w", err)
	}

	d.data = data[lenDecoder.Offset():]
	d.offset = 0
	d.currentIdx = 0
	d.numValues = n
	return nil
}

// Decode implements Decoder.
func (d *DeltaLengthByteArrayDecoder[T]) Decode(buf []T) (int, error) {
	out, ok := any(buf).([]quarry.ByteArray)
	if !ok {
		return 0, fmt.Errorf("%w: DELTA_LENGTH_BYTE_ARRAY is only defined for BYTE_ARRAY", quarry.ErrUnsupported)
	}
	if d.data == nil && d.numValues > 0 {
		return 0, fmt.Errorf("%w: SetData not called", quarry.ErrInvalid)
	}
	n := len(out)
	if n > d.numValues {
		n = d.numValues
	}
	for i := 0; i < n; i++ {
		length := int(d.lengths[d.currentIdx])
		if d.offset+length > len(d.data) {
			return i, fmt.Errorf("%w: byte array data truncated", quarry.ErrEOF)
		}
		out[i] = quarry.ByteArray(d.data[d.offset : d.offset+length])
		d.offset += length
		d.currentIdx++
	}
	d.numValues -= n
	return n, nil
}

// ValuesLeft implements Decoder.
func (d *DeltaLengthByteArrayDecoder[T]) ValuesLeft() int { return d.numValues }

// Encoding implements Decoder.
func (d *DeltaLengthByteArrayDecoder[T]) Encoding() quarry.Encoding {
	return quarry.DeltaLengthByteArray
}

// DeltaLengthByteArrayEncoder is the counterpart of
// DeltaLengthByteArrayDecoder.
type DeltaLengthByteArrayEncoder[T quarry.Value] struct {
	lengths *DeltaBitPackEncoder[int32]
	data    []byte
}

// NewDeltaLengthByteArrayEncoder returns a delta length byte array encoder.
func NewDeltaLengthByteArrayEncoder[T quarry.Value]() *DeltaLengthByteArrayEncoder[T] {
	return &DeltaLengthByteArrayEncoder[T]{lengths: NewDeltaBitPackEncoder[int32]()}
}

// Put implements Encoder.
func (e *DeltaLengthByteArrayEncoder[T]) Put(values []T) error {
	in, ok := any(values).([]quarry.ByteArray)
	if !ok {
		return fmt.Errorf("%w: DELTA_LENGTH_BYTE_ARRAY is only defined for BYTE_ARRAY", quarry.ErrUnsupported)
	}
	for _, v := range in {
		if err := e.lengths.Put([]int32{int32(len(v))}); err != nil {
			return err
		}
		e.data = append(e.data, v...)
	}
	return nil
}

// FlushBuffer implements Encoder.
func (e *DeltaLengthByteArrayEncoder[T]) FlushBuffer() ([]byte, error) {
	lengths, err := e.lengths.FlushBuffer()
	if err != nil {
		return nil, err
	}
	out := append(lengths, e.data...)
	e.data = nil
	return out, nil
}

// Encoding implements Encoder.
func (e *DeltaLengthByteArrayEncoder[T]) Encoding() quarry.Encoding {
	return quarry.DeltaLengthByteArray
}

// DeltaByteArrayDecoder decodes incremental byte arrays: prefix lengths
// are DELTA_BINARY_PACKED, suffixes are DELTA_LENGTH_BYTE_ARRAY, and
// each value is the previous value's prefix plus its suffix.
type DeltaByteArrayDecoder[T quarry.Value] struct {
	prefixLengths []int32
	currentIdx    int
	suffixes      *DeltaLengthByteArrayDecoder[quarry.ByteArray]
	previous      []byte
	numValues     int
}

// NewDeltaByteArrayDecoder returns a delta byte array decoder.
func NewDeltaByteArrayDecoder[T quarry.Value]() *DeltaByteArrayDecoder[T] {
	return &DeltaByteArrayDecoder[T]{}
}

// SetData implements Decoder.
func (d *DeltaByteArrayDecoder[T]) SetData(data []byte, numValues int) error {
	var zero T
	if _, ok := any(zero).(quarry.ByteArray); !ok {
		return fmt.Errorf("%w: DELTA_BYTE_ARRAY is only defined for BYTE_ARRAY", quarry.ErrUnsupported)
	}
	prefixDecoder := NewDeltaBitPackDecoder[int32]()
	if err := prefixDecoder.SetData(data, numValues); err != nil {
		return fmt.Errorf("prefix stream: %w", err)
	}
	n := prefixDecoder.ValuesLeft()
	d.prefixLengths = make([]int32, n)
	if _, err := prefixDecoder.Decode(d.prefixLengths); err != nil {
		return fmt.Errorf("decode prefix lengths: %w", err)
	}

	d.suffixes = NewDeltaLengthByteArrayDecoder[quarry.ByteArray]()
	if err := d.suffixes.SetData(data[prefixDecoder.Offset():], numValues); err != nil {
		return fmt.Errorf("suffix stream: %w", err)
	}
	d.numValues = n
	d.currentIdx = 0
	d.previous = d.previous[:0]
	return nil
}

// Decode implements Decoder.
func (d *DeltaByteArrayDecoder[T]) Decode(buf []T) (int, error) {
	out, ok := any(buf).([]quarry.ByteArray)
	if !ok {
		return 0, fmt.Errorf("%w: DELTA_BYTE_ARRAY is only defined for BYTE_ARRAY", quarry.ErrUnsupported)
	}
	if d.suffixes == nil {
		return 0, fmt.Errorf("%w: SetData not called", quarry.ErrInvalid)
	}
	n := len(out)
	if n > d.numValues {
		n = d.numValues
	}
	suffix := make([]quarry.ByteArray, 1)
	for i := 0; i < n; i++ {
		if _, err := d.suffixes.Decode(suffix); err != nil {
			return i, err
		}
		prefixLen := int(d.prefixLengths[d.currentIdx])
		if prefixLen > len(d.previous) {
			return i, fmt.Errorf("%w: prefix length %d exceeds previous value (%d bytes)",
				quarry.ErrInvalid, prefixLen, len(d.previous))
		}
		value := make([]byte, 0, prefixLen+len(suffix[0]))
		value = append(value, d.previous[:prefixLen]...)
		value = append(value, suffix[0]...)
		out[i] = quarry.ByteArray(value)
		d.previous = value
		d.currentIdx++
	}
	d.numValues -= n
	return n, nil
}

// ValuesLeft implements Decoder.
func (d *DeltaByteArrayDecoder[T]) ValuesLeft() int { return d.numValues }

// Encoding implements Decoder.
func (d *DeltaByteArrayDecoder[T]) Encoding() quarry.Encoding { return quarry.DeltaByteArray }

// DeltaByteArrayEncoder is the counterpart of DeltaByteArrayDecoder.
type DeltaByteArrayEncoder[T quarry.Value] struct {
	prefixes *DeltaBitPackEncoder[int32]
	suffixes *DeltaLengthByteArrayEncoder[quarry.ByteArray]
	previous []byte
}

// NewDeltaByteArrayEncoder returns a delta byte array encoder.
func NewDeltaByteArrayEncoder[T quarry.Value]() *DeltaByteArrayEncoder[T] {
	return &DeltaByteArrayEncoder[T]{
		prefixes: NewDeltaBitPackEncoder[int32](),
		suffixes: NewDeltaLengthByteArrayEncoder[quarry.ByteArray](),
	}
}

// Put implements Encoder.
func (e *DeltaByteArrayEncoder[T]) Put(values []T) error {
	in, ok := any(values).([]quarry.ByteArray)
	if !ok {
		return fmt.Errorf("%w: DELTA_BYTE_ARRAY is only defined for BYTE_ARRAY", quarry.ErrUnsupported)
	}
	for _, v := range in {
		prefixLen := 0
		for prefixLen < len(v) && prefixLen < len(e.previous) && v[prefixLen] == e.previous[prefixLen] {
			prefixLen++
		}
		if err := e.prefixes.Put([]int32{int32(prefixLen)}); err != nil {
			return err
		}
		if err := e.suffixes.Put([]quarry.ByteArray{quarry.ByteArray(v[prefixLen:])}); err != nil {
			return err
		}
		e.previous = append(e.previous[:0], v...)
	}
	return nil
}

// FlushBuffer implements Encoder.
func (e *DeltaByteArrayEncoder[T]) FlushBuffer() ([]byte, error) {
	prefixes, err := e.prefixes.FlushBuffer()
	if err != nil {
		return nil, err
	}
	suffixes, err := e.suffixes.FlushBuffer()
	if err != nil {
		return nil, err
	}
	e.previous = e.previous[:0]
	return append(prefixes, suffixes...), nil
}

// Encoding implements Encoder.
func (e *DeltaByteArrayEncoder[T]) Encoding() quarry.Encoding { return quarry.DeltaByteArray }
