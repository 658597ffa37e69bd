package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/quarrydata/quarry"
)

// RLEValueDecoder decodes RLE-encoded values. Only booleans (bit width
// 1) are defined by the format; the payload carries a uint32 length
// prefix ahead of the hybrid run stream.
type RLEValueDecoder[T quarry.Value] struct {
	rle        *HybridDecoder
	valuesLeft int
}

// NewRLEValueDecoder returns an RLE value decoder.
func NewRLEValueDecoder[T quarry.Value]() *RLEValueDecoder[T] {
	return &RLEValueDecoder[T]{}
}

// SetData implements Decoder.
func (d *RLEValueDecoder[T]) SetData(data []byte, numValues int) error {
	var zero T
	if _, ok := any(zero).(bool); !ok {
		return fmt.Errorf("%w: RLE values are only defined for BOOLEAN", quarry.ErrUnsupported)
	}
	if len(data) < 4 {
		return fmt.Errorf("%w: RLE length prefix truncated", quarry.ErrEOF)
	}
	size := int(binary.LittleEndian.Uint32(data))
	if len(data) < 4+size {
		return fmt.Errorf("%w: RLE payload truncated", quarry.ErrEOF)
	}
	d.rle = NewHybridDecoder(1)
	d.rle.SetData(data[4 : 4+size])
	d.valuesLeft = numValues
	return nil
}

// Decode implements Decoder.
func (d *RLEValueDecoder[T]) Decode(buf []T) (int, error) {
	if d.rle == nil {
		return 0, fmt.Errorf("%w: SetData not called", quarry.ErrInvalid)
	}
	out, ok := any(buf).([]bool)
	if !ok {
		return 0, fmt.Errorf("%w: RLE values are only defined for BOOLEAN", quarry.ErrUnsupported)
	}
	n := len(out)
	if n > d.valuesLeft {
		n = d.valuesLeft
	}
	tmp := make([]uint64, n)
	decoded := d.rle.Decode(tmp)
	for i := 0; i < decoded; i++ {
		out[i] = tmp[i] != 0
	}
	d.valuesLeft -= decoded
	return decoded, nil
}

// ValuesLeft implements Decoder.
func (d *RLEValueDecoder[T]) ValuesLeft() int { return d.valuesLeft }

// Encoding implements Decoder.
func (d *RLEValueDecoder[T]) Encoding() quarry.Encoding { return quarry.RLE }

// RLEValueEncoder encodes boolean values as a length-prefixed hybrid
// run stream.
type RLEValueEncoder[T quarry.Value] struct {
	rle *HybridEncoder
}

// NewRLEValueEncoder returns an RLE value encoder.
func NewRLEValueEncoder[T quarry.Value]() *RLEValueEncoder[T] {
	return &RLEValueEncoder[T]{}
}

// Put implements Encoder.
func (e *RLEValueEncoder[T]) Put(values []T) error {
	in, ok := any(values).([]bool)
	if !ok {
		return fmt.Errorf("%w: RLE values are only defined for BOOLEAN", quarry.ErrUnsupported)
	}
	if e.rle == nil {
		e.rle = NewHybridEncoder(1)
	}
	for _, v := range in {
		var bit uint64
		if v {
			bit = 1
		}
		e.rle.Put(bit)
	}
	return nil
}

// FlushBuffer implements Encoder.
func (e *RLEValueEncoder[T]) FlushBuffer() ([]byte, error) {
	if e.rle == nil {
		e.rle = NewHybridEncoder(1)
	}
	payload := e.rle.Flush()
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(payload)))
	return append(out, payload...), nil
}

// Encoding implements Encoder.
func (e *RLEValueEncoder[T]) Encoding() quarry.Encoding { return quarry.RLE }
