package encoding

import (
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/internal/bitpack"
)

// DictDecoder maps RLE-encoded dictionary indices back to values. The
// dictionary itself is decoded once from the column chunk's dictionary
// page via SetDict; data pages then carry a 1-byte bit width followed
// by the hybrid index stream.
type DictDecoder[T quarry.Value] struct {
	dict      []T
	hasDict   bool
	rle       *HybridDecoder
	numValues int
}

// NewDictDecoder returns a dictionary decoder with no dictionary set.
func NewDictDecoder[T quarry.Value]() *DictDecoder[T] {
	return &DictDecoder[T]{}
}

// SetDict drains dec (typically a plain decoder over the dictionary
// page) into the value table.
func (d *DictDecoder[T]) SetDict(dec Decoder[T]) error {
	n := dec.ValuesLeft()
	d.dict = make([]T, n)
	if _, err := dec.Decode(d.dict); err != nil {
		return fmt.Errorf("decode dictionary: %w", err)
	}
	d.hasDict = true
	return nil
}

// SetData implements Decoder. The first byte of data is the index bit
// width.
func (d *DictDecoder[T]) SetData(data []byte, numValues int) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty dictionary index page", quarry.ErrEOF)
	}
	bitWidth := int(data[0])
	d.rle = NewHybridDecoder(bitWidth)
	d.rle.SetData(data[1:])
	d.numValues = numValues
	return nil
}

// Decode implements Decoder.
func (d *DictDecoder[T]) Decode(buf []T) (int, error) {
	if d.rle == nil {
		return 0, fmt.Errorf("%w: SetData not called", quarry.ErrInvalid)
	}
	if !d.hasDict {
		return 0, fmt.Errorf("%w: SetDict not called", quarry.ErrInvalid)
	}
	n, err := DecodeWithDict(d.rle, d.dict, buf, d.numValues)
	if err != nil {
		return n, err
	}
	d.numValues -= n
	return n, nil
}

// ValuesLeft implements Decoder.
func (d *DictDecoder[T]) ValuesLeft() int { return d.numValues }

// Encoding implements Decoder.
func (d *DictDecoder[T]) Encoding() quarry.Encoding { return quarry.RLEDictionary }

// DictEncoder accumulates distinct values and emits RLE index pages
// plus a plain-encoded dictionary page.
type DictEncoder[T quarry.Value] struct {
	dict    []T
	keys    map[string]int32
	indices []int32
	plain   *PlainEncoder[T]
}

// NewDictEncoder returns an empty dictionary encoder. typeLength is
// only consulted for FIXED_LEN_BYTE_ARRAY values.
func NewDictEncoder[T quarry.Value](typeLength int) *DictEncoder[T] {
	return &DictEncoder[T]{
		keys:  make(map[string]int32),
		plain: NewPlainEncoder[T](typeLength),
	}
}

// dictKey serializes one value so it can key the deduplication map.
func (e *DictEncoder[T]) dictKey(v T) (string, error) {
	if err := e.plain.Put([]T{v}); err != nil {
		return "", err
	}
	raw, err := e.plain.FlushBuffer()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Put implements Encoder.
func (e *DictEncoder[T]) Put(values []T) error {
	for _, v := range values {
		key, err := e.dictKey(v)
		if err != nil {
			return err
		}
		idx, ok := e.keys[key]
		if !ok {
			idx = int32(len(e.dict))
			e.keys[key] = idx
			e.dict = append(e.dict, v)
		}
		e.indices = append(e.indices, idx)
	}
	return nil
}

// NumEntries returns the number of distinct values seen so far.
func (e *DictEncoder[T]) NumEntries() int { return len(e.dict) }

// bitWidth returns the width needed to address every dictionary entry.
func (e *DictEncoder[T]) bitWidth() int {
	if len(e.dict) <= 1 {
		return 0
	}
	return bitpack.NumBits(uint64(len(e.dict) - 1))
}

// WriteIndices serializes the buffered indices: bit width byte plus the
// hybrid run stream. The index buffer is reset, the dictionary is kept.
func (e *DictEncoder[T]) WriteIndices() ([]byte, error) {
	width := e.bitWidth()
	enc := NewHybridEncoder(width)
	for _, idx := range e.indices {
		enc.Put(uint64(idx))
	}
	e.indices = e.indices[:0]
	return append([]byte{byte(width)}, enc.Flush()...), nil
}

// WriteDict serializes the dictionary with plain encoding.
func (e *DictEncoder[T]) WriteDict() ([]byte, error) {
	if err := e.plain.Put(e.dict); err != nil {
		return nil, err
	}
	return e.plain.FlushBuffer()
}

// FlushBuffer implements Encoder: equivalent to WriteIndices.
func (e *DictEncoder[T]) FlushBuffer() ([]byte, error) { return e.WriteIndices() }

// Encoding implements Encoder.
func (e *DictEncoder[T]) Encoding() quarry.Encoding { return quarry.RLEDictionary }
