package encoding

import (
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/internal/bitpack"
)

// HybridDecoder reads the RLE / bit-packing hybrid stream used for
// levels, dictionary indices and boolean values. Run headers are
// ULEB128 `(count << 1) | literalFlag`: literal runs carry count groups
// of 8 bit-packed values, repeated runs carry one value stored in
// ceil(bitWidth/8) little-endian bytes.
type HybridDecoder struct {
	bitWidth int
	r        *bitpack.Reader

	litCount int // literal values still to read from the current run
	repCount int // repeats still to emit from the current run
	repValue uint64
}

// NewHybridDecoder returns a decoder for values of the given bit width.
func NewHybridDecoder(bitWidth int) *HybridDecoder {
	return &HybridDecoder{bitWidth: bitWidth}
}

// SetData resets the decoder to read from data.
func (d *HybridDecoder) SetData(data []byte) {
	d.r = bitpack.NewReader(data)
	d.litCount = 0
	d.repCount = 0
	d.repValue = 0
}

// nextRun reads the next run header. Reports false when exhausted.
func (d *HybridDecoder) nextRun() bool {
	header, ok := d.r.GetVlqInt()
	if !ok {
		return false
	}
	count := int(header >> 1)
	if header&1 == 1 {
		d.litCount = count * 8
		return d.litCount > 0
	}
	d.repCount = count
	nbytes := (d.bitWidth + 7) / 8
	raw, ok := d.r.GetAligned(nbytes)
	if !ok {
		return false
	}
	d.repValue = 0
	for i, b := range raw {
		d.repValue |= uint64(b) << (8 * i)
	}
	return d.repCount > 0
}

// Decode fills out with decoded values, returning how many were
// written. A short count means the stream is exhausted.
func (d *HybridDecoder) Decode(out []uint64) int {
	n := 0
	for n < len(out) {
		switch {
		case d.repCount > 0:
			out[n] = d.repValue
			d.repCount--
			n++
		case d.litCount > 0:
			v, ok := d.r.GetValue(d.bitWidth)
			if !ok {
				return n
			}
			out[n] = v
			d.litCount--
			n++
		default:
			if !d.nextRun() {
				return n
			}
		}
	}
	return n
}

// DecodeInt16 decodes into an int16 slice (levels).
func (d *HybridDecoder) DecodeInt16(out []int16) int {
	tmp := make([]uint64, len(out))
	n := d.Decode(tmp)
	for i := 0; i < n; i++ {
		out[i] = int16(tmp[i])
	}
	return n
}

// DecodeWithDict decodes up to max indices and maps them through dict
// into out. An index outside the dictionary is a corruption error.
func DecodeWithDict[T any](d *HybridDecoder, dict []T, out []T, max int) (int, error) {
	if max > len(out) {
		max = len(out)
	}
	tmp := make([]uint64, max)
	n := d.Decode(tmp)
	for i := 0; i < n; i++ {
		idx := int(tmp[i])
		if idx >= len(dict) {
			return i, fmt.Errorf("%w: dictionary index %d out of range (%d entries)",
				quarry.ErrInvalid, idx, len(dict))
		}
		out[i] = dict[idx]
	}
	return n, nil
}

// HybridEncoder produces the RLE / bit-packing hybrid stream. Values
// are buffered in groups of 8; runs of 8 or more identical values are
// written as repeat runs, everything else as bit-packed literal groups.
type HybridEncoder struct {
	bitWidth int
	buf      []byte

	buffered    [8]uint64
	numBuffered int

	prevValue   uint64
	repeatCount int

	litGroups    int
	litHeaderPos int // -1 when no literal run is open
}

// NewHybridEncoder returns an encoder for values of the given bit width.
func NewHybridEncoder(bitWidth int) *HybridEncoder {
	return &HybridEncoder{bitWidth: bitWidth, litHeaderPos: -1}
}

// Put appends one value.
func (e *HybridEncoder) Put(v uint64) {
	if v == e.prevValue {
		e.repeatCount++
		if e.repeatCount >= 8 {
			// Part of a repeat run, nothing to buffer.
			return
		}
	} else {
		if e.repeatCount >= 8 {
			e.writeRepeatRun()
		}
		e.repeatCount = 1
		e.prevValue = v
	}
	e.buffered[e.numBuffered] = v
	e.numBuffered++
	if e.numBuffered == 8 {
		e.writeLiteralGroup()
	}
}

func (e *HybridEncoder) appendVlq(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

func (e *HybridEncoder) writeRepeatRun() {
	e.endLiteralRun()
	e.appendVlq(uint64(e.repeatCount) << 1)
	for i := 0; i < (e.bitWidth+7)/8; i++ {
		e.buf = append(e.buf, byte(e.prevValue>>(8*i)))
	}
	e.numBuffered = 0
	e.repeatCount = 0
}

func (e *HybridEncoder) writeLiteralGroup() {
	// Single-byte literal headers cap a run at 63 groups.
	if e.litGroups >= 63 {
		e.endLiteralRun()
	}
	if e.litHeaderPos < 0 {
		e.buf = append(e.buf, 0)
		e.litHeaderPos = len(e.buf) - 1
	}
	var cur uint64
	var nbits uint
	for _, v := range e.buffered {
		cur |= (v & ((1 << e.bitWidth) - 1)) << nbits
		nbits += uint(e.bitWidth)
		for nbits >= 8 {
			e.buf = append(e.buf, byte(cur))
			cur >>= 8
			nbits -= 8
		}
	}
	e.numBuffered = 0
	e.repeatCount = 0
	e.litGroups++
}

func (e *HybridEncoder) endLiteralRun() {
	if e.litHeaderPos < 0 {
		return
	}
	e.buf[e.litHeaderPos] = byte(e.litGroups<<1 | 1)
	e.litHeaderPos = -1
	e.litGroups = 0
}

// Flush finalizes pending runs and returns the encoded stream. The
// encoder is reset for reuse.
func (e *HybridEncoder) Flush() []byte {
	if e.repeatCount >= 8 {
		e.writeRepeatRun()
	} else if e.numBuffered > 0 {
		for i := e.numBuffered; i < 8; i++ {
			e.buffered[i] = 0
		}
		e.writeLiteralGroup()
	}
	e.endLiteralRun()
	out := e.buf
	e.buf = nil
	e.numBuffered = 0
	e.prevValue = 0
	e.repeatCount = 0
	return out
}
