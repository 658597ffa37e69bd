// Package bitpack implements the bit-level primitives the encoding layer
// is built on: little-endian bit-packed reads and writes, ULEB128
// varints and zigzag integers.
package bitpack

// Reader consumes a byte slice bit by bit. Values are packed LSB-first:
// the first value occupies the lowest bits of the first byte.
type Reader struct {
	data    []byte
	byteOff int
	bitOff  uint // 0..7, bits already consumed in data[byteOff]
}

// NewReader returns a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// GetValue reads a single value of the given bit width. It reports false
// when the underlying data is exhausted.
func (r *Reader) GetValue(width int) (uint64, bool) {
	var v uint64
	got := 0
	for got < width {
		if r.byteOff >= len(r.data) {
			return 0, false
		}
		avail := 8 - int(r.bitOff)
		take := width - got
		if take > avail {
			take = avail
		}
		bits := (uint64(r.data[r.byteOff]) >> r.bitOff) & ((1 << take) - 1)
		v |= bits << got
		r.bitOff += uint(take)
		got += take
		if r.bitOff == 8 {
			r.bitOff = 0
			r.byteOff++
		}
	}
	return v, true
}

// GetBatch reads up to len(out) values of the given bit width and
// returns how many were read.
func (r *Reader) GetBatch(out []uint64, width int) int {
	for i := range out {
		v, ok := r.GetValue(width)
		if !ok {
			return i
		}
		out[i] = v
	}
	return len(out)
}

// align advances the reader to the next byte boundary.
func (r *Reader) align() {
	if r.bitOff > 0 {
		r.bitOff = 0
		r.byteOff++
	}
}

// GetAligned skips to the next byte boundary and reads n raw bytes.
func (r *Reader) GetAligned(n int) ([]byte, bool) {
	r.align()
	if r.byteOff+n > len(r.data) {
		return nil, false
	}
	b := r.data[r.byteOff : r.byteOff+n]
	r.byteOff += n
	return b, true
}

// GetVlqInt reads a byte-aligned ULEB128 varint.
func (r *Reader) GetVlqInt() (uint64, bool) {
	r.align()
	var v uint64
	var shift uint
	for {
		if r.byteOff >= len(r.data) || shift > 63 {
			return 0, false
		}
		b := r.data[r.byteOff]
		r.byteOff++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, true
		}
		shift += 7
	}
}

// GetZigZagVlqInt reads a byte-aligned zigzag-encoded signed varint.
func (r *Reader) GetZigZagVlqInt() (int64, bool) {
	u, ok := r.GetVlqInt()
	if !ok {
		return 0, false
	}
	return int64(u>>1) ^ -int64(u&1), true
}

// ByteOffset returns the number of bytes consumed so far, counting a
// partially consumed byte as consumed.
func (r *Reader) ByteOffset() int {
	if r.bitOff > 0 {
		return r.byteOff + 1
	}
	return r.byteOff
}

// Remaining returns the number of unread whole bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.ByteOffset()
}
