package bitpack

// Writer accumulates bit-packed values into a byte buffer, mirroring
// Reader's layout: LSB-first within each byte.
type Writer struct {
	buf   []byte
	cur   uint64 // pending bits, low bits first
	nbits uint   // number of valid bits in cur
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// PutValue appends the low width bits of v. Widths up to 64 are valid.
func (w *Writer) PutValue(v uint64, width int) {
	if width < 64 {
		v &= (1 << width) - 1
	}
	for width > 0 {
		// Chunk so the accumulator never overflows: nbits is < 8
		// after the flush loop, so 56 bits always fit.
		take := width
		if take > 56 {
			take = 56
		}
		chunk := v & ((1 << take) - 1)
		w.cur |= chunk << w.nbits
		w.nbits += uint(take)
		for w.nbits >= 8 {
			w.buf = append(w.buf, byte(w.cur))
			w.cur >>= 8
			w.nbits -= 8
		}
		v >>= take
		width -= take
	}
}

// flushPartial pads the pending bits with zeros up to a byte boundary.
func (w *Writer) flushPartial() {
	if w.nbits > 0 {
		w.buf = append(w.buf, byte(w.cur))
		w.cur = 0
		w.nbits = 0
	}
}

// PutAligned pads to a byte boundary and appends raw bytes.
func (w *Writer) PutAligned(b []byte) {
	w.flushPartial()
	w.buf = append(w.buf, b...)
}

// PutVlqInt appends a byte-aligned ULEB128 varint.
func (w *Writer) PutVlqInt(v uint64) {
	w.flushPartial()
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// PutZigZagVlqInt appends a byte-aligned zigzag-encoded signed varint.
func (w *Writer) PutZigZagVlqInt(v int64) {
	w.PutVlqInt(uint64((v << 1) ^ (v >> 63)))
}

// Bytes pads to a byte boundary and returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	w.flushPartial()
	return w.buf
}

// Len returns the length Bytes() would return.
func (w *Writer) Len() int {
	n := len(w.buf)
	if w.nbits > 0 {
		n++
	}
	return n
}

// NumBits returns how many bits are needed to represent v.
func NumBits(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
