package encoding

import (
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/internal/bitpack"
)

// Delta binary packing splits values into blocks of deltas, each block
// into mini-blocks with their own bit width. The header carries the
// block size, mini-block count, total value count and the first value;
// each block carries its minimum delta and the per-mini-block widths.
const (
	deltaBlockSize     = 128
	deltaMiniBlocks    = 4
	deltaValuesPerMini = deltaBlockSize / deltaMiniBlocks
)

// DeltaBitPackDecoder decodes DELTA_BINARY_PACKED streams. Only INT32
// and INT64 are defined. Arithmetic wraps, so deltas that overflowed
// during encoding are restored exactly.
type DeltaBitPackDecoder[T quarry.Value] struct {
	r           *bitpack.Reader
	initialized bool

	numValues     int
	numMiniBlocks int
	valuesPerMini int
	valuesCurMini int

	firstValue     int64
	firstValueRead bool

	minDelta    int64
	miniIdx     int
	deltaWidth  int
	deltaWidths []byte
	deltas      []int64

	currentValue int64
}

// NewDeltaBitPackDecoder returns a delta binary packed decoder.
func NewDeltaBitPackDecoder[T quarry.Value]() *DeltaBitPackDecoder[T] {
	return &DeltaBitPackDecoder[T]{}
}

// SetData implements Decoder. The value count is taken from the stream
// header, not from numValues.
func (d *DeltaBitPackDecoder[T]) SetData(data []byte, _ int) error {
	var zero T
	switch any(zero).(type) {
	case int32, int64:
	default:
		return fmt.Errorf("%w: DELTA_BINARY_PACKED is only defined for INT32 and INT64", quarry.ErrUnsupported)
	}

	d.r = bitpack.NewReader(data)
	d.initialized = true

	blockSize, ok := d.r.GetVlqInt()
	if !ok {
		return fmt.Errorf("%w: delta header block size", quarry.ErrEOF)
	}
	numMini, ok := d.r.GetVlqInt()
	if !ok {
		return fmt.Errorf("%w: delta header mini-block count", quarry.ErrEOF)
	}
	total, ok := d.r.GetVlqInt()
	if !ok {
		return fmt.Errorf("%w: delta header value count", quarry.ErrEOF)
	}
	first, ok := d.r.GetZigZagVlqInt()
	if !ok {
		return fmt.Errorf("%w: delta header first value", quarry.ErrEOF)
	}
	if numMini == 0 || blockSize%numMini != 0 {
		return fmt.Errorf("%w: block size %d not divisible by %d mini-blocks",
			quarry.ErrInvalid, blockSize, numMini)
	}

	d.numValues = int(total)
	d.numMiniBlocks = int(numMini)
	d.valuesPerMini = int(blockSize / numMini)
	d.valuesCurMini = 0
	d.firstValue = first
	d.firstValueRead = false
	d.minDelta = 0
	d.miniIdx = 0
	d.deltaWidths = nil
	d.deltas = d.deltas[:0]

	if d.valuesPerMini%8 != 0 {
		return fmt.Errorf("%w: mini-block size %d not a multiple of 8",
			quarry.ErrInvalid, d.valuesPerMini)
	}
	return nil
}

// initBlock reads the next block header: min delta and mini-block widths.
func (d *DeltaBitPackDecoder[T]) initBlock() error {
	minDelta, ok := d.r.GetZigZagVlqInt()
	if !ok {
		return fmt.Errorf("%w: block min delta", quarry.ErrEOF)
	}
	widths, ok := d.r.GetAligned(d.numMiniBlocks)
	if !ok {
		return fmt.Errorf("%w: mini-block widths", quarry.ErrEOF)
	}
	d.minDelta = minDelta
	d.deltaWidths = widths
	d.miniIdx = 0
	d.deltaWidth = int(widths[0])
	d.valuesCurMini = d.valuesPerMini
	return nil
}

// loadDeltas eagerly reads the current mini-block's deltas.
func (d *DeltaBitPackDecoder[T]) loadDeltas() error {
	d.deltas = d.deltas[:0]
	for i := 0; i < d.valuesCurMini; i++ {
		delta, ok := d.r.GetValue(d.deltaWidth)
		if !ok {
			return fmt.Errorf("%w: mini-block delta", quarry.ErrEOF)
		}
		d.deltas = append(d.deltas, int64(delta))
	}
	return nil
}

// Decode implements Decoder.
func (d *DeltaBitPackDecoder[T]) Decode(buf []T) (int, error) {
	if !d.initialized {
		return 0, fmt.Errorf("%w: SetData not called", quarry.ErrInvalid)
	}
	n := len(buf)
	if n > d.numValues {
		n = d.numValues
	}
	var err error
	switch out := any(buf).(type) {
	case []int32:
		err = d.decodeInto(n, func(i int, v int64) { out[i] = int32(v) })
	case []int64:
		err = d.decodeInto(n, func(i int, v int64) { out[i] = v })
	default:
		return 0, fmt.Errorf("%w: DELTA_BINARY_PACKED is only defined for INT32 and INT64", quarry.ErrUnsupported)
	}
	if err != nil {
		return 0, err
	}
	d.numValues -= n
	return n, nil
}

func (d *DeltaBitPackDecoder[T]) decodeInto(n int, set func(int, int64)) error {
	for i := 0; i < n; i++ {
		if !d.firstValueRead {
			set(i, d.firstValue)
			d.currentValue = d.firstValue
			d.firstValueRead = true
			continue
		}
		if d.valuesCurMini == 0 {
			d.miniIdx++
			if d.miniIdx < len(d.deltaWidths) {
				d.deltaWidth = int(d.deltaWidths[d.miniIdx])
				d.valuesCurMini = d.valuesPerMini
			} else if err := d.initBlock(); err != nil {
				return err
			}
			if err := d.loadDeltas(); err != nil {
				return err
			}
		}
		delta := d.deltas[len(d.deltas)-d.valuesCurMini]
		// Wrapping add restores deltas that overflowed during encoding.
		d.currentValue += d.minDelta + delta
		set(i, d.currentValue)
		d.valuesCurMini--
	}
	return nil
}

// ValuesLeft implements Decoder.
func (d *DeltaBitPackDecoder[T]) ValuesLeft() int { return d.numValues }

// Encoding implements Decoder.
func (d *DeltaBitPackDecoder[T]) Encoding() quarry.Encoding { return quarry.DeltaBinaryPacked }

// Offset returns how many bytes of the stream have been consumed.
// The byte-array delta codecs use it to locate their payload after the
// embedded length stream.
func (d *DeltaBitPackDecoder[T]) Offset() int {
	if !d.initialized {
		return 0
	}
	return d.r.ByteOffset()
}

// DeltaBitPackEncoder produces DELTA_BINARY_PACKED streams with the
// standard 128-value blocks split into 4 mini-blocks.
type DeltaBitPackEncoder[T quarry.Value] struct {
	values []int64
}

// NewDeltaBitPackEncoder returns a delta binary packed encoder.
func NewDeltaBitPackEncoder[T quarry.Value]() *DeltaBitPackEncoder[T] {
	return &DeltaBitPackEncoder[T]{}
}

// Put implements Encoder.
func (e *DeltaBitPackEncoder[T]) Put(values []T) error {
	switch in := any(values).(type) {
	case []int32:
		for _, v := range in {
			e.values = append(e.values, int64(v))
		}
	case []int64:
		e.values = append(e.values, in...)
	default:
		return fmt.Errorf("%w: DELTA_BINARY_PACKED is only defined for INT32 and INT64", quarry.ErrUnsupported)
	}
	return nil
}

// FlushBuffer implements Encoder.
func (e *DeltaBitPackEncoder[T]) FlushBuffer() ([]byte, error) {
	w := bitpack.NewWriter()
	w.PutVlqInt(deltaBlockSize)
	w.PutVlqInt(deltaMiniBlocks)
	w.PutVlqInt(uint64(len(e.values)))

	var first int64
	if len(e.values) > 0 {
		first = e.values[0]
	}
	w.PutZigZagVlqInt(first)

	deltas := make([]int64, 0, len(e.values))
	for i := 1; i < len(e.values); i++ {
		deltas = append(deltas, e.values[i]-e.values[i-1])
	}

	for start := 0; start < len(deltas); start += deltaBlockSize {
		end := start + deltaBlockSize
		if end > len(deltas) {
			end = len(deltas)
		}
		e.writeBlock(w, deltas[start:end])
	}

	e.values = e.values[:0]
	return w.Bytes(), nil
}

func (e *DeltaBitPackEncoder[T]) writeBlock(w *bitpack.Writer, block []int64) {
	minDelta := block[0]
	for _, d := range block {
		if d < minDelta {
			minDelta = d
		}
	}
	w.PutZigZagVlqInt(minDelta)

	var widths [deltaMiniBlocks]byte
	for m := 0; m < deltaMiniBlocks; m++ {
		lo := m * deltaValuesPerMini
		if lo >= len(block) {
			break
		}
		hi := lo + deltaValuesPerMini
		if hi > len(block) {
			hi = len(block)
		}
		width := 0
		for _, d := range block[lo:hi] {
			if n := bitpack.NumBits(uint64(d - minDelta)); n > width {
				width = n
			}
		}
		widths[m] = byte(width)
	}
	w.PutAligned(widths[:])

	for m := 0; m < deltaMiniBlocks; m++ {
		lo := m * deltaValuesPerMini
		if lo >= len(block) || widths[m] == 0 {
			continue
		}
		hi := lo + deltaValuesPerMini
		if hi > len(block) {
			hi = len(block)
		}
		// Mini-blocks are written in full; the pad deltas past the end
		// of the block are never surfaced by the decoder.
		for i := 0; i < deltaValuesPerMini; i++ {
			var delta uint64
			if lo+i < hi {
				delta = uint64(block[lo+i] - minDelta)
			}
			w.PutValue(delta, int(widths[m]))
		}
	}
}

// Encoding implements Encoder.
func (e *DeltaBitPackEncoder[T]) Encoding() quarry.Encoding { return quarry.DeltaBinaryPacked }
