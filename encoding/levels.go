package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/internal/bitpack"
)

// LevelDecoder reads definition or repetition levels out of a data
// page. Levels are RLE-encoded with bit width derived from the maximum
// level and carry a uint32 length prefix so the caller can tell where
// the value section starts.
type LevelDecoder struct {
	rle *HybridDecoder
}

// NewLevelDecoder returns a decoder for levels up to maxLevel. Only the
// RLE level encoding is supported; BIT_PACKED is a legacy encoding this
// implementation rejects.
func NewLevelDecoder(enc quarry.Encoding, maxLevel int16) (*LevelDecoder, error) {
	if enc != quarry.RLE {
		return nil, fmt.Errorf("%w: level encoding %s", quarry.ErrUnsupported, enc)
	}
	return &LevelDecoder{rle: NewHybridDecoder(bitpack.NumBits(uint64(maxLevel)))}, nil
}

// SetData points the decoder at the start of the level section and
// returns the number of bytes the section occupies, length prefix
// included.
func (d *LevelDecoder) SetData(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: level length prefix truncated", quarry.ErrEOF)
	}
	size := int(binary.LittleEndian.Uint32(data))
	if len(data) < 4+size {
		return 0, fmt.Errorf("%w: level section truncated (%d of %d bytes)",
			quarry.ErrEOF, len(data)-4, size)
	}
	d.rle.SetData(data[4 : 4+size])
	return 4 + size, nil
}

// Decode fills buf with levels and returns how many were read.
func (d *LevelDecoder) Decode(buf []int16) (int, error) {
	return d.rle.DecodeInt16(buf), nil
}

// LevelEncoder produces the level section of a data page.
type LevelEncoder struct {
	rle *HybridEncoder
}

// NewLevelEncoder returns an encoder for levels up to maxLevel.
func NewLevelEncoder(enc quarry.Encoding, maxLevel int16) (*LevelEncoder, error) {
	if enc != quarry.RLE {
		return nil, fmt.Errorf("%w: level encoding %s", quarry.ErrUnsupported, enc)
	}
	return &LevelEncoder{rle: NewHybridEncoder(bitpack.NumBits(uint64(maxLevel)))}, nil
}

// Put appends levels.
func (e *LevelEncoder) Put(levels []int16) {
	for _, l := range levels {
		e.rle.Put(uint64(l))
	}
}

// Bytes finalizes the section: uint32 length prefix plus the run stream.
func (e *LevelEncoder) Bytes() []byte {
	payload := e.rle.Flush()
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(payload)))
	return append(out, payload...)
}
