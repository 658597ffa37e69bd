// Package encoding implements the value, level and dictionary codecs of
// the quarry format: PLAIN, RLE/bit-packing hybrid, dictionary,
// DELTA_BINARY_PACKED, DELTA_LENGTH_BYTE_ARRAY and DELTA_BYTE_ARRAY.
package encoding

import (
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/schema"
)

// Decoder decodes values of one physical type from a page buffer.
type Decoder[T quarry.Value] interface {
	// SetData resets the decoder to read from data, which holds
	// numValues values.
	SetData(data []byte, numValues int) error

	// Decode fills buf with decoded values and returns how many were
	// written. The count equals len(buf) unless fewer values remain.
	Decode(buf []T) (int, error)

	// ValuesLeft returns the number of values remaining in the stream.
	ValuesLeft() int

	// Encoding identifies the codec.
	Encoding() quarry.Encoding
}

// Encoder encodes values of one physical type into a page buffer.
type Encoder[T quarry.Value] interface {
	// Put appends values to the encoder's buffer.
	Put(values []T) error

	// FlushBuffer serializes everything buffered so far and resets the
	// encoder for the next page.
	FlushBuffer() ([]byte, error)

	// Encoding identifies the codec.
	Encoding() quarry.Encoding
}

// NewDecoder returns a decoder for the descriptor and encoding. The
// dictionary encodings cannot be constructed here: they need a
// dictionary page first, see DictDecoder.SetDict.
func NewDecoder[T quarry.Value](descr *schema.ColumnDescriptor, enc quarry.Encoding) (Decoder[T], error) {
	switch enc {
	case quarry.Plain:
		return NewPlainDecoder[T](descr.TypeLength()), nil
	case quarry.RLEDictionary, quarry.PlainDictionary:
		return nil, fmt.Errorf("%w: cannot initialize %s through NewDecoder", quarry.ErrInvalid, enc)
	case quarry.RLE:
		return NewRLEValueDecoder[T](), nil
	case quarry.DeltaBinaryPacked:
		return NewDeltaBitPackDecoder[T](), nil
	case quarry.DeltaLengthByteArray:
		return NewDeltaLengthByteArrayDecoder[T](), nil
	case quarry.DeltaByteArray:
		return NewDeltaByteArrayDecoder[T](), nil
	default:
		return nil, fmt.Errorf("%w: encoding %s", quarry.ErrUnsupported, enc)
	}
}

// NewEncoder returns an encoder for the descriptor and encoding. As with
// NewDecoder, dictionary encodings are built through DictEncoder instead.
func NewEncoder[T quarry.Value](descr *schema.ColumnDescriptor, enc quarry.Encoding) (Encoder[T], error) {
	switch enc {
	case quarry.Plain:
		return NewPlainEncoder[T](descr.TypeLength()), nil
	case quarry.RLEDictionary, quarry.PlainDictionary:
		return nil, fmt.Errorf("%w: cannot initialize %s through NewEncoder", quarry.ErrInvalid, enc)
	case quarry.RLE:
		return NewRLEValueEncoder[T](), nil
	case quarry.DeltaBinaryPacked:
		return NewDeltaBitPackEncoder[T](), nil
	case quarry.DeltaLengthByteArray:
		return NewDeltaLengthByteArrayEncoder[T](), nil
	case quarry.DeltaByteArray:
		return NewDeltaByteArrayEncoder[T](), nil
	default:
		return nil, fmt.Errorf("%w: encoding %s", quarry.ErrUnsupported, enc)
	}
}
