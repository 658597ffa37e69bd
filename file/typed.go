package file

import (
	"fmt"
	"math"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/column"
	"github.com/quarrydata/quarry/schema"
)

// columnChunk adapts one typed column writer behind a dynamic cell
// interface so the file writer can stay untyped.
type columnChunk struct {
	descr *schema.ColumnDescriptor
	sink  *sinkRef
	impl  chunkImpl
}

type chunkImpl interface {
	appendCell(v any) error
	close() (int64, error)
	encoding() quarry.Encoding
}

// sinkRef lets the page destination be bound at flush time, after the
// chunk's byte offset is known.
type sinkRef struct {
	pw column.PageWriter
}

func (s *sinkRef) WritePage(p *column.Page) error { return s.pw.WritePage(p) }

func newColumnChunk(descr *schema.ColumnDescriptor, props column.WriterProps) (*columnChunk, error) {
	sink := &sinkRef{}
	var impl chunkImpl
	var err error
	switch descr.PhysicalType() {
	case quarry.Boolean:
		impl, err = newTypedChunk[bool](descr, sink, props, toBool)
	case quarry.Int32:
		impl, err = newTypedChunk[int32](descr, sink, props, toInt32)
	case quarry.Int64:
		impl, err = newTypedChunk[int64](descr, sink, props, toInt64)
	case quarry.Int96Type:
		impl, err = newTypedChunk[quarry.Int96](descr, sink, props, toInt96)
	case quarry.Float:
		impl, err = newTypedChunk[float32](descr, sink, props, toFloat32)
	case quarry.Double:
		impl, err = newTypedChunk[float64](descr, sink, props, toFloat64)
	case quarry.ByteArrayType, quarry.FixedLenByteArray:
		impl, err = newTypedChunk[quarry.ByteArray](descr, sink, props, toByteArray)
	default:
		err = fmt.Errorf("%w: physical type %s", quarry.ErrUnsupported, descr.PhysicalType())
	}
	if err != nil {
		return nil, err
	}
	return &columnChunk{descr: descr, sink: sink, impl: impl}, nil
}

func (c *columnChunk) appendCell(v any) error { return c.impl.appendCell(v) }

func (c *columnChunk) encoding() quarry.Encoding { return c.impl.encoding() }

func (c *columnChunk) close(pw column.PageWriter) (int64, error) {
	c.sink.pw = pw
	return c.impl.close()
}

type typedChunk[T quarry.Value] struct {
	descr   *schema.ColumnDescriptor
	w       *column.Writer[T]
	enc     quarry.Encoding
	convert func(any) (T, error)
}

func newTypedChunk[T quarry.Value](
	descr *schema.ColumnDescriptor,
	sink column.PageWriter,
	props column.WriterProps,
	convert func(any) (T, error),
) (*typedChunk[T], error) {
	w, err := column.NewWriter[T](descr, sink, props)
	if err != nil {
		return nil, err
	}
	return &typedChunk[T]{descr: descr, w: w, enc: props.Encoding, convert: convert}, nil
}

func (c *typedChunk[T]) appendCell(v any) error {
	if c.descr.MaxRepetitionLevel() > 0 {
		return fmt.Errorf("%w: row-wise append into repeated column", quarry.ErrUnsupported)
	}
	if v == nil {
		if c.descr.MaxDefinitionLevel() == 0 {
			return fmt.Errorf("%w: null in required column", quarry.ErrInvalid)
		}
		return c.w.WriteBatch(nil, []int16{0}, nil)
	}
	val, err := c.convert(v)
	if err != nil {
		return err
	}
	if c.descr.MaxDefinitionLevel() > 0 {
		return c.w.WriteBatch([]T{val}, []int16{c.descr.MaxDefinitionLevel()}, nil)
	}
	return c.w.WriteBatch([]T{val}, nil, nil)
}

func (c *typedChunk[T]) close() (int64, error) { return c.w.Close() }

func (c *typedChunk[T]) encoding() quarry.Encoding { return c.enc }

// Cell conversions accept the native Go value plus what encoding/json
// and the CLI produce.

func toBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %T is not a BOOLEAN", quarry.ErrInvalid, v)
	}
	return b, nil
}

func toInt32(v any) (int32, error) {
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %T is not an INT32", quarry.ErrInvalid, v)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d overflows INT32", quarry.ErrInvalid, n)
	}
	return int32(n), nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %v is not an integer", quarry.ErrInvalid, n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: %T is not an INT64", quarry.ErrInvalid, v)
	}
}

func toInt96(v any) (quarry.Int96, error) {
	n, ok := v.(quarry.Int96)
	if !ok {
		return quarry.Int96{}, fmt.Errorf("%w: %T is not an INT96", quarry.ErrInvalid, v)
	}
	return n, nil
}

func toFloat32(v any) (float32, error) {
	switch n := v.(type) {
	case float32:
		return n, nil
	case float64:
		return float32(n), nil
	default:
		return 0, fmt.Errorf("%w: %T is not a FLOAT", quarry.ErrInvalid, v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %T is not a DOUBLE", quarry.ErrInvalid, v)
	}
}

func toByteArray(v any) (quarry.ByteArray, error) {
	switch b := v.(type) {
	case quarry.ByteArray:
		return b, nil
	case []byte:
		return quarry.ByteArray(b), nil
	case string:
		return quarry.ByteArray(b), nil
	default:
		return nil, fmt.Errorf("%w: %T is not a BYTE_ARRAY", quarry.ErrInvalid, v)
	}
}

// ColumnData is one fully decoded column chunk: a typed value slice
// plus the levels needed to line values up with row slots.
type ColumnData struct {
	Descriptor *schema.ColumnDescriptor

	// Values is a []T of the column's physical type holding only the
	// defined entries.
	Values any

	DefLevels []int16
	RepLevels []int16
}

// readChunk decodes one column chunk completely.
func readChunk(descr *schema.ColumnDescriptor, pages column.PageReader, numSlots int64) (ColumnData, error) {
	switch descr.PhysicalType() {
	case quarry.Boolean:
		return readTypedChunk[bool](descr, pages, numSlots)
	case quarry.Int32:
		return readTypedChunk[int32](descr, pages, numSlots)
	case quarry.Int64:
		return readTypedChunk[int64](descr, pages, numSlots)
	case quarry.Int96Type:
		return readTypedChunk[quarry.Int96](descr, pages, numSlots)
	case quarry.Float:
		return readTypedChunk[float32](descr, pages, numSlots)
	case quarry.Double:
		return readTypedChunk[float64](descr, pages, numSlots)
	case quarry.ByteArrayType, quarry.FixedLenByteArray:
		return readTypedChunk[quarry.ByteArray](descr, pages, numSlots)
	default:
		return ColumnData{}, fmt.Errorf("%w: physical type %s", quarry.ErrUnsupported, descr.PhysicalType())
	}
}

const readChunkBatch = 1024

func readTypedChunk[T quarry.Value](descr *schema.ColumnDescriptor, pages column.PageReader, numSlots int64) (ColumnData, error) {
	r, err := column.NewReader[T](descr, pages)
	if err != nil {
		return ColumnData{}, err
	}

	data := ColumnData{Descriptor: descr}
	values := make([]T, 0, numSlots)
	valueBuf := make([]T, readChunkBatch)
	var defBuf, repBuf []int16
	if descr.MaxDefinitionLevel() > 0 {
		defBuf = make([]int16, readChunkBatch)
	}
	if descr.MaxRepetitionLevel() > 0 {
		repBuf = make([]int16, readChunkBatch)
	}

	for {
		nv, nl, err := r.ReadBatch(readChunkBatch, defBuf, repBuf, valueBuf)
		if err != nil {
			return ColumnData{}, err
		}
		if nv == 0 && nl == 0 {
			break
		}
		values = append(values, valueBuf[:nv]...)
		if defBuf != nil {
			data.DefLevels = append(data.DefLevels, defBuf[:nl]...)
		}
		if repBuf != nil {
			data.RepLevels = append(data.RepLevels, repBuf[:nl]...)
		}
	}
	data.Values = values
	return data, nil
}
