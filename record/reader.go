package record

import (
	"context"
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/file"
	"github.com/quarrydata/quarry/schema"
)

// Reader iterates the rows of a file with a flat schema: every column
// is a required or optional leaf directly under the root.
type Reader struct {
	src    *file.Reader
	descrs []*schema.ColumnDescriptor

	group     int
	cols      []columnCursor
	slot      int64
	groupRows int64
}

// columnCursor walks one decoded column chunk slot by slot.
type columnCursor struct {
	data     file.ColumnData
	valueIdx int
}

// NewReader returns a row reader over src. Repeated or nested columns
// are not supported.
func NewReader(src *file.Reader) (*Reader, error) {
	descrs := src.Schema().Columns()
	for _, d := range descrs {
		if d.MaxRepetitionLevel() > 0 {
			return nil, fmt.Errorf("%w: repeated column %s in row reader",
				quarry.ErrUnsupported, d.Path())
		}
		if len(d.Path()) != 1 {
			return nil, fmt.Errorf("%w: nested column %s in row reader",
				quarry.ErrUnsupported, d.Path())
		}
	}
	return &Reader{src: src, descrs: descrs}, nil
}

// Next returns the next row. Once the file is exhausted it returns
// ErrEOF.
func (r *Reader) Next(ctx context.Context) (Row, error) {
	for r.cols == nil || r.slot >= r.groupRows {
		if err := r.loadNextGroup(ctx); err != nil {
			return Row{}, err
		}
	}

	fields := make([]NamedField, len(r.cols))
	for i := range r.cols {
		f, err := r.cols[i].take(r.descrs[i], r.slot)
		if err != nil {
			return Row{}, fmt.Errorf("column %s: %w", r.descrs[i].Path(), err)
		}
		fields[i] = NamedField{Name: r.descrs[i].Path().String(), Field: f}
	}
	r.slot++
	return NewRow(fields...), nil
}

func (r *Reader) loadNextGroup(ctx context.Context) error {
	if r.group >= r.src.NumRowGroups() {
		return fmt.Errorf("%w: no more rows", quarry.ErrEOF)
	}
	g, err := r.src.RowGroup(r.group)
	if err != nil {
		return err
	}
	cols, err := g.ReadColumns(ctx)
	if err != nil {
		return err
	}
	r.cols = make([]columnCursor, len(cols))
	for i, c := range cols {
		r.cols[i] = columnCursor{data: c}
	}
	r.group++
	r.slot = 0
	r.groupRows = g.NumRows()
	return nil
}

// take produces the field for the given row slot, consuming one value
// when the slot is defined.
func (c *columnCursor) take(descr *schema.ColumnDescriptor, slot int64) (Field, error) {
	if descr.MaxDefinitionLevel() > 0 {
		// The footer's row count can disagree with what the chunk
		// actually holds; never index past the decoded data.
		if slot >= int64(len(c.data.DefLevels)) {
			return Field{}, fmt.Errorf("%w: row %d beyond %d definition levels",
				quarry.ErrInvalid, slot, len(c.data.DefLevels))
		}
		if c.data.DefLevels[slot] < descr.MaxDefinitionLevel() {
			return Null(), nil
		}
	}
	i := c.valueIdx
	c.valueIdx++

	logical := descr.LogicalType()
	switch values := c.data.Values.(type) {
	case []bool:
		v, err := at(values, i)
		if err != nil {
			return Field{}, err
		}
		return FromBool(logical, v)
	case []int32:
		v, err := at(values, i)
		if err != nil {
			return Field{}, err
		}
		return FromInt32(logical, v)
	case []int64:
		v, err := at(values, i)
		if err != nil {
			return Field{}, err
		}
		return FromInt64(logical, v)
	case []quarry.Int96:
		v, err := at(values, i)
		if err != nil {
			return Field{}, err
		}
		return FromInt96(logical, v)
	case []float32:
		v, err := at(values, i)
		if err != nil {
			return Field{}, err
		}
		return FromFloat32(logical, v)
	case []float64:
		v, err := at(values, i)
		if err != nil {
			return Field{}, err
		}
		return FromFloat64(logical, v)
	case []quarry.ByteArray:
		v, err := at(values, i)
		if err != nil {
			return Field{}, err
		}
		return FromByteArray(descr.PhysicalType(), logical, v)
	default:
		return Field{}, fmt.Errorf("%w: column buffer %T", quarry.ErrUnsupported, c.data.Values)
	}
}

func at[V any](values []V, i int) (V, error) {
	if i >= len(values) {
		var zero V
		return zero, fmt.Errorf("%w: value %d beyond chunk of %d",
			quarry.ErrInvalid, i, len(values))
	}
	return values[i], nil
}
