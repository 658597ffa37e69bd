package column

import (
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/encoding"
	"github.com/quarrydata/quarry/internal/metrics"
	"github.com/quarrydata/quarry/schema"
)

// WriterProps controls how a column chunk is encoded.
type WriterProps struct {
	// Encoding selects the value codec for data pages. Defaults to
	// PLAIN. Selecting RLE_DICTIONARY buffers values and emits a
	// dictionary page ahead of the data pages on Close.
	Encoding quarry.Encoding

	// PageSize caps the number of level slots per data page.
	PageSize int
}

const defaultPageSize = 1024

// Writer encodes typed values and levels into the pages of one column
// chunk. Pages are held back until Close so a dictionary page can be
// placed ahead of the data it indexes.
type Writer[T quarry.Value] struct {
	descr *schema.ColumnDescriptor
	sink  PageWriter
	props WriterProps

	valueEncoder encoding.Encoder[T]
	dictEncoder  *encoding.DictEncoder[T]

	values    []T
	defLevels []int16
	repLevels []int16

	pages []*Page

	totalValues int64
	closed      bool
}

// NewWriter returns a writer for the column described by descr, sending
// finished pages to sink.
func NewWriter[T quarry.Value](descr *schema.ColumnDescriptor, sink PageWriter, props WriterProps) (*Writer[T], error) {
	if err := checkPhysicalType[T](descr); err != nil {
		return nil, err
	}
	if props.PageSize <= 0 {
		props.PageSize = defaultPageSize
	}

	w := &Writer[T]{descr: descr, sink: sink, props: props}
	switch props.Encoding {
	case quarry.RLEDictionary:
		w.dictEncoder = encoding.NewDictEncoder[T](descr.TypeLength())
	case quarry.PlainDictionary, quarry.BitPacked:
		return nil, fmt.Errorf("%w: write encoding %s", quarry.ErrUnsupported, props.Encoding)
	default:
		enc, err := encoding.NewEncoder[T](descr, props.Encoding)
		if err != nil {
			return nil, err
		}
		w.valueEncoder = enc
	}
	return w, nil
}

// WriteBatch appends values and their levels. values holds only the
// entries whose definition level equals the maximum; defLevels and
// repLevels are required exactly when the column's corresponding
// maximum level is non-zero.
func (w *Writer[T]) WriteBatch(values []T, defLevels, repLevels []int16) error {
	if w.closed {
		return fmt.Errorf("%w: writer closed", quarry.ErrInvalid)
	}

	slots := len(values)
	if w.descr.MaxDefinitionLevel() > 0 {
		if defLevels == nil {
			return fmt.Errorf("%w: column %s requires definition levels",
				quarry.ErrInvalid, w.descr.Path())
		}
		slots = len(defLevels)
		defined := 0
		for _, l := range defLevels {
			if l > w.descr.MaxDefinitionLevel() {
				return fmt.Errorf("%w: definition level %d exceeds maximum %d",
					quarry.ErrInvalid, l, w.descr.MaxDefinitionLevel())
			}
			if l == w.descr.MaxDefinitionLevel() {
				defined++
			}
		}
		if defined != len(values) {
			return fmt.Errorf("%w: %d values for %d defined slots",
				quarry.ErrInvalid, len(values), defined)
		}
		w.defLevels = append(w.defLevels, defLevels...)
	}
	if w.descr.MaxRepetitionLevel() > 0 {
		if repLevels == nil {
			return fmt.Errorf("%w: column %s requires repetition levels",
				quarry.ErrInvalid, w.descr.Path())
		}
		if len(repLevels) != slots {
			return fmt.Errorf("%w: %d repetition levels for %d slots",
				quarry.ErrInvalid, len(repLevels), slots)
		}
		w.repLevels = append(w.repLevels, repLevels...)
	}

	w.values = append(w.values, values...)
	w.totalValues += int64(len(values))

	for w.bufferedSlots() >= w.props.PageSize {
		if err := w.flushDataPage(w.props.PageSize); err != nil {
			return err
		}
	}
	return nil
}

// bufferedSlots returns the number of level slots waiting for a page.
func (w *Writer[T]) bufferedSlots() int {
	if w.descr.MaxDefinitionLevel() > 0 {
		return len(w.defLevels)
	}
	return len(w.values)
}

// flushDataPage encodes the first slots buffered level slots and their
// values into one data page.
func (w *Writer[T]) flushDataPage(slots int) error {
	if buffered := w.bufferedSlots(); slots > buffered {
		slots = buffered
	}
	if slots == 0 {
		return nil
	}

	var buf []byte
	numValues := slots
	if w.descr.MaxRepetitionLevel() > 0 {
		enc, err := encoding.NewLevelEncoder(quarry.RLE, w.descr.MaxRepetitionLevel())
		if err != nil {
			return err
		}
		enc.Put(w.repLevels[:slots])
		buf = append(buf, enc.Bytes()...)
		w.repLevels = w.repLevels[slots:]
	}
	if w.descr.MaxDefinitionLevel() > 0 {
		enc, err := encoding.NewLevelEncoder(quarry.RLE, w.descr.MaxDefinitionLevel())
		if err != nil {
			return err
		}
		enc.Put(w.defLevels[:slots])
		buf = append(buf, enc.Bytes()...)

		numValues = 0
		for _, l := range w.defLevels[:slots] {
			if l == w.descr.MaxDefinitionLevel() {
				numValues++
			}
		}
		w.defLevels = w.defLevels[slots:]
	}

	var values []byte
	var err error
	if w.dictEncoder != nil {
		if err := w.dictEncoder.Put(w.values[:numValues]); err != nil {
			return err
		}
		values, err = w.dictEncoder.WriteIndices()
	} else {
		if err := w.valueEncoder.Put(w.values[:numValues]); err != nil {
			return err
		}
		values, err = w.valueEncoder.FlushBuffer()
	}
	if err != nil {
		return err
	}
	w.values = w.values[numValues:]
	buf = append(buf, values...)

	w.pages = append(w.pages, &Page{
		Type:             quarry.DataPage,
		Encoding:         w.props.Encoding,
		NumValues:        slots,
		Data:             buf,
		DefLevelEncoding: quarry.RLE,
		RepLevelEncoding: quarry.RLE,
	})
	return nil
}

// Close flushes the pending page and hands every page to the sink,
// dictionary first. Returns the total number of values written.
func (w *Writer[T]) Close() (int64, error) {
	if w.closed {
		return w.totalValues, nil
	}
	w.closed = true

	if err := w.flushDataPage(w.props.PageSize); err != nil {
		return 0, err
	}

	if w.dictEncoder != nil {
		dictPage, err := w.dictEncoder.WriteDict()
		if err != nil {
			return 0, err
		}
		page := &Page{
			Type:      quarry.DictionaryPage,
			Encoding:  quarry.Plain,
			NumValues: w.dictEncoder.NumEntries(),
			Data:      dictPage,
		}
		if err := w.sink.WritePage(page); err != nil {
			return 0, err
		}
		metrics.IncPageWritten(page.Type.String())
	}
	for _, page := range w.pages {
		if err := w.sink.WritePage(page); err != nil {
			return 0, err
		}
		metrics.IncPageWritten(page.Type.String())
	}
	w.pages = nil
	return w.totalValues, nil
}

// Pages returns how many data pages have been cut so far.
func (w *Writer[T]) Pages() int { return len(w.pages) }

// TotalValues returns the number of values written so far.
func (w *Writer[T]) TotalValues() int64 { return w.totalValues }
