package column

import (
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/encoding"
	"github.com/quarrydata/quarry/internal/metrics"
	"github.com/quarrydata/quarry/schema"
)

// Reader decodes one column chunk into typed values plus definition and
// repetition levels.
type Reader[T quarry.Value] struct {
	descr *schema.ColumnDescriptor
	pages PageReader

	// Values the current data page claims vs. values surfaced so far.
	numBufferedValues int
	numDecodedValues  int

	defDecoder *encoding.LevelDecoder
	repDecoder *encoding.LevelDecoder

	curDecoder  encoding.Decoder[T]
	curEncoding quarry.Encoding

	dictDecoder *encoding.DictDecoder[T]
	decoders    map[quarry.Encoding]encoding.Decoder[T]
}

// NewReader returns a reader for the column described by descr, pulling
// pages from pages. The physical type must match T.
func NewReader[T quarry.Value](descr *schema.ColumnDescriptor, pages PageReader) (*Reader[T], error) {
	if err := checkPhysicalType[T](descr); err != nil {
		return nil, err
	}
	return &Reader[T]{
		descr:    descr,
		pages:    pages,
		decoders: make(map[quarry.Encoding]encoding.Decoder[T]),
	}, nil
}

// checkPhysicalType verifies that T can hold the descriptor's physical
// type.
func checkPhysicalType[T quarry.Value](descr *schema.ColumnDescriptor) error {
	var zero T
	ok := false
	switch any(zero).(type) {
	case bool:
		ok = descr.PhysicalType() == quarry.Boolean
	case int32:
		ok = descr.PhysicalType() == quarry.Int32
	case int64:
		ok = descr.PhysicalType() == quarry.Int64
	case quarry.Int96:
		ok = descr.PhysicalType() == quarry.Int96Type
	case float32:
		ok = descr.PhysicalType() == quarry.Float
	case float64:
		ok = descr.PhysicalType() == quarry.Double
	case quarry.ByteArray:
		ok = descr.PhysicalType() == quarry.ByteArrayType ||
			descr.PhysicalType() == quarry.FixedLenByteArray
	}
	if !ok {
		return fmt.Errorf("%w: column %s has physical type %s, incompatible with %T",
			quarry.ErrInvalid, descr.Path(), descr.PhysicalType(), zero)
	}
	return nil
}

// ReadBatch reads up to batchSize level slots from the column. Values
// are written densely into values: a slot contributes a value only when
// its definition level equals the maximum, so valuesRead <= levelsRead
// for nullable columns. defLevels and repLevels may be nil when the
// caller does not need them; they are also left untouched for columns
// whose maximum level is zero. Returns the number of values and the
// number of levels read; both are zero once the chunk is exhausted.
func (r *Reader[T]) ReadBatch(batchSize int, defLevels, repLevels []int16, values []T) (int, int, error) {
	valuesRead := 0
	levelsRead := 0

	for maxInt(valuesRead, levelsRead) < batchSize {
		if r.numBufferedValues == r.numDecodedValues {
			ok, err := r.readNewPage()
			if err != nil {
				return valuesRead, levelsRead, err
			}
			if !ok {
				break
			}
		}

		batch := batchSize - maxInt(valuesRead, levelsRead)
		if remaining := r.numBufferedValues - r.numDecodedValues; batch > remaining {
			batch = remaining
		}

		readLevels := 0
		valuesToRead := batch
		if r.descr.MaxDefinitionLevel() > 0 && defLevels != nil {
			out := defLevels[levelsRead : levelsRead+batch]
			n, err := r.defDecoder.Decode(out)
			if err != nil {
				return valuesRead, levelsRead, fmt.Errorf("definition levels: %w", err)
			}
			readLevels = n
			valuesToRead = 0
			for _, l := range out[:n] {
				if l == r.descr.MaxDefinitionLevel() {
					valuesToRead++
				}
			}
		}
		if r.descr.MaxRepetitionLevel() > 0 && repLevels != nil {
			n, err := r.repDecoder.Decode(repLevels[levelsRead : levelsRead+batch])
			if err != nil {
				return valuesRead, levelsRead, fmt.Errorf("repetition levels: %w", err)
			}
			if readLevels > 0 && n != readLevels {
				return valuesRead, levelsRead, fmt.Errorf(
					"%w: %d definition levels but %d repetition levels",
					quarry.ErrInvalid, readLevels, n)
			}
			readLevels = n
		}

		n, err := r.curDecoder.Decode(values[valuesRead : valuesRead+valuesToRead])
		if err != nil {
			metrics.IncDecodeError(r.curEncoding.String())
			return valuesRead, levelsRead, fmt.Errorf("values: %w", err)
		}
		if n != valuesToRead {
			return valuesRead, levelsRead, fmt.Errorf(
				"%w: expected %d values in page, decoded %d", quarry.ErrInvalid, valuesToRead, n)
		}
		metrics.AddValuesDecoded(r.curEncoding.String(), n)

		// A page claiming values that neither the level section nor the
		// value section can deliver would loop here forever.
		if readLevels == 0 && n == 0 {
			return valuesRead, levelsRead, fmt.Errorf(
				"%w: page claims %d values but only %d are encoded",
				quarry.ErrInvalid, r.numBufferedValues, r.numDecodedValues)
		}

		valuesRead += n
		if readLevels > 0 {
			levelsRead += readLevels
			r.numDecodedValues += readLevels
		} else {
			r.numDecodedValues += n
		}
	}

	return valuesRead, levelsRead, nil
}

// readNewPage advances to the next data page, configuring the
// dictionary on the way. Reports false when the chunk is exhausted.
func (r *Reader[T]) readNewPage() (bool, error) {
	for {
		page, err := r.pages.NextPage()
		if err != nil {
			return false, err
		}
		if page == nil {
			return false, nil
		}
		metrics.IncPageRead(page.Type.String())

		switch page.Type {
		case quarry.DictionaryPage:
			if err := r.configureDict(page); err != nil {
				return false, err
			}
		case quarry.DataPage:
			if err := r.startDataPage(page); err != nil {
				return false, err
			}
			return true, nil
		default:
			// Index pages and future kinds are skipped.
		}
	}
}

// configureDict decodes the dictionary page into the dictionary
// decoder. At most one dictionary page per chunk.
func (r *Reader[T]) configureDict(page *Page) error {
	if r.dictDecoder != nil {
		return fmt.Errorf("%w: second dictionary page in column chunk", quarry.ErrInvalid)
	}
	switch page.Encoding {
	case quarry.Plain, quarry.PlainDictionary:
	default:
		return fmt.Errorf("%w: dictionary page encoding %s", quarry.ErrInvalid, page.Encoding)
	}
	plain := encoding.NewPlainDecoder[T](r.descr.TypeLength())
	if err := plain.SetData(page.Data, page.NumValues); err != nil {
		return fmt.Errorf("dictionary page: %w", err)
	}
	dict := encoding.NewDictDecoder[T]()
	if err := dict.SetDict(plain); err != nil {
		return fmt.Errorf("dictionary page: %w", err)
	}
	r.dictDecoder = dict
	return nil
}

// startDataPage strips the level sections off the page buffer and
// points the value decoder at the rest.
func (r *Reader[T]) startDataPage(page *Page) error {
	r.numBufferedValues = page.NumValues
	r.numDecodedValues = 0

	buf := page.Data
	if r.descr.MaxRepetitionLevel() > 0 {
		dec, err := encoding.NewLevelDecoder(page.RepLevelEncoding, r.descr.MaxRepetitionLevel())
		if err != nil {
			return err
		}
		n, err := dec.SetData(buf)
		if err != nil {
			return fmt.Errorf("repetition level section: %w", err)
		}
		r.repDecoder = dec
		buf = buf[n:]
	}
	if r.descr.MaxDefinitionLevel() > 0 {
		dec, err := encoding.NewLevelDecoder(page.DefLevelEncoding, r.descr.MaxDefinitionLevel())
		if err != nil {
			return err
		}
		n, err := dec.SetData(buf)
		if err != nil {
			return fmt.Errorf("definition level section: %w", err)
		}
		r.defDecoder = dec
		buf = buf[n:]
	}

	enc := page.Encoding
	if enc == quarry.PlainDictionary {
		enc = quarry.RLEDictionary
	}

	var dec encoding.Decoder[T]
	if enc == quarry.RLEDictionary {
		if r.dictDecoder == nil {
			return fmt.Errorf("%w: dictionary-encoded page without dictionary page", quarry.ErrInvalid)
		}
		dec = r.dictDecoder
	} else {
		cached, ok := r.decoders[enc]
		if !ok {
			var err error
			cached, err = encoding.NewDecoder[T](r.descr, enc)
			if err != nil {
				return err
			}
			r.decoders[enc] = cached
		}
		dec = cached
	}
	if err := dec.SetData(buf, r.numBufferedValues); err != nil {
		return fmt.Errorf("value section: %w", err)
	}
	r.curDecoder = dec
	r.curEncoding = enc
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
