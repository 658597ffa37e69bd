package file

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/column"
	"github.com/quarrydata/quarry/internal/log"
	"github.com/quarrydata/quarry/internal/metrics"
	"github.com/quarrydata/quarry/schema"
)

// WriterProps controls the layout of a written file.
type WriterProps struct {
	// RowGroupSize caps the number of rows per row group.
	RowGroupSize int64

	// PageSize caps the number of level slots per data page.
	PageSize int

	// Encodings selects a value encoding per column path. Columns not
	// listed use PLAIN.
	Encodings map[string]quarry.Encoding
}

const defaultRowGroupSize = 1 << 16

// Writer streams rows into a quarry file. The output becomes visible
// at its final path only when Close commits the temp file.
type Writer struct {
	pending *renameio.PendingFile
	buf     *bufio.Writer
	offset  int64

	schema *schema.Schema
	props  WriterProps
	logger zerolog.Logger

	cols      []*columnChunk
	groupRows int64
	meta      fileMeta

	started time.Time
	closed  bool
}

// NewWriter creates path for writing rows of the given schema. The
// file is written to a temp file and moved into place on Close.
func NewWriter(path string, s *schema.Schema, props WriterProps) (*Writer, error) {
	if props.RowGroupSize <= 0 {
		props.RowGroupSize = defaultRowGroupSize
	}
	for p, enc := range props.Encodings {
		if s.ColumnByPath(p) == nil {
			return nil, fmt.Errorf("%w: encoding override for unknown column %q", quarry.ErrInvalid, p)
		}
		switch enc {
		case quarry.PlainDictionary, quarry.BitPacked:
			return nil, fmt.Errorf("%w: write encoding %s", quarry.ErrUnsupported, enc)
		}
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return nil, fmt.Errorf("create pending file: %w", err)
	}

	w := &Writer{
		pending: pending,
		buf:     bufio.NewWriter(pending),
		schema:  s,
		props:   props,
		logger:  log.WithComponent("file.writer"),
		meta: fileMeta{
			Version:   formatVersion,
			CreatedBy: "quarry",
			Schema:    flattenSchema(s.Root()),
		},
		started: time.Now(),
	}
	if _, err := w.write([]byte(Magic)); err != nil {
		_ = pending.Cleanup()
		return nil, err
	}
	if err := w.openRowGroup(); err != nil {
		_ = pending.Cleanup()
		return nil, err
	}
	return w, nil
}

func (w *Writer) write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	w.offset += int64(n)
	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}
	return n, nil
}

// openRowGroup creates fresh column chunk writers.
func (w *Writer) openRowGroup() error {
	w.cols = make([]*columnChunk, len(w.schema.Columns()))
	for i, descr := range w.schema.Columns() {
		enc := w.props.Encodings[descr.Path().String()]
		chunk, err := newColumnChunk(descr, column.WriterProps{
			Encoding: enc,
			PageSize: w.props.PageSize,
		})
		if err != nil {
			return err
		}
		w.cols[i] = chunk
	}
	w.groupRows = 0
	return nil
}

// AppendRow appends one row. values holds one entry per leaf column in
// schema order; nil marks a null in an optional column. Only flat
// schemas can be appended row-wise.
func (w *Writer) AppendRow(values ...any) error {
	if w.closed {
		return fmt.Errorf("%w: writer closed", quarry.ErrInvalid)
	}
	if len(values) != len(w.cols) {
		return fmt.Errorf("%w: row has %d values for %d columns",
			quarry.ErrInvalid, len(values), len(w.cols))
	}
	for i, chunk := range w.cols {
		if err := chunk.appendCell(values[i]); err != nil {
			return fmt.Errorf("column %s: %w", chunk.descr.Path(), err)
		}
	}
	w.groupRows++
	w.meta.NumRows++
	if w.groupRows >= w.props.RowGroupSize {
		if err := w.flushRowGroup(); err != nil {
			return err
		}
		return w.openRowGroup()
	}
	return nil
}

// flushRowGroup serializes every buffered column chunk in schema order.
func (w *Writer) flushRowGroup() error {
	if w.groupRows == 0 {
		return nil
	}
	group := rowGroupMeta{NumRows: w.groupRows}
	for _, chunk := range w.cols {
		start := w.offset
		sink := &pageSerializer{w: w}
		numValues, err := chunk.close(sink)
		if err != nil {
			return fmt.Errorf("column %s: %w", chunk.descr.Path(), err)
		}
		group.Columns = append(group.Columns, chunkMeta{
			Path:      chunk.descr.Path().String(),
			Offset:    start,
			Size:      w.offset - start,
			NumValues: numValues,
			NumPages:  sink.pages,
			Encoding:  chunk.encoding().String(),
		})
	}
	w.meta.RowGroups = append(w.meta.RowGroups, group)
	metrics.IncRowGroupFlushed()
	w.logger.Debug().
		Int(log.FieldRowGroup, len(w.meta.RowGroups)-1).
		Int64(log.FieldNumRows, w.groupRows).
		Msg("row group flushed")
	return nil
}

// pageSerializer writes pages of one chunk to the file.
type pageSerializer struct {
	w     *Writer
	pages int
}

func (s *pageSerializer) WritePage(p *column.Page) error {
	h := pageHeader{
		pageType:    p.Type,
		encoding:    p.Encoding,
		defLevelEnc: p.DefLevelEncoding,
		repLevelEnc: p.RepLevelEncoding,
		numValues:   p.NumValues,
		dataLen:     len(p.Data),
	}
	header := h.marshal()
	if _, err := s.w.write(header[:]); err != nil {
		return err
	}
	if _, err := s.w.write(p.Data); err != nil {
		return err
	}
	s.pages++
	return nil
}

// Close flushes the last row group, writes the footer and atomically
// moves the temp file into place.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer func() {
		_ = w.pending.Cleanup()
	}()

	if err := w.flushRowGroup(); err != nil {
		return err
	}

	footer, err := json.Marshal(w.meta)
	if err != nil {
		return fmt.Errorf("encode footer: %w", err)
	}
	if _, err := w.write(footer); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(footer)))
	if _, err := w.write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.write([]byte(Magic)); err != nil {
		return err
	}

	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := w.pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace file: %w", err)
	}
	metrics.ObserveFileWrite(time.Since(w.started))
	w.logger.Info().
		Int64(log.FieldNumRows, w.meta.NumRows).
		Int(log.FieldBytes, int(w.offset)).
		Int("row_groups", len(w.meta.RowGroups)).
		Msg("file written")
	return nil
}

// Abort discards the temp file without touching the destination.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.pending.Cleanup()
}
