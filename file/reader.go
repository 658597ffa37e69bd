package file

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/column"
	"github.com/quarrydata/quarry/schema"
)

// Reader opens a quarry file for reading. It is safe for concurrent
// use: all IO goes through ReadAt.
type Reader struct {
	f      *os.File
	size   int64
	meta   fileMeta
	schema *schema.Schema
}

// Open validates the file's magics, reads the footer and rebuilds the
// schema.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	r, err := newReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func newReader(f *os.File) (*Reader, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	size := st.Size()
	if size < int64(2*magicLen+footerTailLen) {
		return nil, fmt.Errorf("%w: file too small (%d bytes)", quarry.ErrInvalid, size)
	}

	head := make([]byte, magicLen)
	if _, err := f.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("read header magic: %w", err)
	}
	if string(head) != Magic {
		return nil, fmt.Errorf("%w: bad header magic %q", quarry.ErrInvalid, head)
	}

	tail := make([]byte, footerTailLen)
	if _, err := f.ReadAt(tail, size-int64(footerTailLen)); err != nil {
		return nil, fmt.Errorf("read footer tail: %w", err)
	}
	if string(tail[4:]) != Magic {
		return nil, fmt.Errorf("%w: bad trailing magic %q", quarry.ErrInvalid, tail[4:])
	}
	footerLen := int64(binary.LittleEndian.Uint32(tail[:4]))
	footerStart := size - int64(footerTailLen) - footerLen
	if footerStart < int64(magicLen) {
		return nil, fmt.Errorf("%w: footer length %d exceeds file", quarry.ErrInvalid, footerLen)
	}

	footer := make([]byte, footerLen)
	if _, err := f.ReadAt(footer, footerStart); err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	var meta fileMeta
	if err := json.Unmarshal(footer, &meta); err != nil {
		return nil, fmt.Errorf("%w: decode footer: %v", quarry.ErrInvalid, err)
	}
	if meta.Version != formatVersion {
		return nil, fmt.Errorf("%w: format version %d", quarry.ErrUnsupported, meta.Version)
	}
	s, err := unflattenSchema(meta.Schema)
	if err != nil {
		return nil, err
	}
	for _, g := range meta.RowGroups {
		if len(g.Columns) != len(s.Columns()) {
			return nil, fmt.Errorf("%w: row group has %d chunks for %d columns",
				quarry.ErrInvalid, len(g.Columns), len(s.Columns()))
		}
	}

	return &Reader{f: f, size: size, meta: meta, schema: s}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// Schema returns the file's schema.
func (r *Reader) Schema() *schema.Schema { return r.schema }

// NumRows returns the total row count.
func (r *Reader) NumRows() int64 { return r.meta.NumRows }

// NumRowGroups returns the number of row groups.
func (r *Reader) NumRowGroups() int { return len(r.meta.RowGroups) }

// CreatedBy returns the writer identification from the footer.
func (r *Reader) CreatedBy() string { return r.meta.CreatedBy }

// RowGroup returns a reader over row group i.
func (r *Reader) RowGroup(i int) (*RowGroupReader, error) {
	if i < 0 || i >= len(r.meta.RowGroups) {
		return nil, fmt.Errorf("%w: row group %d of %d", quarry.ErrInvalid, i, len(r.meta.RowGroups))
	}
	return &RowGroupReader{file: r, meta: r.meta.RowGroups[i]}, nil
}

// RowGroupReader exposes the column chunks of one row group.
type RowGroupReader struct {
	file *Reader
	meta rowGroupMeta
}

// NumRows returns the row count of this group.
func (g *RowGroupReader) NumRows() int64 { return g.meta.NumRows }

// NumColumns returns the number of column chunks.
func (g *RowGroupReader) NumColumns() int { return len(g.meta.Columns) }

// ChunkInfo describes the footer metadata of one column chunk.
type ChunkInfo struct {
	Path      string
	Offset    int64
	Size      int64
	NumValues int64
	NumPages  int
	Encoding  string
}

// Chunks returns the footer metadata of every chunk in this group.
func (g *RowGroupReader) Chunks() []ChunkInfo {
	out := make([]ChunkInfo, len(g.meta.Columns))
	for j, c := range g.meta.Columns {
		out[j] = ChunkInfo{
			Path:      c.Path,
			Offset:    c.Offset,
			Size:      c.Size,
			NumValues: c.NumValues,
			NumPages:  c.NumPages,
			Encoding:  c.Encoding,
		}
	}
	return out
}

// Column returns a page reader over column chunk j.
func (g *RowGroupReader) Column(j int) (column.PageReader, error) {
	if j < 0 || j >= len(g.meta.Columns) {
		return nil, fmt.Errorf("%w: column %d of %d", quarry.ErrInvalid, j, len(g.meta.Columns))
	}
	c := g.meta.Columns[j]
	return &chunkPageReader{
		r:    io.NewSectionReader(g.file.f, c.Offset, c.Size),
		size: c.Size,
	}, nil
}

// ReadColumns decodes every column chunk of the group, one goroutine
// per chunk.
func (g *RowGroupReader) ReadColumns(ctx context.Context) ([]ColumnData, error) {
	out := make([]ColumnData, g.NumColumns())
	eg, ctx := errgroup.WithContext(ctx)
	for j := 0; j < g.NumColumns(); j++ {
		j := j
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pages, err := g.Column(j)
			if err != nil {
				return err
			}
			descr := g.file.schema.Column(j)
			data, err := readChunk(descr, pages, g.meta.NumRows)
			if err != nil {
				return fmt.Errorf("column %s: %w", descr.Path(), err)
			}
			out[j] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// chunkPageReader parses the page stream of one column chunk section.
type chunkPageReader struct {
	r      *io.SectionReader
	size   int64
	offset int64
}

// NextPage implements column.PageReader.
func (c *chunkPageReader) NextPage() (*column.Page, error) {
	if c.offset >= c.size {
		return nil, nil
	}
	var header [pageHeaderLen]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: page header: %v", quarry.ErrEOF, err)
	}
	h, err := unmarshalPageHeader(header[:])
	if err != nil {
		return nil, err
	}
	if c.offset+pageHeaderLen+int64(h.dataLen) > c.size {
		return nil, fmt.Errorf("%w: page of %d bytes exceeds chunk", quarry.ErrInvalid, h.dataLen)
	}
	data := make([]byte, h.dataLen)
	if _, err := io.ReadFull(c.r, data); err != nil {
		return nil, fmt.Errorf("%w: page payload: %v", quarry.ErrEOF, err)
	}
	c.offset += pageHeaderLen + int64(h.dataLen)

	return &column.Page{
		Type:             h.pageType,
		Encoding:         h.encoding,
		NumValues:        h.numValues,
		Data:             data,
		DefLevelEncoding: h.defLevelEnc,
		RepLevelEncoding: h.repLevelEnc,
	}, nil
}
