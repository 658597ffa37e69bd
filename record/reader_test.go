package record

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/file"
	"github.com/quarrydata/quarry/schema"
)

func flatSchema(t *testing.T) *schema.Schema {
	t.Helper()
	id, err := schema.NewPrimitive("id", quarry.Int64).
		WithRepetition(quarry.Required).Build()
	require.NoError(t, err)
	name, err := schema.NewPrimitive("name", quarry.ByteArrayType).
		WithRepetition(quarry.Required).WithLogicalType(quarry.UTF8).Build()
	require.NoError(t, err)
	score, err := schema.NewPrimitive("score", quarry.Double).
		WithRepetition(quarry.Optional).Build()
	require.NoError(t, err)
	seen, err := schema.NewPrimitive("seen", quarry.Int64).
		WithRepetition(quarry.Optional).WithLogicalType(quarry.TimestampMillis).Build()
	require.NoError(t, err)

	s, err := schema.NewSchema(schema.NewGroup("event", quarry.Required, id, name, score, seen))
	require.NoError(t, err)
	return s
}

func TestRowIteration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.qry")
	w, err := file.NewWriter(path, flatSchema(t), file.WriterProps{RowGroupSize: 2})
	require.NoError(t, err)
	require.NoError(t, w.AppendRow(int64(1), "ada", 0.5, int64(1238544000000)))
	require.NoError(t, w.AppendRow(int64(2), "grace", nil, nil))
	require.NoError(t, w.AppendRow(int64(3), "edsger", 2.0, int64(12345678)))
	require.NoError(t, w.Close())

	src, err := file.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, src.Close()) }()

	r, err := NewReader(src)
	require.NoError(t, err)

	ctx := context.Background()
	row, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{id: 1, name: "ada", score: 0.5, seen: 1238544000000}`, row.String())

	row, err = r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{id: 2, name: "grace", score: null, seen: null}`, row.String())
	assert.True(t, row.Field("score").IsNull())

	// Third row sits in the second row group.
	row, err = r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, Long(3), row.Field("id"))
	assert.Equal(t, Str("edsger"), row.Field("name"))
	assert.Equal(t, Double(2.0), row.Field("score"))
	assert.Equal(t, TimestampKind, row.Field("seen").Kind())

	_, err = r.Next(ctx)
	require.ErrorIs(t, err, quarry.ErrEOF)
}

func TestReaderRejectsRepeatedColumns(t *testing.T) {
	tags, err := schema.NewPrimitive("tags", quarry.ByteArrayType).
		WithRepetition(quarry.Repeated).Build()
	require.NoError(t, err)
	s, err := schema.NewSchema(schema.NewGroup("doc", quarry.Required, tags))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tags.qry")
	w, err := file.NewWriter(path, s, file.WriterProps{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	src, err := file.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, src.Close()) }()

	_, err = NewReader(src)
	require.ErrorIs(t, err, quarry.ErrUnsupported)
}

func TestReaderRejectsNestedColumns(t *testing.T) {
	inner, err := schema.NewPrimitive("value", quarry.Int32).
		WithRepetition(quarry.Required).Build()
	require.NoError(t, err)
	s, err := schema.NewSchema(schema.NewGroup("doc", quarry.Required,
		schema.NewGroup("info", quarry.Required, inner)))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested.qry")
	w, err := file.NewWriter(path, s, file.WriterProps{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	src, err := file.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, src.Close()) }()

	_, err = NewReader(src)
	require.ErrorIs(t, err, quarry.ErrUnsupported)
}

func TestCursorRejectsShortChunk(t *testing.T) {
	s := flatSchema(t)

	// A chunk holding fewer slots than the row count claims must error
	// instead of indexing past the decoded data.
	required := columnCursor{data: file.ColumnData{
		Descriptor: s.Column(0),
		Values:     []int64{1, 2},
	}}
	for slot := int64(0); slot < 2; slot++ {
		_, err := required.take(s.Column(0), slot)
		require.NoError(t, err)
	}
	_, err := required.take(s.Column(0), 2)
	require.ErrorIs(t, err, quarry.ErrInvalid)

	optional := columnCursor{data: file.ColumnData{
		Descriptor: s.Column(2),
		Values:     []float64{0.5},
		DefLevels:  []int16{1},
	}}
	_, err = optional.take(s.Column(2), 0)
	require.NoError(t, err)
	_, err = optional.take(s.Column(2), 1)
	require.ErrorIs(t, err, quarry.ErrInvalid)
}
