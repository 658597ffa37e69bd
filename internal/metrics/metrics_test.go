package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPageCounters(t *testing.T) {
	before := testutil.ToFloat64(PagesReadTotal.WithLabelValues("DATA_PAGE"))
	IncPageRead("DATA_PAGE")
	IncPageRead("DATA_PAGE")
	after := testutil.ToFloat64(PagesReadTotal.WithLabelValues("DATA_PAGE"))
	assert.Equal(t, before+2, after)

	before = testutil.ToFloat64(PagesWrittenTotal.WithLabelValues("DICTIONARY_PAGE"))
	IncPageWritten("DICTIONARY_PAGE")
	after = testutil.ToFloat64(PagesWrittenTotal.WithLabelValues("DICTIONARY_PAGE"))
	assert.Equal(t, before+1, after)
}

func TestValueCounters(t *testing.T) {
	before := testutil.ToFloat64(ValuesDecodedTotal.WithLabelValues("PLAIN"))
	AddValuesDecoded("PLAIN", 128)
	after := testutil.ToFloat64(ValuesDecodedTotal.WithLabelValues("PLAIN"))
	assert.Equal(t, before+128, after)

	before = testutil.ToFloat64(DecodeErrorsTotal.WithLabelValues("RLE"))
	IncDecodeError("RLE")
	after = testutil.ToFloat64(DecodeErrorsTotal.WithLabelValues("RLE"))
	assert.Equal(t, before+1, after)
}

func TestFileObservations(t *testing.T) {
	ObserveFileWrite(5 * time.Millisecond)
	IncRowGroupFlushed()
	assert.GreaterOrEqual(t, testutil.ToFloat64(RowGroupsFlushedTotal), 1.0)
}
