// Package column reads and writes typed column chunks page by page.
package column

import (
	"github.com/quarrydata/quarry"
)

// Page is one unit of a column chunk: a dictionary page or a v1 data
// page. Data holds the raw payload; for data pages that is the
// repetition level section, the definition level section and the value
// section, in that order.
type Page struct {
	Type      quarry.PageType
	Encoding  quarry.Encoding
	NumValues int
	Data      []byte

	// Level encodings, only meaningful for data pages.
	DefLevelEncoding quarry.Encoding
	RepLevelEncoding quarry.Encoding
}

// PageReader yields the pages of one column chunk in order. NextPage
// returns (nil, nil) when the chunk is exhausted.
type PageReader interface {
	NextPage() (*Page, error)
}

// PageWriter consumes the pages of one column chunk in order.
type PageWriter interface {
	WritePage(*Page) error
}
