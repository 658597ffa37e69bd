// Package file reads and writes quarry container files: column chunks
// laid out in row groups between a magic header and a JSON footer.
package file

import (
	"encoding/binary"
	"fmt"

	"github.com/quarrydata/quarry"
	"github.com/quarrydata/quarry/schema"
)

// Magic opens and closes every quarry file.
const Magic = "QRY1"

const (
	magicLen      = len(Magic)
	pageHeaderLen = 16
	footerTailLen = 4 + magicLen // u32 footer length + trailing magic
	formatVersion = 1
)

// pageHeader is the fixed 16-byte little-endian header ahead of every
// page payload.
type pageHeader struct {
	pageType    quarry.PageType
	encoding    quarry.Encoding
	defLevelEnc quarry.Encoding
	repLevelEnc quarry.Encoding
	numValues   int
	dataLen     int
}

func (h pageHeader) marshal() [pageHeaderLen]byte {
	var b [pageHeaderLen]byte
	b[0] = byte(h.pageType)
	b[1] = byte(h.encoding)
	b[2] = byte(h.defLevelEnc)
	b[3] = byte(h.repLevelEnc)
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.numValues))
	binary.LittleEndian.PutUint32(b[8:12], uint32(h.dataLen))
	// b[12:16] reserved
	return b
}

func unmarshalPageHeader(b []byte) (pageHeader, error) {
	if len(b) < pageHeaderLen {
		return pageHeader{}, fmt.Errorf("%w: page header truncated", quarry.ErrEOF)
	}
	return pageHeader{
		pageType:    quarry.PageType(b[0]),
		encoding:    quarry.Encoding(b[1]),
		defLevelEnc: quarry.Encoding(b[2]),
		repLevelEnc: quarry.Encoding(b[3]),
		numValues:   int(binary.LittleEndian.Uint32(b[4:8])),
		dataLen:     int(binary.LittleEndian.Uint32(b[8:12])),
	}, nil
}

// fileMeta is the JSON footer.
type fileMeta struct {
	Version   int             `json:"version"`
	NumRows   int64           `json:"num_rows"`
	CreatedBy string          `json:"created_by,omitempty"`
	Schema    []schemaElement `json:"schema"`
	RowGroups []rowGroupMeta  `json:"row_groups"`
}

// schemaElement is one node of the depth-first flattened schema tree.
type schemaElement struct {
	Name        string `json:"name"`
	Repetition  string `json:"repetition"`
	Physical    string `json:"physical,omitempty"`
	Logical     string `json:"logical,omitempty"`
	TypeLength  int    `json:"type_length,omitempty"`
	NumChildren int    `json:"num_children,omitempty"`
}

type rowGroupMeta struct {
	NumRows int64       `json:"num_rows"`
	Columns []chunkMeta `json:"columns"`
}

type chunkMeta struct {
	Path      string `json:"path"`
	Offset    int64  `json:"offset"`
	Size      int64  `json:"size"`
	NumValues int64  `json:"num_values"`
	NumPages  int    `json:"num_pages"`
	Encoding  string `json:"encoding"`
}

// flattenSchema serializes the schema tree depth-first, parents before
// children.
func flattenSchema(root *schema.Node) []schemaElement {
	var out []schemaElement
	var walk func(n *schema.Node)
	walk = func(n *schema.Node) {
		el := schemaElement{
			Name:       n.Name(),
			Repetition: n.Repetition().String(),
		}
		if n.IsPrimitive() {
			el.Physical = n.PhysicalType().String()
			if n.LogicalType() != quarry.None {
				el.Logical = n.LogicalType().String()
			}
			if n.PhysicalType() == quarry.FixedLenByteArray {
				el.TypeLength = n.TypeLength()
			}
		} else {
			el.NumChildren = len(n.Children())
		}
		out = append(out, el)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
	return out
}

// unflattenSchema rebuilds the schema tree from the footer's element
// list.
func unflattenSchema(elements []schemaElement) (*schema.Schema, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: footer carries no schema", quarry.ErrInvalid)
	}
	pos := 0
	var build func() (*schema.Node, error)
	build = func() (*schema.Node, error) {
		if pos >= len(elements) {
			return nil, fmt.Errorf("%w: schema element list truncated", quarry.ErrInvalid)
		}
		el := elements[pos]
		pos++

		rep, err := quarry.ParseRepetition(el.Repetition)
		if err != nil {
			return nil, fmt.Errorf("schema element %q: %w", el.Name, err)
		}
		if el.NumChildren == 0 && el.Physical != "" {
			physical, err := quarry.ParsePhysicalType(el.Physical)
			if err != nil {
				return nil, fmt.Errorf("schema element %q: %w", el.Name, err)
			}
			b := schema.NewPrimitive(el.Name, physical).WithRepetition(rep)
			if el.Logical != "" {
				logical, err := quarry.ParseLogicalType(el.Logical)
				if err != nil {
					return nil, fmt.Errorf("schema element %q: %w", el.Name, err)
				}
				b = b.WithLogicalType(logical)
			}
			if el.TypeLength > 0 {
				b = b.WithTypeLength(el.TypeLength)
			}
			return b.Build()
		}

		children := make([]*schema.Node, 0, el.NumChildren)
		for i := 0; i < el.NumChildren; i++ {
			c, err := build()
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return schema.NewGroup(el.Name, rep, children...), nil
	}

	root, err := build()
	if err != nil {
		return nil, err
	}
	if pos != len(elements) {
		return nil, fmt.Errorf("%w: %d trailing schema elements", quarry.ErrInvalid, len(elements)-pos)
	}
	return schema.NewSchema(root)
}
