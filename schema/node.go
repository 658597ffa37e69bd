// Package schema models the shape of a quarry file: a tree of typed
// nodes with repetition modes, flattened into column descriptors that
// the column and file layers operate on.
package schema

import (
	"fmt"
	"strings"

	"github.com/quarrydata/quarry"
)

// Node is a schema element: either a primitive leaf or a group with
// children. The zero value is not usable; construct nodes through
// NewPrimitive / NewGroup or the builders.
type Node struct {
	name       string
	repetition quarry.Repetition
	logical    quarry.LogicalType

	// primitive only
	physical   quarry.PhysicalType
	typeLength int
	primitive  bool

	children []*Node
}

// PrimitiveBuilder assembles a primitive node. Mirrors the column
// properties a leaf carries: repetition, logical annotation and the
// fixed length for FIXED_LEN_BYTE_ARRAY.
type PrimitiveBuilder struct {
	name       string
	physical   quarry.PhysicalType
	repetition quarry.Repetition
	logical    quarry.LogicalType
	typeLength int
}

// NewPrimitive starts a builder for a primitive node named name.
func NewPrimitive(name string, physical quarry.PhysicalType) *PrimitiveBuilder {
	return &PrimitiveBuilder{
		name:       name,
		physical:   physical,
		repetition: quarry.Optional,
		typeLength: -1,
	}
}

// WithRepetition sets the node's repetition mode.
func (b *PrimitiveBuilder) WithRepetition(r quarry.Repetition) *PrimitiveBuilder {
	b.repetition = r
	return b
}

// WithLogicalType sets the node's logical annotation.
func (b *PrimitiveBuilder) WithLogicalType(t quarry.LogicalType) *PrimitiveBuilder {
	b.logical = t
	return b
}

// WithTypeLength sets the byte length for FIXED_LEN_BYTE_ARRAY nodes.
func (b *PrimitiveBuilder) WithTypeLength(n int) *PrimitiveBuilder {
	b.typeLength = n
	return b
}

// Build validates and returns the node.
func (b *PrimitiveBuilder) Build() (*Node, error) {
	if b.name == "" {
		return nil, fmt.Errorf("%w: primitive node needs a name", quarry.ErrInvalid)
	}
	if b.physical == quarry.FixedLenByteArray && b.typeLength <= 0 {
		return nil, fmt.Errorf("%w: FIXED_LEN_BYTE_ARRAY %q needs a positive type length", quarry.ErrInvalid, b.name)
	}
	if err := checkLogical(b.physical, b.logical); err != nil {
		return nil, err
	}
	return &Node{
		name:       b.name,
		repetition: b.repetition,
		logical:    b.logical,
		physical:   b.physical,
		typeLength: b.typeLength,
		primitive:  true,
	}, nil
}

func checkLogical(p quarry.PhysicalType, l quarry.LogicalType) error {
	ok := true
	switch l {
	case quarry.None:
	case quarry.UTF8, quarry.Enum, quarry.JSON, quarry.BSON:
		ok = p == quarry.ByteArrayType
	case quarry.Int8Logical, quarry.Int16Logical, quarry.Int32Logical, quarry.Date, quarry.TimeMillis:
		ok = p == quarry.Int32
	case quarry.Int64Logical, quarry.TimestampMillis:
		ok = p == quarry.Int64
	case quarry.Decimal:
		ok = p == quarry.Int32 || p == quarry.Int64 ||
			p == quarry.ByteArrayType || p == quarry.FixedLenByteArray
	case quarry.Interval:
		ok = p == quarry.FixedLenByteArray
	}
	if !ok {
		return fmt.Errorf("%w: logical type %s cannot annotate %s", quarry.ErrInvalid, l, p)
	}
	return nil
}

// NewGroup returns a group node with the given children.
func NewGroup(name string, repetition quarry.Repetition, children ...*Node) *Node {
	return &Node{
		name:       name,
		repetition: repetition,
		children:   children,
	}
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Repetition returns the node's repetition mode.
func (n *Node) Repetition() quarry.Repetition { return n.repetition }

// LogicalType returns the node's logical annotation.
func (n *Node) LogicalType() quarry.LogicalType { return n.logical }

// IsPrimitive reports whether the node is a leaf.
func (n *Node) IsPrimitive() bool { return n.primitive }

// PhysicalType returns the leaf's physical type. Only meaningful for
// primitive nodes.
func (n *Node) PhysicalType() quarry.PhysicalType { return n.physical }

// TypeLength returns the fixed byte length, or -1 when not applicable.
func (n *Node) TypeLength() int { return n.typeLength }

// Children returns the group's children.
func (n *Node) Children() []*Node { return n.children }

// ColumnPath addresses a leaf by the dot-joined names from the root.
type ColumnPath []string

// PathFromString splits a dot-separated path.
func PathFromString(s string) ColumnPath {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

func (p ColumnPath) String() string { return strings.Join(p, ".") }
