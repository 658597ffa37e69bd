package schema

import (
	"fmt"

	"github.com/quarrydata/quarry"
)

// ColumnDescriptor carries everything a column reader or writer needs to
// know about one leaf: the node itself, its dot path from the root and
// the maximum definition and repetition levels along that path.
type ColumnDescriptor struct {
	node   *Node
	path   ColumnPath
	maxDef int16
	maxRep int16
}

// NewColumnDescriptor builds a descriptor from explicit levels. Mostly
// useful in tests; Schema.Columns derives the levels by walking the tree.
func NewColumnDescriptor(node *Node, path ColumnPath, maxDef, maxRep int16) *ColumnDescriptor {
	return &ColumnDescriptor{node: node, path: path, maxDef: maxDef, maxRep: maxRep}
}

// Node returns the underlying primitive node.
func (d *ColumnDescriptor) Node() *Node { return d.node }

// Path returns the column's path from the schema root.
func (d *ColumnDescriptor) Path() ColumnPath { return d.path }

// MaxDefinitionLevel returns the maximum definition level.
func (d *ColumnDescriptor) MaxDefinitionLevel() int16 { return d.maxDef }

// MaxRepetitionLevel returns the maximum repetition level.
func (d *ColumnDescriptor) MaxRepetitionLevel() int16 { return d.maxRep }

// PhysicalType returns the leaf's physical type.
func (d *ColumnDescriptor) PhysicalType() quarry.PhysicalType { return d.node.physical }

// LogicalType returns the leaf's logical annotation.
func (d *ColumnDescriptor) LogicalType() quarry.LogicalType { return d.node.logical }

// TypeLength returns the fixed byte length, or -1 when not applicable.
func (d *ColumnDescriptor) TypeLength() int { return d.node.typeLength }

// Schema is a root group node with its flattened leaves.
type Schema struct {
	root    *Node
	columns []*ColumnDescriptor
}

// NewSchema flattens the root group into column descriptors, computing
// max definition and repetition levels: optional and repeated ancestors
// raise the definition level, repeated ancestors raise the repetition
// level. The root's own repetition does not count.
func NewSchema(root *Node) (*Schema, error) {
	if root == nil || root.IsPrimitive() {
		return nil, fmt.Errorf("%w: schema root must be a group", quarry.ErrInvalid)
	}
	s := &Schema{root: root}
	for _, child := range root.children {
		if err := s.flatten(child, nil, 0, 0); err != nil {
			return nil, err
		}
	}
	if len(s.columns) == 0 {
		return nil, fmt.Errorf("%w: schema has no leaves", quarry.ErrInvalid)
	}
	return s, nil
}

func (s *Schema) flatten(n *Node, prefix ColumnPath, def, rep int16) error {
	switch n.repetition {
	case quarry.Optional:
		def++
	case quarry.Repeated:
		def++
		rep++
	}
	path := append(append(ColumnPath{}, prefix...), n.name)
	if n.IsPrimitive() {
		s.columns = append(s.columns, &ColumnDescriptor{
			node: n, path: path, maxDef: def, maxRep: rep,
		})
		return nil
	}
	if len(n.children) == 0 {
		return fmt.Errorf("%w: group %q has no children", quarry.ErrInvalid, path)
	}
	for _, child := range n.children {
		if err := s.flatten(child, path, def, rep); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the root group node.
func (s *Schema) Root() *Node { return s.root }

// Columns returns the flattened leaf descriptors in schema order.
func (s *Schema) Columns() []*ColumnDescriptor { return s.columns }

// Column returns the descriptor at index i.
func (s *Schema) Column(i int) *ColumnDescriptor { return s.columns[i] }

// ColumnByPath finds a descriptor by its dot path, or nil.
func (s *Schema) ColumnByPath(path string) *ColumnDescriptor {
	for _, c := range s.columns {
		if c.path.String() == path {
			return c
		}
	}
	return nil
}
