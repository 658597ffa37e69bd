package record

import "strings"

// NamedField pairs a field with its column name.
type NamedField struct {
	Name  string
	Field Field
}

// Row is an ordered list of named fields, one per column.
type Row struct {
	fields []NamedField
}

// NewRow builds a row from named fields, keeping their order.
func NewRow(fields ...NamedField) Row {
	return Row{fields: fields}
}

// Len returns the number of fields.
func (r Row) Len() int { return len(r.fields) }

// Get returns field i.
func (r Row) Get(i int) NamedField { return r.fields[i] }

// Field returns the field with the given name, or a null field.
func (r Row) Field(name string) Field {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Field
		}
	}
	return Null()
}

// String renders the row as "{a: 1, b: "x"}".
func (r Row) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		sb.WriteString(f.Field.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
