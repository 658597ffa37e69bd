// Package record exposes decoded column data as rows of typed fields.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quarrydata/quarry"
)

// Kind discriminates the variants a Field can hold.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	ByteKind
	ShortKind
	IntKind
	LongKind
	FloatKind
	DoubleKind
	StrKind
	BytesKind
	TimestampKind
	GroupKind
	ListKind
	MapKind
)

// MapEntry is one key-value pair of a map field.
type MapEntry struct {
	Key   Field
	Value Field
}

// Field is a single value in a row: either a primitive, a nested group,
// a list or a map.
type Field struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	bytes quarry.ByteArray
	group Row
	list  []Field
	pairs []MapEntry
}

// Null returns the null field.
func Null() Field { return Field{kind: NullKind} }

// Bool returns a boolean field.
func Bool(v bool) Field { return Field{kind: BoolKind, b: v} }

// Byte returns an 8-bit integer field.
func Byte(v int8) Field { return Field{kind: ByteKind, i: int64(v)} }

// Short returns a 16-bit integer field.
func Short(v int16) Field { return Field{kind: ShortKind, i: int64(v)} }

// Int returns a 32-bit integer field.
func Int(v int32) Field { return Field{kind: IntKind, i: int64(v)} }

// Long returns a 64-bit integer field.
func Long(v int64) Field { return Field{kind: LongKind, i: v} }

// Float returns a 32-bit float field.
func Float(v float32) Field { return Field{kind: FloatKind, f: float64(v)} }

// Double returns a 64-bit float field.
func Double(v float64) Field { return Field{kind: DoubleKind, f: v} }

// Str returns a string field.
func Str(v string) Field { return Field{kind: StrKind, s: v} }

// Bytes returns a raw byte field.
func Bytes(v quarry.ByteArray) Field { return Field{kind: BytesKind, bytes: v} }

// Timestamp returns a millisecond timestamp field.
func Timestamp(millis int64) Field { return Field{kind: TimestampKind, i: millis} }

// Group returns a nested row field.
func Group(r Row) Field { return Field{kind: GroupKind, group: r} }

// List returns a list field.
func List(elements ...Field) Field { return Field{kind: ListKind, list: elements} }

// Map returns a map field.
func Map(pairs ...MapEntry) Field { return Field{kind: MapKind, pairs: pairs} }

// Kind returns the field's variant.
func (f Field) Kind() Kind { return f.kind }

// IsNull reports whether the field is null.
func (f Field) IsNull() bool { return f.kind == NullKind }

// GoValue returns the field's value as a plain Go value: nil, bool,
// int8..int64, float32/float64, string, quarry.ByteArray, Row, []Field
// or []MapEntry.
func (f Field) GoValue() any {
	switch f.kind {
	case NullKind:
		return nil
	case BoolKind:
		return f.b
	case ByteKind:
		return int8(f.i)
	case ShortKind:
		return int16(f.i)
	case IntKind:
		return int32(f.i)
	case LongKind, TimestampKind:
		return f.i
	case FloatKind:
		return float32(f.f)
	case DoubleKind:
		return f.f
	case StrKind:
		return f.s
	case BytesKind:
		return f.bytes
	case GroupKind:
		return f.group
	case ListKind:
		return f.list
	case MapKind:
		return f.pairs
	default:
		return nil
	}
}

// String renders the field: "null", bare numbers, quoted strings,
// "[1, 2, 3]" for bytes and lists, "{k: v}" for groups and
// "{k -> v}" for maps. Floats always carry a decimal point.
func (f Field) String() string {
	switch f.kind {
	case NullKind:
		return "null"
	case BoolKind:
		return strconv.FormatBool(f.b)
	case ByteKind, ShortKind, IntKind, LongKind, TimestampKind:
		return strconv.FormatInt(f.i, 10)
	case FloatKind:
		return formatFloat(f.f, 32)
	case DoubleKind:
		return formatFloat(f.f, 64)
	case StrKind:
		return `"` + f.s + `"`
	case BytesKind:
		return formatBytes(f.bytes)
	case GroupKind:
		return f.group.String()
	case ListKind:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range f.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	case MapKind:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, p := range f.pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Key.String())
			sb.WriteString(" -> ")
			sb.WriteString(p.Value.String())
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		return fmt.Sprintf("Field(%d)", int(f.kind))
	}
}

func formatFloat(v float64, bits int) string {
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eENI") {
		s += ".0"
	}
	return s
}

func formatBytes(b quarry.ByteArray) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	sb.WriteByte(']')
	return sb.String()
}
