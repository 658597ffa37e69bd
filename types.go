// Package quarry defines the shared vocabulary of the quarry columnar
// format: physical and logical types, encodings, repetition modes and
// page kinds. The sub-packages (schema, encoding, column, file, record)
// build on these definitions.
package quarry

import "fmt"

// PhysicalType is the on-disk primitive type of a column.
type PhysicalType int

const (
	Boolean PhysicalType = iota
	Int32
	Int64
	Int96Type
	Float
	Double
	ByteArrayType
	FixedLenByteArray
)

func (t PhysicalType) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96Type:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArrayType:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("PhysicalType(%d)", int(t))
	}
}

// ParsePhysicalType maps the canonical upper-case name back to a type.
func ParsePhysicalType(s string) (PhysicalType, error) {
	for t := Boolean; t <= FixedLenByteArray; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: physical type %q", ErrInvalid, s)
}

// LogicalType annotates a physical type with interpretation semantics.
type LogicalType int

const (
	None LogicalType = iota
	UTF8
	Int8Logical
	Int16Logical
	Int32Logical
	Int64Logical
	Enum
	JSON
	BSON
	Date
	TimeMillis
	TimestampMillis
	Decimal
	Interval
)

func (t LogicalType) String() string {
	switch t {
	case None:
		return "NONE"
	case UTF8:
		return "UTF8"
	case Int8Logical:
		return "INT_8"
	case Int16Logical:
		return "INT_16"
	case Int32Logical:
		return "INT_32"
	case Int64Logical:
		return "INT_64"
	case Enum:
		return "ENUM"
	case JSON:
		return "JSON"
	case BSON:
		return "BSON"
	case Date:
		return "DATE"
	case TimeMillis:
		return "TIME_MILLIS"
	case TimestampMillis:
		return "TIMESTAMP_MILLIS"
	case Decimal:
		return "DECIMAL"
	case Interval:
		return "INTERVAL"
	default:
		return fmt.Sprintf("LogicalType(%d)", int(t))
	}
}

// ParseLogicalType maps the canonical upper-case name back to a type.
func ParseLogicalType(s string) (LogicalType, error) {
	for t := None; t <= Interval; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: logical type %q", ErrInvalid, s)
}

// Encoding identifies how values, levels or dictionary indices are
// serialized inside a page.
type Encoding int

const (
	Plain Encoding = iota
	PlainDictionary
	RLE
	BitPacked
	DeltaBinaryPacked
	DeltaLengthByteArray
	DeltaByteArray
	RLEDictionary
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case PlainDictionary:
		return "PLAIN_DICTIONARY"
	case RLE:
		return "RLE"
	case BitPacked:
		return "BIT_PACKED"
	case DeltaBinaryPacked:
		return "DELTA_BINARY_PACKED"
	case DeltaLengthByteArray:
		return "DELTA_LENGTH_BYTE_ARRAY"
	case DeltaByteArray:
		return "DELTA_BYTE_ARRAY"
	case RLEDictionary:
		return "RLE_DICTIONARY"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding maps the canonical upper-case name back to an encoding.
func ParseEncoding(s string) (Encoding, error) {
	for e := Plain; e <= RLEDictionary; e++ {
		if e.String() == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: encoding %q", ErrInvalid, s)
}

// Repetition describes whether a field is required, optional or repeated.
type Repetition int

const (
	Required Repetition = iota
	Optional
	Repeated
)

func (r Repetition) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	default:
		return fmt.Sprintf("Repetition(%d)", int(r))
	}
}

// ParseRepetition maps the canonical upper-case name back to a repetition.
func ParseRepetition(s string) (Repetition, error) {
	for r := Required; r <= Repeated; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: repetition %q", ErrInvalid, s)
}

// PageType identifies the kind of a page inside a column chunk.
type PageType int

const (
	DataPage PageType = iota
	DictionaryPage
	IndexPage
)

func (p PageType) String() string {
	switch p {
	case DataPage:
		return "DATA_PAGE"
	case DictionaryPage:
		return "DICTIONARY_PAGE"
	case IndexPage:
		return "INDEX_PAGE"
	default:
		return fmt.Sprintf("PageType(%d)", int(p))
	}
}
