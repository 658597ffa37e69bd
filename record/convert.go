package record

import (
	"fmt"

	"github.com/quarrydata/quarry"
)

const (
	julianEpochDay = 2_440_588
	millisPerDay   = 86_400_000
	nanosPerDay    = millisPerDay * 1_000_000
)

// FromBool converts a BOOLEAN value. The logical type is irrelevant.
func FromBool(_ quarry.LogicalType, v bool) (Field, error) {
	return Bool(v), nil
}

// FromInt32 converts an INT32 value according to its logical type.
func FromInt32(logical quarry.LogicalType, v int32) (Field, error) {
	switch logical {
	case quarry.Int8Logical:
		return Byte(int8(v)), nil
	case quarry.Int16Logical:
		return Short(int16(v)), nil
	case quarry.Int32Logical, quarry.None:
		return Int(v), nil
	default:
		return Field{}, fmt.Errorf("%w: INT32 with logical type %s", quarry.ErrUnsupported, logical)
	}
}

// FromInt64 converts an INT64 value according to its logical type.
func FromInt64(logical quarry.LogicalType, v int64) (Field, error) {
	switch logical {
	case quarry.Int64Logical, quarry.None:
		return Long(v), nil
	case quarry.TimestampMillis:
		return Timestamp(v), nil
	default:
		return Field{}, fmt.Errorf("%w: INT64 with logical type %s", quarry.ErrUnsupported, logical)
	}
}

// FromInt96 converts a nanosecond timestamp into a millisecond
// timestamp field. The third word holds the Julian day, the first two
// the nanoseconds within the day.
func FromInt96(_ quarry.LogicalType, v quarry.Int96) (Field, error) {
	days := uint64(v[2]) - julianEpochDay
	nanos := days*nanosPerDay + (uint64(v[1])<<32 | uint64(v[0]))
	return Timestamp(int64(nanos / 1_000_000)), nil
}

// FromFloat32 converts a FLOAT value.
func FromFloat32(_ quarry.LogicalType, v float32) (Field, error) {
	return Float(v), nil
}

// FromFloat64 converts a DOUBLE value.
func FromFloat64(_ quarry.LogicalType, v float64) (Field, error) {
	return Double(v), nil
}

// FromByteArray converts a BYTE_ARRAY value: UTF8, ENUM and JSON become
// strings, BSON and untyped arrays stay raw bytes.
func FromByteArray(physical quarry.PhysicalType, logical quarry.LogicalType, v quarry.ByteArray) (Field, error) {
	if physical != quarry.ByteArrayType {
		return Field{}, fmt.Errorf("%w: %s in record conversion", quarry.ErrUnsupported, physical)
	}
	switch logical {
	case quarry.UTF8, quarry.Enum, quarry.JSON:
		return Str(string(v)), nil
	case quarry.BSON, quarry.None:
		return Bytes(v), nil
	default:
		return Field{}, fmt.Errorf("%w: BYTE_ARRAY with logical type %s", quarry.ErrUnsupported, logical)
	}
}
