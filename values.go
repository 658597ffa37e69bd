package quarry

import "encoding/binary"

// Int96 is the legacy 96-bit value: three little-endian 32-bit words.
// Historically used for nanosecond-precision timestamps where word 2
// holds the Julian day and words 0-1 the nanoseconds within the day.
type Int96 [3]uint32

// Int96FromBytes decodes the 12-byte little-endian representation.
func Int96FromBytes(b []byte) Int96 {
	var v Int96
	v[0] = binary.LittleEndian.Uint32(b[0:4])
	v[1] = binary.LittleEndian.Uint32(b[4:8])
	v[2] = binary.LittleEndian.Uint32(b[8:12])
	return v
}

// Bytes returns the 12-byte little-endian representation.
func (v Int96) Bytes() []byte {
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:4], v[0])
	binary.LittleEndian.PutUint32(b[4:8], v[1])
	binary.LittleEndian.PutUint32(b[8:12], v[2])
	return b
}

// ByteArray is a variable-length value. For FIXED_LEN_BYTE_ARRAY columns
// every value carries exactly the descriptor's type length.
type ByteArray []byte

func (b ByteArray) String() string { return string(b) }

// Value constrains the Go types a column can decode into, one per
// physical type. BYTE_ARRAY and FIXED_LEN_BYTE_ARRAY share ByteArray;
// the column descriptor's type length tells them apart.
type Value interface {
	bool | int32 | int64 | Int96 | float32 | float64 | ByteArray
}
