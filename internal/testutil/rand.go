// Package testutil provides deterministic random data generators for
// codec and reader tests.
package testutil

import (
	"math/rand"

	"github.com/quarrydata/quarry"
)

// Int32s returns n random values in [min, max).
func Int32s(rng *rand.Rand, n int, min, max int32) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = min + int32(rng.Int63n(int64(max)-int64(min)))
	}
	return out
}

// Int64s returns n random values in [min, max).
func Int64s(rng *rand.Rand, n int, min, max int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		// Span can exceed the int64 range, so sample the full width.
		out[i] = min + int64(rng.Uint64()%(uint64(max)-uint64(min)))
	}
	return out
}

// Bools returns n random booleans.
func Bools(rng *rand.Rand, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = rng.Intn(2) == 1
	}
	return out
}

// Float32s returns n random floats.
func Float32s(rng *rand.Rand, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = rng.Float32()
	}
	return out
}

// Float64s returns n random floats.
func Float64s(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()
	}
	return out
}

// Int96s returns n random 96-bit values.
func Int96s(rng *rand.Rand, n int) []quarry.Int96 {
	out := make([]quarry.Int96, n)
	for i := range out {
		out[i] = quarry.Int96{rng.Uint32(), rng.Uint32(), rng.Uint32()}
	}
	return out
}

// ByteArrays returns n random values of length 1..maxLen.
func ByteArrays(rng *rand.Rand, n, maxLen int) []quarry.ByteArray {
	out := make([]quarry.ByteArray, n)
	for i := range out {
		b := make([]byte, 1+rng.Intn(maxLen))
		rng.Read(b)
		out[i] = b
	}
	return out
}

// FixedByteArrays returns n random values of exactly size bytes.
func FixedByteArrays(rng *rand.Rand, n, size int) []quarry.ByteArray {
	out := make([]quarry.ByteArray, n)
	for i := range out {
		b := make([]byte, size)
		rng.Read(b)
		out[i] = b
	}
	return out
}

// Levels returns n random levels in [0, maxLevel].
func Levels(rng *rand.Rand, n int, maxLevel int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(rng.Intn(int(maxLevel) + 1))
	}
	return out
}
