package quarry

import "errors"

var (
	// ErrEOF classifies decode failures caused by truncated input.
	// Use errors.Is(err, quarry.ErrEOF) instead of string matching.
	ErrEOF = errors.New("unexpected end of data")

	// ErrUnsupported classifies features the format defines but this
	// implementation does not handle (e.g. BIT_PACKED levels).
	ErrUnsupported = errors.New("unsupported")

	// ErrInvalid classifies malformed input or misuse of the API.
	ErrInvalid = errors.New("invalid")
)
