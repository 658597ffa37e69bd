package log

// Canonical field name constants for structured logging.
const (
	FieldComponent = "component"
	FieldEvent     = "event"

	// File / chunk fields
	FieldPath     = "path"
	FieldColumn   = "column"
	FieldRowGroup = "row_group"
	FieldNumRows  = "num_rows"

	// Page fields
	FieldPageType  = "page_type"
	FieldEncoding  = "encoding"
	FieldNumValues = "num_values"
	FieldBytes     = "bytes"
)
