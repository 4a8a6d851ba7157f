package styling

import "errors"

var (
	// ErrMalformedRule is returned when rule text is not a single well-formed CSS rule
	ErrMalformedRule = errors.New("malformed rule")

	// ErrIndexSize is returned when an insertion position is outside the rule list
	ErrIndexSize = errors.New("index out of range")

	// ErrSheetClosed is returned when inserting into a disposed sheet
	ErrSheetClosed = errors.New("sheet closed")

	// ErrCacheFull is returned when a bounded cache cannot take another class name
	ErrCacheFull = errors.New("rule cache full")

	// ErrNoTarget is returned when InsertStyles is called without a cache or sheet
	ErrNoTarget = errors.New("no cache or target sheet")
)
