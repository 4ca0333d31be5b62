package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNoRecords          = errors.New("no records found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrEmptyBatch         = errors.New("document source returned an empty batch")
	ErrNameSpaceExhausted = errors.New("sheet name space exhausted")
)
