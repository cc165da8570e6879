package format

import "errors"

var (
	// ErrSignatureMismatch indicates a header had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrUnsupported indicates the header version or feature is not supported.
	ErrUnsupported = errors.New("format: unsupported feature")
	// ErrBadRange indicates a range header whose bounds make no sense.
	ErrBadRange = errors.New("format: invalid range")
)
