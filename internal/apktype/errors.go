package apktype

import "errors"

// Sentinel errors for archive operations.
var (
	// ErrMalformedContainer is returned when the container as a whole cannot
	// be parsed (missing or corrupt end of central directory, truncated input).
	ErrMalformedContainer = errors.New("apk: malformed container")

	// ErrEntryNotFound is returned when a name is not present in the archive.
	ErrEntryNotFound = errors.New("apk: entry not found")

	// ErrMalformedEntry is returned when an entry is indexed but its content
	// cannot be decoded.
	ErrMalformedEntry = errors.New("apk: malformed entry")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("apk: size overflow")
)
