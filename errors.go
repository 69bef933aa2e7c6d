package apk

import "github.com/meigma/apk/internal/apktype"

// Sentinel errors re-exported from internal/apktype.
var (
	// ErrMalformedContainer is returned by Open when the container cannot be
	// indexed. No Archive is produced.
	ErrMalformedContainer = apktype.ErrMalformedContainer

	// ErrEntryNotFound is returned when a name is not present in the archive.
	ErrEntryNotFound = apktype.ErrEntryNotFound

	// ErrMalformedEntry is returned when an indexed entry cannot be decoded.
	// It only affects that entry.
	ErrMalformedEntry = apktype.ErrMalformedEntry

	// ErrSizeOverflow is returned when byte counts exceed configured limits.
	ErrSizeOverflow = apktype.ErrSizeOverflow
)

// Mismatch describes an entry whose declared CRC-32 disagrees with the
// CRC-32 of its decompressed content.
type Mismatch struct {
	Name     string
	Declared uint32
	Computed uint32
}

// MismatchFunc receives checksum mismatch diagnostics.
// Implementations must be safe for concurrent calls.
type MismatchFunc func(Mismatch)
