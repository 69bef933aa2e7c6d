package apktype

import "time"

// EntryInfo describes an entry as declared by the central directory.
//
// Every field is structurally asserted by the container and may disagree
// with the actual content; use the archive's checksum methods to validate.
type EntryInfo struct {
	// Name is the entry path as stored in the archive (e.g., "classes.dex").
	Name string

	// CRC32 is the declared CRC-32 (IEEE) of the uncompressed content.
	CRC32 uint32

	// CompressedSize is the declared size of the stored entry body.
	CompressedSize uint64

	// UncompressedSize is the declared size of the decompressed content.
	UncompressedSize uint64

	// Compression is the declared compression method.
	Compression Compression

	// Modified is the entry modification time.
	Modified time.Time
}
