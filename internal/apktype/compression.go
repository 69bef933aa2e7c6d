package apktype

import "strconv"

// Compression identifies the ZIP compression method of an entry.
type Compression uint16

// Compression methods understood by the entry decoder.
const (
	CompressionStore      Compression = 0
	CompressionDeflate    Compression = 8
	CompressionZstdPKWare Compression = 20
	CompressionZstd       Compression = 93
)

// String returns the human-readable name of the compression method.
func (c Compression) String() string {
	switch c {
	case CompressionStore:
		return "store"
	case CompressionDeflate:
		return "deflate"
	case CompressionZstd, CompressionZstdPKWare:
		return "zstd"
	default:
		return "unknown(" + strconv.Itoa(int(c)) + ")"
	}
}
