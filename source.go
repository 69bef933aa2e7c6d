package apk

import (
	"fmt"
	"io"
	"os"
)

// DefaultMaxArchiveSize is the default limit on bytes buffered by OpenSource
// and OpenFile (2GB).
const DefaultMaxArchiveSize = 2 << 30

// ByteSource provides random access to raw archive bytes.
//
// Implementations exist for in-memory buffers, local files, and HTTP range
// requests (see the http subpackage).
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// OpenSource buffers the whole of src and opens it with Open.
//
// The source is read once, front to back; the container is only parsed
// after every byte is in memory.
func OpenSource(src ByteSource, opts ...Option) (*Archive, error) {
	a := newArchive(opts)
	raw, err := readSource(src, a.maxArchiveSize)
	if err != nil {
		return nil, err
	}
	return a.open(raw)
}

// OpenFile reads the file at path and opens it with Open.
// Unless WithName is given, the archive is named after path.
func OpenFile(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	a := newArchive(append([]Option{WithName(path)}, opts...))
	raw, err := readSource(io.NewSectionReader(f, 0, info.Size()), a.maxArchiveSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return a.open(raw)
}

// readSource copies src into memory, refusing sources larger than limit.
// A limit of 0 disables the check.
func readSource(src ByteSource, limit uint64) ([]byte, error) {
	size := src.Size()
	if size < 0 {
		return nil, fmt.Errorf("%w: negative source size", ErrSizeOverflow)
	}
	if limit != 0 && uint64(size) > limit {
		return nil, fmt.Errorf("%w: source is %d bytes, limit %d", ErrSizeOverflow, size, limit)
	}

	raw := make([]byte, size)
	n, err := src.ReadAt(raw, 0)
	if n == len(raw) {
		return raw, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("read source: %w", err)
}
