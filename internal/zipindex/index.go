package zipindex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/apk/internal/apktype"
)

// DefaultMaxFileSize is the default maximum decompressed entry size (256MB).
const DefaultMaxFileSize = 256 << 20

// DefaultMaxDecoderMemory is the default maximum zstd decoder memory (256MB).
const DefaultMaxDecoderMemory = 256 << 20

// Re-export sentinel errors.
var (
	ErrMalformedContainer = apktype.ErrMalformedContainer
	ErrEntryNotFound      = apktype.ErrEntryNotFound
	ErrMalformedEntry     = apktype.ErrMalformedEntry
	ErrSizeOverflow       = apktype.ErrSizeOverflow
)

// Index provides name-based access to the entries of a ZIP container.
//
// An Index is immutable after Load returns and is safe for concurrent use.
type Index struct {
	names       []string
	files       map[string]*zip.File
	duplicates  int
	maxFileSize uint64
	pool        *DecompressPool
}

// Option configures an Index.
type Option func(*Index)

// WithMaxFileSize limits the decompressed size of a single entry.
// Set limit to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(idx *Index) {
		idx.maxFileSize = limit
	}
}

// WithMaxDecoderMemory limits the memory used by zstd decoders.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(idx *Index) {
		idx.pool = NewDecompressPool(limit)
	}
}

// Load parses the central directory of data.
//
// The provided data is retained by the index; callers must not modify it
// after calling Load. Names keep the order in which the central directory
// lists them. When a name appears more than once only the first record is
// indexed; the rest are counted by Duplicates.
func Load(data []byte, opts ...Option) (idx *Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("%w: %v", ErrMalformedContainer, r)
		}
	}()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedContainer)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}

	idx = &Index{
		names:       make([]string, 0, len(zr.File)),
		files:       make(map[string]*zip.File, len(zr.File)),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.pool == nil {
		idx.pool = NewDecompressPool(DefaultMaxDecoderMemory)
	}

	for _, f := range zr.File {
		if _, seen := idx.files[f.Name]; seen {
			idx.duplicates++
			continue
		}
		idx.files[f.Name] = f
		idx.names = append(idx.names, f.Name)
	}
	return idx, nil
}

// Names returns entry names in central-directory order.
// The returned slice is shared and must be treated as read-only.
func (idx *Index) Names() []string {
	return idx.names
}

// Len returns the number of distinct entries.
func (idx *Index) Len() int {
	return len(idx.names)
}

// Duplicates returns the number of central directory records that were
// dropped because their name was already indexed.
func (idx *Index) Duplicates() int {
	return idx.duplicates
}

// Lookup returns the declared metadata for name.
func (idx *Index) Lookup(name string) (apktype.EntryInfo, bool) {
	f, ok := idx.files[name]
	if !ok {
		return apktype.EntryInfo{}, false
	}
	return apktype.EntryInfo{
		Name:             f.Name,
		CRC32:            f.CRC32,
		CompressedSize:   f.CompressedSize64,
		UncompressedSize: f.UncompressedSize64,
		Compression:      apktype.Compression(f.Method),
		Modified:         f.Modified,
	}, true
}

// Read returns the decompressed content of name.
//
// The declared CRC-32 is not checked. A missing name yields ErrEntryNotFound;
// any failure to locate or decode the body yields ErrMalformedEntry.
func (idx *Index) Read(name string) ([]byte, error) {
	f, ok := idx.files[name]
	if !ok {
		return nil, ErrEntryNotFound
	}

	raw, err := f.OpenRaw()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}

	reader, release, err := idx.pool.Get(apktype.Compression(f.Method), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	defer release()

	content, err := readAllWithLimit(reader, idx.maxFileSize, f.UncompressedSize64)
	switch {
	case err == nil:
		return content, nil
	case errors.Is(err, ErrSizeOverflow):
		return nil, fmt.Errorf("%w: %w", ErrMalformedEntry, err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: unexpected EOF", ErrMalformedEntry)
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
}

// readAllWithLimit reads r to EOF, failing with ErrSizeOverflow once more
// than maxSize bytes are produced. A maxSize of 0 disables the limit.
// sizeHint is the declared size; it only presizes the buffer and is capped
// so a lying header cannot force a large allocation.
func readAllWithLimit(r io.Reader, maxSize, sizeHint uint64) ([]byte, error) {
	const maxHint = 1 << 20
	hint := min(sizeHint, maxHint)
	if maxSize != 0 {
		hint = min(hint, maxSize)
	}
	buf := bytes.NewBuffer(make([]byte, 0, int(hint))) //nolint:gosec // hint is capped above

	if maxSize == 0 {
		if _, err := buf.ReadFrom(r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if maxSize > math.MaxInt64-1 {
		return nil, ErrSizeOverflow
	}

	lr := &io.LimitedReader{R: r, N: int64(maxSize) + 1} //nolint:gosec // checked above
	if _, err := buf.ReadFrom(lr); err != nil {
		return nil, err
	}
	if uint64(buf.Len()) > maxSize {
		return nil, fmt.Errorf("%w: entry exceeds %d bytes", ErrSizeOverflow, maxSize)
	}
	return buf.Bytes(), nil
}
