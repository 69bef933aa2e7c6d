package apk

import (
	_ "crypto/sha256" // registers digest.Canonical
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sync"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/apk/internal/apktype"
	"github.com/meigma/apk/internal/zipindex"
)

// Re-export types from internal/apktype for public API.
type (
	// EntryInfo describes an entry as declared by the central directory.
	EntryInfo = apktype.EntryInfo

	// Compression identifies the ZIP compression method of an entry.
	Compression = apktype.Compression
)

// Re-export compression constants.
const (
	CompressionStore      = apktype.CompressionStore
	CompressionDeflate    = apktype.CompressionDeflate
	CompressionZstd       = apktype.CompressionZstd
	CompressionZstdPKWare = apktype.CompressionZstdPKWare
)

// namePrefix prefixes the digest-derived display name of an archive.
const namePrefix = "raw_apk_sha256:"

// catalog is the structural index an Archive reads from.
type catalog interface {
	Names() []string
	Len() int
	Lookup(name string) (EntryInfo, bool)
	Read(name string) ([]byte, error)
}

// Archive is an opened, indexed APK.
//
// The entry index is built once by Open and never changes afterwards.
// Archive methods are safe for concurrent use.
type Archive struct {
	digest            digest.Digest
	name              string
	idx               catalog
	maxFileSize       uint64
	maxDecoderMemory  uint64
	maxArchiveSize    uint64
	verifyConcurrency int
	onMismatch        MismatchFunc
	progress          ProgressFunc
	logger            *slog.Logger

	sumsMu   sync.RWMutex
	sums     map[string]checksumResult
	sumGroup singleflight.Group // zero value is valid
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

func newArchive(opts []Option) *Archive {
	a := &Archive{
		maxFileSize:       zipindex.DefaultMaxFileSize,
		maxDecoderMemory:  zipindex.DefaultMaxDecoderMemory,
		maxArchiveSize:    DefaultMaxArchiveSize,
		verifyConcurrency: defaultVerifyConcurrency,
		sums:              make(map[string]checksumResult),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open indexes the APK contained in raw.
//
// The content digest is computed over all of raw before any parsing, so it
// identifies the input even when it is not a valid container. If the
// container cannot be indexed, Open returns an error wrapping
// ErrMalformedContainer and no Archive.
//
// raw is retained by the Archive and must not be modified afterwards.
func Open(raw []byte, opts ...Option) (*Archive, error) {
	return newArchive(opts).open(raw)
}

// open digests and indexes raw into a configured Archive.
func (a *Archive) open(raw []byte) (*Archive, error) {
	a.digest = digest.FromBytes(raw)
	if a.name == "" {
		a.name = namePrefix + a.digest.Encoded()
	}

	idx, err := zipindex.Load(raw,
		zipindex.WithMaxFileSize(a.maxFileSize),
		zipindex.WithMaxDecoderMemory(a.maxDecoderMemory),
	)
	if err != nil {
		a.log().Debug("open failed", "archive", a.name, "size", len(raw), "error", err)
		return nil, fmt.Errorf("open %s: %w", a.name, err)
	}
	if n := idx.Duplicates(); n > 0 {
		a.log().Warn("duplicate entry names ignored", "archive", a.name, "count", n)
	}
	a.idx = idx

	a.log().Debug("opened archive", "archive", a.name, "digest", a.digest.String(), "entries", idx.Len())
	return a, nil
}

// Digest returns the SHA-256 digest of the raw input.
func (a *Archive) Digest() digest.Digest {
	return a.digest
}

// Name returns the display name of the archive.
// Unless set with WithName it is "raw_apk_sha256:" followed by the hex digest.
func (a *Archive) Name() string {
	return a.name
}

// Names returns every entry name in the order the central directory lists
// them. The returned slice is a copy.
func (a *Archive) Names() []string {
	return slices.Clone(a.idx.Names())
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return a.idx.Len()
}

// Contains reports whether name is an entry of the archive.
func (a *Archive) Contains(name string) bool {
	_, ok := a.idx.Lookup(name)
	return ok
}

// Entry returns the declared metadata for name.
func (a *Archive) Entry(name string) (EntryInfo, bool) {
	return a.idx.Lookup(name)
}

// Read returns the decompressed content of name.
//
// Read does not cache content and does not validate the checksum. A missing
// name yields ErrEntryNotFound; a corrupt or unsupported body yields
// ErrMalformedEntry. Errors are *fs.PathError values.
func (a *Archive) Read(name string) ([]byte, error) {
	content, err := a.idx.Read(name)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return content, nil
}
