// Package testutil builds APK fixtures for tests.
//
// Fixtures are written and re-read with the standard library archive/zip so
// that assertions compare the apk package against an independent reader.
package testutil

import (
	"archive/zip"
	"bytes"
	"hash/crc32"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// ZIP compression methods accepted by TestEntry.Method.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
	MethodZstd    uint16 = 93
)

// TestEntry describes a single archive member.
type TestEntry struct {
	Name   string
	Data   []byte
	Method uint16

	// DeclaredCRC32 overrides the CRC-32 written to the headers when set.
	DeclaredCRC32 *uint32

	// Body overrides the stored (compressed) bytes when non-nil.
	Body []byte
}

// CRC returns a pointer to v for use as TestEntry.DeclaredCRC32.
func CRC(v uint32) *uint32 {
	return &v
}

// BuildAPK writes entries into an in-memory ZIP container in the given order.
func BuildAPK(tb testing.TB, entries []TestEntry) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC)

	for _, e := range entries {
		body := e.Body
		if body == nil {
			body = compress(tb, e.Method, e.Data)
		}
		sum := crc32.ChecksumIEEE(e.Data)
		if e.DeclaredCRC32 != nil {
			sum = *e.DeclaredCRC32
		}
		w, err := zw.CreateRaw(&zip.FileHeader{
			Name:               e.Name,
			Method:             e.Method,
			CRC32:              sum,
			CompressedSize64:   uint64(len(body)),
			UncompressedSize64: uint64(len(e.Data)),
			Modified:           modified,
		})
		require.NoError(tb, err)
		_, err = w.Write(body)
		require.NoError(tb, err)
	}
	require.NoError(tb, zw.Close())
	return buf.Bytes()
}

// BuildFiles writes name/content pairs as deflated entries in the given order.
func BuildFiles(tb testing.TB, names []string, content func(name string) []byte) []byte {
	tb.Helper()
	entries := make([]TestEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, TestEntry{Name: name, Data: content(name), Method: MethodDeflate})
	}
	return BuildAPK(tb, entries)
}

// ReferenceNames lists entry names using archive/zip.
func ReferenceNames(tb testing.TB, data []byte) []string {
	tb.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(tb, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

// TruncateTrailer returns a copy of data without its end of central
// directory record.
func TruncateTrailer(data []byte) []byte {
	const endOfCentralDirLen = 22
	if len(data) <= endOfCentralDirLen {
		return nil
	}
	return bytes.Clone(data[:len(data)-endOfCentralDirLen])
}

func compress(tb testing.TB, method uint16, data []byte) []byte {
	tb.Helper()
	switch method {
	case MethodStore:
		return bytes.Clone(data)
	case MethodDeflate:
		var buf bytes.Buffer
		fw, err := flate.NewWriter(&buf, flate.BestCompression)
		require.NoError(tb, err)
		_, err = fw.Write(data)
		require.NoError(tb, err)
		require.NoError(tb, fw.Close())
		return buf.Bytes()
	case MethodZstd:
		enc, err := zstd.NewWriter(nil)
		require.NoError(tb, err)
		defer enc.Close()
		return enc.EncodeAll(data, nil)
	default:
		tb.Fatalf("unsupported fixture method %d", method)
		return nil
	}
}

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data []byte
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}
