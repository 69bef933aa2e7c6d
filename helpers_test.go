package apk

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meigma/apk/internal/testutil"
	"github.com/meigma/apk/internal/zipindex"
)

// countingCatalog wraps an index and counts content reads per name.
type countingCatalog struct {
	*zipindex.Index

	delay time.Duration

	mu    sync.Mutex
	reads map[string]int
}

func (c *countingCatalog) Read(name string) ([]byte, error) {
	c.mu.Lock()
	c.reads[name]++
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.Index.Read(name)
}

func (c *countingCatalog) ReadCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[name]
}

func (c *countingCatalog) TotalReads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.reads {
		total += n
	}
	return total
}

// openCounting builds an archive over entries whose reads are counted.
func openCounting(tb testing.TB, entries []testutil.TestEntry, opts ...Option) (*Archive, *countingCatalog) {
	tb.Helper()
	idx, err := zipindex.Load(testutil.BuildAPK(tb, entries))
	require.NoError(tb, err)

	stub := &countingCatalog{Index: idx, reads: make(map[string]int)}
	a := newArchive(opts)
	a.name = "test.apk"
	a.idx = stub
	return a, stub
}

// mismatchRecorder collects mismatch diagnostics.
type mismatchRecorder struct {
	mu     sync.Mutex
	events []Mismatch
}

func (r *mismatchRecorder) record(m Mismatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, m)
}

func (r *mismatchRecorder) Events() []Mismatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Mismatch(nil), r.events...)
}

// syncBuffer is a bytes.Buffer safe for concurrent writes from a logger.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestLogger returns a JSON logger writing to a buffer.
func newTestLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// sampleEntries is a small APK layout used across tests.
func sampleEntries() []testutil.TestEntry {
	return []testutil.TestEntry{
		{Name: "AndroidManifest.xml", Data: []byte("<manifest/>"), Method: testutil.MethodDeflate},
		{Name: "classes.dex", Data: []byte("dex\n035\x00primary"), Method: testutil.MethodDeflate},
		{Name: "classes2.dex", Data: []byte("dex\n035\x00secondary"), Method: testutil.MethodStore},
		{Name: "res/layout/main.xml", Data: []byte("<LinearLayout/>"), Method: testutil.MethodDeflate},
		{Name: "resources.arsc", Data: bytes.Repeat([]byte{0x02, 0x00}, 64), Method: testutil.MethodStore},
		{Name: "META-INF/CERT.RSA", Data: []byte("cert"), Method: testutil.MethodDeflate},
	}
}
