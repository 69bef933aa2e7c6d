package apk

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"sync"

	"golang.org/x/sync/errgroup"
)

// checksumResult is the cached outcome of validating one entry.
type checksumResult struct {
	sum uint32
	err error
}

// Checksum returns the CRC-32 (IEEE) of the decompressed content of name.
//
// The first call for a name reads the entry and compares the computed value
// with the declared one. A disagreement is reported once as a Mismatch
// (logged at WARN and passed to the WithMismatchHandler callback) and the
// computed value is returned; it is not an error. The outcome, including a
// decode failure, is cached: later calls return it without reading the entry
// again, and concurrent first calls share a single computation.
//
// A missing name yields ErrEntryNotFound. A body that cannot be decoded
// yields ErrMalformedEntry.
func (a *Archive) Checksum(name string) (uint32, error) {
	if r, ok := a.cachedChecksum(name); ok {
		return r.sum, r.err
	}
	if !a.Contains(name) {
		return 0, &fs.PathError{Op: "checksum", Path: name, Err: ErrEntryNotFound}
	}

	v, _, _ := a.sumGroup.Do(name, func() (any, error) {
		// Double-check cache
		if r, ok := a.cachedChecksum(name); ok {
			return r, nil
		}
		r := a.computeChecksum(name)
		a.sumsMu.Lock()
		if prev, ok := a.sums[name]; ok {
			r = prev
		} else {
			a.sums[name] = r
		}
		a.sumsMu.Unlock()
		return r, nil
	})
	r := v.(checksumResult) //nolint:errcheck // the flight always returns a checksumResult
	return r.sum, r.err
}

// Checksums validates every entry that has not been validated yet and
// returns the CRC-32 of every entry that could be read.
//
// Entries that fail to decode are left out of the map; their errors are
// joined into the returned error, which never stops the remaining entries
// from being validated. Calling Checksums again returns the same result
// without repeating any work.
func (a *Archive) Checksums() (map[string]uint32, error) {
	names := a.idx.Names()
	pending := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := a.cachedChecksum(name); !ok {
			pending = append(pending, name)
		}
	}

	if len(pending) > 0 {
		a.log().Debug("verifying entries", "archive", a.name, "pending", len(pending), "total", len(names))
		a.verifyAll(pending, len(names)-len(pending), len(names))
	}

	sums := make(map[string]uint32, len(names))
	var errs []error
	for _, name := range names {
		sum, err := a.Checksum(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sums[name] = sum
	}
	return sums, errors.Join(errs...)
}

// verifyAll checksums names on a bounded worker group and reports progress.
func (a *Archive) verifyAll(names []string, done, total int) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(a.verifyConcurrency)
	for _, name := range names {
		g.Go(func() error {
			_, _ = a.Checksum(name) //nolint:errcheck // failures are cached and collected by the caller
			if a.progress != nil {
				// Held across the callback so FilesDone is delivered in order.
				mu.Lock()
				done++
				a.progress(ProgressEvent{Stage: StageVerifying, Name: name, FilesDone: done, FilesTotal: total})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors
}

func (a *Archive) cachedChecksum(name string) (checksumResult, bool) {
	a.sumsMu.RLock()
	defer a.sumsMu.RUnlock()
	r, ok := a.sums[name]
	return r, ok
}

// computeChecksum reads name and compares its CRC-32 with the declared one.
func (a *Archive) computeChecksum(name string) checksumResult {
	content, err := a.idx.Read(name)
	if err != nil {
		a.log().Debug("checksum unavailable", "archive", a.name, "entry", name, "error", err)
		return checksumResult{err: &fs.PathError{Op: "checksum", Path: name, Err: err}}
	}

	sum := crc32.ChecksumIEEE(content)
	info, _ := a.idx.Lookup(name)
	if sum != info.CRC32 {
		a.reportMismatch(Mismatch{Name: name, Declared: info.CRC32, Computed: sum})
	}
	return checksumResult{sum: sum}
}

func (a *Archive) reportMismatch(m Mismatch) {
	a.log().Warn("checksum mismatch",
		"archive", a.name,
		"entry", m.Name,
		"declared", fmt.Sprintf("%08x", m.Declared),
		"computed", fmt.Sprintf("%08x", m.Computed),
	)
	if a.onMismatch != nil {
		a.onMismatch(m)
	}
}
