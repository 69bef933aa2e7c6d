package apk

import (
	"fmt"
	"iter"
)

// unavailable is the checksum placeholder for entries that could not be read.
const unavailable = "unavailable"

// ReportEntry is one row of the per-entry report.
type ReportEntry struct {
	Name     string
	Label    Label
	Checksum uint32

	// Err is set when the checksum could not be computed.
	Err error
}

// Available reports whether Checksum holds a computed value.
func (e ReportEntry) Available() bool {
	return e.Err == nil
}

// ChecksumString returns the checksum as eight hex digits, or "unavailable".
func (e ReportEntry) ChecksumString() string {
	if !e.Available() {
		return unavailable
	}
	return fmt.Sprintf("%08x", e.Checksum)
}

// Report returns an iterator over every entry with its label and verified
// checksum, in archive order.
//
// Rows are computed as they are pulled. A checksum failure yields a row
// with Err set instead of ending the iteration.
func (a *Archive) Report() iter.Seq[ReportEntry] {
	return func(yield func(ReportEntry) bool) {
		for _, name := range a.idx.Names() {
			sum, err := a.Checksum(name)
			if !yield(ReportEntry{Name: name, Label: Classify(name), Checksum: sum, Err: err}) {
				return
			}
		}
	}
}
