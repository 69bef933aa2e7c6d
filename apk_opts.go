package apk

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// defaultVerifyConcurrency is used when no WithVerifyConcurrency option is set.
const defaultVerifyConcurrency = 4

// WithLogger sets the logger used for diagnostics.
// If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithName sets the display name of the archive.
// By default the name is derived from the content digest.
func WithName(name string) Option {
	return func(a *Archive) {
		a.name = name
	}
}

// WithMaxFileSize limits the decompressed size of a single entry.
// Set limit to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(a *Archive) {
		a.maxFileSize = limit
	}
}

// WithMaxDecoderMemory limits the memory used by zstd entry decoders.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(a *Archive) {
		a.maxDecoderMemory = limit
	}
}

// WithMaxArchiveSize limits how many bytes OpenSource and OpenFile will
// buffer. Set limit to 0 to disable the limit. Open ignores it.
func WithMaxArchiveSize(limit uint64) Option {
	return func(a *Archive) {
		a.maxArchiveSize = limit
	}
}

// WithMismatchHandler registers fn to receive checksum mismatch diagnostics
// in addition to the warning written to the logger.
func WithMismatchHandler(fn MismatchFunc) Option {
	return func(a *Archive) {
		a.onMismatch = fn
	}
}

// WithProgress registers fn to receive progress updates from Checksums.
// Calls are serialized and FilesDone increases with every event.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Archive) {
		a.progress = fn
	}
}

// WithVerifyConcurrency sets how many entries Checksums verifies in parallel.
// Values <= 0 use the default (4).
func WithVerifyConcurrency(n int) Option {
	return func(a *Archive) {
		if n <= 0 {
			n = defaultVerifyConcurrency
		}
		a.verifyConcurrency = n
	}
}
