package apktype

// ProgressEvent represents a progress update during batch operations.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Name is the entry that just finished processing, if applicable.
	Name string

	// FilesDone is the number of entries completed.
	FilesDone int

	// FilesTotal is the total number of entries in the operation.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageVerifying indicates entry checksums are being computed.
	StageVerifying ProgressStage = iota
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageVerifying:
		return "verifying"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
