package apk

import "github.com/meigma/apk/internal/apktype"

// Re-export progress types from internal/apktype.
type (
	// ProgressEvent represents a progress update during batch operations.
	ProgressEvent = apktype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = apktype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	ProgressFunc = apktype.ProgressFunc
)

// StageVerifying indicates entry checksums are being computed.
const StageVerifying = apktype.StageVerifying
