package ports

import (
	"context"

	"klik/internal/domain"
)

// AudioRecorder captures microphone audio for one session at a time.
type AudioRecorder interface {
	// HasPermission reports whether microphone access is already granted.
	HasPermission(ctx context.Context) bool
	// RequestPermission blocks until the user responds; the grant may be
	// denied without an error.
	RequestPermission(ctx context.Context) (bool, error)
	// Start begins capturing. It fails if permission is missing or the
	// capture resource is busy.
	Start(ctx context.Context) error
	// Stop ends capturing and returns the encoded audio bytes. It returns
	// an error when no capture was active or the encoder produced nothing.
	Stop(ctx context.Context) ([]byte, error)
}

// UploadOptions carries the optional fields of a pipeline upload.
type UploadOptions struct {
	SessionID           string
	EnablePreprocessing bool
}

// PipelineBackend wraps the processing backend's upload and status surface.
// Implementations are stateless and safe to share across sessions.
type PipelineBackend interface {
	Upload(ctx context.Context, audio []byte, fileName string, opts UploadOptions) (domain.UploadResult, error)
	FetchStatus(ctx context.Context, runID string) (domain.StatusSnapshot, error)
	// PollUntilTerminal fetches status until the run completes or fails.
	// onProgress is invoked after every successful fetch, before the status
	// is interpreted. A single fetch failure aborts the poll cycle.
	PollUntilTerminal(ctx context.Context, runID string, onProgress func(domain.StatusSnapshot)) (domain.StatusSnapshot, error)
}

// StateSink receives session state slices as they change. Implementations
// must not block; the session publishes from its own cycle.
type StateSink interface {
	RecordingStateChanged(state domain.RecordingState)
	ProcessingStateChanged(state domain.ProcessingState)
	ResultsReady(results *domain.FrontendData)
	SessionError(code domain.ErrorCode, detail string)
}
