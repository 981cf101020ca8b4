package domain

// ProcessingStatus models the upload-and-process lifecycle.
type ProcessingStatus string

const (
	ProcessingIdle      ProcessingStatus = "idle"
	ProcessingUploading ProcessingStatus = "uploading"
	ProcessingRunning   ProcessingStatus = "processing"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingError     ProcessingStatus = "error"
)

// ErrorCode identifies non-fatal and fatal session errors.
type ErrorCode string

const (
	ErrorCodeStartup        ErrorCode = "startup"
	ErrorCodePermission     ErrorCode = "permission_denied"
	ErrorCodeCapture        ErrorCode = "capture"
	ErrorCodeNetwork        ErrorCode = "network"
	ErrorCodeProtocol       ErrorCode = "protocol"
	ErrorCodePipelineFailed ErrorCode = "pipeline_failed"
	ErrorCodeTimeout        ErrorCode = "timeout"
	ErrorCodeMissingPayload ErrorCode = "missing_payload"
)

// RecordingState describes the microphone side of one session cycle.
type RecordingState struct {
	IsRecording bool   `json:"isRecording"`
	DurationMS  int64  `json:"durationMs"`
	Error       string `json:"error,omitempty"`
}

// ProcessingState describes the upload/poll side of one session cycle.
// RunID is set once the upload has been accepted by the backend. Progress
// stays in [0,100] and never decreases within one cycle while processing.
type ProcessingState struct {
	Status   ProcessingStatus `json:"status"`
	Message  string           `json:"message"`
	RunID    string           `json:"runId,omitempty"`
	Progress int              `json:"progress"`
}

// SessionStatus summarizes the current session for UI consumers.
type SessionStatus struct {
	Recording  RecordingState  `json:"recording"`
	Processing ProcessingState `json:"processing"`
	HasResults bool            `json:"hasResults"`
}
