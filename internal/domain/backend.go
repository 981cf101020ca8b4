package domain

// RunStatus is the backend-reported state of one pipeline run. The backend
// mixes casings ("RUNNING" vs "started"); unknown values pass through
// unchanged so that new backend states keep the client polling instead of
// breaking the decode.
type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
	RunStarted   RunStatus = "started"
)

// Terminal reports whether polling should stop at this status.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// UploadResult is the backend's acknowledgement of an accepted upload.
type UploadResult struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	RunID     string `json:"runId"`
}

// StatusSnapshot is one point-in-time status response for a run. Every poll
// produces a fresh snapshot; none is mutated after decoding.
type StatusSnapshot struct {
	RunID          string          `json:"runId"`
	SessionID      string          `json:"sessionId"`
	Status         RunStatus       `json:"status"`
	StartTime      string          `json:"startTime,omitempty"`
	EndTime        string          `json:"endTime,omitempty"`
	ExecutionTime  float64         `json:"executionTime,omitempty"`
	InputFile      string          `json:"inputFile,omitempty"`
	Logs           []string        `json:"logs,omitempty"`
	Error          string          `json:"error,omitempty"`
	FrontendData   *FrontendData   `json:"frontendData,omitempty"`
	CompleteResult *CompleteResult `json:"completeResult,omitempty"`
}
