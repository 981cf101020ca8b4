package cli

import (
	"klik/internal/domain"
	"klik/internal/output"
)

// ProgressSink streams session state changes to the terminal while a record
// or process command is running.
type ProgressSink struct {
	f *output.Formatter
}

func NewProgressSink(f *output.Formatter) *ProgressSink {
	return &ProgressSink{f: f}
}

func (s *ProgressSink) RecordingStateChanged(state domain.RecordingState) {
	if state.Error != "" {
		s.f.Warning(state.Error)
	}
}

func (s *ProgressSink) ProcessingStateChanged(state domain.ProcessingState) {
	if state.Status == domain.ProcessingIdle {
		return
	}
	s.f.Processing(state)
}

func (s *ProgressSink) ResultsReady(_ *domain.FrontendData) {}

func (s *ProgressSink) SessionError(_ domain.ErrorCode, _ string) {
	// Errors already surface through the processing state messages.
}
