package bootstrap

import (
	"klik/internal/domain"
	"klik/internal/ports"
)

// fanOutSink forwards session state to every sink in order.
type fanOutSink []ports.StateSink

func (f fanOutSink) RecordingStateChanged(state domain.RecordingState) {
	for _, s := range f {
		s.RecordingStateChanged(state)
	}
}

func (f fanOutSink) ProcessingStateChanged(state domain.ProcessingState) {
	for _, s := range f {
		s.ProcessingStateChanged(state)
	}
}

func (f fanOutSink) ResultsReady(results *domain.FrontendData) {
	for _, s := range f {
		s.ResultsReady(results)
	}
}

func (f fanOutSink) SessionError(code domain.ErrorCode, detail string) {
	for _, s := range f {
		s.SessionError(code, detail)
	}
}
