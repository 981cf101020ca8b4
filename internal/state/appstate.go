// Package state aggregates the session's outputs alongside the static
// content collections the UI renders.
package state

import (
	"fmt"
	"sync"
	"time"

	"klik/internal/domain"
)

// AppState is the display-side aggregate: the pipeline session writes into
// it (single writer), UI surfaces read copies from it. It implements
// ports.StateSink so it can be chained behind the event-emitting sink.
type AppState struct {
	now func() time.Time

	mu          sync.Mutex
	recording   domain.RecordingState
	processing  domain.ProcessingState
	results     *domain.FrontendData
	lastError   string
	timeline    []TimelineDay
	transcripts []TranscriptRecord
	tasks       []OperationTask
}

func NewAppState() *AppState {
	now := time.Now
	return &AppState{
		now:         now,
		processing:  domain.ProcessingState{Status: domain.ProcessingIdle},
		timeline:    sampleTimeline(now()),
		transcripts: sampleTranscripts(now()),
		tasks:       sampleTasks(),
	}
}

func (a *AppState) RecordingStateChanged(state domain.RecordingState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recording = state
}

func (a *AppState) ProcessingStateChanged(state domain.ProcessingState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.processing = state
	if state.Status == domain.ProcessingIdle {
		a.results = nil
	}
}

// ResultsReady stores the payload and folds it into the transcripts list.
func (a *AppState) ResultsReady(results *domain.FrontendData) {
	if results == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = results
	a.transcripts = append(a.transcripts, transcriptRecordFrom(results, a.now()))
	for _, todo := range results.Todos.Items {
		a.tasks = append(a.tasks, OperationTask{
			ID:       todo.ID,
			Text:     todo.Text,
			Assignee: todo.Assignee,
			Status:   todo.Status,
			Priority: todo.Priority,
		})
	}
}

func (a *AppState) SessionError(_ domain.ErrorCode, detail string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = detail
}

func (a *AppState) RecordingState() domain.RecordingState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recording
}

func (a *AppState) ProcessingState() domain.ProcessingState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.processing
}

func (a *AppState) Results() *domain.FrontendData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.results
}

func (a *AppState) LastError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastError
}

func (a *AppState) Timeline() []TimelineDay {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]TimelineDay, len(a.timeline))
	copy(out, a.timeline)
	return out
}

func (a *AppState) Transcripts() []TranscriptRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]TranscriptRecord, len(a.transcripts))
	copy(out, a.transcripts)
	return out
}

func (a *AppState) Tasks() []OperationTask {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]OperationTask, len(a.tasks))
	copy(out, a.tasks)
	return out
}

func transcriptRecordFrom(results *domain.FrontendData, now time.Time) TranscriptRecord {
	record := TranscriptRecord{
		ID:           results.SessionID,
		Title:        fmt.Sprintf("Recording %s", now.Format("2006-01-02 15:04")),
		RecordedAt:   now,
		Speakers:     results.Transcript.SpeakersDetected,
		SegmentCount: len(results.Transcript.Segments),
		TodoCount:    len(results.Todos.Items),
	}
	if len(results.Transcript.Segments) > 0 {
		record.Preview = results.Transcript.Segments[0].Text
	}
	return record
}
