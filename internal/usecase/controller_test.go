package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"klik/internal/audio"
	"klik/internal/domain"
	"klik/internal/ports"
	"klik/internal/providers/pipeline"
)

func newTestController(recorder *fakeRecorder, backend *fakeBackend, sink *fakeSink) *SessionController {
	controller := NewSessionController(recorder, backend, sink)
	controller.newID = func() string { return "cycle-1" }
	controller.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return controller
}

func TestSessionControllerRecordAndProcessSuccess(t *testing.T) {
	t.Parallel()

	payload := &domain.FrontendData{SessionID: "s1"}
	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac-bytes")}
	backend := &fakeBackend{
		uploadResult: domain.UploadResult{SessionID: "s1", Status: "started", Message: "ok", RunID: "r1"},
		snapshots: []domain.StatusSnapshot{
			{RunID: "r1", Status: domain.RunRunning, Logs: []string{"step1"}},
		},
		final: domain.StatusSnapshot{RunID: "r1", Status: domain.RunCompleted, FrontendData: payload},
	}
	sink := &fakeSink{}
	controller := newTestController(recorder, backend, sink)

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !controller.RecordingState().IsRecording {
		t.Fatalf("expected recording state")
	}

	results, err := controller.StopAndProcess(context.Background())
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if results != payload {
		t.Fatalf("unexpected results: %+v", results)
	}
	if got := controller.Results(); got != payload {
		t.Fatalf("results not retained")
	}

	if backend.uploadCalls != 1 {
		t.Fatalf("expected exactly one upload, got %d", backend.uploadCalls)
	}
	if backend.lastOpts.SessionID != "cycle-1" || !backend.lastOpts.EnablePreprocessing {
		t.Fatalf("unexpected upload options: %+v", backend.lastOpts)
	}
	if !strings.HasPrefix(backend.lastFileName, "recording_") || !strings.HasSuffix(backend.lastFileName, ".m4a") {
		t.Fatalf("unexpected file name: %q", backend.lastFileName)
	}

	states := sink.snapshotProcessing()
	if len(states) < 4 {
		t.Fatalf("expected at least 4 processing states, got %d", len(states))
	}
	if states[0].Status != domain.ProcessingUploading || states[0].Message != "Uploading audio..." {
		t.Fatalf("unexpected first state: %+v", states[0])
	}
	if states[1].Status != domain.ProcessingRunning || states[1].RunID != "r1" {
		t.Fatalf("unexpected second state: %+v", states[1])
	}
	progressed := states[2]
	if progressed.Progress != 12 || !strings.Contains(progressed.Message, "step1") {
		t.Fatalf("unexpected progress state: %+v", progressed)
	}
	last := states[len(states)-1]
	if last.Status != domain.ProcessingCompleted || last.Progress != 100 || last.RunID != "r1" {
		t.Fatalf("unexpected final state: %+v", last)
	}

	if len(sink.snapshotResults()) != 1 {
		t.Fatalf("expected one results event")
	}
}

func TestSessionControllerStopWithoutActiveRecording(t *testing.T) {
	t.Parallel()

	controller := newTestController(&fakeRecorder{permission: true}, &fakeBackend{}, &fakeSink{})

	_, err := controller.StopAndProcess(context.Background())
	if !errors.Is(err, ErrNoActiveRecording) {
		t.Fatalf("expected ErrNoActiveRecording, got %v", err)
	}
}

func TestSessionControllerStopWithNoAudioSkipsNetwork(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true}
	backend := &fakeBackend{}
	sink := &fakeSink{}
	controller := newTestController(recorder, backend, sink)

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, err := controller.StopAndProcess(context.Background())
	if err == nil {
		t.Fatalf("expected stop error")
	}

	if backend.uploadCalls != 0 || backend.pollCalls != 0 {
		t.Fatalf("expected no network calls, got upload=%d poll=%d", backend.uploadCalls, backend.pollCalls)
	}
	if got := controller.ProcessingState(); got.Status != domain.ProcessingError || got.Message != "Failed to stop recording" {
		t.Fatalf("unexpected processing state: %+v", got)
	}
}

func TestSessionControllerPermissionDenied(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: false, requestGrant: false}
	controller := newTestController(recorder, &fakeBackend{}, &fakeSink{})

	err := controller.StartRecording(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if recorder.startCalls != 0 {
		t.Fatalf("capture must not start without permission")
	}

	state := controller.RecordingState()
	if state.IsRecording || state.Error != "Microphone permission denied" {
		t.Fatalf("unexpected recording state: %+v", state)
	}
}

func TestSessionControllerPermissionGrantedOnRequest(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: false, requestGrant: true}
	controller := newTestController(recorder, &fakeBackend{}, &fakeSink{})

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if recorder.requestCalls != 1 || recorder.startCalls != 1 {
		t.Fatalf("expected request then start, got request=%d start=%d", recorder.requestCalls, recorder.startCalls)
	}
}

func TestSessionControllerCaptureStartFailure(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true, startErr: errors.New("device busy")}
	controller := newTestController(recorder, &fakeBackend{}, &fakeSink{})

	if err := controller.StartRecording(context.Background()); err == nil {
		t.Fatalf("expected start error")
	}
	if got := controller.RecordingState(); got.Error != "Failed to start recording" {
		t.Fatalf("unexpected recording state: %+v", got)
	}
}

func TestSessionControllerUploadFailure(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac")}
	backend := &fakeBackend{
		uploadErr: &pipeline.TransportError{Op: "upload", Err: errors.New("connection refused")},
	}
	sink := &fakeSink{}
	controller := newTestController(recorder, backend, sink)

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, err := controller.StopAndProcess(context.Background())
	if err == nil {
		t.Fatalf("expected upload error")
	}

	got := controller.ProcessingState()
	if got.Status != domain.ProcessingError || !strings.HasPrefix(got.Message, "Upload failed: ") {
		t.Fatalf("unexpected processing state: %+v", got)
	}
	if !strings.Contains(got.Message, "connection refused") {
		t.Fatalf("expected underlying cause in message, got %q", got.Message)
	}

	errs := sink.snapshotErrors()
	if len(errs) == 0 || errs[len(errs)-1].code != domain.ErrorCodeNetwork {
		t.Fatalf("expected network error event, got %+v", errs)
	}
}

func TestSessionControllerRunFailure(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac")}
	backend := &fakeBackend{
		uploadResult: domain.UploadResult{RunID: "r9"},
		pollErr:      &pipeline.RunFailedError{RunID: "r9", Reason: "diarization crashed"},
	}
	sink := &fakeSink{}
	controller := newTestController(recorder, backend, sink)

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, err := controller.StopAndProcess(context.Background())
	if err == nil {
		t.Fatalf("expected run failure")
	}

	got := controller.ProcessingState()
	if got.Status != domain.ProcessingError || got.Message != "Processing failed: diarization crashed" {
		t.Fatalf("unexpected processing state: %+v", got)
	}
	if got.RunID != "r9" {
		t.Fatalf("expected runId retained on failure, got %+v", got)
	}

	errs := sink.snapshotErrors()
	if len(errs) == 0 || errs[len(errs)-1].code != domain.ErrorCodePipelineFailed {
		t.Fatalf("expected pipeline failure event, got %+v", errs)
	}
}

func TestSessionControllerCompletedWithoutPayload(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac")}
	backend := &fakeBackend{
		uploadResult: domain.UploadResult{RunID: "r2"},
		final:        domain.StatusSnapshot{RunID: "r2", Status: domain.RunCompleted},
	}
	controller := newTestController(recorder, backend, &fakeSink{})

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, err := controller.StopAndProcess(context.Background())
	if !errors.Is(err, ErrMissingResults) {
		t.Fatalf("expected ErrMissingResults, got %v", err)
	}
	if got := controller.ProcessingState(); got.Status != domain.ProcessingError || got.Message != "No results returned" {
		t.Fatalf("unexpected processing state: %+v", got)
	}
	if controller.Results() != nil {
		t.Fatalf("expected no results")
	}
}

func TestSessionControllerClearIsIdempotent(t *testing.T) {
	t.Parallel()

	payload := &domain.FrontendData{SessionID: "s1"}
	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac")}
	backend := &fakeBackend{
		uploadResult: domain.UploadResult{RunID: "r1"},
		final:        domain.StatusSnapshot{RunID: "r1", Status: domain.RunCompleted, FrontendData: payload},
	}
	controller := newTestController(recorder, backend, &fakeSink{})

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := controller.StopAndProcess(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	controller.Clear()
	first := controller.Status()
	controller.Clear()
	second := controller.Status()

	want := domain.SessionStatus{Processing: domain.ProcessingState{Status: domain.ProcessingIdle}}
	if first != want || second != want {
		t.Fatalf("expected idle status after clear, got %+v then %+v", first, second)
	}
	if controller.Results() != nil {
		t.Fatalf("expected results discarded")
	}
}

func TestSessionControllerProgressIsMonotonic(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac")}
	backend := &fakeBackend{
		uploadResult: domain.UploadResult{RunID: "r1"},
		snapshots: []domain.StatusSnapshot{
			{Status: domain.RunRunning, Logs: make([]string, 5)},
			{Status: domain.RunRunning, Logs: make([]string, 2)},
			{Status: domain.RunRunning, Logs: make([]string, 60)},
		},
		final: domain.StatusSnapshot{Status: domain.RunCompleted, FrontendData: &domain.FrontendData{}},
	}
	sink := &fakeSink{}
	controller := newTestController(recorder, backend, sink)

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := controller.StopAndProcess(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	states := sink.snapshotProcessing()
	previous := 0
	for _, state := range states {
		if state.Progress < previous {
			t.Fatalf("progress decreased: %d after %d", state.Progress, previous)
		}
		previous = state.Progress
		if state.Progress == 100 && state.Status != domain.ProcessingCompleted {
			t.Fatalf("progress reached 100 outside completed state: %+v", state)
		}
	}
	if states[len(states)-1].Progress != 100 {
		t.Fatalf("expected terminal progress 100, got %+v", states[len(states)-1])
	}
}

func TestSessionControllerStartSupersedesInFlightCycle(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac")}
	pollStarted := make(chan struct{})
	backend := &fakeBackend{
		uploadResult: domain.UploadResult{RunID: "r1"},
		pollFunc: func(ctx context.Context, _ string, _ func(domain.StatusSnapshot)) (domain.StatusSnapshot, error) {
			close(pollStarted)
			<-ctx.Done()
			return domain.StatusSnapshot{}, ctx.Err()
		},
	}
	sink := &fakeSink{}
	controller := newTestController(recorder, backend, sink)

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}

	stopDone := make(chan error, 1)
	go func() {
		_, err := controller.StopAndProcess(context.Background())
		stopDone <- err
	}()
	<-pollStarted

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}

	if err := <-stopDone; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected superseded cycle to be cancelled, got %v", err)
	}

	// The superseded cycle's terminal writes must be dropped.
	if got := controller.ProcessingState(); got.Status == domain.ProcessingError {
		t.Fatalf("superseded cycle overwrote state: %+v", got)
	}
	if !controller.RecordingState().IsRecording {
		t.Fatalf("expected new cycle to be recording")
	}
}

func TestSessionControllerProcessFile(t *testing.T) {
	t.Parallel()

	payload := &domain.FrontendData{SessionID: "s-file"}
	backend := &fakeBackend{
		uploadResult: domain.UploadResult{RunID: "r5"},
		final:        domain.StatusSnapshot{Status: domain.RunCompleted, FrontendData: payload},
	}
	controller := newTestController(&fakeRecorder{}, backend, &fakeSink{})

	results, err := controller.ProcessFile(context.Background(), []byte("aac"), "standup.m4a")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if results != payload {
		t.Fatalf("unexpected results")
	}
	if backend.lastFileName != "standup.m4a" {
		t.Fatalf("unexpected file name: %q", backend.lastFileName)
	}
}

func TestSessionControllerProcessFileRejectsEmptyAudio(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	controller := newTestController(&fakeRecorder{}, backend, &fakeSink{})

	_, err := controller.ProcessFile(context.Background(), nil, "empty.m4a")
	if err == nil {
		t.Fatalf("expected error for empty audio")
	}
	if backend.uploadCalls != 0 {
		t.Fatalf("expected no upload for empty audio")
	}
}

func TestSessionControllerClearStopsActiveCapture(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac")}
	controller := newTestController(recorder, &fakeBackend{}, &fakeSink{})

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	controller.Clear()

	if recorder.stopCalls != 1 {
		t.Fatalf("expected clear to stop the capture, got %d stop calls", recorder.stopCalls)
	}

	// Clear with nothing recording must not touch the recorder again.
	controller.Clear()
	if recorder.stopCalls != 1 {
		t.Fatalf("idle clear must not stop the capture, got %d stop calls", recorder.stopCalls)
	}
}

func TestSessionControllerSupersedeStopsActiveCapture(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{permission: true, stopBytes: []byte("aac")}
	controller := newTestController(recorder, &fakeBackend{}, &fakeSink{})

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}

	if recorder.stopCalls != 1 || recorder.startCalls != 2 {
		t.Fatalf("expected old capture stopped before the new one, got stop=%d start=%d",
			recorder.stopCalls, recorder.startCalls)
	}
}

func TestSessionControllerRecordsAgainAfterClear(t *testing.T) {
	t.Parallel()

	recorder := newScriptRecorder(t)
	controller := NewSessionController(recorder, &fakeBackend{}, &fakeSink{})

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	controller.Clear()

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("start after clear failed: %v", err)
	}
	controller.Clear()
}

func TestSessionControllerRecordsAgainAfterSupersede(t *testing.T) {
	t.Parallel()

	recorder := newScriptRecorder(t)
	controller := NewSessionController(recorder, &fakeBackend{}, &fakeSink{})

	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if err := controller.StartRecording(context.Background()); err != nil {
		t.Fatalf("restart while recording failed: %v", err)
	}
	controller.Clear()
}

// newScriptRecorder builds a real capture adapter backed by a shell script
// standing in for ffmpeg, for tests that exercise the device lifecycle.
func newScriptRecorder(t *testing.T) *audio.Recorder {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("capture scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	script := "#!/bin/sh\nout=\"\"\nfor arg in \"$@\"; do out=\"$arg\"; done\n" +
		"printf 'fake-aac' > \"$out\"\ntrap 'exit 0' INT TERM\nwhile :; do sleep 0.05; done\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return audio.NewRecorder(audio.Config{Command: path})
}

type fakeRecorder struct {
	permission   bool
	requestGrant bool
	requestErr   error
	startErr     error
	stopBytes    []byte
	stopErr      error

	requestCalls int
	startCalls   int
	stopCalls    int
}

func (f *fakeRecorder) HasPermission(_ context.Context) bool { return f.permission }

func (f *fakeRecorder) RequestPermission(_ context.Context) (bool, error) {
	f.requestCalls++
	return f.requestGrant, f.requestErr
}

func (f *fakeRecorder) Start(_ context.Context) error {
	f.startCalls++
	return f.startErr
}

func (f *fakeRecorder) Stop(_ context.Context) ([]byte, error) {
	f.stopCalls++
	return f.stopBytes, f.stopErr
}

type fakeBackend struct {
	uploadResult domain.UploadResult
	uploadErr    error
	snapshots    []domain.StatusSnapshot
	final        domain.StatusSnapshot
	pollErr      error
	pollFunc     func(ctx context.Context, runID string, onProgress func(domain.StatusSnapshot)) (domain.StatusSnapshot, error)

	mu           sync.Mutex
	uploadCalls  int
	pollCalls    int
	lastFileName string
	lastOpts     ports.UploadOptions
}

func (f *fakeBackend) Upload(_ context.Context, _ []byte, fileName string, opts ports.UploadOptions) (domain.UploadResult, error) {
	f.mu.Lock()
	f.uploadCalls++
	f.lastFileName = fileName
	f.lastOpts = opts
	f.mu.Unlock()
	if f.uploadErr != nil {
		return domain.UploadResult{}, f.uploadErr
	}
	return f.uploadResult, nil
}

func (f *fakeBackend) FetchStatus(_ context.Context, runID string) (domain.StatusSnapshot, error) {
	return domain.StatusSnapshot{RunID: runID}, nil
}

func (f *fakeBackend) PollUntilTerminal(ctx context.Context, runID string, onProgress func(domain.StatusSnapshot)) (domain.StatusSnapshot, error) {
	f.mu.Lock()
	f.pollCalls++
	f.mu.Unlock()

	if f.pollFunc != nil {
		return f.pollFunc(ctx, runID, onProgress)
	}
	for _, snapshot := range f.snapshots {
		if onProgress != nil {
			onProgress(snapshot)
		}
	}
	if f.pollErr != nil {
		return domain.StatusSnapshot{}, f.pollErr
	}
	if onProgress != nil {
		onProgress(f.final)
	}
	return f.final, nil
}

type sinkError struct {
	code   domain.ErrorCode
	detail string
}

type fakeSink struct {
	mu          sync.Mutex
	recordings  []domain.RecordingState
	processings []domain.ProcessingState
	results     []*domain.FrontendData
	errors      []sinkError
}

func (f *fakeSink) RecordingStateChanged(state domain.RecordingState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordings = append(f.recordings, state)
}

func (f *fakeSink) ProcessingStateChanged(state domain.ProcessingState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processings = append(f.processings, state)
}

func (f *fakeSink) ResultsReady(results *domain.FrontendData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, results)
}

func (f *fakeSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, sinkError{code: code, detail: detail})
}

func (f *fakeSink) snapshotProcessing() []domain.ProcessingState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ProcessingState, len(f.processings))
	copy(out, f.processings)
	return out
}

func (f *fakeSink) snapshotResults() []*domain.FrontendData {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.FrontendData, len(f.results))
	copy(out, f.results)
	return out
}

func (f *fakeSink) snapshotErrors() []sinkError {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sinkError, len(f.errors))
	copy(out, f.errors)
	return out
}
