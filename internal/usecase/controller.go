package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"klik/internal/domain"
	"klik/internal/log"
	"klik/internal/ports"
)

var (
	ErrNoActiveRecording = errors.New("no active recording session")
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrMissingResults    = errors.New("no results returned")
)

// SessionController owns one recording-to-result lifecycle: it coordinates
// the audio recorder and the pipeline backend and publishes RecordingState,
// ProcessingState and the final results to the sink.
//
// Overlapping cycles are resolved by cancel-and-supersede: StartRecording
// (and ProcessFile) cancels any in-flight cycle before opening a new one,
// so at most one cycle mutates state at a time.
type SessionController struct {
	recorder ports.AudioRecorder
	backend  ports.PipelineBackend
	sink     ports.StateSink
	logger   zerolog.Logger

	newID func() string
	now   func() time.Time

	mu         sync.Mutex
	cycle      *sessionCycle
	recording  domain.RecordingState
	processing domain.ProcessingState
	results    *domain.FrontendData
}

func NewSessionController(recorder ports.AudioRecorder, backend ports.PipelineBackend, sink ports.StateSink) *SessionController {
	return &SessionController{
		recorder:   recorder,
		backend:    backend,
		sink:       sink,
		logger:     log.WithComponent("session"),
		newID:      uuid.NewString,
		now:        time.Now,
		processing: defaultProcessingState(),
	}
}

// StartRecording begins a new capture cycle, requesting microphone
// permission first if it is not already granted.
func (c *SessionController) StartRecording(ctx context.Context) error {
	if !c.recorder.HasPermission(ctx) {
		granted, err := c.recorder.RequestPermission(ctx)
		if err != nil || !granted {
			state := domain.RecordingState{Error: "Microphone permission denied"}
			c.mu.Lock()
			c.recording = state
			c.mu.Unlock()
			c.sink.RecordingStateChanged(state)
			if err != nil {
				c.sink.SessionError(domain.ErrorCodePermission, err.Error())
				return fmt.Errorf("requesting microphone permission: %w", err)
			}
			c.sink.SessionError(domain.ErrorCodePermission, "user declined microphone access")
			return ErrPermissionDenied
		}
	}

	cycle := c.beginCycle(ctx)
	if err := c.recorder.Start(cycle.ctx); err != nil {
		c.publishRecording(cycle, domain.RecordingState{Error: "Failed to start recording"})
		c.sink.SessionError(domain.ErrorCodeCapture, err.Error())
		cycle.cancel()
		return fmt.Errorf("starting capture: %w", err)
	}

	c.logger.Debug().Str("sessionId", cycle.id).Msg("recording started")
	c.publishRecording(cycle, domain.RecordingState{IsRecording: true})
	return nil
}

// StopAndProcess stops the capture, uploads the audio and polls the backend
// run to its terminal status. It blocks until the cycle finishes; callers
// that need fire-and-forget run it in a goroutine and follow the sink.
func (c *SessionController) StopAndProcess(ctx context.Context) (*domain.FrontendData, error) {
	c.mu.Lock()
	cycle := c.cycle
	active := cycle != nil && c.recording.IsRecording
	c.mu.Unlock()
	if !active {
		return nil, ErrNoActiveRecording
	}

	audio, err := c.recorder.Stop(ctx)
	c.publishRecording(cycle, domain.RecordingState{
		DurationMS: c.now().Sub(cycle.startedAt).Milliseconds(),
	})

	if err != nil || len(audio) == 0 {
		c.publishProcessing(cycle, domain.ProcessingState{
			Status:  domain.ProcessingError,
			Message: "Failed to stop recording",
		})
		if err != nil {
			c.sink.SessionError(domain.ErrorCodeCapture, err.Error())
			return nil, fmt.Errorf("stopping capture: %w", err)
		}
		c.sink.SessionError(domain.ErrorCodeCapture, "capture produced no audio")
		return nil, errors.New("failed to stop recording")
	}

	fileName := fmt.Sprintf("recording_%d.m4a", c.now().UnixMilli())
	return c.process(cycle, audio, fileName)
}

// ProcessFile runs the upload-and-poll tail of a cycle for audio that was
// captured elsewhere, e.g. a file passed to the CLI.
func (c *SessionController) ProcessFile(ctx context.Context, audio []byte, fileName string) (*domain.FrontendData, error) {
	cycle := c.beginCycle(ctx)
	if len(audio) == 0 {
		c.publishProcessing(cycle, domain.ProcessingState{
			Status:  domain.ProcessingError,
			Message: "Failed to stop recording",
		})
		c.sink.SessionError(domain.ErrorCodeCapture, "no audio data")
		return nil, errors.New("no audio data")
	}
	if fileName == "" {
		fileName = fmt.Sprintf("recording_%d.m4a", c.now().UnixMilli())
	}
	return c.process(cycle, audio, fileName)
}

func (c *SessionController) process(cycle *sessionCycle, audio []byte, fileName string) (*domain.FrontendData, error) {
	c.publishProcessing(cycle, domain.ProcessingState{
		Status:  domain.ProcessingUploading,
		Message: "Uploading audio...",
	})

	upload, err := c.backend.Upload(cycle.ctx, audio, fileName, ports.UploadOptions{
		SessionID:           cycle.id,
		EnablePreprocessing: true,
	})
	if err != nil {
		c.publishProcessing(cycle, domain.ProcessingState{
			Status:  domain.ProcessingError,
			Message: "Upload failed: " + err.Error(),
		})
		c.sink.SessionError(errorCodeFor(err), err.Error())
		return nil, err
	}

	runID := upload.RunID
	c.logger.Debug().Str("sessionId", cycle.id).Str("runId", runID).Msg("upload accepted")
	c.publishProcessing(cycle, domain.ProcessingState{
		Status:  domain.ProcessingRunning,
		Message: "Processing audio...",
		RunID:   runID,
	})

	final, err := c.backend.PollUntilTerminal(cycle.ctx, runID, func(snapshot domain.StatusSnapshot) {
		message := "Processing..."
		if len(snapshot.Logs) > 0 {
			message = "Processing... " + snapshot.Logs[len(snapshot.Logs)-1]
		}
		c.publishProcessing(cycle, domain.ProcessingState{
			Status:   domain.ProcessingRunning,
			Message:  message,
			RunID:    runID,
			Progress: cycle.clampProgress(estimateProgress(snapshot)),
		})
	})
	if err != nil {
		c.publishProcessing(cycle, domain.ProcessingState{
			Status:  domain.ProcessingError,
			Message: "Processing failed: " + err.Error(),
			RunID:   runID,
		})
		c.sink.SessionError(errorCodeFor(err), err.Error())
		return nil, err
	}

	// A completed run must carry a payload; absence is a backend contract
	// violation, not something to ignore.
	if final.FrontendData == nil {
		c.publishProcessing(cycle, domain.ProcessingState{
			Status:  domain.ProcessingError,
			Message: "No results returned",
			RunID:   runID,
		})
		c.sink.SessionError(domain.ErrorCodeMissingPayload, "completed run carried no frontend data")
		return nil, ErrMissingResults
	}

	done := domain.ProcessingState{
		Status:   domain.ProcessingCompleted,
		Message:  "Processing complete!",
		RunID:    runID,
		Progress: 100,
	}

	c.mu.Lock()
	current := c.cycle == cycle
	if current {
		c.results = final.FrontendData
		c.processing = done
	}
	c.mu.Unlock()

	if current {
		c.sink.ProcessingStateChanged(done)
		c.sink.ResultsReady(final.FrontendData)
	}
	return final.FrontendData, nil
}

// Clear discards all transient state and returns the session to idle. Safe
// to call at any time; calling it twice yields the same state.
func (c *SessionController) Clear() {
	c.mu.Lock()
	cycle := c.cycle
	wasRecording := c.recording.IsRecording
	c.cycle = nil
	c.recording = domain.RecordingState{}
	c.processing = defaultProcessingState()
	c.results = nil
	c.mu.Unlock()

	if cycle != nil {
		cycle.cancel()
	}
	if wasRecording {
		// Release the capture device; the discarded audio is not wanted.
		_, _ = c.recorder.Stop(context.Background())
	}
	c.sink.RecordingStateChanged(domain.RecordingState{})
	c.sink.ProcessingStateChanged(defaultProcessingState())
}

// RecordingState returns the current recording state slice.
func (c *SessionController) RecordingState() domain.RecordingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// ProcessingState returns the current processing state slice.
func (c *SessionController) ProcessingState() domain.ProcessingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Results returns the latest completed payload, or nil.
func (c *SessionController) Results() *domain.FrontendData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// Status returns the combined session status.
func (c *SessionController) Status() domain.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.SessionStatus{
		Recording:  c.recording,
		Processing: c.processing,
		HasResults: c.results != nil,
	}
}

// beginCycle opens a new cycle, cancelling and superseding any previous one.
func (c *SessionController) beginCycle(ctx context.Context) *sessionCycle {
	cycleCtx, cancel := context.WithCancel(ctx)
	cycle := &sessionCycle{
		id:        c.newID(),
		ctx:       cycleCtx,
		cancel:    cancel,
		startedAt: c.now(),
	}

	c.mu.Lock()
	previous := c.cycle
	wasRecording := c.recording.IsRecording
	c.cycle = cycle
	c.recording = domain.RecordingState{}
	c.mu.Unlock()

	if previous != nil {
		previous.cancel()
		if wasRecording {
			// Release the capture device so the new cycle can record.
			_, _ = c.recorder.Stop(cycle.ctx)
		}
		c.logger.Debug().Str("sessionId", cycle.id).Msg("superseded previous cycle")
	}
	return cycle
}

// publishRecording stores and emits a recording state unless the cycle has
// been superseded.
func (c *SessionController) publishRecording(cycle *sessionCycle, state domain.RecordingState) {
	c.mu.Lock()
	if c.cycle != cycle {
		c.mu.Unlock()
		return
	}
	c.recording = state
	c.mu.Unlock()
	c.sink.RecordingStateChanged(state)
}

// publishProcessing stores and emits a processing state unless the cycle has
// been superseded.
func (c *SessionController) publishProcessing(cycle *sessionCycle, state domain.ProcessingState) {
	c.mu.Lock()
	if c.cycle != cycle {
		c.mu.Unlock()
		return
	}
	c.processing = state
	c.mu.Unlock()
	c.sink.ProcessingStateChanged(state)
}

func defaultProcessingState() domain.ProcessingState {
	return domain.ProcessingState{Status: domain.ProcessingIdle}
}

// errorCodeFor maps backend errors onto session error codes via the
// Code method the pipeline error types implement.
func errorCodeFor(err error) domain.ErrorCode {
	var coded interface{ Code() domain.ErrorCode }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return domain.ErrorCodeNetwork
}
