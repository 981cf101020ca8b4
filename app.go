package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"klik/internal/bootstrap"
	"klik/internal/config"
	"klik/internal/domain"
	"klik/internal/log"
	"klik/internal/providers/meetinginfo"
	"klik/internal/providers/pipeline"
	"klik/internal/state"
	"klik/internal/usecase"
)

const (
	eventRecording  = "klik:recording"
	eventProcessing = "klik:processing"
	eventResults    = "klik:results"
	eventError      = "klik:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller  *usecase.SessionController
	backend     *pipeline.Client
	meetingInfo *meetinginfo.Client
	appState    *state.AppState
	cfg         config.Config
	bootErr     error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	log.Configure(log.Config{})

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.backend = services.Backend
	a.meetingInfo = services.MeetingInfo
	a.appState = services.AppState
}

func (a *App) shutdown(_ context.Context) {
	if a.controller != nil {
		a.controller.Clear()
	}
}

// StartRecording begins a new recording cycle.
func (a *App) StartRecording() (domain.SessionStatus, error) {
	if err := a.requireReady(); err != nil {
		return domain.SessionStatus{}, err
	}
	if err := a.controller.StartRecording(a.ctx); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// StopAndProcess stops the recording, uploads the audio and blocks until
// the backend run finishes. State events keep the UI updated meanwhile.
func (a *App) StopAndProcess() (*domain.FrontendData, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.controller.StopAndProcess(a.ctx)
}

// ClearSession resets the session to idle and discards results.
func (a *App) ClearSession() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.controller.Clear()
	return nil
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.SessionStatus {
	if a.controller == nil {
		status := domain.SessionStatus{
			Processing: domain.ProcessingState{Status: domain.ProcessingIdle},
		}
		if a.bootErr != nil {
			status.Processing.Status = domain.ProcessingError
			status.Processing.Message = a.bootErr.Error()
		}
		return status
	}
	return a.controller.Status()
}

// GetResults returns the latest completed payload, or nil.
func (a *App) GetResults() *domain.FrontendData {
	if a.controller == nil {
		return nil
	}
	return a.controller.Results()
}

// GetTimeline returns the schedule timeline for display.
func (a *App) GetTimeline() []state.TimelineDay {
	if a.appState == nil {
		return nil
	}
	return a.appState.Timeline()
}

// GetTranscripts returns the transcript records for display.
func (a *App) GetTranscripts() []state.TranscriptRecord {
	if a.appState == nil {
		return nil
	}
	return a.appState.Transcripts()
}

// GetTasks returns the operations board entries.
func (a *App) GetTasks() []state.OperationTask {
	if a.appState == nil {
		return nil
	}
	return a.appState.Tasks()
}

// GetMeetingInfo performs the single-shot meeting-info fetch.
func (a *App) GetMeetingInfo() (meetinginfo.MeetingInfo, error) {
	if err := a.requireReady(); err != nil {
		return meetinginfo.MeetingInfo{}, err
	}
	return a.meetingInfo.Fetch(a.ctx)
}

// HealthCheck verifies the backend is reachable. Diagnostics only.
func (a *App) HealthCheck() (map[string]any, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.backend.Health(a.ctx)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	return map[string]string{
		"backendUrl":   a.cfg.Backend.BaseURL,
		"pollInterval": a.cfg.Backend.PollInterval.String(),
		"audioInput":   a.cfg.Audio.InputDevice,
		"audioFormat":  a.cfg.Audio.InputFormat,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// RecordingStateChanged emits recording state updates to the frontend.
func (a *App) RecordingStateChanged(state domain.RecordingState) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventRecording, state)
}

// ProcessingStateChanged emits processing state updates to the frontend.
func (a *App) ProcessingStateChanged(state domain.ProcessingState) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventProcessing, state)
}

// ResultsReady emits the completed payload to the frontend.
func (a *App) ResultsReady(results *domain.FrontendData) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventResults, results)
}

// SessionError emits session errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodePermission:
		return "Microphone permission denied"
	case domain.ErrorCodeCapture:
		return "Audio capture failed"
	case domain.ErrorCodeNetwork:
		return "Backend unreachable"
	case domain.ErrorCodeProtocol:
		return "Backend returned an unexpected response"
	case domain.ErrorCodePipelineFailed:
		return "Processing failed"
	case domain.ErrorCodeTimeout:
		return "Processing timed out"
	case domain.ErrorCodeMissingPayload:
		return "No results returned"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
