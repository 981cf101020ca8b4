// Package bootstrap wires the runtime dependency graph.
package bootstrap

import (
	"klik/internal/audio"
	"klik/internal/config"
	"klik/internal/ports"
	"klik/internal/providers/meetinginfo"
	"klik/internal/providers/pipeline"
	"klik/internal/state"
	"klik/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller  *usecase.SessionController
	Backend     *pipeline.Client
	MeetingInfo *meetinginfo.Client
	AppState    *state.AppState
	Config      config.Config
}

// Build wires all backend dependencies for the current runtime. The sink
// receives session state changes in addition to the AppState aggregate.
func Build(sink ports.StateSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	backend := pipeline.New(pipeline.Config{
		BaseURL:      cfg.Backend.BaseURL,
		PollInterval: cfg.Backend.PollInterval,
		MaxAttempts:  cfg.Backend.MaxAttempts,
	})

	appState := state.NewAppState()
	recorder := audio.NewRecorder(audio.Config{
		Command:     cfg.Audio.RecorderCommand,
		InputFormat: cfg.Audio.InputFormat,
		InputDevice: cfg.Audio.InputDevice,
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
	})

	sinks := fanOutSink{appState}
	if sink != nil {
		sinks = append(sinks, sink)
	}
	controller := usecase.NewSessionController(recorder, backend, sinks)

	return Services{
		Controller:  controller,
		Backend:     backend,
		MeetingInfo: meetinginfo.New(cfg.MeetingInfo.BaseURL),
		AppState:    appState,
		Config:      cfg,
	}, nil
}
