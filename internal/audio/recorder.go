// Package audio provides an ffmpeg-backed implementation of the
// ports.AudioRecorder contract for desktop hosts.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// Config describes how the microphone should be captured.
type Config struct {
	Command     string
	InputFormat string
	InputDevice string
	SampleRate  int
	Channels    int
}

// Recorder captures microphone audio into an M4A file via an ffmpeg child
// process and hands the encoded bytes back on Stop. One capture at a time.
type Recorder struct {
	cfg Config

	mu     sync.Mutex
	active *captureProcess
}

func NewRecorder(cfg Config) *Recorder {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	return &Recorder{cfg: cfg}
}

// HasPermission always reports true: desktop capture backends expose no
// runtime permission prompt. The port keeps the check for hosts that do.
func (r *Recorder) HasPermission(_ context.Context) bool { return true }

func (r *Recorder) RequestPermission(_ context.Context) (bool, error) { return true, nil }

// Start spawns ffmpeg recording into a temp file.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return errors.New("capture already in progress")
	}

	out, err := os.CreateTemp("", "klik-capture-*.m4a")
	if err != nil {
		return fmt.Errorf("creating capture file: %w", err)
	}
	path := out.Name()
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("creating capture file: %w", err)
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", r.cfg.InputFormat,
		"-i", r.cfg.InputDevice,
		"-ac", strconv.Itoa(r.cfg.Channels),
		"-ar", strconv.Itoa(r.cfg.SampleRate),
		"-c:a", "aac",
		"-y", path,
	}

	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to start %s: %w", r.cfg.Command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// Catch an encoder that dies immediately (bad device, missing codec)
	// instead of reporting a capture that never ran.
	select {
	case err := <-waitErr:
		_ = os.Remove(path)
		if err != nil {
			return fmt.Errorf("%s exited before capture started: %w: %s", r.cfg.Command, err, trimStderr(stderr.String()))
		}
		return fmt.Errorf("%s exited before capture started", r.cfg.Command)
	case <-time.After(250 * time.Millisecond):
	}

	r.active = &captureProcess{
		path:    path,
		process: cmd.Process,
		stderr:  &stderr,
		waitErr: waitErr,
	}
	return nil
}

// Stop ends the capture and returns the encoded audio bytes. The temp file
// is removed regardless of outcome.
func (r *Recorder) Stop(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	active := r.active
	r.active = nil
	r.mu.Unlock()

	if active == nil {
		return nil, errors.New("no capture in progress")
	}
	defer os.Remove(active.path)

	if err := active.stop(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(active.path)
	if err != nil {
		return nil, fmt.Errorf("reading captured audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("capture produced no audio")
	}
	return data, nil
}

type captureProcess struct {
	path    string
	process *os.Process
	stderr  *bytes.Buffer
	waitErr <-chan error
}

// stop interrupts ffmpeg so it finalizes the container, escalating to kill
// if it does not exit promptly.
func (c *captureProcess) stop() error {
	if c.process != nil {
		_ = c.process.Signal(os.Interrupt)
	}

	var stopErr error
	select {
	case err, ok := <-c.waitErr:
		if ok {
			stopErr = normalizeStopErr(err)
		}
	case <-time.After(2 * time.Second):
		if c.process != nil {
			_ = c.process.Kill()
		}
		err, ok := <-c.waitErr
		if ok {
			stopErr = normalizeStopErr(err)
		}
	}

	if stopErr != nil && c.stderr != nil && c.stderr.Len() > 0 {
		stopErr = fmt.Errorf("%w: %s", stopErr, trimStderr(c.stderr.String()))
	}
	return stopErr
}

// normalizeStopErr drops the exit error ffmpeg reports when it is stopped by
// signal; a non-zero exit is the expected shutdown path.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimStderr(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
