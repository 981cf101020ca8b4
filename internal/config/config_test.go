package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolateEnv points the config file lookup at an empty directory and blanks
// every override so each test starts from defaults.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{
		"KLIK_BACKEND_URL", "KLIK_POLL_INTERVAL_MS", "KLIK_MAX_POLL_ATTEMPTS",
		"KLIK_FFMPEG_COMMAND", "KLIK_AUDIO_INPUT_FORMAT", "KLIK_AUDIO_INPUT_DEVICE",
		"KLIK_SAMPLE_RATE", "KLIK_CHANNELS", "KLIK_MEETING_INFO_URL", "KLIK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func writeConfigFile(t *testing.T, dir string, contents string) {
	t.Helper()
	configDir := filepath.Join(dir, "klik")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Backend.BaseURL != DefaultBackendURL {
		t.Fatalf("unexpected backend url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.PollInterval != 3*time.Second || cfg.Backend.MaxAttempts != 200 {
		t.Fatalf("unexpected polling defaults: %+v", cfg.Backend)
	}
	if cfg.Audio.RecorderCommand != "ffmpeg" || cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.MeetingInfo.BaseURL != DefaultMeetingInfoURL {
		t.Fatalf("unexpected meeting info url: %q", cfg.MeetingInfo.BaseURL)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := isolateEnv(t)
	writeConfigFile(t, dir, `
backend_url = "http://localhost:8000"
poll_interval_ms = 500
max_poll_attempts = 10
ffmpeg_command = "/opt/ffmpeg/bin/ffmpeg"
audio_input_device = "hw:1"
sample_rate = 48000
log_level = "debug"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected backend url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.PollInterval != 500*time.Millisecond || cfg.Backend.MaxAttempts != 10 {
		t.Fatalf("unexpected polling config: %+v", cfg.Backend)
	}
	if cfg.Audio.RecorderCommand != "/opt/ffmpeg/bin/ffmpeg" || cfg.Audio.InputDevice != "hw:1" || cfg.Audio.SampleRate != 48000 {
		t.Fatalf("unexpected audio config: %+v", cfg.Audio)
	}
	// Fields the file omits keep their defaults.
	if cfg.Audio.InputFormat != "pulse" || cfg.Audio.Channels != 1 {
		t.Fatalf("omitted fields lost defaults: %+v", cfg.Audio)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := isolateEnv(t)
	writeConfigFile(t, dir, `backend_url = "http://from-file:8000"`)
	t.Setenv("KLIK_BACKEND_URL", "http://from-env:9000")
	t.Setenv("KLIK_POLL_INTERVAL_MS", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Backend.BaseURL != "http://from-env:9000" {
		t.Fatalf("env override lost: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.PollInterval != 250*time.Millisecond {
		t.Fatalf("unexpected poll interval: %v", cfg.Backend.PollInterval)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	isolateEnv(t)
	t.Setenv("KLIK_SAMPLE_RATE", "not-a-number")
	t.Setenv("KLIK_CHANNELS", "-3")
	t.Setenv("KLIK_POLL_INTERVAL_MS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("invalid audio values not clamped: %+v", cfg.Audio)
	}
	if cfg.Backend.PollInterval != 3*time.Second {
		t.Fatalf("invalid interval not clamped: %v", cfg.Backend.PollInterval)
	}
}
