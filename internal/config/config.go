// Package config resolves runtime configuration from an optional TOML file
// and KLIK_* environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultBackendURL is the processing pipeline deployment the mobile
	// builds ship with.
	DefaultBackendURL = "http://86.38.238.159:8000"
	// DefaultMeetingInfoURL is the mock meeting-info endpoint.
	DefaultMeetingInfoURL = "https://9262c16f-1921-49fe-9d8d-7ea34ec7f042.mock.pstmn.io"
)

// Config stores runtime configuration for the client.
type Config struct {
	Backend     BackendConfig
	Audio       AudioConfig
	MeetingInfo MeetingInfoConfig
	Log         LogConfig
}

type BackendConfig struct {
	BaseURL      string
	PollInterval time.Duration
	MaxAttempts  int
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type MeetingInfoConfig struct {
	BaseURL string
}

type LogConfig struct {
	Level string
}

// fileConfig is the on-disk shape of ~/.config/klik/config.toml.
type fileConfig struct {
	BackendURL      string `toml:"backend_url"`
	PollIntervalMS  int    `toml:"poll_interval_ms"`
	MaxPollAttempts int    `toml:"max_poll_attempts"`
	FFmpegCommand   string `toml:"ffmpeg_command"`
	InputFormat     string `toml:"audio_input_format"`
	InputDevice     string `toml:"audio_input_device"`
	SampleRate      int    `toml:"sample_rate"`
	Channels        int    `toml:"channels"`
	MeetingInfoURL  string `toml:"meeting_info_url"`
	LogLevel        string `toml:"log_level"`
}

// Load resolves configuration: defaults, then the config file, then
// environment variables. Invalid values fall back instead of failing.
func Load() (Config, error) {
	cfg := Config{
		Backend: BackendConfig{
			BaseURL:      DefaultBackendURL,
			PollInterval: 3 * time.Second,
			MaxAttempts:  200,
		},
		Audio: AudioConfig{
			RecorderCommand: "ffmpeg",
			InputFormat:     "pulse",
			InputDevice:     "default",
			SampleRate:      16000,
			Channels:        1,
		},
		MeetingInfo: MeetingInfoConfig{BaseURL: DefaultMeetingInfoURL},
	}

	if path := configFilePath(); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err == nil {
			applyFileConfig(&cfg, fc)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Backend.PollInterval <= 0 {
		cfg.Backend.PollInterval = 3 * time.Second
	}
	if cfg.Backend.MaxAttempts <= 0 {
		cfg.Backend.MaxAttempts = 200
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}

	return cfg, nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.BackendURL != "" {
		cfg.Backend.BaseURL = fc.BackendURL
	}
	if fc.PollIntervalMS > 0 {
		cfg.Backend.PollInterval = time.Duration(fc.PollIntervalMS) * time.Millisecond
	}
	if fc.MaxPollAttempts > 0 {
		cfg.Backend.MaxAttempts = fc.MaxPollAttempts
	}
	if fc.FFmpegCommand != "" {
		cfg.Audio.RecorderCommand = fc.FFmpegCommand
	}
	if fc.InputFormat != "" {
		cfg.Audio.InputFormat = fc.InputFormat
	}
	if fc.InputDevice != "" {
		cfg.Audio.InputDevice = fc.InputDevice
	}
	if fc.SampleRate > 0 {
		cfg.Audio.SampleRate = fc.SampleRate
	}
	if fc.Channels > 0 {
		cfg.Audio.Channels = fc.Channels
	}
	if fc.MeetingInfoURL != "" {
		cfg.MeetingInfo.BaseURL = fc.MeetingInfoURL
	}
	if fc.LogLevel != "" {
		cfg.Log.Level = fc.LogLevel
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.Backend.BaseURL = envOrDefault("KLIK_BACKEND_URL", cfg.Backend.BaseURL)
	if ms := envOrDefaultInt("KLIK_POLL_INTERVAL_MS", 0); ms > 0 {
		cfg.Backend.PollInterval = time.Duration(ms) * time.Millisecond
	}
	if attempts := envOrDefaultInt("KLIK_MAX_POLL_ATTEMPTS", 0); attempts > 0 {
		cfg.Backend.MaxAttempts = attempts
	}
	cfg.Audio.RecorderCommand = envOrDefault("KLIK_FFMPEG_COMMAND", cfg.Audio.RecorderCommand)
	cfg.Audio.InputFormat = envOrDefault("KLIK_AUDIO_INPUT_FORMAT", cfg.Audio.InputFormat)
	cfg.Audio.InputDevice = envOrDefault("KLIK_AUDIO_INPUT_DEVICE", cfg.Audio.InputDevice)
	cfg.Audio.SampleRate = envOrDefaultInt("KLIK_SAMPLE_RATE", cfg.Audio.SampleRate)
	cfg.Audio.Channels = envOrDefaultInt("KLIK_CHANNELS", cfg.Audio.Channels)
	cfg.MeetingInfo.BaseURL = envOrDefault("KLIK_MEETING_INFO_URL", cfg.MeetingInfo.BaseURL)
	cfg.Log.Level = envOrDefault("KLIK_LOG_LEVEL", cfg.Log.Level)
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "klik")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "klik")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
