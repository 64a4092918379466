package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultPollIntervalMS = 10
	defaultMinDurationMS  = 1000
	defaultKeyDelayMS     = 50
	defaultStatusTail     = 10
	defaultStateDirLinux  = ".local/state/blitz"
	defaultConfigDir      = ".config/blitz"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Hotkey struct {
		Key            string `toml:"key"`              // fn, ctrl, rctrl, alt, ralt, shift, rshift, cmd, rcmd, f13..f20
		PollIntervalMS int    `toml:"poll_interval_ms"` // fn poller only
	} `toml:"hotkey"`

	Audio struct {
		DeviceName      string `toml:"device_name"`
		SampleRate      int    `toml:"sample_rate"`
		Channels        int    `toml:"channels"`
		FramesPerBuffer int    `toml:"frames_per_buffer"`
	} `toml:"audio"`

	ASR struct {
		ModelPath string `toml:"model_path"`
		Language  string `toml:"language"`
		Threads   int    `toml:"threads"` // 0 = NumCPU
	} `toml:"asr"`

	Inject struct {
		Method           string `toml:"method"` // paste, type
		RestoreClipboard bool   `toml:"restore_clipboard"`
		KeyDelayMS       int    `toml:"key_delay_ms"`
	} `toml:"inject"`

	Session struct {
		MinDurationMS     int  `toml:"min_duration_ms"`
		TrimSilence       bool `toml:"trim_silence"`
		VADAggressiveness int  `toml:"vad_aggressiveness"`
		KeepAudio         bool `toml:"keep_audio"`
	} `toml:"session"`

	Volume struct {
		DuckMusic bool `toml:"duck_music"`
	} `toml:"volume"`

	Hook struct {
		Command    string            `toml:"command"`
		Args       []string          `toml:"args"`
		Prefix     string            `toml:"prefix"`
		TimeoutSec float64           `toml:"timeout_sec"`
		Env        map[string]string `toml:"env"`
	} `toml:"hook"`

	Notify struct {
		Enabled bool `toml:"enabled"`
	} `toml:"notify"`

	Logging struct {
		Level  string `toml:"level"`  // debug, info, warn, error
		Format string `toml:"format"` // text, json
		Stdout bool   `toml:"stdout"`
	} `toml:"logging"`

	Paths struct {
		StateDir       string `toml:"state_dir"`
		LogPath        string `toml:"log_path"`
		TranscriptPath string `toml:"transcript_path"`
		SocketPath     string `toml:"socket_path"`
		PidPath        string `toml:"pid_path"`
		ConfigPath     string `toml:"-"`
	} `toml:"paths"`

	UI struct {
		StatusTail int `toml:"status_tail"`
	} `toml:"ui"`

	Metrics struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"metrics"`

	Transcripts struct {
		Enabled bool `toml:"enabled"`
	} `toml:"transcripts"`
}

// defaultHotkey picks the platform's push-to-talk key: fn on macOS,
// ctrl elsewhere.
func defaultHotkey() string {
	if isMac() {
		return "fn"
	}
	return "ctrl"
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	// macOS prefers ~/Library/Application Support/blitz for state/logs
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "blitz")
	}

	cfg := &Config{}

	cfg.Hotkey.Key = defaultHotkey()
	cfg.Hotkey.PollIntervalMS = defaultPollIntervalMS

	cfg.Audio.SampleRate = 16000
	cfg.Audio.Channels = 1
	cfg.Audio.FramesPerBuffer = 1024

	cfg.ASR.ModelPath = filepath.Join(stateDir, "models", "ggml-base.en.bin")
	cfg.ASR.Language = "auto"
	cfg.ASR.Threads = 0

	cfg.Inject.Method = "paste"
	cfg.Inject.RestoreClipboard = true
	cfg.Inject.KeyDelayMS = defaultKeyDelayMS

	cfg.Session.MinDurationMS = defaultMinDurationMS
	cfg.Session.TrimSilence = true
	cfg.Session.VADAggressiveness = 2
	cfg.Session.KeepAudio = false

	cfg.Volume.DuckMusic = isMac()

	cfg.Hook.TimeoutSec = 5
	cfg.Hook.Env = map[string]string{}

	cfg.Notify.Enabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "blitz.log")
	cfg.Paths.TranscriptPath = filepath.Join(stateDir, "transcripts.log")
	cfg.Paths.SocketPath = filepath.Join(stateDir, "blitz.sock")
	cfg.Paths.PidPath = filepath.Join(stateDir, "blitz.pid")

	cfg.UI.StatusTail = defaultStatusTail

	cfg.Metrics.Enabled = false
	cfg.Metrics.Addr = "127.0.0.1:9343"

	cfg.Transcripts.Enabled = true

	return cfg, nil
}

// DefaultPath returns the standard config location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, defaultConfigDir, "config.toml"), nil
}

// Load reads config from path, or from the default location when
// path is empty. A missing file is not an error: the defaults are
// written there so the operator has a template to edit.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := Save(cfg, path); err != nil {
			return nil, err
		}
		cfg.Paths.ConfigPath = path
		return cfg, nil
	case err != nil:
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths creates every directory the daemon writes into.
// Paths are individually overridable, so each is handled on its own.
func MustStatePaths(cfg *Config) error {
	dirs := []string{
		cfg.Paths.StateDir,
		filepath.Dir(cfg.Paths.LogPath),
		filepath.Dir(cfg.Paths.TranscriptPath),
		filepath.Dir(cfg.Paths.SocketPath),
		filepath.Dir(cfg.Paths.PidPath),
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// applyEnvOverrides layers BLITZ_* variables over the file. Used by
// start/serve to pass per-run flags to the daemon process.
func applyEnvOverrides(cfg *Config) {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	flag := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" {
			*dst = envBool(v)
		}
	}
	str("BLITZ_HOTKEY", &cfg.Hotkey.Key)
	str("BLITZ_LOG_LEVEL", &cfg.Logging.Level)
	str("BLITZ_LOG_FORMAT", &cfg.Logging.Format)
	flag("BLITZ_TRANSCRIPTS_ENABLED", &cfg.Transcripts.Enabled)
	flag("BLITZ_NOTIFY_ENABLED", &cfg.Notify.Enabled)
	flag("BLITZ_DUCK_MUSIC", &cfg.Volume.DuckMusic)
	if v := os.Getenv("BLITZ_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
}

func envBool(v string) bool {
	return v != "0" && !strings.EqualFold(v, "false")
}
