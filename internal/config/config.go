package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds the process settings. Per-bank flags and volume live in the
// settings store, not here.
type Config struct {
	Addr         string `yaml:"addr" env:"BANKNOTIFY_ADDR" env-default:":8080"`
	SettingsPath string `yaml:"settings" env:"BANKNOTIFY_SETTINGS" env-default:"bank_preferences.yaml"`
	JournalPath  string `yaml:"journal" env:"BANKNOTIFY_JOURNAL" env-default:""`
	LogLevel     string `yaml:"log_level" env:"BANKNOTIFY_LOG_LEVEL" env-default:"info"`

	Audio AudioConfig `yaml:"audio"`
}

// AudioConfig selects the external commands used for playback.
type AudioConfig struct {
	ChimeCommand  string `yaml:"chime_command" env:"BANKNOTIFY_CHIME_CMD" env-default:"paplay"`
	ChimeFile     string `yaml:"chime_file" env:"BANKNOTIFY_CHIME_FILE" env-default:"ting.wav"`
	SpeechCommand string `yaml:"speech_command" env:"BANKNOTIFY_SPEECH_CMD" env-default:"espeak-ng"`
	Voice         string `yaml:"voice" env:"BANKNOTIFY_VOICE" env-default:"vi"`
	QueueSize     int    `yaml:"queue_size" env:"BANKNOTIFY_QUEUE_SIZE" env-default:"16"`
}

// Load reads an optional .env file, then the YAML file named by
// BANKNOTIFY_CONFIG if set, otherwise the environment alone.
func Load() (Config, error) {
	loadEnvFile()

	var cfg Config
	if path := os.Getenv("BANKNOTIFY_CONFIG"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config from environment: %w", err)
	}

	if cfg.Audio.QueueSize < 1 {
		cfg.Audio.QueueSize = 1
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadEnvFile() {
	envFile := ".env"
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(candidate); err == nil {
			envFile = candidate
		}
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found (using environment variables or defaults)")
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}
