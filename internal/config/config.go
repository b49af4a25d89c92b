package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type HotkeyConfig struct {
	Modifier string `yaml:"modifier"`
	Key      string `yaml:"key"`
}

type AudioConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	FrameSize  int    `yaml:"frame_size"`
	Mode       string `yaml:"mode"`
	Command    string `yaml:"command"`
	Format     string `yaml:"format"`
}

type RecordingConfig struct {
	SilenceThreshold float64 `yaml:"silence_threshold"`
	TrimPaddingMS    int     `yaml:"trim_padding_ms"`
	MinRecordingMS   int     `yaml:"min_recording_ms"`
	LevelFloor       float64 `yaml:"level_floor"`
}

type WatchdogConfig struct {
	IntervalMS      int     `yaml:"interval_ms"`
	SpeechThreshold float64 `yaml:"speech_threshold"`
	SilenceMS       int     `yaml:"silence_ms"`
	MaxRecordingMS  int     `yaml:"max_recording_ms"`
}

type STTConfig struct {
	Mode      string `yaml:"mode"`
	Command   string `yaml:"command"`
	ModelPath string `yaml:"model_path"`
	Language  string `yaml:"language"`
}

type InjectConfig struct {
	CopyCommand  string `yaml:"copy_command"`
	PasteCommand string `yaml:"paste_command"`
	SettleMS     int    `yaml:"settle_ms"`
}

type HistoryConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSessions   int    `yaml:"max_sessions"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type Config struct {
	DaemonName  string          `yaml:"daemon_name"`
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Bus         BusConfig       `yaml:"bus"`
	Hotkey      HotkeyConfig    `yaml:"hotkey"`
	Audio       AudioConfig     `yaml:"audio"`
	Recording   RecordingConfig `yaml:"recording"`
	Watchdog    WatchdogConfig  `yaml:"watchdog"`
	STT         STTConfig       `yaml:"stt"`
	Inject      InjectConfig    `yaml:"inject"`
	History     HistoryConfig   `yaml:"history"`
}

func Default() Config {
	return Config{
		DaemonName:  "voxholdd",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "127.0.0.1",
			Port: 8090,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9092",
		},
		Bus: BusConfig{
			Enabled:        false,
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Hotkey: HotkeyConfig{
			Modifier: "ctrl",
			Key:      "space",
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			FrameSize:  1024,
			Mode:       "exec",
			Command:    "parec --format=float32le --rate=16000 --channels=1 --raw",
			Format:     "f32le",
		},
		Recording: RecordingConfig{
			SilenceThreshold: 0.01,
			TrimPaddingMS:    100,
			MinRecordingMS:   500,
			LevelFloor:       0.0001,
		},
		Watchdog: WatchdogConfig{
			IntervalMS:      5000,
			SpeechThreshold: 0.05,
			SilenceMS:       15000,
			MaxRecordingMS:  180000,
		},
		STT: STTConfig{
			Mode:      "mock",
			ModelPath: "",
			Language:  "en",
		},
		Inject: InjectConfig{
			CopyCommand:  "wl-copy",
			PasteCommand: "wtype -M ctrl -P v -m ctrl",
			SettleMS:     100,
		},
		History: HistoryConfig{
			Path:          "./data/voxhold-history.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxSessions:   10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.DaemonName, "VOXHOLD_DAEMON_NAME")
	overrideString(&cfg.Environment, "VOXHOLD_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "VOXHOLD_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "VOXHOLD_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "VOXHOLD_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "VOXHOLD_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "VOXHOLD_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "VOXHOLD_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Enabled, "VOXHOLD_BUS_ENABLED")
	overrideBool(&cfg.Bus.Embedded, "VOXHOLD_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "VOXHOLD_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "VOXHOLD_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "VOXHOLD_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "VOXHOLD_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "VOXHOLD_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "VOXHOLD_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "VOXHOLD_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.Hotkey.Modifier, "VOXHOLD_HOTKEY_MODIFIER")
	overrideString(&cfg.Hotkey.Key, "VOXHOLD_HOTKEY_KEY")
	overrideInt(&cfg.Audio.SampleRate, "VOXHOLD_AUDIO_SAMPLE_RATE")
	overrideInt(&cfg.Audio.Channels, "VOXHOLD_AUDIO_CHANNELS")
	overrideInt(&cfg.Audio.FrameSize, "VOXHOLD_AUDIO_FRAME_SIZE")
	overrideString(&cfg.Audio.Mode, "VOXHOLD_AUDIO_MODE")
	overrideString(&cfg.Audio.Command, "VOXHOLD_AUDIO_COMMAND")
	overrideString(&cfg.Audio.Format, "VOXHOLD_AUDIO_FORMAT")
	overrideFloat(&cfg.Recording.SilenceThreshold, "VOXHOLD_RECORDING_SILENCE_THRESHOLD")
	overrideInt(&cfg.Recording.TrimPaddingMS, "VOXHOLD_RECORDING_TRIM_PADDING_MS")
	overrideInt(&cfg.Recording.MinRecordingMS, "VOXHOLD_RECORDING_MIN_RECORDING_MS")
	overrideFloat(&cfg.Recording.LevelFloor, "VOXHOLD_RECORDING_LEVEL_FLOOR")
	overrideInt(&cfg.Watchdog.IntervalMS, "VOXHOLD_WATCHDOG_INTERVAL_MS")
	overrideFloat(&cfg.Watchdog.SpeechThreshold, "VOXHOLD_WATCHDOG_SPEECH_THRESHOLD")
	overrideInt(&cfg.Watchdog.SilenceMS, "VOXHOLD_WATCHDOG_SILENCE_MS")
	overrideInt(&cfg.Watchdog.MaxRecordingMS, "VOXHOLD_WATCHDOG_MAX_RECORDING_MS")
	overrideString(&cfg.STT.Mode, "VOXHOLD_STT_MODE")
	overrideString(&cfg.STT.Command, "VOXHOLD_STT_COMMAND")
	overrideString(&cfg.STT.ModelPath, "VOXHOLD_STT_MODEL_PATH")
	overrideString(&cfg.STT.Language, "VOXHOLD_STT_LANGUAGE")
	overrideString(&cfg.Inject.CopyCommand, "VOXHOLD_INJECT_COPY_COMMAND")
	overrideString(&cfg.Inject.PasteCommand, "VOXHOLD_INJECT_PASTE_COMMAND")
	overrideInt(&cfg.Inject.SettleMS, "VOXHOLD_INJECT_SETTLE_MS")
	overrideString(&cfg.History.Path, "VOXHOLD_HISTORY_PATH")
	overrideString(&cfg.History.RetentionMode, "VOXHOLD_HISTORY_RETENTION_MODE")
	overrideInt(&cfg.History.RetentionDays, "VOXHOLD_HISTORY_RETENTION_DAYS")
	overrideInt(&cfg.History.MaxSessions, "VOXHOLD_HISTORY_MAX_SESSIONS")
	overrideBool(&cfg.History.VacuumOnStart, "VOXHOLD_HISTORY_VACUUM_ON_START")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.DaemonName == "" {
		return errors.New("daemon_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Enabled {
		if cfg.Bus.Embedded {
			if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
				return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
			}
		} else if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	switch cfg.Hotkey.Modifier {
	case "ctrl", "shift", "alt", "super":
	default:
		return errors.New("hotkey.modifier must be one of ctrl|shift|alt|super")
	}
	if cfg.Hotkey.Key == "" {
		return errors.New("hotkey.key must not be empty")
	}
	if cfg.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if cfg.Audio.Channels <= 0 {
		return errors.New("audio.channels must be positive")
	}
	if cfg.Audio.FrameSize <= 0 {
		return errors.New("audio.frame_size must be positive")
	}
	switch cfg.Audio.Mode {
	case "exec", "script":
	default:
		return errors.New("audio.mode must be one of exec|script")
	}
	if cfg.Audio.Mode == "exec" && cfg.Audio.Command == "" {
		return errors.New("audio.command must be set when mode=exec")
	}
	switch cfg.Audio.Format {
	case "f32le", "s16le":
	default:
		return errors.New("audio.format must be one of f32le|s16le")
	}
	if cfg.Recording.SilenceThreshold <= 0 {
		return errors.New("recording.silence_threshold must be positive")
	}
	if cfg.Recording.TrimPaddingMS < 0 {
		return errors.New("recording.trim_padding_ms must be >= 0")
	}
	if cfg.Recording.MinRecordingMS < 0 {
		return errors.New("recording.min_recording_ms must be >= 0")
	}
	if cfg.Recording.LevelFloor < 0 {
		return errors.New("recording.level_floor must be >= 0")
	}
	if cfg.Watchdog.IntervalMS <= 0 {
		return errors.New("watchdog.interval_ms must be positive")
	}
	if cfg.Watchdog.SpeechThreshold < cfg.Recording.SilenceThreshold {
		return errors.New("watchdog.speech_threshold must not be below recording.silence_threshold")
	}
	if cfg.Watchdog.SilenceMS <= cfg.Watchdog.IntervalMS {
		return errors.New("watchdog.silence_ms must be greater than watchdog.interval_ms")
	}
	if cfg.Watchdog.MaxRecordingMS <= cfg.Watchdog.SilenceMS {
		return errors.New("watchdog.max_recording_ms must be greater than watchdog.silence_ms")
	}
	switch cfg.STT.Mode {
	case "mock", "whisper", "exec":
	default:
		return errors.New("stt.mode must be one of mock|whisper|exec")
	}
	if cfg.STT.Mode == "whisper" && cfg.STT.ModelPath == "" {
		return errors.New("stt.model_path must be set when mode=whisper")
	}
	if cfg.STT.Mode == "exec" && cfg.STT.Command == "" {
		return errors.New("stt.command must be set when mode=exec")
	}
	if cfg.Inject.CopyCommand == "" {
		return errors.New("inject.copy_command must not be empty")
	}
	if cfg.Inject.SettleMS < 0 {
		return errors.New("inject.settle_ms must be >= 0")
	}
	if cfg.History.Path == "" {
		return errors.New("history.path must not be empty")
	}
	switch cfg.History.RetentionMode {
	case "ephemeral", "session", "persistent":
		// ok
	default:
		return errors.New("history.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.History.RetentionDays < 0 {
		return errors.New("history.retention_days must be >= 0")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	return nil
}
