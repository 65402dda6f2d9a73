package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Transport  TransportConfig  `yaml:"transport"`
	LED        LEDConfig        `yaml:"led"`
	Input      InputConfig      `yaml:"input"`
	Loop       LoopConfig       `yaml:"loop"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	LogLevel   string           `yaml:"log_level"`
}

// ControllerConfig identifies this controller to the game.
type ControllerConfig struct {
	Number        int    `yaml:"number"`      // 1..242
	DeviceName    string `yaml:"device_name"` // empty = DFPONG-<number>
	RSSIThreshold int    `yaml:"rssi_threshold"`
	Debug         bool   `yaml:"debug"`
}

// TransportConfig selects and tunes the BLE backend.
type TransportConfig struct {
	Backend        string        `yaml:"backend"`    // "bluez" or "hci"
	HCIDevice      int           `yaml:"hci_device"` // -1 = first available
	InitRetries    int           `yaml:"init_retries"`
	InitRetryDelay time.Duration `yaml:"init_retry_delay"`
}

// LEDConfig locates the status LED on a GPIO character device.
type LEDConfig struct {
	Chip string `yaml:"chip"`
	Line int    `yaml:"line"` // -1 = no LED
}

// InputConfig selects where paddle directions come from.
type InputConfig struct {
	Source     string   `yaml:"source"` // "keyboard", "mouse", "audio" or "wav"
	UpKeys     []string `yaml:"up_keys"`
	DownKeys   []string `yaml:"down_keys"`
	DeadZone   float64  `yaml:"dead_zone"`
	UpLevel    float64  `yaml:"up_level"`
	DownLevel  float64  `yaml:"down_level"`
	WavPath    string   `yaml:"wav_path"`
	SampleRate uint32   `yaml:"sample_rate"`
}

// LoopConfig controls the main loop cadence.
type LoopConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// MQTTConfig enables optional status publishing.
type MQTTConfig struct {
	Broker string `yaml:"broker"` // empty = disabled
	Topic  string `yaml:"topic"`  // empty = dfpong/controller/<number>/status
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// maxTickInterval keeps the loop faster than the notification interval.
const maxTickInterval = 20 * time.Millisecond

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dfpong-controller")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values. The controller
// number has no sensible default and is left at 0.
func Default() *Config {
	return &Config{
		Controller: ControllerConfig{
			RSSIThreshold: -70,
		},
		Transport: TransportConfig{
			Backend:        "bluez",
			HCIDevice:      -1,
			InitRetries:    3,
			InitRetryDelay: 500 * time.Millisecond,
		},
		LED: LEDConfig{
			Chip: "gpiochip0",
			Line: -1,
		},
		Input: InputConfig{
			Source:     "keyboard",
			UpKeys:     []string{"up", "w"},
			DownKeys:   []string{"down", "s"},
			DeadZone:   0.15,
			UpLevel:    0.30,
			DownLevel:  0.10,
			SampleRate: 16000,
		},
		Loop: LoopConfig{
			TickInterval: 5 * time.Millisecond,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in input.wav_path is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Input.WavPath = expandTilde(cfg.Input.WavPath)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Controller.Number < 1 || c.Controller.Number > 242 {
		return fmt.Errorf("controller.number must be between 1 and 242, got %d", c.Controller.Number)
	}

	switch c.Transport.Backend {
	case "bluez", "hci":
	default:
		return fmt.Errorf("transport.backend must be \"bluez\" or \"hci\", got %q", c.Transport.Backend)
	}
	if c.Transport.InitRetries < 1 {
		return fmt.Errorf("transport.init_retries must be >= 1")
	}
	if c.Transport.InitRetryDelay < 0 {
		return fmt.Errorf("transport.init_retry_delay must not be negative")
	}

	if c.LED.Line >= 0 && c.LED.Chip == "" {
		return fmt.Errorf("led.chip must not be empty when led.line is set")
	}

	switch c.Input.Source {
	case "keyboard":
		if len(c.Input.UpKeys) == 0 || len(c.Input.DownKeys) == 0 {
			return fmt.Errorf("input.up_keys and input.down_keys must not be empty")
		}
	case "mouse":
		if c.Input.DeadZone < 0 || c.Input.DeadZone >= 1 {
			return fmt.Errorf("input.dead_zone must be in [0, 1), got %v", c.Input.DeadZone)
		}
	case "audio", "wav":
		if c.Input.DownLevel <= 0 || c.Input.UpLevel <= c.Input.DownLevel {
			return fmt.Errorf("input levels must satisfy 0 < down_level < up_level")
		}
		if c.Input.SampleRate == 0 {
			return fmt.Errorf("input.sample_rate must be > 0")
		}
		if c.Input.Source == "wav" && c.Input.WavPath == "" {
			return fmt.Errorf("input.wav_path is required when input.source is \"wav\"")
		}
	default:
		return fmt.Errorf("input.source must be keyboard, mouse, audio, or wav, got %q", c.Input.Source)
	}

	if c.Loop.TickInterval <= 0 || c.Loop.TickInterval >= maxTickInterval {
		return fmt.Errorf("loop.tick_interval must be in (0, %s), got %s", maxTickInterval, c.Loop.TickInterval)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// DeviceName returns the configured advertised name or DFPONG-<number>.
func (c *Config) DeviceName() string {
	if c.Controller.DeviceName != "" {
		return c.Controller.DeviceName
	}
	return fmt.Sprintf("DFPONG-%d", c.Controller.Number)
}

// StatusTopic returns the MQTT topic for session status.
func (c *Config) StatusTopic() string {
	if c.MQTT.Topic != "" {
		return c.MQTT.Topic
	}
	return fmt.Sprintf("dfpong/controller/%d/status", c.Controller.Number)
}

const defaultHeader = `# dfpong-controller configuration
# controller.number must be set (1..242) before the controller will start.
`

// WriteDefault writes the default config to path, or to DefaultConfigPath
// when path is empty. It returns the written path, or "" if a file is
// already there.
func WriteDefault(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return "", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking config file: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// ParseLogLevel maps a config log level to slog. Unknown values are info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
