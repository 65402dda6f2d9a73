package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Controller.Number != 0 {
		t.Errorf("Controller.Number = %d, want 0", cfg.Controller.Number)
	}
	if cfg.Controller.RSSIThreshold != -70 {
		t.Errorf("Controller.RSSIThreshold = %d, want -70", cfg.Controller.RSSIThreshold)
	}
	if cfg.Transport.Backend != "bluez" {
		t.Errorf("Transport.Backend = %q, want %q", cfg.Transport.Backend, "bluez")
	}
	if cfg.Transport.InitRetries != 3 || cfg.Transport.InitRetryDelay != 500*time.Millisecond {
		t.Errorf("Transport retries = %d/%s, want 3/500ms", cfg.Transport.InitRetries, cfg.Transport.InitRetryDelay)
	}
	if cfg.LED.Line != -1 {
		t.Errorf("LED.Line = %d, want -1", cfg.LED.Line)
	}
	if cfg.Loop.TickInterval != 5*time.Millisecond {
		t.Errorf("Loop.TickInterval = %s, want 5ms", cfg.Loop.TickInterval)
	}
	if cfg.MQTT.Enabled() {
		t.Error("MQTT should be disabled by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestDefaultNeedsControllerNumber(t *testing.T) {
	if err := Default().Validate(); err == nil {
		t.Error("Validate() should reject the default config until controller.number is set")
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
controller:
  number: 7
  device_name: LEFT-PADDLE
  rssi_threshold: -60
  debug: true
transport:
  backend: hci
  hci_device: 1
  init_retry_delay: 250ms
led:
  line: 17
input:
  source: mouse
  dead_zone: 0.2
loop:
  tick_interval: 10ms
mqtt:
  broker: tcp://localhost:1883
log_level: debug
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Controller.Number != 7 || !cfg.Controller.Debug {
		t.Errorf("Controller = %+v, want number 7 with debug", cfg.Controller)
	}
	if cfg.DeviceName() != "LEFT-PADDLE" {
		t.Errorf("DeviceName() = %q, want %q", cfg.DeviceName(), "LEFT-PADDLE")
	}
	if cfg.Controller.RSSIThreshold != -60 {
		t.Errorf("RSSIThreshold = %d, want -60", cfg.Controller.RSSIThreshold)
	}
	if cfg.Transport.Backend != "hci" || cfg.Transport.HCIDevice != 1 {
		t.Errorf("Transport = %+v, want hci device 1", cfg.Transport)
	}
	if cfg.Transport.InitRetryDelay != 250*time.Millisecond {
		t.Errorf("InitRetryDelay = %s, want 250ms", cfg.Transport.InitRetryDelay)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Transport.InitRetries != 3 {
		t.Errorf("InitRetries = %d, want default 3", cfg.Transport.InitRetries)
	}
	if cfg.LED.Chip != "gpiochip0" || cfg.LED.Line != 17 {
		t.Errorf("LED = %+v, want gpiochip0 line 17", cfg.LED)
	}
	if cfg.Input.Source != "mouse" || cfg.Input.DeadZone != 0.2 {
		t.Errorf("Input = %+v, want mouse with dead zone 0.2", cfg.Input)
	}
	if cfg.Loop.TickInterval != 10*time.Millisecond {
		t.Errorf("TickInterval = %s, want 10ms", cfg.Loop.TickInterval)
	}
	if !cfg.MQTT.Enabled() {
		t.Error("MQTT should be enabled when a broker is set")
	}
	if got := cfg.StatusTopic(); got != "dfpong/controller/7/status" {
		t.Errorf("StatusTopic() = %q", got)
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	yamlContent := `
input:
  source: wav
  wav_path: ~/recordings/rally.wav
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := filepath.Join(home, "recordings/rally.wav")
	if cfg.Input.WavPath != expected {
		t.Errorf("WavPath = %q, want %q", cfg.Input.WavPath, expected)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("controller: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"number zero", func(c *Config) { c.Controller.Number = 0 }, true},
		{"number 242", func(c *Config) { c.Controller.Number = 242 }, false},
		{"number 243", func(c *Config) { c.Controller.Number = 243 }, true},
		{"unknown backend", func(c *Config) { c.Transport.Backend = "corebluetooth" }, true},
		{"zero retries", func(c *Config) { c.Transport.InitRetries = 0 }, true},
		{"negative retry delay", func(c *Config) { c.Transport.InitRetryDelay = -time.Second }, true},
		{"led line without chip", func(c *Config) { c.LED.Line = 4; c.LED.Chip = "" }, true},
		{"empty up keys", func(c *Config) { c.Input.UpKeys = nil }, true},
		{"mouse dead zone too large", func(c *Config) { c.Input.Source = "mouse"; c.Input.DeadZone = 1 }, true},
		{"audio levels inverted", func(c *Config) { c.Input.Source = "audio"; c.Input.UpLevel = 0.05 }, true},
		{"audio ok", func(c *Config) { c.Input.Source = "audio" }, false},
		{"wav without path", func(c *Config) { c.Input.Source = "wav" }, true},
		{"wav ok", func(c *Config) { c.Input.Source = "wav"; c.Input.WavPath = "/tmp/a.wav" }, false},
		{"unknown source", func(c *Config) { c.Input.Source = "joystick" }, true},
		{"tick at notification interval", func(c *Config) { c.Loop.TickInterval = 20 * time.Millisecond }, true},
		{"zero tick", func(c *Config) { c.Loop.TickInterval = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Controller.Number = 1
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeviceNameDefault(t *testing.T) {
	cfg := Default()
	cfg.Controller.Number = 42
	if got := cfg.DeviceName(); got != "DFPONG-42" {
		t.Errorf("DeviceName() = %q, want %q", got, "DFPONG-42")
	}
	cfg.MQTT.Topic = "arena/left"
	if got := cfg.StatusTopic(); got != "arena/left" {
		t.Errorf("StatusTopic() = %q, want %q", got, "arena/left")
	}
}

func TestWriteDefault_CreatesFile(t *testing.T) {
	// Use a temp dir as fake home to avoid touching real config
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	path, err := WriteDefault("")
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	expectedPath := filepath.Join(tmpHome, ".config", "dfpong-controller", "config.yaml")
	if path != expectedPath {
		t.Errorf("WriteDefault() path = %q, want %q", path, expectedPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# dfpong-controller") {
		t.Error("written config should start with header comment")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Transport.InitRetryDelay != 500*time.Millisecond {
		t.Errorf("written InitRetryDelay = %s, want 500ms", cfg.Transport.InitRetryDelay)
	}
	if cfg.Input.Source != "keyboard" {
		t.Errorf("written Input.Source = %q, want keyboard", cfg.Input.Source)
	}
}

func TestWriteDefault_NoOpIfExists(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	existingContent := []byte("controller:\n  number: 9\n")
	if err := os.WriteFile(configPath, existingContent, 0644); err != nil {
		t.Fatalf("failed to write existing config: %v", err)
	}

	path, err := WriteDefault(configPath)
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if path != "" {
		t.Errorf("WriteDefault() path = %q, want empty string for existing file", path)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(data) != string(existingContent) {
		t.Error("WriteDefault() should not overwrite existing config file")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"unknown", slog.LevelInfo}, // defaults to info
		{"", slog.LevelInfo},        // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
