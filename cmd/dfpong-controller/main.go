//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble"
	"github.com/dfpong/dfpong-controller/internal/config"
	"github.com/dfpong/dfpong-controller/internal/input"
	"github.com/dfpong/dfpong-controller/internal/led"
	"github.com/dfpong/dfpong-controller/internal/mqtt"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/dfpong-controller/config.yaml)")
	number := flag.Int("number", 0, "controller number 1-242 (overrides config)")
	backend := flag.String("backend", "", "BLE backend: bluez or hci (overrides config)")
	writeConfig := flag.Bool("write-config", false, "write a default config file and exit")
	flag.Parse()

	if *writeConfig {
		path, err := config.WriteDefault(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		if path == "" {
			fmt.Println("Config file already exists, leaving it untouched")
			return
		}
		fmt.Printf("Default config written to %s\n", path)
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *number != 0 {
		cfg.Controller.Number = *number
	}
	if *backend != "" {
		cfg.Transport.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	level := config.ParseLogLevel(cfg.LogLevel)
	if cfg.Controller.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	printBanner(cfg)

	if err := run(cfg); err != nil {
		slog.Error("controller stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Goodbye!")
	// Exit directly to avoid gohook's C cleanup crash.
	// The OS reclaims the event hook on process exit.
	os.Exit(0)
}

func run(cfg *config.Config) error {
	transport := newTransport(cfg)

	opts := ble.DefaultControllerOptions()
	opts.ControllerNumber = cfg.Controller.Number
	opts.Debug = cfg.Controller.Debug
	opts.RSSIThreshold = cfg.Controller.RSSIThreshold
	opts.InitRetries = cfg.Transport.InitRetries
	opts.InitRetryDelay = cfg.Transport.InitRetryDelay

	if cfg.LED.Line >= 0 {
		line, err := led.NewRealLine(cfg.LED.Chip, cfg.LED.Line)
		if err != nil {
			slog.Warn("[LED] status LED unavailable", "chip", cfg.LED.Chip, "line", cfg.LED.Line, "error", err)
		} else {
			defer line.Close()
			opts.StatusLED = line
		}
	}

	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.StatusTopic(), cfg.Controller.Number)
		if err != nil {
			slog.Warn("[MQTT] status publishing disabled", "broker", cfg.MQTT.Broker, "error", err)
		} else {
			reporter := mqtt.NewReporter(pub, mqtt.DefaultQueueSize)
			defer reporter.Close()
			opts.Observer = reporter
			slog.Info("[MQTT] publishing status", "broker", cfg.MQTT.Broker, "topic", cfg.StatusTopic(), "connected", reporter.Connected())
		}
	}

	src, err := newSource(cfg)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	defer src.Close()

	ctrl := ble.NewController(transport, opts)
	defer ctrl.Close()

	if err := ctrl.Start(cfg.DeviceName()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Ready! Connect from the game. Ctrl+C to quit.", "name", ctrl.DeviceName())
	err = ctrl.Run(ctx, src, cfg.Loop.TickInterval)
	if errors.Is(err, context.Canceled) {
		slog.Info("Shutting down...")
		return nil
	}
	return err
}

func newTransport(cfg *config.Config) ble.Transport {
	switch cfg.Transport.Backend {
	case "hci":
		return ble.NewHCITransport(cfg.Transport.HCIDevice)
	default:
		return ble.NewTinyGoTransport(nil)
	}
}

func newSource(cfg *config.Config) (input.Source, error) {
	in := cfg.Input
	switch in.Source {
	case "mouse":
		return input.NewMouse(in.DeadZone), nil
	case "audio":
		return input.NewMicrophone(in.SampleRate, in.UpLevel, in.DownLevel)
	case "wav":
		return input.LoadWav(in.WavPath, 100*time.Millisecond, in.UpLevel, in.DownLevel)
	default:
		return input.NewKeyboard(in.UpKeys, in.DownKeys), nil
	}
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		fmt.Printf("Config loaded from %s\n", defaultPath)
		return cfg, nil
	}

	// No config file, use defaults
	fmt.Println("No config file found, using defaults")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== dfpong-controller ===")
	fmt.Printf("  Controller: %d (%s)\n", cfg.Controller.Number, cfg.DeviceName())
	fmt.Printf("  Backend:    %s\n", cfg.Transport.Backend)
	fmt.Printf("  Input:      %s\n", describeInput(cfg.Input))
	if cfg.LED.Line >= 0 {
		fmt.Printf("  LED:        %s line %d\n", cfg.LED.Chip, cfg.LED.Line)
	}
	if cfg.MQTT.Enabled() {
		fmt.Printf("  MQTT:       %s\n", cfg.MQTT.Broker)
	}
	fmt.Printf("  Log:        %s\n", cfg.LogLevel)
	fmt.Println("=========================")
}

func describeInput(in config.InputConfig) string {
	switch in.Source {
	case "keyboard":
		return fmt.Sprintf("keyboard (up: %s, down: %s)", strings.Join(in.UpKeys, "/"), strings.Join(in.DownKeys, "/"))
	case "mouse":
		return fmt.Sprintf("mouse (dead zone %.0f%%)", in.DeadZone*100)
	case "wav":
		return fmt.Sprintf("wav replay %s", in.WavPath)
	default:
		return in.Source
	}
}
