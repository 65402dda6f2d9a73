//go:build tinygo

// Command dfpong-firmware runs the controller on an nRF52840 board with an
// on-board LSM9DS1 (Arduino Nano 33 BLE). Tilt the board to steer.
//
// Build:
//
//	tinygo flash -target=nano-33-ble -ldflags="-X main.controllerNumber=3" ./cmd/dfpong-firmware
package main

import (
	"context"
	"log/slog"
	"machine"
	"strconv"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble"
	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	"github.com/dfpong/dfpong-controller/internal/input"
)

// controllerNumber is set at link time.
var controllerNumber = "1"

// pinLED drives the on-board LED.
type pinLED struct{ pin machine.Pin }

func (l pinLED) Set(on bool) error {
	l.pin.Set(on)
	return nil
}

func main() {
	// Give a serial monitor a moment to attach.
	time.Sleep(2 * time.Second)

	n, err := strconv.Atoi(controllerNumber)
	if err != nil {
		slog.Error("[BLE] invalid controller number", "value", controllerNumber)
	}

	status := machine.LED
	status.Configure(machine.PinConfig{Mode: machine.PinOutput})

	opts := ble.DefaultControllerOptions()
	opts.ControllerNumber = n
	opts.StatusLED = pinLED{pin: status}
	opts.Debug = true

	ctrl := ble.NewController(ble.NewTinyGoTransport(nil), opts)
	for {
		err := ctrl.Start("")
		if err == nil {
			break
		}
		slog.Error("[BLE] start failed, retrying", "error", err)
		blinkError(status)
	}

	src := newTiltSource()
	ctrl.Run(context.Background(), src, ble.DefaultTickInterval)
}

// newTiltSource falls back to a neutral paddle if the IMU is missing so the
// board still pairs and handshakes.
func newTiltSource() input.Source {
	bus := machine.I2C1
	if err := bus.Configure(machine.I2CConfig{}); err != nil {
		slog.Warn("[INPUT] i2c configure failed", "error", err)
		return input.NewFixed(protocol.Neutral)
	}
	accel, err := input.NewLSM9DS1(bus)
	if err != nil {
		slog.Warn("[INPUT] tilt sensor unavailable", "error", err)
		return input.NewFixed(protocol.Neutral)
	}
	return input.NewTilt(accel, input.DefaultTiltThreshold)
}

func blinkError(led machine.Pin) {
	for i := 0; i < 10; i++ {
		led.Set(i%2 == 0)
		time.Sleep(100 * time.Millisecond)
	}
	led.Low()
}
