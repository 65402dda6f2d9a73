//go:build tinygo

package input

import (
	"fmt"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/lsm9ds1"
)

// NewLSM9DS1 configures the LSM9DS1 IMU on bus (Arduino Nano 33 BLE) with
// its default ranges.
func NewLSM9DS1(bus drivers.I2C) (Accelerometer, error) {
	d := lsm9ds1.New(bus)
	if err := d.Configure(lsm9ds1.Configuration{}); err != nil {
		return nil, fmt.Errorf("configuring lsm9ds1: %w", err)
	}
	if !d.Connected() {
		return nil, fmt.Errorf("lsm9ds1 not found on i2c bus")
	}
	return d, nil
}
