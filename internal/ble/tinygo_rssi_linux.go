//go:build linux && !tinygo

package ble

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	bluezBusName         = "org.bluez"
	bluezDeviceInterface = "org.bluez.Device1"
	bluezAdapterID       = "hci0"
)

// bluezDevicePath returns the BlueZ object path of a remote device.
func bluezDevicePath(adapterID, addr string) dbus.ObjectPath {
	return dbus.ObjectPath("/org/bluez/" + adapterID + "/dev_" + strings.ReplaceAll(strings.ToUpper(addr), ":", "_"))
}

// centralRSSI reads the RSSI BlueZ last recorded for the central. BlueZ
// only refreshes it while discovering, so a missing property falls back
// to ApproximateRSSI.
func centralRSSI(addr string) (int, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return 0, fmt.Errorf("ble: connect system bus: %w", err)
	}
	obj := conn.Object(bluezBusName, bluezDevicePath(bluezAdapterID, addr))
	v, err := obj.GetProperty(bluezDeviceInterface + ".RSSI")
	if err != nil {
		slog.Debug("[BLE] rssi unavailable from BlueZ, using approximation", "address", addr, "error", err)
		return ApproximateRSSI, nil
	}
	rssi, ok := v.Value().(int16)
	if !ok {
		return 0, fmt.Errorf("ble: unexpected RSSI type %T", v.Value())
	}
	return int(rssi), nil
}
