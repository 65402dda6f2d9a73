package ble

import "log/slog"

// DefaultRSSIThreshold is the default cut-off for HasStrongSignal, in dBm.
const DefaultRSSIThreshold = -70

// SignalMonitor reads the link RSSI and compares it with a threshold.
// Readings are best effort; some backends report ApproximateRSSI.
type SignalMonitor struct {
	transport Transport
	threshold int
}

// NewSignalMonitor creates a monitor with the given threshold in dBm.
func NewSignalMonitor(transport Transport, threshold int) *SignalMonitor {
	return &SignalMonitor{transport: transport, threshold: threshold}
}

// Strength returns the RSSI of the connected central in dBm, or 0 when no
// central is connected or the reading failed. 0 is never a real reading.
func (sm *SignalMonitor) Strength() int {
	if !sm.transport.IsCentralConnected() {
		return 0
	}
	rssi, err := sm.transport.RSSI()
	if err != nil {
		slog.Debug("[BLE] rssi read failed", "error", err)
		return 0
	}
	return rssi
}

// Strong reports whether the link is above the threshold.
func (sm *SignalMonitor) Strong() bool {
	rssi := sm.Strength()
	return rssi != 0 && rssi > sm.threshold
}

// Threshold returns the configured threshold in dBm.
func (sm *SignalMonitor) Threshold() int {
	return sm.threshold
}
