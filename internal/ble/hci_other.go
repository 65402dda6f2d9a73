//go:build !linux || tinygo

package ble

import "errors"

var errHCIUnsupported = errors.New("ble: hci backend is only available on Linux")

// HCITransport is not available on this platform.
type HCITransport struct{}

// NewHCITransport returns a transport whose Enable always fails.
func NewHCITransport(int) *HCITransport { return &HCITransport{} }

func (t *HCITransport) Enable() error                 { return errHCIUnsupported }
func (t *HCITransport) Configure(Advertisement) error { return errHCIUnsupported }
func (t *HCITransport) StartAdvertising() error       { return errHCIUnsupported }
func (t *HCITransport) StopAdvertising() error        { return nil }
func (t *HCITransport) Disconnect() error             { return nil }
func (t *HCITransport) IsCentralConnected() bool      { return false }
func (t *HCITransport) IsCentralSubscribed() bool     { return false }
func (t *HCITransport) WriteCharacteristic(byte) bool { return false }
func (t *HCITransport) RSSI() (int, error)            { return 0, errHCIUnsupported }
func (t *HCITransport) SetEventSink(EventSink)        {}
