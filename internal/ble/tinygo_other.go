//go:build !linux && !tinygo

package ble

import (
	"errors"

	"tinygo.org/x/bluetooth"
)

var errTinyGoUnsupported = errors.New("ble: tinygo peripheral backend requires Linux or a TinyGo target")

// TinyGoTransport is not available on this platform.
type TinyGoTransport struct{}

// NewTinyGoTransport returns a transport whose Enable always fails.
func NewTinyGoTransport(*bluetooth.Adapter) *TinyGoTransport { return &TinyGoTransport{} }

func (t *TinyGoTransport) Enable() error                 { return errTinyGoUnsupported }
func (t *TinyGoTransport) Configure(Advertisement) error { return errTinyGoUnsupported }
func (t *TinyGoTransport) StartAdvertising() error       { return errTinyGoUnsupported }
func (t *TinyGoTransport) StopAdvertising() error        { return nil }
func (t *TinyGoTransport) Disconnect() error             { return nil }
func (t *TinyGoTransport) IsCentralConnected() bool      { return false }
func (t *TinyGoTransport) IsCentralSubscribed() bool     { return false }
func (t *TinyGoTransport) WriteCharacteristic(byte) bool { return false }
func (t *TinyGoTransport) RSSI() (int, error)            { return 0, errTinyGoUnsupported }
func (t *TinyGoTransport) SetEventSink(EventSink)        {}
