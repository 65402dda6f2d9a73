//go:build linux || tinygo

package ble

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	"tinygo.org/x/bluetooth"
)

// TinyGoTransport drives tinygo-org/bluetooth: BlueZ on Linux hosts, the
// SoftDevice or HCI stack on microcontrollers. The stack exposes no
// subscription state, so a connected central counts as subscribed.
type TinyGoTransport struct {
	adapter *bluetooth.Adapter

	mu          sync.Mutex
	sink        EventSink
	enabled     bool
	configured  bool
	adv         *bluetooth.Advertisement
	char        bluetooth.Characteristic
	advertising bool
	connected   bool
	central     bluetooth.Device

	// refuse drops a central that arrives while the slot is taken.
	refuse func(bluetooth.Device) error
}

// connEvent is what one connect-handler callback means for the single
// connection slot.
type connEvent int

const (
	connIgnore connEvent = iota
	connAccept
	connRefuse
	connLost
)

// classifyConnEvent decides a connect-handler callback from the address
// holding the slot (empty when free) and the address the event names.
// BlueZ reports some connects more than once, so a repeat from the
// holder is ignored rather than refused.
func classifyConnEvent(holder, addr string, connected bool) connEvent {
	switch {
	case connected && holder == "":
		return connAccept
	case connected && holder == addr:
		return connIgnore
	case connected:
		return connRefuse
	case holder != "" && holder == addr:
		return connLost
	default:
		return connIgnore
	}
}

// NewTinyGoTransport wraps adapter. A nil adapter uses bluetooth.DefaultAdapter.
func NewTinyGoTransport(adapter *bluetooth.Adapter) *TinyGoTransport {
	if adapter == nil {
		adapter = bluetooth.DefaultAdapter
	}
	return &TinyGoTransport{adapter: adapter, refuse: disconnectDevice}
}

func disconnectDevice(d bluetooth.Device) error {
	return d.Disconnect()
}

// Compile-time check that TinyGoTransport implements Transport.
var _ Transport = (*TinyGoTransport)(nil)

func (t *TinyGoTransport) Enable() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enabled {
		return nil
	}
	if err := t.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}
	t.adapter.SetConnectHandler(t.onConnectionChange)
	t.enabled = true
	return nil
}

// onConnectionChange runs in the radio stack's context.
func (t *TinyGoTransport) onConnectionChange(device bluetooth.Device, connected bool) {
	addr := device.Address.String()

	t.mu.Lock()
	holder := ""
	if t.connected {
		holder = t.central.Address.String()
	}
	event := classifyConnEvent(holder, addr, connected)
	switch event {
	case connIgnore:
		t.mu.Unlock()
		return
	case connRefuse:
		refuse := t.refuse
		t.mu.Unlock()
		slog.Warn("[BLE] refusing second central", "address", addr)
		if err := refuse(device); err != nil {
			slog.Debug("[BLE] refuse second central", "address", addr, "error", err)
		}
		return
	case connAccept:
		t.connected = true
		t.central = device
		t.advertising = false
	case connLost:
		t.connected = false
		t.central = bluetooth.Device{}
	}
	sink := t.sink
	t.mu.Unlock()

	if event == connAccept {
		slog.Info("[BLE] connected", "address", addr)
	} else {
		slog.Info("[BLE] disconnected", "address", addr)
	}
	if sink == nil {
		return
	}
	if event == connAccept {
		sink.OnConnect()
	} else {
		sink.OnDisconnect()
	}
}

func (t *TinyGoTransport) Configure(adv Advertisement) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.configured {
		return nil
	}

	svcUUID, err := bluetooth.ParseUUID(adv.Identity.ServiceUUID)
	if err != nil {
		return fmt.Errorf("ble: parse service UUID: %w", err)
	}
	charUUID, err := bluetooth.ParseUUID(adv.Identity.CharacteristicUUID)
	if err != nil {
		return fmt.Errorf("ble: parse characteristic UUID: %w", err)
	}

	err = t.adapter.AddService(&bluetooth.Service{
		UUID: svcUUID,
		Characteristics: []bluetooth.CharacteristicConfig{{
			Handle: &t.char,
			UUID:   charUUID,
			Value:  protocol.Encode(protocol.Neutral),
			Flags: bluetooth.CharacteristicReadPermission |
				bluetooth.CharacteristicWritePermission |
				bluetooth.CharacteristicWriteWithoutResponsePermission |
				bluetooth.CharacteristicNotifyPermission,
			WriteEvent: t.onWrite,
		}},
	})
	if err != nil {
		return fmt.Errorf("ble: add service: %w", err)
	}

	companyID, payload := adv.ManufacturerFields()
	t.adv = t.adapter.DefaultAdvertisement()
	err = t.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    adv.LocalName,
		ServiceUUIDs: []bluetooth.UUID{svcUUID},
		Interval:     bluetooth.NewDuration(AdvertisingInterval),
		ManufacturerData: []bluetooth.ManufacturerDataElement{
			{CompanyID: companyID, Data: payload},
		},
	})
	if err != nil {
		return fmt.Errorf("ble: configure advertisement: %w", err)
	}
	t.configured = true
	return nil
}

// onWrite runs in the radio stack's context.
func (t *TinyGoTransport) onWrite(_ bluetooth.Connection, _ int, value []byte) {
	sig, err := protocol.Decode(value)
	if err != nil {
		return
	}
	t.mu.Lock()
	sink := t.sink
	t.mu.Unlock()
	if sink != nil {
		sink.OnCharacteristicWritten(byte(sig))
	}
}

func (t *TinyGoTransport) StartAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.adv == nil {
		return fmt.Errorf("ble: advertisement not configured")
	}
	if t.advertising {
		return nil
	}
	if err := t.adv.Start(); err != nil {
		return fmt.Errorf("ble: start advertisement: %w", err)
	}
	t.advertising = true
	return nil
}

func (t *TinyGoTransport) StopAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.adv == nil || !t.advertising {
		return nil
	}
	t.advertising = false
	if err := t.adv.Stop(); err != nil {
		return fmt.Errorf("ble: stop advertisement: %w", err)
	}
	return nil
}

func (t *TinyGoTransport) Disconnect() error {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return nil
	}
	central := t.central
	t.mu.Unlock()
	return central.Disconnect()
}

func (t *TinyGoTransport) IsCentralConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *TinyGoTransport) IsCentralSubscribed() bool {
	return t.IsCentralConnected()
}

func (t *TinyGoTransport) WriteCharacteristic(value byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.configured || !t.connected {
		return false
	}
	n, err := t.char.Write(protocol.Encode(protocol.Signal(value)))
	if err != nil {
		slog.Debug("[BLE] characteristic write failed", "error", err)
		return false
	}
	return n == 1
}

func (t *TinyGoTransport) RSSI() (int, error) {
	t.mu.Lock()
	connected := t.connected
	addr := t.central.Address.String()
	t.mu.Unlock()
	if !connected {
		return 0, fmt.Errorf("ble: no central connected")
	}
	return centralRSSI(addr)
}

func (t *TinyGoTransport) SetEventSink(sink EventSink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}
