//go:build linux && !tinygo

package ble

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	"github.com/paypal/gatt"
)

// Advertising flags: LE general discoverable, BR/EDR not supported.
const gattAdvFlags = 0x06

// maxAdvPacket is the legacy advertising payload limit.
const maxAdvPacket = 31

// attEcodeUnlikely is the ATT "unlikely error" status returned for empty writes.
const attEcodeUnlikely = 0x0e

// hciPowerOnTimeout bounds how long Enable waits for the HCI socket to
// report the controller powered on.
const hciPowerOnTimeout = 3 * time.Second

var errHCIPoweredOff = errors.New("ble: hci controller not powered on")

// HCITransport talks to a raw HCI socket through paypal/gatt. It needs
// CAP_NET_ADMIN and an adapter that BlueZ is not holding.
type HCITransport struct {
	deviceID int

	mu          sync.Mutex
	sink        EventSink
	device      gatt.Device
	poweredOn   chan struct{}
	configured  bool
	adv         *gatt.AdvPacket
	advertising bool
	central     gatt.Central
	notifier    gatt.Notifier
	value       byte
}

// NewHCITransport returns a transport bound to /dev/hci<deviceID>.
func NewHCITransport(deviceID int) *HCITransport {
	return &HCITransport{deviceID: deviceID, poweredOn: make(chan struct{})}
}

// Compile-time check that HCITransport implements Transport.
var _ Transport = (*HCITransport)(nil)

func (t *HCITransport) Enable() error {
	t.mu.Lock()
	if t.device == nil {
		d, err := gatt.NewDevice(
			gatt.LnxMaxConnections(1),
			gatt.LnxDeviceID(t.deviceID, true),
		)
		if err != nil {
			t.mu.Unlock()
			return fmt.Errorf("ble: open hci%d: %w", t.deviceID, err)
		}
		d.Handle(
			gatt.CentralConnected(t.onCentralConnected),
			gatt.CentralDisconnected(t.onCentralDisconnected),
		)
		if err := d.Init(t.onStateChanged); err != nil {
			t.mu.Unlock()
			return fmt.Errorf("ble: init hci%d: %w", t.deviceID, err)
		}
		t.device = d
	}
	ready := t.poweredOn
	t.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-time.After(hciPowerOnTimeout):
		return errHCIPoweredOff
	}
}

func (t *HCITransport) onStateChanged(_ gatt.Device, s gatt.State) {
	slog.Debug("[BLE] hci state changed", "state", s)
	if s != gatt.StatePoweredOn {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.poweredOn:
	default:
		close(t.poweredOn)
	}
}

func (t *HCITransport) onCentralConnected(c gatt.Central) {
	t.mu.Lock()
	if t.central != nil {
		t.mu.Unlock()
		slog.Warn("[BLE] refusing second central", "id", c.ID())
		if err := c.Close(); err != nil {
			slog.Debug("[BLE] refuse second central", "id", c.ID(), "error", err)
		}
		return
	}
	t.central = c
	t.notifier = nil
	t.advertising = false
	sink := t.sink
	t.mu.Unlock()

	slog.Info("[BLE] connected", "id", c.ID(), "mtu", c.MTU())
	if sink != nil {
		sink.OnConnect()
	}
}

func (t *HCITransport) onCentralDisconnected(c gatt.Central) {
	t.mu.Lock()
	if t.central == nil || t.central.ID() != c.ID() {
		t.mu.Unlock()
		return
	}
	t.central = nil
	t.notifier = nil
	sink := t.sink
	t.mu.Unlock()

	slog.Info("[BLE] disconnected", "id", c.ID())
	if sink != nil {
		sink.OnDisconnect()
	}
}

func (t *HCITransport) Configure(adv Advertisement) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.device == nil {
		return fmt.Errorf("ble: configure before enable")
	}
	if t.configured {
		return nil
	}

	svcUUID, err := gatt.ParseUUID(adv.Identity.ServiceUUID)
	if err != nil {
		return fmt.Errorf("ble: parse service UUID: %w", err)
	}
	charUUID, err := gatt.ParseUUID(adv.Identity.CharacteristicUUID)
	if err != nil {
		return fmt.Errorf("ble: parse characteristic UUID: %w", err)
	}

	svc := gatt.NewService(svcUUID)
	ch := svc.AddCharacteristic(charUUID)
	ch.HandleReadFunc(func(rsp gatt.ResponseWriter, _ *gatt.ReadRequest) {
		t.mu.Lock()
		v := t.value
		t.mu.Unlock()
		if _, err := rsp.Write(protocol.Encode(protocol.Signal(v))); err != nil {
			slog.Debug("[BLE] read response failed", "error", err)
		}
	})
	ch.HandleWriteFunc(func(_ gatt.Request, data []byte) byte {
		sig, err := protocol.Decode(data)
		if err != nil {
			return attEcodeUnlikely
		}
		t.mu.Lock()
		t.value = byte(sig)
		sink := t.sink
		t.mu.Unlock()
		if sink != nil {
			sink.OnCharacteristicWritten(byte(sig))
		}
		return gatt.StatusSuccess
	})
	ch.HandleNotifyFunc(func(_ gatt.Request, n gatt.Notifier) {
		t.mu.Lock()
		t.notifier = n
		t.mu.Unlock()
		slog.Debug("[BLE] central subscribed", "cap", n.Cap())
	})

	if err := t.device.AddService(svc); err != nil {
		return fmt.Errorf("ble: add service: %w", err)
	}

	t.adv = buildAdvPacket(adv, svcUUID)
	t.configured = true
	return nil
}

// buildAdvPacket lays out flags, manufacturer data and the service UUID,
// then the local name if room is left in the 31-byte payload.
func buildAdvPacket(adv Advertisement, svc gatt.UUID) *gatt.AdvPacket {
	a := &gatt.AdvPacket{}
	a.AppendFlags(gattAdvFlags)
	companyID, payload := adv.ManufacturerFields()
	a.AppendManufacturerData(companyID, payload)
	a.AppendUUIDFit([]gatt.UUID{svc})
	if maxAdvPacket-a.Len()-2 >= len(adv.LocalName) {
		a.AppendName(adv.LocalName)
	}
	return a
}

func (t *HCITransport) StartAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.configured {
		return fmt.Errorf("ble: advertisement not configured")
	}
	if t.advertising {
		return nil
	}
	if err := t.device.Advertise(t.adv); err != nil {
		return fmt.Errorf("ble: start advertising: %w", err)
	}
	t.advertising = true
	return nil
}

func (t *HCITransport) StopAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.device == nil || !t.advertising {
		return nil
	}
	t.advertising = false
	if err := t.device.StopAdvertising(); err != nil {
		return fmt.Errorf("ble: stop advertising: %w", err)
	}
	return nil
}

func (t *HCITransport) Disconnect() error {
	t.mu.Lock()
	c := t.central
	t.mu.Unlock()
	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("ble: close central: %w", err)
	}
	return nil
}

func (t *HCITransport) IsCentralConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.central != nil
}

func (t *HCITransport) IsCentralSubscribed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.central != nil && t.notifier != nil && !t.notifier.Done()
}

func (t *HCITransport) WriteCharacteristic(value byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.notifier == nil || t.notifier.Done() {
		return false
	}
	if _, err := t.notifier.Write(protocol.Encode(protocol.Signal(value))); err != nil {
		slog.Debug("[BLE] notification failed", "error", err)
		return false
	}
	t.value = value
	return true
}

// RSSI is not exposed for connected centrals by the HCI backend.
func (t *HCITransport) RSSI() (int, error) {
	if !t.IsCentralConnected() {
		return 0, fmt.Errorf("ble: no central connected")
	}
	return ApproximateRSSI, nil
}

func (t *HCITransport) SetEventSink(sink EventSink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}
