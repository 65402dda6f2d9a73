package ble

import (
	"testing"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
)

func TestNewAdvertisement(t *testing.T) {
	id, err := DeriveIdentity(7)
	if err != nil {
		t.Fatalf("DeriveIdentity(7): %v", err)
	}
	adv := NewAdvertisement(id, DefaultDeviceName(7))
	if adv.LocalName != "DFPONG-7" {
		t.Errorf("LocalName = %q, want DFPONG-7", adv.LocalName)
	}
	if string(adv.ManufacturerData) != "\xdf\x01" {
		t.Errorf("ManufacturerData = % x, want df 01", adv.ManufacturerData)
	}

	company, payload := adv.ManufacturerFields()
	if company != protocol.CompanyID {
		t.Errorf("company ID = %#04x, want %#04x", company, protocol.CompanyID)
	}
	if company != 0x01df {
		t.Errorf("company ID = %#04x, want 0x01df", company)
	}
	if len(payload) != 0 {
		t.Errorf("payload = % x, want empty", payload)
	}
}

func TestManufacturerFieldsShortData(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantCompany uint16
		wantPayload string
	}{
		{"empty", nil, 0, ""},
		{"one byte", []byte{0xdf}, 0x00df, ""},
		{"with payload", []byte{0xdf, 0x01, 0xaa, 0xbb}, 0x01df, "\xaa\xbb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, payload := Advertisement{ManufacturerData: tt.data}.ManufacturerFields()
			if company != tt.wantCompany {
				t.Errorf("company = %#04x, want %#04x", company, tt.wantCompany)
			}
			if string(payload) != tt.wantPayload {
				t.Errorf("payload = % x, want % x", payload, tt.wantPayload)
			}
		})
	}
}
