//go:build linux && !tinygo

package ble

import "testing"

func TestBlueZDevicePath(t *testing.T) {
	got := bluezDevicePath("hci0", "aa:bb:cc:dd:ee:0f")
	want := "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_0F"
	if string(got) != want {
		t.Errorf("bluezDevicePath() = %q, want %q", got, want)
	}
	if !got.IsValid() {
		t.Errorf("bluezDevicePath() = %q is not a valid object path", got)
	}
}
