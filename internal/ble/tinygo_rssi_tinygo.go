//go:build tinygo

package ble

// centralRSSI has no per-connection reading on microcontroller stacks.
func centralRSSI(string) (int, error) {
	return ApproximateRSSI, nil
}
