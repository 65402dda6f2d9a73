// Package led drives the controller's status LED.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package led

// Line is a single output LED.
type Line interface {
	// Set drives the LED on or off.
	Set(on bool) error

	// Close releases GPIO resources. The LED is left off.
	Close() error
}
