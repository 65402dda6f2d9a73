// Command test-led is a manual test for the status LED.
// It walks the LED through the idle, handshaking and ready patterns,
// a few seconds each.
//
// Usage:
//
//	go run ./cmd/test-led [--chip gpiochip0] --line 17
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble"
	"github.com/dfpong/dfpong-controller/internal/led"
)

func main() {
	chip := flag.String("chip", "gpiochip0", "GPIO chip")
	line := flag.Int("line", -1, "GPIO line offset of the LED")
	hold := flag.Duration("hold", 3*time.Second, "how long to show each pattern")
	flag.Parse()

	if *line < 0 {
		fmt.Println("Error: --line is required")
		os.Exit(2)
	}

	l, err := led.NewRealLine(*chip, *line)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer l.Close()

	indicator := ble.NewStatusIndicator(l)
	patterns := []struct {
		name                 string
		connected, handshake bool
	}{
		{"idle (slow blink)", false, false},
		{"handshaking (fast blink)", true, false},
		{"ready (solid)", true, true},
	}

	for _, p := range patterns {
		fmt.Printf("%s...\n", p.name)
		end := time.Now().Add(*hold)
		for time.Now().Before(end) {
			indicator.Update(p.connected, p.handshake, time.Now())
			time.Sleep(5 * time.Millisecond)
		}
	}

	fmt.Println("\nDone!")
}
