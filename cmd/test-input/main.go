// Command test-input is a manual test for the direction sources.
// Run it, steer with the chosen source and watch the direction changes.
// Press Ctrl+C to exit.
//
// Usage:
//
//	go run ./cmd/test-input [--source keyboard|mouse|audio|wav] [--wav file.wav]
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	"github.com/dfpong/dfpong-controller/internal/config"
	"github.com/dfpong/dfpong-controller/internal/input"
)

func main() {
	source := flag.String("source", "keyboard", "input source: keyboard, mouse, audio or wav")
	wavPath := flag.String("wav", "", "wav file for --source wav")
	flag.Parse()

	in := config.Default().Input
	var (
		src input.Source
		err error
	)
	switch *source {
	case "keyboard":
		src = input.NewKeyboard(in.UpKeys, in.DownKeys)
	case "mouse":
		src = input.NewMouse(in.DeadZone)
	case "audio":
		src, err = input.NewMicrophone(in.SampleRate, in.UpLevel, in.DownLevel)
	case "wav":
		src, err = input.LoadWav(*wavPath, 100*time.Millisecond, in.UpLevel, in.DownLevel)
	default:
		err = fmt.Errorf("unknown source %q", *source)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Reading directions from %s...\n", *source)
	fmt.Println("Press Ctrl+C to exit.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	last := protocol.Neutral
	for {
		select {
		case <-sig:
			fmt.Println("\nShutting down...")
			src.Close()
			fmt.Println("Done.")
			// Exit directly to avoid gohook's C cleanup crash.
			os.Exit(0)
		case <-ticker.C:
			if d := src.Direction(); d != last {
				fmt.Printf("%-7s -> %s\n", last, d)
				last = d
			}
		}
	}
}
