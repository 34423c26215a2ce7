package main

import (
	"context"
	"fmt"
	"io"
	"time"

	mapping "joylink/tx_loop/input_mapping"
)

const (
	// axisHighThreshold is how far an axis must be pushed to be reported.
	axisHighThreshold = 0.8
	discoverInterval  = 10 * time.Millisecond
)

// describeDiscovery renders the events an operator needs to build a
// profile for a new controller: axes pushed past the threshold and button
// presses. Everything else is dropped.
func describeDiscovery(e mapping.Event) (string, bool) {
	switch ev := e.(type) {
	case mapping.AxisMotion:
		if ev.Value > axisHighThreshold {
			return fmt.Sprintf("Axis %d is high", ev.Axis), true
		}
	case mapping.ButtonDown:
		return fmt.Sprintf("Button %d is pressed", ev.Button), true
	}
	return "", false
}

// Discover polls src and prints discovery lines to w until ctx is canceled.
func Discover(ctx context.Context, src EventSource, w io.Writer,
	sleep func(context.Context, time.Duration) error) error {
	for {
		events, err := src.Poll()
		if err != nil {
			return fmt.Errorf("poll joystick: %w", err)
		}
		for _, e := range events {
			if line, ok := describeDiscovery(e); ok {
				fmt.Fprintln(w, line)
			}
		}
		if err := sleep(ctx, discoverInterval); err != nil {
			return err
		}
	}
}
