package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/0xcafed00d/joystick"

	mapping "joylink/tx_loop/input_mapping"
)

func TestDescribeDiscovery(t *testing.T) {
	tests := []struct {
		event mapping.Event
		want  string
		ok    bool
	}{
		{mapping.AxisMotion{Axis: 3, Value: 0.81}, "Axis 3 is high", true},
		{mapping.AxisMotion{Axis: 3, Value: 0.8}, "", false},
		{mapping.AxisMotion{Axis: 3, Value: -1}, "", false},
		{mapping.ButtonDown{Button: 11}, "Button 11 is pressed", true},
		{mapping.ButtonUp{Button: 11}, "", false},
		{mapping.HatMotion{Hat: 0, X: 1}, "", false},
	}
	for _, tt := range tests {
		got, ok := describeDiscovery(tt.event)
		if got != tt.want || ok != tt.ok {
			t.Errorf("describeDiscovery(%v) = %q, %v; want %q, %v", tt.event, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDiscoverPrintsHighAxesAndPresses(t *testing.T) {
	// Axis 2 pushed fully, button 9 pressed, then both released.
	prev := joystick.State{AxisData: []int{0, 0, 0}}
	pushed := joystick.State{AxisData: []int{0, 0, 32767}, Buttons: 1 << 9}
	released := joystick.State{AxisData: []int{0, 0, 0}}

	src := &fakeSource{batches: [][]mapping.Event{
		diffStates(prev, pushed),
		diffStates(pushed, released),
	}}
	clock := &fakeClock{stopAfter: 2}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.cancel = cancel

	var out bytes.Buffer
	err := Discover(ctx, src, &out, clock.sleep)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Discover = %v, want context.Canceled", err)
	}
	if got, want := out.String(), "Axis 2 is high\nButton 9 is pressed\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDiscoverStopsOnPollError(t *testing.T) {
	src := &fakeSource{err: errors.New("device unplugged")}
	var out bytes.Buffer
	if err := Discover(context.Background(), src, &out, sleepContext); err == nil {
		t.Error("Discover expected poll error")
	}
}
