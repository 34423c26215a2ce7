package main

import (
	"fmt"
	"io"

	"github.com/0xcafed00d/joystick"

	mapping "joylink/tx_loop/input_mapping"
	"joylink/utils"
)

const (
	axisFullScale = 32767
	maxButtons    = 32
	maxJoysticks  = 10
)

// JoystickSource turns polled joystick state into discrete events by
// comparing each reading with the previous one.
type JoystickSource struct {
	js   joystick.Joystick
	prev joystick.State
}

// OpenJoystick opens joystick id. A missing device wraps utils.ErrNoController.
func OpenJoystick(id int) (*JoystickSource, error) {
	js, err := joystick.Open(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id %d: %v", utils.ErrNoController, id, err)
	}
	return &JoystickSource{js: js}, nil
}

func (s *JoystickSource) Name() string     { return s.js.Name() }
func (s *JoystickSource) AxisCount() int   { return s.js.AxisCount() }
func (s *JoystickSource) ButtonCount() int { return s.js.ButtonCount() }

// Poll reads the current state and returns the events since the last poll.
// It does not block.
func (s *JoystickSource) Poll() ([]mapping.Event, error) {
	cur, err := s.js.Read()
	if err != nil {
		return nil, err
	}
	events := diffStates(s.prev, cur)
	s.prev = cur
	return events, nil
}

func (s *JoystickSource) Close() error {
	s.js.Close()
	return nil
}

// diffStates emits AxisMotion for every axis whose raw value changed and
// ButtonDown/ButtonUp for every button bit that flipped.
func diffStates(prev, cur joystick.State) []mapping.Event {
	var events []mapping.Event

	for i, raw := range cur.AxisData {
		old := 0
		if i < len(prev.AxisData) {
			old = prev.AxisData[i]
		}
		if raw != old {
			events = append(events, mapping.AxisMotion{Axis: i, Value: normalizeAxis(raw)})
		}
	}

	changed := prev.Buttons ^ cur.Buttons
	for b := 0; b < maxButtons && changed != 0; b++ {
		bit := uint32(1) << b
		if changed&bit == 0 {
			continue
		}
		changed &^= bit
		if cur.Buttons&bit != 0 {
			events = append(events, mapping.ButtonDown{Button: b})
		} else {
			events = append(events, mapping.ButtonUp{Button: b})
		}
	}
	return events
}

// normalizeAxis scales a raw reading into [-1, 1].
func normalizeAxis(raw int) float64 {
	v := float64(raw) / axisFullScale
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// ListJoysticks prints every joystick that opens, stopping at the first gap.
func ListJoysticks(w io.Writer) int {
	n := 0
	for id := 0; id < maxJoysticks; id++ {
		js, err := joystick.Open(id)
		if err != nil {
			break
		}
		fmt.Fprintf(w, "Joystick ID: %d: Name: %s, Axes: %d, Buttons: %d\n",
			id, js.Name(), js.AxisCount(), js.ButtonCount())
		js.Close()
		n++
	}
	if n == 0 {
		fmt.Fprintln(w, "No joysticks detected")
	}
	return n
}
