package mapping

import "fmt"

// Event is one discrete input from a controller. Only the types below
// implement it.
type Event interface {
	isEvent()
	String() string
}

// AxisMotion reports a new position for an analog axis, Value in [-1, 1].
type AxisMotion struct {
	Axis  int
	Value float64
}

// ButtonDown reports a button press.
type ButtonDown struct {
	Button int
}

// ButtonUp reports a button release.
type ButtonUp struct {
	Button int
}

// HatMotion reports a d-pad position, X and Y each in {-1, 0, 1}.
type HatMotion struct {
	Hat  int
	X, Y int
}

func (AxisMotion) isEvent() {}
func (ButtonDown) isEvent() {}
func (ButtonUp) isEvent()   {}
func (HatMotion) isEvent()  {}

func (e AxisMotion) String() string { return fmt.Sprintf("axis %d = %.3f", e.Axis, e.Value) }
func (e ButtonDown) String() string { return fmt.Sprintf("button %d down", e.Button) }
func (e ButtonUp) String() string   { return fmt.Sprintf("button %d up", e.Button) }
func (e HatMotion) String() string  { return fmt.Sprintf("hat %d = (%d,%d)", e.Hat, e.X, e.Y) }
