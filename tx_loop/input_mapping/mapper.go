package mapping

import "joylink/utils"

// Mapper applies controller events to a channel state using one
// controller profile. It is not safe for concurrent Apply calls; the state
// itself may be read concurrently.
type Mapper struct {
	profile *utils.ControllerProfile
	state   *utils.ChannelState
	log     *utils.Logger

	axes    map[int]utils.AxisBinding
	buttons map[int]utils.ButtonBinding

	// locked is set by a disable button and blocks axis updates until the
	// matching enable button is pressed.
	locked bool
}

// NewMapper indexes the profile's tables. The profile is expected to have
// passed Validate. log may be nil.
func NewMapper(profile *utils.ControllerProfile, state *utils.ChannelState, log *utils.Logger) *Mapper {
	m := &Mapper{
		profile: profile,
		state:   state,
		log:     log,
		axes:    make(map[int]utils.AxisBinding, len(profile.Axes)),
		buttons: make(map[int]utils.ButtonBinding, len(profile.Buttons)),
	}
	for _, a := range profile.Axes {
		m.axes[a.Axis] = a
	}
	for _, b := range profile.Buttons {
		m.buttons[b.Button] = b
	}
	return m
}

func (m *Mapper) Profile() *utils.ControllerProfile { return m.profile }

func (m *Mapper) State() *utils.ChannelState { return m.state }

// Locked reports whether axis input is currently blocked by a disable button.
func (m *Mapper) Locked() bool { return m.locked }

// Apply translates one event into at most one channel update. It reports
// whether the state was written. Unmapped inputs are ignored.
func (m *Mapper) Apply(e Event) bool {
	switch ev := e.(type) {
	case AxisMotion:
		return m.applyAxis(ev)
	case ButtonDown:
		return m.applyButton(ev)
	case ButtonUp, HatMotion:
		return false
	default:
		return false
	}
}

func (m *Mapper) applyAxis(ev AxisMotion) bool {
	if m.locked {
		return false
	}
	b, ok := m.axes[ev.Axis]
	if !ok {
		return false
	}
	v := m.state.Set(b.Channel, AxisValue(b, m.state.Limits(), ev.Value))
	if m.log != nil {
		m.log.Trace("Axis: %d, %s=%d", ev.Axis, b.Channel, v)
	}
	return true
}

func (m *Mapper) applyButton(ev ButtonDown) bool {
	b, ok := m.buttons[ev.Button]
	if !ok {
		return false
	}
	lim := m.state.Limits()

	var v int
	switch b.Effect {
	case utils.EffectDisable:
		m.locked = true
		v = m.state.Set(b.Channel, lim.Min)
	case utils.EffectEnable:
		m.locked = false
		v = m.state.Set(b.Channel, lim.Max)
	case utils.EffectTrim:
		v = m.state.Add(b.Channel, b.Step)
	default:
		return false
	}

	if m.log != nil {
		m.log.Debug("Button: %d %s %s=%d", ev.Button, b.Effect, b.Channel, v)
	}
	return true
}

// AxisValue computes the channel value for an axis position:
// clamp(value*multiplier + offset) truncated, then mirrored if inverted.
func AxisValue(b utils.AxisBinding, lim utils.Limits, value float64) int {
	v := lim.Clamp(value*b.Multiplier + b.Offset)
	if b.Invert {
		v = lim.Min + lim.Max - v
	}
	return v
}
