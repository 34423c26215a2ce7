package utils

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// AxisBinding maps one physical axis onto a channel:
// value = clamp(axis*Multiplier + Offset), mirrored within the limits if Invert.
type AxisBinding struct {
	Axis       int     `yaml:"axis"`
	Channel    Channel `yaml:"channel"`
	Multiplier float64 `yaml:"multiplier"`
	Offset     float64 `yaml:"offset"`
	Invert     bool    `yaml:"invert"`
}

func (a *AxisBinding) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain AxisBinding
	raw := plain{Channel: noChannel}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*a = AxisBinding(raw)
	return nil
}

// EffectKind is what a button press does to the channel state.
type EffectKind int

const (
	// EffectDisable forces the channel to the minimum and locks axis input.
	EffectDisable EffectKind = iota + 1
	// EffectEnable forces the channel to the maximum and releases the lock.
	EffectEnable
	// EffectTrim adds Step to the channel and re-clamps.
	EffectTrim
)

var effectNames = map[EffectKind]string{
	EffectDisable: "disable",
	EffectEnable:  "enable",
	EffectTrim:    "trim",
}

func (k EffectKind) String() string {
	if n, ok := effectNames[k]; ok {
		return n
	}
	return fmt.Sprintf("effect(%d)", int(k))
}

func ParseEffectKind(s string) (EffectKind, error) {
	ss := strings.TrimSpace(strings.ToLower(s))
	for k, n := range effectNames {
		if n == ss {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown button effect %q (want disable|enable|trim)", s)
}

func (k *EffectKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	kind, err := ParseEffectKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func (k EffectKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// ButtonBinding is one row of the {button -> effect} table.
type ButtonBinding struct {
	Button  int        `yaml:"button"`
	Effect  EffectKind `yaml:"effect"`
	Channel Channel    `yaml:"channel"`
	Step    int        `yaml:"step,omitempty"`
}

// UnmarshalYAML defaults the channel of a trim binding to throttle. Disable
// and enable bindings must name their channel.
func (b *ButtonBinding) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain ButtonBinding
	raw := plain{Channel: noChannel}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw.Channel == noChannel && raw.Effect == EffectTrim {
		raw.Channel = Throttle
	}
	*b = ButtonBinding(raw)
	return nil
}

// ControllerProfile is the mapping record for one controller model, keyed by
// the name the device reports.
type ControllerProfile struct {
	Name    string          `yaml:"name"`
	Axes    []AxisBinding   `yaml:"axes"`
	Buttons []ButtonBinding `yaml:"buttons"`
}

// UsableAxes lists the mapped axis indices in ascending order.
func (p *ControllerProfile) UsableAxes() []int {
	out := make([]int, 0, len(p.Axes))
	for _, a := range p.Axes {
		out = append(out, a.Axis)
	}
	sort.Ints(out)
	return out
}

// Validate checks the profile once at load time against the given limits.
func (p *ControllerProfile) Validate(limits Limits) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile has empty name")
	}

	seenAxes := make(map[int]bool, len(p.Axes))
	for _, a := range p.Axes {
		if a.Axis < 0 {
			return fmt.Errorf("profile %q: invalid axis index %d", p.Name, a.Axis)
		}
		if seenAxes[a.Axis] {
			return fmt.Errorf("profile %q: duplicate axis index %d", p.Name, a.Axis)
		}
		seenAxes[a.Axis] = true

		if a.Channel == noChannel {
			return fmt.Errorf("profile %q axis %d: missing channel", p.Name, a.Axis)
		}
		if !a.Channel.valid() {
			return fmt.Errorf("profile %q axis %d: invalid channel %d", p.Name, a.Axis, int(a.Channel))
		}
		if !finite(a.Multiplier) || !finite(a.Offset) {
			return fmt.Errorf("profile %q axis %d: multiplier and offset must be finite", p.Name, a.Axis)
		}
		if a.Multiplier == 0 {
			return fmt.Errorf("profile %q axis %d: multiplier must be non-zero", p.Name, a.Axis)
		}
		// Over axis values in [-1, 1] the raw output spans offset±|multiplier|.
		lo := a.Offset - math.Abs(a.Multiplier)
		hi := a.Offset + math.Abs(a.Multiplier)
		if hi < float64(limits.Min) || lo > float64(limits.Max) {
			return fmt.Errorf("profile %q axis %d: output range [%.1f, %.1f] never reaches limits [%d, %d]",
				p.Name, a.Axis, lo, hi, limits.Min, limits.Max)
		}
	}

	seenButtons := make(map[int]bool, len(p.Buttons))
	for _, b := range p.Buttons {
		if b.Button < 0 {
			return fmt.Errorf("profile %q: invalid button index %d", p.Name, b.Button)
		}
		if seenButtons[b.Button] {
			return fmt.Errorf("profile %q: duplicate button index %d", p.Name, b.Button)
		}
		seenButtons[b.Button] = true

		if b.Channel == noChannel {
			return fmt.Errorf("profile %q button %d: missing channel", p.Name, b.Button)
		}
		if !b.Channel.valid() {
			return fmt.Errorf("profile %q button %d: invalid channel %d", p.Name, b.Button, int(b.Channel))
		}
		switch b.Effect {
		case EffectDisable, EffectEnable:
		case EffectTrim:
			if b.Step == 0 {
				return fmt.Errorf("profile %q button %d: trim step must be non-zero", p.Name, b.Button)
			}
		default:
			return fmt.Errorf("profile %q button %d: missing effect", p.Name, b.Button)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ProfileSet indexes controller profiles by device name.
type ProfileSet struct {
	ByName map[string]*ControllerProfile
}

func NewProfileSet(profiles []ControllerProfile) *ProfileSet {
	ps := &ProfileSet{ByName: make(map[string]*ControllerProfile, len(profiles))}
	for i := range profiles {
		ps.ByName[profiles[i].Name] = &profiles[i]
	}
	return ps
}

// Lookup finds the profile for a device name. It wraps ErrUnknownController.
func (ps *ProfileSet) Lookup(name string) (*ControllerProfile, error) {
	p, ok := ps.ByName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownController, name, ps.Names())
	}
	return p, nil
}

func (ps *ProfileSet) Names() []string {
	out := make([]string, 0, len(ps.ByName))
	for k := range ps.ByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
