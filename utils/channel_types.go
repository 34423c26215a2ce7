package utils

import (
	"fmt"
	"strings"
	"sync"
)

// Channel identifies one control output carried in a frame.
type Channel int

const (
	Roll Channel = iota
	Pitch
	Throttle
	Yaw
	Aux1
	Aux2
	Aux3
	Aux4

	NumChannels = 8

	// noChannel marks a binding whose channel key was absent from the file.
	noChannel Channel = -1
)

// Native instruction range of the receiver.
const (
	MinPPM = 0
	MaxPPM = 250
)

var channelNames = [NumChannels]string{
	"roll", "pitch", "throttle", "yaw", "aux1", "aux2", "aux3", "aux4",
}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// IsAux reports whether c is one of the auxiliary toggle channels.
func (c Channel) IsAux() bool {
	return c >= Aux1 && c <= Aux4
}

func (c Channel) valid() bool {
	return c >= 0 && int(c) < NumChannels
}

// ParseChannel accepts the lower-case channel names used in config files.
func ParseChannel(s string) (Channel, error) {
	ss := strings.TrimSpace(strings.ToLower(s))
	for i, n := range channelNames {
		if n == ss {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q (available: %v)", s, channelNames)
}

// UnmarshalYAML lets profiles name channels as strings.
func (c *Channel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	ch, err := ParseChannel(s)
	if err != nil {
		return err
	}
	*c = ch
	return nil
}

func (c Channel) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// Limits bounds every channel value. Both ends must sit inside [MinPPM, MaxPPM].
type Limits struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func DefaultLimits() Limits {
	return Limits{Min: MinPPM, Max: MaxPPM}
}

func (l Limits) Validate() error {
	if l.Min < MinPPM || l.Max > MaxPPM || l.Min >= l.Max {
		return fmt.Errorf("invalid limits: min=%d, max=%d (must satisfy %d <= min < max <= %d)",
			l.Min, l.Max, MinPPM, MaxPPM)
	}
	return nil
}

// Clamp bounds v into [Min, Max] and then truncates it toward zero.
func (l Limits) Clamp(v float64) int {
	return int(clamp(v, float64(l.Min), float64(l.Max)))
}

// Snapshot is a copy of all channel values in frame order.
type Snapshot [NumChannels]int

// ChannelState holds the latest value of every channel. It is safe for
// concurrent use; Snapshot reads all channels under one lock.
type ChannelState struct {
	mu     sync.Mutex
	limits Limits
	values Snapshot
}

// NewChannelState returns a state with flight channels at the minimum and
// auxiliary channels at the maximum.
func NewChannelState(limits Limits) *ChannelState {
	s := &ChannelState{limits: limits}
	for c := Roll; c < NumChannels; c++ {
		if c.IsAux() {
			s.values[c] = limits.Max
		} else {
			s.values[c] = limits.Min
		}
	}
	return s
}

func (s *ChannelState) Limits() Limits {
	return s.limits
}

func (s *ChannelState) Get(c Channel) int {
	if !c.valid() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[c]
}

// Set stores v into c after clamping it into the state's limits.
func (s *ChannelState) Set(c Channel, v int) int {
	if !c.valid() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[c] = clampInt(v, s.limits.Min, s.limits.Max)
	return s.values[c]
}

// Add offsets c by delta and re-clamps. It returns the stored value.
func (s *ChannelState) Add(c Channel, delta int) int {
	if !c.valid() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[c] = clampInt(s.values[c]+delta, s.limits.Min, s.limits.Max)
	return s.values[c]
}

func (s *ChannelState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// String renders the four flight channels for status output.
func (s *ChannelState) String() string {
	v := s.Snapshot()
	return fmt.Sprintf("Roll:%d, Pitch:%d, Throttle:%d, Yaw:%d", v[Roll], v[Pitch], v[Throttle], v[Yaw])
}

// String renders every channel, aux included.
func (v Snapshot) String() string {
	var b strings.Builder
	for c := Roll; c < NumChannels; c++ {
		if c > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%d", c, v[c])
	}
	return b.String()
}
