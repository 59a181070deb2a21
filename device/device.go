// Package device holds the LED output and blink configuration shared by the
// menu and the blink scheduler.
package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/luhtfiimanal/go-ledmenu/pwm"
)

// Interval is the blink period in milliseconds. Off disables blinking.
type Interval int

const (
	Off    Interval = 0
	Fast   Interval = 200
	Medium Interval = 500
	Slow   Interval = 1000
)

// Duration converts the interval to a time.Duration.
func (i Interval) Duration() time.Duration { return time.Duration(i) * time.Millisecond }

// Snapshot is a consistent copy of the device state.
type Snapshot struct {
	Brightness uint8
	On         bool
	Interval   Interval
	Level      uint8 // last level written to the output
}

// State owns the LED output. All methods are safe for concurrent use; every
// change that affects the LED is applied to the PWM output before the lock is
// released, so the output always equals brightness when on and 0 when off.
type State struct {
	mu         sync.Mutex
	out        pwm.Output
	channel    int
	brightness uint8
	on         bool
	interval   Interval
	level      uint8
}

// New returns a State that starts off, not blinking, at the given brightness.
// Nothing is written until the first change or Apply.
func New(out pwm.Output, channel int, brightness uint8) *State {
	return &State{out: out, channel: channel, brightness: brightness}
}

// Apply writes the current brightness/on combination to the output.
func (s *State) Apply() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply()
}

// Toggle flips the LED and applies it. It returns the new on state; the
// state changes even if the write fails.
func (s *State) Toggle() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.on = !s.on
	return s.on, s.apply()
}

// SetBrightness stores v and applies it.
func (s *State) SetBrightness(v uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brightness = v
	return s.apply()
}

// SetInterval changes the blink period without touching the LED.
func (s *State) SetInterval(i Interval) {
	s.mu.Lock()
	s.interval = i
	s.mu.Unlock()
}

// StopBlinking disables blinking and forces the LED off.
func (s *State) StopBlinking() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = Off
	s.on = false
	return s.apply()
}

// BlinkToggle flips the LED only while blinking is enabled. toggled reports
// whether anything changed.
func (s *State) BlinkToggle() (toggled bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval <= Off {
		return false, nil
	}
	s.on = !s.on
	return true, s.apply()
}

// Interval returns the current blink interval.
func (s *State) Interval() Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Brightness returns the stored brightness, whether or not the LED is on.
func (s *State) Brightness() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brightness
}

// Snapshot returns a consistent copy of the whole state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Brightness: s.brightness,
		On:         s.on,
		Interval:   s.interval,
		Level:      s.level,
	}
}

// apply must be called with mu held.
func (s *State) apply() error {
	level := uint8(0)
	if s.on {
		level = s.brightness
	}
	s.level = level
	if err := s.out.SetOutput(s.channel, level); err != nil {
		return fmt.Errorf("apply level %d: %w", level, err)
	}
	return nil
}
