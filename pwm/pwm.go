// Package pwm provides the LED intensity outputs: an in-memory recorder, the
// Linux sysfs PWM class, and Raspberry Pi hardware PWM via go-rpio.
//
// Every backend takes an 8-bit level (0 = off, 255 = full) and scales it to
// its own duty-cycle representation.
package pwm

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// MaxLevel is the full-scale output level (8-bit resolution).
const MaxLevel = 255

// ErrUnknownChannel is returned when a backend has no such output channel.
var ErrUnknownChannel = errors.New("pwm: unknown channel")

// Output sets the intensity of one PWM channel.
type Output interface {
	SetOutput(channel int, value uint8) error
}

// Write is one recorded SetOutput call.
type Write struct {
	Channel int
	Value   uint8
}

// Memory records writes instead of driving hardware.
type Memory struct {
	mu      sync.Mutex
	values  map[int]uint8
	history []Write
}

// NewMemory returns an empty recorder.
func NewMemory() *Memory {
	return &Memory{values: make(map[int]uint8)}
}

// SetOutput records value as the level of channel.
func (m *Memory) SetOutput(channel int, value uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[channel] = value
	m.history = append(m.history, Write{Channel: channel, Value: value})
	return nil
}

// Value returns the last level written to channel.
func (m *Memory) Value(channel int) uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[channel]
}

// History returns a copy of all writes in order.
func (m *Memory) History() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Write, len(m.history))
	copy(out, m.history)
	return out
}

// Logged wraps an Output and logs every write at debug level.
type Logged struct {
	Out Output
	Log *slog.Logger
}

// SetOutput forwards to Out and logs the result.
func (l Logged) SetOutput(channel int, value uint8) error {
	err := l.Out.SetOutput(channel, value)
	if err != nil {
		l.Log.Warn("pwm.write_failed", "channel", channel, "value", value, "err", err)
		return fmt.Errorf("pwm channel %d: %w", channel, err)
	}
	l.Log.Debug("pwm.write", "channel", channel, "value", value)
	return nil
}
