package pwm

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPi drives BCM hardware-PWM pins (12, 13, 18, 19) on a Raspberry Pi.
// Channel i maps to the i-th pin passed to OpenRPi.
type RPi struct {
	mu   sync.Mutex
	pins []rpio.Pin
}

// OpenRPi maps GPIO memory and switches pins to PWM mode at freqHz carrier
// frequency with an 8-bit cycle.
func OpenRPi(pins []int, freqHz int) (*RPi, error) {
	if freqHz <= 0 {
		freqHz = 5000
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpio open: %w", err)
	}
	r := &RPi{}
	for _, n := range pins {
		p := rpio.Pin(n)
		p.Mode(rpio.Pwm)
		p.Freq(freqHz * MaxLevel)
		p.DutyCycle(0, MaxLevel)
		r.pins = append(r.pins, p)
	}
	return r, nil
}

// SetOutput sets the duty cycle of the channel's pin to value/255.
func (r *RPi) SetOutput(channel int, value uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if channel < 0 || channel >= len(r.pins) {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
	r.pins[channel].DutyCycle(uint32(value), MaxLevel)
	return nil
}

// Close drives every pin to zero and unmaps GPIO memory.
func (r *RPi) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pins {
		p.DutyCycle(0, MaxLevel)
	}
	r.pins = nil
	return rpio.Close()
}
