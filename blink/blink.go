// Package blink toggles the LED on a fixed cadence while a blink interval is
// configured, independently of menu input.
package blink

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/luhtfiimanal/go-ledmenu/device"
)

// Target is the part of the device state the scheduler drives.
type Target interface {
	Interval() device.Interval
	BlinkToggle() (bool, error)
}

// Scheduler decides on every tick whether the blink interval has elapsed.
// Tick and Run must not be used from more than one goroutine at a time.
type Scheduler struct {
	dev   Target
	clock clock.Clock
	log   *slog.Logger

	last    time.Time
	toggles atomic.Int64
}

// New returns a Scheduler whose elapsed-time baseline is the clock's current
// time.
func New(dev Target, clk clock.Clock, log *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		dev:   dev,
		clock: clk,
		log:   log,
		last:  clk.Now(),
	}
}

// Tick toggles the LED when blinking is enabled and at least one interval has
// passed since the last toggle. With blinking disabled the LED is left alone.
func (s *Scheduler) Tick(now time.Time) bool {
	iv := s.dev.Interval()
	if iv <= device.Off {
		return false
	}
	if now.Sub(s.last) < iv.Duration() {
		return false
	}

	toggled, err := s.dev.BlinkToggle()
	if err != nil {
		s.log.Warn("blink.apply_failed", "err", err)
	}
	if !toggled {
		// Blinking was switched off between the two calls.
		return false
	}
	s.last = now
	s.toggles.Add(1)
	return true
}

// Run ticks every period until ctx is done.
func (s *Scheduler) Run(ctx context.Context, period time.Duration) error {
	t := s.clock.Ticker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.Tick(s.clock.Now())
		}
	}
}

// Toggles reports how many times the scheduler has flipped the LED.
func (s *Scheduler) Toggles() int64 { return s.toggles.Load() }
