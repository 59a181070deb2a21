package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// DefaultSysfsRoot is where the kernel exposes PWM chips.
const DefaultSysfsRoot = "/sys/class/pwm"

// SysfsConfig selects a pwmchip and the carrier frequency.
type SysfsConfig struct {
	Root   string // default DefaultSysfsRoot
	Chip   int
	FreqHz int // default 5000
}

// Sysfs drives channels of one pwmchip through the kernel sysfs interface.
// Channels are exported and enabled on first use.
type Sysfs struct {
	dir    string
	period time.Duration

	mu       sync.Mutex
	prepared map[int]bool
}

// OpenSysfs checks that the chip exists. No channel is touched yet.
func OpenSysfs(cfg SysfsConfig) (*Sysfs, error) {
	if cfg.Root == "" {
		cfg.Root = DefaultSysfsRoot
	}
	if cfg.FreqHz <= 0 {
		cfg.FreqHz = 5000
	}
	dir := filepath.Join(cfg.Root, "pwmchip"+strconv.Itoa(cfg.Chip))
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("pwm chip: %w", err)
	}
	return &Sysfs{
		dir:      dir,
		period:   time.Second / time.Duration(cfg.FreqHz),
		prepared: make(map[int]bool),
	}, nil
}

// SetOutput writes value scaled to the period as the channel duty cycle.
func (s *Sysfs) SetOutput(channel int, value uint8) error {
	if channel < 0 {
		return ErrUnknownChannel
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.prepared[channel] {
		if err := s.prepare(channel); err != nil {
			return err
		}
		s.prepared[channel] = true
	}
	duty := int64(s.period) * int64(value) / MaxLevel
	return s.write(channel, "duty_cycle", strconv.FormatInt(duty, 10))
}

// Close disables and unexports every channel that was used.
func (s *Sysfs) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for ch := range s.prepared {
		if err := s.write(ch, "enable", "0"); err != nil {
			errs = append(errs, err)
		}
		if err := os.WriteFile(filepath.Join(s.dir, "unexport"), []byte(strconv.Itoa(ch)), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("unexport %d: %w", ch, err))
		}
		delete(s.prepared, ch)
	}
	return errors.Join(errs...)
}

func (s *Sysfs) prepare(channel int) error {
	chDir := s.channelDir(channel)
	if _, err := os.Stat(chDir); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(filepath.Join(s.dir, "export"), []byte(strconv.Itoa(channel)), 0o644); err != nil {
			return fmt.Errorf("export %d: %w", channel, err)
		}
	}
	if err := s.write(channel, "period", strconv.FormatInt(int64(s.period), 10)); err != nil {
		return err
	}
	return s.write(channel, "enable", "1")
}

func (s *Sysfs) write(channel int, attr, val string) error {
	p := filepath.Join(s.channelDir(channel), attr)
	if err := os.WriteFile(p, []byte(val), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func (s *Sysfs) channelDir(channel int) string {
	return filepath.Join(s.dir, "pwm"+strconv.Itoa(channel))
}
