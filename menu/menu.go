// Package menu implements the text menu that controls the LED: a small state
// machine fed one key (or one single-key line) at a time.
package menu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/luhtfiimanal/go-ledmenu/device"
)

// Device is what the menu changes.
type Device interface {
	Toggle() (bool, error)
	SetBrightness(v uint8) error
	Brightness() uint8
	SetInterval(i device.Interval)
	StopBlinking() error
}

// ValueReader blocks for the value typed after "Enter brightness". It returns
// whatever text arrived; an error means the link or ctx is gone.
type ValueReader interface {
	ReadValue(ctx context.Context) (string, error)
}

// Config controls output formatting.
type Config struct {
	Newline string // default "\r\n"
	Banner  string // printed by Start; empty prints nothing
	Log     *slog.Logger
}

// Machine is not safe for concurrent use; one goroutine feeds it input.
type Machine struct {
	state  State
	dev    Device
	out    io.Writer
	values ValueReader
	nl     string
	banner string
	log    *slog.Logger

	werr error // first write error since the last handled input
}

// New returns a Machine in MainMenu. Nothing is written until Start.
func New(dev Device, out io.Writer, values ValueReader, cfg Config) *Machine {
	if cfg.Newline == "" {
		cfg.Newline = "\r\n"
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &Machine{
		state:  MainMenu,
		dev:    dev,
		out:    out,
		values: values,
		nl:     cfg.Newline,
		banner: cfg.Banner,
		log:    cfg.Log,
	}
}

// State returns the current menu.
func (m *Machine) State() State { return m.state }

// Start prints the banner and the main menu.
func (m *Machine) Start() error {
	m.werr = nil
	if m.banner != "" {
		m.println(m.banner)
	}
	m.printMainMenu()
	return m.writeErr()
}

// HandleLine dispatches a buffered line. After trimming it must be exactly
// one character; anything else is rejected without a state change.
func (m *Machine) HandleLine(ctx context.Context, line string) (Result, error) {
	line = strings.TrimSpace(line)
	if len(line) != 1 {
		m.werr = nil
		m.println(msgInvalidInput)
		res := Result{From: m.state, To: m.state, Err: ErrInvalidLineLength}
		m.log.Debug("menu.rejected", "state", m.state, "len", len(line))
		return res, m.writeErr()
	}
	return m.HandleKey(ctx, line[0])
}

// HandleKey dispatches one key against the current state. The returned error
// is non-nil only for link or context failures.
func (m *Machine) HandleKey(ctx context.Context, key byte) (Result, error) {
	m.werr = nil
	res := Result{From: m.state, Key: key}

	var err error
	switch m.state {
	case MainMenu:
		res.Err = m.handleMain(key)
	case BrightnessMenu:
		res.Err, err = m.handleBrightness(ctx, key)
	case BlinkMenu:
		res.Err = m.handleBlink(key)
	case Exit:
		m.println(msgExiting)
	}
	res.To = m.state

	m.log.Debug("menu.key", "key", string(key), "from", res.From, "to", res.To, "err", res.Err)
	if err != nil {
		return res, err
	}
	return res, m.writeErr()
}

func (m *Machine) handleMain(key byte) error {
	var userErr error
	switch key {
	case '1':
		on, err := m.dev.Toggle()
		m.deviceErr("toggle", err)
		if on {
			m.println(msgLEDOn)
		} else {
			m.println(msgLEDOff)
		}
	case '2':
		m.enter(BrightnessMenu)
		return nil
	case '3':
		m.enter(BlinkMenu)
		return nil
	case '4':
		m.enter(Exit)
		return nil
	default:
		m.println(msgInvalidSelection)
		userErr = ErrInvalidSelection
	}
	m.printMainMenu()
	return userErr
}

func (m *Machine) handleBrightness(ctx context.Context, key byte) (userErr, err error) {
	switch key {
	case '1':
		m.print(msgEnterBrightness)
		raw, rerr := m.values.ReadValue(ctx)
		if rerr != nil {
			return nil, fmt.Errorf("read brightness: %w", rerr)
		}
		level, clamped := ParseLevel(raw)
		if clamped {
			userErr = ErrOutOfRangeValue
		}
		m.deviceErr("set_brightness", m.dev.SetBrightness(level))
		m.print(msgBrightnessSet)
		m.println(strconv.Itoa(int(level)))
	case '2':
		m.enter(MainMenu)
		return nil, nil
	default:
		m.println(msgInvalidSelection)
		userErr = ErrInvalidSelection
	}
	m.printBrightnessMenu()
	return userErr, nil
}

func (m *Machine) handleBlink(key byte) error {
	var userErr error
	switch key {
	case '1':
		m.dev.SetInterval(device.Fast)
		m.println(msgFast)
	case '2':
		m.dev.SetInterval(device.Medium)
		m.println(msgMedium)
	case '3':
		m.dev.SetInterval(device.Slow)
		m.println(msgSlow)
	case '4':
		m.deviceErr("stop_blinking", m.dev.StopBlinking())
		m.println(msgBlinkOff)
	case '5':
		m.enter(MainMenu)
		return nil
	default:
		m.println(msgInvalidSelection)
		userErr = ErrInvalidSelection
	}
	m.printBlinkMenu()
	return userErr
}

// enter switches state and prints the destination menu once.
func (m *Machine) enter(s State) {
	m.state = s
	m.printMenu(s)
}

// deviceErr logs a failed output write. The state change already happened,
// so the menu carries on.
func (m *Machine) deviceErr(op string, err error) {
	if err != nil {
		m.log.Warn("menu.device_error", "op", op, "err", err)
	}
}

func (m *Machine) print(s string) {
	if m.werr != nil {
		return
	}
	if _, err := io.WriteString(m.out, s); err != nil {
		m.werr = err
	}
}

func (m *Machine) println(s string) { m.print(s + m.nl) }

func (m *Machine) writeErr() error {
	if m.werr != nil {
		return fmt.Errorf("write menu output: %w", m.werr)
	}
	return nil
}
