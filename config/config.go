// Package config loads the daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid classifies validation failures.
var ErrInvalid = errors.New("invalid config")

// Error wraps a failure with the operation and file it happened in.
type Error struct {
	Op   string
	Path string // optional
	Err  error
}

// Error formats as "op (path=...): cause".
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := e.Op
	if e.Path != "" {
		s += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Link selects and configures the serial transport.
type Link struct {
	// Transport is "termios" (Linux serial), "portable" (go.bug.st/serial)
	// or "stdio".
	Transport string `yaml:"transport"`
	Device    string `yaml:"device"`
	Baud      int    `yaml:"baud"`
	Newline   string `yaml:"newline"`
}

// Menu holds the controller options.
type Menu struct {
	InputMode     string        `yaml:"input_mode"`  // raw | line
	Concurrency   string        `yaml:"concurrency"` // single | dual
	IdleDelay     time.Duration `yaml:"idle_delay"`
	ValueTimeout  time.Duration `yaml:"value_timeout"` // 0 waits forever
	MaxLineLength int           `yaml:"max_line_length"`
	Banner        string        `yaml:"banner"`
}

// PWM selects the output backend.
type PWM struct {
	Backend   string `yaml:"backend"` // memory | sysfs | rpi
	FreqHz    int    `yaml:"freq_hz"`
	SysfsRoot string `yaml:"sysfs_root"`
	Chip      int    `yaml:"chip"`
	Pins      []int  `yaml:"pins"` // BCM pins for rpi, channel i = Pins[i]
}

// LED is the controlled channel and its startup brightness.
type LED struct {
	Channel    int `yaml:"channel"`
	Brightness int `yaml:"brightness"`
	PWM        PWM `yaml:"pwm"`
}

// Log configures the logger package.
type Log struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
	File   string `yaml:"file"`   // empty logs to stderr
}

// Config is the whole daemon configuration.
type Config struct {
	Link Link `yaml:"link"`
	Menu Menu `yaml:"menu"`
	LED  LED  `yaml:"led"`
	Log  Log  `yaml:"log"`
}

// Default matches the ESP32 firmware: 115200 baud, line-buffered input
// on two tasks with a 10ms idle, 10s value timeout, full brightness, 5kHz
// PWM.
func Default() Config {
	return Config{
		Link: Link{
			Transport: "termios",
			Device:    "/dev/rfcomm0",
			Baud:      115200,
			Newline:   "\r\n",
		},
		Menu: Menu{
			InputMode:    "line",
			Concurrency:  "dual",
			IdleDelay:    10 * time.Millisecond,
			ValueTimeout: 10 * time.Second,
			Banner:       "ESP32 Bluetooth LED Control Ready.",
		},
		LED: LED{
			Channel:    0,
			Brightness: 255,
			PWM: PWM{
				Backend:   "memory",
				FreqHz:    5000,
				SysfsRoot: "/sys/class/pwm",
				Pins:      []int{18},
			},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Op: "config.load", Path: path, Err: err}
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, &Error{Op: "config.load", Path: path, Err: fmt.Errorf("%w: %v", ErrInvalid, err)}
	}
	if err := cfg.Validate(); err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	var problems []error
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	switch c.Link.Transport {
	case "termios", "portable":
		if c.Link.Device == "" {
			bad("link.device is required for transport %q", c.Link.Transport)
		}
	case "stdio":
	default:
		bad("link.transport %q: want termios, portable or stdio", c.Link.Transport)
	}
	if c.Link.Baud <= 0 {
		bad("link.baud must be positive, got %d", c.Link.Baud)
	}

	switch c.Menu.InputMode {
	case "raw", "line":
	default:
		bad("menu.input_mode %q: want raw or line", c.Menu.InputMode)
	}
	switch c.Menu.Concurrency {
	case "single", "dual":
	default:
		bad("menu.concurrency %q: want single or dual", c.Menu.Concurrency)
	}
	if c.Menu.IdleDelay <= 0 {
		bad("menu.idle_delay must be positive, got %s", c.Menu.IdleDelay)
	}
	if c.Menu.ValueTimeout < 0 {
		bad("menu.value_timeout must not be negative, got %s", c.Menu.ValueTimeout)
	}
	if c.Menu.MaxLineLength < 0 {
		bad("menu.max_line_length must not be negative, got %d", c.Menu.MaxLineLength)
	}

	if c.LED.Brightness < 0 || c.LED.Brightness > 255 {
		bad("led.brightness %d outside 0..255", c.LED.Brightness)
	}
	if c.LED.Channel < 0 {
		bad("led.channel must not be negative, got %d", c.LED.Channel)
	}
	switch c.LED.PWM.Backend {
	case "memory", "sysfs":
	case "rpi":
		if c.LED.Channel >= len(c.LED.PWM.Pins) {
			bad("led.channel %d has no entry in led.pwm.pins", c.LED.Channel)
		}
	default:
		bad("led.pwm.backend %q: want memory, sysfs or rpi", c.LED.PWM.Backend)
	}
	if c.LED.PWM.FreqHz <= 0 {
		bad("led.pwm.freq_hz must be positive, got %d", c.LED.PWM.FreqHz)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		bad("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		bad("log.format %q: want text or json", c.Log.Format)
	}

	if len(problems) == 0 {
		return nil
	}
	return &Error{Op: "config.validate", Err: fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))}
}
