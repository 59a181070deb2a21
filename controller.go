package ledmenu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/luhtfiimanal/go-ledmenu/blink"
	"github.com/luhtfiimanal/go-ledmenu/device"
	"github.com/luhtfiimanal/go-ledmenu/linereader"
	"github.com/luhtfiimanal/go-ledmenu/menu"
)

// Link is the text channel the menu is served on.
type Link interface {
	io.Writer
	// ReadAvailable returns the next received byte without blocking.
	ReadAvailable() (b byte, ok bool, err error)
	// WaitReadable blocks until ReadAvailable has something to return.
	WaitReadable(ctx context.Context) error
}

// InputMode selects how received bytes reach the menu.
type InputMode string

const (
	// InputRaw dispatches every byte as a key. CR and LF are ignored.
	InputRaw InputMode = "raw"
	// InputLine buffers bytes into lines; each line must be a single key.
	InputLine InputMode = "line"
)

// Concurrency selects the loop shape.
type Concurrency string

const (
	// Single polls input and ticks the blink scheduler from one goroutine.
	Single Concurrency = "single"
	// Dual runs input handling and blinking as two goroutines.
	Dual Concurrency = "dual"
)

// ErrInvalidOption is returned by Run for an unknown mode.
var ErrInvalidOption = errors.New("ledmenu: invalid option")

const msgInputTooLong = "Input too long."

// Options configures a Controller. Zero values pick the defaults noted.
type Options struct {
	InputMode   InputMode   // default InputLine
	Concurrency Concurrency // default Dual
	// IdleDelay is the pause between loop iterations and the blink tick
	// period. Default 10ms.
	IdleDelay time.Duration
	// ValueTimeout bounds the wait for a typed brightness value. Zero waits
	// forever.
	ValueTimeout time.Duration
	// MaxLineLength caps buffered lines in InputLine mode. Zero is unbounded.
	MaxLineLength int
	Newline       string // default "\r\n"
	Banner        string
	Clock         clock.Clock
	Log           *slog.Logger
}

// Controller wires the link, the menu, the line reader and the blink
// scheduler around one device state.
type Controller struct {
	link  Link
	dev   *device.State
	menu  *menu.Machine
	lines *linereader.Reader
	blink *blink.Scheduler
	clock clock.Clock
	opts  Options
	log   *slog.Logger

	unread []byte // bytes left over after a typed value, read before the link
}

// New builds a Controller around dev, filling unset Options with defaults.
func New(link Link, dev *device.State, opts Options) *Controller {
	if opts.InputMode == "" {
		opts.InputMode = InputLine
	}
	if opts.Concurrency == "" {
		opts.Concurrency = Dual
	}
	if opts.IdleDelay <= 0 {
		opts.IdleDelay = 10 * time.Millisecond
	}
	if opts.Newline == "" {
		opts.Newline = "\r\n"
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	c := &Controller{
		link:  link,
		dev:   dev,
		lines: linereader.New(opts.MaxLineLength),
		blink: blink.New(dev, opts.Clock, opts.Log.With("component", "blink")),
		clock: opts.Clock,
		opts:  opts,
		log:   opts.Log,
	}
	c.menu = menu.New(dev, link, valueReader{c}, menu.Config{
		Newline: opts.Newline,
		Banner:  opts.Banner,
		Log:     opts.Log.With("component", "menu"),
	})
	return c
}

// Menu exposes the state machine. It must not be used while Run is active.
func (c *Controller) Menu() *menu.Machine { return c.menu }

// Blink exposes the scheduler for inspection.
func (c *Controller) Blink() *blink.Scheduler { return c.blink }

// Run prints the main menu and serves the link until ctx is done or the link
// fails. There is no other way out: the Exit menu only stops answering.
func (c *Controller) Run(ctx context.Context) error {
	if c.opts.InputMode != InputRaw && c.opts.InputMode != InputLine {
		return fmt.Errorf("%w: input mode %q", ErrInvalidOption, c.opts.InputMode)
	}
	if c.opts.Concurrency != Single && c.opts.Concurrency != Dual {
		return fmt.Errorf("%w: concurrency %q", ErrInvalidOption, c.opts.Concurrency)
	}

	if err := c.dev.Apply(); err != nil {
		c.log.Warn("controller.initial_apply_failed", "err", err)
	}
	if err := c.menu.Start(); err != nil {
		return err
	}
	c.log.Info("controller.started",
		"input_mode", c.opts.InputMode,
		"concurrency", c.opts.Concurrency,
		"idle_delay", c.opts.IdleDelay,
		"value_timeout", c.opts.ValueTimeout)

	if c.opts.Concurrency == Single {
		return c.runSingle(ctx)
	}
	return c.runDual(ctx)
}

// runSingle is the cooperative loop: drain input, tick once, idle.
func (c *Controller) runSingle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.drainInput(ctx); err != nil {
			return err
		}
		c.blink.Tick(c.clock.Now())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(c.opts.IdleDelay):
		}
	}
}

// runDual runs the input task and the blink task side by side. The first to
// fail cancels the other.
func (c *Controller) runDual(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			if err := c.link.WaitReadable(gctx); err != nil {
				return fmt.Errorf("wait link: %w", err)
			}
			if err := c.drainInput(gctx); err != nil {
				return err
			}
		}
	})
	g.Go(func() error {
		return c.blink.Run(gctx, c.opts.IdleDelay)
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// drainInput dispatches every byte that is already available.
func (c *Controller) drainInput(ctx context.Context) error {
	for {
		b, ok, err := c.next()
		if err != nil {
			return fmt.Errorf("read link: %w", err)
		}
		if !ok {
			return nil
		}
		if err := c.dispatch(ctx, b); err != nil {
			return err
		}
	}
}

// next returns unread bytes first, then whatever the link has.
func (c *Controller) next() (byte, bool, error) {
	if len(c.unread) > 0 {
		b := c.unread[0]
		c.unread = c.unread[1:]
		return b, true, nil
	}
	return c.link.ReadAvailable()
}

func (c *Controller) dispatch(ctx context.Context, b byte) error {
	if c.opts.InputMode == InputRaw {
		if b == '\r' || b == '\n' {
			return nil
		}
		res, err := c.menu.HandleKey(ctx, b)
		c.observe(res)
		return err
	}

	line, ok, err := c.lines.Feed(b)
	if errors.Is(err, linereader.ErrInputTooLong) {
		c.log.Info("controller.input_too_long", "max", c.opts.MaxLineLength)
		if _, werr := io.WriteString(c.link, msgInputTooLong+c.opts.Newline); werr != nil {
			return fmt.Errorf("write link: %w", werr)
		}
		return nil
	}
	if !ok {
		return nil
	}
	res, err := c.menu.HandleLine(ctx, line)
	c.observe(res)
	return err
}

func (c *Controller) observe(res menu.Result) {
	if res.Err != nil {
		c.log.Info("controller.input_rejected", "state", res.From, "key", string(res.Key), "reason", res.Err)
		return
	}
	if res.From != res.To {
		c.log.Info("controller.menu_changed", "from", res.From, "to", res.To)
	}
}

// valueReader reads the brightness value straight off the link, bypassing
// the line reader. Leading CR/LF are skipped. The value ends at a terminator,
// which is consumed, or at the first non-digit after a digit, which is left
// for the next dispatch. When ValueTimeout expires whatever arrived is
// returned.
type valueReader struct{ c *Controller }

func (v valueReader) ReadValue(ctx context.Context) (string, error) {
	wctx := ctx
	if v.c.opts.ValueTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, v.c.opts.ValueTimeout)
		defer cancel()
	}

	var (
		buf    []byte
		digits bool
	)
	for {
		b, ok, err := v.c.next()
		if err != nil {
			return "", fmt.Errorf("read link: %w", err)
		}
		if ok {
			if b == '\r' || b == '\n' {
				if len(buf) == 0 {
					continue
				}
				return string(buf), nil
			}
			isDigit := b >= '0' && b <= '9'
			if digits && !isDigit {
				v.c.unread = append([]byte{b}, v.c.unread...)
				return string(buf), nil
			}
			digits = digits || isDigit
			buf = append(buf, b)
			continue
		}

		if err := v.c.link.WaitReadable(wctx); err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				v.c.log.Info("controller.value_timeout", "received", string(buf))
				return string(buf), nil
			}
			return "", err
		}
	}
}
