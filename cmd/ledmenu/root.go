package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	ledmenu "github.com/luhtfiimanal/go-ledmenu"
	"github.com/luhtfiimanal/go-ledmenu/config"
	"github.com/luhtfiimanal/go-ledmenu/device"
	"github.com/luhtfiimanal/go-ledmenu/logger"
	"github.com/luhtfiimanal/go-ledmenu/pwm"
)

var version = "dev"

type runFlags struct {
	configPath  string
	device      string
	baud        int
	transport   string
	inputMode   string
	concurrency string
	pwmBackend  string
	debug       bool
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ledmenu",
		Short:        "Serve an LED control menu over a serial link",
		SilenceUsage: true,
	}
	cmd.AddCommand(newRunCmd(), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "ledmenu", version)
			return err
		},
	}
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the link and serve the menu until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, f.debug, cmd.ErrOrStderr())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.StringVar(&f.device, "device", "", "serial device path")
	fl.IntVar(&f.baud, "baud", 0, "baud rate")
	fl.StringVar(&f.transport, "transport", "", "link transport: termios, portable or stdio")
	fl.StringVar(&f.inputMode, "input-mode", "", "input dispatch: raw or line")
	fl.StringVar(&f.concurrency, "concurrency", "", "loop shape: single or dual")
	fl.StringVar(&f.pwmBackend, "pwm", "", "PWM backend: memory, sysfs or rpi")
	fl.BoolVar(&f.debug, "debug", false, "debug logging with source locations")
	return cmd
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command, f runFlags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}

	fl := cmd.Flags()
	if fl.Changed("device") {
		cfg.Link.Device = f.device
	}
	if fl.Changed("baud") {
		cfg.Link.Baud = f.baud
	}
	if fl.Changed("transport") {
		cfg.Link.Transport = f.transport
	}
	if fl.Changed("input-mode") {
		cfg.Menu.InputMode = f.inputMode
	}
	if fl.Changed("concurrency") {
		cfg.Menu.Concurrency = f.concurrency
	}
	if fl.Changed("pwm") {
		cfg.LED.PWM.Backend = f.pwmBackend
	}
	return cfg, cfg.Validate()
}

type linkCloser interface {
	ledmenu.Link
	io.Closer
}

type outputCloser interface {
	pwm.Output
	io.Closer
}

type nopCloser struct{ pwm.Output }

func (nopCloser) Close() error { return nil }

func serve(ctx context.Context, cfg config.Config, debug bool, stderr io.Writer) error {
	cleanup, err := logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Debug:  debug,
		Stderr: stderr,
	})
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()
	log := logger.L()

	out, err := openOutput(cfg.LED)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			log.Warn("pwm.close_failed", "err", cerr)
		}
	}()

	link, err := openLink(cfg.Link)
	if err != nil {
		return err
	}
	defer link.Close()
	log.Info("link.opened", "transport", cfg.Link.Transport, "device", cfg.Link.Device, "baud", cfg.Link.Baud)

	dev := device.New(pwm.Logged{Out: out, Log: log.With("component", "pwm")}, cfg.LED.Channel, uint8(cfg.LED.Brightness))
	ctrl := ledmenu.New(link, dev, ledmenu.Options{
		InputMode:     ledmenu.InputMode(cfg.Menu.InputMode),
		Concurrency:   ledmenu.Concurrency(cfg.Menu.Concurrency),
		IdleDelay:     cfg.Menu.IdleDelay,
		ValueTimeout:  cfg.Menu.ValueTimeout,
		MaxLineLength: cfg.Menu.MaxLineLength,
		Newline:       cfg.Link.Newline,
		Banner:        cfg.Menu.Banner,
		Log:           log,
	})

	err = ctrl.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("ledmenu.stopped")
		return nil
	}
	if err != nil {
		log.Error("ledmenu.failed", "err", err)
	}
	return err
}

func openOutput(cfg config.LED) (outputCloser, error) {
	switch cfg.PWM.Backend {
	case "memory":
		return nopCloser{pwm.NewMemory()}, nil
	case "sysfs":
		s, err := pwm.OpenSysfs(pwm.SysfsConfig{
			Root:   cfg.PWM.SysfsRoot,
			Chip:   cfg.PWM.Chip,
			FreqHz: cfg.PWM.FreqHz,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "rpi":
		r, err := pwm.OpenRPi(cfg.PWM.Pins, cfg.PWM.FreqHz)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: pwm backend %q", config.ErrInvalid, cfg.PWM.Backend)
	}
}
