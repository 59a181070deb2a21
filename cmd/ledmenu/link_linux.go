//go:build linux

package main

import (
	"fmt"

	"github.com/luhtfiimanal/go-ledmenu/config"
	"github.com/luhtfiimanal/go-ledmenu/serial"
	"github.com/luhtfiimanal/go-ledmenu/streamlink"
)

func openLink(cfg config.Link) (linkCloser, error) {
	switch cfg.Transport {
	case "termios":
		port, err := serial.Open(serial.Config{
			Device:   cfg.Device,
			BaudRate: cfg.Baud,
			Newline:  cfg.Newline,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
		}
		return port, nil
	case "portable":
		return streamlink.OpenPortable(cfg.Device, cfg.Baud)
	case "stdio":
		return streamlink.Stdio(), nil
	default:
		return nil, fmt.Errorf("%w: transport %q", config.ErrInvalid, cfg.Transport)
	}
}
