//go:build !linux

package main

import (
	"fmt"

	"github.com/luhtfiimanal/go-ledmenu/config"
	"github.com/luhtfiimanal/go-ledmenu/streamlink"
)

func openLink(cfg config.Link) (linkCloser, error) {
	switch cfg.Transport {
	case "termios":
		return nil, fmt.Errorf("%w: termios transport needs linux, use portable", config.ErrInvalid)
	case "portable":
		return streamlink.OpenPortable(cfg.Device, cfg.Baud)
	case "stdio":
		return streamlink.Stdio(), nil
	default:
		return nil, fmt.Errorf("%w: transport %q", config.ErrInvalid, cfg.Transport)
	}
}
