package streamlink

import (
	"fmt"
	"io"
	"os"

	bugst "go.bug.st/serial"
)

// OpenPortable opens device through go.bug.st/serial (8N1, no flow control)
// and wraps it in a Link.
func OpenPortable(device string, baud int) (*Link, error) {
	port, err := bugst.Open(device, &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return New(port), nil
}

type stdio struct {
	io.Reader
	io.Writer
}

// Close leaves the process's standard streams open.
func (stdio) Close() error { return nil }

// Stdio returns a Link reading os.Stdin and writing os.Stdout.
func Stdio() *Link {
	return New(stdio{Reader: os.Stdin, Writer: os.Stdout})
}
