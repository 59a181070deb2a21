//go:build linux

package serial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// ErrClosed is returned by reads on a Port after Close.
var ErrClosed = errors.New("serial: port closed")

// waitSlice bounds a single poll(2) in WaitReadable so context cancellation
// is observed even when neither fd becomes ready.
const waitSlice = 50 * time.Millisecond

// Port provides low-latency, killable, byte-oriented access to a Linux serial port.
// It is safe for concurrent use by multiple goroutines.
type Port struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd

	// fdMu is held shared by every poll(2) and exclusively by Close while
	// it releases the fds, so no poll can see a reused fd number.
	fdMu sync.RWMutex

	mu      sync.Mutex
	pending []byte // bytes read from the device but not yet handed out
	rbuf    []byte
}

// Config holds configuration parameters for opening a serial port.
type Config struct {
	Device   string
	BaudRate int
	Newline  string // default "\r\n"
}

// Open opens a serial port using the provided Config and returns a Port.
// The port is configured for raw, low-latency, non-buffered operation.
func Open(cfg Config) (*Port, error) {
	if cfg.Newline == "" {
		cfg.Newline = "\r\n"
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	baud := baudToUnix(cfg.BaudRate)
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// VMIN=1, VTIME=0: a read returns as soon as one byte is there.
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Reads only happen after poll reports POLLIN, so blocking mode is fine.
	if err := syscall.SetNonblock(fd, false); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set blocking: %w", err)
	}

	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	file := os.NewFile(uintptr(fd), cfg.Device)
	return &Port{
		fd:     fd,
		file:   file,
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
		rbuf:   make([]byte, 256),
	}, nil
}

// Write writes p to the serial port.
func (s *Port) Write(p []byte) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	return s.file.Write(p)
}

// WriteLine writes a line followed by newline. An empty newline uses the
// port's configured line ending.
func (s *Port) WriteLine(line string, newline string) error {
	if newline == "" {
		newline = s.config.Newline
	}
	_, err := s.Write([]byte(line + newline))
	return err
}

// ReadAvailable returns the next received byte without blocking. ok is false
// when nothing is waiting.
func (s *Port) ReadAvailable() (b byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) > 0 {
		return s.pop(), true, nil
	}
	ready, err := s.poll(0)
	if err != nil || !ready {
		return 0, false, err
	}
	n, err := s.file.Read(s.rbuf)
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	s.pending = append(s.pending, s.rbuf[:n]...)
	return s.pop(), true, nil
}

// WaitReadable blocks until a byte can be read, the port is closed, or ctx
// is done. A hangup also counts as readable so that the following read
// reports the error.
func (s *Port) WaitReadable(ctx context.Context) error {
	s.mu.Lock()
	buffered := len(s.pending) > 0
	s.mu.Unlock()
	if buffered {
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ready, err := s.poll(waitSlice)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
	}
}

// Close closes the serial port and unblocks any WaitReadable calls.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *Port) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		// Wake up poll using self-pipe
		if s.pipeW > 0 {
			unix.Write(s.pipeW, []byte{1})
		}

		s.fdMu.Lock()
		defer s.fdMu.Unlock()
		if s.file != nil {
			err = s.file.Close()
		}
		if s.pipeR > 0 {
			unix.Close(s.pipeR)
		}
		if s.pipeW > 0 {
			unix.Close(s.pipeW)
		}
	})
	return err
}

// poll waits up to timeout for the device to become readable. It returns
// ErrClosed once Close has been called.
func (s *Port) poll(timeout time.Duration) (bool, error) {
	s.fdMu.RLock()
	defer s.fdMu.RUnlock()
	if s.isClosed() {
		return false, ErrClosed
	}
	pfd := []unix.PollFd{
		{Fd: int32(s.fd), Events: unix.POLLIN},
		{Fd: int32(s.pipeR), Events: unix.POLLIN},
	}
	for {
		_, err := unix.Poll(pfd, int(timeout/time.Millisecond))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("poll: %w", err)
		}
		break
	}
	if s.isClosed() || pfd[1].Revents&unix.POLLIN != 0 {
		return false, ErrClosed
	}
	return pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
}

func (s *Port) pop() byte {
	b := s.pending[0]
	s.pending = s.pending[1:]
	return b
}

func (s *Port) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func baudToUnix(baud int) uint32 {
	switch baud {
	case 4800:
		return unix.B4800
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	case 460800:
		return unix.B460800
	case 921600:
		return unix.B921600
	default:
		return unix.B115200 // fallback
	}
}
