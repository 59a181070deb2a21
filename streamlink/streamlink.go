// Package streamlink adapts any blocking io.ReadWriteCloser into a menu link
// with non-blocking and context-aware reads.
//
// A pump goroutine moves received bytes into an internal queue; readers never
// touch the underlying stream directly. This is how portable serial ports
// (go.bug.st/serial) and the process's stdio are driven.
package streamlink

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by reads on a Link after Close.
var ErrClosed = errors.New("streamlink: closed")

// Link is safe for concurrent use by multiple goroutines.
type Link struct {
	rwc io.ReadWriteCloser

	mu      sync.Mutex
	pending []byte
	err     error // terminal read error, reported after pending drains

	notify    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// New starts pumping rwc and returns the Link. Close stops the pump by
// closing rwc.
func New(rwc io.ReadWriteCloser) *Link {
	l := &Link{
		rwc:    rwc,
		notify: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	go l.pump()
	return l
}

func (l *Link) pump() {
	buf := make([]byte, 256)
	for {
		n, err := l.rwc.Read(buf)
		if n > 0 {
			l.mu.Lock()
			l.pending = append(l.pending, buf[:n]...)
			l.mu.Unlock()
			l.signal()
		}
		if err != nil {
			l.mu.Lock()
			l.err = err
			l.mu.Unlock()
			l.signal()
			return
		}
	}
}

func (l *Link) signal() {
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Write writes p to the underlying stream.
func (l *Link) Write(p []byte) (int, error) {
	select {
	case <-l.closed:
		return 0, ErrClosed
	default:
	}
	return l.rwc.Write(p)
}

// ReadAvailable returns the next queued byte without blocking. Once the queue
// is empty a terminal stream error is returned.
func (l *Link) ReadAvailable() (byte, bool, error) {
	select {
	case <-l.closed:
		return 0, false, ErrClosed
	default:
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) > 0 {
		b := l.pending[0]
		l.pending = l.pending[1:]
		return b, true, nil
	}
	if l.err != nil {
		return 0, false, l.err
	}
	return 0, false, nil
}

// WaitReadable blocks until a byte or a terminal error is queued, the link is
// closed, or ctx is done.
func (l *Link) WaitReadable(ctx context.Context) error {
	for {
		l.mu.Lock()
		ready := len(l.pending) > 0 || l.err != nil
		l.mu.Unlock()
		if ready {
			return nil
		}

		select {
		case <-l.notify:
		case <-l.closed:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close closes the underlying stream. Safe to call multiple times.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		err = l.rwc.Close()
	})
	return err
}
