// Package linereader accumulates received bytes into complete lines.
package linereader

import "errors"

// ErrInputTooLong is returned by Feed when a line grows past MaxLen. The
// whole line is discarded, up to and including its terminator.
var ErrInputTooLong = errors.New("linereader: input too long")

// Reader buffers bytes until a '\r' or '\n' terminator. Empty lines are never
// emitted, so CRLF pairs and repeated terminators are absorbed.
// A Reader is not safe for concurrent use.
type Reader struct {
	// MaxLen caps the buffered line length. Zero means unbounded.
	MaxLen int

	buf        []byte
	discarding bool // rest of an over-long line is being skipped
}

// New returns a Reader with the given length cap (0 for none).
func New(maxLen int) *Reader {
	return &Reader{MaxLen: maxLen}
}

// Feed consumes one byte and reports a completed line, if any.
func (r *Reader) Feed(c byte) (line string, ok bool, err error) {
	if c == '\r' || c == '\n' {
		if r.discarding {
			r.discarding = false
			return "", false, nil
		}
		if len(r.buf) == 0 {
			return "", false, nil
		}
		line = string(r.buf)
		r.buf = r.buf[:0]
		return line, true, nil
	}
	if r.discarding {
		return "", false, nil
	}

	if r.MaxLen > 0 && len(r.buf) >= r.MaxLen {
		r.buf = r.buf[:0]
		r.discarding = true
		return "", false, ErrInputTooLong
	}
	r.buf = append(r.buf, c)
	return "", false, nil
}

// Len reports how many bytes are buffered.
func (r *Reader) Len() int { return len(r.buf) }

// Reset drops any partial line.
func (r *Reader) Reset() {
	r.buf = r.buf[:0]
	r.discarding = false
}
