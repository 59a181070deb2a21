package streamlink

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// pipeRWC joins the read end of one pipe and the write end of another.
type pipeRWC struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p pipeRWC) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipeRWC) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p pipeRWC) Close() error {
	p.r.Close()
	return p.w.Close()
}

func newPipeLink(t *testing.T) (in *io.PipeWriter, out *io.PipeReader, l *Link) {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	l = New(pipeRWC{r: inR, w: outW})
	t.Cleanup(func() { l.Close(); inW.Close(); outR.Close() })
	return inW, outR, l
}

func nextByte(t *testing.T, l *Link) byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for {
		require.NoError(t, l.WaitReadable(ctx))
		b, ok, err := l.ReadAvailable()
		require.NoError(t, err)
		if ok {
			return b
		}
	}
}

func TestLink_ReadAvailableEmpty(t *testing.T) {
	_, _, l := newPipeLink(t)

	_, ok, err := l.ReadAvailable()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLink_QueuesBytesInOrder(t *testing.T) {
	in, _, l := newPipeLink(t)

	go in.Write([]byte("3\n1"))

	require.Equal(t, byte('3'), nextByte(t, l))
	require.Equal(t, byte('\n'), nextByte(t, l))
	require.Equal(t, byte('1'), nextByte(t, l))
}

func TestLink_Write(t *testing.T) {
	_, out, l := newPipeLink(t)

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 32)
		n, _ := out.Read(buf)
		got <- string(buf[:n])
	}()

	_, err := l.Write([]byte("LED OFF\r\n"))
	require.NoError(t, err)

	select {
	case s := <-got:
		require.Equal(t, "LED OFF\r\n", s)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for write")
	}
}

func TestLink_TerminalErrorAfterDrain(t *testing.T) {
	in, _, l := newPipeLink(t)

	go func() {
		in.Write([]byte("x"))
		in.Close()
	}()

	require.Equal(t, byte('x'), nextByte(t, l))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.WaitReadable(ctx))
	_, _, err := l.ReadAvailable()
	require.ErrorIs(t, err, io.EOF)
}

func TestLink_CloseUnblocksWait(t *testing.T) {
	_, _, l := newPipeLink(t)

	done := make(chan error, 1)
	go func() { done <- l.WaitReadable(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, l.Close())

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("WaitReadable did not return after Close")
	}
	require.NoError(t, l.Close())
}

func TestLink_OverPty(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close() })

	l := New(slave)
	t.Cleanup(func() { l.Close() })

	// The slave is still in canonical mode, so input arrives per line.
	_, err = master.Write([]byte("5\n"))
	require.NoError(t, err)
	require.Equal(t, byte('5'), nextByte(t, l))
	require.Equal(t, byte('\n'), nextByte(t, l))
}
