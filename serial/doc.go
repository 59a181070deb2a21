// Package serial provides a minimal, Linux-only serial port link
// for driving a text menu on the far side of a UART, USB CDC or RFCOMM tty.
//
// The port is opened in raw mode and read byte by byte, so the caller decides
// how input is framed: dispatch each key immediately, or buffer bytes into
// lines first.
//
// Features:
//   - Raw syscall-based serial I/O on Linux, no buffering delays
//   - Non-blocking ReadAvailable for cooperative poll loops
//   - Context-aware WaitReadable for blocking receives
//   - Self-pipe mechanism for killability
//   - PTY-based tests for reliability
//
// This package does **not** support Windows.
//
// Example usage:
//
//	port, err := serial.Open(serial.Config{
//	    Device:   "/dev/rfcomm0",
//	    BaudRate: 115200,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	for {
//	    if err := port.WaitReadable(ctx); err != nil {
//	        return err
//	    }
//	    b, ok, err := port.ReadAvailable()
//	    if err != nil {
//	        return err
//	    }
//	    if ok {
//	        fmt.Printf("key %q\n", b)
//	    }
//	}
//
// Calling port.Close() from another goroutine unblocks WaitReadable.
package serial
