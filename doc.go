// Package ledmenu serves a text menu over a serial-style link that toggles an
// LED, sets its PWM brightness and picks a blink interval.
//
// The pieces are deliberately small:
//   - linereader turns received bytes into lines
//   - menu is the state machine behind the prompts
//   - blink toggles the LED on a cadence while an interval is set
//   - device owns the LED state and serializes access to it
//
// A Controller wires them to a Link (see the serial and streamlink packages)
// in one of two shapes: a single cooperative loop, or an input goroutine and
// a blink goroutine running side by side.
//
// Example usage:
//
//	port, err := serial.Open(serial.Config{Device: "/dev/rfcomm0", BaudRate: 115200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	dev := device.New(pwm.NewMemory(), 0, 255)
//	ctrl := ledmenu.New(port, dev, ledmenu.Options{
//	    InputMode:    ledmenu.InputLine,
//	    Concurrency:  ledmenu.Dual,
//	    ValueTimeout: 10 * time.Second,
//	})
//	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    log.Println("menu stopped:", err)
//	}
package ledmenu
