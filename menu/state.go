package menu

import "errors"

// State is the menu currently shown on the link.
type State int

const (
	MainMenu State = iota
	BrightnessMenu
	BlinkMenu
	Exit
)

// String returns the short state name used in logs.
func (s State) String() string {
	switch s {
	case MainMenu:
		return "main"
	case BrightnessMenu:
		return "brightness"
	case BlinkMenu:
		return "blink"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// User input errors. All are recovered inside the machine with a message on
// the link; they are surfaced in Result only for logging.
var (
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrInvalidLineLength = errors.New("line is not a single key")
	ErrOutOfRangeValue   = errors.New("value out of range, clamped")
)

// Result describes one handled input.
type Result struct {
	From State
	To   State
	Key  byte
	Err  error
}
