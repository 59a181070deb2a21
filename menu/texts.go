package menu

import "strconv"

const (
	msgInvalidInput     = "Invalid input. Please enter a valid option."
	msgInvalidSelection = "Invalid selection."
	msgExiting          = "Exiting..."
	msgSelect           = "Select an option: "
	msgEnterBrightness  = "Enter brightness (0-255): "
	msgBrightnessSet    = "Brightness set to: "
	msgLEDOn            = "LED ON"
	msgLEDOff           = "LED OFF"
	msgFast             = "Fast Blinking selected."
	msgMedium           = "Medium Blinking selected."
	msgSlow             = "Slow Blinking selected."
	msgBlinkOff         = "Blinking turned off."
)

// DefaultBanner is printed once before the first main menu.
const DefaultBanner = "ESP32 Bluetooth LED Control Ready."

func (m *Machine) printMainMenu() {
	m.println("\nMain Menu:")
	m.println("1. Toggle LED")
	m.println("2. Set LED Brightness")
	m.println("3. Set LED Blinking Sequence")
	m.println("4. Exit")
	m.print(msgSelect)
}

func (m *Machine) printBrightnessMenu() {
	m.print("\nCurrent Brightness:")
	m.println(strconv.Itoa(int(m.dev.Brightness())))
	m.println("Brightness Menu:")
	m.println("1. Set Brightness (0-255)")
	m.println("2. Go back to Main Menu")
	m.print(msgSelect)
}

func (m *Machine) printBlinkMenu() {
	m.println("\nBlinking Sequence Menu:")
	m.println("1. Fast Blinking")
	m.println("2. Medium Blinking")
	m.println("3. Slow Blinking")
	m.println("4. Turn Off Blinking")
	m.println("5. Go back to Main Menu")
	m.print(msgSelect)
}

// printMenu shows the text for s. Exit has none.
func (m *Machine) printMenu(s State) {
	switch s {
	case MainMenu:
		m.printMainMenu()
	case BrightnessMenu:
		m.printBrightnessMenu()
	case BlinkMenu:
		m.printBlinkMenu()
	}
}
