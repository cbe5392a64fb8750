// Package buttons reports which of a board's three push-buttons are pressed.
//
// The buttons are wired active-low to pulled-up GPIO inputs: an idle pin reads
// high, a pressed pin reads low. GetStatus inverts that so callers see a set
// bit for every pressed button.
//
// Initialize must be called once, from a single goroutine, before anything
// that may call GetStatus concurrently is started. GetStatus is a pure read
// and safe to call from any number of goroutines after that.
//
// The controller assumes it is the only writer of the button bits on its port.
// Nothing here can enforce that; it is a property of the board's pin
// multiplexing setup.
package buttons

import (
	"github.com/sweeney/board-buttons/internal/board"
	"github.com/sweeney/board-buttons/internal/gpio"
)

// Button identifies one of the board buttons.
type Button int

const (
	Button1 Button = iota
	Button2
	Button3
)

// All lists the buttons in order.
var All = []Button{Button1, Button2, Button3}

func (b Button) String() string {
	switch b {
	case Button1:
		return "button1"
	case Button2:
		return "button2"
	case Button3:
		return "button3"
	}
	return "unknown"
}

// EVK1100 wiring.
const (
	MaskButton1 uint32 = 1 << 24
	MaskButton2 uint32 = 1 << 21
	MaskButton3 uint32 = 1 << 18

	Port = 2
)

// Controller owns the button pins of one board.
type Controller struct {
	io    gpio.Controller
	board board.Config
	mask  uint32
}

// New creates a Controller for the board's buttons on io.
func New(io gpio.Controller, cfg board.Config) *Controller {
	return &Controller{io: io, board: cfg, mask: cfg.Mask()}
}

// Initialize configures the button pins as GPIO inputs with pull-ups enabled.
// Until it has run, GetStatus reads floating pins.
func (c *Controller) Initialize() {
	c.io.SetInputEnable(c.board.Port, c.mask)
	c.io.SetPullUpEnable(c.board.Port, c.mask)
}

// GetStatus returns the mask of buttons pressed right now.
// Bits outside the button masks are always zero.
func (c *Controller) GetStatus() uint32 {
	return ^c.io.ReadPinValues(c.board.Port) & c.mask
}

// Mask returns the bit for b, or 0 for an unknown button.
func (c *Controller) Mask(b Button) uint32 {
	if b < Button1 || b > Button3 {
		return 0
	}
	return c.board.Buttons[b]
}

// Pressed reports whether b is set in status.
func (c *Controller) Pressed(status uint32, b Button) bool {
	m := c.Mask(b)
	return m != 0 && status&m != 0
}

// PressedNames returns the names of the buttons set in status, in button order.
func (c *Controller) PressedNames(status uint32) []string {
	var names []string
	for _, b := range All {
		if c.Pressed(status, b) {
			names = append(names, b.String())
		}
	}
	return names
}
