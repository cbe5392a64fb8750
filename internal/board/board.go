// Package board holds the per-board button wiring table.
// A board is selected once at startup; the controller logic is shared.
package board

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/sweeney/board-buttons/internal/gpio"
)

// ErrUnknownBoard is returned by Lookup for names not in the table.
var ErrUnknownBoard = errors.New("unknown board")

// Config describes where a board's three buttons are wired.
type Config struct {
	Name    string
	Port    int       // GPIO port index hosting all buttons
	Buttons [3]uint32 // single-bit masks, Button1..Button3
}

// EVK1100 is the Atmel AT32UC3A0512 evaluation kit.
var EVK1100 = Config{
	Name: "evk1100",
	Port: 2,
	Buttons: [3]uint32{
		1 << 24,
		1 << 21,
		1 << 18,
	},
}

var boards = map[string]Config{
	EVK1100.Name: EVK1100,
}

// Mask returns the combined mask of all buttons.
func (c Config) Mask() uint32 {
	var m uint32
	for _, b := range c.Buttons {
		m |= b
	}
	return m
}

// Validate checks the wiring invariants: one bit per button, no shared bits,
// and a port the GPIO block actually has.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port >= gpio.NumPorts {
		return fmt.Errorf("board %s: port %d out of range", c.Name, c.Port)
	}
	var seen uint32
	for i, b := range c.Buttons {
		if bits.OnesCount32(b) != 1 {
			return fmt.Errorf("board %s: button%d mask %#08x must have exactly one bit set", c.Name, i+1, b)
		}
		if seen&b != 0 {
			return fmt.Errorf("board %s: button%d mask %#08x overlaps another button", c.Name, i+1, b)
		}
		seen |= b
	}
	return nil
}

// Lookup returns the board with the given name (case-insensitive).
func Lookup(name string) (Config, error) {
	c, ok := boards[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownBoard, name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the known board names, sorted.
func Names() []string {
	names := make([]string, 0, len(boards))
	for n := range boards {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
