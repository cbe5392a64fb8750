//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// Cdev drives the GPIO lines through the Linux GPIO character device.
// Line offsets follow the UC3 numbering: port*32 + bit.
//
// The character device reports errors the registers never would. Cdev
// latches the first one and exposes it through Err; a failed read reports
// the affected pins as high, which the button driver treats as idle.
type Cdev struct {
	mu    sync.Mutex
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
	err   error
}

// NewCdev opens the named GPIO chip, e.g. "gpiochip0".
func NewCdev(chipName string) (*Cdev, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &Cdev{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
	}, nil
}

func forEachBit(mask uint32, fn func(bit int)) {
	for bit := 0; bit < PinsPerPort; bit++ {
		if mask&(1<<bit) != 0 {
			fn(bit)
		}
	}
}

func (c *Cdev) setErr(err error) {
	if c.err == nil {
		c.err = err
	}
}

// SetInputEnable requests the masked lines as inputs.
func (c *Cdev) SetInputEnable(port int, mask uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	forEachBit(mask, func(bit int) {
		offset := port*PinsPerPort + bit
		if _, ok := c.lines[offset]; ok {
			return
		}
		l, err := c.chip.RequestLine(offset, gpiocdev.AsInput)
		if err != nil {
			c.setErr(fmt.Errorf("request line %d: %w", offset, err))
			return
		}
		c.lines[offset] = l
	})
}

// SetPullUpEnable enables pull-up bias on the masked lines, requesting any
// line that is not yet held.
func (c *Cdev) SetPullUpEnable(port int, mask uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	forEachBit(mask, func(bit int) {
		offset := port*PinsPerPort + bit
		l, ok := c.lines[offset]
		if !ok {
			nl, err := c.chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
			if err != nil {
				c.setErr(fmt.Errorf("request line %d: %w", offset, err))
				return
			}
			c.lines[offset] = nl
			return
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			c.setErr(fmt.Errorf("reconfigure line %d: %w", offset, err))
			return
		}
	})
}

// ReadPinValues returns the levels of the held lines on the port.
// Lines not held read as 1.
func (c *Cdev) ReadPinValues(port int) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	word := ^uint32(0)
	for bit := 0; bit < PinsPerPort; bit++ {
		l, ok := c.lines[port*PinsPerPort+bit]
		if !ok {
			continue
		}
		v, err := l.Value()
		if err != nil {
			c.setErr(fmt.Errorf("read line %d: %w", port*PinsPerPort+bit, err))
			continue
		}
		if v == 0 {
			word &^= 1 << bit
		}
	}
	return word
}

// Err returns the first error seen since NewCdev.
func (c *Cdev) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close releases the lines and the chip.
// Lines are left as inputs with bias disabled.
func (c *Cdev) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for offset, l := range c.lines {
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithBiasDisabled); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", offset, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", offset, err))
		}
		delete(c.lines, offset)
	}
	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		c.chip = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
