//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// MMIO is not available on non-Linux platforms.
type MMIO struct{}

// OpenMMIO returns an error on non-Linux platforms.
func OpenMMIO(path string, base uintptr, ports int) (*MMIO, error) {
	return nil, errUnsupported
}

func (m *MMIO) SetInputEnable(port int, mask uint32)  {}
func (m *MMIO) SetPullUpEnable(port int, mask uint32) {}
func (m *MMIO) ReadPinValues(port int) uint32         { return ^uint32(0) }
func (m *MMIO) Close() error                          { return nil }

// Cdev is not available on non-Linux platforms.
type Cdev struct{}

// NewCdev returns an error on non-Linux platforms.
func NewCdev(chipName string) (*Cdev, error) {
	return nil, errUnsupported
}

func (c *Cdev) SetInputEnable(port int, mask uint32)  {}
func (c *Cdev) SetPullUpEnable(port int, mask uint32) {}
func (c *Cdev) ReadPinValues(port int) uint32         { return ^uint32(0) }
func (c *Cdev) Err() error                            { return errUnsupported }
func (c *Cdev) Close() error                          { return nil }
