//go:build linux

package gpio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MMIO accesses the GPIO registers through a memory mapping, usually of /dev/mem.
// Every register access is a single 32-bit atomic load or store, so the
// compiler can neither elide nor split it.
type MMIO struct {
	file  *os.File
	mem   []byte
	off   uintptr // offset of the GPIO block inside mem
	ports int
}

// OpenMMIO maps ports*PortStride bytes of path starting at physical address base.
func OpenMMIO(path string, base uintptr, ports int) (*MMIO, error) {
	if ports <= 0 || ports > NumPorts {
		return nil, fmt.Errorf("mmio: port count %d out of range", ports)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	page := uintptr(unix.Getpagesize())
	aligned := base &^ (page - 1)
	off := base - aligned
	size := int(off) + ports*PortStride

	mem, err := unix.Mmap(int(f.Fd()), int64(aligned), size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s at %#x: %w", path, base, err)
	}

	return &MMIO{file: f, mem: mem, off: off, ports: ports}, nil
}

func (m *MMIO) reg(port int, offset uintptr) *uint32 {
	if port < 0 || port >= m.ports {
		panic(fmt.Sprintf("gpio: port %d not mapped", port))
	}
	return (*uint32)(unsafe.Pointer(&m.mem[m.off+uintptr(port)*PortStride+offset]))
}

// SetInputEnable writes mask to GPERS.
func (m *MMIO) SetInputEnable(port int, mask uint32) {
	atomic.StoreUint32(m.reg(port, RegGPERS), mask)
}

// SetPullUpEnable writes mask to PUERS.
func (m *MMIO) SetPullUpEnable(port int, mask uint32) {
	atomic.StoreUint32(m.reg(port, RegPUERS), mask)
}

// ReadPinValues reads PVR.
func (m *MMIO) ReadPinValues(port int) uint32 {
	return atomic.LoadUint32(m.reg(port, RegPVR))
}

// Close unmaps the registers and closes the backing file.
func (m *MMIO) Close() error {
	var errs []error
	if m.mem != nil {
		if err := unix.Munmap(m.mem); err != nil {
			errs = append(errs, fmt.Errorf("munmap: %w", err))
		}
		m.mem = nil
	}
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
		m.file = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
