package gpio

import "sync"

// FakePort is the simulated register state of one port.
type FakePort struct {
	GPER uint32
	PUER uint32
	PVR  uint32
}

// Write records a single set-register write.
type Write struct {
	Reg  int // RegGPERS or RegPUERS
	Port int
	Mask uint32
}

// FakeController is an in-memory register bank.
// Writes to the set registers OR into the state registers, as on hardware.
type FakeController struct {
	mu     sync.Mutex
	ports  [NumPorts]FakePort
	writes []Write
	reads  int
}

// NewFakeController creates a FakeController with all registers zeroed.
func NewFakeController() *FakeController {
	return &FakeController{}
}

// SetInputEnable sets the masked bits in GPER.
func (f *FakeController) SetInputEnable(port int, mask uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ports[port].GPER |= mask
	f.writes = append(f.writes, Write{Reg: RegGPERS, Port: port, Mask: mask})
}

// SetPullUpEnable sets the masked bits in PUER.
func (f *FakeController) SetPullUpEnable(port int, mask uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ports[port].PUER |= mask
	f.writes = append(f.writes, Write{Reg: RegPUERS, Port: port, Mask: mask})
}

// ReadPinValues returns the simulated PVR of the port.
func (f *FakeController) ReadPinValues(port int) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.ports[port].PVR
}

// Port returns a copy of the port's registers.
func (f *FakeController) Port(port int) FakePort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ports[port]
}

// SetPort overwrites the port's registers, e.g. to seed reset values.
func (f *FakeController) SetPort(port int, p FakePort) {
	f.mu.Lock()
	f.ports[port] = p
	f.mu.Unlock()
}

// SetPinValues sets the raw pin levels seen by ReadPinValues.
func (f *FakeController) SetPinValues(port int, pvr uint32) {
	f.mu.Lock()
	f.ports[port].PVR = pvr
	f.mu.Unlock()
}

// Press drives the masked pins low.
func (f *FakeController) Press(port int, mask uint32) {
	f.mu.Lock()
	f.ports[port].PVR &^= mask
	f.mu.Unlock()
}

// Release lets the masked pins float back high.
func (f *FakeController) Release(port int, mask uint32) {
	f.mu.Lock()
	f.ports[port].PVR |= mask
	f.mu.Unlock()
}

// Writes returns the recorded set-register writes in order.
func (f *FakeController) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// Reads returns how many times ReadPinValues was called.
func (f *FakeController) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Reset clears registers and recorded accesses.
func (f *FakeController) Reset() {
	f.mu.Lock()
	f.ports = [NumPorts]FakePort{}
	f.writes = nil
	f.reads = 0
	f.mu.Unlock()
}
