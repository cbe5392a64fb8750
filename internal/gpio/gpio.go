// Package gpio provides access to the GPIO port registers with hardware abstraction.
// The MMIO implementation maps the register block directly.
// The Cdev implementation uses the Linux GPIO character device.
// The fake implementation simulates a register bank for testing without hardware.
package gpio

// Controller is the register surface the button driver needs.
// Methods have no error path: like the registers they stand for, a write
// always lands and a read always returns a word.
type Controller interface {
	// SetInputEnable hands the masked pins to the GPIO module, releasing any
	// peripheral function multiplexed on them. Pins stay inputs.
	SetInputEnable(port int, mask uint32)

	// SetPullUpEnable enables the internal pull-up on the masked pins.
	SetPullUpEnable(port int, mask uint32)

	// ReadPinValues returns the live level of every pin on the port.
	ReadPinValues(port int) uint32
}

// UC3 GPIO register layout.
const (
	DefaultBase = 0xFFFF1000 // AVR32_GPIO_ADDRESS on UC3A
	NumPorts    = 4
	PortStride  = 0x100

	RegGPER  = 0x00 // GPIO enable
	RegGPERS = 0x04 // GPIO enable set
	RegPVR   = 0x60 // pin value
	RegPUER  = 0x70 // pull-up enable
	RegPUERS = 0x74 // pull-up enable set
)

// PinsPerPort is the width of a port word.
const PinsPerPort = 32
