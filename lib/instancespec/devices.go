package instancespec

import "github.com/onkernel/vmspec/lib/pci"

// StorageDevice is a guest-visible disk controller. The set of
// implementations is closed; consumers type-switch over VirtioDisk and
// NvmeDisk.
type StorageDevice interface {
	// Path returns the PCI path the device occupies.
	Path() pci.Path
	// Backend returns the name of the storage backend the device uses.
	Backend() string

	storageDeviceType() string
}

// NetworkDevice is a guest-visible network adapter. VirtioNic is the only
// implementation.
type NetworkDevice interface {
	Path() pci.Path
	Backend() string

	networkDeviceType() string
}

// VirtioDisk is a virtio-block disk.
type VirtioDisk struct {
	BackendName string   `json:"backend_name"`
	PCIPath     pci.Path `json:"pci_path"`
}

func (d VirtioDisk) Path() pci.Path            { return d.PCIPath }
func (d VirtioDisk) Backend() string           { return d.BackendName }
func (d VirtioDisk) storageDeviceType() string { return "VirtioDisk" }

// NvmeDisk is an NVMe disk.
type NvmeDisk struct {
	BackendName string   `json:"backend_name"`
	PCIPath     pci.Path `json:"pci_path"`
}

func (d NvmeDisk) Path() pci.Path            { return d.PCIPath }
func (d NvmeDisk) Backend() string           { return d.BackendName }
func (d NvmeDisk) storageDeviceType() string { return "NvmeDisk" }

// VirtioNic is a virtio network interface.
type VirtioNic struct {
	BackendName string   `json:"backend_name"`
	PCIPath     pci.Path `json:"pci_path"`
}

func (d VirtioNic) Path() pci.Path            { return d.PCIPath }
func (d VirtioNic) Backend() string           { return d.BackendName }
func (d VirtioNic) networkDeviceType() string { return "VirtioNic" }

// PciPciBridge is a PCI-to-PCI bridge exposing DownstreamBus behind PCIPath.
type PciPciBridge struct {
	DownstreamBus uint8    `json:"downstream_bus"`
	PCIPath       pci.Path `json:"pci_path"`
}

// QemuPvpanic is the platform panic notification device.
type QemuPvpanic struct {
	EnableISA bool `json:"enable_isa"`
}

// SerialPortNumber identifies one of the standard COM ports.
type SerialPortNumber string

const (
	COM1 SerialPortNumber = "com1"
	COM2 SerialPortNumber = "com2"
	COM3 SerialPortNumber = "com3"
	COM4 SerialPortNumber = "com4"
)

// SerialPortNumbers lists every valid serial port in order.
var SerialPortNumbers = []SerialPortNumber{COM1, COM2, COM3, COM4}

// Valid reports whether n is one of COM1 through COM4.
func (n SerialPortNumber) Valid() bool {
	switch n {
	case COM1, COM2, COM3, COM4:
		return true
	}
	return false
}

// SerialPort is a UART exposed to the guest.
type SerialPort struct {
	Num SerialPortNumber `json:"num"`
}

// SoftNpuPciPort is the PCI-attached management port of the network
// accelerator harness.
type SoftNpuPciPort struct {
	PCIPath pci.Path `json:"pci_path"`
}

// SoftNpuPort is a data port of the network accelerator harness bound to a
// host vNIC.
type SoftNpuPort struct {
	Name        string `json:"name"`
	BackendName string `json:"backend_name"`
}

// SoftNpuP9 is the 9P channel used to load programs into the accelerator.
type SoftNpuP9 struct {
	PCIPath pci.Path `json:"pci_path"`
}

// P9fs is a virtio 9P filesystem share.
type P9fs struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	ChunkSize uint32   `json:"chunk_size"`
	PCIPath   pci.Path `json:"pci_path"`
}
