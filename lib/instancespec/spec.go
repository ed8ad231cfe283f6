// Package instancespec defines the versioned hardware topology of a VM
// instance and the Builder that assembles one while enforcing its
// uniqueness invariants.
package instancespec

// VersionV0 is the only spec version this package produces.
const VersionV0 = "V0"

// VersionedInstanceSpec is the serialized form of an InstanceSpec, tagged
// with the spec version.
type VersionedInstanceSpec struct {
	Version string       `json:"version"`
	Spec    InstanceSpec `json:"spec"`
}

// InstanceSpec is the complete hardware topology of one VM instance.
type InstanceSpec struct {
	Devices  DeviceSpec  `json:"devices"`
	Backends BackendSpec `json:"backends"`
}

// Board describes the CPUs, memory and chipset.
type Board struct {
	CPUs     uint8   `json:"cpus"`
	MemoryMB uint64  `json:"memory_mb"`
	Chipset  Chipset `json:"chipset"`
}

// Chipset is the emulated platform chipset.
type Chipset struct {
	I440Fx I440Fx `json:"i440fx"`
}

// I440Fx holds the options for the i440fx chipset.
type I440Fx struct {
	EnablePCIe bool `json:"enable_pcie"`
}

// DeviceSpec holds every guest-visible device, keyed by device name.
type DeviceSpec struct {
	Board          Board                   `json:"board"`
	StorageDevices StorageDevices          `json:"storage_devices"`
	NetworkDevices NetworkDevices          `json:"network_devices"`
	SerialPorts    map[string]SerialPort   `json:"serial_ports"`
	PciPciBridges  map[string]PciPciBridge `json:"pci_pci_bridges"`
	QemuPvpanic    *QemuPvpanic            `json:"qemu_pvpanic,omitempty"`

	SoftNpuPciPort *SoftNpuPciPort        `json:"softnpu_pci_port,omitempty"`
	SoftNpuPorts   map[string]SoftNpuPort `json:"softnpu_ports"`
	SoftNpuP9      *SoftNpuP9             `json:"softnpu_p9,omitempty"`
	P9fs           *P9fs                  `json:"p9fs,omitempty"`
}

// BackendSpec holds every backend, keyed by backend name.
type BackendSpec struct {
	StorageBackends StorageBackends `json:"storage_backends"`
	NetworkBackends NetworkBackends `json:"network_backends"`
}

// StorageDevices maps device names to storage devices.
type StorageDevices map[string]StorageDevice

// NetworkDevices maps device names to network devices.
type NetworkDevices map[string]NetworkDevice

// StorageBackends maps backend names to storage backends.
type StorageBackends map[string]StorageBackend

// NetworkBackends maps backend names to network backends.
type NetworkBackends map[string]NetworkBackend

func newInstanceSpec(cpus uint8, memoryMB uint64, enablePCIe bool) *InstanceSpec {
	return &InstanceSpec{
		Devices: DeviceSpec{
			Board: Board{
				CPUs:     cpus,
				MemoryMB: memoryMB,
				Chipset:  Chipset{I440Fx: I440Fx{EnablePCIe: enablePCIe}},
			},
			StorageDevices: make(StorageDevices),
			NetworkDevices: make(NetworkDevices),
			SerialPorts:    make(map[string]SerialPort),
			PciPciBridges:  make(map[string]PciPciBridge),
			SoftNpuPorts:   make(map[string]SoftNpuPort),
		},
		Backends: BackendSpec{
			StorageBackends: make(StorageBackends),
			NetworkBackends: make(NetworkBackends),
		},
	}
}
