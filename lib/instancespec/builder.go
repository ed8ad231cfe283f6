package instancespec

import (
	"fmt"

	"github.com/onkernel/vmspec/lib/pci"
)

// Builder accumulates components into an InstanceSpec. Every Add/Set call
// either applies completely or leaves the builder untouched. Finish hands
// the spec to the caller and retires the builder; any later call returns
// ErrBuilderFinished.
//
// A Builder is owned by a single instance-creation flow and is not safe for
// concurrent use.
type Builder struct {
	spec *InstanceSpec

	// pciPaths records which component occupies each PCI path.
	pciPaths    map[pci.Path]string
	serialPorts map[SerialPortNumber]bool
}

// NewBuilder starts a spec for a VM with the given board.
func NewBuilder(cpus uint8, memoryMB uint64, enablePCIe bool) *Builder {
	return &Builder{
		spec:        newInstanceSpec(cpus, memoryMB, enablePCIe),
		pciPaths:    make(map[pci.Path]string),
		serialPorts: make(map[SerialPortNumber]bool),
	}
}

func (b *Builder) checkOpen() error {
	if b.spec == nil {
		return ErrBuilderFinished
	}
	return nil
}

func (b *Builder) checkPCIPath(path pci.Path) error {
	if owner, ok := b.pciPaths[path]; ok {
		return fmt.Errorf("%w: %s is occupied by %s", ErrPCIPathInUse, path, owner)
	}
	return nil
}

// AddStorageDevice adds a storage device together with the backend it uses.
// A backend name may already exist only if it has an identical definition.
func (b *Builder) AddStorageDevice(deviceName string, device StorageDevice, backendName string, backend StorageBackend) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if device == nil {
		return nilComponent("storage device")
	}
	if backend == nil {
		return nilComponent("storage backend")
	}
	if device.Backend() != backendName {
		return fmt.Errorf("%w: device %s references %q, not %q", ErrBackendMismatch, deviceName, device.Backend(), backendName)
	}
	if err := b.checkPCIPath(device.Path()); err != nil {
		return err
	}
	if _, ok := b.spec.Devices.StorageDevices[deviceName]; ok {
		return fmt.Errorf("%w: storage device %s", ErrDeviceNameInUse, deviceName)
	}
	if existing, ok := b.spec.Backends.StorageBackends[backendName]; ok && existing != backend {
		return fmt.Errorf("%w: storage backend %s", ErrBackendNameInUse, backendName)
	}

	b.pciPaths[device.Path()] = deviceName
	b.spec.Devices.StorageDevices[deviceName] = device
	b.spec.Backends.StorageBackends[backendName] = backend
	return nil
}

// AddNetworkDevice adds a network device together with the backend it uses.
func (b *Builder) AddNetworkDevice(deviceName string, device NetworkDevice, backendName string, backend NetworkBackend) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if device == nil {
		return nilComponent("network device")
	}
	if backend == nil {
		return nilComponent("network backend")
	}
	if device.Backend() != backendName {
		return fmt.Errorf("%w: device %s references %q, not %q", ErrBackendMismatch, deviceName, device.Backend(), backendName)
	}
	if err := b.checkPCIPath(device.Path()); err != nil {
		return err
	}
	if _, ok := b.spec.Devices.NetworkDevices[deviceName]; ok {
		return fmt.Errorf("%w: network device %s", ErrDeviceNameInUse, deviceName)
	}
	if existing, ok := b.spec.Backends.NetworkBackends[backendName]; ok && existing != backend {
		return fmt.Errorf("%w: network backend %s", ErrBackendNameInUse, backendName)
	}

	b.pciPaths[device.Path()] = deviceName
	b.spec.Devices.NetworkDevices[deviceName] = device
	b.spec.Backends.NetworkBackends[backendName] = backend
	return nil
}

// AddPciBridge adds a PCI-to-PCI bridge.
func (b *Builder) AddPciBridge(name string, bridge PciPciBridge) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if _, ok := b.spec.Devices.PciPciBridges[name]; ok {
		return fmt.Errorf("%w: PCI bridge %s", ErrDeviceNameInUse, name)
	}
	if err := b.checkPCIPath(bridge.PCIPath); err != nil {
		return err
	}

	b.pciPaths[bridge.PCIPath] = name
	b.spec.Devices.PciPciBridges[name] = bridge
	return nil
}

// AddSerialPort enables one of COM1 through COM4.
func (b *Builder) AddSerialPort(port SerialPortNumber) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if !port.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSerialPort, port)
	}
	if b.serialPorts[port] {
		return fmt.Errorf("%w: %s", ErrSerialPortInUse, port)
	}

	b.serialPorts[port] = true
	b.spec.Devices.SerialPorts[string(port)] = SerialPort{Num: port}
	return nil
}

// SetPvpanic installs the platform panic notification device.
func (b *Builder) SetPvpanic(pvpanic QemuPvpanic) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.spec.Devices.QemuPvpanic != nil {
		return fmt.Errorf("%w: pvpanic", ErrComponentInUse)
	}

	b.spec.Devices.QemuPvpanic = &pvpanic
	return nil
}

// SetSoftNpuPciPort installs the accelerator management port.
func (b *Builder) SetSoftNpuPciPort(port SoftNpuPciPort) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.spec.Devices.SoftNpuPciPort != nil {
		return fmt.Errorf("%w: softnpu PCI port", ErrComponentInUse)
	}
	if err := b.checkPCIPath(port.PCIPath); err != nil {
		return err
	}

	b.pciPaths[port.PCIPath] = "softnpu-pci-port"
	b.spec.Devices.SoftNpuPciPort = &port
	return nil
}

// AddSoftNpuPort adds an accelerator data port.
func (b *Builder) AddSoftNpuPort(name string, port SoftNpuPort) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if _, ok := b.spec.Devices.SoftNpuPorts[name]; ok {
		return fmt.Errorf("%w: softnpu port %s", ErrDeviceNameInUse, name)
	}

	b.spec.Devices.SoftNpuPorts[name] = port
	return nil
}

// SetSoftNpuP9 installs the accelerator program-loading channel.
func (b *Builder) SetSoftNpuP9(p9 SoftNpuP9) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.spec.Devices.SoftNpuP9 != nil {
		return fmt.Errorf("%w: softnpu p9", ErrComponentInUse)
	}
	if err := b.checkPCIPath(p9.PCIPath); err != nil {
		return err
	}

	b.pciPaths[p9.PCIPath] = "softnpu-p9"
	b.spec.Devices.SoftNpuP9 = &p9
	return nil
}

// SetP9fs installs the 9P filesystem share.
func (b *Builder) SetP9fs(fs P9fs) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.spec.Devices.P9fs != nil {
		return fmt.Errorf("%w: p9fs", ErrComponentInUse)
	}
	if err := b.checkPCIPath(fs.PCIPath); err != nil {
		return err
	}

	b.pciPaths[fs.PCIPath] = "p9fs"
	b.spec.Devices.P9fs = &fs
	return nil
}

// Finish returns the assembled spec and retires the builder.
func (b *Builder) Finish() (VersionedInstanceSpec, error) {
	if err := b.checkOpen(); err != nil {
		return VersionedInstanceSpec{}, err
	}

	spec := b.spec
	b.spec = nil
	b.pciPaths = nil
	b.serialPorts = nil
	return VersionedInstanceSpec{Version: VersionV0, Spec: *spec}, nil
}
