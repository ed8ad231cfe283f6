// Package specbuilder turns an instance-creation request and the server
// configuration into a versioned instance spec.
package specbuilder

import (
	"encoding/json"

	"github.com/onkernel/vmspec/lib/instances"
	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/onkernel/vmspec/lib/pci"
	"github.com/onkernel/vmspec/lib/serverconfig"
)

const (
	deviceVirtio = "virtio"
	deviceNvme   = "nvme"
)

// ServerSpecBuilder assembles the spec for one instance. It is owned by a
// single creation flow and is discarded on the first error.
type ServerSpecBuilder struct {
	builder *instancespec.Builder
}

// New starts a spec for an instance with the given properties. The chipset
// option enable-pcie is read from cfg, which may be nil. The platform panic
// device is always installed.
func New(props instances.InstanceProperties, cfg *serverconfig.Config) (*ServerSpecBuilder, error) {
	var chipset serverconfig.Options
	if cfg != nil {
		chipset = cfg.Chipset.Options
	}

	enablePCIe, err := chipset.Bool("enable-pcie", false)
	if err != nil {
		return nil, newError(KindFormat, "%w: chipset: %w", ErrConfig, err)
	}

	builder := instancespec.NewBuilder(props.VCPUs, props.Memory, enablePCIe)
	if err := builder.SetPvpanic(instancespec.QemuPvpanic{EnableISA: true}); err != nil {
		return nil, classify(err)
	}

	return &ServerSpecBuilder{builder: builder}, nil
}

// AddNICFromRequest adds a virtio NIC in the requested NIC slot, bound to
// the requested host vNIC.
func (b *ServerSpecBuilder) AddNICFromRequest(nic instances.NetworkInterfaceRequest) error {
	path, err := pci.SlotToPath(nic.Slot, pci.SlotTypeNIC)
	if err != nil {
		return classify(err)
	}

	deviceName, backendName := NICNames(path)
	return classify(b.builder.AddNetworkDevice(
		deviceName,
		instancespec.VirtioNic{BackendName: backendName, PCIPath: path},
		backendName,
		instancespec.VirtioNetworkBackend{VnicName: nic.Name},
	))
}

// AddDiskFromRequest adds a disk in the requested disk slot backed by the
// disk's volume construction request. The device and backend both take the
// disk's own name.
func (b *ServerSpecBuilder) AddDiskFromRequest(disk instances.DiskRequest) error {
	path, err := pci.SlotToPath(disk.Slot, pci.SlotTypeDisk)
	if err != nil {
		return classify(err)
	}

	requestJSON, err := json.Marshal(disk.VolumeConstructionRequest)
	if err != nil {
		return newError(KindEncoding, "%w: disk %s: %w", ErrSerialization, disk.Name, err)
	}

	device, err := storageDevice(disk.Device, disk.Name, path)
	if err != nil {
		return err
	}

	return classify(b.builder.AddStorageDevice(
		disk.Name,
		device,
		disk.Name,
		instancespec.CrucibleStorageBackend{RequestJSON: string(requestJSON), ReadOnly: disk.ReadOnly},
	))
}

// AddCloudInitFromRequest adds the read-only cloud-init disk carrying the
// base64-encoded seed image.
func (b *ServerSpecBuilder) AddCloudInitFromRequest(base64 string) error {
	path, err := pci.SlotToPath(0, pci.SlotTypeCloudInit)
	if err != nil {
		return classify(err)
	}

	return classify(b.builder.AddStorageDevice(
		CloudInitName,
		instancespec.VirtioDisk{BackendName: CloudInitName, PCIPath: path},
		CloudInitName,
		instancespec.BlobStorageBackend{Base64: base64, ReadOnly: true},
	))
}

// AddSerialPort enables one of the COM ports.
func (b *ServerSpecBuilder) AddSerialPort(port instancespec.SerialPortNumber) error {
	return classify(b.builder.AddSerialPort(port))
}

// Finish returns the assembled spec. The builder cannot be used afterwards.
func (b *ServerSpecBuilder) Finish() (instancespec.VersionedInstanceSpec, error) {
	spec, err := b.builder.Finish()
	if err != nil {
		return instancespec.VersionedInstanceSpec{}, classify(err)
	}
	return spec, nil
}

func storageDevice(iface, backendName string, path pci.Path) (instancespec.StorageDevice, error) {
	switch iface {
	case deviceVirtio:
		return instancespec.VirtioDisk{BackendName: backendName, PCIPath: path}, nil
	case deviceNvme:
		return instancespec.NvmeDisk{BackendName: backendName, PCIPath: path}, nil
	default:
		return nil, newError(KindRecognition, "%w: %s", ErrUnrecognizedStorageDevice, iface)
	}
}
