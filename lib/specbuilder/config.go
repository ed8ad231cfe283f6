package specbuilder

import (
	"sort"

	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/onkernel/vmspec/lib/pci"
	"github.com/onkernel/vmspec/lib/serverconfig"
	"github.com/samber/lo"
)

const (
	driverVirtioBlock = "pci-virtio-block"
	driverNvme        = "pci-nvme"
	driverViona       = "pci-virtio-viona"

	blockDevFile = "file"
)

// AddDevicesFromConfig adds every device in the server configuration's
// device table, then every PCI bridge. Devices are added in name order so
// the first error and the resulting spec do not depend on map iteration.
func (b *ServerSpecBuilder) AddDevicesFromConfig(cfg *serverconfig.Config) error {
	if cfg == nil {
		return nil
	}

	names := lo.Keys(cfg.Devices)
	sort.Strings(names)

	for _, name := range names {
		device := cfg.Devices[name]
		var err error
		switch device.Driver {
		case driverVirtioBlock, driverNvme:
			err = b.addStorageDeviceFromConfig(name, device, cfg.BlockDevs)
		case driverViona:
			err = b.addNetworkDeviceFromConfig(name, device)
		default:
			var handled bool
			handled, err = b.addAcceleratorDeviceFromConfig(name, device)
			if err == nil && !handled {
				err = newError(KindRecognition, "%w: %s", ErrUnrecognizedDeviceType, device.Driver)
			}
		}
		if err != nil {
			return err
		}
	}

	for _, bridge := range cfg.PciBridges {
		if err := b.addPciBridgeFromConfig(bridge); err != nil {
			return err
		}
	}

	return nil
}

func (b *ServerSpecBuilder) addStorageDeviceFromConfig(name string, device serverconfig.Device, blockDevs map[string]serverconfig.BlockDevice) error {
	backendName, err := device.Options.String("block_dev")
	if err != nil {
		return newError(KindFormat, "%w: device %s: %w", ErrConfig, name, err)
	}

	path, err := pciPathOption(name, device.Options)
	if err != nil {
		return err
	}

	blockDev, ok := blockDevs[backendName]
	if !ok {
		return newError(KindReferential, "%w: device %s requested missing backend %s", ErrDeviceMissingBackend, name, backendName)
	}

	backend, err := storageBackendFromConfig(backendName, blockDev)
	if err != nil {
		return err
	}

	var spec instancespec.StorageDevice
	if device.Driver == driverNvme {
		spec = instancespec.NvmeDisk{BackendName: backendName, PCIPath: path}
	} else {
		spec = instancespec.VirtioDisk{BackendName: backendName, PCIPath: path}
	}

	return classify(b.builder.AddStorageDevice(name, spec, backendName, backend))
}

func storageBackendFromConfig(name string, blockDev serverconfig.BlockDevice) (instancespec.StorageBackend, error) {
	switch blockDev.Type {
	case blockDevFile:
		path, err := blockDev.Options.String("path")
		if err != nil {
			return nil, newError(KindFormat, "%w: block device %s: %w", ErrConfig, name, err)
		}
		readOnly, err := blockDev.Options.Bool("readonly", false)
		if err != nil {
			return nil, newError(KindFormat, "%w: block device %s: %w", ErrConfig, name, err)
		}
		return instancespec.FileStorageBackend{Path: path, ReadOnly: readOnly}, nil
	default:
		return nil, newError(KindRecognition, "%w: %s", ErrUnrecognizedStorageBackend, blockDev.Type)
	}
}

// addNetworkDeviceFromConfig names the NIC after its PCI path, so a NIC from
// configuration matches one added from a request at the same path.
func (b *ServerSpecBuilder) addNetworkDeviceFromConfig(name string, device serverconfig.Device) error {
	vnic, err := device.Options.String("vnic")
	if err != nil {
		return newError(KindFormat, "%w: device %s: %w", ErrConfig, name, err)
	}

	path, err := pciPathOption(name, device.Options)
	if err != nil {
		return err
	}

	deviceName, backendName := NICNames(path)
	return classify(b.builder.AddNetworkDevice(
		deviceName,
		instancespec.VirtioNic{BackendName: backendName, PCIPath: path},
		backendName,
		instancespec.VirtioNetworkBackend{VnicName: vnic},
	))
}

func (b *ServerSpecBuilder) addPciBridgeFromConfig(bridge serverconfig.PciBridge) error {
	path, err := parsePCIPath(bridge.PciPath)
	if err != nil {
		return err
	}

	return classify(b.builder.AddPciBridge(
		BridgeName(bridge.DownstreamBus),
		instancespec.PciPciBridge{DownstreamBus: bridge.DownstreamBus, PCIPath: path},
	))
}

// pciPathOption reads the required pci-path option of a device.
func pciPathOption(name string, opts serverconfig.Options) (pci.Path, error) {
	text, err := opts.String("pci-path")
	if err != nil {
		return pci.Path{}, newError(KindFormat, "%w: device %s: %w", ErrConfig, name, err)
	}
	return parsePCIPath(text)
}

func parsePCIPath(text string) (pci.Path, error) {
	path, err := pci.ParsePath(text)
	if err != nil {
		return pci.Path{}, newError(KindAllocation, "%w: the string %q could not be converted to a PCI path: %w", ErrPCIPathNotParseable, text, err)
	}
	return path, nil
}
