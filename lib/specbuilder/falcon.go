//go:build falcon

package specbuilder

import (
	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/onkernel/vmspec/lib/serverconfig"
)

const (
	driverSoftNpuPciPort = "softnpu-pci-port"
	driverSoftNpuPort    = "softnpu-port"
	driverSoftNpuP9      = "softnpu-p9"
	driverP9fs           = "pci-virtio-9p"

	defaultP9ChunkSize = 65536
)

// addAcceleratorDeviceFromConfig handles the network accelerator test
// harness drivers. It reports false for any other driver.
func (b *ServerSpecBuilder) addAcceleratorDeviceFromConfig(name string, device serverconfig.Device) (bool, error) {
	switch device.Driver {
	case driverSoftNpuPciPort:
		path, err := pciPathOption(name, device.Options)
		if err != nil {
			return true, err
		}
		return true, classify(b.builder.SetSoftNpuPciPort(instancespec.SoftNpuPciPort{PCIPath: path}))

	case driverSoftNpuPort:
		vnic, err := device.Options.String("vnic")
		if err != nil {
			return true, newError(KindFormat, "%w: device %s: %w", ErrConfig, name, err)
		}
		return true, classify(b.builder.AddSoftNpuPort(name, instancespec.SoftNpuPort{Name: name, BackendName: vnic}))

	case driverSoftNpuP9:
		path, err := pciPathOption(name, device.Options)
		if err != nil {
			return true, err
		}
		return true, classify(b.builder.SetSoftNpuP9(instancespec.SoftNpuP9{PCIPath: path}))

	case driverP9fs:
		return true, b.addP9fsFromConfig(name, device.Options)

	default:
		return false, nil
	}
}

func (b *ServerSpecBuilder) addP9fsFromConfig(name string, opts serverconfig.Options) error {
	source, err := opts.String("source")
	if err != nil {
		return newError(KindFormat, "%w: p9 device %s: %w", ErrConfig, name, err)
	}
	target, err := opts.String("target")
	if err != nil {
		return newError(KindFormat, "%w: p9 device %s: %w", ErrConfig, name, err)
	}
	chunkSize, err := opts.Uint32("chunk_size", defaultP9ChunkSize)
	if err != nil {
		return newError(KindFormat, "%w: p9 device %s: %w", ErrConfig, name, err)
	}
	path, err := pciPathOption(name, opts)
	if err != nil {
		return err
	}

	return classify(b.builder.SetP9fs(instancespec.P9fs{
		Source:    source,
		Target:    target,
		ChunkSize: chunkSize,
		PCIPath:   path,
	}))
}
