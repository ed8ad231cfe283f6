package specbuilder

import (
	"fmt"

	"github.com/onkernel/vmspec/lib/pci"
)

// CloudInitName is the device and backend name of the cloud-init disk.
const CloudInitName = "cloud-init"

// NICNames returns the device and backend names for a NIC at path. Host
// vNIC names can differ between migration source and target, so NIC names
// come only from the guest-visible PCI path.
func NICNames(path pci.Path) (device, backend string) {
	device = fmt.Sprintf("vnic-%s", path)
	return device, device + "-backend"
}

// BridgeName returns the name of the PCI bridge owning downstreamBus.
func BridgeName(downstreamBus uint8) string {
	return fmt.Sprintf("pci-bridge-%d", downstreamBus)
}
