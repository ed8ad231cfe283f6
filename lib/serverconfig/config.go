// Package serverconfig describes the static server configuration document:
// the chipset options, device table, block-device table and PCI bridges an
// operator sets up for every instance a server runs.
package serverconfig

// Config is a parsed server configuration document.
type Config struct {
	Chipset Chipset

	// Devices is the [dev.<name>] table.
	Devices map[string]Device
	// BlockDevs is the [block_dev.<name>] table.
	BlockDevs map[string]BlockDevice
	// PciBridges is the [[pci_bridge]] list, in document order.
	PciBridges []PciBridge
}

// Chipset holds the free-form [chipset] options, e.g. "enable-pcie".
type Chipset struct {
	Options Options
}

// Device is one device table entry. Driver selects the device kind; every
// other key lands in Options.
type Device struct {
	Driver  string
	Options Options
}

// BlockDevice is one block-device table entry. Type selects the backend
// kind; every other key lands in Options.
type BlockDevice struct {
	Type    string
	Options Options
}

// PciBridge is one PCI-to-PCI bridge entry. PciPath is kept as text and
// parsed by the spec builder.
type PciBridge struct {
	DownstreamBus uint8  `toml:"downstream_bus" yaml:"downstream_bus"`
	PciPath       string `toml:"pci_path" yaml:"pci_path"`
}
