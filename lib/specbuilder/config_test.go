package specbuilder

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/onkernel/vmspec/lib/instances"
	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/onkernel/vmspec/lib/pci"
	"github.com/onkernel/vmspec/lib/serverconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerTOML = `
bootrom = "/usr/share/bootrom/OVMF_CODE.fd"

[chipset]
enable-pcie = "true"

[dev.block0]
driver = "pci-virtio-block"
block_dev = "alpine_iso"
pci-path = "0.4.0"

[dev.block1]
driver = "pci-nvme"
block_dev = "scratch"
pci-path = "0.5.0"

[dev.net0]
driver = "pci-virtio-viona"
vnic = "vnic_prop0"
pci-path = "0.6.0"

[block_dev.alpine_iso]
type = "file"
path = "/tmp/alpine.iso"
readonly = "true"

[block_dev.scratch]
type = "file"
path = "/tmp/scratch.img"

[[pci_bridge]]
downstream_bus = 1
pci_path = "0.7.0"
`

func loadTestConfig(t *testing.T) *serverconfig.Config {
	t.Helper()
	cfg, err := serverconfig.ParseTOML([]byte(testServerTOML))
	require.NoError(t, err)
	return cfg
}

func buildFromConfig(t *testing.T, cfg *serverconfig.Config) instancespec.VersionedInstanceSpec {
	t.Helper()
	b, err := New(defaultProps(), cfg)
	require.NoError(t, err)
	require.NoError(t, b.AddDevicesFromConfig(cfg))
	spec, err := b.Finish()
	require.NoError(t, err)
	return spec
}

func TestAddDevicesFromConfig(t *testing.T) {
	spec := buildFromConfig(t, loadTestConfig(t)).Spec

	assert.True(t, spec.Devices.Board.Chipset.I440Fx.EnablePCIe)

	assert.Equal(t, instancespec.VirtioDisk{BackendName: "alpine_iso", PCIPath: pci.Path{Device: 4}},
		spec.Devices.StorageDevices["block0"])
	assert.Equal(t, instancespec.NvmeDisk{BackendName: "scratch", PCIPath: pci.Path{Device: 5}},
		spec.Devices.StorageDevices["block1"])
	assert.Equal(t, instancespec.FileStorageBackend{Path: "/tmp/alpine.iso", ReadOnly: true},
		spec.Backends.StorageBackends["alpine_iso"])
	assert.Equal(t, instancespec.FileStorageBackend{Path: "/tmp/scratch.img", ReadOnly: false},
		spec.Backends.StorageBackends["scratch"])

	assert.Equal(t, instancespec.VirtioNic{BackendName: "vnic-0.6.0-backend", PCIPath: pci.Path{Device: 6}},
		spec.Devices.NetworkDevices["vnic-0.6.0"])
	assert.Equal(t, instancespec.VirtioNetworkBackend{VnicName: "vnic_prop0"},
		spec.Backends.NetworkBackends["vnic-0.6.0-backend"])

	assert.Equal(t, map[string]instancespec.PciPciBridge{
		"pci-bridge-1": {DownstreamBus: 1, PCIPath: pci.Path{Device: 7}},
	}, spec.Devices.PciPciBridges)
}

func TestAddDevicesFromConfig_NICMatchesRequestNIC(t *testing.T) {
	cfg := &serverconfig.Config{
		Devices: map[string]serverconfig.Device{
			"net0": {Driver: "pci-virtio-viona", Options: serverconfig.Options{"vnic": "vnic0", "pci-path": "0.8.0"}},
		},
	}
	fromConfig := buildFromConfig(t, cfg)

	b := newTestBuilder(t)
	require.NoError(t, b.AddNICFromRequest(instances.NetworkInterfaceRequest{Name: "vnic0", Slot: 0}))
	fromRequest, err := b.Finish()
	require.NoError(t, err)

	assert.Equal(t, fromRequest, fromConfig)
}

func TestAddDevicesFromConfig_RebuildIsMigrationCompatible(t *testing.T) {
	cfg := loadTestConfig(t)

	data, err := json.Marshal(buildFromConfig(t, cfg))
	require.NoError(t, err)

	var source instancespec.VersionedInstanceSpec
	require.NoError(t, json.Unmarshal(data, &source))

	target := buildFromConfig(t, loadTestConfig(t))

	assert.Equal(t, target, source)
	assert.NoError(t, instancespec.CheckMigrationCompatible(source.Spec, target.Spec))
}

func TestAddDevicesFromConfig_Errors(t *testing.T) {
	fileBackend := serverconfig.BlockDevice{Type: "file", Options: serverconfig.Options{"path": "/tmp/disk.img"}}

	tests := []struct {
		name     string
		cfg      *serverconfig.Config
		kind     Kind
		sentinel error
		contains []string
	}{
		{
			name: "missing backend",
			cfg: &serverconfig.Config{
				Devices: map[string]serverconfig.Device{
					"block0": {Driver: "pci-virtio-block", Options: serverconfig.Options{"block_dev": "nope", "pci-path": "0.4.0"}},
				},
			},
			kind:     KindReferential,
			sentinel: ErrDeviceMissingBackend,
			contains: []string{"block0", "nope"},
		},
		{
			name: "unrecognized backend type",
			cfg: &serverconfig.Config{
				Devices: map[string]serverconfig.Device{
					"block0": {Driver: "pci-nvme", Options: serverconfig.Options{"block_dev": "remote", "pci-path": "0.4.0"}},
				},
				BlockDevs: map[string]serverconfig.BlockDevice{
					"remote": {Type: "iscsi", Options: serverconfig.Options{}},
				},
			},
			kind:     KindRecognition,
			sentinel: ErrUnrecognizedStorageBackend,
			contains: []string{"iscsi"},
		},
		{
			name: "unrecognized driver",
			cfg: &serverconfig.Config{
				Devices: map[string]serverconfig.Device{
					"gpu0": {Driver: "pci-passthru", Options: serverconfig.Options{}},
				},
			},
			kind:     KindRecognition,
			sentinel: ErrUnrecognizedDeviceType,
			contains: []string{"pci-passthru"},
		},
		{
			name: "missing pci-path",
			cfg: &serverconfig.Config{
				Devices: map[string]serverconfig.Device{
					"net0": {Driver: "pci-virtio-viona", Options: serverconfig.Options{"vnic": "vnic0"}},
				},
			},
			kind:     KindFormat,
			sentinel: serverconfig.ErrMissingOption,
			contains: []string{"net0", "pci-path"},
		},
		{
			name: "malformed pci-path",
			cfg: &serverconfig.Config{
				Devices: map[string]serverconfig.Device{
					"net0": {Driver: "pci-virtio-viona", Options: serverconfig.Options{"vnic": "vnic0", "pci-path": "0.4"}},
				},
			},
			kind:     KindAllocation,
			sentinel: ErrPCIPathNotParseable,
			contains: []string{"0.4"},
		},
		{
			name: "readonly not bool-like",
			cfg: &serverconfig.Config{
				Devices: map[string]serverconfig.Device{
					"block0": {Driver: "pci-virtio-block", Options: serverconfig.Options{"block_dev": "disk", "pci-path": "0.4.0"}},
				},
				BlockDevs: map[string]serverconfig.BlockDevice{
					"disk": {Type: "file", Options: serverconfig.Options{"path": "/tmp/disk.img", "readonly": "maybe"}},
				},
			},
			kind:     KindFormat,
			sentinel: serverconfig.ErrInvalidOption,
			contains: []string{"readonly"},
		},
		{
			name: "malformed bridge path",
			cfg: &serverconfig.Config{
				PciBridges: []serverconfig.PciBridge{{DownstreamBus: 1, PciPath: "zero.six.zero"}},
			},
			kind:     KindAllocation,
			sentinel: ErrPCIPathNotParseable,
			contains: []string{"zero.six.zero"},
		},
		{
			name: "devices share a PCI path",
			cfg: &serverconfig.Config{
				Devices: map[string]serverconfig.Device{
					"a": {Driver: "pci-virtio-block", Options: serverconfig.Options{"block_dev": "disk", "pci-path": "0.4.0"}},
					"b": {Driver: "pci-virtio-viona", Options: serverconfig.Options{"vnic": "vnic0", "pci-path": "0.4.0"}},
				},
				BlockDevs: map[string]serverconfig.BlockDevice{"disk": fileBackend},
			},
			kind:     KindUniqueness,
			sentinel: instancespec.ErrPCIPathInUse,
			contains: []string{"0.4.0", "a"},
		},
		{
			name: "bridge collides with device",
			cfg: &serverconfig.Config{
				Devices: map[string]serverconfig.Device{
					"a": {Driver: "pci-virtio-block", Options: serverconfig.Options{"block_dev": "disk", "pci-path": "0.4.0"}},
				},
				BlockDevs:  map[string]serverconfig.BlockDevice{"disk": fileBackend},
				PciBridges: []serverconfig.PciBridge{{DownstreamBus: 1, PciPath: "0.4.0"}},
			},
			kind:     KindUniqueness,
			sentinel: instancespec.ErrPCIPathInUse,
			contains: []string{"0.4.0"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := New(defaultProps(), tc.cfg)
			require.NoError(t, err)

			err = b.AddDevicesFromConfig(tc.cfg)
			requireKind(t, err, tc.kind)
			assert.True(t, errors.Is(err, tc.sentinel), "error: %v", err)
			for _, s := range tc.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestAddDevicesFromConfig_SortedOrder(t *testing.T) {
	// Both devices claim 0.4.0; the name that sorts first wins every time.
	cfg := &serverconfig.Config{
		Devices: map[string]serverconfig.Device{
			"zeta":  {Driver: "pci-virtio-viona", Options: serverconfig.Options{"vnic": "vnic-z", "pci-path": "0.4.0"}},
			"alpha": {Driver: "pci-virtio-viona", Options: serverconfig.Options{"vnic": "vnic-a", "pci-path": "0.4.0"}},
		},
	}

	for i := 0; i < 10; i++ {
		b, err := New(defaultProps(), cfg)
		require.NoError(t, err)
		err = b.AddDevicesFromConfig(cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, instancespec.ErrPCIPathInUse))
	}

	b, err := New(defaultProps(), nil)
	require.NoError(t, err)
	err = b.AddDevicesFromConfig(cfg)
	require.Error(t, err)
	spec, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, instancespec.VirtioNetworkBackend{VnicName: "vnic-a"},
		spec.Spec.Backends.NetworkBackends["vnic-0.4.0-backend"])
}
