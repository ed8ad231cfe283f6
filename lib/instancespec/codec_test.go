package instancespec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSpec(t *testing.T) VersionedInstanceSpec {
	t.Helper()
	b := NewBuilder(8, 4096, true)
	require.NoError(t, b.SetPvpanic(QemuPvpanic{EnableISA: true}))
	require.NoError(t, b.AddStorageDevice("boot", VirtioDisk{BackendName: "boot", PCIPath: mustPath(t, "0.4.0")}, "boot", FileStorageBackend{Path: "/var/img/boot.raw"}))
	require.NoError(t, b.AddStorageDevice("data", NvmeDisk{BackendName: "data", PCIPath: mustPath(t, "0.16.0")}, "data", CrucibleStorageBackend{RequestJSON: `{"type":"file"}`, ReadOnly: true}))
	require.NoError(t, b.AddStorageDevice("cloud-init", VirtioDisk{BackendName: "cloud-init", PCIPath: mustPath(t, "0.24.0")}, "cloud-init", BlobStorageBackend{Base64: "aGVsbG8=", ReadOnly: true}))
	require.NoError(t, b.AddNetworkDevice("vnic-0.8.0", VirtioNic{BackendName: "vnic-0.8.0-backend", PCIPath: mustPath(t, "0.8.0")}, "vnic-0.8.0-backend", VirtioNetworkBackend{VnicName: "vnic0"}))
	require.NoError(t, b.AddPciBridge("pci-bridge-1", PciPciBridge{DownstreamBus: 1, PCIPath: mustPath(t, "0.30.0")}))
	require.NoError(t, b.AddSerialPort(COM1))
	require.NoError(t, b.SetSoftNpuPciPort(SoftNpuPciPort{PCIPath: mustPath(t, "0.29.0")}))
	require.NoError(t, b.AddSoftNpuPort("sc0", SoftNpuPort{Name: "sc0", BackendName: "vnic7"}))
	require.NoError(t, b.SetSoftNpuP9(SoftNpuP9{PCIPath: mustPath(t, "0.28.0")}))
	require.NoError(t, b.SetP9fs(P9fs{Source: "/src", Target: "/mnt", ChunkSize: 4096, PCIPath: mustPath(t, "0.27.0")}))
	spec, err := b.Finish()
	require.NoError(t, err)
	return spec
}

func TestCodec_RoundTrip(t *testing.T) {
	spec := fullSpec(t)

	data, err := json.Marshal(spec)
	require.NoError(t, err)

	var decoded VersionedInstanceSpec
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, spec, decoded)

	// Encoding is deterministic: re-encoding yields the same bytes.
	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestCodec_WireShape(t *testing.T) {
	spec := fullSpec(t)
	data, err := json.Marshal(spec)
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal(data, &tree))
	assert.Equal(t, "V0", tree["version"])

	devices := tree["spec"].(map[string]any)["devices"].(map[string]any)
	nic := devices["network_devices"].(map[string]any)["vnic-0.8.0"].(map[string]any)
	assert.Equal(t, "VirtioNic", nic["type"])
	assert.Equal(t, "0.8.0", nic["component"].(map[string]any)["pci_path"])

	backends := tree["spec"].(map[string]any)["backends"].(map[string]any)
	data2 := backends["storage_backends"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "Crucible", data2["type"])
}

func TestCodec_UnknownType(t *testing.T) {
	var devices StorageDevices
	err := json.Unmarshal([]byte(`{"d":{"type":"ScsiDisk","component":{}}}`), &devices)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownComponentType))
}

func TestCodec_UnsupportedVersion(t *testing.T) {
	var spec VersionedInstanceSpec
	err := json.Unmarshal([]byte(`{"version":"V9","spec":{}}`), &spec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestCodec_NilVariantFailsToEncode(t *testing.T) {
	_, err := json.Marshal(NetworkBackends{"be": nil})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidComponent))
}
