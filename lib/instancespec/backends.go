package instancespec

// StorageBackend is the implementation behind a storage device. The set of
// implementations is closed: FileStorageBackend, BlobStorageBackend and
// CrucibleStorageBackend.
type StorageBackend interface {
	// IsReadOnly reports whether the guest may only read from the backend.
	IsReadOnly() bool

	storageBackendType() string
}

// NetworkBackend is the implementation behind a network device.
// VirtioNetworkBackend is the only implementation.
type NetworkBackend interface {
	networkBackendType() string
}

// FileStorageBackend serves a disk from a file on the host.
type FileStorageBackend struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"readonly"`
}

func (b FileStorageBackend) IsReadOnly() bool           { return b.ReadOnly }
func (b FileStorageBackend) storageBackendType() string { return "File" }

// BlobStorageBackend serves a disk from base64-encoded bytes embedded in the
// spec itself.
type BlobStorageBackend struct {
	Base64   string `json:"base64"`
	ReadOnly bool   `json:"readonly"`
}

func (b BlobStorageBackend) IsReadOnly() bool           { return b.ReadOnly }
func (b BlobStorageBackend) storageBackendType() string { return "Blob" }

// CrucibleStorageBackend serves a disk from distributed block storage. The
// volume is described by RequestJSON, a serialized volume construction
// request that is opaque to the spec.
type CrucibleStorageBackend struct {
	RequestJSON string `json:"request_json"`
	ReadOnly    bool   `json:"readonly"`
}

func (b CrucibleStorageBackend) IsReadOnly() bool           { return b.ReadOnly }
func (b CrucibleStorageBackend) storageBackendType() string { return "Crucible" }

// VirtioNetworkBackend binds a virtio NIC to a host vNIC.
type VirtioNetworkBackend struct {
	VnicName string `json:"vnic_name"`
}

func (b VirtioNetworkBackend) networkBackendType() string { return "Virtio" }
