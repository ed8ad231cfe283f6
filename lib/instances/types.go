package instances

import (
	"github.com/google/uuid"
	"github.com/onkernel/vmspec/lib/pci"
)

// InstanceMetadata identifies who owns an instance.
type InstanceMetadata struct {
	SiloID    uuid.UUID `json:"silo_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

// InstanceProperties are the identity and sizing of an instance.
type InstanceProperties struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Metadata    InstanceMetadata `json:"metadata"`
	ImageID     uuid.UUID        `json:"image_id"`
	BootromID   uuid.UUID        `json:"bootrom_id"`

	// Memory is the guest memory size in MiB.
	Memory uint64 `json:"memory"`
	VCPUs  uint8  `json:"vcpus"`
}

// NetworkInterfaceRequest asks for a NIC in a NIC slot. Name is the host
// vNIC to bind, which may differ between incarnations of the instance.
type NetworkInterfaceRequest struct {
	Name string   `json:"name"`
	Slot pci.Slot `json:"slot"`
}

// DiskRequest asks for a disk in a disk slot backed by distributed storage.
type DiskRequest struct {
	Name     string   `json:"name"`
	Slot     pci.Slot `json:"slot"`
	ReadOnly bool     `json:"read_only"`
	// Device is the guest interface: "virtio" or "nvme".
	Device                    string                    `json:"device"`
	VolumeConstructionRequest VolumeConstructionRequest `json:"volume_construction_request"`
}

// InstanceEnsureRequest is everything an instance-creation call supplies.
type InstanceEnsureRequest struct {
	Properties InstanceProperties        `json:"properties"`
	Nics       []NetworkInterfaceRequest `json:"nics"`
	Disks      []DiskRequest             `json:"disks"`
	// CloudInitBytes is a base64-encoded cloud-init seed image.
	CloudInitBytes *string `json:"cloud_init_bytes,omitempty"`
}
