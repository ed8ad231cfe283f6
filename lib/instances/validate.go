package instances

import (
	"encoding/base64"
	"fmt"
)

// Validate checks the request for problems that do not depend on the
// server configuration. Slot ranges, device interfaces and PCI conflicts are
// left to the spec builder, which reports them with their own error kinds.
func (r InstanceEnsureRequest) Validate() error {
	if r.Properties.VCPUs == 0 {
		return fmt.Errorf("%w: vcpus must be at least 1", ErrInvalidRequest)
	}
	if r.Properties.Memory == 0 {
		return fmt.Errorf("%w: memory must be at least 1 MiB", ErrInvalidRequest)
	}

	for i, nic := range r.Nics {
		if nic.Name == "" {
			return fmt.Errorf("%w: nic %d: name is required", ErrInvalidRequest, i)
		}
	}

	for i, disk := range r.Disks {
		if disk.Name == "" {
			return fmt.Errorf("%w: disk %d: name is required", ErrInvalidRequest, i)
		}
		if err := disk.VolumeConstructionRequest.Validate(); err != nil {
			return fmt.Errorf("disk %s: %w", disk.Name, err)
		}
	}

	if r.CloudInitBytes != nil {
		if _, err := base64.StdEncoding.DecodeString(*r.CloudInitBytes); err != nil {
			return fmt.Errorf("%w: cloud_init_bytes is not valid base64: %v", ErrInvalidRequest, err)
		}
	}

	return nil
}
