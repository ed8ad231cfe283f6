package instances

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// VolumeType selects the shape of a VolumeConstructionRequest.
type VolumeType string

const (
	VolumeTypeVolume VolumeType = "volume"
	VolumeTypeURL    VolumeType = "url"
	VolumeTypeRegion VolumeType = "region"
	VolumeTypeFile   VolumeType = "file"
)

// VolumeConstructionRequest describes how the distributed block-storage
// service should assemble a volume. The spec carries it opaquely; only the
// fields relevant to Type are set.
type VolumeConstructionRequest struct {
	Type      VolumeType `json:"type"`
	ID        uuid.UUID  `json:"id"`
	BlockSize uint64     `json:"block_size"`

	// volume
	SubVolumes     []VolumeConstructionRequest `json:"sub_volumes,omitempty"`
	ReadOnlyParent *VolumeConstructionRequest  `json:"read_only_parent,omitempty"`

	// url
	URL string `json:"url,omitempty"`

	// file
	Path string `json:"path,omitempty"`

	// region
	BlocksPerExtent uint64 `json:"blocks_per_extent,omitempty"`
	ExtentCount     uint32 `json:"extent_count,omitempty"`
	Gen             uint64 `json:"gen,omitempty"`
	// Opts are the region's connection options, passed through verbatim.
	Opts json.RawMessage `json:"opts,omitempty"`
}

// NewFileVolume returns a request for a volume served from a local file.
func NewFileVolume(id uuid.UUID, blockSize uint64, path string) VolumeConstructionRequest {
	return VolumeConstructionRequest{
		Type:      VolumeTypeFile,
		ID:        id,
		BlockSize: blockSize,
		Path:      path,
	}
}

// Validate checks that the fields required by Type are present.
func (v VolumeConstructionRequest) Validate() error {
	if v.BlockSize == 0 {
		return fmt.Errorf("%w: volume block_size is required", ErrInvalidRequest)
	}

	switch v.Type {
	case VolumeTypeFile:
		if v.Path == "" {
			return fmt.Errorf("%w: file volume requires path", ErrInvalidRequest)
		}
	case VolumeTypeURL:
		if v.URL == "" {
			return fmt.Errorf("%w: url volume requires url", ErrInvalidRequest)
		}
	case VolumeTypeVolume:
		if len(v.SubVolumes) == 0 {
			return fmt.Errorf("%w: volume requires at least one sub volume", ErrInvalidRequest)
		}
		for i, sub := range v.SubVolumes {
			if err := sub.Validate(); err != nil {
				return fmt.Errorf("sub volume %d: %w", i, err)
			}
		}
		if v.ReadOnlyParent != nil {
			if err := v.ReadOnlyParent.Validate(); err != nil {
				return fmt.Errorf("read-only parent: %w", err)
			}
		}
	case VolumeTypeRegion:
		if v.ExtentCount == 0 || v.BlocksPerExtent == 0 {
			return fmt.Errorf("%w: region requires extent_count and blocks_per_extent", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown volume type %q", ErrInvalidRequest, v.Type)
	}
	return nil
}
