package specbuilder

import (
	"errors"
	"fmt"

	"github.com/onkernel/vmspec/lib/instances"
	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/onkernel/vmspec/lib/pci"
	"github.com/onkernel/vmspec/lib/serverconfig"
)

var (
	// ErrSlotInvalid is returned when a slot is out of range for its device class
	ErrSlotInvalid = pci.ErrSlotInvalid

	// ErrPCIPathNotParseable is returned when a configured PCI path is malformed
	ErrPCIPathNotParseable = errors.New("PCI path not parseable")

	// ErrUnrecognizedStorageDevice is returned for disk interfaces other than virtio and nvme
	ErrUnrecognizedStorageDevice = errors.New("unrecognized storage device interface")

	// ErrUnrecognizedStorageBackend is returned for block-device types other than file
	ErrUnrecognizedStorageBackend = errors.New("unrecognized storage backend type")

	// ErrUnrecognizedDeviceType is returned for unknown configuration device drivers
	ErrUnrecognizedDeviceType = errors.New("unrecognized device type")

	// ErrDeviceMissingBackend is returned when a device names an absent block device
	ErrDeviceMissingBackend = errors.New("device requested missing backend")

	// ErrConfig is returned when a configuration value is missing or has the wrong shape
	ErrConfig = errors.New("invalid server configuration")

	// ErrSerialization is returned when a volume request cannot be encoded into a backend
	ErrSerialization = errors.New("error serializing into spec element")
)

// Kind classifies a build failure so callers can map it to a response.
type Kind int

const (
	KindAllocation Kind = iota + 1
	KindUniqueness
	KindRecognition
	KindReferential
	KindFormat
	KindEncoding
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindAllocation:
		return "allocation"
	case KindUniqueness:
		return "uniqueness"
	case KindRecognition:
		return "recognition"
	case KindReferential:
		return "referential"
	case KindFormat:
		return "format"
	case KindEncoding:
		return "encoding"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// BuildError is the single error type returned by ServerSpecBuilder. Err
// wraps the underlying sentinel, so errors.Is works for both the errors
// defined here and those of the instancespec package.
type BuildError struct {
	Kind Kind
	Err  error
}

func (e *BuildError) Error() string {
	return e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a build error, or false if err is not one.
func KindOf(err error) (Kind, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

func newError(kind Kind, format string, args ...any) error {
	return &BuildError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// classify wraps an error from a collaborator package in a BuildError of
// the matching kind. Errors that are already BuildErrors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}

	kind := KindRequest
	switch {
	case errors.Is(err, pci.ErrSlotInvalid),
		errors.Is(err, instancespec.ErrInvalidSerialPort):
		kind = KindAllocation
	case errors.Is(err, instancespec.ErrPCIPathInUse),
		errors.Is(err, instancespec.ErrSerialPortInUse),
		errors.Is(err, instancespec.ErrDeviceNameInUse),
		errors.Is(err, instancespec.ErrBackendNameInUse),
		errors.Is(err, instancespec.ErrComponentInUse):
		kind = KindUniqueness
	case errors.Is(err, instancespec.ErrBackendMismatch):
		kind = KindReferential
	case errors.Is(err, serverconfig.ErrMissingOption),
		errors.Is(err, serverconfig.ErrInvalidOption),
		errors.Is(err, instancespec.ErrInvalidComponent):
		kind = KindFormat
	case errors.Is(err, instances.ErrInvalidRequest),
		errors.Is(err, instancespec.ErrBuilderFinished):
		kind = KindRequest
	}
	return &BuildError{Kind: kind, Err: err}
}
