package instancespec

import "errors"

var (
	// ErrPCIPathInUse is returned when a component is placed at a PCI path
	// another component already occupies
	ErrPCIPathInUse = errors.New("PCI path in use")

	// ErrSerialPortInUse is returned when a serial port is added twice
	ErrSerialPortInUse = errors.New("serial port in use")

	// ErrInvalidSerialPort is returned for ports other than COM1-COM4
	ErrInvalidSerialPort = errors.New("invalid serial port")

	// ErrDeviceNameInUse is returned when a device name is reused within a device class
	ErrDeviceNameInUse = errors.New("device name in use")

	// ErrBackendNameInUse is returned when a backend name is reused with a different definition
	ErrBackendNameInUse = errors.New("backend name in use")

	// ErrBackendMismatch is returned when a device does not reference the backend added with it
	ErrBackendMismatch = errors.New("device does not reference its backend")

	// ErrComponentInUse is returned when a singleton component is set twice
	ErrComponentInUse = errors.New("component already present")

	// ErrInvalidComponent is returned for nil or otherwise unusable components
	ErrInvalidComponent = errors.New("invalid component")

	// ErrBuilderFinished is returned when a builder is used after Finish
	ErrBuilderFinished = errors.New("spec builder already finished")

	// ErrUnknownComponentType is returned when decoding a variant with an unrecognized type tag
	ErrUnknownComponentType = errors.New("unknown component type")

	// ErrUnsupportedVersion is returned when decoding a spec of an unknown version
	ErrUnsupportedVersion = errors.New("unsupported instance spec version")

	// ErrMigrationIncompatible is returned when two specs do not describe the same VM
	ErrMigrationIncompatible = errors.New("instance specs are not migration compatible")
)
