package pci

import "errors"

var (
	// ErrInvalidPath is returned when a PCI path is malformed or out of range
	ErrInvalidPath = errors.New("invalid PCI path")

	// ErrSlotInvalid is returned when a slot has no PCI path for its device class
	ErrSlotInvalid = errors.New("invalid slot for device class")
)
