// Package pci models guest-visible PCI addresses and the fixed scheme that
// maps request slots onto them.
package pci

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxDevice is the highest device number on a PCI bus.
	MaxDevice = 31
	// MaxFunction is the highest function number on a PCI device.
	MaxFunction = 7
)

// Path is a bus/device/function address on the emulated PCI topology.
// Its text form is "<bus>.<device>.<function>" in decimal, e.g. "0.8.0".
type Path struct {
	Bus      uint8
	Device   uint8
	Function uint8
}

// NewPath returns the path for the given components or ErrInvalidPath if the
// device or function number is out of range.
func NewPath(bus, device, function uint8) (Path, error) {
	if device > MaxDevice {
		return Path{}, fmt.Errorf("%w: device %d exceeds %d", ErrInvalidPath, device, MaxDevice)
	}
	if function > MaxFunction {
		return Path{}, fmt.Errorf("%w: function %d exceeds %d", ErrInvalidPath, function, MaxFunction)
	}
	return Path{Bus: bus, Device: device, Function: function}, nil
}

// ParsePath parses the "<bus>.<device>.<function>" text form.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Path{}, fmt.Errorf("%w: %q is not of the form bus.device.function", ErrInvalidPath, s)
	}

	var nums [3]uint8
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return Path{}, fmt.Errorf("%w: %q: %v", ErrInvalidPath, s, err)
		}
		nums[i] = uint8(n)
	}

	return NewPath(nums[0], nums[1], nums[2])
}

func (p Path) String() string {
	return fmt.Sprintf("%d.%d.%d", p.Bus, p.Device, p.Function)
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
