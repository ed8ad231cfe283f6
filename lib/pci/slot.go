package pci

import "fmt"

// Slot is the small per-class device position supplied in instance creation
// requests. Slots only have meaning within their SlotType.
type Slot uint8

// SlotType partitions device numbers on bus 0. A request for slot Y of type X
// is assigned the Yth device number in X's partition.
type SlotType int

const (
	SlotTypeNIC SlotType = iota
	SlotTypeDisk
	SlotTypeCloudInit
)

func (t SlotType) String() string {
	switch t {
	case SlotTypeNIC:
		return "nic"
	case SlotTypeDisk:
		return "disk"
	case SlotTypeCloudInit:
		return "cloud-init"
	default:
		return fmt.Sprintf("slot-type(%d)", int(t))
	}
}

// Device number partitions on bus 0. Migration sources and targets must agree
// on these, so they must never change.
const (
	nicDeviceBase       = 0x08
	diskDeviceBase      = 0x10
	cloudInitDeviceBase = 0x18

	maxNICSlot       = 7
	maxDiskSlot      = 7
	maxCloudInitSlot = 0
)

// SlotToPath translates a request slot of the given type into its PCI path.
func SlotToPath(slot Slot, ty SlotType) (Path, error) {
	var (
		device uint8
		ok     bool
	)

	switch ty {
	case SlotTypeNIC:
		device, ok = nicDeviceBase+uint8(slot), slot <= maxNICSlot
	case SlotTypeDisk:
		device, ok = diskDeviceBase+uint8(slot), slot <= maxDiskSlot
	case SlotTypeCloudInit:
		device, ok = cloudInitDeviceBase+uint8(slot), slot <= maxCloudInitSlot
	}
	if !ok {
		return Path{}, slotError(slot, ty)
	}

	path, err := NewPath(0, device, 0)
	if err != nil {
		return Path{}, slotError(slot, ty)
	}
	return path, nil
}

// SlotRange returns the valid slots for a slot type, lowest first.
func SlotRange(ty SlotType) []Slot {
	var max Slot
	switch ty {
	case SlotTypeNIC:
		max = maxNICSlot
	case SlotTypeDisk:
		max = maxDiskSlot
	case SlotTypeCloudInit:
		max = maxCloudInitSlot
	default:
		return nil
	}

	slots := make([]Slot, 0, max+1)
	for s := Slot(0); s <= max; s++ {
		slots = append(slots, s)
	}
	return slots
}

func slotError(slot Slot, ty SlotType) error {
	return fmt.Errorf("%w: could not translate PCI slot %d for device type %s to a PCI path", ErrSlotInvalid, slot, ty)
}
