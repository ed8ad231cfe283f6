package instancespec

import (
	"encoding/json"
	"fmt"
)

// componentEnvelope is the wire form of one variant: a type tag plus the
// variant's own fields.
type componentEnvelope struct {
	Type      string          `json:"type"`
	Component json.RawMessage `json:"component"`
}

func wrap(typ string, component any) (componentEnvelope, error) {
	raw, err := json.Marshal(component)
	if err != nil {
		return componentEnvelope{}, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return componentEnvelope{Type: typ, Component: raw}, nil
}

func decodeComponent[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

func marshalVariants[T any](m map[string]T, typeOf func(T) (string, error)) ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	out := make(map[string]componentEnvelope, len(m))
	for name, v := range m {
		typ, err := typeOf(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		env, err := wrap(typ, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = env
	}
	return json.Marshal(out)
}

func unmarshalVariants[T any](data []byte, decode func(typ string, raw json.RawMessage) (T, error)) (map[string]T, error) {
	var envelopes map[string]componentEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, err
	}
	if envelopes == nil {
		return nil, nil
	}
	out := make(map[string]T, len(envelopes))
	for name, env := range envelopes {
		v, err := decode(env.Type, env.Component)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func nilComponent(kind string) error {
	return fmt.Errorf("%w: nil %s", ErrInvalidComponent, kind)
}

// MarshalJSON implements json.Marshaler.
func (m StorageDevices) MarshalJSON() ([]byte, error) {
	return marshalVariants(m, func(d StorageDevice) (string, error) {
		if d == nil {
			return "", nilComponent("storage device")
		}
		return d.storageDeviceType(), nil
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *StorageDevices) UnmarshalJSON(data []byte) error {
	decoded, err := unmarshalVariants(data, func(typ string, raw json.RawMessage) (StorageDevice, error) {
		switch typ {
		case "VirtioDisk":
			return decodeComponent[VirtioDisk](raw)
		case "NvmeDisk":
			return decodeComponent[NvmeDisk](raw)
		default:
			return nil, fmt.Errorf("%w: storage device %q", ErrUnknownComponentType, typ)
		}
	})
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m NetworkDevices) MarshalJSON() ([]byte, error) {
	return marshalVariants(m, func(d NetworkDevice) (string, error) {
		if d == nil {
			return "", nilComponent("network device")
		}
		return d.networkDeviceType(), nil
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *NetworkDevices) UnmarshalJSON(data []byte) error {
	decoded, err := unmarshalVariants(data, func(typ string, raw json.RawMessage) (NetworkDevice, error) {
		switch typ {
		case "VirtioNic":
			return decodeComponent[VirtioNic](raw)
		default:
			return nil, fmt.Errorf("%w: network device %q", ErrUnknownComponentType, typ)
		}
	})
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m StorageBackends) MarshalJSON() ([]byte, error) {
	return marshalVariants(m, func(b StorageBackend) (string, error) {
		if b == nil {
			return "", nilComponent("storage backend")
		}
		return b.storageBackendType(), nil
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *StorageBackends) UnmarshalJSON(data []byte) error {
	decoded, err := unmarshalVariants(data, func(typ string, raw json.RawMessage) (StorageBackend, error) {
		switch typ {
		case "File":
			return decodeComponent[FileStorageBackend](raw)
		case "Blob":
			return decodeComponent[BlobStorageBackend](raw)
		case "Crucible":
			return decodeComponent[CrucibleStorageBackend](raw)
		default:
			return nil, fmt.Errorf("%w: storage backend %q", ErrUnknownComponentType, typ)
		}
	})
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m NetworkBackends) MarshalJSON() ([]byte, error) {
	return marshalVariants(m, func(b NetworkBackend) (string, error) {
		if b == nil {
			return "", nilComponent("network backend")
		}
		return b.networkBackendType(), nil
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *NetworkBackends) UnmarshalJSON(data []byte) error {
	decoded, err := unmarshalVariants(data, func(typ string, raw json.RawMessage) (NetworkBackend, error) {
		switch typ {
		case "Virtio":
			return decodeComponent[VirtioNetworkBackend](raw)
		default:
			return nil, fmt.Errorf("%w: network backend %q", ErrUnknownComponentType, typ)
		}
	})
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// UnmarshalJSON rejects spec versions this package does not understand.
func (v *VersionedInstanceSpec) UnmarshalJSON(data []byte) error {
	type plain VersionedInstanceSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Version != VersionV0 {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, p.Version)
	}
	*v = VersionedInstanceSpec(p)
	return nil
}
