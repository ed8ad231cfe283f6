package instancespec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/r3labs/diff/v3"
)

// Difference is one point at which two specs disagree.
type Difference struct {
	// Path is the dotted location in the serialized spec, e.g.
	// "devices.network_devices.vnic-0.8.0.component.pci_path".
	Path string
	// Change is "create", "update" or "delete" as seen from the source.
	Change string
	From   any
	To     any
}

func (d Difference) String() string {
	return fmt.Sprintf("%s %s: %v -> %v", d.Change, d.Path, d.From, d.To)
}

// Diff compares the guest-visible parts of two specs and returns every point
// of disagreement, sorted by path. Devices are compared in full. Backends are
// compared only by name, variant and read-only flag: host-side details such
// as the vNIC name or the volume request may differ between hosts.
func Diff(src, dst InstanceSpec) ([]Difference, error) {
	srcTree, err := toTree(src)
	if err != nil {
		return nil, fmt.Errorf("encode source spec: %w", err)
	}
	dstTree, err := toTree(dst)
	if err != nil {
		return nil, fmt.Errorf("encode target spec: %w", err)
	}

	changes, err := diff.Diff(srcTree, dstTree)
	if err != nil {
		return nil, fmt.Errorf("diff specs: %w", err)
	}

	diffs := make([]Difference, 0, len(changes))
	for _, c := range changes {
		diffs = append(diffs, Difference{
			Path:   strings.Join(c.Path, "."),
			Change: c.Type,
			From:   c.From,
			To:     c.To,
		})
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return diffs, nil
}

// CheckMigrationCompatible returns nil if a VM built from src can migrate to
// a process that built dst, i.e. both describe identical hardware. Otherwise
// the error wraps ErrMigrationIncompatible and lists each difference.
func CheckMigrationCompatible(src, dst InstanceSpec) error {
	diffs, err := Diff(src, dst)
	if err != nil {
		return err
	}
	if len(diffs) == 0 {
		return nil
	}

	lines := make([]string, 0, len(diffs))
	for _, d := range diffs {
		lines = append(lines, d.String())
	}
	return fmt.Errorf("%w: %s", ErrMigrationIncompatible, strings.Join(lines, "; "))
}

func toTree(spec InstanceSpec) (map[string]any, error) {
	data, err := json.Marshal(spec.Devices)
	if err != nil {
		return nil, err
	}
	var devices map[string]any
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, err
	}

	storage := make(map[string]any, len(spec.Backends.StorageBackends))
	for name, b := range spec.Backends.StorageBackends {
		if b == nil {
			return nil, nilComponent("storage backend " + name)
		}
		storage[name] = map[string]any{
			"type":     b.storageBackendType(),
			"readonly": b.IsReadOnly(),
		}
	}

	network := make(map[string]any, len(spec.Backends.NetworkBackends))
	for name, b := range spec.Backends.NetworkBackends {
		if b == nil {
			return nil, nilComponent("network backend " + name)
		}
		network[name] = map[string]any{"type": b.networkBackendType()}
	}

	return map[string]any{
		"devices": devices,
		"backends": map[string]any{
			"storage_backends": storage,
			"network_backends": network,
		},
	}, nil
}
