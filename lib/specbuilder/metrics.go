package specbuilder

import (
	"context"
	"time"

	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metrics instruments for spec builds.
type Metrics struct {
	buildsTotal     metric.Int64Counter
	buildDuration   metric.Float64Histogram
	componentsTotal metric.Int64Counter
}

// BuildMetrics is the global metrics instance for the specbuilder package.
// Set this via SetMetrics() during application initialization.
var BuildMetrics *Metrics

// SetMetrics sets the global metrics instance.
func SetMetrics(m *Metrics) {
	BuildMetrics = m
}

// NewMetrics creates spec build metrics instruments.
// If meter is nil, returns nil (metrics disabled).
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, nil
	}

	buildsTotal, err := meter.Int64Counter(
		"vmspec_spec_builds_total",
		metric.WithDescription("Total number of instance spec builds"),
	)
	if err != nil {
		return nil, err
	}

	buildDuration, err := meter.Float64Histogram(
		"vmspec_spec_build_duration_seconds",
		metric.WithDescription("Instance spec build duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	componentsTotal, err := meter.Int64Counter(
		"vmspec_spec_components_total",
		metric.WithDescription("Total number of components placed in built specs"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		buildsTotal:     buildsTotal,
		buildDuration:   buildDuration,
		componentsTotal: componentsTotal,
	}, nil
}

// RecordBuild records a finished build. spec is nil when the build failed.
func (m *Metrics) RecordBuild(ctx context.Context, start time.Time, spec *instancespec.InstanceSpec, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
		if kind, ok := KindOf(err); ok {
			status = kind.String()
		}
	}

	m.buildsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.buildDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("status", status)))

	if spec == nil {
		return
	}
	for class, n := range ComponentCounts(spec) {
		if n == 0 {
			continue
		}
		m.componentsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("class", class)))
	}
}

// ComponentCounts returns the number of components of each class in spec.
func ComponentCounts(spec *instancespec.InstanceSpec) map[string]int {
	d := spec.Devices
	return map[string]int{
		"storage_device":   len(d.StorageDevices),
		"network_device":   len(d.NetworkDevices),
		"serial_port":      len(d.SerialPorts),
		"pci_bridge":       len(d.PciPciBridges),
		"pvpanic":          lo.Ternary(d.QemuPvpanic != nil, 1, 0),
		"softnpu_pci_port": lo.Ternary(d.SoftNpuPciPort != nil, 1, 0),
		"softnpu_port":     len(d.SoftNpuPorts),
		"softnpu_p9":       lo.Ternary(d.SoftNpuP9 != nil, 1, 0),
		"p9fs":             lo.Ternary(d.P9fs != nil, 1, 0),
		"storage_backend":  len(spec.Backends.StorageBackends),
		"network_backend":  len(spec.Backends.NetworkBackends),
	}
}
