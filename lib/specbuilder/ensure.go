package specbuilder

import (
	"context"
	"time"

	"github.com/onkernel/vmspec/lib/instances"
	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/onkernel/vmspec/lib/logger"
	"github.com/onkernel/vmspec/lib/serverconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/onkernel/vmspec/lib/specbuilder"

// FromEnsureRequest builds the spec for an instance-creation request the
// way the server does: configured devices first, then the requested NICs
// and disks in request order, then cloud-init, then all four COM ports.
func FromEnsureRequest(ctx context.Context, req instances.InstanceEnsureRequest, cfg *serverconfig.Config) (spec instancespec.VersionedInstanceSpec, err error) {
	start := time.Now()
	log := logger.FromContext(ctx).With(logger.InstanceIDKey, req.Properties.ID.String())

	ctx, span := otel.Tracer(tracerName).Start(ctx, "specbuilder.FromEnsureRequest",
		trace.WithAttributes(attribute.String("instance.id", req.Properties.ID.String())))
	defer func() {
		var built *instancespec.InstanceSpec
		if err == nil {
			built = &spec.Spec
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		BuildMetrics.RecordBuild(ctx, start, built, err)
	}()

	log.DebugContext(ctx, "building instance spec",
		"vcpus", req.Properties.VCPUs,
		"memory_mib", req.Properties.Memory,
		"nics", len(req.Nics),
		"disks", len(req.Disks),
		"cloud_init", req.CloudInitBytes != nil)

	spec, err = buildFromEnsureRequest(req, cfg)
	if err != nil {
		kind, _ := KindOf(err)
		log.ErrorContext(ctx, "failed to build instance spec", "error", err, "kind", kind.String())
		return instancespec.VersionedInstanceSpec{}, err
	}

	log.InfoContext(ctx, "built instance spec",
		"storage_devices", len(spec.Spec.Devices.StorageDevices),
		"network_devices", len(spec.Spec.Devices.NetworkDevices),
		"duration", time.Since(start))
	return spec, nil
}

func buildFromEnsureRequest(req instances.InstanceEnsureRequest, cfg *serverconfig.Config) (instancespec.VersionedInstanceSpec, error) {
	if err := req.Validate(); err != nil {
		return instancespec.VersionedInstanceSpec{}, classify(err)
	}

	b, err := New(req.Properties, cfg)
	if err != nil {
		return instancespec.VersionedInstanceSpec{}, err
	}

	if err := b.AddDevicesFromConfig(cfg); err != nil {
		return instancespec.VersionedInstanceSpec{}, err
	}

	for _, nic := range req.Nics {
		if err := b.AddNICFromRequest(nic); err != nil {
			return instancespec.VersionedInstanceSpec{}, err
		}
	}

	for _, disk := range req.Disks {
		if err := b.AddDiskFromRequest(disk); err != nil {
			return instancespec.VersionedInstanceSpec{}, err
		}
	}

	if req.CloudInitBytes != nil {
		if err := b.AddCloudInitFromRequest(*req.CloudInitBytes); err != nil {
			return instancespec.VersionedInstanceSpec{}, err
		}
	}

	for _, port := range instancespec.SerialPortNumbers {
		if err := b.AddSerialPort(port); err != nil {
			return instancespec.VersionedInstanceSpec{}, err
		}
	}

	return b.Finish()
}
