package specbuilder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetrics_NilMeter(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	// Recording on nil metrics is a no-op.
	m.RecordBuild(context.Background(), time.Now(), nil, nil)
}

func TestMetrics_RecordBuild(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(provider.Meter("specbuilder-test"))
	require.NoError(t, err)

	SetMetrics(m)
	t.Cleanup(func() { SetMetrics(nil) })

	ctx := context.Background()
	_, err = FromEnsureRequest(ctx, ensureRequest(), loadTestConfig(t))
	require.NoError(t, err)

	bad := ensureRequest()
	bad.Disks[0].Device = "scsi"
	_, err = FromEnsureRequest(ctx, bad, loadTestConfig(t))
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	builds := sumByAttr(t, rm, "vmspec_spec_builds_total", "status")
	assert.Equal(t, int64(1), builds["success"])
	assert.Equal(t, int64(1), builds["recognition"])

	components := sumByAttr(t, rm, "vmspec_spec_components_total", "class")
	assert.Equal(t, int64(4), components["storage_device"])
	assert.Equal(t, int64(3), components["network_device"])
	assert.Equal(t, int64(4), components["serial_port"])
	assert.Equal(t, int64(1), components["pvpanic"])
	assert.NotContains(t, components, "p9fs")

	assert.True(t, hasMetric(rm, "vmspec_spec_build_duration_seconds"))
}

func sumByAttr(t *testing.T, rm metricdata.ResourceMetrics, name string, key attribute.Key) map[string]int64 {
	t.Helper()
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != name {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is %T", name, metric.Data)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(key)
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func hasMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name == name {
				return true
			}
		}
	}
	return false
}
