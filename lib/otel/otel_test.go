package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	provider, shutdown, err := Init(context.Background(), Config{Enabled: false, ServiceName: "vmspec"})
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.LogHandler)
	assert.Nil(t, provider.MeterProvider)

	assert.NotNil(t, provider.MeterFor("specbuilder"))
	assert.NoError(t, shutdown(context.Background()))
}

func TestGoVersion(t *testing.T) {
	assert.NotEmpty(t, GoVersion())
}
