package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", "")
	t.Setenv("DEFAULT_VCPUS", "")
	t.Setenv("OTEL_ENABLED", "")

	cfg := Load()
	assert.Equal(t, "/var/lib/vmspec", cfg.DataDir)
	assert.Equal(t, 2, cfg.DefaultVCPUs)
	assert.Equal(t, "1GB", cfg.DefaultMemory)
	assert.False(t, cfg.OtelEnabled)
	assert.Equal(t, "vmspec", cfg.OtelServiceName)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/vmspec")
	t.Setenv("SERVER_CONFIG", "/etc/vmspec/server.yaml")
	t.Setenv("DEFAULT_VCPUS", "8")
	t.Setenv("DEFAULT_MEMORY", "4GB")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()
	assert.Equal(t, "/srv/vmspec", cfg.DataDir)
	assert.Equal(t, "/etc/vmspec/server.yaml", cfg.ServerConfig)
	assert.Equal(t, 8, cfg.DefaultVCPUs)
	assert.Equal(t, "4GB", cfg.DefaultMemory)
	assert.True(t, cfg.OtelEnabled)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DEFAULT_VCPUS", "many")
	t.Setenv("OTEL_INSECURE", "sure")

	cfg := Load()
	assert.Equal(t, 2, cfg.DefaultVCPUs)
	assert.True(t, cfg.OtelInsecure)
}
