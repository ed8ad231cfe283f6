package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	p := New("/var/lib/vmspec")

	assert.Equal(t, "/var/lib/vmspec", p.DataDir())
	assert.Equal(t, "/var/lib/vmspec/config/server.toml", p.ServerConfig())
	assert.Equal(t, "/var/lib/vmspec/specs", p.SpecsDir())
	assert.Equal(t, "/var/lib/vmspec/specs/abc/spec.json", p.InstanceSpec("abc"))
	assert.Equal(t, "/var/lib/vmspec/specs/abc/logs/build.log", p.InstanceLog("abc"))
}
