// Package paths provides centralized path construction for the vmspec data directory.
//
// Layout:
//
//	<data>/
//	  config/server.toml
//	  specs/<instance-id>/
//	    spec.json
//	    logs/build.log
package paths

import "path/filepath"

// Paths provides typed path construction for the vmspec data directory.
type Paths struct {
	dataDir string
}

// New creates a new Paths instance for the given data directory.
func New(dataDir string) *Paths {
	return &Paths{dataDir: dataDir}
}

// DataDir returns the root data directory.
func (p *Paths) DataDir() string {
	return p.dataDir
}

// ServerConfig returns the default server configuration document path.
func (p *Paths) ServerConfig() string {
	return filepath.Join(p.dataDir, "config", "server.toml")
}

// SpecsDir returns the directory holding every built spec.
func (p *Paths) SpecsDir() string {
	return filepath.Join(p.dataDir, "specs")
}

// InstanceDir returns the directory for one instance's spec and logs.
func (p *Paths) InstanceDir(id string) string {
	return filepath.Join(p.SpecsDir(), id)
}

// InstanceSpec returns the path of an instance's versioned spec.
func (p *Paths) InstanceSpec(id string) string {
	return filepath.Join(p.InstanceDir(id), "spec.json")
}

// InstanceLogs returns the log directory for an instance.
func (p *Paths) InstanceLogs(id string) string {
	return filepath.Join(p.InstanceDir(id), "logs")
}

// InstanceLog returns the build log of an instance.
func (p *Paths) InstanceLog(id string) string {
	return filepath.Join(p.InstanceLogs(id), "build.log")
}
