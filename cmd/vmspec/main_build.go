package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ghodss/yaml"
	"github.com/google/uuid"
	"github.com/onkernel/vmspec/lib/instances"
	"github.com/onkernel/vmspec/lib/logger"
	"github.com/onkernel/vmspec/lib/serverconfig"
	"github.com/onkernel/vmspec/lib/specbuilder"
	"github.com/spf13/cobra"
)

type cmdBuild struct {
	global *cmdGlobal

	flagConfig  string
	flagRequest string
	flagOut     string
	flagMemory  string
	flagVCPUs   uint8
	flagSave    bool
}

func (c *cmdBuild) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "build"
	cmd.Short = "Build an instance spec from a request"
	cmd.Long = `Builds the versioned instance spec for an instance-creation request.

The request is read from a JSON or YAML file. Devices from the server
configuration (TOML or YAML) are added before the requested NICs and disks.`
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	cmd.Flags().StringVar(&c.flagConfig, "config", "", "server configuration file (defaults to SERVER_CONFIG, then <data>/config/server.toml)")
	cmd.Flags().StringVar(&c.flagRequest, "request", "", "instance-creation request file (JSON or YAML)")
	cmd.Flags().StringVarP(&c.flagOut, "out", "o", "", "write the spec to this file instead of stdout")
	cmd.Flags().StringVar(&c.flagMemory, "memory", "", "override guest memory, e.g. 2GB or 512 (MiB)")
	cmd.Flags().Uint8Var(&c.flagVCPUs, "vcpus", 0, "override the vCPU count")
	cmd.Flags().BoolVar(&c.flagSave, "save", false, "also store the spec and build log under the data directory")
	_ = cmd.MarkFlagRequired("request")

	return cmd
}

func (c *cmdBuild) Run(cmd *cobra.Command, _ []string) error {
	ctx := logger.AddToContext(cmd.Context(), c.global.log)

	req, err := loadEnsureRequest(c.flagRequest)
	if err != nil {
		return err
	}
	if err := c.applySizing(&req.Properties); err != nil {
		return err
	}
	if req.Properties.ID == uuid.Nil {
		req.Properties.ID = uuid.New()
	}
	id := req.Properties.ID.String()

	serverCfg, err := c.loadServerConfig()
	if err != nil {
		return err
	}

	if c.flagSave {
		if err := os.MkdirAll(c.global.paths.InstanceDir(id), 0755); err != nil {
			return fmt.Errorf("create instance directory: %w", err)
		}
	}

	spec, err := specbuilder.FromEnsureRequest(ctx, req, serverCfg)
	if err != nil {
		return fmt.Errorf("build spec for instance %s: %w", id, err)
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}
	data = append(data, '\n')

	if c.flagSave {
		if err := os.WriteFile(c.global.paths.InstanceSpec(id), data, 0644); err != nil {
			return fmt.Errorf("save spec: %w", err)
		}
	}

	if c.flagOut != "" {
		return os.WriteFile(c.flagOut, data, 0644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// applySizing applies --memory and --vcpus, then fills anything still unset
// from the environment defaults.
func (c *cmdBuild) applySizing(props *instances.InstanceProperties) error {
	if c.flagMemory != "" {
		mem, err := parseMemoryMiB(c.flagMemory)
		if err != nil {
			return err
		}
		props.Memory = mem
	}
	if c.flagVCPUs != 0 {
		props.VCPUs = c.flagVCPUs
	}

	if props.Memory == 0 {
		props.Memory = c.global.defaultMemoryMiB
	}
	if props.VCPUs == 0 {
		if c.global.cfg.DefaultVCPUs < 1 || c.global.cfg.DefaultVCPUs > 255 {
			return fmt.Errorf("invalid DEFAULT_VCPUS %d", c.global.cfg.DefaultVCPUs)
		}
		props.VCPUs = uint8(c.global.cfg.DefaultVCPUs)
	}
	return nil
}

// loadServerConfig picks the configuration from --config, SERVER_CONFIG or
// the data directory, in that order. With none present the spec is built
// from the request alone.
func (c *cmdBuild) loadServerConfig() (*serverconfig.Config, error) {
	path := c.flagConfig
	if path == "" {
		path = c.global.cfg.ServerConfig
	}
	if path == "" {
		fallback := c.global.paths.ServerConfig()
		if _, err := os.Stat(fallback); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		path = fallback
	}

	cfg, err := serverconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load server configuration: %w", err)
	}
	return cfg, nil
}

// loadEnsureRequest reads a request document. YAML is converted to JSON
// first, so both formats use the request's JSON field names.
func loadEnsureRequest(path string) (instances.InstanceEnsureRequest, error) {
	var req instances.InstanceEnsureRequest

	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse request %s: %w", path, err)
	}
	return req, nil
}
