package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/spf13/cobra"
)

type cmdCompare struct {
	global *cmdGlobal
}

func (c *cmdCompare) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "compare <source.json> <target.json>"
	cmd.Short = "Check that two specs describe the same VM"
	cmd.Long = `Compares the specs built by a migration source and target. Every
difference is printed and the command fails if there is any.`
	cmd.Args = cobra.ExactArgs(2)
	cmd.RunE = c.Run

	return cmd
}

func (c *cmdCompare) Run(cmd *cobra.Command, args []string) error {
	src, err := readSpec(args[0])
	if err != nil {
		return err
	}
	dst, err := readSpec(args[1])
	if err != nil {
		return err
	}

	diffs, err := instancespec.Diff(src.Spec, dst.Spec)
	if err != nil {
		return err
	}
	for _, d := range diffs {
		fmt.Fprintln(cmd.OutOrStdout(), d.String())
	}

	if err := instancespec.CheckMigrationCompatible(src.Spec, dst.Spec); err != nil {
		c.global.log.Warn("specs are not migration compatible", "source", args[0], "target", args[1], "differences", len(diffs))
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "specs are migration compatible")
	return nil
}

func readSpec(path string) (instancespec.VersionedInstanceSpec, error) {
	var spec instancespec.VersionedInstanceSpec

	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read spec: %w", err)
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("parse spec %s: %w", path, err)
	}
	return spec, nil
}
