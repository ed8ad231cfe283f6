package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		slog.Error("vmspec failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	global := &cmdGlobal{}

	root := &cobra.Command{
		Use:          "vmspec",
		Short:        "Build and compare VM instance specs",
		Long:         `Builds versioned VM instance specs from a server configuration and an instance-creation request`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return global.Setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return global.Teardown(cmd.Context())
		},
	}

	buildCmd := &cmdBuild{global: global}
	root.AddCommand(buildCmd.Command())

	compareCmd := &cmdCompare{global: global}
	root.AddCommand(compareCmd.Command())

	slotsCmd := &cmdSlots{global: global}
	root.AddCommand(slotsCmd.Command())

	return root
}
