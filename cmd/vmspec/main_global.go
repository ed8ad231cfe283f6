package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/onkernel/vmspec/cmd/vmspec/config"
	"github.com/onkernel/vmspec/lib/logger"
	"github.com/onkernel/vmspec/lib/otel"
	"github.com/onkernel/vmspec/lib/paths"
	"github.com/onkernel/vmspec/lib/specbuilder"
)

// cmdGlobal holds the state every subcommand shares.
type cmdGlobal struct {
	cfg   *config.Config
	paths *paths.Paths
	log   *slog.Logger

	defaultMemoryMiB uint64

	otelShutdown otel.ShutdownFunc
}

// Setup loads the environment config, then initializes telemetry and the
// logger. A telemetry failure is logged and otherwise ignored.
func (g *cmdGlobal) Setup(ctx context.Context) error {
	g.cfg = config.Load()
	g.paths = paths.New(g.cfg.DataDir)

	level, err := logger.ParseLevel(g.cfg.LogLevel)
	if err != nil {
		return err
	}

	defaultMemory, err := parseMemoryMiB(g.cfg.DefaultMemory)
	if err != nil {
		return fmt.Errorf("invalid DEFAULT_MEMORY: %w", err)
	}
	g.defaultMemoryMiB = defaultMemory

	provider, shutdown, err := otel.Init(ctx, otel.Config{
		Enabled:           g.cfg.OtelEnabled,
		Endpoint:          g.cfg.OtelEndpoint,
		ServiceName:       g.cfg.OtelServiceName,
		ServiceInstanceID: g.cfg.OtelServiceInstanceID,
		Insecure:          g.cfg.OtelInsecure,
		Version:           g.cfg.Version,
		Env:               g.cfg.Env,
	})
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without telemetry", "error", err)
	}
	g.otelShutdown = shutdown

	logCfg := logger.Config{
		Level:           level,
		JSON:            g.cfg.LogFormat == "json",
		Output:          os.Stderr,
		InstanceLogPath: g.paths.InstanceLog,
	}
	if provider != nil {
		logCfg.Telemetry = provider.LogHandler

		metrics, err := specbuilder.NewMetrics(provider.MeterFor("specbuilder"))
		if err != nil {
			slog.Warn("failed to create spec build metrics", "error", err)
		}
		specbuilder.SetMetrics(metrics)
	}
	g.log = logger.New(logCfg)
	slog.SetDefault(g.log)

	return nil
}

// Teardown flushes telemetry.
func (g *cmdGlobal) Teardown(ctx context.Context) error {
	if g.otelShutdown == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := g.otelShutdown(shutdownCtx); err != nil {
		g.log.Warn("error shutting down OpenTelemetry", "error", err)
	}
	return nil
}

// parseMemoryMiB parses a size such as "512MB" or "2GB" (binary units)
// into MiB. A bare number is taken as MiB.
func parseMemoryMiB(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}

	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("parse memory size %q: %w", s, err)
	}
	if size%datasize.MB != 0 {
		return 0, fmt.Errorf("memory size %q is not a whole number of MiB", s)
	}
	return uint64(size / datasize.MB), nil
}
