package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/calmux/calmux/internal/config"
	"github.com/calmux/calmux/internal/instrumentation"
	"github.com/calmux/calmux/internal/logging"
	"github.com/calmux/calmux/internal/resources"
	"github.com/calmux/calmux/internal/server"
	"github.com/calmux/calmux/internal/tools/calendar_tools"
)

func newServeCmd() *cobra.Command {
	var (
		transport      string
		httpAddr       string
		debugMode      bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run calmux as an MCP server",
		Long: `Run calmux as an MCP (Model Context Protocol) server exposing the
unified calendar tools to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default, for local use)
  - streamable-http: Streamable HTTP transport (for deployed instances)

Provider accounts are configured through CALMUX_* environment variables
(optionally from a .env file); only configured providers are connected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, httpAddr, debugMode, metricsEnabled, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Expose Prometheus metrics and health probes")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

func runServe(transport, httpAddr string, debugMode, metricsEnabled bool, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// stdio keeps human-readable logs; deployed HTTP instances log JSON.
	logger := logging.Setup(debugMode, transport != "stdio")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	registry, err := cfg.BuildRegistry(shutdownCtx)
	if err != nil {
		return fmt.Errorf("building provider registry: %w", err)
	}
	if len(registry.Types()) == 0 {
		return fmt.Errorf("no provider accounts configured; set CALMUX_GOOGLE_*, CALMUX_GRAPH_*, or CALMUX_EWS_* variables")
	}

	instrProvider, err := instrumentation.NewProvider(shutdownCtx, instrumentation.Config{
		Enabled:        metricsEnabled,
		ServiceName:    "calmux",
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("initializing instrumentation: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := instrProvider.Shutdown(ctx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	serverContext := server.NewServerContext(shutdownCtx, server.Options{
		Registry:     registry,
		WorkingHours: cfg.WorkingHours,
		Metrics:      instrProvider.Metrics(),
		Logger:       logger,
	})
	defer serverContext.Shutdown()

	for typ, err := range serverContext.ConnectAll(shutdownCtx) {
		logger.Warn("provider unavailable at startup, will stay registered",
			logging.Provider(typ), logging.Err(err))
	}

	health := server.NewHealthChecker(serverContext)

	var metricsServer *server.MetricsServer
	if metricsEnabled {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: instrProvider,
			HealthChecker:           health,
		})
		if err != nil {
			return fmt.Errorf("creating metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	mcpSrv := mcpserver.NewMCPServer("calmux", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if err := calendar_tools.RegisterCalendarTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register calendar tools: %w", err)
	}
	if err := resources.RegisterProviderResources(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register provider resources: %w", err)
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, httpAddr, health, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr string, health *server.HealthChecker, logger *slog.Logger) error {
	httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		logger.Info("MCP server listening", slog.String("addr", addr), slog.String("transport", "streamable-http"))
		if err := httpServer.Start(addr); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
