package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/khryptorgraphics/nonaxiomatic/internal/config"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/api"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/cluster"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/snapshot"
)

func serveCmd() *cobra.Command {
	var configFile string
	var enableCluster bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reasoner's HTTP API and cycling driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configFile, enableCluster)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config overlay path (defaults to $NARS_CONFIG_FILE)")
	cmd.Flags().BoolVar(&enableCluster, "cluster", false, "join the cluster described by the P2P config section")

	return cmd
}

func runServe(configFile string, enableCluster bool) error {
	if configFile != "" {
		cfg := config.DefaultConfig()
		if err := config.LoadYAMLOverlay(cfg, configFile); err != nil {
			return err
		}
		return serveWithConfig(cfg, enableCluster)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return serveWithConfig(cfg, enableCluster)
}

func serveWithConfig(cfg *config.Config, enableCluster bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting nars-core", "listen", cfg.API.Listen, "reasoner_id", cfg.Reasoner.ReasonerID)

	mem, cycle := buildReasoner(cfg, logger)

	driver := reason.NewDriver(cycle, 100*time.Millisecond)
	go driver.Run(ctx)

	if enableCluster {
		clusterCfg := cluster.Config{
			ListenAddr:     cfg.P2P.ListenAddr,
			BootstrapPeers: cfg.P2P.BootstrapPeers,
			DialTimeout:    cfg.P2P.DialTimeout,
			MaxConnections: cfg.P2P.MaxConnections,
		}
		c, err := cluster.New(ctx, clusterCfg, mem.Bus(), logger)
		if err != nil {
			logger.Error("failed to start cluster node", "error", err)
		} else {
			defer c.Close()
			logger.Info("cluster node ready", "id", c.ID())
		}
	}

	if mgr, err := snapshot.NewManager(&cfg.Database, logger); err != nil {
		logger.Warn("snapshot persistence unavailable", "error", err)
	} else {
		defer mgr.Close()
		logger.Info("snapshot store connected")
	}

	srv, err := api.NewServer(cfg, mem, cycle, logger)
	if err != nil {
		return fmt.Errorf("constructing API server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("API server stopped unexpectedly: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
