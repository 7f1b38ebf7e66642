package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khryptorgraphics/nonaxiomatic/internal/config"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/cluster"
)

func clusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Inspect or join a reasoner gossip mesh",
	}
	cmd.AddCommand(clusterJoinCmd())
	return cmd
}

func clusterJoinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join [multiaddr]",
		Short: "Start a cluster node and join a peer at the given libp2p multiaddr",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClusterJoin(args[0])
		},
	}
	return cmd
}

func runClusterJoin(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.DefaultConfig()
	clusterCfg := cluster.Config{
		ListenAddr:     cfg.P2P.ListenAddr,
		BootstrapPeers: nil,
		DialTimeout:    cfg.P2P.DialTimeout,
		MaxConnections: cfg.P2P.MaxConnections,
	}

	c, err := cluster.New(ctx, clusterCfg, nil, logger)
	if err != nil {
		return fmt.Errorf("starting cluster node: %w", err)
	}
	defer c.Close()

	c.OnRemoteEvent(func(from string, ev cluster.GossipEvent) {
		logger.Info("received gossip event", "from", from, "kind", ev.Kind, "subject", ev.Subject, "time", ev.Time)
	})

	if err := c.Join(ctx, addr); err != nil {
		return fmt.Errorf("joining %s: %w", addr, err)
	}

	fmt.Printf("joined %s as %s, listening on %s\n", addr, c.ID(), clusterCfg.ListenAddr)
	<-ctx.Done()
	return nil
}
