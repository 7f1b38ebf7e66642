package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khryptorgraphics/nonaxiomatic/internal/config"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/snapshot"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import whole-memory snapshots (spec §6 persisted state)",
	}

	cmd.AddCommand(snapshotExportCmd())
	cmd.AddCommand(snapshotImportCmd())
	cmd.AddCommand(snapshotListCmd())

	return cmd
}

func snapshotExportCmd() *cobra.Command {
	var narID string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a fresh reasoner, seed it from stdin-free defaults, and export its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotExport(narID)
		},
	}
	cmd.Flags().StringVar(&narID, "nar-id", "default", "identifier this snapshot is filed under")
	return cmd
}

func runSnapshotExport(narID string) error {
	ctx := context.Background()
	cfg := config.DefaultConfig()

	mgr, err := snapshot.NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting snapshot store: %w", err)
	}
	defer mgr.Close()

	repo := snapshot.NewRepository(mgr)
	mem, _ := buildReasoner(cfg, logger)

	snap := snapshot.Build(mem, narID)
	id, err := repo.Export(ctx, snap)
	if err != nil {
		return fmt.Errorf("exporting snapshot: %w", err)
	}

	fmt.Printf("exported snapshot %s for nar_id=%s\n", id, narID)
	return nil
}

func snapshotImportCmd() *cobra.Command {
	var idStr, narID string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore a reasoner's state from a stored snapshot and report its shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotImport(idStr, narID)
		},
	}
	cmd.Flags().StringVar(&idStr, "id", "", "snapshot id to import (takes precedence over --nar-id)")
	cmd.Flags().StringVar(&narID, "nar-id", "", "import the latest snapshot for this nar_id")
	return cmd
}

func runSnapshotImport(idStr, narID string) error {
	if idStr == "" && narID == "" {
		return fmt.Errorf("one of --id or --nar-id is required")
	}

	ctx := context.Background()
	cfg := config.DefaultConfig()

	mgr, err := snapshot.NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting snapshot store: %w", err)
	}
	defer mgr.Close()

	repo := snapshot.NewRepository(mgr)

	var snap *snapshot.Snapshot
	if idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("parsing snapshot id: %w", err)
		}
		snap, err = repo.Import(ctx, id)
		if err != nil {
			return fmt.Errorf("importing snapshot: %w", err)
		}
	} else {
		snap, err = repo.Latest(ctx, narID)
		if err != nil {
			return fmt.Errorf("importing latest snapshot: %w", err)
		}
	}

	mem, _ := buildReasoner(cfg, logger)
	if err := snapshot.Apply(snap, mem); err != nil {
		return fmt.Errorf("applying snapshot: %w", err)
	}

	fmt.Printf("restored nar_id=%s: %d concepts, %d overflow, %d input tasks, %d cycling tasks\n",
		snap.NarID, len(snap.Concepts), len(snap.Overflow), len(snap.InputTasks), len(snap.CyclingTasks))
	return nil
}

func snapshotListCmd() *cobra.Command {
	var narID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots for a nar_id",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotList(narID)
		},
	}
	cmd.Flags().StringVar(&narID, "nar-id", "default", "identifier to list snapshots for")
	return cmd
}

func runSnapshotList(narID string) error {
	ctx := context.Background()
	cfg := config.DefaultConfig()

	mgr, err := snapshot.NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting snapshot store: %w", err)
	}
	defer mgr.Close()

	repo := snapshot.NewRepository(mgr)
	metas, err := repo.List(ctx, narID)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}

	for _, m := range metas {
		fmt.Printf("%s  %s  %s\n", m.ID, m.NarID, m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}
