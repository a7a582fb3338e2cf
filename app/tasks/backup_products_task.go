package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okabe/codemart/app/database"
)

// Keep a week of daily product snapshots
const backupRetention = 7

type BackupProductsTask struct {
	Task
	backups database.BackupRepository
}

func NewBackupProductsTask(backups database.BackupRepository) *BackupProductsTask {
	return &BackupProductsTask{
		Task:    NewTask(TaskTypeBackupProducts, "products"),
		backups: backups,
	}
}

func (t *BackupProductsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	table, err := t.backups.BackupProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot products: %w", err)
	}

	pruned, err := t.backups.PruneBackups(ctx, backupRetention)
	if err != nil {
		slog.Warn("Failed to prune old product snapshots", "error", err)
		pruned = nil
	}

	slog.Info("Task completed",
		"type", "BackupProducts",
		"duration", t.GetDuration(),
		"table", table,
		"pruned", len(pruned))

	return nil
}
