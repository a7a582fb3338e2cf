package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okabe/codemart/app/catalog"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		configCache: catalog.NewConfigCache(t.TempDir()),
		interval:    time.Hour,
		workerCount: 1,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 10),
		nextRun:     make(map[string]time.Time),
	}
}

func TestScheduler_StopDuringRetryBackoff(t *testing.T) {
	scheduler := newTestScheduler(t)
	scheduler.ingestor = &mockIngestor{err: errors.New("marketplace unreachable")}

	scheduler.Start()

	task := NewSyncCatalogTask("wordpress", enabledProfile(), scheduler.ingestor)
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatalf("Failed to enqueue task: %v", err)
	}

	// Give the worker time to fail the task and schedule its retry
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a retry was pending")
	}
}

func TestScheduler_BackupEnqueuedOncePerDay(t *testing.T) {
	scheduler := newTestScheduler(t)
	scheduler.backups = &mockBackupRepo{table: "products_backup_2026-08-30"}

	scheduler.enqueueBackup()
	scheduler.enqueueBackup()

	if queued := len(scheduler.taskQueue); queued != 1 {
		t.Errorf("Expected 1 queued backup task, got %d", queued)
	}
}

func TestScheduler_BackupSkippedWithoutRepository(t *testing.T) {
	scheduler := newTestScheduler(t)

	scheduler.enqueueBackup()

	if queued := len(scheduler.taskQueue); queued != 0 {
		t.Errorf("Expected no queued tasks without a backup repository, got %d", queued)
	}
}
