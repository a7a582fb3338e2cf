package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/okabe/codemart/app/catalog"
	"github.com/okabe/codemart/app/cfg"
	"github.com/okabe/codemart/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Product snapshots run once a day, matching the retention window
const backupInterval = 24 * time.Hour

type Scheduler struct {
	configCache *catalog.ConfigCache
	ingestor    CatalogIngestor
	backups     database.BackupRepository
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	// Profiles live in YAML files, not the database, so due times are
	// tracked in memory and reset on restart.
	mu         sync.Mutex
	nextRun    map[string]time.Time
	backupNext time.Time
}

func NewScheduler(configCache *catalog.ConfigCache, ingestor CatalogIngestor, backups database.BackupRepository) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache: configCache,
		ingestor:    ingestor,
		backups:     backups,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		nextRun:     make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()
		s.enqueueBackup()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
				s.enqueueBackup()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	profiles := s.configCache.GetConfigs()
	if len(profiles) == 0 {
		slog.Debug("No sync profiles found")
		return
	}

	slog.Debug("Processing sync profiles", "count", len(profiles))

	for _, profile := range profiles {
		if !profile.Settings.Enabled {
			slog.Debug("Profile disabled, skipping SyncCatalogTask", "profile", profile.Name)
			continue
		}

		s.enqueueSync(profile)
	}
}

func (s *Scheduler) enqueueTasks() {
	profiles := s.configCache.GetEnabledConfigs()
	if len(profiles) == 0 {
		slog.Debug("No enabled sync profiles found")
		return
	}

	slog.Debug("Processing enabled sync profiles for task scheduling", "count", len(profiles))

	now := time.Now().UTC()

	for _, profile := range profiles {
		s.mu.Lock()
		due, known := s.nextRun[profile.Name]
		s.mu.Unlock()

		if known && due.After(now) {
			slog.Debug("Profile not due for sync yet", "profile", profile.Name, "next_run", due)
			continue
		}

		s.enqueueSync(profile)
	}
}

func (s *Scheduler) enqueueSync(profile *catalog.Config) {
	task := NewSyncCatalogTask(profile.Name, profile, s.ingestor)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue SyncCatalogTask", "profile", profile.Name, "error", err)
		return
	}

	refresh := time.Duration(profile.Settings.RefreshInterval) * time.Second

	s.mu.Lock()
	s.nextRun[profile.Name] = time.Now().UTC().Add(refresh)
	s.mu.Unlock()
}

// enqueueBackup schedules the daily products snapshot when one is due
func (s *Scheduler) enqueueBackup() {
	if s.backups == nil {
		return
	}

	now := time.Now().UTC()

	s.mu.Lock()
	due := s.backupNext
	s.mu.Unlock()

	if !due.IsZero() && due.After(now) {
		return
	}

	task := NewBackupProductsTask(s.backups)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue BackupProductsTask", "error", err)
		return
	}

	s.mu.Lock()
	s.backupNext = now.Add(backupInterval)
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "profile", task.GetProfileName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			// Tracked in the WaitGroup so Stop cannot close the queue
			// while a retry is still pending
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				case <-time.After(retryDelay):
				}

				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
