package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background catalog synchronization.
// Example usage:
//
//	scheduler := NewScheduler(configCache, ingestor, backups)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewSyncCatalogTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
