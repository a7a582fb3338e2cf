package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okabe/codemart/app/catalog"
	"github.com/okabe/codemart/app/database"
)

// CatalogIngestor runs a full marketplace sync for one profile
type CatalogIngestor interface {
	Run(ctx context.Context, profile *catalog.Config) ([]database.Product, error)
}

var _ CatalogIngestor = (*catalog.Ingestor)(nil)

type SyncCatalogTask struct {
	Task
	Profile  *catalog.Config
	ingestor CatalogIngestor
}

func NewSyncCatalogTask(profileName string, profile *catalog.Config, ingestor CatalogIngestor) *SyncCatalogTask {
	return &SyncCatalogTask{
		Task:     NewTask(TaskTypeSyncCatalog, profileName),
		Profile:  profile,
		ingestor: ingestor,
	}
}

func (t *SyncCatalogTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Profile.Settings.Enabled {
		slog.Debug("Profile disabled, skipping", "profile", t.ProfileName)
		return nil
	}

	listing, err := t.ingestor.Run(ctx, t.Profile)
	if err != nil {
		return fmt.Errorf("failed to sync catalog: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncCatalog",
		"profile", t.ProfileName,
		"duration", t.GetDuration(),
		"products", len(listing))

	return nil
}
