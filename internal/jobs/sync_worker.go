package jobs

import (
	"context"
	"log"

	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// OwnerSource lists the owners that have documents to consider for sync.
type OwnerSource interface {
	ListOwnerIDs(ctx context.Context) ([]string, error)
}

// OwnerSyncer pushes one owner's stale documents to the remote store.
type OwnerSyncer interface {
	SyncOwner(ctx context.Context, ownerID string) (*domain.SyncReport, error)
}

// SyncProcessor walks all owners and syncs each one. Checkpoints make the
// walk cheap when nothing changed.
type SyncProcessor struct {
	owners OwnerSource
	syncer OwnerSyncer
}

func NewSyncProcessor(owners OwnerSource, syncer OwnerSyncer) *SyncProcessor {
	return &SyncProcessor{owners: owners, syncer: syncer}
}

// ProcessJobs implements JobProcessor.
func (p *SyncProcessor) ProcessJobs(ctx context.Context) error {
	ownerIDs, err := p.owners.ListOwnerIDs(ctx)
	if err != nil {
		return err
	}

	for _, ownerID := range ownerIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := p.syncer.SyncOwner(ctx, ownerID)
		if err != nil {
			log.Printf("Error syncing owner %s: %v", ownerID, err)
			continue
		}
		if report.SyncedCount > 0 || report.FailedCount > 0 {
			log.Printf("Synced owner %s: %d uploaded, %d failed", ownerID, report.SyncedCount, report.FailedCount)
		}
	}

	return nil
}
