package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/telemetry"
)

// RemoteStore receives document payloads pushed by sync.
type RemoteStore interface {
	PutDocument(ctx context.Context, ownerID string, doc *domain.Document, chunks []domain.Chunk) error
}

// SyncService pushes an owner's documents to the remote store. Checkpoints
// make the push idempotent: a second run over unchanged documents uploads
// nothing.
type SyncService struct {
	docs        DocumentRepositoryInterface
	chunks      ChunkRepositoryInterface
	checkpoints CheckpointRepositoryInterface
	remote      RemoteStore
}

func NewSyncService(docs DocumentRepositoryInterface, chunks ChunkRepositoryInterface, checkpoints CheckpointRepositoryInterface, remote RemoteStore) *SyncService {
	return &SyncService{
		docs:        docs,
		chunks:      chunks,
		checkpoints: checkpoints,
		remote:      remote,
	}
}

// SyncOwner uploads every document of the owner that changed since its last
// checkpoint. One document failing does not stop the run; failures are
// collected in the report. Cancelling the context stops between documents,
// leaving already-written checkpoints behind.
func (s *SyncService) SyncOwner(ctx context.Context, ownerID string) (*domain.SyncReport, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if s.remote == nil {
		return nil, domain.NewDomainError(domain.ErrCodeInternalError, "no remote store configured")
	}

	ctx, span := telemetry.StartSpan(ctx, "SyncService.SyncOwner", telemetry.SpanAttributes{
		OwnerID:   ownerID,
		Operation: "sync",
	})
	defer span.End()

	docs, err := s.docs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &domain.SyncReport{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		uploaded, err := s.syncDocument(ctx, ownerID, doc)
		if err != nil {
			report.FailedCount++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", doc.ID, err))
			log.Printf("sync failed for document %s: %v", doc.ID, err)
			continue
		}
		if uploaded {
			report.SyncedCount++
		}
	}

	return report, nil
}

// syncDocument reports whether the document was actually uploaded; an
// up-to-date checkpoint means there is nothing to do.
func (s *SyncService) syncDocument(ctx context.Context, ownerID string, doc *domain.Document) (bool, error) {
	cp, err := s.checkpoints.Get(ctx, doc.ID)
	if err != nil {
		return false, err
	}
	if !domain.NeedsSync(doc.UpdatedAt, cp) {
		return false, nil
	}

	chunks, err := s.chunks.ListByDocument(ctx, doc.ID)
	if err != nil {
		return false, err
	}

	if err := s.remote.PutDocument(ctx, ownerID, doc, chunks); err != nil {
		return false, err
	}

	err = s.checkpoints.Upsert(ctx, &domain.SyncCheckpoint{
		DocumentID:    doc.ID,
		OwnerID:       ownerID,
		SyncedVersion: doc.UpdatedAt,
		SyncedAt:      time.Now().UTC(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
