package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// CheckpointRepository tracks per-document sync state for the remote store.
type CheckpointRepository struct {
	db dbtx
}

func NewCheckpointRepository(pool *pgxpool.Pool) *CheckpointRepository {
	return &CheckpointRepository{db: pool}
}

// Get returns the checkpoint for a document, or nil when it was never synced.
func (r *CheckpointRepository) Get(ctx context.Context, documentID string) (*domain.SyncCheckpoint, error) {
	var cp domain.SyncCheckpoint
	err := r.db.QueryRow(ctx,
		`SELECT document_id, owner_id, synced_version, synced_at
		 FROM sync_checkpoints WHERE document_id = $1`,
		documentID,
	).Scan(&cp.DocumentID, &cp.OwnerID, &cp.SyncedVersion, &cp.SyncedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cp, nil
}

func (r *CheckpointRepository) Upsert(ctx context.Context, cp *domain.SyncCheckpoint) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sync_checkpoints (document_id, owner_id, synced_version, synced_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (document_id) DO UPDATE
		 SET synced_version = EXCLUDED.synced_version, synced_at = EXCLUDED.synced_at`,
		cp.DocumentID, cp.OwnerID, cp.SyncedVersion, cp.SyncedAt,
	)
	return err
}

func (r *CheckpointRepository) Delete(ctx context.Context, documentID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sync_checkpoints WHERE document_id = $1`, documentID)
	return err
}
