package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// CitationRepository is append-only: citations record what a session has
// retrieved and are never rewritten.
type CitationRepository struct {
	db dbtx
}

func NewCitationRepository(pool *pgxpool.Pool) *CitationRepository {
	return &CitationRepository{db: pool}
}

func (r *CitationRepository) Append(ctx context.Context, c *domain.Citation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO citations (id, session_id, document_id, chunk_ordinal, snippet, score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.SessionID, c.DocumentID, c.ChunkOrdinal, c.Snippet, c.Score, c.CreatedAt,
	)
	return err
}

func (r *CitationRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Citation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, document_id, chunk_ordinal, snippet, score, created_at
		 FROM citations WHERE session_id = $1 ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Citation
	for rows.Next() {
		var c domain.Citation
		if err := rows.Scan(&c.ID, &c.SessionID, &c.DocumentID, &c.ChunkOrdinal, &c.Snippet, &c.Score, &c.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}
