package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roblucci9302/Lucide-3/internal/domain"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, owner_id, database_id, title, filename, content, chunk_count, indexed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.OwnerID, d.DatabaseID, d.Title, d.Filename, d.Content, d.ChunkCount, d.Indexed, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, database_id, title, filename, content, chunk_count, indexed, created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.OwnerID, &d.DatabaseID, &d.Title, &d.Filename, &d.Content, &d.ChunkCount, &d.Indexed, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepository) ListByDatabase(ctx context.Context, databaseID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, database_id, title, filename, content, chunk_count, indexed, created_at, updated_at
		 FROM documents WHERE database_id = $1 ORDER BY created_at DESC`,
		databaseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocumentRows(rows)
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, database_id, title, filename, content, chunk_count, indexed, created_at, updated_at
		 FROM documents WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocumentRows(rows)
}

// ListOwnerIDs returns the distinct owners that have documents.
func (r *DocumentRepository) ListOwnerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT owner_id FROM documents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SearchByText does a case-insensitive substring match over title and content.
func (r *DocumentRepository) SearchByText(ctx context.Context, databaseID, query string, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, database_id, title, filename, content, chunk_count, indexed, created_at, updated_at
		 FROM documents
		 WHERE database_id = $1 AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
		 ORDER BY created_at DESC
		 LIMIT $3`,
		databaseID, query, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocumentRows(rows)
}

func (r *DocumentRepository) Stats(ctx context.Context, databaseID string) (*domain.DocumentStats, error) {
	var s domain.DocumentStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(chunk_count), 0),
		        COUNT(*) FILTER (WHERE indexed)
		 FROM documents WHERE database_id = $1`,
		databaseID,
	).Scan(&s.DocumentCount, &s.ChunkCount, &s.IndexedCount)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkIndexed records the chunk count and flips the indexed flag in one write.
func (r *DocumentRepository) MarkIndexed(ctx context.Context, id string, chunkCount int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET chunk_count = $1, indexed = TRUE, updated_at = $2 WHERE id = $3`,
		chunkCount, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM documents WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var results []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.DatabaseID, &d.Title, &d.Filename, &d.Content, &d.ChunkCount, &d.Indexed, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, &d)
	}
	return results, rows.Err()
}
