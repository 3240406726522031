package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/service"
)

// ChunkRepository handles persistence of chunked document embeddings.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceChunks deletes existing chunks for a document and inserts new ones.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		var embedding any
		if len(c.Embedding) > 0 {
			embedding = pgvector.NewVector(c.Embedding)
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO document_chunks (document_id, ordinal, content, embedding, token_count, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			documentID,
			c.Ordinal,
			c.Text,
			embedding,
			c.TokenCount,
			createdAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	return err
}

func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT document_id, ordinal, content, token_count, created_at
		 FROM document_chunks WHERE document_id = $1 ORDER BY ordinal`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.DocumentID, &c.Ordinal, &c.Text, &c.TokenCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// SearchByEmbedding returns the closest chunks in a database by cosine
// distance, best first.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, databaseID string, embedding []float32, limit int) ([]*service.ChunkMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT c.document_id, d.title, c.ordinal, c.content,
		        1.0 / (1.0 + (c.embedding <=> $1)) AS score
		 FROM document_chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE d.database_id = $2 AND d.indexed AND c.embedding IS NOT NULL
		 ORDER BY score DESC
		 LIMIT $3`,
		vec, databaseID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.ChunkMatch, 0)
	for rows.Next() {
		var m service.ChunkMatch
		if err := rows.Scan(&m.DocumentID, &m.DocumentTitle, &m.Ordinal, &m.Text, &m.Score); err != nil {
			return nil, err
		}
		results = append(results, &m)
	}

	return results, rows.Err()
}
