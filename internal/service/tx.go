package service

import (
	"context"

	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// DocumentRepositoryInterface defines persistence operations for documents.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByDatabase(ctx context.Context, databaseID string) ([]*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error)
	SearchByText(ctx context.Context, databaseID, query string, limit int) ([]*domain.Document, error)
	Stats(ctx context.Context, databaseID string) (*domain.DocumentStats, error)
	MarkIndexed(ctx context.Context, id string, chunkCount int) error
	Delete(ctx context.Context, id string) error
}

// ChunkRepositoryInterface defines persistence operations for document chunks.
type ChunkRepositoryInterface interface {
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error
	DeleteByDocument(ctx context.Context, documentID string) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)
	SearchByEmbedding(ctx context.Context, databaseID string, embedding []float32, limit int) ([]*ChunkMatch, error)
}

// DatabaseRepositoryInterface defines persistence operations for the
// knowledge database registry.
type DatabaseRepositoryInterface interface {
	Create(ctx context.Context, d *domain.KnowledgeDatabase) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeDatabase, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.KnowledgeDatabase, error)
	GetActive(ctx context.Context, ownerID string) (*domain.KnowledgeDatabase, error)
	Activate(ctx context.Context, ownerID, id string) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Delete(ctx context.Context, id string) error
}

// CitationRepositoryInterface defines persistence operations for citations.
type CitationRepositoryInterface interface {
	Append(ctx context.Context, c *domain.Citation) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Citation, error)
}

// CheckpointRepositoryInterface defines persistence operations for sync
// checkpoints.
type CheckpointRepositoryInterface interface {
	Get(ctx context.Context, documentID string) (*domain.SyncCheckpoint, error)
	Upsert(ctx context.Context, cp *domain.SyncCheckpoint) error
	Delete(ctx context.Context, documentID string) error
}

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Documents() DocumentRepositoryInterface
	Chunks() ChunkRepositoryInterface
	Databases() DatabaseRepositoryInterface
}

// TxRunner executes a function within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
