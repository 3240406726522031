package service

import (
	"context"

	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/extract"
	"github.com/stretchr/testify/mock"
)

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByDatabase(ctx context.Context, databaseID string) ([]*domain.Document, error) {
	args := m.Called(ctx, databaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) SearchByText(ctx context.Context, databaseID, query string, limit int) ([]*domain.Document, error) {
	args := m.Called(ctx, databaseID, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) Stats(ctx context.Context, databaseID string) (*domain.DocumentStats, error) {
	args := m.Called(ctx, databaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentStats), args.Error(1)
}

func (m *MockDocumentRepository) MarkIndexed(ctx context.Context, id string, chunkCount int) error {
	args := m.Called(ctx, id, chunkCount)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChunkRepository is a mock implementation of ChunkRepositoryInterface
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	args := m.Called(ctx, documentID, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) SearchByEmbedding(ctx context.Context, databaseID string, embedding []float32, limit int) ([]*ChunkMatch, error) {
	args := m.Called(ctx, databaseID, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChunkMatch), args.Error(1)
}

// MockDatabaseRepository is a mock implementation of DatabaseRepositoryInterface
type MockDatabaseRepository struct {
	mock.Mock
}

func (m *MockDatabaseRepository) Create(ctx context.Context, d *domain.KnowledgeDatabase) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDatabaseRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeDatabase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeDatabase), args.Error(1)
}

func (m *MockDatabaseRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.KnowledgeDatabase, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeDatabase), args.Error(1)
}

func (m *MockDatabaseRepository) GetActive(ctx context.Context, ownerID string) (*domain.KnowledgeDatabase, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeDatabase), args.Error(1)
}

func (m *MockDatabaseRepository) Activate(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockDatabaseRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockDatabaseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCitationRepository is a mock implementation of CitationRepositoryInterface
type MockCitationRepository struct {
	mock.Mock
}

func (m *MockCitationRepository) Append(ctx context.Context, c *domain.Citation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCitationRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Citation, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Citation), args.Error(1)
}

// MockCheckpointRepository is a mock implementation of CheckpointRepositoryInterface
type MockCheckpointRepository struct {
	mock.Mock
}

func (m *MockCheckpointRepository) Get(ctx context.Context, documentID string) (*domain.SyncCheckpoint, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncCheckpoint), args.Error(1)
}

func (m *MockCheckpointRepository) Upsert(ctx context.Context, cp *domain.SyncCheckpoint) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockCheckpointRepository) Delete(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

// MockRemoteStore is a mock implementation of RemoteStore
type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) PutDocument(ctx context.Context, ownerID string, doc *domain.Document, chunks []domain.Chunk) error {
	args := m.Called(ctx, ownerID, doc, chunks)
	return args.Error(0)
}

// MockExtractor is a mock implementation of TextExtractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, filename string, buffer []byte) (*extract.Result, error) {
	args := m.Called(ctx, filename, buffer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Result), args.Error(1)
}

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) Dimensions() int {
	args := m.Called()
	return args.Int(0)
}

// MockConnectionTester is a mock implementation of ConnectionTester
type MockConnectionTester struct {
	mock.Mock
}

func (m *MockConnectionTester) TestConnection(ctx context.Context, dsn string) error {
	args := m.Called(ctx, dsn)
	return args.Error(0)
}
