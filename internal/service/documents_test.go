package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type captureIndexer struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newCaptureIndexer() *captureIndexer {
	return &captureIndexer{done: make(chan struct{}, 1)}
}

func (c *captureIndexer) IndexDocument(ctx context.Context, ownerID, documentID string, opts IndexOptions) error {
	c.mu.Lock()
	c.calls = append(c.calls, documentID)
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil
}

func (c *captureIndexer) CanEmbed() bool { return false }

func activeDB(ownerID string) *domain.KnowledgeDatabase {
	return &domain.KnowledgeDatabase{
		ID:       "db-1",
		OwnerID:  ownerID,
		Name:     "personal",
		Kind:     domain.DatabaseKindPersonal,
		IsActive: true,
	}
}

func TestUploadDocument(t *testing.T) {
	docs := new(MockDocumentRepository)
	databases := new(MockDatabaseRepository)
	extractor := new(MockExtractor)
	svc := NewDocumentService(docs, databases, extractor, nil)

	databases.On("GetActive", mock.Anything, "owner-1").Return(activeDB("owner-1"), nil)
	extractor.On("Extract", mock.Anything, "notes.txt", []byte("hello")).Return(&extract.Result{
		Filename: "notes.txt",
		FileType: "txt",
		Text:     "hello",
		Size:     5,
	}, nil)
	docs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	doc, err := svc.UploadDocument(context.Background(), "owner-1", "", "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "notes", doc.Title)
	assert.Equal(t, "db-1", doc.DatabaseID)
	assert.Equal(t, "hello", doc.Content)
	assert.False(t, doc.Indexed)
	assert.Zero(t, doc.ChunkCount)
	docs.AssertExpectations(t)
}

func TestUploadDocumentNoOwner(t *testing.T) {
	svc := NewDocumentService(new(MockDocumentRepository), new(MockDatabaseRepository), new(MockExtractor), nil)

	_, err := svc.UploadDocument(context.Background(), "", "", "notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestUploadDocumentNoActiveDatabase(t *testing.T) {
	docs := new(MockDocumentRepository)
	databases := new(MockDatabaseRepository)
	svc := NewDocumentService(docs, databases, new(MockExtractor), nil)

	databases.On("GetActive", mock.Anything, "owner-1").Return(nil, domain.ErrNoActiveDatabase)

	_, err := svc.UploadDocument(context.Background(), "owner-1", "", "notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, domain.ErrNoActiveDatabase)
	docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadDocumentExtractionFails(t *testing.T) {
	docs := new(MockDocumentRepository)
	databases := new(MockDatabaseRepository)
	extractor := new(MockExtractor)
	svc := NewDocumentService(docs, databases, extractor, nil)

	databases.On("GetActive", mock.Anything, "owner-1").Return(activeDB("owner-1"), nil)
	extractor.On("Extract", mock.Anything, "broken.pdf", mock.Anything).Return(nil, domain.ErrExtractionFailed)

	_, err := svc.UploadDocument(context.Background(), "owner-1", "", "broken.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadDocumentTriggersBackgroundIndexing(t *testing.T) {
	docs := new(MockDocumentRepository)
	databases := new(MockDatabaseRepository)
	extractor := new(MockExtractor)
	svc := NewDocumentService(docs, databases, extractor, nil)
	indexer := newCaptureIndexer()
	svc.SetIndexer(indexer, 0)

	databases.On("GetActive", mock.Anything, "owner-1").Return(activeDB("owner-1"), nil)
	extractor.On("Extract", mock.Anything, "notes.txt", mock.Anything).Return(&extract.Result{
		Filename: "notes.txt", FileType: "txt", Text: "hello", Size: 5,
	}, nil)
	docs.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := svc.UploadDocument(context.Background(), "owner-1", "", "notes.txt", []byte("hello"))
	require.NoError(t, err)

	select {
	case <-indexer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("background indexing was not triggered")
	}

	indexer.mu.Lock()
	defer indexer.mu.Unlock()
	assert.Equal(t, []string{doc.ID}, indexer.calls)
}

type blockingIndexer struct {
	mu      sync.Mutex
	running int
	peak    int
	started chan struct{}
	release chan struct{}
}

func newBlockingIndexer() *blockingIndexer {
	return &blockingIndexer{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (b *blockingIndexer) IndexDocument(ctx context.Context, ownerID, documentID string, opts IndexOptions) error {
	b.mu.Lock()
	b.running++
	if b.running > b.peak {
		b.peak = b.running
	}
	b.mu.Unlock()

	b.started <- struct{}{}
	<-b.release

	b.mu.Lock()
	b.running--
	b.mu.Unlock()
	return nil
}

func (b *blockingIndexer) CanEmbed() bool { return false }

func TestUploadDocumentIndexingIsBounded(t *testing.T) {
	docs := new(MockDocumentRepository)
	databases := new(MockDatabaseRepository)
	extractor := new(MockExtractor)
	svc := NewDocumentService(docs, databases, extractor, nil)
	indexer := newBlockingIndexer()
	svc.SetIndexer(indexer, 1)

	databases.On("GetActive", mock.Anything, "owner-1").Return(activeDB("owner-1"), nil)
	extractor.On("Extract", mock.Anything, "notes.txt", mock.Anything).Return(&extract.Result{
		Filename: "notes.txt", FileType: "txt", Text: "hello", Size: 5,
	}, nil)
	docs.On("Create", mock.Anything, mock.Anything).Return(nil)

	for i := 0; i < 3; i++ {
		_, err := svc.UploadDocument(context.Background(), "owner-1", "", "notes.txt", []byte("hello"))
		require.NoError(t, err)
	}

	// Uploads return immediately; the three indexing runs drain through a
	// single slot one at a time.
	for i := 0; i < 3; i++ {
		select {
		case <-indexer.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("indexing run %d did not start", i)
		}
		indexer.release <- struct{}{}
	}

	indexer.mu.Lock()
	defer indexer.mu.Unlock()
	assert.Equal(t, 1, indexer.peak)
}

func TestAnalyzeFileDoesNotPersist(t *testing.T) {
	docs := new(MockDocumentRepository)
	extractor := new(MockExtractor)
	svc := NewDocumentService(docs, new(MockDatabaseRepository), extractor, nil)

	extractor.On("Extract", mock.Anything, "scan.png", mock.Anything).Return(&extract.Result{
		Filename: "scan.png", FileType: "png", Text: "recognized", Size: 3,
	}, nil)

	result, err := svc.AnalyzeFile(context.Background(), "scan.png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "recognized", result.Text)
	docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetDocumentOwnership(t *testing.T) {
	docs := new(MockDocumentRepository)
	svc := NewDocumentService(docs, new(MockDatabaseRepository), new(MockExtractor), nil)

	docs.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1", OwnerID: "other"}, nil)

	_, err := svc.GetDocument(context.Background(), "owner-1", "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestSearchDocumentsEmptyQuery(t *testing.T) {
	svc := NewDocumentService(new(MockDocumentRepository), new(MockDatabaseRepository), new(MockExtractor), nil)

	_, err := svc.SearchDocuments(context.Background(), "owner-1", "   ", 10)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestSearchDocumentsScopedToActive(t *testing.T) {
	docs := new(MockDocumentRepository)
	databases := new(MockDatabaseRepository)
	svc := NewDocumentService(docs, databases, new(MockExtractor), nil)

	databases.On("GetActive", mock.Anything, "owner-1").Return(activeDB("owner-1"), nil)
	docs.On("SearchByText", mock.Anything, "db-1", "golang", 10).Return([]*domain.Document{{ID: "doc-1"}}, nil)

	results, err := svc.SearchDocuments(context.Background(), "owner-1", "golang", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDeleteDocumentOwnership(t *testing.T) {
	docs := new(MockDocumentRepository)
	svc := NewDocumentService(docs, new(MockDatabaseRepository), new(MockExtractor), nil)

	docs.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1", OwnerID: "other"}, nil)

	err := svc.DeleteDocument(context.Background(), "owner-1", "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	docs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteDocument(t *testing.T) {
	docs := new(MockDocumentRepository)
	svc := NewDocumentService(docs, new(MockDatabaseRepository), new(MockExtractor), nil)

	docs.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1", OwnerID: "owner-1"}, nil)
	docs.On("Delete", mock.Anything, "doc-1").Return(nil)

	require.NoError(t, svc.DeleteDocument(context.Background(), "owner-1", "doc-1"))
	docs.AssertExpectations(t)
}
