package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/extract"
	"github.com/roblucci9302/Lucide-3/internal/telemetry"
)

// TextExtractor converts an uploaded file buffer into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, buffer []byte) (*extract.Result, error)
}

// Indexer chunks and embeds a stored document.
type Indexer interface {
	IndexDocument(ctx context.Context, ownerID, documentID string, opts IndexOptions) error
	CanEmbed() bool
}

// DocumentService handles document ingestion and lookups against the
// owner's active knowledge database.
type DocumentService struct {
	docs      DocumentRepositoryInterface
	databases DatabaseRepositoryInterface
	extractor TextExtractor
	gate      *OwnerGate
	indexer   Indexer

	// indexSlots bounds how many upload-triggered indexing runs execute
	// at once. Uploads never block on it; their goroutines queue on the
	// channel instead.
	indexSlots chan struct{}
}

func NewDocumentService(docs DocumentRepositoryInterface, databases DatabaseRepositoryInterface, extractor TextExtractor, gate *OwnerGate) *DocumentService {
	if gate == nil {
		gate = NewOwnerGate()
	}
	return &DocumentService{
		docs:      docs,
		databases: databases,
		extractor: extractor,
		gate:      gate,
	}
}

// SetIndexer enables best-effort background indexing after upload, with at
// most workers runs in flight at a time.
func (s *DocumentService) SetIndexer(indexer Indexer, workers int) {
	if workers <= 0 {
		workers = 2
	}
	s.indexer = indexer
	s.indexSlots = make(chan struct{}, workers)
}

// UploadDocument extracts text from a file buffer and stores the document in
// the owner's active database. Indexing runs in the background when an
// indexer is attached; its failure never fails the upload.
func (s *DocumentService) UploadDocument(ctx context.Context, ownerID, title, filename string, buffer []byte) (*domain.Document, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	ctx, span := telemetry.StartSpan(ctx, "DocumentService.UploadDocument", telemetry.SpanAttributes{
		OwnerID:   ownerID,
		Operation: "upload",
	})
	defer span.End()

	s.gate.RLock(ownerID)
	defer s.gate.RUnlock(ownerID)

	active, err := s.databases.GetActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result, err := s.extractor.Extract(ctx, filename, buffer)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = strings.TrimSuffix(filename, "."+result.FileType)
		title = strings.TrimSuffix(title, ".")
	}

	doc := domain.NewDocument(uuid.NewString(), ownerID, active.ID, title, filename, result.Text, time.Now().UTC())
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	if s.indexer != nil {
		go func() {
			s.indexSlots <- struct{}{}
			defer func() { <-s.indexSlots }()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			opts := IndexOptions{GenerateEmbeddings: s.indexer.CanEmbed()}
			if err := s.indexer.IndexDocument(ctx, ownerID, doc.ID, opts); err != nil {
				log.Printf("background indexing failed for document %s: %v", doc.ID, err)
			}
		}()
	}

	return doc, nil
}

// AnalyzeFile extracts text from a buffer without persisting anything.
func (s *DocumentService) AnalyzeFile(ctx context.Context, filename string, buffer []byte) (*extract.Result, error) {
	return s.extractor.Extract(ctx, filename, buffer)
}

// GetDocument returns a document owned by the caller.
func (s *DocumentService) GetDocument(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// ListDocuments returns the documents in the owner's active database.
func (s *DocumentService) ListDocuments(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	s.gate.RLock(ownerID)
	defer s.gate.RUnlock(ownerID)

	active, err := s.databases.GetActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.docs.ListByDatabase(ctx, active.ID)
}

// SearchDocuments does a substring search over the active database.
func (s *DocumentService) SearchDocuments(ctx context.Context, ownerID, query string, limit int) ([]*domain.Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "search query is required")
	}

	s.gate.RLock(ownerID)
	defer s.gate.RUnlock(ownerID)

	active, err := s.databases.GetActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.docs.SearchByText(ctx, active.ID, query, limit)
}

// GetStats summarizes the owner's active database.
func (s *DocumentService) GetStats(ctx context.Context, ownerID string) (*domain.DocumentStats, error) {
	s.gate.RLock(ownerID)
	defer s.gate.RUnlock(ownerID)

	active, err := s.databases.GetActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.docs.Stats(ctx, active.ID)
}

// DeleteDocument removes a document the caller owns. Chunks and sync state
// go with it through foreign keys.
func (s *DocumentService) DeleteDocument(ctx context.Context, ownerID, id string) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.OwnerID != ownerID {
		return domain.ErrDocumentNotFound
	}
	return s.docs.Delete(ctx, id)
}
