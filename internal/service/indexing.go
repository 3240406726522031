package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/embeddings"
	"github.com/roblucci9302/Lucide-3/internal/telemetry"
)

// Embedder generates fixed-dimension embeddings for chunk texts.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// IndexingService chunks a document, embeds the chunks, and persists the
// result atomically. A document either ends fully indexed with a matching
// chunk count, or unchanged.
type IndexingService struct {
	docs     DocumentRepositoryInterface
	txRunner TxRunner
	embedder Embedder
	chunkCfg ChunkConfig

	// embedBatch bounds how many chunk texts go to the embeddings API in
	// one request; embedWorkers bounds concurrent requests.
	embedBatch   int
	embedWorkers int

	mu       sync.Mutex
	inFlight map[string]struct{}
}

type IndexingConfig struct {
	Chunking     ChunkConfig
	EmbedBatch   int
	EmbedWorkers int
}

// IndexOptions controls one indexing attempt.
type IndexOptions struct {
	GenerateEmbeddings bool
}

func NewIndexingService(docs DocumentRepositoryInterface, txRunner TxRunner, embedder Embedder, cfg IndexingConfig) *IndexingService {
	if cfg.Chunking.MaxChars <= 0 {
		cfg.Chunking = DefaultChunkConfig()
	}
	if cfg.EmbedBatch <= 0 {
		cfg.EmbedBatch = 16
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = 4
	}
	return &IndexingService{
		docs:         docs,
		txRunner:     txRunner,
		embedder:     embedder,
		chunkCfg:     cfg.Chunking,
		embedBatch:   cfg.EmbedBatch,
		embedWorkers: cfg.EmbedWorkers,
		inFlight:     make(map[string]struct{}),
	}
}

// CanEmbed reports whether an embedding client is configured.
func (s *IndexingService) CanEmbed() bool {
	return s.embedder != nil
}

// IndexDocument rebuilds a document's chunks and, when requested, their
// embeddings. Concurrent calls for the same document conflict: the second
// caller gets ErrIndexingInFlight instead of queueing.
func (s *IndexingService) IndexDocument(ctx context.Context, ownerID, documentID string, opts IndexOptions) error {
	if !s.acquire(documentID) {
		return domain.ErrIndexingInFlight
	}
	defer s.release(documentID)

	ctx, span := telemetry.StartSpan(ctx, "IndexingService.IndexDocument", telemetry.SpanAttributes{
		OwnerID:    ownerID,
		DocumentID: documentID,
		Operation:  "index",
	})
	defer span.End()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.OwnerID != ownerID {
		return domain.ErrDocumentNotFound
	}

	texts := chunkText(doc.Content, s.chunkCfg)
	if len(texts) == 0 {
		return domain.NewDomainError(domain.ErrCodeIndexing, "document has no text to index")
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: documentID,
			Ordinal:    i,
			Text:       text,
			TokenCount: estimateTokens(text),
			CreatedAt:  now,
		}
	}

	if opts.GenerateEmbeddings {
		if s.embedder == nil {
			return domain.NewDomainError(domain.ErrCodeIndexing, "no embedding client configured")
		}
		if err := s.embedChunks(ctx, chunks); err != nil {
			if errors.Is(err, embeddings.ErrWrongDimensions) {
				return domain.ErrDimensionMismatch
			}
			return domain.NewDomainErrorWithCause(domain.ErrCodeIndexing, "embedding generation failed", err)
		}
	}

	return s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Chunks().ReplaceChunks(ctx, documentID, chunks); err != nil {
			return err
		}
		return repos.Documents().MarkIndexed(ctx, documentID, len(chunks))
	})
}

// embedChunks fills in embeddings batch by batch with bounded concurrency.
func (s *IndexingService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.embedWorkers)

	for start := 0; start < len(chunks); start += s.embedBatch {
		end := start + s.embedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i := range batch {
				texts[i] = batch[i].Text
			}
			vectors, err := s.embedder.GenerateEmbeddings(ctx, texts)
			if err != nil {
				return err
			}
			for i := range batch {
				batch[i].Embedding = vectors[i]
			}
			return nil
		})
	}

	return g.Wait()
}

func (s *IndexingService) acquire(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[documentID]; busy {
		return false
	}
	s.inFlight[documentID] = struct{}{}
	return true
}

func (s *IndexingService) release(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, documentID)
}
