package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/embeddings"
	"github.com/roblucci9302/Lucide-3/internal/telemetry"
)

// DefaultTopK bounds how many chunks a retrieval returns by default.
const DefaultTopK = 5

// snippetMaxRunes caps the citation snippet recorded per retrieved chunk.
const snippetMaxRunes = 300

// ChunkMatch is one retrieved chunk with its similarity score.
type ChunkMatch struct {
	DocumentID    string
	DocumentTitle string
	Ordinal       int
	Text          string
	Score         float32
}

// RetrievalResult carries the assembled context string plus the ranked
// matches it was built from.
type RetrievalResult struct {
	Context string
	Matches []*ChunkMatch
}

// RetrievalService answers context queries against the owner's active
// database and records citations for the calling session.
type RetrievalService struct {
	databases DatabaseRepositoryInterface
	chunks    ChunkRepositoryInterface
	citations CitationRepositoryInterface
	embedder  Embedder
	gate      *OwnerGate
}

func NewRetrievalService(databases DatabaseRepositoryInterface, chunks ChunkRepositoryInterface, citations CitationRepositoryInterface, embedder Embedder, gate *OwnerGate) *RetrievalService {
	if gate == nil {
		gate = NewOwnerGate()
	}
	return &RetrievalService{
		databases: databases,
		chunks:    chunks,
		citations: citations,
		embedder:  embedder,
		gate:      gate,
	}
}

// Retrieve embeds the query, selects the topK closest chunks at or above
// the score threshold, and assembles them into one context string, best
// first. The whole call runs under the owner's shared lock, so a database
// switch never lands mid-retrieval. When a session ID is given, each
// selected chunk is recorded as a citation.
func (s *RetrievalService) Retrieve(ctx context.Context, ownerID, sessionID, query string, topK int, scoreThreshold float32) (*RetrievalResult, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query is required")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	if s.embedder == nil {
		return nil, domain.NewDomainError(domain.ErrCodeInternalError, "no embedder configured")
	}

	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		OwnerID:   ownerID,
		SessionID: sessionID,
		Operation: "retrieve",
	})
	defer span.End()

	s.gate.RLock(ownerID)
	defer s.gate.RUnlock(ownerID)

	active, err := s.databases.GetActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		if errors.Is(err, embeddings.ErrWrongDimensions) {
			return nil, domain.ErrDimensionMismatch
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "query embedding failed", err)
	}

	matches, err := s.chunks.SearchByEmbedding(ctx, active.ID, embedding, topK)
	if err != nil {
		return nil, err
	}

	filtered := make([]*ChunkMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score >= scoreThreshold {
			filtered = append(filtered, m)
		}
	}

	if sessionID != "" {
		now := time.Now().UTC()
		for _, m := range filtered {
			citation := &domain.Citation{
				ID:           uuid.NewString(),
				SessionID:    sessionID,
				DocumentID:   m.DocumentID,
				ChunkOrdinal: m.Ordinal,
				Snippet:      snippet(m.Text),
				Score:        m.Score,
				CreatedAt:    now,
			}
			if err := s.citations.Append(ctx, citation); err != nil {
				return nil, err
			}
		}
	}

	parts := make([]string, 0, len(filtered))
	for _, m := range filtered {
		parts = append(parts, m.Text)
	}

	return &RetrievalResult{
		Context: strings.Join(parts, "\n\n"),
		Matches: filtered,
	}, nil
}

// SessionCitations returns a session's citations in the order they were
// recorded.
func (s *RetrievalService) SessionCitations(ctx context.Context, sessionID string) ([]*domain.Citation, error) {
	if sessionID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "session ID is required")
	}
	return s.citations.ListBySession(ctx, sessionID)
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetMaxRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:snippetMaxRunes])) + "…"
}
