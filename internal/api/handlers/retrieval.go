package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/roblucci9302/Lucide-3/internal/api"
	"github.com/roblucci9302/Lucide-3/internal/api/middleware"
	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/service"
)

type RetrievalService interface {
	Retrieve(ctx context.Context, ownerID, sessionID, query string, topK int, scoreThreshold float32) (*service.RetrievalResult, error)
	SessionCitations(ctx context.Context, sessionID string) ([]*domain.Citation, error)
}

type RetrievalHandler struct {
	svc RetrievalService
}

func NewRetrievalHandler(svc RetrievalService) *RetrievalHandler {
	return &RetrievalHandler{svc: svc}
}

type RetrieveRequest struct {
	Query          string  `json:"query"`
	SessionID      string  `json:"session_id"`
	TopK           int     `json:"top_k"`
	ScoreThreshold float32 `json:"score_threshold"`
}

type RetrieveResponse struct {
	Context string                `json:"context"`
	Matches []*ChunkMatchResponse `json:"matches"`
}

type ChunkMatchResponse struct {
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Ordinal       int     `json:"ordinal"`
	Text          string  `json:"text"`
	Score         float32 `json:"score"`
}

type CitationResponse struct {
	ID           string  `json:"id"`
	SessionID    string  `json:"session_id"`
	DocumentID   string  `json:"document_id"`
	ChunkOrdinal int     `json:"chunk_ordinal"`
	Snippet      string  `json:"snippet"`
	Score        float32 `json:"score"`
	CreatedAt    string  `json:"created_at"`
}

func (h *RetrievalHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := h.svc.Retrieve(r.Context(), ownerID, req.SessionID, req.Query, req.TopK, req.ScoreThreshold)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	matches := make([]*ChunkMatchResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, &ChunkMatchResponse{
			DocumentID:    m.DocumentID,
			DocumentTitle: m.DocumentTitle,
			Ordinal:       m.Ordinal,
			Text:          m.Text,
			Score:         m.Score,
		})
	}

	api.Success(w, http.StatusOK, &RetrieveResponse{
		Context: result.Context,
		Matches: matches,
	})
}

func (h *RetrievalHandler) Citations(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	citations, err := h.svc.SessionCitations(r.Context(), sessionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*CitationResponse, 0, len(citations))
	for _, c := range citations {
		responses = append(responses, &CitationResponse{
			ID:           c.ID,
			SessionID:    c.SessionID,
			DocumentID:   c.DocumentID,
			ChunkOrdinal: c.ChunkOrdinal,
			Snippet:      c.Snippet,
			Score:        c.Score,
			CreatedAt:    c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	api.Success(w, http.StatusOK, responses)
}
