package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/roblucci9302/Lucide-3/internal/api"
	"github.com/roblucci9302/Lucide-3/internal/api/middleware"
	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/extract"
	"github.com/roblucci9302/Lucide-3/internal/service"
)

type DocumentService interface {
	UploadDocument(ctx context.Context, ownerID, title, filename string, buffer []byte) (*domain.Document, error)
	AnalyzeFile(ctx context.Context, filename string, buffer []byte) (*extract.Result, error)
	GetDocument(ctx context.Context, ownerID, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, ownerID string) ([]*domain.Document, error)
	SearchDocuments(ctx context.Context, ownerID, query string, limit int) ([]*domain.Document, error)
	GetStats(ctx context.Context, ownerID string) (*domain.DocumentStats, error)
	DeleteDocument(ctx context.Context, ownerID, id string) error
}

type IndexingService interface {
	IndexDocument(ctx context.Context, ownerID, documentID string, opts service.IndexOptions) error
	CanEmbed() bool
}

type DocumentHandler struct {
	svc     DocumentService
	indexer IndexingService
}

func NewDocumentHandler(svc DocumentService, indexer IndexingService) *DocumentHandler {
	return &DocumentHandler{svc: svc, indexer: indexer}
}

type DocumentResponse struct {
	ID         string `json:"id"`
	DatabaseID string `json:"database_id"`
	Title      string `json:"title"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	Indexed    bool   `json:"indexed"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type AnalyzeResponse struct {
	Filename      string `json:"filename"`
	FileType      string `json:"file_type"`
	ExtractedText string `json:"extracted_text"`
	Size          int64  `json:"size"`
}

type StatsResponse struct {
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
	IndexedCount  int `json:"indexed_count"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:         d.ID,
		DatabaseID: d.DatabaseID,
		Title:      d.Title,
		Filename:   d.Filename,
		ChunkCount: d.ChunkCount,
		Indexed:    d.Indexed,
		CreatedAt:  d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  d.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// readUploadedFile pulls the "file" part out of a multipart form.
func readUploadedFile(r *http.Request) (string, []byte, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, buffer, nil
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filename, buffer, err := readUploadedFile(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}

	title := r.FormValue("title")

	doc, err := h.svc.UploadDocument(r.Context(), ownerID, title, filename, buffer)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, documentToResponse(doc))
}

func (h *DocumentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filename, buffer, err := readUploadedFile(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}

	result, err := h.svc.AnalyzeFile(r.Context(), filename, buffer)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &AnalyzeResponse{
		Filename:      result.Filename,
		FileType:      result.FileType,
		ExtractedText: result.Text,
		Size:          result.Size,
	})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), ownerID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := h.svc.ListDocuments(r.Context(), ownerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, 0, len(docs))
	for _, d := range docs {
		responses = append(responses, documentToResponse(d))
	}

	api.Success(w, http.StatusOK, responses)
}

type SearchDocumentsRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	query := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	docs, err := h.svc.SearchDocuments(r.Context(), ownerID, query, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, 0, len(docs))
	for _, d := range docs {
		responses = append(responses, documentToResponse(d))
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.svc.GetStats(r.Context(), ownerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &StatsResponse{
		DocumentCount: stats.DocumentCount,
		ChunkCount:    stats.ChunkCount,
		IndexedCount:  stats.IndexedCount,
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.DeleteDocument(r.Context(), ownerID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

type IndexRequest struct {
	GenerateEmbeddings *bool `json:"generate_embeddings"`
}

// Index rechunks a stored document. The request body may override whether
// embeddings are generated; it defaults to whatever the deployment supports.
func (h *DocumentHandler) Index(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	opts := service.IndexOptions{GenerateEmbeddings: h.indexer.CanEmbed()}
	if r.Body != nil {
		var req IndexRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.GenerateEmbeddings != nil {
			opts.GenerateEmbeddings = *req.GenerateEmbeddings
		}
	}

	if err := h.indexer.IndexDocument(r.Context(), ownerID, id, opts); err != nil {
		api.HandleError(w, err)
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), ownerID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}
