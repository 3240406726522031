package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/roblucci9302/Lucide-3/internal/api/middleware"
	"github.com/roblucci9302/Lucide-3/internal/domain"
	"github.com/roblucci9302/Lucide-3/internal/extract"
	"github.com/roblucci9302/Lucide-3/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) UploadDocument(ctx context.Context, ownerID, title, filename string, buffer []byte) (*domain.Document, error) {
	args := m.Called(ctx, ownerID, title, filename, buffer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) AnalyzeFile(ctx context.Context, filename string, buffer []byte) (*extract.Result, error) {
	args := m.Called(ctx, filename, buffer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Result), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentService) SearchDocuments(ctx context.Context, ownerID, query string, limit int) ([]*domain.Document, error) {
	args := m.Called(ctx, ownerID, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentService) GetStats(ctx context.Context, ownerID string) (*domain.DocumentStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentStats), args.Error(1)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockIndexingService struct {
	mock.Mock
}

func (m *MockIndexingService) IndexDocument(ctx context.Context, ownerID, documentID string, opts service.IndexOptions) error {
	args := m.Called(ctx, ownerID, documentID, opts)
	return args.Error(0)
}

func (m *MockIndexingService) CanEmbed() bool {
	args := m.Called()
	return args.Bool(0)
}

func newTestDocument() *domain.Document {
	now := time.Now().UTC()
	return &domain.Document{
		ID:         "doc-123",
		OwnerID:    "owner-456",
		DatabaseID: "db-1",
		Title:      "notes",
		Filename:   "notes.txt",
		Content:    "hello world",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func requestWithOwnerID(method, url string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.OwnerIDKey, "owner-456")
	return req.WithContext(ctx)
}

func multipartUpload(t *testing.T, filename string, content []byte, title string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if title != "" {
		require.NoError(t, mw.WriteField("title", title))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDocumentHandler_Upload_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc, new(MockIndexingService))

	mockSvc.On("UploadDocument", mock.Anything, "owner-456", "My Notes", "notes.txt", []byte("hello")).
		Return(newTestDocument(), nil)

	body, contentType := multipartUpload(t, "notes.txt", []byte("hello"), "My Notes")
	req := requestWithOwnerID(http.MethodPost, "/documents/upload", body.Bytes())
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "doc-123", data["id"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Upload_Unauthorized(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentService), new(MockIndexingService))

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", nil)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDocumentHandler_Upload_MissingFile(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentService), new(MockIndexingService))

	req := requestWithOwnerID(http.MethodPost, "/documents/upload", []byte("not multipart"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Upload_UnsupportedFormat(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc, new(MockIndexingService))

	mockSvc.On("UploadDocument", mock.Anything, "owner-456", "", "tool.exe", mock.Anything).
		Return(nil, domain.ErrUnsupportedFormat)

	body, contentType := multipartUpload(t, "tool.exe", []byte{0x4d, 0x5a}, "")
	req := requestWithOwnerID(http.MethodPost, "/documents/upload", body.Bytes())
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestDocumentHandler_Analyze_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc, new(MockIndexingService))

	mockSvc.On("AnalyzeFile", mock.Anything, "scan.png", mock.Anything).Return(&extract.Result{
		Filename: "scan.png",
		FileType: "png",
		Text:     "recognized text",
		Size:     2,
	}, nil)

	body, contentType := multipartUpload(t, "scan.png", []byte{1, 2}, "")
	req := requestWithOwnerID(http.MethodPost, "/documents/analyze", body.Bytes())
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.Analyze(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "recognized text", data["extracted_text"])
	assert.Equal(t, "png", data["file_type"])
}

func TestDocumentHandler_Search(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc, new(MockIndexingService))

	mockSvc.On("SearchDocuments", mock.Anything, "owner-456", "golang", 5).
		Return([]*domain.Document{newTestDocument()}, nil)

	req := requestWithOwnerID(http.MethodGet, "/documents/search?q=golang&limit=5", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	assert.Len(t, data, 1)
}

func TestDocumentHandler_Search_InvalidLimit(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentService), new(MockIndexingService))

	req := requestWithOwnerID(http.MethodGet, "/documents/search?q=golang&limit=abc", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Index_Conflict(t *testing.T) {
	mockSvc := new(MockDocumentService)
	mockIndexer := new(MockIndexingService)
	handler := NewDocumentHandler(mockSvc, mockIndexer)

	mockIndexer.On("CanEmbed").Return(true)
	mockIndexer.On("IndexDocument", mock.Anything, "owner-456", "doc-123",
		service.IndexOptions{GenerateEmbeddings: true}).
		Return(domain.ErrIndexingInFlight)

	req := requestWithOwnerID(http.MethodPost, "/documents/doc-123/index", nil)
	req = withURLParam(req, "id", "doc-123")
	w := httptest.NewRecorder()

	handler.Index(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDocumentHandler_Index_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	mockIndexer := new(MockIndexingService)
	handler := NewDocumentHandler(mockSvc, mockIndexer)

	indexed := newTestDocument()
	indexed.Indexed = true
	indexed.ChunkCount = 4

	mockIndexer.On("CanEmbed").Return(true)
	mockIndexer.On("IndexDocument", mock.Anything, "owner-456", "doc-123",
		service.IndexOptions{GenerateEmbeddings: true}).Return(nil)
	mockSvc.On("GetDocument", mock.Anything, "owner-456", "doc-123").Return(indexed, nil)

	req := requestWithOwnerID(http.MethodPost, "/documents/doc-123/index", nil)
	req = withURLParam(req, "id", "doc-123")
	w := httptest.NewRecorder()

	handler.Index(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["indexed"])
	assert.Equal(t, float64(4), data["chunk_count"])
}

func TestDocumentHandler_Index_SkipEmbeddings(t *testing.T) {
	mockSvc := new(MockDocumentService)
	mockIndexer := new(MockIndexingService)
	handler := NewDocumentHandler(mockSvc, mockIndexer)

	mockIndexer.On("CanEmbed").Return(true)
	mockIndexer.On("IndexDocument", mock.Anything, "owner-456", "doc-123",
		service.IndexOptions{GenerateEmbeddings: false}).Return(nil)
	mockSvc.On("GetDocument", mock.Anything, "owner-456", "doc-123").Return(newTestDocument(), nil)

	body, _ := json.Marshal(map[string]bool{"generate_embeddings": false})
	req := requestWithOwnerID(http.MethodPost, "/documents/doc-123/index", body)
	req = withURLParam(req, "id", "doc-123")
	w := httptest.NewRecorder()

	handler.Index(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockIndexer.AssertExpectations(t)
}

func TestDocumentHandler_Delete(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc, new(MockIndexingService))

	mockSvc.On("DeleteDocument", mock.Anything, "owner-456", "doc-123").Return(nil)

	req := requestWithOwnerID(http.MethodDelete, "/documents/doc-123", nil)
	req = withURLParam(req, "id", "doc-123")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDocumentHandler_Stats(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc, new(MockIndexingService))

	mockSvc.On("GetStats", mock.Anything, "owner-456").
		Return(&domain.DocumentStats{DocumentCount: 2, ChunkCount: 9, IndexedCount: 2}, nil)

	req := requestWithOwnerID(http.MethodGet, "/documents/stats", nil)
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["document_count"])
	assert.Equal(t, float64(9), data["chunk_count"])
}
