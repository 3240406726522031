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

type DatabaseService interface {
	Add(ctx context.Context, ownerID, name string, kind domain.DatabaseKind, cfg domain.ConnectionConfig) (*domain.KnowledgeDatabase, error)
	EnsurePersonalDatabase(ctx context.Context, ownerID, name string) (*domain.KnowledgeDatabase, error)
	List(ctx context.Context, ownerID string) ([]*domain.KnowledgeDatabase, error)
	Get(ctx context.Context, ownerID, id string) (*domain.KnowledgeDatabase, error)
	Switch(ctx context.Context, ownerID, id string) error
	TestConnection(ctx context.Context, ownerID, id string) error
	TestConfig(ctx context.Context, cfg domain.ConnectionConfig) error
	Remove(ctx context.Context, ownerID, id string) error
	Status(ctx context.Context, ownerID string) (*service.DatabaseStatus, error)
}

type DatabaseHandler struct {
	svc DatabaseService
}

func NewDatabaseHandler(svc DatabaseService) *DatabaseHandler {
	return &DatabaseHandler{svc: svc}
}

type AddDatabaseRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`
}

type DatabaseResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type StatusResponse struct {
	ActiveDatabase *DatabaseResponse `json:"active_database,omitempty"`
	DatabaseCount  int               `json:"database_count"`
	Stats          *StatsResponse    `json:"stats,omitempty"`
}

func databaseToResponse(d *domain.KnowledgeDatabase) *DatabaseResponse {
	return &DatabaseResponse{
		ID:        d.ID,
		Name:      d.Name,
		Kind:      string(d.Kind),
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DatabaseHandler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddDatabaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	kind := domain.DatabaseKind(req.Kind)
	if kind == "" {
		kind = domain.DatabaseKindExternal
	}

	var db *domain.KnowledgeDatabase
	var err error
	if kind == domain.DatabaseKindPersonal {
		db, err = h.svc.EnsurePersonalDatabase(r.Context(), ownerID, req.Name)
	} else {
		db, err = h.svc.Add(r.Context(), ownerID, req.Name, kind, domain.ConnectionConfig{DSN: req.DSN})
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, databaseToResponse(db))
}

func (h *DatabaseHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dbs, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DatabaseResponse, 0, len(dbs))
	for _, d := range dbs {
		responses = append(responses, databaseToResponse(d))
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *DatabaseHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	db, err := h.svc.Get(r.Context(), ownerID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, databaseToResponse(db))
}

func (h *DatabaseHandler) Activate(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Switch(r.Context(), ownerID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	db, err := h.svc.Get(r.Context(), ownerID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, databaseToResponse(db))
}

func (h *DatabaseHandler) Test(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.TestConnection(r.Context(), ownerID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]bool{"reachable": true})
}

type TestConfigRequest struct {
	DSN string `json:"dsn"`
}

// TestConfig checks an unregistered connection config, typically before an
// Add call.
func (h *DatabaseHandler) TestConfig(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req TestConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.TestConfig(r.Context(), domain.ConnectionConfig{DSN: req.DSN}); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]bool{"reachable": true})
}

func (h *DatabaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Remove(r.Context(), ownerID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

func (h *DatabaseHandler) Status(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.svc.Status(r.Context(), ownerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := &StatusResponse{DatabaseCount: status.DatabaseCount}
	if status.ActiveDatabase != nil {
		resp.ActiveDatabase = databaseToResponse(status.ActiveDatabase)
	}
	if status.Stats != nil {
		resp.Stats = &StatsResponse{
			DocumentCount: status.Stats.DocumentCount,
			ChunkCount:    status.Stats.ChunkCount,
			IndexedCount:  status.Stats.IndexedCount,
		}
	}

	api.Success(w, http.StatusOK, resp)
}
