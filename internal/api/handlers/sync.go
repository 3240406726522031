package handlers

import (
	"context"
	"net/http"

	"github.com/roblucci9302/Lucide-3/internal/api"
	"github.com/roblucci9302/Lucide-3/internal/api/middleware"
	"github.com/roblucci9302/Lucide-3/internal/domain"
)

type SyncService interface {
	SyncOwner(ctx context.Context, ownerID string) (*domain.SyncReport, error)
}

type SyncHandler struct {
	svc SyncService
}

func NewSyncHandler(svc SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

type SyncReportResponse struct {
	SyncedCount int      `json:"synced_count"`
	FailedCount int      `json:"failed_count"`
	Errors      []string `json:"errors,omitempty"`
}

func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.svc.SyncOwner(r.Context(), ownerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &SyncReportResponse{
		SyncedCount: report.SyncedCount,
		FailedCount: report.FailedCount,
		Errors:      report.Errors,
	})
}
