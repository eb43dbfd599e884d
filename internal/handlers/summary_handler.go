package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"deepdive/interview/internal/middleware"
	"deepdive/interview/internal/models"
	"deepdive/interview/internal/store"
	"deepdive/interview/internal/summary"
	"deepdive/interview/internal/utils"
)

type SummaryHandler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewSummaryHandler(st *store.Store, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{store: st, logger: logger}
}

// GetHandler returns the stored summary of a completed interview.
func (h *SummaryHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store.SummaryByInterview(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "summary_not_found",
				Message: "No summary exists for this interview",
			})
			return
		}
		h.logger.Error("Failed to get summary", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to get summary",
		})
		return
	}
	utils.JSON(w, http.StatusOK, sum)
}

// ExportHandler renders the summary in the requested format.
func (h *SummaryHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ExportSummaryRequest](r)

	export, err := summary.Export(h.store, chi.URLParam(r, "id"), req.Format)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "summary_not_found",
				Message: "No summary exists for this interview",
			})
			return
		}
		h.logger.Error("Failed to export summary", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "export_error",
			Message: "Failed to export summary",
		})
		return
	}
	utils.JSON(w, http.StatusOK, export)
}

// ListHandler returns every stored summary, newest first.
func (h *SummaryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.AllSummaries()
	if err != nil {
		h.logger.Error("Failed to list summaries", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to list summaries",
		})
		return
	}
	utils.JSON(w, http.StatusOK, summaries)
}
