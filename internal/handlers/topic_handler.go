package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"deepdive/interview/internal/middleware"
	"deepdive/interview/internal/models"
	"deepdive/interview/internal/store"
	"deepdive/interview/internal/utils"
)

type TopicHandler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewTopicHandler(st *store.Store, logger *zap.Logger) *TopicHandler {
	return &TopicHandler{store: st, logger: logger}
}

func (h *TopicHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.TopicRequest](r)

	topic := &models.Topic{
		Title:        req.Title,
		Outline:      req.Outline,
		KeyQuestions: req.KeyQuestions,
	}
	if err := h.store.CreateTopic(topic); err != nil {
		h.logger.Error("Failed to create topic", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to create topic",
		})
		return
	}

	utils.JSON(w, http.StatusCreated, topic)
}

func (h *TopicHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	topics, err := h.store.Topics()
	if err != nil {
		h.logger.Error("Failed to list topics", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to list topics",
		})
		return
	}
	utils.JSON(w, http.StatusOK, topics)
}

func (h *TopicHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	topic, err := h.store.TopicByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "topic_not_found",
				Message: "Topic does not exist",
			})
			return
		}
		h.logger.Error("Failed to get topic", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to get topic",
		})
		return
	}
	utils.JSON(w, http.StatusOK, topic)
}

func (h *TopicHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.TopicRequest](r)

	topic := &models.Topic{
		ID:           chi.URLParam(r, "id"),
		Title:        req.Title,
		Outline:      req.Outline,
		KeyQuestions: req.KeyQuestions,
	}
	if err := h.store.UpdateTopic(topic); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "topic_not_found",
				Message: "Topic does not exist",
			})
			return
		}
		h.logger.Error("Failed to update topic", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to update topic",
		})
		return
	}
	utils.JSON(w, http.StatusOK, topic)
}

func (h *TopicHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTopic(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "topic_not_found",
				Message: "Topic does not exist",
			})
			return
		}
		h.logger.Error("Failed to delete topic", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to delete topic",
		})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CompletedInterviewsHandler lists the completed, summarized interviews for a
// topic.
func (h *TopicHandler) CompletedInterviewsHandler(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "id")
	if _, err := h.store.TopicByID(topicID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "topic_not_found",
				Message: "Topic does not exist",
			})
			return
		}
		h.logger.Error("Failed to get topic", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to get topic",
		})
		return
	}

	interviews, err := h.store.CompletedInterviewsByTopic(topicID)
	if err != nil {
		h.logger.Error("Failed to list completed interviews", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to list completed interviews",
		})
		return
	}
	utils.JSON(w, http.StatusOK, interviews)
}
