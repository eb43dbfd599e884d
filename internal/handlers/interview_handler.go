package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"deepdive/interview/internal/interview"
	"deepdive/interview/internal/middleware"
	"deepdive/interview/internal/models"
	"deepdive/interview/internal/utils"
)

type InterviewHandler struct {
	engine *interview.Engine
	logger *zap.Logger
}

func NewInterviewHandler(engine *interview.Engine, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{engine: engine, logger: logger}
}

// writeEngineError maps the engine's sentinel errors onto HTTP statuses.
func (h *InterviewHandler) writeEngineError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, interview.ErrNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview does not exist",
		})
	case errors.Is(err, interview.ErrAlreadyCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "interview_completed",
			Message: "Interview is already completed",
		})
	case errors.Is(err, interview.ErrNoPendingConfirmation):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "no_pending_confirmation",
			Message: "Interview has no pending last-question confirmation",
		})
	default:
		h.logger.Error("Interview operation failed", zap.String("action", action), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "interview_error",
			Message: "Failed to " + action,
		})
	}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	created, err := h.engine.Start(r.Context(), req.TopicID)
	if err != nil {
		if errors.Is(err, interview.ErrNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "topic_not_found",
				Message: "Topic does not exist",
			})
			return
		}
		h.logger.Error("Failed to start interview", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "interview_error",
			Message: "Failed to start interview",
		})
		return
	}
	utils.JSON(w, http.StatusCreated, created)
}

func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err, "get interview")
		return
	}
	utils.JSON(w, http.StatusOK, record)
}

func (h *InterviewHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)

	result, err := h.engine.SubmitAnswer(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.writeEngineError(w, err, "submit answer")
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err, "advance interview")
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) ConfirmLastHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.ConfirmLastQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err, "confirm last question")
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.End(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err, "end interview")
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
