package routers

import (
	"deepdive/interview/internal/handlers"
	"deepdive/interview/internal/middleware"
	"deepdive/interview/internal/models"

	"github.com/go-chi/chi/v5"
)

func TopicRoutes(router *chi.Mux, topicHandler *handlers.TopicHandler) {
	router.Route("/api/v1/topics", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.TopicRequest]()).Post("/", topicHandler.CreateHandler)
		r.Get("/", topicHandler.ListHandler)
		r.Get("/{id}", topicHandler.GetHandler)
		r.With(middleware.ValidateRequest[*models.TopicRequest]()).Put("/{id}", topicHandler.UpdateHandler)
		r.Delete("/{id}", topicHandler.DeleteHandler)
		r.Get("/{id}/interviews", topicHandler.CompletedInterviewsHandler)
	})
}

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, summaryHandler *handlers.SummaryHandler) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/", interviewHandler.StartHandler)
		r.Get("/{id}", interviewHandler.GetHandler)
		r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/{id}/answers", interviewHandler.SubmitAnswerHandler)
		r.Post("/{id}/next", interviewHandler.AdvanceHandler)
		r.Post("/{id}/confirm-last", interviewHandler.ConfirmLastHandler)
		r.Post("/{id}/end", interviewHandler.EndHandler)
		r.Get("/{id}/summary", summaryHandler.GetHandler)
		r.With(middleware.ValidateRequest[*models.ExportSummaryRequest]()).Post("/{id}/summary/export", summaryHandler.ExportHandler)
	})
	router.Get("/api/v1/summaries", summaryHandler.ListHandler)
}
