package models

import (
	"strings"
)

type StartInterviewRequest struct {
	TopicID string `json:"topic_id"`
}

// implements the Validator interface used by the validation middleware
func (r *StartInterviewRequest) Validate() error {
	if strings.TrimSpace(r.TopicID) == "" {
		return &ErrorResponse{
			Code:    "missing_topic_id",
			Message: "topic_id is required",
		}
	}
	return nil
}

type SubmitAnswerRequest struct {
	Text string `json:"text"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &ErrorResponse{
			Code:    "missing_answer",
			Message: "answer text is required",
		}
	}
	return nil
}

type TopicRequest struct {
	Title        string   `json:"title"`
	Outline      string   `json:"outline"`
	KeyQuestions []string `json:"key_questions"`
}

func (r *TopicRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ErrorResponse{Code: "missing_title", Message: "title is required"}
	}
	if strings.TrimSpace(r.Outline) == "" {
		return &ErrorResponse{Code: "missing_outline", Message: "outline is required"}
	}
	if len(r.KeyQuestions) == 0 {
		return &ErrorResponse{Code: "missing_key_questions", Message: "at least one key question is required"}
	}
	for _, q := range r.KeyQuestions {
		if strings.TrimSpace(q) == "" {
			return &ErrorResponse{Code: "empty_key_question", Message: "key questions must be non-empty"}
		}
	}
	return nil
}

// Valid export formats for a summary.
const (
	ExportFormatJSON = "json"
	ExportFormatText = "text"
)

type ExportSummaryRequest struct {
	Format string `json:"format"`
}

func (r *ExportSummaryRequest) Validate() error {
	if r.Format == "" {
		r.Format = ExportFormatJSON
	}
	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	if r.Format != ExportFormatJSON && r.Format != ExportFormatText {
		return &ErrorResponse{
			Code:    "invalid_format",
			Message: "format must be one of: json, text",
		}
	}
	return nil
}
