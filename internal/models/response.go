package models

import "time"

// SubmitResult is returned after each interviewee answer.
type SubmitResult struct {
	IsOffTopic    bool   `json:"is_off_topic"`
	Depth         Depth  `json:"depth,omitempty"`
	NextPrompt    string `json:"next_prompt,omitempty"`
	ShouldAdvance bool   `json:"should_advance"`
}

// AdvanceResult is returned by both Advance and ConfirmLastQuestion.
type AdvanceResult struct {
	Question          string `json:"question,omitempty"`
	Transition        string `json:"transition,omitempty"`
	FullText          string `json:"full_text,omitempty"`
	QuestionIndex     int    `json:"question_index"`
	TotalQuestions    int    `json:"total_questions"`
	IsLastQuestion    bool   `json:"is_last_question"`
	NeedsConfirmation bool   `json:"needs_confirmation,omitempty"`
	IsCompleted       bool   `json:"is_completed,omitempty"`
}

// EndResult is returned when an interview reaches its terminal state.
type EndResult struct {
	IsCompleted   bool   `json:"is_completed"`
	SummaryID     string `json:"summary_id"`
	ClosingRemark string `json:"closing_remark,omitempty"`
}

// SummaryExport is the formatted artifact produced by the export operation.
// Content is only set for the text format.
type SummaryExport struct {
	Topic        string    `json:"topic,omitempty"`
	Outline      string    `json:"outline,omitempty"`
	Takeaways    string    `json:"takeaways,omitempty"`
	Points       []int     `json:"points,omitempty"`
	Explanations []string  `json:"explanations,omitempty"`
	ExportedAt   time.Time `json:"exported_at"`
	Content      string    `json:"content,omitempty"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Code + ": " + e.Message
}
