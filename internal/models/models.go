package models

import (
	"time"
)

// InterviewStatus is the lifecycle state of an interview. The transition is
// one-way: in-progress -> completed.
type InterviewStatus string

const (
	StatusInProgress InterviewStatus = "in-progress"
	StatusCompleted  InterviewStatus = "completed"
)

// TurnRole identifies who produced a dialog turn.
type TurnRole string

const (
	RoleInterviewer TurnRole = "interviewer"
	RoleInterviewee TurnRole = "interviewee"
)

// Depth classifies how thorough an answer is.
type Depth string

const (
	DepthSurface Depth = "SURFACE"
	DepthDeeper  Depth = "DEEPER"
	DepthEnough  Depth = "ENOUGH"
)

// Topic defines the backbone of an interview: a free-text outline plus the
// ordered key questions that bound its length.
type Topic struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Outline      string    `gorm:"type:text;not null" json:"outline"`
	KeyQuestions []string  `gorm:"serializer:json;not null" json:"key_questions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Interview is the mutable per-session record driven by the engine. Dialog
// turns live in their own table and are append-only.
type Interview struct {
	ID                   string          `gorm:"primaryKey" json:"id"`
	TopicID              string          `gorm:"index;not null" json:"topic_id"`
	Status               InterviewStatus `gorm:"not null" json:"status"`
	CurrentQuestionIndex int             `gorm:"not null;default:0" json:"current_question_index"`
	FollowUpCount        int             `gorm:"not null;default:0" json:"follow_up_count"`
	AwaitingConfirmation bool            `gorm:"not null;default:false" json:"awaiting_confirmation"`
	RatingMetrics        []string        `gorm:"serializer:json" json:"rating_metrics"`
	SummaryID            *string         `json:"summary_id,omitempty"`
	Turns                []DialogTurn    `gorm:"foreignKey:InterviewID" json:"dialog_history"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// DialogTurn is one utterance in an interview. Rows are only ever inserted,
// never updated or deleted, so insertion order is chronological order.
type DialogTurn struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	InterviewID string    `gorm:"index;not null" json:"-"`
	Role        TurnRole  `gorm:"not null" json:"role"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`
}

// Summary is the score-bearing artifact produced exactly once per completed
// interview. SummaryNumber is scoped to the topic and never reused.
type Summary struct {
	ID            string     `gorm:"primaryKey" json:"id"`
	InterviewID   string     `gorm:"uniqueIndex;not null" json:"interview_id"`
	TopicID       string     `gorm:"uniqueIndex:idx_topic_summary_number;not null" json:"topic_id"`
	TopicTitle    string     `gorm:"not null" json:"topic_title"`
	SummaryNumber int        `gorm:"uniqueIndex:idx_topic_summary_number;not null" json:"summary_number"`
	Takeaways     string     `gorm:"type:text;not null" json:"takeaways"`
	Points        []int      `gorm:"serializer:json;not null" json:"points"`
	Explanations  []string   `gorm:"serializer:json;not null" json:"explanations"`
	Exported      bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt    *time.Time `json:"exported_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
