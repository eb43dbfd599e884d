// Package store is the persistence collaborator for topics, interviews and
// summaries. Dialog turns are a separate append-only table so appending one
// is a single insert.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"deepdive/interview/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema for all engine tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(
		&models.Topic{},
		&models.Interview{},
		&models.DialogTurn{},
		&models.Summary{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// --- topics ---

func (s *Store) CreateTopic(topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.New().String()
	}
	if err := s.db.Create(topic).Error; err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

func (s *Store) TopicByID(id string) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.First(&topic, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &topic, nil
}

func (s *Store) Topics() ([]models.Topic, error) {
	var topics []models.Topic
	if err := s.db.Order("created_at DESC").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

func (s *Store) UpdateTopic(topic *models.Topic) error {
	// Struct-based update so the key_questions JSON serializer applies;
	// map updates would write the raw slice.
	result := s.db.Model(&models.Topic{}).
		Where("id = ?", topic.ID).
		Select("title", "outline", "key_questions").
		Updates(models.Topic{
			Title:        topic.Title,
			Outline:      topic.Outline,
			KeyQuestions: topic.KeyQuestions,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update topic: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTopic(id string) error {
	result := s.db.Delete(&models.Topic{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete topic: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- interviews ---

func (s *Store) CreateInterview(interview *models.Interview) error {
	if interview.ID == "" {
		interview.ID = uuid.New().String()
	}
	if interview.Status == "" {
		interview.Status = models.StatusInProgress
	}
	if err := s.db.Create(interview).Error; err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// InterviewByID loads an interview with its dialog turns in chronological
// order.
func (s *Store) InterviewByID(id string) (*models.Interview, error) {
	var interview models.Interview
	err := s.db.
		Preload("Turns", func(db *gorm.DB) *gorm.DB { return db.Order("dialog_turns.id ASC") }).
		First(&interview, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return &interview, nil
}

// AppendTurn inserts one dialog turn. Turns are never updated or deleted.
func (s *Store) AppendTurn(interviewID string, role models.TurnRole, text string) (*models.DialogTurn, error) {
	turn := &models.DialogTurn{
		InterviewID: interviewID,
		Role:        role,
		Text:        text,
		Timestamp:   time.Now(),
	}
	if err := s.db.Create(turn).Error; err != nil {
		return nil, fmt.Errorf("failed to append dialog turn: %w", err)
	}
	return turn, nil
}

// UpdateProgress persists the cursor state of the state machine.
func (s *Store) UpdateProgress(interviewID string, questionIndex, followUpCount int, awaitingConfirmation bool) error {
	result := s.db.Model(&models.Interview{}).
		Where("id = ?", interviewID).
		Updates(map[string]interface{}{
			"current_question_index": questionIndex,
			"follow_up_count":        followUpCount,
			"awaiting_confirmation":  awaitingConfirmation,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update interview progress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetStatus(interviewID string, status models.InterviewStatus) error {
	result := s.db.Model(&models.Interview{}).
		Where("id = ?", interviewID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update interview status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetRatingMetrics(interviewID string, metrics []string) error {
	result := s.db.Model(&models.Interview{}).
		Where("id = ?", interviewID).
		Select("rating_metrics").
		Updates(models.Interview{RatingMetrics: metrics})
	if result.Error != nil {
		return fmt.Errorf("failed to set rating metrics: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AttachSummary(interviewID, summaryID string) error {
	result := s.db.Model(&models.Interview{}).
		Where("id = ?", interviewID).
		Update("summary_id", summaryID)
	if result.Error != nil {
		return fmt.Errorf("failed to attach summary: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CompletedInterviewsByTopic lists completed interviews that carry a summary
// reference, newest first.
func (s *Store) CompletedInterviewsByTopic(topicID string) ([]models.Interview, error) {
	var interviews []models.Interview
	err := s.db.
		Where("topic_id = ? AND status = ? AND summary_id IS NOT NULL", topicID, models.StatusCompleted).
		Order("created_at DESC").
		Find(&interviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews for topic: %w", err)
	}
	return interviews, nil
}

// --- summaries ---

func (s *Store) CreateSummary(summary *models.Summary) error {
	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	if err := s.db.Create(summary).Error; err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	return nil
}

func (s *Store) SummaryByInterview(interviewID string) (*models.Summary, error) {
	var summary models.Summary
	if err := s.db.First(&summary, "interview_id = ?", interviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return &summary, nil
}

// CountSummariesByTopic returns how many summaries the topic already has,
// which determines the next summary number.
func (s *Store) CountSummariesByTopic(topicID string) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Summary{}).Where("topic_id = ?", topicID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}

func (s *Store) AllSummaries() ([]models.Summary, error) {
	var summaries []models.Summary
	if err := s.db.Order("created_at DESC").Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

// UnexportedSummaries returns summaries not yet written out by the export
// job, oldest first.
func (s *Store) UnexportedSummaries(limit int) ([]models.Summary, error) {
	var summaries []models.Summary
	query := s.db.Where("exported = ?", false).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported summaries: %w", err)
	}
	return summaries, nil
}

func (s *Store) MarkSummariesExported(ids []string) error {
	now := time.Now()
	result := s.db.Model(&models.Summary{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark summaries as exported: %w", result.Error)
	}
	return nil
}
