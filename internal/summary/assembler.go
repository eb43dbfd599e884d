// Package summary turns a completed interview into exactly one validated,
// uniquely numbered Summary.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"deepdive/interview/internal/classify"
	"deepdive/interview/internal/gateway"
	"deepdive/interview/internal/llm"
	"deepdive/interview/internal/models"
	"deepdive/interview/internal/prompts"
	"deepdive/interview/internal/store"
	"deepdive/interview/internal/utils"
)

// transcriptLimit caps the transcript copy embedded into takeaways.
const transcriptLimit = 500

type Assembler struct {
	store      *store.Store
	gw         *gateway.Gateway
	classifier *classify.Classifier
	prompts    prompts.Builder
	logger     *zap.Logger

	// numberMu serializes count+insert so summary numbers stay gapless under
	// concurrent completions; the unique (topic_id, summary_number) index
	// backstops racing processes.
	numberMu sync.Mutex
}

func NewAssembler(st *store.Store, gw *gateway.Gateway, classifier *classify.Classifier, builder prompts.Builder, logger *zap.Logger) *Assembler {
	return &Assembler{
		store:      st,
		gw:         gw,
		classifier: classifier,
		prompts:    builder,
		logger:     logger,
	}
}

// Assemble produces the Summary for a completed interview. It is idempotent:
// a second call returns the stored Summary unchanged. It only returns an
// error when even the emergency path cannot persist anything.
func (a *Assembler) Assemble(ctx context.Context, interviewID string) (*models.Summary, error) {
	if existing, err := a.store.SummaryByInterview(interviewID); err == nil {
		return existing, nil
	}

	interview, err := a.store.InterviewByID(interviewID)
	if err != nil {
		return nil, err
	}
	topic, err := a.store.TopicByID(interview.TopicID)
	if err != nil {
		return nil, err
	}

	transcript := BuildTranscript(interview.Turns)
	metrics := a.ensureMetrics(ctx, interview, topic)

	draft := a.draft(ctx, topic, transcript, metrics)

	summary, err := a.persist(interview, topic, draft)
	if err == nil {
		return summary, nil
	}
	a.logger.Error("failed to persist summary, trying emergency summary",
		zap.String("interview_id", interviewID),
		zap.Error(err))

	summary, emergencyErr := a.persist(interview, topic, emergencyDraft(topic, metrics))
	if emergencyErr != nil {
		return nil, fmt.Errorf("failed to persist summary (%v) and emergency summary: %w", err, emergencyErr)
	}
	return summary, nil
}

// ensureMetrics reuses stored rating metrics, generating and persisting them
// when the interview has none.
func (a *Assembler) ensureMetrics(ctx context.Context, interview *models.Interview, topic *models.Topic) []string {
	if len(interview.RatingMetrics) > 0 {
		return interview.RatingMetrics
	}
	metrics := a.classifier.RatingMetrics(ctx, topic.Outline, topic.KeyQuestions)
	if err := a.store.SetRatingMetrics(interview.ID, metrics); err != nil {
		a.logger.Warn("failed to persist generated rating metrics", zap.Error(err))
	}
	return metrics
}

// BuildTranscript renders the dialog history as role-labeled, timestamped
// plain text.
func BuildTranscript(turns []models.DialogTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		role := "Interviewer"
		if turn.Role == models.RoleInterviewee {
			role = "Interviewee"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", turn.Timestamp.Format("2006-01-02 15:04:05"), role, turn.Text)
	}
	return b.String()
}

type draft struct {
	Takeaways    string
	Points       []int
	Explanations []string
}

// rawSummary uses pointer fields so a missing key is distinguishable from an
// empty value.
type rawSummary struct {
	Takeaways    *string    `json:"takeaways"`
	Points       *[]float64 `json:"points"`
	Explanations *[]string  `json:"explanations"`
}

// draft asks the backend for the three-key JSON summary and repairs whatever
// comes back into a valid draft. It never fails; the worst case is the
// transcript-embedding default.
func (a *Assembler) draft(ctx context.Context, topic *models.Topic, transcript string, metrics []string) draft {
	metricLines := make([]string, len(metrics))
	for i, m := range metrics {
		metricLines[i] = "- " + m
	}

	messages, err := a.prompts.BuildMessages("summary", map[string]string{
		"Title":      topic.Title,
		"Outline":    topic.Outline,
		"Transcript": transcript,
		"Metrics":    strings.Join(metricLines, "\n"),
	})
	if err != nil {
		a.logger.Error("failed to build summary prompt", zap.Error(err))
		return defaultDraft(topic, transcript, metrics)
	}

	sampling := llm.DefaultSamplingParams()
	sampling.Temperature = 0.7
	sampling.RepetitionPenalty = 1.0
	sampling.MaxTokens = 1024

	text, err := a.gw.Submit(ctx, llm.Request{Messages: messages, Sampling: sampling})
	if err != nil {
		a.logger.Warn("summary generation unavailable, using default summary", zap.Error(err))
		return defaultDraft(topic, transcript, metrics)
	}

	var raw rawSummary
	if err := json.Unmarshal([]byte(utils.StripFences(text)), &raw); err != nil {
		a.logger.Warn("summary JSON did not parse, using default summary", zap.Error(err))
		return defaultDraft(topic, transcript, metrics)
	}
	if raw.Takeaways == nil || raw.Points == nil || raw.Explanations == nil {
		a.logger.Warn("summary JSON missing required keys, using default summary")
		return defaultDraft(topic, transcript, metrics)
	}

	d := draft{Takeaways: *raw.Takeaways}

	points := *raw.Points
	if len(points) != len(metrics) {
		d.Points = repeatedScores(len(metrics))
	} else {
		d.Points = make([]int, len(points))
		for i, p := range points {
			d.Points[i] = clampScore(int(math.Round(p)))
		}
	}

	explanations := *raw.Explanations
	if len(explanations) != len(metrics) {
		d.Explanations = repeatedExplanations(len(metrics))
	} else {
		d.Explanations = explanations
	}

	// The stored takeaway must be self-contained.
	if !referencesTranscript(d.Takeaways) {
		d.Takeaways += "\n\nInterview transcript excerpt:\n" + utils.Truncate(transcript, transcriptLimit)
	}

	return d
}

func referencesTranscript(takeaways string) bool {
	lowered := strings.ToLower(takeaways)
	return strings.Contains(lowered, "transcript") || strings.Contains(lowered, "interview record")
}

func defaultDraft(topic *models.Topic, transcript string, metrics []string) draft {
	return draft{
		Takeaways: "Interview topic: " + topic.Title + "\n\n" +
			"The interview completed, but no detailed analysis could be generated. " +
			"The full transcript is preserved below.\n\nInterview transcript:\n" + transcript,
		Points:       repeatedScores(len(metrics)),
		Explanations: repeatedExplanations(len(metrics)),
	}
}

// emergencyDraft is the last resort when even the default summary failed to
// persist once.
func emergencyDraft(topic *models.Topic, metrics []string) draft {
	count := len(metrics)
	if count == 0 {
		count = len(models.DefaultRatingMetrics)
	}
	return draft{
		Takeaways: "Interview topic: " + topic.Title + "\n\n" +
			"The interview completed, but a technical problem prevented detailed analysis. " +
			"The dialog history remains available on the interview record.",
		Points:       repeatedScores(count),
		Explanations: repeatedExplanations(count),
	}
}

func repeatedScores(count int) []int {
	points := make([]int, count)
	for i := range points {
		points[i] = models.DefaultLowScore
	}
	return points
}

func repeatedExplanations(count int) []string {
	explanations := make([]string, count)
	for i := range explanations {
		explanations[i] = models.DefaultExplanation
	}
	return explanations
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// persist assigns the topic-scoped number and stores the summary, attaching
// it back onto the interview.
func (a *Assembler) persist(interview *models.Interview, topic *models.Topic, d draft) (*models.Summary, error) {
	a.numberMu.Lock()
	defer a.numberMu.Unlock()

	// Another caller may have won the race while we were drafting.
	if existing, err := a.store.SummaryByInterview(interview.ID); err == nil {
		return existing, nil
	}

	count, err := a.store.CountSummariesByTopic(topic.ID)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{
		InterviewID:   interview.ID,
		TopicID:       topic.ID,
		TopicTitle:    topic.Title,
		SummaryNumber: int(count) + 1,
		Takeaways:     d.Takeaways,
		Points:        d.Points,
		Explanations:  d.Explanations,
	}
	if err := a.store.CreateSummary(summary); err != nil {
		return nil, err
	}
	if err := a.store.AttachSummary(interview.ID, summary.ID); err != nil {
		return nil, err
	}

	a.logger.Info("summary persisted",
		zap.String("interview_id", interview.ID),
		zap.String("topic_id", topic.ID),
		zap.Int("summary_number", summary.SummaryNumber))

	return summary, nil
}
