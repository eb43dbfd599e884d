// Package interview owns per-interview progress and decides, turn by turn,
// whether to probe deeper, redirect an off-topic answer, move on, or finish.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"deepdive/interview/internal/classify"
	"deepdive/interview/internal/models"
	"deepdive/interview/internal/store"
	"deepdive/interview/internal/summary"
)

var (
	// ErrNotFound signals a missing interview or topic at the orchestration
	// boundary; the HTTP layer maps it to a 404-equivalent response.
	ErrNotFound = errors.New("interview not found")
	// ErrAlreadyCompleted signals an operation on a terminal interview.
	ErrAlreadyCompleted = errors.New("interview already completed")
	// ErrNoPendingConfirmation signals a confirm call with nothing pending.
	ErrNoPendingConfirmation = errors.New("no pending last-question confirmation")
)

// recentTurnsForContext bounds how much dialog primes a transition prompt.
const recentTurnsForContext = 4

type Engine struct {
	store      *store.Store
	classifier *classify.Classifier
	assembler  *summary.Assembler
	logger     *zap.Logger

	// Per-interview locks serialize mutation so no two turns of one
	// interview are ever appended concurrently. Different interviews
	// progress independently.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(st *store.Store, classifier *classify.Classifier, assembler *summary.Assembler, logger *zap.Logger) *Engine {
	return &Engine{
		store:      st,
		classifier: classifier,
		assembler:  assembler,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockInterview(id string) func() {
	e.mu.Lock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Start creates an interview for the topic, generating the background
// question and the rating metrics concurrently. Both have independent
// fallbacks, so Start only fails when the topic is missing or persistence
// breaks.
func (e *Engine) Start(ctx context.Context, topicID string) (*models.Interview, error) {
	topic, err := e.store.TopicByID(topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var (
		wg                 sync.WaitGroup
		backgroundQuestion string
		metrics            []string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		backgroundQuestion = e.classifier.BackgroundQuestion(ctx, topic.Outline)
	}()
	go func() {
		defer wg.Done()
		metrics = e.classifier.RatingMetrics(ctx, topic.Outline, topic.KeyQuestions)
	}()
	wg.Wait()

	interview := &models.Interview{
		TopicID:       topic.ID,
		Status:        models.StatusInProgress,
		RatingMetrics: metrics,
	}
	if err := e.store.CreateInterview(interview); err != nil {
		return nil, err
	}
	if _, err := e.store.AppendTurn(interview.ID, models.RoleInterviewer, backgroundQuestion); err != nil {
		return nil, err
	}

	e.logger.Info("interview started",
		zap.String("interview_id", interview.ID),
		zap.String("topic_id", topic.ID),
		zap.Int("metric_count", len(metrics)))

	return e.store.InterviewByID(interview.ID)
}

// Get returns an interview with its dialog history.
func (e *Engine) Get(interviewID string) (*models.Interview, error) {
	interview, err := e.store.InterviewByID(interviewID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return interview, err
}

// loadActive fetches the interview and its topic, rejecting terminal ones.
func (e *Engine) loadActive(interviewID string) (*models.Interview, *models.Topic, error) {
	interview, err := e.store.InterviewByID(interviewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if interview.Status == models.StatusCompleted {
		return nil, nil, ErrAlreadyCompleted
	}
	topic, err := e.store.TopicByID(interview.TopicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return interview, topic, nil
}

func currentQuestion(interview *models.Interview, topic *models.Topic) string {
	if interview.CurrentQuestionIndex < len(topic.KeyQuestions) {
		return topic.KeyQuestions[interview.CurrentQuestionIndex]
	}
	return ""
}

func followUpCap(questionIndex int) int {
	if questionIndex == 0 {
		return models.BackgroundFollowUpCap
	}
	return models.QuestionFollowUpCap
}

// SubmitAnswer appends the interviewee's answer and decides the next prompt.
// Off-topic detection preempts depth classification: a redirected answer
// neither advances the question index nor consumes a follow-up slot.
func (e *Engine) SubmitAnswer(ctx context.Context, interviewID, text string) (*models.SubmitResult, error) {
	unlock := e.lockInterview(interviewID)
	defer unlock()

	interview, topic, err := e.loadActive(interviewID)
	if err != nil {
		return nil, err
	}

	if _, err := e.store.AppendTurn(interview.ID, models.RoleInterviewee, text); err != nil {
		return nil, err
	}

	question := currentQuestion(interview, topic)

	offTopic := e.classifier.OffTopic(ctx, question, text)
	if offTopic.IsOffTopic && offTopic.Guidance != "" {
		if _, err := e.store.AppendTurn(interview.ID, models.RoleInterviewer, offTopic.Guidance); err != nil {
			return nil, err
		}
		e.logger.Info("off-topic answer redirected", zap.String("interview_id", interview.ID))
		return &models.SubmitResult{
			IsOffTopic: true,
			NextPrompt: offTopic.Guidance,
		}, nil
	}

	depth := e.classifier.Depth(ctx, question, text)

	if (depth == models.DepthSurface || depth == models.DepthDeeper) &&
		interview.FollowUpCount < followUpCap(interview.CurrentQuestionIndex) {
		deeper := e.classifier.DeeperQuestion(ctx, question, text)
		if _, err := e.store.AppendTurn(interview.ID, models.RoleInterviewer, deeper); err != nil {
			return nil, err
		}
		if err := e.store.UpdateProgress(interview.ID, interview.CurrentQuestionIndex,
			interview.FollowUpCount+1, interview.AwaitingConfirmation); err != nil {
			return nil, err
		}
		return &models.SubmitResult{
			Depth:      depth,
			NextPrompt: deeper,
		}, nil
	}

	// Either the answer was deep enough or the follow-up cap is exhausted.
	return &models.SubmitResult{
		Depth:         depth,
		ShouldAdvance: true,
	}, nil
}

// Advance moves the interview toward the next key question. Moving past the
// last index completes the interview; landing on the last index requires an
// explicit confirmation first.
func (e *Engine) Advance(ctx context.Context, interviewID string) (*models.AdvanceResult, error) {
	unlock := e.lockInterview(interviewID)
	defer unlock()

	interview, topic, err := e.loadActive(interviewID)
	if err != nil {
		return nil, err
	}

	total := len(topic.KeyQuestions)
	next := interview.CurrentQuestionIndex + 1

	if next >= total {
		endResult, err := e.complete(ctx, interview, topic)
		if err != nil {
			return nil, err
		}
		e.logger.Info("interview completed after final question",
			zap.String("interview_id", interview.ID),
			zap.String("summary_id", endResult.SummaryID))
		return &models.AdvanceResult{
			FullText:       endResult.ClosingRemark,
			QuestionIndex:  interview.CurrentQuestionIndex,
			TotalQuestions: total,
			IsLastQuestion: true,
			IsCompleted:    true,
		}, nil
	}

	if next == total-1 {
		if err := e.store.UpdateProgress(interview.ID, interview.CurrentQuestionIndex,
			interview.FollowUpCount, true); err != nil {
			return nil, err
		}
		return &models.AdvanceResult{
			Question:          topic.KeyQuestions[next],
			QuestionIndex:     next,
			TotalQuestions:    total,
			IsLastQuestion:    true,
			NeedsConfirmation: true,
		}, nil
	}

	return e.moveTo(ctx, interview, topic, next)
}

// ConfirmLastQuestion consumes a pending confirmation and asks the final key
// question.
func (e *Engine) ConfirmLastQuestion(ctx context.Context, interviewID string) (*models.AdvanceResult, error) {
	unlock := e.lockInterview(interviewID)
	defer unlock()

	interview, topic, err := e.loadActive(interviewID)
	if err != nil {
		return nil, err
	}
	if !interview.AwaitingConfirmation {
		return nil, ErrNoPendingConfirmation
	}

	return e.moveTo(ctx, interview, topic, len(topic.KeyQuestions)-1)
}

// moveTo advances the cursor to the given index, resets the follow-up
// counter, and appends one interviewer turn combining a transition phrase
// with the question.
func (e *Engine) moveTo(ctx context.Context, interview *models.Interview, topic *models.Topic, next int) (*models.AdvanceResult, error) {
	total := len(topic.KeyQuestions)
	question := topic.KeyQuestions[next]
	// The topic outline may have been edited since the cursor was set, so
	// index 0 can be the move target; there is no previous question then.
	previous := ""
	if next > 0 {
		previous = topic.KeyQuestions[next-1]
	}

	transition := e.classifier.Transition(ctx, previous, question, true, recentDialog(interview.Turns))

	fullText := question
	if transition != "" {
		fullText = transition + " " + question
	}

	if err := e.store.UpdateProgress(interview.ID, next, 0, false); err != nil {
		return nil, err
	}
	if _, err := e.store.AppendTurn(interview.ID, models.RoleInterviewer, fullText); err != nil {
		return nil, err
	}

	return &models.AdvanceResult{
		Question:       question,
		Transition:     transition,
		FullText:       fullText,
		QuestionIndex:  next,
		TotalQuestions: total,
		IsLastQuestion: next == total-1,
	}, nil
}

func recentDialog(turns []models.DialogTurn) string {
	start := len(turns) - recentTurnsForContext
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, recentTurnsForContext)
	for _, turn := range turns[start:] {
		role := "Interviewer"
		if turn.Role == models.RoleInterviewee {
			role = "Interviewee"
		}
		lines = append(lines, role+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

// End terminates the interview early from any index and triggers summary
// assembly.
func (e *Engine) End(ctx context.Context, interviewID string) (*models.EndResult, error) {
	unlock := e.lockInterview(interviewID)
	defer unlock()

	interview, topic, err := e.loadActive(interviewID)
	if err != nil {
		return nil, err
	}

	result, err := e.complete(ctx, interview, topic)
	if err != nil {
		return nil, err
	}
	e.logger.Info("interview ended",
		zap.String("interview_id", interviewID),
		zap.String("summary_id", result.SummaryID))
	return result, nil
}

// complete says goodbye, freezes the interview, and assembles its summary.
// Summary failure is the one error allowed to surface past the completion
// boundary.
func (e *Engine) complete(ctx context.Context, interview *models.Interview, topic *models.Topic) (*models.EndResult, error) {
	closing := e.classifier.Transition(ctx, currentQuestion(interview, topic), "", false, recentDialog(interview.Turns))
	if closing != "" {
		if _, err := e.store.AppendTurn(interview.ID, models.RoleInterviewer, closing); err != nil {
			return nil, err
		}
	}

	if err := e.store.SetStatus(interview.ID, models.StatusCompleted); err != nil {
		return nil, err
	}

	sum, err := e.assembler.Assemble(ctx, interview.ID)
	if err != nil {
		return nil, fmt.Errorf("summary assembly failed: %w", err)
	}

	return &models.EndResult{
		IsCompleted:   true,
		SummaryID:     sum.ID,
		ClosingRemark: closing,
	}, nil
}
