package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"deepdive/interview/internal/classify"
	"deepdive/interview/internal/gateway"
	"deepdive/interview/internal/models"
	"deepdive/interview/internal/prompts"
	"deepdive/interview/internal/store"
	"deepdive/interview/internal/summary"
)

var dbCounter int

// newTestEngine wires the whole orchestration stack against an in-memory
// database with the generation backend disabled, so every classifier runs on
// its deterministic fallback.
func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	dbCounter++
	dsn := fmt.Sprintf("file:engine_test_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), dbCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	builder, err := prompts.NewManager()
	if err != nil {
		t.Fatalf("failed to load prompt templates: %v", err)
	}
	gw := gateway.New(nil, gateway.Config{}, zap.NewNop())
	classifier := classify.New(gw, builder, classify.NewSeededPicker(1), zap.NewNop())
	assembler := summary.NewAssembler(st, gw, classifier, builder, zap.NewNop())
	return NewEngine(st, classifier, assembler, zap.NewNop()), st
}

func newTopic(t *testing.T, st *store.Store, keyQuestions ...string) *models.Topic {
	t.Helper()
	topic := &models.Topic{
		Title:        "Remote work",
		Outline:      "Experiences with distributed teams",
		KeyQuestions: keyQuestions,
	}
	if err := st.CreateTopic(topic); err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}
	return topic
}

// Answers sized for the length-based depth fallback: deepAnswer classifies as
// ENOUGH, shallowAnswer as DEEPER.
var (
	deepAnswer    = strings.Repeat("thoughtful reflection ", 10)
	shallowAnswer = "We mostly used chat tools and a weekly sync meeting to stay aligned."
)

func TestStartCreatesInterview(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "q1", "q2", "q3")

	created, err := engine.Start(ctx, topic.ID)
	if err != nil {
		t.Fatalf("failed to start interview: %v", err)
	}
	if created.Status != models.StatusInProgress {
		t.Fatalf("expected in-progress status, got %s", created.Status)
	}
	if created.CurrentQuestionIndex != 0 {
		t.Fatalf("expected question index 0, got %d", created.CurrentQuestionIndex)
	}
	if len(created.Turns) != 1 || created.Turns[0].Role != models.RoleInterviewer {
		t.Fatalf("expected one opening interviewer turn, got %+v", created.Turns)
	}
	if created.Turns[0].Text != models.DefaultBackgroundQuestion {
		t.Fatalf("expected default background question, got %q", created.Turns[0].Text)
	}
	if len(created.RatingMetrics) != len(models.DefaultRatingMetrics) {
		t.Fatalf("expected default rating metrics, got %v", created.RatingMetrics)
	}
}

func TestStartUnknownTopic(t *testing.T) {
	engine, _ := newTestEngine(t)
	if _, err := engine.Start(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitAnswerOffTopicDoesNotAdvance(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "q1", "q2", "q3")
	created, _ := engine.Start(ctx, topic.ID)

	// Too short: the heuristic flags it as off-topic.
	result, err := engine.SubmitAnswer(ctx, created.ID, "dunno")
	if err != nil {
		t.Fatalf("failed to submit answer: %v", err)
	}
	if !result.IsOffTopic {
		t.Fatal("expected off-topic verdict")
	}
	if result.NextPrompt == "" {
		t.Fatal("expected redirect guidance")
	}
	if result.ShouldAdvance {
		t.Fatal("off-topic answer must not advance the interview")
	}

	loaded, _ := engine.Get(created.ID)
	if loaded.CurrentQuestionIndex != 0 || loaded.FollowUpCount != 0 {
		t.Fatalf("off-topic answer changed progress: %+v", loaded)
	}
	// answer + guidance appended after the opening question
	if len(loaded.Turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(loaded.Turns))
	}
	if loaded.Turns[2].Role != models.RoleInterviewer {
		t.Fatal("guidance must be recorded as an interviewer turn")
	}
}

func TestSubmitAnswerFollowUpCapBackgroundPhase(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "q1", "q2", "q3")
	created, _ := engine.Start(ctx, topic.ID)

	// Index 0 allows two follow-ups, so the first two shallow answers draw
	// probing questions and the third forces an advance signal.
	for i := 0; i < models.BackgroundFollowUpCap; i++ {
		result, err := engine.SubmitAnswer(ctx, created.ID, shallowAnswer)
		if err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
		if result.ShouldAdvance {
			t.Fatalf("submission %d should have drawn a follow-up", i)
		}
		if result.NextPrompt == "" {
			t.Fatalf("submission %d returned no follow-up question", i)
		}
	}

	result, err := engine.SubmitAnswer(ctx, created.ID, shallowAnswer)
	if err != nil {
		t.Fatalf("final submit failed: %v", err)
	}
	if !result.ShouldAdvance {
		t.Fatal("expected advance signal once follow-up cap is exhausted")
	}

	loaded, _ := engine.Get(created.ID)
	if loaded.FollowUpCount != models.BackgroundFollowUpCap {
		t.Fatalf("expected follow-up count %d, got %d", models.BackgroundFollowUpCap, loaded.FollowUpCount)
	}
}

func TestSubmitAnswerDeepEnoughAdvances(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "q1", "q2", "q3")
	created, _ := engine.Start(ctx, topic.ID)

	result, err := engine.SubmitAnswer(ctx, created.ID, deepAnswer)
	if err != nil {
		t.Fatalf("failed to submit answer: %v", err)
	}
	if result.Depth != models.DepthEnough {
		t.Fatalf("expected ENOUGH, got %s", result.Depth)
	}
	if !result.ShouldAdvance {
		t.Fatal("expected advance signal for a thorough answer")
	}
}

func TestAdvanceThroughInterview(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "q1", "q2", "q3")
	created, _ := engine.Start(ctx, topic.ID)

	// 0 -> 1: ordinary move with a transition turn.
	result, err := engine.Advance(ctx, created.ID)
	if err != nil {
		t.Fatalf("first advance failed: %v", err)
	}
	if result.QuestionIndex != 1 || result.Question != "q2" {
		t.Fatalf("unexpected advance result: %+v", result)
	}
	if result.NeedsConfirmation || result.IsCompleted {
		t.Fatalf("ordinary advance should not need confirmation: %+v", result)
	}
	if !strings.Contains(result.FullText, "q2") {
		t.Fatalf("full text should contain the question, got %q", result.FullText)
	}

	loaded, _ := engine.Get(created.ID)
	if loaded.CurrentQuestionIndex != 1 || loaded.FollowUpCount != 0 {
		t.Fatalf("advance did not reset progress: %+v", loaded)
	}
	lastTurn := loaded.Turns[len(loaded.Turns)-1]
	if lastTurn.Role != models.RoleInterviewer || lastTurn.Text != result.FullText {
		t.Fatalf("expected combined transition turn, got %+v", lastTurn)
	}

	// 1 -> 2 is the last question: confirmation gate, no turn appended yet.
	turnsBefore := len(loaded.Turns)
	result, err = engine.Advance(ctx, created.ID)
	if err != nil {
		t.Fatalf("second advance failed: %v", err)
	}
	if !result.NeedsConfirmation || !result.IsLastQuestion {
		t.Fatalf("expected confirmation gate, got %+v", result)
	}
	if result.Question != "q3" {
		t.Fatalf("expected pending question q3, got %q", result.Question)
	}
	loaded, _ = engine.Get(created.ID)
	if !loaded.AwaitingConfirmation {
		t.Fatal("expected awaiting-confirmation flag set")
	}
	if loaded.CurrentQuestionIndex != 1 {
		t.Fatalf("confirmation gate must not move the cursor, got %d", loaded.CurrentQuestionIndex)
	}
	if len(loaded.Turns) != turnsBefore {
		t.Fatal("confirmation gate must not append a turn")
	}

	// Confirm: the final question is asked.
	result, err = engine.ConfirmLastQuestion(ctx, created.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if result.QuestionIndex != 2 || !result.IsLastQuestion {
		t.Fatalf("unexpected confirm result: %+v", result)
	}
	loaded, _ = engine.Get(created.ID)
	if loaded.AwaitingConfirmation {
		t.Fatal("confirmation flag should be cleared")
	}
	if loaded.CurrentQuestionIndex != 2 {
		t.Fatalf("expected cursor at last question, got %d", loaded.CurrentQuestionIndex)
	}

	// Advancing past the last question completes the interview.
	result, err = engine.Advance(ctx, created.ID)
	if err != nil {
		t.Fatalf("final advance failed: %v", err)
	}
	if !result.IsCompleted {
		t.Fatalf("expected completion, got %+v", result)
	}
	loaded, _ = engine.Get(created.ID)
	if loaded.Status != models.StatusCompleted {
		t.Fatalf("expected completed status, got %s", loaded.Status)
	}
	if loaded.SummaryID == nil {
		t.Fatal("expected summary attached on completion")
	}

	// Terminal: every further operation conflicts.
	if _, err := engine.SubmitAnswer(ctx, created.ID, deepAnswer); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if _, err := engine.Advance(ctx, created.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if _, err := engine.End(ctx, created.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestConfirmWithoutPendingConfirmation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "q1", "q2", "q3")
	created, _ := engine.Start(ctx, topic.ID)

	if _, err := engine.ConfirmLastQuestion(ctx, created.ID); !errors.Is(err, ErrNoPendingConfirmation) {
		t.Fatalf("expected ErrNoPendingConfirmation, got %v", err)
	}
}

func TestConfirmAfterTopicShrinksToOneQuestion(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "q1", "q2")
	created, _ := engine.Start(ctx, topic.ID)

	result, err := engine.Advance(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !result.NeedsConfirmation {
		t.Fatalf("expected confirmation gate, got %+v", result)
	}

	// The topic outline is edited down to one question while the
	// confirmation is pending.
	topic.KeyQuestions = []string{"q1"}
	if err := st.UpdateTopic(topic); err != nil {
		t.Fatalf("failed to shrink topic: %v", err)
	}

	result, err = engine.ConfirmLastQuestion(ctx, created.ID)
	if err != nil {
		t.Fatalf("confirm after shrink failed: %v", err)
	}
	if result.QuestionIndex != 0 || result.Question != "q1" || !result.IsLastQuestion {
		t.Fatalf("unexpected confirm result: %+v", result)
	}

	loaded, _ := engine.Get(created.ID)
	if loaded.AwaitingConfirmation {
		t.Fatal("confirmation flag should be cleared")
	}
	if loaded.CurrentQuestionIndex != 0 {
		t.Fatalf("expected cursor at question 0, got %d", loaded.CurrentQuestionIndex)
	}
}

func TestCompletionAppendsClosingRemark(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "only question")
	created, _ := engine.Start(ctx, topic.ID)

	result, err := engine.Advance(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !result.IsCompleted {
		t.Fatalf("expected completion, got %+v", result)
	}
	if result.FullText != models.DefaultClosingRemark {
		t.Fatalf("expected closing remark, got %q", result.FullText)
	}

	loaded, _ := engine.Get(created.ID)
	last := loaded.Turns[len(loaded.Turns)-1]
	if last.Role != models.RoleInterviewer || last.Text != models.DefaultClosingRemark {
		t.Fatalf("expected closing interviewer turn, got %+v", last)
	}
}

func TestSingleQuestionTopicCompletesOnFirstAdvance(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "only question")
	created, _ := engine.Start(ctx, topic.ID)

	result, err := engine.Advance(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !result.IsCompleted {
		t.Fatalf("single-question topic should complete on first advance: %+v", result)
	}
}

func TestEndEarlyAssemblesSummary(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()
	topic := newTopic(t, engine.store, "q1", "q2", "q3")
	created, _ := engine.Start(ctx, topic.ID)

	result, err := engine.End(ctx, created.ID)
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if !result.IsCompleted || result.SummaryID == "" {
		t.Fatalf("unexpected end result: %+v", result)
	}
	if result.ClosingRemark != models.DefaultClosingRemark {
		t.Fatalf("expected closing remark, got %q", result.ClosingRemark)
	}

	sum, err := st.SummaryByInterview(created.ID)
	if err != nil {
		t.Fatalf("failed to load summary: %v", err)
	}
	if sum.ID != result.SummaryID {
		t.Fatalf("summary ID mismatch: %s vs %s", sum.ID, result.SummaryID)
	}
	if sum.SummaryNumber != 1 {
		t.Fatalf("expected summary number 1, got %d", sum.SummaryNumber)
	}
}

func TestOperationsOnMissingInterview(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, "missing", deepAnswer); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := engine.Advance(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := engine.End(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
