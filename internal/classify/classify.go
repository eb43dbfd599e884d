// Package classify maps raw backend text to the typed outcomes the interview
// engine routes on. Every classifier has a deterministic fallback; none of
// them propagates gateway failures.
package classify

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"deepdive/interview/internal/gateway"
	"deepdive/interview/internal/llm"
	"deepdive/interview/internal/models"
	"deepdive/interview/internal/prompts"
	"deepdive/interview/internal/utils"
)

// OffTopicResult is the typed outcome of the off-topic classifier.
type OffTopicResult struct {
	IsOffTopic bool   `json:"isOffTopic"`
	Guidance   string `json:"guidance"`
}

type Classifier struct {
	gw      *gateway.Gateway
	prompts prompts.Builder
	picker  Picker
	logger  *zap.Logger
}

func New(gw *gateway.Gateway, builder prompts.Builder, picker Picker, logger *zap.Logger) *Classifier {
	return &Classifier{
		gw:      gw,
		prompts: builder,
		picker:  picker,
		logger:  logger,
	}
}

func (c *Classifier) generate(ctx context.Context, mode string, data map[string]string) (string, error) {
	messages, err := c.prompts.BuildMessages(mode, data)
	if err != nil {
		return "", err
	}
	return c.gw.Submit(ctx, llm.Request{
		Messages: messages,
		Sampling: llm.DefaultSamplingParams(),
	})
}

// Depth classifies how thorough an answer is. Unrecognized backend text maps
// to DEEPER so the interview keeps probing instead of stalling.
func (c *Classifier) Depth(ctx context.Context, question, answer string) models.Depth {
	result, err := c.generate(ctx, "depth", map[string]string{
		"Question": question,
		"Answer":   answer,
	})
	if err != nil {
		c.logger.Warn("depth classifier fell back to length heuristic", zap.Error(err))
		return depthByLength(answer)
	}

	decision := strings.ToUpper(result)
	switch {
	case strings.Contains(decision, string(models.DepthSurface)):
		return models.DepthSurface
	case strings.Contains(decision, string(models.DepthEnough)):
		return models.DepthEnough
	case strings.Contains(decision, string(models.DepthDeeper)):
		return models.DepthDeeper
	}
	return models.DepthDeeper
}

func depthByLength(answer string) models.Depth {
	switch length := len(strings.TrimSpace(answer)); {
	case length < 20:
		return models.DepthSurface
	case length < 100:
		return models.DepthDeeper
	default:
		return models.DepthEnough
	}
}

// OffTopic judges whether an answer addresses the asked question, returning
// guidance to re-ask when it does not.
func (c *Classifier) OffTopic(ctx context.Context, question, answer string) OffTopicResult {
	result, err := c.generate(ctx, "off_topic", map[string]string{
		"Question": question,
		"Answer":   answer,
	})
	if err != nil {
		return offTopicHeuristic(question, answer)
	}

	var parsed OffTopicResult
	if jsonErr := json.Unmarshal([]byte(utils.StripFences(result)), &parsed); jsonErr != nil {
		c.logger.Warn("off-topic classifier returned unparseable text", zap.Error(jsonErr))
		// The reply may still state a verdict in prose.
		lowered := strings.ToLower(result)
		if strings.Contains(lowered, "off-topic") || strings.Contains(lowered, "off topic") {
			return OffTopicResult{IsOffTopic: true, Guidance: restateQuestion(question)}
		}
		return OffTopicResult{}
	}

	parsed.Guidance = Sanitize(parsed.Guidance)
	if parsed.IsOffTopic && parsed.Guidance == "" {
		parsed.Guidance = restateQuestion(question)
	}
	return parsed
}

func offTopicHeuristic(question, answer string) OffTopicResult {
	trimmed := strings.TrimSpace(answer)
	lowered := strings.ToLower(trimmed)
	deflecting := false
	for _, phrase := range models.DeflectionPhrases {
		if strings.Contains(lowered, phrase) {
			deflecting = true
			break
		}
	}
	if len(trimmed) < 10 || deflecting {
		return OffTopicResult{IsOffTopic: true, Guidance: restateQuestion(question)}
	}
	return OffTopicResult{}
}

func restateQuestion(question string) string {
	return "Let me restate the point of this question: " + question +
		" Please keep your answer focused on its core and share your real thoughts and experience."
}

// BackgroundQuestion opens the interview with one short question primed by
// the topic outline.
func (c *Classifier) BackgroundQuestion(ctx context.Context, outline string) string {
	result, err := c.generate(ctx, "background", map[string]string{
		"Outline": outline,
	})
	if err != nil {
		c.logger.Warn("background question generation fell back to default", zap.Error(err))
		return models.DefaultBackgroundQuestion
	}
	return Sanitize(firstQuestion(result))
}

// DeeperQuestion produces one open-ended follow-up for the given answer.
func (c *Classifier) DeeperQuestion(ctx context.Context, question, answer string) string {
	result, err := c.generate(ctx, "deeper", map[string]string{
		"Question": question,
		"Answer":   answer,
	})
	if err != nil {
		pool := models.DefaultProbingQuestions
		return pool[c.picker.Pick(len(pool))]
	}
	return Sanitize(firstQuestion(result))
}

// Transition produces a short connective sentence between key questions, or
// a closing remark when there is no next question.
func (c *Classifier) Transition(ctx context.Context, previousQuestion, nextQuestion string, hasNext bool, dialogContext string) string {
	mode := "transition"
	fallback := models.DefaultTransition
	data := map[string]string{
		"PreviousQuestion": previousQuestion,
		"NextQuestion":     nextQuestion,
		"Context":          dialogContext,
	}
	if !hasNext {
		mode = "closing"
		fallback = models.DefaultClosingRemark
	}

	result, err := c.generate(ctx, mode, data)
	if err != nil {
		return fallback
	}
	transition := Sanitize(firstLine(result))
	if transition == "" {
		return fallback
	}
	return transition
}

// RatingMetrics derives the metric names used to score the final summary.
func (c *Classifier) RatingMetrics(ctx context.Context, outline string, keyQuestions []string) []string {
	result, err := c.generate(ctx, "metrics", map[string]string{
		"Outline":      outline,
		"KeyQuestions": strings.Join(keyQuestions, ", "),
	})
	if err != nil {
		c.logger.Warn("metric generation fell back to defaults", zap.Error(err))
		return defaultMetrics()
	}

	metrics := parseMetricLines(result)
	if len(metrics) == 0 {
		return defaultMetrics()
	}
	return metrics
}

func defaultMetrics() []string {
	metrics := make([]string, len(models.DefaultRatingMetrics))
	copy(metrics, models.DefaultRatingMetrics)
	return metrics
}

var (
	enumPrefixRe   = regexp.MustCompile(`^[0-9]+[.)]\s*`)
	bulletPrefixRe = regexp.MustCompile(`^[-*]\s*`)
)

// parseMetricLines splits backend text into metric names, dropping empty and
// header-like lines and any leading enumeration.
func parseMetricLines(text string) []string {
	var metrics []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(strings.ToLower(line), "step") || strings.HasPrefix(line, "---") {
			continue
		}
		line = enumPrefixRe.ReplaceAllString(line, "")
		line = bulletPrefixRe.ReplaceAllString(line, "")
		if line = Sanitize(line); line != "" {
			metrics = append(metrics, line)
		}
	}
	return metrics
}

// firstQuestion extracts the first question-like sentence from a reply,
// falling back to the first non-empty line.
func firstQuestion(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, mark := range []string{"?", "？"} {
			if i := strings.Index(line, mark); i >= 0 {
				return line[:i+len(mark)]
			}
		}
	}
	return firstLine(text)
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
