package openai

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"deepdive/interview/internal/llm"
)

// Client generates text through the OpenAI chat completions API.
type Client struct {
	client openai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	return &Client{
		client: openai.NewClient(option.WithAPIKey(config.APIKey)),
		config: config,
	}, nil
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.config.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Sampling.Temperature),
		TopP:        openai.Float(req.Sampling.TopP),
		// The chat API has no repetition penalty knob; frequency penalty is
		// the closest equivalent around its 0 baseline.
		FrequencyPenalty: openai.Float(req.Sampling.RepetitionPenalty - 1),
		MaxTokens:        openai.Int(int64(req.Sampling.MaxTokens)),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		code := llm.ErrCodeServiceDown
		if isRateLimitError(err) {
			code = llm.ErrCodeRateLimit
		}
		return "", &llm.ProviderError{
			Provider: "openai",
			Code:     code,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &llm.ProviderError{
			Provider: "openai",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	return text, nil
}

func (c *Client) Name() string {
	return "openai"
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}
