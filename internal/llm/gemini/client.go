package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"deepdive/interview/internal/llm"
)

// Client generates text through the Gemini API.
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Sampling.Temperature)),
		TopP:            genai.Ptr(float32(req.Sampling.TopP)),
		MaxOutputTokens: int32(req.Sampling.MaxTokens),
	}

	// Gemini keeps the system prompt out of the content list.
	var userParts []string
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			cfg.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
		default:
			userParts = append(userParts, msg.Content)
		}
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(strings.Join(userParts, "\n\n")),
		cfg,
	)
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if result == nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	return text, nil
}

func (c *Client) Name() string {
	return "gemini"
}
