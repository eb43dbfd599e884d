package llm

import "context"

// Message is one role-tagged part of a structured prompt.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// SamplingParams carries the generation settings forwarded to the backend.
type SamplingParams struct {
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	MaxTokens         int
}

// DefaultSamplingParams matches the settings every classifier prompt uses
// unless it overrides them.
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		Temperature:       0.6,
		TopP:              0.9,
		RepetitionPenalty: 1.02,
		MaxTokens:         512,
	}
}

// Request is an opaque structured prompt plus its sampling configuration.
type Request struct {
	Messages []Message
	Sampling SamplingParams
}

// NewRequest builds a request from a system and a user message with the
// default sampling configuration.
func NewRequest(system, user string) Request {
	return Request{
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		Sampling: DefaultSamplingParams(),
	}
}

// Provider is the interface every generation backend implements. The response
// is plain text; no other wire format is assumed.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// ProviderError represents an error from a generation backend.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Common error codes shared across providers.
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
