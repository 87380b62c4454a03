package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AbdelalimB1729/The-Math-Council/internal/council"
	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
	openai "github.com/meguminnnnnnnnn/go-openai"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const (
	defaultModel      = "gpt-3.5-turbo"
	maxResponseTokens = 300
	temperature       = 0.7
)

// OpenRouterClient implements Generator against OpenRouter's
// OpenAI-compatible chat completion API. On backend failure it falls back to
// a canned response rather than surfacing the error, so the turn machine
// never stalls on a flaky backend.
type OpenRouterClient struct {
	client *openai.Client
	model  string
}

// NewOpenRouterClient creates a client for the given API key. baseURL and
// model fall back to OpenRouter defaults when empty.
func NewOpenRouterClient(apiKey, baseURL, model string) *OpenRouterClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &OpenRouterClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Generate produces the next debate contribution for the speaker.
func (c *OpenRouterClient) Generate(ctx context.Context, profile council.Profile, problem string, transcript []*domain.Message, difficulty string) (string, error) {
	temp := float32(temperature)
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(profile, difficulty)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(problem, transcript)},
		},
		MaxTokens:   maxResponseTokens,
		Temperature: &temp,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Warn("OpenRouter call failed, using simulated response",
			"speaker", profile.Name, "error", err)
		return CannedResponse(profile.Name), nil
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
