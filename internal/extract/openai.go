package extract

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

// OpenAIExtractor implements TableExtractor with an OpenAI chat completion.
// The client is injected, never a process-wide singleton, so tests can point
// it at a fake server.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor creates an extractor using the given client and model.
func NewOpenAIExtractor(client *openai.Client, model string) *OpenAIExtractor {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIExtractor{client: client, model: model}
}

// ExtractTable sends the prompt and returns the raw completion text.
// Deadline hits are wrapped in ErrUpstreamTimeout so callers can tell a slow
// upstream from malformed input.
func (e *OpenAIExtractor) ExtractTable(ctx context.Context, prompt string) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You extract structured tables from campus safety alert messages.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("openai completion: %w", domain.ErrUpstreamTimeout)
		}
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion returned no choices: %w", domain.ErrExtractionSchema)
	}
	return resp.Choices[0].Message.Content, nil
}
