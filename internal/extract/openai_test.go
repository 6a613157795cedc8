package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

func newFakeOpenAI(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestOpenAIExtractor_ReturnsCompletionText(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	client := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "| Date |\n| 03/09/2023 |"}},
			},
		})
	})

	e := NewOpenAIExtractor(client, "")
	out, err := e.ExtractTable(context.Background(), "extract this")
	require.NoError(t, err)

	assert.Equal(t, "| Date |\n| 03/09/2023 |", out)
	assert.Equal(t, openai.GPT4oMini, gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleUser, gotReq.Messages[1].Role)
	assert.Equal(t, "extract this", gotReq.Messages[1].Content)
	assert.Zero(t, gotReq.Temperature, "extraction must be deterministic")
}

func TestOpenAIExtractor_NoChoices(t *testing.T) {
	client := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})

	e := NewOpenAIExtractor(client, "gpt-4o")
	_, err := e.ExtractTable(context.Background(), "extract this")
	assert.ErrorIs(t, err, domain.ErrExtractionSchema)
}

func TestOpenAIExtractor_CanceledContext(t *testing.T) {
	client := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewOpenAIExtractor(client, "gpt-4o")
	_, err := e.ExtractTable(ctx, "extract this")
	assert.Error(t, err)
}
