package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

func newOpenRouterTestServer(t *testing.T, handler http.HandlerFunc) *OpenRouterClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewOpenRouterClient(OpenRouterConfig{
		APIKey:  "test-api-key",
		BaseURL: ts.URL + "/api/v1",
		Model:   "openai/gpt-4o-mini",
		Referer: "http://localhost:5173",
		Title:   "Eco App",
	})
	require.NoError(t, err)
	return c
}

func history() []*domain.Message {
	return []*domain.Message{
		{Author: domain.RoleUser, Text: "oi"},
		{Author: domain.RoleAssistant, Text: "Boa tarde. O que está vivo em você?"},
		{Author: domain.RoleSystem, Text: "ignored"},
		{Author: domain.RoleUser, Text: "estou ansiosa"},
	}
}

func TestOpenRouterGenerateReply(t *testing.T) {
	c := newOpenRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "http://localhost:5173", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Eco App", r.Header.Get("X-Title"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "openai/gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 4)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "Nome: Ana")
		assert.Equal(t, openai.ChatMessageRoleAssistant, req.Messages[2].Role)
		assert.Equal(t, "estou ansiosa", req.Messages[3].Content)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "  Vamos respirar juntos.  "},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	})

	reply, err := c.GenerateReply(context.Background(), domain.LLMRequest{
		UserName:     "Ana",
		SystemPrompt: "## MANIFESTO",
		History:      history(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Vamos respirar juntos.", reply)
}

func TestOpenRouterEmptyReply(t *testing.T) {
	c := newOpenRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})

	_, err := c.GenerateReply(context.Background(), domain.LLMRequest{History: history()})
	assert.ErrorIs(t, err, domain.ErrEmptyReply)
}

func TestOpenRouterAPIError(t *testing.T) {
	c := newOpenRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid API key", "type": "invalid_request_error"},
		})
	})

	_, err := c.GenerateReply(context.Background(), domain.LLMRequest{History: history()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openrouter chat completion")
}

func TestNewOpenRouterClientRequiresKey(t *testing.T) {
	_, err := NewOpenRouterClient(OpenRouterConfig{})
	assert.Error(t, err)
}

func TestToGeminiContents(t *testing.T) {
	contents := toGeminiContents(history())
	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "estou ansiosa", contents[2].Parts[0].Text)
}

func TestNewGeminiClientRequiresCredentials(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{Project: "p"})
	assert.Error(t, err)
}

func TestTrimHistory(t *testing.T) {
	var msgs []*domain.Message
	for i := 0; i < maxHistory+5; i++ {
		msgs = append(msgs, &domain.Message{Author: domain.RoleUser, Text: "x"})
	}
	msgs = append(msgs, nil, &domain.Message{Author: domain.RoleUser})

	assert.Len(t, trimHistory(msgs), maxHistory)
}

func TestMockLLM(t *testing.T) {
	reply, err := NewMockLLM().GenerateReply(context.Background(), domain.LLMRequest{History: history()})
	require.NoError(t, err)
	assert.Contains(t, reply, "estou ansiosa")

	reply, err = NewMockLLM().GenerateReply(context.Background(), domain.LLMRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}
