package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "openai/gpt-3.5-turbo"

	timeoutLLMCall = 60 * time.Second
)

// OpenRouterConfig configures the OpenRouter client. Referer and Title are
// sent as the HTTP-Referer and X-Title attribution headers.
type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Referer     string
	Title       string
	Temperature float32
	MaxTokens   int
}

// OpenRouterClient implements domain.LLMClient over OpenRouter's
// OpenAI-compatible chat completions API.
type OpenRouterClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenRouterClient(cfg OpenRouterConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterBaseURL
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	config.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			referer: cfg.Referer,
			title:   cfg.Title,
		},
	}

	return newOpenRouterClientWithClient(openai.NewClientWithConfig(config), cfg), nil
}

// newOpenRouterClientWithClient is used in tests to inject httptest-based clients.
func newOpenRouterClientWithClient(client *openai.Client, cfg OpenRouterConfig) *OpenRouterClient {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenRouterModel
	}
	return &OpenRouterClient{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// GenerateReply implements domain.LLMClient.
func (c *OpenRouterClient) GenerateReply(ctx context.Context, req domain.LLMRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutLLMCall)
	defer cancel()

	history := trimHistory(req.History)
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(req),
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Author == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter chat completion: %w", domain.ErrEmptyReply)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openrouter chat completion: %w", domain.ErrEmptyReply)
	}
	return text, nil
}

type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	if t.referer != "" {
		r.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		r.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(r)
}
