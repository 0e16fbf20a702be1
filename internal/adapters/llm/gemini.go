package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig selects the Gemini API when APIKey is set and Vertex AI
// (Project + Location) otherwise.
type GeminiConfig struct {
	APIKey    string
	Project   string
	Location  string
	Model     string
	MaxTokens int32
}

type GeminiClient struct {
	client    *genai.Client
	modelName string
	maxTokens int32
}

// NewGeminiClient creates an LLMClient based on Gemini.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cc := &genai.ClientConfig{}
	switch {
	case cfg.APIKey != "":
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case cfg.Project != "" && cfg.Location != "":
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("gemini needs an api key or a project and location")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		maxTokens: maxTokens,
	}, nil
}

// GenerateReply implements domain.LLMClient using Gemini.
func (g *GeminiClient) GenerateReply(ctx context.Context, req domain.LLMRequest) (string, error) {
	contents := toGeminiContents(req.History)
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini generate content: empty history")
	}

	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt(req), genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   g.maxTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generate content: %w", domain.ErrEmptyReply)
	}
	return text, nil
}

// toGeminiContents maps assistant turns to the model role.
func toGeminiContents(history []*domain.Message) []*genai.Content {
	var contents []*genai.Content
	for _, m := range trimHistory(history) {
		var role genai.Role = genai.RoleUser
		if m.Author == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	return contents
}
