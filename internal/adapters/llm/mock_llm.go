package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

// MockLLM echoes the last user message. Used for local runs and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(_ context.Context, req domain.LLMRequest) (string, error) {
	last := lastUserText(req.History)
	if last == "" {
		return "Estou aqui. O que você gostaria de olhar agora?", nil
	}
	return fmt.Sprintf("Eu te escuto. Você disse %q. O que isso desperta em você agora?", last), nil
}
