package llm

import "github.com/PabloGalante/eco-agent/internal/domain"

// maxHistory bounds the turns sent to a provider.
const maxHistory = 20

// trimHistory keeps the last maxHistory non-empty user and assistant turns.
func trimHistory(history []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, 0, len(history))
	for _, m := range history {
		if m == nil || m.Text == "" {
			continue
		}
		if m.Author != domain.RoleUser && m.Author != domain.RoleAssistant {
			continue
		}
		out = append(out, m)
	}
	if len(out) > maxHistory {
		out = out[len(out)-maxHistory:]
	}
	return out
}

func lastUserText(history []*domain.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if m := history[i]; m != nil && m.Author == domain.RoleUser {
			return m.Text
		}
	}
	return ""
}

// systemPrompt appends the user's name, when known, to the assembled prompt.
func systemPrompt(req domain.LLMRequest) string {
	if req.UserName == "" {
		return req.SystemPrompt
	}
	return req.SystemPrompt + "\n\n## USUÁRIO\n\nNome: " + req.UserName
}
