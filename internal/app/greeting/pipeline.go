package greeting

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

// windowSize is how many trailing turns the responder looks at.
const windowSize = 4

// PipelineParams is one inbound chat message plus its thread.
type PipelineParams struct {
	// Messages is the thread including the message being answered.
	Messages []Message
	// LastMessage defaults to the content of the last entry of Messages.
	LastMessage string
	UserID      domain.UserID
	UserName    string
	ClientHour  *int
	ClientTZ    string
}

// PipelineResult tells the caller whether the canned reply replaces the LLM.
type PipelineResult struct {
	Handled  bool
	Response string
	Reply    Reply
}

// Pipeline decides when a canned greeting or farewell short-circuits the
// LLM call.
//
// Farewells are answered whenever detected. Greetings are answered only on
// an empty thread (no assistant turns yet), for a message without
// substantive content, and at most once per user as recorded by the guard.
type Pipeline struct {
	enabled   bool
	responder *Responder
	guard     domain.GreetGuard
}

// NewPipeline wires a responder and a guard. A nil guard never blocks.
func NewPipeline(enabled bool, responder *Responder, guard domain.GreetGuard) *Pipeline {
	if responder == nil {
		responder = NewResponder()
	}
	return &Pipeline{
		enabled:   enabled,
		responder: responder,
		guard:     guard,
	}
}

// Handle returns Handled=false whenever the message must go to the LLM.
// Guard errors are returned with Handled=false.
func (p *Pipeline) Handle(ctx context.Context, in PipelineParams) (PipelineResult, error) {
	if !p.enabled || len(in.Messages) == 0 {
		return PipelineResult{}, nil
	}

	assistantTurns := 0
	for _, m := range in.Messages {
		if m.Role == domain.RoleAssistant {
			assistantTurns++
		}
	}

	last := strings.TrimSpace(in.LastMessage)
	if last == "" {
		last = strings.TrimSpace(in.Messages[len(in.Messages)-1].Content)
	}

	window := in.Messages
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}

	reply, ok := p.responder.Respond(window, ReplyOptions{
		UserName:   in.UserName,
		ClientHour: in.ClientHour,
		ClientTZ:   in.ClientTZ,
	})
	if !ok {
		return PipelineResult{}, nil
	}

	// TODO: decide whether farewells should also respect the guard and the
	// substantive-content gate; today they always short-circuit.
	if reply.Kind == KindFarewell {
		return PipelineResult{Handled: true, Response: reply.Text, Reply: reply}, nil
	}

	if assistantTurns > 0 || HasSubstantiveContent(last) {
		return PipelineResult{}, nil
	}

	if p.guard != nil {
		allowed, err := p.guard.Acquire(ctx, in.UserID)
		if err != nil {
			return PipelineResult{}, fmt.Errorf("greet guard: %w", err)
		}
		if !allowed {
			return PipelineResult{}, nil
		}
	}

	return PipelineResult{Handled: true, Response: reply.Text, Reply: reply}, nil
}
