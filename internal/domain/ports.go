package domain

import "context"

// LLMClient defines how the core application interacts with an LLM service.
type LLMClient interface {
	GenerateReply(ctx context.Context, req LLMRequest) (string, error)
}

// LLMRequest carries the assembled system prompt and the conversation so far.
// The last message of History is the user message being answered.
type LLMRequest struct {
	SessionID    SessionID
	UserID       UserID
	UserName     string
	SystemPrompt string
	History      []*Message
}

// SessionStore defines session's persistence
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	ListSessionsByUser(ctx context.Context, userID UserID, limit int) ([]*Session, error)
}

// MessageStore defines message's persistence
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *Message) error
	GetMessagesBySession(ctx context.Context, sessionID SessionID, limit int) ([]*Message, error)
}

// GreetGuard remembers which users already received the automatic greeting.
// Acquire reports whether the greeting may fire for userID and, when it may,
// marks the user in the same step.
type GreetGuard interface {
	Acquire(ctx context.Context, userID UserID) (bool, error)
}
