package domain

// Message represents any message in a timeline (user, assistant or system)
type Message struct {
	ID        MessageID
	SessionID SessionID
	Author    Role
	Text      string
	CreatedAt Timestamp

	// Metadata holds additional information about the message
	Tags        []string
	ContentType string // e.g., "text", "greeting", "farewell"
}

// Session represents a conversation thread between a user and Eco
type Session struct {
	ID        SessionID
	UserID    UserID
	CreatedAt Timestamp
	UpdatedAt Timestamp
	Title     string
}
