package domain

import "time"

type SessionID string
type UserID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole maps the role names clients send (including legacy "agent"
// and "model") to a Role. Unknown roles map to "".
func ParseRole(s string) Role {
	switch s {
	case "user", "usuario":
		return RoleUser
	case "assistant", "agent", "model", "eco":
		return RoleAssistant
	case "system":
		return RoleSystem
	default:
		return ""
	}
}

type Timestamp = time.Time
